package handlers

import (
	"context"

	"github.com/avaldes/remarket-api/internal/cognito"
	"github.com/avaldes/remarket-api/internal/models"
	"github.com/avaldes/remarket-api/internal/services"
)

// UserServiceInterface defines the methods used by handlers from UserService
type UserServiceInterface interface {
	ResolveOrCreate(ctx context.Context, claims *cognito.Claims) (*models.User, error)
	GetByID(ctx context.Context, id int64) (*models.User, error)
	UpdateProfile(ctx context.Context, id int64, fullName string) (*models.User, error)
	SetStatus(ctx context.Context, id int64, status string) (*models.User, error)
}

// ListingServiceInterface defines the methods used by handlers from ListingService
type ListingServiceInterface interface {
	Create(ctx context.Context, input services.CreateListingInput, sellerID int64) (*models.Listing, error)
	GetByID(ctx context.Context, id int64, includeInactive bool) (*models.Listing, error)
	ListPublic(ctx context.Context, filters services.ListingFilters, page, pageSize int) ([]models.Listing, int, error)
	ListBySeller(ctx context.Context, sellerID int64, statusFilter *string, page, pageSize int) ([]models.Listing, int, error)
	ListByStatus(ctx context.Context, status string, page, pageSize int) ([]models.Listing, int, error)
	Update(ctx context.Context, id int64, input services.UpdateListingInput, sellerID int64) (*models.Listing, error)
	SoftDelete(ctx context.Context, id, sellerID int64) error
	SetStatus(ctx context.Context, id int64, newStatus string, adminID int64) (*models.Listing, error)
	AttachImages(ctx context.Context, listingID int64, uploads []services.ImageUpload, sellerID int64, primaryIndex int) ([]models.ListingImage, error)
}

// CategoryServiceInterface defines the methods used by handlers from CategoryService
type CategoryServiceInterface interface {
	Create(ctx context.Context, name, categoryType string, parentID *int64) (*models.Category, error)
	GetByID(ctx context.Context, id int64) (*models.Category, error)
	List(ctx context.Context, typeFilter *string) ([]models.Category, error)
	Update(ctx context.Context, id int64, name *string, parentID *int64) (*models.Category, error)
	Delete(ctx context.Context, id int64) error
}

// NotificationServiceInterface defines the methods used by handlers from NotificationService
type NotificationServiceInterface interface {
	NotifyListingModerated(ctx context.Context, listing *models.Listing) (*models.Notification, error)
	ListForUser(ctx context.Context, userID int64, unreadOnly bool) ([]models.Notification, error)
	MarkRead(ctx context.Context, id, userID int64) error
	MarkAllRead(ctx context.Context, userID int64) error
}

// EmailServiceInterface defines the methods used by handlers from EmailService
type EmailServiceInterface interface {
	SendListingModerated(to string, listing *models.Listing) error
	SendWelcome(to string) error
}

// HostedUIInterface defines the methods used by handlers from cognito.HostedUI
type HostedUIInterface interface {
	ConsentURL(state string) string
	ExchangeCode(ctx context.Context, code string) (*cognito.TokenSet, error)
}

// TokenVerifierInterface defines the methods used by handlers from cognito.Verifier
type TokenVerifierInterface interface {
	Verify(ctx context.Context, tokenString string) (*cognito.Claims, error)
}
