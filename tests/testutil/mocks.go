package testutil

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/avaldes/remarket-api/internal/cognito"
	"github.com/avaldes/remarket-api/internal/models"
	"github.com/avaldes/remarket-api/internal/services"
)

// MockUserService mocks the UserService
type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) ResolveOrCreate(ctx context.Context, claims *cognito.Claims) (*models.User, error) {
	args := m.Called(ctx, claims)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserService) ResolveStrict(ctx context.Context, claims *cognito.Claims) (*models.User, error) {
	args := m.Called(ctx, claims)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserService) GetByID(ctx context.Context, id int64) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserService) UpdateProfile(ctx context.Context, id int64, fullName string) (*models.User, error) {
	args := m.Called(ctx, id, fullName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserService) SetStatus(ctx context.Context, id int64, status string) (*models.User, error) {
	args := m.Called(ctx, id, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

// MockListingService mocks the ListingService
type MockListingService struct {
	mock.Mock
}

func (m *MockListingService) Create(ctx context.Context, input services.CreateListingInput, sellerID int64) (*models.Listing, error) {
	args := m.Called(ctx, input, sellerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Listing), args.Error(1)
}

func (m *MockListingService) GetByID(ctx context.Context, id int64, includeInactive bool) (*models.Listing, error) {
	args := m.Called(ctx, id, includeInactive)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Listing), args.Error(1)
}

func (m *MockListingService) ListPublic(ctx context.Context, filters services.ListingFilters, page, pageSize int) ([]models.Listing, int, error) {
	args := m.Called(ctx, filters, page, pageSize)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]models.Listing), args.Int(1), args.Error(2)
}

func (m *MockListingService) ListBySeller(ctx context.Context, sellerID int64, statusFilter *string, page, pageSize int) ([]models.Listing, int, error) {
	args := m.Called(ctx, sellerID, statusFilter, page, pageSize)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]models.Listing), args.Int(1), args.Error(2)
}

func (m *MockListingService) ListByStatus(ctx context.Context, status string, page, pageSize int) ([]models.Listing, int, error) {
	args := m.Called(ctx, status, page, pageSize)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]models.Listing), args.Int(1), args.Error(2)
}

func (m *MockListingService) Update(ctx context.Context, id int64, input services.UpdateListingInput, sellerID int64) (*models.Listing, error) {
	args := m.Called(ctx, id, input, sellerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Listing), args.Error(1)
}

func (m *MockListingService) SoftDelete(ctx context.Context, id, sellerID int64) error {
	args := m.Called(ctx, id, sellerID)
	return args.Error(0)
}

func (m *MockListingService) SetStatus(ctx context.Context, id int64, newStatus string, adminID int64) (*models.Listing, error) {
	args := m.Called(ctx, id, newStatus, adminID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Listing), args.Error(1)
}

func (m *MockListingService) AttachImages(ctx context.Context, listingID int64, uploads []services.ImageUpload, sellerID int64, primaryIndex int) ([]models.ListingImage, error) {
	args := m.Called(ctx, listingID, uploads, sellerID, primaryIndex)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.ListingImage), args.Error(1)
}

// MockCategoryService mocks the CategoryService
type MockCategoryService struct {
	mock.Mock
}

func (m *MockCategoryService) Create(ctx context.Context, name, categoryType string, parentID *int64) (*models.Category, error) {
	args := m.Called(ctx, name, categoryType, parentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Category), args.Error(1)
}

func (m *MockCategoryService) GetByID(ctx context.Context, id int64) (*models.Category, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Category), args.Error(1)
}

func (m *MockCategoryService) List(ctx context.Context, typeFilter *string) ([]models.Category, error) {
	args := m.Called(ctx, typeFilter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Category), args.Error(1)
}

func (m *MockCategoryService) Update(ctx context.Context, id int64, name *string, parentID *int64) (*models.Category, error) {
	args := m.Called(ctx, id, name, parentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Category), args.Error(1)
}

func (m *MockCategoryService) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockNotificationService mocks the NotificationService
type MockNotificationService struct {
	mock.Mock
}

func (m *MockNotificationService) NotifyListingModerated(ctx context.Context, listing *models.Listing) (*models.Notification, error) {
	args := m.Called(ctx, listing)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Notification), args.Error(1)
}

func (m *MockNotificationService) ListForUser(ctx context.Context, userID int64, unreadOnly bool) ([]models.Notification, error) {
	args := m.Called(ctx, userID, unreadOnly)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Notification), args.Error(1)
}

func (m *MockNotificationService) MarkRead(ctx context.Context, id, userID int64) error {
	args := m.Called(ctx, id, userID)
	return args.Error(0)
}

func (m *MockNotificationService) MarkAllRead(ctx context.Context, userID int64) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

// MockEmailService mocks the EmailService
type MockEmailService struct {
	mock.Mock
}

func (m *MockEmailService) SendListingModerated(to string, listing *models.Listing) error {
	args := m.Called(to, listing)
	return args.Error(0)
}

func (m *MockEmailService) SendWelcome(to string) error {
	args := m.Called(to)
	return args.Error(0)
}

// MockHostedUI mocks the cognito.HostedUI client
type MockHostedUI struct {
	mock.Mock
}

func (m *MockHostedUI) ConsentURL(state string) string {
	args := m.Called(state)
	return args.String(0)
}

func (m *MockHostedUI) ExchangeCode(ctx context.Context, code string) (*cognito.TokenSet, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*cognito.TokenSet), args.Error(1)
}

// MockVerifier mocks the cognito.Verifier
type MockVerifier struct {
	mock.Mock
}

func (m *MockVerifier) Verify(ctx context.Context, tokenString string) (*cognito.Claims, error) {
	args := m.Called(ctx, tokenString)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*cognito.Claims), args.Error(1)
}
