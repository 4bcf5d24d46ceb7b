package testutil

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"

	"github.com/avaldes/remarket-api/internal/database"
	"github.com/avaldes/remarket-api/internal/models"
)

// Fixtures provides factory methods for creating test data
type Fixtures struct {
	db      *database.DB
	counter int
}

// NewFixtures creates a new fixtures factory
func NewFixtures(db *database.DB) *Fixtures {
	return &Fixtures{db: db}
}

// CreateUser creates a test user with default values (ACTIVE, role USER)
func (f *Fixtures) CreateUser(t *testing.T, opts ...UserOption) *models.User {
	t.Helper()
	f.counter++

	user := &models.User{
		CognitoSub: uuid.New().String(),
		Email:      fmt.Sprintf("user%d@example.com", f.counter),
		Role:       models.RoleUser,
		Status:     models.StatusActive,
	}

	for _, opt := range opts {
		opt(user)
	}

	ctx := context.Background()
	err := f.db.Pool.QueryRow(ctx, `
		INSERT INTO users (cognito_sub, email, full_name, role, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`, user.CognitoSub, user.Email, user.FullName, user.Role, user.Status).Scan(
		&user.ID, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		t.Fatalf("failed to create user: %v", err)
	}

	return user
}

// UserOption configures a test user
type UserOption func(*models.User)

// WithEmail sets the user's email
func WithEmail(email string) UserOption {
	return func(u *models.User) {
		u.Email = email
	}
}

// WithRole sets the user's role
func WithRole(role string) UserOption {
	return func(u *models.User) {
		u.Role = role
	}
}

// WithStatus sets the user's account status
func WithStatus(status string) UserOption {
	return func(u *models.User) {
		u.Status = status
	}
}

// WithCognitoSub sets the user's identity subject
func WithCognitoSub(sub string) UserOption {
	return func(u *models.User) {
		u.CognitoSub = sub
	}
}

// CreateCategory creates a test category
func (f *Fixtures) CreateCategory(t *testing.T, name, categoryType string, parentID *int64) *models.Category {
	t.Helper()
	f.counter++

	category := &models.Category{
		Name:     name,
		Slug:     fmt.Sprintf("%s-%d", name, f.counter),
		Type:     categoryType,
		ParentID: parentID,
	}

	ctx := context.Background()
	err := f.db.Pool.QueryRow(ctx, `
		INSERT INTO categories (name, slug, type, parent_category_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at
	`, category.Name, category.Slug, category.Type, category.ParentID).Scan(
		&category.ID, &category.CreatedAt, &category.UpdatedAt,
	)
	if err != nil {
		t.Fatalf("failed to create category: %v", err)
	}

	return category
}

// CreateListing creates a test listing owned by sellerID
func (f *Fixtures) CreateListing(t *testing.T, sellerID, categoryID int64, opts ...ListingOption) *models.Listing {
	t.Helper()
	f.counter++

	listing := &models.Listing{
		SellerID:    sellerID,
		CategoryID:  categoryID,
		ListingType: models.ListingTypeMaterial,
		Title:       fmt.Sprintf("Listing %d", f.counter),
		Description: "Test listing",
		Price:       10.0,
		Quantity:    1,
		Status:      models.ListingStatusPending,
	}

	for _, opt := range opts {
		opt(listing)
	}

	ctx := context.Background()
	err := f.db.Pool.QueryRow(ctx, `
		INSERT INTO listings (seller_id, category_id, listing_type, title, description, price, price_unit, quantity, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, updated_at
	`, listing.SellerID, listing.CategoryID, listing.ListingType, listing.Title,
		listing.Description, listing.Price, listing.PriceUnit, listing.Quantity, listing.Status).Scan(
		&listing.ID, &listing.CreatedAt, &listing.UpdatedAt,
	)
	if err != nil {
		t.Fatalf("failed to create listing: %v", err)
	}

	return listing
}

// ListingOption configures a test listing
type ListingOption func(*models.Listing)

// WithListingStatus sets the listing status
func WithListingStatus(status string) ListingOption {
	return func(l *models.Listing) {
		l.Status = status
	}
}

// WithListingType sets the listing type
func WithListingType(listingType string) ListingOption {
	return func(l *models.Listing) {
		l.ListingType = listingType
	}
}

// WithTitle sets the listing title
func WithTitle(title string) ListingOption {
	return func(l *models.Listing) {
		l.Title = title
	}
}

// WithPrice sets the listing price
func WithPrice(price float64) ListingOption {
	return func(l *models.Listing) {
		l.Price = price
	}
}
