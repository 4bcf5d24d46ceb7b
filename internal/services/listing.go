package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/avaldes/remarket-api/internal/authz"
	"github.com/avaldes/remarket-api/internal/database"
	"github.com/avaldes/remarket-api/internal/models"
	"github.com/avaldes/remarket-api/internal/storage"
)

var (
	ErrListingNotFound      = errors.New("listing not found")
	ErrCategoryNotFound     = errors.New("category not found")
	ErrCategoryTypeMismatch = errors.New("category type does not match listing type")
	ErrSellerNotEligible    = errors.New("seller account must be active")
	ErrImmutableState       = errors.New("rejected listings cannot be edited")
	ErrImageQuotaExceeded   = errors.New("image quota exceeded")
	ErrInvalidImageType     = errors.New("file is not an image")
	ErrInvalidStatus        = errors.New("invalid listing status")
)

const listingColumns = `id, seller_id, category_id, listing_type, title, description, price, price_unit, quantity, status, approved_by_admin_id, created_at, updated_at`

type CreateListingInput struct {
	CategoryID  int64
	ListingType string
	Title       string
	Description string
	Price       float64
	PriceUnit   *string
	Quantity    int
}

// UpdateListingInput carries partial-update semantics: nil fields are left
// untouched.
type UpdateListingInput struct {
	CategoryID  *int64
	ListingType *string
	Title       *string
	Description *string
	Price       *float64
	PriceUnit   *string
	Quantity    *int
}

type ListingFilters struct {
	ListingType *string
	CategoryID  *int64
	MinPrice    *float64
	MaxPrice    *float64
	Search      *string
	SellerID    *int64
}

type ImageUpload struct {
	Filename    string
	ContentType string
	Data        []byte
}

type ListingService struct {
	db     *database.DB
	images storage.ImageStore
	logger *slog.Logger
}

func NewListingService(db *database.DB, images storage.ImageStore, logger *slog.Logger) *ListingService {
	return &ListingService{
		db:     db,
		images: images,
		logger: logger.With(slog.String("component", "listing_service")),
	}
}

// Create validates the category/type pair and seller eligibility, then
// persists the listing. The status is always PENDING regardless of input.
func (s *ListingService) Create(ctx context.Context, input CreateListingInput, sellerID int64) (*models.Listing, error) {
	tx, err := s.db.Pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := validateCategoryType(ctx, tx, input.CategoryID, input.ListingType); err != nil {
		return nil, err
	}

	var sellerStatus string
	err = tx.QueryRow(ctx, `SELECT status FROM users WHERE id = $1`, sellerID).Scan(&sellerStatus)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSellerNotEligible
		}
		return nil, err
	}
	if sellerStatus != models.StatusActive {
		return nil, ErrSellerNotEligible
	}

	var listing models.Listing
	err = tx.QueryRow(ctx, `
		INSERT INTO listings (seller_id, category_id, listing_type, title, description, price, price_unit, quantity, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, 'PENDING')
		RETURNING `+listingColumns+`
	`, sellerID, input.CategoryID, input.ListingType, input.Title, input.Description,
		input.Price, input.PriceUnit, input.Quantity,
	).Scan(scanTargets(&listing)...)
	if err != nil {
		return nil, fmt.Errorf("failed to create listing: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit: %w", err)
	}

	s.logger.Info("listing created",
		slog.Int64("listing_id", listing.ID),
		slog.Int64("seller_id", sellerID),
	)
	return &listing, nil
}

// GetByID loads a listing with its images. With includeInactive false only
// ACTIVE listings are visible, which is what public reads use.
func (s *ListingService) GetByID(ctx context.Context, id int64, includeInactive bool) (*models.Listing, error) {
	query := `SELECT ` + listingColumns + ` FROM listings WHERE id = $1`
	if !includeInactive {
		query += ` AND status = 'ACTIVE'`
	}

	var listing models.Listing
	err := s.db.Pool.QueryRow(ctx, query, id).Scan(scanTargets(&listing)...)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrListingNotFound
		}
		return nil, err
	}

	images, err := s.listImages(ctx, id)
	if err != nil {
		return nil, err
	}
	listing.Images = images

	return &listing, nil
}

// ListPublic returns ACTIVE listings matching the filters, newest first,
// along with the unpaginated total.
func (s *ListingService) ListPublic(ctx context.Context, filters ListingFilters, page, pageSize int) ([]models.Listing, int, error) {
	where := []string{`status = 'ACTIVE'`}
	args := []any{}

	add := func(cond string, val any) {
		args = append(args, val)
		where = append(where, fmt.Sprintf(cond, len(args)))
	}

	if filters.ListingType != nil {
		add(`listing_type = $%d`, *filters.ListingType)
	}
	if filters.CategoryID != nil {
		add(`category_id = $%d`, *filters.CategoryID)
	}
	if filters.MinPrice != nil {
		add(`price >= $%d`, *filters.MinPrice)
	}
	if filters.MaxPrice != nil {
		add(`price <= $%d`, *filters.MaxPrice)
	}
	if filters.SellerID != nil {
		add(`seller_id = $%d`, *filters.SellerID)
	}
	if filters.Search != nil {
		args = append(args, "%"+*filters.Search+"%")
		where = append(where, fmt.Sprintf(`(title ILIKE $%d OR description ILIKE $%d)`, len(args), len(args)))
	}

	cond := strings.Join(where, " AND ")

	var total int
	if err := s.db.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM listings WHERE `+cond, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	if page < 1 {
		page = 1
	}
	args = append(args, pageSize, (page-1)*pageSize)
	query := fmt.Sprintf(`SELECT %s FROM listings WHERE %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		listingColumns, cond, len(args)-1, len(args))

	listings, err := s.queryListings(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}

	return listings, total, nil
}

// ListByStatus is the moderation queue view: all listings in one status,
// oldest first so the queue drains fairly.
func (s *ListingService) ListByStatus(ctx context.Context, status string, page, pageSize int) ([]models.Listing, int, error) {
	if !models.ValidListingStatus(status) {
		return nil, 0, ErrInvalidStatus
	}

	var total int
	if err := s.db.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM listings WHERE status = $1`, status).Scan(&total); err != nil {
		return nil, 0, err
	}

	if page < 1 {
		page = 1
	}
	query := `SELECT ` + listingColumns + ` FROM listings WHERE status = $1 ORDER BY created_at ASC LIMIT $2 OFFSET $3`

	listings, err := s.queryListings(ctx, query, status, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, 0, err
	}

	return listings, total, nil
}

// ListBySeller returns a seller's own listings in any status, optionally
// narrowed to one.
func (s *ListingService) ListBySeller(ctx context.Context, sellerID int64, statusFilter *string, page, pageSize int) ([]models.Listing, int, error) {
	cond := `seller_id = $1`
	args := []any{sellerID}

	if statusFilter != nil {
		args = append(args, *statusFilter)
		cond += fmt.Sprintf(` AND status = $%d`, len(args))
	}

	var total int
	if err := s.db.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM listings WHERE `+cond, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	if page < 1 {
		page = 1
	}
	args = append(args, pageSize, (page-1)*pageSize)
	query := fmt.Sprintf(`SELECT %s FROM listings WHERE %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		listingColumns, cond, len(args)-1, len(args))

	listings, err := s.queryListings(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}

	return listings, total, nil
}

// Update applies a partial edit by the owning seller. REJECTED listings are
// immutable to the owner; absent fields keep their stored values.
func (s *ListingService) Update(ctx context.Context, id int64, input UpdateListingInput, sellerID int64) (*models.Listing, error) {
	tx, err := s.db.Pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var current models.Listing
	err = tx.QueryRow(ctx, `SELECT `+listingColumns+` FROM listings WHERE id = $1`, id).
		Scan(scanTargets(&current)...)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrListingNotFound
		}
		return nil, err
	}

	if current.SellerID != sellerID {
		return nil, &authz.DenialError{UserID: sellerID, OwnerID: current.SellerID, Require: "ownership", Err: authz.ErrForbidden}
	}
	if current.Status == models.ListingStatusRejected {
		return nil, ErrImmutableState
	}

	// The category/type pair must still match after the patch is applied.
	categoryID := current.CategoryID
	if input.CategoryID != nil {
		categoryID = *input.CategoryID
	}
	listingType := current.ListingType
	if input.ListingType != nil {
		listingType = *input.ListingType
	}
	if categoryID != current.CategoryID || listingType != current.ListingType {
		if err := validateCategoryType(ctx, tx, categoryID, listingType); err != nil {
			return nil, err
		}
	}

	var listing models.Listing
	err = tx.QueryRow(ctx, `
		UPDATE listings SET
			category_id = COALESCE($1, category_id),
			listing_type = COALESCE($2, listing_type),
			title = COALESCE($3, title),
			description = COALESCE($4, description),
			price = COALESCE($5, price),
			price_unit = COALESCE($6, price_unit),
			quantity = COALESCE($7, quantity),
			updated_at = NOW()
		WHERE id = $8
		RETURNING `+listingColumns+`
	`, input.CategoryID, input.ListingType, input.Title, input.Description,
		input.Price, input.PriceUnit, input.Quantity, id,
	).Scan(scanTargets(&listing)...)
	if err != nil {
		return nil, fmt.Errorf("failed to update listing: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit: %w", err)
	}

	s.logger.Info("listing updated", slog.Int64("listing_id", id), slog.Int64("seller_id", sellerID))
	return &listing, nil
}

// SoftDelete sets the listing INACTIVE. Deleting an already-inactive
// listing is a no-op that still succeeds.
func (s *ListingService) SoftDelete(ctx context.Context, id, sellerID int64) error {
	tx, err := s.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var ownerID int64
	err = tx.QueryRow(ctx, `SELECT seller_id FROM listings WHERE id = $1`, id).Scan(&ownerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrListingNotFound
		}
		return err
	}
	if ownerID != sellerID {
		return &authz.DenialError{UserID: sellerID, OwnerID: ownerID, Require: "ownership", Err: authz.ErrForbidden}
	}

	if _, err := tx.Exec(ctx, `
		UPDATE listings SET status = 'INACTIVE', updated_at = NOW() WHERE id = $1
	`, id); err != nil {
		return fmt.Errorf("failed to deactivate listing: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}

	s.logger.Info("listing deactivated", slog.Int64("listing_id", id), slog.Int64("seller_id", sellerID))
	return nil
}

// SetStatus is the admin moderation transition. Approval (ACTIVE) records
// the approving admin. Works on any listing, REJECTED included; the
// admin-role check belongs to the caller.
func (s *ListingService) SetStatus(ctx context.Context, id int64, newStatus string, adminID int64) (*models.Listing, error) {
	if !models.ValidListingStatus(newStatus) {
		return nil, ErrInvalidStatus
	}

	var listing models.Listing
	var err error
	if newStatus == models.ListingStatusActive {
		err = s.db.Pool.QueryRow(ctx, `
			UPDATE listings SET status = $1, approved_by_admin_id = $2, updated_at = NOW()
			WHERE id = $3
			RETURNING `+listingColumns+`
		`, newStatus, adminID, id).Scan(scanTargets(&listing)...)
	} else {
		err = s.db.Pool.QueryRow(ctx, `
			UPDATE listings SET status = $1, updated_at = NOW()
			WHERE id = $2
			RETURNING `+listingColumns+`
		`, newStatus, id).Scan(scanTargets(&listing)...)
	}
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrListingNotFound
		}
		return nil, err
	}

	s.logger.Info("listing moderated",
		slog.Int64("listing_id", id),
		slog.String("status", newStatus),
		slog.Int64("admin_id", adminID),
	)
	return &listing, nil
}

// AttachImages stores a batch of images for the owner's listing. The quota
// counts existing plus new. Exactly one image of the listing is primary:
// the first batch elects one at primaryIndex, later batches never steal
// the flag.
func (s *ListingService) AttachImages(ctx context.Context, listingID int64, uploads []ImageUpload, sellerID int64, primaryIndex int) ([]models.ListingImage, error) {
	for _, u := range uploads {
		if !strings.HasPrefix(u.ContentType, "image/") {
			return nil, fmt.Errorf("%s: %w", u.Filename, ErrInvalidImageType)
		}
	}

	tx, err := s.db.Pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var ownerID int64
	err = tx.QueryRow(ctx, `SELECT seller_id FROM listings WHERE id = $1`, listingID).Scan(&ownerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrListingNotFound
		}
		return nil, err
	}
	if ownerID != sellerID {
		return nil, &authz.DenialError{UserID: sellerID, OwnerID: ownerID, Require: "ownership", Err: authz.ErrForbidden}
	}

	var existing int
	if err := tx.QueryRow(ctx, `SELECT COUNT(*) FROM listing_images WHERE listing_id = $1`, listingID).Scan(&existing); err != nil {
		return nil, err
	}
	if existing+len(uploads) > models.MaxListingImages {
		return nil, fmt.Errorf("listing has %d images: %w", existing, ErrImageQuotaExceeded)
	}

	if primaryIndex < 0 || primaryIndex >= len(uploads) {
		primaryIndex = 0
	}

	folder := fmt.Sprintf("listings/%d", listingID)
	attached := make([]models.ListingImage, 0, len(uploads))
	for idx, u := range uploads {
		url, err := s.images.Save(ctx, folder, u.Filename, u.ContentType, u.Data)
		if err != nil {
			return nil, fmt.Errorf("failed to store image: %w", err)
		}

		isPrimary := existing == 0 && idx == primaryIndex

		var img models.ListingImage
		err = tx.QueryRow(ctx, `
			INSERT INTO listing_images (listing_id, image_url, is_primary)
			VALUES ($1, $2, $3)
			RETURNING id, listing_id, image_url, is_primary, created_at
		`, listingID, url, isPrimary).Scan(&img.ID, &img.ListingID, &img.ImageURL, &img.IsPrimary, &img.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to record image: %w", err)
		}
		attached = append(attached, img)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit: %w", err)
	}

	s.logger.Info("images attached",
		slog.Int64("listing_id", listingID),
		slog.Int("count", len(attached)),
	)
	return attached, nil
}

func (s *ListingService) listImages(ctx context.Context, listingID int64) ([]models.ListingImage, error) {
	rows, err := s.db.Pool.Query(ctx, `
		SELECT id, listing_id, image_url, is_primary, created_at
		FROM listing_images WHERE listing_id = $1
		ORDER BY id
	`, listingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var images []models.ListingImage
	for rows.Next() {
		var img models.ListingImage
		if err := rows.Scan(&img.ID, &img.ListingID, &img.ImageURL, &img.IsPrimary, &img.CreatedAt); err != nil {
			return nil, err
		}
		images = append(images, img)
	}
	return images, rows.Err()
}

func (s *ListingService) queryListings(ctx context.Context, query string, args ...any) ([]models.Listing, error) {
	rows, err := s.db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var listings []models.Listing
	for rows.Next() {
		var l models.Listing
		if err := rows.Scan(scanTargets(&l)...); err != nil {
			return nil, err
		}
		listings = append(listings, l)
	}
	return listings, rows.Err()
}

// validateCategoryType checks the category exists and its type equals the
// listing's declared type.
func validateCategoryType(ctx context.Context, q pgx.Tx, categoryID int64, listingType string) error {
	var categoryType string
	err := q.QueryRow(ctx, `SELECT type FROM categories WHERE id = $1`, categoryID).Scan(&categoryType)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrCategoryNotFound
		}
		return err
	}
	if categoryType != listingType {
		return fmt.Errorf("category is %s: %w", categoryType, ErrCategoryTypeMismatch)
	}
	return nil
}

func scanTargets(l *models.Listing) []any {
	return []any{
		&l.ID, &l.SellerID, &l.CategoryID, &l.ListingType, &l.Title, &l.Description,
		&l.Price, &l.PriceUnit, &l.Quantity, &l.Status, &l.ApprovedByAdmin,
		&l.CreatedAt, &l.UpdatedAt,
	}
}
