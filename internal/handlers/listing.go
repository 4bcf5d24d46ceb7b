package handlers

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strconv"
	"time"

	"github.com/m1z23r/drift/pkg/drift"

	"github.com/avaldes/remarket-api/internal/authz"
	"github.com/avaldes/remarket-api/internal/middleware"
	"github.com/avaldes/remarket-api/internal/models"
	"github.com/avaldes/remarket-api/internal/services"
	"github.com/avaldes/remarket-api/pkg/dto"
)

// Request bodies stay small; image uploads get their own cap.
const maxUploadBytes = 32 << 20

type ListingHandler struct {
	listingService      ListingServiceInterface
	userService         UserServiceInterface
	notificationService NotificationServiceInterface
	emailService        EmailServiceInterface
	logger              *slog.Logger
}

func NewListingHandler(
	listingService ListingServiceInterface,
	userService UserServiceInterface,
	notificationService NotificationServiceInterface,
	emailService EmailServiceInterface,
	logger *slog.Logger,
) *ListingHandler {
	return &ListingHandler{
		listingService:      listingService,
		userService:         userService,
		notificationService: notificationService,
		emailService:        emailService,
		logger:              logger.With(slog.String("component", "listing_handler")),
	}
}

// List is the public browse endpoint. Only ACTIVE listings are returned.
func (h *ListingHandler) List(c *drift.Context) {
	filters := services.ListingFilters{}

	if t := c.QueryParam("type"); t != "" {
		if !models.ValidListingType(t) {
			c.BadRequest("unknown listing type")
			return
		}
		filters.ListingType = &t
	}
	if v := c.QueryParam("category_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			c.BadRequest("invalid category_id")
			return
		}
		filters.CategoryID = &id
	}
	if v := c.QueryParam("min_price"); v != "" {
		p, err := strconv.ParseFloat(v, 64)
		if err != nil {
			c.BadRequest("invalid min_price")
			return
		}
		filters.MinPrice = &p
	}
	if v := c.QueryParam("max_price"); v != "" {
		p, err := strconv.ParseFloat(v, 64)
		if err != nil {
			c.BadRequest("invalid max_price")
			return
		}
		filters.MaxPrice = &p
	}
	if q := c.QueryParam("q"); q != "" {
		filters.Search = &q
	}

	page, pageSize := parsePagination(c)

	listings, total, err := h.listingService.ListPublic(context.Background(), filters, page, pageSize)
	if err != nil {
		c.InternalServerError("failed to list listings")
		return
	}

	_ = c.JSON(200, toListingPage(listings, total, page, pageSize))
}

func (h *ListingHandler) Get(c *drift.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		c.BadRequest("invalid listing id")
		return
	}

	// Owners and admins can see listings in any state.
	includeInactive := false
	if user := middleware.GetUser(c); user != nil {
		includeInactive = true
	}

	listing, err := h.listingService.GetByID(context.Background(), id, includeInactive)
	if err != nil {
		if errors.Is(err, services.ErrListingNotFound) {
			c.NotFound("listing not found")
			return
		}
		c.InternalServerError("failed to get listing")
		return
	}

	if listing.Status != models.ListingStatusActive {
		user := middleware.GetUser(c)
		if user == nil || authz.RequireOwnerOrAdmin(listing.SellerID, user) != nil {
			c.NotFound("listing not found")
			return
		}
	}

	_ = c.JSON(200, toListingResponse(listing))
}

func (h *ListingHandler) Create(c *drift.Context) {
	user := middleware.GetUser(c)
	if user == nil {
		c.Unauthorized("not authenticated")
		return
	}

	var req dto.CreateListingRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	if req.Title == "" {
		c.BadRequest("title is required")
		return
	}
	if !models.ValidListingType(req.ListingType) {
		c.BadRequest("unknown listing type")
		return
	}
	if req.Price < 0 {
		c.BadRequest("price must not be negative")
		return
	}
	if req.Quantity < 1 {
		c.BadRequest("quantity must be at least 1")
		return
	}

	listing, err := h.listingService.Create(context.Background(), services.CreateListingInput{
		CategoryID:  req.CategoryID,
		ListingType: req.ListingType,
		Title:       req.Title,
		Description: req.Description,
		Price:       req.Price,
		PriceUnit:   req.PriceUnit,
		Quantity:    req.Quantity,
	}, user.ID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrCategoryNotFound):
			c.BadRequest("category not found")
		case errors.Is(err, services.ErrCategoryTypeMismatch):
			c.BadRequest("category type does not match listing type")
		case errors.Is(err, services.ErrSellerNotEligible):
			c.Forbidden("account must be active to publish listings")
		default:
			c.InternalServerError("failed to create listing")
		}
		return
	}

	_ = c.JSON(201, toListingResponse(listing))
}

// MyListings returns the caller's own listings in any status.
func (h *ListingHandler) MyListings(c *drift.Context) {
	user := middleware.GetUser(c)
	if user == nil {
		c.Unauthorized("not authenticated")
		return
	}

	var statusFilter *string
	if s := c.QueryParam("status"); s != "" {
		if !models.ValidListingStatus(s) {
			c.BadRequest("unknown listing status")
			return
		}
		statusFilter = &s
	}

	page, pageSize := parsePagination(c)

	listings, total, err := h.listingService.ListBySeller(context.Background(), user.ID, statusFilter, page, pageSize)
	if err != nil {
		c.InternalServerError("failed to list listings")
		return
	}

	_ = c.JSON(200, toListingPage(listings, total, page, pageSize))
}

func (h *ListingHandler) Update(c *drift.Context) {
	user := middleware.GetUser(c)
	if user == nil {
		c.Unauthorized("not authenticated")
		return
	}

	id, err := parseIDParam(c, "id")
	if err != nil {
		c.BadRequest("invalid listing id")
		return
	}

	var req dto.UpdateListingRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	if req.ListingType != nil && !models.ValidListingType(*req.ListingType) {
		c.BadRequest("unknown listing type")
		return
	}
	if req.Price != nil && *req.Price < 0 {
		c.BadRequest("price must not be negative")
		return
	}

	listing, err := h.listingService.Update(context.Background(), id, services.UpdateListingInput{
		CategoryID:  req.CategoryID,
		ListingType: req.ListingType,
		Title:       req.Title,
		Description: req.Description,
		Price:       req.Price,
		PriceUnit:   req.PriceUnit,
		Quantity:    req.Quantity,
	}, user.ID)
	if err != nil {
		h.respondListingError(c, err)
		return
	}

	_ = c.JSON(200, toListingResponse(listing))
}

func (h *ListingHandler) Delete(c *drift.Context) {
	user := middleware.GetUser(c)
	if user == nil {
		c.Unauthorized("not authenticated")
		return
	}

	id, err := parseIDParam(c, "id")
	if err != nil {
		c.BadRequest("invalid listing id")
		return
	}

	if err := h.listingService.SoftDelete(context.Background(), id, user.ID); err != nil {
		h.respondListingError(c, err)
		return
	}

	_ = c.JSON(200, map[string]string{"message": "listing deactivated"})
}

// UploadImages accepts multipart form files under the "images" field. An
// optional "primary_index" selects the primary image for the first batch.
func (h *ListingHandler) UploadImages(c *drift.Context) {
	user := middleware.GetUser(c)
	if user == nil {
		c.Unauthorized("not authenticated")
		return
	}

	id, err := parseIDParam(c, "id")
	if err != nil {
		c.BadRequest("invalid listing id")
		return
	}

	if err := c.Request.ParseMultipartForm(maxUploadBytes); err != nil {
		c.BadRequest("invalid multipart form")
		return
	}

	files := c.Request.MultipartForm.File["images"]
	if len(files) == 0 {
		c.BadRequest("no images provided")
		return
	}

	primaryIndex := 0
	if v := c.Request.FormValue("primary_index"); v != "" {
		if idx, err := strconv.Atoi(v); err == nil {
			primaryIndex = idx
		}
	}

	uploads := make([]services.ImageUpload, 0, len(files))
	for _, fh := range files {
		f, err := fh.Open()
		if err != nil {
			c.BadRequest("unreadable file: " + fh.Filename)
			return
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			c.BadRequest("unreadable file: " + fh.Filename)
			return
		}

		uploads = append(uploads, services.ImageUpload{
			Filename:    fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Data:        data,
		})
	}

	images, err := h.listingService.AttachImages(context.Background(), id, uploads, user.ID, primaryIndex)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrImageQuotaExceeded):
			c.BadRequest("image quota exceeded")
		case errors.Is(err, services.ErrInvalidImageType):
			c.BadRequest("only image files are accepted")
		default:
			h.respondListingError(c, err)
		}
		return
	}

	response := make([]dto.ListingImageResponse, len(images))
	for i, img := range images {
		response[i] = dto.ListingImageResponse{ID: img.ID, ImageURL: img.ImageURL, IsPrimary: img.IsPrimary}
	}

	_ = c.JSON(201, response)
}

// ModerationQueue lists listings awaiting review, oldest first. Admin only.
func (h *ListingHandler) ModerationQueue(c *drift.Context) {
	page, pageSize := parsePagination(c)

	listings, total, err := h.listingService.ListByStatus(context.Background(), models.ListingStatusPending, page, pageSize)
	if err != nil {
		c.InternalServerError("failed to list pending listings")
		return
	}

	_ = c.JSON(200, toListingPage(listings, total, page, pageSize))
}

// Moderate applies an admin status decision, then notifies the seller
// in-app and by email. Notification failures don't undo the decision.
func (h *ListingHandler) Moderate(c *drift.Context) {
	admin := middleware.GetUser(c)
	if admin == nil {
		c.Unauthorized("not authenticated")
		return
	}

	id, err := parseIDParam(c, "id")
	if err != nil {
		c.BadRequest("invalid listing id")
		return
	}

	var req dto.ModerateListingRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	ctx := context.Background()

	listing, err := h.listingService.SetStatus(ctx, id, req.Status, admin.ID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidStatus):
			c.BadRequest("unknown listing status")
		case errors.Is(err, services.ErrListingNotFound):
			c.NotFound("listing not found")
		default:
			c.InternalServerError("failed to update listing status")
		}
		return
	}

	if _, err := h.notificationService.NotifyListingModerated(ctx, listing); err != nil {
		h.logger.Warn("moderation notification failed",
			slog.Int64("listing_id", listing.ID),
			slog.String("error", err.Error()),
		)
	}

	if seller, err := h.userService.GetByID(ctx, listing.SellerID); err == nil {
		if err := h.emailService.SendListingModerated(seller.Email, listing); err != nil {
			h.logger.Warn("moderation email failed",
				slog.Int64("listing_id", listing.ID),
				slog.String("error", err.Error()),
			)
		}
	}

	_ = c.JSON(200, toListingResponse(listing))
}

func (h *ListingHandler) respondListingError(c *drift.Context, err error) {
	switch {
	case errors.Is(err, services.ErrListingNotFound):
		c.NotFound("listing not found")
	case errors.Is(err, authz.ErrForbidden):
		c.Forbidden("you do not own this listing")
	case errors.Is(err, services.ErrImmutableState):
		c.Forbidden("rejected listings cannot be edited")
	case errors.Is(err, services.ErrCategoryNotFound):
		c.BadRequest("category not found")
	case errors.Is(err, services.ErrCategoryTypeMismatch):
		c.BadRequest("category type does not match listing type")
	default:
		c.InternalServerError("listing operation failed")
	}
}

func toListingResponse(listing *models.Listing) dto.ListingResponse {
	images := make([]dto.ListingImageResponse, len(listing.Images))
	for i, img := range listing.Images {
		images[i] = dto.ListingImageResponse{ID: img.ID, ImageURL: img.ImageURL, IsPrimary: img.IsPrimary}
	}

	return dto.ListingResponse{
		ID:          listing.ID,
		SellerID:    listing.SellerID,
		CategoryID:  listing.CategoryID,
		ListingType: listing.ListingType,
		Title:       listing.Title,
		Description: listing.Description,
		Price:       listing.Price,
		PriceUnit:   listing.PriceUnit,
		Quantity:    listing.Quantity,
		Status:      listing.Status,
		Images:      images,
		CreatedAt:   listing.CreatedAt.Format(time.RFC3339),
	}
}

func toListingPage(listings []models.Listing, total, page, pageSize int) dto.ListingPageResponse {
	items := make([]dto.ListingResponse, len(listings))
	for i := range listings {
		items[i] = toListingResponse(&listings[i])
	}

	return dto.ListingPageResponse{
		Items:    items,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	}
}
