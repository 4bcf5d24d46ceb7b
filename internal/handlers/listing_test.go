package handlers

import (
	"net/http"
	"testing"
	"time"

	"github.com/m1z23r/drift/pkg/drift"
	driftmw "github.com/m1z23r/drift/pkg/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/avaldes/remarket-api/internal/models"
	"github.com/avaldes/remarket-api/internal/services"
	"github.com/avaldes/remarket-api/pkg/dto"
	"github.com/avaldes/remarket-api/tests/testutil"
)

type listingMocks struct {
	listings      *testutil.MockListingService
	users         *testutil.MockUserService
	notifications *testutil.MockNotificationService
	emails        *testutil.MockEmailService
}

func newListingHandler() (*ListingHandler, listingMocks) {
	m := listingMocks{
		listings:      new(testutil.MockListingService),
		users:         new(testutil.MockUserService),
		notifications: new(testutil.MockNotificationService),
		emails:        new(testutil.MockEmailService),
	}
	h := NewListingHandler(m.listings, m.users, m.notifications, m.emails, testLogger())
	return h, m
}

func sampleListing(id, sellerID int64, status string) *models.Listing {
	return &models.Listing{
		ID:          id,
		SellerID:    sellerID,
		CategoryID:  5,
		ListingType: models.ListingTypeMaterial,
		Title:       "Scrap copper",
		Description: "Clean copper wire",
		Price:       12.50,
		Quantity:    3,
		Status:      status,
		CreatedAt:   time.Now(),
	}
}

func TestListingHandler_List_Public(t *testing.T) {
	handler, m := newListingHandler()

	m.listings.On("ListPublic", mock.Anything, mock.Anything, 1, 20).
		Return([]models.Listing{*sampleListing(1, 10, models.ListingStatusActive)}, 1, nil)

	app := drift.New()
	app.Get("/listings", handler.List)

	client := testutil.NewHTTPTestClient(t, app)
	rec := client.GET("/listings", nil)

	assert.Equal(t, http.StatusOK, rec.Code)

	var response dto.ListingPageResponse
	testutil.DecodeJSON(t, rec, &response)
	assert.Equal(t, 1, response.Total)
	require.Len(t, response.Items, 1)
	assert.Equal(t, "Scrap copper", response.Items[0].Title)

	m.listings.AssertExpectations(t)
}

func TestListingHandler_List_FilterValidation(t *testing.T) {
	handler, _ := newListingHandler()

	app := drift.New()
	app.Get("/listings", handler.List)

	client := testutil.NewHTTPTestClient(t, app)

	assert.Equal(t, http.StatusBadRequest, client.GET("/listings?type=SERVICE", nil).Code)
	assert.Equal(t, http.StatusBadRequest, client.GET("/listings?min_price=abc", nil).Code)
	assert.Equal(t, http.StatusBadRequest, client.GET("/listings?category_id=zzz", nil).Code)
}

func TestListingHandler_Get_ActiveIsPublic(t *testing.T) {
	handler, m := newListingHandler()

	m.listings.On("GetByID", mock.Anything, int64(1), false).
		Return(sampleListing(1, 10, models.ListingStatusActive), nil)

	app := drift.New()
	app.Get("/listings/:id", handler.Get)

	client := testutil.NewHTTPTestClient(t, app)
	rec := client.GET("/listings/1", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	m.listings.AssertExpectations(t)
}

func TestListingHandler_Get_PendingHiddenFromStrangers(t *testing.T) {
	handler, m := newListingHandler()

	m.listings.On("GetByID", mock.Anything, int64(1), true).
		Return(sampleListing(1, 10, models.ListingStatusPending), nil)

	app := drift.New()
	app.Use(authAs(activeUser(99)))
	app.Get("/listings/:id", handler.Get)

	client := testutil.NewHTTPTestClient(t, app)
	rec := client.GET("/listings/1", nil)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	m.listings.AssertExpectations(t)
}

func TestListingHandler_Get_PendingVisibleToOwner(t *testing.T) {
	handler, m := newListingHandler()

	m.listings.On("GetByID", mock.Anything, int64(1), true).
		Return(sampleListing(1, 10, models.ListingStatusPending), nil)

	app := drift.New()
	app.Use(authAs(activeUser(10)))
	app.Get("/listings/:id", handler.Get)

	client := testutil.NewHTTPTestClient(t, app)
	rec := client.GET("/listings/1", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	m.listings.AssertExpectations(t)
}

func TestListingHandler_Create(t *testing.T) {
	handler, m := newListingHandler()
	user := activeUser(10)

	m.listings.On("Create", mock.Anything, mock.MatchedBy(func(input services.CreateListingInput) bool {
		return input.Title == "Scrap copper" && input.CategoryID == 5
	}), int64(10)).Return(sampleListing(1, 10, models.ListingStatusPending), nil)

	app := drift.New()
	app.Use(driftmw.BodyParser())
	app.Use(authAs(user))
	app.Post("/listings", handler.Create)

	client := testutil.NewHTTPTestClient(t, app)
	rec := client.POST("/listings", dto.CreateListingRequest{
		CategoryID:  5,
		ListingType: models.ListingTypeMaterial,
		Title:       "Scrap copper",
		Description: "Clean copper wire",
		Price:       12.50,
		Quantity:    3,
	}, nil)

	assert.Equal(t, http.StatusCreated, rec.Code)

	var response dto.ListingResponse
	testutil.DecodeJSON(t, rec, &response)
	assert.Equal(t, models.ListingStatusPending, response.Status)

	m.listings.AssertExpectations(t)
}

func TestListingHandler_Create_Validation(t *testing.T) {
	handler, _ := newListingHandler()

	app := drift.New()
	app.Use(driftmw.BodyParser())
	app.Use(authAs(activeUser(10)))
	app.Post("/listings", handler.Create)

	client := testutil.NewHTTPTestClient(t, app)

	tests := []struct {
		name string
		req  dto.CreateListingRequest
	}{
		{"missing title", dto.CreateListingRequest{CategoryID: 5, ListingType: models.ListingTypeMaterial, Quantity: 1}},
		{"bad type", dto.CreateListingRequest{CategoryID: 5, ListingType: "SERVICE", Title: "x", Quantity: 1}},
		{"negative price", dto.CreateListingRequest{CategoryID: 5, ListingType: models.ListingTypeMaterial, Title: "x", Price: -1, Quantity: 1}},
		{"zero quantity", dto.CreateListingRequest{CategoryID: 5, ListingType: models.ListingTypeMaterial, Title: "x", Quantity: 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := client.POST("/listings", tt.req, nil)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestListingHandler_Create_PendingSeller(t *testing.T) {
	handler, m := newListingHandler()

	m.listings.On("Create", mock.Anything, mock.Anything, int64(10)).
		Return(nil, services.ErrSellerNotEligible)

	app := drift.New()
	app.Use(driftmw.BodyParser())
	app.Use(authAs(activeUser(10)))
	app.Post("/listings", handler.Create)

	client := testutil.NewHTTPTestClient(t, app)
	rec := client.POST("/listings", dto.CreateListingRequest{
		CategoryID:  5,
		ListingType: models.ListingTypeMaterial,
		Title:       "Scrap copper",
		Quantity:    1,
	}, nil)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	m.listings.AssertExpectations(t)
}

func TestListingHandler_Update_Forbidden(t *testing.T) {
	handler, m := newListingHandler()

	m.listings.On("Update", mock.Anything, int64(1), mock.Anything, int64(99)).
		Return(nil, services.ErrImmutableState)

	app := drift.New()
	app.Use(driftmw.BodyParser())
	app.Use(authAs(activeUser(99)))
	app.Patch("/listings/:id", handler.Update)

	title := "New title"
	client := testutil.NewHTTPTestClient(t, app)
	rec := client.PATCH("/listings/1", dto.UpdateListingRequest{Title: &title}, nil)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "rejected listings cannot be edited")
	m.listings.AssertExpectations(t)
}

func TestListingHandler_Delete(t *testing.T) {
	handler, m := newListingHandler()

	m.listings.On("SoftDelete", mock.Anything, int64(1), int64(10)).Return(nil)

	app := drift.New()
	app.Use(authAs(activeUser(10)))
	app.Delete("/listings/:id", handler.Delete)

	client := testutil.NewHTTPTestClient(t, app)
	rec := client.DELETE("/listings/1", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	m.listings.AssertExpectations(t)
}

func TestListingHandler_MyListings(t *testing.T) {
	handler, m := newListingHandler()

	m.listings.On("ListBySeller", mock.Anything, int64(10), (*string)(nil), 1, 20).
		Return([]models.Listing{*sampleListing(1, 10, models.ListingStatusPending)}, 1, nil)

	app := drift.New()
	app.Use(authAs(activeUser(10)))
	app.Get("/listings/mine", handler.MyListings)

	client := testutil.NewHTTPTestClient(t, app)
	rec := client.GET("/listings/mine", nil)

	assert.Equal(t, http.StatusOK, rec.Code)

	var response dto.ListingPageResponse
	testutil.DecodeJSON(t, rec, &response)
	assert.Equal(t, 1, response.Total)

	m.listings.AssertExpectations(t)
}

func TestListingHandler_ModerationQueue(t *testing.T) {
	handler, m := newListingHandler()

	m.listings.On("ListByStatus", mock.Anything, models.ListingStatusPending, 1, 20).
		Return([]models.Listing{*sampleListing(1, 10, models.ListingStatusPending)}, 1, nil)

	app := drift.New()
	app.Use(authAs(adminUser(2)))
	app.Get("/admin/listings/pending", handler.ModerationQueue)

	client := testutil.NewHTTPTestClient(t, app)
	rec := client.GET("/admin/listings/pending", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	m.listings.AssertExpectations(t)
}

func TestListingHandler_Moderate_ApproveNotifiesSeller(t *testing.T) {
	handler, m := newListingHandler()
	admin := adminUser(2)
	approved := sampleListing(1, 10, models.ListingStatusActive)
	seller := activeUser(10)

	m.listings.On("SetStatus", mock.Anything, int64(1), models.ListingStatusActive, int64(2)).
		Return(approved, nil)
	m.notifications.On("NotifyListingModerated", mock.Anything, approved).
		Return(&models.Notification{ID: 1}, nil)
	m.users.On("GetByID", mock.Anything, int64(10)).Return(seller, nil)
	m.emails.On("SendListingModerated", seller.Email, approved).Return(nil)

	app := drift.New()
	app.Use(driftmw.BodyParser())
	app.Use(authAs(admin))
	app.Post("/admin/listings/:id/status", handler.Moderate)

	client := testutil.NewHTTPTestClient(t, app)
	rec := client.POST("/admin/listings/1/status", dto.ModerateListingRequest{Status: models.ListingStatusActive}, nil)

	assert.Equal(t, http.StatusOK, rec.Code)

	m.listings.AssertExpectations(t)
	m.notifications.AssertExpectations(t)
	m.emails.AssertExpectations(t)
}

func TestListingHandler_Moderate_NotificationFailureDoesNotFailRequest(t *testing.T) {
	handler, m := newListingHandler()
	rejected := sampleListing(1, 10, models.ListingStatusRejected)
	seller := activeUser(10)

	m.listings.On("SetStatus", mock.Anything, int64(1), models.ListingStatusRejected, int64(2)).
		Return(rejected, nil)
	m.notifications.On("NotifyListingModerated", mock.Anything, rejected).
		Return(nil, assert.AnError)
	m.users.On("GetByID", mock.Anything, int64(10)).Return(seller, nil)
	m.emails.On("SendListingModerated", seller.Email, rejected).Return(nil)

	app := drift.New()
	app.Use(driftmw.BodyParser())
	app.Use(authAs(adminUser(2)))
	app.Post("/admin/listings/:id/status", handler.Moderate)

	client := testutil.NewHTTPTestClient(t, app)
	rec := client.POST("/admin/listings/1/status", dto.ModerateListingRequest{Status: models.ListingStatusRejected}, nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	m.listings.AssertExpectations(t)
}

func TestListingHandler_Moderate_InvalidStatus(t *testing.T) {
	handler, m := newListingHandler()

	m.listings.On("SetStatus", mock.Anything, int64(1), "SOLD", int64(2)).
		Return(nil, services.ErrInvalidStatus)

	app := drift.New()
	app.Use(driftmw.BodyParser())
	app.Use(authAs(adminUser(2)))
	app.Post("/admin/listings/:id/status", handler.Moderate)

	client := testutil.NewHTTPTestClient(t, app)
	rec := client.POST("/admin/listings/1/status", dto.ModerateListingRequest{Status: "SOLD"}, nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	m.listings.AssertExpectations(t)
}
