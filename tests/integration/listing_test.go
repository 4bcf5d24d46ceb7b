package integration

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avaldes/remarket-api/internal/models"
	"github.com/avaldes/remarket-api/internal/services"
	"github.com/avaldes/remarket-api/internal/storage"
	"github.com/avaldes/remarket-api/tests/testutil"
)

func newListingService(t *testing.T, tdb *testutil.TestDB) *services.ListingService {
	t.Helper()
	store := storage.NewLocalStore(t.TempDir(), "/static/uploads")
	return services.NewListingService(tdb.DB, store, testLogger())
}

func TestListingService_Integration_ModerationLifecycle(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	tdb := setupTest(t)
	fixtures := testutil.NewFixtures(tdb.DB)
	listingSvc := newListingService(t, tdb)
	notificationSvc := services.NewNotificationService(tdb.DB, testLogger())
	ctx := context.Background()

	seller := fixtures.CreateUser(t)
	admin := fixtures.CreateUser(t, testutil.WithRole(models.RoleAdmin))
	category := fixtures.CreateCategory(t, "Scrap Copper", models.ListingTypeMaterial, nil)

	listing, err := listingSvc.Create(ctx, services.CreateListingInput{
		CategoryID:  category.ID,
		ListingType: models.ListingTypeMaterial,
		Title:       "Copper wire offcuts",
		Description: "Roughly 40kg of stripped copper",
		Price:       5.50,
		Quantity:    40,
	}, seller.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ListingStatusPending, listing.Status)

	// Pending listings are not publicly visible.
	_, err = listingSvc.GetByID(ctx, listing.ID, false)
	assert.ErrorIs(t, err, services.ErrListingNotFound)

	// The moderation queue sees them.
	queue, total, err := listingSvc.ListByStatus(ctx, models.ListingStatusPending, 1, 20)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, queue, 1)
	assert.Equal(t, listing.ID, queue[0].ID)

	approved, err := listingSvc.SetStatus(ctx, listing.ID, models.ListingStatusActive, admin.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ListingStatusActive, approved.Status)
	require.NotNil(t, approved.ApprovedByAdmin)
	assert.Equal(t, admin.ID, *approved.ApprovedByAdmin)

	_, err = notificationSvc.NotifyListingModerated(ctx, approved)
	require.NoError(t, err)

	notifications, err := notificationSvc.ListForUser(ctx, seller.ID, true)
	require.NoError(t, err)
	require.Len(t, notifications, 1)
	assert.Equal(t, models.NotificationListingApproved, notifications[0].Type)

	// Now public.
	visible, err := listingSvc.GetByID(ctx, listing.ID, false)
	require.NoError(t, err)
	assert.Equal(t, "Copper wire offcuts", visible.Title)
}

func TestListingService_Integration_RejectedIsImmutableToOwner(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	tdb := setupTest(t)
	fixtures := testutil.NewFixtures(tdb.DB)
	listingSvc := newListingService(t, tdb)
	ctx := context.Background()

	seller := fixtures.CreateUser(t)
	admin := fixtures.CreateUser(t, testutil.WithRole(models.RoleAdmin))
	category := fixtures.CreateCategory(t, "Phones", models.ListingTypeProduct, nil)

	listing := fixtures.CreateListing(t, seller.ID, category.ID,
		testutil.WithListingType(models.ListingTypeProduct))

	_, err := listingSvc.SetStatus(ctx, listing.ID, models.ListingStatusRejected, admin.ID)
	require.NoError(t, err)

	newTitle := "Definitely not the same phone"
	_, err = listingSvc.Update(ctx, listing.ID, services.UpdateListingInput{Title: &newTitle}, seller.ID)
	assert.ErrorIs(t, err, services.ErrImmutableState)
}

func TestListingService_Integration_SoftDelete(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	tdb := setupTest(t)
	fixtures := testutil.NewFixtures(tdb.DB)
	listingSvc := newListingService(t, tdb)
	ctx := context.Background()

	seller := fixtures.CreateUser(t)
	category := fixtures.CreateCategory(t, "Timber", models.ListingTypeMaterial, nil)
	listing := fixtures.CreateListing(t, seller.ID, category.ID,
		testutil.WithListingStatus(models.ListingStatusActive))

	require.NoError(t, listingSvc.SoftDelete(ctx, listing.ID, seller.ID))

	// Gone from the public view, still present for the owner.
	_, err := listingSvc.GetByID(ctx, listing.ID, false)
	assert.ErrorIs(t, err, services.ErrListingNotFound)

	kept, err := listingSvc.GetByID(ctx, listing.ID, true)
	require.NoError(t, err)
	assert.Equal(t, models.ListingStatusInactive, kept.Status)

	// Deleting again is a no-op.
	require.NoError(t, listingSvc.SoftDelete(ctx, listing.ID, seller.ID))
}

func TestListingService_Integration_CategoryTypeMismatch(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	tdb := setupTest(t)
	fixtures := testutil.NewFixtures(tdb.DB)
	listingSvc := newListingService(t, tdb)
	ctx := context.Background()

	seller := fixtures.CreateUser(t)
	materials := fixtures.CreateCategory(t, "Gravel", models.ListingTypeMaterial, nil)

	_, err := listingSvc.Create(ctx, services.CreateListingInput{
		CategoryID:  materials.ID,
		ListingType: models.ListingTypeProduct,
		Title:       "Misplaced product",
		Description: "Wrong aisle",
		Price:       1,
		Quantity:    1,
	}, seller.ID)
	assert.ErrorIs(t, err, services.ErrCategoryTypeMismatch)
}

func TestListingService_Integration_PublicFilters(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	tdb := setupTest(t)
	fixtures := testutil.NewFixtures(tdb.DB)
	listingSvc := newListingService(t, tdb)
	ctx := context.Background()

	seller := fixtures.CreateUser(t)
	materials := fixtures.CreateCategory(t, "Metals", models.ListingTypeMaterial, nil)
	products := fixtures.CreateCategory(t, "Tools", models.ListingTypeProduct, nil)

	fixtures.CreateListing(t, seller.ID, materials.ID,
		testutil.WithListingStatus(models.ListingStatusActive),
		testutil.WithTitle("Aluminium sheets"),
		testutil.WithPrice(12))
	fixtures.CreateListing(t, seller.ID, products.ID,
		testutil.WithListingType(models.ListingTypeProduct),
		testutil.WithListingStatus(models.ListingStatusActive),
		testutil.WithTitle("Angle grinder"),
		testutil.WithPrice(80))
	fixtures.CreateListing(t, seller.ID, materials.ID,
		testutil.WithTitle("Pending scrap"))

	materialType := models.ListingTypeMaterial
	byType, total, err := listingSvc.ListPublic(ctx, services.ListingFilters{ListingType: &materialType}, 1, 20)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, byType, 1)
	assert.Equal(t, "Aluminium sheets", byType[0].Title)

	maxPrice := 50.0
	cheap, total, err := listingSvc.ListPublic(ctx, services.ListingFilters{MaxPrice: &maxPrice}, 1, 20)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, cheap, 1)
	assert.Equal(t, "Aluminium sheets", cheap[0].Title)

	search := "grinder"
	found, total, err := listingSvc.ListPublic(ctx, services.ListingFilters{Search: &search}, 1, 20)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, found, 1)
	assert.Equal(t, "Angle grinder", found[0].Title)
}

func TestListingService_Integration_AttachImages(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	tdb := setupTest(t)
	fixtures := testutil.NewFixtures(tdb.DB)
	listingSvc := newListingService(t, tdb)
	ctx := context.Background()

	seller := fixtures.CreateUser(t)
	category := fixtures.CreateCategory(t, "Bricks", models.ListingTypeMaterial, nil)
	listing := fixtures.CreateListing(t, seller.ID, category.ID)

	uploads := []services.ImageUpload{
		{Filename: "front.jpg", ContentType: "image/jpeg", Data: []byte("jpeg-bytes")},
		{Filename: "back.png", ContentType: "image/png", Data: []byte("png-bytes")},
	}

	images, err := listingSvc.AttachImages(ctx, listing.ID, uploads, seller.ID, 1)
	require.NoError(t, err)
	require.Len(t, images, 2)
	assert.False(t, images[0].IsPrimary)
	assert.True(t, images[1].IsPrimary)

	loaded, err := listingSvc.GetByID(ctx, listing.ID, true)
	require.NoError(t, err)
	assert.Len(t, loaded.Images, 2)
}
