package models

import "time"

// Listing moderation states. Every listing is created PENDING; admins move
// it to ACTIVE or REJECTED, the owner can soft-delete to INACTIVE.
const (
	ListingStatusPending  = "PENDING"
	ListingStatusActive   = "ACTIVE"
	ListingStatusRejected = "REJECTED"
	ListingStatusInactive = "INACTIVE"
)

func ValidListingStatus(s string) bool {
	switch s {
	case ListingStatusPending, ListingStatusActive, ListingStatusRejected, ListingStatusInactive:
		return true
	}
	return false
}

// MaxListingImages caps the images attached to a single listing.
const MaxListingImages = 10

type Listing struct {
	ID               int64          `json:"id"`
	SellerID         int64          `json:"seller_id"`
	CategoryID       int64          `json:"category_id"`
	ListingType      string         `json:"listing_type"`
	Title            string         `json:"title"`
	Description      string         `json:"description"`
	Price            float64        `json:"price"`
	PriceUnit        *string        `json:"price_unit,omitempty"`
	Quantity         int            `json:"quantity"`
	Status           string         `json:"status"`
	ApprovedByAdmin  *int64         `json:"approved_by_admin_id,omitempty"`
	Images           []ListingImage `json:"images,omitempty"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
}

type ListingImage struct {
	ID        int64     `json:"id"`
	ListingID int64     `json:"listing_id"`
	ImageURL  string    `json:"image_url"`
	IsPrimary bool      `json:"is_primary"`
	CreatedAt time.Time `json:"created_at"`
}
