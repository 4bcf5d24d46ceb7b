package models

import "time"

// Listing types. MATERIAL is the B2B marketplace, PRODUCT the B2C one.
// A listing's type must match its category's type.
const (
	ListingTypeMaterial = "MATERIAL"
	ListingTypeProduct  = "PRODUCT"
)

func ValidListingType(t string) bool {
	return t == ListingTypeMaterial || t == ListingTypeProduct
}

type Category struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	Type      string    `json:"type"`
	ParentID  *int64    `json:"parent_category_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
