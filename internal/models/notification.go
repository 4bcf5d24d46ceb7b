package models

import "time"

const (
	NotificationListingApproved = "LISTING_APPROVED"
	NotificationListingRejected = "LISTING_REJECTED"
	NotificationListingPending  = "LISTING_PENDING"
)

type Notification struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	Type      string    `json:"type"`
	Message   string    `json:"message"`
	ListingID *int64    `json:"listing_id,omitempty"`
	IsRead    bool      `json:"is_read"`
	CreatedAt time.Time `json:"created_at"`
}
