package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/avaldes/remarket-api/internal/database"
	"github.com/avaldes/remarket-api/internal/models"
)

var ErrNotificationNotFound = errors.New("notification not found")

const notificationColumns = `id, user_id, type, message, listing_id, is_read, created_at`

type NotificationService struct {
	db     *database.DB
	logger *slog.Logger
}

func NewNotificationService(db *database.DB, logger *slog.Logger) *NotificationService {
	return &NotificationService{db: db, logger: logger.With(slog.String("component", "notification_service"))}
}

func (s *NotificationService) Create(ctx context.Context, userID int64, notificationType, message string, listingID *int64) (*models.Notification, error) {
	var n models.Notification
	err := s.db.Pool.QueryRow(ctx, `
		INSERT INTO notifications (user_id, type, message, listing_id)
		VALUES ($1, $2, $3, $4)
		RETURNING `+notificationColumns+`
	`, userID, notificationType, message, listingID).Scan(
		&n.ID, &n.UserID, &n.Type, &n.Message, &n.ListingID, &n.IsRead, &n.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create notification: %w", err)
	}
	return &n, nil
}

// NotifyListingModerated records the moderation outcome for the seller.
func (s *NotificationService) NotifyListingModerated(ctx context.Context, listing *models.Listing) (*models.Notification, error) {
	var notificationType, message string
	switch listing.Status {
	case models.ListingStatusActive:
		notificationType = models.NotificationListingApproved
		message = fmt.Sprintf("Your listing %q has been approved and is now live.", listing.Title)
	case models.ListingStatusRejected:
		notificationType = models.NotificationListingRejected
		message = fmt.Sprintf("Your listing %q was rejected by a moderator.", listing.Title)
	default:
		notificationType = models.NotificationListingPending
		message = fmt.Sprintf("Your listing %q is back in review.", listing.Title)
	}

	n, err := s.Create(ctx, listing.SellerID, notificationType, message, &listing.ID)
	if err != nil {
		return nil, err
	}

	s.logger.Info("moderation notification sent",
		slog.Int64("user_id", listing.SellerID),
		slog.Int64("listing_id", listing.ID),
		slog.String("type", notificationType),
	)
	return n, nil
}

func (s *NotificationService) ListForUser(ctx context.Context, userID int64, unreadOnly bool) ([]models.Notification, error) {
	query := `SELECT ` + notificationColumns + ` FROM notifications WHERE user_id = $1`
	if unreadOnly {
		query += ` AND is_read = FALSE`
	}
	query += ` ORDER BY created_at DESC`

	rows, err := s.db.Pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var notifications []models.Notification
	for rows.Next() {
		var n models.Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.Type, &n.Message, &n.ListingID, &n.IsRead, &n.CreatedAt); err != nil {
			return nil, err
		}
		notifications = append(notifications, n)
	}
	return notifications, rows.Err()
}

// MarkRead flips a single notification owned by userID.
func (s *NotificationService) MarkRead(ctx context.Context, id, userID int64) error {
	tag, err := s.db.Pool.Exec(ctx, `
		UPDATE notifications SET is_read = TRUE WHERE id = $1 AND user_id = $2
	`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to mark notification read: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotificationNotFound
	}
	return nil
}

func (s *NotificationService) MarkAllRead(ctx context.Context, userID int64) error {
	_, err := s.db.Pool.Exec(ctx, `
		UPDATE notifications SET is_read = TRUE WHERE user_id = $1 AND is_read = FALSE
	`, userID)
	if err != nil {
		return fmt.Errorf("failed to mark notifications read: %w", err)
	}
	return nil
}
