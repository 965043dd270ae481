package postgres

import (
	"context"

	"channelwatch/internal/domain/channel"
)

// Compile-time check
var _ channel.NotificationLog = (*NotificationRepository)(nil)

// NotificationRepository is the postgres-backed audit trail of outbound posts
type NotificationRepository struct {
	db DBTX
}

// NewNotificationRepository creates a new notification repository
func NewNotificationRepository(db DBTX) *NotificationRepository {
	return &NotificationRepository{db: db}
}

// Append inserts one audit entry
func (r *NotificationRepository) Append(ctx context.Context, n channel.Notification) error {
	query := `
		INSERT INTO notifications (
			id, reason, text, success, posted_at
		) VALUES (
			$1, $2, $3, $4, $5
		)`

	_, err := r.db.ExecContext(ctx, query,
		n.ID, string(n.Reason), n.Text, n.Success, n.PostedAt,
	)
	return err
}

// RecentByReason returns the most recent entries for one reason, newest first
func (r *NotificationRepository) RecentByReason(ctx context.Context, reason channel.PostReason, limit int) ([]channel.Notification, error) {
	var entries []channel.Notification

	query := `
		SELECT id, reason, text, success, posted_at
		FROM notifications
		WHERE reason = $1
		ORDER BY posted_at DESC
		LIMIT $2`

	if err := r.db.SelectContext(ctx, &entries, query, string(reason), limit); err != nil {
		return nil, err
	}
	return entries, nil
}
