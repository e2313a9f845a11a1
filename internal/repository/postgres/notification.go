package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/carelink/dispatch-api/internal/model"
	apperrors "github.com/carelink/dispatch-api/pkg/errors"
)

func (r *notificationRepository) Create(ctx context.Context, notification *model.Notification) error {
	notification.CreatedAt = time.Now()
	err := r.db.GetContext(ctx, &notification.ID, `
		INSERT INTO notifications (type, reference_id, message, is_read, created_at)
		VALUES ($1, $2, $3, false, $4)
		RETURNING id
	`, notification.Type, notification.ReferenceID, notification.Message, notification.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}
	return nil
}

func (r *notificationRepository) List(ctx context.Context) ([]*model.Notification, error) {
	notifications := []*model.Notification{}
	err := r.db.SelectContext(ctx, &notifications, `
		SELECT id, type, reference_id, message, is_read, created_at
		FROM notifications ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	return notifications, nil
}

func (r *notificationRepository) ListUnread(ctx context.Context) ([]*model.Notification, error) {
	notifications := []*model.Notification{}
	err := r.db.SelectContext(ctx, &notifications, `
		SELECT id, type, reference_id, message, is_read, created_at
		FROM notifications WHERE is_read = false ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list unread notifications: %w", err)
	}
	return notifications, nil
}

func (r *notificationRepository) MarkRead(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE notifications SET is_read = true WHERE id = $1
	`, id)
	if err != nil {
		return fmt.Errorf("failed to mark notification read: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return apperrors.NotFound("notification", nil)
	}
	return nil
}

func (r *notificationRepository) LatestByReference(ctx context.Context, referenceID int64) (*model.Notification, error) {
	var notification model.Notification
	err := r.db.GetContext(ctx, &notification, `
		SELECT id, type, reference_id, message, is_read, created_at
		FROM notifications WHERE reference_id = $1
		ORDER BY created_at DESC LIMIT 1
	`, referenceID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("notification", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get notification: %w", err)
	}
	return &notification, nil
}
