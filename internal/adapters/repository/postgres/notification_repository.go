package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/hireloop/portal-api/internal/core/notification"
	pgdb "github.com/hireloop/portal-api/internal/platform/db/postgres"
	"github.com/jackc/pgx/v5"
)

const notificationColumns = `id, user_id, title, message, type, reference_id, redirect_url, metadata, status, created_at, read_at`

// NotificationRepository stores the notification feed in PostgreSQL.
type NotificationRepository struct {
	pool pgdb.Queryer
}

// NewNotificationRepository builds a NotificationRepository.
func NewNotificationRepository(pool pgdb.Queryer) *NotificationRepository {
	return &NotificationRepository{pool: pool}
}

// Create inserts a notification.
func (r *NotificationRepository) Create(ctx context.Context, n *notification.Notification) (*notification.Notification, error) {
	metadata, err := encodeMetadata(n.Metadata)
	if err != nil {
		return nil, err
	}

	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        INSERT INTO notifications (`+notificationColumns+`)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
        RETURNING `+notificationColumns,
		n.ID, n.UserID, n.Title, n.Message, n.Type, n.ReferenceID, n.RedirectURL, metadata, n.Status, n.CreatedAt, n.ReadAt)

	return scanNotification(row)
}

// FindByID loads a notification.
func (r *NotificationRepository) FindByID(ctx context.Context, id string) (*notification.Notification, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        SELECT `+notificationColumns+`
          FROM notifications
         WHERE id = $1
         LIMIT 1
    `, id)
	return scanNotification(row)
}

// List returns one page of a user's feed, newest first.
func (r *NotificationRepository) List(ctx context.Context, filter notification.ListFilter) ([]*notification.Notification, string, error) {
	if filter.Limit <= 0 {
		return nil, "", notification.ErrInvalidPageSize
	}
	if filter.Offset < 0 {
		return nil, "", notification.ErrInvalidPageToken
	}

	args := []any{filter.UserID}
	where := ` WHERE user_id = $1`
	if filter.UnreadOnly {
		args = append(args, notification.StatusUnread)
		where += ` AND status = $` + strconv.Itoa(len(args))
	}
	limitPlaceholder := "$" + strconv.Itoa(len(args)+1)
	args = append(args, filter.Limit+1)
	offsetPlaceholder := "$" + strconv.Itoa(len(args)+1)
	args = append(args, filter.Offset)

	query := `
        SELECT ` + notificationColumns + `
          FROM notifications` + where + `
         ORDER BY created_at DESC, id DESC
         LIMIT ` + limitPlaceholder + `
        OFFSET ` + offsetPlaceholder + `
    `

	exec := pgdb.QueryerFromContext(ctx, r.pool)
	rows, err := exec.Query(ctx, query, args...)
	if err != nil {
		return nil, "", err
	}
	defer rows.Close()

	items := []*notification.Notification{}
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, "", err
		}
		items = append(items, n)
	}
	if err := rows.Err(); err != nil {
		return nil, "", err
	}

	var nextToken string
	if len(items) > filter.Limit {
		nextToken = strconv.Itoa(filter.Offset + filter.Limit)
		items = items[:filter.Limit]
	}
	return items, nextToken, nil
}

// MarkRead marks one notification read.
func (r *NotificationRepository) MarkRead(ctx context.Context, id string, readAt time.Time) error {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	tag, err := exec.Exec(ctx, `
        UPDATE notifications
           SET status = $1,
               read_at = $2
         WHERE id = $3
    `, notification.StatusRead, readAt, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return notification.ErrNotificationNotFound
	}
	return nil
}

// MarkAllRead marks every unread notification of a user read.
func (r *NotificationRepository) MarkAllRead(ctx context.Context, userID string, readAt time.Time) (int64, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	tag, err := exec.Exec(ctx, `
        UPDATE notifications
           SET status = $1,
               read_at = $2
         WHERE user_id = $3
           AND status = $4
    `, notification.StatusRead, readAt, userID, notification.StatusUnread)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func scanNotification(row pgx.Row) (*notification.Notification, error) {
	var (
		n        notification.Notification
		metadata []byte
		status   string
		readAt   sql.NullTime
	)

	if err := row.Scan(&n.ID, &n.UserID, &n.Title, &n.Message, &n.Type, &n.ReferenceID, &n.RedirectURL, &metadata, &status, &n.CreatedAt, &readAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, notification.ErrNotificationNotFound
		}
		return nil, err
	}

	if len(metadata) > 0 {
		if err := json.Unmarshal(metadata, &n.Metadata); err != nil {
			return nil, fmt.Errorf("decode notification metadata: %w", err)
		}
	}
	n.Status = notification.Status(status)
	if readAt.Valid {
		t := readAt.Time
		n.ReadAt = &t
	}
	return &n, nil
}

func encodeMetadata(m map[string]any) ([]byte, error) {
	if m == nil {
		m = map[string]any{}
	}
	b, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("encode notification metadata: %w", err)
	}
	return b, nil
}
