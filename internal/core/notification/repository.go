package notification

import (
	"context"
	"time"
)

// Repository persists notifications. Implementations must join the
// transaction carried by ctx when there is one.
type Repository interface {
	Create(ctx context.Context, n *Notification) (*Notification, error)
	FindByID(ctx context.Context, id string) (*Notification, error)
	List(ctx context.Context, filter ListFilter) ([]*Notification, string, error)
	MarkRead(ctx context.Context, id string, readAt time.Time) error
	MarkAllRead(ctx context.Context, userID string, readAt time.Time) (int64, error)
}

// ListFilter selects one page of a user's feed, newest first.
type ListFilter struct {
	UserID     string
	UnreadOnly bool
	Limit      int
	Offset     int
}
