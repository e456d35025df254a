package meeting

import (
	"context"
	"time"
)

// Repository persists meeting requests.
type Repository interface {
	Create(ctx context.Context, r *Request) (*Request, error)
	FindByID(ctx context.Context, id string) (*Request, error)
	FindByIDForUpdate(ctx context.Context, id string) (*Request, error)
	ListByRequester(ctx context.Context, requesterID string) ([]*Request, error)
	ListByStatus(ctx context.Context, status Status) ([]*Request, error)
	MarkApproved(ctx context.Context, id string, s Scheduled, updatedAt time.Time) error
	MarkDeclined(ctx context.Context, id string, reason string, updatedAt time.Time) error
	// ClaimDueReminders locks up to limit approved meetings whose scheduled
	// start lies in [from, until) and whose reminder has not been sent.
	// Rows locked by another transaction are skipped.
	ClaimDueReminders(ctx context.Context, from, until time.Time, limit int) ([]*Request, error)
	MarkReminderSent(ctx context.Context, ids []string, updatedAt time.Time) error
}

// Scheduler creates meetings in the external provider.
type Scheduler interface {
	CreateMeeting(ctx context.Context, req ScheduleRequest) (*Scheduled, error)
}
