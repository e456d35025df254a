package company

import (
	"context"
	"time"
)

// Repository persists companies.
type Repository interface {
	Create(ctx context.Context, company *Company) (*Company, error)
	FindByID(ctx context.Context, id string) (*Company, error)
	FindByIDForUpdate(ctx context.Context, id string) (*Company, error)
	ListByStatus(ctx context.Context, status Status) ([]*Company, error)
	UpdateStatus(ctx context.Context, id string, status Status, updatedAt time.Time) error
	Delete(ctx context.Context, id string) error
}
