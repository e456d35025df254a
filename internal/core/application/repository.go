package application

import (
	"context"
	"time"
)

// Repository persists applications.
type Repository interface {
	Create(ctx context.Context, app *Application) (*Application, error)
	FindByID(ctx context.Context, id string) (*Application, error)
	// FindByIDForUpdate loads the row and locks it until the surrounding
	// transaction ends.
	FindByIDForUpdate(ctx context.Context, id string) (*Application, error)
	UpdateStatus(ctx context.Context, id string, status Status, archived bool, updatedAt time.Time) error
	ListByCompany(ctx context.Context, filter CompanyFilter) ([]*Application, error)
	ListByApplicant(ctx context.Context, applicantID string) ([]*Application, error)
}

// CompanyFilter selects a company's applications. A nil Archived returns both.
type CompanyFilter struct {
	CompanyID string
	Archived  *bool
}
