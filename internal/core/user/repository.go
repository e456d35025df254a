package user

import (
	"context"
	"time"
)

// Repository persists accounts and their company affiliation.
type Repository interface {
	Create(ctx context.Context, user *User) (*User, error)
	FindByID(ctx context.Context, id string) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	ListByRole(ctx context.Context, role Role) ([]*User, error)
	ListByCompany(ctx context.Context, companyID string) ([]*User, error)
	// UpdateName changes the display name and returns the stored row.
	UpdateName(ctx context.Context, id, name string, updatedAt time.Time) (*User, error)
	SetAffiliation(ctx context.Context, userID string, aff Affiliation, updatedAt time.Time) error
	// ClearAffiliations empties the company fields of every listed user in one round trip.
	ClearAffiliations(ctx context.Context, userIDs []string, updatedAt time.Time) error
}
