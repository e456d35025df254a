package job

import "context"

// Repository reads job postings.
type Repository interface {
	FindByID(ctx context.Context, id string) (*Job, error)
}
