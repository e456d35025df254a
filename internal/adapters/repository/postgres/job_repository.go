package postgres

import (
	"context"
	"errors"

	"github.com/hireloop/portal-api/internal/core/job"
	pgdb "github.com/hireloop/portal-api/internal/platform/db/postgres"
	"github.com/jackc/pgx/v5"
)

// JobRepository reads job postings from PostgreSQL.
type JobRepository struct {
	pool pgdb.Queryer
}

// NewJobRepository builds a JobRepository.
func NewJobRepository(pool pgdb.Queryer) *JobRepository {
	return &JobRepository{pool: pool}
}

// FindByID loads a posting with the name of its company.
func (r *JobRepository) FindByID(ctx context.Context, id string) (*job.Job, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        SELECT j.id, j.company_id, c.name, j.title, j.posted_by, j.status, j.created_at, j.updated_at
          FROM jobs j
          JOIN companies c ON c.id = j.company_id
         WHERE j.id = $1
         LIMIT 1
    `, id)

	var (
		j      job.Job
		status string
	)
	if err := row.Scan(&j.ID, &j.CompanyID, &j.CompanyName, &j.Title, &j.PostedBy, &status, &j.CreatedAt, &j.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, job.ErrJobNotFound
		}
		return nil, err
	}
	j.Status = job.Status(status)
	return &j, nil
}
