package postgres

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/hireloop/portal-api/internal/core/application"
	"github.com/hireloop/portal-api/internal/core/user"
	pgdb "github.com/hireloop/portal-api/internal/platform/db/postgres"
	"github.com/jackc/pgx/v5"
)

const applicationColumns = `id, applicant_id, applicant_name, applicant_email, job_id, job_title, company_id, company_name, status, archived, applied_at, updated_at`

// ApplicationRepository stores applications in PostgreSQL.
type ApplicationRepository struct {
	pool pgdb.Queryer
}

// NewApplicationRepository builds an ApplicationRepository.
func NewApplicationRepository(pool pgdb.Queryer) *ApplicationRepository {
	return &ApplicationRepository{pool: pool}
}

// Create inserts an application. A second application by the same applicant
// to the same job is reported as application.ErrAlreadyApplied.
func (r *ApplicationRepository) Create(ctx context.Context, a *application.Application) (*application.Application, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        INSERT INTO applications (`+applicationColumns+`)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
        RETURNING `+applicationColumns,
		a.ID, a.ApplicantID, a.ApplicantName, a.ApplicantEmail, a.JobID, a.JobTitle,
		a.CompanyID, a.CompanyName, a.Status, a.Archived, a.AppliedAt, a.UpdatedAt)

	created, err := scanApplication(row)
	if err != nil {
		return nil, translateApplicationPgError(err)
	}
	return created, nil
}

// FindByID loads an application.
func (r *ApplicationRepository) FindByID(ctx context.Context, id string) (*application.Application, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        SELECT `+applicationColumns+`
          FROM applications
         WHERE id = $1
         LIMIT 1
    `, id)
	return scanApplication(row)
}

// FindByIDForUpdate loads an application and locks the row, so concurrent
// status changes on it run one after another.
func (r *ApplicationRepository) FindByIDForUpdate(ctx context.Context, id string) (*application.Application, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        SELECT `+applicationColumns+`
          FROM applications
         WHERE id = $1
           FOR UPDATE
    `, id)
	return scanApplication(row)
}

// UpdateStatus writes the status, archived flag and timestamp.
func (r *ApplicationRepository) UpdateStatus(ctx context.Context, id string, status application.Status, archived bool, updatedAt time.Time) error {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	tag, err := exec.Exec(ctx, `
        UPDATE applications
           SET status = $1,
               archived = $2,
               updated_at = $3
         WHERE id = $4
    `, status, archived, updatedAt, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return application.ErrApplicationNotFound
	}
	return nil
}

// ListByCompany lists a company's applications, newest first.
func (r *ApplicationRepository) ListByCompany(ctx context.Context, filter application.CompanyFilter) ([]*application.Application, error) {
	args := []any{filter.CompanyID}
	query := `
        SELECT ` + applicationColumns + `
          FROM applications
         WHERE company_id = $1`
	if filter.Archived != nil {
		args = append(args, *filter.Archived)
		query += `
           AND archived = $` + strconv.Itoa(len(args))
	}
	query += `
         ORDER BY applied_at DESC, id DESC
    `
	return r.list(ctx, query, args...)
}

// ListByApplicant lists an applicant's applications, newest first.
func (r *ApplicationRepository) ListByApplicant(ctx context.Context, applicantID string) ([]*application.Application, error) {
	return r.list(ctx, `
        SELECT `+applicationColumns+`
          FROM applications
         WHERE applicant_id = $1
         ORDER BY applied_at DESC, id DESC
    `, applicantID)
}

func (r *ApplicationRepository) list(ctx context.Context, query string, args ...any) ([]*application.Application, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	rows, err := exec.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	apps := []*application.Application{}
	for rows.Next() {
		a, err := scanApplication(rows)
		if err != nil {
			return nil, err
		}
		apps = append(apps, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return apps, nil
}

func scanApplication(row pgx.Row) (*application.Application, error) {
	var (
		a      application.Application
		status string
	)

	if err := row.Scan(
		&a.ID, &a.ApplicantID, &a.ApplicantName, &a.ApplicantEmail, &a.JobID, &a.JobTitle,
		&a.CompanyID, &a.CompanyName, &status, &a.Archived, &a.AppliedAt, &a.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, application.ErrApplicationNotFound
		}
		return nil, err
	}

	a.Status = application.Status(status)
	return &a, nil
}

func translateApplicationPgError(err error) error {
	code, constraint := pgErrorCode(err)
	switch {
	case code == uniqueViolationCode && constraint == "applications_applicant_id_job_id_key":
		return application.ErrAlreadyApplied
	case code == foreignKeyViolationCode && constraint == "applications_applicant_id_fkey":
		return user.ErrUserNotFound
	default:
		return err
	}
}
