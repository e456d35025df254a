package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/hireloop/portal-api/internal/core/company"
	pgdb "github.com/hireloop/portal-api/internal/platform/db/postgres"
	"github.com/jackc/pgx/v5"
)

const companyColumns = `id, name, email, description, owner_id, status, created_at, updated_at`

// CompanyRepository stores companies in PostgreSQL.
type CompanyRepository struct {
	pool pgdb.Queryer
}

// NewCompanyRepository builds a CompanyRepository.
func NewCompanyRepository(pool pgdb.Queryer) *CompanyRepository {
	return &CompanyRepository{pool: pool}
}

// Create inserts a company.
func (r *CompanyRepository) Create(ctx context.Context, c *company.Company) (*company.Company, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        INSERT INTO companies (id, name, email, description, owner_id, status, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
        RETURNING `+companyColumns,
		c.ID, c.Name, c.Email, c.Description, c.OwnerID, c.Status, c.CreatedAt, c.UpdatedAt)

	created, err := scanCompany(row)
	if err != nil {
		return nil, err
	}
	return created, nil
}

// FindByID loads a company.
func (r *CompanyRepository) FindByID(ctx context.Context, id string) (*company.Company, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        SELECT `+companyColumns+`
          FROM companies
         WHERE id = $1
         LIMIT 1
    `, id)
	return scanCompany(row)
}

// FindByIDForUpdate loads a company and locks its row for the current transaction.
func (r *CompanyRepository) FindByIDForUpdate(ctx context.Context, id string) (*company.Company, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        SELECT `+companyColumns+`
          FROM companies
         WHERE id = $1
           FOR UPDATE
    `, id)
	return scanCompany(row)
}

// ListByStatus lists companies in the given state, oldest first.
func (r *CompanyRepository) ListByStatus(ctx context.Context, status company.Status) ([]*company.Company, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	rows, err := exec.Query(ctx, `
        SELECT `+companyColumns+`
          FROM companies
         WHERE status = $1
         ORDER BY created_at, id
    `, status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var companies []*company.Company
	for rows.Next() {
		c, err := scanCompany(rows)
		if err != nil {
			return nil, err
		}
		companies = append(companies, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return companies, nil
}

// UpdateStatus changes the approval state.
func (r *CompanyRepository) UpdateStatus(ctx context.Context, id string, status company.Status, updatedAt time.Time) error {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	tag, err := exec.Exec(ctx, `
        UPDATE companies
           SET status = $1,
               updated_at = $2
         WHERE id = $3
    `, status, updatedAt, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return company.ErrCompanyNotFound
	}
	return nil
}

// Delete removes a company. Jobs and employee rows go with it through
// ON DELETE CASCADE.
func (r *CompanyRepository) Delete(ctx context.Context, id string) error {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	tag, err := exec.Exec(ctx, `DELETE FROM companies WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return company.ErrCompanyNotFound
	}
	return nil
}

func scanCompany(row pgx.Row) (*company.Company, error) {
	var (
		c      company.Company
		status string
	)

	if err := row.Scan(&c.ID, &c.Name, &c.Email, &c.Description, &c.OwnerID, &status, &c.CreatedAt, &c.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, company.ErrCompanyNotFound
		}
		return nil, err
	}

	c.Status = company.Status(status)
	return &c, nil
}
