package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/hireloop/portal-api/internal/core/user"
	pgdb "github.com/hireloop/portal-api/internal/platform/db/postgres"
	"github.com/jackc/pgx/v5"
)

const userColumns = `id, email, name, role, company_id, company_name, company_role, position, created_at, updated_at`

// UserRepository stores accounts in PostgreSQL.
type UserRepository struct {
	pool pgdb.Queryer
}

// NewUserRepository builds a UserRepository.
func NewUserRepository(pool pgdb.Queryer) *UserRepository {
	return &UserRepository{pool: pool}
}

// Create inserts a new account.
func (r *UserRepository) Create(ctx context.Context, u *user.User) (*user.User, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        INSERT INTO users (id, email, name, role, company_id, company_name, company_role, position, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
        RETURNING `+userColumns,
		u.ID, u.Email, u.Name, u.Role, nullableString(u.CompanyID), u.CompanyName, u.CompanyRole, u.Position, u.CreatedAt, u.UpdatedAt)

	created, err := scanUser(row)
	if err != nil {
		return nil, translateUserPgError(err)
	}
	return created, nil
}

// FindByID loads an account by uid.
func (r *UserRepository) FindByID(ctx context.Context, id string) (*user.User, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        SELECT `+userColumns+`
          FROM users
         WHERE id = $1
         LIMIT 1
    `, id)

	found, err := scanUser(row)
	if err != nil {
		return nil, translateUserPgError(err)
	}
	return found, nil
}

// UpdateName changes the display name.
func (r *UserRepository) UpdateName(ctx context.Context, id, name string, updatedAt time.Time) (*user.User, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        UPDATE users
           SET name = $1,
               updated_at = $2
         WHERE id = $3
        RETURNING `+userColumns,
		name, updatedAt, id)

	updated, err := scanUser(row)
	if err != nil {
		return nil, translateUserPgError(err)
	}
	return updated, nil
}

// FindByEmail loads an account by its normalized email.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*user.User, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        SELECT `+userColumns+`
          FROM users
         WHERE email = $1
         LIMIT 1
    `, email)

	found, err := scanUser(row)
	if err != nil {
		return nil, translateUserPgError(err)
	}
	return found, nil
}

// ListByRole returns every account with the given role.
func (r *UserRepository) ListByRole(ctx context.Context, role user.Role) ([]*user.User, error) {
	return r.list(ctx, `
        SELECT `+userColumns+`
          FROM users
         WHERE role = $1
         ORDER BY created_at, id
    `, role)
}

// ListByCompany returns every account affiliated with the company.
func (r *UserRepository) ListByCompany(ctx context.Context, companyID string) ([]*user.User, error) {
	return r.list(ctx, `
        SELECT `+userColumns+`
          FROM users
         WHERE company_id = $1
         ORDER BY created_at, id
    `, companyID)
}

// SetAffiliation overwrites the company fields of one account.
func (r *UserRepository) SetAffiliation(ctx context.Context, userID string, aff user.Affiliation, updatedAt time.Time) error {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	tag, err := exec.Exec(ctx, `
        UPDATE users
           SET company_id = $1,
               company_name = $2,
               company_role = $3,
               position = $4,
               updated_at = $5
         WHERE id = $6
    `, nullableString(aff.CompanyID), aff.CompanyName, aff.CompanyRole, aff.Position, updatedAt, userID)
	if err != nil {
		return translateUserPgError(err)
	}
	if tag.RowsAffected() == 0 {
		return user.ErrUserNotFound
	}
	return nil
}

// ClearAffiliations empties the company fields of every listed account. The
// updates are queued in a single batch.
func (r *UserRepository) ClearAffiliations(ctx context.Context, userIDs []string, updatedAt time.Time) error {
	if len(userIDs) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, id := range userIDs {
		batch.Queue(`
        UPDATE users
           SET company_id = NULL,
               company_name = '',
               company_role = '',
               position = '',
               updated_at = $1
         WHERE id = $2
    `, updatedAt, id)
	}

	exec := pgdb.QueryerFromContext(ctx, r.pool)
	results := exec.SendBatch(ctx, batch)
	for _, id := range userIDs {
		if _, err := results.Exec(); err != nil {
			_ = results.Close()
			return fmt.Errorf("clear affiliation of %s: %w", id, translateUserPgError(err))
		}
	}
	return results.Close()
}

func (r *UserRepository) list(ctx context.Context, query string, args ...any) ([]*user.User, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	rows, err := exec.Query(ctx, query, args...)
	if err != nil {
		return nil, translateUserPgError(err)
	}
	defer rows.Close()

	var users []*user.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, translateUserPgError(err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, translateUserPgError(err)
	}
	return users, nil
}

func scanUser(row pgx.Row) (*user.User, error) {
	var (
		u         user.User
		role      string
		companyID sql.NullString
		compRole  string
	)

	if err := row.Scan(&u.ID, &u.Email, &u.Name, &role, &companyID, &u.CompanyName, &compRole, &u.Position, &u.CreatedAt, &u.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, user.ErrUserNotFound
		}
		return nil, err
	}

	u.Role = user.Role(role)
	u.CompanyID = stringOrEmpty(companyID)
	u.CompanyRole = user.CompanyRole(compRole)
	return &u, nil
}

func translateUserPgError(err error) error {
	if code, _ := pgErrorCode(err); code == uniqueViolationCode {
		return user.ErrUserAlreadyExists
	}
	return err
}
