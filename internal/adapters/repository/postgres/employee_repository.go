package postgres

import (
	"context"
	"strconv"

	"github.com/hireloop/portal-api/internal/core/employee"
	"github.com/hireloop/portal-api/internal/core/user"
	pgdb "github.com/hireloop/portal-api/internal/platform/db/postgres"
	"github.com/jackc/pgx/v5"
)

// EmployeeRepository stores company employee records in PostgreSQL.
type EmployeeRepository struct {
	pool pgdb.Queryer
}

// NewEmployeeRepository builds an EmployeeRepository.
func NewEmployeeRepository(pool pgdb.Queryer) *EmployeeRepository {
	return &EmployeeRepository{pool: pool}
}

// CreateIfAbsent inserts the record unless (company_id, user_id) exists.
func (r *EmployeeRepository) CreateIfAbsent(ctx context.Context, e *employee.Employee) (bool, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	tag, err := exec.Exec(ctx, `
        INSERT INTO company_employees (company_id, user_id, name, email, company_role, position, joined_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
        ON CONFLICT (company_id, user_id) DO NOTHING
    `, e.CompanyID, e.UserID, e.Name, e.Email, e.CompanyRole, e.Position, e.JoinedAt)
	if err != nil {
		return false, translateEmployeePgError(err)
	}
	return tag.RowsAffected() == 1, nil
}

// List returns one page of a company's employees, earliest joiners first.
func (r *EmployeeRepository) List(ctx context.Context, filter employee.ListEmployeesFilter) ([]*employee.Employee, string, error) {
	if filter.Limit <= 0 {
		return nil, "", employee.ErrInvalidPageSize
	}
	if filter.Offset < 0 {
		return nil, "", employee.ErrInvalidPageToken
	}

	exec := pgdb.QueryerFromContext(ctx, r.pool)
	rows, err := exec.Query(ctx, `
        SELECT company_id, user_id, name, email, company_role, position, joined_at
          FROM company_employees
         WHERE company_id = $1
         ORDER BY joined_at, user_id
         LIMIT $2
        OFFSET $3
    `, filter.CompanyID, filter.Limit+1, filter.Offset)
	if err != nil {
		return nil, "", err
	}
	defer rows.Close()

	var employees []*employee.Employee
	for rows.Next() {
		e, err := scanEmployee(rows)
		if err != nil {
			return nil, "", err
		}
		employees = append(employees, e)
	}
	if err := rows.Err(); err != nil {
		return nil, "", err
	}

	var nextToken string
	if len(employees) > filter.Limit {
		nextToken = strconv.Itoa(filter.Offset + filter.Limit)
		employees = employees[:filter.Limit]
	}
	return employees, nextToken, nil
}

// DeleteByCompany removes every employee record of a company.
func (r *EmployeeRepository) DeleteByCompany(ctx context.Context, companyID string) (int64, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	tag, err := exec.Exec(ctx, `DELETE FROM company_employees WHERE company_id = $1`, companyID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func scanEmployee(row pgx.Row) (*employee.Employee, error) {
	var (
		e    employee.Employee
		role string
	)
	if err := row.Scan(&e.CompanyID, &e.UserID, &e.Name, &e.Email, &role, &e.Position, &e.JoinedAt); err != nil {
		return nil, err
	}
	e.CompanyRole = user.CompanyRole(role)
	return &e, nil
}

func translateEmployeePgError(err error) error {
	code, constraint := pgErrorCode(err)
	if code != foreignKeyViolationCode {
		return err
	}
	switch constraint {
	case "company_employees_user_id_fkey":
		return user.ErrUserNotFound
	case "company_employees_company_id_fkey":
		return employee.ErrInvalidCompanyID
	default:
		return err
	}
}
