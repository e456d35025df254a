package employee

import "context"

// Repository persists employee records.
type Repository interface {
	// CreateIfAbsent inserts e unless a record for (CompanyID, UserID) already
	// exists, and reports whether it inserted.
	CreateIfAbsent(ctx context.Context, e *Employee) (bool, error)
	List(ctx context.Context, filter ListEmployeesFilter) ([]*Employee, string, error)
	DeleteByCompany(ctx context.Context, companyID string) (int64, error)
}

// ListEmployeesFilter selects a page of one company's employees.
type ListEmployeesFilter struct {
	CompanyID string
	Limit     int
	Offset    int
}
