package employee

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/hireloop/portal-api/internal/core/auth"
	"github.com/hireloop/portal-api/internal/core/user"
)

// Clock provides the current time.
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time {
	return time.Now().UTC()
}

// AffiliationWriter mirrors company membership onto the user row.
type AffiliationWriter interface {
	SetAffiliation(ctx context.Context, userID string, aff user.Affiliation, updatedAt time.Time) error
}

const (
	defaultListPageSize = 50
	maxListPageSize     = 200
)

// Service holds the employee use cases.
type Service struct {
	repo  Repository
	users AffiliationWriter
	clock Clock
}

// UseCase is the employee surface used by the HTTP layer.
type UseCase interface {
	ListEmployees(ctx context.Context, p auth.Principal, in ListEmployeesInput) (*ListEmployeesResult, error)
}

// NewService builds a Service.
func NewService(repo Repository, users AffiliationWriter, clock Clock) *Service {
	if clock == nil {
		clock = realClock{}
	}
	return &Service{repo: repo, users: users, clock: clock}
}

// HireInput carries the fields copied from a hired application.
type HireInput struct {
	CompanyID   string
	CompanyName string
	UserID      string
	Name        string
	Email       string
	Position    string
}

// ListEmployeesInput selects a page of employees.
type ListEmployeesInput struct {
	CompanyID string
	PageSize  int
	PageToken string
}

// ListEmployeesResult is one page of employees.
type ListEmployeesResult struct {
	Employees     []*Employee
	NextPageToken string
}

// EnsureForHire creates the employee record for a hire unless one exists.
// When it creates the record it also writes the affiliation onto the user
// row, replacing whatever was there. Calling it again for the same pair is a
// no-op. Run it inside the caller's transaction.
func (s *Service) EnsureForHire(ctx context.Context, in HireInput) (bool, error) {
	companyID := strings.TrimSpace(in.CompanyID)
	if companyID == "" {
		return false, ErrInvalidCompanyID
	}
	userID := strings.TrimSpace(in.UserID)
	if userID == "" {
		return false, ErrInvalidUserID
	}

	now := s.clock.Now()
	created, err := s.repo.CreateIfAbsent(ctx, &Employee{
		CompanyID:   companyID,
		UserID:      userID,
		Name:        in.Name,
		Email:       in.Email,
		CompanyRole: user.CompanyRoleEmployee,
		Position:    in.Position,
		JoinedAt:    now,
	})
	if err != nil {
		return false, fmt.Errorf("employee: create: %w", err)
	}
	if !created {
		return false, nil
	}

	if err := s.users.SetAffiliation(ctx, userID, user.Affiliation{
		CompanyID:   companyID,
		CompanyName: in.CompanyName,
		CompanyRole: user.CompanyRoleEmployee,
		Position:    in.Position,
	}, now); err != nil {
		return false, fmt.Errorf("employee: mirror affiliation: %w", err)
	}
	return true, nil
}

// ListEmployees lists one company's employees. Members of the company and
// admins may read it.
func (s *Service) ListEmployees(ctx context.Context, p auth.Principal, in ListEmployeesInput) (*ListEmployeesResult, error) {
	companyID := strings.TrimSpace(in.CompanyID)
	if companyID == "" {
		return nil, ErrInvalidCompanyID
	}
	if !p.IsAdmin() && !p.BelongsTo(companyID) {
		return nil, ErrForbidden
	}

	limit, err := normalizePageSize(in.PageSize)
	if err != nil {
		return nil, err
	}
	offset, err := parsePageToken(in.PageToken)
	if err != nil {
		return nil, err
	}

	employees, next, err := s.repo.List(ctx, ListEmployeesFilter{
		CompanyID: companyID,
		Limit:     limit,
		Offset:    offset,
	})
	if err != nil {
		return nil, err
	}
	return &ListEmployeesResult{Employees: employees, NextPageToken: next}, nil
}

// DeleteForCompany removes every employee record of a company.
func (s *Service) DeleteForCompany(ctx context.Context, companyID string) (int64, error) {
	if strings.TrimSpace(companyID) == "" {
		return 0, ErrInvalidCompanyID
	}
	return s.repo.DeleteByCompany(ctx, companyID)
}

func normalizePageSize(pageSize int) (int, error) {
	if pageSize <= 0 {
		return defaultListPageSize, nil
	}
	if pageSize > maxListPageSize {
		return 0, ErrInvalidPageSize
	}
	return pageSize, nil
}

func parsePageToken(token string) (int, error) {
	if strings.TrimSpace(token) == "" {
		return 0, nil
	}

	offset, err := strconv.Atoi(token)
	if err != nil || offset < 0 {
		return 0, ErrInvalidPageToken
	}

	return offset, nil
}
