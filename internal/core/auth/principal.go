// Package auth turns a bearer token into the request-scoped Principal that
// every use case receives as an explicit argument.
package auth

import "github.com/hireloop/portal-api/internal/core/user"

// Principal is the caller of a single request.
type Principal struct {
	UID         string
	Email       string
	Name        string
	Role        user.Role
	CompanyID   string
	CompanyName string
	CompanyRole user.CompanyRole
}

// PrincipalFromUser builds the principal for an account row.
func PrincipalFromUser(u *user.User) Principal {
	return Principal{
		UID:         u.ID,
		Email:       u.Email,
		Name:        u.Name,
		Role:        u.Role,
		CompanyID:   u.CompanyID,
		CompanyName: u.CompanyName,
		CompanyRole: u.CompanyRole,
	}
}

// IsAdmin reports whether the caller is a portal administrator.
func (p Principal) IsAdmin() bool {
	return p.Role == user.RoleAdmin
}

// BelongsTo is the company-scoped ownership check: the caller's company must
// equal companyID. An unaffiliated caller belongs to no company.
func (p Principal) BelongsTo(companyID string) bool {
	return p.CompanyID != "" && p.CompanyID == companyID
}
