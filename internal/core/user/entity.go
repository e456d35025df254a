package user

import "time"

// Role is the portal-wide role of an account.
type Role string

const (
	RoleJobSeeker Role = "jobseeker"
	RoleCompany   Role = "company"
	RoleAdmin     Role = "admin"
)

// CompanyRole is the position of a user inside the company they belong to.
type CompanyRole string

const (
	CompanyRoleOwner    CompanyRole = "owner"
	CompanyRoleEmployee CompanyRole = "employee"
)

// User is a portal account. ID is the identity provider uid.
type User struct {
	ID          string
	Email       string
	Name        string
	Role        Role
	CompanyID   string
	CompanyName string
	CompanyRole CompanyRole
	Position    string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Affiliation is the set of company fields mirrored onto a user row.
type Affiliation struct {
	CompanyID   string
	CompanyName string
	CompanyRole CompanyRole
	Position    string
}

// Affiliation returns the company fields currently set on u.
func (u *User) Affiliation() Affiliation {
	return Affiliation{
		CompanyID:   u.CompanyID,
		CompanyName: u.CompanyName,
		CompanyRole: u.CompanyRole,
		Position:    u.Position,
	}
}
