package employee

import (
	"time"

	"github.com/hireloop/portal-api/internal/core/user"
)

// Employee is the membership record of a user inside a company. There is at
// most one per (CompanyID, UserID).
type Employee struct {
	CompanyID   string
	UserID      string
	Name        string
	Email       string
	CompanyRole user.CompanyRole
	Position    string
	JoinedAt    time.Time
}
