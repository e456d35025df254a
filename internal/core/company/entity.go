package company

import "time"

// Status is the approval state of a company.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
)

// Company is an employer account. A rejected company is deleted rather than
// kept with a status.
type Company struct {
	ID          string
	Name        string
	Email       string
	Description string
	OwnerID     string
	Status      Status
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
