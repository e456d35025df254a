// Package job exposes the job postings applications are made against.
// Posting and editing jobs is handled elsewhere.
package job

import "time"

type Status string

const (
	StatusOpen   Status = "open"
	StatusClosed Status = "closed"
)

// Job is a posting owned by a company.
type Job struct {
	ID          string
	CompanyID   string
	CompanyName string
	Title       string
	PostedBy    string
	Status      Status
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// IsOpen reports whether the posting accepts applications.
func (j *Job) IsOpen() bool {
	return j.Status == StatusOpen
}
