package application

import "time"

// Application is a job seeker's application to one job. Applicant and
// job/company fields are copied when the application is created and are not
// refreshed afterwards.
type Application struct {
	ID             string
	ApplicantID    string
	ApplicantName  string
	ApplicantEmail string
	JobID          string
	JobTitle       string
	CompanyID      string
	CompanyName    string
	Status         Status
	Archived       bool
	AppliedAt      time.Time
	UpdatedAt      time.Time
}

// Column is one pipeline board column.
type Column struct {
	Status       Status
	Applications []*Application
}
