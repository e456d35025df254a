package meeting

import "time"

// Status is the decision state of a meeting request.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusDeclined Status = "declined"
)

// Request is a meeting asked for by a portal user and decided by an admin.
// The scheduling fields are filled on approval.
type Request struct {
	ID                string
	RequesterID       string
	RequesterEmail    string
	RequesterName     string
	CompanyID         string
	Title             string
	Agenda            string
	PreferredStart    time.Time
	DurationMinutes   int
	Status            Status
	ScheduledStart    *time.Time
	JoinURL           string
	ExternalMeetingID string
	DeclineReason     string
	ReminderSent      bool
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// Scheduled is what the meeting provider returns for a created meeting.
type Scheduled struct {
	ExternalID string
	JoinURL    string
	StartURL   string
	Start      time.Time
}

// ScheduleRequest asks the provider to create a meeting.
type ScheduleRequest struct {
	Topic    string
	Agenda   string
	Start    time.Time
	Duration time.Duration
}
