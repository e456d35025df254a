package notification

import "time"

// Status is the read state of a notification.
type Status string

const (
	StatusUnread Status = "unread"
	StatusRead   Status = "read"
)

// Notification tags used by the workflows that emit them.
const (
	TypeApplicationReceived = "application_received"
	TypeApplicationStatus   = "application_status"
	TypeCompanyRegistered   = "company_registered"
	TypeCompanyApproved     = "company_approved"
	TypeCompanyRejected     = "company_rejected"
	TypeMeetingRequested    = "meeting_requested"
	TypeMeetingApproved     = "meeting_approved"
	TypeMeetingDeclined     = "meeting_declined"
	TypeMeetingReminder     = "meeting_reminder"
)

// Notification is a single feed entry addressed to one user. Only Status and
// ReadAt change after creation.
type Notification struct {
	ID          string
	UserID      string
	Title       string
	Message     string
	Type        string
	ReferenceID string
	RedirectURL string
	Metadata    map[string]any
	Status      Status
	CreatedAt   time.Time
	ReadAt      *time.Time
}
