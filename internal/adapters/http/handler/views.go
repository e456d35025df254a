package handler

import (
	"time"

	"github.com/hireloop/portal-api/internal/core/application"
	"github.com/hireloop/portal-api/internal/core/company"
	"github.com/hireloop/portal-api/internal/core/employee"
	"github.com/hireloop/portal-api/internal/core/meeting"
	"github.com/hireloop/portal-api/internal/core/notification"
	"github.com/hireloop/portal-api/internal/core/user"
)

type userView struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	Name        string    `json:"name"`
	Role        string    `json:"role"`
	CompanyID   string    `json:"companyId,omitempty"`
	CompanyName string    `json:"companyName,omitempty"`
	CompanyRole string    `json:"companyRole,omitempty"`
	Position    string    `json:"position,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func toUserView(u *user.User) userView {
	return userView{
		ID:          u.ID,
		Email:       u.Email,
		Name:        u.Name,
		Role:        string(u.Role),
		CompanyID:   u.CompanyID,
		CompanyName: u.CompanyName,
		CompanyRole: string(u.CompanyRole),
		Position:    u.Position,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
}

type applicationView struct {
	ID             string    `json:"id"`
	ApplicantID    string    `json:"applicantId"`
	ApplicantName  string    `json:"applicantName"`
	ApplicantEmail string    `json:"applicantEmail"`
	JobID          string    `json:"jobId"`
	JobTitle       string    `json:"jobTitle"`
	CompanyID      string    `json:"companyId"`
	CompanyName    string    `json:"companyName"`
	Status         string    `json:"status"`
	Archived       bool      `json:"archived"`
	AppliedAt      time.Time `json:"appliedAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

func toApplicationView(a *application.Application) applicationView {
	return applicationView{
		ID:             a.ID,
		ApplicantID:    a.ApplicantID,
		ApplicantName:  a.ApplicantName,
		ApplicantEmail: a.ApplicantEmail,
		JobID:          a.JobID,
		JobTitle:       a.JobTitle,
		CompanyID:      a.CompanyID,
		CompanyName:    a.CompanyName,
		Status:         string(a.Status),
		Archived:       a.Archived,
		AppliedAt:      a.AppliedAt,
		UpdatedAt:      a.UpdatedAt,
	}
}

func toApplicationViews(apps []*application.Application) []applicationView {
	out := make([]applicationView, 0, len(apps))
	for _, a := range apps {
		out = append(out, toApplicationView(a))
	}
	return out
}

type columnView struct {
	Status       string            `json:"status"`
	Applications []applicationView `json:"applications"`
}

type notificationView struct {
	ID          string         `json:"id"`
	Title       string         `json:"title"`
	Message     string         `json:"message"`
	Type        string         `json:"type"`
	ReferenceID string         `json:"referenceId,omitempty"`
	RedirectURL string         `json:"redirectUrl,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`
	Status      string         `json:"status"`
	CreatedAt   time.Time      `json:"createdAt"`
	ReadAt      *time.Time     `json:"readAt,omitempty"`
}

func toNotificationView(n *notification.Notification) notificationView {
	return notificationView{
		ID:          n.ID,
		Title:       n.Title,
		Message:     n.Message,
		Type:        n.Type,
		ReferenceID: n.ReferenceID,
		RedirectURL: n.RedirectURL,
		Metadata:    n.Metadata,
		Status:      string(n.Status),
		CreatedAt:   n.CreatedAt,
		ReadAt:      n.ReadAt,
	}
}

type companyView struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	Description string    `json:"description,omitempty"`
	OwnerID     string    `json:"ownerId"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func toCompanyView(c *company.Company) companyView {
	return companyView{
		ID:          c.ID,
		Name:        c.Name,
		Email:       c.Email,
		Description: c.Description,
		OwnerID:     c.OwnerID,
		Status:      string(c.Status),
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

type employeeView struct {
	UserID      string    `json:"userId"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	CompanyRole string    `json:"companyRole"`
	Position    string    `json:"position"`
	JoinedAt    time.Time `json:"joinedAt"`
}

func toEmployeeView(e *employee.Employee) employeeView {
	return employeeView{
		UserID:      e.UserID,
		Name:        e.Name,
		Email:       e.Email,
		CompanyRole: string(e.CompanyRole),
		Position:    e.Position,
		JoinedAt:    e.JoinedAt,
	}
}

type meetingView struct {
	ID              string     `json:"id"`
	RequesterID     string     `json:"requesterId"`
	RequesterEmail  string     `json:"requesterEmail"`
	RequesterName   string     `json:"requesterName"`
	CompanyID       string     `json:"companyId,omitempty"`
	Title           string     `json:"title"`
	Agenda          string     `json:"agenda,omitempty"`
	PreferredStart  time.Time  `json:"preferredStart"`
	DurationMinutes int        `json:"durationMinutes"`
	Status          string     `json:"status"`
	ScheduledStart  *time.Time `json:"scheduledStart,omitempty"`
	JoinURL         string     `json:"joinUrl,omitempty"`
	DeclineReason   string     `json:"declineReason,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}

func toMeetingView(m *meeting.Request) meetingView {
	return meetingView{
		ID:              m.ID,
		RequesterID:     m.RequesterID,
		RequesterEmail:  m.RequesterEmail,
		RequesterName:   m.RequesterName,
		CompanyID:       m.CompanyID,
		Title:           m.Title,
		Agenda:          m.Agenda,
		PreferredStart:  m.PreferredStart,
		DurationMinutes: m.DurationMinutes,
		Status:          string(m.Status),
		ScheduledStart:  m.ScheduledStart,
		JoinURL:         m.JoinURL,
		DeclineReason:   m.DeclineReason,
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
}

func toMeetingViews(ms []*meeting.Request) []meetingView {
	out := make([]meetingView, 0, len(ms))
	for _, m := range ms {
		out = append(out, toMeetingView(m))
	}
	return out
}
