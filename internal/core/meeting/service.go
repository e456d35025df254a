package meeting

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hireloop/portal-api/internal/core/auth"
	"github.com/hireloop/portal-api/internal/core/mail"
	"github.com/hireloop/portal-api/internal/core/notification"
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

// TransactionManager abstracts transaction control.
type TransactionManager interface {
	WithinReadOnly(ctx context.Context, fn func(context.Context) error) error
	WithinReadWrite(ctx context.Context, fn func(context.Context) error) error
}

type noopTransactionManager struct{}

func (noopTransactionManager) WithinReadOnly(ctx context.Context, fn func(context.Context) error) error {
	if fn == nil {
		return nil
	}
	return fn(ctx)
}

func (noopTransactionManager) WithinReadWrite(ctx context.Context, fn func(context.Context) error) error {
	if fn == nil {
		return nil
	}
	return fn(ctx)
}

// AdminDirectory lists the accounts that decide meeting requests.
type AdminDirectory interface {
	ListByRole(ctx context.Context, role user.Role) ([]*user.User, error)
}

// Notifier appends feed entries inside the current transaction and announces
// them once committed.
type Notifier interface {
	Notify(ctx context.Context, in notification.NotifyInput) (*notification.Notification, error)
	Announce(ctx context.Context, ns ...*notification.Notification)
}

const (
	minDurationMinutes     = 15
	maxDurationMinutes     = 240
	defaultDurationMinutes = 30

	defaultReminderLead  = time.Hour
	defaultReminderBatch = 50
)

// Deps groups the collaborators of Service. Clock, TX and the reminder
// settings are optional.
type Deps struct {
	Repo          Repository
	Scheduler     Scheduler
	Admins        AdminDirectory
	Notifier      Notifier
	Mailer        mail.Sender
	Clock         Clock
	TX            TransactionManager
	ReminderLead  time.Duration
	ReminderBatch int
}

// Service holds the meeting request use cases.
type Service struct {
	repo          Repository
	scheduler     Scheduler
	admins        AdminDirectory
	notifier      Notifier
	mailer        mail.Sender
	clock         Clock
	tx            TransactionManager
	reminderLead  time.Duration
	reminderBatch int
}

// UseCase is the meeting surface used by the HTTP layer.
type UseCase interface {
	Request(ctx context.Context, p auth.Principal, in RequestInput) (*Request, error)
	ListMine(ctx context.Context, p auth.Principal) ([]*Request, error)
	ListPending(ctx context.Context, p auth.Principal) ([]*Request, error)
	Approve(ctx context.Context, p auth.Principal, in ApproveInput) (*Request, error)
	Decline(ctx context.Context, p auth.Principal, in DeclineInput) error
}

// NewService builds a Service.
func NewService(d Deps) *Service {
	s := &Service{
		repo:          d.Repo,
		scheduler:     d.Scheduler,
		admins:        d.Admins,
		notifier:      d.Notifier,
		mailer:        d.Mailer,
		clock:         d.Clock,
		tx:            d.TX,
		reminderLead:  d.ReminderLead,
		reminderBatch: d.ReminderBatch,
	}
	if s.clock == nil {
		s.clock = realClock{}
	}
	if s.tx == nil {
		s.tx = noopTransactionManager{}
	}
	if s.reminderLead <= 0 {
		s.reminderLead = defaultReminderLead
	}
	if s.reminderBatch <= 0 {
		s.reminderBatch = defaultReminderBatch
	}
	return s
}

// RequestInput asks the admins for a meeting. A zero DurationMinutes means 30.
type RequestInput struct {
	Title           string
	Agenda          string
	PreferredStart  time.Time
	DurationMinutes int
}

// ApproveInput approves a request. Start overrides the preferred start when set.
type ApproveInput struct {
	ID    string
	Start *time.Time
}

// DeclineInput declines a request with an optional reason.
type DeclineInput struct {
	ID     string
	Reason string
}

// Request records a pending meeting request from the caller and notifies
// every admin.
func (s *Service) Request(ctx context.Context, p auth.Principal, in RequestInput) (*Request, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, ErrInvalidTitle
	}
	duration := in.DurationMinutes
	if duration == 0 {
		duration = defaultDurationMinutes
	}
	if duration < minDurationMinutes || duration > maxDurationMinutes {
		return nil, ErrInvalidDuration
	}
	now := s.clock.Now()
	if !in.PreferredStart.After(now) {
		return nil, ErrInvalidStart
	}

	var (
		created *Request
		sent    []*notification.Notification
	)
	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		r, err := s.repo.Create(txCtx, &Request{
			ID:              uuid.NewString(),
			RequesterID:     p.UID,
			RequesterEmail:  p.Email,
			RequesterName:   p.Name,
			CompanyID:       p.CompanyID,
			Title:           title,
			Agenda:          strings.TrimSpace(in.Agenda),
			PreferredStart:  in.PreferredStart.UTC(),
			DurationMinutes: duration,
			Status:          StatusPending,
			CreatedAt:       now,
			UpdatedAt:       now,
		})
		if err != nil {
			return err
		}

		admins, err := s.admins.ListByRole(txCtx, user.RoleAdmin)
		if err != nil {
			return err
		}
		for _, a := range admins {
			n, err := s.notifier.Notify(txCtx, notification.NotifyInput{
				UserID:      a.ID,
				Title:       "New meeting request",
				Message:     fmt.Sprintf("%s requested \"%s\" on %s.", requesterLabel(r), r.Title, formatTime(r.PreferredStart)),
				Type:        notification.TypeMeetingRequested,
				ReferenceID: r.ID,
				RedirectURL: "/admin/meetings",
			})
			if err != nil {
				return err
			}
			sent = append(sent, n)
		}

		created = r
		return nil
	}); err != nil {
		return nil, err
	}

	s.notifier.Announce(ctx, sent...)
	return created, nil
}

// ListMine returns the caller's meeting requests.
func (s *Service) ListMine(ctx context.Context, p auth.Principal) ([]*Request, error) {
	var out []*Request
	err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		result, err := s.repo.ListByRequester(txCtx, p.UID)
		out = result
		return err
	})
	return out, err
}

// ListPending returns the requests awaiting a decision. Admin only.
func (s *Service) ListPending(ctx context.Context, p auth.Principal) ([]*Request, error) {
	if !p.IsAdmin() {
		return nil, ErrForbidden
	}
	var out []*Request
	err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		result, err := s.repo.ListByStatus(txCtx, StatusPending)
		out = result
		return err
	})
	return out, err
}

// Approve creates the meeting with the provider and then records it. When
// the provider fails nothing is written. The requester is notified in the
// same transaction and mailed after commit.
func (s *Service) Approve(ctx context.Context, p auth.Principal, in ApproveInput) (*Request, error) {
	if !p.IsAdmin() {
		return nil, ErrForbidden
	}
	id := strings.TrimSpace(in.ID)
	if id == "" {
		return nil, fmt.Errorf("id: %w", ErrInvalidID)
	}

	current, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.Status != StatusPending {
		return nil, ErrNotPending
	}

	start := current.PreferredStart
	if in.Start != nil {
		start = in.Start.UTC()
	}
	if !start.After(s.clock.Now()) {
		return nil, ErrInvalidStart
	}

	scheduled, err := s.scheduler.CreateMeeting(ctx, ScheduleRequest{
		Topic:    current.Title,
		Agenda:   current.Agenda,
		Start:    start,
		Duration: time.Duration(current.DurationMinutes) * time.Minute,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProvider, err)
	}
	if scheduled.Start.IsZero() {
		scheduled.Start = start
	}

	var (
		approved *Request
		sent     *notification.Notification
	)
	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		r, err := s.repo.FindByIDForUpdate(txCtx, id)
		if err != nil {
			return err
		}
		if r.Status != StatusPending {
			return ErrNotPending
		}

		now := s.clock.Now()
		if err := s.repo.MarkApproved(txCtx, r.ID, *scheduled, now); err != nil {
			return err
		}
		r.Status = StatusApproved
		r.ScheduledStart = &scheduled.Start
		r.JoinURL = scheduled.JoinURL
		r.ExternalMeetingID = scheduled.ExternalID
		r.UpdatedAt = now

		sent, err = s.notifier.Notify(txCtx, notification.NotifyInput{
			UserID:      r.RequesterID,
			Title:       "Meeting approved",
			Message:     fmt.Sprintf("Your meeting \"%s\" is scheduled for %s.", r.Title, formatTime(scheduled.Start)),
			Type:        notification.TypeMeetingApproved,
			ReferenceID: r.ID,
			RedirectURL: r.JoinURL,
			Metadata:    map[string]any{"joinUrl": r.JoinURL, "meetingId": r.ExternalMeetingID},
		})
		if err != nil {
			return err
		}

		approved = r
		return nil
	}); err != nil {
		slog.Warn("meeting: provider meeting left without a request", "request_id", id, "external_id", scheduled.ExternalID, "error", err)
		return nil, err
	}

	s.notifier.Announce(ctx, sent)
	s.send(ctx, approved.ID, mail.Message{
		To:      []string{approved.RequesterEmail},
		Subject: fmt.Sprintf("Meeting scheduled: %s", approved.Title),
		Text: fmt.Sprintf("Your meeting \"%s\" has been approved.\n\nWhen: %s (%d minutes)\nJoin: %s\n",
			approved.Title, formatTime(*approved.ScheduledStart), approved.DurationMinutes, approved.JoinURL),
	})
	return approved, nil
}

// Decline rejects a pending request, notifies the requester and mails them
// after commit.
func (s *Service) Decline(ctx context.Context, p auth.Principal, in DeclineInput) error {
	if !p.IsAdmin() {
		return ErrForbidden
	}
	id := strings.TrimSpace(in.ID)
	if id == "" {
		return fmt.Errorf("id: %w", ErrInvalidID)
	}
	reason := strings.TrimSpace(in.Reason)

	var (
		declined *Request
		sent     *notification.Notification
	)
	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		r, err := s.repo.FindByIDForUpdate(txCtx, id)
		if err != nil {
			return err
		}
		if r.Status != StatusPending {
			return ErrNotPending
		}

		now := s.clock.Now()
		if err := s.repo.MarkDeclined(txCtx, r.ID, reason, now); err != nil {
			return err
		}
		r.Status = StatusDeclined
		r.DeclineReason = reason
		r.UpdatedAt = now

		msg := fmt.Sprintf("Your meeting request \"%s\" was declined.", r.Title)
		if reason != "" {
			msg += " Reason: " + reason
		}
		sent, err = s.notifier.Notify(txCtx, notification.NotifyInput{
			UserID:      r.RequesterID,
			Title:       "Meeting declined",
			Message:     msg,
			Type:        notification.TypeMeetingDeclined,
			ReferenceID: r.ID,
		})
		if err != nil {
			return err
		}

		declined = r
		return nil
	}); err != nil {
		return err
	}

	s.notifier.Announce(ctx, sent)
	text := fmt.Sprintf("Your meeting request \"%s\" was declined.", declined.Title)
	if reason != "" {
		text += "\n\nReason: " + reason
	}
	s.send(ctx, declined.ID, mail.Message{
		To:      []string{declined.RequesterEmail},
		Subject: fmt.Sprintf("Meeting request declined: %s", declined.Title),
		Text:    text,
	})
	return nil
}

// DispatchReminders sends one reminder for every approved meeting starting
// within the lead time whose reminder is still outstanding, and returns how
// many it sent. The reminderSent flag commits before the mails go out, so a
// mail failure is never retried.
func (s *Service) DispatchReminders(ctx context.Context) (int, error) {
	var (
		due  []*Request
		sent []*notification.Notification
	)
	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		now := s.clock.Now()
		claimed, err := s.repo.ClaimDueReminders(txCtx, now, now.Add(s.reminderLead), s.reminderBatch)
		if err != nil {
			return err
		}
		if len(claimed) == 0 {
			return nil
		}

		ids := make([]string, 0, len(claimed))
		for _, r := range claimed {
			n, err := s.notifier.Notify(txCtx, notification.NotifyInput{
				UserID:      r.RequesterID,
				Title:       "Meeting reminder",
				Message:     fmt.Sprintf("\"%s\" starts at %s.", r.Title, formatTime(startOf(r))),
				Type:        notification.TypeMeetingReminder,
				ReferenceID: r.ID,
				RedirectURL: r.JoinURL,
			})
			if err != nil {
				return err
			}
			sent = append(sent, n)
			ids = append(ids, r.ID)
		}
		if err := s.repo.MarkReminderSent(txCtx, ids, now); err != nil {
			return err
		}

		due = claimed
		return nil
	}); err != nil {
		return 0, err
	}

	s.notifier.Announce(ctx, sent...)
	for _, r := range due {
		s.send(ctx, r.ID, mail.Message{
			To:      []string{r.RequesterEmail},
			Subject: fmt.Sprintf("Reminder: %s", r.Title),
			Text:    fmt.Sprintf("Your meeting \"%s\" starts at %s.\n\nJoin: %s\n", r.Title, formatTime(startOf(r)), r.JoinURL),
		})
	}
	return len(due), nil
}

func (s *Service) send(ctx context.Context, requestID string, msg mail.Message) {
	if s.mailer == nil || len(msg.To) == 0 || msg.To[0] == "" {
		return
	}
	if err := s.mailer.Send(ctx, msg); err != nil {
		slog.Warn("meeting: send mail failed", "request_id", requestID, "subject", msg.Subject, "error", err)
	}
}

func startOf(r *Request) time.Time {
	if r.ScheduledStart != nil {
		return *r.ScheduledStart
	}
	return r.PreferredStart
}

func requesterLabel(r *Request) string {
	if r.RequesterName != "" {
		return r.RequesterName
	}
	if r.RequesterEmail != "" {
		return r.RequesterEmail
	}
	return "A user"
}

func formatTime(t time.Time) string {
	return t.UTC().Format("Mon, 02 Jan 2006 15:04 MST")
}
