package company

import (
	"context"
	"fmt"
	"html"
	"log/slog"
	netmail "net/mail"
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

// Users is the part of the account store the company flows touch.
type Users interface {
	ListByRole(ctx context.Context, role user.Role) ([]*user.User, error)
	ListByCompany(ctx context.Context, companyID string) ([]*user.User, error)
	SetAffiliation(ctx context.Context, userID string, aff user.Affiliation, updatedAt time.Time) error
	ClearAffiliations(ctx context.Context, userIDs []string, updatedAt time.Time) error
}

// Employees removes a company's employee records.
type Employees interface {
	DeleteForCompany(ctx context.Context, companyID string) (int64, error)
}

// Notifier appends feed entries inside the current transaction and announces
// them once committed.
type Notifier interface {
	Notify(ctx context.Context, in notification.NotifyInput) (*notification.Notification, error)
	Announce(ctx context.Context, ns ...*notification.Notification)
}

// Deps groups the collaborators of Service. Clock and TX are optional.
type Deps struct {
	Repo      Repository
	Users     Users
	Employees Employees
	Notifier  Notifier
	Mailer    mail.Sender
	Clock     Clock
	TX        TransactionManager
}

// Service holds the company registration and approval use cases.
type Service struct {
	repo      Repository
	users     Users
	employees Employees
	notifier  Notifier
	mailer    mail.Sender
	clock     Clock
	tx        TransactionManager
}

// UseCase is the company surface used by the HTTP layer.
type UseCase interface {
	Register(ctx context.Context, p auth.Principal, in RegisterInput) (*Company, error)
	ListPending(ctx context.Context, p auth.Principal) ([]*Company, error)
	Approve(ctx context.Context, p auth.Principal, in ApproveInput) error
	Reject(ctx context.Context, p auth.Principal, in RejectInput) error
}

// NewService builds a Service.
func NewService(d Deps) *Service {
	s := &Service{
		repo:      d.Repo,
		users:     d.Users,
		employees: d.Employees,
		notifier:  d.Notifier,
		mailer:    d.Mailer,
		clock:     d.Clock,
		tx:        d.TX,
	}
	if s.clock == nil {
		s.clock = realClock{}
	}
	if s.tx == nil {
		s.tx = noopTransactionManager{}
	}
	return s
}

// RegisterInput is the company profile submitted for approval.
type RegisterInput struct {
	Name        string
	Email       string
	Description string
}

// ApproveInput selects the company to approve.
type ApproveInput struct {
	ID string
}

// RejectInput selects the company to reject and carries the reason shown to
// its owner.
type RejectInput struct {
	ID     string
	Reason string
}

// Register creates a pending company owned by the caller, makes the caller
// its owner and notifies every admin.
func (s *Service) Register(ctx context.Context, p auth.Principal, in RegisterInput) (*Company, error) {
	if p.Role != user.RoleCompany {
		return nil, ErrForbidden
	}
	if p.CompanyID != "" {
		return nil, ErrAlreadyAffiliated
	}

	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, ErrInvalidName
	}
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if email == "" {
		email = p.Email
	}
	if _, err := netmail.ParseAddress(email); err != nil {
		return nil, ErrInvalidEmail
	}

	var (
		created *Company
		sent    []*notification.Notification
	)
	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		now := s.clock.Now()
		c, err := s.repo.Create(txCtx, &Company{
			ID:          uuid.NewString(),
			Name:        name,
			Email:       email,
			Description: strings.TrimSpace(in.Description),
			OwnerID:     p.UID,
			Status:      StatusPending,
			CreatedAt:   now,
			UpdatedAt:   now,
		})
		if err != nil {
			return err
		}

		if err := s.users.SetAffiliation(txCtx, p.UID, user.Affiliation{
			CompanyID:   c.ID,
			CompanyName: c.Name,
			CompanyRole: user.CompanyRoleOwner,
			Position:    "Owner",
		}, now); err != nil {
			return err
		}

		admins, err := s.users.ListByRole(txCtx, user.RoleAdmin)
		if err != nil {
			return err
		}
		for _, admin := range admins {
			n, err := s.notifier.Notify(txCtx, notification.NotifyInput{
				UserID:      admin.ID,
				Title:       "New company registration",
				Message:     fmt.Sprintf("%s is waiting for approval.", c.Name),
				Type:        notification.TypeCompanyRegistered,
				ReferenceID: c.ID,
				RedirectURL: "/admin/companies",
			})
			if err != nil {
				return err
			}
			sent = append(sent, n)
		}

		created = c
		return nil
	}); err != nil {
		return nil, err
	}

	s.notifier.Announce(ctx, sent...)
	return created, nil
}

// ListPending returns the companies awaiting a decision. Admin only.
func (s *Service) ListPending(ctx context.Context, p auth.Principal) ([]*Company, error) {
	if !p.IsAdmin() {
		return nil, ErrForbidden
	}

	var companies []*Company
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		result, err := s.repo.ListByStatus(txCtx, StatusPending)
		if err != nil {
			return err
		}
		companies = result
		return nil
	}); err != nil {
		return nil, err
	}
	return companies, nil
}

// Approve marks a pending company approved, notifies everyone affiliated with
// it and mails the company contact. The mail is sent after commit and a mail
// failure does not undo the approval.
func (s *Service) Approve(ctx context.Context, p auth.Principal, in ApproveInput) error {
	if !p.IsAdmin() {
		return ErrForbidden
	}
	id := strings.TrimSpace(in.ID)
	if id == "" {
		return fmt.Errorf("id: %w", ErrInvalidID)
	}

	var (
		approved *Company
		sent     []*notification.Notification
	)
	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		c, err := s.repo.FindByIDForUpdate(txCtx, id)
		if err != nil {
			return err
		}
		if c.Status != StatusPending {
			return ErrNotPending
		}

		now := s.clock.Now()
		if err := s.repo.UpdateStatus(txCtx, c.ID, StatusApproved, now); err != nil {
			return err
		}
		c.Status = StatusApproved
		c.UpdatedAt = now

		members, err := s.users.ListByCompany(txCtx, c.ID)
		if err != nil {
			return err
		}
		for _, m := range members {
			n, err := s.notifier.Notify(txCtx, notification.NotifyInput{
				UserID:      m.ID,
				Title:       "Company approved",
				Message:     fmt.Sprintf("%s has been approved. You can now post jobs.", c.Name),
				Type:        notification.TypeCompanyApproved,
				ReferenceID: c.ID,
				RedirectURL: "/company/dashboard",
			})
			if err != nil {
				return err
			}
			sent = append(sent, n)
		}

		approved = c
		return nil
	}); err != nil {
		return err
	}

	s.notifier.Announce(ctx, sent...)
	s.send(ctx, approved.ID, mail.Message{
		To:      []string{approved.Email},
		Subject: fmt.Sprintf("%s has been approved", approved.Name),
		Text:    fmt.Sprintf("Good news! %s has been approved on the portal. You can now sign in and post jobs.", approved.Name),
		HTML:    fmt.Sprintf("<p>Good news! <strong>%s</strong> has been approved on the portal.</p><p>You can now sign in and post jobs.</p>", html.EscapeString(approved.Name)),
	})
	return nil
}

// Reject removes a company. In one transaction it clears the company fields
// of every affiliated user, deletes the employee records and deletes the
// company, then notifies the owner. The owner is mailed after commit.
func (s *Service) Reject(ctx context.Context, p auth.Principal, in RejectInput) error {
	if !p.IsAdmin() {
		return ErrForbidden
	}
	id := strings.TrimSpace(in.ID)
	if id == "" {
		return fmt.Errorf("id: %w", ErrInvalidID)
	}
	reason := strings.TrimSpace(in.Reason)

	var (
		rejected *Company
		sent     *notification.Notification
	)
	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		c, err := s.repo.FindByIDForUpdate(txCtx, id)
		if err != nil {
			return err
		}

		members, err := s.users.ListByCompany(txCtx, c.ID)
		if err != nil {
			return err
		}
		ids := make([]string, 0, len(members))
		for _, m := range members {
			ids = append(ids, m.ID)
		}

		now := s.clock.Now()
		if err := s.users.ClearAffiliations(txCtx, ids, now); err != nil {
			return err
		}
		if _, err := s.employees.DeleteForCompany(txCtx, c.ID); err != nil {
			return err
		}
		if err := s.repo.Delete(txCtx, c.ID); err != nil {
			return err
		}

		msg := fmt.Sprintf("%s was not approved.", c.Name)
		if reason != "" {
			msg += " Reason: " + reason
		}
		sent, err = s.notifier.Notify(txCtx, notification.NotifyInput{
			UserID:      c.OwnerID,
			Title:       "Company rejected",
			Message:     msg,
			Type:        notification.TypeCompanyRejected,
			ReferenceID: c.ID,
			Metadata:    map[string]any{"reason": reason},
		})
		if err != nil {
			return err
		}

		rejected = c
		return nil
	}); err != nil {
		return err
	}

	s.notifier.Announce(ctx, sent)

	text := fmt.Sprintf("We are sorry, %s was not approved on the portal.", rejected.Name)
	if reason != "" {
		text += "\n\nReason: " + reason
	}
	s.send(ctx, rejected.ID, mail.Message{
		To:      []string{rejected.Email},
		Subject: fmt.Sprintf("%s registration was not approved", rejected.Name),
		Text:    text,
	})
	return nil
}

func (s *Service) send(ctx context.Context, companyID string, msg mail.Message) {
	if s.mailer == nil {
		return
	}
	if err := s.mailer.Send(ctx, msg); err != nil {
		slog.Warn("company: send mail failed", "company_id", companyID, "subject", msg.Subject, "error", err)
	}
}
