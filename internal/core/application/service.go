package application

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hireloop/portal-api/internal/core/auth"
	"github.com/hireloop/portal-api/internal/core/employee"
	"github.com/hireloop/portal-api/internal/core/event"
	"github.com/hireloop/portal-api/internal/core/job"
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

// JobFinder loads the posting an application targets.
type JobFinder interface {
	FindByID(ctx context.Context, id string) (*job.Job, error)
}

// Hirer turns a hired applicant into a company employee.
type Hirer interface {
	EnsureForHire(ctx context.Context, in employee.HireInput) (bool, error)
}

// Notifier appends feed entries inside the current transaction and announces
// them once committed.
type Notifier interface {
	Notify(ctx context.Context, in notification.NotifyInput) (*notification.Notification, error)
	Announce(ctx context.Context, ns ...*notification.Notification)
}

// Deps groups the collaborators of Service. Clock, TX and Publisher are optional.
type Deps struct {
	Repo      Repository
	Jobs      JobFinder
	Hirer     Hirer
	Notifier  Notifier
	Publisher event.Publisher
	Clock     Clock
	TX        TransactionManager
}

// Service runs the application workflow.
type Service struct {
	repo      Repository
	jobs      JobFinder
	hirer     Hirer
	notifier  Notifier
	publisher event.Publisher
	clock     Clock
	tx        TransactionManager
}

// UseCase is the application surface used by the HTTP layer.
type UseCase interface {
	Apply(ctx context.Context, p auth.Principal, in ApplyInput) (*Application, error)
	ChangeStatus(ctx context.Context, p auth.Principal, in ChangeStatusInput) (*Application, error)
	Withdraw(ctx context.Context, p auth.Principal, in WithdrawInput) (*Application, error)
	ListByCompany(ctx context.Context, p auth.Principal, in ListByCompanyInput) ([]*Application, error)
	ListMine(ctx context.Context, p auth.Principal) ([]*Application, error)
	Pipeline(ctx context.Context, p auth.Principal, companyID string) ([]Column, error)
}

// NewService builds a Service.
func NewService(d Deps) *Service {
	s := &Service{
		repo:      d.Repo,
		jobs:      d.Jobs,
		hirer:     d.Hirer,
		notifier:  d.Notifier,
		publisher: d.Publisher,
		clock:     d.Clock,
		tx:        d.TX,
	}
	if s.publisher == nil {
		s.publisher = event.NopPublisher{}
	}
	if s.clock == nil {
		s.clock = realClock{}
	}
	if s.tx == nil {
		s.tx = noopTransactionManager{}
	}
	return s
}

// ApplyInput is the request of a job seeker to apply to a job.
type ApplyInput struct {
	JobID string
}

// ChangeStatusInput moves an application to another pipeline stage.
type ChangeStatusInput struct {
	ID     string
	Status string
}

// WithdrawInput withdraws the caller's own application.
type WithdrawInput struct {
	ID string
}

// ListByCompanyInput lists a company's applications. A nil Archived returns all.
type ListByCompanyInput struct {
	CompanyID string
	Archived  *bool
}

// Apply creates an application in Applied for an open job and notifies the
// member of the company who posted it.
func (s *Service) Apply(ctx context.Context, p auth.Principal, in ApplyInput) (*Application, error) {
	if p.Role != user.RoleJobSeeker {
		return nil, ErrForbidden
	}
	jobID := strings.TrimSpace(in.JobID)
	if jobID == "" {
		return nil, fmt.Errorf("job id: %w", ErrInvalidID)
	}

	var (
		created *Application
		sent    *notification.Notification
	)
	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		j, err := s.jobs.FindByID(txCtx, jobID)
		if err != nil {
			return err
		}
		if !j.IsOpen() {
			return ErrJobClosed
		}

		now := s.clock.Now()
		created, err = s.repo.Create(txCtx, &Application{
			ID:             uuid.NewString(),
			ApplicantID:    p.UID,
			ApplicantName:  p.Name,
			ApplicantEmail: p.Email,
			JobID:          j.ID,
			JobTitle:       j.Title,
			CompanyID:      j.CompanyID,
			CompanyName:    j.CompanyName,
			Status:         StatusApplied,
			Archived:       false,
			AppliedAt:      now,
			UpdatedAt:      now,
		})
		if err != nil {
			return err
		}

		if j.PostedBy == "" {
			return nil
		}
		sent, err = s.notifier.Notify(txCtx, notification.NotifyInput{
			UserID:      j.PostedBy,
			Title:       "New application",
			Message:     fmt.Sprintf("%s applied for %s.", displayName(p), j.Title),
			Type:        notification.TypeApplicationReceived,
			ReferenceID: created.ID,
			RedirectURL: "/company/applications",
			Metadata:    map[string]any{"jobId": j.ID, "applicantId": p.UID},
		})
		return err
	}); err != nil {
		return nil, err
	}

	s.notifier.Announce(ctx, sent)
	return created, nil
}

// ChangeStatus moves an application through the pipeline on behalf of a
// member of the owning company. The status write, the employee record for a
// hire with its user affiliation, and the applicant notification commit
// together. A realtime event follows the commit.
func (s *Service) ChangeStatus(ctx context.Context, p auth.Principal, in ChangeStatusInput) (*Application, error) {
	id := strings.TrimSpace(in.ID)
	if id == "" {
		return nil, fmt.Errorf("id: %w", ErrInvalidID)
	}

	var (
		updated *Application
		sent    *notification.Notification
	)
	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		app, err := s.repo.FindByIDForUpdate(txCtx, id)
		if err != nil {
			return err
		}
		if !p.BelongsTo(app.CompanyID) {
			return ErrForbidden
		}

		next, err := ParseBoardStatus(in.Status)
		if err != nil {
			return err
		}
		if !CanTransition(app.Status, next) {
			return fmt.Errorf("%w: %s -> %s", ErrTransitionNotAllowed, app.Status, next)
		}

		now := s.clock.Now()
		archived := app.Archived || next.Archives()
		if err := s.repo.UpdateStatus(txCtx, app.ID, next, archived, now); err != nil {
			return err
		}
		app.Status = next
		app.Archived = archived
		app.UpdatedAt = now

		if next == StatusHired {
			if _, err := s.hirer.EnsureForHire(txCtx, employee.HireInput{
				CompanyID:   app.CompanyID,
				CompanyName: app.CompanyName,
				UserID:      app.ApplicantID,
				Name:        app.ApplicantName,
				Email:       app.ApplicantEmail,
				Position:    app.JobTitle,
			}); err != nil {
				return err
			}
		}

		sent, err = s.notifier.Notify(txCtx, notification.NotifyInput{
			UserID:      app.ApplicantID,
			Title:       "Application update",
			Message:     statusMessage(app),
			Type:        notification.TypeApplicationStatus,
			ReferenceID: app.ID,
			RedirectURL: "/applications",
			Metadata:    map[string]any{"status": string(next), "jobId": app.JobID},
		})
		if err != nil {
			return err
		}

		updated = app
		return nil
	}); err != nil {
		return nil, err
	}

	s.notifier.Announce(ctx, sent)
	s.publishStatusChanged(ctx, updated)
	return updated, nil
}

// Withdraw lets the applicant pull their own application. It only changes
// the status and timestamp. A withdrawal after Hired or Rejected is refused
// with ErrTransitionNotAllowed.
func (s *Service) Withdraw(ctx context.Context, p auth.Principal, in WithdrawInput) (*Application, error) {
	id := strings.TrimSpace(in.ID)
	if id == "" {
		return nil, fmt.Errorf("id: %w", ErrInvalidID)
	}

	var updated *Application
	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		app, err := s.repo.FindByIDForUpdate(txCtx, id)
		if err != nil {
			return err
		}
		if app.ApplicantID != p.UID {
			return ErrForbidden
		}
		if !CanWithdraw(app.Status) {
			return fmt.Errorf("%w: %s -> %s", ErrTransitionNotAllowed, app.Status, StatusWithdrawn)
		}

		now := s.clock.Now()
		if err := s.repo.UpdateStatus(txCtx, app.ID, StatusWithdrawn, app.Archived, now); err != nil {
			return err
		}
		app.Status = StatusWithdrawn
		app.UpdatedAt = now
		updated = app
		return nil
	}); err != nil {
		return nil, err
	}

	return updated, nil
}

// ListByCompany lists the applications of the caller's company.
func (s *Service) ListByCompany(ctx context.Context, p auth.Principal, in ListByCompanyInput) ([]*Application, error) {
	companyID := strings.TrimSpace(in.CompanyID)
	if companyID == "" {
		return nil, fmt.Errorf("company id: %w", ErrInvalidID)
	}
	if !p.BelongsTo(companyID) {
		return nil, ErrForbidden
	}

	var apps []*Application
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		result, err := s.repo.ListByCompany(txCtx, CompanyFilter{CompanyID: companyID, Archived: in.Archived})
		if err != nil {
			return err
		}
		apps = result
		return nil
	}); err != nil {
		return nil, err
	}
	return apps, nil
}

// ListMine lists the caller's own applications.
func (s *Service) ListMine(ctx context.Context, p auth.Principal) ([]*Application, error) {
	var apps []*Application
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		result, err := s.repo.ListByApplicant(txCtx, p.UID)
		if err != nil {
			return err
		}
		apps = result
		return nil
	}); err != nil {
		return nil, err
	}
	return apps, nil
}

// Pipeline buckets the company's non-archived applications into the board
// columns. Every column is present, even when empty. Withdrawn applications
// are not on the board.
func (s *Service) Pipeline(ctx context.Context, p auth.Principal, companyID string) ([]Column, error) {
	active := false
	apps, err := s.ListByCompany(ctx, p, ListByCompanyInput{CompanyID: companyID, Archived: &active})
	if err != nil {
		return nil, err
	}

	columns := make([]Column, len(boardStatuses))
	index := make(map[Status]int, len(boardStatuses))
	for i, st := range boardStatuses {
		columns[i] = Column{Status: st, Applications: []*Application{}}
		index[st] = i
	}
	for _, app := range apps {
		i, ok := index[app.Status]
		if !ok {
			continue
		}
		columns[i].Applications = append(columns[i].Applications, app)
	}
	return columns, nil
}

func (s *Service) publishStatusChanged(ctx context.Context, app *Application) {
	err := s.publisher.Publish(ctx, event.Event{
		Type:   event.TypeApplicationStatusChanged,
		UserID: app.ApplicantID,
		Payload: map[string]any{
			"applicationId": app.ID,
			"status":        string(app.Status),
			"archived":      app.Archived,
		},
		OccurredAt: app.UpdatedAt,
	})
	if err != nil {
		slog.Warn("application: publish status event failed", "application_id", app.ID, "error", err)
	}
}

func statusMessage(app *Application) string {
	switch app.Status {
	case StatusHired:
		return fmt.Sprintf("Congratulations! %s has hired you as %s.", app.CompanyName, app.JobTitle)
	case StatusRejected:
		return fmt.Sprintf("%s has decided not to move forward with your application for %s.", app.CompanyName, app.JobTitle)
	case StatusInterviewScheduled:
		return fmt.Sprintf("%s would like to interview you for %s.", app.CompanyName, app.JobTitle)
	default:
		return fmt.Sprintf("Your application for %s at %s is now %s.", app.JobTitle, app.CompanyName, app.Status)
	}
}

func displayName(p auth.Principal) string {
	if p.Name != "" {
		return p.Name
	}
	if p.Email != "" {
		return p.Email
	}
	return "A candidate"
}

