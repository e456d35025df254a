package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hireloop/portal-api/internal/core/application"
	"github.com/jackc/pgx/v5/pgconn"
	pgxmock "github.com/pashagolub/pgxmock/v4"
)

var applicationRowColumns = []string{
	"id", "applicant_id", "applicant_name", "applicant_email", "job_id", "job_title",
	"company_id", "company_name", "status", "archived", "applied_at", "updated_at",
}

func newMockPool(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()

	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	t.Cleanup(func() {
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("unmet expectations: %v", err)
		}
		mock.Close()
	})
	return mock
}

func TestApplicationRepository_FindByIDForUpdate(t *testing.T) {
	t.Parallel()

	mock := newMockPool(t)
	repo := NewApplicationRepository(mock)
	now := time.Now().UTC()

	mock.ExpectQuery(`FROM applications WHERE id = \$1 FOR UPDATE`).
		WithArgs("app-1").
		WillReturnRows(pgxmock.NewRows(applicationRowColumns).
			AddRow("app-1", "seeker-1", "Sam", "sam@example.com", "job-1", "Backend Engineer", "C1", "Acme", "Interview Scheduled", false, now, now))

	app, err := repo.FindByIDForUpdate(context.Background(), "app-1")
	if err != nil {
		t.Fatalf("FindByIDForUpdate returned error: %v", err)
	}
	if app.Status != application.StatusInterviewScheduled || app.CompanyID != "C1" {
		t.Fatalf("unexpected application %+v", app)
	}
}

func TestApplicationRepository_FindByID_NotFound(t *testing.T) {
	t.Parallel()

	mock := newMockPool(t)
	repo := NewApplicationRepository(mock)

	mock.ExpectQuery(`FROM applications WHERE id = \$1`).
		WithArgs("missing").
		WillReturnRows(pgxmock.NewRows(applicationRowColumns))

	if _, err := repo.FindByID(context.Background(), "missing"); !errors.Is(err, application.ErrApplicationNotFound) {
		t.Fatalf("expected ErrApplicationNotFound, got %v", err)
	}
}

func TestApplicationRepository_UpdateStatus(t *testing.T) {
	t.Parallel()

	mock := newMockPool(t)
	repo := NewApplicationRepository(mock)
	now := time.Now().UTC()

	mock.ExpectExec(`UPDATE applications SET status = \$1, archived = \$2, updated_at = \$3 WHERE id = \$4`).
		WithArgs(application.StatusHired, true, now, "app-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec(`UPDATE applications`).
		WithArgs(application.StatusHired, true, now, "gone").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	if err := repo.UpdateStatus(context.Background(), "app-1", application.StatusHired, true, now); err != nil {
		t.Fatalf("UpdateStatus returned error: %v", err)
	}
	if err := repo.UpdateStatus(context.Background(), "gone", application.StatusHired, true, now); !errors.Is(err, application.ErrApplicationNotFound) {
		t.Fatalf("expected ErrApplicationNotFound, got %v", err)
	}
}

func TestApplicationRepository_ListByCompany_ArchivedFilter(t *testing.T) {
	t.Parallel()

	mock := newMockPool(t)
	repo := NewApplicationRepository(mock)
	now := time.Now().UTC()
	archived := false

	mock.ExpectQuery(`WHERE company_id = \$1 AND archived = \$2 ORDER BY applied_at DESC, id DESC`).
		WithArgs("C1", false).
		WillReturnRows(pgxmock.NewRows(applicationRowColumns).
			AddRow("app-1", "s1", "A", "a@example.com", "job-1", "Engineer", "C1", "Acme", "Applied", false, now, now).
			AddRow("app-2", "s2", "B", "b@example.com", "job-1", "Engineer", "C1", "Acme", "In Review", false, now, now))

	apps, err := repo.ListByCompany(context.Background(), application.CompanyFilter{CompanyID: "C1", Archived: &archived})
	if err != nil {
		t.Fatalf("ListByCompany returned error: %v", err)
	}
	if len(apps) != 2 || apps[1].Status != application.StatusInReview {
		t.Fatalf("unexpected applications %+v", apps)
	}
}

func TestApplicationRepository_ListByCompany_NoFilterReturnsEmptySlice(t *testing.T) {
	t.Parallel()

	mock := newMockPool(t)
	repo := NewApplicationRepository(mock)

	mock.ExpectQuery(`WHERE company_id = \$1 ORDER BY applied_at DESC`).
		WithArgs("C1").
		WillReturnRows(pgxmock.NewRows(applicationRowColumns))

	apps, err := repo.ListByCompany(context.Background(), application.CompanyFilter{CompanyID: "C1"})
	if err != nil {
		t.Fatalf("ListByCompany returned error: %v", err)
	}
	if apps == nil || len(apps) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", apps)
	}
}

func TestApplicationRepository_Create_Duplicate(t *testing.T) {
	t.Parallel()

	mock := newMockPool(t)
	repo := NewApplicationRepository(mock)
	now := time.Now().UTC()

	mock.ExpectQuery(`INSERT INTO applications`).
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnError(&pgconn.PgError{Code: uniqueViolationCode, ConstraintName: "applications_applicant_id_job_id_key"})

	_, err := repo.Create(context.Background(), &application.Application{ID: "app-9", ApplicantID: "s1", JobID: "job-1", Status: application.StatusApplied, AppliedAt: now, UpdatedAt: now})
	if !errors.Is(err, application.ErrAlreadyApplied) {
		t.Fatalf("expected ErrAlreadyApplied, got %v", err)
	}
}

func TestTranslateApplicationPgError(t *testing.T) {
	t.Parallel()

	other := errors.New("boom")
	if translateApplicationPgError(other) != other {
		t.Fatal("unexpected translation for generic error")
	}
	fk := &pgconn.PgError{Code: foreignKeyViolationCode, ConstraintName: "something_else"}
	if !errors.Is(translateApplicationPgError(fk), fk) {
		t.Fatal("unknown constraint must pass through")
	}
}
