package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hireloop/portal-api/internal/core/meeting"
	pgxmock "github.com/pashagolub/pgxmock/v4"
)

var meetingRowColumns = []string{
	"id", "requester_id", "requester_email", "requester_name", "company_id", "title", "agenda",
	"preferred_start", "duration_minutes", "status", "scheduled_start", "join_url",
	"external_meeting_id", "decline_reason", "reminder_sent", "created_at", "updated_at",
}

func TestMeetingRepository_ClaimDueReminders(t *testing.T) {
	t.Parallel()

	mock := newMockPool(t)
	repo := NewMeetingRepository(mock)
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	start := now.Add(30 * time.Minute)

	mock.ExpectQuery(`LIMIT \$4 FOR UPDATE SKIP LOCKED`).
		WithArgs(meeting.StatusApproved, now, now.Add(time.Hour), 50).
		WillReturnRows(pgxmock.NewRows(meetingRowColumns).
			AddRow("m1", "u1", "hr@acme.test", "Hana", "C1", "Intro", "", start, 30, "approved", start,
				"https://zoom.test/j/1", "991", "", false, now, now))

	due, err := repo.ClaimDueReminders(context.Background(), now, now.Add(time.Hour), 50)
	if err != nil {
		t.Fatalf("ClaimDueReminders returned error: %v", err)
	}
	if len(due) != 1 {
		t.Fatalf("expected one due meeting, got %d", len(due))
	}
	if due[0].ScheduledStart == nil || !due[0].ScheduledStart.Equal(start) {
		t.Fatalf("unexpected scheduled start %v", due[0].ScheduledStart)
	}
	if due[0].Status != meeting.StatusApproved || due[0].CompanyID != "C1" {
		t.Fatalf("unexpected meeting %+v", due[0])
	}
}

func TestMeetingRepository_MarkReminderSent(t *testing.T) {
	t.Parallel()

	mock := newMockPool(t)
	repo := NewMeetingRepository(mock)
	now := time.Now().UTC()
	ids := []string{"m1", "m2"}

	mock.ExpectExec(`SET reminder_sent = TRUE, updated_at = \$1 WHERE id = ANY\(\$2\)`).
		WithArgs(now, ids).
		WillReturnResult(pgxmock.NewResult("UPDATE", 2))

	if err := repo.MarkReminderSent(context.Background(), ids, now); err != nil {
		t.Fatalf("MarkReminderSent returned error: %v", err)
	}
	if err := repo.MarkReminderSent(context.Background(), nil, now); err != nil {
		t.Fatalf("MarkReminderSent with no ids returned error: %v", err)
	}
}

func TestMeetingRepository_FindByID_PendingHasNoSchedule(t *testing.T) {
	t.Parallel()

	mock := newMockPool(t)
	repo := NewMeetingRepository(mock)
	now := time.Now().UTC()

	mock.ExpectQuery(`FROM meeting_requests WHERE id = \$1`).
		WithArgs("m1").
		WillReturnRows(pgxmock.NewRows(meetingRowColumns).
			AddRow("m1", "u1", "sam@example.com", "Sam", nil, "Career chat", "", now, 45, "pending", nil,
				"", "", "", false, now, now))

	m, err := repo.FindByID(context.Background(), "m1")
	if err != nil {
		t.Fatalf("FindByID returned error: %v", err)
	}
	if m.ScheduledStart != nil || m.CompanyID != "" || m.DurationMinutes != 45 {
		t.Fatalf("unexpected meeting %+v", m)
	}
}

func TestMeetingRepository_MarkDeclined_NotFound(t *testing.T) {
	t.Parallel()

	mock := newMockPool(t)
	repo := NewMeetingRepository(mock)
	now := time.Now().UTC()

	mock.ExpectExec(`UPDATE meeting_requests SET status = \$1, decline_reason = \$2`).
		WithArgs(meeting.StatusDeclined, "busy", now, "gone").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	if err := repo.MarkDeclined(context.Background(), "gone", "busy", now); !errors.Is(err, meeting.ErrMeetingNotFound) {
		t.Fatalf("expected ErrMeetingNotFound, got %v", err)
	}
}
