package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/hireloop/portal-api/internal/core/meeting"
	pgdb "github.com/hireloop/portal-api/internal/platform/db/postgres"
	"github.com/jackc/pgx/v5"
)

const meetingColumns = `id, requester_id, requester_email, requester_name, company_id, title, agenda,
               preferred_start, duration_minutes, status, scheduled_start, join_url,
               external_meeting_id, decline_reason, reminder_sent, created_at, updated_at`

// MeetingRepository stores meeting requests in PostgreSQL.
type MeetingRepository struct {
	pool pgdb.Queryer
}

// NewMeetingRepository builds a MeetingRepository.
func NewMeetingRepository(pool pgdb.Queryer) *MeetingRepository {
	return &MeetingRepository{pool: pool}
}

// Create inserts a pending request.
func (r *MeetingRepository) Create(ctx context.Context, m *meeting.Request) (*meeting.Request, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        INSERT INTO meeting_requests (id, requester_id, requester_email, requester_name, company_id, title, agenda,
                                      preferred_start, duration_minutes, status, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
        RETURNING `+meetingColumns,
		m.ID, m.RequesterID, m.RequesterEmail, m.RequesterName, nullableString(m.CompanyID), m.Title, m.Agenda,
		m.PreferredStart, m.DurationMinutes, m.Status, m.CreatedAt, m.UpdatedAt)
	return scanMeeting(row)
}

// FindByID loads a request.
func (r *MeetingRepository) FindByID(ctx context.Context, id string) (*meeting.Request, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        SELECT `+meetingColumns+`
          FROM meeting_requests
         WHERE id = $1
         LIMIT 1
    `, id)
	return scanMeeting(row)
}

// FindByIDForUpdate loads a request and locks the row.
func (r *MeetingRepository) FindByIDForUpdate(ctx context.Context, id string) (*meeting.Request, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        SELECT `+meetingColumns+`
          FROM meeting_requests
         WHERE id = $1
           FOR UPDATE
    `, id)
	return scanMeeting(row)
}

// ListByRequester lists a user's requests, newest first.
func (r *MeetingRepository) ListByRequester(ctx context.Context, requesterID string) ([]*meeting.Request, error) {
	return r.list(ctx, `
        SELECT `+meetingColumns+`
          FROM meeting_requests
         WHERE requester_id = $1
         ORDER BY created_at DESC, id DESC
    `, requesterID)
}

// ListByStatus lists requests in a state, soonest preferred start first.
func (r *MeetingRepository) ListByStatus(ctx context.Context, status meeting.Status) ([]*meeting.Request, error) {
	return r.list(ctx, `
        SELECT `+meetingColumns+`
          FROM meeting_requests
         WHERE status = $1
         ORDER BY preferred_start, id
    `, status)
}

// MarkApproved stores the provider meeting and approves the request.
func (r *MeetingRepository) MarkApproved(ctx context.Context, id string, s meeting.Scheduled, updatedAt time.Time) error {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	tag, err := exec.Exec(ctx, `
        UPDATE meeting_requests
           SET status = $1,
               scheduled_start = $2,
               join_url = $3,
               external_meeting_id = $4,
               updated_at = $5
         WHERE id = $6
    `, meeting.StatusApproved, s.Start, s.JoinURL, s.ExternalID, updatedAt, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return meeting.ErrMeetingNotFound
	}
	return nil
}

// MarkDeclined declines the request.
func (r *MeetingRepository) MarkDeclined(ctx context.Context, id, reason string, updatedAt time.Time) error {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	tag, err := exec.Exec(ctx, `
        UPDATE meeting_requests
           SET status = $1,
               decline_reason = $2,
               updated_at = $3
         WHERE id = $4
    `, meeting.StatusDeclined, reason, updatedAt, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return meeting.ErrMeetingNotFound
	}
	return nil
}

// ClaimDueReminders locks the approved meetings starting in [from, until)
// whose reminder is outstanding. SKIP LOCKED lets two dispatchers run at
// once without claiming the same row.
func (r *MeetingRepository) ClaimDueReminders(ctx context.Context, from, until time.Time, limit int) ([]*meeting.Request, error) {
	return r.list(ctx, `
        SELECT `+meetingColumns+`
          FROM meeting_requests
         WHERE status = $1
           AND reminder_sent = FALSE
           AND scheduled_start >= $2
           AND scheduled_start < $3
         ORDER BY scheduled_start, id
         LIMIT $4
           FOR UPDATE SKIP LOCKED
    `, meeting.StatusApproved, from, until, limit)
}

// MarkReminderSent flags the listed requests as reminded.
func (r *MeetingRepository) MarkReminderSent(ctx context.Context, ids []string, updatedAt time.Time) error {
	if len(ids) == 0 {
		return nil
	}
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	_, err := exec.Exec(ctx, `
        UPDATE meeting_requests
           SET reminder_sent = TRUE,
               updated_at = $1
         WHERE id = ANY($2)
    `, updatedAt, ids)
	return err
}

func (r *MeetingRepository) list(ctx context.Context, query string, args ...any) ([]*meeting.Request, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	rows, err := exec.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []*meeting.Request{}
	for rows.Next() {
		m, err := scanMeeting(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func scanMeeting(row pgx.Row) (*meeting.Request, error) {
	var (
		m              meeting.Request
		companyID      sql.NullString
		status         string
		scheduledStart sql.NullTime
	)

	if err := row.Scan(
		&m.ID, &m.RequesterID, &m.RequesterEmail, &m.RequesterName, &companyID, &m.Title, &m.Agenda,
		&m.PreferredStart, &m.DurationMinutes, &status, &scheduledStart, &m.JoinURL,
		&m.ExternalMeetingID, &m.DeclineReason, &m.ReminderSent, &m.CreatedAt, &m.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, meeting.ErrMeetingNotFound
		}
		return nil, err
	}

	m.CompanyID = stringOrEmpty(companyID)
	m.Status = meeting.Status(status)
	if scheduledStart.Valid {
		t := scheduledStart.Time
		m.ScheduledStart = &t
	}
	return &m, nil
}
