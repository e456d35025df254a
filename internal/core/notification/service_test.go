package notification

import (
	"context"
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/hireloop/portal-api/internal/core/auth"
	"github.com/hireloop/portal-api/internal/core/event"
)

type stubClock struct {
	now time.Time
}

func (s stubClock) Now() time.Time {
	return s.now
}

type fakeRepo struct {
	items []*Notification
}

func (r *fakeRepo) Create(_ context.Context, n *Notification) (*Notification, error) {
	clone := *n
	r.items = append(r.items, &clone)
	return n, nil
}

func (r *fakeRepo) FindByID(_ context.Context, id string) (*Notification, error) {
	for _, n := range r.items {
		if n.ID == id {
			clone := *n
			return &clone, nil
		}
	}
	return nil, ErrNotificationNotFound
}

func (r *fakeRepo) List(_ context.Context, f ListFilter) ([]*Notification, string, error) {
	var filtered []*Notification
	for i := len(r.items) - 1; i >= 0; i-- {
		n := r.items[i]
		if n.UserID != f.UserID || (f.UnreadOnly && n.Status != StatusUnread) {
			continue
		}
		filtered = append(filtered, n)
	}
	if f.Offset > len(filtered) {
		return nil, "", nil
	}
	end := min(f.Offset+f.Limit, len(filtered))
	next := ""
	if end < len(filtered) {
		next = strconv.Itoa(end)
	}
	return filtered[f.Offset:end], next, nil
}

func (r *fakeRepo) MarkRead(_ context.Context, id string, at time.Time) error {
	for _, n := range r.items {
		if n.ID == id {
			n.Status = StatusRead
			n.ReadAt = &at
			return nil
		}
	}
	return ErrNotificationNotFound
}

func (r *fakeRepo) MarkAllRead(_ context.Context, userID string, at time.Time) (int64, error) {
	var changed int64
	for _, n := range r.items {
		if n.UserID == userID && n.Status == StatusUnread {
			n.Status = StatusRead
			n.ReadAt = &at
			changed++
		}
	}
	return changed, nil
}

type recordingPublisher struct {
	events []event.Event
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, e event.Event) error {
	p.events = append(p.events, e)
	return p.err
}

func TestService_Notify(t *testing.T) {
	t.Parallel()

	clk := stubClock{now: time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)}
	repo := &fakeRepo{}
	svc := NewService(repo, nil, clk)

	n, err := svc.Notify(context.Background(), NotifyInput{
		UserID:  "seeker-1",
		Title:   " Application update ",
		Message: "Your application moved to Shortlisted.",
		Type:    TypeApplicationStatus,
	})
	if err != nil {
		t.Fatalf("Notify returned error: %v", err)
	}

	if n.ID == "" || n.Status != StatusUnread || !n.CreatedAt.Equal(clk.now) {
		t.Fatalf("unexpected notification %+v", n)
	}
	if n.Title != "Application update" {
		t.Errorf("expected trimmed title, got %q", n.Title)
	}
	if len(repo.items) != 1 {
		t.Fatalf("expected 1 stored notification, got %d", len(repo.items))
	}
}

func TestService_Notify_Validation(t *testing.T) {
	t.Parallel()

	svc := NewService(&fakeRepo{}, nil, nil)
	if _, err := svc.Notify(context.Background(), NotifyInput{Title: "x"}); !errors.Is(err, ErrInvalidRecipient) {
		t.Fatalf("expected ErrInvalidRecipient, got %v", err)
	}
	if _, err := svc.Notify(context.Background(), NotifyInput{UserID: "u"}); !errors.Is(err, ErrInvalidTitle) {
		t.Fatalf("expected ErrInvalidTitle, got %v", err)
	}
}

func TestService_Announce_IgnoresPublishFailure(t *testing.T) {
	t.Parallel()

	pub := &recordingPublisher{err: errors.New("redis down")}
	svc := NewService(&fakeRepo{}, pub, nil)

	svc.Announce(context.Background(), &Notification{ID: "n1", UserID: "u1"}, nil)

	if len(pub.events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(pub.events))
	}
	if pub.events[0].Type != event.TypeNotificationCreated || pub.events[0].UserID != "u1" {
		t.Fatalf("unexpected event %+v", pub.events[0])
	}
}

func TestService_MarkRead_OnlyRecipient(t *testing.T) {
	t.Parallel()

	repo := &fakeRepo{}
	svc := NewService(repo, nil, nil)
	n, err := svc.Notify(context.Background(), NotifyInput{UserID: "owner", Title: "hi"})
	if err != nil {
		t.Fatalf("Notify returned error: %v", err)
	}

	if err := svc.MarkRead(context.Background(), auth.Principal{UID: "intruder"}, n.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if repo.items[0].Status != StatusUnread {
		t.Fatal("forbidden call must not change the notification")
	}

	if err := svc.MarkRead(context.Background(), auth.Principal{UID: "owner"}, n.ID); err != nil {
		t.Fatalf("MarkRead returned error: %v", err)
	}
	if repo.items[0].Status != StatusRead {
		t.Fatal("expected notification to be read")
	}

	if err := svc.MarkRead(context.Background(), auth.Principal{UID: "owner"}, "missing"); !errors.Is(err, ErrNotificationNotFound) {
		t.Fatalf("expected ErrNotificationNotFound, got %v", err)
	}
}

func TestService_ListForUser_PagesAndFilters(t *testing.T) {
	t.Parallel()

	repo := &fakeRepo{}
	svc := NewService(repo, nil, nil)
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		if _, err := svc.Notify(ctx, NotifyInput{UserID: "u1", Title: "t" + strconv.Itoa(i)}); err != nil {
			t.Fatalf("Notify error: %v", err)
		}
	}
	if _, err := svc.Notify(ctx, NotifyInput{UserID: "u2", Title: "other"}); err != nil {
		t.Fatalf("Notify error: %v", err)
	}

	p := auth.Principal{UID: "u1"}
	page, err := svc.ListForUser(ctx, p, ListInput{PageSize: 2})
	if err != nil {
		t.Fatalf("ListForUser returned error: %v", err)
	}
	if len(page.Notifications) != 2 || page.NextPageToken != "2" {
		t.Fatalf("unexpected first page: %d items, token %q", len(page.Notifications), page.NextPageToken)
	}
	if page.Notifications[0].Title != "t2" {
		t.Errorf("expected newest first, got %s", page.Notifications[0].Title)
	}

	changed, err := svc.MarkAllRead(ctx, p)
	if err != nil || changed != 3 {
		t.Fatalf("MarkAllRead: changed=%d err=%v", changed, err)
	}

	unread, err := svc.ListForUser(ctx, p, ListInput{UnreadOnly: true})
	if err != nil {
		t.Fatalf("ListForUser returned error: %v", err)
	}
	if len(unread.Notifications) != 0 {
		t.Fatalf("expected no unread notifications, got %d", len(unread.Notifications))
	}

	if _, err := svc.ListForUser(ctx, p, ListInput{PageToken: "x"}); !errors.Is(err, ErrInvalidPageToken) {
		t.Fatalf("expected ErrInvalidPageToken, got %v", err)
	}
	if _, err := svc.ListForUser(ctx, p, ListInput{PageSize: maxListPageSize + 1}); !errors.Is(err, ErrInvalidPageSize) {
		t.Fatalf("expected ErrInvalidPageSize, got %v", err)
	}
}
