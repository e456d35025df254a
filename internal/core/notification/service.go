package notification

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hireloop/portal-api/internal/core/auth"
	"github.com/hireloop/portal-api/internal/core/event"
)

// Clock provides the current time.
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time {
	return time.Now().UTC()
}

const (
	defaultListPageSize = 50
	maxListPageSize     = 200
)

// Service writes and serves the notification feed.
type Service struct {
	repo      Repository
	publisher event.Publisher
	clock     Clock
}

// UseCase is the feed surface used by the HTTP layer.
type UseCase interface {
	ListForUser(ctx context.Context, p auth.Principal, in ListInput) (*ListResult, error)
	MarkRead(ctx context.Context, p auth.Principal, id string) error
	MarkAllRead(ctx context.Context, p auth.Principal) (int64, error)
}

// NewService builds a Service. A nil publisher drops realtime events.
func NewService(repo Repository, publisher event.Publisher, clock Clock) *Service {
	if publisher == nil {
		publisher = event.NopPublisher{}
	}
	if clock == nil {
		clock = realClock{}
	}
	return &Service{repo: repo, publisher: publisher, clock: clock}
}

// NotifyInput describes one notification to append.
type NotifyInput struct {
	UserID      string
	Title       string
	Message     string
	Type        string
	ReferenceID string
	RedirectURL string
	Metadata    map[string]any
}

// ListInput selects a page of the caller's feed.
type ListInput struct {
	UnreadOnly bool
	PageSize   int
	PageToken  string
}

// ListResult is one page of the feed.
type ListResult struct {
	Notifications []*Notification
	NextPageToken string
}

// Notify appends one unread notification. It writes through the transaction in
// ctx when the caller opened one, so the notification commits or rolls back
// with the change it describes. Call Announce after commit.
func (s *Service) Notify(ctx context.Context, in NotifyInput) (*Notification, error) {
	userID := strings.TrimSpace(in.UserID)
	if userID == "" {
		return nil, ErrInvalidRecipient
	}
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, ErrInvalidTitle
	}

	n := &Notification{
		ID:          uuid.NewString(),
		UserID:      userID,
		Title:       title,
		Message:     strings.TrimSpace(in.Message),
		Type:        in.Type,
		ReferenceID: in.ReferenceID,
		RedirectURL: in.RedirectURL,
		Metadata:    in.Metadata,
		Status:      StatusUnread,
		CreatedAt:   s.clock.Now(),
	}

	created, err := s.repo.Create(ctx, n)
	if err != nil {
		return nil, fmt.Errorf("notification: create: %w", err)
	}
	return created, nil
}

// Announce publishes a realtime event for each committed notification.
// Failures are logged and never returned.
func (s *Service) Announce(ctx context.Context, ns ...*Notification) {
	for _, n := range ns {
		if n == nil {
			continue
		}
		err := s.publisher.Publish(ctx, event.Event{
			Type:   event.TypeNotificationCreated,
			UserID: n.UserID,
			Payload: map[string]any{
				"id":          n.ID,
				"title":       n.Title,
				"type":        n.Type,
				"referenceId": n.ReferenceID,
			},
			OccurredAt: n.CreatedAt,
		})
		if err != nil {
			slog.Warn("notification: publish event failed", "notification_id", n.ID, "user_id", n.UserID, "error", err)
		}
	}
}

// ListForUser returns the caller's feed, newest first.
func (s *Service) ListForUser(ctx context.Context, p auth.Principal, in ListInput) (*ListResult, error) {
	limit, err := normalizePageSize(in.PageSize)
	if err != nil {
		return nil, err
	}
	offset, err := parsePageToken(in.PageToken)
	if err != nil {
		return nil, err
	}

	items, next, err := s.repo.List(ctx, ListFilter{
		UserID:     p.UID,
		UnreadOnly: in.UnreadOnly,
		Limit:      limit,
		Offset:     offset,
	})
	if err != nil {
		return nil, err
	}
	return &ListResult{Notifications: items, NextPageToken: next}, nil
}

// MarkRead marks one of the caller's notifications as read.
func (s *Service) MarkRead(ctx context.Context, p auth.Principal, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return fmt.Errorf("id: %w", ErrInvalidID)
	}

	n, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if n.UserID != p.UID {
		return ErrForbidden
	}
	if n.Status == StatusRead {
		return nil
	}
	return s.repo.MarkRead(ctx, id, s.clock.Now())
}

// MarkAllRead marks every unread notification of the caller as read and
// returns how many changed.
func (s *Service) MarkAllRead(ctx context.Context, p auth.Principal) (int64, error) {
	return s.repo.MarkAllRead(ctx, p.UID, s.clock.Now())
}

func normalizePageSize(pageSize int) (int, error) {
	if pageSize <= 0 {
		return defaultListPageSize, nil
	}
	if pageSize > maxListPageSize {
		return 0, ErrInvalidPageSize
	}
	return pageSize, nil
}

func parsePageToken(token string) (int, error) {
	if strings.TrimSpace(token) == "" {
		return 0, nil
	}

	offset, err := strconv.Atoi(token)
	if err != nil || offset < 0 {
		return 0, ErrInvalidPageToken
	}

	return offset, nil
}
