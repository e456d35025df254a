// Package event defines the realtime events published after a use case commits.
package event

import (
	"context"
	"time"
)

const (
	TypeApplicationStatusChanged = "EVENT_APPLICATION_STATUS_CHANGED"
	TypeNotificationCreated      = "EVENT_NOTIFICATION_CREATED"
)

// Event is addressed to one user; Payload must be JSON encodable.
type Event struct {
	Type       string         `json:"type"`
	UserID     string         `json:"userId"`
	Payload    map[string]any `json:"payload,omitempty"`
	OccurredAt time.Time      `json:"occurredAt"`
}

// Publisher fans events out to connected clients. Delivery is best effort.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

// NopPublisher drops every event.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }
