// Package redis publishes realtime events over Redis pub/sub. A gateway
// subscribed to the per-user channels forwards them to browsers.
package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hireloop/portal-api/internal/core/event"
	goredis "github.com/redis/go-redis/v9"
)

type publishClient interface {
	Publish(ctx context.Context, channel string, message any) *goredis.IntCmd
}

// Publisher implements event.Publisher on PUBLISH.
type Publisher struct {
	client publishClient
	prefix string
}

// NewPublisher builds a Publisher writing to "<prefix>:user:<uid>".
func NewPublisher(client publishClient, prefix string) *Publisher {
	if prefix == "" {
		prefix = "portal"
	}
	return &Publisher{client: client, prefix: prefix}
}

// Channel returns the channel events for userID are published on.
func (p *Publisher) Channel(userID string) string {
	return p.prefix + ":user:" + userID
}

// Publish encodes e as JSON and publishes it on the recipient's channel.
func (p *Publisher) Publish(ctx context.Context, e event.Event) error {
	if e.UserID == "" {
		return fmt.Errorf("redis: event %s has no recipient", e.Type)
	}
	payload, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("redis: encode %s: %w", e.Type, err)
	}
	if err := p.client.Publish(ctx, p.Channel(e.UserID), payload).Err(); err != nil {
		return fmt.Errorf("redis: publish %s: %w", e.Type, err)
	}
	return nil
}
