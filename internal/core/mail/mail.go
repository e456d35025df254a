// Package mail defines the outbound mail port used by the approval flows.
package mail

import (
	"context"
	"errors"
)

// Message is a single outbound email.
type Message struct {
	To      []string
	Subject string
	Text    string
	HTML    string
}

// Sender delivers messages.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// ErrNoRecipients is returned for a message without recipients.
var ErrNoRecipients = errors.New("mail: message has no recipients")

// Validate checks the fields every transport needs.
func (m Message) Validate() error {
	if len(m.To) == 0 {
		return ErrNoRecipients
	}
	if m.Subject == "" {
		return errors.New("mail: subject is required")
	}
	if m.Text == "" && m.HTML == "" {
		return errors.New("mail: body is required")
	}
	return nil
}
