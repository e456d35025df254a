// Package email implements mail.Sender over SMTP, the Gmail API and slog.
package email

import (
	"bytes"
	"fmt"

	gomail "github.com/wneessen/go-mail"

	"github.com/hireloop/portal-api/internal/core/mail"
)

// buildMsg renders msg as a MIME message. When both bodies are present the
// HTML part is added as an alternative to the plain text.
func buildMsg(from string, msg mail.Message) (*gomail.Msg, error) {
	if err := msg.Validate(); err != nil {
		return nil, err
	}

	m := gomail.NewMsg()
	if err := m.From(from); err != nil {
		return nil, fmt.Errorf("email: from %q: %w", from, err)
	}
	if err := m.To(msg.To...); err != nil {
		return nil, fmt.Errorf("email: recipients: %w", err)
	}
	m.Subject(msg.Subject)

	switch {
	case msg.Text != "" && msg.HTML != "":
		m.SetBodyString(gomail.TypeTextPlain, msg.Text)
		m.AddAlternativeString(gomail.TypeTextHTML, msg.HTML)
	case msg.HTML != "":
		m.SetBodyString(gomail.TypeTextHTML, msg.HTML)
	default:
		m.SetBodyString(gomail.TypeTextPlain, msg.Text)
	}
	return m, nil
}

func render(from string, msg mail.Message) ([]byte, error) {
	m, err := buildMsg(from, msg)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if _, err := m.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("email: render: %w", err)
	}
	return buf.Bytes(), nil
}
