package email

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	"github.com/hireloop/portal-api/internal/core/mail"
	"github.com/hireloop/portal-api/internal/platform/config"
)

// GmailSender delivers through the Gmail API as a workspace user, using a
// service account with domain-wide delegation.
type GmailSender struct {
	svc  *gmail.Service
	from string
}

// NewGmailSender reads the service account key and impersonates
// cfg.Gmail.Subject.
func NewGmailSender(ctx context.Context, cfg config.MailConfig) (*GmailSender, error) {
	key, err := os.ReadFile(cfg.Gmail.CredentialsFile)
	if err != nil {
		return nil, fmt.Errorf("email: read gmail credentials: %w", err)
	}

	jwtCfg, err := google.JWTConfigFromJSON(key, gmail.GmailSendScope)
	if err != nil {
		return nil, fmt.Errorf("email: parse gmail credentials: %w", err)
	}
	jwtCfg.Subject = cfg.Gmail.Subject

	svc, err := gmail.NewService(ctx, option.WithHTTPClient(jwtCfg.Client(ctx)))
	if err != nil {
		return nil, fmt.Errorf("email: gmail service: %w", err)
	}
	return NewGmailSenderWithService(svc, cfg.From), nil
}

// NewGmailSenderWithService wraps an existing Gmail client.
func NewGmailSenderWithService(svc *gmail.Service, from string) *GmailSender {
	return &GmailSender{svc: svc, from: from}
}

// Send uploads msg as a raw RFC 5322 message.
func (s *GmailSender) Send(ctx context.Context, msg mail.Message) error {
	raw, err := render(s.from, msg)
	if err != nil {
		return err
	}

	_, err = s.svc.Users.Messages.
		Send("me", &gmail.Message{Raw: base64.URLEncoding.EncodeToString(raw)}).
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("email: gmail send: %w", err)
	}
	return nil
}
