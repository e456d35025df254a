// Package firebase verifies Firebase Authentication ID tokens.
package firebase

import (
	"context"
	"fmt"
	"strings"

	firebase "firebase.google.com/go/v4"
	fbauth "firebase.google.com/go/v4/auth"
	"github.com/hireloop/portal-api/internal/core/auth"
	"google.golang.org/api/option"
)

type idTokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*fbauth.Token, error)
}

// Verifier implements auth.TokenVerifier with the Firebase Admin SDK.
type Verifier struct {
	client idTokenVerifier
}

// NewVerifier initialises the Admin SDK for projectID. An empty
// credentialsFile falls back to application default credentials.
func NewVerifier(ctx context.Context, projectID, credentialsFile string) (*Verifier, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: projectID}, opts...)
	if err != nil {
		return nil, fmt.Errorf("firebase: init app: %w", err)
	}
	client, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("firebase: auth client: %w", err)
	}
	return &Verifier{client: client}, nil
}

// Verify checks the signature, audience and expiry of an ID token and
// returns the identity it carries.
func (v *Verifier) Verify(ctx context.Context, idToken string) (auth.Identity, error) {
	tok, err := v.client.VerifyIDToken(ctx, idToken)
	if err != nil {
		return auth.Identity{}, err
	}
	return auth.Identity{
		UID:   tok.UID,
		Email: strings.ToLower(claimString(tok.Claims, "email")),
		Name:  claimString(tok.Claims, "name"),
	}, nil
}

func claimString(claims map[string]any, key string) string {
	v, _ := claims[key].(string)
	return v
}
