package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/hireloop/portal-api/internal/core/user"
)

// Identity is what the identity provider vouches for.
type Identity struct {
	UID   string
	Email string
	Name  string
}

// TokenVerifier validates an identity provider session token.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (Identity, error)
}

// UserFinder loads the local account for a uid.
type UserFinder interface {
	FindByID(ctx context.Context, id string) (*user.User, error)
}

// Service resolves bearer tokens.
type Service struct {
	verifier TokenVerifier
	users    UserFinder
}

// NewService builds a Service.
func NewService(verifier TokenVerifier, users UserFinder) *Service {
	return &Service{verifier: verifier, users: users}
}

// Identify verifies the Authorization header value without requiring a local
// account. Used by registration.
func (s *Service) Identify(ctx context.Context, authorization string) (Identity, error) {
	token, err := bearerToken(authorization)
	if err != nil {
		return Identity{}, err
	}

	id, err := s.verifier.Verify(ctx, token)
	if err != nil {
		return Identity{}, fmt.Errorf("%w: %v", ErrUnauthenticated, err)
	}
	if id.UID == "" {
		return Identity{}, fmt.Errorf("%w: token has no subject", ErrUnauthenticated)
	}
	return id, nil
}

// Authenticate verifies the Authorization header value and loads the caller's
// account, role and company affiliation.
func (s *Service) Authenticate(ctx context.Context, authorization string) (Principal, error) {
	id, err := s.Identify(ctx, authorization)
	if err != nil {
		return Principal{}, err
	}

	u, err := s.users.FindByID(ctx, id.UID)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return Principal{}, ErrUnregistered
		}
		return Principal{}, fmt.Errorf("auth: load user: %w", err)
	}

	return PrincipalFromUser(u), nil
}

func bearerToken(header string) (string, error) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", fmt.Errorf("%w: missing bearer token", ErrUnauthenticated)
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return "", fmt.Errorf("%w: missing bearer token", ErrUnauthenticated)
	}
	return token, nil
}
