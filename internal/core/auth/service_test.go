package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/hireloop/portal-api/internal/core/user"
)

type stubVerifier struct {
	identities map[string]Identity
}

func (s stubVerifier) Verify(_ context.Context, token string) (Identity, error) {
	id, ok := s.identities[token]
	if !ok {
		return Identity{}, errors.New("token expired")
	}
	return id, nil
}

type stubUsers map[string]*user.User

func (s stubUsers) FindByID(_ context.Context, id string) (*user.User, error) {
	u, ok := s[id]
	if !ok {
		return nil, user.ErrUserNotFound
	}
	return u, nil
}

func newTestService() *Service {
	verifier := stubVerifier{identities: map[string]Identity{
		"good":     {UID: "uid-1", Email: "hr@acme.test"},
		"stranger": {UID: "uid-2"},
		"nosub":    {},
	}}
	users := stubUsers{"uid-1": {
		ID:          "uid-1",
		Email:       "hr@acme.test",
		Role:        user.RoleCompany,
		CompanyID:   "C1",
		CompanyRole: user.CompanyRoleOwner,
	}}
	return NewService(verifier, users)
}

func TestAuthenticate_Success(t *testing.T) {
	t.Parallel()

	p, err := newTestService().Authenticate(context.Background(), "Bearer good")
	if err != nil {
		t.Fatalf("Authenticate returned error: %v", err)
	}
	if p.UID != "uid-1" || p.CompanyID != "C1" || p.Role != user.RoleCompany {
		t.Fatalf("unexpected principal: %+v", p)
	}
	if !p.BelongsTo("C1") || p.BelongsTo("C2") {
		t.Fatalf("BelongsTo mismatch for %+v", p)
	}
}

func TestAuthenticate_Failures(t *testing.T) {
	t.Parallel()

	svc := newTestService()
	cases := []struct {
		header string
		want   error
	}{
		{"", ErrUnauthenticated},
		{"Basic abc", ErrUnauthenticated},
		{"Bearer ", ErrUnauthenticated},
		{"Bearer expired", ErrUnauthenticated},
		{"Bearer nosub", ErrUnauthenticated},
		{"Bearer stranger", ErrUnregistered},
	}
	for _, tc := range cases {
		if _, err := svc.Authenticate(context.Background(), tc.header); !errors.Is(err, tc.want) {
			t.Errorf("Authenticate(%q): expected %v, got %v", tc.header, tc.want, err)
		}
	}
}

func TestIdentify_DoesNotRequireAccount(t *testing.T) {
	t.Parallel()

	id, err := newTestService().Identify(context.Background(), "bearer stranger")
	if err != nil {
		t.Fatalf("Identify returned error: %v", err)
	}
	if id.UID != "uid-2" {
		t.Fatalf("unexpected identity %+v", id)
	}
}

func TestPrincipal_UnaffiliatedBelongsToNothing(t *testing.T) {
	t.Parallel()

	p := Principal{UID: "u"}
	if p.BelongsTo("") {
		t.Fatal("empty company id must never match")
	}
}
