package user

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"
)

// Clock provides the current time.
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time {
	return time.Now().UTC()
}

const maxNameLength = 120

// Service holds the account use cases.
type Service struct {
	repo  Repository
	clock Clock
}

// UseCase is the account surface used by transports.
type UseCase interface {
	Register(ctx context.Context, in RegisterInput) (*User, error)
	GetUser(ctx context.Context, in GetUserInput) (*User, error)
	UpdateProfile(ctx context.Context, in UpdateProfileInput) (*User, error)
}

// NewService builds a Service. A nil clock uses UTC wall time.
func NewService(repo Repository, clock Clock) *Service {
	if clock == nil {
		clock = realClock{}
	}
	return &Service{repo: repo, clock: clock}
}

// RegisterInput creates the local account for a verified identity.
type RegisterInput struct {
	ID    string
	Email string
	Name  string
	Role  Role
}

// GetUserInput selects an account by id.
type GetUserInput struct {
	ID string
}

// UpdateProfileInput changes the editable profile fields of an account.
type UpdateProfileInput struct {
	ID   string
	Name string
}

// Register creates the account row for an identity that has signed in for the
// first time. Admin accounts are provisioned out of band.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*User, error) {
	id := strings.TrimSpace(in.ID)
	if id == "" {
		return nil, fmt.Errorf("id: %w", ErrInvalidID)
	}

	email, err := normalizeEmail(in.Email)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(in.Name)
	if name == "" || len(name) > maxNameLength {
		return nil, ErrInvalidName
	}

	if in.Role != RoleJobSeeker && in.Role != RoleCompany {
		return nil, ErrInvalidRole
	}

	if err := s.ensureNotExists(ctx, id, email); err != nil {
		return nil, err
	}

	now := s.clock.Now()
	return s.repo.Create(ctx, &User{
		ID:        id,
		Email:     email,
		Name:      name,
		Role:      in.Role,
		CreatedAt: now,
		UpdatedAt: now,
	})
}

// GetUser loads an account by id.
func (s *Service) GetUser(ctx context.Context, in GetUserInput) (*User, error) {
	if strings.TrimSpace(in.ID) == "" {
		return nil, fmt.Errorf("id: %w", ErrInvalidID)
	}
	return s.repo.FindByID(ctx, in.ID)
}

// UpdateProfile renames the account. Role, email and affiliation are not
// editable here.
func (s *Service) UpdateProfile(ctx context.Context, in UpdateProfileInput) (*User, error) {
	id := strings.TrimSpace(in.ID)
	if id == "" {
		return nil, fmt.Errorf("id: %w", ErrInvalidID)
	}
	name := strings.TrimSpace(in.Name)
	if name == "" || len(name) > maxNameLength {
		return nil, ErrInvalidName
	}
	return s.repo.UpdateName(ctx, id, name, s.clock.Now())
}

func (s *Service) ensureNotExists(ctx context.Context, id, email string) error {
	if _, err := s.repo.FindByID(ctx, id); err == nil {
		return ErrUserAlreadyExists
	} else if !errors.Is(err, ErrUserNotFound) {
		return err
	}

	if _, err := s.repo.FindByEmail(ctx, email); err == nil {
		return ErrUserAlreadyExists
	} else if !errors.Is(err, ErrUserNotFound) {
		return err
	}
	return nil
}

func normalizeEmail(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", ErrInvalidEmail
	}

	addr, err := mail.ParseAddress(trimmed)
	if err != nil {
		return "", ErrInvalidEmail
	}

	return strings.ToLower(addr.Address), nil
}
