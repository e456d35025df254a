package user

import "errors"

var (
	// ErrUserNotFound is returned when no account exists for an id.
	ErrUserNotFound = errors.New("user not found")
	// ErrUserAlreadyExists is returned when registering an existing uid or email.
	ErrUserAlreadyExists = errors.New("user already exists")
	// ErrInvalidEmail is returned for a malformed email address.
	ErrInvalidEmail = errors.New("invalid email")
	// ErrInvalidName is returned for an empty display name.
	ErrInvalidName = errors.New("invalid name")
	// ErrInvalidRole is returned for a role that cannot be self-assigned.
	ErrInvalidRole = errors.New("invalid role")
	// ErrInvalidID is returned for an empty id.
	ErrInvalidID = errors.New("invalid id")
)
