package auth

import "errors"

var (
	// ErrUnauthenticated covers a missing, malformed or rejected bearer token.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrUnregistered is returned when a valid token has no local account yet.
	ErrUnregistered = errors.New("account not registered")
)
