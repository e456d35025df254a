package notification

import "errors"

var (
	ErrNotificationNotFound = errors.New("notification not found")
	ErrForbidden            = errors.New("notification belongs to another user")
	ErrInvalidID            = errors.New("invalid id")
	ErrInvalidRecipient     = errors.New("invalid recipient")
	ErrInvalidTitle         = errors.New("invalid title")
	ErrInvalidPageSize      = errors.New("invalid page size")
	ErrInvalidPageToken     = errors.New("invalid page token")
)
