package meeting

import "errors"

var (
	ErrMeetingNotFound = errors.New("meeting request not found")
	ErrForbidden       = errors.New("forbidden")
	ErrNotPending      = errors.New("meeting request is not pending")
	ErrInvalidTitle    = errors.New("invalid title")
	ErrInvalidStart    = errors.New("start time must be in the future")
	ErrInvalidDuration = errors.New("duration must be between 15 and 240 minutes")
	ErrInvalidID       = errors.New("invalid id")
	// ErrProvider wraps failures of the external meeting provider.
	ErrProvider = errors.New("meeting provider unavailable")
)
