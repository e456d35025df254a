package application

import "errors"

var (
	// ErrApplicationNotFound is returned when no application has the given id.
	ErrApplicationNotFound = errors.New("application not found")
	// ErrForbidden is returned for company or applicant ownership mismatches.
	ErrForbidden = errors.New("forbidden")
	// ErrInvalidStatus is returned for a status outside the accepted set.
	ErrInvalidStatus = errors.New("invalid status")
	// ErrTransitionNotAllowed is returned when the state machine rejects (from, to).
	ErrTransitionNotAllowed = errors.New("status transition not allowed")
	// ErrAlreadyApplied is returned for a second application to the same job.
	ErrAlreadyApplied = errors.New("already applied to this job")
	// ErrJobClosed is returned when applying to a closed posting.
	ErrJobClosed = errors.New("job is not accepting applications")
	ErrInvalidID = errors.New("invalid id")
)
