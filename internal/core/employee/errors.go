package employee

import "errors"

var (
	// ErrForbidden is returned when the caller is neither a member of the company nor an admin.
	ErrForbidden = errors.New("not a member of this company")
	// ErrInvalidCompanyID is returned for a blank company id.
	ErrInvalidCompanyID = errors.New("invalid company id")
	// ErrInvalidUserID is returned for a blank user id.
	ErrInvalidUserID = errors.New("invalid user id")
	// ErrInvalidPageSize is returned when the requested page is too large.
	ErrInvalidPageSize = errors.New("invalid page size")
	// ErrInvalidPageToken is returned for a malformed page token.
	ErrInvalidPageToken = errors.New("invalid page token")
)
