package company

import "errors"

var (
	// ErrCompanyNotFound is returned when the company does not exist.
	ErrCompanyNotFound = errors.New("company not found")
	// ErrForbidden is returned when the caller's role does not allow the action.
	ErrForbidden = errors.New("forbidden")
	// ErrNotPending is returned when approving a company that was already decided.
	ErrNotPending = errors.New("company is not pending approval")
	// ErrAlreadyAffiliated is returned when the registering user already belongs to a company.
	ErrAlreadyAffiliated = errors.New("user already belongs to a company")
	// ErrInvalidName is returned for a blank company name.
	ErrInvalidName = errors.New("invalid name")
	// ErrInvalidEmail is returned for a malformed contact address.
	ErrInvalidEmail = errors.New("invalid email")
	// ErrInvalidID is returned for a blank id.
	ErrInvalidID = errors.New("invalid id")
)
