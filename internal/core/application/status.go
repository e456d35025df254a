package application

import "strings"

// Status is the stage of an application in the candidate pipeline.
type Status string

const (
	StatusApplied            Status = "Applied"
	StatusShortlisted        Status = "Shortlisted"
	StatusInterviewScheduled Status = "Interview Scheduled"
	StatusInReview           Status = "In Review"
	StatusRejected           Status = "Rejected"
	StatusHired              Status = "Hired"
	StatusWithdrawn          Status = "Withdrawn"
)

// boardStatuses are the columns of the pipeline board, in display order. They
// are also the only targets accepted from the company side.
var boardStatuses = [...]Status{
	StatusApplied,
	StatusShortlisted,
	StatusInterviewScheduled,
	StatusInReview,
	StatusRejected,
	StatusHired,
}

var activeStatuses = [...]Status{
	StatusApplied,
	StatusShortlisted,
	StatusInterviewScheduled,
	StatusInReview,
}

// transitions is the company-side state machine: transitions[from][to].
// Active stages move freely across the board. Rejected and Hired only accept
// themselves again. Withdrawn accepts nothing.
var transitions = func() map[Status]map[Status]bool {
	t := map[Status]map[Status]bool{
		StatusRejected:  {StatusRejected: true},
		StatusHired:     {StatusHired: true},
		StatusWithdrawn: {},
	}
	for _, from := range activeStatuses {
		allowed := make(map[Status]bool, len(boardStatuses))
		for _, to := range boardStatuses {
			allowed[to] = true
		}
		t[from] = allowed
	}
	return t
}()

// BoardStatuses returns the pipeline columns in display order.
func BoardStatuses() []Status {
	out := make([]Status, len(boardStatuses))
	copy(out, boardStatuses[:])
	return out
}

// ParseStatus accepts any known status, including Withdrawn.
func ParseStatus(raw string) (Status, error) {
	s := Status(strings.TrimSpace(raw))
	if _, ok := transitions[s]; !ok {
		return "", ErrInvalidStatus
	}
	return s, nil
}

// ParseBoardStatus accepts only the six statuses a company may set.
func ParseBoardStatus(raw string) (Status, error) {
	s := Status(strings.TrimSpace(raw))
	if !s.IsBoard() {
		return "", ErrInvalidStatus
	}
	return s, nil
}

// IsBoard reports whether s is one of the pipeline columns.
func (s Status) IsBoard() bool {
	for _, b := range boardStatuses {
		if b == s {
			return true
		}
	}
	return false
}

// IsActive reports whether the application is still moving through the pipeline.
func (s Status) IsActive() bool {
	for _, a := range activeStatuses {
		if a == s {
			return true
		}
	}
	return false
}

// Archives reports whether reaching s marks the application archived.
func (s Status) Archives() bool {
	return s == StatusRejected || s == StatusHired
}

// CanTransition reports whether a company may move an application from one
// status to another.
func CanTransition(from, to Status) bool {
	return transitions[from][to]
}

// CanWithdraw reports whether the applicant may withdraw from status s.
// Withdrawing twice is allowed; withdrawing after a decision is not.
func CanWithdraw(s Status) bool {
	return s.IsActive() || s == StatusWithdrawn
}
