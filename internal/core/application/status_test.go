package application

import (
	"errors"
	"testing"
)

func TestParseBoardStatus(t *testing.T) {
	t.Parallel()

	for _, s := range BoardStatuses() {
		got, err := ParseBoardStatus(string(s))
		if err != nil || got != s {
			t.Errorf("ParseBoardStatus(%q) = %q, %v", s, got, err)
		}
	}

	for _, raw := range []string{"Withdrawn", "hired", "", "Offer"} {
		if _, err := ParseBoardStatus(raw); !errors.Is(err, ErrInvalidStatus) {
			t.Errorf("ParseBoardStatus(%q): expected ErrInvalidStatus, got %v", raw, err)
		}
	}

	if s, err := ParseStatus("Withdrawn"); err != nil || s != StatusWithdrawn {
		t.Errorf("ParseStatus(Withdrawn) = %q, %v", s, err)
	}
}

func TestCanTransition(t *testing.T) {
	t.Parallel()

	cases := []struct {
		from, to Status
		want     bool
	}{
		{StatusApplied, StatusShortlisted, true},
		{StatusApplied, StatusHired, true},
		{StatusInReview, StatusApplied, true},
		{StatusShortlisted, StatusShortlisted, true},
		{StatusInterviewScheduled, StatusRejected, true},
		{StatusHired, StatusHired, true},
		{StatusRejected, StatusRejected, true},
		{StatusHired, StatusApplied, false},
		{StatusHired, StatusRejected, false},
		{StatusRejected, StatusShortlisted, false},
		{StatusWithdrawn, StatusApplied, false},
		{StatusWithdrawn, StatusWithdrawn, false},
		{StatusApplied, StatusWithdrawn, false},
		{Status("Unknown"), StatusApplied, false},
	}
	for _, tc := range cases {
		if got := CanTransition(tc.from, tc.to); got != tc.want {
			t.Errorf("CanTransition(%q, %q) = %v, want %v", tc.from, tc.to, got, tc.want)
		}
	}
}

func TestCanWithdraw(t *testing.T) {
	t.Parallel()

	allowed := map[Status]bool{
		StatusApplied:            true,
		StatusShortlisted:        true,
		StatusInterviewScheduled: true,
		StatusInReview:           true,
		StatusWithdrawn:          true,
		StatusHired:              false,
		StatusRejected:           false,
	}
	for s, want := range allowed {
		if got := CanWithdraw(s); got != want {
			t.Errorf("CanWithdraw(%q) = %v, want %v", s, got, want)
		}
	}
}

func TestStatus_Archives(t *testing.T) {
	t.Parallel()

	for _, s := range BoardStatuses() {
		want := s == StatusHired || s == StatusRejected
		if s.Archives() != want {
			t.Errorf("%q.Archives() = %v, want %v", s, s.Archives(), want)
		}
	}
}

func TestBoardStatuses_ReturnsCopy(t *testing.T) {
	t.Parallel()

	cols := BoardStatuses()
	cols[0] = StatusWithdrawn
	if BoardStatuses()[0] != StatusApplied {
		t.Fatal("BoardStatuses must not expose the backing array")
	}
}
