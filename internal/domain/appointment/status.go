package appointment

import "github.com/barbergrid/api/internal/apperr"

// ===============================
// Appointment Status
// ===============================

type Status string

const (
	StatusScheduled  Status = "scheduled"
	StatusConfirmed  Status = "confirmed"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
	StatusNoShow     Status = "no_show"
)

// transitions is the full lifecycle table. Completed, cancelled and no-show
// are terminal.
var transitions = map[Status][]Status{
	StatusScheduled:  {StatusConfirmed, StatusCancelled, StatusNoShow},
	StatusConfirmed:  {StatusInProgress, StatusCancelled, StatusNoShow},
	StatusInProgress: {StatusCompleted},
}

func InitialStatus() Status {
	return StatusScheduled
}

func CanTransition(from, to Status) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Transition validates the move or fails with a StateError naming both ends.
func Transition(from, to Status) error {
	if !CanTransition(from, to) {
		return apperr.State(string(from), string(to))
	}
	return nil
}

func (s Status) Terminal() bool {
	return len(transitions[s]) == 0
}

// Occupying reports whether this status blocks the appointment's interval
// from being rebooked. Cancelled and no-show release the interval while the
// row stays for history.
func (s Status) Occupying() bool {
	switch s {
	case StatusScheduled, StatusConfirmed, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

// OccupyingStatuses returns the occupying set as strings for store queries.
func OccupyingStatuses() []string {
	return []string{
		string(StatusScheduled),
		string(StatusConfirmed),
		string(StatusInProgress),
		string(StatusCompleted),
	}
}
