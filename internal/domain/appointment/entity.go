package appointment

import (
	"time"

	"github.com/barbergrid/api/internal/apperr"
	"github.com/barbergrid/api/internal/models"
)

// ===============================
// Lifecycle Actions
// ===============================

type Action string

const (
	ActionConfirm  Action = "confirm"
	ActionStart    Action = "start"
	ActionComplete Action = "complete"
	ActionCancel   Action = "cancel"
	ActionNoShow   Action = "no_show"
)

var actionTargets = map[Action]Status{
	ActionConfirm:  StatusConfirmed,
	ActionStart:    StatusInProgress,
	ActionComplete: StatusCompleted,
	ActionCancel:   StatusCancelled,
	ActionNoShow:   StatusNoShow,
}

// Target resolves an action to its destination status.
func (a Action) Target() (Status, bool) {
	s, ok := actionTargets[a]
	return s, ok
}

// Apply performs a lifecycle action on the appointment, stamping the matching
// timestamp column. Unknown actions are validation failures; illegal moves
// fail with a StateError and leave the row untouched.
func Apply(ap *models.Appointment, action Action, now time.Time) error {
	target, ok := action.Target()
	if !ok {
		return apperr.Validation("unknown_action")
	}

	if err := Transition(Status(ap.Status), target); err != nil {
		return err
	}

	ap.Status = string(target)
	switch target {
	case StatusConfirmed:
		ap.ConfirmedAt = &now
	case StatusInProgress:
		ap.StartedAt = &now
	case StatusCompleted:
		ap.CompletedAt = &now
	case StatusCancelled:
		ap.CancelledAt = &now
	case StatusNoShow:
		ap.NoShowAt = &now
	}
	return nil
}
