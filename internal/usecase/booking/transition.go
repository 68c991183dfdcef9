package booking

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/barbergrid/api/internal/apperr"
	"github.com/barbergrid/api/internal/audit"
	domain "github.com/barbergrid/api/internal/domain/appointment"
	"github.com/barbergrid/api/internal/models"
)

// TransitionAppointment applies one lifecycle action. Illegal moves surface
// the StateError unchanged; nothing is coerced or silently dropped.
type TransitionAppointment struct {
	repo  domain.Repository
	audit *audit.Dispatcher
	clock func() time.Time
}

func NewTransitionAppointment(
	repo domain.Repository,
	auditor *audit.Dispatcher,
) *TransitionAppointment {
	return &TransitionAppointment{
		repo:  repo,
		audit: auditor,
		clock: time.Now,
	}
}

func (uc *TransitionAppointment) Execute(
	ctx context.Context,
	barbershopID uint,
	actorID uint,
	appointmentID uint,
	action domain.Action,
) (*models.Appointment, error) {

	ap, err := uc.repo.GetAppointmentForShop(ctx, appointmentID, barbershopID)
	if err != nil {
		return nil, apperr.Validation("appointment_not_found")
	}

	from := ap.Status
	if err := domain.Apply(ap, action, uc.clock()); err != nil {
		return nil, err
	}

	// Compare-and-swap against the status the move was validated on, so a
	// concurrent transition cannot be overwritten by this stale one.
	if err := uc.repo.UpdateAppointmentStatus(ctx, ap, from); err != nil {
		return nil, err
	}

	log.Info().
		Uint("appointment_id", ap.ID).
		Str("from", from).
		Str("to", ap.Status).
		Msg("appointment transitioned")

	uc.audit.Dispatch(audit.Event{
		BarbershopID: barbershopID,
		UserID:       &actorID,
		Action:       "appointment_" + string(action),
		Entity:       "appointment",
		EntityID:     &ap.ID,
	})

	return ap, nil
}
