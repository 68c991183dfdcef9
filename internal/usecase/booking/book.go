package booking

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/barbergrid/api/internal/apperr"
	"github.com/barbergrid/api/internal/audit"
	"github.com/barbergrid/api/internal/availability"
	domain "github.com/barbergrid/api/internal/domain/appointment"
	"github.com/barbergrid/api/internal/domain/schedule"
	"github.com/barbergrid/api/internal/locks"
	"github.com/barbergrid/api/internal/models"
	"github.com/barbergrid/api/internal/timegrid"
)

// ======================================================
// INPUT
// ======================================================

type BookInput struct {
	BarbershopID uint
	StaffID      uint
	ServiceID    uint

	Date        string
	StartMinute int

	ClientName  string
	ClientPhone string
	ClientEmail string

	Notes string

	// Public bookings honor the shop's minimum advance window; staff
	// booking on a client's behalf may bypass it.
	EnforceMinAdvance bool
}

// ======================================================
// USE CASE
// ======================================================

// Book is the booking guard: it validates every reference, then re-resolves
// the day and recomputes availability at commit time inside the per-staff
// critical section. Client-cached availability is never trusted. Two
// concurrent requests for the same slot yield one appointment and one
// ConflictError.
type Book struct {
	repo     domain.Repository
	locker   locks.StaffLocker
	audit    *audit.Dispatcher
	lockWait time.Duration
	clock    func() time.Time
}

func NewBook(
	repo domain.Repository,
	locker locks.StaffLocker,
	auditor *audit.Dispatcher,
	lockWait time.Duration,
) *Book {
	return &Book{
		repo:     repo,
		locker:   locker,
		audit:    auditor,
		lockWait: lockWait,
		clock:    time.Now,
	}
}

// ======================================================
// EXECUTE
// ======================================================

func (uc *Book) Execute(
	ctx context.Context,
	in BookInput,
) (*models.Appointment, error) {

	weekday, err := timegrid.Weekday(in.Date)
	if err != nil {
		return nil, apperr.Validation("invalid_date")
	}
	if in.StartMinute < 0 || in.StartMinute >= timegrid.MinutesPerDay {
		return nil, apperr.Validation("invalid_start_minute")
	}
	if in.ClientName == "" || in.ClientPhone == "" {
		return nil, apperr.Validation("missing_client")
	}

	// --------------------------------------------------
	// Reference validation + duration/price snapshot
	// --------------------------------------------------
	shop, err := uc.repo.GetBarbershopByID(ctx, in.BarbershopID)
	if err != nil {
		return nil, apperr.Validation("barbershop_not_found")
	}

	staff, err := uc.repo.GetStaff(ctx, in.BarbershopID, in.StaffID)
	if err != nil || !staff.Active {
		return nil, apperr.Validation("staff_not_found")
	}

	service, err := uc.repo.GetService(ctx, in.BarbershopID, in.ServiceID)
	if err != nil || !service.Active {
		return nil, apperr.Validation("service_not_found")
	}
	if service.DurationMin <= 0 {
		return nil, apperr.Validation("invalid_duration")
	}

	assignment, err := uc.repo.GetAssignment(ctx, in.StaffID, in.ServiceID)
	if err != nil || !assignment.Active {
		return nil, apperr.Validation("service_not_offered")
	}
	price := assignment.EffectivePrice(service.Price)

	now := uc.clock()
	if in.EnforceMinAdvance && tooSoon(shop, now, in.Date, in.StartMinute) {
		return nil, apperr.Validation("too_soon")
	}

	// --------------------------------------------------
	// Per-staff critical section: recheck + commit
	// --------------------------------------------------
	release, err := uc.locker.Acquire(ctx, in.StaffID, uc.lockWait)
	if err != nil {
		return nil, err
	}
	defer release()

	rs, err := uc.repo.RuleSetFor(ctx, in.BarbershopID, in.StaffID, in.Date, weekday)
	if err != nil {
		return nil, err
	}

	profile := schedule.Resolve(rs)
	if !profile.Open {
		return nil, apperr.Conflict("day_closed")
	}

	busy, err := uc.repo.ListOccupying(ctx, in.StaffID, in.Date)
	if err != nil {
		return nil, err
	}

	step := shop.SlotStepMinutes
	if step <= 0 {
		step = service.DurationMin
	}

	slots := availability.Compute(
		profile,
		service.DurationMin,
		busy,
		step,
		nowCutoff(now, in.Date),
	)
	if !availability.Contains(slots, in.StartMinute) {
		return nil, apperr.Conflict("slot_unavailable")
	}

	client, err := uc.repo.GetOrCreateClient(
		ctx,
		in.BarbershopID,
		in.ClientName,
		in.ClientPhone,
		in.ClientEmail,
	)
	if err != nil {
		return nil, err
	}

	ap := &models.Appointment{
		Reference:    uuid.NewString(),
		BarbershopID: in.BarbershopID,
		StaffID:      in.StaffID,
		ClientID:     client.ID,
		ServiceID:    service.ID,
		Date:         in.Date,
		StartMinute:  in.StartMinute,
		EndMinute:    in.StartMinute + service.DurationMin,
		DurationMin:  service.DurationMin,
		Price:        price,
		Status:       string(domain.InitialStatus()),
		Notes:        in.Notes,
	}

	if err := uc.repo.CreateAppointmentChecked(ctx, ap); err != nil {
		if apperr.IsConflict(err) {
			uc.audit.Dispatch(audit.Event{
				BarbershopID: in.BarbershopID,
				Action:       "appointment_conflict",
				Entity:       "appointment",
				Metadata: map[string]any{
					"staff_id": in.StaffID,
					"date":     in.Date,
					"start":    in.StartMinute,
				},
			})
		}
		return nil, err
	}

	log.Info().
		Uint("appointment_id", ap.ID).
		Uint("staff_id", in.StaffID).
		Str("date", in.Date).
		Int("start_minute", in.StartMinute).
		Msg("appointment booked")

	uc.audit.Dispatch(audit.Event{
		BarbershopID: in.BarbershopID,
		Action:       "appointment_created",
		Entity:       "appointment",
		EntityID:     &ap.ID,
	})

	return ap, nil
}

// tooSoon and the public availability cutoff share advanceCutoff, so a slot
// rendered available is never rejected for starting too early.
func tooSoon(shop *models.Barbershop, now time.Time, date string, startMinute int) bool {
	cut := advanceCutoff(shop, now, date)
	return cut != nil && startMinute <= *cut
}
