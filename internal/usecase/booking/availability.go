package booking

import (
	"context"
	"time"

	"github.com/barbergrid/api/internal/apperr"
	"github.com/barbergrid/api/internal/availability"
	domain "github.com/barbergrid/api/internal/domain/appointment"
	"github.com/barbergrid/api/internal/domain/schedule"
	"github.com/barbergrid/api/internal/models"
	"github.com/barbergrid/api/internal/timegrid"
)

// ======================================================
// GET AVAILABILITY
// ======================================================

type AvailabilityInput struct {
	BarbershopID uint
	StaffID      uint
	ServiceID    uint
	Date         string

	// Public queries honor the shop's minimum advance window, so the
	// rendered flags match what Book will accept.
	EnforceMinAdvance bool
}

type AvailabilityResult struct {
	Profile schedule.DayProfile `json:"profile"`
	Slots   []availability.Slot `json:"slots"`
}

type GetAvailability struct {
	repo  domain.Repository
	clock func() time.Time
}

func NewGetAvailability(repo domain.Repository) *GetAvailability {
	return &GetAvailability{
		repo:  repo,
		clock: time.Now,
	}
}

func (uc *GetAvailability) Execute(
	ctx context.Context,
	in AvailabilityInput,
) (*AvailabilityResult, error) {

	weekday, err := timegrid.Weekday(in.Date)
	if err != nil {
		return nil, apperr.Validation("invalid_date")
	}

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

	rs, err := uc.repo.RuleSetFor(ctx, in.BarbershopID, in.StaffID, in.Date, weekday)
	if err != nil {
		return nil, err
	}

	profile := schedule.Resolve(rs)
	if !profile.Open {
		return &AvailabilityResult{Profile: profile}, nil
	}

	busy, err := uc.repo.ListOccupying(ctx, in.StaffID, in.Date)
	if err != nil {
		return nil, err
	}

	step := shop.SlotStepMinutes
	if step <= 0 {
		step = service.DurationMin
	}

	now := uc.clock()
	cutoff := nowCutoff(now, in.Date)
	if in.EnforceMinAdvance {
		if c := advanceCutoff(shop, now, in.Date); c != nil && (cutoff == nil || *c > *cutoff) {
			cutoff = c
		}
	}

	slots := availability.Compute(
		profile,
		service.DurationMin,
		busy,
		step,
		cutoff,
	)

	return &AvailabilityResult{Profile: profile, Slots: slots}, nil
}

// nowCutoff returns the current minute-of-day when the requested date is
// today, nil otherwise. All wall-clock time is shop-local by contract.
func nowCutoff(now time.Time, date string) *int {
	if !timegrid.SameDate(now, date) {
		return nil
	}
	m := timegrid.MinuteOf(now)
	return &m
}

// advanceCutoff converts the shop's minimum advance window into the last
// blocked start minute on the requested date. Nil means the whole day is far
// enough out; a full-day value blocks every slot.
func advanceCutoff(shop *models.Barbershop, now time.Time, date string) *int {
	minAdvance := shop.MinAdvanceMinutes
	if minAdvance <= 0 {
		minAdvance = 120
	}

	day, err := timegrid.ParseDate(date)
	if err != nil {
		return nil
	}

	earliest := time.Date(
		now.Year(), now.Month(), now.Day(),
		now.Hour(), now.Minute(), 0, 0, time.UTC,
	).Add(time.Duration(minAdvance) * time.Minute)

	if !earliest.After(day) {
		return nil
	}

	m := int(earliest.Sub(day) / time.Minute)
	if m > timegrid.MinutesPerDay {
		m = timegrid.MinutesPerDay
	}
	cut := m - 1
	return &cut
}
