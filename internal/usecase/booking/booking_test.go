package booking

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/barbergrid/api/internal/apperr"
	"github.com/barbergrid/api/internal/audit"
	domain "github.com/barbergrid/api/internal/domain/appointment"
	infraRepo "github.com/barbergrid/api/internal/infra/repository"
	"github.com/barbergrid/api/internal/locks"
	"github.com/barbergrid/api/internal/models"
	"github.com/barbergrid/api/internal/timegrid"
)

// Monday in the far future relative to the fixed test clock.
const testDate = "2026-06-22"

var testClock = func() time.Time {
	return time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)
}

type fixture struct {
	db         *gorm.DB
	repo       *infraRepo.GormRepository
	book       *Book
	avail      *GetAvailability
	transition *TransitionAppointment

	shop    models.Barbershop
	staff   models.User
	service models.Service
}

func setup(t *testing.T) *fixture {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared",
		strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// One connection keeps the shared in-memory database alive and
	// serializes writes under sqlite.
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.Barbershop{},
		&models.User{},
		&models.Service{},
		&models.StaffService{},
		&models.WeeklyRule{},
		&models.DateException{},
		&models.Client{},
		&models.Appointment{},
		&models.AuditLog{},
	))

	f := &fixture{db: db}

	f.shop = models.Barbershop{Name: "Fade Lab", Slug: "fade-lab", MinAdvanceMinutes: 60}
	require.NoError(t, db.Create(&f.shop).Error)

	f.staff = models.User{
		BarbershopID: f.shop.ID,
		Name:         "Marco",
		Email:        "marco@fadelab.test",
		PasswordHash: "x",
		Role:         models.RoleStaff,
		Active:       true,
	}
	require.NoError(t, db.Create(&f.staff).Error)

	f.service = models.Service{
		BarbershopID: f.shop.ID,
		Name:         "Haircut",
		DurationMin:  30,
		Price:        50,
		Active:       true,
	}
	require.NoError(t, db.Create(&f.service).Error)

	require.NoError(t, db.Create(&models.StaffService{
		StaffID:   f.staff.ID,
		ServiceID: f.service.ID,
		Active:    true,
	}).Error)

	// Shop hours for the test date's weekday: 09:00-18:00, lunch 12:00-13:00.
	weekday, err := timegrid.Weekday(testDate)
	require.NoError(t, err)
	lunchStart, lunchEnd := 720, 780
	require.NoError(t, db.Create(&models.WeeklyRule{
		BarbershopID:     f.shop.ID,
		Weekday:          weekday,
		Open:             true,
		OpenMinute:       540,
		CloseMinute:      1080,
		BreakStartMinute: &lunchStart,
		BreakEndMinute:   &lunchEnd,
	}).Error)

	f.repo = infraRepo.NewGormRepository(db)
	dispatcher := audit.NewDispatcher(audit.New(db))

	f.book = NewBook(f.repo, locks.NewLocalLocker(), dispatcher, 3*time.Second)
	f.book.clock = testClock

	f.avail = NewGetAvailability(f.repo)
	f.avail.clock = testClock

	f.transition = NewTransitionAppointment(f.repo, dispatcher)

	return f
}

func (f *fixture) input(startMinute int) BookInput {
	return BookInput{
		BarbershopID: f.shop.ID,
		StaffID:      f.staff.ID,
		ServiceID:    f.service.ID,
		Date:         testDate,
		StartMinute:  startMinute,
		ClientName:   "Ana",
		ClientPhone:  "+5511999990000",
	}
}

func TestBookSuccess(t *testing.T) {
	f := setup(t)

	ap, err := f.book.Execute(context.Background(), f.input(600))
	require.NoError(t, err)

	assert.Equal(t, "scheduled", ap.Status)
	assert.Equal(t, testDate, ap.Date)
	assert.Equal(t, 600, ap.StartMinute)
	assert.Equal(t, 630, ap.EndMinute)
	assert.Equal(t, 30, ap.DurationMin)
	assert.Equal(t, 50.0, ap.Price)
	assert.NotEmpty(t, ap.Reference)
	assert.NotZero(t, ap.ClientID)
}

func TestBookCustomPriceSnapshot(t *testing.T) {
	f := setup(t)

	custom := 42.0
	require.NoError(t, f.db.
		Model(&models.StaffService{}).
		Where("staff_id = ? AND service_id = ?", f.staff.ID, f.service.ID).
		Update("custom_price", custom).Error)

	ap, err := f.book.Execute(context.Background(), f.input(600))
	require.NoError(t, err)
	assert.Equal(t, custom, ap.Price)

	// Later catalog edits must not touch the snapshot.
	require.NoError(t, f.db.
		Model(&models.Service{}).
		Where("id = ?", f.service.ID).
		Updates(map[string]any{"price": 99.0, "duration_min": 45}).Error)

	var stored models.Appointment
	require.NoError(t, f.db.First(&stored, ap.ID).Error)
	assert.Equal(t, custom, stored.Price)
	assert.Equal(t, 30, stored.DurationMin)
}

func TestBookValidation(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	_, err := f.book.Execute(ctx, BookInput{
		BarbershopID: f.shop.ID, StaffID: f.staff.ID, ServiceID: f.service.ID,
		Date: "junk", StartMinute: 600, ClientName: "Ana", ClientPhone: "1",
	})
	assert.True(t, apperr.IsValidation(err, "invalid_date"))

	in := f.input(-10)
	_, err = f.book.Execute(ctx, in)
	assert.True(t, apperr.IsValidation(err, "invalid_start_minute"))

	in = f.input(600)
	in.ClientPhone = ""
	_, err = f.book.Execute(ctx, in)
	assert.True(t, apperr.IsValidation(err, "missing_client"))

	in = f.input(600)
	in.ServiceID = 999
	_, err = f.book.Execute(ctx, in)
	assert.True(t, apperr.IsValidation(err, "service_not_found"))

	in = f.input(600)
	in.StaffID = 999
	_, err = f.book.Execute(ctx, in)
	assert.True(t, apperr.IsValidation(err, "staff_not_found"))
}

func TestBookInactiveAssignmentRejected(t *testing.T) {
	f := setup(t)

	require.NoError(t, f.db.
		Model(&models.StaffService{}).
		Where("staff_id = ? AND service_id = ?", f.staff.ID, f.service.ID).
		Update("active", false).Error)

	_, err := f.book.Execute(context.Background(), f.input(600))
	assert.True(t, apperr.IsValidation(err, "service_not_offered"))
}

func TestBookClosedDayConflict(t *testing.T) {
	f := setup(t)

	// Tuesday has no rule at any level, so it resolves closed.
	in := f.input(600)
	in.Date = "2026-06-23"
	_, err := f.book.Execute(context.Background(), in)
	assert.True(t, apperr.IsConflict(err))
}

func TestBookDuringBreakConflict(t *testing.T) {
	f := setup(t)

	_, err := f.book.Execute(context.Background(), f.input(720))
	assert.True(t, apperr.IsConflict(err))
}

func TestBookOffGridStartConflict(t *testing.T) {
	f := setup(t)

	// 10:15 is not a candidate start when stepping by the 30-minute duration.
	_, err := f.book.Execute(context.Background(), f.input(615))
	assert.True(t, apperr.IsConflict(err))
}

func TestBookTakenSlotConflict(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	_, err := f.book.Execute(ctx, f.input(600))
	require.NoError(t, err)

	_, err = f.book.Execute(ctx, f.input(600))
	assert.True(t, apperr.IsConflict(err))

	// The neighbouring slot is unaffected.
	_, err = f.book.Execute(ctx, f.input(630))
	assert.NoError(t, err)
}

func TestBookMinAdvanceEnforcedForPublic(t *testing.T) {
	f := setup(t)

	in := f.input(600)
	in.Date = testClock().Format(timegrid.DateLayout)
	in.EnforceMinAdvance = true

	// 10:00 start requested at 10:00 with a 60-minute advance window.
	_, err := f.book.Execute(context.Background(), in)
	assert.True(t, apperr.IsValidation(err, "too_soon"))
}

// Two concurrent requests for the same staff member and slot: exactly one
// appointment is created, the other caller gets a ConflictError.
func TestConcurrentBookingSameSlot(t *testing.T) {
	f := setup(t)

	var wg sync.WaitGroup
	results := make([]error, 2)

	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, results[i] = f.book.Execute(context.Background(), f.input(600))
		}(i)
	}
	wg.Wait()

	successes, conflicts := 0, 0
	for _, err := range results {
		switch {
		case err == nil:
			successes++
		case apperr.IsConflict(err):
			conflicts++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}

	assert.Equal(t, 1, successes)
	assert.Equal(t, 1, conflicts)

	var count int64
	require.NoError(t, f.db.
		Model(&models.Appointment{}).
		Where("staff_id = ? AND date = ? AND start_minute = ?", f.staff.ID, testDate, 600).
		Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

// Occupying appointments of one staff member never overlap, whatever mix of
// bookings went through.
func TestNoOverlappingOccupyingAppointments(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	for _, start := range []int{540, 570, 600, 570, 555, 630} {
		_, _ = f.book.Execute(ctx, f.input(start))
	}

	intervals, err := f.repo.ListOccupying(ctx, f.staff.ID, testDate)
	require.NoError(t, err)

	for i := 0; i < len(intervals); i++ {
		for j := i + 1; j < len(intervals); j++ {
			a, b := intervals[i], intervals[j]
			assert.False(t, a.Start < b.End && b.Start < a.End,
				"overlap between [%d,%d) and [%d,%d)", a.Start, a.End, b.Start, b.End)
		}
	}
}

// Cancelling releases the interval: the slot shows available again and can
// be rebooked, while the cancelled row stays for history.
func TestCancelFreesSlot(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	ap, err := f.book.Execute(ctx, f.input(600))
	require.NoError(t, err)

	availIn := AvailabilityInput{
		BarbershopID: f.shop.ID,
		StaffID:      f.staff.ID,
		ServiceID:    f.service.ID,
		Date:         testDate,
	}

	result, err := f.avail.Execute(ctx, availIn)
	require.NoError(t, err)
	assert.False(t, slotAvailable(t, result, 600))

	_, err = f.transition.Execute(ctx, f.shop.ID, f.staff.ID, ap.ID, domain.ActionCancel)
	require.NoError(t, err)

	result, err = f.avail.Execute(ctx, availIn)
	require.NoError(t, err)
	assert.True(t, slotAvailable(t, result, 600))

	// Rebooking the freed slot succeeds; the cancelled row is still there.
	_, err = f.book.Execute(ctx, f.input(600))
	require.NoError(t, err)

	var cancelled models.Appointment
	require.NoError(t, f.db.First(&cancelled, ap.ID).Error)
	assert.Equal(t, "cancelled", cancelled.Status)
	assert.NotNil(t, cancelled.CancelledAt)
}

func TestTransitionLifecyclePersisted(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	ap, err := f.book.Execute(ctx, f.input(600))
	require.NoError(t, err)

	ap, err = f.transition.Execute(ctx, f.shop.ID, f.staff.ID, ap.ID, domain.ActionConfirm)
	require.NoError(t, err)
	assert.Equal(t, "confirmed", ap.Status)

	ap, err = f.transition.Execute(ctx, f.shop.ID, f.staff.ID, ap.ID, domain.ActionStart)
	require.NoError(t, err)
	assert.Equal(t, "in_progress", ap.Status)

	// Confirming an in-progress appointment is rejected with a StateError.
	_, err = f.transition.Execute(ctx, f.shop.ID, f.staff.ID, ap.ID, domain.ActionConfirm)
	assert.True(t, apperr.IsState(err))

	ap, err = f.transition.Execute(ctx, f.shop.ID, f.staff.ID, ap.ID, domain.ActionComplete)
	require.NoError(t, err)
	assert.Equal(t, "completed", ap.Status)

	var stored models.Appointment
	require.NoError(t, f.db.First(&stored, ap.ID).Error)
	assert.Equal(t, "completed", stored.Status)
	assert.NotNil(t, stored.ConfirmedAt)
	assert.NotNil(t, stored.StartedAt)
	assert.NotNil(t, stored.CompletedAt)
}

// A transition validated against a stale read must not overwrite a terminal
// status written in between: the cancel wins, the late confirm fails.
func TestStaleTransitionDoesNotResurrectCancelled(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	ap, err := f.book.Execute(ctx, f.input(600))
	require.NoError(t, err)

	// Read taken before the cancel lands, as a slow concurrent confirm would.
	stale, err := f.repo.GetAppointmentForShop(ctx, ap.ID, f.shop.ID)
	require.NoError(t, err)

	_, err = f.transition.Execute(ctx, f.shop.ID, f.staff.ID, ap.ID, domain.ActionCancel)
	require.NoError(t, err)

	from := stale.Status
	require.NoError(t, domain.Apply(stale, domain.ActionConfirm, testClock()))

	err = f.repo.UpdateAppointmentStatus(ctx, stale, from)
	var se apperr.StateError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "cancelled", se.From)
	assert.Equal(t, "confirmed", se.To)

	var stored models.Appointment
	require.NoError(t, f.db.First(&stored, ap.ID).Error)
	assert.Equal(t, "cancelled", stored.Status)
	assert.Nil(t, stored.ConfirmedAt)
}

// Public availability and the booking guard agree on the minimum advance
// window: no slot is rendered available that Book would reject as too soon.
func TestPublicAvailabilityHonorsMinAdvance(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	today := testClock().Format(timegrid.DateLayout)
	publicIn := AvailabilityInput{
		BarbershopID:      f.shop.ID,
		StaffID:           f.staff.ID,
		ServiceID:         f.service.ID,
		Date:              today,
		EnforceMinAdvance: true,
	}

	// 10:00 now plus the shop's 60-minute window: nothing before 11:00.
	result, err := f.avail.Execute(ctx, publicIn)
	require.NoError(t, err)
	assert.False(t, slotAvailable(t, result, 600))
	assert.False(t, slotAvailable(t, result, 630))
	assert.True(t, slotAvailable(t, result, 660))

	// The first advertised slot is accepted by the guard.
	in := f.input(660)
	in.Date = today
	in.EnforceMinAdvance = true
	_, err = f.book.Execute(ctx, in)
	assert.NoError(t, err)

	// Staff view keeps the plain now cutoff.
	staffIn := publicIn
	staffIn.EnforceMinAdvance = false
	result, err = f.avail.Execute(ctx, staffIn)
	require.NoError(t, err)
	assert.True(t, slotAvailable(t, result, 630))
}

func TestAvailabilityStaffExceptionClosesDay(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	require.NoError(t, f.db.Create(&models.DateException{
		BarbershopID: f.shop.ID,
		StaffID:      &f.staff.ID,
		Date:         testDate,
		Kind:         "closed",
		Description:  "family emergency",
	}).Error)

	result, err := f.avail.Execute(ctx, AvailabilityInput{
		BarbershopID: f.shop.ID,
		StaffID:      f.staff.ID,
		ServiceID:    f.service.ID,
		Date:         testDate,
	})
	require.NoError(t, err)

	assert.False(t, result.Profile.Open)
	assert.Equal(t, "family emergency", result.Profile.ClosedReason)
	assert.Empty(t, result.Slots)

	// Booking against the closed day fails at commit time too.
	_, err = f.book.Execute(ctx, f.input(600))
	assert.True(t, apperr.IsConflict(err))
}

func TestAvailabilitySpecialHoursReplaceWeekly(t *testing.T) {
	f := setup(t)

	openMin, closeMin := 840, 960 // 14:00-16:00
	require.NoError(t, f.db.Create(&models.DateException{
		BarbershopID: f.shop.ID,
		Date:         testDate,
		Kind:         "special_hours",
		Description:  "late opening",
		OpenMinute:   &openMin,
		CloseMinute:  &closeMin,
	}).Error)

	result, err := f.avail.Execute(context.Background(), AvailabilityInput{
		BarbershopID: f.shop.ID,
		StaffID:      f.staff.ID,
		ServiceID:    f.service.ID,
		Date:         testDate,
	})
	require.NoError(t, err)

	require.True(t, result.Profile.Open)
	assert.Equal(t, openMin, result.Profile.OpenMinute)
	assert.Equal(t, closeMin, result.Profile.CloseMinute)
	assert.Nil(t, result.Profile.Break, "exception hours carry no break")

	require.NotEmpty(t, result.Slots)
	assert.Equal(t, openMin, result.Slots[0].StartMinute)
	for _, s := range result.Slots {
		assert.LessOrEqual(t, s.EndMinute, closeMin)
	}
}

func slotAvailable(t *testing.T, result *AvailabilityResult, startMinute int) bool {
	t.Helper()
	for _, s := range result.Slots {
		if s.StartMinute == startMinute {
			return s.Available
		}
	}
	t.Fatalf("slot %d not present in result", startMinute)
	return false
}
