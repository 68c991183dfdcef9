package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/barbergrid/api/internal/apperr"
	"github.com/barbergrid/api/internal/availability"
	domain "github.com/barbergrid/api/internal/domain/appointment"
	"github.com/barbergrid/api/internal/models"
)

// GormRepository is the gorm-backed system of record. Rule-source and catalog
// lookups live in schedule_gorm.go and catalog_gorm.go.
type GormRepository struct {
	db *gorm.DB
}

func NewGormRepository(db *gorm.DB) *GormRepository {
	return &GormRepository{db: db}
}

// --------------------------------------------------
// Barbershop
// --------------------------------------------------

func (r *GormRepository) GetBarbershopByID(
	ctx context.Context,
	id uint,
) (*models.Barbershop, error) {

	var shop models.Barbershop
	if err := r.db.WithContext(ctx).First(&shop, id).Error; err != nil {
		return nil, err
	}
	return &shop, nil
}

func (r *GormRepository) GetBarbershopBySlug(
	ctx context.Context,
	slug string,
) (*models.Barbershop, error) {

	var shop models.Barbershop
	if err := r.db.WithContext(ctx).
		Where("slug = ?", slug).
		First(&shop).Error; err != nil {
		return nil, err
	}
	return &shop, nil
}

// --------------------------------------------------
// Client
// --------------------------------------------------

func (r *GormRepository) GetOrCreateClient(
	ctx context.Context,
	barbershopID uint,
	name string,
	phone string,
	email string,
) (*models.Client, error) {

	var client models.Client
	err := r.db.WithContext(ctx).
		Where("barbershop_id = ? AND phone = ?", barbershopID, phone).
		First(&client).Error

	if err == nil {
		return &client, nil
	}

	client = models.Client{
		BarbershopID: barbershopID,
		Name:         name,
		Phone:        phone,
		Email:        email,
	}

	if err := r.db.WithContext(ctx).Create(&client).Error; err != nil {
		return nil, err
	}

	return &client, nil
}

// --------------------------------------------------
// Appointments
// --------------------------------------------------

func (r *GormRepository) ListOccupying(
	ctx context.Context,
	staffID uint,
	date string,
) ([]availability.Interval, error) {

	var apps []models.Appointment
	if err := r.db.WithContext(ctx).
		Select("start_minute", "end_minute").
		Where(
			"staff_id = ? AND date = ? AND status IN ?",
			staffID, date, domain.OccupyingStatuses(),
		).
		Order("start_minute ASC").
		Find(&apps).Error; err != nil {
		return nil, err
	}

	intervals := make([]availability.Interval, 0, len(apps))
	for _, ap := range apps {
		intervals = append(intervals, availability.Interval{
			Start: ap.StartMinute,
			End:   ap.EndMinute,
		})
	}
	return intervals, nil
}

// CreateAppointmentChecked re-checks for overlapping occupying appointments
// and inserts in one transaction. On Postgres the conflicting rows are locked
// with FOR UPDATE and the appointments_no_overlap exclusion constraint is the
// final arbiter; either path surfaces as a ConflictError.
func (r *GormRepository) CreateAppointmentChecked(
	ctx context.Context,
	ap *models.Appointment,
) error {

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {

		q := tx.Model(&models.Appointment{})
		if tx.Dialector.Name() == "postgres" {
			q = q.Clauses(clause.Locking{Strength: "UPDATE"})
		}

		var count int64
		if err := q.
			Where(
				"staff_id = ? AND date = ? AND status IN ? AND start_minute < ? AND end_minute > ?",
				ap.StaffID, ap.Date, domain.OccupyingStatuses(),
				ap.EndMinute, ap.StartMinute,
			).
			Count(&count).Error; err != nil {
			return err
		}

		if count > 0 {
			return apperr.Conflict("slot_taken")
		}

		return tx.Create(ap).Error
	})

	if apperr.IsExclusionConflict(err) {
		return apperr.Conflict("slot_taken")
	}
	return err
}

func (r *GormRepository) GetAppointmentForShop(
	ctx context.Context,
	appointmentID uint,
	barbershopID uint,
) (*models.Appointment, error) {

	var ap models.Appointment
	if err := r.db.WithContext(ctx).
		Where("id = ? AND barbershop_id = ?", appointmentID, barbershopID).
		First(&ap).Error; err != nil {
		return nil, err
	}

	return &ap, nil
}

// UpdateAppointmentStatus persists a lifecycle transition with
// compare-and-swap semantics: the row is written only if its status still
// matches the one the transition was validated against. A lost race surfaces
// as a StateError carrying the fresh status, never as a silent overwrite.
func (r *GormRepository) UpdateAppointmentStatus(
	ctx context.Context,
	ap *models.Appointment,
	from string,
) error {

	res := r.db.WithContext(ctx).
		Model(&models.Appointment{}).
		Where("id = ? AND status = ?", ap.ID, from).
		Select(
			"status",
			"confirmed_at", "started_at", "completed_at",
			"cancelled_at", "no_show_at",
		).
		Updates(ap)
	if res.Error != nil {
		return res.Error
	}

	if res.RowsAffected == 0 {
		var fresh models.Appointment
		if err := r.db.WithContext(ctx).First(&fresh, ap.ID).Error; err != nil {
			return err
		}
		return apperr.State(fresh.Status, ap.Status)
	}
	return nil
}

func (r *GormRepository) ListAppointmentsForDay(
	ctx context.Context,
	staffID uint,
	date string,
) ([]models.Appointment, error) {

	var apps []models.Appointment
	if err := r.db.WithContext(ctx).
		Preload("Client").
		Preload("Service").
		Where("staff_id = ? AND date = ?", staffID, date).
		Order("start_minute ASC").
		Find(&apps).Error; err != nil {
		return nil, err
	}

	return apps, nil
}

func (r *GormRepository) ListAppointmentsForMonth(
	ctx context.Context,
	staffID uint,
	year int,
	month int,
) ([]models.Appointment, error) {

	var apps []models.Appointment
	if err := r.db.WithContext(ctx).
		Preload("Client").
		Preload("Service").
		Where(
			"staff_id = ? AND date >= ? AND date < ?",
			staffID, monthStart(year, month), monthStart(nextMonth(year, month)),
		).
		Order("date ASC, start_minute ASC").
		Find(&apps).Error; err != nil {
		return nil, err
	}

	return apps, nil
}

// Compile-time check
var _ domain.Repository = (*GormRepository)(nil)
