package appointment

import (
	"context"

	"github.com/barbergrid/api/internal/availability"
	"github.com/barbergrid/api/internal/domain/schedule"
	"github.com/barbergrid/api/internal/models"
)

// Repository is the system-of-record boundary consumed by the booking
// use cases. CreateAppointmentChecked must enforce the at-most-one guarantee
// for overlapping intervals of the same staff member: it re-checks conflicts
// and commits in one atomic unit with respect to concurrent bookings.
type Repository interface {
	// -------- Barbershop --------
	GetBarbershopByID(
		ctx context.Context,
		id uint,
	) (*models.Barbershop, error)

	GetBarbershopBySlug(
		ctx context.Context,
		slug string,
	) (*models.Barbershop, error)

	// -------- Staff / Catalog --------
	GetStaff(
		ctx context.Context,
		barbershopID uint,
		staffID uint,
	) (*models.User, error)

	GetService(
		ctx context.Context,
		barbershopID uint,
		serviceID uint,
	) (*models.Service, error)

	GetAssignment(
		ctx context.Context,
		staffID uint,
		serviceID uint,
	) (*models.StaffService, error)

	// -------- Client --------
	GetOrCreateClient(
		ctx context.Context,
		barbershopID uint,
		name string,
		phone string,
		email string,
	) (*models.Client, error)

	// -------- Rule sources --------
	RuleSetFor(
		ctx context.Context,
		barbershopID uint,
		staffID uint,
		date string,
		weekday int,
	) (schedule.RuleSet, error)

	// -------- Appointments --------
	ListOccupying(
		ctx context.Context,
		staffID uint,
		date string,
	) ([]availability.Interval, error)

	CreateAppointmentChecked(
		ctx context.Context,
		ap *models.Appointment,
	) error

	GetAppointmentForShop(
		ctx context.Context,
		appointmentID uint,
		barbershopID uint,
	) (*models.Appointment, error)

	// UpdateAppointmentStatus writes a validated transition only if the
	// stored status still equals from; a lost race yields a StateError.
	UpdateAppointmentStatus(
		ctx context.Context,
		ap *models.Appointment,
		from string,
	) error

	ListAppointmentsForDay(
		ctx context.Context,
		staffID uint,
		date string,
	) ([]models.Appointment, error)

	ListAppointmentsForMonth(
		ctx context.Context,
		staffID uint,
		year int,
		month int,
	) ([]models.Appointment, error)
}
