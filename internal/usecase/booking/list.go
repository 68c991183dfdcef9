package booking

import (
	"context"

	"github.com/barbergrid/api/internal/apperr"
	domain "github.com/barbergrid/api/internal/domain/appointment"
	"github.com/barbergrid/api/internal/models"
	"github.com/barbergrid/api/internal/timegrid"
)

type ListAppointmentsByDate struct {
	repo domain.Repository
}

func NewListAppointmentsByDate(repo domain.Repository) *ListAppointmentsByDate {
	return &ListAppointmentsByDate{repo: repo}
}

func (uc *ListAppointmentsByDate) Execute(
	ctx context.Context,
	staffID uint,
	date string,
) ([]models.Appointment, error) {

	if _, err := timegrid.ParseDate(date); err != nil {
		return nil, apperr.Validation("invalid_date")
	}

	return uc.repo.ListAppointmentsForDay(ctx, staffID, date)
}

type ListAppointmentsByMonth struct {
	repo domain.Repository
}

func NewListAppointmentsByMonth(repo domain.Repository) *ListAppointmentsByMonth {
	return &ListAppointmentsByMonth{repo: repo}
}

func (uc *ListAppointmentsByMonth) Execute(
	ctx context.Context,
	staffID uint,
	year int,
	month int,
) ([]models.Appointment, error) {

	if year < 2000 || year > 2100 {
		return nil, apperr.Validation("invalid_year")
	}
	if month < 1 || month > 12 {
		return nil, apperr.Validation("invalid_month")
	}

	return uc.repo.ListAppointmentsForMonth(ctx, staffID, year, month)
}
