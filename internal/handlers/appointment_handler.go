package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/barbergrid/api/internal/apperr"
	domain "github.com/barbergrid/api/internal/domain/appointment"
	"github.com/barbergrid/api/internal/middleware"
	"github.com/barbergrid/api/internal/timegrid"
	ucBooking "github.com/barbergrid/api/internal/usecase/booking"
)

// ======================================================
// HANDLER
// ======================================================

type AppointmentHandler struct {
	book         *ucBooking.Book
	availability *ucBooking.GetAvailability
	transition   *ucBooking.TransitionAppointment
	listByDate   *ucBooking.ListAppointmentsByDate
	listByMonth  *ucBooking.ListAppointmentsByMonth
}

func NewAppointmentHandler(
	book *ucBooking.Book,
	availability *ucBooking.GetAvailability,
	transition *ucBooking.TransitionAppointment,
	listByDate *ucBooking.ListAppointmentsByDate,
	listByMonth *ucBooking.ListAppointmentsByMonth,
) *AppointmentHandler {
	return &AppointmentHandler{
		book:         book,
		availability: availability,
		transition:   transition,
		listByDate:   listByDate,
		listByMonth:  listByMonth,
	}
}

// ======================================================
// REQUESTS
// ======================================================

type CreateAppointmentRequest struct {
	ClientName  string `json:"client_name" binding:"required"`
	ClientPhone string `json:"client_phone" binding:"required"`
	ClientEmail string `json:"client_email"`
	ServiceID   uint   `json:"service_id" binding:"required"`
	Date        string `json:"date" binding:"required"`
	Time        string `json:"time" binding:"required"`
	Notes       string `json:"notes"`
}

// ======================================================
// CREATE
// ======================================================

// Create books for the authenticated staff member on a client's behalf.
// The minimum-advance window does not apply to staff bookings.
func (h *AppointmentHandler) Create(c *gin.Context) {
	staffID := c.MustGet(middleware.ContextUserID).(uint)
	barbershopID := c.MustGet(middleware.ContextBarbershopID).(uint)

	var req CreateAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperr.BadRequest(c, "invalid_request", "Invalid request body.")
		return
	}

	startMinute, err := timegrid.ToMinute(req.Time)
	if err != nil {
		apperr.BadRequest(c, "invalid_time", "Time must be hh:mm.")
		return
	}

	ap, err := h.book.Execute(c.Request.Context(), ucBooking.BookInput{
		BarbershopID: barbershopID,
		StaffID:      staffID,
		ServiceID:    req.ServiceID,
		Date:         req.Date,
		StartMinute:  startMinute,
		ClientName:   req.ClientName,
		ClientPhone:  req.ClientPhone,
		ClientEmail:  req.ClientEmail,
		Notes:        req.Notes,
	})
	if err != nil {
		apperr.Respond(c, err)
		return
	}

	c.JSON(http.StatusCreated, ap)
}

// ======================================================
// AVAILABILITY
// ======================================================

func (h *AppointmentHandler) Availability(c *gin.Context) {
	staffID := c.MustGet(middleware.ContextUserID).(uint)
	barbershopID := c.MustGet(middleware.ContextBarbershopID).(uint)

	date := c.Query("date")
	serviceID, err := strconv.ParseUint(c.Query("service_id"), 10, 32)
	if date == "" || err != nil {
		apperr.BadRequest(c, "missing_params", "date and service_id are required.")
		return
	}

	result, err := h.availability.Execute(c.Request.Context(), ucBooking.AvailabilityInput{
		BarbershopID: barbershopID,
		StaffID:      staffID,
		ServiceID:    uint(serviceID),
		Date:         date,
	})
	if err != nil {
		apperr.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// ======================================================
// LIST
// ======================================================

func (h *AppointmentHandler) ListByDate(c *gin.Context) {
	staffID := c.MustGet(middleware.ContextUserID).(uint)

	date := c.Query("date")
	if date == "" {
		apperr.BadRequest(c, "missing_date", "Date is required.")
		return
	}

	aps, err := h.listByDate.Execute(c.Request.Context(), staffID, date)
	if err != nil {
		apperr.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, aps)
}

func (h *AppointmentHandler) ListByMonth(c *gin.Context) {
	staffID := c.MustGet(middleware.ContextUserID).(uint)

	year, err1 := strconv.Atoi(c.Query("year"))
	month, err2 := strconv.Atoi(c.Query("month"))
	if err1 != nil || err2 != nil {
		apperr.BadRequest(c, "missing_year_or_month", "Year and month are required.")
		return
	}

	aps, err := h.listByMonth.Execute(c.Request.Context(), staffID, year, month)
	if err != nil {
		apperr.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"year":         year,
		"month":        month,
		"appointments": aps,
	})
}

// ======================================================
// TRANSITION
// ======================================================

type TransitionRequest struct {
	Action string `json:"action" binding:"required"`
}

// Transition applies one lifecycle action: confirm, start, complete, cancel
// or no_show.
func (h *AppointmentHandler) Transition(c *gin.Context) {
	staffID := c.MustGet(middleware.ContextUserID).(uint)
	barbershopID := c.MustGet(middleware.ContextBarbershopID).(uint)

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		apperr.BadRequest(c, "invalid_id", "Invalid appointment id.")
		return
	}

	var req TransitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperr.BadRequest(c, "invalid_request", "Action is required.")
		return
	}

	ap, err := h.transition.Execute(
		c.Request.Context(),
		barbershopID,
		staffID,
		uint(id),
		domain.Action(req.Action),
	)
	if err != nil {
		apperr.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, ap)
}
