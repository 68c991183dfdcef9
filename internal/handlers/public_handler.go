package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/barbergrid/api/internal/apperr"
	"github.com/barbergrid/api/internal/models"
	"github.com/barbergrid/api/internal/timegrid"
	ucBooking "github.com/barbergrid/api/internal/usecase/booking"
	"github.com/barbergrid/api/internal/validators"
)

// PublicHandler is the unauthenticated booking surface, addressed by shop
// slug. It shapes requests for the same use cases the private API uses.
type PublicHandler struct {
	db           *gorm.DB
	book         *ucBooking.Book
	availability *ucBooking.GetAvailability
}

func NewPublicHandler(
	db *gorm.DB,
	book *ucBooking.Book,
	availability *ucBooking.GetAvailability,
) *PublicHandler {
	return &PublicHandler{
		db:           db,
		book:         book,
		availability: availability,
	}
}

func (h *PublicHandler) shopBySlug(c *gin.Context) (*models.Barbershop, bool) {
	var shop models.Barbershop
	if err := h.db.
		Where("slug = ?", c.Param("slug")).
		First(&shop).Error; err != nil {
		apperr.NotFound(c, "barbershop_not_found", "Barbershop not found.")
		return nil, false
	}
	return &shop, true
}

// ListServices returns the active catalog for the booking page.
func (h *PublicHandler) ListServices(c *gin.Context) {
	shop, ok := h.shopBySlug(c)
	if !ok {
		return
	}

	var services []models.Service
	if err := h.db.
		Where("barbershop_id = ? AND active = ?", shop.ID, true).
		Order("name ASC").
		Find(&services).Error; err != nil {
		apperr.Internal(c, "failed_to_list_services", "Failed to load services.")
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": services, "total": len(services)})
}

// ListStaff returns bookable staff for a service: active users with an
// active assignment.
func (h *PublicHandler) ListStaff(c *gin.Context) {
	shop, ok := h.shopBySlug(c)
	if !ok {
		return
	}

	serviceID, err := strconv.ParseUint(c.Query("service_id"), 10, 32)
	if err != nil {
		apperr.BadRequest(c, "missing_service", "service_id is required.")
		return
	}

	var staff []models.User
	if err := h.db.
		Joins("JOIN staff_services ON staff_services.staff_id = users.id").
		Where(
			"users.barbershop_id = ? AND users.active = ? AND staff_services.service_id = ? AND staff_services.active = ?",
			shop.ID, true, uint(serviceID), true,
		).
		Order("users.name ASC").
		Find(&staff).Error; err != nil {
		apperr.Internal(c, "failed_to_list_staff", "Failed to load staff.")
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": staff, "total": len(staff)})
}

func (h *PublicHandler) Availability(c *gin.Context) {
	shop, ok := h.shopBySlug(c)
	if !ok {
		return
	}

	date := c.Query("date")
	staffID, err1 := strconv.ParseUint(c.Query("staff_id"), 10, 32)
	serviceID, err2 := strconv.ParseUint(c.Query("service_id"), 10, 32)
	if date == "" || err1 != nil || err2 != nil {
		apperr.BadRequest(c, "missing_params", "date, staff_id and service_id are required.")
		return
	}

	result, err := h.availability.Execute(c.Request.Context(), ucBooking.AvailabilityInput{
		BarbershopID:      shop.ID,
		StaffID:           uint(staffID),
		ServiceID:         uint(serviceID),
		Date:              date,
		EnforceMinAdvance: true,
	})
	if err != nil {
		apperr.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

type PublicBookingRequest struct {
	StaffID     uint   `json:"staff_id" binding:"required"`
	ServiceID   uint   `json:"service_id" binding:"required"`
	Date        string `json:"date" binding:"required"`
	Time        string `json:"time" binding:"required"`
	ClientName  string `json:"client_name" binding:"required"`
	ClientPhone string `json:"client_phone" binding:"required"`
	ClientEmail string `json:"client_email"`
	Notes       string `json:"notes"`
}

func (h *PublicHandler) CreateBooking(c *gin.Context) {
	shop, ok := h.shopBySlug(c)
	if !ok {
		return
	}

	var req PublicBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperr.BadRequest(c, "invalid_request", "Invalid request body.")
		return
	}

	startMinute, err := timegrid.ToMinute(req.Time)
	if err != nil {
		apperr.BadRequest(c, "invalid_time", "Time must be hh:mm.")
		return
	}

	if req.ClientEmail != "" && !validators.IsEmailSyntaxValid(req.ClientEmail) {
		apperr.BadRequest(c, "invalid_email", "Client email is malformed.")
		return
	}

	ap, err := h.book.Execute(c.Request.Context(), ucBooking.BookInput{
		BarbershopID:      shop.ID,
		StaffID:           req.StaffID,
		ServiceID:         req.ServiceID,
		Date:              req.Date,
		StartMinute:       startMinute,
		ClientName:        req.ClientName,
		ClientPhone:       req.ClientPhone,
		ClientEmail:       req.ClientEmail,
		Notes:             req.Notes,
		EnforceMinAdvance: true,
	})
	if err != nil {
		apperr.Respond(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"reference": ap.Reference,
		"date":      ap.Date,
		"start":     timegrid.ToClock(ap.StartMinute),
		"end":       timegrid.ToClock(ap.EndMinute),
		"price":     ap.Price,
		"status":    ap.Status,
	})
}
