package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/barbergrid/api/internal/middleware"
	"github.com/barbergrid/api/internal/models"
)

type StaffServiceHandler struct {
	db *gorm.DB
}

func NewStaffServiceHandler(db *gorm.DB) *StaffServiceHandler {
	return &StaffServiceHandler{db: db}
}

func (h *StaffServiceHandler) List(c *gin.Context) {
	userID := c.MustGet(middleware.ContextUserID).(uint)

	var assignments []models.StaffService
	if err := h.db.
		Preload("Service").
		Where("staff_id = ?", userID).
		Find(&assignments).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed_to_list_assignments"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": assignments, "total": len(assignments)})
}

type AssignmentUpsertRequest struct {
	ServiceID   uint     `json:"service_id" binding:"required"`
	CustomPrice *float64 `json:"custom_price"`
	Active      *bool    `json:"active"`
}

// Upsert creates or updates the (staff, service) assignment. Deactivation is
// a soft-disable: the row stays so history keeps resolving prices.
func (h *StaffServiceHandler) Upsert(c *gin.Context) {
	userID := c.MustGet(middleware.ContextUserID).(uint)
	barbershopID := c.MustGet(middleware.ContextBarbershopID).(uint)

	var req AssignmentUpsertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}

	if req.CustomPrice != nil && *req.CustomPrice < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_price"})
		return
	}

	var service models.Service
	if err := h.db.
		Where("id = ? AND barbershop_id = ?", req.ServiceID, barbershopID).
		First(&service).Error; err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "service_not_found"})
		return
	}

	var assignment models.StaffService
	err := h.db.
		Where("staff_id = ? AND service_id = ?", userID, req.ServiceID).
		First(&assignment).Error

	if err == gorm.ErrRecordNotFound {
		assignment = models.StaffService{
			StaffID:   userID,
			ServiceID: req.ServiceID,
			Active:    true,
		}
	} else if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed_to_load_assignment"})
		return
	}

	assignment.CustomPrice = req.CustomPrice
	if req.Active != nil {
		assignment.Active = *req.Active
	}

	if err := h.db.Save(&assignment).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed_to_save_assignment"})
		return
	}

	c.JSON(http.StatusOK, assignment)
}
