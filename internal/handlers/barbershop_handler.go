package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/barbergrid/api/internal/middleware"
	"github.com/barbergrid/api/internal/models"
)

type BarbershopHandler struct {
	db *gorm.DB
}

func NewBarbershopHandler(db *gorm.DB) *BarbershopHandler {
	return &BarbershopHandler{db: db}
}

func (h *BarbershopHandler) GetMeBarbershop(c *gin.Context) {
	barbershopID := c.MustGet(middleware.ContextBarbershopID).(uint)

	var shop models.Barbershop
	if err := h.db.First(&shop, barbershopID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "barbershop_not_found"})
		return
	}

	c.JSON(http.StatusOK, shop)
}

type BarbershopUpdateRequest struct {
	Name              *string `json:"name"`
	Phone             *string `json:"phone"`
	Address           *string `json:"address"`
	MinAdvanceMinutes *int    `json:"min_advance_minutes"`
	SlotStepMinutes   *int    `json:"slot_step_minutes"`
}

func (h *BarbershopHandler) UpdateMeBarbershop(c *gin.Context) {
	barbershopID := c.MustGet(middleware.ContextBarbershopID).(uint)

	var req BarbershopUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}

	var shop models.Barbershop
	if err := h.db.First(&shop, barbershopID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "barbershop_not_found"})
		return
	}

	if req.Name != nil {
		shop.Name = *req.Name
	}
	if req.Phone != nil {
		shop.Phone = *req.Phone
	}
	if req.Address != nil {
		shop.Address = *req.Address
	}
	if req.MinAdvanceMinutes != nil && *req.MinAdvanceMinutes >= 0 {
		shop.MinAdvanceMinutes = *req.MinAdvanceMinutes
	}
	if req.SlotStepMinutes != nil && *req.SlotStepMinutes >= 0 {
		shop.SlotStepMinutes = *req.SlotStepMinutes
	}

	if err := h.db.Save(&shop).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed_to_update"})
		return
	}

	c.JSON(http.StatusOK, shop)
}
