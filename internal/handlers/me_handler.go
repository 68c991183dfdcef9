package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/barbergrid/api/internal/apperr"
	"github.com/barbergrid/api/internal/middleware"
	"github.com/barbergrid/api/internal/models"
)

type MeHandler struct {
	db *gorm.DB
}

func NewMeHandler(db *gorm.DB) *MeHandler {
	return &MeHandler{db: db}
}

func (h *MeHandler) GetMe(c *gin.Context) {
	userID := c.MustGet(middleware.ContextUserID).(uint)

	var user models.User
	if err := h.db.Preload("Barbershop").First(&user, userID).Error; err != nil {
		apperr.NotFound(c, "user_not_found", "Account not found.")
		return
	}

	c.JSON(http.StatusOK, user)
}
