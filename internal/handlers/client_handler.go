package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/barbergrid/api/internal/apperr"
	"github.com/barbergrid/api/internal/middleware"
	"github.com/barbergrid/api/internal/models"
)

type ClientHandler struct {
	db *gorm.DB
}

func NewClientHandler(db *gorm.DB) *ClientHandler {
	return &ClientHandler{db: db}
}

// List returns the shop's client book. An optional q parameter filters by
// name or phone fragment, which is how the front desk looks people up.
func (h *ClientHandler) List(c *gin.Context) {
	barbershopID := c.MustGet(middleware.ContextBarbershopID).(uint)

	query := h.db.Where("barbershop_id = ?", barbershopID)
	if q := strings.TrimSpace(c.Query("q")); q != "" {
		like := "%" + q + "%"
		query = query.Where("name LIKE ? OR phone LIKE ?", like, like)
	}

	var clients []models.Client
	if err := query.Order("name ASC").Find(&clients).Error; err != nil {
		apperr.Internal(c, "failed_to_list_clients", "Failed to load clients.")
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": clients, "total": len(clients)})
}
