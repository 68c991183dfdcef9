package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/barbergrid/api/internal/apperr"
	"github.com/barbergrid/api/internal/domain/schedule"
	"github.com/barbergrid/api/internal/middleware"
	"github.com/barbergrid/api/internal/models"
	"github.com/barbergrid/api/internal/timegrid"
)

// ScheduleHandler manages the weekly rules and date exceptions feeding the
// resolver. Staff endpoints scope to the caller; shop endpoints (staff_id
// null) are owner-only via middleware.
type ScheduleHandler struct {
	db *gorm.DB
}

func NewScheduleHandler(db *gorm.DB) *ScheduleHandler {
	return &ScheduleHandler{db: db}
}

// ======================================================
// WEEKLY RULES
// ======================================================

type WeeklyDayConfig struct {
	Weekday    int    `json:"weekday" binding:"min=0,max=6"`
	Open       bool   `json:"open"`
	Start      string `json:"start"`
	End        string `json:"end"`
	BreakStart string `json:"break_start"`
	BreakEnd   string `json:"break_end"`
}

type WeeklyRulesUpdateRequest struct {
	Days []WeeklyDayConfig `json:"days" binding:"required"`
}

func (h *ScheduleHandler) GetShopWeeklyRules(c *gin.Context) {
	barbershopID := c.MustGet(middleware.ContextBarbershopID).(uint)
	h.listWeekly(c, barbershopID, nil)
}

func (h *ScheduleHandler) GetMyWeeklyRules(c *gin.Context) {
	barbershopID := c.MustGet(middleware.ContextBarbershopID).(uint)
	userID := c.MustGet(middleware.ContextUserID).(uint)
	h.listWeekly(c, barbershopID, &userID)
}

func (h *ScheduleHandler) listWeekly(c *gin.Context, barbershopID uint, staffID *uint) {
	q := h.db.Where("barbershop_id = ?", barbershopID)
	if staffID == nil {
		q = q.Where("staff_id IS NULL")
	} else {
		q = q.Where("staff_id = ?", *staffID)
	}

	var rules []models.WeeklyRule
	if err := q.Order("weekday ASC").Find(&rules).Error; err != nil {
		apperr.Internal(c, "failed_to_get_weekly_rules", "Failed to load weekly rules.")
		return
	}

	c.JSON(http.StatusOK, rules)
}

func (h *ScheduleHandler) UpdateShopWeeklyRules(c *gin.Context) {
	barbershopID := c.MustGet(middleware.ContextBarbershopID).(uint)
	h.replaceWeekly(c, barbershopID, nil)
}

func (h *ScheduleHandler) UpdateMyWeeklyRules(c *gin.Context) {
	barbershopID := c.MustGet(middleware.ContextBarbershopID).(uint)
	userID := c.MustGet(middleware.ContextUserID).(uint)
	h.replaceWeekly(c, barbershopID, &userID)
}

// replaceWeekly swaps the whole rule set for one owner in a transaction, the
// same replace-all contract the UI submits.
func (h *ScheduleHandler) replaceWeekly(c *gin.Context, barbershopID uint, staffID *uint) {
	var req WeeklyRulesUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperr.BadRequest(c, "invalid_request", err.Error())
		return
	}

	toCreate := make([]models.WeeklyRule, 0, len(req.Days))
	for _, d := range req.Days {
		rule, err := weeklyRuleFromConfig(barbershopID, staffID, d)
		if err != nil {
			apperr.Respond(c, err)
			return
		}
		toCreate = append(toCreate, *rule)
	}

	err := h.db.Transaction(func(tx *gorm.DB) error {
		q := tx.Where("barbershop_id = ?", barbershopID)
		if staffID == nil {
			q = q.Where("staff_id IS NULL")
		} else {
			q = q.Where("staff_id = ?", *staffID)
		}
		if err := q.Delete(&models.WeeklyRule{}).Error; err != nil {
			return err
		}

		if len(toCreate) == 0 {
			return nil
		}
		return tx.Create(&toCreate).Error
	})
	if err != nil {
		apperr.Internal(c, "failed_to_save_weekly_rules", "Failed to save weekly rules.")
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func weeklyRuleFromConfig(barbershopID uint, staffID *uint, d WeeklyDayConfig) (*models.WeeklyRule, error) {
	rule := models.WeeklyRule{
		BarbershopID: barbershopID,
		StaffID:      staffID,
		Weekday:      d.Weekday,
		Open:         d.Open,
	}

	if !d.Open {
		return &rule, nil
	}

	open, err := timegrid.ToMinute(d.Start)
	if err != nil {
		return nil, apperr.Validation("invalid_hours")
	}
	closeMin, err := timegrid.ToMinute(d.End)
	if err != nil {
		return nil, apperr.Validation("invalid_hours")
	}

	var brk *schedule.Window
	if d.BreakStart != "" || d.BreakEnd != "" {
		bs, err := timegrid.ToMinute(d.BreakStart)
		if err != nil {
			return nil, apperr.Validation("invalid_break")
		}
		be, err := timegrid.ToMinute(d.BreakEnd)
		if err != nil {
			return nil, apperr.Validation("invalid_break")
		}
		brk = &schedule.Window{Start: bs, End: be}
	}

	if err := schedule.ValidateHours(open, closeMin, brk); err != nil {
		return nil, err
	}

	rule.OpenMinute = open
	rule.CloseMinute = closeMin
	if brk != nil {
		rule.BreakStartMinute = &brk.Start
		rule.BreakEndMinute = &brk.End
	}
	return &rule, nil
}

// ======================================================
// DATE EXCEPTIONS
// ======================================================

type ExceptionCreateRequest struct {
	Date        string `json:"date" binding:"required"`
	Kind        string `json:"kind" binding:"required"`
	Description string `json:"description"`
	Start       string `json:"start"`
	End         string `json:"end"`
}

func (h *ScheduleHandler) ListShopExceptions(c *gin.Context) {
	barbershopID := c.MustGet(middleware.ContextBarbershopID).(uint)
	h.listExceptions(c, barbershopID, nil)
}

func (h *ScheduleHandler) ListMyExceptions(c *gin.Context) {
	barbershopID := c.MustGet(middleware.ContextBarbershopID).(uint)
	userID := c.MustGet(middleware.ContextUserID).(uint)
	h.listExceptions(c, barbershopID, &userID)
}

func (h *ScheduleHandler) listExceptions(c *gin.Context, barbershopID uint, staffID *uint) {
	q := h.db.Where("barbershop_id = ?", barbershopID)
	if staffID == nil {
		q = q.Where("staff_id IS NULL")
	} else {
		q = q.Where("staff_id = ?", *staffID)
	}

	var exceptions []models.DateException
	if err := q.Order("date ASC").Find(&exceptions).Error; err != nil {
		apperr.Internal(c, "failed_to_get_exceptions", "Failed to load exceptions.")
		return
	}

	c.JSON(http.StatusOK, exceptions)
}

func (h *ScheduleHandler) CreateShopException(c *gin.Context) {
	barbershopID := c.MustGet(middleware.ContextBarbershopID).(uint)
	h.createException(c, barbershopID, nil)
}

func (h *ScheduleHandler) CreateMyException(c *gin.Context) {
	barbershopID := c.MustGet(middleware.ContextBarbershopID).(uint)
	userID := c.MustGet(middleware.ContextUserID).(uint)
	h.createException(c, barbershopID, &userID)
}

func (h *ScheduleHandler) createException(c *gin.Context, barbershopID uint, staffID *uint) {
	var req ExceptionCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperr.BadRequest(c, "invalid_request", err.Error())
		return
	}

	if _, err := timegrid.ParseDate(req.Date); err != nil {
		apperr.BadRequest(c, "invalid_date", "Date must be YYYY-MM-DD.")
		return
	}
	if !schedule.ValidExceptionKind(req.Kind) {
		apperr.BadRequest(c, "invalid_kind", "Unknown exception kind.")
		return
	}

	ex := models.DateException{
		BarbershopID: barbershopID,
		StaffID:      staffID,
		Date:         req.Date,
		Kind:         req.Kind,
		Description:  req.Description,
	}

	if schedule.ExceptionKind(req.Kind) != schedule.ExceptionClosed {
		open, err := timegrid.ToMinute(req.Start)
		if err != nil {
			apperr.BadRequest(c, "invalid_hours", "Hour-bearing exceptions need start and end.")
			return
		}
		closeMin, err := timegrid.ToMinute(req.End)
		if err != nil {
			apperr.BadRequest(c, "invalid_hours", "Hour-bearing exceptions need start and end.")
			return
		}
		if err := schedule.ValidateHours(open, closeMin, nil); err != nil {
			apperr.Respond(c, err)
			return
		}
		ex.OpenMinute = &open
		ex.CloseMinute = &closeMin
	}

	// At most one exception per (owner, date).
	q := h.db.Model(&models.DateException{}).
		Where("barbershop_id = ? AND date = ?", barbershopID, req.Date)
	if staffID == nil {
		q = q.Where("staff_id IS NULL")
	} else {
		q = q.Where("staff_id = ?", *staffID)
	}
	var count int64
	if err := q.Count(&count).Error; err != nil {
		apperr.Internal(c, "failed_to_create_exception", "Failed to create exception.")
		return
	}
	if count > 0 {
		apperr.BadRequest(c, "exception_already_exists", "An exception already exists for that date.")
		return
	}

	if err := h.db.Create(&ex).Error; err != nil {
		// Unique index backstop for two requests racing past the count.
		if apperr.IsExclusionConflict(err) {
			apperr.BadRequest(c, "exception_already_exists", "An exception already exists for that date.")
			return
		}
		apperr.Internal(c, "failed_to_create_exception", "Failed to create exception.")
		return
	}

	c.JSON(http.StatusCreated, ex)
}

func (h *ScheduleHandler) DeleteException(c *gin.Context) {
	barbershopID := c.MustGet(middleware.ContextBarbershopID).(uint)
	userID := c.MustGet(middleware.ContextUserID).(uint)
	role := c.MustGet(middleware.ContextUserRole).(string)
	id := c.Param("id")

	var ex models.DateException
	if err := h.db.
		Where("id = ? AND barbershop_id = ?", id, barbershopID).
		First(&ex).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			apperr.NotFound(c, "exception_not_found", "Exception not found.")
			return
		}
		apperr.Internal(c, "failed_to_load_exception", "Failed to load exception.")
		return
	}

	// Staff may delete only their own exceptions; shop-level ones need owner.
	if ex.StaffID == nil {
		if role != models.RoleOwner {
			c.JSON(http.StatusForbidden, gin.H{"error": "owner_only"})
			return
		}
	} else if *ex.StaffID != userID && role != models.RoleOwner {
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
		return
	}

	if err := h.db.Delete(&ex).Error; err != nil {
		apperr.Internal(c, "failed_to_delete_exception", "Failed to delete exception.")
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
