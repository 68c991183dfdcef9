package handlers

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/barbergrid/api/internal/middleware"
	"github.com/barbergrid/api/internal/models"
)

func setupScheduleRouter(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared",
		strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&models.DateException{}))

	h := NewScheduleHandler(db)

	r := gin.New()
	auth := func(c *gin.Context) {
		c.Set(middleware.ContextBarbershopID, uint(1))
		c.Set(middleware.ContextUserID, uint(2))
	}
	r.POST("/me/exceptions", auth, h.CreateMyException)

	return r, db
}

func postJSON(r *gin.Engine, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

// A second exception for the same staff member and date is rejected, not
// silently stacked.
func TestCreateExceptionDuplicateRejected(t *testing.T) {
	r, db := setupScheduleRouter(t)

	body := `{"date":"2026-07-01","kind":"closed","description":"holiday"}`

	w := postJSON(r, "/me/exceptions", body)
	require.Equal(t, http.StatusCreated, w.Code)

	w = postJSON(r, "/me/exceptions", body)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "exception_already_exists")

	var count int64
	require.NoError(t, db.Model(&models.DateException{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestCreateExceptionValidation(t *testing.T) {
	r, _ := setupScheduleRouter(t)

	// Hour-bearing kinds need start and end.
	w := postJSON(r, "/me/exceptions", `{"date":"2026-07-01","kind":"special_hours"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "invalid_hours")

	w = postJSON(r, "/me/exceptions", `{"date":"07/01/2026","kind":"closed"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "invalid_date")

	w = postJSON(r, "/me/exceptions", `{"date":"2026-07-01","kind":"vacation"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "invalid_kind")
}
