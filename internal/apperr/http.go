package apperr

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type HTTPError struct {
	Code    string `json:"error_code"`
	Message string `json:"message"`
	From    string `json:"from,omitempty"`
	To      string `json:"to,omitempty"`
}

func Write(c *gin.Context, status int, code, message string) {
	c.JSON(status, HTTPError{
		Code:    code,
		Message: message,
	})
}

func BadRequest(c *gin.Context, code, message string) {
	Write(c, http.StatusBadRequest, code, message)
}

func NotFound(c *gin.Context, code, message string) {
	Write(c, http.StatusNotFound, code, message)
}

func Internal(c *gin.Context, code, message string) {
	Write(c, http.StatusInternalServerError, code, message)
}

func Unauthorized(c *gin.Context, code, message string) {
	Write(c, http.StatusUnauthorized, code, message)
}

// Respond maps a core error to its HTTP shape: ValidationError 400,
// ConflictError 409, StateError 422, record-not-found 404, anything else 500.
func Respond(c *gin.Context, err error) {
	var ve ValidationError
	if errors.As(err, &ve) {
		Write(c, http.StatusBadRequest, ve.Code, "Invalid request.")
		return
	}

	var ce ConflictError
	if errors.As(err, &ce) {
		c.JSON(http.StatusConflict, gin.H{
			"error_code": ce.Code,
			"message":    "Slot no longer available, re-fetch availability.",
			"retryable":  ce.Retryable,
		})
		return
	}

	var se StateError
	if errors.As(err, &se) {
		c.JSON(http.StatusUnprocessableEntity, HTTPError{
			Code:    "invalid_state",
			Message: se.Error(),
			From:    se.From,
			To:      se.To,
		})
		return
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		NotFound(c, "not_found", "Resource not found.")
		return
	}

	Internal(c, "internal_error", "Unexpected error.")
}
