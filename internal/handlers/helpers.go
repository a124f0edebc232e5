package handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"accountd/internal/services"
)

// respondError is the single error-translation boundary: it maps service
// errors to status codes and the {success, message} envelope. Flow logic
// stays free of transport concerns.
func respondError(c *gin.Context, err error) {
	var throttled *services.ThrottledError
	var locked *services.LockedError

	switch {
	case errors.As(err, &throttled):
		c.JSON(http.StatusTooManyRequests, fail(throttled.Error()))
	case errors.As(err, &locked):
		c.JSON(http.StatusTooManyRequests, fail(locked.Error()))
	case errors.Is(err, services.ErrEmailTaken),
		errors.Is(err, services.ErrInvalidCredentials),
		errors.Is(err, services.ErrNotVerified):
		c.JSON(http.StatusUnauthorized, fail(err.Error()))
	case errors.Is(err, services.ErrUserNotFound):
		c.JSON(http.StatusNotFound, fail(err.Error()))
	case errors.Is(err, services.ErrAlreadyVerified),
		errors.Is(err, services.ErrNoCodeIssued),
		errors.Is(err, services.ErrCodeExpired),
		errors.Is(err, services.ErrCodeMismatch),
		errors.Is(err, services.ErrDeliveryFailed):
		c.JSON(http.StatusBadRequest, fail(err.Error()))
	default:
		log.Printf("[http] unexpected error: %v", err)
		c.JSON(http.StatusInternalServerError, fail("internal server error"))
	}
}

func fail(message string) gin.H {
	return gin.H{"success": false, "message": message}
}

func ok(message string) gin.H {
	return gin.H{"success": true, "message": message}
}

// более устойчиво к типам (int / int64 / float64 / string)
func getIntFromCtx(c *gin.Context, key string) (int, bool) {
	v, ok := c.Get(key)
	if !ok {
		return 0, false
	}
	switch t := v.(type) {
	case int:
		return t, true
	case int64:
		return int(t), true
	case float64:
		return int(t), true
	case string:
		if n, err := strconv.Atoi(t); err == nil {
			return n, true
		}
	}
	return 0, false
}

func getBoolFromCtx(c *gin.Context, key string) bool {
	v, ok := c.Get(key)
	if !ok {
		return false
	}
	b, _ := v.(bool)
	return b
}
