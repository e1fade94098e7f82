package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/ihute/transit-backend/internal/services"
	"github.com/sirupsen/logrus"
)

// errorBody writes the standard {"error", "message"} body
func errorBody(c *gin.Context, status int, code, message string) {
	c.JSON(status, gin.H{
		"error":   code,
		"message": message,
	})
}

// respondError maps a service error to its status code and machine code.
// Storage and unknown errors become 500 internal_error without detail.
func respondError(c *gin.Context, logger *logrus.Logger, err error) {
	var (
		validation *services.ValidationError
		capacity   *services.CapacityError
		notFound   *services.NotFoundError
		conflict   *services.ConflictError
	)

	switch {
	case errors.As(err, &validation):
		errorBody(c, http.StatusBadRequest, "validation_error", validation.Message)
	case errors.As(err, &capacity):
		errorBody(c, http.StatusConflict, capacity.Reason, capacity.Message)
	case errors.As(err, &notFound):
		code := "not_found"
		if notFound.Resource != "" {
			code = notFound.Resource + "_not_found"
		}
		errorBody(c, http.StatusNotFound, code, notFound.Error())
	case errors.As(err, &conflict):
		errorBody(c, http.StatusConflict, conflict.Code, conflict.Message)
	case errors.Is(err, services.ErrInvalidCredentials):
		errorBody(c, http.StatusUnauthorized, "invalid_credentials", "Invalid email or password")
	case errors.Is(err, services.ErrForbidden):
		errorBody(c, http.StatusForbidden, "forbidden", err.Error())
	case errors.Is(err, services.ErrPaymentDeclined):
		errorBody(c, http.StatusPaymentRequired, "payment_declined", "Payment was declined and the seats were released")
	default:
		logger.WithError(err).WithField("path", c.FullPath()).Error("Request failed")
		errorBody(c, http.StatusInternalServerError, "internal_error", "An internal error occurred")
	}
}

// bindJSON decodes the body and answers 400 on failure
func bindJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		errorBody(c, http.StatusBadRequest, "invalid_request", "Invalid request body")
		return false
	}
	return true
}

// idParam parses a positive integer path parameter and answers 400 otherwise
func idParam(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		errorBody(c, http.StatusBadRequest, "invalid_request", "Invalid "+name)
		return 0, false
	}
	return id, true
}
