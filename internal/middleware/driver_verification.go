package middleware

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ihute/transit-backend/internal/models"
	"github.com/sirupsen/logrus"
)

// DriverLookup loads a driver account by id
type DriverLookup interface {
	GetByID(ctx context.Context, driverID int64) (*models.Driver, error)
}

// RequireActiveDriver checks that the driver behind the token still exists and is active.
// Must be used after AuthMiddleware.
func RequireActiveDriver(drivers DriverLookup, logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		account, exists := GetAccountContext(c)
		if !exists {
			abortAuth(c, http.StatusUnauthorized, "unauthorized", "Account context not found", "MISSING_ACCOUNT_CONTEXT")
			return
		}

		driver, err := drivers.GetByID(c.Request.Context(), account.AccountID)
		if err != nil {
			logger.WithError(err).WithField("driver_id", account.AccountID).Error("Failed to load driver for status check")
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"error":   "internal_error",
				"message": "Failed to verify driver account",
			})
			return
		}
		if driver == nil {
			abortAuth(c, http.StatusForbidden, "not_driver", "Driver account not found", "DRIVER_NOT_FOUND")
			return
		}
		if driver.Status != "active" {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error":         "driver_inactive",
				"message":       "Your driver account is not active.",
				"code":          "ACCOUNT_NOT_ACTIVE",
				"driver_status": driver.Status,
			})
			return
		}

		c.Set("driver", driver)
		c.Next()
	}
}
