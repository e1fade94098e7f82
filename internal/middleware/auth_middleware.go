package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/ihute/transit-backend/pkg/jwt"
	"github.com/sirupsen/logrus"
)

// AccountContextKey is the key used to store the caller's identity in the Gin context
const AccountContextKey = "account"

// AccountContext represents the authenticated admin or driver
type AccountContext struct {
	AccountID   int64           `json:"account_id"`
	AccountType jwt.AccountType `json:"account_type"`
	Role        string          `json:"role"`
	ExpressID   *int64          `json:"express_id,omitempty"`
}

// AuthMiddleware validates the bearer token and stores the AccountContext
func AuthMiddleware(jwtService *jwt.Service, logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		log := logger.WithFields(logrus.Fields{"path": c.Request.URL.Path, "ip": c.ClientIP()})

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			log.Warn("AUTH FAILED: missing authorization header")
			abortAuth(c, http.StatusUnauthorized, "unauthorized", "Authorization header is required", "MISSING_AUTH_HEADER")
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			log.Warn("AUTH FAILED: invalid auth format")
			abortAuth(c, http.StatusUnauthorized, "unauthorized", "Invalid authorization header format. Expected: Bearer <token>", "INVALID_AUTH_FORMAT")
			return
		}

		tokenString := strings.TrimSpace(parts[1])
		if tokenString == "" {
			log.Warn("AUTH FAILED: empty token")
			abortAuth(c, http.StatusUnauthorized, "unauthorized", "Token cannot be empty", "INVALID_AUTH_FORMAT")
			return
		}

		claims, err := jwtService.ValidateAccessToken(tokenString)
		if err != nil {
			if errors.Is(err, jwt.ErrTokenExpired) {
				log.WithError(err).Info("AUTH FAILED: token expired")
				abortAuth(c, http.StatusUnauthorized, "token_expired", "Access token has expired. Please sign in again.", "TOKEN_EXPIRED")
			} else {
				log.WithError(err).Warn("AUTH FAILED: invalid token")
				abortAuth(c, http.StatusUnauthorized, "invalid_token", "Invalid access token", "INVALID_TOKEN")
			}
			return
		}

		c.Set(AccountContextKey, AccountContext{
			AccountID:   claims.AccountID,
			AccountType: claims.AccountType,
			Role:        claims.Role,
			ExpressID:   claims.ExpressID,
		})
		c.Next()
	}
}

// RequireAccountType rejects callers whose token was issued for another kind of account
func RequireAccountType(accountType jwt.AccountType) gin.HandlerFunc {
	return func(c *gin.Context) {
		account, exists := GetAccountContext(c)
		if !exists {
			abortAuth(c, http.StatusUnauthorized, "unauthorized", "Account context not found. Auth middleware may not be applied.", "MISSING_ACCOUNT_CONTEXT")
			return
		}
		if account.AccountType != accountType {
			abortAuth(c, http.StatusForbidden, "forbidden", "This endpoint is not available to your account type", "WRONG_ACCOUNT_TYPE")
			return
		}
		c.Next()
	}
}

// RequireRole checks that the caller has one of the given roles
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		account, exists := GetAccountContext(c)
		if !exists {
			abortAuth(c, http.StatusUnauthorized, "unauthorized", "Account context not found. Auth middleware may not be applied.", "MISSING_ACCOUNT_CONTEXT")
			return
		}

		for _, role := range roles {
			if account.Role == role {
				c.Next()
				return
			}
		}

		abortAuth(c, http.StatusForbidden, "forbidden", "You don't have permission to access this resource", "INSUFFICIENT_PERMISSIONS")
	}
}

// GetAccountContext retrieves the caller's identity from the Gin context
func GetAccountContext(c *gin.Context) (AccountContext, bool) {
	value, exists := c.Get(AccountContextKey)
	if !exists {
		return AccountContext{}, false
	}
	account, ok := value.(AccountContext)
	return account, ok
}

// MustGetAccountContext retrieves the identity or panics (use only after AuthMiddleware)
func MustGetAccountContext(c *gin.Context) AccountContext {
	account, exists := GetAccountContext(c)
	if !exists {
		panic("account context not found - ensure AuthMiddleware is applied")
	}
	return account
}

func abortAuth(c *gin.Context, status int, errCode, message, code string) {
	c.AbortWithStatusJSON(status, gin.H{
		"error":   errCode,
		"message": message,
		"code":    code,
	})
}
