// Package auth guards the operator endpoints of the node.
package auth

import (
	"errors"
	"net/http"

	"github.com/cyphera/remote-accounts/internal/constants"
	"github.com/cyphera/remote-accounts/internal/helpers"
	"github.com/cyphera/remote-accounts/internal/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const adminKey = "admin"

// ValidateAPIKey compares a presented key against the configured bcrypt hash.
func ValidateAPIKey(apiKey, hash string) error {
	if hash == "" {
		return ErrAdminDisabled
	}
	if apiKey == "" {
		return ErrMissingAPIKey
	}
	if err := helpers.CompareAPIKeyHash(apiKey, hash); err != nil {
		return ErrInvalidAPIKey
	}
	return nil
}

// EnsureAdminAPIKey rejects requests whose X-API-Key does not match hash.
// With an empty hash every admin request is refused.
func EnsureAdminAPIKey(hash string) gin.HandlerFunc {
	return func(c *gin.Context) {
		err := ValidateAPIKey(c.GetHeader(constants.APIKeyHeader), hash)
		if err != nil {
			status := http.StatusUnauthorized
			if errors.Is(err, ErrAdminDisabled) {
				status = http.StatusForbidden
			}
			logger.Log.Warn("Admin request rejected",
				zap.String("path", c.Request.URL.Path),
				zap.String("client_ip", c.ClientIP()),
				zap.Error(err),
			)
			c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
			return
		}
		c.Set(adminKey, true)
		c.Next()
	}
}

// IsAdmin reports whether the request passed EnsureAdminAPIKey.
func IsAdmin(c *gin.Context) bool {
	return c.GetBool(adminKey)
}
