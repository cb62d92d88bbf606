package handlers

import (
	"net/http"

	"courtside/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// getLogger retrieves the request logger set by middleware.RequestLogger, or the fallback.
func getLogger(c *gin.Context, fallback *zap.Logger) *zap.Logger {
	if l, exists := c.Get("logger"); exists {
		if logger, ok := l.(*zap.Logger); ok {
			return logger
		}
	}
	return fallback
}

// callerID returns the authenticated user id, aborting with 401 when it is missing.
func callerID(c *gin.Context) (string, bool) {
	userID := c.GetString(utils.ContextUserID)
	if userID == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "User ID not found in context"})
		return "", false
	}
	return userID, true
}
