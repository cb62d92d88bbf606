package utils

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ErrorResponse is the modal shown by the client: a code, a title and a message.
type ErrorResponse struct {
	Error   string `json:"error"`
	Title   string `json:"title"`
	Message string `json:"message"`
}

// ErrorHandler recovers from panics and answers with a generic modal.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				GetLogger().Error("Unhandled panic",
					zap.Any("error", err),
					zap.String("path", c.Request.URL.Path),
				)
				c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{
					Error:   "InternalError",
					Title:   "Something went wrong",
					Message: "An unexpected error occurred. Please try again later.",
				})
			}
		}()
		c.Next()
	}
}

// JSONError sends a modal-shaped JSON error response.
func JSONError(c *gin.Context, status int, code, title, message string) {
	GetLogger().Warn(title,
		zap.String("code", code),
		zap.String("message", message),
		zap.Int("status", status),
	)
	c.AbortWithStatusJSON(status, ErrorResponse{Error: code, Title: title, Message: message})
}
