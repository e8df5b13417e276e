package middleware

import (
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/mizunoha/task-board-api/internal/constants"
	apierrors "github.com/mizunoha/task-board-api/internal/errors"
)

// RequireAuth checks if the user is authenticated via session
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		email := session.Get(constants.ContextKeyUserEmail)

		if email == nil {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}

		// Store user email in context for easy access in handlers
		c.Set(constants.ContextKeyUserEmail, email)
		c.Next()
	}
}

// GetUserEmail retrieves the current user's email from context
func GetUserEmail(c *gin.Context) (string, bool) {
	email, exists := c.Get(constants.ContextKeyUserEmail)
	if !exists {
		return "", false
	}

	s, ok := email.(string)
	if !ok || s == "" {
		return "", false
	}
	return s, true
}
