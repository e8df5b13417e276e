package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/mizunoha/task-board-api/internal/database"
	apierrors "github.com/mizunoha/task-board-api/internal/errors"
	"github.com/mizunoha/task-board-api/internal/models"
)

// RequireAdmin checks that the authenticated user holds the admin role.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := loadCurrentUser(c)
		if !ok {
			c.Abort()
			return
		}

		if !user.IsAdmin() {
			apierrors.Forbidden(c, "Admin role required")
			c.Abort()
			return
		}

		c.Next()
	}
}

// loadCurrentUser resolves the session email to a user record and caches it
// in the context under "current_user".
func loadCurrentUser(c *gin.Context) (*models.User, bool) {
	if cached, exists := c.Get("current_user"); exists {
		if user, ok := cached.(*models.User); ok {
			return user, true
		}
	}

	email, exists := GetUserEmail(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return nil, false
	}

	var user models.User
	if err := database.GetDB().First(&user, "email = ?", email).Error; err != nil {
		apierrors.Unauthorized(c, "Unknown user")
		return nil, false
	}

	c.Set("current_user", &user)
	return &user, true
}

// GetCurrentUser returns the user record loaded for this request, resolving
// it from the session if no middleware has done so yet.
func GetCurrentUser(c *gin.Context) (*models.User, bool) {
	return loadCurrentUser(c)
}
