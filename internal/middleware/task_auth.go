package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/mizunoha/task-board-api/internal/constants"
	"github.com/mizunoha/task-board-api/internal/database"
	apierrors "github.com/mizunoha/task-board-api/internal/errors"
	"github.com/mizunoha/task-board-api/internal/models"
)

// RequireTaskAccess loads the task from the :id parameter and checks
// visibility: admins see everything, otherwise the actor must be the task's
// assignee or creator.
func RequireTaskAccess() gin.HandlerFunc {
	return func(c *gin.Context) {
		taskID := c.Param("id")
		if taskID == "" {
			apierrors.BadRequest(c, "Invalid task ID")
			c.Abort()
			return
		}

		user, ok := loadCurrentUser(c)
		if !ok {
			c.Abort()
			return
		}

		var task models.Task
		if err := database.GetDB().First(&task, "id = ?", taskID).Error; err != nil {
			apierrors.NotFound(c, "Task not found")
			c.Abort()
			return
		}

		if !user.IsAdmin() && task.AssigneeEmail != user.Email && task.CreatedBy != user.Email {
			// 404 instead of 403 to avoid leaking task existence
			apierrors.NotFound(c, "Task not found")
			c.Abort()
			return
		}

		c.Set(constants.ContextKeyTask, task)
		c.Next()
	}
}

// GetContextTask retrieves the task loaded by RequireTaskAccess.
func GetContextTask(c *gin.Context) (models.Task, bool) {
	v, exists := c.Get(constants.ContextKeyTask)
	if !exists {
		return models.Task{}, false
	}
	task, ok := v.(models.Task)
	return task, ok
}
