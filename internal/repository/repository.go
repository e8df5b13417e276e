package repository

import (
	"github.com/mizunoha/task-board-api/internal/models"
	"github.com/mizunoha/task-board-api/internal/utils"
)

// TaskRepository defines the interface for task data access
type TaskRepository interface {
	// Create creates a new task
	Create(task *models.Task) error

	// FindByID finds a task by ID
	FindByID(id string) (*models.Task, error)

	// ListAll retrieves every task in insertion order. View derivation
	// (filtering, bucketing, sorting) happens in the views package.
	ListAll() ([]models.Task, error)

	// ListSubtasks retrieves the subtasks of a parent in insertion order
	ListSubtasks(parentID string) ([]models.Task, error)

	// Update updates a task
	Update(task *models.Task) error

	// Delete soft deletes a task together with its subtasks
	Delete(id string) error
}

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Create creates a new user
	Create(user *models.User) error

	// FindByEmail finds a user by email
	FindByEmail(email string) (*models.User, error)

	// FindByDisplayName finds a user by display name
	FindByDisplayName(name string) (*models.User, error)

	// List retrieves users with pagination
	List(params utils.PaginationParams) ([]models.User, int64, error)
}
