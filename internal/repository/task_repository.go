package repository

import (
	"github.com/mizunoha/task-board-api/internal/models"
	"gorm.io/gorm"
)

// GormTaskRepository is a GORM implementation of TaskRepository
type GormTaskRepository struct {
	db *gorm.DB
}

// NewTaskRepository creates a new TaskRepository
func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &GormTaskRepository{db: db}
}

// Create creates a new task
func (r *GormTaskRepository) Create(task *models.Task) error {
	return r.db.Create(task).Error
}

// FindByID finds a task by ID
func (r *GormTaskRepository) FindByID(id string) (*models.Task, error) {
	var task models.Task
	if err := r.db.First(&task, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &task, nil
}

// ListAll retrieves every task ordered by creation time, which preserves
// insertion order for the stable sorts downstream.
func (r *GormTaskRepository) ListAll() ([]models.Task, error) {
	var tasks []models.Task
	if err := r.db.Order("created_at ASC").Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

// ListSubtasks retrieves the subtasks of a parent in insertion order
func (r *GormTaskRepository) ListSubtasks(parentID string) ([]models.Task, error) {
	var tasks []models.Task
	if err := r.db.Where("parent_task_id = ?", parentID).
		Order("created_at ASC").
		Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

// Update updates a task
func (r *GormTaskRepository) Update(task *models.Task) error {
	return r.db.Save(task).Error
}

// Delete soft deletes a task and all tasks referencing it as parent in a
// single transaction, so no orphaned subtasks survive.
func (r *GormTaskRepository) Delete(id string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("parent_task_id = ?", id).Delete(&models.Task{}).Error; err != nil {
			return err
		}

		return tx.Delete(&models.Task{}, "id = ?", id).Error
	})
}
