package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TaskStatus string

const (
	TaskStatusTodo     TaskStatus = "TODO"
	TaskStatusReported TaskStatus = "REPORTED"
	TaskStatusDone     TaskStatus = "DONE"
)

type TaskPriority string

const (
	TaskPriorityHigh   TaskPriority = "High"
	TaskPriorityMedium TaskPriority = "Med"
	TaskPriorityLow    TaskPriority = "Low"
)

type Task struct {
	ID            string         `gorm:"type:varchar(36);primarykey" json:"id"`
	Title         string         `gorm:"not null" json:"title"`
	AssigneeEmail string         `gorm:"type:varchar(255);not null" json:"assignee_email"`
	AssigneeName  string         `gorm:"type:varchar(255);not null" json:"assignee_name"`
	DueDate       time.Time      `gorm:"not null" json:"due_date"`
	Priority      TaskPriority   `gorm:"type:varchar(10);not null;default:'Med'" json:"priority"`
	Status        TaskStatus     `gorm:"type:varchar(20);not null;default:'TODO'" json:"status"`
	CreatedBy     string         `gorm:"type:varchar(255);not null" json:"created_by"`
	ParentTaskID  *string        `gorm:"type:varchar(36);index" json:"parent_task_id,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
}

// BeforeCreate assigns an opaque identifier before the first insert.
func (t *Task) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	return nil
}

// IsSubtask reports whether the task hangs under a parent.
func (t *Task) IsSubtask() bool {
	return t.ParentTaskID != nil
}

// ParsePriority maps a stored priority string back to the enum, defaulting to
// Med for anything unrecognized.
func ParsePriority(s string) TaskPriority {
	switch TaskPriority(s) {
	case TaskPriorityHigh, TaskPriorityMedium, TaskPriorityLow:
		return TaskPriority(s)
	default:
		return TaskPriorityMedium
	}
}
