package dto

import (
	"time"

	"github.com/mizunoha/task-board-api/internal/models"
	"github.com/mizunoha/task-board-api/internal/services"
	"github.com/mizunoha/task-board-api/internal/utils"
	"github.com/mizunoha/task-board-api/internal/views"
)

// UserDTO represents a user in API responses
type UserDTO struct {
	Email       string          `json:"email"`
	DisplayName string          `json:"display_name"`
	Role        models.UserRole `json:"role"`
}

// TaskDTO represents a task in API responses
type TaskDTO struct {
	ID            string              `json:"id"`
	Title         string              `json:"title"`
	AssigneeEmail string              `json:"assignee_email"`
	AssigneeName  string              `json:"assignee_name"`
	DueDate       time.Time           `json:"due_date"`
	Priority      models.TaskPriority `json:"priority"`
	Status        models.TaskStatus   `json:"status"`
	CreatedBy     string              `json:"created_by"`
	ParentTaskID  *string             `json:"parent_task_id,omitempty"`
	CreatedAt     time.Time           `json:"created_at"`
	UpdatedAt     time.Time           `json:"updated_at"`
}

// TaskDetailDTO is a task with its nested subtasks and progress
type TaskDetailDTO struct {
	TaskDTO
	Subtasks          []TaskDTO `json:"subtasks"`
	CompletedSubtasks int       `json:"completed_subtasks"`
	TotalSubtasks     int       `json:"total_subtasks"`
}

// TaskListResponse represents a paginated admin list
type TaskListResponse struct {
	Tasks      []TaskDTO                `json:"tasks"`
	Pagination utils.PaginationResponse `json:"pagination"`
}

// DashboardResponse is the per-user bucketed view
type DashboardResponse struct {
	Todo         []TaskDTO `json:"todo"`
	Reported     []TaskDTO `json:"reported"`
	Done         []TaskDTO `json:"done"`
	OverdueCount int       `json:"overdue_count"`
}

// ToUserDTO converts a User model to UserDTO
func ToUserDTO(user models.User) UserDTO {
	return UserDTO{
		Email:       user.Email,
		DisplayName: user.DisplayName,
		Role:        user.Role,
	}
}

// ToTaskDTO converts a Task model to TaskDTO
func ToTaskDTO(task models.Task) TaskDTO {
	return TaskDTO{
		ID:            task.ID,
		Title:         task.Title,
		AssigneeEmail: task.AssigneeEmail,
		AssigneeName:  task.AssigneeName,
		DueDate:       task.DueDate,
		Priority:      task.Priority,
		Status:        task.Status,
		CreatedBy:     task.CreatedBy,
		ParentTaskID:  task.ParentTaskID,
		CreatedAt:     task.CreatedAt,
		UpdatedAt:     task.UpdatedAt,
	}
}

// ToTaskDTOs converts a slice of tasks
func ToTaskDTOs(tasks []models.Task) []TaskDTO {
	out := make([]TaskDTO, len(tasks))
	for i, t := range tasks {
		out[i] = ToTaskDTO(t)
	}
	return out
}

// ToTaskDetailDTO converts a service TaskDetail
func ToTaskDetailDTO(detail services.TaskDetail) TaskDetailDTO {
	return TaskDetailDTO{
		TaskDTO:           ToTaskDTO(detail.Task),
		Subtasks:          ToTaskDTOs(detail.Subtasks),
		CompletedSubtasks: detail.CompletedSubtasks,
		TotalSubtasks:     detail.TotalSubtasks,
	}
}

// ToDashboardResponse converts a views Dashboard
func ToDashboardResponse(d views.Dashboard) DashboardResponse {
	return DashboardResponse{
		Todo:         ToTaskDTOs(d.Todo),
		Reported:     ToTaskDTOs(d.Reported),
		Done:         ToTaskDTOs(d.Done),
		OverdueCount: d.Overdue,
	}
}
