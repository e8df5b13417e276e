package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mizunoha/task-board-api/internal/command"
	"github.com/mizunoha/task-board-api/internal/dates"
	"github.com/mizunoha/task-board-api/internal/dto"
	apierrors "github.com/mizunoha/task-board-api/internal/errors"
	"github.com/mizunoha/task-board-api/internal/middleware"
	"github.com/mizunoha/task-board-api/internal/models"
	"github.com/mizunoha/task-board-api/internal/services"
	"github.com/mizunoha/task-board-api/internal/utils"
	"github.com/mizunoha/task-board-api/internal/views"
)

type TaskHandler struct {
	taskService *services.TaskService
}

func NewTaskHandler(taskService *services.TaskService) *TaskHandler {
	return &TaskHandler{
		taskService: taskService,
	}
}

// ListTasks returns the admin list view. Supports assignee, priority and
// overdue query filters; subtasks never appear here.
func (h *TaskHandler) ListTasks(c *gin.Context) {
	filter := views.Filter{
		Assignee:    c.Query("assignee"),
		OverdueOnly: c.Query("overdue") == "true",
	}
	if p := c.Query("priority"); p != "" {
		filter.Priority = models.ParsePriority(p)
	}

	tasks, err := h.taskService.AdminList(filter)
	if err != nil {
		apierrors.RemoteOperationError(c, err.Error())
		return
	}

	params := utils.GetPaginationParams(c)
	total := int64(len(tasks))
	start := params.Offset
	if start > len(tasks) {
		start = len(tasks)
	}
	end := start + params.Limit
	if end > len(tasks) {
		end = len(tasks)
	}

	c.JSON(http.StatusOK, dto.TaskListResponse{
		Tasks: dto.ToTaskDTOs(tasks[start:end]),
		Pagination: utils.PaginationResponse{
			Page:  params.Page,
			Limit: params.Limit,
			Total: total,
		},
	})
}

// Dashboard returns the caller's status-bucketed view with an overdue count.
func (h *TaskHandler) Dashboard(c *gin.Context) {
	email, exists := middleware.GetUserEmail(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	dashboard, err := h.taskService.Dashboard(email)
	if err != nil {
		apierrors.RemoteOperationError(c, err.Error())
		return
	}

	c.JSON(http.StatusOK, dto.ToDashboardResponse(dashboard))
}

// GetTask returns a task with its subtasks and progress.
// Access is checked by RequireTaskAccess.
func (h *TaskHandler) GetTask(c *gin.Context) {
	task, ok := middleware.GetContextTask(c)
	if !ok {
		apierrors.InternalError(c, "Task not found in context")
		return
	}

	detail, err := h.taskService.Get(task.ID)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDetailDTO(*detail))
}

// CreateTask creates a top-level task from free text via AI extraction.
func (h *TaskHandler) CreateTask(c *gin.Context) {
	email, exists := middleware.GetUserEmail(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	type CreateTaskRequest struct {
		Text          string `json:"text" binding:"required"`
		AssigneeEmail string `json:"assignee_email" binding:"required,email"`
		Priority      string `json:"priority"`
	}

	var req CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	task, err := h.taskService.CreateFromText(c.Request.Context(), services.CreateFromTextInput{
		Text:          req.Text,
		AssigneeEmail: req.AssigneeEmail,
		Priority:      models.ParsePriority(req.Priority),
		CreatedBy:     email,
	})
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToTaskDTO(*task))
}

// CreateTaskFromCommand creates a top-level task from a chat command string.
func (h *TaskHandler) CreateTaskFromCommand(c *gin.Context) {
	email, exists := middleware.GetUserEmail(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	type CommandRequest struct {
		Text string `json:"text" binding:"required"`
	}

	var req CommandRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	task, err := h.taskService.CreateFromCommand(services.CreateFromCommandInput{
		Text:      req.Text,
		CreatedBy: email,
	})
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToTaskDTO(*task))
}

// CreateSubtask creates a subtask under the task from the URL. The parent's
// due date is inherited; assignee and priority default to the parent's.
func (h *TaskHandler) CreateSubtask(c *gin.Context) {
	email, exists := middleware.GetUserEmail(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	parent, ok := middleware.GetContextTask(c)
	if !ok {
		apierrors.InternalError(c, "Task not found in context")
		return
	}

	type CreateSubtaskRequest struct {
		Title         string `json:"title" binding:"required"`
		AssigneeEmail string `json:"assignee_email"`
		Priority      string `json:"priority"`
	}

	var req CreateSubtaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	input := services.CreateSubtaskInput{
		ParentTaskID:  parent.ID,
		Title:         req.Title,
		AssigneeEmail: req.AssigneeEmail,
		CreatedBy:     email,
	}
	if req.Priority != "" {
		input.Priority = models.ParsePriority(req.Priority)
	}

	task, err := h.taskService.CreateSubtask(input)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToTaskDTO(*task))
}

// UpdateTask edits title, assignee, priority or due date. The past-date guard
// does not apply here; it is a creation-only check.
func (h *TaskHandler) UpdateTask(c *gin.Context) {
	task, ok := middleware.GetContextTask(c)
	if !ok {
		apierrors.InternalError(c, "Task not found in context")
		return
	}

	type UpdateTaskRequest struct {
		Title         *string    `json:"title"`
		AssigneeEmail *string    `json:"assignee_email"`
		Priority      *string    `json:"priority"`
		DueDate       *time.Time `json:"due_date"`
	}

	var req UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	input := services.UpdateTaskInput{
		Title:         req.Title,
		AssigneeEmail: req.AssigneeEmail,
		DueDate:       req.DueDate,
	}
	if req.Priority != nil {
		p := models.ParsePriority(*req.Priority)
		input.Priority = &p
	}

	updated, err := h.taskService.Update(task.ID, input)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*updated))
}

// DeleteTask deletes a task and all of its subtasks.
func (h *TaskHandler) DeleteTask(c *gin.Context) {
	user, ok := middleware.GetCurrentUser(c)
	if !ok {
		return
	}

	task, taskOK := middleware.GetContextTask(c)
	if !taskOK {
		apierrors.InternalError(c, "Task not found in context")
		return
	}

	if err := h.taskService.Delete(task.ID, user); err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Task deleted successfully",
	})
}

// ReportTask moves TODO to REPORTED (assignee only).
func (h *TaskHandler) ReportTask(c *gin.Context) {
	h.transition(c, h.taskService.Report)
}

// ApproveTask moves REPORTED to DONE (admin only).
func (h *TaskHandler) ApproveTask(c *gin.Context) {
	h.transition(c, h.taskService.Approve)
}

// SendBackTask moves REPORTED back to TODO (admin only).
func (h *TaskHandler) SendBackTask(c *gin.Context) {
	h.transition(c, h.taskService.SendBack)
}

// ToggleSubtask flips a subtask between TODO and DONE. Visibility was already
// established by RequireTaskAccess, so no further role check applies.
func (h *TaskHandler) ToggleSubtask(c *gin.Context) {
	task, ok := middleware.GetContextTask(c)
	if !ok {
		apierrors.InternalError(c, "Task not found in context")
		return
	}

	updated, err := h.taskService.ToggleSubtask(task.ID)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*updated))
}

func (h *TaskHandler) transition(c *gin.Context, apply func(string, *models.User) (*models.Task, error)) {
	user, ok := middleware.GetCurrentUser(c)
	if !ok {
		return
	}

	task, taskOK := middleware.GetContextTask(c)
	if !taskOK {
		apierrors.InternalError(c, "Task not found in context")
		return
	}

	updated, err := apply(task.ID, user)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*updated))
}

// respondTaskError maps service errors onto the API error taxonomy. Malformed
// dates, missing dates and past dates deliberately carry distinct codes.
func respondTaskError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrTaskNotFound),
		errors.Is(err, services.ErrParentTaskNotFound):
		apierrors.NotFound(c, err.Error())
	case errors.Is(err, services.ErrNotAssignee),
		errors.Is(err, services.ErrAdminOnly):
		apierrors.RespondWithError(c, http.StatusForbidden,
			apierrors.NewAPIError(apierrors.ErrCodeForbiddenTransition, err.Error()))
	case errors.Is(err, services.ErrInvalidTransition):
		apierrors.UnprocessableCode(c, apierrors.ErrCodeInvalidTransition, err.Error())
	case errors.Is(err, dates.ErrInvalidDateFormat):
		apierrors.BadRequestCode(c, apierrors.ErrCodeInvalidDateFormat, err.Error())
	case errors.Is(err, services.ErrDateNotFound):
		apierrors.BadRequestCode(c, apierrors.ErrCodeDateNotFound, err.Error())
	case errors.Is(err, services.ErrPastDueDate):
		apierrors.BadRequestCode(c, apierrors.ErrCodePastDateRejected, err.Error())
	case errors.Is(err, command.ErrInvalidCommand),
		errors.Is(err, services.ErrTextRequired),
		errors.Is(err, services.ErrTitleEmpty),
		errors.Is(err, services.ErrTitleNotExtracted),
		errors.Is(err, services.ErrAssigneeNotFound),
		errors.Is(err, services.ErrNestedSubtask),
		errors.Is(err, services.ErrNotSubtask):
		apierrors.BadRequestCode(c, apierrors.ErrCodeValidation, err.Error())
	case errors.Is(err, services.ErrAIServiceNotConfigured):
		apierrors.ServiceUnavailable(c, "AI service is not configured. Please set OPENAI_API_KEY environment variable.")
	default:
		// Store or extraction collaborator failure: surface the underlying
		// reason, local state untouched.
		apierrors.RemoteOperationError(c, err.Error())
	}
}
