package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mizunoha/task-board-api/internal/command"
	"github.com/mizunoha/task-board-api/internal/dates"
	"github.com/mizunoha/task-board-api/internal/models"
	"github.com/mizunoha/task-board-api/internal/repository"
	"github.com/mizunoha/task-board-api/internal/views"
	"gorm.io/gorm"
)

var (
	ErrTaskNotFound           = errors.New("task not found")
	ErrParentTaskNotFound     = errors.New("parent task not found")
	ErrNestedSubtask          = errors.New("subtasks cannot have their own subtasks")
	ErrNotSubtask             = errors.New("task is not a subtask")
	ErrTextRequired           = errors.New("task text is required")
	ErrTitleEmpty             = errors.New("title cannot be empty")
	ErrAssigneeNotFound       = errors.New("assignee is not a known user")
	ErrTitleNotExtracted      = errors.New("could not extract a task title from the text")
	ErrDateNotFound           = errors.New("no due date found in the text; state the date explicitly (e.g. 11/20までに)")
	ErrPastDueDate            = errors.New("past due dates cannot be specified")
	ErrNotAssignee            = errors.New("only the assignee can report this task")
	ErrAdminOnly              = errors.New("only an admin can perform this action")
	ErrInvalidTransition      = errors.New("status transition not allowed from the current status")
	ErrAIServiceNotConfigured = errors.New("AI service is not configured")
)

// TaskExtractor is the external AI collaborator: best-effort title and MM/DD
// extraction from free text.
type TaskExtractor interface {
	ExtractTaskFromText(ctx context.Context, text string) (*ExtractedTask, error)
}

// TaskService owns the task state machine and the creation pipelines.
type TaskService struct {
	taskRepo  repository.TaskRepository
	userRepo  repository.UserRepository
	extractor TaskExtractor

	// now is swappable in tests so date resolution is deterministic.
	now func() time.Time
}

// NewTaskService creates a new TaskService. aiService may be nil when no API
// key is configured; the free-text creation path then fails cleanly.
func NewTaskService(taskRepo repository.TaskRepository, userRepo repository.UserRepository, aiService *AIService) *TaskService {
	s := &TaskService{
		taskRepo: taskRepo,
		userRepo: userRepo,
		now:      time.Now,
	}
	if aiService != nil {
		s.extractor = aiService
	}
	return s
}

// CreateFromTextInput is the free-text (AI extraction) creation request.
type CreateFromTextInput struct {
	Text          string
	AssigneeEmail string
	Priority      models.TaskPriority
	CreatedBy     string
}

// CreateFromCommandInput is the chat-command creation request.
type CreateFromCommandInput struct {
	Text      string
	CreatedBy string
}

// CreateSubtaskInput is the subtask creation request. Assignee and priority
// default to the parent's when unset; the due date always comes from the
// parent, never from the subtask's own text.
type CreateSubtaskInput struct {
	ParentTaskID  string
	Title         string
	AssigneeEmail string
	Priority      models.TaskPriority
	CreatedBy     string
}

// UpdateTaskInput carries the editable fields. Nil means "leave unchanged".
type UpdateTaskInput struct {
	Title         *string
	AssigneeEmail *string
	Priority      *models.TaskPriority
	DueDate       *time.Time
}

// TaskDetail is a task together with its subtasks and their progress.
type TaskDetail struct {
	Task              models.Task
	Subtasks          []models.Task
	CompletedSubtasks int
	TotalSubtasks     int
}

// AdminList returns the filtered admin view over the full task set.
func (s *TaskService) AdminList(filter views.Filter) ([]models.Task, error) {
	tasks, err := s.taskRepo.ListAll()
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	return views.Admin(tasks, filter, s.now()), nil
}

// Dashboard returns the caller's bucketed view.
func (s *TaskService) Dashboard(email string) (views.Dashboard, error) {
	tasks, err := s.taskRepo.ListAll()
	if err != nil {
		return views.Dashboard{}, fmt.Errorf("failed to list tasks: %w", err)
	}
	return views.User(tasks, email, s.now()), nil
}

// Get returns a task with its subtasks and progress.
func (s *TaskService) Get(taskID string) (*TaskDetail, error) {
	task, err := s.findTask(taskID)
	if err != nil {
		return nil, err
	}

	subtasks, err := s.taskRepo.ListSubtasks(taskID)
	if err != nil {
		return nil, fmt.Errorf("failed to list subtasks: %w", err)
	}

	detail := &TaskDetail{
		Task:     *task,
		Subtasks: subtasks,
	}
	for _, st := range subtasks {
		detail.TotalSubtasks++
		if st.Status == models.TaskStatusDone {
			detail.CompletedSubtasks++
		}
	}
	return detail, nil
}

// CreateFromText creates a top-level task from free text via AI extraction.
// The extraction result is untrusted and goes through the same validation as
// user-typed input: empty title and missing date are hard failures.
func (s *TaskService) CreateFromText(ctx context.Context, input CreateFromTextInput) (*models.Task, error) {
	if strings.TrimSpace(input.Text) == "" {
		return nil, ErrTextRequired
	}

	assignee, err := s.findAssignee(input.AssigneeEmail)
	if err != nil {
		return nil, err
	}

	if s.extractor == nil {
		return nil, ErrAIServiceNotConfigured
	}

	extracted, err := s.extractor.ExtractTaskFromText(ctx, input.Text)
	if err != nil {
		return nil, fmt.Errorf("task extraction failed: %w", err)
	}

	if strings.TrimSpace(extracted.Title) == "" {
		return nil, ErrTitleNotExtracted
	}
	if extracted.DueDate == nil {
		return nil, ErrDateNotFound
	}

	dueDate, err := dates.ResolveMonthDay(*extracted.DueDate, s.now())
	if err != nil {
		return nil, err
	}

	return s.createTopLevel(strings.TrimSpace(extracted.Title), assignee, dueDate, input.Priority, input.CreatedBy)
}

// CreateFromCommand creates a top-level task from a structured chat command.
// No AI round-trip: the grammar carries the title and date explicitly.
func (s *TaskService) CreateFromCommand(input CreateFromCommandInput) (*models.Task, error) {
	parsed, err := command.Parse(input.Text)
	if err != nil {
		return nil, err
	}

	assignee, err := s.resolveAssigneeToken(parsed.AssigneeToken)
	if err != nil {
		return nil, err
	}

	dueDate, err := dates.ResolveMonthDay(parsed.DueDate, s.now())
	if err != nil {
		return nil, err
	}

	return s.createTopLevel(parsed.Title, assignee, dueDate, parsed.Priority, input.CreatedBy)
}

// CreateSubtask creates a subtask under a top-level parent. The parent's due
// date is inherited verbatim; no date extraction or resolution runs.
func (s *TaskService) CreateSubtask(input CreateSubtaskInput) (*models.Task, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, ErrTitleEmpty
	}

	parent, err := s.taskRepo.FindByID(input.ParentTaskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrParentTaskNotFound
		}
		return nil, fmt.Errorf("failed to find parent task: %w", err)
	}
	if parent.IsSubtask() {
		return nil, ErrNestedSubtask
	}

	assigneeEmail := input.AssigneeEmail
	if assigneeEmail == "" {
		assigneeEmail = parent.AssigneeEmail
	}
	assignee, err := s.findAssignee(assigneeEmail)
	if err != nil {
		return nil, err
	}

	priority := input.Priority
	if priority == "" {
		priority = parent.Priority
	}

	task := &models.Task{
		Title:         title,
		AssigneeEmail: assignee.Email,
		AssigneeName:  assignee.DisplayName,
		DueDate:       parent.DueDate,
		Priority:      priority,
		Status:        models.TaskStatusTodo,
		CreatedBy:     input.CreatedBy,
		ParentTaskID:  &parent.ID,
	}

	if err := s.taskRepo.Create(task); err != nil {
		return nil, fmt.Errorf("failed to create subtask: %w", err)
	}
	return task, nil
}

// Update edits a task. Editing to a past due date is allowed; the past-date
// guard applies at creation only.
func (s *TaskService) Update(taskID string, input UpdateTaskInput) (*models.Task, error) {
	task, err := s.findTask(taskID)
	if err != nil {
		return nil, err
	}

	if input.Title != nil {
		if strings.TrimSpace(*input.Title) == "" {
			return nil, ErrTitleEmpty
		}
		task.Title = strings.TrimSpace(*input.Title)
	}
	if input.AssigneeEmail != nil {
		assignee, err := s.findAssignee(*input.AssigneeEmail)
		if err != nil {
			return nil, err
		}
		task.AssigneeEmail = assignee.Email
		task.AssigneeName = assignee.DisplayName
	}
	if input.Priority != nil {
		task.Priority = *input.Priority
	}
	if input.DueDate != nil {
		task.DueDate = *input.DueDate
	}

	if err := s.taskRepo.Update(task); err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}
	return task, nil
}

// Delete removes a task and, through the repository transaction, every
// subtask referencing it.
func (s *TaskService) Delete(taskID string, actor *models.User) error {
	if !actor.IsAdmin() {
		return ErrAdminOnly
	}

	if _, err := s.findTask(taskID); err != nil {
		return err
	}

	if err := s.taskRepo.Delete(taskID); err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	return nil
}

// Report moves a task from TODO to REPORTED. Assignee only.
func (s *TaskService) Report(taskID string, actor *models.User) (*models.Task, error) {
	task, err := s.findTask(taskID)
	if err != nil {
		return nil, err
	}
	if task.AssigneeEmail != actor.Email {
		return nil, ErrNotAssignee
	}
	if task.Status != models.TaskStatusTodo {
		return nil, ErrInvalidTransition
	}
	return s.saveStatus(task, models.TaskStatusReported)
}

// Approve moves a task from REPORTED to DONE. Admin only. DONE is terminal
// for top-level tasks.
func (s *TaskService) Approve(taskID string, actor *models.User) (*models.Task, error) {
	task, err := s.findTask(taskID)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() {
		return nil, ErrAdminOnly
	}
	if task.Status != models.TaskStatusReported {
		return nil, ErrInvalidTransition
	}
	return s.saveStatus(task, models.TaskStatusDone)
}

// SendBack rejects a report, moving REPORTED back to TODO. Admin only.
func (s *TaskService) SendBack(taskID string, actor *models.User) (*models.Task, error) {
	task, err := s.findTask(taskID)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() {
		return nil, ErrAdminOnly
	}
	if task.Status != models.TaskStatusReported {
		return nil, ErrInvalidTransition
	}
	return s.saveStatus(task, models.TaskStatusTodo)
}

// ToggleSubtask flips a subtask between DONE and TODO, bypassing REPORTED.
// Authorization is visibility: anyone who can load the task may toggle it.
func (s *TaskService) ToggleSubtask(taskID string) (*models.Task, error) {
	task, err := s.findTask(taskID)
	if err != nil {
		return nil, err
	}
	if !task.IsSubtask() {
		return nil, ErrNotSubtask
	}

	next := models.TaskStatusDone
	if task.Status == models.TaskStatusDone {
		next = models.TaskStatusTodo
	}
	return s.saveStatus(task, next)
}

// createTopLevel is the shared tail of both top-level creation paths.
func (s *TaskService) createTopLevel(title string, assignee *models.User, dueDate time.Time, priority models.TaskPriority, createdBy string) (*models.Task, error) {
	// The resolver never yields a past date, but the explicit-date edit API
	// shares this model, so the creation guard stays explicit.
	if dueDate.Before(dates.StartOfDay(s.now())) {
		return nil, ErrPastDueDate
	}

	if priority == "" {
		priority = models.TaskPriorityMedium
	}

	task := &models.Task{
		Title:         title,
		AssigneeEmail: assignee.Email,
		AssigneeName:  assignee.DisplayName,
		DueDate:       dueDate,
		Priority:      priority,
		Status:        models.TaskStatusTodo,
		CreatedBy:     createdBy,
	}

	if err := s.taskRepo.Create(task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}
	return task, nil
}

// saveStatus persists a status change. Status and the gorm-stamped UpdatedAt
// are the only fields a transition touches.
func (s *TaskService) saveStatus(task *models.Task, status models.TaskStatus) (*models.Task, error) {
	task.Status = status
	if err := s.taskRepo.Update(task); err != nil {
		return nil, fmt.Errorf("failed to update status: %w", err)
	}
	return task, nil
}

func (s *TaskService) findTask(taskID string) (*models.Task, error) {
	task, err := s.taskRepo.FindByID(taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}
	return task, nil
}

func (s *TaskService) findAssignee(email string) (*models.User, error) {
	user, err := s.userRepo.FindByEmail(email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAssigneeNotFound
		}
		return nil, fmt.Errorf("failed to find assignee: %w", err)
	}
	return user, nil
}

// resolveAssigneeToken maps a command token to a user: display name first,
// then email. A leading @ mention marker is stripped.
func (s *TaskService) resolveAssigneeToken(token string) (*models.User, error) {
	token = strings.TrimPrefix(token, "@")

	user, err := s.userRepo.FindByDisplayName(token)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to resolve assignee: %w", err)
	}

	return s.findAssignee(strings.ToLower(token))
}
