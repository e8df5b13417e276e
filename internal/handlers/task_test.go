package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mizunoha/task-board-api/internal/constants"
	"github.com/mizunoha/task-board-api/internal/database"
	"github.com/mizunoha/task-board-api/internal/models"
	"github.com/mizunoha/task-board-api/internal/repository"
	"github.com/mizunoha/task-board-api/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// TaskHandlerTestSuite defines the test suite for TaskHandler
type TaskHandlerTestSuite struct {
	suite.Suite
	db      *gorm.DB
	handler *TaskHandler

	admin  *models.User
	tanaka *models.User
	suzuki *models.User
}

// SetupTest runs before each test
func (suite *TaskHandlerTestSuite) SetupTest() {
	var err error

	// Create in-memory SQLite database
	suite.db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	suite.Require().NoError(err)

	err = suite.db.AutoMigrate(&models.User{}, &models.Task{})
	suite.Require().NoError(err)

	// Set the test DB as the default database
	database.SetDB(suite.db)

	taskRepo := repository.NewTaskRepository(suite.db)
	userRepo := repository.NewUserRepository(suite.db)

	// No AI service in tests; the free-text path answers 503
	suite.handler = NewTaskHandler(services.NewTaskService(taskRepo, userRepo, nil))

	gin.SetMode(gin.TestMode)

	suite.admin = suite.createTestUser("boss@example.com", "社長", models.RoleAdmin)
	suite.tanaka = suite.createTestUser("tanaka@example.com", "田中", models.RoleUser)
	suite.suzuki = suite.createTestUser("suzuki@example.com", "鈴木", models.RoleUser)
}

// TearDownTest runs after each test
func (suite *TaskHandlerTestSuite) TearDownTest() {
	sqlDB, err := suite.db.DB()
	suite.Require().NoError(err)
	sqlDB.Close()
}

// Helper functions to create test data

func (suite *TaskHandlerTestSuite) createTestUser(email, name string, role models.UserRole) *models.User {
	user := &models.User{
		Email:        email,
		DisplayName:  name,
		Role:         role,
		PasswordHash: "hashedpassword",
	}
	suite.db.Create(user)
	return user
}

func (suite *TaskHandlerTestSuite) createTestTask(assignee *models.User, due time.Time, status models.TaskStatus) *models.Task {
	task := &models.Task{
		Title:         "Test Task",
		AssigneeEmail: assignee.Email,
		AssigneeName:  assignee.DisplayName,
		DueDate:       due,
		Priority:      models.TaskPriorityMedium,
		Status:        status,
		CreatedBy:     suite.admin.Email,
	}
	suite.db.Create(task)
	return task
}

func (suite *TaskHandlerTestSuite) createTestSubtask(parent *models.Task) *models.Task {
	task := &models.Task{
		Title:         "Subtask",
		AssigneeEmail: parent.AssigneeEmail,
		AssigneeName:  parent.AssigneeName,
		DueDate:       parent.DueDate,
		Priority:      parent.Priority,
		Status:        models.TaskStatusTodo,
		CreatedBy:     suite.admin.Email,
		ParentTaskID:  &parent.ID,
	}
	suite.db.Create(task)
	return task
}

// Helper function to create an authenticated context
func (suite *TaskHandlerTestSuite) createAuthContext(method, url string, body []byte, user *models.User) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, url, bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, url, nil)
	}

	c, _ := gin.CreateTestContext(w)
	c.Request = req
	c.Set(constants.ContextKeyUserEmail, user.Email)
	c.Set("current_user", user)

	return c, w
}

// Simulates RequireTaskAccess middleware
func (suite *TaskHandlerTestSuite) setTaskContext(c *gin.Context, task models.Task) {
	c.Set(constants.ContextKeyTask, task)
}

func futureDate(days int) time.Time {
	return time.Now().AddDate(0, 0, days)
}

// TestListTasks_ExcludesSubtasks checks that subtasks never show in the
// primary admin list even when filters would match them
func (suite *TaskHandlerTestSuite) TestListTasks_ExcludesSubtasks() {
	parent := suite.createTestTask(suite.tanaka, futureDate(2), models.TaskStatusTodo)
	suite.createTestSubtask(parent)

	c, w := suite.createAuthContext("GET", "/api/tasks", nil, suite.admin)
	c.Request.URL.RawQuery = "assignee=tanaka@example.com"

	suite.handler.ListTasks(c)

	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var response struct {
		Tasks []struct {
			ID string `json:"id"`
		} `json:"tasks"`
	}
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &response))
	suite.Require().Len(response.Tasks, 1)
	assert.Equal(suite.T(), parent.ID, response.Tasks[0].ID)
}

func (suite *TaskHandlerTestSuite) TestListTasks_OverdueFilter() {
	suite.createTestTask(suite.tanaka, futureDate(-2), models.TaskStatusTodo)
	suite.createTestTask(suite.tanaka, futureDate(-2), models.TaskStatusDone)
	suite.createTestTask(suite.suzuki, futureDate(2), models.TaskStatusTodo)

	c, w := suite.createAuthContext("GET", "/api/tasks", nil, suite.admin)
	c.Request.URL.RawQuery = "overdue=true"

	suite.handler.ListTasks(c)

	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var response struct {
		Tasks []struct {
			Status models.TaskStatus `json:"status"`
		} `json:"tasks"`
		Pagination struct {
			Total int64 `json:"total"`
		} `json:"pagination"`
	}
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &response))
	suite.Require().Len(response.Tasks, 1)
	assert.Equal(suite.T(), models.TaskStatusTodo, response.Tasks[0].Status)
	assert.Equal(suite.T(), int64(1), response.Pagination.Total)
}

func (suite *TaskHandlerTestSuite) TestDashboard_BucketsByStatus() {
	suite.createTestTask(suite.tanaka, futureDate(1), models.TaskStatusTodo)
	suite.createTestTask(suite.tanaka, futureDate(-1), models.TaskStatusReported)
	suite.createTestTask(suite.suzuki, futureDate(1), models.TaskStatusTodo)

	c, w := suite.createAuthContext("GET", "/api/dashboard", nil, suite.tanaka)

	suite.handler.Dashboard(c)

	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var response struct {
		Todo         []json.RawMessage `json:"todo"`
		Reported     []json.RawMessage `json:"reported"`
		Done         []json.RawMessage `json:"done"`
		OverdueCount int               `json:"overdue_count"`
	}
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &response))
	assert.Len(suite.T(), response.Todo, 1)
	assert.Len(suite.T(), response.Reported, 1)
	assert.Empty(suite.T(), response.Done)
	assert.Equal(suite.T(), 1, response.OverdueCount)
}

func (suite *TaskHandlerTestSuite) TestCreateTask_WithoutAIServiceUnavailable() {
	body := []byte(`{"text": "レポート 11/10 までに", "assignee_email": "tanaka@example.com"}`)
	c, w := suite.createAuthContext("POST", "/api/tasks", body, suite.admin)

	suite.handler.CreateTask(c)

	assert.Equal(suite.T(), http.StatusServiceUnavailable, w.Code)
}

func (suite *TaskHandlerTestSuite) TestCreateTaskFromCommand_Success() {
	body := []byte(`{"text": "@bot 田中 レポート提出 12/31 High"}`)
	c, w := suite.createAuthContext("POST", "/api/tasks/command", body, suite.admin)

	suite.handler.CreateTaskFromCommand(c)

	assert.Equal(suite.T(), http.StatusCreated, w.Code)

	var response struct {
		Title         string              `json:"title"`
		AssigneeEmail string              `json:"assignee_email"`
		Priority      models.TaskPriority `json:"priority"`
		Status        models.TaskStatus   `json:"status"`
	}
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(suite.T(), "レポート提出", response.Title)
	assert.Equal(suite.T(), "tanaka@example.com", response.AssigneeEmail)
	assert.Equal(suite.T(), models.TaskPriorityHigh, response.Priority)
	assert.Equal(suite.T(), models.TaskStatusTodo, response.Status)
}

func (suite *TaskHandlerTestSuite) TestCreateTaskFromCommand_InvalidCommand() {
	body := []byte(`{"text": "田中ください"}`)
	c, w := suite.createAuthContext("POST", "/api/tasks/command", body, suite.admin)

	suite.handler.CreateTaskFromCommand(c)

	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)

	var response struct {
		Code string `json:"code"`
	}
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(suite.T(), "VALIDATION_ERROR", response.Code)
}

func (suite *TaskHandlerTestSuite) TestCreateSubtask_InheritsParentDueDate() {
	parent := suite.createTestTask(suite.tanaka, futureDate(3), models.TaskStatusTodo)

	body := []byte(`{"title": "アジェンダ作成 12/25"}`)
	c, w := suite.createAuthContext("POST", "/api/tasks/"+parent.ID+"/subtasks", body, suite.tanaka)
	suite.setTaskContext(c, *parent)

	suite.handler.CreateSubtask(c)

	assert.Equal(suite.T(), http.StatusCreated, w.Code)

	var response struct {
		DueDate      time.Time `json:"due_date"`
		ParentTaskID *string   `json:"parent_task_id"`
	}
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(suite.T(), parent.DueDate.Unix(), response.DueDate.Unix())
	suite.Require().NotNil(response.ParentTaskID)
	assert.Equal(suite.T(), parent.ID, *response.ParentTaskID)
}

func (suite *TaskHandlerTestSuite) TestReportTask_NonAssigneeForbidden() {
	task := suite.createTestTask(suite.tanaka, futureDate(2), models.TaskStatusTodo)

	c, w := suite.createAuthContext("POST", "/api/tasks/"+task.ID+"/report", nil, suite.suzuki)
	suite.setTaskContext(c, *task)

	suite.handler.ReportTask(c)

	assert.Equal(suite.T(), http.StatusForbidden, w.Code)

	var response struct {
		Code string `json:"code"`
	}
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(suite.T(), "FORBIDDEN_TRANSITION", response.Code)
}

func (suite *TaskHandlerTestSuite) TestReportTask_AssigneeSuccess() {
	task := suite.createTestTask(suite.tanaka, futureDate(2), models.TaskStatusTodo)

	c, w := suite.createAuthContext("POST", "/api/tasks/"+task.ID+"/report", nil, suite.tanaka)
	suite.setTaskContext(c, *task)

	suite.handler.ReportTask(c)

	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var response struct {
		Status models.TaskStatus `json:"status"`
	}
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(suite.T(), models.TaskStatusReported, response.Status)
}

func (suite *TaskHandlerTestSuite) TestApproveTask_AdminSuccess() {
	task := suite.createTestTask(suite.tanaka, futureDate(2), models.TaskStatusReported)

	c, w := suite.createAuthContext("POST", "/api/tasks/"+task.ID+"/approve", nil, suite.admin)
	suite.setTaskContext(c, *task)

	suite.handler.ApproveTask(c)

	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var response struct {
		Status models.TaskStatus `json:"status"`
	}
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(suite.T(), models.TaskStatusDone, response.Status)
}

func (suite *TaskHandlerTestSuite) TestSendBackTask_InvalidFromTodo() {
	task := suite.createTestTask(suite.tanaka, futureDate(2), models.TaskStatusTodo)

	c, w := suite.createAuthContext("POST", "/api/tasks/"+task.ID+"/send-back", nil, suite.admin)
	suite.setTaskContext(c, *task)

	suite.handler.SendBackTask(c)

	assert.Equal(suite.T(), http.StatusUnprocessableEntity, w.Code)
}

func (suite *TaskHandlerTestSuite) TestToggleSubtask_Success() {
	parent := suite.createTestTask(suite.tanaka, futureDate(2), models.TaskStatusTodo)
	sub := suite.createTestSubtask(parent)

	c, w := suite.createAuthContext("POST", "/api/tasks/"+sub.ID+"/toggle", nil, suite.tanaka)
	suite.setTaskContext(c, *sub)

	suite.handler.ToggleSubtask(c)

	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var response struct {
		Status models.TaskStatus `json:"status"`
	}
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(suite.T(), models.TaskStatusDone, response.Status)
}

func (suite *TaskHandlerTestSuite) TestDeleteTask_CascadesToSubtasks() {
	parent := suite.createTestTask(suite.tanaka, futureDate(2), models.TaskStatusTodo)
	suite.createTestSubtask(parent)
	other := suite.createTestTask(suite.suzuki, futureDate(2), models.TaskStatusTodo)

	c, w := suite.createAuthContext("DELETE", "/api/tasks/"+parent.ID, nil, suite.admin)
	suite.setTaskContext(c, *parent)

	suite.handler.DeleteTask(c)

	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var count int64
	suite.db.Model(&models.Task{}).Count(&count)
	assert.Equal(suite.T(), int64(1), count)

	var remaining models.Task
	suite.Require().NoError(suite.db.First(&remaining, "id = ?", other.ID).Error)
}

func (suite *TaskHandlerTestSuite) TestGetTask_IncludesProgress() {
	parent := suite.createTestTask(suite.tanaka, futureDate(2), models.TaskStatusTodo)
	sub := suite.createTestSubtask(parent)
	sub.Status = models.TaskStatusDone
	suite.db.Save(sub)
	suite.createTestSubtask(parent)

	c, w := suite.createAuthContext("GET", "/api/tasks/"+parent.ID, nil, suite.admin)
	suite.setTaskContext(c, *parent)

	suite.handler.GetTask(c)

	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var response struct {
		Subtasks          []json.RawMessage `json:"subtasks"`
		CompletedSubtasks int               `json:"completed_subtasks"`
		TotalSubtasks     int               `json:"total_subtasks"`
	}
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &response))
	assert.Len(suite.T(), response.Subtasks, 2)
	assert.Equal(suite.T(), 2, response.TotalSubtasks)
	assert.Equal(suite.T(), 1, response.CompletedSubtasks)
}

func TestTaskHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(TaskHandlerTestSuite))
}
