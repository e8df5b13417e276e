package views

import (
	"testing"
	"time"

	"github.com/mizunoha/task-board-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2025, time.June, 15, 10, 0, 0, 0, time.UTC)

func day(offset int) time.Time {
	return time.Date(2025, time.June, 15+offset, 0, 0, 0, 0, time.UTC)
}

func task(id, assignee string, due time.Time, priority models.TaskPriority, status models.TaskStatus) models.Task {
	return models.Task{
		ID:            id,
		Title:         "task " + id,
		AssigneeEmail: assignee,
		DueDate:       due,
		Priority:      priority,
		Status:        status,
	}
}

func subtask(id, parentID, assignee string, status models.TaskStatus) models.Task {
	t := task(id, assignee, day(1), models.TaskPriorityMedium, status)
	t.ParentTaskID = &parentID
	return t
}

func TestAdmin_ExcludesSubtasks(t *testing.T) {
	tasks := []models.Task{
		task("1", "tanaka@example.com", day(1), models.TaskPriorityHigh, models.TaskStatusTodo),
		subtask("2", "1", "tanaka@example.com", models.TaskStatusTodo),
	}

	got := Admin(tasks, Filter{}, now)
	require.Len(t, got, 1)
	assert.Equal(t, "1", got[0].ID)
}

func TestAdmin_SubtasksExcludedEvenWhenFiltersMatch(t *testing.T) {
	tasks := []models.Task{
		subtask("2", "1", "tanaka@example.com", models.TaskStatusTodo),
	}

	got := Admin(tasks, Filter{Assignee: "tanaka@example.com"}, now)
	assert.Empty(t, got)
}

func TestAdmin_AssigneeAndPriorityFilters(t *testing.T) {
	tasks := []models.Task{
		task("1", "tanaka@example.com", day(1), models.TaskPriorityHigh, models.TaskStatusTodo),
		task("2", "suzuki@example.com", day(1), models.TaskPriorityHigh, models.TaskStatusTodo),
		task("3", "tanaka@example.com", day(1), models.TaskPriorityLow, models.TaskStatusTodo),
	}

	got := Admin(tasks, Filter{Assignee: "tanaka@example.com", Priority: models.TaskPriorityHigh}, now)
	require.Len(t, got, 1)
	assert.Equal(t, "1", got[0].ID)
}

func TestAdmin_OverdueOnly(t *testing.T) {
	tasks := []models.Task{
		task("yesterday-todo", "a@example.com", day(-1), models.TaskPriorityMedium, models.TaskStatusTodo),
		task("yesterday-done", "a@example.com", day(-1), models.TaskPriorityMedium, models.TaskStatusDone),
		task("today", "a@example.com", day(0), models.TaskPriorityMedium, models.TaskStatusTodo),
		task("reported-old", "a@example.com", day(-3), models.TaskPriorityMedium, models.TaskStatusReported),
	}

	got := Admin(tasks, Filter{OverdueOnly: true}, now)
	require.Len(t, got, 2)
	// Sorted ascending by due date.
	assert.Equal(t, "reported-old", got[0].ID)
	assert.Equal(t, "yesterday-todo", got[1].ID)
}

func TestAdmin_SortIsStableOnDueDateTies(t *testing.T) {
	tasks := []models.Task{
		task("first", "a@example.com", day(2), models.TaskPriorityMedium, models.TaskStatusTodo),
		task("second", "a@example.com", day(2), models.TaskPriorityMedium, models.TaskStatusTodo),
		task("earlier", "a@example.com", day(1), models.TaskPriorityMedium, models.TaskStatusTodo),
	}

	got := Admin(tasks, Filter{}, now)
	require.Len(t, got, 3)
	assert.Equal(t, []string{"earlier", "first", "second"}, []string{got[0].ID, got[1].ID, got[2].ID})
}

func TestUser_BucketsByStatusAndScopesToAssignee(t *testing.T) {
	tasks := []models.Task{
		task("todo", "tanaka@example.com", day(2), models.TaskPriorityMedium, models.TaskStatusTodo),
		task("reported", "tanaka@example.com", day(1), models.TaskPriorityMedium, models.TaskStatusReported),
		task("done", "tanaka@example.com", day(-2), models.TaskPriorityMedium, models.TaskStatusDone),
		task("other", "suzuki@example.com", day(1), models.TaskPriorityMedium, models.TaskStatusTodo),
		subtask("sub", "todo", "tanaka@example.com", models.TaskStatusTodo),
	}

	d := User(tasks, "tanaka@example.com", now)

	require.Len(t, d.Todo, 1)
	require.Len(t, d.Reported, 1)
	require.Len(t, d.Done, 1)
	assert.Equal(t, "todo", d.Todo[0].ID)
	assert.Equal(t, "reported", d.Reported[0].ID)
	assert.Equal(t, "done", d.Done[0].ID)
}

func TestUser_OverdueCountIgnoresDoneTasks(t *testing.T) {
	tasks := []models.Task{
		task("late", "tanaka@example.com", day(-1), models.TaskPriorityMedium, models.TaskStatusTodo),
		task("late-done", "tanaka@example.com", day(-5), models.TaskPriorityMedium, models.TaskStatusDone),
		task("on-time", "tanaka@example.com", day(0), models.TaskPriorityMedium, models.TaskStatusTodo),
	}

	d := User(tasks, "tanaka@example.com", now)
	assert.Equal(t, 1, d.Overdue)
}

func TestSubtasksAndProgress(t *testing.T) {
	tasks := []models.Task{
		task("parent", "a@example.com", day(1), models.TaskPriorityMedium, models.TaskStatusTodo),
		subtask("s1", "parent", "a@example.com", models.TaskStatusDone),
		subtask("s2", "parent", "a@example.com", models.TaskStatusTodo),
		subtask("other", "another", "a@example.com", models.TaskStatusDone),
	}

	subs := Subtasks(tasks, "parent")
	require.Len(t, subs, 2)

	done, total := Progress(tasks, "parent")
	assert.Equal(t, 1, done)
	assert.Equal(t, 2, total)
}
