// Package views derives role-scoped task lists from the full task set. All
// derivations are pure: the caller fetches tasks in insertion order and views
// recompute filters, buckets and sorts on every read.
package views

import (
	"sort"
	"time"

	"github.com/mizunoha/task-board-api/internal/dates"
	"github.com/mizunoha/task-board-api/internal/models"
)

// Filter narrows the admin list. Zero values mean "no restriction".
type Filter struct {
	Assignee    string
	Priority    models.TaskPriority
	OverdueOnly bool
}

// Dashboard is the per-user view: top-level tasks bucketed by status, plus an
// overdue count over the non-done buckets.
type Dashboard struct {
	Todo     []models.Task
	Reported []models.Task
	Done     []models.Task
	Overdue  int
}

// Admin returns the filtered admin list: top-level tasks only, exact-match
// assignee/priority filters, optional overdue-only restriction, sorted
// ascending by due date with insertion order breaking ties.
func Admin(tasks []models.Task, f Filter, now time.Time) []models.Task {
	out := make([]models.Task, 0, len(tasks))
	for _, t := range tasks {
		if t.IsSubtask() {
			continue
		}
		if f.Assignee != "" && t.AssigneeEmail != f.Assignee {
			continue
		}
		if f.Priority != "" && t.Priority != f.Priority {
			continue
		}
		if f.OverdueOnly && !isOverdueTask(t, now) {
			continue
		}
		out = append(out, t)
	}
	sortByDueDate(out)
	return out
}

// User returns the caller's top-level tasks bucketed for the dashboard.
func User(tasks []models.Task, email string, now time.Time) Dashboard {
	var d Dashboard
	mine := make([]models.Task, 0, len(tasks))
	for _, t := range tasks {
		if t.IsSubtask() || t.AssigneeEmail != email {
			continue
		}
		mine = append(mine, t)
	}
	sortByDueDate(mine)

	d.Todo = []models.Task{}
	d.Reported = []models.Task{}
	d.Done = []models.Task{}
	for _, t := range mine {
		if isOverdueTask(t, now) {
			d.Overdue++
		}
		switch t.Status {
		case models.TaskStatusReported:
			d.Reported = append(d.Reported, t)
		case models.TaskStatusDone:
			d.Done = append(d.Done, t)
		default:
			d.Todo = append(d.Todo, t)
		}
	}
	return d
}

// Subtasks returns the tasks nested under parentID, in insertion order.
func Subtasks(tasks []models.Task, parentID string) []models.Task {
	out := []models.Task{}
	for _, t := range tasks {
		if t.ParentTaskID != nil && *t.ParentTaskID == parentID {
			out = append(out, t)
		}
	}
	return out
}

// Progress reports completed and total subtask counts for a parent.
func Progress(tasks []models.Task, parentID string) (done, total int) {
	for _, t := range Subtasks(tasks, parentID) {
		total++
		if t.Status == models.TaskStatusDone {
			done++
		}
	}
	return done, total
}

// isOverdueTask is the shared overdue predicate: never overdue once done,
// otherwise a calendar-date comparison against the start of today.
func isOverdueTask(t models.Task, now time.Time) bool {
	return t.Status != models.TaskStatusDone && dates.IsOverdue(t.DueDate, now)
}

func sortByDueDate(tasks []models.Task) {
	sort.SliceStable(tasks, func(i, j int) bool {
		return tasks[i].DueDate.Before(tasks[j].DueDate)
	})
}
