package domain

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTaskDefaults(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 5, 10, 15, 30, 0, 0, time.UTC)
	assignee := uuid.New()

	task, err := NewTask(TaskFields{
		Title:          "Ship release",
		TargetDate:     now.Add(24 * time.Hour),
		AssignedUserID: assignee,
	}, now)

	require.NoError(t, err)
	assert.Equal(t, int64(0), task.Version)
	assert.Equal(t, StatusTodo, task.Status)
	assert.Equal(t, PriorityMedium, task.Priority)
	assert.Equal(t, time.Date(2026, 5, 11, 0, 0, 0, 0, time.UTC), task.TargetDate)
	assert.Equal(t, assignee, task.AssignedUserID)
}

func TestTaskTargetDateToday(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 5, 10, 23, 59, 0, 0, time.UTC)

	_, err := NewTask(TaskFields{
		Title:          "Same day",
		TargetDate:     time.Date(2026, 5, 10, 0, 0, 0, 0, time.UTC),
		AssignedUserID: uuid.New(),
	}, now)

	assert.NoError(t, err)
}

func TestTaskValidate(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 5, 10, 12, 0, 0, 0, time.UTC)
	valid := TaskFields{
		Title:          "Write docs",
		Description:    "the long version",
		Status:         StatusInProgress,
		Priority:       PriorityHigh,
		TargetDate:     now,
		AssignedUserID: uuid.New(),
	}

	tests := []struct {
		name      string
		mutate    func(f *TaskFields)
		wantField string
	}{
		{name: "blank title", mutate: func(f *TaskFields) { f.Title = "   " }, wantField: "title"},
		{name: "long title", mutate: func(f *TaskFields) { f.Title = strings.Repeat("x", 101) }, wantField: "title"},
		{name: "long description", mutate: func(f *TaskFields) { f.Description = strings.Repeat("x", 501) }, wantField: "description"},
		{name: "bad status", mutate: func(f *TaskFields) { f.Status = "BLOCKED" }, wantField: "status"},
		{name: "bad priority", mutate: func(f *TaskFields) { f.Priority = "URGENT" }, wantField: "priority"},
		{name: "past date", mutate: func(f *TaskFields) { f.TargetDate = now.AddDate(0, 0, -1) }, wantField: "targetDate"},
		{name: "missing date", mutate: func(f *TaskFields) { f.TargetDate = time.Time{} }, wantField: "targetDate"},
		{name: "no assignee", mutate: func(f *TaskFields) { f.AssignedUserID = uuid.Nil }, wantField: "assignedUserId"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			f := valid
			tt.mutate(&f)

			_, err := NewTask(f, now)
			require.Error(t, err)

			var verr *ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Contains(t, verr.Fields, tt.wantField)
		})
	}
}

func TestTaskApplyKeepsVersion(t *testing.T) {
	t.Parallel()

	now := time.Now()
	task := &Task{ID: uuid.New(), Version: 7}
	task.Apply(TaskFields{Title: "New", TargetDate: now, AssignedUserID: uuid.New()}, now)

	assert.Equal(t, int64(7), task.Version)
	assert.Equal(t, "New", task.Title)
}
