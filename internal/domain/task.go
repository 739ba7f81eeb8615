package domain

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

const (
	// MaxTitleLength bounds a task title in runes.
	MaxTitleLength = 100
	// MaxDescriptionLength bounds a task description in runes.
	MaxDescriptionLength = 500
)

// Status is the business state of a task.
type Status string

const (
	StatusTodo       Status = "TODO"
	StatusInProgress Status = "IN_PROGRESS"
	StatusDone       Status = "DONE"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusTodo, StatusInProgress, StatusDone:
		return true
	}
	return false
}

// Priority orders tasks by urgency.
type Priority string

const (
	PriorityLow    Priority = "LOW"
	PriorityMedium Priority = "MEDIUM"
	PriorityHigh   Priority = "HIGH"
)

// Valid reports whether p is a known priority.
func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// Task is a unit of work assigned to a user. Version increments on every
// successful update and guards against lost updates.
type Task struct {
	ID             uuid.UUID
	Title          string
	Description    string
	Status         Status
	Priority       Priority
	TargetDate     time.Time
	AssignedUserID uuid.UUID
	Version        int64
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// TaskFields are the caller-editable attributes of a task.
type TaskFields struct {
	Title          string
	Description    string
	Status         Status
	Priority       Priority
	TargetDate     time.Time
	AssignedUserID uuid.UUID
}

// NewTask builds a validated task at version 0. Empty status and priority
// fall back to TODO and MEDIUM.
func NewTask(f TaskFields, now time.Time) (*Task, error) {
	t := &Task{
		ID:        uuid.New(),
		Version:   0,
		CreatedAt: now.UTC(),
		UpdatedAt: now.UTC(),
	}
	t.Apply(f, now)
	if err := t.Validate(now); err != nil {
		return nil, err
	}
	return t, nil
}

// Apply overwrites every mutable field from f. It does not touch Version.
func (t *Task) Apply(f TaskFields, now time.Time) {
	t.Title = strings.TrimSpace(f.Title)
	t.Description = f.Description
	t.Status = f.Status
	if t.Status == "" {
		t.Status = StatusTodo
	}
	t.Priority = f.Priority
	if t.Priority == "" {
		t.Priority = PriorityMedium
	}
	t.TargetDate = DateOf(f.TargetDate)
	t.AssignedUserID = f.AssignedUserID
	t.UpdatedAt = now.UTC()
}

// Validate checks field constraints. The target date must not be before
// the calendar day of now.
func (t *Task) Validate(now time.Time) error {
	verr := NewValidationError()

	switch {
	case t.Title == "":
		verr.Add("title", "Title must not be blank")
	case utf8.RuneCountInString(t.Title) > MaxTitleLength:
		verr.Add("title", "Title must be at most 100 characters")
	}
	if utf8.RuneCountInString(t.Description) > MaxDescriptionLength {
		verr.Add("description", "Description must be at most 500 characters")
	}
	if !t.Status.Valid() {
		verr.Add("status", "Status must be one of TODO, IN_PROGRESS, DONE")
	}
	if !t.Priority.Valid() {
		verr.Add("priority", "Priority must be one of LOW, MEDIUM, HIGH")
	}
	switch {
	case t.TargetDate.IsZero():
		verr.Add("targetDate", "Target date is required")
	case t.TargetDate.Before(DateOf(now)):
		verr.Add("targetDate", "Target date must be today or in the future")
	}
	if t.AssignedUserID == uuid.Nil {
		verr.Add("assignedUserId", "Assigned user is required")
	}

	return verr.Err()
}

// DateOf truncates t to midnight UTC of its UTC calendar day.
func DateOf(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
