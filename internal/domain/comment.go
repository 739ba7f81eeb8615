package domain

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// MaxCommentLength bounds comment content in runes.
const MaxCommentLength = 300

// Comment is a note left by a user on a task. CreatedAt is set once.
type Comment struct {
	ID        uuid.UUID
	Content   string
	CreatedAt time.Time
	TaskID    uuid.UUID
	AuthorID  uuid.UUID
	Version   int64
}

// NewComment builds a validated comment.
func NewComment(content string, taskID, authorID uuid.UUID, now time.Time) (*Comment, error) {
	c := &Comment{
		ID:        uuid.New(),
		Content:   strings.TrimSpace(content),
		CreatedAt: now.UTC(),
		TaskID:    taskID,
		AuthorID:  authorID,
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Comment) Validate() error {
	verr := NewValidationError()
	switch {
	case c.Content == "":
		verr.Add("content", "Content must not be blank")
	case utf8.RuneCountInString(c.Content) > MaxCommentLength:
		verr.Add("content", "Content must be at most 300 characters")
	}
	if c.TaskID == uuid.Nil {
		verr.Add("taskId", "Task is required")
	}
	if c.AuthorID == uuid.Nil {
		verr.Add("authorId", "Author is required")
	}
	return verr.Err()
}
