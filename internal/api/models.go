package api

import (
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/taskboard-api/internal/domain"
)

// DateLayout is the wire format of task target dates.
const DateLayout = "2006-01-02"

// RegisterRequest defines the payload for the user registration endpoint.
type RegisterRequest struct {
	UserName string `json:"userName" validate:"required,max=50"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,max=72"`
}

// LoginRequest defines the payload for the user login endpoint.
type LoginRequest struct {
	UserName string `json:"userName" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// UpdateUserRequest defines the payload for the user update endpoint.
type UpdateUserRequest struct {
	UserName string `json:"userName" validate:"required,max=50"`
	Email    string `json:"email"    validate:"required,email"`
}

// UpdateRolesRequest replaces a user's roles. Names may carry a ROLE_ prefix.
type UpdateRolesRequest struct {
	Roles []string `json:"roles" validate:"min=1,dive,required"`
}

// TaskRequest defines the payload for creating a task.
type TaskRequest struct {
	Title          string `json:"title"          validate:"required,max=100"`
	Description    string `json:"description"    validate:"max=500"`
	Status         string `json:"status"         validate:"omitempty,oneof=TODO IN_PROGRESS DONE"`
	Priority       string `json:"priority"       validate:"omitempty,oneof=LOW MEDIUM HIGH"`
	TargetDate     string `json:"targetDate"     validate:"required,datetime=2006-01-02"`
	AssignedUserID string `json:"assignedUserId" validate:"required,uuid"`
}

// UpdateTaskRequest carries the full task plus the version the client last read.
type UpdateTaskRequest struct {
	TaskRequest
	Version *int64 `json:"version" validate:"required,gte=0"`
}

// Fields converts a validated request to domain fields.
func (r TaskRequest) Fields() domain.TaskFields {
	// Both parse calls are covered by the validate tags.
	target, _ := time.Parse(DateLayout, r.TargetDate)
	assignee, _ := uuid.Parse(r.AssignedUserID)
	return domain.TaskFields{
		Title:          r.Title,
		Description:    r.Description,
		Status:         domain.Status(r.Status),
		Priority:       domain.Priority(r.Priority),
		TargetDate:     target,
		AssignedUserID: assignee,
	}
}

// CommentRequest defines the payload for creating a comment.
type CommentRequest struct {
	Comment string `json:"comment" validate:"required,max=300"`
	TaskID  string `json:"taskId"  validate:"required,uuid"`
}

// AuthResponse is returned by register and login.
type AuthResponse struct {
	Token    string   `json:"token"`
	UserName string   `json:"userName"`
	Email    string   `json:"email"`
	Roles    []string `json:"roles"`
}

// UserResponse is the public view of a user.
type UserResponse struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
	Email    string    `json:"email"`
	Roles    []string  `json:"roles"`
}

// TaskResponse is the public view of a task.
type TaskResponse struct {
	ID             uuid.UUID  `json:"id"`
	Title          string     `json:"title"`
	Description    string     `json:"description"`
	Status         string     `json:"status"`
	Priority       string     `json:"priority"`
	TargetDate     string     `json:"targetDate"`
	AssignedUserID *uuid.UUID `json:"assignedUserId"`
	Version        int64      `json:"version"`
}

// CommentResponse is the public view of a comment.
type CommentResponse struct {
	ID        uuid.UUID `json:"id"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"createdAt"`
	TaskID    uuid.UUID `json:"taskId"`
	AuthorID  uuid.UUID `json:"authorId"`
}

// PageResponse wraps one page of results.
type PageResponse[T any] struct {
	Content       []T   `json:"content"`
	Page          int   `json:"page"`
	Size          int   `json:"size"`
	TotalElements int64 `json:"totalElements"`
	TotalPages    int   `json:"totalPages"`
}

func newUserResponse(u *domain.User) UserResponse {
	return UserResponse{
		ID:       u.ID,
		Username: u.Username,
		Email:    u.Email,
		Roles:    u.Roles.Strings(),
	}
}

func newTaskResponse(t *domain.Task) TaskResponse {
	resp := TaskResponse{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Status:      string(t.Status),
		Priority:    string(t.Priority),
		TargetDate:  t.TargetDate.Format(DateLayout),
		Version:     t.Version,
	}
	if t.AssignedUserID != uuid.Nil {
		id := t.AssignedUserID
		resp.AssignedUserID = &id
	}
	return resp
}

func newCommentResponse(c *domain.Comment) CommentResponse {
	return CommentResponse{
		ID:        c.ID,
		Comment:   c.Content,
		CreatedAt: c.CreatedAt,
		TaskID:    c.TaskID,
		AuthorID:  c.AuthorID,
	}
}

func newPageResponse[T, U any](p domain.Page[T], fn func(T) U) PageResponse[U] {
	mapped := domain.MapPage(p, fn)
	content := mapped.Items
	if content == nil {
		content = []U{}
	}
	return PageResponse[U]{
		Content:       content,
		Page:          p.Page,
		Size:          p.Size,
		TotalElements: p.Total,
		TotalPages:    p.TotalPages(),
	}
}
