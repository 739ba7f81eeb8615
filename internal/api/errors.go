package api

import (
	"errors"
	"net/http"

	"github.com/phrazzld/taskboard-api/internal/api/shared"
	"github.com/phrazzld/taskboard-api/internal/authz"
	"github.com/phrazzld/taskboard-api/internal/domain"
	"github.com/phrazzld/taskboard-api/internal/service"
	"github.com/phrazzld/taskboard-api/internal/service/auth"
	"github.com/phrazzld/taskboard-api/internal/store"
)

// Messages for errors that carry no message of their own.
const (
	MsgValidationFailed   = "Validation failed"
	MsgInvalidRequest     = "Invalid request format"
	MsgInternal           = "Internal Server Error"
	MsgInvalidCredentials = "Invalid username or password"
	MsgUnauthenticated    = "Authentication required"
	MsgDuplicateIdentity  = "Username or Email already exists"
	MsgVersionConflict    = "Version mismatch: the task was modified by another request. Reload and retry."
)

// MapErrorToStatusCode maps internal errors to appropriate HTTP status codes
// based on the error type. This prevents leaking internal error types or
// messages to clients.
func MapErrorToStatusCode(err error) int {
	var assignee *service.AssigneeNotFoundError
	switch {
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, store.ErrInvalidEntity):
		return http.StatusBadRequest

	case errors.Is(err, auth.ErrInvalidCredentials),
		errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, authz.ErrUnauthenticated):
		return http.StatusUnauthorized

	case errors.Is(err, authz.ErrAccessDenied):
		return http.StatusForbidden

	case errors.As(err, &assignee),
		errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound

	case errors.Is(err, store.ErrVersionConflict),
		errors.Is(err, service.ErrDuplicateIdentity),
		errors.Is(err, store.ErrDuplicate):
		return http.StatusConflict

	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a sanitized, user-friendly error message
// based on the error type. This prevents leaking sensitive internal details.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return MsgInternal
	}

	var (
		assignee *service.AssigneeNotFoundError
		denied   *authz.DeniedError
	)
	switch {
	case errors.Is(err, domain.ErrValidation):
		return MsgValidationFailed
	case errors.Is(err, store.ErrInvalidEntity):
		return "Invalid entity data"

	case errors.Is(err, auth.ErrInvalidCredentials):
		return MsgInvalidCredentials
	case errors.Is(err, auth.ErrInvalidToken):
		return "Invalid token"
	case errors.Is(err, authz.ErrUnauthenticated):
		return MsgUnauthenticated

	case errors.As(err, &denied) && denied.Reason != "":
		return denied.Reason
	case errors.Is(err, authz.ErrAccessDenied):
		return authz.ReasonRoleRequired

	case errors.As(err, &assignee):
		return assignee.Error()
	case errors.Is(err, service.ErrAuthorNotFound):
		return "Author not found"
	case errors.Is(err, store.ErrTaskNotFound):
		return "Task not found"
	case errors.Is(err, store.ErrCommentNotFound):
		return "Comment not found"
	case errors.Is(err, store.ErrUserNotFound):
		return "User not found"
	case errors.Is(err, store.ErrNotFound):
		return "Resource not found"

	case errors.Is(err, store.ErrVersionConflict):
		return MsgVersionConflict
	case errors.Is(err, service.ErrDuplicateIdentity),
		errors.Is(err, store.ErrDuplicate):
		return MsgDuplicateIdentity

	default:
		return MsgInternal
	}
}

// HandleAPIError writes the envelope for err. Validation errors carry their
// field messages as data; everything unexpected is logged in full and
// reported as a bare 500.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error) {
	status := MapErrorToStatusCode(err)
	message := GetSafeErrorMessage(err)

	var opts []shared.ResponseOption
	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		opts = append(opts, shared.WithErrorData(verr.Fields))
	}
	if status == http.StatusForbidden {
		opts = append(opts, shared.WithElevatedLogLevel())
	}

	shared.RespondWithErrorAndLog(w, r, status, message, err, opts...)
}
