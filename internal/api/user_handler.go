package api

import (
	"log/slog"
	"net/http"

	"github.com/phrazzld/taskboard-api/internal/api/shared"
	"github.com/phrazzld/taskboard-api/internal/config"
	"github.com/phrazzld/taskboard-api/internal/domain"
	"github.com/phrazzld/taskboard-api/internal/service"
)

// UserHandler serves the user administration endpoints.
type UserHandler struct {
	userService service.UserService
	pagination  config.PaginationConfig
	logger      *slog.Logger
}

// NewUserHandler creates a UserHandler.
func NewUserHandler(
	userService service.UserService,
	pagination config.PaginationConfig,
	logger *slog.Logger,
) *UserHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &UserHandler{
		userService: userService,
		pagination:  pagination,
		logger:      logger.With("component", "user_handler"),
	}
}

// ListUsers handles GET /api/auth/all-users.
func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	page, err := getPageRequest(r, h.pagination)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}
	users, err := h.userService.ListUsers(r.Context(), shared.IdentityFrom(r.Context()), page)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, "Users retrieved", newPageResponse(users, newUserResponse))
}

// GetUser handles GET /api/auth/{id}/user-info.
func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	id, err := getPathUUID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}
	user, err := h.userService.GetUser(r.Context(), shared.IdentityFrom(r.Context()), id)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, "User retrieved", newUserResponse(user))
}

// UpdateUser handles PUT /api/auth/{id}/user-update.
func (h *UserHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	id, err := getPathUUID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}
	var req UpdateUserRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	user, err := h.userService.UpdateUser(r.Context(), shared.IdentityFrom(r.Context()), id, service.UpdateUserInput{
		Username: req.UserName,
		Email:    req.Email,
	})
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, "User updated", newUserResponse(user))
}

// DeleteUser handles DELETE /api/auth/{id}/user-delete.
func (h *UserHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := getPathUUID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}
	if err := h.userService.DeleteUser(r.Context(), shared.IdentityFrom(r.Context()), id); err != nil {
		HandleAPIError(w, r, err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, "User deleted", nil)
}

// UpdateRoles handles PATCH /api/auth/{id}/user-role-update.
func (h *UserHandler) UpdateRoles(w http.ResponseWriter, r *http.Request) {
	id, err := getPathUUID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}
	var req UpdateRolesRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	roles, err := domain.ParseRoles(req.Roles)
	if err != nil {
		verr := domain.NewValidationError()
		verr.Add("roles", err.Error())
		HandleAPIError(w, r, verr)
		return
	}

	user, err := h.userService.UpdateRoles(r.Context(), shared.IdentityFrom(r.Context()), id, roles)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, "User roles updated", newUserResponse(user))
}
