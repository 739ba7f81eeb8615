package api

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/phrazzld/taskboard-api/internal/api/shared"
	"github.com/phrazzld/taskboard-api/internal/config"
	"github.com/phrazzld/taskboard-api/internal/service"
)

// CommentHandler serves the comment endpoints.
type CommentHandler struct {
	commentService service.CommentService
	pagination     config.PaginationConfig
	logger         *slog.Logger
}

// NewCommentHandler creates a CommentHandler.
func NewCommentHandler(
	commentService service.CommentService,
	pagination config.PaginationConfig,
	logger *slog.Logger,
) *CommentHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &CommentHandler{
		commentService: commentService,
		pagination:     pagination,
		logger:         logger.With("component", "comment_handler"),
	}
}

// CreateComment handles POST /api/comments/create. The author is the caller.
func (h *CommentHandler) CreateComment(w http.ResponseWriter, r *http.Request) {
	var req CommentRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	taskID := uuid.MustParse(req.TaskID)

	comment, err := h.commentService.CreateComment(r.Context(), shared.IdentityFrom(r.Context()), taskID, req.Comment)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusCreated, "Comment created", newCommentResponse(comment))
}

// ListComments handles GET /api/comments/{taskId}/info.
func (h *CommentHandler) ListComments(w http.ResponseWriter, r *http.Request) {
	taskID, err := getPathUUID(r, "taskId")
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}
	page, err := getPageRequest(r, h.pagination)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	comments, err := h.commentService.ListComments(r.Context(), shared.IdentityFrom(r.Context()), taskID, page)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, "Comments retrieved", newPageResponse(comments, newCommentResponse))
}

// GetComment handles GET /api/comments/{commentId}.
func (h *CommentHandler) GetComment(w http.ResponseWriter, r *http.Request) {
	id, err := getPathUUID(r, "commentId")
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}
	comment, err := h.commentService.GetComment(r.Context(), shared.IdentityFrom(r.Context()), id)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, "Comment retrieved", newCommentResponse(comment))
}

// DeleteComment handles DELETE /api/comments/{commentId}/delete.
func (h *CommentHandler) DeleteComment(w http.ResponseWriter, r *http.Request) {
	id, err := getPathUUID(r, "commentId")
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}
	if err := h.commentService.DeleteComment(r.Context(), shared.IdentityFrom(r.Context()), id); err != nil {
		HandleAPIError(w, r, err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, "Comment deleted", nil)
}
