package api

import (
	"errors"
	"math"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/phrazzld/taskboard-api/internal/api/shared"
	"github.com/phrazzld/taskboard-api/internal/config"
	"github.com/phrazzld/taskboard-api/internal/domain"
)

// getPathUUID extracts a UUID path parameter. The returned error is a
// *domain.ValidationError keyed by the parameter name.
func getPathUUID(r *http.Request, paramName string) (uuid.UUID, error) {
	raw := chi.URLParam(r, paramName)
	verr := domain.NewValidationError()
	if raw == "" {
		verr.Add(paramName, "is required")
		return uuid.Nil, verr
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		verr.Add(paramName, "must be a valid UUID")
		return uuid.Nil, verr
	}
	return id, nil
}

// getPageRequest reads the zero-based page and size query parameters,
// applying the configured default and cap.
func getPageRequest(r *http.Request, cfg config.PaginationConfig) (domain.PageRequest, error) {
	verr := domain.NewValidationError()
	page := queryInt(r, "page", 0, verr)
	size := queryInt(r, "size", 0, verr)
	if page < 0 {
		verr.Add("page", "must not be negative")
	}
	if size < 0 {
		verr.Add("size", "must not be negative")
	}
	if err := verr.Err(); err != nil {
		return domain.PageRequest{}, err
	}
	req := domain.NewPageRequest(page, size, cfg.DefaultSize, cfg.MaxSize)
	if req.Page > math.MaxInt/req.Size {
		verr.Add("page", "is too large")
		return domain.PageRequest{}, verr
	}
	return req, nil
}

func queryInt(r *http.Request, name string, def int, verr *domain.ValidationError) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		verr.Add(name, "must be an integer")
		return def
	}
	return n
}

// decodeAndValidate reads a JSON body into req and runs its validate tags.
// On failure it writes the error response and returns false.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, req interface{}) bool {
	if err := shared.DecodeJSON(w, r, req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, MsgInvalidRequest, err)
		return false
	}
	if err := shared.ValidateRequest(req); err != nil {
		fields := shared.ValidationFields(err)
		if fields == nil {
			shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, MsgInvalidRequest, err)
			return false
		}
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, MsgValidationFailed,
			errors.Join(domain.ErrValidation, err),
			shared.WithErrorData(fields))
		return false
	}
	return true
}
