package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/anuraagbaishya/paladin/pkg/apierror"
	"github.com/anuraagbaishya/paladin/pkg/domain/job"
	"github.com/anuraagbaishya/paladin/pkg/logger"
	"github.com/anuraagbaishya/paladin/pkg/validator"
)

// RefreshService is the advisory refresh surface used by the HTTP layer.
type RefreshService interface {
	SubmitRefresh(ctx context.Context, days int) (*job.Job, error)
}

// RefreshHandler handles advisory refresh HTTP requests.
type RefreshHandler struct {
	service  RefreshService
	validate *validator.Validator
	logger   *logger.Logger
}

// NewRefreshHandler creates a new refresh handler.
func NewRefreshHandler(svc RefreshService, v *validator.Validator, log *logger.Logger) *RefreshHandler {
	return &RefreshHandler{
		service:  svc,
		validate: v,
		logger:   log,
	}
}

// SubmitRefreshRequest represents a request to refresh advisories.
// Days defaults to the standard lookback window when omitted.
type SubmitRefreshRequest struct {
	Days int `json:"days" validate:"gte=0,lte=365"`
}

// Submit handles POST /api/v1/refresh
func (h *RefreshHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req SubmitRefreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		apierror.BadRequest("Invalid request body").WriteJSON(w)
		return
	}
	if err := h.validate.Validate(req); err != nil {
		apierror.ValidationFailed("Validation failed", err).WriteJSON(w)
		return
	}

	j, err := h.service.SubmitRefresh(r.Context(), req.Days)
	if err != nil {
		respondError(w, err)
		return
	}

	writeJSON(w, http.StatusAccepted, toJobResponse(j))
}
