// Package handler provides HTTP handlers for the API.
package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/anuraagbaishya/paladin/internal/app"
	"github.com/anuraagbaishya/paladin/internal/infra/llm"
	"github.com/anuraagbaishya/paladin/pkg/apierror"
	"github.com/anuraagbaishya/paladin/pkg/domain/job"
	"github.com/anuraagbaishya/paladin/pkg/domain/scanresult"
	"github.com/anuraagbaishya/paladin/pkg/domain/shared"
)

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// respondError maps application errors to API error responses.
func respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, shared.ErrValidation):
		apierror.BadRequest(err.Error()).WriteJSON(w)
	case errors.Is(err, job.ErrNotFound):
		apierror.NotFound("job").WriteJSON(w)
	case errors.Is(err, scanresult.ErrNotFound):
		apierror.NotFound("scan").WriteJSON(w)
	case errors.Is(err, app.ErrNoFinding):
		apierror.NotFound("finding").WriteJSON(w)
	case errors.Is(err, app.ErrRefreshInProgress):
		apierror.Conflict("A refresh is already running").WriteJSON(w)
	case errors.Is(err, scanresult.ErrVersionConflict):
		apierror.Conflict("Scan was modified concurrently, retry").WriteJSON(w)
	case errors.Is(err, app.ErrIncompleteFinding),
		errors.Is(err, app.ErrInvalidPath),
		errors.Is(err, app.ErrNoWorkspace):
		apierror.UnprocessableEntity(err.Error()).WriteJSON(w)
	case errors.Is(err, app.ErrReviewerUnavailable):
		apierror.ServiceUnavailable("Reviewer is not configured").WriteJSON(w)
	case errors.Is(err, llm.ErrNoAnswer),
		errors.Is(err, llm.ErrRateLimited),
		errors.Is(err, llm.ErrInvalidResponse):
		apierror.BadGateway("Reviewer did not produce a verdict").WriteJSON(w)
	default:
		apierror.InternalError(err).WriteJSON(w)
	}
}

// parseID parses a path parameter as an ID, writing a 400 on failure.
func parseID(w http.ResponseWriter, raw string) (shared.ID, bool) {
	id, err := shared.IDFromString(raw)
	if err != nil {
		apierror.BadRequest("Invalid id").WriteJSON(w)
		return shared.ID{}, false
	}
	return id, true
}
