package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	infrahttp "github.com/anuraagbaishya/paladin/internal/infra/http"
	"github.com/anuraagbaishya/paladin/pkg/apierror"
	"github.com/anuraagbaishya/paladin/pkg/domain/job"
	"github.com/anuraagbaishya/paladin/pkg/domain/scanresult"
	"github.com/anuraagbaishya/paladin/pkg/domain/shared"
	"github.com/anuraagbaishya/paladin/pkg/logger"
	"github.com/anuraagbaishya/paladin/pkg/sarif"
	"github.com/anuraagbaishya/paladin/pkg/validator"
)

// ScanService is the scan lifecycle surface used by the HTTP layer.
type ScanService interface {
	SubmitScan(ctx context.Context, repoURL string) (*job.Job, error)
	GetJob(ctx context.Context, id shared.ID) (*job.Job, error)
	GetSarif(ctx context.Context, id shared.ID) (*sarif.Log, error)
	ListScans(ctx context.Context, repo string) ([]scanresult.Summary, error)
	DeleteScan(ctx context.Context, id shared.ID) (bool, error)
}

// ScanHandler handles scan HTTP requests.
type ScanHandler struct {
	service  ScanService
	validate *validator.Validator
	logger   *logger.Logger
}

// NewScanHandler creates a new scan handler.
func NewScanHandler(svc ScanService, v *validator.Validator, log *logger.Logger) *ScanHandler {
	return &ScanHandler{
		service:  svc,
		validate: v,
		logger:   log,
	}
}

// SubmitScanRequest represents a request to scan a repository.
type SubmitScanRequest struct {
	RepoURL string `json:"repo_url" validate:"required,repo_url"`
}

// JobResponse represents a job in API responses.
type JobResponse struct {
	ID        string `json:"id"`
	Kind      string `json:"kind"`
	Target    string `json:"target"`
	Status    string `json:"status"`
	Error     string `json:"error,omitempty"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

func toJobResponse(j *job.Job) JobResponse {
	return JobResponse{
		ID:        j.ID.String(),
		Kind:      string(j.Kind),
		Target:    j.Target,
		Status:    string(j.Status),
		Error:     j.Error,
		CreatedAt: j.CreatedAt.Format(time.RFC3339),
		UpdatedAt: j.UpdatedAt.Format(time.RFC3339),
	}
}

// SubmitScan handles POST /api/v1/scans
func (h *ScanHandler) SubmitScan(w http.ResponseWriter, r *http.Request) {
	var req SubmitScanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierror.BadRequest("Invalid request body").WriteJSON(w)
		return
	}
	if err := h.validate.Validate(req); err != nil {
		apierror.ValidationFailed("Validation failed", err).WriteJSON(w)
		return
	}

	j, err := h.service.SubmitScan(r.Context(), req.RepoURL)
	if err != nil {
		respondError(w, err)
		return
	}

	writeJSON(w, http.StatusAccepted, toJobResponse(j))
}

// GetJob handles GET /api/v1/jobs/{id}
func (h *ScanHandler) GetJob(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, infrahttp.PathParam(r, "id"))
	if !ok {
		return
	}

	j, err := h.service.GetJob(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toJobResponse(j))
}

// List handles GET /api/v1/scans
func (h *ScanHandler) List(w http.ResponseWriter, r *http.Request) {
	repo := infrahttp.QueryParam(r, "repo")

	scans, err := h.service.ListScans(r.Context(), repo)
	if err != nil {
		respondError(w, err)
		return
	}
	if scans == nil {
		scans = []scanresult.Summary{}
	}

	writeJSON(w, http.StatusOK, map[string]any{"scans": scans})
}

// GetSarif handles GET /api/v1/scans/{id}/sarif
func (h *ScanHandler) GetSarif(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, infrahttp.PathParam(r, "id"))
	if !ok {
		return
	}

	doc, err := h.service.GetSarif(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, doc)
}

// Delete handles DELETE /api/v1/scans/{id}
func (h *ScanHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, infrahttp.PathParam(r, "id"))
	if !ok {
		return
	}

	deleted, err := h.service.DeleteScan(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}
	if !deleted {
		apierror.NotFound("scan").WriteJSON(w)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
