package handler

import (
	"context"
	"net/http"

	infrahttp "github.com/anuraagbaishya/paladin/internal/infra/http"
	"github.com/anuraagbaishya/paladin/internal/infra/llm"
	"github.com/anuraagbaishya/paladin/pkg/domain/scanresult"
	"github.com/anuraagbaishya/paladin/pkg/apierror"
	"github.com/anuraagbaishya/paladin/pkg/domain/shared"
	"github.com/anuraagbaishya/paladin/pkg/logger"
	"github.com/anuraagbaishya/paladin/pkg/validator"
)

// ReviewService is the finding mutation surface used by the HTTP layer.
type ReviewService interface {
	SetSuppressed(ctx context.Context, scanID shared.ID, fingerprint string, suppressed bool) (*scanresult.ScanResult, error)
	Review(ctx context.Context, scanID shared.ID, fingerprint string) (*llm.ReviewResult, error)
}

// FindingHandler handles per-finding HTTP requests.
type FindingHandler struct {
	service  ReviewService
	validate *validator.Validator
	logger   *logger.Logger
}

// NewFindingHandler creates a new finding handler.
func NewFindingHandler(svc ReviewService, v *validator.Validator, log *logger.Logger) *FindingHandler {
	return &FindingHandler{
		service:  svc,
		validate: v,
		logger:   log,
	}
}

// fingerprintParam validates the fingerprint path parameter.
func (h *FindingHandler) fingerprintParam(w http.ResponseWriter, r *http.Request) (string, bool) {
	fingerprint := infrahttp.PathParam(r, "fingerprint")
	if err := h.validate.Var(fingerprint, "fingerprint"); err != nil {
		apierror.BadRequest("Invalid fingerprint").WriteJSON(w)
		return "", false
	}
	return fingerprint, true
}

// SuppressionResponse reports the suppression state of a finding after the
// mutation was applied.
type SuppressionResponse struct {
	ScanID      string `json:"scan_id"`
	Fingerprint string `json:"fingerprint"`
	Suppressed  bool   `json:"suppressed"`
}

// Suppress handles POST /api/v1/scans/{id}/findings/{fingerprint}/suppress
func (h *FindingHandler) Suppress(w http.ResponseWriter, r *http.Request) {
	h.setSuppressed(w, r, true)
}

// Unsuppress handles POST /api/v1/scans/{id}/findings/{fingerprint}/unsuppress
func (h *FindingHandler) Unsuppress(w http.ResponseWriter, r *http.Request) {
	h.setSuppressed(w, r, false)
}

func (h *FindingHandler) setSuppressed(w http.ResponseWriter, r *http.Request, suppressed bool) {
	id, ok := parseID(w, infrahttp.PathParam(r, "id"))
	if !ok {
		return
	}
	fingerprint, ok := h.fingerprintParam(w, r)
	if !ok {
		return
	}

	result, err := h.service.SetSuppressed(r.Context(), id, fingerprint, suppressed)
	if err != nil {
		respondError(w, err)
		return
	}

	// An unknown fingerprint is a no-op, so report what the stored document
	// says rather than the requested state.
	resp := SuppressionResponse{
		ScanID:      result.ID.String(),
		Fingerprint: fingerprint,
	}
	if finding := result.Document.FindByFingerprint(fingerprint); finding != nil {
		resp.Suppressed = finding.Suppressed
	}

	writeJSON(w, http.StatusOK, resp)
}

// ReviewResponse represents the reviewer verdict for a finding.
type ReviewResponse struct {
	ScanID      string `json:"scan_id"`
	Fingerprint string `json:"fingerprint"`
	Verdict     bool   `json:"verdict"`
	Reason      string `json:"reason"`
}

// Review handles POST /api/v1/scans/{id}/findings/{fingerprint}/review
func (h *FindingHandler) Review(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, infrahttp.PathParam(r, "id"))
	if !ok {
		return
	}
	fingerprint, ok := h.fingerprintParam(w, r)
	if !ok {
		return
	}

	verdict, err := h.service.Review(r.Context(), id, fingerprint)
	if err != nil {
		respondError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, ReviewResponse{
		ScanID:      id.String(),
		Fingerprint: fingerprint,
		Verdict:     verdict.Verdict,
		Reason:      verdict.Reason,
	})
}
