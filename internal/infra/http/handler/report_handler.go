package handler

import (
	"context"
	"net/http"

	"github.com/anuraagbaishya/paladin/pkg/domain/report"
	"github.com/anuraagbaishya/paladin/pkg/logger"
)

// ReportService is the vulnerability report surface used by the HTTP layer.
type ReportService interface {
	ListGrouped(ctx context.Context) ([]report.Group, error)
}

// ReportHandler handles vulnerability report HTTP requests.
type ReportHandler struct {
	service ReportService
	logger  *logger.Logger
}

// NewReportHandler creates a new report handler.
func NewReportHandler(svc ReportService, log *logger.Logger) *ReportHandler {
	return &ReportHandler{
		service: svc,
		logger:  log,
	}
}

// List handles GET /api/v1/reports
func (h *ReportHandler) List(w http.ResponseWriter, r *http.Request) {
	groups, err := h.service.ListGrouped(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	if groups == nil {
		groups = []report.Group{}
	}

	writeJSON(w, http.StatusOK, map[string]any{"reports": groups})
}
