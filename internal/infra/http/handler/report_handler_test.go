package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anuraagbaishya/paladin/pkg/domain/report"
	"github.com/anuraagbaishya/paladin/pkg/logger"
)

type stubReportService struct {
	groups []report.Group
	err    error
}

func (s *stubReportService) ListGrouped(_ context.Context) ([]report.Group, error) {
	return s.groups, s.err
}

func newReportRouter(svc ReportService) http.Handler {
	h := NewReportHandler(svc, logger.NewNop())
	r := chi.NewRouter()
	r.Get("/reports", h.List)
	return r
}

func TestListReports(t *testing.T) {
	groups := []report.Group{
		{
			Repo:    "acme/widget",
			Package: "widget",
			Findings: []report.Finding{
				{Ghsa: "GHSA-aaaa-bbbb-cccc", Title: "SQL injection", Severity: "HIGH"},
			},
		},
	}
	router := newReportRouter(&stubReportService{groups: groups})

	req := httptest.NewRequest(http.MethodGet, "/reports", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Reports []report.Group `json:"reports"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Reports, 1)
	assert.Equal(t, "acme/widget", resp.Reports[0].Repo)
	require.Len(t, resp.Reports[0].Findings, 1)
	assert.Equal(t, "GHSA-aaaa-bbbb-cccc", resp.Reports[0].Findings[0].Ghsa)
}

func TestListReportsEmpty(t *testing.T) {
	router := newReportRouter(&stubReportService{})

	req := httptest.NewRequest(http.MethodGet, "/reports", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"reports": []}`, rec.Body.String())
}

func TestListReportsError(t *testing.T) {
	router := newReportRouter(&stubReportService{err: errors.New("query failed")})

	req := httptest.NewRequest(http.MethodGet, "/reports", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
