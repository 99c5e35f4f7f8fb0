// Package routes registers all HTTP routes for the API.
package routes

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	infrahttp "github.com/anuraagbaishya/paladin/internal/infra/http"
	"github.com/anuraagbaishya/paladin/internal/infra/http/handler"
)

// Router is an alias to the http package's Router interface.
type Router = infrahttp.Router

// Handlers holds all HTTP handlers for route registration.
type Handlers struct {
	Health  *handler.HealthHandler
	Scan    *handler.ScanHandler
	Finding *handler.FindingHandler
	Refresh *handler.RefreshHandler
	Report  *handler.ReportHandler
}

// Register wires all routes into the router.
func Register(router Router, h *Handlers) {
	registerHealthRoutes(router, h.Health)

	router.Group("/api/v1", func(r Router) {
		r.POST("/scans", h.Scan.SubmitScan)
		r.GET("/scans", h.Scan.List)
		r.GET("/scans/{id}/sarif", h.Scan.GetSarif)
		r.DELETE("/scans/{id}", h.Scan.Delete)

		r.POST("/scans/{id}/findings/{fingerprint}/suppress", h.Finding.Suppress)
		r.POST("/scans/{id}/findings/{fingerprint}/unsuppress", h.Finding.Unsuppress)
		r.POST("/scans/{id}/findings/{fingerprint}/review", h.Finding.Review)

		r.GET("/jobs/{id}", h.Scan.GetJob)

		r.POST("/refresh", h.Refresh.Submit)

		r.GET("/reports", h.Report.List)
	})
}

// registerHealthRoutes registers health check and metrics endpoints.
func registerHealthRoutes(router Router, h *handler.HealthHandler) {
	router.GET("/healthz", h.Health)
	router.GET("/readyz", h.Ready)
	router.GET("/metrics", func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	})
}
