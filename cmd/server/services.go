package main

import (
	"fmt"
	"time"

	"github.com/anuraagbaishya/paladin/internal/advisory"
	"github.com/anuraagbaishya/paladin/internal/app"
	"github.com/anuraagbaishya/paladin/internal/config"
	"github.com/anuraagbaishya/paladin/internal/infra/http/handler"
	"github.com/anuraagbaishya/paladin/internal/infra/http/routes"
	"github.com/anuraagbaishya/paladin/internal/infra/jobs"
	"github.com/anuraagbaishya/paladin/internal/infra/llm"
	"github.com/anuraagbaishya/paladin/internal/infra/postgres"
	"github.com/anuraagbaishya/paladin/internal/infra/redis"
	"github.com/anuraagbaishya/paladin/internal/scanner"
	"github.com/anuraagbaishya/paladin/pkg/logger"
	"github.com/anuraagbaishya/paladin/pkg/validator"
)

// refreshLockTTL bounds how long a crashed refresh can hold the lock.
const refreshLockTTL = time.Hour

// Services holds all application services.
type Services struct {
	Scan    *app.ScanService
	Review  *app.ReviewService
	Refresh *app.RefreshService
	Report  *app.ReportService
	Cwe     *app.CweService
}

// NewServices wires repositories, infrastructure, and application services.
func NewServices(
	cfg *config.Config,
	db *postgres.DB,
	redisClient *redis.Client,
	jobClient *jobs.Client,
	log *logger.Logger,
) (*Services, error) {
	jobRepo := postgres.NewJobRepository(db)
	resultRepo := postgres.NewScanResultRepository(db)
	reportRepo := postgres.NewVulnReportRepository(db)
	cweRepo := postgres.NewCweRepository(db)

	executor, err := scanner.NewExecutor(cfg.Scanner, log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize scan executor: %w", err)
	}
	normalizer := scanner.NewNormalizer(cfg.Scanner)

	var reviewer app.Reviewer
	if cfg.Reviewer.IsConfigured() {
		provider, err := llm.NewGeminiProvider(llm.GeminiConfig{
			APIKey:  cfg.Reviewer.GeminiAPIKey,
			Model:   cfg.Reviewer.GeminiModel,
			Timeout: cfg.Reviewer.Timeout,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to initialize reviewer: %w", err)
		}
		reviewer = llm.NewFindingReviewer(provider)
		log.Info("reviewer configured", "model", cfg.Reviewer.GeminiModel)
	} else {
		log.Info("reviewer not configured, review endpoint disabled")
	}

	source := advisory.NewGitHubSource(cfg.Advisory, log)
	resolver := advisory.NewResolver()
	lock := redis.NewRefreshLock(redisClient, refreshLockTTL)

	return &Services{
		Scan: app.NewScanService(
			jobRepo, resultRepo, executor, normalizer, jobClient, cfg.Scanner, log),
		Review: app.NewReviewService(resultRepo, reviewer, log),
		Refresh: app.NewRefreshService(
			jobRepo, reportRepo, source, resolver, jobClient, lock,
			cfg.Advisory.RefreshWorkers, log),
		Report: app.NewReportService(reportRepo, cweRepo, log),
		Cwe:    app.NewCweService(cweRepo, advisory.NewCweImporter(), log),
	}, nil
}

// NewHandlers builds the HTTP handler set for route registration.
func NewHandlers(services *Services, db *postgres.DB, redisClient *redis.Client, log *logger.Logger) *routes.Handlers {
	v := validator.New()
	return &routes.Handlers{
		Health: handler.NewHealthHandler(
			handler.WithDatabase(db),
			handler.WithRedis(redisClient),
		),
		Scan:    handler.NewScanHandler(services.Scan, v, log),
		Finding: handler.NewFindingHandler(services.Review, v, log),
		Refresh: handler.NewRefreshHandler(services.Refresh, v, log),
		Report:  handler.NewReportHandler(services.Report, log),
	}
}
