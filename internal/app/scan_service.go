// Package app contains the application services driving scans, reviews,
// advisory refreshes, and reports.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/anuraagbaishya/paladin/internal/config"
	"github.com/anuraagbaishya/paladin/internal/infra/jobs"
	"github.com/anuraagbaishya/paladin/internal/metrics"
	"github.com/anuraagbaishya/paladin/internal/scanner"
	"github.com/anuraagbaishya/paladin/pkg/domain/job"
	"github.com/anuraagbaishya/paladin/pkg/domain/scanresult"
	"github.com/anuraagbaishya/paladin/pkg/domain/shared"
	"github.com/anuraagbaishya/paladin/pkg/logger"
	"github.com/anuraagbaishya/paladin/pkg/sarif"
)

// ScanQueue enqueues scan tasks for background execution.
type ScanQueue interface {
	EnqueueScan(ctx context.Context, payload jobs.ScanPayload) error
}

// ScanService submits scan jobs and executes them from the worker.
type ScanService struct {
	jobs       job.Repository
	results    scanresult.Repository
	executor   *scanner.Executor
	normalizer *scanner.Normalizer
	queue      ScanQueue
	cfg        config.ScannerConfig
	log        *logger.Logger
}

// NewScanService creates a ScanService.
func NewScanService(
	jobRepo job.Repository,
	resultRepo scanresult.Repository,
	executor *scanner.Executor,
	normalizer *scanner.Normalizer,
	queue ScanQueue,
	cfg config.ScannerConfig,
	log *logger.Logger,
) *ScanService {
	return &ScanService{
		jobs:       jobRepo,
		results:    resultRepo,
		executor:   executor,
		normalizer: normalizer,
		queue:      queue,
		cfg:        cfg,
		log:        log.With("component", "scan_service"),
	}
}

// SubmitScan creates a pending job for the repository and queues it.
func (s *ScanService) SubmitScan(ctx context.Context, repoURL string) (*job.Job, error) {
	j, err := job.New(job.KindScan, repoURL)
	if err != nil {
		return nil, err
	}
	if err := s.jobs.Create(ctx, j); err != nil {
		return nil, fmt.Errorf("failed to persist job: %w", err)
	}

	payload := jobs.ScanPayload{JobID: j.ID.String(), RepoURL: repoURL}
	if err := s.queue.EnqueueScan(ctx, payload); err != nil {
		s.failJob(ctx, j, fmt.Sprintf("failed to queue scan: %v", err))
		return nil, fmt.Errorf("failed to enqueue scan: %w", err)
	}

	s.log.Info("scan submitted", "job_id", j.ID, "repo", repoURL)
	return j, nil
}

// GetJob returns the job with the given id.
func (s *ScanService) GetJob(ctx context.Context, id shared.ID) (*job.Job, error) {
	return s.jobs.GetByID(ctx, id)
}

// ProcessScan runs one scan job end to end: clone, analyze, normalize,
// persist. Pipeline failures end up on the job, not as a task error, so the
// queue never retries them.
func (s *ScanService) ProcessScan(ctx context.Context, jobID shared.ID, repoURL string) error {
	j, err := s.jobs.GetByID(ctx, jobID)
	if err != nil {
		return fmt.Errorf("failed to load job: %w", err)
	}
	if err := j.Start(); err != nil {
		return fmt.Errorf("failed to start job: %w", err)
	}
	if err := s.jobs.Update(ctx, j); err != nil {
		return fmt.Errorf("failed to update job: %w", err)
	}

	metrics.ScansInProgress.Inc()
	defer metrics.ScansInProgress.Dec()
	started := time.Now()

	out, err := s.executor.Run(ctx, repoURL, jobID)
	if err != nil {
		s.log.Error("scan failed", "job_id", jobID, "repo", repoURL, "error", err)
		s.failJob(ctx, j, err.Error())
		metrics.ScansTotal.WithLabelValues("error").Inc()
		return nil
	}

	s.normalizer.Normalize(out.Document)
	findings := out.Document.ResultCount()

	workspace := out.Workspace
	if findings == 0 {
		// Nothing for the review subsystem to read later.
		if err := s.executor.RemoveWorkspace(workspace); err != nil {
			s.log.Warn("failed to remove empty workspace", "workspace", workspace, "error", err)
		}
		workspace = ""
	}

	repo := scanner.RepoName(repoURL)
	result := scanresult.New(repo, out.Document, workspace)
	if err := s.results.Create(ctx, result); err != nil {
		s.log.Error("failed to persist scan result", "job_id", jobID, "error", err)
		s.failJob(ctx, j, fmt.Sprintf("failed to persist scan result: %v", err))
		metrics.ScansTotal.WithLabelValues("error").Inc()
		return nil
	}

	if s.cfg.Settings.WriteSarifToFile {
		if path, err := scanner.WriteDocument(s.cfg.Settings.SarifWriteDir, repo, out.Document); err != nil {
			s.log.Warn("failed to write sarif file", "repo", repo, "error", err)
		} else {
			s.log.Info("sarif written", "path", path)
		}
	}

	if err := j.Complete(); err != nil {
		return fmt.Errorf("failed to complete job: %w", err)
	}
	if err := s.jobs.Update(ctx, j); err != nil {
		return fmt.Errorf("failed to update job: %w", err)
	}

	metrics.ScansTotal.WithLabelValues("done").Inc()
	metrics.ScanDuration.Observe(time.Since(started).Seconds())
	metrics.ScanFindings.Observe(float64(findings))

	s.log.Info("scan completed",
		"job_id", jobID,
		"repo", repo,
		"scan_id", result.ID,
		"findings", findings,
		"duration", time.Since(started),
	)
	return nil
}

// GetResult returns a stored scan result.
func (s *ScanService) GetResult(ctx context.Context, id shared.ID) (*scanresult.ScanResult, error) {
	return s.results.GetByID(ctx, id)
}

// GetSarif returns the normalized SARIF document of a stored scan.
func (s *ScanService) GetSarif(ctx context.Context, id shared.ID) (*sarif.Log, error) {
	result, err := s.results.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return result.Document, nil
}

// ListScans returns summaries of stored scans, optionally filtered by repo.
func (s *ScanService) ListScans(ctx context.Context, repo string) ([]scanresult.Summary, error) {
	return s.results.ListByRepo(ctx, repo)
}

// DeleteScan removes a stored scan and its retained workspace. Returns false
// when the scan does not exist.
func (s *ScanService) DeleteScan(ctx context.Context, id shared.ID) (bool, error) {
	result, err := s.results.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, scanresult.ErrNotFound) {
			return false, nil
		}
		return false, err
	}

	deleted, err := s.results.Delete(ctx, id)
	if err != nil {
		return false, err
	}
	if deleted && result.WorkspacePath != "" {
		if err := s.executor.RemoveWorkspace(result.WorkspacePath); err != nil {
			s.log.Warn("failed to remove workspace", "workspace", result.WorkspacePath, "error", err)
		}
	}
	return deleted, nil
}

func (s *ScanService) failJob(ctx context.Context, j *job.Job, message string) {
	if j.Status == job.StatusPending {
		// The lifecycle never skips running, even for jobs that die on
		// submission.
		_ = j.Start()
	}
	if err := j.Fail(message); err != nil {
		s.log.Error("failed to transition job to error", "job_id", j.ID, "error", err)
		return
	}
	if err := s.jobs.Update(ctx, j); err != nil {
		s.log.Error("failed to persist job failure", "job_id", j.ID, "error", err)
	}
}
