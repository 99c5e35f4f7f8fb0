package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/anuraagbaishya/paladin/internal/advisory"
	"github.com/anuraagbaishya/paladin/internal/infra/jobs"
	"github.com/anuraagbaishya/paladin/internal/infra/redis"
	"github.com/anuraagbaishya/paladin/internal/metrics"
	"github.com/anuraagbaishya/paladin/pkg/domain/job"
	"github.com/anuraagbaishya/paladin/pkg/domain/report"
	"github.com/anuraagbaishya/paladin/pkg/domain/shared"
	"github.com/anuraagbaishya/paladin/pkg/logger"
)

// ErrRefreshInProgress means another refresh job currently holds the lock.
var ErrRefreshInProgress = errors.New("a refresh is already running")

// AdvisorySource fetches advisories and repository metadata.
type AdvisorySource interface {
	FetchAdvisories(ctx context.Context, since time.Time) ([]advisory.Advisory, error)
	RepoMetadata(ctx context.Context, owner, name string) (*advisory.RepoMetadata, error)
}

// RepoResolver guesses repository candidates for a package.
type RepoResolver interface {
	Candidates(ctx context.Context, ecosystem, pkg string) ([]advisory.RepoCandidate, error)
}

// RefreshQueue enqueues refresh tasks.
type RefreshQueue interface {
	EnqueueRefresh(ctx context.Context, payload jobs.RefreshPayload) error
}

// RefreshLock serializes refresh runs across instances.
type RefreshLock interface {
	Acquire(ctx context.Context, holder string) error
	Release(ctx context.Context, holder string) error
}

// RefreshService ingests recently published advisories into vuln reports.
type RefreshService struct {
	jobs     job.Repository
	reports  report.Repository
	source   AdvisorySource
	resolver RepoResolver
	queue    RefreshQueue
	lock     RefreshLock
	workers  int
	log      *logger.Logger
}

// NewRefreshService creates a RefreshService. workers bounds the enrichment
// fan-out within one refresh run.
func NewRefreshService(
	jobRepo job.Repository,
	reportRepo report.Repository,
	source AdvisorySource,
	resolver RepoResolver,
	queue RefreshQueue,
	lock RefreshLock,
	workers int,
	log *logger.Logger,
) *RefreshService {
	if workers <= 0 {
		workers = 5
	}
	return &RefreshService{
		jobs:     jobRepo,
		reports:  reportRepo,
		source:   source,
		resolver: resolver,
		queue:    queue,
		lock:     lock,
		workers:  workers,
		log:      log.With("component", "refresh_service"),
	}
}

// SubmitRefresh creates a refresh job for the lookback window and queues it.
// Only one refresh may run at a time; a second submission while one is in
// flight returns ErrRefreshInProgress.
func (s *RefreshService) SubmitRefresh(ctx context.Context, days int) (*job.Job, error) {
	if days <= 0 {
		days = 7
	}

	j, err := job.New(job.KindRefresh, fmt.Sprintf("last %d days", days))
	if err != nil {
		return nil, err
	}

	if err := s.lock.Acquire(ctx, j.ID.String()); err != nil {
		if errors.Is(err, redis.ErrLockHeld) {
			return nil, ErrRefreshInProgress
		}
		return nil, fmt.Errorf("failed to acquire refresh lock: %w", err)
	}

	if err := s.jobs.Create(ctx, j); err != nil {
		s.releaseLock(ctx, j.ID)
		return nil, fmt.Errorf("failed to persist job: %w", err)
	}

	payload := jobs.RefreshPayload{JobID: j.ID.String(), Days: days}
	if err := s.queue.EnqueueRefresh(ctx, payload); err != nil {
		s.releaseLock(ctx, j.ID)
		s.failJob(ctx, j, fmt.Sprintf("failed to queue refresh: %v", err))
		return nil, fmt.Errorf("failed to enqueue refresh: %w", err)
	}

	s.log.Info("refresh submitted", "job_id", j.ID, "days", days)
	return j, nil
}

// ProcessRefresh runs one refresh: fetch advisories in the window, dedup
// packages per advisory, enrich and upsert with a bounded fan-out. Partial
// failures are logged and skipped; only the whole run's completion matters.
func (s *RefreshService) ProcessRefresh(ctx context.Context, jobID shared.ID, days int) error {
	defer s.releaseLock(ctx, jobID)

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

	started := time.Now()
	since := time.Now().UTC().AddDate(0, 0, -days)

	advisories, err := s.source.FetchAdvisories(ctx, since)
	if err != nil {
		// Fetch failure means nothing to ingest, not a broken pipeline.
		s.log.Error("failed to fetch advisories", "job_id", jobID, "error", err)
		s.completeJob(ctx, j)
		metrics.RefreshRunsTotal.WithLabelValues("empty").Inc()
		return nil
	}
	s.log.Info("fetched advisories", "job_id", jobID, "count", len(advisories), "since", since)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)

	for _, adv := range advisories {
		seen := make(map[string]bool, len(adv.Packages))
		for _, pkg := range adv.Packages {
			if seen[pkg.Name] {
				continue
			}
			seen[pkg.Name] = true

			adv, pkg := adv, pkg
			g.Go(func() error {
				if err := s.ingestPackage(gctx, adv, pkg); err != nil {
					s.log.Error("failed to ingest advisory package",
						"ghsa", adv.GhsaID,
						"package", pkg.Name,
						"error", err,
					)
					metrics.RefreshEnrichmentFailures.Inc()
				}
				// Individual failures never cancel sibling work.
				return nil
			})
		}
		metrics.RefreshAdvisoriesIngested.Inc()
	}
	_ = g.Wait()

	s.completeJob(ctx, j)
	metrics.RefreshRunsTotal.WithLabelValues("done").Inc()
	metrics.RefreshDuration.Observe(time.Since(started).Seconds())

	s.log.Info("refresh completed",
		"job_id", jobID,
		"advisories", len(advisories),
		"duration", time.Since(started),
	)
	return nil
}

// ingestPackage builds one VulnReport for an (advisory, package) pair,
// enriching it with repository metadata when a candidate resolves.
func (s *RefreshService) ingestPackage(ctx context.Context, adv advisory.Advisory, pkg advisory.Package) error {
	r := report.VulnReport{
		Package:   pkg.Name,
		Ecosystem: strings.ToLower(pkg.Ecosystem),
		Title:     adv.Summary,
		Ghsa:      adv.GhsaID,
		Cve:       adv.CVE(),
		Severity:  adv.Severity,
	}

	if cvss := adv.EffectiveCvss(); cvss.Score != 0 {
		score := cvss.Score
		r.CvssScore = &score
		r.CvssVector = cvss.Vector
	}
	if len(adv.Cwes) > 0 {
		if cwe := parseCwe(adv.Cwes[0]); cwe != nil {
			r.Cwe = cwe
		}
	}

	if meta := s.resolveRepo(ctx, r.Ecosystem, pkg.Name); meta != nil {
		r.Repo = meta.Repo
		stars, forks := meta.Stars, meta.Forks
		r.Stars = &stars
		r.Forks = &forks
	}

	return s.reports.Upsert(ctx, &r)
}

// resolveRepo tries candidates in order; the first one with resolvable
// metadata wins. No resolution is not an error.
func (s *RefreshService) resolveRepo(ctx context.Context, ecosystem, pkg string) *advisory.RepoMetadata {
	candidates, err := s.resolver.Candidates(ctx, ecosystem, pkg)
	if err != nil {
		s.log.Debug("repo candidate lookup failed", "package", pkg, "error", err)
		return nil
	}
	for _, c := range candidates {
		meta, err := s.source.RepoMetadata(ctx, c.Owner, c.Repo)
		if err != nil {
			s.log.Debug("repo metadata lookup failed", "candidate", c.String(), "error", err)
			continue
		}
		return meta
	}
	return nil
}

// parseCwe converts a "CWE-79" style id into the numeric reference form.
func parseCwe(c advisory.Cwe) *report.Cwe {
	idText := strings.TrimPrefix(c.CweID, "CWE-")
	var id int
	if _, err := fmt.Sscanf(idText, "%d", &id); err != nil {
		return nil
	}
	return &report.Cwe{ID: id, Title: c.Description}
}

func (s *RefreshService) completeJob(ctx context.Context, j *job.Job) {
	if err := j.Complete(); err != nil {
		s.log.Error("failed to transition job to done", "job_id", j.ID, "error", err)
		return
	}
	if err := s.jobs.Update(ctx, j); err != nil {
		s.log.Error("failed to persist job completion", "job_id", j.ID, "error", err)
	}
}

func (s *RefreshService) failJob(ctx context.Context, j *job.Job, message string) {
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

func (s *RefreshService) releaseLock(ctx context.Context, jobID shared.ID) {
	if err := s.lock.Release(ctx, jobID.String()); err != nil {
		s.log.Warn("failed to release refresh lock", "job_id", jobID, "error", err)
	}
}
