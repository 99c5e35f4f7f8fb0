package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/anuraagbaishya/paladin/internal/infra/llm"
	"github.com/anuraagbaishya/paladin/internal/metrics"
	"github.com/anuraagbaishya/paladin/pkg/domain/scanresult"
	"github.com/anuraagbaishya/paladin/pkg/domain/shared"
	"github.com/anuraagbaishya/paladin/pkg/logger"
	"github.com/anuraagbaishya/paladin/pkg/sarif"
)

// Review errors surfaced to handlers.
var (
	// ErrNoFinding means no finding in the scan carries the fingerprint.
	ErrNoFinding = errors.New("no finding matches fingerprint")

	// ErrIncompleteFinding means the finding lacks the file path, snippet,
	// or description a review needs.
	ErrIncompleteFinding = errors.New("finding is missing data required for review")

	// ErrInvalidPath means the finding's file path escapes the scan
	// workspace.
	ErrInvalidPath = errors.New("finding file path resolves outside the workspace")

	// ErrReviewerUnavailable means no reviewer is configured.
	ErrReviewerUnavailable = errors.New("reviewer is not configured")

	// ErrNoWorkspace means the scan's workspace is no longer on disk.
	ErrNoWorkspace = errors.New("scan workspace is not retained")
)

// Reviewer judges one finding. Implemented by llm.FindingReviewer.
type Reviewer interface {
	Review(ctx context.Context, in llm.ReviewInput) (*llm.ReviewResult, error)
}

// replaceRetries bounds the read-modify-write loop on version conflicts.
const replaceRetries = 3

// ReviewService mutates individual findings of a persisted scan: suppression
// toggles and AI-assisted review verdicts, keyed by fingerprint.
type ReviewService struct {
	results  scanresult.Repository
	reviewer Reviewer
	log      *logger.Logger
}

// NewReviewService creates a ReviewService. A nil reviewer disables review
// requests; suppression still works.
func NewReviewService(results scanresult.Repository, reviewer Reviewer, log *logger.Logger) *ReviewService {
	return &ReviewService{
		results:  results,
		reviewer: reviewer,
		log:      log.With("component", "review_service"),
	}
}

// SetSuppressed sets the suppressed flag on the finding with the given
// fingerprint and persists the whole document. An unknown fingerprint is a
// no-op returning the unmodified document.
func (s *ReviewService) SetSuppressed(ctx context.Context, scanID shared.ID, fingerprint string, suppressed bool) (*scanresult.ScanResult, error) {
	result, err := s.mutateFinding(ctx, scanID, fingerprint, func(f *sarif.Result) error {
		f.Suppressed = suppressed
		return nil
	})
	if errors.Is(err, ErrNoFinding) {
		// Suppression tolerates unknown fingerprints.
		s.log.Info("suppression no-op, fingerprint not found",
			"scan_id", scanID, "fingerprint", fingerprint)
		return s.results.GetByID(ctx, scanID)
	}
	if err != nil {
		return nil, err
	}

	state := "unsuppressed"
	if suppressed {
		state = "suppressed"
	}
	metrics.SuppressionsTotal.WithLabelValues(state).Inc()
	return result, nil
}

// Review asks the AI reviewer to judge the finding with the given
// fingerprint, attaches the verdict, and persists the document. The stored
// document is only mutated after the reviewer succeeds.
func (s *ReviewService) Review(ctx context.Context, scanID shared.ID, fingerprint string) (*llm.ReviewResult, error) {
	if s.reviewer == nil {
		return nil, ErrReviewerUnavailable
	}

	result, err := s.results.GetByID(ctx, scanID)
	if err != nil {
		return nil, err
	}

	finding := result.Document.FindByFingerprint(fingerprint)
	if finding == nil {
		return nil, ErrNoFinding
	}

	input, err := s.buildReviewInput(result, finding)
	if err != nil {
		return nil, err
	}

	started := time.Now()
	verdict, err := s.reviewer.Review(ctx, *input)
	if err != nil {
		outcome := "error"
		if errors.Is(err, llm.ErrNoAnswer) {
			outcome = "no_answer"
		}
		metrics.ReviewsTotal.WithLabelValues(outcome).Inc()
		return nil, fmt.Errorf("review failed: %w", err)
	}
	metrics.ReviewDuration.Observe(time.Since(started).Seconds())

	_, err = s.mutateFinding(ctx, scanID, fingerprint, func(f *sarif.Result) error {
		f.AIReview = &sarif.AIReview{Verdict: verdict.Verdict, Reason: verdict.Reason}
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.ReviewsTotal.WithLabelValues("done").Inc()
	s.log.Info("finding reviewed",
		"scan_id", scanID,
		"fingerprint", fingerprint,
		"verdict", verdict.Verdict,
	)
	return verdict, nil
}

// buildReviewInput validates the finding carries everything a review needs
// and reads the flagged file from the retained workspace.
func (s *ReviewService) buildReviewInput(result *scanresult.ScanResult, finding *sarif.Result) (*llm.ReviewInput, error) {
	if len(finding.Locations) == 0 {
		return nil, ErrIncompleteFinding
	}
	loc := finding.Locations[0]
	path := loc.FilePath()
	snippet := loc.SnippetText()
	description := finding.Message.Text
	if path == "" || snippet == "" || description == "" {
		return nil, ErrIncompleteFinding
	}

	if result.WorkspacePath == "" {
		return nil, ErrNoWorkspace
	}

	content, err := readWorkspaceFile(result.WorkspacePath, path)
	if err != nil {
		return nil, err
	}

	return &llm.ReviewInput{
		RuleID:      finding.RuleID,
		Snippet:     snippet,
		Description: description,
		FileContent: content,
	}, nil
}

// readWorkspaceFile reads a file confined to the workspace root. Both lexical
// traversal and symlinks pointing outside the root are refused.
func readWorkspaceFile(root, relPath string) (string, error) {
	if filepath.IsAbs(relPath) {
		return "", ErrInvalidPath
	}

	rootAbs, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("failed to resolve workspace root: %w", err)
	}
	candidate := filepath.Join(rootAbs, filepath.FromSlash(relPath))
	if !confined(rootAbs, candidate) {
		return "", ErrInvalidPath
	}

	resolved, err := filepath.EvalSymlinks(candidate)
	if err != nil {
		return "", fmt.Errorf("failed to resolve file path: %w", err)
	}
	resolvedRoot, err := filepath.EvalSymlinks(rootAbs)
	if err != nil {
		return "", fmt.Errorf("failed to resolve workspace root: %w", err)
	}
	if !confined(resolvedRoot, resolved) {
		return "", ErrInvalidPath
	}

	data, err := os.ReadFile(resolved)
	if err != nil {
		return "", fmt.Errorf("failed to read finding file: %w", err)
	}
	return string(data), nil
}

func confined(root, path string) bool {
	return path == root || strings.HasPrefix(path, root+string(filepath.Separator))
}

// mutateFinding applies fn to the matching finding and replaces the stored
// document, retrying on optimistic-version conflicts.
func (s *ReviewService) mutateFinding(ctx context.Context, scanID shared.ID, fingerprint string, fn func(*sarif.Result) error) (*scanresult.ScanResult, error) {
	for attempt := 0; attempt < replaceRetries; attempt++ {
		result, err := s.results.GetByID(ctx, scanID)
		if err != nil {
			return nil, err
		}

		finding := result.Document.FindByFingerprint(fingerprint)
		if finding == nil {
			return nil, ErrNoFinding
		}
		if err := fn(finding); err != nil {
			return nil, err
		}

		err = s.results.Replace(ctx, result)
		if err == nil {
			return result, nil
		}
		if !errors.Is(err, scanresult.ErrVersionConflict) {
			return nil, err
		}
		s.log.Warn("version conflict replacing scan result, retrying",
			"scan_id", scanID, "attempt", attempt+1)
	}
	return nil, fmt.Errorf("failed to persist finding mutation: %w", scanresult.ErrVersionConflict)
}
