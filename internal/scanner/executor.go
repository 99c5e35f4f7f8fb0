// Package scanner runs the scan execution pipeline: clone, language
// detection, static analysis, and SARIF normalization.
package scanner

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/go-git/go-git/v5"

	"github.com/anuraagbaishya/paladin/internal/config"
	"github.com/anuraagbaishya/paladin/pkg/domain/shared"
	"github.com/anuraagbaishya/paladin/pkg/logger"
	"github.com/anuraagbaishya/paladin/pkg/sarif"
)

var unsafeNameChars = regexp.MustCompile(`[^a-zA-Z0-9_\-]`)

// Executor clones a repository and produces a raw SARIF document from the
// static-analysis engine.
type Executor struct {
	cfg config.ScannerConfig
	log *logger.Logger
}

// NewExecutor creates a scan executor.
func NewExecutor(cfg config.ScannerConfig, log *logger.Logger) (*Executor, error) {
	if err := os.MkdirAll(cfg.CloneDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create clone dir: %w", err)
	}
	return &Executor{
		cfg: cfg,
		log: log.With("component", "scan_executor"),
	}, nil
}

// Output is the raw product of one executor run.
type Output struct {
	// Document is the engine's SARIF output, or an empty document when no
	// rules applied or the engine failed in a recoverable way.
	Document *sarif.Log
	// Workspace is the clone directory of this run.
	Workspace string
}

// Run clones the repository into a job-scoped workspace, detects languages,
// and invokes the analysis engine once with all matching rule directories.
func (e *Executor) Run(ctx context.Context, repoURL string, jobID shared.ID) (*Output, error) {
	workspace := e.WorkspacePath(repoURL, jobID)

	// A stale directory at the same path belongs to a dead run of this job id.
	if _, err := os.Stat(workspace); err == nil {
		if err := os.RemoveAll(workspace); err != nil {
			return nil, fmt.Errorf("failed to remove stale workspace %s: %w", workspace, err)
		}
	}

	e.log.Info("cloning repository", "repo", repoURL, "workspace", workspace)
	if _, err := git.PlainCloneContext(ctx, workspace, false, &git.CloneOptions{
		URL:   repoURL,
		Depth: 1,
	}); err != nil {
		return nil, fmt.Errorf("failed to clone %s: %w", repoURL, err)
	}

	doc, err := e.analyze(ctx, workspace)
	if err != nil {
		return nil, err
	}

	return &Output{Document: doc, Workspace: workspace}, nil
}

// WorkspacePath derives the clone directory for one run: the sanitized last
// two URL path segments, suffixed with a short job id so concurrent scans of
// the same repository never share a workspace.
func (e *Executor) WorkspacePath(repoURL string, jobID shared.ID) string {
	parts := strings.Split(strings.TrimRight(repoURL, "/"), "/")
	owner, name := "unknown", "repo"
	if len(parts) >= 2 {
		owner = unsafeNameChars.ReplaceAllString(parts[len(parts)-2], "_")
		name = unsafeNameChars.ReplaceAllString(parts[len(parts)-1], "_")
	}
	return filepath.Join(e.cfg.CloneDir, owner, fmt.Sprintf("%s-%s", name, jobID.Short()))
}

// RepoName returns the "owner/name" identifier from a repository URL.
func RepoName(repoURL string) string {
	parts := strings.Split(strings.TrimRight(repoURL, "/"), "/")
	if len(parts) < 2 {
		return repoURL
	}
	return parts[len(parts)-2] + "/" + parts[len(parts)-1]
}

// analyze detects languages and runs the engine once with every matching
// rule directory.
func (e *Executor) analyze(ctx context.Context, workspace string) (*sarif.Log, error) {
	languages, err := e.detectLanguages(ctx, workspace)
	if err != nil {
		return nil, err
	}

	var ruleDirs []string
	for _, lang := range languages {
		ruleDir := filepath.Join(e.cfg.RulesDir, strings.ToLower(lang))
		if info, err := os.Stat(ruleDir); err == nil && info.IsDir() {
			ruleDirs = append(ruleDirs, ruleDir)
		}
	}

	if len(ruleDirs) == 0 {
		e.log.Info("no matching rule directories", "workspace", workspace, "languages", languages)
		return emptyDocument(), nil
	}

	args := make([]string, 0, 2*len(ruleDirs)+4)
	for _, dir := range ruleDirs {
		args = append(args, "-f", dir)
	}
	for _, glob := range e.cfg.Settings.ExcludeGlobs {
		args = append(args, "--exclude", glob)
	}
	args = append(args, "--sarif", workspace)

	e.log.Info("running analysis engine", "bin", e.cfg.SemgrepBin, "rule_dirs", len(ruleDirs))

	cmd := exec.CommandContext(ctx, e.cfg.SemgrepBin, args...)
	var stderr strings.Builder
	cmd.Stderr = &stderr
	stdout, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return nil, fmt.Errorf("failed to run analysis engine: %w", err)
		}
		// Exit code 1 means findings were reported; anything else is a tool
		// failure and yields an empty result.
		if exitErr.ExitCode() != 1 {
			e.log.Error("analysis engine failed",
				"exit_code", exitErr.ExitCode(),
				"stderr", stderr.String(),
			)
			return emptyDocument(), nil
		}
	}

	doc, err := sarif.ParseBytes(stdout)
	if err != nil {
		return nil, fmt.Errorf("failed to parse engine output: %w", err)
	}
	return doc, nil
}

// detectLanguages runs the source-counting tool and drops excluded languages.
func (e *Executor) detectLanguages(ctx context.Context, dir string) ([]string, error) {
	cmd := exec.CommandContext(ctx, e.cfg.SccBin, "-f", "json", dir)
	var stderr strings.Builder
	cmd.Stderr = &stderr
	stdout, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("language detection failed: %w: %s", err, stderr.String())
	}

	var entries []struct {
		Name string `json:"Name"`
	}
	if err := json.Unmarshal(stdout, &entries); err != nil {
		return nil, fmt.Errorf("failed to parse language detection output: %w", err)
	}

	excluded := make(map[string]bool, len(e.cfg.Settings.ExcludeLangs))
	for _, lang := range e.cfg.Settings.ExcludeLangs {
		excluded[lang] = true
	}

	seen := make(map[string]bool)
	var languages []string
	for _, entry := range entries {
		if excluded[entry.Name] || seen[entry.Name] {
			continue
		}
		seen[entry.Name] = true
		languages = append(languages, entry.Name)
	}
	return languages, nil
}

// RemoveWorkspace reclaims a clone directory.
func (e *Executor) RemoveWorkspace(workspace string) error {
	return os.RemoveAll(workspace)
}

// emptyDocument is the zero-finding SARIF document used when the engine did
// not run or failed recoverably.
func emptyDocument() *sarif.Log {
	return &sarif.Log{
		Version: "2.1.0",
		Runs: []sarif.Run{
			{
				Tool:    sarif.Tool{Driver: sarif.ToolComponent{Name: "semgrep"}},
				Results: []sarif.Result{},
			},
		},
	}
}
