package app

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/anuraagbaishya/paladin/internal/advisory"
	"github.com/anuraagbaishya/paladin/internal/infra/jobs"
	"github.com/anuraagbaishya/paladin/internal/infra/llm"
	"github.com/anuraagbaishya/paladin/internal/infra/redis"
	"github.com/anuraagbaishya/paladin/pkg/domain/job"
	"github.com/anuraagbaishya/paladin/pkg/domain/report"
	"github.com/anuraagbaishya/paladin/pkg/domain/scanresult"
	"github.com/anuraagbaishya/paladin/pkg/domain/shared"
	"github.com/anuraagbaishya/paladin/pkg/sarif"
)

// mockJobRepository is an in-memory job.Repository.
type mockJobRepository struct {
	mu   sync.Mutex
	jobs map[shared.ID]*job.Job
}

func newMockJobRepository() *mockJobRepository {
	return &mockJobRepository{jobs: make(map[shared.ID]*job.Job)}
}

func (m *mockJobRepository) Create(ctx context.Context, j *job.Job) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *j
	m.jobs[j.ID] = &copied
	return nil
}

func (m *mockJobRepository) Update(ctx context.Context, j *job.Job) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.jobs[j.ID]; !ok {
		return job.ErrNotFound
	}
	copied := *j
	m.jobs[j.ID] = &copied
	return nil
}

func (m *mockJobRepository) GetByID(ctx context.Context, id shared.ID) (*job.Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	j, ok := m.jobs[id]
	if !ok {
		return nil, job.ErrNotFound
	}
	copied := *j
	return &copied, nil
}

// mockScanResultRepository is an in-memory scanresult.Repository with the
// same optimistic-version semantics as the Postgres implementation.
type mockScanResultRepository struct {
	mu      sync.Mutex
	results map[shared.ID]*scanresult.ScanResult

	// conflictsBeforeSuccess makes Replace fail with ErrVersionConflict
	// this many times before succeeding.
	conflictsBeforeSuccess int
}

func newMockScanResultRepository() *mockScanResultRepository {
	return &mockScanResultRepository{results: make(map[shared.ID]*scanresult.ScanResult)}
}

// deepCopyResult round-trips the document like the JSONB store does, so a
// caller's mutations never leak into stored state.
func deepCopyResult(s *scanresult.ScanResult) *scanresult.ScanResult {
	copied := *s
	if s.Document != nil {
		data, err := json.Marshal(s.Document)
		if err != nil {
			panic(err)
		}
		var doc sarif.Log
		if err := json.Unmarshal(data, &doc); err != nil {
			panic(err)
		}
		copied.Document = &doc
	}
	return &copied
}

func (m *mockScanResultRepository) Create(ctx context.Context, s *scanresult.ScanResult) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.results[s.ID] = deepCopyResult(s)
	return nil
}

func (m *mockScanResultRepository) GetByID(ctx context.Context, id shared.ID) (*scanresult.ScanResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.results[id]
	if !ok {
		return nil, scanresult.ErrNotFound
	}
	return deepCopyResult(s), nil
}

func (m *mockScanResultRepository) Replace(ctx context.Context, s *scanresult.ScanResult) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.results[s.ID]
	if !ok {
		return scanresult.ErrNotFound
	}
	if m.conflictsBeforeSuccess > 0 {
		m.conflictsBeforeSuccess--
		return scanresult.ErrVersionConflict
	}
	if stored.Version != s.Version {
		return scanresult.ErrVersionConflict
	}
	copied := deepCopyResult(s)
	copied.Version++
	m.results[s.ID] = copied
	s.Version++
	return nil
}

func (m *mockScanResultRepository) Delete(ctx context.Context, id shared.ID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.results[id]; !ok {
		return false, nil
	}
	delete(m.results, id)
	return true, nil
}

func (m *mockScanResultRepository) ListByRepo(ctx context.Context, repo string) ([]scanresult.Summary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	summaries := []scanresult.Summary{}
	for _, s := range m.results {
		if repo != "" && s.Repo != repo {
			continue
		}
		summaries = append(summaries, scanresult.Summary{
			ID:            s.ID,
			Repo:          s.Repo,
			FindingsCount: s.FindingCount(),
			CreatedAt:     s.CreatedAt,
		})
	}
	return summaries, nil
}

// mockReportRepository records upserts keyed on (ghsa, package).
type mockReportRepository struct {
	mu        sync.Mutex
	upserts   []report.VulnReport
	upsertErr error
}

func (m *mockReportRepository) Upsert(ctx context.Context, r *report.VulnReport) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.upsertErr != nil {
		return m.upsertErr
	}
	m.upserts = append(m.upserts, *r)
	return nil
}

func (m *mockReportRepository) GroupByRepoPackage(ctx context.Context) ([]report.Group, error) {
	return nil, nil
}

func (m *mockReportRepository) reports() []report.VulnReport {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]report.VulnReport(nil), m.upserts...)
}

// mockAdvisorySource serves canned advisories and repository metadata.
type mockAdvisorySource struct {
	advisories []advisory.Advisory
	fetchErr   error

	mu            sync.Mutex
	metadata      map[string]*advisory.RepoMetadata
	metadataCalls []string
}

func (m *mockAdvisorySource) FetchAdvisories(ctx context.Context, since time.Time) ([]advisory.Advisory, error) {
	if m.fetchErr != nil {
		return nil, m.fetchErr
	}
	return m.advisories, nil
}

func (m *mockAdvisorySource) RepoMetadata(ctx context.Context, owner, name string) (*advisory.RepoMetadata, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := owner + "/" + name
	m.metadataCalls = append(m.metadataCalls, key)
	if meta, ok := m.metadata[key]; ok {
		return meta, nil
	}
	return nil, errors.New("repository not found")
}

// mockResolver returns fixed candidates per package name.
type mockResolver struct {
	candidates map[string][]advisory.RepoCandidate
}

func (m *mockResolver) Candidates(ctx context.Context, ecosystem, pkg string) ([]advisory.RepoCandidate, error) {
	return m.candidates[pkg], nil
}

// mockQueue records enqueued payloads.
type mockQueue struct {
	mu         sync.Mutex
	scans      []jobs.ScanPayload
	refreshes  []jobs.RefreshPayload
	enqueueErr error
}

func (m *mockQueue) EnqueueScan(ctx context.Context, payload jobs.ScanPayload) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.enqueueErr != nil {
		return m.enqueueErr
	}
	m.scans = append(m.scans, payload)
	return nil
}

func (m *mockQueue) EnqueueRefresh(ctx context.Context, payload jobs.RefreshPayload) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.enqueueErr != nil {
		return m.enqueueErr
	}
	m.refreshes = append(m.refreshes, payload)
	return nil
}

// mockLock mimics the Redis SETNX refresh lock.
type mockLock struct {
	mu     sync.Mutex
	holder string
}

func (m *mockLock) Acquire(ctx context.Context, holder string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.holder != "" {
		return redis.ErrLockHeld
	}
	m.holder = holder
	return nil
}

func (m *mockLock) Release(ctx context.Context, holder string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.holder == holder {
		m.holder = ""
	}
	return nil
}

// mockReviewer returns a fixed verdict or error.
type mockReviewer struct {
	result *llm.ReviewResult
	err    error

	mu     sync.Mutex
	inputs []llm.ReviewInput
}

func (m *mockReviewer) Review(ctx context.Context, in llm.ReviewInput) (*llm.ReviewResult, error) {
	m.mu.Lock()
	m.inputs = append(m.inputs, in)
	m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	return m.result, nil
}
