package app

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anuraagbaishya/paladin/internal/infra/llm"
	"github.com/anuraagbaishya/paladin/pkg/domain/scanresult"
	"github.com/anuraagbaishya/paladin/pkg/logger"
	"github.com/anuraagbaishya/paladin/pkg/sarif"
)

func storedScan(t *testing.T, repo *mockScanResultRepository, workspace string) *scanresult.ScanResult {
	t.Helper()
	doc := &sarif.Log{
		Version: "2.1.0",
		Runs: []sarif.Run{
			{
				Tool: sarif.Tool{Driver: sarif.ToolComponent{Name: "semgrep"}},
				Results: []sarif.Result{
					{
						RuleID:  "go.hardcoded-secret",
						Message: sarif.Message{Text: "hardcoded credential"},
						Locations: []sarif.Location{
							{
								PhysicalLocation: &sarif.PhysicalLocation{
									ArtifactLocation: &sarif.ArtifactLocation{URI: "main.go"},
									Region: &sarif.Region{
										StartLine: 3,
										Snippet:   &sarif.ArtifactContent{Text: `key := "hunter2"`},
									},
								},
							},
						},
					},
				},
			},
		},
	}
	doc.Runs[0].Results[0].SetFingerprint("abcd1234abcd1234")

	result := scanresult.New("acme/widget", doc, workspace)
	require.NoError(t, repo.Create(context.Background(), result))
	return result
}

func TestSetSuppressedTogglesFlag(t *testing.T) {
	repo := newMockScanResultRepository()
	result := storedScan(t, repo, "")
	svc := NewReviewService(repo, nil, logger.NewNop())

	updated, err := svc.SetSuppressed(context.Background(), result.ID, "abcd1234abcd1234", true)
	require.NoError(t, err)
	assert.True(t, updated.Document.Runs[0].Results[0].Suppressed)

	// Idempotent: suppressing again leaves the document in the same state.
	updated, err = svc.SetSuppressed(context.Background(), result.ID, "abcd1234abcd1234", true)
	require.NoError(t, err)
	assert.True(t, updated.Document.Runs[0].Results[0].Suppressed)

	updated, err = svc.SetSuppressed(context.Background(), result.ID, "abcd1234abcd1234", false)
	require.NoError(t, err)
	assert.False(t, updated.Document.Runs[0].Results[0].Suppressed)
}

func TestSetSuppressedUnknownFingerprintIsNoOp(t *testing.T) {
	repo := newMockScanResultRepository()
	result := storedScan(t, repo, "")
	svc := NewReviewService(repo, nil, logger.NewNop())

	updated, err := svc.SetSuppressed(context.Background(), result.ID, "ffffffffffffffff", true)
	require.NoError(t, err, "unknown fingerprint must not be an error")
	assert.False(t, updated.Document.Runs[0].Results[0].Suppressed)
	assert.Equal(t, result.Version, updated.Version, "document must not be rewritten")
}

func TestSetSuppressedRetriesOnVersionConflict(t *testing.T) {
	repo := newMockScanResultRepository()
	repo.conflictsBeforeSuccess = 2
	result := storedScan(t, repo, "")
	svc := NewReviewService(repo, nil, logger.NewNop())

	updated, err := svc.SetSuppressed(context.Background(), result.ID, "abcd1234abcd1234", true)
	require.NoError(t, err)
	assert.True(t, updated.Document.Runs[0].Results[0].Suppressed)
}

func TestSetSuppressedGivesUpAfterRepeatedConflicts(t *testing.T) {
	repo := newMockScanResultRepository()
	repo.conflictsBeforeSuccess = replaceRetries + 1
	result := storedScan(t, repo, "")
	svc := NewReviewService(repo, nil, logger.NewNop())

	_, err := svc.SetSuppressed(context.Background(), result.ID, "abcd1234abcd1234", true)
	require.Error(t, err)
	assert.True(t, errors.Is(err, scanresult.ErrVersionConflict))
}

func TestReviewAttachesVerdict(t *testing.T) {
	workspace := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(workspace, "main.go"),
		[]byte("package main\n\nkey := \"hunter2\"\n"), 0o644))

	repo := newMockScanResultRepository()
	result := storedScan(t, repo, workspace)
	reviewer := &mockReviewer{result: &llm.ReviewResult{Verdict: true, Reason: "real secret"}}
	svc := NewReviewService(repo, reviewer, logger.NewNop())

	verdict, err := svc.Review(context.Background(), result.ID, "abcd1234abcd1234")
	require.NoError(t, err)
	assert.True(t, verdict.Verdict)

	stored, err := repo.GetByID(context.Background(), result.ID)
	require.NoError(t, err)
	review := stored.Document.Runs[0].Results[0].AIReview
	require.NotNil(t, review)
	assert.Equal(t, "real secret", review.Reason)

	require.Len(t, reviewer.inputs, 1)
	assert.Contains(t, reviewer.inputs[0].FileContent, "hunter2")
}

func TestReviewUnknownFingerprintFails(t *testing.T) {
	repo := newMockScanResultRepository()
	result := storedScan(t, repo, t.TempDir())
	svc := NewReviewService(repo, &mockReviewer{}, logger.NewNop())

	_, err := svc.Review(context.Background(), result.ID, "ffffffffffffffff")
	assert.True(t, errors.Is(err, ErrNoFinding))
}

func TestReviewWithoutReviewerFails(t *testing.T) {
	repo := newMockScanResultRepository()
	result := storedScan(t, repo, t.TempDir())
	svc := NewReviewService(repo, nil, logger.NewNop())

	_, err := svc.Review(context.Background(), result.ID, "abcd1234abcd1234")
	assert.True(t, errors.Is(err, ErrReviewerUnavailable))
}

func TestReviewIncompleteFindingFails(t *testing.T) {
	repo := newMockScanResultRepository()
	result := storedScan(t, repo, t.TempDir())

	// Strip the snippet so the finding no longer carries enough context.
	stored, err := repo.GetByID(context.Background(), result.ID)
	require.NoError(t, err)
	stored.Document.Runs[0].Results[0].Locations[0].PhysicalLocation.Region.Snippet = nil
	require.NoError(t, repo.Replace(context.Background(), stored))

	svc := NewReviewService(repo, &mockReviewer{}, logger.NewNop())
	_, err = svc.Review(context.Background(), result.ID, "abcd1234abcd1234")
	assert.True(t, errors.Is(err, ErrIncompleteFinding))
}

func TestReviewFailureDoesNotMutateDocument(t *testing.T) {
	workspace := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(workspace, "main.go"), []byte("package main\n"), 0o644))

	repo := newMockScanResultRepository()
	result := storedScan(t, repo, workspace)
	reviewer := &mockReviewer{err: llm.ErrNoAnswer}
	svc := NewReviewService(repo, reviewer, logger.NewNop())

	_, err := svc.Review(context.Background(), result.ID, "abcd1234abcd1234")
	require.Error(t, err)
	assert.True(t, errors.Is(err, llm.ErrNoAnswer))

	stored, err := repo.GetByID(context.Background(), result.ID)
	require.NoError(t, err)
	assert.Nil(t, stored.Document.Runs[0].Results[0].AIReview)
	assert.Equal(t, result.Version, stored.Version)
}

func TestReadWorkspaceFileRejectsTraversal(t *testing.T) {
	root := t.TempDir()

	_, err := readWorkspaceFile(root, "../etc/passwd")
	assert.True(t, errors.Is(err, ErrInvalidPath))

	_, err = readWorkspaceFile(root, "/etc/passwd")
	assert.True(t, errors.Is(err, ErrInvalidPath))

	_, err = readWorkspaceFile(root, "sub/../../outside.txt")
	assert.True(t, errors.Is(err, ErrInvalidPath))
}

func TestReadWorkspaceFileRejectsSymlinkEscape(t *testing.T) {
	root := t.TempDir()
	outside := t.TempDir()
	secret := filepath.Join(outside, "secret.txt")
	require.NoError(t, os.WriteFile(secret, []byte("secret"), 0o644))
	require.NoError(t, os.Symlink(secret, filepath.Join(root, "link.txt")))

	_, err := readWorkspaceFile(root, "link.txt")
	assert.True(t, errors.Is(err, ErrInvalidPath))
}

func TestReadWorkspaceFileReadsConfinedFile(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "pkg"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "pkg", "a.go"), []byte("package pkg\n"), 0o644))

	content, err := readWorkspaceFile(root, "pkg/a.go")
	require.NoError(t, err)
	assert.Equal(t, "package pkg\n", content)
}
