package scanner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anuraagbaishya/paladin/internal/config"
	"github.com/anuraagbaishya/paladin/pkg/domain/shared"
	"github.com/anuraagbaishya/paladin/pkg/logger"
)

func newTestExecutor(t *testing.T) *Executor {
	t.Helper()
	e, err := NewExecutor(config.ScannerConfig{
		CloneDir: t.TempDir(),
		RulesDir: "/opt/rules",
	}, logger.NewNop())
	require.NoError(t, err)
	return e
}

func TestWorkspacePathIsJobScoped(t *testing.T) {
	e := newTestExecutor(t)
	jobA := shared.NewID()
	jobB := shared.NewID()

	pathA := e.WorkspacePath("https://github.com/acme/widget", jobA)
	pathB := e.WorkspacePath("https://github.com/acme/widget", jobB)

	assert.NotEqual(t, pathA, pathB, "concurrent scans of one repo must not share a workspace")
	assert.Contains(t, pathA, "acme")
	assert.Contains(t, pathA, "widget-"+jobA.Short())
}

func TestWorkspacePathSanitizesNames(t *testing.T) {
	e := newTestExecutor(t)
	path := e.WorkspacePath("https://github.com/ac..me/wid get", shared.NewID())

	assert.NotContains(t, path, "..")
	assert.NotContains(t, path, " ")
}

func TestRepoName(t *testing.T) {
	assert.Equal(t, "acme/widget", RepoName("https://github.com/acme/widget"))
	assert.Equal(t, "acme/widget", RepoName("https://github.com/acme/widget/"))
	assert.Equal(t, "widget", RepoName("widget"))
}

func TestEmptyDocument(t *testing.T) {
	doc := emptyDocument()

	require.Len(t, doc.Runs, 1)
	assert.Equal(t, "semgrep", doc.Runs[0].Tool.Driver.Name)
	assert.NotNil(t, doc.Runs[0].Results)
	assert.Empty(t, doc.Runs[0].Results)
}
