package sarif

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const minimalLog = `{
	"version": "2.1.0",
	"runs": [
		{
			"tool": {"driver": {"name": "semgrep", "rules": [{"id": "go.sql-injection"}]}},
			"results": [
				{
					"ruleId": "go.sql-injection",
					"message": {"text": "possible SQL injection"},
					"locations": [
						{
							"physicalLocation": {
								"artifactLocation": {"uri": "db/query.go"},
								"region": {
									"startLine": 42,
									"snippet": {"text": "db.Query(q)"}
								}
							}
						}
					]
				}
			]
		}
	]
}`

func TestParse(t *testing.T) {
	log, err := Parse(strings.NewReader(minimalLog))
	require.NoError(t, err)

	require.Len(t, log.Runs, 1)
	assert.Equal(t, "semgrep", log.Runs[0].Tool.Driver.Name)
	require.Len(t, log.Runs[0].Results, 1)

	res := log.Runs[0].Results[0]
	assert.Equal(t, "go.sql-injection", res.RuleID)
	assert.Equal(t, "db/query.go", res.Locations[0].FilePath())
	assert.Equal(t, "db.Query(q)", res.Locations[0].SnippetText())
}

func TestParseBytesInvalidJSON(t *testing.T) {
	_, err := ParseBytes([]byte("not json"))
	assert.True(t, errors.Is(err, ErrInvalidSARIF))
}

func TestParseBytesUnsupportedVersion(t *testing.T) {
	_, err := ParseBytes([]byte(`{"version": "2.0.0", "runs": [{}]}`))
	assert.True(t, errors.Is(err, ErrUnsupportedVersion))
}

func TestParseBytesEmptyRuns(t *testing.T) {
	_, err := ParseBytes([]byte(`{"version": "2.1.0", "runs": []}`))
	assert.True(t, errors.Is(err, ErrEmptyRuns))
}

func TestFingerprintAccessors(t *testing.T) {
	var r Result
	assert.Empty(t, r.Fingerprint())

	r.SetFingerprint("abcd1234abcd1234")
	assert.Equal(t, "abcd1234abcd1234", r.Fingerprint())
	assert.Equal(t, "abcd1234abcd1234", r.Fingerprints[FingerprintKey])
}

func TestFindByFingerprint(t *testing.T) {
	log, err := ParseBytes([]byte(minimalLog))
	require.NoError(t, err)
	log.Runs[0].Results[0].SetFingerprint("abcd1234abcd1234")

	found := log.FindByFingerprint("abcd1234abcd1234")
	require.NotNil(t, found)
	assert.Equal(t, "go.sql-injection", found.RuleID)

	assert.Nil(t, log.FindByFingerprint("ffffffffffffffff"))
}

func TestSnippetTextsSkipsEmptyLocations(t *testing.T) {
	r := Result{
		Locations: []Location{
			{PhysicalLocation: &PhysicalLocation{Region: &Region{Snippet: &ArtifactContent{Text: "a"}}}},
			{PhysicalLocation: &PhysicalLocation{}},
			{PhysicalLocation: &PhysicalLocation{Region: &Region{Snippet: &ArtifactContent{Text: "b"}}}},
		},
	}
	assert.Equal(t, []string{"a", "b"}, r.SnippetTexts())
}

func TestResultCount(t *testing.T) {
	log := &Log{
		Version: "2.1.0",
		Runs: []Run{
			{Results: []Result{{}, {}}},
			{Results: []Result{{}}},
		},
	}
	assert.Equal(t, 3, log.ResultCount())
}
