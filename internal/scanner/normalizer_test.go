package scanner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anuraagbaishya/paladin/internal/config"
	"github.com/anuraagbaishya/paladin/pkg/sarif"
)

func makeResult(ruleID, snippet string) sarif.Result {
	return sarif.Result{
		RuleID:  ruleID,
		Message: sarif.Message{Text: "finding"},
		Locations: []sarif.Location{
			{
				PhysicalLocation: &sarif.PhysicalLocation{
					ArtifactLocation: &sarif.ArtifactLocation{URI: "main.go"},
					Region: &sarif.Region{
						StartLine: 10,
						Snippet:   &sarif.ArtifactContent{Text: snippet},
					},
				},
			},
		},
	}
}

func TestRulePrefix(t *testing.T) {
	tests := []struct {
		dir  string
		want string
	}{
		{"/opt/paladin/semgrep-rules", "opt.paladin.semgrep-rules."},
		{"rules", "rules."},
		{"/rules/", "rules."},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, RulePrefix(tt.dir), "dir %q", tt.dir)
	}
}

func TestFingerprintDeterministic(t *testing.T) {
	a := Fingerprint("go.lang.sql-injection", []string{"  db.Query(q)  ", "q := input"})
	b := Fingerprint("go.lang.sql-injection", []string{"db.Query(q)", "q := input"})

	assert.Equal(t, a, b, "whitespace trimming must not change the fingerprint")
	assert.Len(t, a, 16)

	c := Fingerprint("go.lang.sql-injection", []string{"db.Query(other)"})
	assert.NotEqual(t, a, c)

	d := Fingerprint("go.lang.other-rule", []string{"db.Query(q)", "q := input"})
	assert.NotEqual(t, a, d)
}

func TestNormalizeStripsPrefixAndFingerprints(t *testing.T) {
	n := NewNormalizer(config.ScannerConfig{RulesDir: "/opt/rules"})

	doc := &sarif.Log{
		Version: "2.1.0",
		Runs: []sarif.Run{
			{
				Tool: sarif.Tool{Driver: sarif.ToolComponent{
					Name:  "semgrep",
					Rules: []sarif.ReportingDescriptor{{ID: "opt.rules.go.hardcoded-secret"}},
				}},
				Results: []sarif.Result{makeResult("opt.rules.go.hardcoded-secret", `key := "hunter2"`)},
			},
		},
	}

	n.Normalize(doc)

	require.Len(t, doc.Runs[0].Results, 1)
	res := doc.Runs[0].Results[0]
	assert.Equal(t, "go.hardcoded-secret", res.RuleID)
	assert.Equal(t, Fingerprint("go.hardcoded-secret", []string{`key := "hunter2"`}), res.Fingerprint())
	assert.Equal(t, "go.hardcoded-secret", doc.Runs[0].Tool.Driver.Rules[0].ID)
}

func TestNormalizeSuppression(t *testing.T) {
	cfg := config.ScannerConfig{
		RulesDir: "/opt/rules",
		Settings: config.ScannerSettings{
			SuppressRules: []string{"go.noisy-rule"},
			SuppressPaths: []string{"generated"},
		},
	}
	n := NewNormalizer(cfg)

	doc := &sarif.Log{
		Version: "2.1.0",
		Runs: []sarif.Run{
			{
				Tool: sarif.Tool{Driver: sarif.ToolComponent{
					Name: "semgrep",
					Rules: []sarif.ReportingDescriptor{
						{ID: "opt.rules.go.noisy-rule"},
						{ID: "opt.rules.go.generated.unused-var"},
						{ID: "opt.rules.go.real-rule"},
					},
				}},
				Results: []sarif.Result{
					makeResult("opt.rules.go.noisy-rule", "x"),
					makeResult("opt.rules.go.generated.unused-var", "y"),
					makeResult("opt.rules.go.real-rule", "z"),
				},
			},
		},
	}

	n.Normalize(doc)

	run := doc.Runs[0]
	require.Len(t, run.Results, 1)
	assert.Equal(t, "go.real-rule", run.Results[0].RuleID)

	require.Len(t, run.Tool.Driver.Rules, 1, "driver rules must be filtered like results")
	assert.Equal(t, "go.real-rule", run.Tool.Driver.Rules[0].ID)
}

func TestNormalizeEmptyRun(t *testing.T) {
	n := NewNormalizer(config.ScannerConfig{RulesDir: "/opt/rules"})
	doc := emptyDocument()

	n.Normalize(doc)

	require.Len(t, doc.Runs, 1)
	assert.Empty(t, doc.Runs[0].Results)
}
