package scanner

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/anuraagbaishya/paladin/internal/config"
	"github.com/anuraagbaishya/paladin/pkg/sarif"
)

// Normalizer rewrites engine output into the canonical form stored and
// served by the API: short rule ids, suppression filtering, and stable
// finding fingerprints.
type Normalizer struct {
	rulePrefix    string
	suppressPaths []string
	suppressRules []string
}

// NewNormalizer builds a normalizer for the given scanner configuration.
// The engine prefixes every rule id with the dot-joined rules directory
// path; that prefix is stripped so rule ids stay stable across deployments.
func NewNormalizer(cfg config.ScannerConfig) *Normalizer {
	return &Normalizer{
		rulePrefix:    RulePrefix(cfg.RulesDir),
		suppressPaths: cfg.Settings.SuppressPaths,
		suppressRules: cfg.Settings.SuppressRules,
	}
}

// RulePrefix converts a rules directory path into the engine's rule id
// prefix: slashes become dots, with no leading separator.
func RulePrefix(rulesDir string) string {
	trimmed := strings.Trim(rulesDir, "/")
	if trimmed == "" {
		return ""
	}
	return strings.ReplaceAll(trimmed, "/", ".") + "."
}

// Normalize rewrites the document in place: every result gets a short rule
// id and a fingerprint, suppressed findings are dropped, and each run's
// declared rules are filtered symmetrically with its results.
func (n *Normalizer) Normalize(doc *sarif.Log) {
	for i := range doc.Runs {
		run := &doc.Runs[i]

		kept := run.Results[:0]
		for j := range run.Results {
			res := &run.Results[j]
			res.RuleID = n.shortRuleID(res.RuleID)
			if n.isSuppressed(res.RuleID) {
				continue
			}
			res.SetFingerprint(Fingerprint(res.RuleID, res.SnippetTexts()))
			kept = append(kept, *res)
		}
		run.Results = kept

		rules := run.Tool.Driver.Rules[:0]
		for j := range run.Tool.Driver.Rules {
			rule := &run.Tool.Driver.Rules[j]
			rule.ID = n.shortRuleID(rule.ID)
			if n.isSuppressed(rule.ID) {
				continue
			}
			rules = append(rules, *rule)
		}
		run.Tool.Driver.Rules = rules
	}
}

func (n *Normalizer) shortRuleID(id string) string {
	return strings.TrimPrefix(id, n.rulePrefix)
}

// isSuppressed reports whether a short rule id is configured away, either by
// an exact rule match or by a path fragment appearing anywhere in the id.
func (n *Normalizer) isSuppressed(shortID string) bool {
	for _, rule := range n.suppressRules {
		if shortID == rule {
			return true
		}
	}
	for _, path := range n.suppressPaths {
		if path != "" && strings.Contains(shortID, path) {
			return true
		}
	}
	return false
}

// Fingerprint derives the stable identifier of a finding from its short rule
// id and the trimmed snippet texts of its locations.
func Fingerprint(ruleID string, snippets []string) string {
	trimmed := make([]string, len(snippets))
	for i, s := range snippets {
		trimmed[i] = strings.TrimSpace(s)
	}
	sum := sha256.Sum256([]byte(ruleID + "|" + strings.Join(trimmed, "|")))
	return hex.EncodeToString(sum[:])[:16]
}
