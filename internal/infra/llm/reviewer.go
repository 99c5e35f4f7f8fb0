package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

const reviewSystemPrompt = `You are a static-analysis triage assistant. You are given one finding
from a security scan: the rule that fired, the flagged code snippet, the
rule description, and the full content of the file the snippet came from.

Judge whether the finding is a true positive in the context of the whole
file. Respond with a JSON object of exactly this shape:
{"verdict": true|false, "reason": "<one or two sentences>"}

verdict true means the finding is a real issue worth fixing; false means
it is a false positive or not exploitable in this context.`

// ReviewInput is everything the reviewer sees about one finding.
type ReviewInput struct {
	RuleID      string
	Snippet     string
	Description string
	FileContent string
}

// ReviewResult is the reviewer's judgment of a finding.
type ReviewResult struct {
	Verdict bool   `json:"verdict"`
	Reason  string `json:"reason"`
}

// FindingReviewer asks an LLM provider to triage a single finding.
type FindingReviewer struct {
	provider Provider
}

// NewFindingReviewer creates a reviewer backed by the given provider.
func NewFindingReviewer(provider Provider) *FindingReviewer {
	return &FindingReviewer{provider: provider}
}

// Review submits one finding and parses the verdict. A provider response
// without parseable content surfaces as ErrNoAnswer.
func (r *FindingReviewer) Review(ctx context.Context, in ReviewInput) (*ReviewResult, error) {
	prompt := fmt.Sprintf("Rule: %s\n\nDescription: %s\n\nFlagged snippet:\n%s\n\nFull file content:\n%s",
		in.RuleID, in.Description, in.Snippet, in.FileContent)

	resp, err := r.provider.Complete(ctx, CompletionRequest{
		SystemPrompt: reviewSystemPrompt,
		UserPrompt:   prompt,
		JSONMode:     true,
	})
	if err != nil {
		return nil, err
	}

	content := strings.TrimSpace(resp.Content)
	// Some models wrap JSON in a fenced block even in JSON mode.
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	content = strings.TrimSpace(content)

	var result ReviewResult
	if err := json.Unmarshal([]byte(content), &result); err != nil {
		return nil, fmt.Errorf("%w: unparseable verdict: %s", ErrNoAnswer, truncate(content, 200))
	}
	if result.Reason == "" {
		return nil, fmt.Errorf("%w: verdict missing reason", ErrNoAnswer)
	}
	return &result, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
