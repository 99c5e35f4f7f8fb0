package llm

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubProvider struct {
	content string
	err     error
}

func (s *stubProvider) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &CompletionResponse{Content: s.content, Model: "stub"}, nil
}

func (s *stubProvider) Name() string  { return "stub" }
func (s *stubProvider) Model() string { return "stub" }

func TestReviewParsesVerdict(t *testing.T) {
	r := NewFindingReviewer(&stubProvider{
		content: `{"verdict": true, "reason": "user input reaches the query unsanitized"}`,
	})

	got, err := r.Review(context.Background(), ReviewInput{RuleID: "go.sql-injection"})
	require.NoError(t, err)
	assert.True(t, got.Verdict)
	assert.Equal(t, "user input reaches the query unsanitized", got.Reason)
}

func TestReviewStripsCodeFence(t *testing.T) {
	r := NewFindingReviewer(&stubProvider{
		content: "```json\n{\"verdict\": false, \"reason\": \"constant input\"}\n```",
	})

	got, err := r.Review(context.Background(), ReviewInput{RuleID: "go.sql-injection"})
	require.NoError(t, err)
	assert.False(t, got.Verdict)
}

func TestReviewUnparseableContentIsNoAnswer(t *testing.T) {
	r := NewFindingReviewer(&stubProvider{content: "I cannot judge this finding."})

	_, err := r.Review(context.Background(), ReviewInput{RuleID: "go.sql-injection"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNoAnswer))
}

func TestReviewProviderErrorPassesThrough(t *testing.T) {
	r := NewFindingReviewer(&stubProvider{err: ErrRateLimited})

	_, err := r.Review(context.Background(), ReviewInput{RuleID: "go.sql-injection"})
	assert.True(t, errors.Is(err, ErrRateLimited))
}
