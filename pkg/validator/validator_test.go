package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scanRequest struct {
	RepoURL string `validate:"required,repo_url"`
}

func TestRepoURL(t *testing.T) {
	v := New()

	tests := []struct {
		name    string
		url     string
		wantErr bool
	}{
		{"https repo", "https://github.com/acme/widget", false},
		{"https with .git suffix", "https://github.com/acme/widget.git", false},
		{"ssh url", "ssh://git@github.com/acme/widget", false},
		{"file url", "file:///tmp/fixtures/repo", false},
		{"empty", "", true},
		{"no path", "https://github.com", true},
		{"bare host", "github.com/acme/widget", true},
		{"ftp scheme", "ftp://github.com/acme/widget", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(scanRequest{RepoURL: tt.url})
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidationErrorsMessage(t *testing.T) {
	v := New()

	err := v.Validate(scanRequest{})
	require.Error(t, err)

	verrs, ok := err.(ValidationErrors)
	require.True(t, ok)
	require.Len(t, verrs, 1)
	assert.Equal(t, "repourl", verrs[0].Field)
	assert.Equal(t, "is required", verrs[0].Message)
}

func TestGhsaID(t *testing.T) {
	v := New()

	assert.NoError(t, v.Var("GHSA-6xv5-86q9-7xr8", "ghsa_id"))
	assert.Error(t, v.Var("GHSA-6xv5-86q9", "ghsa_id"))
	assert.Error(t, v.Var("CVE-2024-12345", "ghsa_id"))
}

func TestEcosystem(t *testing.T) {
	v := New()

	assert.NoError(t, v.Var("go", "ecosystem"))
	assert.NoError(t, v.Var("PyPI", "ecosystem"))
	assert.NoError(t, v.Var("composer", "ecosystem"))
	assert.Error(t, v.Var("cargo", "ecosystem"))
}

func TestFingerprint(t *testing.T) {
	v := New()

	assert.NoError(t, v.Var("abcd1234abcd1234", "fingerprint"))
	assert.Error(t, v.Var("abcd1234", "fingerprint"))
	assert.Error(t, v.Var("ABCD1234ABCD1234", "fingerprint"))
}
