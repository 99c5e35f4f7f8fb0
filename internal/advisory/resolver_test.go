package advisory

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGoCandidates(t *testing.T) {
	tests := []struct {
		pkg  string
		want []RepoCandidate
	}{
		{
			pkg:  "github.com/acme/widget",
			want: []RepoCandidate{{Owner: "acme", Repo: "widget"}},
		},
		{
			pkg: "github.com/acme/widget/v3",
			// major version segment dropped
			want: []RepoCandidate{{Owner: "acme", Repo: "widget"}},
		},
		{
			pkg: "github.com/acme/widget/pkg/api",
			want: []RepoCandidate{
				{Owner: "acme", Repo: "widget/pkg/api"},
				{Owner: "acme", Repo: "widget"},
			},
		},
		{pkg: "gitlab.com/acme/widget", want: nil},
		{pkg: "github.com/acme", want: nil},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, goCandidates(tt.pkg), "pkg %q", tt.pkg)
	}
}

func TestGoCandidatesVersionLikeSegment(t *testing.T) {
	// "vault" starts with v but is not a version segment
	got := goCandidates("github.com/acme/vault")
	require.Len(t, got, 1)
	assert.Equal(t, "vault", got[0].Repo)
}

func TestCandidateFromURL(t *testing.T) {
	tests := []struct {
		url  string
		want []RepoCandidate
	}{
		{"https://github.com/acme/widget", []RepoCandidate{{Owner: "acme", Repo: "widget"}}},
		{"git+https://github.com/acme/widget.git", []RepoCandidate{{Owner: "acme", Repo: "widget"}}},
		{"https://github.com/acme/widget/", []RepoCandidate{{Owner: "acme", Repo: "widget"}}},
		{"", nil},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, candidateFromURL(tt.url), "url %q", tt.url)
	}
}

func TestPypiCandidatesPrefersSourceCode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/requests/json", r.URL.Path)
		w.Write([]byte(`{"info": {
			"home_page": "https://example.com/docs",
			"project_urls": {"Source Code": "https://github.com/psf/requests"}
		}}`))
	}))
	defer srv.Close()

	r := NewResolver()
	r.pypiBaseURL = srv.URL

	got, err := r.Candidates(context.Background(), "pypi", "requests")
	require.NoError(t, err)
	assert.Equal(t, []RepoCandidate{{Owner: "psf", Repo: "requests"}}, got)
}

func TestPypiCandidatesFallsBackToHomePage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"info": {"home_page": "https://github.com/acme/widget", "project_urls": {}}}`))
	}))
	defer srv.Close()

	r := NewResolver()
	r.pypiBaseURL = srv.URL

	got, err := r.Candidates(context.Background(), "pip", "widget")
	require.NoError(t, err)
	assert.Equal(t, []RepoCandidate{{Owner: "acme", Repo: "widget"}}, got)
}

func TestNpmCandidates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"repository": {"url": "git+https://github.com/acme/left-pad.git"}}`))
	}))
	defer srv.Close()

	r := NewResolver()
	r.npmBaseURL = srv.URL

	got, err := r.Candidates(context.Background(), "npm", "left-pad")
	require.NoError(t, err)
	assert.Equal(t, []RepoCandidate{{Owner: "acme", Repo: "left-pad"}}, got)
}

func TestComposerCandidates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/acme/widget.json", r.URL.Path)
		w.Write([]byte(`{"packages": {"acme/widget": [
			{"source": {"url": "https://github.com/acme/widget.git"}}
		]}}`))
	}))
	defer srv.Close()

	r := NewResolver()
	r.packagistURL = srv.URL

	got, err := r.Candidates(context.Background(), "composer", "acme/widget")
	require.NoError(t, err)
	assert.Equal(t, []RepoCandidate{{Owner: "acme", Repo: "widget"}}, got)
}

func TestCandidatesUnsupportedEcosystem(t *testing.T) {
	r := NewResolver()
	got, err := r.Candidates(context.Background(), "cargo", "serde")
	require.NoError(t, err)
	assert.Nil(t, got)
}
