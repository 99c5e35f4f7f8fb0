package advisory

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anuraagbaishya/paladin/internal/config"
	"github.com/anuraagbaishya/paladin/pkg/logger"
)

func advisoryJSON(ghsa string, published time.Time) string {
	return fmt.Sprintf(`{
		"ghsaId": %q,
		"summary": "test advisory",
		"severity": "HIGH",
		"identifiers": [{"type": "CVE", "value": "CVE-2026-0001"}],
		"cvssSeverities": {
			"cvssV3": {"score": 7.5, "vectorString": "CVSS:3.1/AV:N"},
			"cvssV4": {"score": 0, "vectorString": ""}
		},
		"cwes": {"nodes": [{"cweId": "CWE-79", "description": "XSS"}]},
		"vulnerabilities": {"nodes": [{"package": {"ecosystem": "NPM", "name": "left-pad"}}]},
		"publishedAt": %q
	}`, ghsa, published.Format(time.RFC3339))
}

func newTestSource(t *testing.T, handler http.HandlerFunc) *GitHubSource {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return NewGitHubSource(config.AdvisoryConfig{
		GitHubToken:       "test-token",
		GraphQLURL:        srv.URL,
		PageSize:          50,
		RequestTimeout:    5 * time.Second,
		RequestsPerSecond: 100,
	}, logger.NewNop())
}

func TestFetchAdvisoriesSinglePage(t *testing.T) {
	now := time.Now().UTC()
	src := newTestSource(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		fmt.Fprintf(w, `{"data": {"securityAdvisories": {
			"pageInfo": {"hasNextPage": false, "endCursor": null},
			"nodes": [%s]
		}}}`, advisoryJSON("GHSA-aaaa", now))
	})

	got, err := src.FetchAdvisories(context.Background(), now.Add(-24*time.Hour))
	require.NoError(t, err)
	require.Len(t, got, 1)

	a := got[0]
	assert.Equal(t, "GHSA-aaaa", a.GhsaID)
	assert.Equal(t, "CVE-2026-0001", a.CVE())
	assert.Equal(t, []Package{{Name: "left-pad", Ecosystem: "NPM"}}, a.Packages)
	assert.Equal(t, 7.5, a.EffectiveCvss().Score)
}

func TestFetchAdvisoriesStopsAtWindowBoundary(t *testing.T) {
	now := time.Now().UTC()
	since := now.Add(-24 * time.Hour)
	var pagesServed int

	src := newTestSource(t, func(w http.ResponseWriter, r *http.Request) {
		pagesServed++
		// In-window advisory followed by one older than the window. The
		// page claims more data but the client must stop here.
		fmt.Fprintf(w, `{"data": {"securityAdvisories": {
			"pageInfo": {"hasNextPage": true, "endCursor": "page2"},
			"nodes": [%s, %s]
		}}}`,
			advisoryJSON("GHSA-new", now),
			advisoryJSON("GHSA-old", since.Add(-time.Hour)),
		)
	})

	got, err := src.FetchAdvisories(context.Background(), since)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "GHSA-new", got[0].GhsaID)
	assert.Equal(t, 1, pagesServed, "pagination must stop at the first out-of-window advisory")
}

func TestFetchAdvisoriesPaginates(t *testing.T) {
	now := time.Now().UTC()
	src := newTestSource(t, func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Variables struct {
				Cursor *string `json:"cursor"`
			} `json:"variables"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		if req.Variables.Cursor == nil {
			fmt.Fprintf(w, `{"data": {"securityAdvisories": {
				"pageInfo": {"hasNextPage": true, "endCursor": "c1"},
				"nodes": [%s]
			}}}`, advisoryJSON("GHSA-one", now))
			return
		}
		assert.Equal(t, "c1", *req.Variables.Cursor)
		fmt.Fprintf(w, `{"data": {"securityAdvisories": {
			"pageInfo": {"hasNextPage": false, "endCursor": null},
			"nodes": [%s]
		}}}`, advisoryJSON("GHSA-two", now))
	})

	got, err := src.FetchAdvisories(context.Background(), now.Add(-24*time.Hour))
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "GHSA-one", got[0].GhsaID)
	assert.Equal(t, "GHSA-two", got[1].GhsaID)
}

func TestFetchAdvisoriesGraphQLError(t *testing.T) {
	src := newTestSource(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"errors": [{"message": "rate limited"}]}`)
	})

	_, err := src.FetchAdvisories(context.Background(), time.Now().Add(-time.Hour))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate limited")
}

func TestRepoMetadata(t *testing.T) {
	src := newTestSource(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"data": {"repository": {"stargazerCount": 123, "forkCount": 45}}}`)
	})

	got, err := src.RepoMetadata(context.Background(), "acme", "widget")
	require.NoError(t, err)
	assert.Equal(t, &RepoMetadata{Repo: "acme/widget", Stars: 123, Forks: 45}, got)
}

func TestRepoMetadataNotFound(t *testing.T) {
	src := newTestSource(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"data": {"repository": null}}`)
	})

	_, err := src.RepoMetadata(context.Background(), "acme", "nope")
	require.Error(t, err)
}

func TestEffectiveCvssPrefersNonzeroV4(t *testing.T) {
	a := Advisory{
		CvssV3: Cvss{Score: 7.5, Vector: "CVSS:3.1/AV:N"},
		CvssV4: Cvss{Score: 8.8, Vector: "CVSS:4.0/AV:N"},
	}
	assert.Equal(t, 8.8, a.EffectiveCvss().Score)

	a.CvssV4 = Cvss{}
	assert.Equal(t, 7.5, a.EffectiveCvss().Score)
}
