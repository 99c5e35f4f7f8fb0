package advisory

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Resolver guesses the GitHub repository behind a package by ecosystem:
// Go module paths are parsed directly, package-index ecosystems are looked
// up through their public metadata endpoints.
type Resolver struct {
	httpClient   *http.Client
	pypiBaseURL  string
	npmBaseURL   string
	packagistURL string
}

// NewResolver creates a resolver using the public package indexes.
func NewResolver() *Resolver {
	return &Resolver{
		httpClient:   &http.Client{Timeout: 10 * time.Second},
		pypiBaseURL:  "https://pypi.org/pypi",
		npmBaseURL:   "https://registry.npmjs.org",
		packagistURL: "https://repo.packagist.org/p2",
	}
}

// Candidates returns an ordered list of (owner, repo) guesses for a package.
// An empty list means the ecosystem is unsupported or no guess could be made;
// that is not an error.
func (r *Resolver) Candidates(ctx context.Context, ecosystem, pkg string) ([]RepoCandidate, error) {
	switch strings.ToLower(ecosystem) {
	case "go":
		return goCandidates(pkg), nil
	case "pip", "pypi":
		return r.pypiCandidates(ctx, pkg)
	case "npm":
		return r.npmCandidates(ctx, pkg)
	case "composer":
		return r.composerCandidates(ctx, pkg)
	default:
		return nil, nil
	}
}

// goCandidates parses a Go module path. A trailing major-version segment is
// dropped, then both the full remaining path and its first segment are
// offered as repo names.
func goCandidates(pkg string) []RepoCandidate {
	const prefix = "github.com/"
	if !strings.HasPrefix(pkg, prefix) {
		return nil
	}
	parts := strings.Split(strings.TrimPrefix(pkg, prefix), "/")

	if last := parts[len(parts)-1]; isMajorVersion(last) {
		parts = parts[:len(parts)-1]
	}
	if len(parts) < 2 {
		return nil
	}

	owner := parts[0]
	full := strings.Join(parts[1:], "/")
	candidates := []RepoCandidate{{Owner: owner, Repo: full}}
	if parts[1] != full {
		candidates = append(candidates, RepoCandidate{Owner: owner, Repo: parts[1]})
	}
	return candidates
}

func isMajorVersion(segment string) bool {
	if len(segment) < 2 || segment[0] != 'v' {
		return false
	}
	for _, c := range segment[1:] {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

func (r *Resolver) pypiCandidates(ctx context.Context, pkg string) ([]RepoCandidate, error) {
	var payload struct {
		Info struct {
			HomePage    string            `json:"home_page"`
			ProjectURLs map[string]string `json:"project_urls"`
		} `json:"info"`
	}
	endpoint := fmt.Sprintf("%s/%s/json", r.pypiBaseURL, url.PathEscape(pkg))
	if err := r.getJSON(ctx, endpoint, &payload); err != nil {
		return nil, err
	}

	repoURL := payload.Info.ProjectURLs["Source Code"]
	if repoURL == "" {
		repoURL = payload.Info.HomePage
	}
	if repoURL == "" {
		repoURL = payload.Info.ProjectURLs["Homepage"]
	}
	return candidateFromURL(repoURL), nil
}

func (r *Resolver) npmCandidates(ctx context.Context, pkg string) ([]RepoCandidate, error) {
	var payload struct {
		Repository struct {
			URL string `json:"url"`
		} `json:"repository"`
		Homepage string `json:"homepage"`
	}
	endpoint := fmt.Sprintf("%s/%s", r.npmBaseURL, pkg)
	if err := r.getJSON(ctx, endpoint, &payload); err != nil {
		return nil, err
	}

	repoURL := payload.Repository.URL
	if repoURL == "" {
		repoURL = payload.Homepage
	}
	return candidateFromURL(repoURL), nil
}

func (r *Resolver) composerCandidates(ctx context.Context, pkg string) ([]RepoCandidate, error) {
	var payload struct {
		Packages map[string][]struct {
			Source struct {
				URL string `json:"url"`
			} `json:"source"`
		} `json:"packages"`
	}
	endpoint := fmt.Sprintf("%s/%s.json", r.packagistURL, pkg)
	if err := r.getJSON(ctx, endpoint, &payload); err != nil {
		return nil, err
	}

	versions := payload.Packages[pkg]
	if len(versions) == 0 {
		return nil, nil
	}
	return candidateFromURL(versions[0].Source.URL), nil
}

// candidateFromURL strips VCS decorations from a repository URL and takes
// the last two path segments as owner and repo.
func candidateFromURL(repoURL string) []RepoCandidate {
	if repoURL == "" {
		return nil
	}
	repoURL = strings.TrimPrefix(repoURL, "git+")
	repoURL = strings.TrimSuffix(repoURL, ".git")
	repoURL = strings.TrimRight(repoURL, "/")

	parts := strings.Split(repoURL, "/")
	if len(parts) < 2 {
		return nil
	}
	return []RepoCandidate{{Owner: parts[len(parts)-2], Repo: parts[len(parts)-1]}}
}

func (r *Resolver) getJSON(ctx context.Context, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d from %s", resp.StatusCode, endpoint)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
