package advisory

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/anuraagbaishya/paladin/internal/config"
	"github.com/anuraagbaishya/paladin/pkg/logger"
)

const advisoriesQuery = `
query($since: DateTime!, $first: Int!, $cursor: String) {
  securityAdvisories(first: $first, publishedSince: $since, after: $cursor, orderBy: {field: PUBLISHED_AT, direction: DESC}) {
    pageInfo {
      hasNextPage
      endCursor
    }
    nodes {
      ghsaId
      summary
      severity
      identifiers { type value }
      cvssSeverities {
        cvssV3 { score vectorString }
        cvssV4 { score vectorString }
      }
      cwes(first: 5) { nodes { cweId description } }
      vulnerabilities(first: 10) { nodes { package { ecosystem name } } }
      publishedAt
    }
  }
}`

const repositoryQuery = `
query($owner: String!, $name: String!) {
  repository(owner: $owner, name: $name) {
    stargazerCount
    forkCount
  }
}`

// GitHubSource fetches security advisories and repository metadata from the
// GitHub GraphQL API. All outbound calls go through a shared rate limiter.
type GitHubSource struct {
	cfg        config.AdvisoryConfig
	httpClient *http.Client
	limiter    *rate.Limiter
	log        *logger.Logger
}

// NewGitHubSource creates an advisory source backed by the GitHub API.
func NewGitHubSource(cfg config.AdvisoryConfig, log *logger.Logger) *GitHubSource {
	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = 5
	}
	return &GitHubSource{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.RequestTimeout},
		limiter:    rate.NewLimiter(rate.Limit(rps), 1),
		log:        log.With("component", "advisory_source"),
	}
}

// FetchAdvisories returns all advisories published since the given time.
// Pages are walked in descending publish order, stopping early at the first
// advisory older than the window.
func (s *GitHubSource) FetchAdvisories(ctx context.Context, since time.Time) ([]Advisory, error) {
	var all []Advisory
	var cursor *string

	for {
		var resp struct {
			SecurityAdvisories struct {
				PageInfo struct {
					HasNextPage bool    `json:"hasNextPage"`
					EndCursor   *string `json:"endCursor"`
				} `json:"pageInfo"`
				Nodes []advisoryNode `json:"nodes"`
			} `json:"securityAdvisories"`
		}

		vars := map[string]any{
			"since":  since.UTC().Format(time.RFC3339),
			"first":  s.cfg.PageSize,
			"cursor": cursor,
		}
		if err := s.query(ctx, advisoriesQuery, vars, &resp); err != nil {
			return nil, fmt.Errorf("failed to fetch advisories: %w", err)
		}

		page := resp.SecurityAdvisories
		for _, node := range page.Nodes {
			if node.PublishedAt.Before(since) {
				s.log.Debug("reached out-of-window advisory, stopping pagination",
					"ghsa", node.GhsaID, "published_at", node.PublishedAt)
				return all, nil
			}
			all = append(all, node.toAdvisory())
		}

		if !page.PageInfo.HasNextPage || page.PageInfo.EndCursor == nil {
			return all, nil
		}
		cursor = page.PageInfo.EndCursor
	}
}

// RepoMetadata returns star and fork counts for one repository, or an error
// when the repository does not exist or is inaccessible.
func (s *GitHubSource) RepoMetadata(ctx context.Context, owner, name string) (*RepoMetadata, error) {
	var resp struct {
		Repository *struct {
			StargazerCount int `json:"stargazerCount"`
			ForkCount      int `json:"forkCount"`
		} `json:"repository"`
	}

	vars := map[string]any{"owner": owner, "name": name}
	if err := s.query(ctx, repositoryQuery, vars, &resp); err != nil {
		return nil, fmt.Errorf("failed to fetch repository %s/%s: %w", owner, name, err)
	}
	if resp.Repository == nil {
		return nil, fmt.Errorf("repository %s/%s not found", owner, name)
	}

	return &RepoMetadata{
		Repo:  owner + "/" + name,
		Stars: resp.Repository.StargazerCount,
		Forks: resp.Repository.ForkCount,
	}, nil
}

func (s *GitHubSource) query(ctx context.Context, query string, vars map[string]any, out any) error {
	if err := s.limiter.Wait(ctx); err != nil {
		return err
	}

	body, err := json.Marshal(map[string]any{"query": query, "variables": vars})
	if err != nil {
		return fmt.Errorf("failed to encode query: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.GraphQLURL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+s.cfg.GitHubToken)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	var envelope struct {
		Data   json.RawMessage `json:"data"`
		Errors []struct {
			Message string `json:"message"`
		} `json:"errors"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	if len(envelope.Errors) > 0 {
		return fmt.Errorf("graphql error: %s", envelope.Errors[0].Message)
	}
	if envelope.Data == nil {
		return fmt.Errorf("empty graphql response")
	}

	return json.Unmarshal(envelope.Data, out)
}

// advisoryNode mirrors the GraphQL advisory shape before conversion to the
// domain Advisory.
type advisoryNode struct {
	GhsaID      string `json:"ghsaId"`
	Summary     string `json:"summary"`
	Severity    string `json:"severity"`
	Identifiers []struct {
		Type  string `json:"type"`
		Value string `json:"value"`
	} `json:"identifiers"`
	CvssSeverities struct {
		CvssV3 struct {
			Score        float64 `json:"score"`
			VectorString string  `json:"vectorString"`
		} `json:"cvssV3"`
		CvssV4 struct {
			Score        float64 `json:"score"`
			VectorString string  `json:"vectorString"`
		} `json:"cvssV4"`
	} `json:"cvssSeverities"`
	Cwes struct {
		Nodes []struct {
			CweID       string `json:"cweId"`
			Description string `json:"description"`
		} `json:"nodes"`
	} `json:"cwes"`
	Vulnerabilities struct {
		Nodes []struct {
			Package struct {
				Ecosystem string `json:"ecosystem"`
				Name      string `json:"name"`
			} `json:"package"`
		} `json:"nodes"`
	} `json:"vulnerabilities"`
	PublishedAt time.Time `json:"publishedAt"`
}

func (n advisoryNode) toAdvisory() Advisory {
	a := Advisory{
		GhsaID:      n.GhsaID,
		Summary:     n.Summary,
		Severity:    n.Severity,
		CvssV3:      Cvss{Score: n.CvssSeverities.CvssV3.Score, Vector: n.CvssSeverities.CvssV3.VectorString},
		CvssV4:      Cvss{Score: n.CvssSeverities.CvssV4.Score, Vector: n.CvssSeverities.CvssV4.VectorString},
		PublishedAt: n.PublishedAt,
	}
	for _, id := range n.Identifiers {
		a.Identifiers = append(a.Identifiers, Identifier{Type: id.Type, Value: id.Value})
	}
	for _, cwe := range n.Cwes.Nodes {
		a.Cwes = append(a.Cwes, Cwe{CweID: cwe.CweID, Description: cwe.Description})
	}
	for _, vuln := range n.Vulnerabilities.Nodes {
		a.Packages = append(a.Packages, Package{
			Name:      vuln.Package.Name,
			Ecosystem: vuln.Package.Ecosystem,
		})
	}
	return a
}
