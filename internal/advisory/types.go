// Package advisory talks to the GitHub security-advisory API and the
// public package indexes used to resolve a package back to its repository.
package advisory

import "time"

// Package is one vulnerable (name, ecosystem) pair referenced by an advisory.
type Package struct {
	Name      string
	Ecosystem string
}

// Identifier is an external id attached to an advisory (CVE, GHSA).
type Identifier struct {
	Type  string
	Value string
}

// Cwe is a weakness classification carried by an advisory.
type Cwe struct {
	CweID       string
	Description string
}

// Cvss is one CVSS scoring of an advisory.
type Cvss struct {
	Score  float64
	Vector string
}

// Advisory is one GHSA record as fetched from the advisory source.
type Advisory struct {
	GhsaID             string
	Summary            string
	Severity           string
	Identifiers        []Identifier
	Cwes               []Cwe
	Packages           []Package
	SourceCodeLocation string
	CvssV3             Cvss
	CvssV4             Cvss
	PublishedAt        time.Time
}

// CVE returns the advisory's CVE identifier, if any.
func (a *Advisory) CVE() string {
	for _, id := range a.Identifiers {
		if id.Type == "CVE" {
			return id.Value
		}
	}
	return ""
}

// EffectiveCvss picks the score to report: v4 when present and nonzero,
// otherwise v3.
func (a *Advisory) EffectiveCvss() Cvss {
	if a.CvssV4.Score != 0 {
		return a.CvssV4
	}
	return a.CvssV3
}

// RepoMetadata is the popularity data resolved for a package's repository.
type RepoMetadata struct {
	Repo  string
	Stars int
	Forks int
}

// RepoCandidate is one (owner, repo) guess produced by the resolver.
type RepoCandidate struct {
	Owner string
	Repo  string
}

func (c RepoCandidate) String() string {
	return c.Owner + "/" + c.Repo
}
