// Package report provides vulnerability report and CWE reference entities.
package report

// Cwe is a weakness-classification entry from the MITRE taxonomy.
// Seeded once, read-only thereafter.
type Cwe struct {
	ID    int    `json:"id"`
	Title string `json:"title"`
}

// VulnReport is one ingested advisory/package pair. Upserts are keyed on
// (Ghsa, Package) so one advisory referencing several packages produces one
// report per package.
type VulnReport struct {
	Package    string   `json:"package"`
	Ecosystem  string   `json:"ecosystem"`
	Repo       string   `json:"repo,omitempty"`
	Title      string   `json:"title"`
	Ghsa       string   `json:"ghsa"`
	Cve        string   `json:"cve,omitempty"`
	Cwe        *Cwe     `json:"cwe,omitempty"`
	Severity   string   `json:"severity,omitempty"`
	CvssScore  *float64 `json:"cvss_score,omitempty"`
	CvssVector string   `json:"cvss_vector,omitempty"`
	Stars      *int     `json:"stars,omitempty"`
	Forks      *int     `json:"forks,omitempty"`
}

// Finding is the per-advisory slice of a grouped report row.
type Finding struct {
	Ghsa       string   `json:"ghsa"`
	Cve        string   `json:"cve,omitempty"`
	Cwe        *Cwe     `json:"cwe,omitempty"`
	Title      string   `json:"title"`
	Severity   string   `json:"severity,omitempty"`
	CvssScore  *float64 `json:"cvss_score,omitempty"`
	CvssVector string   `json:"cvss_vector,omitempty"`
	Stars      *int     `json:"stars,omitempty"`
	Forks      *int     `json:"forks,omitempty"`
}

// Group is a (repo, package) aggregate of findings, sorted by repo.
type Group struct {
	Repo     string    `json:"repo"`
	Package  string    `json:"pkg"`
	Findings []Finding `json:"findings"`
}
