package report

import "context"

// Repository defines the interface for vulnerability report persistence.
type Repository interface {
	// Upsert inserts or updates a report keyed on (ghsa, package).
	Upsert(ctx context.Context, r *VulnReport) error
	// GroupByRepoPackage aggregates all reports grouped by (repo, package),
	// ordered by repo.
	GroupByRepoPackage(ctx context.Context) ([]Group, error)
}

// CweRepository defines the interface for the CWE reference table.
type CweRepository interface {
	Seed(ctx context.Context, cwes []Cwe) error
	// Any reports whether the table has been seeded at all.
	Any(ctx context.Context) (bool, error)
	// TitleByID returns the title for a CWE id, or "" when unknown.
	TitleByID(ctx context.Context, id int) (string, error)
}
