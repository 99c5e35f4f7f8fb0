package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/anuraagbaishya/paladin/pkg/domain/report"
)

// VulnReportRepository implements report.Repository using PostgreSQL.
type VulnReportRepository struct {
	db *DB
}

// NewVulnReportRepository creates a new VulnReportRepository.
func NewVulnReportRepository(db *DB) *VulnReportRepository {
	return &VulnReportRepository{db: db}
}

// Upsert inserts or refreshes one report row keyed on (ghsa, package).
func (r *VulnReportRepository) Upsert(ctx context.Context, v *report.VulnReport) error {
	var cweID sql.NullInt32
	var cweTitle sql.NullString
	if v.Cwe != nil {
		cweID = sql.NullInt32{Int32: int32(v.Cwe.ID), Valid: true}
		cweTitle = sql.NullString{String: v.Cwe.Title, Valid: true}
	}

	query := `
		INSERT INTO vuln_reports (
			ghsa, package, ecosystem, repo, title, cve,
			cwe_id, cwe_title, severity, cvss_score, cvss_vector,
			stars, forks, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, now())
		ON CONFLICT (ghsa, package) DO UPDATE SET
			ecosystem   = EXCLUDED.ecosystem,
			repo        = EXCLUDED.repo,
			title       = EXCLUDED.title,
			cve         = EXCLUDED.cve,
			cwe_id      = EXCLUDED.cwe_id,
			cwe_title   = EXCLUDED.cwe_title,
			severity    = EXCLUDED.severity,
			cvss_score  = EXCLUDED.cvss_score,
			cvss_vector = EXCLUDED.cvss_vector,
			stars       = EXCLUDED.stars,
			forks       = EXCLUDED.forks,
			updated_at  = now()`

	_, err := r.db.ExecContext(ctx, query,
		v.Ghsa, v.Package, v.Ecosystem, nullString(v.Repo), v.Title, nullString(v.Cve),
		cweID, cweTitle, nullString(v.Severity), v.CvssScore, nullString(v.CvssVector),
		v.Stars, v.Forks,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert vuln report: %w", err)
	}
	return nil
}

// GroupByRepoPackage aggregates report rows into per-(repo, package) groups
// with the per-advisory details collected as a JSON array.
func (r *VulnReportRepository) GroupByRepoPackage(ctx context.Context) ([]report.Group, error) {
	query := `
		SELECT COALESCE(repo, ''), package,
		       json_agg(json_build_object(
		           'ghsa', ghsa,
		           'cve', cve,
		           'cwe', CASE WHEN cwe_id IS NOT NULL
		                       THEN json_build_object('id', cwe_id, 'title', cwe_title)
		                       END,
		           'title', title,
		           'severity', severity,
		           'cvss_score', cvss_score,
		           'cvss_vector', cvss_vector,
		           'stars', stars,
		           'forks', forks
		       ) ORDER BY ghsa)
		FROM vuln_reports
		GROUP BY repo, package
		ORDER BY repo`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to group vuln reports: %w", err)
	}
	defer rows.Close()

	groups := []report.Group{}
	for rows.Next() {
		var g report.Group
		var findings []byte
		if err := rows.Scan(&g.Repo, &g.Package, &findings); err != nil {
			return nil, fmt.Errorf("failed to scan group row: %w", err)
		}
		if err := json.Unmarshal(findings, &g.Findings); err != nil {
			return nil, fmt.Errorf("failed to unmarshal findings: %w", err)
		}
		groups = append(groups, g)
	}
	return groups, rows.Err()
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
