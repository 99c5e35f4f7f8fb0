package postgres

import (
	"context"
	"fmt"
)

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS jobs (
		id         UUID PRIMARY KEY,
		kind       TEXT NOT NULL,
		target     TEXT NOT NULL,
		status     TEXT NOT NULL,
		error      TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS scan_results (
		id             UUID PRIMARY KEY,
		repo           TEXT NOT NULL,
		document       JSONB NOT NULL,
		workspace_path TEXT NOT NULL DEFAULT '',
		version        BIGINT NOT NULL DEFAULT 1,
		created_at     TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_scan_results_repo ON scan_results (repo)`,
	`CREATE TABLE IF NOT EXISTS vuln_reports (
		ghsa        TEXT NOT NULL,
		package     TEXT NOT NULL,
		ecosystem   TEXT NOT NULL,
		repo        TEXT,
		title       TEXT NOT NULL,
		cve         TEXT,
		cwe_id      INTEGER,
		cwe_title   TEXT,
		severity    TEXT,
		cvss_score  DOUBLE PRECISION,
		cvss_vector TEXT,
		stars       INTEGER,
		forks       INTEGER,
		updated_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
		PRIMARY KEY (ghsa, package)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_vuln_reports_repo_package ON vuln_reports (repo, package)`,
	`CREATE TABLE IF NOT EXISTS cwes (
		id    INTEGER PRIMARY KEY,
		title TEXT NOT NULL
	)`,
}

// Migrate creates the tables and indexes the repositories depend on.
func (db *DB) Migrate(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema statement: %w", err)
		}
	}
	return nil
}
