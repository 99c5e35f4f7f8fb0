package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/anuraagbaishya/paladin/pkg/domain/scanresult"
	"github.com/anuraagbaishya/paladin/pkg/domain/shared"
	"github.com/anuraagbaishya/paladin/pkg/sarif"
)

// ScanResultRepository implements scanresult.Repository using PostgreSQL.
// The SARIF document is stored as a single JSONB column; finding-level
// mutations go through the version-checked Replace.
type ScanResultRepository struct {
	db *DB
}

// NewScanResultRepository creates a new ScanResultRepository.
func NewScanResultRepository(db *DB) *ScanResultRepository {
	return &ScanResultRepository{db: db}
}

// Create persists a new scan result.
func (r *ScanResultRepository) Create(ctx context.Context, s *scanresult.ScanResult) error {
	doc, err := json.Marshal(s.Document)
	if err != nil {
		return fmt.Errorf("failed to marshal document: %w", err)
	}

	query := `
		INSERT INTO scan_results (id, repo, document, workspace_path, version, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err = r.db.ExecContext(ctx, query,
		s.ID, s.Repo, doc, s.WorkspacePath, s.Version, s.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create scan result: %w", err)
	}
	return nil
}

// GetByID retrieves a scan result by its id.
func (r *ScanResultRepository) GetByID(ctx context.Context, id shared.ID) (*scanresult.ScanResult, error) {
	query := `
		SELECT id, repo, document, workspace_path, version, created_at
		FROM scan_results
		WHERE id = $1`

	var s scanresult.ScanResult
	var doc []byte
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&s.ID, &s.Repo, &doc, &s.WorkspacePath, &s.Version, &s.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, scanresult.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get scan result: %w", err)
	}

	var parsed sarif.Log
	if err := json.Unmarshal(doc, &parsed); err != nil {
		return nil, fmt.Errorf("failed to unmarshal document: %w", err)
	}
	s.Document = &parsed
	return &s, nil
}

// Replace writes the whole document back only when the stored version still
// matches, then bumps the in-memory version to the stored one.
func (r *ScanResultRepository) Replace(ctx context.Context, s *scanresult.ScanResult) error {
	doc, err := json.Marshal(s.Document)
	if err != nil {
		return fmt.Errorf("failed to marshal document: %w", err)
	}

	query := `
		UPDATE scan_results
		SET document = $3, version = version + 1
		WHERE id = $1 AND version = $2`

	result, err := r.db.ExecContext(ctx, query, s.ID, s.Version, doc)
	if err != nil {
		return fmt.Errorf("failed to replace scan result: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check replace result: %w", err)
	}
	if rows == 0 {
		// Distinguish a missing row from a stale version.
		var exists bool
		if err := r.db.QueryRowContext(ctx,
			`SELECT EXISTS (SELECT 1 FROM scan_results WHERE id = $1)`, s.ID,
		).Scan(&exists); err != nil {
			return fmt.Errorf("failed to check scan result existence: %w", err)
		}
		if !exists {
			return scanresult.ErrNotFound
		}
		return scanresult.ErrVersionConflict
	}

	s.Version++
	return nil
}

// Delete removes a scan result, reporting whether a row was deleted.
func (r *ScanResultRepository) Delete(ctx context.Context, id shared.ID) (bool, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM scan_results WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete scan result: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to check delete result: %w", err)
	}
	return rows > 0, nil
}

// ListByRepo returns summaries of stored scans, newest first. An empty repo
// filter lists everything.
func (r *ScanResultRepository) ListByRepo(ctx context.Context, repo string) ([]scanresult.Summary, error) {
	query := `
		SELECT id, repo,
		       (SELECT COALESCE(SUM(jsonb_array_length(run->'results')), 0)
		        FROM jsonb_array_elements(document->'runs') AS run),
		       created_at
		FROM scan_results
		WHERE ($1 = '' OR repo = $1)
		ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, repo)
	if err != nil {
		return nil, fmt.Errorf("failed to list scan results: %w", err)
	}
	defer rows.Close()

	summaries := []scanresult.Summary{}
	for rows.Next() {
		var s scanresult.Summary
		if err := rows.Scan(&s.ID, &s.Repo, &s.FindingsCount, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan summary row: %w", err)
		}
		summaries = append(summaries, s)
	}
	return summaries, rows.Err()
}
