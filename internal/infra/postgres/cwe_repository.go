package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/anuraagbaishya/paladin/pkg/domain/report"
)

// CweRepository implements report.CweRepository using PostgreSQL.
type CweRepository struct {
	db *DB
}

// NewCweRepository creates a new CweRepository.
func NewCweRepository(db *DB) *CweRepository {
	return &CweRepository{db: db}
}

// Seed loads the reference table in one transaction, replacing prior rows.
func (r *CweRepository) Seed(ctx context.Context, cwes []report.Cwe) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM cwes`); err != nil {
		return fmt.Errorf("failed to clear cwe table: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO cwes (id, title) VALUES ($1, $2)`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, cwe := range cwes {
		if _, err := stmt.ExecContext(ctx, cwe.ID, cwe.Title); err != nil {
			return fmt.Errorf("failed to insert cwe %d: %w", cwe.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit seed: %w", err)
	}
	return nil
}

// Any reports whether the table holds any rows.
func (r *CweRepository) Any(ctx context.Context) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM cwes)`).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check cwe table: %w", err)
	}
	return exists, nil
}

// TitleByID returns the title for a CWE id, or "" when the id is unknown.
func (r *CweRepository) TitleByID(ctx context.Context, id int) (string, error) {
	var title string
	err := r.db.QueryRowContext(ctx, `SELECT title FROM cwes WHERE id = $1`, id).Scan(&title)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to look up cwe: %w", err)
	}
	return title, nil
}
