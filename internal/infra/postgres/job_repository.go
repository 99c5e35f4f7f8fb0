package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/anuraagbaishya/paladin/pkg/domain/job"
	"github.com/anuraagbaishya/paladin/pkg/domain/shared"
)

// JobRepository implements job.Repository using PostgreSQL.
type JobRepository struct {
	db *DB
}

// NewJobRepository creates a new JobRepository.
func NewJobRepository(db *DB) *JobRepository {
	return &JobRepository{db: db}
}

// Create persists a new job.
func (r *JobRepository) Create(ctx context.Context, j *job.Job) error {
	query := `
		INSERT INTO jobs (id, kind, target, status, error, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.db.ExecContext(ctx, query,
		j.ID, j.Kind, j.Target, j.Status, j.Error, j.CreatedAt, j.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create job: %w", err)
	}
	return nil
}

// Update persists job state changes.
func (r *JobRepository) Update(ctx context.Context, j *job.Job) error {
	query := `
		UPDATE jobs
		SET status = $2, error = $3, updated_at = $4
		WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, j.ID, j.Status, j.Error, j.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to update job: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if rows == 0 {
		return job.ErrNotFound
	}
	return nil
}

// GetByID retrieves a job by its id.
func (r *JobRepository) GetByID(ctx context.Context, id shared.ID) (*job.Job, error) {
	query := `
		SELECT id, kind, target, status, error, created_at, updated_at
		FROM jobs
		WHERE id = $1`

	var j job.Job
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&j.ID, &j.Kind, &j.Target, &j.Status, &j.Error, &j.CreatedAt, &j.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, job.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get job: %w", err)
	}
	return &j, nil
}
