package job

import (
	"context"

	"github.com/anuraagbaishya/paladin/pkg/domain/shared"
)

// Repository defines the interface for job persistence.
type Repository interface {
	Create(ctx context.Context, j *Job) error
	Update(ctx context.Context, j *Job) error
	GetByID(ctx context.Context, id shared.ID) (*Job, error)
}
