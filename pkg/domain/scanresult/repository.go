package scanresult

import (
	"context"

	"github.com/anuraagbaishya/paladin/pkg/domain/shared"
)

// Repository defines the interface for scan result persistence.
type Repository interface {
	Create(ctx context.Context, s *ScanResult) error
	GetByID(ctx context.Context, id shared.ID) (*ScanResult, error)
	// Replace persists the whole document if the stored version still equals
	// s.Version, then increments s.Version. Returns ErrVersionConflict when a
	// concurrent writer got there first.
	Replace(ctx context.Context, s *ScanResult) error
	Delete(ctx context.Context, id shared.ID) (bool, error)
	ListByRepo(ctx context.Context, repo string) ([]Summary, error)
}
