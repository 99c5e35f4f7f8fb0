package app

import (
	"context"

	"github.com/anuraagbaishya/paladin/pkg/domain/report"
	"github.com/anuraagbaishya/paladin/pkg/logger"
)

// CweImporter fetches the weakness taxonomy from its external source.
// Implemented by advisory.CweImporter.
type CweImporter interface {
	Import(ctx context.Context) ([]report.Cwe, error)
}

// CweService seeds and reads the CWE reference table.
type CweService struct {
	repo     report.CweRepository
	importer CweImporter
	log      *logger.Logger
}

// NewCweService creates a CweService.
func NewCweService(repo report.CweRepository, importer CweImporter, log *logger.Logger) *CweService {
	return &CweService{
		repo:     repo,
		importer: importer,
		log:      log.With("component", "cwe_service"),
	}
}

// Seed imports the taxonomy and loads the table. With force false an already
// seeded table is left alone.
func (s *CweService) Seed(ctx context.Context, force bool) (int, error) {
	if !force {
		seeded, err := s.repo.Any(ctx)
		if err != nil {
			return 0, err
		}
		if seeded {
			s.log.Info("cwe table already seeded, skipping")
			return 0, nil
		}
	}

	cwes, err := s.importer.Import(ctx)
	if err != nil {
		return 0, err
	}
	if err := s.repo.Seed(ctx, cwes); err != nil {
		return 0, err
	}

	s.log.Info("cwe table seeded", "count", len(cwes))
	return len(cwes), nil
}
