package app

import (
	"context"

	"github.com/anuraagbaishya/paladin/pkg/domain/report"
	"github.com/anuraagbaishya/paladin/pkg/logger"
)

// ReportService serves grouped vulnerability reports.
type ReportService struct {
	reports report.Repository
	cwes    report.CweRepository
	log     *logger.Logger
}

// NewReportService creates a ReportService.
func NewReportService(reports report.Repository, cwes report.CweRepository, log *logger.Logger) *ReportService {
	return &ReportService{
		reports: reports,
		cwes:    cwes,
		log:     log.With("component", "report_service"),
	}
}

// ListGrouped returns all vuln reports grouped by (repo, package). CWE
// entries whose advisory carried no title are backfilled from the reference
// table.
func (s *ReportService) ListGrouped(ctx context.Context) ([]report.Group, error) {
	groups, err := s.reports.GroupByRepoPackage(ctx)
	if err != nil {
		return nil, err
	}

	for gi := range groups {
		for fi := range groups[gi].Findings {
			cwe := groups[gi].Findings[fi].Cwe
			if cwe == nil || cwe.Title != "" {
				continue
			}
			title, err := s.cwes.TitleByID(ctx, cwe.ID)
			if err != nil {
				s.log.Warn("cwe title lookup failed", "cwe_id", cwe.ID, "error", err)
				continue
			}
			cwe.Title = title
		}
	}
	return groups, nil
}
