// Package scanresult provides the persisted scan result document.
package scanresult

import (
	"time"

	"github.com/anuraagbaishya/paladin/pkg/domain/shared"
	"github.com/anuraagbaishya/paladin/pkg/sarif"
)

// ScanResult is a normalized SARIF document produced by one scan of one
// repository. The document is mutated only through whole-document replaces
// guarded by the Version field.
type ScanResult struct {
	ID shared.ID
	// Repo is the "owner/name" identifier of the scanned repository.
	Repo string
	// Document is the normalized SARIF payload.
	Document *sarif.Log
	// WorkspacePath is the retained clone directory, empty when the scan had
	// no findings and the workspace was reclaimed.
	WorkspacePath string
	// Version increments on every replace; replaces carry the version they
	// read and fail on mismatch.
	Version   int64
	CreatedAt time.Time
}

// New creates a scan result for a freshly normalized document.
func New(repo string, doc *sarif.Log, workspacePath string) *ScanResult {
	return &ScanResult{
		ID:            shared.NewID(),
		Repo:          repo,
		Document:      doc,
		WorkspacePath: workspacePath,
		Version:       1,
		CreatedAt:     time.Now().UTC(),
	}
}

// FindingCount returns the number of results in the document.
func (s *ScanResult) FindingCount() int {
	if s.Document == nil {
		return 0
	}
	return s.Document.ResultCount()
}

// Summary is a listing row for a scan result, without the document payload.
type Summary struct {
	ID            shared.ID `json:"id"`
	Repo          string    `json:"repo"`
	FindingsCount int       `json:"findings_count"`
	CreatedAt     time.Time `json:"created_at"`
}
