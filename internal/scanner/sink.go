package scanner

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/anuraagbaishya/paladin/pkg/sarif"
)

// WriteDocument persists a normalized SARIF document under dir, named after
// the repository and a timestamp. Used for offline inspection when the
// write-sarif-to-file setting is on.
func WriteDocument(dir, repo string, doc *sarif.Log) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create sarif dir: %w", err)
	}

	name := fmt.Sprintf("%s-%s.sarif",
		unsafeNameChars.ReplaceAllString(strings.ReplaceAll(repo, "/", "_"), "_"),
		time.Now().UTC().Format("20060102T150405Z"),
	)
	path := filepath.Join(dir, name)

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal sarif document: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write sarif file: %w", err)
	}
	return path, nil
}
