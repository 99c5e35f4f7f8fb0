package advisory

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/anuraagbaishya/paladin/pkg/domain/report"
)

const defaultCweZipURL = "https://cwe.mitre.org/data/xml/cwec_latest.xml.zip"

// CweImporter downloads the MITRE weakness catalog and extracts id/title
// pairs for seeding the reference table.
type CweImporter struct {
	httpClient *http.Client
	zipURL     string
}

// NewCweImporter creates an importer against the published MITRE catalog.
func NewCweImporter() *CweImporter {
	return &CweImporter{
		httpClient: &http.Client{Timeout: 2 * time.Minute},
		zipURL:     defaultCweZipURL,
	}
}

// Import fetches the zipped catalog and returns every weakness it defines.
func (i *CweImporter) Import(ctx context.Context) ([]report.Cwe, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, i.zipURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := i.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download cwe catalog: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d downloading cwe catalog", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read cwe catalog: %w", err)
	}

	return ParseCweZip(data)
}

// ParseCweZip extracts weaknesses from a zipped MITRE catalog.
func ParseCweZip(data []byte) ([]report.Cwe, error) {
	archive, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("failed to open cwe archive: %w", err)
	}
	if len(archive.File) == 0 {
		return nil, fmt.Errorf("cwe archive is empty")
	}

	f, err := archive.File[0].Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open cwe catalog file: %w", err)
	}
	defer f.Close()

	return parseCweXML(f)
}

func parseCweXML(r io.Reader) ([]report.Cwe, error) {
	var catalog struct {
		Weaknesses []struct {
			ID   string `xml:"ID,attr"`
			Name string `xml:"Name,attr"`
		} `xml:"Weaknesses>Weakness"`
	}
	if err := xml.NewDecoder(r).Decode(&catalog); err != nil {
		return nil, fmt.Errorf("failed to parse cwe catalog: %w", err)
	}

	cwes := make([]report.Cwe, 0, len(catalog.Weaknesses))
	for _, w := range catalog.Weaknesses {
		id, err := strconv.Atoi(w.ID)
		if err != nil {
			continue
		}
		cwes = append(cwes, report.Cwe{ID: id, Title: w.Name})
	}
	return cwes, nil
}
