package sarif

// Fingerprint returns the paladin fingerprint of a result, or "" if unset.
func (r *Result) Fingerprint() string {
	if r.Fingerprints == nil {
		return ""
	}
	return r.Fingerprints[FingerprintKey]
}

// SetFingerprint records the paladin fingerprint on a result.
func (r *Result) SetFingerprint(fp string) {
	if r.Fingerprints == nil {
		r.Fingerprints = make(map[string]string, 1)
	}
	r.Fingerprints[FingerprintKey] = fp
}

// SnippetTexts returns the snippet text of every location that carries one,
// in location order.
func (r *Result) SnippetTexts() []string {
	var snippets []string
	for _, loc := range r.Locations {
		if text := loc.SnippetText(); text != "" {
			snippets = append(snippets, text)
		}
	}
	return snippets
}

// SnippetText returns the snippet text of a location, or "" when absent.
func (l *Location) SnippetText() string {
	if l.PhysicalLocation == nil || l.PhysicalLocation.Region == nil || l.PhysicalLocation.Region.Snippet == nil {
		return ""
	}
	return l.PhysicalLocation.Region.Snippet.Text
}

// FilePath returns the artifact URI of a location, or "" when absent.
func (l *Location) FilePath() string {
	if l.PhysicalLocation == nil || l.PhysicalLocation.ArtifactLocation == nil {
		return ""
	}
	return l.PhysicalLocation.ArtifactLocation.URI
}

// FindByFingerprint locates the result carrying the given paladin fingerprint.
// At most one result carries a fingerprint within one log; duplicates indicate
// a fingerprinting bug upstream, so the first match is returned.
func (l *Log) FindByFingerprint(fp string) *Result {
	for i := range l.Runs {
		for j := range l.Runs[i].Results {
			if l.Runs[i].Results[j].Fingerprint() == fp {
				return &l.Runs[i].Results[j]
			}
		}
	}
	return nil
}

// ResultCount returns the total number of results across all runs.
func (l *Log) ResultCount() int {
	count := 0
	for _, run := range l.Runs {
		count += len(run.Results)
	}
	return count
}
