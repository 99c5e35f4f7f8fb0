package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// loadScannerSettings overlays scanner settings from a YAML file.
// File values replace environment values only for keys present in the file.
func loadScannerSettings(path string, settings *ScannerSettings) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	var overlay ScannerSettings
	if err := yaml.Unmarshal(data, &overlay); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}

	if overlay.ExcludeLangs != nil {
		settings.ExcludeLangs = overlay.ExcludeLangs
	}
	if overlay.ExcludeGlobs != nil {
		settings.ExcludeGlobs = overlay.ExcludeGlobs
	}
	if overlay.SuppressPaths != nil {
		settings.SuppressPaths = overlay.SuppressPaths
	}
	if overlay.SuppressRules != nil {
		settings.SuppressRules = overlay.SuppressRules
	}
	if overlay.WriteSarifToFile {
		settings.WriteSarifToFile = true
	}
	if overlay.SarifWriteDir != "" {
		settings.SarifWriteDir = overlay.SarifWriteDir
	}

	return nil
}
