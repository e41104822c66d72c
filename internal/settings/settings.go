// Package settings holds the global application options the processing core
// reads by key.
package settings

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Keys understood by the typed getters.
const (
	KeyWorkColor          = "WorkColor"
	KeyPreviewSize        = "PreviewSize"
	KeyHistogramBins      = "HistogramBins"
	KeyJPEGQuality        = "JPEGQuality"
	KeyStartInInteractive = "StartInInteractive"
	KeyLastOpenDir        = "LastOpenDir"
)

// WorkColor values.
const (
	WorkColorSRGB   = 0
	WorkColorLinear = 1
)

// Settings holds the application configuration
type Settings struct {
	// WorkColor selects the RGB working space: 0 sRGB, 1 linear sRGB.
	WorkColor          int    `yaml:"work_color"`
	PreviewSize        int    `yaml:"preview_size"`
	HistogramBins      int    `yaml:"histogram_bins"`
	JPEGQuality        int    `yaml:"jpeg_quality"`
	StartInInteractive bool   `yaml:"start_in_interactive"`
	LastOpenDir        string `yaml:"last_open_dir,omitempty"`
}

// Default returns the settings used when no file exists.
func Default() *Settings {
	return &Settings{
		WorkColor:     WorkColorSRGB,
		PreviewSize:   1200,
		HistogramBins: 256,
		JPEGQuality:   92,
	}
}

// LoadFromFile reads a YAML settings file. Keys missing from the file keep
// their defaults.
func LoadFromFile(filename string) (*Settings, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read settings file: %w", err)
	}

	s := Default()
	if err := yaml.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("failed to parse settings file: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return s, nil
}

// LoadOrDefault is LoadFromFile, falling back to Default when the file does
// not exist yet.
func LoadOrDefault(filename string) (*Settings, error) {
	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return Default(), nil
	}
	return LoadFromFile(filename)
}

// SaveToFile writes the settings as YAML, creating the directory if needed.
func (s *Settings) SaveToFile(filename string) error {
	if err := os.MkdirAll(filepath.Dir(filename), 0755); err != nil {
		return fmt.Errorf("failed to create settings directory: %w", err)
	}

	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}
	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write settings file: %w", err)
	}
	return nil
}

// Validate checks if the settings are valid
func (s *Settings) Validate() error {
	if s.WorkColor != WorkColorSRGB && s.WorkColor != WorkColorLinear {
		return fmt.Errorf("work_color must be 0 (sRGB) or 1 (linear)")
	}
	if s.PreviewSize < 64 {
		return fmt.Errorf("preview_size must be at least 64")
	}
	if s.HistogramBins < 2 || s.HistogramBins > 4096 {
		return fmt.Errorf("histogram_bins must be between 2 and 4096")
	}
	if s.JPEGQuality < 1 || s.JPEGQuality > 100 {
		return fmt.Errorf("jpeg_quality must be between 1 and 100")
	}
	return nil
}

// GetInt returns an integer option. Unknown keys and keys of another type
// read as 0.
func (s *Settings) GetInt(key string) int {
	switch key {
	case KeyWorkColor:
		return s.WorkColor
	case KeyPreviewSize:
		return s.PreviewSize
	case KeyHistogramBins:
		return s.HistogramBins
	case KeyJPEGQuality:
		return s.JPEGQuality
	case KeyStartInInteractive:
		if s.StartInInteractive {
			return 1
		}
	}
	return 0
}

// GetBool returns a boolean option; integer options read as != 0.
func (s *Settings) GetBool(key string) bool {
	if key == KeyStartInInteractive {
		return s.StartInInteractive
	}
	return s.GetInt(key) != 0
}

// GetString returns a string option, or "" for unknown keys.
func (s *Settings) GetString(key string) string {
	if key == KeyLastOpenDir {
		return s.LastOpenDir
	}
	return ""
}

// DefaultPath returns the default settings file path
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "./settings.yaml"
	}
	return filepath.Join(dir, "raw-photo-editor", "settings.yaml")
}
