package config

import (
	"errors"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the default configuration file name.
const DefaultConfigFile = ".choirscore"

// ErrConfigNotFound is returned when the configuration file does not
// exist. Callers decide how hard to fail based on whether the user named
// the file explicitly.
var ErrConfigNotFound = errors.New("configuration file not found")

// File is the YAML configuration file structure: optional global tunables
// plus per-score overrides keyed by document base name.
type File struct {
	// ZoomStep overrides the global zoom step when greater than 1.
	ZoomStep float64 `yaml:"zoom_step,omitempty"`

	// ScrollDurationMS overrides the animation duration in
	// milliseconds when positive.
	ScrollDurationMS int `yaml:"scroll_duration_ms,omitempty"`

	// ScrollFrames overrides the animation frame count when positive.
	ScrollFrames int `yaml:"scroll_frames,omitempty"`

	// MergeEpsilon overrides the anchor merge distance when positive.
	MergeEpsilon float64 `yaml:"merge_epsilon,omitempty"`

	// Scores maps document base names to per-score overrides.
	Scores map[string]ScoreConfig `yaml:"scores,omitempty"`
}

// ScoreConfig holds overrides for a single score.
type ScoreConfig struct {
	// AnchorPath overrides where this score's anchors are stored.
	AnchorPath string `yaml:"anchor_path,omitempty"`

	// ZoomStep overrides the zoom step for this score.
	ZoomStep float64 `yaml:"zoom_step,omitempty"`

	// MarkerThickness overrides the marker line height for this score.
	MarkerThickness int `yaml:"marker_thickness,omitempty"`
}

// LoadConfigFile loads the YAML configuration from path. A missing file
// yields ErrConfigNotFound.
func LoadConfigFile(path string) (*File, error) {
	data, err := os.ReadFile(path) //nolint:gosec // user-provided config path is intentional
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var cf File
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return nil, err
	}
	if cf.Scores == nil {
		cf.Scores = make(map[string]ScoreConfig)
	}
	return &cf, nil
}

// FindConfigFile searches for the configuration file:
// 1. an explicit path, used directly if it exists
// 2. .choirscore in the current directory
// 3. .choirscore in the user's home directory
//
// Returns the path found, or empty string.
func FindConfigFile(configPath string) string {
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
		return ""
	}

	if cwd, err := os.Getwd(); err == nil {
		p := filepath.Join(cwd, DefaultConfigFile)
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	if home, err := os.UserHomeDir(); err == nil {
		p := filepath.Join(home, DefaultConfigFile)
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	return ""
}

// ApplyFile folds global tunables from a loaded File into the Config,
// touching only fields still at their defaults so CLI flags keep
// precedence.
func (c *Config) ApplyFile(f *File) {
	if f == nil {
		return
	}
	c.Scores = f
	if f.ZoomStep > 1 && c.ZoomStep == DefaultZoomStep {
		c.ZoomStep = f.ZoomStep
	}
	if f.ScrollDurationMS > 0 && c.ScrollDuration == DefaultScrollDuration {
		c.ScrollDuration = time.Duration(f.ScrollDurationMS) * time.Millisecond
	}
	if f.ScrollFrames > 0 && c.ScrollFrames == DefaultScrollFrames {
		c.ScrollFrames = f.ScrollFrames
	}
	if f.MergeEpsilon > 0 && c.MergeEpsilon == DefaultMergeEpsilon {
		c.MergeEpsilon = f.MergeEpsilon
	}
}
