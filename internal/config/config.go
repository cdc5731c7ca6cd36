package config

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
// Where a value mirrors a constant owned by a core package, the core
// package's constant is authoritative; these exist so the config file and
// flags have documented defaults in one place.
const (
	// DefaultBaseScale is the fixed scale of the base render. See the
	// coords package for why 2.0.
	DefaultBaseScale = 2.0

	// DefaultZoomStep is the per-action zoom multiplier.
	DefaultZoomStep = 1.85

	// DefaultMergeEpsilon is the anchor merge distance in document
	// units.
	DefaultMergeEpsilon = 0.5

	// DefaultScrollDuration is the total animation time per anchor jump.
	DefaultScrollDuration = 200 * time.Millisecond

	// DefaultScrollFrames is the animation frame count per jump.
	DefaultScrollFrames = 30

	// DefaultMarkerThickness is the anchor marker line height in pixels.
	DefaultMarkerThickness = 3

	// DefaultCacheScales is how many rendered scales the render cache
	// keeps.
	DefaultCacheScales = 3

	// DefaultDecodeConcurrency bounds concurrent page decoding.
	DefaultDecodeConcurrency = 4

	// AppName is the application name used for XDG directory paths.
	AppName = "choirscore"
)

// Config holds all options for a choirscore run. Populated from CLI flags
// and the optional config file, validated once, then passed through the
// application.
type Config struct {
	// DocumentPath is the score to open. Required for the view and
	// anchors commands.
	DocumentPath string

	// AnchorPath overrides the default anchor file location
	// (anchors_<base>.json next to the document).
	AnchorPath string

	// Verbose enables debug-level log output.
	Verbose bool

	// BaseScale is the fixed base render scale.
	BaseScale float64

	// ZoomStep is the per-action zoom multiplier. Must be greater
	// than 1.
	ZoomStep float64

	// MergeEpsilon is the anchor merge distance in document units.
	MergeEpsilon float64

	// ScrollDuration is the total animation time per anchor jump.
	ScrollDuration time.Duration

	// ScrollFrames is the animation frame count per jump.
	ScrollFrames int

	// MarkerThickness is the anchor marker line height in pixels.
	MarkerThickness int

	// CacheScales is the render cache capacity in distinct scales.
	CacheScales int

	// DecodeConcurrency bounds concurrent page decoding.
	DecodeConcurrency int

	// ConfigFilePath is an explicit config file path. Empty means search
	// .choirscore in the current then home directory.
	ConfigFilePath string

	// NoLibrary disables recording the session in the score library.
	NoLibrary bool

	// LibraryDir overrides the score library location. Empty means the
	// XDG data directory.
	LibraryDir string

	// MarkdownExport selects Markdown output for the anchors command.
	// Mutually exclusive with JSONExport.
	MarkdownExport bool

	// JSONExport selects JSON output for the anchors command.
	// Mutually exclusive with MarkdownExport.
	JSONExport bool

	// OutputFile is where the anchors command writes its export. Empty
	// means stdout.
	OutputFile string

	// FramePath is where the view command writes the current viewport
	// frame after each change. Empty disables frame output.
	FramePath string

	// Scores holds per-score overrides loaded from the config file.
	Scores *File
}

// NewConfig creates a Config with default values.
//
// Design decision: a constructor instead of zero values, because almost
// every default is non-zero and this function doubles as the canonical
// list of what the defaults are.
func NewConfig() *Config {
	return &Config{
		BaseScale:         DefaultBaseScale,
		ZoomStep:          DefaultZoomStep,
		MergeEpsilon:      DefaultMergeEpsilon,
		ScrollDuration:    DefaultScrollDuration,
		ScrollFrames:      DefaultScrollFrames,
		MarkerThickness:   DefaultMarkerThickness,
		CacheScales:       DefaultCacheScales,
		DecodeConcurrency: DefaultDecodeConcurrency,
	}
}

// XDGDataDir returns the XDG data directory for choirscore, where the
// score library database lives.
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for choirscore.
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate checks the configuration and returns the first problem found as
// a sentinel error. Called once after CLI parsing, before any document is
// opened.
func (c *Config) Validate() error {
	if c.DocumentPath == "" {
		return ErrNoDocument
	}
	if c.BaseScale <= 0 {
		return ErrInvalidBaseScale
	}
	if c.ZoomStep <= 1 {
		return ErrInvalidZoomStep
	}
	if c.MergeEpsilon < 0 {
		return ErrInvalidMergeEpsilon
	}
	if c.ScrollDuration <= 0 {
		return ErrInvalidScrollDuration
	}
	if c.ScrollFrames < 1 {
		return ErrInvalidScrollFrames
	}
	if c.MarkerThickness < 1 {
		return ErrInvalidMarkerThickness
	}
	if c.CacheScales < 1 {
		return ErrInvalidCacheScales
	}
	if c.DecodeConcurrency < 1 {
		return ErrInvalidDecodeConcurrency
	}
	if c.MarkdownExport && c.JSONExport {
		return ErrConflictingExportFormats
	}
	return nil
}

// ApplyScoreOverrides folds per-score settings from the config file into
// the Config for the given document base name. An override applies only
// when the corresponding field still holds its default, so explicit CLI
// values always win.
func (c *Config) ApplyScoreOverrides(baseName string) {
	if c.Scores == nil {
		return
	}
	sc, ok := c.Scores.Scores[baseName]
	if !ok {
		return
	}
	if sc.AnchorPath != "" && c.AnchorPath == "" {
		c.AnchorPath = sc.AnchorPath
	}
	if sc.ZoomStep > 1 && c.ZoomStep == DefaultZoomStep {
		c.ZoomStep = sc.ZoomStep
	}
	if sc.MarkerThickness > 0 && c.MarkerThickness == DefaultMarkerThickness {
		c.MarkerThickness = sc.MarkerThickness
	}
}
