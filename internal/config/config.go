package config

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
const (
	// AppName is the application name used for XDG directory paths.
	AppName = "pixelpolish"

	// DefaultTimeout bounds a whole analyze command, including loading
	// snapshots and saving history.
	DefaultTimeout = 60 * time.Second

	// DefaultBatchSize is the number of snapshots analyzed concurrently.
	DefaultBatchSize = 4

	// DefaultMaxOverlapElements mirrors the pattern aggregator's ceiling for
	// the quadratic overlap pass.
	DefaultMaxOverlapElements = 2000

	// NoVisualScore marks an unset visual score.
	NoVisualScore = -1
)

// Config holds all configuration options for PixelPolish.
// It is populated from the config file and CLI flags and passed down
// explicitly rather than kept in global state.
type Config struct {
	// Sources are the snapshot files to analyze.
	Sources []string

	// Timeout bounds the whole command.
	Timeout time.Duration

	// BatchSize is the number of snapshots analyzed concurrently.
	BatchSize int

	// Verbose enables debug logging.
	Verbose bool

	// ParallelRules evaluates the rules of one snapshot concurrently.
	ParallelRules bool

	// OverlapDetection enables the pairwise bounding-box overlap pass.
	OverlapDetection bool

	// OverlapPenalty makes the performance rule score overlaps.
	// It implies OverlapDetection.
	OverlapPenalty bool

	// MaxOverlapElements is the element ceiling for the overlap pass.
	// Zero means DefaultMaxOverlapElements.
	MaxOverlapElements int

	// AlignmentSelfMatching lets an element's own edges satisfy the
	// alignment check.
	AlignmentSelfMatching bool

	// VisualScore is an externally supplied visual score (0-100) applied to
	// every analyzed page, or NoVisualScore. Page profiles may also set one.
	VisualScore int

	// BaseURL is the page URL used for HTML inputs.
	BaseURL string

	// JSONReport enables JSON report output.
	// Mutually exclusive with MarkdownReport.
	JSONReport bool

	// MarkdownReport enables Markdown report output.
	// Mutually exclusive with JSONReport.
	MarkdownReport bool

	// ReportFile is the output file path for the report.
	// When empty, the report is written to stdout.
	ReportFile string

	// DBDir is the directory holding the history database.
	// Defaults to the XDG data directory (~/.local/share/pixelpolish on Linux).
	DBDir string

	// SaveToDB stores every completed run in the history database.
	SaveToDB bool

	// ConfigFilePath is the path to the configuration file.
	// If empty, .pixelpolish is searched in the current and home directories.
	ConfigFilePath string

	// Profiles holds page profiles loaded from the configuration file.
	Profiles *File
}

// NewConfig creates a new Config with default values.
func NewConfig() *Config {
	return &Config{
		Timeout:            DefaultTimeout,
		BatchSize:          DefaultBatchSize,
		MaxOverlapElements: DefaultMaxOverlapElements,
		VisualScore:        NoVisualScore,
		DBDir:              XDGDataDir(),
		SaveToDB:           true,
		Profiles:           &File{Pages: make(map[string]PageProfile)},
	}
}

// XDGDataDir returns the XDG data directory for PixelPolish.
// On Linux: ~/.local/share/pixelpolish
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for PixelPolish.
// On Linux: ~/.config/pixelpolish
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// HasVisualScore reports whether a global visual score is configured.
func (c *Config) HasVisualScore() bool {
	return c.VisualScore != NoVisualScore
}

// DetectOverlaps reports whether the overlap pass must run.
func (c *Config) DetectOverlaps() bool {
	return c.OverlapDetection || c.OverlapPenalty
}

// ApplyFile copies engine settings from a config file. Settings the file
// leaves unset keep their current value. Profiles are attached as-is.
func (c *Config) ApplyFile(f *File) {
	if f == nil {
		return
	}
	e := f.Engine
	if e.ParallelRules != nil {
		c.ParallelRules = *e.ParallelRules
	}
	if e.OverlapDetection != nil {
		c.OverlapDetection = *e.OverlapDetection
	}
	if e.OverlapPenalty != nil {
		c.OverlapPenalty = *e.OverlapPenalty
	}
	if e.AlignmentSelfMatching != nil {
		c.AlignmentSelfMatching = *e.AlignmentSelfMatching
	}
	if e.MaxOverlapElements != 0 {
		c.MaxOverlapElements = e.MaxOverlapElements
	}
	if e.BatchSize != 0 {
		c.BatchSize = e.BatchSize
	}
	c.Profiles = f
}

// Validate checks if the configuration is valid and returns the first
// problem found.
func (c *Config) Validate() error {
	if len(c.Sources) == 0 {
		return ErrNoSource
	}
	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}
	if c.BatchSize <= 0 {
		return ErrInvalidBatchSize
	}
	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}
	if c.VisualScore != NoVisualScore && (c.VisualScore < 0 || c.VisualScore > 100) {
		return ErrInvalidVisualScore
	}
	if c.MaxOverlapElements < 0 {
		return ErrInvalidMaxOverlapElements
	}
	if c.Profiles != nil {
		if err := c.Profiles.Validate(); err != nil {
			return err
		}
	}
	return nil
}
