package config

import "errors"

// Configuration validation errors.
// These errors are returned by Config.Validate() so callers can use
// errors.Is() while users still get a readable message.
var (
	// ErrNoSource is returned when no snapshot file is given.
	ErrNoSource = errors.New("no snapshot specified: provide at least one snapshot file")

	// ErrInvalidTimeout is returned when the timeout is not positive.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidBatchSize is returned when the batch size is not positive.
	ErrInvalidBatchSize = errors.New("invalid batch size: must be positive")

	// ErrConflictingReportFormats is returned when both --json and --markdown
	// are specified. Only one output format can be used at a time.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")

	// ErrInvalidVisualScore is returned when a visual score is outside 0-100.
	ErrInvalidVisualScore = errors.New("invalid visual score: must be between 0 and 100")

	// ErrInvalidMaxOverlapElements is returned when the overlap ceiling is negative.
	// Use 0 for the default ceiling.
	ErrInvalidMaxOverlapElements = errors.New("invalid overlap element limit: must be non-negative")
)
