package snapshot

import "errors"

var (
	// ErrUnsupportedFormat is returned when a file extension or format name
	// does not map to a known snapshot encoding.
	ErrUnsupportedFormat = errors.New("unsupported snapshot format")

	// ErrEmptySnapshot is returned when the input contains no data at all.
	ErrEmptySnapshot = errors.New("snapshot is empty")
)
