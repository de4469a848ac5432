package database

import "errors"

var (
	// ErrRunNotFound is returned when no stored run matches a lookup.
	ErrRunNotFound = errors.New("analysis run not found")

	// ErrNoResult is returned when saving a run that has no analysis result.
	ErrNoResult = errors.New("analysis run has no result")
)
