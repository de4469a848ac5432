package pipeline

import "errors"

// ErrNoSnapshot is returned by steps that need a loaded snapshot when the
// run has none, usually because the load step failed or was not added.
var ErrNoSnapshot = errors.New("no snapshot loaded")

// ErrNoResult is returned by steps that need an analysis result when the
// run has none.
var ErrNoResult = errors.New("no analysis result")
