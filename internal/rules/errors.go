package rules

import "errors"

// ErrIncompleteInput is returned by a rule whose Input lacks the snapshot
// or aggregated patterns it needs.
var ErrIncompleteInput = errors.New("rule input is incomplete")
