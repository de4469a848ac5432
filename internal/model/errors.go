package model

import "errors"

// ErrUnknownSeverity is returned when a severity name or value is not recognized.
var ErrUnknownSeverity = errors.New("unknown severity")
