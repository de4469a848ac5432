package model

import (
	"fmt"
	"strings"
)

// Severity represents how urgently a design issue should be addressed.
// Severities order numerically; the text form used in reports and JSON
// comes from String and MarshalText.
type Severity int

const (
	// SeverityLow indicates cosmetic inconsistencies.
	// Examples: too many text-align variants, rule execution failures.
	SeverityLow Severity = iota

	// SeverityMedium indicates inconsistencies a visitor is likely to notice.
	// Examples: misaligned blocks, asymmetric spacing, heading level skips.
	SeverityMedium

	// SeverityHigh indicates problems that degrade usability for some visitors.
	// Examples: images without alt text, too many font families, no flex/grid layout.
	SeverityHigh

	// SeverityCritical is reserved for issues that break the page for most visitors.
	// None of the built-in rules emit it today, but it is part of the report contract.
	SeverityCritical
)

// Severities lists every severity from most to least urgent.
// Report writers iterate over it to render stable sections.
var Severities = []Severity{
	SeverityCritical,
	SeverityHigh,
	SeverityMedium,
	SeverityLow,
}

// String returns the canonical lowercase name of the severity.
func (s Severity) String() string {
	switch s {
	case SeverityLow:
		return "low"
	case SeverityMedium:
		return "medium"
	case SeverityHigh:
		return "high"
	case SeverityCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// ParseSeverity converts a severity name to a Severity. Matching is case-insensitive.
func ParseSeverity(s string) (Severity, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "low":
		return SeverityLow, nil
	case "medium":
		return SeverityMedium, nil
	case "high":
		return SeverityHigh, nil
	case "critical":
		return SeverityCritical, nil
	default:
		return SeverityLow, fmt.Errorf("%w: %q", ErrUnknownSeverity, s)
	}
}

// MarshalText encodes the severity as its lowercase name.
func (s Severity) MarshalText() ([]byte, error) {
	if s < SeverityLow || s > SeverityCritical {
		return nil, fmt.Errorf("%w: %d", ErrUnknownSeverity, int(s))
	}
	return []byte(s.String()), nil
}

// UnmarshalText decodes a severity name.
func (s *Severity) UnmarshalText(text []byte) error {
	parsed, err := ParseSeverity(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
