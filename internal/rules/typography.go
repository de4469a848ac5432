package rules

import (
	"fmt"

	"github.com/davidvvliet/PixelPolish-sub000/internal/model"
)

// Typography limits.
const (
	maxFontSizes    = 8
	maxFontFamilies = 3
)

// TypographyRule checks how many font sizes and families text uses.
type TypographyRule struct{}

// NewTypographyRule creates the typography consistency rule.
func NewTypographyRule() *TypographyRule {
	return &TypographyRule{}
}

// Name returns the rule name.
func (r *TypographyRule) Name() string { return NameTypography }

// MaxScore returns the rule cap.
func (r *TypographyRule) MaxScore() int { return TypographyMaxScore }

// Evaluate compares distinct font-size and font-family counts to their limits.
func (r *TypographyRule) Evaluate(in *Input) (model.RuleResult, error) {
	if in == nil || in.Patterns == nil {
		return model.RuleResult{}, ErrIncompleteInput
	}

	typo := in.Patterns.Typography
	var issues []model.Issue

	if n := typo.FontSizes.Distinct(); n > maxFontSizes {
		issues = append(issues, model.Issue{
			Type:       IssueFontSize,
			Severity:   model.SeverityMedium,
			Message:    fmt.Sprintf("Text uses %d different font sizes (limit %d)", n, maxFontSizes),
			Suggestion: "Define a type scale and map every text style onto it",
		})
	}
	if n := typo.FontFamilies.Distinct(); n > maxFontFamilies {
		issues = append(issues, model.Issue{
			Type:       IssueFontFamily,
			Severity:   model.SeverityHigh,
			Message:    fmt.Sprintf("Text uses %d different font families (limit %d)", n, maxFontFamilies),
			Suggestion: "Use at most one family for headings and one for body text",
		})
	}

	var recs []model.Recommendation
	if len(issues) > 0 {
		recs = append(recs, model.Recommendation{
			Type:     recommendationTypography,
			Priority: 6,
			Message:  "Typography is inconsistent across the page",
			Action:   "Consolidate font sizes and families into a shared type scale",
		})
	}

	return newResult(NameTypography, TypographyMaxScore, TypographyPenalty, issues, recs), nil
}
