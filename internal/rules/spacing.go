package rules

import (
	"fmt"

	"github.com/davidvvliet/PixelPolish-sub000/internal/model"
)

// spacingRecommendationThreshold is the issue count above which the rule
// recommends a spacing scale.
const spacingRecommendationThreshold = 5

// SpacingRule reports margins and paddings whose four sides use more than
// two distinct values.
type SpacingRule struct{}

// NewSpacingRule creates the spacing consistency rule.
func NewSpacingRule() *SpacingRule {
	return &SpacingRule{}
}

// Name returns the rule name.
func (r *SpacingRule) Name() string { return NameSpacing }

// MaxScore returns the rule cap.
func (r *SpacingRule) MaxScore() int { return SpacingMaxScore }

// Evaluate turns each recorded spacing inconsistency into an issue.
func (r *SpacingRule) Evaluate(in *Input) (model.RuleResult, error) {
	if in == nil || in.Patterns == nil {
		return model.RuleResult{}, ErrIncompleteInput
	}

	elements := in.Elements()
	var issues []model.Issue
	for _, inc := range in.Patterns.Spacing.Inconsistencies {
		label := fmt.Sprintf("element %d", inc.ElementIndex)
		if inc.ElementIndex >= 0 && inc.ElementIndex < len(elements) {
			label = elements[inc.ElementIndex].Label()
		}
		issues = append(issues, model.IssueAt(inc.ElementIndex, IssueSpacing, model.SeverityMedium,
			fmt.Sprintf("Inconsistent %s on %s: %s %s %s %s",
				inc.Kind, label, inc.Box.Top, inc.Box.Right, inc.Box.Bottom, inc.Box.Left),
			fmt.Sprintf("Use uniform or symmetric %s values", inc.Kind)))
	}

	var recs []model.Recommendation
	if len(issues) > spacingRecommendationThreshold {
		recs = append(recs, model.Recommendation{
			Type:     recommendationSpacing,
			Priority: 7,
			Message:  fmt.Sprintf("%d elements use asymmetric margin or padding", len(issues)),
			Action:   "Adopt a spacing scale (for example multiples of 8px) and apply it consistently",
		})
	}

	return newResult(NameSpacing, SpacingMaxScore, SpacingPenalty, issues, recs), nil
}
