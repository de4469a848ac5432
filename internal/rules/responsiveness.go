package rules

import (
	"fmt"

	"github.com/davidvvliet/PixelPolish-sub000/internal/model"
)

// ResponsivenessRule flags pages that use neither flexbox nor grid layout.
// It is a page-level signal: one issue at most. A page without elements has
// no layout to judge and is not flagged.
type ResponsivenessRule struct{}

// NewResponsivenessRule creates the responsiveness rule.
func NewResponsivenessRule() *ResponsivenessRule {
	return &ResponsivenessRule{}
}

// Name returns the rule name.
func (r *ResponsivenessRule) Name() string { return NameResponsiveness }

// MaxScore returns the rule cap.
func (r *ResponsivenessRule) MaxScore() int { return ResponsivenessMaxScore }

// Evaluate checks for any flex or grid container.
func (r *ResponsivenessRule) Evaluate(in *Input) (model.RuleResult, error) {
	if in == nil || in.Patterns == nil {
		return model.RuleResult{}, ErrIncompleteInput
	}

	resp := in.Patterns.Responsive
	var (
		issues []model.Issue
		recs   []model.Recommendation
	)

	if in.Patterns.ElementCount > 0 && resp.FlexCount == 0 && resp.GridCount == 0 {
		issues = append(issues, model.Issue{
			Type:       IssueNoModernLayout,
			Severity:   model.SeverityHigh,
			Message:    "No flexbox or grid layout detected on the page",
			Suggestion: "Build page sections with display: flex or display: grid",
		})

		message := "Layout relies on block flow only"
		if n := len(resp.FixedWidth); n > 0 {
			message = fmt.Sprintf("Layout relies on block flow and %d fixed-width element(s)", n)
		}
		recs = append(recs, model.Recommendation{
			Type:     recommendationLayout,
			Priority: 9,
			Message:  message,
			Action:   "Introduce Flexbox or CSS Grid and replace fixed pixel widths with max-width",
		})
	}

	return newResult(NameResponsiveness, ResponsivenessMaxScore, ResponsivenessPenalty, issues, recs), nil
}
