package rules

import (
	"fmt"

	"github.com/davidvvliet/PixelPolish-sub000/internal/model"
	"github.com/davidvvliet/PixelPolish-sub000/internal/pattern"
)

// Performance limits.
const (
	// MaxElementCount is the DOM size above which the page is flagged.
	MaxElementCount = 500

	// maxOverlapIssues caps how many overlap issues one page reports.
	maxOverlapIssues = 25
)

// PerformanceRule flags oversized DOMs and, optionally, overlapping
// elements that are laid out in normal flow.
type PerformanceRule struct {
	overlapPenalty bool
}

// PerformanceOption configures a PerformanceRule.
type PerformanceOption func(*PerformanceRule)

// WithOverlapPenalty makes the rule report overlap pairs recorded by the
// pattern aggregator. It has no effect unless overlap detection ran.
func WithOverlapPenalty(enabled bool) PerformanceOption {
	return func(r *PerformanceRule) {
		r.overlapPenalty = enabled
	}
}

// NewPerformanceRule creates the performance rule.
func NewPerformanceRule(opts ...PerformanceOption) *PerformanceRule {
	r := &PerformanceRule{}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Name returns the rule name.
func (r *PerformanceRule) Name() string { return NamePerformance }

// MaxScore returns the rule cap.
func (r *PerformanceRule) MaxScore() int { return PerformanceMaxScore }

// Evaluate checks the element count and, when enabled, overlaps.
func (r *PerformanceRule) Evaluate(in *Input) (model.RuleResult, error) {
	if in == nil || in.Patterns == nil {
		return model.RuleResult{}, ErrIncompleteInput
	}

	var (
		issues []model.Issue
		recs   []model.Recommendation
	)

	if n := in.Patterns.ElementCount; n > MaxElementCount {
		issues = append(issues, model.Issue{
			Type:       IssueDOMSize,
			Severity:   model.SeverityMedium,
			Message:    fmt.Sprintf("Page renders %d elements (limit %d)", n, MaxElementCount),
			Suggestion: "Remove wrapper elements and lazy-render off-screen content",
		})
		recs = append(recs, model.Recommendation{
			Type:     recommendationDOMSize,
			Priority: 5,
			Message:  fmt.Sprintf("DOM size of %d elements slows rendering", n),
			Action:   "Reduce DOM depth and element count",
		})
	}

	if r.overlapPenalty && in.Patterns.Positioning.Checked {
		overlaps := r.flowOverlaps(in)
		issues = append(issues, overlaps...)
		if len(overlaps) > 0 {
			recs = append(recs, model.Recommendation{
				Type:     recommendationOverlap,
				Priority: 6,
				Message:  fmt.Sprintf("%d overlapping element pair(s) in normal flow", len(overlaps)),
				Action:   "Check negative margins and fixed heights that push content over siblings",
			})
		}
	}

	return newResult(NamePerformance, PerformanceMaxScore, PerformancePenalty, issues, recs), nil
}

// flowOverlaps converts overlap pairs into issues, ignoring positioned
// elements (layering is intended there) and ancestor/descendant nesting.
func (r *PerformanceRule) flowOverlaps(in *Input) []model.Issue {
	elements := in.Elements()
	layout := in.Patterns.Layout.Elements

	var issues []model.Issue
	for _, pair := range in.Patterns.Positioning.Overlaps {
		if len(issues) >= maxOverlapIssues {
			break
		}
		if pair.A >= len(elements) || pair.B >= len(elements) {
			continue
		}
		if positioned(layout, pair.A) || positioned(layout, pair.B) {
			continue
		}
		a, b := elements[pair.A].BoundingRect, elements[pair.B].BoundingRect
		if contains(a, b) || contains(b, a) {
			continue
		}
		issues = append(issues, model.IssueAt(pair.B, IssueElementOverlap, model.SeverityLow,
			fmt.Sprintf("%s overlaps %s", elements[pair.B].Label(), elements[pair.A].Label()),
			"Separate the elements or position one of them explicitly"))
	}
	return issues
}

func positioned(layout []pattern.LayoutFacts, i int) bool {
	return i < len(layout) && layout[i].Positioned
}

// contains reports whether outer fully encloses inner.
func contains(outer, inner model.Rect) bool {
	return inner.Left >= outer.Left && inner.Right <= outer.Right &&
		inner.Top >= outer.Top && inner.Bottom <= outer.Bottom
}
