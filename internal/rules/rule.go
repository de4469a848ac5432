package rules

import (
	"github.com/davidvvliet/PixelPolish-sub000/internal/model"
	"github.com/davidvvliet/PixelPolish-sub000/internal/pattern"
)

// Rule names. They appear as RuleResult.RuleName and in system_error issues.
const (
	NameAlignment      = "alignment"
	NameSpacing        = "spacing"
	NameTypography     = "typography"
	NameResponsiveness = "responsiveness"
	NameAccessibility  = "accessibility"
	NamePerformance    = "performance"
)

// Score caps and per-issue penalties of the canonical weighting.
const (
	AlignmentMaxScore      = 40
	SpacingMaxScore        = 35
	TypographyMaxScore     = 30
	ResponsivenessMaxScore = 25
	AccessibilityMaxScore  = 35
	PerformanceMaxScore    = 25

	AlignmentPenalty      = 3
	SpacingPenalty        = 2
	TypographyPenalty     = 5
	ResponsivenessPenalty = 8
	AccessibilityPenalty  = 4
	PerformancePenalty    = 5

	// TotalMaxScore is the sum of all caps.
	TotalMaxScore = AlignmentMaxScore + SpacingMaxScore + TypographyMaxScore +
		ResponsivenessMaxScore + AccessibilityMaxScore + PerformanceMaxScore
)

// Issue types emitted by the built-in rules.
const (
	IssueGridAlignment  = "grid_alignment"
	IssueTextAlignment  = "text_alignment"
	IssueSpacing        = "spacing_inconsistency"
	IssueFontSize       = "font_size_inconsistency"
	IssueFontFamily     = "font_family_inconsistency"
	IssueNoModernLayout = "no_modern_layout"
	IssueHeadingSkip    = "heading_hierarchy_skip"
	IssueMissingAlt     = "missing_alt_text"
	IssueDOMSize        = "dom_size"
	IssueElementOverlap = "element_overlap"
	IssueSystemError    = "system_error"
)

// Recommendation types.
const (
	recommendationAlignment  = "alignment"
	recommendationSpacing    = "spacing"
	recommendationTypography = "typography"
	recommendationLayout     = "responsiveness"
	recommendationAltText    = "accessibility_images"
	recommendationHeadings   = "accessibility_headings"
	recommendationDOMSize    = "performance"
	recommendationOverlap    = "overlap"
)

// Input is everything a rule may read. It is shared between rules and must
// not be modified.
type Input struct {
	Snapshot *model.PageSnapshot
	Patterns *pattern.Patterns
}

// Elements returns the snapshot's element list.
func (in *Input) Elements() []model.ElementRecord {
	if in.Snapshot == nil {
		return nil
	}
	return in.Snapshot.Elements
}

// Rule is one scoring heuristic with a fixed cap.
//
// Rules are stateless: Evaluate reads the shared Input and returns a fresh
// RuleResult, so rules can run in any order or in parallel.
type Rule interface {
	// Name returns the rule's identifier.
	Name() string

	// MaxScore returns the rule's fixed cap.
	MaxScore() int

	// Evaluate scores the input. An error means the rule could not run.
	Evaluate(in *Input) (model.RuleResult, error)
}

// Settings selects the optional behaviours of the canonical rule set.
type Settings struct {
	// AlignmentSelfMatching lets an element's own edges satisfy the
	// alignment check, which makes the grid check pass for every element.
	AlignmentSelfMatching bool

	// OverlapPenalty makes the performance rule report overlapping sibling
	// elements found by the pattern aggregator.
	OverlapPenalty bool
}

// Canonical returns the six built-in rules in report order.
// Their caps always sum to TotalMaxScore.
func Canonical(settings Settings) []Rule {
	return []Rule{
		NewAlignmentRule(WithSelfMatching(settings.AlignmentSelfMatching)),
		NewSpacingRule(),
		NewTypographyRule(),
		NewResponsivenessRule(),
		NewAccessibilityRule(),
		NewPerformanceRule(WithOverlapPenalty(settings.OverlapPenalty)),
	}
}

// newResult builds a RuleResult scoring cap minus penalty per issue, floored at 0.
func newResult(name string, maxScore, penalty int, issues []model.Issue, recs []model.Recommendation) model.RuleResult {
	if issues == nil {
		issues = []model.Issue{}
	}
	if recs == nil {
		recs = []model.Recommendation{}
	}
	return model.RuleResult{
		RuleName:        name,
		Score:           max(0, maxScore-len(issues)*penalty),
		MaxScore:        maxScore,
		Issues:          issues,
		Recommendations: recs,
	}
}
