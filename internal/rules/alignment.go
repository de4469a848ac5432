package rules

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/davidvvliet/PixelPolish-sub000/internal/model"
	"github.com/davidvvliet/PixelPolish-sub000/internal/pattern"
)

// Alignment thresholds.
const (
	// AlignmentTolerance is how far (px) an edge may sit from a grid line.
	AlignmentTolerance = 5.0

	// minAlignedWidth is the width an element needs before its horizontal
	// edges are checked.
	minAlignedWidth = 50.0

	// minAlignedHeight is the height an element needs before its vertical
	// edges are checked.
	minAlignedHeight = 30.0

	// maxTextAlignVariants is the number of text-align values tolerated.
	maxTextAlignVariants = 3
)

// Grid is the set of edge lines contributed by all elements of a snapshot.
type Grid struct {
	// Horizontal counts top and bottom edges by y coordinate.
	Horizontal map[float64]int

	// Vertical counts left and right edges by x coordinate.
	Vertical map[float64]int

	// Widths and Heights tally element sizes. They do not affect scoring.
	Widths  pattern.FrequencyMap
	Heights pattern.FrequencyMap

	horizontalSorted []float64
	verticalSorted   []float64
}

// BuildGrid collects the edge lines of every element.
func BuildGrid(elements []model.ElementRecord) *Grid {
	g := &Grid{
		Horizontal: make(map[float64]int),
		Vertical:   make(map[float64]int),
		Widths:     pattern.FrequencyMap{},
		Heights:    pattern.FrequencyMap{},
	}
	for i := range elements {
		r := elements[i].BoundingRect
		g.Horizontal[r.Top]++
		g.Horizontal[r.Bottom]++
		g.Vertical[r.Left]++
		g.Vertical[r.Right]++
		g.Widths.Add(formatPx(r.Width))
		g.Heights.Add(formatPx(r.Height))
	}
	g.horizontalSorted = sortedLines(g.Horizontal)
	g.verticalSorted = sortedLines(g.Vertical)
	return g
}

// aligned reports whether either edge lies within tolerance of a line.
// When excludeOwn is set, a line only counts if some element other than the
// one owning edges a and b contributed it.
func aligned(lines map[float64]int, sorted []float64, a, b float64, excludeOwn bool) bool {
	own := func(line float64) int {
		if !excludeOwn {
			return 0
		}
		n := 0
		if line == a {
			n++
		}
		if line == b {
			n++
		}
		return n
	}
	for _, edge := range []float64{a, b} {
		start := sort.SearchFloat64s(sorted, edge-AlignmentTolerance)
		for i := start; i < len(sorted) && sorted[i] <= edge+AlignmentTolerance; i++ {
			if lines[sorted[i]]-own(sorted[i]) > 0 {
				return true
			}
		}
	}
	return false
}

func sortedLines(lines map[float64]int) []float64 {
	out := make([]float64, 0, len(lines))
	for line := range lines {
		out = append(out, line)
	}
	sort.Float64s(out)
	return out
}

func formatPx(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64) + "px"
}

// AlignmentRule checks that element edges line up with other elements and
// that text alignment is used consistently.
type AlignmentRule struct {
	selfMatching bool
}

// AlignmentOption configures an AlignmentRule.
type AlignmentOption func(*AlignmentRule)

// WithSelfMatching lets an element's own edges count as grid lines.
func WithSelfMatching(enabled bool) AlignmentOption {
	return func(r *AlignmentRule) {
		r.selfMatching = enabled
	}
}

// NewAlignmentRule creates the alignment rule.
func NewAlignmentRule(opts ...AlignmentOption) *AlignmentRule {
	r := &AlignmentRule{}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Name returns the rule name.
func (r *AlignmentRule) Name() string { return NameAlignment }

// MaxScore returns the rule cap.
func (r *AlignmentRule) MaxScore() int { return AlignmentMaxScore }

// Evaluate runs the grid and text-alignment checks.
func (r *AlignmentRule) Evaluate(in *Input) (model.RuleResult, error) {
	if in == nil || in.Patterns == nil {
		return model.RuleResult{}, ErrIncompleteInput
	}

	elements := in.Elements()
	grid := BuildGrid(elements)
	excludeOwn := !r.selfMatching

	var issues []model.Issue
	for i := range elements {
		el := &elements[i]
		rect := el.BoundingRect

		if rect.Width > minAlignedWidth &&
			!aligned(grid.Horizontal, grid.horizontalSorted, rect.Top, rect.Bottom, excludeOwn) {
			issues = append(issues, model.IssueAt(i, IssueGridAlignment, model.SeverityMedium,
				fmt.Sprintf("%s is not aligned with any horizontal edge (top %.0fpx, bottom %.0fpx)",
					el.Label(), rect.Top, rect.Bottom),
				"Align the element's top or bottom edge with neighbouring content"))
		}
		if rect.Height > minAlignedHeight &&
			!aligned(grid.Vertical, grid.verticalSorted, rect.Left, rect.Right, excludeOwn) {
			issues = append(issues, model.IssueAt(i, IssueGridAlignment, model.SeverityMedium,
				fmt.Sprintf("%s is not aligned with any vertical edge (left %.0fpx, right %.0fpx)",
					el.Label(), rect.Left, rect.Right),
				"Align the element's left or right edge with neighbouring content"))
		}
	}

	if aligns := in.Patterns.Typography.TextAligns; aligns.Distinct() > maxTextAlignVariants {
		issues = append(issues, model.Issue{
			Type:     IssueTextAlignment,
			Severity: model.SeverityLow,
			Message: fmt.Sprintf("Text uses %d different text-align values (%v)",
				aligns.Distinct(), aligns.Keys()),
			Suggestion: "Limit text alignment to a small, consistent set",
		})
	}

	var recs []model.Recommendation
	if len(issues) > 0 {
		recs = append(recs, model.Recommendation{
			Type:     recommendationAlignment,
			Priority: 8,
			Message:  fmt.Sprintf("%d alignment issue(s) detected", len(issues)),
			Action:   "Use CSS Grid/Flexbox for alignment",
		})
	}

	return newResult(NameAlignment, AlignmentMaxScore, AlignmentPenalty, issues, recs), nil
}
