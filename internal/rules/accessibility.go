package rules

import (
	"fmt"
	"strings"

	"github.com/davidvvliet/PixelPolish-sub000/internal/model"
)

// AccessibilityRule checks heading order and image alternative text.
type AccessibilityRule struct{}

// NewAccessibilityRule creates the accessibility rule.
func NewAccessibilityRule() *AccessibilityRule {
	return &AccessibilityRule{}
}

// Name returns the rule name.
func (r *AccessibilityRule) Name() string { return NameAccessibility }

// MaxScore returns the rule cap.
func (r *AccessibilityRule) MaxScore() int { return AccessibilityMaxScore }

// Evaluate walks headings in document order and every image.
func (r *AccessibilityRule) Evaluate(in *Input) (model.RuleResult, error) {
	if in == nil || in.Snapshot == nil {
		return model.RuleResult{}, ErrIncompleteInput
	}

	structure := in.Snapshot.Structure
	var (
		issues     []model.Issue
		recs       []model.Recommendation
		skips      int
		missingAlt int
	)

	headings := structure.Headings
	for i := 1; i < len(headings); i++ {
		prev, cur := headings[i-1], headings[i]
		if cur.Level-prev.Level > 1 {
			skips++
			issues = append(issues, model.Issue{
				Type:     IssueHeadingSkip,
				Severity: model.SeverityMedium,
				Message: fmt.Sprintf("Heading level skips from h%d to h%d at %q",
					prev.Level, cur.Level, cur.Text),
				Suggestion: fmt.Sprintf("Use h%d here or restructure the outline", prev.Level+1),
			})
		}
	}

	for _, img := range structure.Images {
		if strings.TrimSpace(img.Alt) != "" {
			continue
		}
		missingAlt++
		issues = append(issues, model.Issue{
			Type:       IssueMissingAlt,
			Severity:   model.SeverityHigh,
			Message:    fmt.Sprintf("Image %q has no alternative text", img.Src),
			Suggestion: "Add an alt attribute describing the image content",
		})
	}

	if missingAlt > 0 {
		recs = append(recs, model.Recommendation{
			Type:     recommendationAltText,
			Priority: 10,
			Message:  fmt.Sprintf("%d image(s) lack alternative text", missingAlt),
			Action:   "Add descriptive alt text to every meaningful image",
		})
	}
	if skips > 0 {
		recs = append(recs, model.Recommendation{
			Type:     recommendationHeadings,
			Priority: 7,
			Message:  fmt.Sprintf("Heading hierarchy skips %d level(s)", skips),
			Action:   "Nest headings sequentially without skipping levels",
		})
	}

	return newResult(NameAccessibility, AccessibilityMaxScore, AccessibilityPenalty, issues, recs), nil
}
