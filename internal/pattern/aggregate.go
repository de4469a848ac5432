package pattern

import (
	"regexp"
	"strings"

	"github.com/davidvvliet/PixelPolish-sub000/internal/model"
)

// DefaultMaxOverlapElements bounds the pairwise overlap pass. Above this
// many elements the pass is skipped rather than run in quadratic time.
const DefaultMaxOverlapElements = 2000

// Spacing kinds recorded on a SpacingInconsistency.
const (
	SpacingMargin  = "margin"
	SpacingPadding = "padding"
)

// pixelLength matches a plain pixel literal such as "320px" or "12.5px".
var pixelLength = regexp.MustCompile(`^-?\d+(?:\.\d+)?px$`)

// positionedValues are the position values that take an element out of
// normal static flow.
var positionedValues = map[string]bool{
	"absolute": true,
	"relative": true,
	"fixed":    true,
	"sticky":   true,
}

// Patterns holds everything derived from an element list. It is built once
// per analysis and only read afterwards.
type Patterns struct {
	// ElementCount is the number of analyzed elements.
	ElementCount int

	Spacing     SpacingPatterns
	Typography  TypographyPatterns
	Colors      ColorPatterns
	Layout      LayoutPatterns
	Responsive  ResponsivePatterns
	Positioning PositioningPatterns
}

// SpacingPatterns summarizes margin and padding usage.
type SpacingPatterns struct {
	Margins         FrequencyMap
	Paddings        FrequencyMap
	Inconsistencies []SpacingInconsistency
}

// SpacingInconsistency marks an element whose margin or padding uses more
// than two distinct side values.
type SpacingInconsistency struct {
	ElementIndex int
	Kind         string
	Box          SpacingBox
}

// TypographyPatterns tallies text styling over text-bearing elements.
type TypographyPatterns struct {
	FontSizes    FrequencyMap
	FontFamilies FrequencyMap
	TextColors   FrequencyMap
	TextAligns   FrequencyMap
}

// ColorPatterns tallies painted colors over all elements.
type ColorPatterns struct {
	Backgrounds FrequencyMap
	Text        FrequencyMap
	Borders     FrequencyMap
}

// LayoutFacts are the per-element layout classifications.
type LayoutFacts struct {
	Flex       bool
	Grid       bool
	Positioned bool
	Floated    bool
}

// LayoutPatterns holds per-element facts plus position and z-index usage.
type LayoutPatterns struct {
	Elements      []LayoutFacts
	PositionTypes FrequencyMap
	ZIndexes      FrequencyMap
}

// ResponsivePatterns summarizes modern layout usage.
type ResponsivePatterns struct {
	FlexCount int
	GridCount int

	// FixedWidth lists indices of elements with a pixel width and no max-width.
	FixedWidth []int
}

// OverlapPair is two elements whose bounding rectangles intersect, with A < B.
type OverlapPair struct {
	A int
	B int
}

// PositioningPatterns holds the result of the optional overlap pass.
type PositioningPatterns struct {
	// Checked is true when the pairwise pass ran.
	Checked bool

	// Skipped is true when the pass was requested but the element count
	// exceeded the configured ceiling.
	Skipped bool

	Overlaps []OverlapPair
}

// Option configures Aggregate.
type Option func(*options)

type options struct {
	detectOverlaps     bool
	maxOverlapElements int
}

// WithOverlapDetection enables the pairwise bounding-box overlap pass.
func WithOverlapDetection(enabled bool) Option {
	return func(o *options) {
		o.detectOverlaps = enabled
	}
}

// WithMaxOverlapElements sets the element ceiling for the overlap pass.
// Non-positive values keep the default.
func WithMaxOverlapElements(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.maxOverlapElements = n
		}
	}
}

// Aggregate derives spacing, typography, color, layout, responsiveness and
// (optionally) overlap facts from elements. Missing styles fall back to
// defaults; Aggregate never fails.
func Aggregate(elements []model.ElementRecord, opts ...Option) *Patterns {
	o := options{maxOverlapElements: DefaultMaxOverlapElements}
	for _, opt := range opts {
		opt(&o)
	}

	p := &Patterns{
		ElementCount: len(elements),
		Spacing: SpacingPatterns{
			Margins:  FrequencyMap{},
			Paddings: FrequencyMap{},
		},
		Typography: TypographyPatterns{
			FontSizes:    FrequencyMap{},
			FontFamilies: FrequencyMap{},
			TextColors:   FrequencyMap{},
			TextAligns:   FrequencyMap{},
		},
		Colors: ColorPatterns{
			Backgrounds: FrequencyMap{},
			Text:        FrequencyMap{},
			Borders:     FrequencyMap{},
		},
		Layout: LayoutPatterns{
			Elements:      make([]LayoutFacts, len(elements)),
			PositionTypes: FrequencyMap{},
			ZIndexes:      FrequencyMap{},
		},
	}

	for i := range elements {
		el := &elements[i]
		p.addSpacing(i, el)
		p.addTypography(el)
		p.addColors(el)
		p.addLayout(i, el)
	}

	if o.detectOverlaps {
		if len(elements) > o.maxOverlapElements {
			p.Positioning.Skipped = true
		} else {
			p.Positioning.Checked = true
			p.Positioning.Overlaps = FindOverlaps(elements)
		}
	}

	return p
}

func (p *Patterns) addSpacing(index int, el *model.ElementRecord) {
	margin := ParseSpacing(el.Style("margin", DefaultSpacingValue))
	padding := ParseSpacing(el.Style("padding", DefaultSpacingValue))

	p.Spacing.Margins.Add(margin.Key())
	p.Spacing.Paddings.Add(padding.Key())

	if margin.Inconsistent() {
		p.Spacing.Inconsistencies = append(p.Spacing.Inconsistencies,
			SpacingInconsistency{ElementIndex: index, Kind: SpacingMargin, Box: margin})
	}
	if padding.Inconsistent() {
		p.Spacing.Inconsistencies = append(p.Spacing.Inconsistencies,
			SpacingInconsistency{ElementIndex: index, Kind: SpacingPadding, Box: padding})
	}
}

func (p *Patterns) addTypography(el *model.ElementRecord) {
	if !el.HasText() {
		return
	}
	if v := el.Style("font-size", ""); v != "" {
		p.Typography.FontSizes.Add(v)
	}
	if v := el.Style("font-family", ""); v != "" {
		p.Typography.FontFamilies.Add(v)
	}
	if v := el.Style("color", ""); v != "" {
		p.Typography.TextColors.Add(v)
	}
	if v := el.Style("text-align", ""); v != "" {
		p.Typography.TextAligns.Add(v)
	}
}

func (p *Patterns) addColors(el *model.ElementRecord) {
	if bg := el.Style("background-color", ""); !IsTransparent(bg) {
		p.Colors.Backgrounds.Add(bg)
	}
	if c := el.Style("color", ""); c != "" {
		p.Colors.Text.Add(c)
	}
	if c, ok := ExtractColor(el.Style("border", "")); ok {
		p.Colors.Borders.Add(c)
	}
}

func (p *Patterns) addLayout(index int, el *model.ElementRecord) {
	display := strings.ToLower(el.Style("display", ""))
	position := strings.ToLower(el.Style("position", "static"))
	floatValue := strings.ToLower(el.Style("float", "none"))

	facts := LayoutFacts{
		Flex:       strings.Contains(display, "flex"),
		Grid:       strings.Contains(display, "grid"),
		Positioned: positionedValues[position],
		Floated:    floatValue != "none",
	}
	p.Layout.Elements[index] = facts
	p.Layout.PositionTypes.Add(position)

	if z := el.Style("z-index", "auto"); z != "auto" {
		p.Layout.ZIndexes.Add(z)
	}

	if facts.Flex {
		p.Responsive.FlexCount++
	}
	if facts.Grid {
		p.Responsive.GridCount++
	}

	width := strings.TrimSpace(el.Style("width", ""))
	maxWidth := strings.TrimSpace(el.Style("max-width", "none"))
	if pixelLength.MatchString(width) && maxWidth == "none" {
		p.Responsive.FixedWidth = append(p.Responsive.FixedWidth, index)
	}
}

// FindOverlaps returns every unordered pair of elements whose bounding
// rectangles intersect. Elements without area are ignored. Cost is
// quadratic in len(elements).
func FindOverlaps(elements []model.ElementRecord) []OverlapPair {
	var pairs []OverlapPair
	for i := 0; i < len(elements); i++ {
		a := elements[i].BoundingRect
		if !hasArea(a) {
			continue
		}
		for j := i + 1; j < len(elements); j++ {
			b := elements[j].BoundingRect
			if hasArea(b) && a.Intersects(b) {
				pairs = append(pairs, OverlapPair{A: i, B: j})
			}
		}
	}
	return pairs
}

func hasArea(r model.Rect) bool {
	return r.Right > r.Left && r.Bottom > r.Top
}
