package pattern

import "strings"

// DefaultSpacingValue is used for any side that cannot be resolved.
const DefaultSpacingValue = "0px"

// SpacingBox is a margin or padding value expanded to all four sides.
// Every side always holds a value.
type SpacingBox struct {
	Top    string `json:"top"`
	Right  string `json:"right"`
	Bottom string `json:"bottom"`
	Left   string `json:"left"`
}

// ParseSpacing expands a CSS margin/padding shorthand into a SpacingBox.
//
//	"10px"            -> 10px on all sides
//	"10px 5px"        -> top/bottom 10px, right/left 5px
//	"1px 2px 3px"     -> top 1px, right/left 2px, bottom 3px
//	"1px 2px 3px 4px" -> top, right, bottom, left
//
// Empty input or more than four tokens resolves every side to "0px".
func ParseSpacing(value string) SpacingBox {
	tokens := splitTokens(value)
	switch len(tokens) {
	case 1:
		return SpacingBox{Top: tokens[0], Right: tokens[0], Bottom: tokens[0], Left: tokens[0]}
	case 2:
		return SpacingBox{Top: tokens[0], Right: tokens[1], Bottom: tokens[0], Left: tokens[1]}
	case 3:
		return SpacingBox{Top: tokens[0], Right: tokens[1], Bottom: tokens[2], Left: tokens[1]}
	case 4:
		return SpacingBox{Top: tokens[0], Right: tokens[1], Bottom: tokens[2], Left: tokens[3]}
	default:
		return uniformBox(DefaultSpacingValue)
	}
}

func uniformBox(v string) SpacingBox {
	return SpacingBox{Top: v, Right: v, Bottom: v, Left: v}
}

// Key returns the canonical "top-right-bottom-left" form.
func (b SpacingBox) Key() string {
	return b.Top + "-" + b.Right + "-" + b.Bottom + "-" + b.Left
}

// DistinctValues returns how many different values the four sides use.
func (b SpacingBox) DistinctValues() int {
	seen := map[string]struct{}{
		b.Top:    {},
		b.Right:  {},
		b.Bottom: {},
		b.Left:   {},
	}
	return len(seen)
}

// Inconsistent reports whether the box uses more than two distinct values.
// Symmetric designs (vertical != horizontal) use at most two.
func (b SpacingBox) Inconsistent() bool {
	return b.DistinctValues() > 2
}

// splitTokens splits a CSS value on whitespace, keeping parenthesised
// groups such as calc(1px + 2px) together.
func splitTokens(value string) []string {
	var (
		tokens  []string
		current strings.Builder
		depth   int
	)
	flush := func() {
		if current.Len() > 0 {
			tokens = append(tokens, current.String())
			current.Reset()
		}
	}
	for _, r := range strings.TrimSpace(value) {
		switch {
		case r == '(':
			depth++
			current.WriteRune(r)
		case r == ')':
			if depth > 0 {
				depth--
			}
			current.WriteRune(r)
		case (r == ' ' || r == '\t' || r == '\n') && depth == 0:
			flush()
		default:
			current.WriteRune(r)
		}
	}
	flush()
	return tokens
}
