package pattern

import (
	"regexp"
	"strconv"
	"strings"
)

// colorToken matches the first color literal in a CSS value: rgb()/rgba(),
// hex notation, or a common named color.
var colorToken = regexp.MustCompile(
	`(?i)rgba?\([^)]*\)|#(?:[0-9a-f]{8}|[0-9a-f]{6}|[0-9a-f]{4}|[0-9a-f]{3})\b|` +
		`\b(?:black|white|red|green|blue|yellow|orange|purple|pink|gray|grey|silver|maroon|` +
		`navy|teal|olive|lime|aqua|cyan|fuchsia|magenta|brown|gold|indigo|violet|crimson|` +
		`coral|salmon|beige|ivory|khaki|lavender|tomato|turquoise|currentcolor)\b`,
)

// ExtractColor returns the first color literal found in value, such as the
// color part of a border shorthand. The second return is false when none is found.
func ExtractColor(value string) (string, bool) {
	match := colorToken.FindString(value)
	if match == "" {
		return "", false
	}
	return match, true
}

// IsTransparent reports whether a color value is fully transparent.
// Empty values count as transparent because nothing is painted.
func IsTransparent(value string) bool {
	v := strings.ToLower(strings.TrimSpace(value))
	if v == "" || v == "transparent" || v == "none" {
		return true
	}
	if !strings.HasPrefix(v, "rgba(") && !strings.HasPrefix(v, "rgb(") {
		return false
	}
	inner := strings.TrimSuffix(v[strings.Index(v, "(")+1:], ")")

	// Both "r, g, b, a" and "r g b / a" forms carry alpha last.
	var alpha string
	if slash := strings.LastIndex(inner, "/"); slash >= 0 {
		alpha = inner[slash+1:]
	} else {
		parts := strings.Split(inner, ",")
		if len(parts) != 4 {
			return false
		}
		alpha = parts[3]
	}
	alpha = strings.TrimSpace(alpha)
	if pct, ok := strings.CutSuffix(alpha, "%"); ok {
		alpha = pct
	}
	a, err := strconv.ParseFloat(alpha, 64)
	if err != nil {
		return false
	}
	return a == 0
}
