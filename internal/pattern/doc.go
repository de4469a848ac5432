// Package pattern derives the design facts that rules score: spacing
// boxes, typography and color tallies, layout classifications and optional
// bounding-box overlaps.
//
// Aggregate is a pure function of an element list. Missing or malformed
// style values fall back to defaults instead of failing.
package pattern
