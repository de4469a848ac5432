// Package engine runs the design-quality rules over a page snapshot and
// folds their results into a single AnalysisResult.
//
// An analysis is a pure function of its snapshot: the engine aggregates
// patterns once, hands the same read-only input to every rule, and never
// keeps state between calls. A rule that fails is reported as a low
// severity system_error issue and scores zero; the analysis itself always
// completes.
package engine
