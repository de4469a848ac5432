// Package model defines the data shared by the loader, rule engine, history
// store and report writers.
//
//   - PageSnapshot and ElementRecord describe the analyzed page.
//   - RuleResult, Issue and Recommendation are produced by individual rules.
//   - AnalysisResult aggregates rule results into a score and summary.
//   - AnalysisRun records one invocation: source, digest, result and the
//     optional visual score blend.
//
// Types are plain structs serializable to JSON (and YAML for snapshots).
package model
