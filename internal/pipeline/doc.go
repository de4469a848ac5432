// Package pipeline runs snapshot analysis as a sequence of steps.
//
// A run starts from a snapshot file and passes through loading, page
// profile application, rule evaluation and (optionally) saving to the
// history database. Each stage is a Step that receives the current
// model.AnalysisRun and may modify it. Step errors are recorded on the run.
//
// BatchProcessor analyzes many snapshot files concurrently with an errgroup
// concurrency limit, keeping results in input order.
package pipeline
