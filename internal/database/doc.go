// Package database provides SQLite-based storage for analysis history.
//
// HistoryDB keeps one row per analysis run. Summary columns (URL, scores,
// severity counts, snapshot digest) are stored for listing and the full
// run, including its AnalysisResult, is stored as a JSON blob.
//
// The store uses the CGO-free modernc.org/sqlite driver with WAL enabled.
package database
