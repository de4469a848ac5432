package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/davidvvliet/PixelPolish-sub000/internal/model"
)

// FileName is the database file created inside the data directory.
const FileName = "pixelpolish.db"

// timestampLayout is how run times are written. Fixed-width fractions keep
// lexical and chronological order identical.
const timestampLayout = "2006-01-02 15:04:05.000000"

// HistoryDB stores analysis runs in SQLite.
type HistoryDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures HistoryDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates a HistoryDB in dbDir.
// If CreateIfNotExists is false and the database doesn't exist, an error is returned.
func Open(dbDir string, opts Options) (*HistoryDB, error) {
	dbPath := filepath.Join(dbDir, FileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s: %w", dbPath, err)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// mode=rw refuses to create a missing file, mode=rwc allows it.
	dsn := dbPath + "?mode=rw"
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(1) // SQLite only supports one writer
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	hdb := &HistoryDB{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := hdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return hdb, nil
}

// Close closes the database connection.
func (hdb *HistoryDB) Close() error {
	return hdb.db.Close()
}

// Path returns the database file path.
func (hdb *HistoryDB) Path() string {
	return hdb.dbPath
}

func (hdb *HistoryDB) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS analysis_runs (
		id TEXT PRIMARY KEY,
		source TEXT NOT NULL,
		url TEXT NOT NULL DEFAULT '',
		title TEXT NOT NULL DEFAULT '',
		digest TEXT NOT NULL DEFAULT '',
		element_count INTEGER NOT NULL DEFAULT 0,
		timestamp DATETIME NOT NULL,
		score INTEGER NOT NULL,
		max_score INTEGER NOT NULL,
		score_percentage INTEGER NOT NULL,
		blended_score INTEGER,
		severity_summary TEXT,
		run_json TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_runs_url ON analysis_runs(url);
	CREATE INDEX IF NOT EXISTS idx_runs_timestamp ON analysis_runs(timestamp);
	CREATE INDEX IF NOT EXISTS idx_runs_digest ON analysis_runs(digest);
	`

	_, err := hdb.db.ExecContext(context.Background(), schema)
	return err
}

// SaveRun stores a completed run. Saving a run with an existing ID replaces it.
func (hdb *HistoryDB) SaveRun(ctx context.Context, run *model.AnalysisRun) error {
	if run.Result == nil {
		return ErrNoResult
	}

	runJSON, err := json.Marshal(run)
	if err != nil {
		return fmt.Errorf("failed to serialize run: %w", err)
	}
	summaryJSON, err := json.Marshal(run.Result.Summary.SeverityCounts)
	if err != nil {
		return fmt.Errorf("failed to serialize severity summary: %w", err)
	}

	var blended sql.NullInt64
	if run.BlendedScore != nil {
		blended = sql.NullInt64{Int64: int64(*run.BlendedScore), Valid: true}
	}

	query := `
	INSERT INTO analysis_runs (id, source, url, title, digest, element_count, timestamp,
		score, max_score, score_percentage, blended_score, severity_summary, run_json)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET
		source = excluded.source,
		url = excluded.url,
		title = excluded.title,
		digest = excluded.digest,
		element_count = excluded.element_count,
		timestamp = excluded.timestamp,
		score = excluded.score,
		max_score = excluded.max_score,
		score_percentage = excluded.score_percentage,
		blended_score = excluded.blended_score,
		severity_summary = excluded.severity_summary,
		run_json = excluded.run_json
	`

	_, err = hdb.db.ExecContext(ctx, query,
		run.ID,
		run.Source,
		run.URL,
		run.Title,
		run.Digest,
		run.ElementCount,
		run.AnalyzedAt.UTC().Format(timestampLayout),
		run.Result.Score,
		run.Result.MaxScore,
		run.Result.ScorePercentage,
		blended,
		string(summaryJSON),
		string(runJSON),
	)
	if err != nil {
		return fmt.Errorf("failed to save analysis run: %w", err)
	}

	return nil
}

// GetRun retrieves a run by ID.
func (hdb *HistoryDB) GetRun(ctx context.Context, id string) (*model.AnalysisRun, error) {
	return hdb.queryRun(ctx, `SELECT run_json FROM analysis_runs WHERE id = ?`, id)
}

// LatestRun retrieves the most recent run for a page URL.
func (hdb *HistoryDB) LatestRun(ctx context.Context, url string) (*model.AnalysisRun, error) {
	query := `
	SELECT run_json FROM analysis_runs
	WHERE url = ?
	ORDER BY timestamp DESC, rowid DESC
	LIMIT 1
	`
	return hdb.queryRun(ctx, query, url)
}

func (hdb *HistoryDB) queryRun(ctx context.Context, query string, args ...any) (*model.AnalysisRun, error) {
	var runJSON string
	err := hdb.db.QueryRowContext(ctx, query, args...).Scan(&runJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRunNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get analysis run: %w", err)
	}

	var run model.AnalysisRun
	if err := json.Unmarshal([]byte(runJSON), &run); err != nil {
		return nil, fmt.Errorf("failed to parse analysis run: %w", err)
	}
	return &run, nil
}

// ListURLs returns every analyzed page URL in lexical order.
func (hdb *HistoryDB) ListURLs(ctx context.Context) ([]string, error) {
	query := `
	SELECT DISTINCT url FROM analysis_runs
	ORDER BY url
	`

	rows, err := hdb.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list urls: %w", err)
	}
	defer rows.Close()

	var urls []string
	for rows.Next() {
		var url string
		if err := rows.Scan(&url); err != nil {
			return nil, fmt.Errorf("failed to scan url: %w", err)
		}
		urls = append(urls, url)
	}

	return urls, rows.Err()
}

// RunMetadata is the summary of a stored run, used for listings without
// decoding the full result.
type RunMetadata struct {
	ID              string
	Source          string
	URL             string
	Title           string
	Digest          string
	ElementCount    int
	Timestamp       time.Time
	Score           int
	MaxScore        int
	ScorePercentage int

	// BlendedScore is nil when no visual score was recorded.
	BlendedScore *int

	// SeverityCounts contains issue counts by severity name.
	SeverityCounts map[string]int
}

// History returns run metadata newest first. An empty url lists runs for
// every page; limit <= 0 means no limit.
func (hdb *HistoryDB) History(ctx context.Context, url string, limit int) ([]RunMetadata, error) {
	query := `
	SELECT id, source, url, title, digest, element_count, timestamp,
		score, max_score, score_percentage, blended_score, severity_summary
	FROM analysis_runs
	WHERE 1=1
	`
	args := make([]any, 0, 2)

	if url != "" {
		query += " AND url = ?"
		args = append(args, url)
	}
	query += " ORDER BY timestamp DESC, rowid DESC"
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := hdb.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get history: %w", err)
	}
	defer rows.Close()

	var results []RunMetadata
	for rows.Next() {
		var (
			meta        RunMetadata
			timestamp   string
			blended     sql.NullInt64
			summaryJSON sql.NullString
		)

		err := rows.Scan(
			&meta.ID,
			&meta.Source,
			&meta.URL,
			&meta.Title,
			&meta.Digest,
			&meta.ElementCount,
			&timestamp,
			&meta.Score,
			&meta.MaxScore,
			&meta.ScorePercentage,
			&blended,
			&summaryJSON,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan metadata: %w", err)
		}

		meta.Timestamp = parseTimestamp(timestamp)
		if blended.Valid {
			v := int(blended.Int64)
			meta.BlendedScore = &v
		}
		meta.SeverityCounts = make(map[string]int)
		if summaryJSON.Valid && summaryJSON.String != "" {
			if err := json.Unmarshal([]byte(summaryJSON.String), &meta.SeverityCounts); err != nil {
				meta.SeverityCounts = make(map[string]int)
			}
		}

		results = append(results, meta)
	}

	return results, rows.Err()
}

// DeleteRun removes a run by ID.
func (hdb *HistoryDB) DeleteRun(ctx context.Context, id string) error {
	result, err := hdb.db.ExecContext(ctx, `DELETE FROM analysis_runs WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete analysis run: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete analysis run: %w", err)
	}
	if n == 0 {
		return ErrRunNotFound
	}
	return nil
}

// timestampFormats contains the timestamp formats that SQLite may return.
// The order matters: more specific formats should come first.
var timestampFormats = []string{
	"2006-01-02 15:04:05",  // SQLite default datetime format, fractions accepted
	"2006-01-02T15:04:05Z", // ISO 8601 with Z suffix
	"2006-01-02T15:04:05",  // ISO 8601 without timezone
	time.RFC3339,           // Full RFC3339 format
	time.RFC3339Nano,       // RFC3339 with nanoseconds
}

// parseTimestamp attempts to parse a timestamp string using multiple formats.
// The driver may hand DATETIME columns back in different layouts.
// If parsing fails with all formats, returns zero time.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
