package database

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/davidvvliet/PixelPolish-sub000/internal/model"
)

// setupTestDB creates a temporary database for testing.
func setupTestDB(t *testing.T) *HistoryDB {
	t.Helper()

	db, err := Open(t.TempDir(), DefaultOptions())
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() {
		_ = db.Close()
	})
	return db
}

// newRun builds a run with a small result.
func newRun(url string, at time.Time, percentage int, issueTypes ...string) *model.AnalysisRun {
	run := model.NewAnalysisRun(url + ".json")
	run.URL = url
	run.Title = "Page"
	run.Digest = "digest-" + url
	run.ElementCount = 10
	run.AnalyzedAt = at

	result := &model.AnalysisResult{
		Score:           percentage,
		MaxScore:        100,
		ScorePercentage: percentage,
		Issues:          []model.Issue{},
		Recommendations: []model.Recommendation{},
		Summary: model.Summary{
			SeverityCounts: map[string]int{"critical": 0, "high": 0, "medium": 0, "low": 0},
			TypeCounts:     map[string]int{},
		},
		RuleResults: []model.RuleResult{
			{RuleName: "spacing", Score: percentage / 2, MaxScore: 50},
			{RuleName: "alignment", Score: percentage - percentage/2, MaxScore: 50},
		},
	}
	for _, it := range issueTypes {
		result.Issues = append(result.Issues, model.Issue{Type: it, Severity: model.SeverityMedium, Message: it})
		result.Summary.TypeCounts[it]++
		result.Summary.SeverityCounts["medium"]++
	}
	result.Summary.TotalIssues = len(result.Issues)
	run.SetResult(result)
	return run
}

// TestOpen tests database opening and creation.
func TestOpen(t *testing.T) {
	t.Parallel()

	t.Run("creates database in new directory", func(t *testing.T) {
		t.Parallel()

		dbDir := filepath.Join(t.TempDir(), "newdir", "subdir")
		db, err := Open(dbDir, DefaultOptions())
		if err != nil {
			t.Fatalf("failed to open database: %v", err)
		}
		defer db.Close()

		if _, err := os.Stat(filepath.Join(dbDir, FileName)); os.IsNotExist(err) {
			t.Error("database file was not created")
		}
		if db.Path() != filepath.Join(dbDir, FileName) {
			t.Errorf("unexpected path %q", db.Path())
		}
	})

	t.Run("CreateIfNotExists=false returns error when database does not exist", func(t *testing.T) {
		t.Parallel()

		_, err := Open(filepath.Join(t.TempDir(), "missing"), Options{})
		if !errors.Is(err, os.ErrNotExist) {
			t.Errorf("expected not-exist error, got %v", err)
		}
	})

	t.Run("reopens existing database", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		db, err := Open(dir, DefaultOptions())
		if err != nil {
			t.Fatalf("failed to open database: %v", err)
		}
		run := newRun("https://a.example", time.Now(), 80)
		if err := db.SaveRun(context.Background(), run); err != nil {
			t.Fatalf("failed to save: %v", err)
		}
		_ = db.Close()

		db, err = Open(dir, Options{EnableWAL: true})
		if err != nil {
			t.Fatalf("failed to reopen database: %v", err)
		}
		defer db.Close()
		if _, err := db.GetRun(context.Background(), run.ID); err != nil {
			t.Errorf("run lost after reopen: %v", err)
		}
	})
}

// TestSaveAndGetRun tests storing and loading runs.
func TestSaveAndGetRun(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	ctx := context.Background()

	run := newRun("https://a.example", time.Now(), 91, "dom_size", "missing_alt_text")
	run.SetVisualScore(80)
	if err := db.SaveRun(ctx, run); err != nil {
		t.Fatalf("failed to save run: %v", err)
	}

	got, err := db.GetRun(ctx, run.ID)
	if err != nil {
		t.Fatalf("failed to get run: %v", err)
	}
	if got.ID != run.ID || got.URL != run.URL || got.Digest != run.Digest {
		t.Errorf("unexpected run: %+v", got)
	}
	if got.Result == nil || got.Result.ScorePercentage != 91 || len(got.Result.Issues) != 2 {
		t.Fatalf("result not restored: %+v", got.Result)
	}
	if got.Result.Issues[0].Severity != model.SeverityMedium {
		t.Errorf("severity not restored: %v", got.Result.Issues[0].Severity)
	}
	if got.BlendedScore == nil || *got.BlendedScore != 87 {
		t.Errorf("expected blended score 87, got %v", got.BlendedScore)
	}

	t.Run("missing id", func(t *testing.T) {
		if _, err := db.GetRun(ctx, "nope"); !errors.Is(err, ErrRunNotFound) {
			t.Errorf("expected ErrRunNotFound, got %v", err)
		}
	})

	t.Run("run without result", func(t *testing.T) {
		if err := db.SaveRun(ctx, model.NewAnalysisRun("x.json")); !errors.Is(err, ErrNoResult) {
			t.Errorf("expected ErrNoResult, got %v", err)
		}
	})

	t.Run("saving again replaces", func(t *testing.T) {
		run.Title = "Renamed"
		if err := db.SaveRun(ctx, run); err != nil {
			t.Fatalf("failed to save run: %v", err)
		}
		history, err := db.History(ctx, run.URL, 0)
		if err != nil {
			t.Fatalf("failed to get history: %v", err)
		}
		if len(history) != 1 || history[0].Title != "Renamed" {
			t.Errorf("expected one renamed run, got %+v", history)
		}
	})
}

// TestHistory tests listing and ordering.
func TestHistory(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	ctx := context.Background()
	base := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	runs := []*model.AnalysisRun{
		newRun("https://b.example", base, 50),
		newRun("https://a.example", base.Add(time.Minute), 60),
		newRun("https://a.example", base.Add(2*time.Minute), 70, "dom_size"),
	}
	for _, r := range runs {
		if err := db.SaveRun(ctx, r); err != nil {
			t.Fatalf("failed to save run: %v", err)
		}
	}

	urls, err := db.ListURLs(ctx)
	if err != nil {
		t.Fatalf("failed to list urls: %v", err)
	}
	if len(urls) != 2 || urls[0] != "https://a.example" || urls[1] != "https://b.example" {
		t.Errorf("unexpected urls: %v", urls)
	}

	latest, err := db.LatestRun(ctx, "https://a.example")
	if err != nil {
		t.Fatalf("failed to get latest run: %v", err)
	}
	if latest.ID != runs[2].ID {
		t.Errorf("expected newest run, got %s", latest.ID)
	}
	if _, err := db.LatestRun(ctx, "https://c.example"); !errors.Is(err, ErrRunNotFound) {
		t.Errorf("expected ErrRunNotFound, got %v", err)
	}

	history, err := db.History(ctx, "https://a.example", 0)
	if err != nil {
		t.Fatalf("failed to get history: %v", err)
	}
	if len(history) != 2 || history[0].ID != runs[2].ID || history[1].ID != runs[1].ID {
		t.Fatalf("unexpected history order: %+v", history)
	}
	meta := history[0]
	if meta.ScorePercentage != 70 || meta.SeverityCounts["medium"] != 1 || meta.BlendedScore != nil {
		t.Errorf("unexpected metadata: %+v", meta)
	}
	if !meta.Timestamp.Equal(base.Add(2 * time.Minute)) {
		t.Errorf("unexpected timestamp %v", meta.Timestamp)
	}

	all, err := db.History(ctx, "", 2)
	if err != nil {
		t.Fatalf("failed to get history: %v", err)
	}
	if len(all) != 2 || all[0].ID != runs[2].ID {
		t.Errorf("unexpected limited history: %+v", all)
	}

	if err := db.DeleteRun(ctx, runs[0].ID); err != nil {
		t.Fatalf("failed to delete run: %v", err)
	}
	if err := db.DeleteRun(ctx, runs[0].ID); !errors.Is(err, ErrRunNotFound) {
		t.Errorf("expected ErrRunNotFound, got %v", err)
	}
}

// TestCompare tests run comparison.
func TestCompare(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	ctx := context.Background()
	base := time.Now()

	older := newRun("https://a.example", base, 60, "dom_size", "missing_alt_text")
	newer := newRun("https://a.example", base.Add(time.Hour), 80, "missing_alt_text", "spacing_inconsistency")
	newer.Digest = "changed"
	for _, r := range []*model.AnalysisRun{older, newer} {
		if err := db.SaveRun(ctx, r); err != nil {
			t.Fatalf("failed to save run: %v", err)
		}
	}

	c, err := db.Compare(ctx, older.ID, newer.ID)
	if err != nil {
		t.Fatalf("failed to compare: %v", err)
	}
	if c.PercentageDelta != 20 || !c.Improved() {
		t.Errorf("expected +20, got %d", c.PercentageDelta)
	}
	if !c.SnapshotChanged {
		t.Error("expected snapshot change")
	}
	if len(c.NewIssueTypes) != 1 || c.NewIssueTypes[0] != "spacing_inconsistency" {
		t.Errorf("unexpected new types: %v", c.NewIssueTypes)
	}
	if len(c.ResolvedIssueTypes) != 1 || c.ResolvedIssueTypes[0] != "dom_size" {
		t.Errorf("unexpected resolved types: %v", c.ResolvedIssueTypes)
	}
	if len(c.RuleDeltas) != 2 || c.RuleDeltas[0].RuleName != "spacing" || c.RuleDeltas[0].Delta != 10 {
		t.Errorf("unexpected rule deltas: %+v", c.RuleDeltas)
	}
	if c.IssueCountDelta != 0 {
		t.Errorf("expected no issue count change, got %d", c.IssueCountDelta)
	}

	if _, err := db.Compare(ctx, older.ID, "missing"); !errors.Is(err, ErrRunNotFound) {
		t.Errorf("expected ErrRunNotFound, got %v", err)
	}
}

// TestCompareRuns tests comparison without storage.
func TestCompareRuns(t *testing.T) {
	t.Parallel()

	t.Run("blended scores take precedence", func(t *testing.T) {
		t.Parallel()

		a := newRun("u", time.Now(), 90)
		b := newRun("u", time.Now(), 90)
		a.SetVisualScore(100)
		b.SetVisualScore(50)
		c := CompareRuns(a, b)
		if c.PercentageDelta != -20 || c.Improved() {
			t.Errorf("expected -20, got %d", c.PercentageDelta)
		}
		if c.SnapshotChanged {
			t.Error("same digest should not count as a change")
		}
	})

	t.Run("missing results", func(t *testing.T) {
		t.Parallel()

		c := CompareRuns(model.NewAnalysisRun("a"), model.NewAnalysisRun("b"))
		if c.PercentageDelta != 0 || len(c.RuleDeltas) != 0 {
			t.Errorf("unexpected comparison: %+v", c)
		}
	})
}

// TestParseTimestamp tests timestamp parsing.
func TestParseTimestamp(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		input string
		zero  bool
	}{
		{"2026-01-02 03:04:05", false},
		{"2026-01-02 03:04:05.123456", false},
		{"2026-01-02T03:04:05Z", false},
		{"2026-01-02T03:04:05.5+02:00", false},
		{"yesterday", true},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			t.Parallel()
			if got := parseTimestamp(tc.input); got.IsZero() != tc.zero {
				t.Errorf("parseTimestamp(%q) = %v", tc.input, got)
			}
		})
	}
}
