package main

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/davidvvliet/PixelPolish-sub000/internal/database"
)

// seedHistory analyzes cleanPage and then altPage into a fresh database and
// returns the database directory.
func seedHistory(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	dbDir := t.TempDir()
	cfgPath := writeFile(t, dir, "empty.yaml", "")
	for i, content := range []string{cleanPage, altPage} {
		page := writeFile(t, dir, []string{"v1.json", "v2.json"}[i], content)
		if _, err := runCLI(t, "analyze", "-c", cfgPath, "--db-dir", dbDir, "-j", page); err != nil {
			t.Fatalf("failed to seed history: %v", err)
		}
	}
	return dbDir
}

// runIDs returns the stored run IDs, newest first.
func runIDs(t *testing.T, dbDir string) []string {
	t.Helper()
	db, err := database.Open(dbDir, database.DefaultOptions())
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	runs, err := db.History(context.Background(), "", 0)
	if err != nil {
		t.Fatalf("failed to read history: %v", err)
	}
	ids := make([]string, len(runs))
	for i, r := range runs {
		ids[i] = r.ID
	}
	return ids
}

func TestHistoryCmd(t *testing.T) {
	t.Parallel()

	t.Run("urls", func(t *testing.T) {
		t.Parallel()

		dbDir := seedHistory(t)
		out, err := runCLI(t, "history", "urls", "--db-dir", dbDir)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(out, "Analyzed pages (1)") || !strings.Contains(out, "https://example.com/") {
			t.Errorf("unexpected output:\n%s", out)
		}
	})

	t.Run("urls on empty database", func(t *testing.T) {
		t.Parallel()

		out, err := runCLI(t, "history", "urls", "--db-dir", t.TempDir())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(out, "No analyzed pages") {
			t.Errorf("unexpected output:\n%s", out)
		}
	})

	t.Run("list", func(t *testing.T) {
		t.Parallel()

		dbDir := seedHistory(t)
		out, err := runCLI(t, "history", "list", "--db-dir", dbDir, "https://example.com/")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		for _, want := range []string{"Runs for https://example.com/ (2)", "100%", "98%", "H:1", "none"} {
			if !strings.Contains(out, want) {
				t.Errorf("expected output to contain %q, got:\n%s", want, out)
			}
		}
	})

	t.Run("list with limit", func(t *testing.T) {
		t.Parallel()

		dbDir := seedHistory(t)
		out, err := runCLI(t, "history", "list", "--db-dir", dbDir, "-n", "1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(out, "Runs (1)") {
			t.Errorf("unexpected output:\n%s", out)
		}
	})

	t.Run("show as json", func(t *testing.T) {
		t.Parallel()

		dbDir := seedHistory(t)
		ids := runIDs(t, dbDir)
		out, err := runCLI(t, "history", "show", "--db-dir", dbDir, "-j", ids[0])
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		var r struct {
			Runs []struct {
				ID string `json:"id"`
			} `json:"runs"`
			AveragePercentage int `json:"averagePercentage"`
		}
		if err := json.Unmarshal([]byte(out), &r); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		if len(r.Runs) != 1 || r.Runs[0].ID != ids[0] {
			t.Errorf("expected run %s, got %+v", ids[0], r.Runs)
		}
		if r.AveragePercentage != 98 {
			t.Errorf("expected 98, got %d", r.AveragePercentage)
		}
	})

	t.Run("show unknown run", func(t *testing.T) {
		t.Parallel()

		_, err := runCLI(t, "history", "show", "--db-dir", t.TempDir(), "no-such-run")
		if !errors.Is(err, database.ErrRunNotFound) {
			t.Errorf("expected ErrRunNotFound, got %v", err)
		}
	})

	t.Run("compare latest runs of a url", func(t *testing.T) {
		t.Parallel()

		dbDir := seedHistory(t)
		out, err := runCLI(t, "history", "compare", "--db-dir", dbDir, "https://example.com/")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		for _, want := range []string{"Score change:   -2 points", "Issue change:   +1", "[+] missing_alt_text"} {
			if !strings.Contains(out, want) {
				t.Errorf("expected output to contain %q, got:\n%s", want, out)
			}
		}
	})

	t.Run("compare run ids as markdown", func(t *testing.T) {
		t.Parallel()

		dbDir := seedHistory(t)
		ids := runIDs(t, dbDir)
		// Newer run as "old" reverses the direction of the change.
		out, err := runCLI(t, "history", "compare", "--db-dir", dbDir, "-m", ids[0], ids[1])
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(out, "Score improved by 2 points.") {
			t.Errorf("expected improvement, got:\n%s", out)
		}
		if !strings.Contains(out, "## Resolved Issue Types") {
			t.Errorf("expected resolved issue types, got:\n%s", out)
		}
	})

	t.Run("compare needs two runs", func(t *testing.T) {
		t.Parallel()

		_, err := runCLI(t, "history", "compare", "--db-dir", t.TempDir(), "https://example.com/")
		if err == nil || !strings.Contains(err.Error(), "at least 2 runs") {
			t.Errorf("expected at least 2 runs error, got %v", err)
		}
	})

	t.Run("json and markdown conflict", func(t *testing.T) {
		t.Parallel()

		if _, err := runCLI(t, "history", "show", "--db-dir", t.TempDir(), "-j", "-m", "id"); err == nil {
			t.Error("expected error for conflicting formats")
		}
	})

	t.Run("delete", func(t *testing.T) {
		t.Parallel()

		dbDir := seedHistory(t)
		ids := runIDs(t, dbDir)
		out, err := runCLI(t, "history", "delete", "--db-dir", dbDir, ids[0])
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(out, "Deleted run "+ids[0]) {
			t.Errorf("unexpected output:\n%s", out)
		}
		if remaining := runIDs(t, dbDir); len(remaining) != 1 || remaining[0] != ids[1] {
			t.Errorf("expected only %s to remain, got %v", ids[1], remaining)
		}

		_, err = runCLI(t, "history", "delete", "--db-dir", dbDir, ids[0])
		if !errors.Is(err, database.ErrRunNotFound) {
			t.Errorf("expected ErrRunNotFound on second delete, got %v", err)
		}
	})
}

func TestFormatSeverityCounts(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		counts map[string]int
		want   string
	}{
		{name: "nil", counts: nil, want: "none"},
		{name: "all zero", counts: map[string]int{"critical": 0, "high": 0, "medium": 0, "low": 0}, want: "none"},
		{name: "ordered by urgency", counts: map[string]int{"low": 3, "critical": 1, "medium": 2}, want: "C:1 M:2 L:3"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := formatSeverityCounts(tt.counts); got != tt.want {
				t.Errorf("formatSeverityCounts() = %q, want %q", got, tt.want)
			}
		})
	}
}
