package model

import "testing"

// TestAnalysisResultHelpers tests the result query helpers.
func TestAnalysisResultHelpers(t *testing.T) {
	t.Parallel()

	t.Run("empty result", func(t *testing.T) {
		t.Parallel()

		r := &AnalysisResult{}
		if r.HasIssues() {
			t.Error("expected no issues")
		}
		if _, ok := r.WorstSeverity(); ok {
			t.Error("expected no worst severity")
		}
	})

	t.Run("filters and ranks severities", func(t *testing.T) {
		t.Parallel()

		r := &AnalysisResult{Issues: []Issue{
			{Type: "a", Severity: SeverityMedium},
			{Type: "b", Severity: SeverityHigh},
			{Type: "c", Severity: SeverityMedium},
		}}

		if got := len(r.IssuesBySeverity(SeverityMedium)); got != 2 {
			t.Errorf("expected 2 medium issues, got %d", got)
		}
		if got := len(r.IssuesBySeverity(SeverityCritical)); got != 0 {
			t.Errorf("expected 0 critical issues, got %d", got)
		}
		worst, ok := r.WorstSeverity()
		if !ok || worst != SeverityHigh {
			t.Errorf("expected high, got %v (ok=%v)", worst, ok)
		}
	})
}

// TestIssueAt tests element-bound issue construction.
func TestIssueAt(t *testing.T) {
	t.Parallel()

	issue := IssueAt(7, "spacing_inconsistency", SeverityMedium, "msg", "fix")
	if issue.ElementIndex == nil || *issue.ElementIndex != 7 {
		t.Fatalf("expected element index 7, got %v", issue.ElementIndex)
	}
	if issue.Type != "spacing_inconsistency" || issue.Suggestion != "fix" {
		t.Errorf("unexpected issue: %+v", issue)
	}
}
