package database

import (
	"context"
	"fmt"
	"sort"

	"github.com/davidvvliet/PixelPolish-sub000/internal/model"
)

// RuleDelta is the score change of one rule between two runs.
type RuleDelta struct {
	RuleName string `json:"ruleName"`
	OldScore int    `json:"oldScore"`
	NewScore int    `json:"newScore"`
	MaxScore int    `json:"maxScore"`
	Delta    int    `json:"delta"`
}

// Comparison describes how a page changed between two runs.
type Comparison struct {
	Old *model.AnalysisRun `json:"old"`
	New *model.AnalysisRun `json:"new"`

	// PercentageDelta is New minus Old in percentage points, using the
	// blended score when both runs have one.
	PercentageDelta int `json:"percentageDelta"`

	// SnapshotChanged is false when both runs analyzed identical snapshots.
	SnapshotChanged bool `json:"snapshotChanged"`

	RuleDeltas []RuleDelta `json:"ruleDeltas"`

	// NewIssueTypes appear only in New, ResolvedIssueTypes only in Old.
	NewIssueTypes      []string `json:"newIssueTypes"`
	ResolvedIssueTypes []string `json:"resolvedIssueTypes"`

	// IssueCountDelta is the change in total issue count.
	IssueCountDelta int `json:"issueCountDelta"`
}

// Improved reports whether the newer run scored higher.
func (c *Comparison) Improved() bool {
	return c.PercentageDelta > 0
}

// Compare loads two runs by ID and compares them.
func (hdb *HistoryDB) Compare(ctx context.Context, oldID, newID string) (*Comparison, error) {
	oldRun, err := hdb.GetRun(ctx, oldID)
	if err != nil {
		return nil, fmt.Errorf("old run %s: %w", oldID, err)
	}
	newRun, err := hdb.GetRun(ctx, newID)
	if err != nil {
		return nil, fmt.Errorf("new run %s: %w", newID, err)
	}
	return CompareRuns(oldRun, newRun), nil
}

// CompareRuns compares two runs that both carry a result.
// Rules are matched by name in the order of the newer run.
func CompareRuns(oldRun, newRun *model.AnalysisRun) *Comparison {
	c := &Comparison{
		Old:                oldRun,
		New:                newRun,
		SnapshotChanged:    oldRun.Digest == "" || oldRun.Digest != newRun.Digest,
		RuleDeltas:         make([]RuleDelta, 0),
		NewIssueTypes:      make([]string, 0),
		ResolvedIssueTypes: make([]string, 0),
	}

	if oldRun.BlendedScore != nil && newRun.BlendedScore != nil {
		c.PercentageDelta = *newRun.BlendedScore - *oldRun.BlendedScore
	} else {
		c.PercentageDelta = technical(newRun) - technical(oldRun)
	}

	if oldRun.Result == nil || newRun.Result == nil {
		return c
	}

	oldScores := make(map[string]int, len(oldRun.Result.RuleResults))
	for _, rr := range oldRun.Result.RuleResults {
		oldScores[rr.RuleName] = rr.Score
	}
	for _, rr := range newRun.Result.RuleResults {
		old, ok := oldScores[rr.RuleName]
		if !ok {
			continue
		}
		c.RuleDeltas = append(c.RuleDeltas, RuleDelta{
			RuleName: rr.RuleName,
			OldScore: old,
			NewScore: rr.Score,
			MaxScore: rr.MaxScore,
			Delta:    rr.Score - old,
		})
	}

	oldTypes := oldRun.Result.Summary.TypeCounts
	newTypes := newRun.Result.Summary.TypeCounts
	for t := range newTypes {
		if oldTypes[t] == 0 && newTypes[t] > 0 {
			c.NewIssueTypes = append(c.NewIssueTypes, t)
		}
	}
	for t := range oldTypes {
		if newTypes[t] == 0 && oldTypes[t] > 0 {
			c.ResolvedIssueTypes = append(c.ResolvedIssueTypes, t)
		}
	}
	sort.Strings(c.NewIssueTypes)
	sort.Strings(c.ResolvedIssueTypes)

	c.IssueCountDelta = len(newRun.Result.Issues) - len(oldRun.Result.Issues)
	return c
}

func technical(run *model.AnalysisRun) int {
	if run.Result == nil {
		return 0
	}
	return run.Result.ScorePercentage
}
