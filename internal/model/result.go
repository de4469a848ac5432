package model

// Issue is a single design problem detected by a rule.
// Issues are created once by the rule that found them and never modified.
type Issue struct {
	// Type is a category tag such as "missing_alt_text".
	Type string `json:"type"`

	// Severity is how urgently the issue should be addressed.
	Severity Severity `json:"severity"`

	// Message describes the problem.
	Message string `json:"message"`

	// Suggestion is an optional hint on how to fix the problem.
	Suggestion string `json:"suggestion,omitempty"`

	// ElementIndex points back into PageSnapshot.Elements when the issue
	// concerns a single element.
	ElementIndex *int `json:"elementIndex,omitempty"`
}

// IssueAt returns an Issue bound to the element at index.
func IssueAt(index int, issueType string, severity Severity, message, suggestion string) Issue {
	return Issue{
		Type:         issueType,
		Severity:     severity,
		Message:      message,
		Suggestion:   suggestion,
		ElementIndex: &index,
	}
}

// Recommendation is a page-level action proposed by a rule.
// A rule emits at most one recommendation per triggering condition.
type Recommendation struct {
	Type     string `json:"type"`
	Priority int    `json:"priority"`
	Message  string `json:"message"`
	Action   string `json:"action"`
}

// RuleResult is the outcome of evaluating one rule.
// Score is always within [0, MaxScore].
type RuleResult struct {
	RuleName        string           `json:"ruleName"`
	Score           int              `json:"score"`
	MaxScore        int              `json:"maxScore"`
	Issues          []Issue          `json:"issues"`
	Recommendations []Recommendation `json:"recommendations"`
}

// Summary tallies the issues and recommendations of an analysis.
type Summary struct {
	TotalIssues        int              `json:"totalIssues"`
	SeverityCounts     map[string]int   `json:"severityCounts"`
	TypeCounts         map[string]int   `json:"typeCounts"`
	TopRecommendations []Recommendation `json:"topRecommendations"`
}

// AnalysisResult is the design-quality report for one snapshot.
type AnalysisResult struct {
	Score           int              `json:"score"`
	MaxScore        int              `json:"maxScore"`
	ScorePercentage int              `json:"scorePercentage"`
	Issues          []Issue          `json:"issues"`
	Recommendations []Recommendation `json:"recommendations"`
	Summary         Summary          `json:"summary"`
	RuleResults     []RuleResult     `json:"ruleResults"`
}

// IssuesBySeverity returns the issues with the given severity in report order.
func (r *AnalysisResult) IssuesBySeverity(severity Severity) []Issue {
	var out []Issue
	for _, issue := range r.Issues {
		if issue.Severity == severity {
			out = append(out, issue)
		}
	}
	return out
}

// HasIssues reports whether any rule found an issue.
func (r *AnalysisResult) HasIssues() bool {
	return len(r.Issues) > 0
}

// WorstSeverity returns the most urgent severity present and false when there are no issues.
func (r *AnalysisResult) WorstSeverity() (Severity, bool) {
	if len(r.Issues) == 0 {
		return SeverityLow, false
	}
	worst := SeverityLow
	for _, issue := range r.Issues {
		if issue.Severity > worst {
			worst = issue.Severity
		}
	}
	return worst, true
}
