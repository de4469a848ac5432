package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/davidvvliet/PixelPolish-sub000/internal/database"
	"github.com/davidvvliet/PixelPolish-sub000/internal/model"
)

// SimpleWriter outputs human-readable text reports for terminal display.
// Plain ASCII formatting keeps the output pipe- and file-friendly.
type SimpleWriter struct {
	baseWriter

	// showEmpty controls whether sections with no content are shown.
	showEmpty bool

	// verbose adds suggestions and element indices to each issue.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithShowEmpty configures the writer to show empty sections.
func WithShowEmpty(show bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.showEmpty = show
	}
}

// WithVerbose enables verbose output with additional details.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{baseWriter: newBaseWriter(output)}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write outputs one run in human-readable format.
func (w *SimpleWriter) Write(run *model.AnalysisRun) (int, error) {
	var sb strings.Builder
	w.writeRun(&sb, run)
	w.writeFooter(&sb)
	return io.WriteString(w.output, sb.String())
}

// WriteBatch outputs an overview line per run followed by each full report.
func (w *SimpleWriter) WriteBatch(runs []*model.AnalysisRun) (int, error) {
	runs = nonNilRuns(runs)

	var sb strings.Builder
	sb.WriteString("\n")
	w.section(&sb, fmt.Sprintf("BATCH OVERVIEW (%d pages)", len(runs)))
	for _, run := range runs {
		status := fmt.Sprintf("%3d%%", run.Percentage())
		if run.Result == nil {
			status = " ERR"
		}
		fmt.Fprintf(&sb, "  %s  %s\n", status, pageName(run))
	}
	sb.WriteString("\n")

	for _, run := range runs {
		w.writeRun(&sb, run)
	}
	w.writeFooter(&sb)
	return io.WriteString(w.output, sb.String())
}

// WriteComparison outputs the score and issue changes between two runs.
func (w *SimpleWriter) WriteComparison(c *database.Comparison) (int, error) {
	var sb strings.Builder

	sb.WriteString("\n")
	w.banner(&sb, "PIXELPOLISH RUN COMPARISON")
	fmt.Fprintf(&sb, "Page:           %s\n", pageName(c.New))
	fmt.Fprintf(&sb, "Old run:        %s (%s, %d%%)\n", c.Old.ID, c.Old.AnalyzedAt.Format(dateLayout), c.Old.Percentage())
	fmt.Fprintf(&sb, "New run:        %s (%s, %d%%)\n", c.New.ID, c.New.AnalyzedAt.Format(dateLayout), c.New.Percentage())
	fmt.Fprintf(&sb, "Score change:   %s points\n", signed(c.PercentageDelta))
	fmt.Fprintf(&sb, "Issue change:   %s\n", signed(c.IssueCountDelta))
	if !c.SnapshotChanged {
		sb.WriteString("Snapshot:       unchanged\n")
	}
	sb.WriteString("\n")

	w.section(&sb, "RULE CHANGES")
	for _, d := range c.RuleDeltas {
		fmt.Fprintf(&sb, "  %-16s %3d -> %3d / %-3d (%s)\n",
			ruleTitle(d.RuleName), d.OldScore, d.NewScore, d.MaxScore, signed(d.Delta))
	}
	sb.WriteString("\n")

	if len(c.NewIssueTypes) > 0 || w.showEmpty {
		w.section(&sb, "NEW ISSUE TYPES")
		w.writeList(&sb, c.NewIssueTypes, "+")
	}
	if len(c.ResolvedIssueTypes) > 0 || w.showEmpty {
		w.section(&sb, "RESOLVED ISSUE TYPES")
		w.writeList(&sb, c.ResolvedIssueTypes, "-")
	}

	w.writeFooter(&sb)
	return io.WriteString(w.output, sb.String())
}

func (w *SimpleWriter) writeList(sb *strings.Builder, items []string, marker string) {
	if len(items) == 0 {
		sb.WriteString("  None\n\n")
		return
	}
	for _, item := range items {
		fmt.Fprintf(sb, "  [%s] %s\n", marker, item)
	}
	sb.WriteString("\n")
}

func (w *SimpleWriter) writeRun(sb *strings.Builder, run *model.AnalysisRun) {
	w.writeHeader(sb, run)
	if run.Result == nil {
		return
	}
	w.writeRuleScores(sb, run.Result)
	w.writeSummary(sb, run.Result)
	w.writeIssues(sb, run.Result)
	w.writeRecommendations(sb, run.Result)
}

// writeHeader writes the page information block.
func (w *SimpleWriter) writeHeader(sb *strings.Builder, run *model.AnalysisRun) {
	sb.WriteString("\n")
	w.banner(sb, "PIXELPOLISH DESIGN REPORT")

	fmt.Fprintf(sb, "Page:           %s\n", pageName(run))
	if run.Title != "" {
		fmt.Fprintf(sb, "Title:          %s\n", run.Title)
	}
	fmt.Fprintf(sb, "Source:         %s\n", run.Source)
	fmt.Fprintf(sb, "Analyzed:       %s\n", run.AnalyzedAt.Format(dateLayout))
	fmt.Fprintf(sb, "Elements:       %d\n", run.ElementCount)
	if len(run.Tags) > 0 {
		fmt.Fprintf(sb, "Tags:           %s\n", strings.Join(run.Tags, ", "))
	}

	if run.Result != nil {
		fmt.Fprintf(sb, "Score:          %d/%d (%d%%)\n",
			run.Result.Score, run.Result.MaxScore, run.Result.ScorePercentage)
	}
	if run.VisualScore != nil {
		fmt.Fprintf(sb, "Visual score:   %d%%\n", *run.VisualScore)
	}
	if run.BlendedScore != nil {
		fmt.Fprintf(sb, "Blended score:  %d%%\n", *run.BlendedScore)
	}

	if run.Error != "" {
		fmt.Fprintf(sb, "Status:         ERROR - %s\n", run.Error)
		if len(run.FailedSteps) > 0 {
			fmt.Fprintf(sb, "Failed steps:   %s\n", strings.Join(run.FailedSteps, ", "))
		}
	} else {
		sb.WriteString("Status:         Complete\n")
	}
	sb.WriteString("\n")
}

func (w *SimpleWriter) writeRuleScores(sb *strings.Builder, result *model.AnalysisResult) {
	w.section(sb, "RULE SCORES")
	for _, rr := range result.RuleResults {
		fmt.Fprintf(sb, "  %-16s %3d/%-3d  %d issue(s)\n",
			ruleTitle(rr.RuleName), rr.Score, rr.MaxScore, len(rr.Issues))
	}
	sb.WriteString("\n")
}

// writeSummary writes the severity summary section.
func (w *SimpleWriter) writeSummary(sb *strings.Builder, result *model.AnalysisResult) {
	w.section(sb, "SEVERITY SUMMARY")
	for _, s := range model.Severities {
		fmt.Fprintf(sb, "  %-9s %d\n", strings.ToUpper(s.String())+":", severityCount(result.Summary, s))
	}
	sb.WriteString("\n")
	fmt.Fprintf(sb, "  TOTAL:    %d issues\n\n", result.Summary.TotalIssues)
}

// writeIssues writes all issues grouped by severity, most urgent first.
func (w *SimpleWriter) writeIssues(sb *strings.Builder, result *model.AnalysisResult) {
	if !result.HasIssues() && !w.showEmpty {
		return
	}
	w.section(sb, "ISSUES")

	for _, severity := range model.Severities {
		issues := result.IssuesBySeverity(severity)
		if len(issues) == 0 && !w.showEmpty {
			continue
		}

		fmt.Fprintf(sb, "[%s] %s\n", severityIndicator(severity), strings.ToUpper(severity.String()))
		if len(issues) == 0 {
			sb.WriteString("  No issues\n\n")
			continue
		}
		for _, issue := range issues {
			fmt.Fprintf(sb, "  * %s (%s)\n", issue.Message, issue.Type)
			if w.verbose {
				if issue.Suggestion != "" {
					fmt.Fprintf(sb, "    Suggestion: %s\n", issue.Suggestion)
				}
				if issue.ElementIndex != nil {
					fmt.Fprintf(sb, "    Element: #%d\n", *issue.ElementIndex)
				}
			}
		}
		sb.WriteString("\n")
	}
}

func (w *SimpleWriter) writeRecommendations(sb *strings.Builder, result *model.AnalysisResult) {
	recs := result.Summary.TopRecommendations
	if len(recs) == 0 && !w.showEmpty {
		return
	}
	w.section(sb, "TOP RECOMMENDATIONS")
	if len(recs) == 0 {
		sb.WriteString("  None\n\n")
		return
	}
	for i, rec := range recs {
		fmt.Fprintf(sb, "  %d. [P%d] %s\n", i+1, rec.Priority, rec.Message)
		fmt.Fprintf(sb, "     -> %s\n", rec.Action)
	}
	sb.WriteString("\n")
}

// severityIndicator returns a visual indicator for the severity level.
func severityIndicator(severity model.Severity) string {
	switch severity {
	case model.SeverityCritical:
		return "!!!"
	case model.SeverityHigh:
		return "!!"
	case model.SeverityMedium:
		return "!"
	case model.SeverityLow:
		return "-"
	default:
		return "?"
	}
}

func (w *SimpleWriter) banner(sb *strings.Builder, title string) {
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	pad := max(0, (70-len(title))/2)
	sb.WriteString(strings.Repeat(" ", pad) + title + "\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n\n")
}

func (w *SimpleWriter) section(sb *strings.Builder, title string) {
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString(title)
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")
}

// writeFooter writes the report footer.
func (w *SimpleWriter) writeFooter(sb *strings.Builder) {
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("Report generated by PixelPolish\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
}
