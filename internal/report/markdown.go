package report

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/davidvvliet/PixelPolish-sub000/internal/database"
	"github.com/davidvvliet/PixelPolish-sub000/internal/model"
	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"
)

// severityLabels are the table and heading labels of each severity.
var severityLabels = map[model.Severity]string{
	model.SeverityCritical: "🔴 Critical",
	model.SeverityHigh:     "🟠 High",
	model.SeverityMedium:   "🟡 Medium",
	model.SeverityLow:      "🔵 Low",
}

// MarkdownWriter outputs reports in GitHub-flavored Markdown, suitable for
// pull request comments and documentation.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{baseWriter: newBaseWriter(output)}
}

// Write outputs one run.
func (w *MarkdownWriter) Write(run *model.AnalysisRun) (int, error) {
	return w.build(func(md *markdown.Markdown) {
		md.H1("PixelPolish Design Report")
		md.PlainText("")
		w.writeRun(md, run)
	})
}

// WriteBatch outputs an overview table followed by a section per run.
func (w *MarkdownWriter) WriteBatch(runs []*model.AnalysisRun) (int, error) {
	runs = nonNilRuns(runs)
	return w.build(func(md *markdown.Markdown) {
		md.H1("PixelPolish Design Report")
		md.PlainText("")

		rows := make([][]string, len(runs))
		for i, run := range runs {
			score := "-"
			if run.Result != nil {
				score = strconv.Itoa(run.Percentage()) + "%"
			}
			rows[i] = []string{pageName(run), score, w.statusText(run)}
		}
		md.Table(markdown.TableSet{
			Header: []string{"Page", "Score", "Status"},
			Rows:   rows,
		})
		md.PlainText("")

		for _, run := range runs {
			md.H2(pageName(run))
			md.PlainText("")
			w.writeRun(md, run)
		}
	})
}

// WriteComparison outputs a comparison of two runs.
func (w *MarkdownWriter) WriteComparison(c *database.Comparison) (int, error) {
	return w.build(func(md *markdown.Markdown) {
		md.H1("PixelPolish Run Comparison")
		md.PlainText("")
		md.Table(markdown.TableSet{
			Header: []string{"Property", "Old", "New"},
			Rows: [][]string{
				{"Run", "`" + c.Old.ID + "`", "`" + c.New.ID + "`"},
				{"Analyzed", c.Old.AnalyzedAt.Format(dateLayout), c.New.AnalyzedAt.Format(dateLayout)},
				{"Score", strconv.Itoa(c.Old.Percentage()) + "%", strconv.Itoa(c.New.Percentage()) + "%"},
				{"Elements", strconv.Itoa(c.Old.ElementCount), strconv.Itoa(c.New.ElementCount)},
			},
		})
		md.PlainText("")

		switch {
		case c.Improved():
			md.Tip(fmt.Sprintf("Score improved by %d points.", c.PercentageDelta))
		case c.PercentageDelta < 0:
			md.Warningf("Score dropped by %d points.", -c.PercentageDelta)
		case !c.SnapshotChanged:
			md.Note("Snapshot unchanged since the previous run.")
		default:
			md.Note("Score unchanged.")
		}
		md.PlainText("")

		md.H2("Rule Changes")
		md.PlainText("")
		rows := make([][]string, len(c.RuleDeltas))
		for i, d := range c.RuleDeltas {
			rows[i] = []string{
				ruleTitle(d.RuleName),
				strconv.Itoa(d.OldScore),
				strconv.Itoa(d.NewScore),
				strconv.Itoa(d.MaxScore),
				signed(d.Delta),
			}
		}
		md.Table(markdown.TableSet{
			Header: []string{"Rule", "Old", "New", "Max", "Change"},
			Rows:   rows,
		})
		md.PlainText("")

		if len(c.NewIssueTypes) > 0 {
			md.H2("New Issue Types")
			md.PlainText("")
			md.BulletList(c.NewIssueTypes...)
			md.PlainText("")
		}
		if len(c.ResolvedIssueTypes) > 0 {
			md.H2("Resolved Issue Types")
			md.PlainText("")
			md.BulletList(c.ResolvedIssueTypes...)
			md.PlainText("")
		}
	})
}

// build renders into a buffer first so the byte count is exact.
func (w *MarkdownWriter) build(body func(md *markdown.Markdown)) (int, error) {
	var buf bytes.Buffer
	md := markdown.NewMarkdown(&buf)
	body(md)
	w.writeFooter(md)
	if err := md.Build(); err != nil {
		return 0, err
	}
	return w.output.Write(buf.Bytes())
}

func (w *MarkdownWriter) writeRun(md *markdown.Markdown, run *model.AnalysisRun) {
	w.writeHeader(md, run)
	if run.Result == nil {
		return
	}
	w.writeScores(md, run.Result)
	w.writeSummary(md, run.Result)
	w.writeIssues(md, run.Result)
	w.writeRecommendations(md, run.Result)
}

// writeHeader writes the page information table.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, run *model.AnalysisRun) {
	rows := [][]string{
		{"Page", "`" + pageName(run) + "`"},
	}
	if run.Title != "" {
		rows = append(rows, []string{"Title", run.Title})
	}
	rows = append(rows,
		[]string{"Analyzed", run.AnalyzedAt.Format(dateLayout)},
		[]string{"Elements", strconv.Itoa(run.ElementCount)},
	)
	if run.Result != nil {
		rows = append(rows, []string{"Technical Score",
			fmt.Sprintf("%d/%d (%d%%)", run.Result.Score, run.Result.MaxScore, run.Result.ScorePercentage)})
	}
	if run.VisualScore != nil {
		rows = append(rows, []string{"Visual Score", strconv.Itoa(*run.VisualScore) + "%"})
	}
	if run.BlendedScore != nil {
		rows = append(rows, []string{"Blended Score", "**" + strconv.Itoa(*run.BlendedScore) + "%**"})
	}
	if len(run.Tags) > 0 {
		rows = append(rows, []string{"Tags", strings.Join(run.Tags, ", ")})
	}
	rows = append(rows, []string{"Status", w.statusText(run)})

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows:   rows,
	})
	md.PlainText("")
}

func (w *MarkdownWriter) statusText(run *model.AnalysisRun) string {
	if run.Error != "" {
		return "❌ Error - " + run.Error
	}
	return "✅ Complete"
}

// writeScores writes the per-rule score table.
func (w *MarkdownWriter) writeScores(md *markdown.Markdown, result *model.AnalysisResult) {
	md.H2("Score Breakdown")
	md.PlainText("")

	rows := make([][]string, 0, len(result.RuleResults)+1)
	for _, rr := range result.RuleResults {
		rows = append(rows, []string{
			ruleTitle(rr.RuleName),
			fmt.Sprintf("%d/%d", rr.Score, rr.MaxScore),
			strconv.Itoa(len(rr.Issues)),
		})
	}
	rows = append(rows, []string{
		"**Total**",
		fmt.Sprintf("**%d/%d**", result.Score, result.MaxScore),
		"**" + strconv.Itoa(result.Summary.TotalIssues) + "**",
	})

	md.Table(markdown.TableSet{
		Header: []string{"Rule", "Score", "Issues"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeSummary writes the severity table, chart and alert.
func (w *MarkdownWriter) writeSummary(md *markdown.Markdown, result *model.AnalysisResult) {
	md.H2("Severity Summary")
	md.PlainText("")

	rows := make([][]string, 0, len(model.Severities)+1)
	for _, s := range model.Severities {
		rows = append(rows, []string{severityLabels[s], strconv.Itoa(severityCount(result.Summary, s))})
	}
	rows = append(rows, []string{"**Total**", "**" + strconv.Itoa(result.Summary.TotalIssues) + "**"})
	md.Table(markdown.TableSet{
		Header: []string{"Severity", "Count"},
		Rows:   rows,
	})
	md.PlainText("")

	if result.HasIssues() {
		w.writePieChart(md, result)
	}
	w.writeAlert(md, result)
}

// writePieChart writes a mermaid pie chart of the severity distribution.
func (w *MarkdownWriter) writePieChart(md *markdown.Markdown, result *model.AnalysisResult) {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Issue Severity Distribution"),
		piechart.WithShowData(true),
	)
	for _, s := range model.Severities {
		if n := severityCount(result.Summary, s); n > 0 {
			chart.LabelAndIntValue(ruleTitle(s.String()), uint64(n))
		}
	}

	md.PlainText("")
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// writeAlert writes an alert chosen by the worst severity present.
func (w *MarkdownWriter) writeAlert(md *markdown.Markdown, result *model.AnalysisResult) {
	worst, ok := result.WorstSeverity()
	count := func(s model.Severity) int { return severityCount(result.Summary, s) }

	switch {
	case !ok:
		md.Tip("No design issues detected.")
	case worst == model.SeverityCritical:
		md.Cautionf("%d critical issue(s) break the page for most visitors.", count(model.SeverityCritical))
	case worst == model.SeverityHigh:
		md.Warningf("%d high severity issue(s) degrade usability and should be fixed first.", count(model.SeverityHigh))
	case worst == model.SeverityMedium:
		md.Importantf("%d medium severity issue(s) are likely to be noticed by visitors.", count(model.SeverityMedium))
	default:
		md.Note("Only low severity issues detected.")
	}
	md.PlainText("")
}

// writeIssues writes one table per severity that has issues.
func (w *MarkdownWriter) writeIssues(md *markdown.Markdown, result *model.AnalysisResult) {
	md.H2("Issues")
	md.PlainText("")

	if !result.HasIssues() {
		md.PlainText("No design issues detected.")
		md.PlainText("")
		return
	}

	for _, s := range model.Severities {
		issues := result.IssuesBySeverity(s)
		if len(issues) == 0 {
			continue
		}

		md.PlainText("### " + severityLabels[s])
		md.PlainText("")

		rows := make([][]string, len(issues))
		for i, issue := range issues {
			element := "-"
			if issue.ElementIndex != nil {
				element = "#" + strconv.Itoa(*issue.ElementIndex)
			}
			suggestion := issue.Suggestion
			if suggestion == "" {
				suggestion = "-"
			}
			rows[i] = []string{
				issue.Type,
				truncateString(issue.Message, 80),
				element,
				truncateString(suggestion, 60),
			}
		}
		md.Table(markdown.TableSet{
			Header: []string{"Type", "Message", "Element", "Suggestion"},
			Rows:   rows,
		})
		md.PlainText("")
	}
}

// writeRecommendations writes the top recommendations in priority order.
func (w *MarkdownWriter) writeRecommendations(md *markdown.Markdown, result *model.AnalysisResult) {
	recs := result.Summary.TopRecommendations
	if len(recs) == 0 {
		return
	}

	md.H2("Top Recommendations")
	md.PlainText("")
	items := make([]string, len(recs))
	for i, rec := range recs {
		items[i] = fmt.Sprintf("**%s** (priority %d): %s", rec.Message, rec.Priority, rec.Action)
	}
	md.OrderedList(items...)
	md.PlainText("")

	for _, rec := range result.Recommendations {
		md.Details(ruleTitle(rec.Type), rec.Message+". "+rec.Action+".")
	}
	md.PlainText("")
}

// writeFooter writes the report footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainText("*Report generated by PixelPolish*")
}
