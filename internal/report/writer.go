package report

import (
	"io"
	"strconv"
	"strings"

	"github.com/davidvvliet/PixelPolish-sub000/internal/database"
	"github.com/davidvvliet/PixelPolish-sub000/internal/model"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Writer defines the interface for report output.
type Writer interface {
	// Write outputs one run.
	// Returns the number of bytes written and any error encountered.
	Write(run *model.AnalysisRun) (int, error)

	// WriteBatch outputs several runs as one report. Nil runs are skipped.
	WriteBatch(runs []*model.AnalysisRun) (int, error)

	// WriteComparison outputs the difference between two runs of a page.
	WriteComparison(c *database.Comparison) (int, error)
}

// MultiWriter writes to multiple Writers in turn and stops on the first error.
type MultiWriter struct {
	writers []Writer
}

// NewMultiWriter creates a Writer that writes to all provided Writers.
func NewMultiWriter(writers ...Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// Write outputs the run to all configured Writers.
func (m *MultiWriter) Write(run *model.AnalysisRun) (int, error) {
	return m.each(func(w Writer) (int, error) { return w.Write(run) })
}

// WriteBatch outputs the runs to all configured Writers.
func (m *MultiWriter) WriteBatch(runs []*model.AnalysisRun) (int, error) {
	return m.each(func(w Writer) (int, error) { return w.WriteBatch(runs) })
}

// WriteComparison outputs the comparison to all configured Writers.
func (m *MultiWriter) WriteComparison(c *database.Comparison) (int, error) {
	return m.each(func(w Writer) (int, error) { return w.WriteComparison(c) })
}

func (m *MultiWriter) each(write func(Writer) (int, error)) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := write(w)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// baseWriter provides common functionality for report writers.
type baseWriter struct {
	output io.Writer
}

func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}

// dateLayout is used for run timestamps in human-readable reports.
const dateLayout = "2006-01-02 15:04:05 MST"

// ruleTitle turns a rule name such as "responsiveness" into "Responsiveness".
func ruleTitle(name string) string {
	return cases.Title(language.English).String(strings.ReplaceAll(name, "_", " "))
}

// nonNilRuns drops nil entries, which batch processing leaves for runs
// that never started.
func nonNilRuns(runs []*model.AnalysisRun) []*model.AnalysisRun {
	out := make([]*model.AnalysisRun, 0, len(runs))
	for _, run := range runs {
		if run != nil {
			out = append(out, run)
		}
	}
	return out
}

// pageName returns the best identifier for a run: URL, then source path.
func pageName(run *model.AnalysisRun) string {
	if run.URL != "" {
		return run.URL
	}
	return run.Source
}

// severityCount reads a severity tally from a summary.
func severityCount(summary model.Summary, s model.Severity) int {
	return summary.SeverityCounts[s.String()]
}

// truncateString truncates s to maxLen runes with an ellipsis.
func truncateString(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}

// signed formats a delta with an explicit sign.
func signed(n int) string {
	if n > 0 {
		return "+" + strconv.Itoa(n)
	}
	return strconv.Itoa(n)
}
