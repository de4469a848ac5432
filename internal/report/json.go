package report

import (
	"encoding/json"
	"io"

	"github.com/davidvvliet/PixelPolish-sub000/internal/database"
	"github.com/davidvvliet/PixelPolish-sub000/internal/model"
)

// JSONWriter outputs runs in JSON format for tool integration.
type JSONWriter struct {
	baseWriter

	// indent enables pretty-printed JSON output.
	indent bool

	indentPrefix string
	indentString string
}

// JSONWriterOption configures a JSONWriter.
type JSONWriterOption func(*JSONWriter)

// WithIndent enables pretty-printed JSON output.
// The prefix is prepended to each line, and indent is used for each level.
func WithIndent(prefix, indent string) JSONWriterOption {
	return func(w *JSONWriter) {
		w.indent = true
		w.indentPrefix = prefix
		w.indentString = indent
	}
}

// WithPrettyPrint enables pretty-printed JSON with two-space indentation.
func WithPrettyPrint() JSONWriterOption {
	return WithIndent("", "  ")
}

// NewJSONWriter creates a JSONWriter that outputs to the given writer.
func NewJSONWriter(output io.Writer, opts ...JSONWriterOption) *JSONWriter {
	w := &JSONWriter{baseWriter: newBaseWriter(output)}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write outputs the run, including its analysis result.
func (w *JSONWriter) Write(run *model.AnalysisRun) (int, error) {
	return w.writeJSON(run)
}

// WriteBatch outputs the runs as a JSON array.
func (w *JSONWriter) WriteBatch(runs []*model.AnalysisRun) (int, error) {
	return w.writeJSON(nonNilRuns(runs))
}

// WriteComparison outputs the comparison.
func (w *JSONWriter) WriteComparison(c *database.Comparison) (int, error) {
	return w.writeJSON(c)
}

// writeJSON marshals v and writes it followed by a newline.
func (w *JSONWriter) writeJSON(v any) (int, error) {
	var (
		data []byte
		err  error
	)
	if w.indent {
		data, err = json.MarshalIndent(v, w.indentPrefix, w.indentString)
	} else {
		data, err = json.Marshal(v)
	}
	if err != nil {
		return 0, err
	}

	data = append(data, '\n')
	return w.output.Write(data)
}

// JSONReport wraps runs with the version of the tool that produced them.
type JSONReport struct {
	// Version is the PixelPolish version that generated this report.
	Version string `json:"version"`

	// Runs are the analyzed pages.
	Runs []*model.AnalysisRun `json:"runs"`

	// AveragePercentage is the mean shown score of the runs that completed.
	AveragePercentage int `json:"averagePercentage"`
}

// NewJSONReport creates a JSONReport wrapper with version information.
func NewJSONReport(runs []*model.AnalysisRun, version string) *JSONReport {
	runs = nonNilRuns(runs)
	total, completed := 0, 0
	for _, run := range runs {
		if run.Result != nil {
			total += run.Percentage()
			completed++
		}
	}
	avg := 0
	if completed > 0 {
		avg = (total + completed/2) / completed
	}
	return &JSONReport{Version: version, Runs: runs, AveragePercentage: avg}
}

// FullJSONWriter outputs runs inside a JSONReport wrapper.
type FullJSONWriter struct {
	*JSONWriter

	version string
}

// NewFullJSONWriter creates a writer for wrapped reports.
func NewFullJSONWriter(output io.Writer, version string, opts ...JSONWriterOption) *FullJSONWriter {
	return &FullJSONWriter{
		JSONWriter: NewJSONWriter(output, opts...),
		version:    version,
	}
}

// Write outputs a single run wrapped with metadata.
func (w *FullJSONWriter) Write(run *model.AnalysisRun) (int, error) {
	return w.writeJSON(NewJSONReport([]*model.AnalysisRun{run}, w.version))
}

// WriteBatch outputs the runs wrapped with metadata.
func (w *FullJSONWriter) WriteBatch(runs []*model.AnalysisRun) (int, error) {
	return w.writeJSON(NewJSONReport(runs, w.version))
}
