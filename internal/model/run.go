package model

import (
	"math"
	"time"

	"github.com/google/uuid"
)

// Blend weights used when a visual assessment score is available.
// The technical score comes from the rule engine, the visual score from an
// external vision model.
const (
	TechnicalWeight = 0.6
	VisualWeight    = 0.4
)

// AnalysisRun records one analysis invocation as seen by the CLI, pipeline
// and history store. The engine itself only produces the Result.
type AnalysisRun struct {
	// ID uniquely identifies the run.
	ID string `json:"id"`

	// Source is the file the snapshot was loaded from.
	Source string `json:"source"`

	// URL is the analyzed page address as reported by the snapshot.
	URL string `json:"url,omitempty"`

	// Title is the page title as reported by the snapshot.
	Title string `json:"title,omitempty"`

	// Digest is the hex sha3-256 digest of the canonical snapshot encoding.
	Digest string `json:"digest,omitempty"`

	// ElementCount is the number of elements in the snapshot.
	ElementCount int `json:"elementCount"`

	// AnalyzedAt is when the analysis ran.
	AnalyzedAt time.Time `json:"analyzedAt"`

	// Snapshot is the analyzed input. It is not serialized with the run.
	Snapshot *PageSnapshot `json:"-"`

	// Result is the engine output; nil when loading or analysis failed.
	Result *AnalysisResult `json:"result,omitempty"`

	// VisualScore is an externally supplied visual percentage (0-100).
	VisualScore *int `json:"visualScore,omitempty"`

	// BlendedScore combines Result.ScorePercentage and VisualScore.
	BlendedScore *int `json:"blendedScore,omitempty"`

	// Tags are labels from the page profile.
	Tags []string `json:"tags,omitempty"`

	// Steps lists the pipeline steps that completed, in order.
	Steps []string `json:"steps,omitempty"`

	// FailedSteps lists the steps that returned an error.
	FailedSteps []string `json:"failedSteps,omitempty"`

	// Error holds the last step error message, if any.
	Error string `json:"error,omitempty"`
}

// NewAnalysisRun creates a run for the given source with a fresh ID.
func NewAnalysisRun(source string) *AnalysisRun {
	return &AnalysisRun{
		ID:         uuid.NewString(),
		Source:     source,
		AnalyzedAt: time.Now().UTC(),
	}
}

// SetVisualScore records an external visual score and updates the blended score.
// Values outside 0-100 are clamped.
func (r *AnalysisRun) SetVisualScore(visual int) {
	visual = clampPercent(visual)
	r.VisualScore = &visual
	r.updateBlend()
}

// SetResult stores the engine result and refreshes the blended score.
func (r *AnalysisRun) SetResult(result *AnalysisResult) {
	r.Result = result
	r.updateBlend()
}

// Percentage returns the score shown for the run: the blend when a visual
// score is present, otherwise the technical percentage.
func (r *AnalysisRun) Percentage() int {
	if r.BlendedScore != nil {
		return *r.BlendedScore
	}
	if r.Result != nil {
		return r.Result.ScorePercentage
	}
	return 0
}

func (r *AnalysisRun) updateBlend() {
	if r.Result == nil || r.VisualScore == nil {
		r.BlendedScore = nil
		return
	}
	blended := BlendScores(r.Result.ScorePercentage, *r.VisualScore)
	r.BlendedScore = &blended
}

// BlendScores combines a technical and a visual percentage using the
// 60/40 weighting, rounded to the nearest integer.
func BlendScores(technical, visual int) int {
	technical = clampPercent(technical)
	visual = clampPercent(visual)
	return int(math.Round(TechnicalWeight*float64(technical) + VisualWeight*float64(visual)))
}

func clampPercent(v int) int {
	return max(0, min(100, v))
}
