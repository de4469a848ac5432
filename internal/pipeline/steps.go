package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/davidvvliet/PixelPolish-sub000/internal/config"
	"github.com/davidvvliet/PixelPolish-sub000/internal/database"
	"github.com/davidvvliet/PixelPolish-sub000/internal/engine"
	"github.com/davidvvliet/PixelPolish-sub000/internal/model"
	"github.com/davidvvliet/PixelPolish-sub000/internal/rules"
	"github.com/davidvvliet/PixelPolish-sub000/internal/snapshot"
)

// Step names.
const (
	StepLoad    = "load"
	StepProfile = "profile"
	StepAnalyze = "analyze"
	StepSave    = "save"
)

// LoadStep reads the run's source file into a snapshot and records its
// URL, title, element count and digest.
type LoadStep struct {
	opts   []snapshot.Option
	logger *slog.Logger
}

// LoadStepOption configures a LoadStep.
type LoadStepOption func(*LoadStep)

// WithSnapshotOptions passes decoding options (format, base URL) to the loader.
func WithSnapshotOptions(opts ...snapshot.Option) LoadStepOption {
	return func(s *LoadStep) {
		s.opts = append(s.opts, opts...)
	}
}

// WithLoadLogger sets a custom logger for the load step.
func WithLoadLogger(logger *slog.Logger) LoadStepOption {
	return func(s *LoadStep) {
		s.logger = logger
	}
}

// NewLoadStep creates a new snapshot loading step.
func NewLoadStep(opts ...LoadStepOption) *LoadStep {
	s := &LoadStep{logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name returns the step name.
func (s *LoadStep) Name() string { return StepLoad }

// Do loads the snapshot.
func (s *LoadStep) Do(_ context.Context, run *model.AnalysisRun) error {
	snap, err := snapshot.LoadFile(run.Source, s.opts...)
	if err != nil {
		return err
	}
	digest, err := snapshot.Digest(snap)
	if err != nil {
		return fmt.Errorf("failed to digest snapshot: %w", err)
	}

	run.Snapshot = snap
	run.URL = snap.URL
	run.Title = snap.Title
	run.ElementCount = len(snap.Elements)
	run.Digest = digest

	s.logger.Debug("snapshot loaded",
		"source", run.Source,
		"url", run.URL,
		"elements", run.ElementCount,
	)
	return nil
}

// ProfileStep applies the page profile matching the run's URL: title
// override, tags and visual score. A visual score override, when set,
// takes precedence over any profile score.
type ProfileStep struct {
	profiles       *config.File
	visualOverride *int
}

// ProfileStepOption configures a ProfileStep.
type ProfileStepOption func(*ProfileStep)

// WithVisualScoreOverride applies score to every run regardless of profiles.
func WithVisualScoreOverride(score int) ProfileStepOption {
	return func(s *ProfileStep) {
		s.visualOverride = &score
	}
}

// NewProfileStep creates a profile step. profiles may be nil.
func NewProfileStep(profiles *config.File, opts ...ProfileStepOption) *ProfileStep {
	s := &ProfileStep{profiles: profiles}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name returns the step name.
func (s *ProfileStep) Name() string { return StepProfile }

// Do applies the profile.
func (s *ProfileStep) Do(_ context.Context, run *model.AnalysisRun) error {
	if s.profiles != nil {
		profile := s.profiles.GetPageProfile(run.URL)
		if profile.Title != "" {
			run.Title = profile.Title
		}
		run.Tags = profile.Tags
		if profile.VisualScore != nil {
			run.SetVisualScore(*profile.VisualScore)
		}
	}
	if s.visualOverride != nil {
		run.SetVisualScore(*s.visualOverride)
	}
	return nil
}

// AnalyzeStep runs the rule engine over the loaded snapshot.
type AnalyzeStep struct {
	analyzer *engine.Analyzer
	logger   *slog.Logger
}

// AnalyzeStepOption configures an AnalyzeStep.
type AnalyzeStepOption func(*AnalyzeStep)

// WithAnalyzeLogger sets a custom logger for the analyze step.
func WithAnalyzeLogger(logger *slog.Logger) AnalyzeStepOption {
	return func(s *AnalyzeStep) {
		s.logger = logger
	}
}

// NewAnalyzeStep creates an analyze step. A nil analyzer gets the canonical
// rule set with default options.
func NewAnalyzeStep(analyzer *engine.Analyzer, opts ...AnalyzeStepOption) *AnalyzeStep {
	if analyzer == nil {
		analyzer = engine.New()
	}
	s := &AnalyzeStep{analyzer: analyzer, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name returns the step name.
func (s *AnalyzeStep) Name() string { return StepAnalyze }

// Do analyzes the snapshot and stores the result on the run.
func (s *AnalyzeStep) Do(ctx context.Context, run *model.AnalysisRun) error {
	if run.Snapshot == nil {
		return ErrNoSnapshot
	}
	result, err := s.analyzer.Analyze(ctx, run.Snapshot)
	if err != nil {
		return err
	}
	run.SetResult(result)

	s.logger.Info("analysis completed",
		"url", run.URL,
		"score", result.Score,
		"max_score", result.MaxScore,
		"percentage", result.ScorePercentage,
		"issues", result.Summary.TotalIssues,
	)
	return nil
}

// SaveStep stores the run in the history database.
type SaveStep struct {
	db *database.HistoryDB
}

// NewSaveStep creates a save step writing to db.
func NewSaveStep(db *database.HistoryDB) *SaveStep {
	return &SaveStep{db: db}
}

// Name returns the step name.
func (s *SaveStep) Name() string { return StepSave }

// Do saves the run.
func (s *SaveStep) Do(ctx context.Context, run *model.AnalysisRun) error {
	if run.Result == nil {
		return ErrNoResult
	}
	return s.db.SaveRun(ctx, run)
}

// DefaultPipelineConfig holds the settings used by DefaultPipeline.
type DefaultPipelineConfig struct {
	// SnapshotOptions are passed to the loader.
	SnapshotOptions []snapshot.Option

	// EngineOptions configure the analyzer.
	EngineOptions []engine.Option

	// Profiles are page profiles from the config file; may be nil.
	Profiles *config.File

	// VisualScore, when non-nil, overrides profile visual scores.
	VisualScore *int

	// DB, when non-nil, adds a save step.
	DB *database.HistoryDB
}

// DefaultPipelineOption configures a DefaultPipelineConfig.
type DefaultPipelineOption func(*DefaultPipelineConfig)

// WithPipelineSnapshotOptions sets loader options.
func WithPipelineSnapshotOptions(opts ...snapshot.Option) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.SnapshotOptions = append(c.SnapshotOptions, opts...)
	}
}

// WithPipelineEngineOptions sets analyzer options.
func WithPipelineEngineOptions(opts ...engine.Option) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.EngineOptions = append(c.EngineOptions, opts...)
	}
}

// WithPipelineProfiles sets page profiles.
func WithPipelineProfiles(profiles *config.File) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.Profiles = profiles
	}
}

// WithPipelineVisualScore sets a visual score for every run.
func WithPipelineVisualScore(score int) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.VisualScore = &score
	}
}

// WithPipelineDatabase enables saving runs to db.
func WithPipelineDatabase(db *database.HistoryDB) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.DB = db
	}
}

// ConfigOptions translates a Config into pipeline options: snapshot base
// URL, engine settings, profiles and the visual score override.
func ConfigOptions(cfg *config.Config, logger *slog.Logger) []DefaultPipelineOption {
	engineOpts := []engine.Option{
		engine.WithParallel(cfg.ParallelRules),
		engine.WithRuleSettings(rules.Settings{
			AlignmentSelfMatching: cfg.AlignmentSelfMatching,
			OverlapPenalty:        cfg.OverlapPenalty,
		}),
		engine.WithOverlapDetection(cfg.DetectOverlaps(), cfg.MaxOverlapElements),
	}
	if logger != nil {
		engineOpts = append(engineOpts, engine.WithLogger(logger))
	}

	opts := []DefaultPipelineOption{
		WithPipelineEngineOptions(engineOpts...),
		WithPipelineProfiles(cfg.Profiles),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, WithPipelineSnapshotOptions(snapshot.WithBaseURL(cfg.BaseURL)))
	}
	if cfg.HasVisualScore() {
		opts = append(opts, WithPipelineVisualScore(cfg.VisualScore))
	}
	return opts
}

// DefaultPipeline creates the standard load, profile, analyze (and save)
// pipeline. The first parameter accepts pipeline options (WithLogger, ...),
// the rest configure the steps.
func DefaultPipeline(pipelineOpts []Option, configOpts ...DefaultPipelineOption) *Pipeline {
	p := New(pipelineOpts...)

	cfg := &DefaultPipelineConfig{}
	for _, opt := range configOpts {
		opt(cfg)
	}

	var profileOpts []ProfileStepOption
	if cfg.VisualScore != nil {
		profileOpts = append(profileOpts, WithVisualScoreOverride(*cfg.VisualScore))
	}

	p.AddSteps(
		NewLoadStep(WithSnapshotOptions(cfg.SnapshotOptions...), WithLoadLogger(p.logger)),
		NewProfileStep(cfg.Profiles, profileOpts...),
		NewAnalyzeStep(engine.New(cfg.EngineOptions...), WithAnalyzeLogger(p.logger)),
	)
	if cfg.DB != nil {
		p.AddStep(NewSaveStep(cfg.DB))
	}

	return p
}
