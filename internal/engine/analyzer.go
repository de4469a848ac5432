package engine

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/davidvvliet/PixelPolish-sub000/internal/model"
	"github.com/davidvvliet/PixelPolish-sub000/internal/pattern"
	"github.com/davidvvliet/PixelPolish-sub000/internal/rules"
)

// Analyzer evaluates a fixed, ordered list of rules against snapshots.
// It is safe for concurrent use because neither the analyzer nor its rules
// hold per-call state.
type Analyzer struct {
	// rules is the ordered rule list. Result order follows it.
	rules []rules.Rule

	// logger receives per-rule debug output and rule failures.
	logger *slog.Logger

	// parallel evaluates rules concurrently when true.
	parallel bool

	// patternOpts are passed to pattern.Aggregate.
	patternOpts []pattern.Option
}

// Option configures an Analyzer.
type Option func(*analyzerConfig)

type analyzerConfig struct {
	logger      *slog.Logger
	parallel    bool
	settings    rules.Settings
	custom      []rules.Rule
	customSet   bool
	patternOpts []pattern.Option
}

// WithLogger sets the logger. slog.Default() is used otherwise.
func WithLogger(logger *slog.Logger) Option {
	return func(c *analyzerConfig) {
		c.logger = logger
	}
}

// WithParallel evaluates rules concurrently. Results are identical to a
// sequential run.
func WithParallel(parallel bool) Option {
	return func(c *analyzerConfig) {
		c.parallel = parallel
	}
}

// WithRuleSettings selects optional behaviours of the canonical rules.
func WithRuleSettings(settings rules.Settings) Option {
	return func(c *analyzerConfig) {
		c.settings = settings
	}
}

// WithRules replaces the canonical rule list. WithRules() with no rules
// yields an empty analyzer that Register can fill.
func WithRules(custom ...rules.Rule) Option {
	return func(c *analyzerConfig) {
		c.custom = append([]rules.Rule(nil), custom...)
		c.customSet = true
	}
}

// WithOverlapDetection enables the pairwise overlap pass of the pattern
// aggregator, bounded by maxElements (0 keeps the default ceiling).
func WithOverlapDetection(enabled bool, maxElements int) Option {
	return func(c *analyzerConfig) {
		c.patternOpts = append(c.patternOpts,
			pattern.WithOverlapDetection(enabled),
			pattern.WithMaxOverlapElements(maxElements),
		)
	}
}

// New creates an Analyzer with the canonical rule set unless WithRules is given.
func New(opts ...Option) *Analyzer {
	cfg := analyzerConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}

	a := &Analyzer{
		logger:      cfg.logger,
		parallel:    cfg.parallel,
		patternOpts: cfg.patternOpts,
	}
	if a.logger == nil {
		a.logger = slog.Default()
	}

	ruleList := cfg.custom
	if !cfg.customSet {
		ruleList = rules.Canonical(cfg.settings)
	}
	for _, r := range ruleList {
		a.Register(r)
	}

	return a
}

// Register appends a rule to the evaluation order.
func (a *Analyzer) Register(rule rules.Rule) {
	a.rules = append(a.rules, rule)
}

// RuleNames returns the registered rule names in evaluation order.
func (a *Analyzer) RuleNames() []string {
	names := make([]string, len(a.rules))
	for i, r := range a.rules {
		names[i] = r.Name()
	}
	return names
}

// MaxScore returns the sum of the registered rule caps.
func (a *Analyzer) MaxScore() int {
	total := 0
	for _, r := range a.rules {
		total += r.MaxScore()
	}
	return total
}

// Analyze scores a snapshot. A nil snapshot is analyzed as an empty page.
// The only error is a context error observed before evaluation starts.
func (a *Analyzer) Analyze(ctx context.Context, snapshot *model.PageSnapshot) (*model.AnalysisResult, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	if snapshot == nil {
		snapshot = &model.PageSnapshot{}
	}

	in := &rules.Input{
		Snapshot: snapshot,
		Patterns: pattern.Aggregate(snapshot.Elements, a.patternOpts...),
	}

	results := make([]model.RuleResult, len(a.rules))
	if a.parallel {
		var g errgroup.Group
		for i, r := range a.rules {
			g.Go(func() error {
				results[i] = a.evaluate(r, in)
				return nil
			})
		}
		_ = g.Wait() //nolint:errcheck // evaluate never returns an error to the group
	} else {
		for i, r := range a.rules {
			results[i] = a.evaluate(r, in)
		}
	}

	result := Aggregate(results)
	a.logger.Debug("analysis complete",
		"url", snapshot.URL,
		"elements", len(snapshot.Elements),
		"score", result.Score,
		"max_score", result.MaxScore,
		"issues", result.Summary.TotalIssues,
	)
	return result, nil
}

// evaluate runs one rule, converting errors and panics into a zero-score
// result carrying a system_error issue.
func (a *Analyzer) evaluate(rule rules.Rule, in *rules.Input) (result model.RuleResult) {
	defer func() {
		if rec := recover(); rec != nil {
			a.logger.Error("rule panicked", "rule", rule.Name(), "panic", rec)
			result = failedResult(rule, fmt.Errorf("panic: %v", rec))
		}
	}()

	res, err := rule.Evaluate(in)
	if err != nil {
		a.logger.Error("rule failed", "rule", rule.Name(), "error", err)
		return failedResult(rule, err)
	}

	// The cap is owned by the rule definition, not by what Evaluate reports.
	res.RuleName = rule.Name()
	res.MaxScore = rule.MaxScore()
	res.Score = max(0, min(res.Score, res.MaxScore))
	if res.Issues == nil {
		res.Issues = []model.Issue{}
	}
	if res.Recommendations == nil {
		res.Recommendations = []model.Recommendation{}
	}

	a.logger.Debug("rule evaluated",
		"rule", res.RuleName,
		"score", res.Score,
		"max_score", res.MaxScore,
		"issues", len(res.Issues),
	)
	return res
}

// failedResult is the result recorded for a rule that could not run.
func failedResult(rule rules.Rule, err error) model.RuleResult {
	return model.RuleResult{
		RuleName: rule.Name(),
		Score:    0,
		MaxScore: rule.MaxScore(),
		Issues: []model.Issue{{
			Type:       rules.IssueSystemError,
			Severity:   model.SeverityLow,
			Message:    fmt.Sprintf("Rule %s failed: %v", rule.Name(), err),
			Suggestion: "Check that the snapshot is complete and re-run the analysis",
		}},
		Recommendations: []model.Recommendation{},
	}
}

// Analyze scores a snapshot with the canonical rule set and default options.
func Analyze(snapshot *model.PageSnapshot) *model.AnalysisResult {
	// A background context is never cancelled, so Analyze cannot fail.
	result, _ := New().Analyze(context.Background(), snapshot) //nolint:errcheck // see above
	return result
}
