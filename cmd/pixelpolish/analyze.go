package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/davidvvliet/PixelPolish-sub000/internal/config"
	"github.com/davidvvliet/PixelPolish-sub000/internal/database"
	"github.com/davidvvliet/PixelPolish-sub000/internal/log"
	"github.com/davidvvliet/PixelPolish-sub000/internal/model"
	"github.com/davidvvliet/PixelPolish-sub000/internal/pipeline"
	"github.com/davidvvliet/PixelPolish-sub000/internal/report"
	"github.com/davidvvliet/PixelPolish-sub000/internal/snapshot"
)

// Log formats accepted by --log-format.
const (
	logFormatText = "text"
	logFormatJSON = "json"
)

// errAnalysisFailed is returned when at least one snapshot could not be analyzed.
var errAnalysisFailed = errors.New("analysis failed")

// errBelowThreshold is returned when a page scores under --fail-under.
var errBelowThreshold = errors.New("score below threshold")

// NewAnalyzeCmd creates the analyze command.
func NewAnalyzeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze [snapshot-file...]",
		Short: "Analyze page snapshots and report design quality",
		Long: `Analyze scores one or more page snapshots.

A snapshot is a JSON or YAML document listing the rendered elements of a page
with their bounding boxes and computed styles, as captured by a browser. Plain
HTML files are accepted too; their inline styles and width/height attributes
stand in for computed styles.

Every completed run is saved to the history database unless --no-save is set.

Examples:
  # Analyze a single snapshot
  pixelpolish analyze page.json

  # Analyze several snapshots, four at a time
  pixelpolish analyze -b 4 home.json pricing.json about.json

  # Blend an external visual assessment score (0-100)
  pixelpolish analyze --visual-score 72 page.json

  # Report overlapping elements as performance issues
  pixelpolish analyze --overlap-penalty page.json

  # Write a Markdown report to a file
  pixelpolish analyze -m -o reports/page.md page.json

  # Fail when any page scores below 80%
  pixelpolish analyze --fail-under 80 page.json`,
		Args: cobra.ArbitraryArgs,
		RunE: runAnalyzeCmd,
	}

	// Input flags
	cmd.Flags().String("format", "",
		"Snapshot format (json, yaml, html); detected from the file extension by default")
	cmd.Flags().String("base-url", "",
		"Page URL recorded for HTML snapshots")

	// Engine flags
	cmd.Flags().Bool("parallel-rules", false,
		"Evaluate the rules of each page concurrently")
	cmd.Flags().Bool("overlap", false,
		"Run the pairwise element overlap pass")
	cmd.Flags().Bool("overlap-penalty", false,
		"Report overlapping elements as performance issues (implies --overlap)")
	cmd.Flags().Int("max-overlap-elements", config.DefaultMaxOverlapElements,
		"Skip the overlap pass for pages with more elements than this")
	cmd.Flags().Bool("self-align", false,
		"Let an element's own edges satisfy the alignment check")
	cmd.Flags().Int("visual-score", config.NoVisualScore,
		"Visual assessment score (0-100) blended into every page score")

	// Batch and limits
	cmd.Flags().IntP("batch", "b", config.DefaultBatchSize,
		"Number of snapshots analyzed concurrently")
	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout,
		"Timeout for the whole command")
	cmd.Flags().Int("fail-under", 0,
		"Exit with an error when a page scores below this percentage")

	// Configuration and storage
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .pixelpolish in current or home directory)")
	cmd.Flags().Bool("no-save", false,
		"Do not store runs in the history database")
	cmd.Flags().String("db-dir", "",
		"History database directory (default: XDG data directory)")

	// Report flags
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "",
		"Write report to specified file path (creates directories if needed)")
	cmd.Flags().String("log-format", logFormatText,
		"Log format on stderr (text or json)")

	return cmd
}

// analyzeOptions holds command settings that are not part of config.Config.
type analyzeOptions struct {
	format    snapshot.Format
	failUnder int
	out       io.Writer
}

func runAnalyzeCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	opts := analyzeOptions{out: cmd.OutOrStdout()}
	if name, _ := cmd.Flags().GetString("format"); name != "" {
		if opts.format, err = snapshot.ParseFormat(name); err != nil {
			return fmt.Errorf("configuration error: %w", err)
		}
	}
	if opts.failUnder, err = cmd.Flags().GetInt("fail-under"); err != nil {
		return err
	}

	logger, err := newLogger(cmd, cfg.Verbose)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	return runAnalyze(ctx, cfg, opts, logger)
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// newLogger builds the stderr logger selected by --log-format.
func newLogger(cmd *cobra.Command, verbose bool) (*slog.Logger, error) {
	format, err := cmd.Flags().GetString("log-format")
	if err != nil {
		return nil, err
	}
	switch format {
	case logFormatText:
		return log.NewLogger(cmd.ErrOrStderr(), verbose), nil
	case logFormatJSON:
		return log.NewJSONLogger(cmd.ErrOrStderr(), verbose), nil
	default:
		return nil, fmt.Errorf("unknown log format %q (use text or json)", format)
	}
}

// buildConfig creates a Config from the config file and command flags.
// Flags override file settings only when given explicitly.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()
	cfg.Sources = args
	cfg.Verbose = getVerboseFlag(cmd)

	var err error
	if cfg.ConfigFilePath, err = cmd.Flags().GetString("config"); err != nil {
		return nil, err
	}

	// An explicit path must exist; otherwise a missing file is fine.
	if path := config.FindConfigFile(cfg.ConfigFilePath); path != "" {
		f, err := config.LoadConfigFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
		cfg.ApplyFile(f)
	} else if cfg.ConfigFilePath != "" {
		return nil, fmt.Errorf("%w: %s", config.ErrConfigNotFound, cfg.ConfigFilePath)
	}

	overrides := []error{
		overrideBool(cmd, "parallel-rules", &cfg.ParallelRules),
		overrideBool(cmd, "overlap", &cfg.OverlapDetection),
		overrideBool(cmd, "overlap-penalty", &cfg.OverlapPenalty),
		overrideBool(cmd, "self-align", &cfg.AlignmentSelfMatching),
		overrideInt(cmd, "max-overlap-elements", &cfg.MaxOverlapElements),
		overrideInt(cmd, "visual-score", &cfg.VisualScore),
		overrideInt(cmd, "batch", &cfg.BatchSize),
		overrideString(cmd, "base-url", &cfg.BaseURL),
		overrideString(cmd, "db-dir", &cfg.DBDir),
	}
	if err := errors.Join(overrides...); err != nil {
		return nil, err
	}

	if cfg.Timeout, err = cmd.Flags().GetDuration("timeout"); err != nil {
		return nil, err
	}
	noSave, err := cmd.Flags().GetBool("no-save")
	if err != nil {
		return nil, err
	}
	cfg.SaveToDB = !noSave

	if cfg.JSONReport, err = cmd.Flags().GetBool("json"); err != nil {
		return nil, err
	}
	if cfg.MarkdownReport, err = cmd.Flags().GetBool("markdown"); err != nil {
		return nil, err
	}
	if cfg.ReportFile, err = cmd.Flags().GetString("output"); err != nil {
		return nil, err
	}

	return cfg, nil
}

func overrideBool(cmd *cobra.Command, name string, dst *bool) error {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	v, err := cmd.Flags().GetBool(name)
	if err != nil {
		return err
	}
	*dst = v
	return nil
}

func overrideInt(cmd *cobra.Command, name string, dst *int) error {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	v, err := cmd.Flags().GetInt(name)
	if err != nil {
		return err
	}
	*dst = v
	return nil
}

func overrideString(cmd *cobra.Command, name string, dst *string) error {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	v, err := cmd.Flags().GetString(name)
	if err != nil {
		return err
	}
	*dst = v
	return nil
}

// runAnalyze analyzes every source, writes the report and returns an error
// when any run failed or scored below the threshold.
func runAnalyze(ctx context.Context, cfg *config.Config, opts analyzeOptions, logger *slog.Logger) error {
	logger.Info("starting analysis",
		"sources", len(cfg.Sources),
		"batchSize", cfg.BatchSize,
		"saveToDB", cfg.SaveToDB,
	)

	configOpts := pipeline.ConfigOptions(cfg, logger)
	if opts.format != "" {
		configOpts = append(configOpts,
			pipeline.WithPipelineSnapshotOptions(snapshot.WithFormat(opts.format)))
	}

	if cfg.SaveToDB {
		db, err := database.Open(cfg.DBDir, database.DefaultOptions())
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()
		logger.Debug("database opened", "path", db.Path())
		configOpts = append(configOpts, pipeline.WithPipelineDatabase(db))
	}

	bp := pipeline.NewBatchProcessor(
		func() *pipeline.Pipeline {
			return pipeline.DefaultPipeline([]pipeline.Option{pipeline.WithLogger(logger)}, configOpts...)
		},
		pipeline.WithConcurrency(cfg.BatchSize),
		pipeline.WithBatchLogger(logger),
	)

	runs, batchErr := bp.ProcessBatch(ctx, cfg.Sources)

	if err := outputReport(cfg, runs, opts.out); err != nil {
		return err
	}
	if batchErr != nil {
		return fmt.Errorf("analysis interrupted: %w", batchErr)
	}
	return checkRuns(runs, opts.failUnder)
}

// outputReport writes runs in the configured format to the report file or out.
func outputReport(cfg *config.Config, runs []*model.AnalysisRun, out io.Writer) error {
	if cfg.ReportFile != "" {
		if dir := filepath.Dir(cfg.ReportFile); dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}
		}
		f, err := os.OpenFile(cfg.ReportFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		out = f
	}

	w := newReportWriter(cfg.JSONReport, cfg.MarkdownReport, cfg.Verbose, out)

	var err error
	if len(runs) == 1 && runs[0] != nil {
		_, err = w.Write(runs[0])
	} else {
		_, err = w.WriteBatch(runs)
	}
	if err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

// newReportWriter selects the report format.
func newReportWriter(jsonOutput, markdownOutput, verbose bool, out io.Writer) report.Writer {
	switch {
	case jsonOutput:
		return report.NewFullJSONWriter(out, getVersion(), report.WithPrettyPrint())
	case markdownOutput:
		return report.NewMarkdownWriter(out)
	default:
		return report.NewSimpleWriter(out, report.WithVerbose(verbose))
	}
}

// checkRuns reports failed runs and runs scoring below failUnder percent.
func checkRuns(runs []*model.AnalysisRun, failUnder int) error {
	var (
		failed []string
		errs   []error
	)
	for _, run := range runs {
		switch {
		case run == nil:
			continue
		case run.Result == nil:
			failed = append(failed, run.Source)
		case failUnder > 0 && run.Percentage() < failUnder:
			errs = append(errs, fmt.Errorf("%w: %s scored %d%% (minimum %d%%)",
				errBelowThreshold, run.Source, run.Percentage(), failUnder))
		}
	}
	if len(failed) > 0 {
		errs = append([]error{fmt.Errorf("%w: %d of %d snapshot(s): %v",
			errAnalysisFailed, len(failed), len(runs), failed)}, errs...)
	}
	return errors.Join(errs...)
}
