package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/davidvvliet/PixelPolish-sub000/internal/config"
	"github.com/davidvvliet/PixelPolish-sub000/internal/database"
	"github.com/davidvvliet/PixelPolish-sub000/internal/log"
	"github.com/davidvvliet/PixelPolish-sub000/internal/model"
)

// historyDateLayout formats run timestamps in listings.
const historyDateLayout = "2006-01-02 15:04:05"

// maxListedTitle bounds the title column of run listings.
const maxListedTitle = 30

// NewHistoryCmd creates the history command and its subcommands.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Browse and compare stored analysis runs",
		Long: `History works with the runs saved by 'pixelpolish analyze'.

Examples:
  # List every analyzed page
  pixelpolish history urls

  # List the ten latest runs of a page
  pixelpolish history list -n 10 https://example.com/

  # Show a stored run as Markdown
  pixelpolish history show -m 3f2c9a1e-...

  # Compare the latest two runs of a page
  pixelpolish history compare https://example.com/

  # Compare two specific runs
  pixelpolish history compare <old-run-id> <new-run-id>

  # Delete a run
  pixelpolish history delete <run-id>`,
	}

	cmd.PersistentFlags().String("db-dir", "",
		"History database directory (default: XDG data directory)")

	cmd.AddCommand(newHistoryURLsCmd())
	cmd.AddCommand(newHistoryListCmd())
	cmd.AddCommand(newHistoryShowCmd())
	cmd.AddCommand(newHistoryCompareCmd())
	cmd.AddCommand(newHistoryDeleteCmd())

	return cmd
}

// addFormatFlags adds --json and --markdown to a history subcommand.
func addFormatFlags(cmd *cobra.Command) {
	cmd.Flags().BoolP("json", "j", false,
		"Output in JSON format (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output in Markdown format (mutually exclusive with --json)")
	cmd.MarkFlagsMutuallyExclusive("json", "markdown")
}

// openHistoryDB opens the database named by --db-dir.
func openHistoryDB(cmd *cobra.Command) (*database.HistoryDB, error) {
	dbDir, err := cmd.Flags().GetString("db-dir")
	if err != nil {
		return nil, err
	}
	if dbDir == "" {
		dbDir = config.XDGDataDir()
	}
	db, err := database.Open(dbDir, database.DefaultOptions())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return db, nil
}

// withHistoryDB opens the database, runs fn and closes the database.
func withHistoryDB(cmd *cobra.Command, fn func(ctx context.Context, db *database.HistoryDB) error) error {
	db, err := openHistoryDB(cmd)
	if err != nil {
		return err
	}
	defer db.Close()
	return fn(cmd.Context(), db)
}

func newHistoryURLsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "urls",
		Short: "List every analyzed page URL",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withHistoryDB(cmd, func(ctx context.Context, db *database.HistoryDB) error {
				urls, err := db.ListURLs(ctx)
				if err != nil {
					return fmt.Errorf("failed to list pages: %w", err)
				}
				writeURLList(cmd.OutOrStdout(), urls)
				return nil
			})
		},
	}
}

func writeURLList(out io.Writer, urls []string) {
	if len(urls) == 0 {
		fmt.Fprintln(out, "No analyzed pages found in the database.")
		fmt.Fprintln(out, "\nUse 'pixelpolish analyze <snapshot>' to analyze a page.")
		return
	}
	fmt.Fprintf(out, "Analyzed pages (%d):\n\n", len(urls))
	for _, url := range urls {
		if url == "" {
			url = "(no url)"
		}
		fmt.Fprintf(out, "  • %s\n", url)
	}
	fmt.Fprintln(out, "\nUse 'pixelpolish history list <url>' to see the runs of a page.")
}

func newHistoryListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list [url]",
		Short: "List stored runs, newest first",
		Long:  `List stored runs, newest first. Without a URL, runs of every page are listed.`,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			limit, err := cmd.Flags().GetInt("limit")
			if err != nil {
				return err
			}
			var url string
			if len(args) == 1 {
				url = args[0]
			}
			return withHistoryDB(cmd, func(ctx context.Context, db *database.HistoryDB) error {
				runs, err := db.History(ctx, url, limit)
				if err != nil {
					return err
				}
				writeRunList(cmd.OutOrStdout(), url, runs)
				return nil
			})
		},
	}
	cmd.Flags().IntP("limit", "n", 20, "Maximum number of runs to list (0 for all)")
	return cmd
}

func writeRunList(out io.Writer, url string, runs []database.RunMetadata) {
	if len(runs) == 0 {
		if url != "" {
			fmt.Fprintf(out, "No runs found for %s\n", url)
		} else {
			fmt.Fprintln(out, "No runs found in the database.")
		}
		return
	}

	if url != "" {
		fmt.Fprintf(out, "Runs for %s (%d):\n\n", url, len(runs))
	} else {
		fmt.Fprintf(out, "Runs (%d):\n\n", len(runs))
	}
	fmt.Fprintf(out, "  %-36s  %-19s  %-6s  %-15s  %s\n", "ID", "Date", "Score", "Issues", "Page")
	fmt.Fprintln(out, "  "+strings.Repeat("-", 100))

	for _, meta := range runs {
		page := meta.Title
		if page == "" {
			page = meta.URL
		}
		if page == "" {
			page = meta.Source
		}
		fmt.Fprintf(out, "  %-36s  %-19s  %-6s  %-15s  %s\n",
			meta.ID,
			meta.Timestamp.Local().Format(historyDateLayout),
			formatScore(meta),
			formatSeverityCounts(meta.SeverityCounts),
			log.Truncate(page, maxListedTitle),
		)
	}

	fmt.Fprintln(out, "\nUse 'pixelpolish history compare <url>' to compare the latest two runs.")
}

// formatScore prints the blended score when present, otherwise the technical one.
func formatScore(meta database.RunMetadata) string {
	if meta.BlendedScore != nil {
		return fmt.Sprintf("%d%%*", *meta.BlendedScore)
	}
	return fmt.Sprintf("%d%%", meta.ScorePercentage)
}

// formatSeverityCounts renders counts as "C:1 H:2 M:0 L:3", skipping zeros.
func formatSeverityCounts(counts map[string]int) string {
	var parts []string
	for _, s := range model.Severities {
		if n := counts[s.String()]; n > 0 {
			parts = append(parts, fmt.Sprintf("%s:%d", strings.ToUpper(s.String()[:1]), n))
		}
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, " ")
}

func newHistoryShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <run-id>",
		Short: "Show the full report of a stored run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOutput, markdownOutput, err := formatFlags(cmd)
			if err != nil {
				return err
			}
			return withHistoryDB(cmd, func(ctx context.Context, db *database.HistoryDB) error {
				run, err := db.GetRun(ctx, args[0])
				if err != nil {
					return fmt.Errorf("failed to load run %s: %w", args[0], err)
				}
				w := newReportWriter(jsonOutput, markdownOutput, getVerboseFlag(cmd), cmd.OutOrStdout())
				_, err = w.Write(run)
				return err
			})
		},
	}
	addFormatFlags(cmd)
	return cmd
}

func newHistoryCompareCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare <url> | <old-run-id> <new-run-id>",
		Short: "Compare two stored runs",
		Long: `Compare shows the score change, per-rule deltas and new or resolved issue
types between two runs.

With one argument, the latest two runs of that page URL are compared.
With two arguments, the runs with those IDs are compared.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOutput, markdownOutput, err := formatFlags(cmd)
			if err != nil {
				return err
			}
			return withHistoryDB(cmd, func(ctx context.Context, db *database.HistoryDB) error {
				comparison, err := resolveComparison(ctx, db, args)
				if err != nil {
					return err
				}
				w := newReportWriter(jsonOutput, markdownOutput, getVerboseFlag(cmd), cmd.OutOrStdout())
				_, err = w.WriteComparison(comparison)
				return err
			})
		},
	}
	addFormatFlags(cmd)
	return cmd
}

// resolveComparison compares two run IDs, or the latest two runs of a URL.
func resolveComparison(ctx context.Context, db *database.HistoryDB, args []string) (*database.Comparison, error) {
	if len(args) == 2 {
		return db.Compare(ctx, args[0], args[1])
	}

	url := args[0]
	runs, err := db.History(ctx, url, 2)
	if err != nil {
		return nil, err
	}
	if len(runs) < 2 {
		return nil, fmt.Errorf("at least 2 runs are required for comparison (found %d for %s)", len(runs), url)
	}
	// History is newest first.
	return db.Compare(ctx, runs[1].ID, runs[0].ID)
}

func newHistoryDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <run-id>...",
		Short: "Delete stored runs",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withHistoryDB(cmd, func(ctx context.Context, db *database.HistoryDB) error {
				var errs []error
				for _, id := range args {
					if err := db.DeleteRun(ctx, id); err != nil {
						errs = append(errs, fmt.Errorf("run %s: %w", id, err))
						continue
					}
					fmt.Fprintf(cmd.OutOrStdout(), "Deleted run %s\n", id)
				}
				return errors.Join(errs...)
			})
		},
	}
}

func formatFlags(cmd *cobra.Command) (jsonOutput, markdownOutput bool, err error) {
	if jsonOutput, err = cmd.Flags().GetBool("json"); err != nil {
		return false, false, err
	}
	if markdownOutput, err = cmd.Flags().GetBool("markdown"); err != nil {
		return false, false, err
	}
	return jsonOutput, markdownOutput, nil
}
