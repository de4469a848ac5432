// Package main provides the entry point for the PixelPolish CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for PixelPolish.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pixelpolish",
		Short: "Design quality analysis for rendered web pages",
		Long: `PixelPolish scores the design quality of a rendered web page.

It reads a page snapshot (the rendered elements with their bounding boxes and
computed styles), runs six heuristic rules over it and reports a score out of
190 together with issues and prioritized recommendations:
- Alignment and grid consistency
- Spacing consistency
- Typography
- Responsiveness
- Accessibility
- Performance

Results are stored in a local history database so that runs of the same page
can be compared over time.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	cmd.AddCommand(NewAnalyzeCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
