package main

import (
	"fmt"
	"io"
	"runtime"
	"runtime/debug"

	"github.com/spf13/cobra"
)

// Overridden at link time, e.g. -ldflags "-X main.version=v1.2.0".
var (
	version = ""
	commit  = ""
	date    = ""
)

const (
	develVersion  = "(devel)"
	unknownField  = "unknown"
	shortRevision = 7
)

// buildInfo describes the running binary.
type buildInfo struct {
	Version   string
	Commit    string
	Date      string
	GoVersion string
	Dirty     bool
}

// currentBuild merges link-time values with the module build info.
func currentBuild() buildInfo {
	info, _ := debug.ReadBuildInfo()
	return resolveBuild(info, version, commit, date)
}

// resolveBuild fills every field, preferring link-time values over info.
// info may be nil.
func resolveBuild(info *debug.BuildInfo, ldVersion, ldCommit, ldDate string) buildInfo {
	b := buildInfo{
		Version:   ldVersion,
		Commit:    ldCommit,
		Date:      ldDate,
		GoVersion: runtime.Version(),
	}

	if info != nil {
		if b.Version == "" && info.Main.Version != "" {
			b.Version = info.Main.Version
		}
		if info.GoVersion != "" {
			b.GoVersion = info.GoVersion
		}
		for _, s := range info.Settings {
			switch s.Key {
			case "vcs.revision":
				if b.Commit == "" {
					b.Commit = s.Value
				}
			case "vcs.time":
				if b.Date == "" {
					b.Date = s.Value
				}
			case "vcs.modified":
				b.Dirty = s.Value == "true"
			}
		}
	}

	if b.Version == "" {
		b.Version = develVersion
	}
	if len(b.Commit) > shortRevision {
		b.Commit = b.Commit[:shortRevision]
	}
	if b.Commit == "" {
		b.Commit = unknownField
	} else if b.Dirty {
		b.Commit += "-dirty"
	}
	if b.Date == "" {
		b.Date = unknownField
	}
	return b
}

// getVersion returns the version reported by --version and JSON reports.
func getVersion() string {
	return currentBuild().Version
}

func (b buildInfo) write(out io.Writer, short bool) {
	if short {
		fmt.Fprintln(out, b.Version)
		return
	}
	fmt.Fprintf(out, "pixelpolish version %s\n", b.Version)
	fmt.Fprintf(out, "  commit: %s\n", b.Commit)
	fmt.Fprintf(out, "  built:  %s\n", b.Date)
	fmt.Fprintf(out, "  go:     %s\n", b.GoVersion)
}

// NewVersionCmd creates the version command.
func NewVersionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Long:  `Print the version, commit hash, build date and Go toolchain of pixelpolish.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			short, err := cmd.Flags().GetBool("short")
			if err != nil {
				return err
			}
			currentBuild().write(cmd.OutOrStdout(), short)
			return nil
		},
	}
	cmd.Flags().BoolP("short", "s", false, "Print the version number only")
	return cmd
}
