package main

import (
	"bytes"
	"runtime/debug"
	"strings"
	"testing"
)

func TestResolveBuild(t *testing.T) {
	t.Parallel()

	vcsInfo := &debug.BuildInfo{
		GoVersion: "go1.25.0",
		Main:      debug.Module{Version: "v0.3.1"},
		Settings: []debug.BuildSetting{
			{Key: "vcs.revision", Value: "0123456789abcdef"},
			{Key: "vcs.time", Value: "2026-10-01T12:00:00Z"},
			{Key: "vcs.modified", Value: "false"},
		},
	}

	tests := []struct {
		name    string
		info    *debug.BuildInfo
		ldflags [3]string
		want    buildInfo
	}{
		{
			name: "no build info",
			want: buildInfo{Version: develVersion, Commit: unknownField, Date: unknownField},
		},
		{
			name: "build info only",
			info: vcsInfo,
			want: buildInfo{Version: "v0.3.1", Commit: "0123456", Date: "2026-10-01T12:00:00Z", GoVersion: "go1.25.0"},
		},
		{
			name:    "ldflags win",
			info:    vcsInfo,
			ldflags: [3]string{"v1.0.0", "abc", "2026-01-01"},
			want:    buildInfo{Version: "v1.0.0", Commit: "abc", Date: "2026-01-01", GoVersion: "go1.25.0"},
		},
		{
			name: "dirty tree",
			info: &debug.BuildInfo{Settings: []debug.BuildSetting{
				{Key: "vcs.revision", Value: "fedcba9876"},
				{Key: "vcs.modified", Value: "true"},
			}},
			want: buildInfo{Version: develVersion, Commit: "fedcba9-dirty", Date: unknownField, Dirty: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := resolveBuild(tt.info, tt.ldflags[0], tt.ldflags[1], tt.ldflags[2])
			if tt.want.GoVersion == "" {
				// Falls back to the running toolchain.
				if got.GoVersion == "" {
					t.Error("expected a Go version")
				}
				got.GoVersion = ""
			}
			if got != tt.want {
				t.Errorf("expected %+v, got %+v", tt.want, got)
			}
		})
	}
}

func TestNewVersionCmd(t *testing.T) {
	t.Parallel()

	run := func(t *testing.T, args ...string) string {
		t.Helper()
		cmd := NewVersionCmd()
		var buf bytes.Buffer
		cmd.SetOut(&buf)
		cmd.SetArgs(args)
		if err := cmd.Execute(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		return buf.String()
	}

	t.Run("full", func(t *testing.T) {
		t.Parallel()
		out := run(t)
		for _, want := range []string{"pixelpolish version", "commit:", "built:", "go:"} {
			if !strings.Contains(out, want) {
				t.Errorf("expected output to contain %q, got:\n%s", want, out)
			}
		}
	})

	t.Run("short", func(t *testing.T) {
		t.Parallel()
		out := run(t, "--short")
		if strings.TrimSpace(out) != getVersion() {
			t.Errorf("expected %q, got %q", getVersion(), out)
		}
	})
}
