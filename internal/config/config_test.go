package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// TestNewConfig verifies that NewConfig returns a Config with all expected default values.
func TestNewConfig(t *testing.T) {
	t.Parallel()

	cfg := NewConfig()

	t.Run("default Timeout is 60 seconds", func(t *testing.T) {
		t.Parallel()
		if cfg.Timeout != 60*time.Second {
			t.Errorf("expected Timeout to be 60s, got %v", cfg.Timeout)
		}
	})

	t.Run("default BatchSize is 4", func(t *testing.T) {
		t.Parallel()
		if cfg.BatchSize != 4 {
			t.Errorf("expected BatchSize to be 4, got %d", cfg.BatchSize)
		}
	})

	t.Run("default MaxOverlapElements is 2000", func(t *testing.T) {
		t.Parallel()
		if cfg.MaxOverlapElements != 2000 {
			t.Errorf("expected MaxOverlapElements to be 2000, got %d", cfg.MaxOverlapElements)
		}
	})

	t.Run("visual score is unset", func(t *testing.T) {
		t.Parallel()
		if cfg.HasVisualScore() {
			t.Errorf("expected no visual score, got %d", cfg.VisualScore)
		}
	})

	t.Run("optional behaviours are off", func(t *testing.T) {
		t.Parallel()
		if cfg.ParallelRules || cfg.DetectOverlaps() || cfg.AlignmentSelfMatching {
			t.Errorf("expected optional behaviours off, got %+v", cfg)
		}
	})

	t.Run("history is saved to the XDG data dir", func(t *testing.T) {
		t.Parallel()
		if !cfg.SaveToDB {
			t.Error("expected SaveToDB to be true")
		}
		if cfg.DBDir != XDGDataDir() {
			t.Errorf("expected DBDir %q, got %q", XDGDataDir(), cfg.DBDir)
		}
	})
}

func TestXDGDirs(t *testing.T) {
	t.Parallel()

	if filepath.Base(XDGDataDir()) != AppName {
		t.Errorf("XDGDataDir() = %q, want suffix %q", XDGDataDir(), AppName)
	}
	if filepath.Base(XDGConfigDir()) != AppName {
		t.Errorf("XDGConfigDir() = %q, want suffix %q", XDGConfigDir(), AppName)
	}
}

// TestConfigValidate tests the Validate method with various configurations.
// Each test case is designed to test one specific validation rule.
func TestConfigValidate(t *testing.T) {
	t.Parallel()

	validConfig := func() *Config {
		cfg := NewConfig()
		cfg.Sources = []string{"snapshot.json"}
		return cfg
	}
	score := func(v int) *int { return &v }

	tests := []struct {
		name   string
		modify func(*Config)
		want   error
	}{
		{name: "valid config returns nil", modify: func(*Config) {}},
		{name: "no sources", modify: func(c *Config) { c.Sources = nil }, want: ErrNoSource},
		{name: "zero timeout", modify: func(c *Config) { c.Timeout = 0 }, want: ErrInvalidTimeout},
		{name: "negative batch size", modify: func(c *Config) { c.BatchSize = -1 }, want: ErrInvalidBatchSize},
		{
			name:   "json and markdown together",
			modify: func(c *Config) { c.JSONReport, c.MarkdownReport = true, true },
			want:   ErrConflictingReportFormats,
		},
		{name: "visual score 0 is valid", modify: func(c *Config) { c.VisualScore = 0 }},
		{name: "visual score 100 is valid", modify: func(c *Config) { c.VisualScore = 100 }},
		{name: "visual score above 100", modify: func(c *Config) { c.VisualScore = 101 }, want: ErrInvalidVisualScore},
		{name: "visual score below -1", modify: func(c *Config) { c.VisualScore = -5 }, want: ErrInvalidVisualScore},
		{
			name:   "negative overlap ceiling",
			modify: func(c *Config) { c.MaxOverlapElements = -1 },
			want:   ErrInvalidMaxOverlapElements,
		},
		{
			name: "profile visual score out of range",
			modify: func(c *Config) {
				c.Profiles.Pages["https://example.com"] = PageProfile{VisualScore: score(120)}
			},
			want: ErrInvalidVisualScore,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := validConfig()
			tt.modify(cfg)
			err := cfg.Validate()
			if tt.want == nil {
				if err != nil {
					t.Errorf("expected nil, got %v", err)
				}
				return
			}
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestLoadConfigFile(t *testing.T) {
	t.Parallel()

	t.Run("missing file returns ErrConfigNotFound", func(t *testing.T) {
		t.Parallel()
		_, err := LoadConfigFile(filepath.Join(t.TempDir(), "nope.yaml"))
		if !errors.Is(err, ErrConfigNotFound) {
			t.Errorf("expected ErrConfigNotFound, got %v", err)
		}
	})

	t.Run("invalid yaml returns error", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), DefaultConfigFile)
		if err := os.WriteFile(path, []byte("engine: [unclosed"), 0o600); err != nil {
			t.Fatal(err)
		}
		if _, err := LoadConfigFile(path); err == nil {
			t.Error("expected error for invalid yaml")
		}
	})

	t.Run("parses engine settings and profiles", func(t *testing.T) {
		t.Parallel()
		content := `engine:
  parallelRules: true
  overlapPenalty: true
  maxOverlapElements: 500
defaults:
  tags: [marketing]
pages:
  https://example.com:
    title: Landing
    visualScore: 80
    tags: [home]
`
		path := filepath.Join(t.TempDir(), DefaultConfigFile)
		if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
			t.Fatal(err)
		}

		cf, err := LoadConfigFile(path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cf.Engine.ParallelRules == nil || !*cf.Engine.ParallelRules {
			t.Error("expected parallelRules true")
		}
		if cf.Engine.OverlapDetection != nil {
			t.Error("expected overlapDetection unset")
		}
		if cf.Engine.MaxOverlapElements != 500 {
			t.Errorf("expected maxOverlapElements 500, got %d", cf.Engine.MaxOverlapElements)
		}

		p := cf.GetPageProfile("https://example.com")
		if p.Title != "Landing" {
			t.Errorf("expected title Landing, got %q", p.Title)
		}
		if p.VisualScore == nil || *p.VisualScore != 80 {
			t.Errorf("expected visual score 80, got %v", p.VisualScore)
		}
		if len(p.Tags) != 2 || p.Tags[0] != "marketing" || p.Tags[1] != "home" {
			t.Errorf("expected merged tags, got %v", p.Tags)
		}
	})

	t.Run("empty file gets a page map", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), DefaultConfigFile)
		if err := os.WriteFile(path, nil, 0o600); err != nil {
			t.Fatal(err)
		}
		cf, err := LoadConfigFile(path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cf.Pages == nil {
			t.Error("expected non-nil Pages")
		}
	})
}

func TestGetPageProfile(t *testing.T) {
	t.Parallel()

	v := 40
	cf := &File{
		Defaults: PageProfile{Title: "Site", VisualScore: &v, Tags: []string{"a"}},
		Pages: map[string]PageProfile{
			"https://example.com/about": {Title: "About"},
		},
	}

	t.Run("unknown page gets defaults", func(t *testing.T) {
		t.Parallel()
		p := cf.GetPageProfile("https://other.example")
		if p.Title != "Site" || p.VisualScore == nil || *p.VisualScore != 40 {
			t.Errorf("unexpected profile %+v", p)
		}
	})

	t.Run("page overrides title and keeps default score", func(t *testing.T) {
		t.Parallel()
		p := cf.GetPageProfile("https://example.com/about")
		if p.Title != "About" {
			t.Errorf("expected About, got %q", p.Title)
		}
		if p.VisualScore == nil || *p.VisualScore != 40 {
			t.Errorf("expected inherited score 40, got %v", p.VisualScore)
		}
	})

	t.Run("merging does not alias default tags", func(t *testing.T) {
		t.Parallel()
		p := cf.GetPageProfile("https://example.com/about")
		p.Tags[0] = "changed"
		if cf.Defaults.Tags[0] != "a" {
			t.Error("default tags were modified")
		}
	})
}

func TestApplyFile(t *testing.T) {
	t.Parallel()

	t.Run("nil file is a no-op", func(t *testing.T) {
		t.Parallel()
		cfg := NewConfig()
		cfg.ApplyFile(nil)
		if cfg.BatchSize != DefaultBatchSize {
			t.Errorf("expected default batch size, got %d", cfg.BatchSize)
		}
	})

	t.Run("set values win and unset values keep defaults", func(t *testing.T) {
		t.Parallel()
		on := true
		cfg := NewConfig()
		cfg.ApplyFile(&File{Engine: EngineSettings{OverlapDetection: &on, BatchSize: 2}})
		if !cfg.OverlapDetection || !cfg.DetectOverlaps() {
			t.Error("expected overlap detection on")
		}
		if cfg.OverlapPenalty {
			t.Error("expected overlap penalty to stay off")
		}
		if cfg.BatchSize != 2 {
			t.Errorf("expected batch size 2, got %d", cfg.BatchSize)
		}
		if cfg.MaxOverlapElements != DefaultMaxOverlapElements {
			t.Errorf("expected default ceiling, got %d", cfg.MaxOverlapElements)
		}
	})

	t.Run("overlap penalty implies detection", func(t *testing.T) {
		t.Parallel()
		on := true
		cfg := NewConfig()
		cfg.ApplyFile(&File{Engine: EngineSettings{OverlapPenalty: &on}})
		if !cfg.DetectOverlaps() {
			t.Error("expected DetectOverlaps with penalty on")
		}
	})
}

func TestFindConfigFile(t *testing.T) {
	t.Parallel()

	t.Run("explicit existing path is returned", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "custom.yaml")
		if err := os.WriteFile(path, []byte("{}"), 0o600); err != nil {
			t.Fatal(err)
		}
		if got := FindConfigFile(path); got != path {
			t.Errorf("expected %q, got %q", path, got)
		}
	})

	t.Run("explicit missing path returns empty", func(t *testing.T) {
		t.Parallel()
		if got := FindConfigFile(filepath.Join(t.TempDir(), "missing")); got != "" {
			t.Errorf("expected empty, got %q", got)
		}
	})
}
