package log

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestMaskURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "no query is unchanged", in: "https://example.com/a", want: "https://example.com/a"},
		{name: "harmless query is unchanged", in: "https://example.com/?page=2", want: "https://example.com/?page=2"},
		{name: "token is masked", in: "https://example.com/?token=abc", want: "https://example.com/?token=%2A%2A%2A"},
		{
			name: "only credential params are masked",
			in:   "https://example.com/?page=2&API_KEY=xyz",
			want: "https://example.com/?API_KEY=%2A%2A%2A&page=2",
		},
		{name: "unparseable input is unchanged", in: "https://exa mple.com/%zz", want: "https://exa mple.com/%zz"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := MaskURL(tt.in); got != tt.want {
				t.Errorf("MaskURL(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestTruncate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		n    int
		want string
	}{
		{name: "short string", in: "hello", n: 10, want: "hello"},
		{name: "exact length", in: "hello", n: 5, want: "hello"},
		{name: "cut", in: "hello world", n: 5, want: "hello..."},
		{name: "runes not bytes", in: "ピクセルポリッシュ", n: 4, want: "ピクセル..."},
		{name: "non-positive limit disables", in: "hello", n: 0, want: "hello"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := Truncate(tt.in, tt.n); got != tt.want {
				t.Errorf("Truncate(%q, %d) = %q, want %q", tt.in, tt.n, got, tt.want)
			}
		})
	}
}

func TestHandler_CleansAttributes(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := NewJSONLogger(&buf, true)
	logger.Info("loaded",
		"url", "https://example.com/?session=s1",
		"src", "data:image/png;base64,AAAA",
		"text", strings.Repeat("x", MaxValueLength+50),
		"elements", 12,
	)

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("invalid JSON output: %v", err)
	}
	if got := entry["url"]; got != "https://example.com/?session=%2A%2A%2A" {
		t.Errorf("url = %v", got)
	}
	if got := entry["src"]; got != "data:image/png;base64,..." {
		t.Errorf("src = %v", got)
	}
	if got, _ := entry["text"].(string); len(got) != MaxValueLength+3 {
		t.Errorf("text length = %d, want %d", len(got), MaxValueLength+3)
	}
	if got := entry["elements"]; got != float64(12) {
		t.Errorf("elements = %v", got)
	}
}

func TestHandler_LogLevels(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		verbose   bool
		level     slog.Level
		wantInLog bool
	}{
		{name: "verbose logs debug", verbose: true, level: slog.LevelDebug, wantInLog: true},
		{name: "quiet drops info", verbose: false, level: slog.LevelInfo, wantInLog: false},
		{name: "quiet keeps warn", verbose: false, level: slog.LevelWarn, wantInLog: true},
		{name: "quiet keeps error", verbose: false, level: slog.LevelError, wantInLog: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var buf bytes.Buffer
			logger := NewLogger(&buf, tt.verbose)
			logger.Log(t.Context(), tt.level, "probe")
			if got := strings.Contains(buf.String(), "probe"); got != tt.wantInLog {
				t.Errorf("logged = %v, want %v (output %q)", got, tt.wantInLog, buf.String())
			}
		})
	}
}

func TestHandler_WithAttrsAndGroup(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := NewLogger(&buf, true).
		With("url", "https://example.com/?token=abc").
		WithGroup("rule")
	logger.Info("done", "source", "https://example.com/?sig=zzz")

	out := buf.String()
	if strings.Contains(out, "abc") || strings.Contains(out, "zzz") {
		t.Errorf("credential leaked: %s", out)
	}
	if !strings.Contains(out, "rule.source=") {
		t.Errorf("expected grouped key, got %s", out)
	}
}

func TestNewHandler_NilHandler(t *testing.T) {
	t.Parallel()

	if h := NewHandler(nil); h.handler == nil {
		t.Error("expected default handler")
	}
}
