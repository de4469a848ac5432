package log

import (
	"context"
	"io"
	"log/slog"
	"net/url"
	"strings"
	"unicode/utf8"
)

// MaskValue replaces credential-like query parameter values.
const MaskValue = "***"

// MaxValueLength is the number of runes a string attribute may have before
// it is truncated.
const MaxValueLength = 200

// credentialParams are query parameter names whose values are masked.
var credentialParams = map[string]bool{
	"token":         true,
	"access_token":  true,
	"refresh_token": true,
	"auth":          true,
	"key":           true,
	"api_key":       true,
	"apikey":        true,
	"signature":     true,
	"sig":           true,
	"session":       true,
	"sessionid":     true,
	"sid":           true,
	"password":      true,
	"secret":        true,
}

// Handler wraps an slog.Handler and rewrites string attributes before they
// reach it: URLs lose credential query values, data: URIs collapse to their
// media type and long text is truncated.
type Handler struct {
	handler   slog.Handler
	maxLength int
}

// NewHandler creates a Handler wrapping handler.
// If handler is nil, slog.Default().Handler() is used.
func NewHandler(handler slog.Handler) *Handler {
	if handler == nil {
		handler = slog.Default().Handler()
	}
	return &Handler{handler: handler, maxLength: MaxValueLength}
}

// Enabled delegates to the underlying handler.
func (h *Handler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

// Handle rewrites the record's attributes and passes it on.
func (h *Handler) Handle(ctx context.Context, r slog.Record) error {
	cleaned := slog.NewRecord(r.Time, r.Level, r.Message, r.PC)
	r.Attrs(func(a slog.Attr) bool {
		cleaned.AddAttrs(h.cleanAttr(a))
		return true
	})
	return h.handler.Handle(ctx, cleaned)
}

// WithAttrs returns a new handler with the cleaned attributes added.
func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	cleaned := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		cleaned[i] = h.cleanAttr(a)
	}
	return &Handler{handler: h.handler.WithAttrs(cleaned), maxLength: h.maxLength}
}

// WithGroup returns a new handler with the given group name.
func (h *Handler) WithGroup(name string) slog.Handler {
	return &Handler{handler: h.handler.WithGroup(name), maxLength: h.maxLength}
}

func (h *Handler) cleanAttr(a slog.Attr) slog.Attr {
	if a.Value.Kind() == slog.KindGroup {
		attrs := a.Value.Group()
		cleaned := make([]slog.Attr, len(attrs))
		for i, ga := range attrs {
			cleaned[i] = h.cleanAttr(ga)
		}
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(cleaned...)}
	}
	if a.Value.Kind() != slog.KindString {
		return a
	}
	return slog.String(a.Key, h.cleanString(a.Value.String()))
}

func (h *Handler) cleanString(s string) string {
	switch {
	case strings.HasPrefix(s, "data:"):
		mediaType, _, _ := strings.Cut(strings.TrimPrefix(s, "data:"), ",")
		return "data:" + mediaType + ",..."
	case strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://"):
		s = MaskURL(s)
	}
	return Truncate(s, h.maxLength)
}

// MaskURL replaces the values of credential-like query parameters with
// MaskValue. Unparseable input is returned unchanged.
func MaskURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.RawQuery == "" {
		return raw
	}
	q := u.Query()
	changed := false
	for name, values := range q {
		if !credentialParams[strings.ToLower(name)] {
			continue
		}
		for i := range values {
			values[i] = MaskValue
		}
		changed = true
	}
	if !changed {
		return raw
	}
	u.RawQuery = q.Encode()
	return u.String()
}

// Truncate shortens s to at most n runes, marking the cut with "...".
func Truncate(s string, n int) string {
	if n <= 0 || utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n]) + "..."
}

// NewLogger creates a text logger using Handler.
// verbose selects Debug level; otherwise Warn.
func NewLogger(w io.Writer, verbose bool) *slog.Logger {
	return slog.New(NewHandler(slog.NewTextHandler(w, handlerOptions(verbose))))
}

// NewJSONLogger creates a JSON logger using Handler. Useful for structured
// log aggregation.
func NewJSONLogger(w io.Writer, verbose bool) *slog.Logger {
	return slog.New(NewHandler(slog.NewJSONHandler(w, handlerOptions(verbose))))
}

func handlerOptions(verbose bool) *slog.HandlerOptions {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return &slog.HandlerOptions{Level: level}
}
