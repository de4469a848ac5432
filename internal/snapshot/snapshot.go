package snapshot

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/davidvvliet/PixelPolish-sub000/internal/model"
)

// Format is a snapshot encoding.
type Format string

// Supported formats.
const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatHTML Format = "html"
)

// ParseFormat converts a format name such as "yml" to a Format.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(strings.TrimSpace(name), ".")) {
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "html", "htm":
		return FormatHTML, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, name)
	}
}

// DetectFormat returns the format implied by a file extension.
func DetectFormat(path string) (Format, error) {
	ext := filepath.Ext(path)
	if ext == "" {
		return "", fmt.Errorf("%w: %s has no extension", ErrUnsupportedFormat, path)
	}
	return ParseFormat(ext)
}

// Option configures decoding.
type Option func(*options)

type options struct {
	format  Format
	baseURL string
}

// WithFormat forces a format instead of detecting it from the file name.
func WithFormat(format Format) Option {
	return func(o *options) {
		o.format = format
	}
}

// WithBaseURL sets the page URL for HTML input. Relative links and image
// sources are resolved against it and it becomes the snapshot URL.
func WithBaseURL(baseURL string) Option {
	return func(o *options) {
		o.baseURL = baseURL
	}
}

// LoadFile reads and decodes a snapshot file.
func LoadFile(path string, opts ...Option) (*model.PageSnapshot, error) {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.format == "" {
		format, err := DetectFormat(path)
		if err != nil {
			return nil, err
		}
		opts = append(opts, WithFormat(format))
	}

	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("failed to open snapshot: %w", err)
	}
	defer f.Close() //nolint:errcheck // read-only file

	snap, err := Decode(f, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}
	return snap, nil
}

// Decode reads a snapshot in the configured format (JSON when unset).
// Rectangles that only carry position and size get their edges derived.
func Decode(r io.Reader, opts ...Option) (*model.PageSnapshot, error) {
	o := options{format: FormatJSON}
	for _, opt := range opts {
		opt(&o)
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, ErrEmptySnapshot
	}

	var snap *model.PageSnapshot
	switch o.format {
	case FormatJSON:
		snap = &model.PageSnapshot{}
		if err := json.Unmarshal(data, snap); err != nil {
			return nil, fmt.Errorf("failed to decode JSON snapshot: %w", err)
		}
	case FormatYAML:
		snap = &model.PageSnapshot{}
		if err := yaml.Unmarshal(data, snap); err != nil {
			return nil, fmt.Errorf("failed to decode YAML snapshot: %w", err)
		}
	case FormatHTML:
		snap, err = ParseHTML(bytes.NewReader(data), o.baseURL)
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, o.format)
	}

	normalize(snap)
	return snap, nil
}

// normalize derives missing rectangle edges and ensures non-nil slices.
func normalize(snap *model.PageSnapshot) {
	for i := range snap.Elements {
		r := &snap.Elements[i].BoundingRect
		if r.Right == 0 && r.Bottom == 0 && (r.Width != 0 || r.Height != 0) {
			*r = model.NewRect(r.X, r.Y, r.Width, r.Height)
		}
	}
	if snap.Elements == nil {
		snap.Elements = []model.ElementRecord{}
	}
	s := &snap.Structure
	if s.Headings == nil {
		s.Headings = []model.Heading{}
	}
	if s.Navigation == nil {
		s.Navigation = []model.NavBlock{}
	}
	if s.Forms == nil {
		s.Forms = []model.Form{}
	}
	if s.Images == nil {
		s.Images = []model.Image{}
	}
	if s.Links == nil {
		s.Links = []model.Link{}
	}
}
