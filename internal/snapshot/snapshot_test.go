package snapshot

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/davidvvliet/PixelPolish-sub000/internal/model"
)

const jsonSnapshot = `{
  "url": "https://example.com",
  "title": "Example",
  "viewport": {"width": 1280, "height": 800},
  "elements": [
    {
      "tagName": "div",
      "id": "hero",
      "boundingRect": {"x": 10, "y": 20, "width": 300, "height": 100},
      "computedStyles": {"margin": "1px 2px 3px 4px", "display": "flex"}
    }
  ],
  "structure": {
    "headings": [{"level": 1, "text": "Hello"}],
    "images": [{"src": "logo.png", "alt": ""}]
  }
}`

const yamlSnapshot = `url: https://example.com
title: Example
viewport:
  width: 1280
  height: 800
elements:
  - tagName: p
    textContent: Hello
    boundingRect: {x: 0, y: 0, width: 100, height: 20, top: 0, left: 0, right: 100, bottom: 20}
    computedStyles:
      font-size: 16px
structure:
  headings:
    - level: 2
      text: Intro
`

// TestParseFormat tests format name handling.
func TestParseFormat(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		input    string
		expected Format
		wantErr  bool
	}{
		{"json", FormatJSON, false},
		{".JSON", FormatJSON, false},
		{"yml", FormatYAML, false},
		{"yaml", FormatYAML, false},
		{"htm", FormatHTML, false},
		{".html", FormatHTML, false},
		{"png", "", true},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			t.Parallel()
			got, err := ParseFormat(tc.input)
			if tc.wantErr {
				if !errors.Is(err, ErrUnsupportedFormat) {
					t.Errorf("expected ErrUnsupportedFormat, got %v", err)
				}
				return
			}
			if err != nil || got != tc.expected {
				t.Errorf("ParseFormat(%q) = %q, %v", tc.input, got, err)
			}
		})
	}

	if _, err := DetectFormat("snapshot"); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("expected ErrUnsupportedFormat for missing extension, got %v", err)
	}
}

// TestDecode tests decoding each format.
func TestDecode(t *testing.T) {
	t.Parallel()

	t.Run("json derives edges", func(t *testing.T) {
		t.Parallel()

		snap, err := Decode(strings.NewReader(jsonSnapshot))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if snap.URL != "https://example.com" || snap.Viewport.Width != 1280 {
			t.Errorf("unexpected snapshot header: %+v", snap)
		}
		if len(snap.Elements) != 1 {
			t.Fatalf("expected 1 element, got %d", len(snap.Elements))
		}
		r := snap.Elements[0].BoundingRect
		if r.Right != 310 || r.Bottom != 120 || r.Left != 10 || r.Top != 20 {
			t.Errorf("edges not derived: %+v", r)
		}
		if snap.Elements[0].Style("display", "") != "flex" {
			t.Error("computed styles not decoded")
		}
		if snap.Structure.Navigation == nil || snap.Structure.Links == nil {
			t.Error("missing structure lists should be empty, not nil")
		}
	})

	t.Run("yaml", func(t *testing.T) {
		t.Parallel()

		snap, err := Decode(strings.NewReader(yamlSnapshot), WithFormat(FormatYAML))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(snap.Elements) != 1 || snap.Elements[0].TextContent != "Hello" {
			t.Fatalf("unexpected elements: %+v", snap.Elements)
		}
		if snap.Elements[0].BoundingRect.Right != 100 {
			t.Errorf("unexpected rect: %+v", snap.Elements[0].BoundingRect)
		}
		if len(snap.Structure.Headings) != 1 || snap.Structure.Headings[0].Level != 2 {
			t.Errorf("unexpected headings: %+v", snap.Structure.Headings)
		}
	})

	t.Run("empty input", func(t *testing.T) {
		t.Parallel()

		if _, err := Decode(strings.NewReader("  \n")); !errors.Is(err, ErrEmptySnapshot) {
			t.Errorf("expected ErrEmptySnapshot, got %v", err)
		}
	})

	t.Run("invalid json", func(t *testing.T) {
		t.Parallel()

		if _, err := Decode(strings.NewReader("{not json")); err == nil {
			t.Error("expected an error")
		}
	})

	t.Run("unknown format", func(t *testing.T) {
		t.Parallel()

		_, err := Decode(strings.NewReader("{}"), WithFormat(Format("xml")))
		if !errors.Is(err, ErrUnsupportedFormat) {
			t.Errorf("expected ErrUnsupportedFormat, got %v", err)
		}
	})
}

// TestLoadFile tests loading from disk by extension.
func TestLoadFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	jsonPath := filepath.Join(dir, "page.json")
	if err := os.WriteFile(jsonPath, []byte(jsonSnapshot), 0o600); err != nil {
		t.Fatal(err)
	}
	yamlPath := filepath.Join(dir, "page.yml")
	if err := os.WriteFile(yamlPath, []byte(yamlSnapshot), 0o600); err != nil {
		t.Fatal(err)
	}

	snap, err := LoadFile(jsonPath)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if snap.Title != "Example" {
		t.Errorf("unexpected title %q", snap.Title)
	}

	snap, err = LoadFile(yamlPath)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if snap.Elements[0].TagName != "p" {
		t.Errorf("unexpected element %+v", snap.Elements[0])
	}

	if _, err := LoadFile(filepath.Join(dir, "missing.json")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected not-exist error, got %v", err)
	}
	if _, err := LoadFile(filepath.Join(dir, "page.txt")); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("expected ErrUnsupportedFormat, got %v", err)
	}
}

// TestDigest tests snapshot digests.
func TestDigest(t *testing.T) {
	t.Parallel()

	a, err := Decode(strings.NewReader(jsonSnapshot))
	if err != nil {
		t.Fatal(err)
	}
	b, err := Decode(strings.NewReader(jsonSnapshot))
	if err != nil {
		t.Fatal(err)
	}

	da, err := Digest(a)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	db, _ := Digest(b)
	if da != db {
		t.Error("equal snapshots should share a digest")
	}
	if len(da) != 64 {
		t.Errorf("expected 64 hex characters, got %d", len(da))
	}

	b.Elements = append(b.Elements, model.ElementRecord{TagName: "span"})
	dc, _ := Digest(b)
	if dc == da {
		t.Error("changed snapshot should change the digest")
	}
}
