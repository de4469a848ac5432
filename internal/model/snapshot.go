package model

import (
	"strings"
	"time"
)

// Rect is an element's rendered rectangle in viewport pixels.
// Edges are stored alongside the size because snapshot providers report
// both and some of them round independently.
type Rect struct {
	X      float64 `json:"x" yaml:"x"`
	Y      float64 `json:"y" yaml:"y"`
	Width  float64 `json:"width" yaml:"width"`
	Height float64 `json:"height" yaml:"height"`
	Top    float64 `json:"top" yaml:"top"`
	Left   float64 `json:"left" yaml:"left"`
	Right  float64 `json:"right" yaml:"right"`
	Bottom float64 `json:"bottom" yaml:"bottom"`
}

// NewRect builds a Rect from position and size, deriving the edges.
func NewRect(x, y, width, height float64) Rect {
	return Rect{
		X:      x,
		Y:      y,
		Width:  width,
		Height: height,
		Top:    y,
		Left:   x,
		Right:  x + width,
		Bottom: y + height,
	}
}

// Intersects reports whether two rectangles overlap with a non-empty area.
// Touching edges do not count as an overlap.
func (r Rect) Intersects(o Rect) bool {
	return !(r.Right <= o.Left || o.Right <= r.Left || r.Bottom <= o.Top || o.Bottom <= r.Top)
}

// ElementRecord is one rendered element as captured by a snapshot provider.
// Records are immutable once the snapshot is built; rules refer to them by
// their position in PageSnapshot.Elements.
type ElementRecord struct {
	// TagName is the element's tag, e.g. "div".
	TagName string `json:"tagName" yaml:"tagName"`

	// ID is the element's id attribute, if any.
	ID string `json:"id,omitempty" yaml:"id,omitempty"`

	// ClassName is the raw class attribute, if any.
	ClassName string `json:"className,omitempty" yaml:"className,omitempty"`

	// TextContent is a truncated preview of the element's text.
	TextContent string `json:"textContent,omitempty" yaml:"textContent,omitempty"`

	// BoundingRect is the element's rendered rectangle.
	BoundingRect Rect `json:"boundingRect" yaml:"boundingRect"`

	// ComputedStyles maps CSS property names to resolved values.
	ComputedStyles map[string]string `json:"computedStyles,omitempty" yaml:"computedStyles,omitempty"`

	// Attributes maps HTML attribute names to values.
	Attributes map[string]string `json:"attributes,omitempty" yaml:"attributes,omitempty"`
}

// Style returns a computed style value, or def when the property is missing or blank.
func (e *ElementRecord) Style(property, def string) string {
	if v, ok := e.ComputedStyles[property]; ok && v != "" {
		return v
	}
	return def
}

// HasText reports whether the element carries visible text.
func (e *ElementRecord) HasText() bool {
	return strings.TrimSpace(e.TextContent) != ""
}

// Label returns a short human-readable identifier such as "div#hero" or "p.lead".
func (e *ElementRecord) Label() string {
	label := e.TagName
	if label == "" {
		label = "element"
	}
	if e.ID != "" {
		return label + "#" + e.ID
	}
	if e.ClassName != "" {
		return label + "." + firstField(e.ClassName)
	}
	return label
}

// firstField returns the first whitespace-separated token of s.
func firstField(s string) string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

// Heading is a heading element in document order.
type Heading struct {
	Level int    `json:"level" yaml:"level"`
	Text  string `json:"text" yaml:"text"`
	ID    string `json:"id,omitempty" yaml:"id,omitempty"`
}

// Image is an image reference with its alternative text.
type Image struct {
	Src    string  `json:"src" yaml:"src"`
	Alt    string  `json:"alt" yaml:"alt"`
	Width  float64 `json:"width" yaml:"width"`
	Height float64 `json:"height" yaml:"height"`
}

// NavBlock is a navigation landmark and the link texts it contains.
type NavBlock struct {
	ID    string   `json:"id,omitempty" yaml:"id,omitempty"`
	Links []string `json:"links,omitempty" yaml:"links,omitempty"`
}

// Form is a form element with its field names.
type Form struct {
	ID     string   `json:"id,omitempty" yaml:"id,omitempty"`
	Action string   `json:"action,omitempty" yaml:"action,omitempty"`
	Method string   `json:"method,omitempty" yaml:"method,omitempty"`
	Fields []string `json:"fields,omitempty" yaml:"fields,omitempty"`
}

// Link is an anchor with its target and text.
type Link struct {
	Href string `json:"href" yaml:"href"`
	Text string `json:"text,omitempty" yaml:"text,omitempty"`
}

// StructuralSummary describes the page outline in document order.
type StructuralSummary struct {
	Headings   []Heading  `json:"headings" yaml:"headings"`
	Navigation []NavBlock `json:"navigation" yaml:"navigation"`
	Forms      []Form     `json:"forms" yaml:"forms"`
	Images     []Image    `json:"images" yaml:"images"`
	Links      []Link     `json:"links" yaml:"links"`
}

// Viewport is the browser viewport size at capture time.
type Viewport struct {
	Width  int `json:"width" yaml:"width"`
	Height int `json:"height" yaml:"height"`
}

// PageSnapshot is the complete element and structure data for one page state.
// It is produced outside this module and treated as read-only.
type PageSnapshot struct {
	URL        string            `json:"url,omitempty" yaml:"url,omitempty"`
	Title      string            `json:"title,omitempty" yaml:"title,omitempty"`
	Viewport   Viewport          `json:"viewport" yaml:"viewport"`
	CapturedAt time.Time         `json:"capturedAt,omitzero" yaml:"capturedAt,omitempty"`
	Elements   []ElementRecord   `json:"elements" yaml:"elements"`
	Structure  StructuralSummary `json:"structure" yaml:"structure"`
}
