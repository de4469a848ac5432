package snapshot

import (
	"io"
	"net/url"
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html"

	"github.com/davidvvliet/PixelPolish-sub000/internal/model"
)

// maxTextPreview is the number of runes kept in ElementRecord.TextContent.
const maxTextPreview = 100

// HTML element names with special handling.
const (
	htmlElementInput    = "input"
	htmlElementSelect   = "select"
	htmlElementTextarea = "textarea"
)

// skippedElements are never rendered and produce no ElementRecord.
var skippedElements = map[string]bool{
	"html":     true,
	"head":     true,
	"body":     true,
	"title":    true,
	"meta":     true,
	"link":     true,
	"script":   true,
	"style":    true,
	"noscript": true,
	"template": true,
	"base":     true,
}

// htmlParser turns a static document into a snapshot. Layout is unknown,
// so every BoundingRect is zero and ComputedStyles holds inline styles only.
type htmlParser struct {
	baseURL *url.URL
	snap    *model.PageSnapshot
}

// ParseHTML builds a snapshot from an HTML document. baseURL may be empty.
func ParseHTML(r io.Reader, baseURL string) (*model.PageSnapshot, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, err
	}

	doc, err := html.Parse(r)
	if err != nil {
		return nil, err
	}

	p := &htmlParser{
		baseURL: base,
		snap: &model.PageSnapshot{
			URL:      baseURL,
			Elements: make([]model.ElementRecord, 0),
		},
	}

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			if n.Data == "template" {
				return
			}
			p.processElement(n)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return p.snap, nil
}

func (p *htmlParser) processElement(n *html.Node) {
	s := &p.snap.Structure

	switch n.Data {
	case "title":
		if p.snap.Title == "" {
			p.snap.Title = textOf(n)
		}
	case "h1", "h2", "h3", "h4", "h5", "h6":
		level, _ := strconv.Atoi(n.Data[1:]) //nolint:errcheck // always a digit
		s.Headings = append(s.Headings, model.Heading{
			Level: level,
			Text:  textOf(n),
			ID:    getAttr(n, "id"),
		})
	case "nav":
		s.Navigation = append(s.Navigation, p.navBlock(n))
	case "form":
		form := model.Form{
			ID:     getAttr(n, "id"),
			Action: p.resolveURL(getAttr(n, "action")),
			Method: strings.ToUpper(getAttr(n, "method")),
			Fields: make([]string, 0),
		}
		if form.Method == "" {
			form.Method = "GET"
		}
		extractFormFields(n, &form)
		s.Forms = append(s.Forms, form)
	case "img":
		// A missing alt attribute and an empty one are treated alike.
		s.Images = append(s.Images, model.Image{
			Src:    p.resolveURL(getAttr(n, "src")),
			Alt:    getAttr(n, "alt"),
			Width:  parseDimension(getAttr(n, "width")),
			Height: parseDimension(getAttr(n, "height")),
		})
	case "a":
		if href := p.resolveURL(getAttr(n, "href")); href != "" {
			s.Links = append(s.Links, model.Link{Href: href, Text: textOf(n)})
		}
	}

	if skippedElements[n.Data] {
		return
	}
	p.snap.Elements = append(p.snap.Elements, elementRecord(n))
}

func (p *htmlParser) navBlock(n *html.Node) model.NavBlock {
	block := model.NavBlock{ID: getAttr(n, "id"), Links: make([]string, 0)}
	var walk func(*html.Node)
	walk = func(c *html.Node) {
		if c.Type == html.ElementNode && c.Data == "a" {
			if text := textOf(c); text != "" {
				block.Links = append(block.Links, text)
			}
			return
		}
		for child := c.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(n)
	return block
}

// elementRecord converts an element node. The style attribute is parsed
// into ComputedStyles; all attributes are kept verbatim.
func elementRecord(n *html.Node) model.ElementRecord {
	rec := model.ElementRecord{
		TagName:     n.Data,
		ID:          getAttr(n, "id"),
		ClassName:   getAttr(n, "class"),
		TextContent: truncate(textOf(n), maxTextPreview),
	}
	if len(n.Attr) > 0 {
		rec.Attributes = make(map[string]string, len(n.Attr))
		for _, attr := range n.Attr {
			rec.Attributes[attr.Key] = attr.Val
		}
	}
	if style := getAttr(n, "style"); style != "" {
		rec.ComputedStyles = ParseInlineStyle(style)
	}
	return rec
}

// ParseInlineStyle parses a style attribute such as "margin: 0 auto; color: red"
// into a property map. Property names are lowercased; later declarations win.
func ParseInlineStyle(style string) map[string]string {
	styles := make(map[string]string)
	for _, decl := range strings.Split(style, ";") {
		name, value, ok := strings.Cut(decl, ":")
		if !ok {
			continue
		}
		name = strings.ToLower(strings.TrimSpace(name))
		value = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(value), "!important"))
		if name == "" || value == "" {
			continue
		}
		styles[name] = value
	}
	return styles
}

// extractFormFields recursively collects named form controls.
func extractFormFields(n *html.Node, form *model.Form) {
	if n.Type == html.ElementNode &&
		(n.Data == htmlElementInput || n.Data == htmlElementSelect || n.Data == htmlElementTextarea) {
		if name := getAttr(n, "name"); name != "" {
			form.Fields = append(form.Fields, name)
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		extractFormFields(c, form)
	}
}

// resolveURL resolves a relative URL against the base URL. Script, mail and
// fragment-only links resolve to "".
func (p *htmlParser) resolveURL(href string) string {
	href = strings.TrimSpace(href)
	if href == "" || href == "#" ||
		strings.HasPrefix(href, "javascript:") ||
		strings.HasPrefix(href, "mailto:") ||
		strings.HasPrefix(href, "tel:") {
		return ""
	}
	if strings.HasPrefix(href, "data:") {
		return href
	}
	u, err := url.Parse(href)
	if err != nil {
		return ""
	}
	return p.baseURL.ResolveReference(u).String()
}

// textOf returns the element's descendant text with whitespace collapsed.
func textOf(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(c *html.Node) {
		switch {
		case c.Type == html.TextNode:
			b.WriteString(c.Data)
			b.WriteByte(' ')
		case c.Type == html.ElementNode && (c.Data == "script" || c.Data == "style"):
			return
		}
		for child := c.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(n)
	return strings.Join(strings.Fields(b.String()), " ")
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n])
}

// parseDimension reads an HTML width/height attribute such as "120" or "120px".
func parseDimension(v string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSuffix(strings.TrimSpace(v), "px"), 64)
	if err != nil {
		return 0
	}
	return f
}

// getAttr retrieves an attribute value from an HTML node.
func getAttr(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}
