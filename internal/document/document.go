package document

import (
	"bytes"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	gmhtml "github.com/yuin/goldmark/renderer/html"
	"golang.org/x/net/html"
)

// Document is a parsed page ready to be indexed
type Document struct {
	Root    *html.Node
	BaseURL string // Used to resolve relative links, empty if unknown
}

// Parse reads an HTML document
func Parse(r io.Reader) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	return &Document{Root: root}, nil
}

// ParseMarkdown renders Markdown to HTML and parses the result. Raw HTML in
// the source is kept so pages can carry their own item and section markup.
func ParseMarkdown(src []byte) (*Document, error) {
	md := goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithParserOptions(parser.WithAutoHeadingID()),
		goldmark.WithRendererOptions(gmhtml.WithUnsafe()),
	)

	var buf bytes.Buffer
	if err := md.Convert(src, &buf); err != nil {
		return nil, fmt.Errorf("render markdown: %w", err)
	}
	return Parse(&buf)
}

// Title returns the text of the first <title> element, if any
func (d *Document) Title() string {
	var find func(*html.Node) string
	find = func(n *html.Node) string {
		if n.Type == html.ElementNode && n.Data == "title" {
			return Text(n)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if t := find(c); t != "" {
				return t
			}
		}
		return ""
	}
	return find(d.Root)
}

// ResolveLink resolves href against baseURL. Hrefs that cannot be resolved
// (no base, script links, malformed) are returned trimmed as-is.
func ResolveLink(href, baseURL string) string {
	href = strings.TrimSpace(href)
	if href == "" || baseURL == "" || strings.HasPrefix(strings.ToLower(href), "javascript:") {
		return href
	}

	base, err := url.Parse(baseURL)
	if err != nil {
		return href
	}

	ref, err := url.Parse(href)
	if err != nil {
		return href
	}

	return base.ResolveReference(ref).String()
}
