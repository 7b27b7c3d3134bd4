package document

import (
	"fmt"
	"strings"

	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
)

// Matcher reports whether a node matches a compiled CSS selector group
type Matcher = cascadia.Matcher

// Compile parses a CSS selector group such as "h2, h3, h4". An empty
// selector compiles to a nil Matcher, meaning the source is absent.
func Compile(selector string) (Matcher, error) {
	selector = strings.TrimSpace(selector)
	if selector == "" {
		return nil, nil
	}
	group, err := cascadia.ParseGroup(selector)
	if err != nil {
		return nil, fmt.Errorf("invalid selector %q: %w", selector, err)
	}
	return group, nil
}

// MustCompile is like Compile but panics on an invalid selector
func MustCompile(selector string) Matcher {
	m, err := Compile(selector)
	if err != nil {
		panic(err)
	}
	return m
}

// QueryAll returns the descendants of n matching m in document order. n
// itself is never included. A nil node or matcher yields no nodes.
func QueryAll(n *html.Node, m Matcher) []*html.Node {
	if n == nil || m == nil {
		return nil
	}
	return cascadia.QueryAll(n, m)
}

// Query returns the first descendant of n matching m, or nil
func Query(n *html.Node, m Matcher) *html.Node {
	if n == nil || m == nil {
		return nil
	}
	return cascadia.Query(n, m)
}
