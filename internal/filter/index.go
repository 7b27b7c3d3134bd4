package filter

import (
	"strings"

	"golang.org/x/net/html"

	"github.com/knowledge-engine/pagefilter/internal/document"
)

// Entry is one filterable item of the page
type Entry struct {
	Node     *html.Node // Owned by the page, never modified here
	Position int        // Discovery order within the index

	Values   []string // Normalized values from elements, then attributes
	Sections []string // Normalized titles of the sections containing the item

	Matched bool // Whether the item matches the current query
}

// SearchedValues returns everything a query is matched against
func (e *Entry) SearchedValues() []string {
	values := make([]string, 0, len(e.Values)+len(e.Sections))
	values = append(values, e.Values...)
	return append(values, e.Sections...)
}

// matches reports whether every part occurs in at least one searched value
func (e *Entry) matches(queryParts []string) bool {
	for _, q := range queryParts {
		if !containsAny(e.Values, q) && !containsAny(e.Sections, q) {
			return false
		}
	}
	return true
}

func containsAny(values []string, q string) bool {
	for _, v := range values {
		if strings.Contains(v, q) {
			return true
		}
	}
	return false
}

// Index holds the entries in discovery order and resolves nodes back to them
type Index struct {
	Entries   []*Entry
	positions map[*html.Node]int
}

// NewIndex assigns positions to entries in the given order
func NewIndex(entries []*Entry) *Index {
	ix := &Index{
		Entries:   entries,
		positions: make(map[*html.Node]int, len(entries)),
	}
	for i, e := range entries {
		e.Position = i
		if e.Node != nil {
			ix.positions[e.Node] = i
		}
	}
	return ix
}

// Len returns the number of entries
func (ix *Index) Len() int {
	return len(ix.Entries)
}

// Lookup returns the entry created for node
func (ix *Index) Lookup(node *html.Node) (*Entry, bool) {
	pos, ok := ix.positions[node]
	if !ok {
		return nil, false
	}
	return ix.Entries[pos], true
}

// BuildIndex finds all items below root and extracts their searchable values
func BuildIndex(root *html.Node, sel Selectors) *Index {
	items := document.QueryAll(root, sel.Items)
	entries := make([]*Entry, 0, len(items))

	for _, item := range items {
		var values []string

		for _, el := range document.QueryAll(item, sel.Elements) {
			values = append(values, Normalize(document.Text(el)))
		}

		for _, key := range sel.Attributes {
			if v, ok := document.DataAttr(item, key); ok && v != "" {
				values = append(values, Normalize(v))
			}
		}

		entries = append(entries, &Entry{
			Node:    item,
			Values:  values,
			Matched: true,
		})
	}

	return NewIndex(entries)
}
