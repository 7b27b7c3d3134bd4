package filter

import (
	"golang.org/x/net/html"

	"github.com/knowledge-engine/pagefilter/internal/document"
)

// Section groups the items found inside a section container
type Section struct {
	Node     *html.Node
	Position int
	Title    string // Raw title text, empty when the section has no heading
	Items    []*Entry
}

// Matched reports whether any item of the section matches. A section
// without items never matches.
func (s *Section) Matched() bool {
	for _, item := range s.Items {
		if item.Matched {
			return true
		}
	}
	return false
}

// FindSectionTitle returns the text of the first heading in section,
// preferring an explicit title element nested in that heading.
func FindSectionTitle(section *html.Node, headings, explicit document.Matcher) (string, bool) {
	heading := document.Query(section, headings)
	if heading == nil {
		return "", false
	}
	if el := document.Query(heading, explicit); el != nil {
		heading = el
	}
	return document.Text(heading), true
}

// BuildSections finds all sections below root, links them to their items and
// adds the section title to the searchable values of each contained item.
func BuildSections(root *html.Node, sel Selectors, index *Index) []*Section {
	var sections []*Section

	for _, node := range document.QueryAll(root, sel.Sections) {
		title, _ := FindSectionTitle(node, sel.Headings, sel.ExplicitTitle)
		normalized := Normalize(title)

		section := &Section{Node: node, Position: len(sections), Title: title}
		for _, item := range document.QueryAll(node, sel.Items) {
			entry, ok := index.Lookup(item)
			if !ok {
				continue
			}
			section.Items = append(section.Items, entry)
			if normalized != "" {
				entry.Sections = append(entry.Sections, normalized)
			}
		}
		sections = append(sections, section)
	}

	return sections
}
