package filter

import (
	"fmt"
	"strings"

	"github.com/knowledge-engine/pagefilter/internal/config"
	"github.com/knowledge-engine/pagefilter/internal/document"
)

// Selectors is the compiled form of config.FilterConfig. A nil matcher means
// the corresponding source is absent, except Links, which falls back to
// "a[href]".
type Selectors struct {
	Items         document.Matcher
	Elements      document.Matcher
	Sections      document.Matcher
	Headings      document.Matcher
	ExplicitTitle document.Matcher
	Links         document.Matcher
	Attributes    []string
}

// CompileSelectors compiles every selector in cfg
func CompileSelectors(cfg config.FilterConfig) (Selectors, error) {
	var sel Selectors
	fields := []struct {
		name   string
		source string
		dst    *document.Matcher
	}{
		{"items", cfg.Items, &sel.Items},
		{"elements", cfg.Elements, &sel.Elements},
		{"sections", cfg.Sections, &sel.Sections},
		{"headings", cfg.Headings, &sel.Headings},
		{"explicit_title", cfg.ExplicitTitle, &sel.ExplicitTitle},
		{"links", cfg.Links, &sel.Links},
	}
	for _, f := range fields {
		m, err := document.Compile(f.source)
		if err != nil {
			return Selectors{}, fmt.Errorf("filter.%s: %w", f.name, err)
		}
		*f.dst = m
	}
	if sel.Links == nil {
		sel.Links = defaultLinks
	}
	sel.Attributes = ParseAttributeList(cfg.Attributes)
	return sel, nil
}

// ParseAttributeList splits a comma-separated list of attribute keys
func ParseAttributeList(list string) []string {
	var keys []string
	for _, key := range strings.Split(list, ",") {
		if key = strings.TrimSpace(key); key != "" {
			keys = append(keys, key)
		}
	}
	return keys
}
