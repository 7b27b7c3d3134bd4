package filter

import (
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/net/html"
)

// Result is a snapshot of one evaluation
type Result struct {
	Query    string   `json:"query"`
	Tokens   []string `json:"tokens"`
	Matched  []int    `json:"matched"`  // Positions of matched entries
	Sections []bool   `json:"sections"` // Matched state per section position
	Empty    bool     `json:"empty"`    // Index is non-empty and nothing matched
	Total    int      `json:"total"`
}

// Count returns the number of matched entries
func (r Result) Count() int {
	return len(r.Matched)
}

// Engine evaluates queries against a static index. It is not safe for
// concurrent use; callers serialize evaluations.
type Engine struct {
	index     *Index
	sections  []*Section
	presenter Presenter
	logger    *logrus.Entry
	observer  func(Result, time.Duration)
}

// Option configures an Engine
type Option func(*Engine)

// WithPresenter sets where visibility changes are pushed
func WithPresenter(p Presenter) Option {
	return func(e *Engine) { e.presenter = p }
}

// WithLogger sets the engine logger
func WithLogger(logger *logrus.Entry) Option {
	return func(e *Engine) { e.logger = logger }
}

// WithObserver registers a callback invoked after every evaluation
func WithObserver(fn func(Result, time.Duration)) Option {
	return func(e *Engine) { e.observer = fn }
}

func NewEngine(index *Index, sections []*Section, opts ...Option) *Engine {
	e := &Engine{
		index:     index,
		sections:  sections,
		presenter: NopPresenter{},
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = logrus.WithField("component", "filter")
	}
	return e
}

// Build indexes the page below root and returns an engine over it
func Build(root *html.Node, sel Selectors, opts ...Option) *Engine {
	index := BuildIndex(root, sel)
	sections := BuildSections(root, sel, index)

	e := NewEngine(index, sections, opts...)
	e.logger.WithFields(logrus.Fields{
		"items":    index.Len(),
		"sections": len(sections),
	}).Info("Built filter index")
	return e
}

func (e *Engine) Index() *Index {
	return e.index
}

func (e *Engine) Sections() []*Section {
	return e.sections
}

// Evaluate recomputes the matched state of every entry and section for
// query and pushes the resulting visibility to the presenter.
func (e *Engine) Evaluate(query string) Result {
	start := time.Now()
	queryParts := Tokenize(query)

	res := Result{
		Query:    query,
		Tokens:   queryParts,
		Matched:  make([]int, 0, e.index.Len()),
		Sections: make([]bool, len(e.sections)),
		Total:    e.index.Len(),
	}

	for _, entry := range e.index.Entries {
		entry.Matched = entry.matches(queryParts)
		if entry.Matched {
			res.Matched = append(res.Matched, entry.Position)
		}
		e.presenter.SetEntryHidden(entry, !entry.Matched)
	}

	for i, section := range e.sections {
		res.Sections[i] = section.Matched()
		e.presenter.SetSectionHidden(section, !res.Sections[i])
	}

	res.Empty = e.index.Len() > 0 && len(res.Matched) == 0
	e.presenter.SetEmptyState(res.Empty)

	elapsed := time.Since(start)
	e.logger.WithFields(logrus.Fields{
		"tokens":  len(queryParts),
		"matched": len(res.Matched),
		"total":   res.Total,
	}).Debug("Evaluated query")

	if e.observer != nil {
		e.observer(res, elapsed)
	}
	return res
}

// Matched returns the currently matched entries in index order
func (e *Engine) Matched() []*Entry {
	var found []*Entry
	for _, entry := range e.index.Entries {
		if entry.Matched {
			found = append(found, entry)
		}
	}
	return found
}

// Empty reports the current empty-result condition
func (e *Engine) Empty() bool {
	if e.index.Len() == 0 {
		return false
	}
	for _, entry := range e.index.Entries {
		if entry.Matched {
			return false
		}
	}
	return true
}
