package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/knowledge-engine/pagefilter/internal/config"
	"github.com/knowledge-engine/pagefilter/internal/document"
	"github.com/knowledge-engine/pagefilter/internal/filter"
	"github.com/knowledge-engine/pagefilter/internal/metrics"
	"github.com/knowledge-engine/pagefilter/internal/review"
)

// ErrNotLoaded is returned by queries before a page has been loaded
var ErrNotLoaded = errors.New("no page loaded")

// Engine orchestrates the filtering components for one page. All filter
// operations are serialized so evaluations never interleave.
type Engine struct {
	Config *config.Config
	Logger *logrus.Entry
	Loader *document.Loader
	Review *review.Tracker

	selectors  filter.Selectors
	doc        *document.Document
	filter     *filter.Engine
	controller *filter.Controller
	mu         sync.Mutex

	// Stats
	Stats EngineStats
}

type EngineStats struct {
	Source        string
	Title         string
	LoadedAt      time.Time
	Evaluations   int64
	FollowedLinks int64
}

// State is what the presentation boundary needs after an event
type State struct {
	Query    string        `json:"query"`
	Active   bool          `json:"active"`
	Focused  bool          `json:"focused"`
	Result   filter.Result `json:"result"`
	Followed *filter.Link  `json:"followed,omitempty"`
}

// EntryView describes one indexed item
type EntryView struct {
	Position int      `json:"position"`
	Text     string   `json:"text"`
	Values   []string `json:"values"`
	Sections []string `json:"sections"`
	Matched  bool     `json:"matched"`
	Link     string   `json:"link,omitempty"`
}

// SectionView describes one section
type SectionView struct {
	Position int    `json:"position"`
	Title    string `json:"title"`
	Items    []int  `json:"items"`
	Matched  bool   `json:"matched"`
}

func NewEngine(cfg *config.Config, logger *logrus.Entry, store review.Store) (*Engine, error) {
	sel, err := filter.CompileSelectors(cfg.Filter)
	if err != nil {
		return nil, err
	}
	if store == nil {
		store = review.NewMemoryStore()
	}

	return &Engine{
		Config:    cfg,
		Logger:    logger,
		Loader:    document.NewLoader(cfg.Fetch, logger.WithField("component", "loader")),
		Review:    review.NewTracker(store, logger.WithField("component", "review")),
		selectors: sel,
	}, nil
}

// Load fetches or reads the page at source and indexes it
func (e *Engine) Load(ctx context.Context, source string) error {
	doc, err := e.Loader.Load(ctx, source)
	if err != nil {
		return fmt.Errorf("failed to load %s: %w", source, err)
	}
	e.LoadDocument(doc, source)
	return nil
}

// LoadDocument indexes an already parsed page, replacing any previous one
func (e *Engine) LoadDocument(doc *document.Document, source string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.filter = filter.Build(doc.Root, e.selectors,
		filter.WithLogger(e.Logger.WithField("component", "filter")),
		filter.WithObserver(e.observe),
	)
	e.doc = doc
	e.Stats = EngineStats{
		Source:   source,
		Title:    doc.Title(),
		LoadedAt: time.Now(),
	}
	e.controller = filter.NewController(e.filter, e.selectors.Links, doc.BaseURL, "")

	e.Logger.WithFields(logrus.Fields{
		"source": source,
		"items":  e.filter.Index().Len(),
	}).Info("Page loaded")
}

// observe runs inside Evaluate, with e.mu held by the caller
func (e *Engine) observe(res filter.Result, elapsed time.Duration) {
	e.Stats.Evaluations++
	metrics.ObserveEvaluation(res, elapsed)
}

// Snapshot returns a copy of the stats
func (e *Engine) Snapshot() EngineStats {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.Stats
}

func (e *Engine) Loaded() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.filter != nil
}

// Filter evaluates query as if it had been typed into the search box
func (e *Engine) Filter(query string) (State, error) {
	return e.Dispatch(filter.Event{Type: filter.EventTextChanged, Value: query})
}

// Dispatch feeds one query source event to the controller
func (e *Engine) Dispatch(ev filter.Event) (State, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.controller == nil {
		return State{}, ErrNotLoaded
	}

	link, followed := e.controller.Dispatch(ev)
	state := e.stateLocked()
	if followed {
		e.Stats.FollowedLinks++
		metrics.FollowedLinksTotal.Inc()
		state.Followed = &link
		e.Logger.WithField("url", link.URL).Info("Following single match")
	}
	return state, nil
}

// CurrentState returns the state without dispatching anything
func (e *Engine) CurrentState() (State, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.controller == nil {
		return State{}, ErrNotLoaded
	}
	return e.stateLocked(), nil
}

func (e *Engine) stateLocked() State {
	return State{
		Query:   e.controller.Query(),
		Active:  e.controller.Active(),
		Focused: e.controller.Focused(),
		Result:  e.controller.Result(),
	}
}

// Index describes every entry and section of the loaded page
func (e *Engine) Index() ([]EntryView, []SectionView, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.filter == nil {
		return nil, nil, ErrNotLoaded
	}

	entries := make([]EntryView, 0, e.filter.Index().Len())
	for _, entry := range e.filter.Index().Entries {
		entries = append(entries, EntryView{
			Position: entry.Position,
			Text:     document.Text(entry.Node),
			Values:   entry.Values,
			Sections: entry.Sections,
			Matched:  entry.Matched,
			Link:     e.itemLinkLocked(entry),
		})
	}

	sections := make([]SectionView, 0, len(e.filter.Sections()))
	for _, s := range e.filter.Sections() {
		items := make([]int, 0, len(s.Items))
		for _, item := range s.Items {
			items = append(items, item.Position)
		}
		sections = append(sections, SectionView{
			Position: s.Position,
			Title:    s.Title,
			Items:    items,
			Matched:  s.Matched(),
		})
	}
	return entries, sections, nil
}

// FlaggedItems returns the links of items whose topic is flagged for review
func (e *Engine) FlaggedItems() ([]string, error) {
	e.mu.Lock()
	var links []string
	if e.filter != nil {
		for _, entry := range e.filter.Index().Entries {
			if link := e.itemLinkLocked(entry); link != "" {
				links = append(links, link)
			}
		}
	}
	loaded := e.filter != nil
	e.mu.Unlock()

	if !loaded {
		return nil, ErrNotLoaded
	}
	return e.Review.Flagged(links)
}

// BaseURL returns the URL of the loaded page
func (e *Engine) BaseURL() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.doc == nil {
		return ""
	}
	return e.doc.BaseURL
}

// itemLinkLocked returns the resolved first link of an entry
func (e *Engine) itemLinkLocked(entry *filter.Entry) string {
	links := document.QueryAll(entry.Node, e.selectors.Links)
	if len(links) == 0 {
		return ""
	}
	href, _ := document.Attr(links[0], "href")
	return document.ResolveLink(href, e.doc.BaseURL)
}
