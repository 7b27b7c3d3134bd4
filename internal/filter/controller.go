package filter

import (
	"fmt"
	"strings"

	"github.com/knowledge-engine/pagefilter/internal/document"
)

// EventType enumerates what the query source can report
type EventType int

const (
	EventTextChanged EventType = iota
	EventCancel
	EventConfirm
	EventFocus
	EventBlur
	EventClear
)

var eventNames = map[EventType]string{
	EventTextChanged: "text",
	EventCancel:      "cancel",
	EventConfirm:     "confirm",
	EventFocus:       "focus",
	EventBlur:        "blur",
	EventClear:       "clear",
}

func (t EventType) String() string {
	if name, ok := eventNames[t]; ok {
		return name
	}
	return fmt.Sprintf("EventType(%d)", int(t))
}

// ParseEventType is the inverse of EventType.String
func ParseEventType(name string) (EventType, error) {
	for t, n := range eventNames {
		if n == name {
			return t, nil
		}
	}
	return 0, fmt.Errorf("unknown event type %q", name)
}

// Event is a single query source event. Value is only used by
// EventTextChanged and holds the full query text.
type Event struct {
	Type  EventType
	Value string
}

// Link is a link activated by a confirm gesture
type Link struct {
	Href string `json:"href"`
	URL  string `json:"url"` // Href resolved against the page URL
	Text string `json:"text"`
}

var defaultLinks = document.MustCompile("a[href]")

// Controller applies the query source event policy to an engine. Every
// event is handled synchronously; a nil Controller ignores all events.
// The search is active while it has focus or holds a non-blank query.
type Controller struct {
	engine    *Engine
	presenter Presenter
	links     document.Matcher
	baseURL   string

	query   string
	focused bool
	active  bool
	result  Result
}

// NewController wires an engine to its query source and evaluates the
// initial query. links selects followable links within an item; nil uses
// "a[href]". It returns nil when there is no engine to drive.
func NewController(engine *Engine, links document.Matcher, baseURL, initialQuery string) *Controller {
	if engine == nil {
		return nil
	}
	if links == nil {
		links = defaultLinks
	}
	c := &Controller{
		engine:    engine,
		presenter: engine.presenter,
		links:     links,
		baseURL:   baseURL,
		query:     initialQuery,
	}
	c.evaluate()
	c.updateActive()
	return c
}

// Dispatch handles ev. For EventConfirm it returns the followed link, if any.
func (c *Controller) Dispatch(ev Event) (Link, bool) {
	if c == nil {
		return Link{}, false
	}
	switch ev.Type {
	case EventTextChanged:
		c.SetQuery(ev.Value)
	case EventCancel:
		c.Cancel()
	case EventConfirm:
		return c.Confirm()
	case EventFocus:
		c.Focus()
	case EventBlur:
		c.Blur()
	case EventClear:
		c.Clear()
	}
	return Link{}, false
}

// SetQuery replaces the query text and re-evaluates
func (c *Controller) SetQuery(query string) {
	if c == nil {
		return
	}
	c.query = query
	c.evaluate()
	c.updateActive()
}

// Clear empties the query, shows everything and drops focus, leaving the
// search inactive.
func (c *Controller) Clear() {
	if c == nil {
		return
	}
	c.query = ""
	c.evaluate()
	c.Blur()
}

// Cancel empties the query and drops focus
func (c *Controller) Cancel() {
	if c == nil {
		return
	}
	c.query = ""
	c.evaluate()
	c.Blur()
}

// Confirm follows the first link of the only matched entry. Nothing happens
// unless exactly one entry matches and it contains a link.
func (c *Controller) Confirm() (Link, bool) {
	if c == nil {
		return Link{}, false
	}
	found := c.engine.Matched()
	if len(found) != 1 {
		return Link{}, false
	}

	links := document.QueryAll(found[0].Node, c.links)
	if len(links) == 0 {
		return Link{}, false
	}

	href, _ := document.Attr(links[0], "href")
	link := Link{
		Href: href,
		URL:  document.ResolveLink(href, c.baseURL),
		Text: document.Text(links[0]),
	}
	c.presenter.Follow(link)
	return link, true
}

func (c *Controller) Focus() {
	if c == nil {
		return
	}
	c.focused = true
	c.updateActive()
}

func (c *Controller) Blur() {
	if c == nil {
		return
	}
	c.focused = false
	c.updateActive()
}

func (c *Controller) Query() string {
	if c == nil {
		return ""
	}
	return c.query
}

func (c *Controller) Focused() bool {
	if c == nil {
		return false
	}
	return c.focused
}

// Active reports whether the search affordance is shown as active
func (c *Controller) Active() bool {
	if c == nil {
		return false
	}
	return c.active
}

// Result returns the latest evaluation
func (c *Controller) Result() Result {
	if c == nil {
		return Result{}
	}
	return c.result
}

func (c *Controller) Engine() *Engine {
	if c == nil {
		return nil
	}
	return c.engine
}

func (c *Controller) evaluate() {
	c.result = c.engine.Evaluate(c.query)
}

// updateActive marks the search active when focused or holding a query
func (c *Controller) updateActive() {
	c.active = c.focused || strings.TrimSpace(c.query) != ""
	c.presenter.SetActive(c.active)
}
