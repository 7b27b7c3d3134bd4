package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"

	"github.com/knowledge-engine/pagefilter/internal/document"
	"github.com/knowledge-engine/pagefilter/internal/filter"
)

// Model is the bubbletea model of the filter view. Key presses become query
// source events for the controller, and the view is rendered from the state
// the engine pushes to its presenter.
type Model struct {
	controller *filter.Controller
	state      *filter.StatePresenter
	input      textinput.Model
	help       help.Model
	keys       KeyMap
	styles     Styles

	title    string
	lines    []string // Display text per entry position
	owners   []int    // Innermost section per entry position, -1 if none
	followed *filter.Link

	width  int
	height int
}

// NewModel indexes doc and wires the resulting engine to a search box
func NewModel(doc *document.Document, sel filter.Selectors, logger *logrus.Entry) Model {
	if logger == nil {
		logger = logrus.WithField("component", "tui")
	}

	state := filter.NewStatePresenter()
	eng := filter.Build(doc.Root, sel,
		filter.WithPresenter(state),
		filter.WithLogger(logger.WithField("component", "filter")),
	)

	input := textinput.New()
	input.Prompt = "/ "
	input.Placeholder = "Filter topics"

	m := Model{
		controller: filter.NewController(eng, sel.Links, doc.BaseURL, ""),
		state:      state,
		input:      input,
		help:       help.New(),
		keys:       DefaultKeyMap,
		styles:     DefaultStyles(),
		title:      doc.Title(),
	}
	m.layout(eng)
	return m
}

// layout caches the display text of every entry and assigns each entry to
// the innermost section containing it. Sections come in document order, so
// a nested section overrides its parent.
func (m *Model) layout(eng *filter.Engine) {
	entries := eng.Index().Entries
	m.lines = make([]string, len(entries))
	m.owners = make([]int, len(entries))
	for i, entry := range entries {
		m.lines[i] = document.Text(entry.Node)
		m.owners[i] = -1
	}
	for _, section := range eng.Sections() {
		for _, item := range section.Items {
			m.owners[item.Position] = section.Position
		}
	}
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.input.Width = max(msg.Width-8, 10)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Cancel):
		m.input.Reset()
		m.input.Blur()
		m.controller.Cancel()
		return m, nil

	case key.Matches(msg, m.keys.Confirm):
		if link, ok := m.controller.Confirm(); ok {
			m.followed = &link
			return m, tea.Quit
		}
		return m, nil

	case key.Matches(msg, m.keys.Clear):
		m.input.Reset()
		m.input.Blur()
		m.controller.Clear()
		return m, nil

	case !m.input.Focused() && key.Matches(msg, m.keys.Focus):
		cmd := m.input.Focus()
		m.controller.Focus()
		return m, cmd

	case m.input.Focused() && key.Matches(msg, m.keys.Blur):
		m.input.Blur()
		m.controller.Blur()
		return m, nil
	}

	if !m.input.Focused() {
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if m.input.Value() != m.controller.Query() {
		m.controller.SetQuery(m.input.Value())
	}
	return m, cmd
}

// Followed returns the link chosen by a confirm gesture, if any
func (m Model) Followed() (filter.Link, bool) {
	if m.followed == nil {
		return filter.Link{}, false
	}
	return *m.followed, true
}

// Query returns the current query text
func (m Model) Query() string {
	return m.controller.Query()
}

// Active reports whether the search box is shown as active
func (m Model) Active() bool {
	return m.state.Active
}

// Visible returns the display text of the entries currently shown, in
// index order
func (m Model) Visible() []string {
	var shown []string
	for pos, line := range m.lines {
		if !m.state.HiddenEntries[pos] {
			shown = append(shown, line)
		}
	}
	return shown
}

func (m Model) View() string {
	var b strings.Builder

	if m.title != "" {
		b.WriteString(m.styles.SectionTitle.UnsetMarginTop().Render(m.title))
		b.WriteString("\n")
	}

	search := m.styles.SearchInactive
	if m.state.Active {
		search = m.styles.SearchActive
	}
	res := m.controller.Result()
	b.WriteString(search.Render(m.input.View()))
	b.WriteString(" ")
	b.WriteString(m.styles.Count.Render(fmt.Sprintf("%d/%d", res.Count(), res.Total)))
	b.WriteString("\n")

	if m.state.EmptyShown {
		b.WriteString(m.styles.Empty.Render("No results"))
		b.WriteString("\n")
	}

	// Items outside any section come first
	m.renderItems(&b, -1)

	for _, section := range m.controller.Engine().Sections() {
		if m.state.HiddenSections[section.Position] {
			continue
		}
		title := section.Title
		if title == "" {
			title = "(untitled)"
		}
		b.WriteString(m.styles.SectionTitle.Render(title))
		b.WriteString("\n")
		m.renderItems(&b, section.Position)
	}

	b.WriteString(m.styles.Help.Render(m.help.View(m.keys)))
	return b.String()
}

func (m Model) renderItems(b *strings.Builder, owner int) {
	for pos, line := range m.lines {
		if m.owners[pos] != owner || m.state.HiddenEntries[pos] {
			continue
		}
		b.WriteString(m.styles.Item.Render(line))
		b.WriteString("\n")
	}
}
