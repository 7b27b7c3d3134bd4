package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/knowledge-engine/pagefilter/internal/config"
	"github.com/knowledge-engine/pagefilter/internal/document"
	"github.com/knowledge-engine/pagefilter/internal/filter"
)

const page = `<html><head><title>Book</title></head><body>
<ul><li class="index-line"><a href="/misc.html">Misc</a></li></ul>
<section><h2>Basics</h2><ul>
  <li class="index-line"><a href="alpha.html">Alpha</a></li>
  <li class="index-line"><a href="beta.html">Beta</a></li>
</ul>
<section><h3>Deep</h3><ul><li class="index-line"><a href="gamma.html">Gamma</a></li></ul></section>
</section>
</body></html>`

func testModel(t *testing.T) Model {
	t.Helper()
	doc, err := document.Parse(strings.NewReader(page))
	require.NoError(t, err)
	doc.BaseURL = "https://docs.example.com/book/index.html"

	sel, err := filter.CompileSelectors(config.FilterConfig{
		Items:         ".index-line",
		Elements:      "a",
		Sections:      "section",
		Headings:      "h2, h3, h4",
		ExplicitTitle: ".section-title",
		Links:         "a[href]",
	})
	require.NoError(t, err)

	logger := logrus.New()
	logger.SetLevel(logrus.WarnLevel)

	m := NewModel(doc, sel, logrus.NewEntry(logger))
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	return updated.(Model)
}

func press(t *testing.T, m Model, msg tea.KeyMsg) (Model, tea.Cmd) {
	t.Helper()
	updated, cmd := m.Update(msg)
	return updated.(Model), cmd
}

func typeText(t *testing.T, m Model, text string) Model {
	t.Helper()
	for _, r := range text {
		m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	return m
}

func focus(t *testing.T, m Model) Model {
	t.Helper()
	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'/'}})
	return m
}

func TestNewModel(t *testing.T) {
	m := testModel(t)

	assert.Equal(t, "", m.Query())
	assert.False(t, m.Active())
	assert.Equal(t, []string{"Misc", "Alpha", "Beta", "Gamma"}, m.Visible())
	assert.Equal(t, []int{-1, 0, 0, 1}, m.owners)

	view := m.View()
	assert.Contains(t, view, "Basics")
	assert.Contains(t, view, "Deep")
	assert.Contains(t, view, "4/4")
	assert.NotContains(t, view, "No results")
}

func TestModelTypingIgnoredWhileUnfocused(t *testing.T) {
	m := testModel(t)

	m = typeText(t, m, "beta")
	assert.Equal(t, "", m.Query())
	assert.Len(t, m.Visible(), 4)
}

func TestModelFilter(t *testing.T) {
	m := focus(t, testModel(t))
	assert.True(t, m.Active())

	m = typeText(t, m, "beta")
	assert.Equal(t, "beta", m.Query())
	assert.Equal(t, []string{"Beta"}, m.Visible())

	view := m.View()
	assert.Contains(t, view, "Basics")
	assert.NotContains(t, view, "Deep")
	assert.NotContains(t, view, "Misc")
	assert.Contains(t, view, "1/4")
}

func TestModelFilterBySectionTitle(t *testing.T) {
	m := focus(t, testModel(t))

	m = typeText(t, m, "deep")
	assert.Equal(t, []string{"Gamma"}, m.Visible())

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyBackspace})
	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyBackspace})
	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyBackspace})
	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyBackspace})
	assert.Equal(t, "", m.Query())
	assert.Len(t, m.Visible(), 4)
}

func TestModelEmptyState(t *testing.T) {
	m := focus(t, testModel(t))

	m = typeText(t, m, "zzz")
	assert.Empty(t, m.Visible())
	assert.Contains(t, m.View(), "No results")
}

func TestModelCancel(t *testing.T) {
	m := focus(t, testModel(t))
	m = typeText(t, m, "alpha")

	m, cmd := press(t, m, tea.KeyMsg{Type: tea.KeyEscape})
	assert.Nil(t, cmd)
	assert.Equal(t, "", m.Query())
	assert.False(t, m.Active())
	assert.False(t, m.input.Focused())
	assert.Len(t, m.Visible(), 4)
}

func TestModelClear(t *testing.T) {
	m := focus(t, testModel(t))
	m = typeText(t, m, "alpha")

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyCtrlL})
	assert.Equal(t, "", m.Query())
	assert.Equal(t, "", m.input.Value())
	assert.False(t, m.Active())
	assert.False(t, m.input.Focused())
	assert.Len(t, m.Visible(), 4)

	// The box and the search state agree once typing resumes
	m = typeText(t, m, "beta")
	assert.Equal(t, "", m.Query())
	assert.False(t, m.Active())

	m = focus(t, m)
	m = typeText(t, m, "beta")
	assert.True(t, m.input.Focused())
	assert.Equal(t, "beta", m.Query())
	assert.True(t, m.Active())
	assert.Equal(t, []string{"Beta"}, m.Visible())
}

func TestModelBlur(t *testing.T) {
	m := focus(t, testModel(t))

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyTab})
	assert.False(t, m.input.Focused())
	assert.False(t, m.Active())

	// A query keeps the search active after leaving the box
	m = focus(t, m)
	m = typeText(t, m, "alpha")
	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyTab})
	assert.True(t, m.Active())
	assert.Equal(t, []string{"Alpha"}, m.Visible())
}

func TestModelConfirm(t *testing.T) {
	m := focus(t, testModel(t))

	// Several matches: nothing to follow
	m, cmd := press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd)
	_, ok := m.Followed()
	assert.False(t, ok)

	m = typeText(t, m, "gamma")
	m, cmd = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	_, isQuit := cmd().(tea.QuitMsg)
	assert.True(t, isQuit)

	link, ok := m.Followed()
	require.True(t, ok)
	assert.Equal(t, "gamma.html", link.Href)
	assert.Equal(t, "https://docs.example.com/book/gamma.html", link.URL)
	assert.Equal(t, "Gamma", link.Text)
}

func TestModelQuit(t *testing.T) {
	m := testModel(t)

	_, cmd := press(t, m, tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	_, isQuit := cmd().(tea.QuitMsg)
	assert.True(t, isQuit)
}
