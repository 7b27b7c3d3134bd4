package filter_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/knowledge-engine/pagefilter/internal/filter"
)

const baseURL = "https://docs.example.com/topics/index.html"

func newController(t *testing.T, initial string) (*filter.Controller, *filter.StatePresenter) {
	t.Helper()
	presenter := filter.NewStatePresenter()
	eng := buildFixture(t, filter.WithPresenter(presenter))
	c := filter.NewController(eng, fixtureSelectors(t).Links, baseURL, initial)
	require.NotNil(t, c)
	return c, presenter
}

func TestController_InitialEvaluation(t *testing.T) {
	c, presenter := newController(t, "gadget")

	assert.Equal(t, "gadget", c.Query())
	assert.Equal(t, []int{2}, c.Result().Matched)
	assert.True(t, presenter.HiddenEntries[0])
	assert.False(t, presenter.HiddenEntries[2])
	assert.False(t, c.Focused())
	assert.True(t, c.Active(), "an initial query makes the search active")
	assert.True(t, presenter.Active)
}

func TestController_TextChanged(t *testing.T) {
	c, presenter := newController(t, "")

	c.Dispatch(filter.Event{Type: filter.EventTextChanged, Value: "a"})
	c.Dispatch(filter.Event{Type: filter.EventTextChanged, Value: "al"})
	c.Dispatch(filter.Event{Type: filter.EventTextChanged, Value: "alpha"})

	assert.Equal(t, "alpha", c.Query())
	assert.Equal(t, []int{1}, c.Result().Matched)
	assert.False(t, presenter.HiddenSections[0])
	assert.True(t, presenter.HiddenSections[1])

	c.Dispatch(filter.Event{Type: filter.EventTextChanged, Value: "qqq"})
	assert.True(t, presenter.EmptyShown)
}

func TestController_FocusAndBlur(t *testing.T) {
	c, presenter := newController(t, "")

	c.Dispatch(filter.Event{Type: filter.EventFocus})
	assert.True(t, c.Focused())
	assert.True(t, c.Active())
	assert.True(t, presenter.Active)

	c.Dispatch(filter.Event{Type: filter.EventBlur})
	assert.False(t, c.Focused())
	assert.False(t, presenter.Active)

	c.Dispatch(filter.Event{Type: filter.EventTextChanged, Value: "  beta "})
	c.Dispatch(filter.Event{Type: filter.EventBlur})
	assert.True(t, c.Active(), "a non-empty query keeps the search active")

	c.Dispatch(filter.Event{Type: filter.EventTextChanged, Value: "   "})
	c.Dispatch(filter.Event{Type: filter.EventBlur})
	assert.False(t, c.Active())
}

func TestController_Cancel(t *testing.T) {
	c, presenter := newController(t, "")

	c.Dispatch(filter.Event{Type: filter.EventFocus})
	c.Dispatch(filter.Event{Type: filter.EventTextChanged, Value: "zzz"})
	require.True(t, presenter.EmptyShown)

	c.Dispatch(filter.Event{Type: filter.EventCancel})
	assert.Equal(t, "", c.Query())
	assert.False(t, c.Focused())
	assert.False(t, c.Active())
	assert.False(t, presenter.EmptyShown)
	assert.Equal(t, 6, c.Result().Count())
}

func TestController_Clear(t *testing.T) {
	c, presenter := newController(t, "")

	c.Dispatch(filter.Event{Type: filter.EventFocus})
	c.Dispatch(filter.Event{Type: filter.EventTextChanged, Value: "gamma"})

	c.Dispatch(filter.Event{Type: filter.EventClear})
	assert.Equal(t, "", c.Query())
	assert.Equal(t, 6, c.Result().Count())
	assert.False(t, c.Focused())
	assert.False(t, c.Active())
	assert.False(t, presenter.Active)

	// Typing after a clear activates the search again
	c.Dispatch(filter.Event{Type: filter.EventTextChanged, Value: "beta"})
	assert.True(t, c.Active())
	assert.True(t, presenter.Active)
}

func TestController_ActiveFollowsQuery(t *testing.T) {
	c, presenter := newController(t, "")
	require.False(t, c.Active())

	c.Dispatch(filter.Event{Type: filter.EventTextChanged, Value: "alpha"})
	assert.False(t, c.Focused())
	assert.True(t, c.Active(), "a non-empty query is active without focus")
	assert.True(t, presenter.Active)

	c.Dispatch(filter.Event{Type: filter.EventTextChanged, Value: "  "})
	assert.False(t, c.Active())
	assert.False(t, presenter.Active)

	c.Dispatch(filter.Event{Type: filter.EventFocus})
	c.Dispatch(filter.Event{Type: filter.EventTextChanged, Value: ""})
	assert.True(t, c.Active(), "focus keeps an empty search active")
}

func TestController_ConfirmSingleMatch(t *testing.T) {
	c, presenter := newController(t, "")

	c.Dispatch(filter.Event{Type: filter.EventTextChanged, Value: "alpha"})
	link, ok := c.Dispatch(filter.Event{Type: filter.EventConfirm})
	require.True(t, ok)
	assert.Equal(t, "/alpha.html", link.Href)
	assert.Equal(t, "https://docs.example.com/alpha.html", link.URL)
	assert.Equal(t, "Alpha Widget", link.Text)

	followed, ok := presenter.LastFollowed()
	require.True(t, ok)
	assert.Equal(t, link, followed)
}

func TestController_ConfirmFollowsFirstLink(t *testing.T) {
	c, _ := newController(t, "gamma")

	link, ok := c.Confirm()
	require.True(t, ok)
	assert.Equal(t, "gamma.html", link.Href)
	assert.Equal(t, "https://docs.example.com/topics/gamma.html", link.URL)
}

func TestController_ConfirmNoop(t *testing.T) {
	tests := []struct {
		name  string
		query string
	}{
		{"Several matches", "intro"},
		{"No matches", "zzz"},
		{"Match without link", "delta"},
		{"Everything matches", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, presenter := newController(t, tt.query)
			_, ok := c.Dispatch(filter.Event{Type: filter.EventConfirm})
			assert.False(t, ok)
			assert.Empty(t, presenter.Followed)
		})
	}
}

func TestController_DefaultLinkSelector(t *testing.T) {
	eng := buildFixture(t)
	c := filter.NewController(eng, nil, "", "beta")

	link, ok := c.Confirm()
	require.True(t, ok)
	assert.Equal(t, "/beta.html", link.URL, "no base URL leaves href as-is")
}

func TestController_Unwired(t *testing.T) {
	c := filter.NewController(nil, nil, "", "")
	assert.Nil(t, c)

	assert.NotPanics(t, func() {
		_, ok := c.Dispatch(filter.Event{Type: filter.EventConfirm})
		assert.False(t, ok)
		c.Dispatch(filter.Event{Type: filter.EventTextChanged, Value: "x"})

		c.SetQuery("x")
		c.Focus()
		c.Blur()
		c.Cancel()
		c.Clear()
		_, ok = c.Confirm()
		assert.False(t, ok)

		assert.Equal(t, "", c.Query())
		assert.False(t, c.Focused())
		assert.False(t, c.Active())
		assert.Equal(t, filter.Result{}, c.Result())
		assert.Nil(t, c.Engine())
	})
}

func TestEventType_RoundTrip(t *testing.T) {
	types := []filter.EventType{
		filter.EventTextChanged,
		filter.EventCancel,
		filter.EventConfirm,
		filter.EventFocus,
		filter.EventBlur,
		filter.EventClear,
	}
	for _, typ := range types {
		parsed, err := filter.ParseEventType(typ.String())
		require.NoError(t, err)
		assert.Equal(t, typ, parsed)
	}

	_, err := filter.ParseEventType("keypress")
	assert.Error(t, err)
	assert.Equal(t, "EventType(42)", filter.EventType(42).String())
}
