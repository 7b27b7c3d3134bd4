package review

import (
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
)

// State is the review state of a topic
type State string

const (
	StateNone     State = "none"
	StateReviewed State = "reviewed"
	StateTodo     State = "todo"
)

// States lists every state in display order
var States = []State{StateNone, StateReviewed, StateTodo}

var stateLabels = map[State]string{
	StateNone:     "Unmark",
	StateReviewed: "Mark as reviewed",
	StateTodo:     "Mark as todo",
}

// ErrInvalidState is returned for states outside States
var ErrInvalidState = errors.New("invalid review state")

// ParseState validates a state name
func ParseState(s string) (State, error) {
	for _, st := range States {
		if string(st) == s {
			return st, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidState, s)
}

const (
	keyActive      = "review:active"
	keyBaseURL     = "review:base-url"
	keyTopicPrefix = "review:topic:"

	// Number of keys Activate writes besides topic states
	bookkeepingKeys = 2
)

// Action offers a transition to another state
type Action struct {
	State State  `json:"state"`
	Label string `json:"label"`
}

// Tracker flags topic pages as reviewed or todo. Topics are identified by
// their URL relative to the base URL recorded on activation.
type Tracker struct {
	store  Store
	logger *logrus.Entry
}

func NewTracker(store Store, logger *logrus.Entry) *Tracker {
	if logger == nil {
		logger = logrus.WithField("component", "review")
	}
	return &Tracker{store: store, logger: logger}
}

// Active reports whether review mode is on
func (t *Tracker) Active() (bool, error) {
	v, ok, err := t.store.Get(keyActive)
	if err != nil {
		return false, err
	}
	return ok && v != "", nil
}

// Activate turns review mode on. The base URL is pageURL without a trailing
// /review.html.
func (t *Tracker) Activate(pageURL string) error {
	if err := t.store.Set(keyActive, "true"); err != nil {
		return err
	}
	base := strings.Replace(pageURL, "/review.html", "", 1)
	if err := t.store.Set(keyBaseURL, base); err != nil {
		return err
	}
	t.logger.WithField("base_url", base).Info("Review mode activated")
	return nil
}

// Deactivate turns review mode off and wipes all review data. When topics
// are flagged, confirm is asked first and nothing happens unless it agrees.
func (t *Tracker) Deactivate(confirm func() bool) (bool, error) {
	n, err := t.store.Len()
	if err != nil {
		return false, err
	}
	if n != bookkeepingKeys && (confirm == nil || !confirm()) {
		return false, nil
	}
	if err := t.store.Clear(); err != nil {
		return false, err
	}
	t.logger.Info("Review mode deactivated")
	return true, nil
}

// BaseURL returns the URL prefix topics are relative to
func (t *Tracker) BaseURL() (string, error) {
	v, _, err := t.store.Get(keyBaseURL)
	return v, err
}

// TopicID returns url relative to the base URL. It reports false when url
// lies outside the base.
func (t *Tracker) TopicID(url string) (string, bool, error) {
	base, ok, err := t.store.Get(keyBaseURL)
	if err != nil || !ok {
		return "", false, err
	}
	if !strings.HasPrefix(url, base) {
		return "", false, nil
	}
	return url[len(base):], true, nil
}

// State returns the state of a topic, StateNone if it was never flagged
func (t *Tracker) State(topicID string) (State, error) {
	v, ok, err := t.store.Get(keyTopicPrefix + topicID)
	if err != nil {
		return StateNone, err
	}
	if !ok || v == "" {
		return StateNone, nil
	}
	return State(v), nil
}

// SetState flags a topic. StateNone removes the flag.
func (t *Tracker) SetState(topicID string, state State) error {
	if _, err := ParseState(string(state)); err != nil {
		return err
	}
	key := keyTopicPrefix + topicID
	if state == StateNone {
		return t.store.Remove(key)
	}
	return t.store.Set(key, string(state))
}

// Flagged keeps the URLs whose topic is flagged, in order
func (t *Tracker) Flagged(urls []string) ([]string, error) {
	var kept []string
	for _, u := range urls {
		id, ok, err := t.TopicID(u)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		state, err := t.State(id)
		if err != nil {
			return nil, err
		}
		if state != StateNone {
			kept = append(kept, u)
		}
	}
	return kept, nil
}

// Actions returns the transitions available from current
func Actions(current State) []Action {
	actions := make([]Action, 0, len(States)-1)
	for _, s := range States {
		if s == current {
			continue
		}
		actions = append(actions, Action{State: s, Label: stateLabels[s]})
	}
	return actions
}

// StripAnchor removes a #fragment from url
func StripAnchor(url string) string {
	if i := strings.IndexByte(url, '#'); i != -1 {
		return url[:i]
	}
	return url
}
