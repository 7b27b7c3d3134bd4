package filter

// Presenter reflects filter state in a user interface. The engine and the
// controller push facts to it; it never calls back into them.
type Presenter interface {
	SetEntryHidden(entry *Entry, hidden bool)
	SetSectionHidden(section *Section, hidden bool)
	SetEmptyState(shown bool)
	SetActive(active bool)
	Follow(link Link)
}

// NopPresenter discards every update
type NopPresenter struct{}

func (NopPresenter) SetEntryHidden(*Entry, bool)     {}
func (NopPresenter) SetSectionHidden(*Section, bool) {}
func (NopPresenter) SetEmptyState(bool)              {}
func (NopPresenter) SetActive(bool)                  {}
func (NopPresenter) Follow(Link)                     {}

// StatePresenter records the latest state pushed to it, keyed by position
type StatePresenter struct {
	HiddenEntries  map[int]bool
	HiddenSections map[int]bool
	EmptyShown     bool
	Active         bool
	Followed       []Link
}

func NewStatePresenter() *StatePresenter {
	return &StatePresenter{
		HiddenEntries:  make(map[int]bool),
		HiddenSections: make(map[int]bool),
	}
}

func (p *StatePresenter) SetEntryHidden(entry *Entry, hidden bool) {
	p.HiddenEntries[entry.Position] = hidden
}

func (p *StatePresenter) SetSectionHidden(section *Section, hidden bool) {
	p.HiddenSections[section.Position] = hidden
}

func (p *StatePresenter) SetEmptyState(shown bool) {
	p.EmptyShown = shown
}

func (p *StatePresenter) SetActive(active bool) {
	p.Active = active
}

func (p *StatePresenter) Follow(link Link) {
	p.Followed = append(p.Followed, link)
}

// LastFollowed returns the most recently followed link
func (p *StatePresenter) LastFollowed() (Link, bool) {
	if len(p.Followed) == 0 {
		return Link{}, false
	}
	return p.Followed[len(p.Followed)-1], true
}
