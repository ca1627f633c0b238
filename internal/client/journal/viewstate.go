package journal

import (
	"errors"
	"time"
)

// Mode is what the view is doing.
type Mode int

const (
	Browsing Mode = iota
	CreatingSection
	EditingSection
	CreatingEntry
	EditingEntry
)

func (m Mode) String() string {
	switch m {
	case Browsing:
		return "browsing"
	case CreatingSection:
		return "creating folder"
	case EditingSection:
		return "editing folder"
	case CreatingEntry:
		return "creating entry"
	case EditingEntry:
		return "editing entry"
	default:
		return "unknown"
	}
}

// ErrInvalidTransition is returned when a create/edit mode is requested
// while not browsing.
var ErrInvalidTransition = errors.New("journal: finish the current edit first")

// State is an immutable view state. The With* methods and transitions
// return modified copies.
type State struct {
	SectionID string
	Tag       string
	Search    string
	// Start and End are inclusive calendar days; zero means unbounded.
	Start time.Time
	End   time.Time

	Mode Mode
	// Target is the entry or section being edited.
	Target string
}

// Home is the initial state: no folder, no filters, browsing.
func Home() State { return State{} }

func (s State) WithSection(id string) State { s.SectionID = id; return s }
func (s State) WithTag(tag string) State    { s.Tag = tag; return s }
func (s State) WithSearch(q string) State   { s.Search = q; return s }
func (s State) WithStart(t time.Time) State { s.Start = t; return s }
func (s State) WithEnd(t time.Time) State   { s.End = t; return s }

// Begin enters a create or edit mode. target names the edited item and must
// be empty for create modes.
func (s State) Begin(m Mode, target string) (State, error) {
	if s.Mode != Browsing || m == Browsing {
		return s, ErrInvalidTransition
	}
	if (m == EditingEntry || m == EditingSection) && target == "" {
		return s, &ValidationError{Field: "target", Reason: "required"}
	}
	if m == CreatingEntry || m == CreatingSection {
		target = ""
	}
	s.Mode = m
	s.Target = target
	return s, nil
}

// Finish returns to Browsing, used for save, cancel and failure alike.
func (s State) Finish() State {
	s.Mode = Browsing
	s.Target = ""
	return s
}

// sameFetch reports whether both states ask the backend for the same rows.
func (s State) sameFetch(o State) bool {
	return s.SectionID == o.SectionID && s.Start.Equal(o.Start) && s.End.Equal(o.End)
}
