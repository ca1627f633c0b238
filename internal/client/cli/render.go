package cli

import (
	"errors"
	"fmt"
	"html"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/dmitrijs2005/gophjournal/internal/client/journal"
	"github.com/dmitrijs2005/gophjournal/internal/timex"
)

const (
	shortIDLen = 8
	previewLen = 60
)

var (
	errNoMatch   = errors.New("no match")
	errAmbiguous = errors.New("ambiguous id, type more characters")
)

func shortID(id string) string {
	if len(id) <= shortIDLen {
		return id
	}
	return id[:shortIDLen]
}

func joinNonEmpty(sep string, parts ...string) string {
	var keep []string
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			keep = append(keep, p)
		}
	}
	return strings.Join(keep, sep)
}

// plainText strips markup from entry content and collapses whitespace.
func (a *App) plainText(content string) string {
	return strings.Join(strings.Fields(html.UnescapeString(a.plain.Sanitize(content))), " ")
}

func (a *App) preview(content string) string {
	s := a.plainText(content)
	if utf8.RuneCountInString(s) <= previewLen {
		return s
	}
	r := []rune(s)
	return string(r[:previewLen]) + "…"
}

func (a *App) day(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.In(a.loc).Format(timex.DayLayout)
}

// findEntry matches id against full ids first, then unique prefixes.
func findEntry(entries []journal.Entry, id string) (journal.Entry, error) {
	var found []journal.Entry
	for _, e := range entries {
		if e.ID == id {
			return e, nil
		}
		if id != "" && strings.HasPrefix(e.ID, id) {
			found = append(found, e)
		}
	}
	switch len(found) {
	case 0:
		return journal.Entry{}, fmt.Errorf("entry %q: %w", id, errNoMatch)
	case 1:
		return found[0], nil
	default:
		return journal.Entry{}, fmt.Errorf("entry %q: %w", id, errAmbiguous)
	}
}

// findSection matches a folder by id, id prefix or case-insensitive name.
func findSection(sections []journal.Section, ref string) (journal.Section, error) {
	var found []journal.Section
	for _, s := range sections {
		if s.ID == ref || strings.EqualFold(s.Name, ref) {
			return s, nil
		}
		if ref != "" && strings.HasPrefix(s.ID, ref) {
			found = append(found, s)
		}
	}
	switch len(found) {
	case 0:
		return journal.Section{}, fmt.Errorf("folder %q: %w", ref, errNoMatch)
	case 1:
		return found[0], nil
	default:
		return journal.Section{}, fmt.Errorf("folder %q: %w", ref, errAmbiguous)
	}
}

func sectionName(sections []journal.Section, id string) string {
	if id == "" {
		return ""
	}
	for _, s := range sections {
		if s.ID == id {
			return s.Name
		}
	}
	return shortID(id)
}

// status renders the prompt: who is signed in and which filters apply.
func (a *App) status() string {
	if !a.loggedIn {
		return "(signed out)"
	}

	s := a.journal.State()
	var filters []string
	if s.SectionID != "" {
		filters = append(filters, "folder:"+sectionName(a.journal.Snapshot().Sections, s.SectionID))
	}
	if s.Tag != "" {
		filters = append(filters, "tag:"+s.Tag)
	}
	if s.Search != "" {
		filters = append(filters, fmt.Sprintf("search:%q", s.Search))
	}
	if !s.Start.IsZero() || !s.End.IsZero() {
		filters = append(filters, a.day(s.Start)+".."+a.day(s.End))
	}

	who := a.email
	if who == "" {
		who = "signed in"
	}
	if len(filters) == 0 {
		return "(" + who + ")"
	}
	return "(" + who + " " + strings.Join(filters, " ") + ")"
}
