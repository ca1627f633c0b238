package journal

import (
	"sort"
	"strings"
	"time"

	"github.com/dmitrijs2005/gophjournal/internal/rowstore"
	"github.com/dmitrijs2005/gophjournal/internal/timex"
)

// ServerFilter holds the predicates evaluated by the backend. Zero values
// mean "no constraint". EndExclusive is the first instant not included.
type ServerFilter struct {
	SectionID    string
	Start        time.Time
	EndExclusive time.Time
}

// ServerFilterFor derives the backend filter from a view state. The inclusive
// End day becomes an exclusive bound at midnight of the following day.
func ServerFilterFor(s State) ServerFilter {
	f := ServerFilter{SectionID: s.SectionID}
	if !s.Start.IsZero() {
		f.Start = timex.StartOfDay(s.Start)
	}
	if !s.End.IsZero() {
		f.EndExclusive = timex.NextDay(s.End)
	}
	return f
}

// Equal reports whether f and o select the same rows.
func (f ServerFilter) Equal(o ServerFilter) bool {
	return f.SectionID == o.SectionID && f.Start.Equal(o.Start) && f.EndExclusive.Equal(o.EndExclusive)
}

// Predicates renders f as row-store predicates on the entries table.
func (f ServerFilter) Predicates() []rowstore.Predicate {
	var where []rowstore.Predicate
	if f.SectionID != "" {
		where = append(where, rowstore.Eq(colSectionID, f.SectionID))
	}
	if !f.Start.IsZero() {
		where = append(where, rowstore.Gte(colCreatedAt, f.Start))
	}
	if !f.EndExclusive.IsZero() {
		where = append(where, rowstore.Lt(colCreatedAt, f.EndExclusive))
	}
	return where
}

// FilterEntries applies the client-side predicates: a case-insensitive
// substring match on title or content, and exact tag membership. Empty
// search or tag matches everything. Input order is preserved.
func FilterEntries(entries []Entry, search, tag string) []Entry {
	needle := strings.ToLower(search)
	out := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if needle != "" &&
			!strings.Contains(strings.ToLower(e.Title), needle) &&
			!strings.Contains(strings.ToLower(e.Content), needle) {
			continue
		}
		if tag != "" && !e.HasTag(tag) {
			continue
		}
		out = append(out, e)
	}
	return out
}

// TagUniverse returns every distinct tag in entries, sorted. Callers pass
// the full fetched list so selecting a tag never shrinks the choice.
func TagUniverse(entries []Entry) []string {
	seen := map[string]bool{}
	tags := []string{}
	for _, e := range entries {
		for _, t := range e.Tags {
			if !seen[t] {
				seen[t] = true
				tags = append(tags, t)
			}
		}
	}
	sort.Strings(tags)
	return tags
}
