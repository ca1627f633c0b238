package cli

import (
	"context"
	"html"
	"strings"
	"time"

	"github.com/dmitrijs2005/gophjournal/internal/client/journal"
	"github.com/dmitrijs2005/gophjournal/internal/timex"
)

// List prints the visible entries, newest first.
func (a *App) List(ctx context.Context) error {
	snap := a.journal.Snapshot()
	if len(snap.Visible) == 0 {
		a.println("No entries")
		return nil
	}

	for _, e := range snap.Visible {
		line := shortID(e.ID) + "  " + a.day(e.Date) + "  " + e.Title
		if len(e.Tags) > 0 {
			line += "  [" + strings.Join(e.Tags, ", ") + "]"
		}
		if name := sectionName(snap.Sections, e.SectionID); name != "" {
			line += "  (" + name + ")"
		}
		if e.Private {
			line += "  *private*"
		}
		a.println(line)
		if p := a.preview(e.Content); p != "" {
			a.println("          " + p)
		}
	}
	if hidden := len(snap.Entries) - len(snap.Visible); hidden > 0 {
		a.printf("%d entries hidden by search/tag filters\n", hidden)
	}
	return nil
}

// Refresh re-fetches folders and entries.
func (a *App) Refresh(ctx context.Context) error {
	cctx, cancel := a.callCtx(ctx)
	defer cancel()

	if err := a.journal.RefreshSections(cctx); err != nil {
		return a.report(err)
	}
	if err := a.journal.RefreshEntries(cctx); err != nil {
		return a.report(err)
	}
	return a.List(ctx)
}

// Sections prints every folder by name.
func (a *App) Sections(ctx context.Context) error {
	snap := a.journal.Snapshot()
	if len(snap.Sections) == 0 {
		a.println("No folders")
		return nil
	}
	for _, s := range snap.Sections {
		marker := " "
		if s.ID == snap.State.SectionID {
			marker = "*"
		}
		line := marker + " " + shortID(s.ID) + "  " + s.Name
		if s.Color != "" {
			line += "  <" + s.Color + ">"
		}
		if s.Description != "" {
			line += "  " + s.Description
		}
		a.println(line)
	}
	return nil
}

// Tags prints every tag used by the fetched entries.
func (a *App) Tags(ctx context.Context) error {
	snap := a.journal.Snapshot()
	if len(snap.Tags) == 0 {
		a.println("No tags")
		return nil
	}
	a.println(strings.Join(snap.Tags, ", "))
	return nil
}

// cleared reports whether arg asks to drop a filter.
func cleared(arg string) bool {
	return arg == "" || arg == "-"
}

// Folder filters by folder; "-" or nothing shows all folders.
func (a *App) Folder(ctx context.Context, ref string) error {
	id := ""
	if !cleared(ref) {
		s, err := findSection(a.journal.Snapshot().Sections, ref)
		if err != nil {
			a.println("Error:", err)
			return err
		}
		id = s.ID
	}

	cctx, cancel := a.callCtx(ctx)
	defer cancel()
	if err := a.journal.SelectSection(cctx, id); err != nil {
		return a.report(err)
	}
	return a.List(ctx)
}

func (a *App) Tag(ctx context.Context, tag string) error {
	if cleared(tag) {
		tag = ""
	}
	a.journal.SetTag(journal.NormalizeTag(tag))
	return a.List(ctx)
}

func (a *App) Search(ctx context.Context, q string) error {
	a.journal.SetSearch(strings.TrimSpace(q))
	return a.List(ctx)
}

func (a *App) parseDay(arg string) (time.Time, error) {
	if cleared(arg) {
		return time.Time{}, nil
	}
	return timex.ParseDay(arg, a.loc)
}

// From sets the first day shown (YYYY-MM-DD); "-" removes the bound.
func (a *App) From(ctx context.Context, arg string) error {
	d, err := a.parseDay(arg)
	if err != nil {
		a.println("Error: dates look like", timex.DayLayout)
		return err
	}

	cctx, cancel := a.callCtx(ctx)
	defer cancel()
	if err := a.journal.SetStart(cctx, d); err != nil {
		return a.report(err)
	}
	return a.List(ctx)
}

// To sets the last day shown, inclusive; "-" removes the bound.
func (a *App) To(ctx context.Context, arg string) error {
	d, err := a.parseDay(arg)
	if err != nil {
		a.println("Error: dates look like", timex.DayLayout)
		return err
	}

	cctx, cancel := a.callCtx(ctx)
	defer cancel()
	if err := a.journal.SetEnd(cctx, d); err != nil {
		return a.report(err)
	}
	return a.List(ctx)
}

// Home clears every filter and reloads entries.
func (a *App) Home(ctx context.Context) error {
	cctx, cancel := a.callCtx(ctx)
	defer cancel()
	if err := a.journal.Home(cctx); err != nil {
		return a.report(err)
	}
	return a.List(ctx)
}

// Show prints one entry in full.
func (a *App) Show(ctx context.Context, id string) error {
	snap := a.journal.Snapshot()
	e, err := findEntry(snap.Entries, id)
	if err != nil {
		a.println("Error:", err)
		return err
	}

	a.println(e.Title)
	a.println("Date:   ", e.Date.In(a.loc).Format("2006-01-02 15:04"))
	if name := sectionName(snap.Sections, e.SectionID); name != "" {
		a.println("Folder: ", name)
	}
	if len(e.Tags) > 0 {
		a.println("Tags:   ", strings.Join(e.Tags, ", "))
	}
	if e.Private {
		a.println("Private: yes")
	}
	a.println()
	a.println(strings.TrimSpace(html.UnescapeString(a.plain.Sanitize(e.Content))))
	for i, url := range e.Attachments {
		if i == 0 {
			a.println()
			a.println("Attachments:")
		}
		a.println("  " + url)
	}
	return nil
}
