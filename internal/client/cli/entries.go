package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/gophjournal/internal/client/journal"
)

// NewEntry prompts for an entry and saves it.
func (a *App) NewEntry(ctx context.Context) error {
	if err := a.journal.Begin(journal.CreatingEntry, ""); err != nil {
		return a.report(err)
	}

	e, err := a.promptEntry(ctx, journal.Entry{}, false)
	if err != nil {
		a.cancelEdit(ctx)
		a.println("Error:", err)
		return err
	}

	cctx, cancel := a.callCtx(ctx)
	defer cancel()
	if err := a.journal.CreateEntry(cctx, e); err != nil {
		return a.report(err)
	}
	a.println("Entry added")
	return nil
}

// EditEntry prompts for changes to an existing entry. Empty answers keep the
// current values.
func (a *App) EditEntry(ctx context.Context, id string) error {
	cur, err := findEntry(a.journal.Snapshot().Entries, id)
	if err != nil {
		a.println("Error:", err)
		return err
	}
	if err := a.journal.Begin(journal.EditingEntry, cur.ID); err != nil {
		return a.report(err)
	}

	e, err := a.promptEntry(ctx, cur, true)
	if err != nil {
		a.cancelEdit(ctx)
		a.println("Error:", err)
		return err
	}

	cctx, cancel := a.callCtx(ctx)
	defer cancel()
	if err := a.journal.UpdateEntry(cctx, e); err != nil {
		return a.report(err)
	}
	a.println("Entry saved")
	return nil
}

// Attach uploads a file and appends its link to an entry.
func (a *App) Attach(ctx context.Context, id, path string) error {
	e, err := findEntry(a.journal.Snapshot().Entries, id)
	if err != nil {
		a.println("Error:", err)
		return err
	}

	urls, err := a.upload(ctx, []string{path})
	if err != nil {
		a.println("Error:", err)
		return err
	}
	e.Attachments = append(append([]string{}, e.Attachments...), urls...)

	if err := a.journal.Begin(journal.EditingEntry, e.ID); err != nil {
		return a.report(err)
	}
	cctx, cancel := a.callCtx(ctx)
	defer cancel()
	if err := a.journal.UpdateEntry(cctx, e); err != nil {
		return a.report(err)
	}
	a.println("Attached", urls[0])
	return nil
}

func (a *App) upload(ctx context.Context, paths []string) ([]string, error) {
	urls := make([]string, 0, len(paths))
	for _, p := range paths {
		cctx, cancel := a.callCtx(ctx)
		url, err := a.attachments.Upload(cctx, p)
		cancel()
		if err != nil {
			return nil, err
		}
		urls = append(urls, url)
	}
	return urls, nil
}

// promptEntry collects entry fields starting from cur. When editing, empty
// answers keep the current value.
func (a *App) promptEntry(ctx context.Context, cur journal.Entry, editing bool) (journal.Entry, error) {
	e := cur
	sections := a.journal.Snapshot().Sections

	prompt := "Title"
	if editing {
		prompt = fmt.Sprintf("Title [%s]", cur.Title)
	}
	title, err := getSimpleText(a.reader, prompt, a.out)
	if err != nil {
		return e, err
	}
	if title != "" || !editing {
		e.Title = title
	}

	prompt = "Content"
	if editing {
		prompt = "Content (empty keeps current)"
	}
	content, err := GetMultiline(a.reader, prompt, a.out)
	if err != nil {
		return e, err
	}
	if content != "" || !editing {
		e.Content = content
	}

	if editing {
		prompt = fmt.Sprintf("Tags [%s] (+tag adds, -tag removes, empty keeps)", strings.Join(cur.Tags, ", "))
	} else {
		prompt = "Tags (comma separated)"
	}
	tags, err := getSimpleText(a.reader, prompt, a.out)
	if err != nil {
		return e, err
	}
	if editing {
		e.Tags = editTags(cur.Tags, tags)
	} else {
		e.Tags = journal.ParseTags(tags)
	}

	if editing {
		prompt = fmt.Sprintf("Folder [%s] (- for none, empty keeps)", sectionName(sections, cur.SectionID))
	} else {
		prompt = "Folder (name or id, empty for none)"
	}
	folder, err := getSimpleText(a.reader, prompt, a.out)
	if err != nil {
		return e, err
	}
	switch {
	case folder == "-" || (folder == "" && !editing):
		e.SectionID = ""
	case folder != "":
		s, err := findSection(sections, folder)
		if err != nil {
			return e, err
		}
		e.SectionID = s.ID
	}

	if e.Private, err = GetYesNo(a.reader, "Private?", cur.Private, a.out); err != nil {
		return e, err
	}

	files, err := getSimpleText(a.reader, "Attach files (comma separated paths, empty for none)", a.out)
	if err != nil {
		return e, err
	}
	if paths := SplitList(files); len(paths) > 0 {
		urls, err := a.upload(ctx, paths)
		if err != nil {
			return e, err
		}
		e.Attachments = append(append([]string{}, cur.Attachments...), urls...)
	}

	return e, nil
}

// editTags applies "+tag", "-tag" and bare tag tokens, separated by commas
// or spaces, to tags.
func editTags(tags []string, input string) []string {
	out := append([]string{}, tags...)
	for _, tok := range strings.FieldsFunc(input, func(r rune) bool { return r == ',' || r == ' ' }) {
		switch {
		case strings.HasPrefix(tok, "-"):
			out = journal.RemoveTag(out, journal.NormalizeTag(tok[1:]))
		case strings.HasPrefix(tok, "+"):
			out = journal.AddTag(out, tok[1:])
		default:
			out = journal.AddTag(out, tok)
		}
	}
	return out
}
