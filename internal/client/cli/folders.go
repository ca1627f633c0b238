package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/gophjournal/internal/client/journal"
)

const defaultColor = "#3b82f6"

// NewFolder prompts for a folder and creates it.
func (a *App) NewFolder(ctx context.Context) error {
	if err := a.journal.Begin(journal.CreatingSection, ""); err != nil {
		return a.report(err)
	}

	var s journal.Section
	var err error
	for _, f := range []struct {
		prompt string
		dst    *string
	}{
		{"Folder name", &s.Name},
		{"Description (optional)", &s.Description},
		{"Color [" + defaultColor + "]", &s.Color},
	} {
		if *f.dst, err = getSimpleText(a.reader, f.prompt, a.out); err != nil {
			a.cancelEdit(ctx)
			return err
		}
	}
	if s.Color == "" {
		s.Color = defaultColor
	}

	cctx, cancel := a.callCtx(ctx)
	defer cancel()
	if err := a.journal.CreateSection(cctx, s); err != nil {
		return a.report(err)
	}
	a.println("Folder added")
	return nil
}

// EditFolder patches the fields the user fills in.
func (a *App) EditFolder(ctx context.Context, ref string) error {
	cur, err := findSection(a.journal.Snapshot().Sections, ref)
	if err != nil {
		a.println("Error:", err)
		return err
	}
	if err := a.journal.Begin(journal.EditingSection, cur.ID); err != nil {
		return a.report(err)
	}

	var patch journal.SectionPatch
	for _, f := range []struct {
		prompt string
		dst    **string
	}{
		{fmt.Sprintf("Name [%s]", cur.Name), &patch.Name},
		{fmt.Sprintf("Description [%s] (- clears)", cur.Description), &patch.Description},
		{fmt.Sprintf("Color [%s]", cur.Color), &patch.Color},
	} {
		v, err := getSimpleText(a.reader, f.prompt, a.out)
		if err != nil {
			a.cancelEdit(ctx)
			return err
		}
		switch v {
		case "":
		case "-":
			empty := ""
			*f.dst = &empty
		default:
			*f.dst = &v
		}
	}

	if patch.Name == nil && patch.Description == nil && patch.Color == nil {
		a.cancelEdit(ctx)
		a.println("Nothing changed")
		return nil
	}

	cctx, cancel := a.callCtx(ctx)
	defer cancel()
	if err := a.journal.UpdateSection(cctx, cur.ID, patch); err != nil {
		return a.report(err)
	}
	a.println("Folder saved")
	return nil
}

// DeleteFolder asks for confirmation, then moves the folder's entries to
// unfiled and deletes it.
func (a *App) DeleteFolder(ctx context.Context, ref string) error {
	s, err := findSection(a.journal.Snapshot().Sections, ref)
	if err != nil {
		a.println("Error:", err)
		return err
	}

	ok, err := GetYesNo(a.reader, fmt.Sprintf("Delete folder %q? Its entries become unfiled.", s.Name), false, a.out)
	if err != nil || !ok {
		return err
	}

	cctx, cancel := a.callCtx(ctx)
	defer cancel()
	res, err := a.journal.DeleteSection(cctx, s.ID)
	if err != nil {
		if res.Phase == journal.DeleteEntriesUnfiled {
			a.println("Entries were unfiled but the folder itself was not deleted")
		}
		return a.report(err)
	}
	a.printf("Folder deleted, %d entries unfiled\n", res.Unfiled)
	return nil
}
