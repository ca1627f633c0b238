package journal

import (
	"context"
	"strings"

	"github.com/dmitrijs2005/gophjournal/internal/rowstore"
)

// ActorSource reports the signed-in user, or nil when signed out.
type ActorSource interface {
	CurrentActor(ctx context.Context) (*Actor, error)
}

// EntryRepository is what the coordinator and section manager need from storage.
type EntryRepository interface {
	FetchEntries(ctx context.Context, f ServerFilter) ([]Entry, error)
	FetchSections(ctx context.Context) ([]Section, error)
	CreateEntry(ctx context.Context, e Entry) error
	UpdateEntry(ctx context.Context, e Entry) error
	CreateSection(ctx context.Context, s Section) error
	UpdateSection(ctx context.Context, id string, p SectionPatch) error
	UnfileEntries(ctx context.Context, sectionID string) (int64, error)
	DeleteSection(ctx context.Context, id string) error
}

// Repository maps entries and sections onto a rowstore.Store.
type Repository struct {
	store  rowstore.Store
	actors ActorSource
}

func NewRepository(store rowstore.Store, actors ActorSource) *Repository {
	return &Repository{store: store, actors: actors}
}

var _ EntryRepository = (*Repository)(nil)

// FetchEntries returns entries matching f, newest first.
func (r *Repository) FetchEntries(ctx context.Context, f ServerFilter) ([]Entry, error) {
	rows, err := r.store.Select(ctx, rowstore.Query{
		Table:   tableEntries,
		Where:   f.Predicates(),
		OrderBy: []rowstore.Order{rowstore.Desc(colCreatedAt)},
	})
	if err != nil {
		return nil, remoteErr("fetch entries", MsgLoadEntries, err)
	}

	entries := make([]Entry, 0, len(rows))
	for _, row := range rows {
		e, err := entryFromRow(row)
		if err != nil {
			return nil, remoteErr("fetch entries", MsgLoadEntries, err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// FetchSections returns all sections ordered by name.
func (r *Repository) FetchSections(ctx context.Context) ([]Section, error) {
	rows, err := r.store.Select(ctx, rowstore.Query{
		Table:   tableSections,
		OrderBy: []rowstore.Order{rowstore.Asc(colName)},
	})
	if err != nil {
		return nil, remoteErr("fetch sections", MsgLoadSections, err)
	}

	sections := make([]Section, 0, len(rows))
	for _, row := range rows {
		s, err := sectionFromRow(row)
		if err != nil {
			return nil, remoteErr("fetch sections", MsgLoadSections, err)
		}
		sections = append(sections, s)
	}
	return sections, nil
}

// CreateEntry inserts e. The new entry is not returned; re-fetch to see it.
func (r *Repository) CreateEntry(ctx context.Context, e Entry) error {
	e, err := cleanEntry(e)
	if err != nil {
		return err
	}
	if err := r.requireActor(ctx); err != nil {
		return err
	}
	if err := r.store.Insert(ctx, tableEntries, entryValues(e)); err != nil {
		return remoteErr("create entry", MsgAddEntry, err)
	}
	return nil
}

// UpdateEntry overwrites every writable column of the entry with e.ID.
func (r *Repository) UpdateEntry(ctx context.Context, e Entry) error {
	if e.ID == "" {
		return &ValidationError{Field: colID, Reason: "required"}
	}
	e, err := cleanEntry(e)
	if err != nil {
		return err
	}
	if err := r.requireActor(ctx); err != nil {
		return err
	}
	if _, err := r.store.Update(ctx, tableEntries, entryValues(e), rowstore.Eq(colID, e.ID)); err != nil {
		return remoteErr("update entry", MsgUpdateEntry, err)
	}
	return nil
}

func (r *Repository) CreateSection(ctx context.Context, s Section) error {
	s.Name = strings.TrimSpace(s.Name)
	s.Description = strings.TrimSpace(s.Description)
	if s.Name == "" {
		return &ValidationError{Field: colName, Reason: "required"}
	}
	if err := r.requireActor(ctx); err != nil {
		return err
	}
	if err := r.store.Insert(ctx, tableSections, sectionValues(s)); err != nil {
		return remoteErr("create section", MsgAddSection, err)
	}
	return nil
}

func (r *Repository) UpdateSection(ctx context.Context, id string, p SectionPatch) error {
	if id == "" {
		return &ValidationError{Field: colID, Reason: "required"}
	}
	if p.Name != nil {
		name := strings.TrimSpace(*p.Name)
		if name == "" {
			return &ValidationError{Field: colName, Reason: "required"}
		}
		p.Name = &name
	}
	if p.Description != nil {
		desc := strings.TrimSpace(*p.Description)
		p.Description = &desc
	}
	values := patchValues(p)
	if len(values) == 0 {
		return &ValidationError{Field: "patch", Reason: "nothing to update"}
	}
	if err := r.requireActor(ctx); err != nil {
		return err
	}
	if _, err := r.store.Update(ctx, tableSections, values, rowstore.Eq(colID, id)); err != nil {
		return remoteErr("update section", MsgUpdateSection, err)
	}
	return nil
}

// UnfileEntries clears section_id on every entry filed under sectionID.
func (r *Repository) UnfileEntries(ctx context.Context, sectionID string) (int64, error) {
	if sectionID == "" {
		return 0, &ValidationError{Field: colSectionID, Reason: "required"}
	}
	if err := r.requireActor(ctx); err != nil {
		return 0, err
	}
	n, err := r.store.Update(ctx, tableEntries, rowstore.Row{colSectionID: nil}, rowstore.Eq(colSectionID, sectionID))
	if err != nil {
		return 0, remoteErr("unfile entries", MsgDeleteSection, err)
	}
	return n, nil
}

// DeleteSection removes the section row only; see SectionManager.Delete.
func (r *Repository) DeleteSection(ctx context.Context, id string) error {
	if id == "" {
		return &ValidationError{Field: colID, Reason: "required"}
	}
	if err := r.requireActor(ctx); err != nil {
		return err
	}
	if _, err := r.store.Delete(ctx, tableSections, rowstore.Eq(colID, id)); err != nil {
		return remoteErr("delete section", MsgDeleteSection, err)
	}
	return nil
}

func (r *Repository) requireActor(ctx context.Context) error {
	if r.actors == nil {
		return ErrAuthRequired
	}
	actor, err := r.actors.CurrentActor(ctx)
	if err != nil || actor == nil {
		return ErrAuthRequired
	}
	return nil
}

func cleanEntry(e Entry) (Entry, error) {
	e.Title = strings.TrimSpace(e.Title)
	if e.Title == "" {
		return e, &ValidationError{Field: colTitle, Reason: "required"}
	}
	if strings.TrimSpace(e.Content) == "" {
		return e, &ValidationError{Field: colContent, Reason: "required"}
	}
	tags := []string{}
	for _, t := range e.Tags {
		tags = AddTag(tags, t)
	}
	e.Tags = tags
	return e, nil
}
