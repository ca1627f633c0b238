package journal

import (
	"context"
	"time"

	"github.com/dmitrijs2005/gophjournal/internal/logging"
	"github.com/dmitrijs2005/gophjournal/internal/rowstore"
	"github.com/dmitrijs2005/gophjournal/internal/rowstore/rowstoretest"
)

type nopLogger struct{}

func (n nopLogger) Debug(context.Context, string, ...any) {}
func (n nopLogger) Info(context.Context, string, ...any)  {}
func (n nopLogger) Warn(context.Context, string, ...any)  {}
func (n nopLogger) Error(context.Context, string, ...any) {}
func (n nopLogger) With(...any) logging.Logger            { return n }

type staticActors struct {
	actor *Actor
}

func (s staticActors) CurrentActor(context.Context) (*Actor, error) { return s.actor, nil }

var alice = staticActors{actor: &Actor{ID: "u1", Email: "alice@example.com"}}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func newSignedIn() (*rowstoretest.Memory, *Repository) {
	store := rowstoretest.NewMemory()
	return store, NewRepository(store, alice)
}

func entryRow(id, title, content, section string, at time.Time, tags ...string) rowstore.Row {
	var sec any
	if section != "" {
		sec = section
	}
	return rowstore.Row{
		"id":          id,
		"title":       title,
		"content":     content,
		"section_id":  sec,
		"tags":        append([]string{}, tags...),
		"attachments": []string{},
		"private":     false,
		"created_at":  at,
	}
}

func sectionRow(id, name string) rowstore.Row {
	return rowstore.Row{
		"id":          id,
		"name":        name,
		"description": nil,
		"color":       "blue",
		"created_at":  day(2024, 1, 1),
	}
}

func entryIDs(entries []Entry) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.ID)
	}
	return out
}

func sectionNames(sections []Section) []string {
	out := make([]string, 0, len(sections))
	for _, s := range sections {
		out = append(out, s.Name)
	}
	return out
}
