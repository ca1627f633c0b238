package journal

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/dmitrijs2005/gophjournal/internal/rowstore/rowstoretest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func entrySelects(store *rowstoretest.Memory) int {
	n := 0
	for _, c := range store.Calls() {
		if c.Method == rowstoretest.MethodSelect && c.Table == "entries" {
			n++
		}
	}
	return n
}

func seededCoordinator(t *testing.T) (*rowstoretest.Memory, *Coordinator) {
	t.Helper()
	store, repo := newSignedIn()
	store.Seed("sections", sectionRow("s1", "Work"), sectionRow("s2", "Home"))
	store.Seed("entries",
		entryRow("e1", "Standup", "daily sync", "s1", day(2024, 3, 1), "work"),
		entryRow("e2", "Plan", "quarter plan", "s1", day(2024, 3, 2), "work", "ideas"),
		entryRow("e3", "Retro", "what went well", "s1", day(2024, 3, 3)),
		entryRow("e4", "Garden", "tomatoes", "s2", day(2024, 3, 4), "home"),
	)
	c := NewCoordinator(repo, nopLogger{})
	require.NoError(t, c.SetAuthenticated(context.Background(), true))
	return store, c
}

func TestCoordinator_AuthenticationFetchesBothLists(t *testing.T) {
	store, c := seededCoordinator(t)

	snap := c.Snapshot()
	assert.True(t, snap.Authenticated)
	assert.Equal(t, []string{"e4", "e3", "e2", "e1"}, entryIDs(snap.Entries))
	assert.Equal(t, []string{"Home", "Work"}, sectionNames(snap.Sections))
	assert.Equal(t, []string{"home", "ideas", "work"}, snap.Tags)
	assert.Equal(t, 2, store.CallCount(rowstoretest.MethodSelect))

	// already authenticated: no refetch
	require.NoError(t, c.SetAuthenticated(context.Background(), true))
	assert.Equal(t, 2, store.CallCount(rowstoretest.MethodSelect))
}

func TestCoordinator_SignOutClearsView(t *testing.T) {
	_, c := seededCoordinator(t)
	require.NoError(t, c.SelectSection(context.Background(), "s1"))

	require.NoError(t, c.SetAuthenticated(context.Background(), false))
	snap := c.Snapshot()
	assert.False(t, snap.Authenticated)
	assert.Empty(t, snap.Entries)
	assert.Empty(t, snap.Sections)
	assert.Equal(t, Home(), snap.State)
}

func TestCoordinator_FolderAndDateChangesFetch(t *testing.T) {
	store, c := seededCoordinator(t)
	ctx := context.Background()
	before := entrySelects(store)

	require.NoError(t, c.SelectSection(ctx, "s2"))
	assert.Equal(t, before+1, entrySelects(store))
	assert.Equal(t, []string{"e4"}, entryIDs(c.Snapshot().Entries))

	require.NoError(t, c.SelectSection(ctx, "s2"))
	assert.Equal(t, before+1, entrySelects(store), "same folder does not refetch")

	require.NoError(t, c.SelectSection(ctx, ""))
	require.NoError(t, c.SetStart(ctx, day(2024, 3, 2)))
	require.NoError(t, c.SetEnd(ctx, day(2024, 3, 3)))
	assert.Equal(t, before+4, entrySelects(store))
	assert.Equal(t, []string{"e3", "e2"}, entryIDs(c.Snapshot().Entries))
}

func TestCoordinator_SearchAndTagNeverFetch(t *testing.T) {
	store, c := seededCoordinator(t)
	before := store.CallCount("")

	c.SetSearch("PLAN")
	snap := c.Snapshot()
	assert.Equal(t, []string{"e2"}, entryIDs(snap.Visible))

	c.SetSearch("")
	c.SetTag("work")
	snap = c.Snapshot()
	assert.Equal(t, []string{"e2", "e1"}, entryIDs(snap.Visible))
	assert.Equal(t, []string{"home", "ideas", "work"}, snap.Tags, "tag universe ignores the tag filter")
	assert.Len(t, snap.Entries, 4)

	assert.Equal(t, before, store.CallCount(""))
}

func TestCoordinator_NoFetchOutsideBrowsingOrSignedOut(t *testing.T) {
	store, c := seededCoordinator(t)
	ctx := context.Background()
	before := entrySelects(store)

	require.NoError(t, c.Begin(CreatingEntry, ""))
	require.NoError(t, c.SelectSection(ctx, "s1"))
	assert.Equal(t, before, entrySelects(store))

	require.NoError(t, c.SetAuthenticated(ctx, false))
	before = entrySelects(store)
	require.NoError(t, c.SelectSection(ctx, "s2"))
	assert.Equal(t, before, entrySelects(store))
}

func TestCoordinator_HomeAlwaysRefetches(t *testing.T) {
	store, c := seededCoordinator(t)
	ctx := context.Background()
	require.NoError(t, c.SelectSection(ctx, "s1"))
	c.SetSearch("x")
	c.SetTag("work")
	before := entrySelects(store)

	require.NoError(t, c.Home(ctx))
	assert.Equal(t, Home(), c.State())
	assert.Equal(t, before+1, entrySelects(store))

	require.NoError(t, c.Home(ctx))
	assert.Equal(t, before+2, entrySelects(store))
}

func TestCoordinator_CreateEntryRefetchesAndExitsMode(t *testing.T) {
	store, c := seededCoordinator(t)
	ctx := context.Background()
	require.NoError(t, c.Begin(CreatingEntry, ""))

	require.NoError(t, c.CreateEntry(ctx, Entry{Title: "New", Content: "<p>x</p>", Tags: []string{"Fresh"}}))
	snap := c.Snapshot()
	assert.Equal(t, Browsing, snap.State.Mode)
	assert.Len(t, snap.Entries, 5)
	assert.Contains(t, snap.Tags, "fresh")
	assert.Equal(t, 1, store.CallCount(rowstoretest.MethodInsert))
}

func TestCoordinator_UpdateEntryUsesEditTarget(t *testing.T) {
	_, c := seededCoordinator(t)
	ctx := context.Background()
	require.NoError(t, c.Begin(EditingEntry, "e4"))

	require.NoError(t, c.UpdateEntry(ctx, Entry{Title: "Garden", Content: "peppers", SectionID: "s2"}))
	snap := c.Snapshot()
	assert.Equal(t, Browsing, snap.State.Mode)
	assert.Equal(t, "peppers", snap.Entries[0].Content)
}

func TestCoordinator_UnauthenticatedCreateSection(t *testing.T) {
	store := rowstoretest.NewMemory()
	c := NewCoordinator(NewRepository(store, staticActors{}), nopLogger{})
	require.NoError(t, c.Begin(CreatingSection, ""))

	err := c.CreateSection(context.Background(), Section{Name: "Work"})
	assert.ErrorIs(t, err, ErrAuthRequired)
	assert.Zero(t, store.CallCount(""))

	snap := c.Snapshot()
	assert.Equal(t, Browsing, snap.State.Mode)
	assert.Equal(t, MsgAuthRequired, snap.Message)
}

func TestCoordinator_SectionCreateAndUpdate(t *testing.T) {
	_, c := seededCoordinator(t)
	ctx := context.Background()

	require.NoError(t, c.Begin(CreatingSection, ""))
	require.NoError(t, c.CreateSection(ctx, Section{Name: "Archive"}))
	assert.Equal(t, []string{"Archive", "Home", "Work"}, sectionNames(c.Snapshot().Sections))

	require.NoError(t, c.Begin(EditingSection, "s1"))
	name := "Job"
	require.NoError(t, c.UpdateSection(ctx, "", SectionPatch{Name: &name}))
	snap := c.Snapshot()
	assert.Equal(t, []string{"Archive", "Home", "Job"}, sectionNames(snap.Sections))
	assert.Equal(t, Browsing, snap.State.Mode)
}

func TestCoordinator_DeleteSelectedFolder(t *testing.T) {
	store, c := seededCoordinator(t)
	ctx := context.Background()
	require.NoError(t, c.SelectSection(ctx, "s1"))

	res, err := c.DeleteSection(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, DeleteResult{Phase: DeleteCompleted, Unfiled: 3}, res)

	snap := c.Snapshot()
	assert.Empty(t, snap.State.SectionID, "selection cleared")
	assert.Equal(t, []string{"Home"}, sectionNames(snap.Sections))
	require.Len(t, snap.Entries, 4)
	for _, e := range snap.Entries {
		if e.ID != "e4" {
			assert.Empty(t, e.SectionID)
		}
	}
	assert.Empty(t, snap.Message)
	assert.Len(t, store.Rows("sections"), 1)
}

func TestCoordinator_DeleteOtherFolderKeepsSelection(t *testing.T) {
	_, c := seededCoordinator(t)
	ctx := context.Background()
	require.NoError(t, c.SelectSection(ctx, "s1"))

	_, err := c.DeleteSection(ctx, "s2")
	require.NoError(t, err)
	snap := c.Snapshot()
	assert.Equal(t, "s1", snap.State.SectionID)
	assert.Equal(t, []string{"Work"}, sectionNames(snap.Sections))
}

func TestCoordinator_DeletePhase2FailureRefetchesAndKeepsSelection(t *testing.T) {
	store, c := seededCoordinator(t)
	ctx := context.Background()
	require.NoError(t, c.SelectSection(ctx, "s1"))
	store.SetError(rowstoretest.MethodDelete, "sections", errors.New("locked"))
	selectsBefore := store.CallCount(rowstoretest.MethodSelect)

	res, err := c.DeleteSection(ctx, "s1")
	require.Error(t, err)
	assert.Equal(t, DeleteEntriesUnfiled, res.Phase)

	snap := c.Snapshot()
	assert.Equal(t, "s1", snap.State.SectionID)
	assert.Equal(t, MsgDeleteSection, snap.Message)
	assert.Equal(t, selectsBefore+2, store.CallCount(rowstoretest.MethodSelect))
	assert.Empty(t, snap.Entries, "entries of the folder were unfiled")
}

func TestCoordinator_DeletePhase1FailureDoesNotRefetch(t *testing.T) {
	store, c := seededCoordinator(t)
	store.SetError(rowstoretest.MethodUpdate, "entries", errors.New("down"))
	selectsBefore := store.CallCount(rowstoretest.MethodSelect)

	res, err := c.DeleteSection(context.Background(), "s1")
	require.Error(t, err)
	assert.Equal(t, DeleteNotStarted, res.Phase)
	assert.Equal(t, selectsBefore, store.CallCount(rowstoretest.MethodSelect))
	assert.Equal(t, MsgDeleteSection, c.Snapshot().Message)
}

func TestCoordinator_FetchFailureKeepsPreviousList(t *testing.T) {
	store, c := seededCoordinator(t)
	store.SetError(rowstoretest.MethodSelect, "entries", errors.New("timeout"))
	require.NoError(t, c.Begin(CreatingEntry, ""))

	err := c.RefreshEntries(context.Background())
	require.Error(t, err)

	snap := c.Snapshot()
	assert.Len(t, snap.Entries, 4)
	assert.Equal(t, MsgLoadEntries, snap.Message)
	assert.Equal(t, Browsing, snap.State.Mode)

	c.DismissMessage()
	assert.Empty(t, c.Snapshot().Message)
}

func TestCoordinator_StaleFetchIsDropped(t *testing.T) {
	store, c := seededCoordinator(t)
	ctx := context.Background()

	started := make(chan struct{})
	release := make(chan struct{})
	var blocked atomic.Bool
	store.Hook = func(ctx context.Context, method, table string) error {
		if method == rowstoretest.MethodSelect && table == "entries" && blocked.CompareAndSwap(false, true) {
			close(started)
			<-release
		}
		return nil
	}

	slow := make(chan error, 1)
	go func() { slow <- c.SelectSection(ctx, "s1") }()
	<-started

	require.NoError(t, c.SelectSection(ctx, "s2"))
	assert.Equal(t, []string{"e4"}, entryIDs(c.Snapshot().Entries))

	close(release)
	require.NoError(t, <-slow)

	snap := c.Snapshot()
	assert.Equal(t, "s2", snap.State.SectionID)
	assert.Equal(t, []string{"e4"}, entryIDs(snap.Entries), "older completion must not overwrite newer result")
}

func TestCoordinator_BeginRequiresBrowsing(t *testing.T) {
	_, c := seededCoordinator(t)
	require.NoError(t, c.Begin(EditingSection, "s1"))
	assert.ErrorIs(t, c.Begin(CreatingEntry, ""), ErrInvalidTransition)
	require.NoError(t, c.Cancel(context.Background()))
	assert.NoError(t, c.Begin(CreatingEntry, ""))
}

func TestCoordinator_CancelWithoutFilterChangeDoesNotFetch(t *testing.T) {
	store, c := seededCoordinator(t)
	before := entrySelects(store)

	require.NoError(t, c.Begin(EditingEntry, "e1"))
	require.NoError(t, c.Cancel(context.Background()))

	assert.Equal(t, Browsing, c.State().Mode)
	assert.Equal(t, before, entrySelects(store))
}

func TestCoordinator_CancelRefetchesFolderChangedDuringMode(t *testing.T) {
	store, c := seededCoordinator(t)
	ctx := context.Background()

	require.NoError(t, c.Begin(CreatingEntry, ""))
	require.NoError(t, c.SelectSection(ctx, "s2"))
	before := entrySelects(store)

	require.NoError(t, c.Cancel(ctx))

	snap := c.Snapshot()
	assert.Equal(t, Browsing, snap.State.Mode)
	assert.Equal(t, before+1, entrySelects(store))
	for _, e := range snap.Entries {
		assert.Equal(t, "s2", e.SectionID)
	}
	assert.Equal(t, []string{"e4"}, entryIDs(snap.Entries))
}

func TestCoordinator_CancelRefetchesDatesChangedDuringMode(t *testing.T) {
	_, c := seededCoordinator(t)
	ctx := context.Background()

	require.NoError(t, c.Begin(EditingSection, "s1"))
	require.NoError(t, c.SetStart(ctx, day(2024, 3, 3)))
	require.NoError(t, c.Cancel(ctx))

	assert.Equal(t, []string{"e4", "e3"}, entryIDs(c.Snapshot().Entries))
}

func TestCoordinator_FailedSaveResyncsButKeepsMessage(t *testing.T) {
	store, c := seededCoordinator(t)
	ctx := context.Background()

	require.NoError(t, c.Begin(CreatingEntry, ""))
	require.NoError(t, c.SelectSection(ctx, "s2"))

	err := c.CreateEntry(ctx, Entry{Title: " ", Content: "x"})
	var invalid *ValidationError
	require.ErrorAs(t, err, &invalid)

	snap := c.Snapshot()
	assert.Equal(t, Browsing, snap.State.Mode)
	assert.Equal(t, []string{"e4"}, entryIDs(snap.Entries))
	assert.Equal(t, "title: required", snap.Message)
	assert.Zero(t, store.CallCount(rowstoretest.MethodInsert))
}

func TestCoordinator_SectionSaveResyncsEntries(t *testing.T) {
	_, c := seededCoordinator(t)
	ctx := context.Background()

	require.NoError(t, c.Begin(CreatingSection, ""))
	require.NoError(t, c.SelectSection(ctx, "s1"))
	require.NoError(t, c.CreateSection(ctx, Section{Name: "Archive", Color: "#000"}))

	snap := c.Snapshot()
	assert.Equal(t, Browsing, snap.State.Mode)
	assert.Equal(t, []string{"e3", "e2", "e1"}, entryIDs(snap.Entries))
}

func TestCoordinator_DeleteEditedFolderReturnsToBrowsing(t *testing.T) {
	store, c := seededCoordinator(t)
	ctx := context.Background()
	require.NoError(t, c.Begin(EditingSection, "s1"))

	_, err := c.DeleteSection(ctx, "s1")
	require.NoError(t, err)

	s := c.State()
	assert.Equal(t, Browsing, s.Mode)
	assert.Empty(t, s.Target)

	before := entrySelects(store)
	require.NoError(t, c.SelectSection(ctx, "s2"))
	assert.Equal(t, before+1, entrySelects(store))
	assert.NoError(t, c.Begin(CreatingEntry, ""))
}

func TestCoordinator_HalfDoneDeleteReturnsToBrowsing(t *testing.T) {
	store, c := seededCoordinator(t)
	store.SetError(rowstoretest.MethodDelete, "sections", errors.New("locked"))
	require.NoError(t, c.Begin(EditingSection, "s1"))

	res, err := c.DeleteSection(context.Background(), "s1")
	require.Error(t, err)
	assert.Equal(t, DeleteEntriesUnfiled, res.Phase)
	assert.Equal(t, Browsing, c.State().Mode)
}

func TestCoordinator_SuccessfulFetchClearsMessage(t *testing.T) {
	store, c := seededCoordinator(t)
	ctx := context.Background()
	store.SetError(rowstoretest.MethodSelect, "entries", errors.New("timeout"))
	require.Error(t, c.RefreshEntries(ctx))
	require.Equal(t, MsgLoadEntries, c.Snapshot().Message)

	store.SetError(rowstoretest.MethodSelect, "entries", nil)
	require.NoError(t, c.RefreshEntries(ctx))
	assert.Empty(t, c.Snapshot().Message)
}

func TestCoordinator_ParallelRefreshKeepsOtherListFailure(t *testing.T) {
	store, c := seededCoordinator(t)
	ctx := context.Background()
	require.NoError(t, c.SetAuthenticated(ctx, false))
	store.SetError(rowstoretest.MethodSelect, "sections", errors.New("down"))

	require.Error(t, c.SetAuthenticated(ctx, true))

	snap := c.Snapshot()
	assert.Len(t, snap.Entries, 4)
	assert.Equal(t, MsgLoadSections, snap.Message)
}
