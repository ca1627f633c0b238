package journal

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/dmitrijs2005/gophjournal/internal/logging"
	"golang.org/x/sync/errgroup"
)

// Snapshot is a consistent copy of the coordinator's view.
type Snapshot struct {
	State         State
	Authenticated bool
	// Entries is the full fetched list; Visible has client filters applied.
	Entries  []Entry
	Visible  []Entry
	Sections []Section
	Tags     []string
	// Message is the last user-facing failure, empty when none.
	Message string
}

// Coordinator owns the view state and the cached entries and folders, and
// decides when to re-fetch them. It is safe for concurrent use; the lock is
// never held across a remote call.
//
// Every fetch takes a sequence number when issued. A completion older than
// the last one applied is dropped, so the most recently issued fetch wins.
type Coordinator struct {
	repo     EntryRepository
	sections *SectionManager
	logger   logging.Logger

	mu            sync.Mutex
	state         State
	authenticated bool
	entries       []Entry
	folders       []Section
	message       string

	entriesIssued   uint64
	entriesApplied  uint64
	sectionsIssued  uint64
	sectionsApplied uint64

	// fetched is the filter of the cached entries list.
	fetched    ServerFilter
	hasFetched bool
}

func NewCoordinator(repo EntryRepository, logger logging.Logger) *Coordinator {
	return &Coordinator{
		repo:     repo,
		sections: NewSectionManager(repo, logger),
		logger:   logger.With("module", "journal"),
		state:    Home(),
	}
}

func (c *Coordinator) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	return Snapshot{
		State:         c.state,
		Authenticated: c.authenticated,
		Entries:       append([]Entry(nil), c.entries...),
		Visible:       FilterEntries(c.entries, c.state.Search, c.state.Tag),
		Sections:      append([]Section(nil), c.folders...),
		Tags:          TagUniverse(c.entries),
		Message:       c.message,
	}
}

func (c *Coordinator) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// DismissMessage clears the stored user-facing message.
func (c *Coordinator) DismissMessage() {
	c.mu.Lock()
	c.message = ""
	c.mu.Unlock()
}

// SetAuthenticated records sign-in state. Becoming authenticated fetches
// entries and folders; signing out drops the cached lists and resets the view.
func (c *Coordinator) SetAuthenticated(ctx context.Context, authenticated bool) error {
	c.mu.Lock()
	was := c.authenticated
	c.authenticated = authenticated
	if !authenticated {
		c.state = Home()
		c.entries = nil
		c.folders = nil
		c.message = ""
		c.hasFetched = false
	}
	c.mu.Unlock()

	if authenticated && !was {
		return c.refreshAll(ctx)
	}
	return nil
}

// SelectSection filters by folder; "" shows every folder.
func (c *Coordinator) SelectSection(ctx context.Context, id string) error {
	return c.update(ctx, func(s State) State { return s.WithSection(id) })
}

// SetStart sets the first included day; the zero time removes the bound.
func (c *Coordinator) SetStart(ctx context.Context, day time.Time) error {
	return c.update(ctx, func(s State) State { return s.WithStart(day) })
}

// SetEnd sets the last included day; the zero time removes the bound.
func (c *Coordinator) SetEnd(ctx context.Context, day time.Time) error {
	return c.update(ctx, func(s State) State { return s.WithEnd(day) })
}

// SetSearch changes the free-text filter. It never fetches.
func (c *Coordinator) SetSearch(q string) {
	c.mu.Lock()
	c.state = c.state.WithSearch(q)
	c.mu.Unlock()
}

// SetTag changes the tag filter. It never fetches.
func (c *Coordinator) SetTag(tag string) {
	c.mu.Lock()
	c.state = c.state.WithTag(tag)
	c.mu.Unlock()
}

// Home clears every filter and the mode, then re-fetches entries even if
// nothing changed.
func (c *Coordinator) Home(ctx context.Context) error {
	c.mu.Lock()
	c.state = Home()
	c.mu.Unlock()
	return c.RefreshEntries(ctx)
}

// Begin enters a create or edit mode; only allowed while browsing.
func (c *Coordinator) Begin(m Mode, target string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	next, err := c.state.Begin(m, target)
	if err != nil {
		return err
	}
	c.state = next
	return nil
}

// Cancel abandons the current create or edit mode. Entries are re-fetched
// if the folder or dates changed while the mode was active.
func (c *Coordinator) Cancel(ctx context.Context) error {
	c.leaveMode()
	return c.syncEntries(ctx, true)
}

func (c *Coordinator) CreateEntry(ctx context.Context, e Entry) error {
	if err := c.repo.CreateEntry(ctx, e); err != nil {
		c.fail(ctx, "create entry", err)
		return err
	}
	c.leaveMode()
	return c.RefreshEntries(ctx)
}

// UpdateEntry saves e. An empty e.ID falls back to the entry being edited.
func (c *Coordinator) UpdateEntry(ctx context.Context, e Entry) error {
	if e.ID == "" {
		if s := c.State(); s.Mode == EditingEntry {
			e.ID = s.Target
		}
	}
	if err := c.repo.UpdateEntry(ctx, e); err != nil {
		c.fail(ctx, "update entry", err)
		return err
	}
	c.leaveMode()
	return c.RefreshEntries(ctx)
}

func (c *Coordinator) CreateSection(ctx context.Context, s Section) error {
	if err := c.sections.Create(ctx, s); err != nil {
		c.fail(ctx, "create section", err)
		return err
	}
	c.leaveMode()
	if err := c.RefreshSections(ctx); err != nil {
		return err
	}
	return c.syncEntries(ctx, false)
}

// UpdateSection patches a folder. An empty id falls back to the folder being edited.
func (c *Coordinator) UpdateSection(ctx context.Context, id string, p SectionPatch) error {
	if id == "" {
		if s := c.State(); s.Mode == EditingSection {
			id = s.Target
		}
	}
	if err := c.sections.Update(ctx, id, p); err != nil {
		c.fail(ctx, "update section", err)
		return err
	}
	c.leaveMode()
	if err := c.RefreshSections(ctx); err != nil {
		return err
	}
	return c.syncEntries(ctx, false)
}

// DeleteSection runs the two-phase folder delete. The selection is cleared
// only when the folder row is actually gone. Once any remote change happened
// the mode returns to Browsing and both lists are re-fetched in parallel.
func (c *Coordinator) DeleteSection(ctx context.Context, id string) (DeleteResult, error) {
	res, err := c.sections.Delete(ctx, id)

	if res.Phase >= DeleteEntriesUnfiled {
		c.mu.Lock()
		c.state = c.state.Finish()
		if res.Phase == DeleteCompleted && c.state.SectionID == id {
			c.state = c.state.WithSection("")
		}
		c.mu.Unlock()
	}

	var refreshErr error
	if res.Phase >= DeleteEntriesUnfiled {
		refreshErr = c.refreshAll(ctx)
	}

	if err != nil {
		c.fail(ctx, "delete section", err)
		return res, err
	}
	return res, refreshErr
}

// RefreshEntries fetches entries for the current folder and date range.
// On failure the previous list is kept; on success any stored message is
// cleared.
func (c *Coordinator) RefreshEntries(ctx context.Context) error {
	return c.fetchEntries(ctx, true)
}

// RefreshSections fetches every folder. On failure the previous list is
// kept; on success any stored message is cleared.
func (c *Coordinator) RefreshSections(ctx context.Context) error {
	return c.fetchSections(ctx, true)
}

func (c *Coordinator) fetchEntries(ctx context.Context, clearMessage bool) error {
	c.mu.Lock()
	c.entriesIssued++
	seq := c.entriesIssued
	filter := ServerFilterFor(c.state)
	c.mu.Unlock()

	entries, err := c.repo.FetchEntries(ctx, filter)

	c.mu.Lock()
	defer c.mu.Unlock()

	if seq < c.entriesApplied {
		c.logger.Debug(ctx, "stale entries fetch dropped", "seq", seq, "applied", c.entriesApplied)
		return nil
	}
	c.entriesApplied = seq
	if err != nil {
		c.failLocked(ctx, "fetch entries", err)
		return err
	}
	c.entries = entries
	c.fetched, c.hasFetched = filter, true
	if clearMessage {
		c.message = ""
	}
	return nil
}

func (c *Coordinator) fetchSections(ctx context.Context, clearMessage bool) error {
	c.mu.Lock()
	c.sectionsIssued++
	seq := c.sectionsIssued
	c.mu.Unlock()

	folders, err := c.repo.FetchSections(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()

	if seq < c.sectionsApplied {
		c.logger.Debug(ctx, "stale sections fetch dropped", "seq", seq, "applied", c.sectionsApplied)
		return nil
	}
	c.sectionsApplied = seq
	if err != nil {
		c.failLocked(ctx, "fetch sections", err)
		return err
	}
	c.folders = folders
	if clearMessage {
		c.message = ""
	}
	return nil
}

// refreshAll fetches both lists in parallel. The message is cleared once up
// front so one list succeeding cannot hide the other one failing.
func (c *Coordinator) refreshAll(ctx context.Context) error {
	c.mu.Lock()
	c.message = ""
	c.mu.Unlock()

	var g errgroup.Group
	g.Go(func() error { return c.fetchSections(ctx, false) })
	g.Go(func() error { return c.fetchEntries(ctx, false) })
	return g.Wait()
}

func (c *Coordinator) leaveMode() {
	c.mu.Lock()
	c.state = c.state.Finish()
	c.mu.Unlock()
}

// syncEntries re-fetches entries when the cached list was fetched for a
// different folder or date range than the current state asks for.
func (c *Coordinator) syncEntries(ctx context.Context, clearMessage bool) error {
	c.mu.Lock()
	stale := c.authenticated && c.state.Mode == Browsing &&
		(!c.hasFetched || !c.fetched.Equal(ServerFilterFor(c.state)))
	c.mu.Unlock()

	if !stale {
		return nil
	}
	return c.fetchEntries(ctx, clearMessage)
}

// update applies fn to the state and re-fetches entries when the backend
// filter changed while browsing and signed in.
func (c *Coordinator) update(ctx context.Context, fn func(State) State) error {
	c.mu.Lock()
	prev := c.state
	next := fn(prev)
	c.state = next
	fetch := c.authenticated && next.Mode == Browsing && !prev.sameFetch(next)
	c.mu.Unlock()

	if !fetch {
		return nil
	}
	return c.RefreshEntries(ctx)
}

// fail records a failed mutation and returns to Browsing. If the folder or
// dates moved during the mode, entries are brought back in line without
// replacing the failure message.
func (c *Coordinator) fail(ctx context.Context, op string, err error) {
	c.mu.Lock()
	c.failLocked(ctx, op, err)
	c.mu.Unlock()

	if syncErr := c.syncEntries(ctx, false); syncErr != nil {
		c.logger.Debug(ctx, "entries resync after failure failed", "error", syncErr)
	}
}

func (c *Coordinator) failLocked(ctx context.Context, op string, err error) {
	var invalid *ValidationError
	if errors.Is(err, ErrAuthRequired) || (errors.As(err, &invalid) && !isRemote(err)) {
		c.logger.Warn(ctx, "operation rejected", "op", op, "error", err)
	} else {
		c.logger.Error(ctx, "operation failed", "op", op, "error", err)
	}
	c.message = UserMessage(err)
	c.state = c.state.Finish()
}

func isRemote(err error) bool {
	var remote *RemoteError
	return errors.As(err, &remote)
}
