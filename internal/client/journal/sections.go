package journal

import (
	"context"

	"github.com/dmitrijs2005/gophjournal/internal/logging"
)

// DeletePhase is how far a folder delete got.
type DeletePhase int

const (
	// DeleteNotStarted: nothing changed remotely.
	DeleteNotStarted DeletePhase = iota
	// DeleteEntriesUnfiled: entries were unfiled but the folder row remains.
	DeleteEntriesUnfiled
	DeleteCompleted
)

func (p DeletePhase) String() string {
	switch p {
	case DeleteNotStarted:
		return "not started"
	case DeleteEntriesUnfiled:
		return "entries unfiled"
	case DeleteCompleted:
		return "completed"
	default:
		return "unknown"
	}
}

// DeleteResult describes a folder delete attempt.
type DeleteResult struct {
	Phase   DeletePhase
	Unfiled int64
}

// SectionManager handles folder create, update and delete.
type SectionManager struct {
	repo   EntryRepository
	logger logging.Logger
}

func NewSectionManager(repo EntryRepository, logger logging.Logger) *SectionManager {
	return &SectionManager{repo: repo, logger: logger.With("module", "sections")}
}

func (m *SectionManager) Create(ctx context.Context, s Section) error {
	return m.repo.CreateSection(ctx, s)
}

func (m *SectionManager) Update(ctx context.Context, id string, p SectionPatch) error {
	return m.repo.UpdateSection(ctx, id, p)
}

// Delete removes a folder in two non-atomic steps: entries filed under it
// are unfiled first, then the folder row is deleted. The result reports the
// phase reached even when an error is returned, so callers can tell a clean
// failure from a half-done one.
func (m *SectionManager) Delete(ctx context.Context, id string) (DeleteResult, error) {
	res := DeleteResult{Phase: DeleteNotStarted}

	n, err := m.repo.UnfileEntries(ctx, id)
	if err != nil {
		return res, err
	}
	res.Phase = DeleteEntriesUnfiled
	res.Unfiled = n
	m.logger.Debug(ctx, "entries unfiled", "section_id", id, "count", n)

	if err := m.repo.DeleteSection(ctx, id); err != nil {
		m.logger.Warn(ctx, "folder left behind after unfiling its entries", "section_id", id, "error", err)
		return res, err
	}
	res.Phase = DeleteCompleted
	return res, nil
}
