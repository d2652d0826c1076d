package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/runoshun/taskdeck/internal/domain"
)

// ShowHistoryInput contains the parameters for listing revisions.
type ShowHistoryInput struct {
	Limit int // Maximum revisions (0 = all)
}

// ShowHistoryOutput contains the revisions, newest first.
type ShowHistoryOutput struct {
	Revisions []domain.Revision
}

// ShowHistory is the use case for listing saved revisions.
type ShowHistory struct {
	history domain.SnapshotHistory
}

// NewShowHistory creates a new ShowHistory use case.
// history is nil when the storage backend keeps no history.
func NewShowHistory(history domain.SnapshotHistory) *ShowHistory {
	return &ShowHistory{history: history}
}

// Execute lists revisions.
func (uc *ShowHistory) Execute(_ context.Context, in ShowHistoryInput) (*ShowHistoryOutput, error) {
	if uc.history == nil {
		return nil, domain.ErrNoHistory
	}
	revs, err := uc.history.History(in.Limit)
	if err != nil {
		return nil, fmt.Errorf("read history: %w", err)
	}
	return &ShowHistoryOutput{Revisions: revs}, nil
}

// RestoreRevisionInput contains the parameters for a restore.
type RestoreRevisionInput struct {
	Revision string // Full or abbreviated revision hash
}

// RestoreRevision is the use case for rolling the data back to a revision.
type RestoreRevision struct {
	history   domain.SnapshotHistory
	store     domain.SnapshotStore
	reminders domain.ReminderScheduler
	logger    domain.Logger
}

// NewRestoreRevision creates a new RestoreRevision use case.
func NewRestoreRevision(history domain.SnapshotHistory, store domain.SnapshotStore, reminders domain.ReminderScheduler, logger domain.Logger) *RestoreRevision {
	return &RestoreRevision{history: history, store: store, reminders: reminders, logger: logger}
}

// Execute restores the revision and re-arms reminders for the restored tasks.
func (uc *RestoreRevision) Execute(_ context.Context, in RestoreRevisionInput) error {
	if uc.history == nil {
		return domain.ErrNoHistory
	}
	rev := strings.TrimSpace(in.Revision)
	if rev == "" {
		return fmt.Errorf("%w: empty revision", domain.ErrRevisionNotFound)
	}
	if err := uc.history.Restore(rev); err != nil {
		return fmt.Errorf("restore %s: %w", rev, err)
	}

	snap, err := uc.store.Load()
	if err != nil {
		return fmt.Errorf("load tasks: %w", err)
	}
	uc.reminders.RescheduleAll(snap.Tasks)
	uc.logger.Info(0, "history", "restored revision "+rev)
	return nil
}
