package usecase

import (
	"fmt"
	"slices"

	"github.com/runoshun/taskdeck/internal/domain"
)

// MergeSnapshots combines local and remote data. It never fails:
//   - tasks are unioned by ID, the side with the newer LastModified wins (ties keep local);
//   - IDs tombstoned on either side are dropped and the tombstones are unioned;
//   - projects keep local order with remote-only projects appended;
//   - settings come from remote.
//
// The result shares no memory with its inputs.
func MergeSnapshots(local, remote *domain.Snapshot) *domain.Snapshot {
	out := &domain.Snapshot{
		UpdatedAt: remote.UpdatedAt,
		Settings:  remote.Settings,
	}

	deleted := slices.Clone(local.DeletedTaskIDs)
	for _, id := range remote.DeletedTaskIDs {
		if !slices.Contains(deleted, id) {
			deleted = append(deleted, id)
		}
	}
	slices.Sort(deleted)
	out.DeletedTaskIDs = deleted

	remoteByID := make(map[int64]*domain.Task, len(remote.Tasks))
	for _, t := range remote.Tasks {
		remoteByID[t.ID] = t
	}
	seen := make(map[int64]bool, len(local.Tasks))
	for _, lt := range local.Tasks {
		seen[lt.ID] = true
		if _, gone := slices.BinarySearch(deleted, lt.ID); gone {
			continue
		}
		winner := lt
		if rt, ok := remoteByID[lt.ID]; ok && rt.ModifiedAt().After(lt.ModifiedAt()) {
			winner = rt
		}
		out.Tasks = append(out.Tasks, winner.Clone())
	}
	for _, rt := range remote.Tasks {
		if seen[rt.ID] {
			continue
		}
		if _, gone := slices.BinarySearch(deleted, rt.ID); gone {
			continue
		}
		out.Tasks = append(out.Tasks, rt.Clone())
	}

	out.Projects = slices.Clone(local.Projects)
	for _, p := range remote.Projects {
		if !slices.Contains(out.Projects, p) {
			out.Projects = append(out.Projects, p)
		}
	}

	out.Sanitize()
	for _, t := range out.Tasks {
		if !slices.Contains(out.Projects, t.Project) {
			out.Projects = append(out.Projects, t.Project)
		}
	}
	return out
}

// SyncHost adapts the local store to the sync engine.
type SyncHost struct {
	store     domain.SnapshotStore
	reminders domain.ReminderScheduler
	logger    domain.Logger
}

// NewSyncHost creates a SyncHost.
func NewSyncHost(store domain.SnapshotStore, reminders domain.ReminderScheduler, logger domain.Logger) *SyncHost {
	return &SyncHost{store: store, reminders: reminders, logger: logger}
}

// Snapshot returns the local data.
func (h *SyncHost) Snapshot() (*domain.Snapshot, error) {
	snap, err := h.store.Load()
	if err != nil {
		return nil, fmt.Errorf("load tasks: %w", err)
	}
	return snap, nil
}

// Merge folds remote into the store and re-arms reminders for the result.
func (h *SyncHost) Merge(remote *domain.Snapshot) (*domain.Snapshot, error) {
	var merged *domain.Snapshot
	err := h.store.Update(func(snap *domain.Snapshot) error {
		merged = MergeSnapshots(snap, remote)
		*snap = *merged.Clone()
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("merge remote data: %w", err)
	}

	h.reminders.RescheduleAll(merged.Tasks)
	h.logger.Debug(0, "sync", fmt.Sprintf("merged: %d tasks, %d tombstones", len(merged.Tasks), len(merged.DeletedTaskIDs)))
	return merged, nil
}
