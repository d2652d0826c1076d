package domain

import (
	"slices"
	"time"
)

// Settings are user preferences that travel with the data set.
type Settings struct {
	Overclock       bool `json:"overclock"`       // 24-hour clock display
	OverclockLocked bool `json:"overclockLocked"` // Lock the clock preference
}

// Snapshot is the whole data set: the unit of local persistence and of sync.
// Fields are ordered to minimize memory padding.
type Snapshot struct {
	UpdatedAt      string   `json:"updatedAt,omitempty"`      // Server stamp of the last write
	Tasks          []*Task  `json:"tasks"`                    // Root tasks
	Projects       []string `json:"projects"`                 // Ordered project names
	DeletedTaskIDs []int64  `json:"deletedTaskIds,omitempty"` // Tombstones for merge
	Settings       Settings `json:"settings"`                 // Shared preferences
}

// NewSnapshot returns an empty data set with the default projects.
func NewSnapshot() *Snapshot {
	return &Snapshot{
		Tasks:    []*Task{},
		Projects: DefaultProjects(),
	}
}

// Sanitize fills nil collections so the snapshot always encodes arrays.
func (s *Snapshot) Sanitize() {
	if s.Tasks == nil {
		s.Tasks = []*Task{}
	}
	if s.Projects == nil {
		s.Projects = []string{}
	}
	tasks := s.Tasks[:0]
	for _, t := range s.Tasks {
		if t == nil {
			continue
		}
		t.Sanitize()
		tasks = append(tasks, t)
	}
	s.Tasks = tasks
}

// Clone returns a deep copy.
func (s *Snapshot) Clone() *Snapshot {
	c := *s
	c.Tasks = make([]*Task, len(s.Tasks))
	for i, t := range s.Tasks {
		c.Tasks[i] = t.Clone()
	}
	c.Projects = slices.Clone(s.Projects)
	c.DeletedTaskIDs = slices.Clone(s.DeletedTaskIDs)
	return &c
}

// Task returns the task with the given ID, or nil.
func (s *Snapshot) Task(id int64) *Task {
	return findTask(s.Tasks, id)
}

// NextID returns a fresh task ID. IDs are millisecond timestamps,
// bumped past the largest existing ID so rapid creation stays unique.
func (s *Snapshot) NextID(now time.Time) int64 {
	id := now.UnixMilli()
	for _, t := range s.Tasks {
		if t.ID >= id {
			id = t.ID + 1
		}
	}
	for _, d := range s.DeletedTaskIDs {
		if d >= id {
			id = d + 1
		}
	}
	return id
}

// RemoveTasks drops the tasks matched by drop and records tombstones.
// It returns the removed IDs.
func (s *Snapshot) RemoveTasks(drop func(*Task) bool) []int64 {
	var removed []int64
	kept := make([]*Task, 0, len(s.Tasks))
	for _, t := range s.Tasks {
		if drop(t) {
			removed = append(removed, t.ID)
			continue
		}
		kept = append(kept, t)
	}
	s.Tasks = kept
	for _, id := range removed {
		if !slices.Contains(s.DeletedTaskIDs, id) {
			s.DeletedTaskIDs = append(s.DeletedTaskIDs, id)
		}
	}
	return removed
}

// HasProject reports whether name is in the project list.
func (s *Snapshot) HasProject(name string) bool {
	return slices.Contains(s.Projects, name)
}

// SyncConfig holds the client's connection settings. It stays local.
type SyncConfig struct {
	ServerURL string `json:"serverUrl"`
	Password  string `json:"password"`
	Enabled   bool   `json:"enabled"`
}

// DefaultServerURL is the sync server address used until configured.
const DefaultServerURL = "http://localhost:3001"

// DefaultSyncConfig returns a disabled config pointing at the default server.
func DefaultSyncConfig() SyncConfig {
	return SyncConfig{ServerURL: DefaultServerURL}
}

// ExportVersion is the version written into export files.
const ExportVersion = 1

// Export is the on-disk backup format.
type Export struct {
	ExportedAt string   `json:"exportedAt"`
	Tasks      []*Task  `json:"tasks"`
	Projects   []string `json:"projects"`
	Settings   Settings `json:"settings"`
	Version    int      `json:"version"`
}

// Revision is one saved version of the data set in a store that keeps history.
// Fields are ordered to minimize memory padding.
type Revision struct {
	When    time.Time // Commit time
	Hash    string    // Revision identifier
	Message string    // Summary of the change
	Tasks   int       // Number of root tasks
}
