package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/runoshun/taskdeck/internal/domain"
)

// ExportDataOutput contains the encoded backup.
type ExportDataOutput struct {
	Data  []byte // Indented JSON
	Tasks int
}

// ExportData is the use case for writing a backup.
type ExportData struct {
	store domain.SnapshotStore
	clock domain.Clock
}

// NewExportData creates a new ExportData use case.
func NewExportData(store domain.SnapshotStore, clock domain.Clock) *ExportData {
	return &ExportData{store: store, clock: clock}
}

// Execute encodes the whole data set in the export format.
func (uc *ExportData) Execute(_ context.Context) (*ExportDataOutput, error) {
	snap, err := uc.store.Load()
	if err != nil {
		return nil, fmt.Errorf("load tasks: %w", err)
	}
	export := domain.Export{
		Version:    domain.ExportVersion,
		ExportedAt: uc.clock.Now().UTC().Format(time.RFC3339),
		Tasks:      snap.Tasks,
		Projects:   snap.Projects,
		Settings:   snap.Settings,
	}
	data, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode export: %w", err)
	}
	return &ExportDataOutput{Data: data, Tasks: len(snap.Tasks)}, nil
}

// ImportDataInput contains the parameters for restoring a backup.
type ImportDataInput struct {
	Data []byte
}

// ImportDataOutput contains the result of an import.
type ImportDataOutput struct {
	Tasks    int
	Projects int
}

// ImportData is the use case for restoring a backup. It replaces local data.
type ImportData struct {
	store     domain.SnapshotStore
	reminders domain.ReminderScheduler
	logger    domain.Logger
}

// NewImportData creates a new ImportData use case.
func NewImportData(store domain.SnapshotStore, reminders domain.ReminderScheduler, logger domain.Logger) *ImportData {
	return &ImportData{store: store, reminders: reminders, logger: logger}
}

// importFile is the lenient shape of an export file. Every part is optional.
type importFile struct {
	Settings *domain.Settings `json:"settings"`
	Tasks    []*domain.Task   `json:"tasks"`
	Projects []string         `json:"projects"`
	Version  int              `json:"version"`
}

// Execute decodes a backup and applies whatever parts it contains.
// Missing task lists are sanitized; absent sections leave local data alone.
func (uc *ImportData) Execute(_ context.Context, in ImportDataInput) (*ImportDataOutput, error) {
	var file importFile
	if err := json.Unmarshal(in.Data, &file); err != nil {
		return nil, fmt.Errorf("import failed: invalid JSON: %w", err)
	}
	if file.Version > domain.ExportVersion {
		return nil, fmt.Errorf("%w: %d", domain.ErrUnsupportedVersion, file.Version)
	}

	var tasks []*domain.Task
	err := uc.store.Update(func(snap *domain.Snapshot) error {
		if file.Tasks != nil {
			snap.Tasks = file.Tasks
		}
		if file.Projects != nil {
			snap.Projects = file.Projects
		}
		if file.Settings != nil {
			snap.Settings = *file.Settings
		}
		snap.Sanitize()
		tasks = snap.Tasks
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("import data: %w", err)
	}

	uc.reminders.RescheduleAll(tasks)
	uc.logger.Info(0, "import", fmt.Sprintf("imported %d tasks, %d projects", len(file.Tasks), len(file.Projects)))
	return &ImportDataOutput{Tasks: len(file.Tasks), Projects: len(file.Projects)}, nil
}
