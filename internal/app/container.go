// Package app provides the dependency injection container for the application.
package app

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/runoshun/taskdeck/internal/domain"
	"github.com/runoshun/taskdeck/internal/infra/config"
	"github.com/runoshun/taskdeck/internal/infra/executor"
	"github.com/runoshun/taskdeck/internal/infra/gitstore"
	"github.com/runoshun/taskdeck/internal/infra/jsonstore"
	"github.com/runoshun/taskdeck/internal/infra/logging"
	"github.com/runoshun/taskdeck/internal/infra/notify"
	"github.com/runoshun/taskdeck/internal/infra/syncclient"
	"github.com/runoshun/taskdeck/internal/infra/watch"
	"github.com/runoshun/taskdeck/internal/syncer"
	"github.com/runoshun/taskdeck/internal/usecase"
)

// Config holds the application paths.
type Config struct {
	HomeDir        string // Data directory
	StatePath      string // JSON snapshot file
	GitStorePath   string // Repository of the git backend
	SyncConfigPath string // Local sync settings
}

// NewConfig derives every path from the data directory.
func NewConfig(homeDir string) Config {
	return Config{
		HomeDir:        homeDir,
		StatePath:      domain.StatePath(homeDir),
		GitStorePath:   domain.GitStorePath(homeDir),
		SyncConfigPath: domain.SyncConfigPath(homeDir),
	}
}

// Container provides dependency injection for the application.
// It holds all port implementations and provides factory methods for use cases.
type Container struct {
	// Ports (interfaces bound to implementations)
	Store            domain.SnapshotStore
	StoreInitializer domain.StoreInitializer
	History          domain.SnapshotHistory // nil for the json backend
	SyncConfigs      domain.SyncConfigStore
	Clock            domain.Clock
	Executor         domain.CommandExecutor
	ConfigLoader     domain.ConfigLoader
	ConfigManager    domain.ConfigManager

	// Pointer fields
	AppConfig *domain.Config
	Reminders *notify.Scheduler
	Logger    *logging.Logger
	Slog      *slog.Logger

	// Configuration
	Config Config
}

// New creates a new Container rooted at the data directory.
func New(homeDir string) (*Container, error) {
	cfg := NewConfig(homeDir)

	configLoader := config.NewLoader(cfg.HomeDir)
	appConfig, err := configLoader.Load()
	if err != nil {
		return nil, err
	}

	c := &Container{
		SyncConfigs:   jsonstore.NewSyncConfigStore(cfg.SyncConfigPath),
		Clock:         domain.RealClock{},
		Executor:      executor.NewClient(),
		ConfigLoader:  configLoader,
		ConfigManager: config.NewManager(cfg.HomeDir),
		AppConfig:     appConfig,
		Logger:        logging.New(cfg.HomeDir, logging.ParseLevel(appConfig.Log.Level)),
		Slog: slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: logging.ParseLevel(appConfig.Log.Level),
		})),
		Config: cfg,
	}

	if appConfig.Storage.Backend == domain.StorageGit {
		gitStore, err := gitstore.New(cfg.GitStorePath, appConfig.Storage.Namespace, appConfig.Storage.EncryptionKey)
		if err != nil {
			return nil, err
		}
		c.Store, c.StoreInitializer, c.History = gitStore, gitStore, gitStore
	} else {
		jsonStore := jsonstore.New(cfg.StatePath)
		c.Store, c.StoreInitializer = jsonStore, jsonStore
	}

	c.Reminders = notify.NewScheduler(c.notifier(), c.Logger, appConfig.Notify.DefaultTime)
	return c, nil
}

// NewWithDeps creates a new Container with custom dependencies for testing.
func NewWithDeps(cfg Config, store domain.SnapshotStore, storeInit domain.StoreInitializer, clock domain.Clock, logger *logging.Logger) *Container {
	appConfig := domain.NewDefaultConfig()
	c := &Container{
		Store:            store,
		StoreInitializer: storeInit,
		SyncConfigs:      jsonstore.NewSyncConfigStore(cfg.SyncConfigPath),
		Clock:            clock,
		Executor:         executor.NewClient(),
		ConfigLoader:     config.NewLoader(cfg.HomeDir),
		ConfigManager:    config.NewManager(cfg.HomeDir),
		AppConfig:        appConfig,
		Logger:           logger,
		Slog:             slog.New(slog.NewTextHandler(io.Discard, nil)),
		Config:           cfg,
	}
	c.Reminders = notify.NewScheduler(notify.NewLogNotifier(logger), logger, appConfig.Notify.DefaultTime)
	return c
}

func (c *Container) notifier() domain.Notifier {
	if c.AppConfig.Notify.Command != "" {
		return notify.NewCommandNotifier(c.Executor, c.AppConfig.Notify.Command)
	}
	return notify.NewLogNotifier(c.Logger)
}

// reminders returns the scheduler, or a no-op when reminders are disabled.
func (c *Container) reminders() domain.ReminderScheduler {
	if !c.AppConfig.Notify.Enabled {
		return noReminders{}
	}
	return c.Reminders
}

// StartReminders arms every stored task, installs the urgent digest and starts firing.
// Only long-running commands call it.
func (c *Container) StartReminders() error {
	if !c.AppConfig.Notify.Enabled {
		return nil
	}
	if err := c.RefreshReminders(); err != nil {
		return err
	}

	urgent := c.UrgentTodayUseCase()
	err := c.Reminders.SetDigest(c.AppConfig.Notify.Digest, func() (string, string, bool) {
		body, ok := urgent.Digest(context.Background())
		return domain.DefaultNotifyTitle, body, ok
	})
	if err != nil {
		return err
	}
	c.Reminders.Start()
	return nil
}

// RefreshReminders rearms reminders from the stored tasks.
func (c *Container) RefreshReminders() error {
	if !c.AppConfig.Notify.Enabled {
		return nil
	}
	snap, err := c.Store.Load()
	if err != nil {
		return err
	}
	c.Reminders.RescheduleAll(snap.Tasks)
	return nil
}

// WatchStore calls onChange whenever any process writes the store, until ctx is done.
func (c *Container) WatchStore(ctx context.Context, onChange func()) error {
	dirs, match := watch.StoreTargets(c.Config.HomeDir, c.AppConfig.Storage)
	w, err := watch.New(dirs, match, watch.DefaultQuiet, onChange, c.Logger)
	if err != nil {
		return err
	}
	go w.Run(ctx)
	return nil
}

// Close stops reminders and closes log files.
func (c *Container) Close() error {
	c.Reminders.Stop()
	return c.Logger.Close()
}

// NewSyncEngine builds a sync engine for cfg. onStatus may be nil.
func (c *Container) NewSyncEngine(cfg domain.SyncConfig, onStatus func(syncer.Status)) *syncer.Engine {
	timing := c.AppConfig.Sync
	return syncer.New(
		syncclient.New(cfg, timing.Timeout),
		c.SyncHost(),
		syncer.Options{
			Logger:       c.Logger,
			OnStatus:     onStatus,
			PollInterval: timing.PollInterval,
			Debounce:     timing.Debounce,
			RepushDelay:  timing.RepushDelay,
			Timeout:      timing.Timeout,
		},
	)
}

// SyncHost returns the adapter between the sync engine and the local store.
func (c *Container) SyncHost() *usecase.SyncHost {
	return usecase.NewSyncHost(c.Store, c.reminders(), c.Logger)
}

// UseCase factory methods

// InitStoreUseCase returns a new InitStore use case.
func (c *Container) InitStoreUseCase() *usecase.InitStore {
	return usecase.NewInitStore(c.StoreInitializer, c.Logger)
}

// NewTaskUseCase returns a new NewTask use case.
func (c *Container) NewTaskUseCase() *usecase.NewTask {
	return usecase.NewNewTask(c.Store, c.reminders(), c.Clock, c.Logger)
}

// CreateTasksFromFileUseCase returns a new CreateTasksFromFile use case.
func (c *Container) CreateTasksFromFileUseCase() *usecase.CreateTasksFromFile {
	return usecase.NewCreateTasksFromFile(c.Store, c.reminders(), c.Clock, c.Logger)
}

// ToggleTaskUseCase returns a new ToggleTask use case.
func (c *Container) ToggleTaskUseCase() *usecase.ToggleTask {
	return usecase.NewToggleTask(c.Store, c.reminders(), c.Clock, c.Logger)
}

// ShowTaskUseCase returns a new ShowTask use case.
func (c *Container) ShowTaskUseCase() *usecase.ShowTask {
	return usecase.NewShowTask(c.Store)
}

// EditTaskUseCase returns a new EditTask use case.
func (c *Container) EditTaskUseCase() *usecase.EditTask {
	return usecase.NewEditTask(c.Store, c.reminders(), c.Clock, c.Logger)
}

// DeleteTaskUseCase returns a new DeleteTask use case.
func (c *Container) DeleteTaskUseCase() *usecase.DeleteTask {
	return usecase.NewDeleteTask(c.Store, c.reminders(), c.Clock, c.Logger)
}

// EditDependencyUseCase returns a new EditDependency use case.
func (c *Container) EditDependencyUseCase() *usecase.EditDependency {
	return usecase.NewEditDependency(c.Store, c.Clock, c.Logger)
}

// ListDayUseCase returns a new ListDay use case.
func (c *Container) ListDayUseCase() *usecase.ListDay {
	return usecase.NewListDay(c.Store, c.Clock)
}

// UrgentTodayUseCase returns a new UrgentToday use case.
func (c *Container) UrgentTodayUseCase() *usecase.UrgentToday {
	return usecase.NewUrgentToday(c.Store, c.Clock)
}

// ShowMonthUseCase returns a new ShowMonth use case.
func (c *Container) ShowMonthUseCase() *usecase.ShowMonth {
	return usecase.NewShowMonth(c.Store, c.Clock)
}

// ListUndatedUseCase returns a new ListUndated use case.
func (c *Container) ListUndatedUseCase() *usecase.ListUndated {
	return usecase.NewListUndated(c.Store)
}

// ListProjectsUseCase returns a new ListProjects use case.
func (c *Container) ListProjectsUseCase() *usecase.ListProjects {
	return usecase.NewListProjects(c.Store)
}

// AddProjectUseCase returns a new AddProject use case.
func (c *Container) AddProjectUseCase() *usecase.AddProject {
	return usecase.NewAddProject(c.Store, c.Logger)
}

// DeleteProjectUseCase returns a new DeleteProject use case.
func (c *Container) DeleteProjectUseCase() *usecase.DeleteProject {
	return usecase.NewDeleteProject(c.Store, c.Clock, c.Logger)
}

// ExportDataUseCase returns a new ExportData use case.
func (c *Container) ExportDataUseCase() *usecase.ExportData {
	return usecase.NewExportData(c.Store, c.Clock)
}

// ImportDataUseCase returns a new ImportData use case.
func (c *Container) ImportDataUseCase() *usecase.ImportData {
	return usecase.NewImportData(c.Store, c.reminders(), c.Logger)
}

// SyncControlUseCase returns a new SyncControl use case.
func (c *Container) SyncControlUseCase() *usecase.SyncControl {
	return usecase.NewSyncControl(c.SyncConfigs, func(cfg domain.SyncConfig) usecase.SyncEngine {
		return c.NewSyncEngine(cfg, nil)
	}, c.Logger)
}

// ShowHistoryUseCase returns a new ShowHistory use case.
func (c *Container) ShowHistoryUseCase() *usecase.ShowHistory {
	return usecase.NewShowHistory(c.History)
}

// RestoreRevisionUseCase returns a new RestoreRevision use case.
func (c *Container) RestoreRevisionUseCase() *usecase.RestoreRevision {
	return usecase.NewRestoreRevision(c.History, c.Store, c.reminders(), c.Logger)
}

// ShowLogsUseCase returns a new ShowLogs use case.
func (c *Container) ShowLogsUseCase() *usecase.ShowLogs {
	return usecase.NewShowLogs(c.Store, func(taskID int64, n int) ([]string, error) {
		return logging.Tail(c.Config.HomeDir, taskID, n)
	})
}

// ShowConfigUseCase returns a new ShowConfig use case.
func (c *Container) ShowConfigUseCase() *usecase.ShowConfig {
	return usecase.NewShowConfig(c.ConfigManager, c.ConfigLoader)
}

// ShowConfigTemplateUseCase returns a new ShowConfigTemplate use case.
func (c *Container) ShowConfigTemplateUseCase() *usecase.ShowConfigTemplate {
	return usecase.NewShowConfigTemplate()
}

// InitConfigUseCase returns a new InitConfig use case.
func (c *Container) InitConfigUseCase() *usecase.InitConfig {
	return usecase.NewInitConfig(c.ConfigManager)
}
