// Package testutil provides shared test utilities and mock implementations.
package testutil

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/runoshun/taskdeck/internal/domain"
)

// MockClock is a test double for domain.Clock.
type MockClock struct {
	NowTime time.Time
}

// Now returns the configured time.
func (m *MockClock) Now() time.Time {
	return m.NowTime
}

// ClockAt returns a MockClock set to noon local time on the given date.
func ClockAt(date string) *MockClock {
	return &MockClock{NowTime: domain.MustParseDate(date).At(12, 0, time.Local)}
}

// MockSnapshotStore is an in-memory domain.SnapshotStore.
// Fields are ordered to minimize memory padding.
type MockSnapshotStore struct {
	Snap      *domain.Snapshot
	LoadErr   error
	SaveErr   error
	SaveCount int
	mu        sync.Mutex
}

// NewMockSnapshotStore creates a store holding a fresh data set.
func NewMockSnapshotStore() *MockSnapshotStore {
	return &MockSnapshotStore{Snap: domain.NewSnapshot()}
}

// NewMockSnapshotStoreWith creates a store holding the given tasks.
func NewMockSnapshotStoreWith(tasks ...*domain.Task) *MockSnapshotStore {
	m := NewMockSnapshotStore()
	m.Snap.Tasks = append(m.Snap.Tasks, tasks...)
	m.Snap.Sanitize()
	return m
}

// Load returns a copy of the stored snapshot.
func (m *MockSnapshotStore) Load() (*domain.Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.LoadErr != nil {
		return nil, m.LoadErr
	}
	if m.Snap == nil {
		return nil, domain.ErrNotInitialized
	}
	return m.Snap.Clone(), nil
}

// Save stores a copy of snap.
func (m *MockSnapshotStore) Save(snap *domain.Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SaveErr != nil {
		return m.SaveErr
	}
	m.Snap = snap.Clone()
	m.SaveCount++
	return nil
}

// Update applies fn to a copy and stores it if fn succeeds.
func (m *MockSnapshotStore) Update(fn func(snap *domain.Snapshot) error) error {
	snap, err := m.Load()
	if err != nil {
		return err
	}
	if err := fn(snap); err != nil {
		return err
	}
	return m.Save(snap)
}

// Current returns the stored snapshot without copying.
func (m *MockSnapshotStore) Current() *domain.Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Snap
}

// MockStoreInitializer is a test double for domain.StoreInitializer.
type MockStoreInitializer struct {
	InitErr     error
	Initialized bool
}

// IsInitialized reports whether Initialize succeeded.
func (m *MockStoreInitializer) IsInitialized() bool { return m.Initialized }

// Initialize records the call.
func (m *MockStoreInitializer) Initialize() error {
	if m.InitErr != nil {
		return m.InitErr
	}
	m.Initialized = true
	return nil
}

// MockSyncConfigStore is an in-memory domain.SyncConfigStore.
type MockSyncConfigStore struct {
	SaveErr error
	Config  domain.SyncConfig
}

// NewMockSyncConfigStore creates a store holding the default config.
func NewMockSyncConfigStore() *MockSyncConfigStore {
	return &MockSyncConfigStore{Config: domain.DefaultSyncConfig()}
}

// LoadSyncConfig returns the stored config.
func (m *MockSyncConfigStore) LoadSyncConfig() (domain.SyncConfig, error) {
	return m.Config, nil
}

// SaveSyncConfig stores cfg.
func (m *MockSyncConfigStore) SaveSyncConfig(cfg domain.SyncConfig) error {
	if m.SaveErr != nil {
		return m.SaveErr
	}
	m.Config = cfg
	return nil
}

// MockSyncRemote is an in-memory sync server.
// Fields are ordered to minimize memory padding.
type MockSyncRemote struct {
	Data        *domain.Snapshot
	Err         error // Returned by every call when set
	AuthErr     error // Returned by AuthCheck when set
	Stamps      []string
	PutCount    int
	FetchCount  int
	StampCount  int
	stampSerial int
	mu          sync.Mutex
}

// NewMockSyncRemote creates a remote holding default data stamped "t0".
func NewMockSyncRemote() *MockSyncRemote {
	snap := domain.NewSnapshot()
	snap.UpdatedAt = "t0"
	return &MockSyncRemote{Data: snap}
}

// UpdatedAt returns the current stamp.
func (m *MockSyncRemote) UpdatedAt(_ context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.StampCount++
	if m.Err != nil {
		return "", m.Err
	}
	return m.Data.UpdatedAt, nil
}

// Fetch returns a copy of the data.
func (m *MockSyncRemote) Fetch(_ context.Context) (*domain.Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.FetchCount++
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Data.Clone(), nil
}

// Put stores snap with a fresh stamp and returns it.
func (m *MockSyncRemote) Put(_ context.Context, snap *domain.Snapshot) (*domain.Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.PutCount++
	if m.Err != nil {
		return nil, m.Err
	}
	m.Data = snap.Clone()
	m.Data.UpdatedAt = m.nextStampLocked()
	return m.Data.Clone(), nil
}

// AuthCheck returns AuthErr or Err.
func (m *MockSyncRemote) AuthCheck(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.AuthErr != nil {
		return m.AuthErr
	}
	return m.Err
}

// RemoteWrite simulates another client replacing the data.
func (m *MockSyncRemote) RemoteWrite(fn func(snap *domain.Snapshot)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	fn(m.Data)
	m.Data.UpdatedAt = m.nextStampLocked()
}

// Counts returns the put and fetch counters.
func (m *MockSyncRemote) Counts() (puts, fetches int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.PutCount, m.FetchCount
}

// SetErr sets the error returned by every call.
func (m *MockSyncRemote) SetErr(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Err = err
}

func (m *MockSyncRemote) nextStampLocked() string {
	m.stampSerial++
	stamp := fmt.Sprintf("t%d", m.stampSerial)
	m.Stamps = append(m.Stamps, stamp)
	return stamp
}

// Notification is one delivered reminder.
type Notification struct {
	Title string
	Body  string
}

// MockNotifier records notifications.
type MockNotifier struct {
	Err  error
	Sent []Notification
	mu   sync.Mutex
}

// Notify records the notification.
func (m *MockNotifier) Notify(_ context.Context, title, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.Sent = append(m.Sent, Notification{Title: title, Body: body})
	return nil
}

// Delivered returns a copy of the recorded notifications.
func (m *MockNotifier) Delivered() []Notification {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Notification(nil), m.Sent...)
}

// MockReminderScheduler records reminder calls.
type MockReminderScheduler struct {
	Armed       map[int64]bool
	Cancelled   []int64
	Rescheduled int
}

// NewMockReminderScheduler creates an empty MockReminderScheduler.
func NewMockReminderScheduler() *MockReminderScheduler {
	return &MockReminderScheduler{Armed: make(map[int64]bool)}
}

// Schedule arms dated, open tasks.
func (m *MockReminderScheduler) Schedule(task *domain.Task) bool {
	delete(m.Armed, task.ID)
	if task.Date.IsZero() || task.Completed {
		return false
	}
	m.Armed[task.ID] = true
	return true
}

// Cancel records the cancellation.
func (m *MockReminderScheduler) Cancel(taskID int64) {
	delete(m.Armed, taskID)
	m.Cancelled = append(m.Cancelled, taskID)
}

// RescheduleAll re-arms every task.
func (m *MockReminderScheduler) RescheduleAll(tasks []*domain.Task) {
	m.Rescheduled++
	m.Armed = make(map[int64]bool)
	for _, t := range tasks {
		m.Schedule(t)
	}
}

// LogEntry is one recorded log line.
// Fields are ordered to minimize memory padding.
type LogEntry struct {
	Level    string
	Category string
	Msg      string
	TaskID   int64
}

// MockLogger records log lines.
type MockLogger struct {
	Entries []LogEntry
	mu      sync.Mutex
}

func (m *MockLogger) add(level string, taskID int64, category, msg string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Entries = append(m.Entries, LogEntry{Level: level, TaskID: taskID, Category: category, Msg: msg})
}

// Info records an info line.
func (m *MockLogger) Info(taskID int64, category, msg string) { m.add("INFO", taskID, category, msg) }

// Debug records a debug line.
func (m *MockLogger) Debug(taskID int64, category, msg string) { m.add("DEBUG", taskID, category, msg) }

// Warn records a warning line.
func (m *MockLogger) Warn(taskID int64, category, msg string) { m.add("WARN", taskID, category, msg) }

// Error records an error line.
func (m *MockLogger) Error(taskID int64, category, msg string) { m.add("ERROR", taskID, category, msg) }

// Lines returns a copy of the recorded entries.
func (m *MockLogger) Lines() []LogEntry {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]LogEntry(nil), m.Entries...)
}

// MockExecutor records executed commands.
// OnInteractive, when set, runs in place of an interactive program.
type MockExecutor struct {
	OnInteractive func(cmd *domain.ExecCommand) error
	Err           error
	Output        []byte
	Commands      []*domain.ExecCommand
	mu            sync.Mutex
}

// Execute records cmd and returns Output and Err.
func (m *MockExecutor) Execute(_ context.Context, cmd *domain.ExecCommand) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Commands = append(m.Commands, cmd)
	return m.Output, m.Err
}

// ExecuteInteractive records cmd and returns Err.
func (m *MockExecutor) ExecuteInteractive(cmd *domain.ExecCommand) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Commands = append(m.Commands, cmd)
	if m.OnInteractive != nil {
		return m.OnInteractive(cmd)
	}
	return m.Err
}

// MockConfigLoader is a test double for domain.ConfigLoader.
type MockConfigLoader struct {
	Config       *domain.Config
	GlobalConfig *domain.Config
	LoadErr      error
}

// NewMockConfigLoader creates a loader returning the default config.
func NewMockConfigLoader() *MockConfigLoader {
	return &MockConfigLoader{Config: domain.NewDefaultConfig()}
}

// Load returns the configured config.
func (m *MockConfigLoader) Load() (*domain.Config, error) {
	if m.LoadErr != nil {
		return nil, m.LoadErr
	}
	return m.Config, nil
}

// LoadGlobal returns the configured global config.
func (m *MockConfigLoader) LoadGlobal() (*domain.Config, error) {
	if m.LoadErr != nil {
		return nil, m.LoadErr
	}
	if m.GlobalConfig == nil {
		return m.Config, nil
	}
	return m.GlobalConfig, nil
}

// MockConfigManager is a test double for domain.ConfigManager.
// Fields are ordered to minimize memory padding.
type MockConfigManager struct {
	InitErr    error
	HomeInfo   domain.ConfigInfo
	GlobalInfo domain.ConfigInfo
	InitHome   bool
	InitGlobal bool
}

// GetHomeConfigInfo returns HomeInfo.
func (m *MockConfigManager) GetHomeConfigInfo() domain.ConfigInfo { return m.HomeInfo }

// GetGlobalConfigInfo returns GlobalInfo.
func (m *MockConfigManager) GetGlobalConfigInfo() domain.ConfigInfo { return m.GlobalInfo }

// InitHomeConfig records the call.
func (m *MockConfigManager) InitHomeConfig(_ *domain.Config) error {
	if m.InitErr != nil {
		return m.InitErr
	}
	m.InitHome = true
	return nil
}

// InitGlobalConfig records the call.
func (m *MockConfigManager) InitGlobalConfig(_ *domain.Config) error {
	if m.InitErr != nil {
		return m.InitErr
	}
	m.InitGlobal = true
	return nil
}

// Ensure mocks implement their ports.
var (
	_ domain.Clock             = (*MockClock)(nil)
	_ domain.SnapshotStore     = (*MockSnapshotStore)(nil)
	_ domain.StoreInitializer  = (*MockStoreInitializer)(nil)
	_ domain.SyncConfigStore   = (*MockSyncConfigStore)(nil)
	_ domain.SyncRemote        = (*MockSyncRemote)(nil)
	_ domain.Notifier          = (*MockNotifier)(nil)
	_ domain.ReminderScheduler = (*MockReminderScheduler)(nil)
	_ domain.Logger            = (*MockLogger)(nil)
	_ domain.CommandExecutor   = (*MockExecutor)(nil)
	_ domain.ConfigLoader      = (*MockConfigLoader)(nil)
	_ domain.ConfigManager     = (*MockConfigManager)(nil)
)
