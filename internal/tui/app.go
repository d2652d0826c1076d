// Package tui implements the interactive day view.
package tui

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/runoshun/taskdeck/internal/app"
	"github.com/runoshun/taskdeck/internal/domain"
	"github.com/runoshun/taskdeck/internal/syncer"
	"github.com/runoshun/taskdeck/internal/usecase"
)

// errorTimeout is how long an error stays on screen.
const errorTimeout = 5 * time.Second

// syncEngine is the part of the sync engine the TUI drives.
type syncEngine interface {
	Enable(ctx context.Context) error
	NotifyChanged()
}

// Model is the main Bubbletea model for the TUI.
// Fields are ordered to minimize memory padding.
type Model struct {
	// Pointers (8 bytes each)
	container  *app.Container
	day        *usecase.ListDayOutput
	syncStatus *syncer.Status
	statusLine *StatusLine

	// Interfaces (16 bytes each)
	engine syncEngine
	err    error

	// Strings
	notice      string
	confirmName string

	// Components
	keys      KeyMap
	styles    Styles
	help      help.Model
	taskList  list.Model
	nameInput textinput.Model

	// Values
	date       domain.Date
	confirmRef domain.TaskRef

	// Numeric
	loadGen uint64
	width   int
	height  int
	mode    Mode

	// Booleans
	confirmRecurring bool
}

// New creates a new TUI model showing today. engine may be nil.
func New(c *app.Container, engine syncEngine) *Model {
	styles := DefaultStyles()

	taskList := list.New(nil, newOccurrenceDelegate(styles), 0, 0)
	taskList.SetShowTitle(false)
	taskList.SetShowStatusBar(false)
	taskList.SetShowHelp(false)
	taskList.SetShowPagination(false)
	taskList.SetFilteringEnabled(false)
	taskList.DisableQuitKeybindings()

	nameInput := textinput.New()
	nameInput.Placeholder = "Task name"
	nameInput.CharLimit = 200

	m := &Model{
		container: c,
		engine:    engine,
		keys:      DefaultKeyMap(),
		styles:    styles,
		help:      help.New(),
		taskList:  taskList,
		nameInput: nameInput,
		date:      domain.DateOf(c.Clock.Now()),
		mode:      ModeNormal,
	}
	m.statusLine = NewStatusLine(0, &m.styles)
	if engine != nil {
		m.syncStatus = &syncer.Status{State: syncer.StateDisconnected}
	}
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.loadDay(), m.enableSync())
}

// today returns the current date from the container clock.
func (m *Model) today() domain.Date {
	return domain.DateOf(m.container.Clock.Now())
}

// loadDay returns a command that lists the occurrences of the shown day.
func (m *Model) loadDay() tea.Cmd {
	m.loadGen++
	gen := m.loadGen
	date := m.date
	uc := m.container.ListDayUseCase()
	return func() tea.Msg {
		out, err := uc.Execute(context.Background(), usecase.ListDayInput{Date: date})
		if err != nil {
			return MsgError{Err: err}
		}
		return MsgDayLoaded{Day: out, Gen: gen}
	}
}

// enableSync returns a command that runs the first exchange of the sync engine.
func (m *Model) enableSync() tea.Cmd {
	if m.engine == nil {
		return nil
	}
	engine := m.engine
	return func() tea.Msg {
		if err := engine.Enable(context.Background()); err != nil && !errors.Is(err, domain.ErrSyncDisabled) {
			return MsgError{Err: fmt.Errorf("sync: %w", err)}
		}
		return nil
	}
}

// toggleTask returns a command that flips completion of the occurrence.
func (m *Model) toggleTask(ref domain.TaskRef) tea.Cmd {
	uc := m.container.ToggleTaskUseCase()
	return func() tea.Msg {
		out, err := uc.Execute(context.Background(), usecase.ToggleTaskInput{Ref: ref})
		if err != nil {
			return MsgError{Err: err}
		}
		return MsgTaskToggled{Name: out.Task.Name, Completed: out.Completed}
	}
}

// createTask returns a command that adds a plain task on the shown day.
func (m *Model) createTask(name string) tea.Cmd {
	uc := m.container.NewTaskUseCase()
	date := m.date.String()
	return func() tea.Msg {
		out, err := uc.Execute(context.Background(), usecase.NewTaskInput{Name: name, Date: date})
		if err != nil {
			return MsgError{Err: err}
		}
		return MsgTaskCreated{ID: out.Task.ID, Name: out.Task.Name}
	}
}

// deleteTask returns a command that deletes a task or occurrence.
func (m *Model) deleteTask(ref domain.TaskRef, mode usecase.DeleteMode) tea.Cmd {
	uc := m.container.DeleteTaskUseCase()
	return func() tea.Msg {
		if _, err := uc.Execute(context.Background(), usecase.DeleteTaskInput{Ref: ref, Mode: mode}); err != nil {
			return MsgError{Err: err}
		}
		return MsgTaskDeleted{Ref: ref.String()}
	}
}

// clearErrorAfter returns a command that clears the error message later.
func clearErrorAfter(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg {
		return MsgClearError{}
	})
}

// selected returns the occurrence under the cursor.
func (m *Model) selected() (domain.Occurrence, bool) {
	item, ok := m.taskList.SelectedItem().(occurrenceItem)
	if !ok {
		return domain.Occurrence{}, false
	}
	return item.occ, true
}

// notifyChanged tells the sync engine that local data changed.
func (m *Model) notifyChanged() {
	if m.engine != nil {
		m.engine.NotifyChanged()
	}
}

// Run starts the TUI with the sync engine, store watcher and reminders
// running for its lifetime.
func Run(c *app.Container) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := c.SyncConfigs.LoadSyncConfig()
	if err != nil {
		return fmt.Errorf("load sync config: %w", err)
	}

	var (
		p      *tea.Program
		engine *syncer.Engine
	)
	send := func(msg tea.Msg) {
		if p != nil {
			p.Send(msg)
		}
	}

	var m *Model
	if cfg.Enabled && cfg.ServerURL != "" {
		engine = c.NewSyncEngine(cfg, func(st syncer.Status) {
			send(MsgSyncStatus{Status: st})
		})
		m = New(c, engine)
	} else {
		m = New(c, nil)
	}

	p = tea.NewProgram(m, tea.WithAltScreen())

	err = c.WatchStore(ctx, func() {
		if engine != nil {
			engine.NotifyChanged()
		}
		if err := c.RefreshReminders(); err != nil {
			c.Slog.Warn("refresh reminders", "error", err)
		}
		send(MsgStoreChanged{})
	})
	if err != nil {
		c.Slog.Warn("watch store", "error", err)
	}

	if err := c.StartReminders(); err != nil {
		return fmt.Errorf("start reminders: %w", err)
	}

	_, runErr := p.Run()

	if engine != nil {
		flushCtx, flushCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer flushCancel()
		if err := engine.Flush(flushCtx); err != nil && !errors.Is(err, domain.ErrSyncDisabled) {
			c.Slog.Warn("final push failed", "error", err)
		}
		engine.Disable()
	}
	return runErr
}
