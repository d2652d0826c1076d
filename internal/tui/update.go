package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/runoshun/taskdeck/internal/usecase"
)

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateLayoutSizes()
		return m, nil

	case MsgDayLoaded:
		if msg.Gen != m.loadGen {
			return m, nil
		}
		m.day = msg.Day
		m.date = msg.Day.Date
		m.setItems()
		return m, nil

	case MsgTaskToggled:
		state := "Reopened"
		if msg.Completed {
			state = "Completed"
		}
		m.notice = fmt.Sprintf("%s %s", state, msg.Name)
		m.notifyChanged()
		return m, m.loadDay()

	case MsgTaskCreated:
		m.notice = fmt.Sprintf("Created #%d %s", msg.ID, msg.Name)
		m.notifyChanged()
		return m, m.loadDay()

	case MsgTaskDeleted:
		m.notice = "Deleted " + msg.Ref
		m.notifyChanged()
		return m, m.loadDay()

	case MsgStoreChanged:
		return m, m.loadDay()

	case MsgSyncStatus:
		st := msg.Status
		m.syncStatus = &st
		return m, nil

	case MsgError:
		m.err = msg.Err
		m.notice = ""
		return m, clearErrorAfter(errorTimeout)

	case MsgClearError:
		m.err = nil
		return m, nil
	}

	return m, nil
}

// handleKeyMsg handles keyboard input.
func (m *Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	switch m.mode {
	case ModeNormal:
		return m.handleNormalMode(msg)
	case ModeConfirm:
		return m.handleConfirmMode(msg)
	case ModeInput:
		return m.handleInputMode(msg)
	case ModeHelp:
		return m.handleHelpMode(msg)
	}
	return m, nil
}

// handleNormalMode handles keys in normal mode.
func (m *Model) handleNormalMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.mode = ModeHelp
		return m, nil

	case key.Matches(msg, m.keys.PrevDay):
		return m.showDay(-1)

	case key.Matches(msg, m.keys.NextDay):
		return m.showDay(1)

	case key.Matches(msg, m.keys.Today):
		m.date = m.today()
		return m, m.loadDay()

	case key.Matches(msg, m.keys.Refresh):
		return m, m.loadDay()

	case key.Matches(msg, m.keys.Toggle):
		occ, ok := m.selected()
		if !ok {
			return m, nil
		}
		return m, m.toggleTask(occ.Ref)

	case key.Matches(msg, m.keys.New):
		m.mode = ModeInput
		m.nameInput.Reset()
		m.nameInput.Focus()
		return m, nil

	case key.Matches(msg, m.keys.Delete):
		occ, ok := m.selected()
		if !ok {
			return m, nil
		}
		m.confirmRef = occ.Ref
		m.confirmName = occ.Task.Name
		m.confirmRecurring = occ.IsInstance() || occ.Task.IsRecurringRoot
		m.mode = ModeConfirm
		return m, nil

	case key.Matches(msg, m.keys.Up), key.Matches(msg, m.keys.Down):
		var cmd tea.Cmd
		m.taskList, cmd = m.taskList.Update(msg)
		return m, cmd
	}

	return m, nil
}

// handleConfirmMode handles keys in the delete confirmation dialog.
func (m *Model) handleConfirmMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Escape), msg.String() == "n":
		m.mode = ModeNormal
		return m, nil

	case m.confirmRecurring && key.Matches(msg, m.keys.Instance):
		m.mode = ModeNormal
		return m, m.deleteTask(m.confirmRef, usecase.DeleteInstance)

	case m.confirmRecurring && key.Matches(msg, m.keys.AllTasks):
		m.mode = ModeNormal
		return m, m.deleteTask(m.confirmRef, usecase.DeleteAllFuture)

	case !m.confirmRecurring && key.Matches(msg, m.keys.Confirm):
		m.mode = ModeNormal
		return m, m.deleteTask(m.confirmRef, usecase.DeleteAsk)
	}

	return m, nil
}

// handleInputMode handles keys while typing a new task name.
func (m *Model) handleInputMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Escape):
		m.mode = ModeNormal
		m.nameInput.Blur()
		return m, nil

	case key.Matches(msg, m.keys.Submit):
		name := strings.TrimSpace(m.nameInput.Value())
		m.mode = ModeNormal
		m.nameInput.Blur()
		if name == "" {
			return m, nil
		}
		return m, m.createTask(name)
	}

	var cmd tea.Cmd
	m.nameInput, cmd = m.nameInput.Update(msg)
	return m, cmd
}

// handleHelpMode handles keys in the help overlay.
func (m *Model) handleHelpMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Escape) || key.Matches(msg, m.keys.Help) || key.Matches(msg, m.keys.Quit) {
		m.mode = ModeNormal
	}
	return m, nil
}

// showDay moves the shown day by delta days and reloads.
func (m *Model) showDay(delta int) (tea.Model, tea.Cmd) {
	m.date = m.date.AddDays(delta)
	m.notice = ""
	return m, m.loadDay()
}

// setItems replaces the list items with the loaded occurrences,
// keeping the cursor on the same occurrence when it is still present.
func (m *Model) setItems() {
	var keep string
	if occ, ok := m.selected(); ok {
		keep = occ.ID()
	}

	items := make([]list.Item, 0, len(m.day.Occurrences))
	cursor := 0
	for i, occ := range m.day.Occurrences {
		if occ.ID() == keep {
			cursor = i
		}
		items = append(items, occurrenceItem{occ: occ})
	}
	m.taskList.SetItems(items)
	m.taskList.Select(cursor)
}

// updateLayoutSizes recalculates component sizes after a resize.
func (m *Model) updateLayoutSizes() {
	// App padding (1,2), header (2), message line (1), footer (2).
	listHeight := m.height - 2 - 2 - 1 - 2
	if listHeight < 1 {
		listHeight = 1
	}
	listWidth := m.width - 4
	if listWidth < 10 {
		listWidth = 10
	}
	m.taskList.SetSize(listWidth, listHeight)
	m.nameInput.Width = listWidth - 4
	m.help.Width = listWidth
	m.statusLine.SetWidth(listWidth)
}
