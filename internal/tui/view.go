package tui

import (
	"fmt"
	"strings"

	"github.com/runoshun/taskdeck/internal/domain"
)

// View renders the TUI.
func (m *Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	var content string
	switch m.mode {
	case ModeHelp:
		content = m.viewHelp()
	case ModeNormal, ModeConfirm, ModeInput:
		content = m.viewMain()
	}

	return m.styles.App.Render(content)
}

// viewMain renders the day view.
func (m *Model) viewMain() string {
	var b strings.Builder

	b.WriteString(m.viewHeader())
	b.WriteString("\n")

	if m.day == nil || len(m.day.Occurrences) == 0 {
		b.WriteString(m.styles.Empty.Render("  Nothing scheduled"))
		b.WriteString("\n")
	} else {
		b.WriteString(m.taskList.View())
		b.WriteString("\n")
	}

	switch m.mode {
	case ModeConfirm:
		b.WriteString("\n")
		b.WriteString(m.viewConfirmDialog())
		b.WriteString("\n")
	case ModeInput:
		b.WriteString("\n")
		b.WriteString(m.viewNameInput())
		b.WriteString("\n")
	case ModeNormal, ModeHelp:
	}

	b.WriteString(m.viewMessage())
	b.WriteString("\n")
	b.WriteString(m.statusLine.Render(m.GetStatusInfo()))

	return b.String()
}

// viewHeader renders the date and the completion stats.
func (m *Model) viewHeader() string {
	label := m.date.Weekday().String()[:3] + " " + m.date.String()
	if m.date.Equal(m.today()) {
		label += " (today)"
	}
	header := m.styles.HeaderDate.Render(label)
	if m.day != nil {
		header += "  " + m.styles.HeaderStat.Render(formatStats(m.day.Stats))
	}
	return m.styles.Header.Render(header)
}

// formatStats renders "2/5 done (40%)" plus the urgent counts when present.
func formatStats(s domain.DayStats) string {
	line := fmt.Sprintf("%d/%d done (%.0f%%)", s.Completed, s.Total, s.Percentage)
	if s.UrgentTotal > 0 {
		line += fmt.Sprintf("  urgent %d/%d", s.UrgentCompleted, s.UrgentTotal)
	}
	return line
}

// viewMessage renders the error or the last notice.
func (m *Model) viewMessage() string {
	if m.err != nil {
		return m.styles.ErrorMsg.Render("Error: " + m.err.Error())
	}
	if m.notice != "" {
		return m.styles.NoticeMsg.Render(m.notice)
	}
	return ""
}

// viewConfirmDialog renders the delete confirmation.
func (m *Model) viewConfirmDialog() string {
	title := m.styles.DialogTitle.Render(fmt.Sprintf("Delete %q?", m.confirmName))
	prompt := "[y] delete  [esc] cancel"
	if m.confirmRecurring {
		prompt = "[i] only " + m.date.String() + "  [a] this and all future  [esc] cancel"
	}
	return m.styles.Dialog.Render(title + "\n" + m.styles.DialogPrompt.Render(prompt))
}

// viewNameInput renders the quick-add input.
func (m *Model) viewNameInput() string {
	prompt := m.styles.InputPrompt.Render("New task on " + m.date.String() + ": ")
	return m.styles.Input.Render(prompt + m.nameInput.View())
}

// viewHelp renders the help overlay.
func (m *Model) viewHelp() string {
	m.help.ShowAll = true
	body := m.styles.HeaderDate.Render("Keys") + "\n\n" + m.help.View(m.keys)
	return m.styles.Help.Render(body) + "\n\n" + m.statusLine.Render(m.GetStatusInfo())
}
