package tui

import (
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/runoshun/taskdeck/internal/syncer"
)

// StatusLineInfo contains information for rendering the status line.
// Fields are ordered to minimize memory padding.
type StatusLineInfo struct {
	Sync     *syncer.Status // nil when sync is off
	KeyHints []KeyHint
}

// KeyHint represents a key and its description.
type KeyHint struct {
	Key  string
	Desc string
}

// StatusLine renders a unified status line at the bottom of the screen.
// Fields are ordered to minimize memory padding.
type StatusLine struct {
	styles *Styles
	width  int
}

// NewStatusLine creates a new StatusLine with the given width and styles.
func NewStatusLine(width int, styles *Styles) *StatusLine {
	return &StatusLine{
		width:  width,
		styles: styles,
	}
}

// SetWidth updates the status line width.
func (s *StatusLine) SetWidth(width int) {
	s.width = width
}

// Render renders the status line with the given info.
func (s *StatusLine) Render(info StatusLineInfo) string {
	keyStyle := s.styles.FooterKey

	hints := make([]string, 0, len(info.KeyHints))
	for _, h := range info.KeyHints {
		hints = append(hints, keyStyle.Render(h.Key)+" "+h.Desc)
	}
	content := strings.Join(hints, "  ")

	rightContent := s.renderSync(info.Sync)
	contentWidth := s.width - 2
	rightLen := lipgloss.Width(rightContent)
	contentLen := lipgloss.Width(content)

	maxContentWidth := contentWidth - rightLen - 2
	if contentLen > maxContentWidth {
		if maxContentWidth <= 3 {
			content = "..."
		} else {
			truncateStyle := lipgloss.NewStyle().MaxWidth(maxContentWidth - 3)
			content = truncateStyle.Render(content) + "..."
		}
		contentLen = lipgloss.Width(content)
	}

	spacing := contentWidth - contentLen - rightLen
	if spacing < 1 {
		spacing = 1
	}

	fullContent := content + strings.Repeat(" ", spacing) + rightContent
	return s.styles.Footer.Width(s.width).Render(fullContent)
}

func (s *StatusLine) renderSync(st *syncer.Status) string {
	if st == nil {
		return s.styles.SyncDisconnected.Render("sync off")
	}
	label := SyncIcon(st.State) + " " + string(st.State)
	if st.State == syncer.StateConnected && !st.LastSynced.IsZero() {
		label += " " + st.LastSynced.Local().Format(time.TimeOnly)
	}
	return s.styles.SyncStyle(st.State).Render(label)
}

// GetStatusInfo returns status line info for the TUI model.
func (m *Model) GetStatusInfo() StatusLineInfo {
	info := StatusLineInfo{Sync: m.syncStatus}

	switch m.mode {
	case ModeNormal:
		info.KeyHints = []KeyHint{
			{Key: "j/k", Desc: "nav"},
			{Key: "h/l", Desc: "day"},
			{Key: "space", Desc: "done"},
			{Key: "n", Desc: "new"},
			{Key: "d", Desc: "delete"},
			{Key: "?", Desc: "help"},
			{Key: "q", Desc: "quit"},
		}
	case ModeConfirm:
		if m.confirmRecurring {
			info.KeyHints = []KeyHint{
				{Key: "i", Desc: "this day"},
				{Key: "a", Desc: "all"},
				{Key: "esc", Desc: "cancel"},
			}
		} else {
			info.KeyHints = []KeyHint{
				{Key: "y", Desc: "delete"},
				{Key: "esc", Desc: "cancel"},
			}
		}
	case ModeInput:
		info.KeyHints = []KeyHint{
			{Key: "enter", Desc: "save"},
			{Key: "esc", Desc: "cancel"},
		}
	case ModeHelp:
		info.KeyHints = []KeyHint{
			{Key: "esc", Desc: "close"},
		}
	}
	return info
}
