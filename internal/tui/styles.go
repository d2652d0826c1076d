package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/runoshun/taskdeck/internal/syncer"
)

// Colors defines the color palette for the TUI.
var Colors = struct {
	// Base colors
	Primary   lipgloss.Color
	Secondary lipgloss.Color
	Muted     lipgloss.Color
	Error     lipgloss.Color
	Success   lipgloss.Color
	Warning   lipgloss.Color

	// Title/text colors
	TitleNormal   lipgloss.Color
	TitleSelected lipgloss.Color
	DescNormal    lipgloss.Color

	// Task flags
	Urgent    lipgloss.Color
	CarryOver lipgloss.Color
	Done      lipgloss.Color
}{
	Primary:   lipgloss.Color("#6C5CE7"), // Purple
	Secondary: lipgloss.Color("#A29BFE"), // Lavender
	Muted:     lipgloss.Color("#636E72"), // Gray
	Error:     lipgloss.Color("#D63031"), // Red
	Success:   lipgloss.Color("#00B894"), // Green
	Warning:   lipgloss.Color("#FDCB6E"), // Yellow

	TitleNormal:   lipgloss.Color("#DFE6E9"), // Light gray
	TitleSelected: lipgloss.Color("#FFEAA7"), // Yellow
	DescNormal:    lipgloss.Color("#636E72"), // Gray

	Urgent:    lipgloss.Color("#D63031"),
	CarryOver: lipgloss.Color("#74B9FF"),
	Done:      lipgloss.Color("#00B894"),
}

// Styles contains all the lipgloss styles for the TUI.
type Styles struct {
	App lipgloss.Style

	// Header
	Header     lipgloss.Style
	HeaderDate lipgloss.Style
	HeaderStat lipgloss.Style

	// Rows
	TaskTitle         lipgloss.Style
	TaskTitleSelected lipgloss.Style
	TaskDone          lipgloss.Style
	TaskMeta          lipgloss.Style
	CursorNormal      lipgloss.Style
	CursorSelected    lipgloss.Style
	FlagUrgent        lipgloss.Style
	FlagCarryOver     lipgloss.Style
	FlagRecurring     lipgloss.Style
	Checkbox          lipgloss.Style
	CheckboxDone      lipgloss.Style
	Empty             lipgloss.Style

	// Help
	Help lipgloss.Style

	// Footer
	Footer    lipgloss.Style
	FooterKey lipgloss.Style

	// Sync indicator
	SyncConnected    lipgloss.Style
	SyncSyncing      lipgloss.Style
	SyncError        lipgloss.Style
	SyncDisconnected lipgloss.Style

	// Dialog
	Dialog       lipgloss.Style
	DialogTitle  lipgloss.Style
	DialogPrompt lipgloss.Style

	// Input
	Input       lipgloss.Style
	InputPrompt lipgloss.Style

	// Messages
	ErrorMsg  lipgloss.Style
	NoticeMsg lipgloss.Style
}

// DefaultStyles returns the default styles for the TUI.
func DefaultStyles() Styles {
	return Styles{
		App: lipgloss.NewStyle().
			Padding(1, 2),

		Header: lipgloss.NewStyle().
			MarginBottom(1),

		HeaderDate: lipgloss.NewStyle().
			Bold(true).
			Foreground(Colors.Primary),

		HeaderStat: lipgloss.NewStyle().
			Foreground(Colors.Muted),

		TaskTitle: lipgloss.NewStyle().
			Foreground(Colors.TitleNormal),

		TaskTitleSelected: lipgloss.NewStyle().
			Foreground(Colors.TitleSelected).
			Bold(true),

		TaskDone: lipgloss.NewStyle().
			Foreground(Colors.Muted).
			Strikethrough(true),

		TaskMeta: lipgloss.NewStyle().
			Foreground(Colors.DescNormal),

		CursorNormal: lipgloss.NewStyle().
			Foreground(Colors.Muted),

		CursorSelected: lipgloss.NewStyle().
			Foreground(Colors.TitleSelected).
			Bold(true),

		FlagUrgent: lipgloss.NewStyle().
			Foreground(Colors.Urgent).
			Bold(true),

		FlagCarryOver: lipgloss.NewStyle().
			Foreground(Colors.CarryOver),

		FlagRecurring: lipgloss.NewStyle().
			Foreground(Colors.Secondary),

		Checkbox: lipgloss.NewStyle().
			Foreground(Colors.Muted),

		CheckboxDone: lipgloss.NewStyle().
			Foreground(Colors.Done).
			Bold(true),

		Empty: lipgloss.NewStyle().
			Foreground(Colors.Muted).
			Italic(true),

		Help: lipgloss.NewStyle().
			Padding(1, 2).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Colors.Muted),

		Footer: lipgloss.NewStyle().
			Foreground(Colors.Muted),

		FooterKey: lipgloss.NewStyle().
			Foreground(Colors.Primary).
			Bold(true),

		SyncConnected: lipgloss.NewStyle().
			Foreground(Colors.Success),

		SyncSyncing: lipgloss.NewStyle().
			Foreground(Colors.Warning),

		SyncError: lipgloss.NewStyle().
			Foreground(Colors.Error).
			Bold(true),

		SyncDisconnected: lipgloss.NewStyle().
			Foreground(Colors.Muted),

		Dialog: lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Colors.Primary),

		DialogTitle: lipgloss.NewStyle().
			Bold(true).
			Foreground(Colors.Primary),

		DialogPrompt: lipgloss.NewStyle(),

		Input: lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Colors.Primary),

		InputPrompt: lipgloss.NewStyle().
			Foreground(Colors.Primary).
			Bold(true),

		ErrorMsg: lipgloss.NewStyle().
			Foreground(Colors.Error).
			Bold(true),

		NoticeMsg: lipgloss.NewStyle().
			Foreground(Colors.Success),
	}
}

// SyncStyle returns the style for a sync engine state.
func (s Styles) SyncStyle(state syncer.State) lipgloss.Style {
	switch state {
	case syncer.StateConnected:
		return s.SyncConnected
	case syncer.StateSyncing:
		return s.SyncSyncing
	case syncer.StateError:
		return s.SyncError
	default:
		return s.SyncDisconnected
	}
}

// SyncIcon returns an icon for a sync engine state.
func SyncIcon(state syncer.State) string {
	switch state {
	case syncer.StateConnected:
		return "●"
	case syncer.StateSyncing:
		return "◌"
	case syncer.StateError:
		return "✗"
	default:
		return "○"
	}
}
