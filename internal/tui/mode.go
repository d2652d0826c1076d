package tui

// Mode represents the current input mode of the TUI.
type Mode int

const (
	ModeNormal  Mode = iota // Navigating the day list
	ModeConfirm             // Confirming a deletion
	ModeInput               // Typing the name of a new task
	ModeHelp                // Showing the help overlay
)

// String returns the string representation of the mode.
func (m Mode) String() string {
	switch m {
	case ModeNormal:
		return "normal"
	case ModeConfirm:
		return "confirm"
	case ModeInput:
		return "input"
	case ModeHelp:
		return "help"
	default:
		return "unknown"
	}
}

// IsInputMode returns true if the mode captures typed text.
func (m Mode) IsInputMode() bool {
	return m == ModeInput
}
