package tui

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/runoshun/taskdeck/internal/domain"
)

func TestOccurrenceDelegate_RenderRow(t *testing.T) {
	d := newOccurrenceDelegate(DefaultStyles())

	done := plainTask(1, "Call mom", today)
	done.Completed = true
	done.Time = "18:00"
	done.Project = "Family"

	urgent := plainTask(2, "Renew passport", today)
	urgent.Urgent = true
	urgent.CarryOver = true

	tests := []struct {
		name     string
		contains []string
		occ      domain.Occurrence
		selected bool
	}{
		{
			name:     "completed with time and project",
			occ:      domain.Occurrence{Task: done, Ref: domain.RootRef(1)},
			contains: []string{"[x]", "18:00", "Call mom", "Family"},
		},
		{
			name:     "selected urgent carry-over",
			occ:      domain.Occurrence{Task: urgent, Ref: domain.RootRef(2)},
			selected: true,
			contains: []string{">", "[ ]", "--:--", "!", "→"},
		},
		{
			name:     "recurring instance",
			occ:      domain.Occurrence{Task: plainTask(3, "Stretch", today), Ref: domain.InstanceRef(3, domain.MustParseDate(today))},
			contains: []string{"↻"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			row := d.renderRow(tt.occ, tt.selected, 80)
			for _, want := range tt.contains {
				assert.Contains(t, row, want)
			}
		})
	}
}

func TestOccurrenceDelegate_TruncatesLongNames(t *testing.T) {
	// Setup
	d := newOccurrenceDelegate(DefaultStyles())
	task := plainTask(1, "A very long task name that will never fit into a narrow terminal", today)

	// Execute
	row := d.renderRow(domain.Occurrence{Task: task, Ref: domain.RootRef(1)}, false, 30)

	// Assert
	assert.Contains(t, row, "…")
	assert.NotContains(t, row, "terminal")
}

func TestEscapeNewlines(t *testing.T) {
	assert.Equal(t, "a b c d", escapeNewlines("a\nb\r\nc\rd"))
}

func TestMode_String(t *testing.T) {
	tests := []struct {
		want string
		mode Mode
	}{
		{"normal", ModeNormal},
		{"confirm", ModeConfirm},
		{"input", ModeInput},
		{"help", ModeHelp},
		{"unknown", Mode(99)},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.mode.String())
	}
	assert.True(t, ModeInput.IsInputMode())
	assert.False(t, ModeConfirm.IsInputMode())
}

func TestDefaultKeyMap_Help(t *testing.T) {
	// Setup
	k := DefaultKeyMap()

	// Execute
	short := k.ShortHelp()
	full := k.FullHelp()

	// Assert
	assert.NotEmpty(t, short)
	assert.Len(t, full, 3)
	assert.Contains(t, k.Toggle.Keys(), " ")
	assert.Equal(t, []string{"left", "h"}, k.PrevDay.Keys())
}
