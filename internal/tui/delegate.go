package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/runoshun/taskdeck/internal/domain"
)

type occurrenceItem struct {
	occ domain.Occurrence
}

func (o occurrenceItem) FilterValue() string {
	return o.occ.Task.Name
}

// escapeNewlines replaces newline characters with spaces for single-line display.
func escapeNewlines(s string) string {
	s = strings.ReplaceAll(s, "\r\n", " ")
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.ReplaceAll(s, "\r", " ")
	return s
}

type occurrenceDelegate struct {
	styles Styles
}

func newOccurrenceDelegate(styles Styles) occurrenceDelegate {
	return occurrenceDelegate{styles: styles}
}

func (d occurrenceDelegate) Height() int {
	return 1
}

func (d occurrenceDelegate) Spacing() int {
	return 0
}

func (d occurrenceDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd {
	return nil
}

func (d occurrenceDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	oi, ok := item.(occurrenceItem)
	if !ok {
		return
	}
	_, _ = fmt.Fprint(w, d.renderRow(oi.occ, index == m.Index(), m.Width()))
}

// renderRow renders "> [x] 09:00  Name  project  flags" truncated to width.
func (d occurrenceDelegate) renderRow(o domain.Occurrence, selected bool, width int) string {
	task := o.Task

	cursor := d.styles.CursorNormal.Render(" ")
	if selected {
		cursor = d.styles.CursorSelected.Render(">")
	}

	box := d.styles.Checkbox.Render("[ ]")
	if task.Completed {
		box = d.styles.CheckboxDone.Render("[x]")
	}

	clock := task.Time
	if clock == "" {
		clock = "--:--"
	}

	nameStyle := d.styles.TaskTitle
	switch {
	case task.Completed:
		nameStyle = d.styles.TaskDone
	case selected:
		nameStyle = d.styles.TaskTitleSelected
	}

	prefix := cursor + " " + box + " " + d.styles.TaskMeta.Render(clock) + "  "
	suffix := d.renderFlags(o)
	if task.Project != "" {
		suffix = d.styles.TaskMeta.Render(task.Project) + " " + suffix
	}

	name := escapeNewlines(task.Name)
	if width > 0 {
		avail := width - runewidth.StringWidth(" [ ] --:--  ") - 1 - lipgloss.Width(suffix)
		if avail < 4 {
			avail = 4
		}
		name = runewidth.Truncate(name, avail, "…")
	}

	return prefix + nameStyle.Render(name) + " " + suffix
}

func (d occurrenceDelegate) renderFlags(o domain.Occurrence) string {
	var flags []string
	if o.Task.Urgent {
		flags = append(flags, d.styles.FlagUrgent.Render("!"))
	}
	if o.Task.CarryOver {
		flags = append(flags, d.styles.FlagCarryOver.Render("→"))
	}
	if o.IsInstance() || o.Task.IsRecurringRoot {
		flags = append(flags, d.styles.FlagRecurring.Render("↻"))
	}
	if len(o.Task.Predecessors) > 0 {
		flags = append(flags, d.styles.TaskMeta.Render(fmt.Sprintf("after %d", len(o.Task.Predecessors))))
	}
	return strings.Join(flags, " ")
}
