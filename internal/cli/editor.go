package cli

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/runoshun/taskdeck/internal/app"
	"github.com/runoshun/taskdeck/internal/domain"
	"github.com/runoshun/taskdeck/internal/usecase"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// getEditor returns the user's preferred editor from environment variables.
// It checks EDITOR, then VISUAL, and defaults to vi if neither is set.
func getEditor() string {
	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = strings.TrimSpace(os.Getenv("VISUAL"))
	}
	if editor == "" {
		editor = "vi"
	}
	return editor
}

// editDoc is the YAML form of a task opened in the editor.
// Fields are ordered to minimize memory padding.
type editDoc struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Project     string `yaml:"project"`
	Date        string `yaml:"date"`
	EndDate     string `yaml:"end_date"`
	Time        string `yaml:"time"`
	Count       string `yaml:"count,omitempty"`
	Days        []int  `yaml:"days,omitempty"`
	Interval    int    `yaml:"interval,omitempty"`
	Urgent      bool   `yaml:"urgent"`
	CarryOver   bool   `yaml:"carry_over"`
}

func newEditDoc(t *domain.Task) editDoc {
	doc := editDoc{
		Name:        t.Name,
		Description: t.Description,
		Project:     t.Project,
		Time:        t.Time,
		Urgent:      t.Urgent,
		CarryOver:   t.CarryOver,
	}
	if !t.Date.IsZero() {
		doc.Date = t.Date.String()
	}
	if !t.EndDate.IsZero() {
		doc.EndDate = t.EndDate.String()
	}
	if p := t.RecurrencePattern; p != nil {
		doc.Count = p.Count.String()
		doc.Interval = p.Interval
		if p.Frequency == domain.FrequencyWeekly {
			doc.Days = slices.Clone(p.DaysOfWeek)
		}
	}
	return doc
}

// editInput turns the differences between two documents into an edit.
func editInput(ref domain.TaskRef, before, after editDoc) usecase.EditTaskInput {
	in := usecase.EditTaskInput{Ref: ref}
	if after.Name != before.Name {
		in.Name = &after.Name
	}
	if after.Description != before.Description {
		in.Description = &after.Description
	}
	if after.Project != before.Project {
		in.Project = &after.Project
	}
	if after.Date != before.Date {
		in.Date = &after.Date
	}
	if after.EndDate != before.EndDate {
		in.EndDate = &after.EndDate
	}
	if after.Time != before.Time {
		in.Time = &after.Time
	}
	if after.Count != before.Count {
		in.Count = &after.Count
	}
	if after.Interval != before.Interval {
		in.Interval = &after.Interval
	}
	if !slices.Equal(after.Days, before.Days) {
		in.DaysOfWeek = after.Days
	}
	if after.Urgent != before.Urgent {
		in.Urgent = &after.Urgent
	}
	if after.CarryOver != before.CarryOver {
		in.CarryOver = &after.CarryOver
	}
	return in
}

// editInEditor opens the task as YAML in the user's editor and applies what changed.
func editInEditor(cmd *cobra.Command, c *app.Container, ref domain.TaskRef) error {
	shown, err := c.ShowTaskUseCase().Execute(cmd.Context(), usecase.ShowTaskInput{Ref: ref})
	if err != nil {
		return err
	}
	before := newEditDoc(shown.Task)

	content, err := yaml.Marshal(before)
	if err != nil {
		return fmt.Errorf("encode task: %w", err)
	}

	f, err := os.CreateTemp("", fmt.Sprintf("taskdeck-%d-*.yaml", shown.Task.ID))
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	path := f.Name()
	defer func() { _ = os.Remove(path) }()

	header := fmt.Sprintf("# Editing #%d (%s). Save and quit to apply.\n", shown.Task.ID, shown.Task.Kind())
	if _, err := f.WriteString(header + string(content)); err != nil {
		_ = f.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}

	editor := strings.Fields(getEditor())
	err = c.Executor.ExecuteInteractive(&domain.ExecCommand{
		Program: editor[0],
		Args:    append(editor[1:], path),
	})
	if err != nil {
		return fmt.Errorf("run editor %s: %w", editor[0], err)
	}

	edited, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read temp file: %w", err)
	}
	var after editDoc
	if err := yaml.Unmarshal(edited, &after); err != nil {
		return fmt.Errorf("parse edited task: %w", err)
	}

	err = runEdit(cmd, c, editInput(ref, before, after))
	if errors.Is(err, domain.ErrNoFieldsToUpdate) {
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), "No changes")
		return nil
	}
	return err
}
