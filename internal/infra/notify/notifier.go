package notify

import (
	"context"
	"fmt"
	"strings"

	"github.com/runoshun/taskdeck/internal/domain"
)

// LogNotifier writes reminders to the log file.
type LogNotifier struct {
	logger domain.Logger
}

// NewLogNotifier creates a LogNotifier.
func NewLogNotifier(logger domain.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

// Notify logs the reminder.
func (n *LogNotifier) Notify(_ context.Context, title, body string) error {
	n.logger.Info(0, "reminder", title+": "+body)
	return nil
}

// CommandNotifier runs a shell command per reminder.
// The title and body are passed as $1 and $2.
type CommandNotifier struct {
	executor domain.CommandExecutor
	script   string
}

// NewCommandNotifier creates a CommandNotifier running script through bash.
func NewCommandNotifier(executor domain.CommandExecutor, script string) *CommandNotifier {
	return &CommandNotifier{executor: executor, script: script}
}

// Notify runs the command.
func (n *CommandNotifier) Notify(ctx context.Context, title, body string) error {
	out, err := n.executor.Execute(ctx, domain.NewBashCommand(n.script, title, body))
	if err != nil {
		if msg := strings.TrimSpace(string(out)); msg != "" {
			return fmt.Errorf("run notify command: %w: %s", err, msg)
		}
		return fmt.Errorf("run notify command: %w", err)
	}
	return nil
}

// Ensure notifiers implement domain.Notifier.
var (
	_ domain.Notifier = (*LogNotifier)(nil)
	_ domain.Notifier = (*CommandNotifier)(nil)
)
