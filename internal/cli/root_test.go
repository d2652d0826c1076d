package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runoshun/taskdeck/internal/app"
	"github.com/runoshun/taskdeck/internal/domain"
	"github.com/runoshun/taskdeck/internal/infra/logging"
	"github.com/runoshun/taskdeck/internal/testutil"
)

// Monday.
const today = "2026-03-02"

func plainTask(id int64, name, date string) *domain.Task {
	t := &domain.Task{ID: id, Name: name, LastModified: "2026-01-01T00:00:00Z"}
	if date != "" {
		t.Date = domain.MustParseDate(date)
	}
	t.Sanitize()
	return t
}

func dailyTask(id int64, name, start string) *domain.Task {
	t := plainTask(id, name, start)
	t.Recurring, t.IsRecurringRoot = true, true
	t.RecurrencePattern = &domain.RecurrencePattern{Frequency: domain.FrequencyDaily, Interval: 1}
	return t
}

func newTestContainer(t *testing.T, tasks ...*domain.Task) (*app.Container, *testutil.MockSnapshotStore) {
	t.Helper()
	store := testutil.NewMockSnapshotStoreWith(tasks...)
	c := app.NewWithDeps(app.NewConfig(t.TempDir()), store, &testutil.MockStoreInitializer{Initialized: true}, testutil.ClockAt(today), logging.Nop())
	return c, store
}

// execute runs the root command with args and returns stdout and stderr.
func execute(t *testing.T, c *app.Container, args ...string) (string, string, error) {
	t.Helper()
	cmd := NewRootCommand(c, "test")
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	if args == nil {
		args = []string{}
	}
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestNewRootCommand(t *testing.T) {
	// Setup
	c, _ := newTestContainer(t)

	// Execute
	cmd := NewRootCommand(c, "1.2.3")

	// Assert
	assert.Equal(t, "taskdeck", cmd.Use)
	assert.Equal(t, "1.2.3", cmd.Version)
	assert.True(t, cmd.SilenceUsage)
	assert.True(t, cmd.SilenceErrors)

	names := make(map[string]string)
	for _, sub := range cmd.Commands() {
		names[sub.Name()] = sub.GroupID
	}
	for name, group := range map[string]string{
		"init": groupSetup, "config": groupSetup, "log": groupSetup,
		"add": groupTask, "batch": groupTask, "show": groupTask, "done": groupTask,
		"edit": groupTask, "rm": groupTask, "dep": groupTask, "project": groupTask,
		"day": groupView, "month": groupView, "undated": groupView, "urgent": groupView, "tui": groupView,
		"sync": groupSync, "serve": groupSync, "export": groupSync, "import": groupSync,
		"history": groupSync, "restore": groupSync,
	} {
		assert.Equal(t, group, names[name], "command %s", name)
	}
}

func TestRootCommand_LaunchesTUI(t *testing.T) {
	// Setup
	c, _ := newTestContainer(t)
	var launched *app.Container
	orig := launchTUIFunc
	launchTUIFunc = func(got *app.Container) error {
		launched = got
		return nil
	}
	t.Cleanup(func() { launchTUIFunc = orig })

	// Execute
	_, _, err := execute(t, c)

	// Assert
	require.NoError(t, err)
	assert.Same(t, c, launched)
}

func TestRootCommand_HelpDoesNotLaunchTUI(t *testing.T) {
	// Setup
	c, _ := newTestContainer(t)
	called := false
	orig := launchTUIFunc
	launchTUIFunc = func(*app.Container) error {
		called = true
		return nil
	}
	t.Cleanup(func() { launchTUIFunc = orig })

	// Execute
	out, _, err := execute(t, c, "--help")

	// Assert
	require.NoError(t, err)
	assert.False(t, called)
	assert.Contains(t, out, "Task Management:")
	assert.Contains(t, out, "Sync and Data:")
}

func TestRootCommand_PrintsConfigWarnings(t *testing.T) {
	// Setup
	c, _ := newTestContainer(t)
	c.AppConfig.Warnings = []string{"unknown key sync.foo"}

	// Execute
	_, stderr, err := execute(t, c, "day")

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "Warning: unknown key sync.foo\n", stderr)
}

func TestLaunchTUI_NilContainer(t *testing.T) {
	// Execute
	err := launchTUI(nil)

	// Assert
	assert.Error(t, err)
}

func TestInitCommand(t *testing.T) {
	tests := []struct {
		name        string
		want        string
		initialized bool
	}{
		{name: "fresh", initialized: false, want: "Initialized taskdeck in "},
		{name: "existing", initialized: true, want: "taskdeck already initialized in "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Setup
			storeInit := &testutil.MockStoreInitializer{Initialized: tt.initialized}
			c := app.NewWithDeps(app.NewConfig(t.TempDir()), testutil.NewMockSnapshotStore(), storeInit, testutil.ClockAt(today), logging.Nop())

			// Execute
			out, _, err := execute(t, c, "init")

			// Assert
			require.NoError(t, err)
			assert.True(t, strings.HasPrefix(out, tt.want), out)
		})
	}
}
