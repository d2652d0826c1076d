package usecase_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runoshun/taskdeck/internal/domain"
	"github.com/runoshun/taskdeck/internal/usecase"
)

func TestListProjects_Execute(t *testing.T) {
	// Setup
	work := plainTask(1, "Slides", "")
	work.Project = "Work"
	e := newEnv(work, plainTask(2, "A", ""), plainTask(3, "B", today))
	uc := usecase.NewListProjects(e.store)

	// Execute
	out, err := uc.Execute(context.Background())

	// Assert
	require.NoError(t, err)
	assert.Equal(t, []usecase.ProjectSummary{
		{Name: "Personal", Tasks: 2},
		{Name: "Work", Tasks: 1},
		{Name: "Health", Tasks: 0},
	}, out.Projects)
}

func TestAddProject_Execute(t *testing.T) {
	// Setup
	e := newEnv()
	uc := usecase.NewAddProject(e.store, e.logger)

	// Execute
	err := uc.Execute(context.Background(), usecase.AddProjectInput{Name: " Garden "})
	require.NoError(t, err)
	dupErr := uc.Execute(context.Background(), usecase.AddProjectInput{Name: "Garden"})
	emptyErr := uc.Execute(context.Background(), usecase.AddProjectInput{Name: "  "})

	// Assert
	assert.Equal(t, []string{"Personal", "Work", "Health", "Garden"}, e.store.Current().Projects)
	require.ErrorIs(t, dupErr, domain.ErrProjectExists)
	require.ErrorIs(t, emptyErr, domain.ErrEmptyProject)
	assert.Equal(t, 1, e.store.SaveCount)
}

func TestDeleteProject_Execute(t *testing.T) {
	// Setup
	a := plainTask(1, "Slides", "")
	a.Project = "Work"
	b := plainTask(2, "Deck", today)
	b.Project = "Work"
	e := newEnv(a, b, plainTask(3, "Mine", ""))
	uc := usecase.NewDeleteProject(e.store, e.clock, e.logger)

	// Execute
	out, err := uc.Execute(context.Background(), usecase.DeleteProjectInput{Name: "Work"})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 2, out.Reassigned)
	snap := e.store.Current()
	assert.Equal(t, []string{"Personal", "Health"}, snap.Projects)
	for _, task := range snap.Tasks {
		assert.Equal(t, domain.DefaultProject, task.Project)
	}
	assert.NotEqual(t, "2026-01-01T00:00:00Z", snap.Task(1).LastModified)
	assert.Equal(t, "2026-01-01T00:00:00Z", snap.Task(3).LastModified)
}

func TestDeleteProject_Execute_Errors(t *testing.T) {
	// Setup
	e := newEnv()
	uc := usecase.NewDeleteProject(e.store, e.clock, e.logger)

	// Execute
	_, protectedErr := uc.Execute(context.Background(), usecase.DeleteProjectInput{Name: "Personal"})
	_, missingErr := uc.Execute(context.Background(), usecase.DeleteProjectInput{Name: "Garden"})

	// Assert
	require.ErrorIs(t, protectedErr, domain.ErrProtectedProject)
	require.ErrorIs(t, missingErr, domain.ErrProjectNotFound)
	assert.Zero(t, e.store.SaveCount)
}
