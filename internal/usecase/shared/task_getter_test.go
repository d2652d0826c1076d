package shared

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runoshun/taskdeck/internal/domain"
)

func TestGetTask(t *testing.T) {
	snap := domain.NewSnapshot()
	snap.Tasks = append(snap.Tasks, &domain.Task{ID: 10, Name: "Gym"})

	task, err := GetTask(snap, domain.RootRef(10))
	require.NoError(t, err)
	assert.Equal(t, "Gym", task.Name)

	task, err = GetTask(snap, domain.InstanceRef(10, domain.MustParseDate("2026-03-04")))
	require.NoError(t, err)
	assert.Equal(t, int64(10), task.ID)

	_, err = GetTask(snap, domain.RootRef(11))
	assert.ErrorIs(t, err, domain.ErrTaskNotFound)
}

func TestResolveProject(t *testing.T) {
	snap := domain.NewSnapshot()

	got, err := ResolveProject(snap, "")
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultProject, got)

	got, err = ResolveProject(snap, "Work")
	require.NoError(t, err)
	assert.Equal(t, "Work", got)

	_, err = ResolveProject(snap, "Garden")
	assert.ErrorIs(t, err, domain.ErrProjectNotFound)
}
