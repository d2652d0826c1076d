package usecase_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runoshun/taskdeck/internal/usecase"
)

func TestListUndated_Execute(t *testing.T) {
	// Setup
	work := plainTask(1, "Slides", "")
	work.Project = "Work"
	done := plainTask(2, "Old idea", "")
	done.Completed = true
	orphan := plainTask(3, "Seeds", "")
	orphan.Project = "Garden"
	e := newEnv(work, done, orphan, plainTask(4, "Idea", ""), plainTask(5, "Dated", today),
		dailyTask(6, "Daily", today, ""))
	uc := usecase.NewListUndated(e.store)

	// Execute
	out, err := uc.Execute(context.Background(), usecase.ListUndatedInput{})
	require.NoError(t, err)
	all, err := uc.Execute(context.Background(), usecase.ListUndatedInput{IncludeCompleted: true})
	require.NoError(t, err)

	// Assert
	require.Len(t, out.Groups, 3)
	assert.Equal(t, "Personal", out.Groups[0].Project)
	require.Len(t, out.Groups[0].Tasks, 1)
	assert.Equal(t, "Idea", out.Groups[0].Tasks[0].Name)
	assert.Equal(t, "Work", out.Groups[1].Project)
	assert.Equal(t, "Garden", out.Groups[2].Project)

	require.Len(t, all.Groups, 3)
	assert.Len(t, all.Groups[0].Tasks, 2)
}
