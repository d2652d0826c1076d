package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComputeStats(t *testing.T) {
	occs := []Occurrence{
		{Task: &Task{Completed: true}},
		{Task: &Task{Urgent: true}},
		{Task: &Task{Urgent: true, Completed: true}},
		{Task: &Task{}},
	}

	s := ComputeStats(occs)

	assert.Equal(t, 4, s.Total)
	assert.Equal(t, 2, s.Completed)
	assert.InDelta(t, 50.0, s.Percentage, 0.001)
	assert.Equal(t, 2, s.UrgentTotal)
	assert.Equal(t, 1, s.UrgentCompleted)
	assert.InDelta(t, 50.0, s.UrgentPercentage, 0.001)
	assert.Equal(t, 2, s.Level())
	assert.Len(t, UrgentOpen(occs), 1)
}

func TestDayStats_Level(t *testing.T) {
	assert.Equal(t, 0, DayStats{}.Level())
	assert.Equal(t, 1, DayStats{Total: 3, Percentage: 33}.Level())
	assert.Equal(t, 3, DayStats{Total: 5, Percentage: 80}.Level())
}

func TestRenderConfigTemplate(t *testing.T) {
	out := RenderConfigTemplate(NewDefaultConfig())

	assert.Contains(t, out, `backend = "json"`)
	assert.Contains(t, out, `# poll_interval = "10s"`)
	assert.Contains(t, out, `enabled = true`)
	assert.Contains(t, out, `level = "info"`)
}
