package domain

// DayStats summarizes the occurrences of one day.
type DayStats struct {
	Total            int     `json:"total"`
	Completed        int     `json:"completed"`
	Percentage       float64 `json:"percentage"`
	UrgentTotal      int     `json:"urgentTotal"`
	UrgentCompleted  int     `json:"urgentCompleted"`
	UrgentPercentage float64 `json:"urgentPercentage"`
}

// Level buckets the completion percentage for display:
// 0 = nothing scheduled, 1 = below 50%, 2 = below 80%, 3 = 80% or more.
func (s DayStats) Level() int {
	switch {
	case s.Total == 0:
		return 0
	case s.Percentage >= 80:
		return 3
	case s.Percentage >= 50:
		return 2
	default:
		return 1
	}
}

// ComputeStats counts completed and urgent occurrences.
func ComputeStats(occs []Occurrence) DayStats {
	var s DayStats
	for _, o := range occs {
		s.Total++
		if o.Task.Completed {
			s.Completed++
		}
		if o.Task.Urgent {
			s.UrgentTotal++
			if o.Task.Completed {
				s.UrgentCompleted++
			}
		}
	}
	if s.Total > 0 {
		s.Percentage = float64(s.Completed) / float64(s.Total) * 100
	}
	if s.UrgentTotal > 0 {
		s.UrgentPercentage = float64(s.UrgentCompleted) / float64(s.UrgentTotal) * 100
	}
	return s
}

// UrgentOpen returns the urgent occurrences that are not completed.
func UrgentOpen(occs []Occurrence) []Occurrence {
	var out []Occurrence
	for _, o := range occs {
		if o.Task.Urgent && !o.Task.Completed {
			out = append(out, o)
		}
	}
	return out
}
