package app

import "github.com/runoshun/taskdeck/internal/domain"

// noReminders is used when [notify] enabled = false.
type noReminders struct{}

func (noReminders) Schedule(*domain.Task) bool    { return false }
func (noReminders) Cancel(int64)                  {}
func (noReminders) RescheduleAll([]*domain.Task) {}
