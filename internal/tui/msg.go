package tui

import (
	"github.com/runoshun/taskdeck/internal/syncer"
	"github.com/runoshun/taskdeck/internal/usecase"
)

// Msg is the sealed interface for all TUI messages.
// All message types must implement the sealed() method.
//
// go-sumtype:decl Msg
type Msg interface {
	sealed()
}

// MsgDayLoaded is sent when the occurrences of a day are loaded.
type MsgDayLoaded struct {
	Day *usecase.ListDayOutput
	Gen uint64 // Load generation; stale results are dropped
}

func (MsgDayLoaded) sealed() {}

// MsgTaskToggled is sent after a task or occurrence changed completion.
type MsgTaskToggled struct {
	Name      string
	Completed bool
}

func (MsgTaskToggled) sealed() {}

// MsgTaskCreated is sent when a new task is created.
type MsgTaskCreated struct {
	Name string
	ID   int64
}

func (MsgTaskCreated) sealed() {}

// MsgTaskDeleted is sent when a task or occurrence is deleted.
type MsgTaskDeleted struct {
	Ref string
}

func (MsgTaskDeleted) sealed() {}

// MsgStoreChanged is sent when another process wrote to the store.
type MsgStoreChanged struct{}

func (MsgStoreChanged) sealed() {}

// MsgSyncStatus carries a sync engine status change.
type MsgSyncStatus struct {
	Status syncer.Status
}

func (MsgSyncStatus) sealed() {}

// MsgError is sent when an error occurs.
type MsgError struct {
	Err error
}

func (MsgError) sealed() {}

// MsgClearError clears the error message.
type MsgClearError struct{}

func (MsgClearError) sealed() {}
