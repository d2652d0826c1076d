package domain

import "errors"

// Domain errors.
var (
	ErrTaskNotFound            = errors.New("task not found")
	ErrEmptyName               = errors.New("name cannot be empty")
	ErrInvalidDate             = errors.New("invalid date")
	ErrInvalidTime             = errors.New("invalid time")
	ErrInvalidTaskRef          = errors.New("invalid task reference")
	ErrInvalidFrequency        = errors.New("invalid recurrence frequency")
	ErrInvalidCount            = errors.New("invalid occurrence count")
	ErrInvalidPattern          = errors.New("invalid recurrence pattern")
	ErrRecurringChoiceRequired = errors.New("task is recurring: choose to delete this instance or all future occurrences")
	ErrNotRecurring            = errors.New("task is not recurring")
	ErrProjectNotFound         = errors.New("project not found")
	ErrProjectExists           = errors.New("project already exists")
	ErrProtectedProject        = errors.New("project cannot be deleted")
	ErrEmptyProject            = errors.New("project name cannot be empty")
	ErrNoFieldsToUpdate        = errors.New("no fields to update")
	ErrNotInitialized          = errors.New("taskdeck not initialized (run 'taskdeck init' first)")
	ErrConfigExists            = errors.New("config file already exists")
	ErrUnsupportedVersion      = errors.New("unsupported export version")
	ErrSyncDisabled            = errors.New("sync is disabled")
	ErrSyncNotConfigured       = errors.New("sync server is not configured")
	ErrUnauthorized            = errors.New("authorization required")
	ErrForbidden               = errors.New("invalid password")
	ErrInvalidSnapshot         = errors.New("tasks and projects must be arrays")
	ErrRevisionNotFound        = errors.New("revision not found")
	ErrNoHistory               = errors.New("storage backend keeps no history")
	ErrEncryptionMismatch      = errors.New("store encryption does not match configuration")
)
