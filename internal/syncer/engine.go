// Package syncer keeps the local data set in step with a sync server.
//
// The engine pushes whole snapshots and pulls with a cheap timestamp check
// first. Merging is delegated to the host; the engine never edits local data.
package syncer

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/runoshun/taskdeck/internal/domain"
)

// State is the connection state shown to the user.
type State string

// Engine states.
const (
	StateDisconnected State = "disconnected"
	StateSyncing      State = "syncing"
	StateConnected    State = "connected"
	StateError        State = "error"
)

// Status is a point-in-time view of the engine.
// Fields are ordered to minimize memory padding.
type Status struct {
	LastSynced time.Time // Last successful push or pull
	State      State
	Message    string // Error text in StateError
	Enabled    bool
}

// Host is the application side of the engine.
type Host interface {
	// Snapshot returns the local data to push.
	Snapshot() (*domain.Snapshot, error)

	// Merge folds remote into the local data, applies the result locally
	// and returns it so the engine can push it back.
	Merge(remote *domain.Snapshot) (*domain.Snapshot, error)
}

// Options configures an Engine. Zero durations take the defaults.
// Fields are ordered to minimize memory padding.
type Options struct {
	Logger       domain.Logger
	OnStatus     func(Status) // Called after every state change, outside the engine lock
	Now          func() time.Time
	PollInterval time.Duration
	Debounce     time.Duration
	RepushDelay  time.Duration
	Timeout      time.Duration // Per-request timeout for timer driven requests
}

// Engine is the client-side sync state machine. It is safe for concurrent use.
// Fields are ordered to minimize memory padding.
type Engine struct {
	lastSynced      time.Time
	remote          domain.SyncRemote
	host            Host
	logger          domain.Logger
	onStatus        func(Status)
	now             func() time.Time
	debounceTimer   *time.Timer
	repushTimer     *time.Timer
	pendingMerged   *domain.Snapshot // Snapshot the repush timer will send
	stopPoll        chan struct{}
	state           State
	message         string
	serverTimestamp string // Last server stamp we know the content of
	lastPushTime    string // Stamp returned by our own last push
	opts            Options
	generation      uint64 // Bumped on enable/disable to drop late results
	mu              sync.Mutex
	enabled         bool
	mergePending    bool // A pulled merge awaits its deferred re-push
}

// New creates a disabled engine.
func New(remote domain.SyncRemote, host Host, opts Options) *Engine {
	if opts.PollInterval <= 0 {
		opts.PollInterval = domain.DefaultPollInterval
	}
	if opts.Debounce <= 0 {
		opts.Debounce = domain.DefaultDebounce
	}
	if opts.RepushDelay <= 0 {
		opts.RepushDelay = domain.DefaultRepushDelay
	}
	if opts.Timeout <= 0 {
		opts.Timeout = domain.DefaultRequestTimeout
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Engine{
		remote:   remote,
		host:     host,
		logger:   opts.Logger,
		onStatus: opts.OnStatus,
		now:      opts.Now,
		opts:     opts,
		state:    StateDisconnected,
	}
}

// Status returns the current status.
func (e *Engine) Status() Status {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.statusLocked()
}

func (e *Engine) statusLocked() Status {
	return Status{
		State:      e.state,
		Message:    e.message,
		LastSynced: e.lastSynced,
		Enabled:    e.enabled,
	}
}

// setLocked changes the state and returns the status to emit after unlocking.
func (e *Engine) setLocked(state State, msg string) Status {
	e.state = state
	e.message = msg
	if state == StateConnected {
		e.lastSynced = e.now()
	}
	return e.statusLocked()
}

func (e *Engine) emit(st Status) {
	if e.onStatus != nil {
		e.onStatus(st)
	}
}

func (e *Engine) log(msg string) {
	if e.logger != nil {
		e.logger.Info(0, "sync", msg)
	}
}

func (e *Engine) fail(gen uint64, op string, err error) error {
	e.mu.Lock()
	if gen != e.generation {
		e.mu.Unlock()
		return domain.ErrSyncDisabled
	}
	st := e.setLocked(StateError, err.Error())
	e.mu.Unlock()

	if e.logger != nil {
		e.logger.Warn(0, "sync", fmt.Sprintf("%s failed: %v", op, err))
	}
	e.emit(st)
	return fmt.Errorf("%s: %w", op, err)
}

// Push sends snap (or the host's current data when nil) to the server.
// It is a no-op while a pulled merge waits for its re-push.
func (e *Engine) Push(ctx context.Context, snap *domain.Snapshot) error {
	e.mu.Lock()
	if e.mergePending {
		e.mu.Unlock()
		e.log("push suppressed: merge pending")
		return nil
	}
	e.mu.Unlock()
	return e.push(ctx, snap)
}

func (e *Engine) push(ctx context.Context, snap *domain.Snapshot) error {
	e.mu.Lock()
	gen := e.generation
	st := e.setLocked(StateSyncing, "")
	e.mu.Unlock()
	e.emit(st)

	if snap == nil {
		var err error
		if snap, err = e.host.Snapshot(); err != nil {
			return e.fail(gen, "push", err)
		}
	}

	saved, err := e.remote.Put(ctx, snap)
	if err != nil {
		return e.fail(gen, "push", err)
	}

	e.mu.Lock()
	if gen != e.generation {
		e.mu.Unlock()
		return domain.ErrSyncDisabled
	}
	e.serverTimestamp = saved.UpdatedAt
	e.lastPushTime = saved.UpdatedAt
	st = e.setLocked(StateConnected, "")
	e.mu.Unlock()

	e.log(fmt.Sprintf("pushed %d tasks (%s)", len(snap.Tasks), saved.UpdatedAt))
	e.emit(st)
	return nil
}

// Pull merges newer server data into the local data set.
// It reports whether a merge happened.
func (e *Engine) Pull(ctx context.Context) (bool, error) {
	e.mu.Lock()
	gen := e.generation
	st := e.setLocked(StateSyncing, "")
	e.mu.Unlock()
	e.emit(st)

	stamp, err := e.remote.UpdatedAt(ctx)
	if err != nil {
		return false, e.fail(gen, "pull", err)
	}

	e.mu.Lock()
	if gen != e.generation {
		e.mu.Unlock()
		return false, domain.ErrSyncDisabled
	}
	switch stamp {
	case e.serverTimestamp:
		st = e.setLocked(StateConnected, "")
		e.mu.Unlock()
		e.emit(st)
		return false, nil
	case e.lastPushTime:
		// Our own write; nothing new to merge.
		e.serverTimestamp = stamp
		st = e.setLocked(StateConnected, "")
		e.mu.Unlock()
		e.emit(st)
		return false, nil
	}
	e.mu.Unlock()

	remote, err := e.remote.Fetch(ctx)
	if err != nil {
		return false, e.fail(gen, "pull", err)
	}

	e.mu.Lock()
	if gen != e.generation {
		e.mu.Unlock()
		return false, domain.ErrSyncDisabled
	}
	e.mergePending = true
	e.mu.Unlock()

	merged, err := e.host.Merge(remote)
	if err != nil {
		e.mu.Lock()
		e.mergePending = false
		e.mu.Unlock()
		return false, e.fail(gen, "merge", err)
	}

	e.mu.Lock()
	if gen != e.generation {
		e.mergePending = false
		e.mu.Unlock()
		return false, domain.ErrSyncDisabled
	}
	e.serverTimestamp = remote.UpdatedAt
	if e.repushTimer != nil {
		e.repushTimer.Stop()
	}
	e.pendingMerged = merged
	e.repushTimer = time.AfterFunc(e.opts.RepushDelay, func() { e.repush(gen, merged) })
	st = e.setLocked(StateConnected, "")
	e.mu.Unlock()

	e.log(fmt.Sprintf("merged %d remote tasks (%s)", len(remote.Tasks), remote.UpdatedAt))
	e.emit(st)
	return true, nil
}

// repush sends the merged snapshot once local state has settled.
func (e *Engine) repush(gen uint64, merged *domain.Snapshot) {
	e.mu.Lock()
	if gen != e.generation {
		e.mu.Unlock()
		return
	}
	e.mergePending = false
	e.repushTimer = nil
	e.pendingMerged = nil
	e.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), e.opts.Timeout)
	defer cancel()
	_ = e.push(ctx, merged)
}

// Flush sends a pending re-push or debounced push right away.
// One-shot callers use it before exiting.
func (e *Engine) Flush(ctx context.Context) error {
	e.mu.Lock()
	if e.repushTimer != nil && e.repushTimer.Stop() {
		merged := e.pendingMerged
		e.repushTimer = nil
		e.pendingMerged = nil
		e.mergePending = false
		e.mu.Unlock()
		return e.push(ctx, merged)
	}
	if e.debounceTimer != nil && e.debounceTimer.Stop() {
		e.debounceTimer = nil
		e.mu.Unlock()
		return e.Push(ctx, nil)
	}
	e.mu.Unlock()
	return nil
}

// TestConnection checks the credentials without touching engine state.
func (e *Engine) TestConnection(ctx context.Context) error {
	return e.remote.AuthCheck(ctx)
}

// Enable starts syncing: it pulls first, seeds the server with a push when
// nothing was merged (including when the pull failed), then polls every PollInterval.
// The poll keeps running even if the initial exchange fails.
func (e *Engine) Enable(ctx context.Context) error {
	e.mu.Lock()
	if e.enabled {
		e.mu.Unlock()
		return nil
	}
	e.enabled = true
	e.generation++
	stop := make(chan struct{})
	e.stopPoll = stop
	e.mu.Unlock()

	go e.poll(stop)

	pulled, err := e.Pull(ctx)
	if errors.Is(err, domain.ErrSyncDisabled) {
		return err
	}
	if pulled {
		return nil
	}
	// A failed first pull still seeds the server with local data.
	if pushErr := e.Push(ctx, nil); pushErr != nil {
		return errors.Join(err, pushErr)
	}
	return nil
}

func (e *Engine) poll(stop <-chan struct{}) {
	ticker := time.NewTicker(e.opts.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), e.opts.Timeout)
			_, _ = e.Pull(ctx)
			cancel()
		}
	}
}

// Disable stops every timer and returns to disconnected.
// Results of requests still in flight are discarded.
func (e *Engine) Disable() {
	e.mu.Lock()
	if !e.enabled && e.state == StateDisconnected {
		e.mu.Unlock()
		return
	}
	e.enabled = false
	e.generation++
	e.mergePending = false
	if e.stopPoll != nil {
		close(e.stopPoll)
		e.stopPoll = nil
	}
	if e.debounceTimer != nil {
		e.debounceTimer.Stop()
		e.debounceTimer = nil
	}
	if e.repushTimer != nil {
		e.repushTimer.Stop()
		e.repushTimer = nil
	}
	e.pendingMerged = nil
	st := e.setLocked(StateDisconnected, "")
	e.mu.Unlock()

	e.log("disabled")
	e.emit(st)
}

// NotifyChanged schedules a debounced push after a local edit.
// It is ignored while disabled or while a merge is pending.
func (e *Engine) NotifyChanged() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.enabled || e.mergePending {
		return
	}
	if e.debounceTimer != nil {
		e.debounceTimer.Stop()
	}
	gen := e.generation
	e.debounceTimer = time.AfterFunc(e.opts.Debounce, func() {
		e.mu.Lock()
		if gen != e.generation {
			e.mu.Unlock()
			return
		}
		e.debounceTimer = nil
		e.mu.Unlock()

		ctx, cancel := context.WithTimeout(context.Background(), e.opts.Timeout)
		defer cancel()
		_ = e.Push(ctx, nil)
	})
}
