package syncer

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runoshun/taskdeck/internal/domain"
	"github.com/runoshun/taskdeck/internal/testutil"
)

// fakeHost keeps local data in memory and merges by taking the union of tasks.
type fakeHost struct {
	local    *domain.Snapshot
	mergeErr error
	merges   int
	mu       sync.Mutex
}

func newFakeHost(tasks ...*domain.Task) *fakeHost {
	snap := domain.NewSnapshot()
	snap.Tasks = append(snap.Tasks, tasks...)
	return &fakeHost{local: snap}
}

func (h *fakeHost) Snapshot() (*domain.Snapshot, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.local.Clone(), nil
}

func (h *fakeHost) Merge(remote *domain.Snapshot) (*domain.Snapshot, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.mergeErr != nil {
		return nil, h.mergeErr
	}
	h.merges++
	for _, t := range remote.Tasks {
		if h.local.Task(t.ID) == nil {
			h.local.Tasks = append(h.local.Tasks, t.Clone())
		}
	}
	return h.local.Clone(), nil
}

func (h *fakeHost) mergeCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.merges
}

func fastOptions() Options {
	return Options{
		PollInterval: time.Hour,
		Debounce:     20 * time.Millisecond,
		RepushDelay:  20 * time.Millisecond,
		Timeout:      time.Second,
	}
}

func TestEngine_PullTwiceMergesOnce(t *testing.T) {
	// Setup
	remote := testutil.NewMockSyncRemote()
	remote.RemoteWrite(func(s *domain.Snapshot) {
		s.Tasks = []*domain.Task{{ID: 1, Name: "from phone"}}
	})
	host := newFakeHost()
	opts := fastOptions()
	opts.RepushDelay = time.Hour
	e := New(remote, host, opts)
	ctx := context.Background()

	// Execute
	first, err := e.Pull(ctx)
	require.NoError(t, err)
	second, err := e.Pull(ctx)
	require.NoError(t, err)

	// Assert
	assert.True(t, first)
	assert.False(t, second)
	assert.Equal(t, 1, host.mergeCount())
	_, fetches := remote.Counts()
	assert.Equal(t, 1, fetches)
	assert.Equal(t, StateConnected, e.Status().State)
}

func TestEngine_PullAfterOwnPushIsNoop(t *testing.T) {
	remote := testutil.NewMockSyncRemote()
	host := newFakeHost(&domain.Task{ID: 1, Name: "local"})
	e := New(remote, host, fastOptions())
	ctx := context.Background()

	require.NoError(t, e.Push(ctx, nil))
	pulled, err := e.Pull(ctx)

	require.NoError(t, err)
	assert.False(t, pulled)
	assert.Equal(t, 0, host.mergeCount())
	_, fetches := remote.Counts()
	assert.Equal(t, 0, fetches)
}

func TestEngine_PullDetectsForeignWrite(t *testing.T) {
	remote := testutil.NewMockSyncRemote()
	host := newFakeHost()
	opts := fastOptions()
	opts.RepushDelay = time.Hour
	e := New(remote, host, opts)
	ctx := context.Background()
	require.NoError(t, e.Push(ctx, nil))

	remote.RemoteWrite(func(s *domain.Snapshot) {
		s.Tasks = append(s.Tasks, &domain.Task{ID: 9, Name: "other client"})
	})
	pulled, err := e.Pull(ctx)

	require.NoError(t, err)
	assert.True(t, pulled)
	snap, _ := host.Snapshot()
	assert.NotNil(t, snap.Task(9))
}

func TestEngine_DeferredRepushAfterMerge(t *testing.T) {
	// Setup
	remote := testutil.NewMockSyncRemote()
	remote.RemoteWrite(func(s *domain.Snapshot) {
		s.Tasks = []*domain.Task{{ID: 2, Name: "remote"}}
	})
	host := newFakeHost(&domain.Task{ID: 1, Name: "local"})
	e := New(remote, host, fastOptions())
	ctx := context.Background()

	// Execute
	pulled, err := e.Pull(ctx)
	require.NoError(t, err)
	require.True(t, pulled)

	// Pushes are suppressed until the re-push fires
	require.NoError(t, e.Push(ctx, nil))
	puts, _ := remote.Counts()
	assert.Equal(t, 0, puts)

	// Assert
	require.Eventually(t, func() bool {
		puts, _ := remote.Counts()
		return puts == 1
	}, time.Second, 5*time.Millisecond)
	snap, _ := remote.Fetch(ctx)
	assert.Len(t, snap.Tasks, 2)

	// The re-push does not trigger another merge
	pulled, err = e.Pull(ctx)
	require.NoError(t, err)
	assert.False(t, pulled)
	assert.Equal(t, 1, host.mergeCount())
}

func TestEngine_EnableSeedsEmptyRemote(t *testing.T) {
	remote := testutil.NewMockSyncRemote()
	host := newFakeHost(&domain.Task{ID: 1, Name: "local"})
	var statuses []State
	var mu sync.Mutex
	opts := fastOptions()
	opts.OnStatus = func(s Status) {
		mu.Lock()
		statuses = append(statuses, s.State)
		mu.Unlock()
	}
	e := New(remote, host, opts)
	defer e.Disable()

	// First pull merges the stale default data, so seed via re-push
	require.NoError(t, e.Enable(context.Background()))

	require.Eventually(t, func() bool {
		puts, _ := remote.Counts()
		return puts == 1
	}, time.Second, 5*time.Millisecond)
	snap, _ := remote.Fetch(context.Background())
	assert.NotNil(t, snap.Task(1))
	assert.True(t, e.Status().Enabled)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, StateSyncing, statuses[0])
	assert.Contains(t, statuses, StateConnected)
}

func TestEngine_EnablePushesWhenNothingToPull(t *testing.T) {
	remote := testutil.NewMockSyncRemote()
	host := newFakeHost(&domain.Task{ID: 1, Name: "local"})
	e := New(remote, host, fastOptions())
	ctx := context.Background()

	// Learn the current stamp first so the enable pull is a no-op
	require.NoError(t, e.Push(ctx, nil))
	puts, _ := remote.Counts()
	require.Equal(t, 1, puts)

	require.NoError(t, e.Enable(ctx))
	defer e.Disable()

	puts, _ = remote.Counts()
	assert.Equal(t, 2, puts)
	assert.Equal(t, 0, host.mergeCount())
}

func TestEngine_EnablePushesWhenFirstPullFails(t *testing.T) {
	// Setup
	remote := testutil.NewMockSyncRemote()
	remote.RemoteWrite(func(s *domain.Snapshot) {
		s.Tasks = []*domain.Task{{ID: 2, Name: "from phone"}}
	})
	host := newFakeHost(&domain.Task{ID: 1, Name: "local"})
	host.mergeErr = errors.New("disk full")
	e := New(remote, host, fastOptions())
	defer e.Disable()

	// Execute
	err := e.Enable(context.Background())

	// Assert
	require.NoError(t, err)
	puts, _ := remote.Counts()
	assert.Equal(t, 1, puts)
	snap, _ := remote.Fetch(context.Background())
	assert.NotNil(t, snap.Task(1))
	assert.Equal(t, StateConnected, e.Status().State)
}

func TestEngine_EnableReportsPushAfterFailedPull(t *testing.T) {
	// Setup
	remote := testutil.NewMockSyncRemote()
	remote.SetErr(errors.New("connection refused"))
	e := New(remote, newFakeHost(), fastOptions())
	defer e.Disable()

	// Execute
	err := e.Enable(context.Background())

	// Assert
	require.Error(t, err)
	assert.ErrorContains(t, err, "push")
	assert.Equal(t, StateError, e.Status().State)
	puts, _ := remote.Counts()
	assert.Equal(t, 1, puts)
}

func TestEngine_NotifyChangedDebounces(t *testing.T) {
	remote := testutil.NewMockSyncRemote()
	host := newFakeHost()
	e := New(remote, host, fastOptions())
	ctx := context.Background()
	require.NoError(t, e.Push(ctx, nil))
	require.NoError(t, e.Enable(ctx))
	defer e.Disable()
	before, _ := remote.Counts()

	for range 5 {
		e.NotifyChanged()
	}

	require.Eventually(t, func() bool {
		puts, _ := remote.Counts()
		return puts == before+1
	}, time.Second, 5*time.Millisecond)
	time.Sleep(60 * time.Millisecond)
	puts, _ := remote.Counts()
	assert.Equal(t, before+1, puts)
}

func TestEngine_NotifyChangedIgnoredWhenDisabled(t *testing.T) {
	remote := testutil.NewMockSyncRemote()
	e := New(remote, newFakeHost(), fastOptions())

	e.NotifyChanged()
	time.Sleep(60 * time.Millisecond)

	puts, _ := remote.Counts()
	assert.Equal(t, 0, puts)
}

func TestEngine_DisableStopsTimers(t *testing.T) {
	remote := testutil.NewMockSyncRemote()
	e := New(remote, newFakeHost(), fastOptions())
	ctx := context.Background()
	require.NoError(t, e.Push(ctx, nil))
	require.NoError(t, e.Enable(ctx))
	before, _ := remote.Counts()

	e.NotifyChanged()
	e.Disable()
	time.Sleep(60 * time.Millisecond)

	puts, _ := remote.Counts()
	assert.Equal(t, before, puts)
	st := e.Status()
	assert.Equal(t, StateDisconnected, st.State)
	assert.False(t, st.Enabled)
}

func TestEngine_DisableDropsPendingRepush(t *testing.T) {
	remote := testutil.NewMockSyncRemote()
	remote.RemoteWrite(func(s *domain.Snapshot) {})
	e := New(remote, newFakeHost(), fastOptions())

	pulled, err := e.Pull(context.Background())
	require.NoError(t, err)
	require.True(t, pulled)
	e.Disable()
	time.Sleep(60 * time.Millisecond)

	puts, _ := remote.Counts()
	assert.Equal(t, 0, puts)
}

func TestEngine_PollPulls(t *testing.T) {
	remote := testutil.NewMockSyncRemote()
	host := newFakeHost()
	opts := fastOptions()
	opts.PollInterval = 10 * time.Millisecond
	opts.RepushDelay = time.Hour
	e := New(remote, host, opts)
	require.NoError(t, e.Enable(context.Background()))
	defer e.Disable()
	merges := host.mergeCount()

	remote.RemoteWrite(func(s *domain.Snapshot) {
		s.Tasks = []*domain.Task{{ID: 3, Name: "polled"}}
	})

	require.Eventually(t, func() bool {
		return host.mergeCount() == merges+1
	}, time.Second, 5*time.Millisecond)
}

func TestEngine_FailureSetsErrorState(t *testing.T) {
	remote := testutil.NewMockSyncRemote()
	remote.SetErr(domain.ErrForbidden)
	logger := &testutil.MockLogger{}
	opts := fastOptions()
	opts.Logger = logger
	e := New(remote, newFakeHost(), opts)

	err := e.Push(context.Background(), nil)

	require.ErrorIs(t, err, domain.ErrForbidden)
	st := e.Status()
	assert.Equal(t, StateError, st.State)
	assert.Contains(t, st.Message, "invalid password")
	assert.Equal(t, "WARN", logger.Lines()[0].Level)

	// Recovers on the next successful exchange
	remote.SetErr(nil)
	require.NoError(t, e.Push(context.Background(), nil))
	assert.Equal(t, StateConnected, e.Status().State)
	assert.Empty(t, e.Status().Message)
}

func TestEngine_MergeFailure(t *testing.T) {
	remote := testutil.NewMockSyncRemote()
	host := newFakeHost()
	host.mergeErr = assert.AnError
	e := New(remote, host, fastOptions())

	_, err := e.Pull(context.Background())

	require.ErrorIs(t, err, assert.AnError)
	assert.Equal(t, StateError, e.Status().State)
	// Pushes are not left suppressed
	require.NoError(t, e.Push(context.Background(), nil))
	puts, _ := remote.Counts()
	assert.Equal(t, 1, puts)
}

func TestEngine_TestConnectionKeepsState(t *testing.T) {
	remote := testutil.NewMockSyncRemote()
	remote.AuthErr = domain.ErrUnauthorized
	e := New(remote, newFakeHost(), fastOptions())

	err := e.TestConnection(context.Background())

	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	assert.Equal(t, StateDisconnected, e.Status().State)
}

func TestNew_Defaults(t *testing.T) {
	e := New(testutil.NewMockSyncRemote(), newFakeHost(), Options{})

	assert.Equal(t, domain.DefaultPollInterval, e.opts.PollInterval)
	assert.Equal(t, domain.DefaultDebounce, e.opts.Debounce)
	assert.Equal(t, domain.DefaultRepushDelay, e.opts.RepushDelay)
	assert.Equal(t, domain.DefaultRequestTimeout, e.opts.Timeout)
}

func TestEngine_FlushSendsPendingRepush(t *testing.T) {
	remote := testutil.NewMockSyncRemote()
	remote.RemoteWrite(func(s *domain.Snapshot) {
		s.Tasks = []*domain.Task{{ID: 2, Name: "remote"}}
	})
	host := newFakeHost(&domain.Task{ID: 1, Name: "local"})
	opts := fastOptions()
	opts.RepushDelay = time.Hour
	e := New(remote, host, opts)
	ctx := context.Background()

	pulled, err := e.Pull(ctx)
	require.NoError(t, err)
	require.True(t, pulled)

	require.NoError(t, e.Flush(ctx))

	puts, _ := remote.Counts()
	assert.Equal(t, 1, puts)
	snap, _ := remote.Fetch(ctx)
	assert.Len(t, snap.Tasks, 2)

	// Nothing left to flush
	require.NoError(t, e.Flush(ctx))
	puts, _ = remote.Counts()
	assert.Equal(t, 1, puts)
}
