package syncclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runoshun/taskdeck/internal/domain"
)

// fakeServer is a minimal in-memory sync server.
type fakeServer struct {
	t       *testing.T
	data    map[string]any
	lastPut map[string]any
	auth    string
}

func newFakeServer(t *testing.T) (*fakeServer, *httptest.Server) {
	f := &fakeServer{
		t: t,
		data: map[string]any{
			"tasks":     []any{map[string]any{"id": 1, "name": "remote", "completedDates": nil}},
			"projects":  []any{"Personal"},
			"settings":  map[string]any{"overclock": true, "overclockLocked": false},
			"updatedAt": "2026-10-17T09:00:00.000Z",
		},
	}
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/health", func(w http.ResponseWriter, r *http.Request) {
		f.write(w, http.StatusOK, map[string]any{"status": "ok", "server": "taskdeck-sync", "version": "test"})
	})
	mux.HandleFunc("GET /api/auth-check", f.authed(func(w http.ResponseWriter, r *http.Request) {
		f.write(w, http.StatusOK, map[string]any{"status": "ok", "message": "Authenticated"})
	}))
	mux.HandleFunc("GET /api/data", f.authed(func(w http.ResponseWriter, r *http.Request) {
		f.write(w, http.StatusOK, f.data)
	}))
	mux.HandleFunc("GET /api/data/updated-at", f.authed(func(w http.ResponseWriter, r *http.Request) {
		f.write(w, http.StatusOK, map[string]any{"updatedAt": f.data["updatedAt"]})
	}))
	mux.HandleFunc("PUT /api/data", f.authed(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		f.lastPut = body
		if _, ok := body["tasks"].([]any); !ok {
			f.write(w, http.StatusBadRequest, map[string]any{"error": "Invalid data format"})
			return
		}
		body["updatedAt"] = "2026-10-17T09:00:01.000Z"
		f.data = body
		f.write(w, http.StatusOK, body)
	}))
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return f, srv
}

func (f *fakeServer) authed(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f.auth = r.Header.Get("Authorization")
		switch f.auth {
		case "":
			f.write(w, http.StatusUnauthorized, map[string]any{"error": "Authorization required"})
		case "Bearer secret":
			next(w, r)
		default:
			f.write(w, http.StatusForbidden, map[string]any{"error": "Invalid password"})
		}
	}
}

func (f *fakeServer) write(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	require.NoError(f.t, json.NewEncoder(w).Encode(v))
}

func newClient(url, password string) *Client {
	return New(domain.SyncConfig{ServerURL: url + "/", Password: password, Enabled: true}, 5*time.Second)
}

func TestClient_Health(t *testing.T) {
	_, srv := newFakeServer(t)

	h, err := newClient(srv.URL, "").Health(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "taskdeck-sync", h.Server)
}

func TestClient_AuthCheck(t *testing.T) {
	f, srv := newFakeServer(t)
	ctx := context.Background()

	require.NoError(t, newClient(srv.URL, "secret").AuthCheck(ctx))
	assert.Equal(t, "Bearer secret", f.auth)

	err := newClient(srv.URL, "").AuthCheck(ctx)
	require.ErrorIs(t, err, domain.ErrUnauthorized)
	assert.Contains(t, err.Error(), "Authorization required")

	err = newClient(srv.URL, "wrong").AuthCheck(ctx)
	require.ErrorIs(t, err, domain.ErrForbidden)
}

func TestClient_UpdatedAtAndFetch(t *testing.T) {
	_, srv := newFakeServer(t)
	c := newClient(srv.URL, "secret")
	ctx := context.Background()

	stamp, err := c.UpdatedAt(ctx)
	require.NoError(t, err)
	assert.Equal(t, "2026-10-17T09:00:00.000Z", stamp)

	snap, err := c.Fetch(ctx)
	require.NoError(t, err)
	require.Len(t, snap.Tasks, 1)
	assert.Equal(t, "remote", snap.Tasks[0].Name)
	assert.NotNil(t, snap.Tasks[0].CompletedDates)
	assert.True(t, snap.Settings.Overclock)
	assert.Equal(t, stamp, snap.UpdatedAt)
}

func TestClient_Put(t *testing.T) {
	f, srv := newFakeServer(t)
	c := newClient(srv.URL, "secret")

	saved, err := c.Put(context.Background(), &domain.Snapshot{
		UpdatedAt:      "ignored",
		Tasks:          []*domain.Task{{ID: 5, Name: "local"}},
		DeletedTaskIDs: []int64{1},
	})

	require.NoError(t, err)
	assert.Equal(t, "2026-10-17T09:00:01.000Z", saved.UpdatedAt)
	require.Len(t, saved.Tasks, 1)
	assert.Equal(t, int64(5), saved.Tasks[0].ID)

	// Wire body carries arrays and no client stamp
	assert.Equal(t, []any{}, f.lastPut["projects"])
	assert.Equal(t, []any{float64(1)}, f.lastPut["deletedTaskIds"])
	assert.NotContains(t, f.lastPut, "updatedAt")
	assert.Contains(t, f.lastPut, "settings")
}

func TestClient_NotConfigured(t *testing.T) {
	c := New(domain.SyncConfig{}, time.Second)

	assert.ErrorIs(t, c.AuthCheck(context.Background()), domain.ErrSyncNotConfigured)
}

func TestClient_TransportError(t *testing.T) {
	_, srv := newFakeServer(t)
	c := newClient(srv.URL, "secret")
	srv.Close()

	_, err := c.UpdatedAt(context.Background())

	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrUnauthorized)
}
