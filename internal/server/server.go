// Package server implements the taskdeck sync server.
//
// The server keeps one document and replaces it on every PUT (last write wins).
// Clients poll the cheap updated-at endpoint and fetch the full document only
// when the stamp changes.
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/runoshun/taskdeck/internal/domain"
)

// Name is reported by the health endpoint.
const Name = "taskdeck-sync"

// stampLayout matches JavaScript's Date.toISOString.
const stampLayout = "2006-01-02T15:04:05.000Z"

// Options configures a Server.
// Fields are ordered to minimize memory padding.
type Options struct {
	Store        Store
	Logger       *slog.Logger
	Now          func() time.Time
	Out          io.Writer // Startup banner destination (nil = none)
	Addr         string
	Password     string
	Version      string
	MaxBodyBytes int64
}

// Server serves the sync API.
// Fields are ordered to minimize memory padding.
type Server struct {
	last     time.Time // Last stamp handed out
	store    Store
	logger   *slog.Logger
	now      func() time.Time
	out      io.Writer
	fallback *Document // Served until the first save
	router   *gin.Engine
	addr     string
	password string
	version  string
	maxBody  int64
	mu       sync.Mutex
}

// New creates a server. Store is required.
func New(opts Options) (*Server, error) {
	if opts.Store == nil {
		return nil, fmt.Errorf("server: store is required")
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Addr == "" {
		opts.Addr = domain.DefaultServerAddr
	}
	if opts.Password == "" {
		opts.Password = domain.DefaultServerPassword
	}
	if opts.Version == "" {
		opts.Version = "dev"
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = domain.DefaultMaxRequestBytes
	}

	s := &Server{
		store:    opts.Store,
		logger:   opts.Logger,
		now:      opts.Now,
		out:      opts.Out,
		addr:     opts.Addr,
		password: opts.Password,
		version:  opts.Version,
		maxBody:  opts.MaxBodyBytes,
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), requestID(), s.requestLogger(), cors(), bodyLimit(s.maxBody))
	registerRoutes(router, s)
	s.router = router
	return s, nil
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run listens until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	if s.out != nil {
		s.banner()
	}
	s.logger.Info("sync server listening", "addr", s.addr)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server: %w", err)
	}
	return nil
}

func (s *Server) banner() {
	password := "********"
	if s.password == domain.DefaultServerPassword {
		password = domain.DefaultServerPassword + " (default!)"
	}
	_, _ = fmt.Fprintf(s.out, "taskdeck sync server %s\n", s.version)
	_, _ = fmt.Fprintf(s.out, "  Listen:   %s\n", s.addr)
	_, _ = fmt.Fprintf(s.out, "  Password: %s\n", password)
}

// current returns the stored document or the default one.
func (s *Server) current(ctx context.Context) (*Document, error) {
	doc, err := s.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	if doc != nil {
		s.observe(doc.UpdatedAt)
		return doc, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fallback == nil {
		s.fallback = DefaultDocument(s.stampLocked())
	}
	return s.fallback, nil
}

// replace stamps and saves doc.
func (s *Server) replace(ctx context.Context, doc *Document) error {
	// Seed the stamp floor from whatever is stored.
	if prev, err := s.store.Load(ctx); err == nil && prev != nil {
		s.observe(prev.UpdatedAt)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	doc.UpdatedAt = s.stampLocked()
	if err := s.store.Save(ctx, doc); err != nil {
		return err
	}
	s.fallback = nil
	return nil
}

func (s *Server) observe(stamp string) {
	ts, err := time.Parse(time.RFC3339Nano, stamp)
	if err != nil {
		return
	}
	s.mu.Lock()
	if ts.After(s.last) {
		s.last = ts
	}
	s.mu.Unlock()
}

// stampLocked returns a millisecond stamp strictly after the previous one.
func (s *Server) stampLocked() string {
	ts := s.now().UTC().Truncate(time.Millisecond)
	if !ts.After(s.last) {
		ts = s.last.Add(time.Millisecond)
	}
	s.last = ts
	return ts.Format(stampLayout)
}

// ApplyEnv overlays the SYNC_PASSWORD, PORT and DATA_FILE variables onto cfg.
func ApplyEnv(cfg domain.ServerConfig, getenv func(string) string) domain.ServerConfig {
	if v := getenv("SYNC_PASSWORD"); v != "" {
		cfg.Password = v
	}
	if v := getenv("PORT"); v != "" {
		host, _, found := strings.Cut(cfg.Addr, ":")
		if !found {
			host = ""
		}
		cfg.Addr = host + ":" + v
	}
	if v := getenv("DATA_FILE"); v != "" {
		cfg.DataFile = v
	}
	return cfg
}
