// Package web provides the local catalogue viewer: an HTTP server with a
// JSON API, server-rendered pages, SVG charts, and live reload when the
// catalogue file changes on disk.
package web

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/sessions"
	"github.com/tdecat/tdecat/internal/catalogue"
	"github.com/tdecat/tdecat/internal/dataset"
	"golang.org/x/sync/errgroup"
)

// Server is the catalogue viewer server.
type Server struct {
	cataloguePath string
	resolver      dataset.Resolver
	sessionStore  *sessions.CookieStore
	port          int
	watch         bool
	snrThreshold  float64
	logger        *slog.Logger
	notifier      *Notifier

	mu  sync.RWMutex
	cat *catalogue.Catalogue
}

// Config holds configuration for the viewer server.
type Config struct {
	CataloguePath string
	DataRoot      string
	Port          int
	Watch         bool
	SNRThreshold  float64
	SessionSecret string
	Logger        *slog.Logger
}

// NewServer creates a new viewer server and loads the catalogue.
func NewServer(cfg Config) (*Server, error) {
	sessionStore := sessions.NewCookieStore([]byte(cfg.SessionSecret))
	sessionStore.MaxAge(86400 * 30) // 30 days
	sessionStore.Options.Path = "/"
	sessionStore.Options.HttpOnly = true
	sessionStore.Options.SameSite = http.SameSiteLaxMode

	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	s := &Server{
		cataloguePath: cfg.CataloguePath,
		resolver:      dataset.NewResolver(cfg.DataRoot),
		sessionStore:  sessionStore,
		port:          cfg.Port,
		watch:         cfg.Watch,
		snrThreshold:  cfg.SNRThreshold,
		logger:        logger,
		notifier:      NewNotifier(),
	}
	if err := s.reload(); err != nil {
		return nil, err
	}
	return s, nil
}

// catalogueSnapshot returns the currently loaded catalogue.
func (s *Server) catalogueSnapshot() *catalogue.Catalogue {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cat
}

// reload re-reads the catalogue from disk.
func (s *Server) reload() error {
	cat, err := catalogue.Load(s.cataloguePath)
	if err != nil {
		return fmt.Errorf("failed to load catalogue: %w", err)
	}
	s.mu.Lock()
	s.cat = cat
	s.mu.Unlock()
	s.logger.Debug("catalogue loaded", "path", s.cataloguePath, "sources", len(cat.Sources))
	return nil
}

// Handler builds the HTTP handler with all routes registered.
func (s *Server) Handler() http.Handler {
	r := chi.NewMux()
	r.Use(
		middleware.Logger,
		middleware.Recoverer,
		middleware.Compress(5),
	)

	s.setupRoutes(r)
	return r
}

// Serve starts the viewer server and blocks until the context is cancelled.
func (s *Server) Serve(ctx context.Context) error {
	addr := fmt.Sprintf(":%d", s.port)
	s.logger.Info("starting viewer", "addr", fmt.Sprintf("http://localhost:%d", s.port))

	eg, egctx := errgroup.WithContext(ctx)

	srv := &http.Server{
		Addr:    addr,
		Handler: s.Handler(),
		BaseContext: func(_ net.Listener) context.Context {
			return egctx
		},
		ReadHeaderTimeout: 10 * time.Second,
	}

	if s.watch {
		eg.Go(func() error {
			return s.watchCatalogue(egctx)
		})
	}

	eg.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	eg.Go(func() error {
		<-egctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Debug("shutting down viewer...")
		return srv.Shutdown(shutdownCtx)
	})

	return eg.Wait()
}

// watchCatalogue watches the catalogue file and reloads it on change.
func (s *Server) watchCatalogue(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer func() { _ = watcher.Close() }()

	// Watch the directory, not the file: editors replace files on save and
	// the inode-level watch would be lost.
	if err := watcher.Add(filepath.Dir(s.cataloguePath)); err != nil {
		s.logger.Error("failed to watch catalogue directory", "error", err)
		return nil
	}

	var debounceTimer *time.Timer
	for {
		select {
		case <-ctx.Done():
			return nil

		case event := <-watcher.Events:
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if filepath.Clean(event.Name) != filepath.Clean(s.cataloguePath) {
				continue
			}

			// Debounce
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(100*time.Millisecond, func() {
				s.logger.Debug("catalogue changed, reloading", "file", event.Name)
				if err := s.reload(); err != nil {
					s.logger.Error("reload failed", "error", err)
					return
				}
				s.notifier.Broadcast()
			})

		case err := <-watcher.Errors:
			s.logger.Error("watcher error", "error", err)
		}
	}
}
