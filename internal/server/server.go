// Package server implements the stateviz HTTP API.
//
// The API serves the machines of a registry file: rendering payloads,
// simulated radial layouts, distance tables, state inspectors, highlight
// styling and rendered SVGs. When watching is enabled the registry file is
// reloaded on change and swapped in atomically; requests in flight keep the
// registry they started with.
//
// Routes:
//
//	GET /healthz
//	GET /metrics
//	GET /api/machines
//	GET /api/machines/{name}
//	GET /api/machines/{name}/layout
//	GET /api/machines/{name}/distances/{state}
//	GET /api/machines/{name}/states/{state}
//	GET /api/machines/{name}/highlight
//	GET /api/machines/{name}/svg
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/stateviz/pkg/config"
	"github.com/matzehuels/stateviz/pkg/extract/props"
	"github.com/matzehuels/stateviz/pkg/pipeline"
	"github.com/matzehuels/stateviz/pkg/registry"
)

// Options configures a [Server].
type Options struct {
	Registry   *registry.Registry
	Properties props.Properties
	Runner     *pipeline.Runner
	Layout     config.LayoutConfig
	Server     config.ServerConfig
	Logger     *log.Logger
	// Metrics enables /metrics when set.
	Metrics *Metrics
}

// Server serves one registry over HTTP.
type Server struct {
	reg     atomic.Pointer[registry.Registry]
	props   props.Properties
	runner  *pipeline.Runner
	layout  config.LayoutConfig
	cfg     config.ServerConfig
	logger  *log.Logger
	metrics *Metrics
	router  chi.Router
}

// New creates a server. A registry is required; every other option has a
// working default.
func New(opts Options) (*Server, error) {
	if opts.Registry == nil {
		return nil, fmt.Errorf("server: registry is required")
	}
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	if opts.Runner == nil {
		opts.Runner = pipeline.NewRunner(nil, nil, opts.Logger)
	}
	def := config.Default()
	if opts.Layout == (config.LayoutConfig{}) {
		opts.Layout = def.Layout
	}
	if opts.Server.Addr == "" {
		opts.Server = def.Server
	}

	s := &Server{
		props:   opts.Properties,
		runner:  opts.Runner,
		layout:  opts.Layout,
		cfg:     opts.Server,
		logger:  opts.Logger,
		metrics: opts.Metrics,
	}
	s.SetRegistry(opts.Registry)
	s.router = s.routes()
	return s, nil
}

// Registry returns the registry currently served.
func (s *Server) Registry() *registry.Registry { return s.reg.Load() }

// SetRegistry swaps the served registry.
func (s *Server) SetRegistry(r *registry.Registry) {
	s.reg.Store(r)
	if s.metrics != nil {
		s.metrics.RecordReload(r.Len(), nil)
	}
}

// Handler returns the HTTP handler for all routes.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.instrument)

	r.Get("/healthz", s.handleHealth)
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics.Handler())
	}

	r.Route("/api/machines", func(r chi.Router) {
		r.Get("/", s.handleMachines)
		r.Route("/{name}", func(r chi.Router) {
			r.Get("/", s.handlePayload)
			r.Get("/layout", s.handleLayout)
			r.Get("/distances/{state}", s.handleDistances)
			r.Get("/states/{state}", s.handleState)
			r.Get("/highlight", s.handleHighlight)
			r.Get("/svg", s.handleSVG)
		})
	})
	return r
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
// With watching enabled and a registry loaded from a file, the registry is
// reloaded whenever that file changes.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.cfg.Addr,
		Handler:      s.router,
		ReadTimeout:  s.cfg.ReadTimeout.Duration,
		WriteTimeout: s.cfg.WriteTimeout.Duration,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("serving", "addr", s.cfg.Addr, "machines", s.Registry().Len())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		timeout := s.cfg.ShutdownTimeout.Duration
		if timeout <= 0 {
			timeout = 5 * time.Second
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		s.logger.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	if path := s.Registry().Path(); s.cfg.Watch && path != "" {
		g.Go(func() error {
			w := registry.NewWatcher(path, s.onReload).WithLogger(s.logger)
			if err := w.Watch(ctx); err != nil && !errors.Is(err, context.Canceled) {
				s.logger.Warn("registry watcher stopped", "error", err)
			}
			return nil
		})
	}
	return g.Wait()
}

// onReload swaps in a freshly loaded registry. A registry that fails to
// load leaves the current one in place.
func (s *Server) onReload(r *registry.Registry, err error) {
	if err != nil {
		if s.metrics != nil {
			s.metrics.RecordReload(0, err)
		}
		s.logger.Error("registry reload failed; keeping current registry", "error", err)
		return
	}
	s.SetRegistry(r)
	s.logger.Info("registry reloaded", "machines", r.Len(), "hash", r.Hash()[:12])
}
