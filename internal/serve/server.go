// Package serve runs the local preview server: it serves the rendered site,
// rebuilds on content changes and on a periodic schedule, and optionally
// publishes build events.
package serve

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-co-op/gocron/v2"

	"git.home.luguber.info/inful/pressgen/internal/config"
	"git.home.luguber.info/inful/pressgen/internal/manifest"
)

// Rebuilder runs one build and returns its summary. The trigger names what
// caused the build ("watch", "schedule", "initial").
type Rebuilder func(ctx context.Context, trigger string) (manifest.Summary, error)

// Server serves the output directory and coordinates rebuild triggers.
type Server struct {
	cfg       config.ServeConfig
	outputDir string
	rebuild   Rebuilder
	publisher EventPublisher
	metrics   http.Handler

	httpServer *http.Server
	scheduler  gocron.Scheduler
}

// Option configures optional server collaborators.
type Option func(*Server)

// WithEventPublisher publishes a BuildEvent after every rebuild.
func WithEventPublisher(p EventPublisher) Option {
	return func(s *Server) { s.publisher = p }
}

// WithMetricsHandler exposes the handler at /metrics.
func WithMetricsHandler(h http.Handler) Option {
	return func(s *Server) { s.metrics = h }
}

// New creates a preview server over outputDir.
func New(cfg config.ServeConfig, outputDir string, rebuild Rebuilder, opts ...Option) *Server {
	s := &Server{
		cfg:       cfg,
		outputDir: outputDir,
		rebuild:   rebuild,
		publisher: NoopPublisher{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the HTTP handler: static site plus optional /metrics.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	if s.metrics != nil {
		mux.Handle("/metrics", s.metrics)
	}
	mux.Handle("/", http.FileServer(http.Dir(s.outputDir)))
	return mux
}

// Run serves until ctx is canceled. It starts the watcher on contentDir and,
// when configured, a periodic rebuild schedule.
func (s *Server) Run(ctx context.Context, contentDir string) error {
	watcher, err := NewContentWatcher(contentDir, s.outputDir)
	if err != nil {
		return fmt.Errorf("start content watcher: %w", err)
	}
	defer watcher.Stop()
	watcher.Start(ctx)

	if s.cfg.RebuildInterval > 0 {
		if err := s.startSchedule(ctx); err != nil {
			return err
		}
		defer func() {
			if s.scheduler != nil {
				_ = s.scheduler.Shutdown()
			}
		}()
	}

	s.httpServer = &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Preview server listening", "addr", s.cfg.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	for {
		select {
		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return s.httpServer.Shutdown(shutdownCtx)
		case err := <-errCh:
			return fmt.Errorf("preview server: %w", err)
		case path := <-watcher.Triggers():
			slog.Info("Content changed, rebuilding", "path", path)
			s.runBuild(ctx, "watch")
		}
	}
}

func (s *Server) startSchedule(ctx context.Context) error {
	sched, err := gocron.NewScheduler()
	if err != nil {
		return fmt.Errorf("create scheduler: %w", err)
	}
	_, err = sched.NewJob(
		gocron.DurationJob(s.cfg.RebuildInterval),
		gocron.NewTask(func() { s.runBuild(ctx, "schedule") }),
		gocron.WithName("periodic-rebuild"),
	)
	if err != nil {
		return fmt.Errorf("schedule periodic rebuild: %w", err)
	}
	sched.Start()
	s.scheduler = sched
	slog.Info("Periodic rebuild scheduled", "interval", s.cfg.RebuildInterval)
	return nil
}

func (s *Server) runBuild(ctx context.Context, trigger string) {
	sum, err := s.rebuild(ctx, trigger)
	outcome := "success"
	if err != nil {
		outcome = "failure"
		slog.Error("Rebuild failed", "trigger", trigger, "error", err)
	} else {
		slog.Info("Rebuild finished", "trigger", trigger, "build.id", sum.BuildID, "pages", sum.Pages)
	}
	if perr := s.publisher.PublishBuild(EventFromSummary(sum, outcome, trigger)); perr != nil {
		slog.Warn("Could not publish build event", "error", perr)
	}
}
