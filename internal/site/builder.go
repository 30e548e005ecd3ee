package site

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/pressgen/internal/config"
	"git.home.luguber.info/inful/pressgen/internal/errors"
	"git.home.luguber.info/inful/pressgen/internal/manifest"
	"git.home.luguber.info/inful/pressgen/internal/metrics"
	"git.home.luguber.info/inful/pressgen/internal/observability"
	"git.home.luguber.info/inful/pressgen/internal/remote"
	"git.home.luguber.info/inful/pressgen/internal/render"
	"git.home.luguber.info/inful/pressgen/internal/state"
)

// Builder runs the full build pipeline for one site.
type Builder struct {
	cfg     *config.Config
	metrics metrics.Recorder
	store   *state.Store
	fetcher remote.Fetcher
}

// Option configures optional builder collaborators.
type Option func(*Builder)

// WithMetrics records stage and build metrics.
func WithMetrics(rec metrics.Recorder) Option {
	return func(b *Builder) { b.metrics = rec }
}

// WithStateStore persists document hashes and build summaries.
func WithStateStore(s *state.Store) Option {
	return func(b *Builder) { b.store = s }
}

// WithFetcher overrides the remote content source fetcher.
func WithFetcher(f remote.Fetcher) Option {
	return func(b *Builder) { b.fetcher = f }
}

// NewBuilder creates a builder for the configured site.
func NewBuilder(cfg *config.Config, opts ...Option) *Builder {
	b := &Builder{
		cfg:     cfg,
		metrics: metrics.NoopRecorder{},
		fetcher: remote.NewGitFetcher(".pressgen-sources"),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build runs the pipeline once and returns the build summary. On failure it
// returns the first failing stage's error, which carries every diagnostic
// that stage collected.
func (b *Builder) Build(ctx context.Context) (manifest.Summary, error) {
	buildID := uuid.NewString()
	ctx = observability.WithBuildID(ctx, buildID)

	renderer, err := render.NewMarkdownRenderer(b.cfg.Site, b.cfg.Build.LayoutsDir)
	if err != nil {
		return manifest.Summary{}, errors.WrapFatal(err, errors.CategoryRender, "load layouts")
	}

	bs := &BuildState{
		Cfg:            b.cfg,
		BuildID:        buildID,
		Started:        time.Now(),
		Renderer:       renderer,
		StageDurations: map[StageName]time.Duration{},
	}

	observability.InfoContext(ctx, "Build starting")

	err = runStages(ctx, bs, b.metrics, []StageDef{
		{StageFetchSources, b.stageFetchSources},
		{StageLoad, b.stageLoad},
		{StageDefaults, b.stageDefaults},
		{StageCollections, b.stageCollections},
		{StagePermalinks, b.stagePermalinks},
		{StagePaginate, b.stagePaginate},
		{StageFeed, b.stageFeed},
		{StageRender, b.stageRender},
		{StageVerify, b.stageVerify},
		{StageWrite, b.stageWrite},
	})

	duration := time.Since(bs.Started)
	b.metrics.ObserveBuildDuration(duration)

	if err != nil {
		b.metrics.IncBuildOutcome("failure")
		return manifest.Summary{BuildID: buildID}, err
	}

	b.metrics.IncBuildOutcome("success")
	sum := bs.Manifest.Summarize()
	observability.InfoContext(ctx, "Build finished",
		slog.Duration("duration", duration),
		slog.Int("pages", sum.Pages),
		slog.String("fingerprint", sum.Fingerprint))
	return sum, nil
}
