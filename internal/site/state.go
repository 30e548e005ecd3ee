// Package site drives the build pipeline: it runs the stages that turn a
// content tree into the rendered site and its manifest.
package site

import (
	"context"
	"time"

	"git.home.luguber.info/inful/pressgen/internal/collections"
	"git.home.luguber.info/inful/pressgen/internal/config"
	"git.home.luguber.info/inful/pressgen/internal/content"
	"git.home.luguber.info/inful/pressgen/internal/feed"
	"git.home.luguber.info/inful/pressgen/internal/manifest"
	"git.home.luguber.info/inful/pressgen/internal/pagination"
	"git.home.luguber.info/inful/pressgen/internal/remote"
	"git.home.luguber.info/inful/pressgen/internal/render"
)

// StageName identifies a pipeline stage.
type StageName string

const (
	StageFetchSources StageName = "fetch-sources"
	StageLoad         StageName = "load"
	StageDefaults     StageName = "defaults"
	StageCollections  StageName = "collections"
	StagePermalinks   StageName = "permalinks"
	StagePaginate     StageName = "paginate"
	StageFeed         StageName = "feed"
	StageRender       StageName = "render"
	StageVerify       StageName = "verify"
	StageWrite        StageName = "write"
)

// StageFunc runs one stage against the shared build state.
type StageFunc func(ctx context.Context, bs *BuildState) error

// StageDef pairs a stage name with its implementation.
type StageDef struct {
	Name StageName
	Fn   StageFunc
}

// BuildState is the shared state threaded through the pipeline. Stages fill
// in their outputs; later stages consume them.
type BuildState struct {
	Cfg     *config.Config
	BuildID string
	Started time.Time

	Sources   map[string]remote.FetchResult
	Documents []*content.Document
	Registry  *collections.Registry
	Listings  []*pagination.Page
	Feed      *feed.Feed
	FeedBody  []byte
	Manifest  *manifest.Manifest

	Renderer render.Renderer

	// PermalinkWarnings counts placeholder fallbacks applied this build.
	PermalinkWarnings int

	// StageDurations records per-stage wall time for the build report.
	StageDurations map[StageName]time.Duration
}
