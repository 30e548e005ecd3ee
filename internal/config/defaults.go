package config

import (
	"fmt"
	"runtime"
)

// DefaultApplier applies defaults for a specific configuration domain.
type DefaultApplier interface {
	ApplyDefaults(cfg *Config) error
	Domain() string
}

// CompositeDefaultApplier applies defaults across all configuration domains
type CompositeDefaultApplier struct {
	appliers []DefaultApplier
}

// NewDefaultApplier creates a composite default applier with all domain appliers
func NewDefaultApplier() *CompositeDefaultApplier {
	return &CompositeDefaultApplier{
		appliers: []DefaultApplier{
			&SiteDefaultApplier{},
			&BuildDefaultApplier{},
			&RoutingDefaultApplier{},
			&CollectionsDefaultApplier{},
			&FeedDefaultApplier{},
			&SourcesDefaultApplier{},
			&ServeDefaultApplier{},
			&CacheDefaultApplier{},
		},
	}
}

// ApplyDefaults applies defaults for all configuration domains
func (c *CompositeDefaultApplier) ApplyDefaults(cfg *Config) error {
	for _, applier := range c.appliers {
		if err := applier.ApplyDefaults(cfg); err != nil {
			return fmt.Errorf("applying defaults for %s: %w", applier.Domain(), err)
		}
	}
	return nil
}

// SiteDefaultApplier handles site metadata defaults.
type SiteDefaultApplier struct{}

func (s *SiteDefaultApplier) Domain() string { return "site" }

func (s *SiteDefaultApplier) ApplyDefaults(cfg *Config) error {
	if cfg.Site.Title == "" {
		cfg.Site.Title = "Site"
	}
	return nil
}

// BuildDefaultApplier handles build execution defaults.
type BuildDefaultApplier struct{}

func (b *BuildDefaultApplier) Domain() string { return "build" }

func (b *BuildDefaultApplier) ApplyDefaults(cfg *Config) error {
	if cfg.Build.ContentDir == "" {
		cfg.Build.ContentDir = "."
	}
	if cfg.Build.LayoutsDir == "" {
		cfg.Build.LayoutsDir = "_layouts"
	}
	if cfg.Build.OutputDir == "" {
		cfg.Build.OutputDir = "_site"
	}
	if cfg.Build.Concurrency <= 0 {
		cfg.Build.Concurrency = runtime.GOMAXPROCS(0)
	}
	if cfg.Build.DefaultLayout == "" {
		cfg.Build.DefaultLayout = "default"
	}
	return nil
}

// RoutingDefaultApplier handles permalink and pagination defaults.
type RoutingDefaultApplier struct{}

func (r *RoutingDefaultApplier) Domain() string { return "routing" }

func (r *RoutingDefaultApplier) ApplyDefaults(cfg *Config) error {
	if cfg.Permalink == "" {
		cfg.Permalink = "/:collection/:year/:month/:day/:title/"
	}
	if cfg.PaginatePath == "" {
		cfg.PaginatePath = "/:collection/page/:page/"
	}
	// Paginate == 0 disables pagination listings entirely; no default page size
	// is forced on sites that never asked for listings.
	return nil
}

// CollectionsDefaultApplier fills in per-collection defaults.
type CollectionsDefaultApplier struct{}

func (c *CollectionsDefaultApplier) Domain() string { return "collections" }

func (c *CollectionsDefaultApplier) ApplyDefaults(cfg *Config) error {
	seenPosts := false
	for i := range cfg.Collections {
		col := &cfg.Collections[i]
		if col.Root == "" {
			col.Root = "_" + col.Name
		}
		if col.Sort == "" {
			// Posts are chronological by convention; everything else keeps
			// declaration order.
			if col.Name == "posts" {
				col.Sort = SortDate
			} else {
				col.Sort = SortDeclared
			}
		}
		if col.Name == "posts" {
			seenPosts = true
		}
	}
	// A posts collection exists on virtually every site; declare it implicitly
	// so bare configs still build.
	if !seenPosts {
		cfg.Collections = append([]CollectionConfig{{
			Name:   "posts",
			Root:   "_posts",
			Sort:   SortDate,
			Output: true,
		}}, cfg.Collections...)
	}
	return nil
}

// FeedDefaultApplier handles feed defaults.
type FeedDefaultApplier struct{}

func (f *FeedDefaultApplier) Domain() string { return "feed" }

func (f *FeedDefaultApplier) ApplyDefaults(cfg *Config) error {
	if len(cfg.Feed.Collections) == 0 {
		cfg.Feed.Collections = []string{"posts"}
	}
	if cfg.Feed.Limit <= 0 {
		cfg.Feed.Limit = 20
	}
	if cfg.Feed.Path == "" {
		cfg.Feed.Path = "/feed.xml"
	}
	return nil
}

// SourcesDefaultApplier handles remote source defaults.
type SourcesDefaultApplier struct{}

func (s *SourcesDefaultApplier) Domain() string { return "sources" }

func (s *SourcesDefaultApplier) ApplyDefaults(cfg *Config) error {
	for i := range cfg.Sources {
		if cfg.Sources[i].Branch == "" {
			cfg.Sources[i].Branch = "main"
		}
		if cfg.Sources[i].Strategy == "" {
			cfg.Sources[i].Strategy = "fresh"
		}
	}
	return nil
}

// ServeDefaultApplier handles preview server defaults.
type ServeDefaultApplier struct{}

func (s *ServeDefaultApplier) Domain() string { return "serve" }

func (s *ServeDefaultApplier) ApplyDefaults(cfg *Config) error {
	if cfg.Serve.Addr == "" {
		cfg.Serve.Addr = "127.0.0.1:4000"
	}
	if cfg.Serve.Events.Enabled && cfg.Serve.Events.Subject == "" {
		cfg.Serve.Events.Subject = "pressgen.builds"
	}
	return nil
}

// CacheDefaultApplier handles build cache defaults.
type CacheDefaultApplier struct{}

func (c *CacheDefaultApplier) Domain() string { return "cache" }

func (c *CacheDefaultApplier) ApplyDefaults(cfg *Config) error {
	if cfg.Cache.Enabled && cfg.Cache.Path == "" {
		cfg.Cache.Path = ".pressgen-cache.db"
	}
	return nil
}
