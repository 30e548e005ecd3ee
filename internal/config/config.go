// Package config loads and validates the site configuration: site metadata,
// collection declarations, permalink templates, pagination, feed, defaults
// rules, and the optional serve/cache/source settings.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the full site configuration
type Config struct {
	Site         SiteConfig         `yaml:"site"`
	Build        BuildConfig        `yaml:"build"`
	Permalink    string             `yaml:"permalink"`
	Paginate     int                `yaml:"paginate"`
	PaginatePath string             `yaml:"paginate_path"`
	Feed         FeedConfig         `yaml:"feed"`
	Collections  []CollectionConfig `yaml:"collections"`
	Defaults     []DefaultRule      `yaml:"defaults"`
	Sources      []RemoteSource     `yaml:"sources,omitempty"`
	Serve        ServeConfig        `yaml:"serve"`
	Cache        CacheConfig        `yaml:"cache"`
}

// SiteConfig carries site-wide metadata passed through to the renderer and feed.
type SiteConfig struct {
	Title       string `yaml:"title"`
	Description string `yaml:"description,omitempty"`
	BaseURL     string `yaml:"base_url,omitempty"`
	Author      string `yaml:"author,omitempty"`
}

// BuildConfig represents build execution configuration
type BuildConfig struct {
	ContentDir    string `yaml:"content_dir"`
	LayoutsDir    string `yaml:"layouts_dir"`
	OutputDir     string `yaml:"output_dir"`
	Clean         bool   `yaml:"clean"` // Clean output directory before build
	Concurrency   int    `yaml:"concurrency"`
	DefaultLayout string `yaml:"default_layout,omitempty"`
}

// CollectionConfig declares a content collection. Declaration order is
// significant: it fixes the default ordering for non-chronological collections.
type CollectionConfig struct {
	Name      string `yaml:"name"`
	Root      string `yaml:"root,omitempty"`      // Directory under content_dir; defaults to the collection name
	Sort      string `yaml:"sort,omitempty"`      // "date" (descending) or "declared"
	Output    bool   `yaml:"output"`              // Whether documents get their own pages
	Permalink string `yaml:"permalink,omitempty"` // Per-collection template override
}

// SortDate orders a collection by publish date descending; SortDeclared keeps
// source declaration (path) order.
const (
	SortDate     = "date"
	SortDeclared = "declared"
)

// DefaultRule merges Values into the front matter of every document its scope
// matches. Rules apply in declaration order; document front matter always wins.
type DefaultRule struct {
	Scope  RuleScope      `yaml:"scope"`
	Values map[string]any `yaml:"values"`
}

// RuleScope limits a DefaultRule to documents matching a source-path glob
// and/or a collection name. Empty fields match everything.
type RuleScope struct {
	Path string `yaml:"path,omitempty"`
	Type string `yaml:"type,omitempty"`
}

// FeedConfig configures the syndication feed.
type FeedConfig struct {
	Collections []string `yaml:"collections,omitempty"` // Source collections; defaults to ["posts"]
	Limit       int      `yaml:"limit"`
	Path        string   `yaml:"path,omitempty"` // Output path of the feed document
}

// RemoteSource declares a git repository whose content directory is merged
// into the content tree before loading.
type RemoteSource struct {
	Name     string `yaml:"name"`
	URL      string `yaml:"url"`
	Branch   string `yaml:"branch,omitempty"`
	Path     string `yaml:"path,omitempty"`     // Subdirectory within the repository
	Strategy string `yaml:"strategy,omitempty"` // "fresh" or "update"
}

// ServeConfig configures the local preview server and watch mode.
type ServeConfig struct {
	Addr            string        `yaml:"addr,omitempty"`
	RebuildInterval time.Duration `yaml:"rebuild_interval,omitempty"`
	Metrics         bool          `yaml:"metrics"`
	Events          EventsConfig  `yaml:"events"`
}

// EventsConfig configures optional build-event publishing over NATS.
type EventsConfig struct {
	Enabled bool   `yaml:"enabled"`
	URL     string `yaml:"url,omitempty"`
	Subject string `yaml:"subject,omitempty"`
}

// CacheConfig configures the sqlite build cache used by watch mode.
type CacheConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path,omitempty"`
}

// Load loads configuration from the specified file
func Load(configPath string) (*Config, error) {
	// Load .env file if it exists; absence is not an error
	loadEnvFiles()

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("configuration file not found: %s", configPath)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Expand environment variables in the YAML content
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyEnvOverrides(&cfg)

	if err := NewDefaultApplier().ApplyDefaults(&cfg); err != nil {
		return nil, err
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Collection returns the declaration for a named collection, if present.
func (c *Config) Collection(name string) (CollectionConfig, bool) {
	for _, cc := range c.Collections {
		if cc.Name == name {
			return cc, true
		}
	}
	return CollectionConfig{}, false
}

// PermalinkFor returns the permalink template effective for a collection:
// the per-collection override when set, the global template otherwise.
func (c *Config) PermalinkFor(collection string) string {
	if cc, ok := c.Collection(collection); ok && cc.Permalink != "" {
		return cc.Permalink
	}
	return c.Permalink
}
