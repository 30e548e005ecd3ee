package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_MinimalConfig(t *testing.T) {
	path := writeConfig(t, `
site:
  title: My Blog
paginate: 5
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "My Blog", cfg.Site.Title)
	require.Equal(t, 5, cfg.Paginate)

	// Implicit posts collection with date sort
	posts, ok := cfg.Collection("posts")
	require.True(t, ok)
	require.Equal(t, "_posts", posts.Root)
	require.Equal(t, SortDate, posts.Sort)
	require.True(t, posts.Output)

	// Routing defaults
	require.NotEmpty(t, cfg.Permalink)
	require.NotEmpty(t, cfg.PaginatePath)
	require.Equal(t, 20, cfg.Feed.Limit)
	require.Equal(t, []string{"posts"}, cfg.Feed.Collections)
}

func TestLoad_FullConfig(t *testing.T) {
	path := writeConfig(t, `
site:
  title: Projects Site
  base_url: https://example.org
permalink: /blog/:year/:month/:day/:title/
paginate: 10
paginate_path: /blog/page/:page/
feed:
  limit: 15
  collections: [posts, projects]
collections:
  - name: projects
    root: _projects
    output: true
    permalink: /projects/:title/
defaults:
  - scope:
      type: posts
    values:
      layout: post
      comments: true
  - scope:
      path: "_projects/*"
    values:
      layout: project
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "/blog/:year/:month/:day/:title/", cfg.Permalink)
	require.Equal(t, "/projects/:title/", cfg.PermalinkFor("projects"))
	require.Equal(t, "/blog/:year/:month/:day/:title/", cfg.PermalinkFor("posts"))
	require.Len(t, cfg.Defaults, 2)
	require.Equal(t, "posts", cfg.Defaults[0].Scope.Type)
	require.Equal(t, true, cfg.Defaults[0].Values["comments"])

	// Declared projects collection keeps declaration order sorting
	projects, ok := cfg.Collection("projects")
	require.True(t, ok)
	require.Equal(t, SortDeclared, projects.Sort)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestLoad_FeedUnknownCollection(t *testing.T) {
	path := writeConfig(t, `
site:
  title: X
feed:
  collections: [ghosts]
`)
	_, err := Load(path)
	require.Error(t, err)
	require.Contains(t, err.Error(), "undeclared collection: ghosts")
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("PRESSGEN_OUTPUT_DIR", "/tmp/override-site")
	path := writeConfig(t, `
site:
  title: X
build:
  output_dir: ./ignored
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "/tmp/override-site", cfg.Build.OutputDir)
}

func TestValidate_ReportsAllProblems(t *testing.T) {
	cfg := &Config{
		Paginate: -1,
		Feed:     FeedConfig{Limit: 0, Collections: []string{"nope"}},
		Collections: []CollectionConfig{
			{Name: "a", Sort: "weird"},
			{Name: "a", Sort: SortDate},
		},
	}
	err := Validate(cfg)
	require.Error(t, err)
	msg := err.Error()
	require.Contains(t, msg, "paginate must be >= 0")
	require.Contains(t, msg, "feed.limit must be >= 1")
	require.Contains(t, msg, "unknown sort")
	require.Contains(t, msg, "duplicate collection declaration")
	require.Contains(t, msg, "undeclared collection: nope")
}

func TestDefaults_Idempotent(t *testing.T) {
	cfg := &Config{}
	require.NoError(t, NewDefaultApplier().ApplyDefaults(cfg))
	first := *cfg
	require.NoError(t, NewDefaultApplier().ApplyDefaults(cfg))
	require.Equal(t, first.Permalink, cfg.Permalink)
	require.Len(t, cfg.Collections, len(first.Collections))
}
