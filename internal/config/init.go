package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/pressgen/internal/frontmatter"
)

// Init writes an example configuration to configPath, plus a scaffolded
// first post next to it. An existing configuration file is only overwritten
// when force is set.
func Init(configPath string, force bool) error {
	if _, err := os.Stat(configPath); err == nil && !force {
		return fmt.Errorf("configuration file already exists: %s (use --force to overwrite)", configPath)
	}

	exampleConfig := Config{
		Site: SiteConfig{
			Title:       "My Site",
			Description: "A site built with pressgen",
			BaseURL:     "https://example.com",
			Author:      "Site Author",
		},
		Build: BuildConfig{
			ContentDir: ".",
			LayoutsDir: "_layouts",
			OutputDir:  "_site",
			Clean:      true,
		},
		Permalink: "/:collection/:year/:month/:day/:title/",
		Paginate:  10,
		Feed: FeedConfig{
			Collections: []string{"posts"},
			Limit:       20,
			Path:        "/feed.xml",
		},
		Collections: []CollectionConfig{
			{Name: "posts", Root: "_posts", Sort: SortDate, Output: true},
		},
		Defaults: []DefaultRule{
			{
				Scope:  RuleScope{Type: "posts"},
				Values: map[string]any{"layout": "post"},
			},
		},
	}

	data, err := yaml.Marshal(&exampleConfig)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return scaffoldFirstPost(filepath.Dir(configPath))
}

// scaffoldFirstPost writes a dated welcome post under _posts so a fresh site
// builds something immediately. Existing posts are never touched.
func scaffoldFirstPost(siteDir string) error {
	postsDir := filepath.Join(siteDir, "_posts")
	today := time.Now().Format("2006-01-02")
	postPath := filepath.Join(postsDir, today+"-welcome.md")
	if _, err := os.Stat(postPath); err == nil {
		return nil
	}

	fields := map[string]any{
		"layout": "post",
		"title":  "Welcome",
		"date":   today,
	}
	body := []byte("Your first post. Edit or delete it, then run `pressgen build`.\n")
	content, err := frontmatter.Serialize(fields, body)
	if err != nil {
		return fmt.Errorf("failed to scaffold first post: %w", err)
	}

	if err := os.MkdirAll(postsDir, 0755); err != nil {
		return fmt.Errorf("failed to create posts directory: %w", err)
	}
	if err := os.WriteFile(postPath, content, 0644); err != nil {
		return fmt.Errorf("failed to write first post: %w", err)
	}
	return nil
}
