package config

import (
	"fmt"
	"path"
	"strings"

	"git.home.luguber.info/inful/pressgen/internal/errors"
)

// Validate checks structural invariants on a loaded configuration. It reports
// every violation it finds, not just the first.
func Validate(cfg *Config) error {
	var problems []string

	if cfg.Paginate < 0 {
		problems = append(problems, fmt.Sprintf("paginate must be >= 0, got %d", cfg.Paginate))
	}
	if cfg.Feed.Limit < 1 {
		problems = append(problems, fmt.Sprintf("feed.limit must be >= 1, got %d", cfg.Feed.Limit))
	}

	seen := map[string]bool{}
	for _, col := range cfg.Collections {
		if col.Name == "" {
			problems = append(problems, "collection with empty name")
			continue
		}
		if seen[col.Name] {
			problems = append(problems, fmt.Sprintf("duplicate collection declaration: %s", col.Name))
		}
		seen[col.Name] = true
		if col.Sort != SortDate && col.Sort != SortDeclared {
			problems = append(problems, fmt.Sprintf("collection %s: unknown sort %q", col.Name, col.Sort))
		}
	}

	// "pages" is the implicit collection for uncollected content; feed sources
	// must otherwise name declared collections.
	for _, src := range cfg.Feed.Collections {
		if src != "pages" && !seen[src] {
			problems = append(problems, fmt.Sprintf("feed references undeclared collection: %s", src))
		}
	}

	for i, rule := range cfg.Defaults {
		if rule.Scope.Path != "" {
			if _, err := path.Match(rule.Scope.Path, "probe"); err != nil {
				problems = append(problems, fmt.Sprintf("defaults[%d]: invalid path pattern %q", i, rule.Scope.Path))
			}
		}
		if len(rule.Values) == 0 {
			problems = append(problems, fmt.Sprintf("defaults[%d]: rule has no values", i))
		}
	}

	for i, src := range cfg.Sources {
		if src.URL == "" {
			problems = append(problems, fmt.Sprintf("sources[%d]: missing url", i))
		}
		if src.Name == "" {
			problems = append(problems, fmt.Sprintf("sources[%d]: missing name", i))
		}
		if src.Strategy != "fresh" && src.Strategy != "update" {
			problems = append(problems, fmt.Sprintf("sources[%d]: unknown strategy %q", i, src.Strategy))
		}
	}

	if len(problems) > 0 {
		return errors.Fatal(errors.CategoryConfig,
			fmt.Sprintf("invalid configuration:\n  - %s", strings.Join(problems, "\n  - ")))
	}
	return nil
}
