package config

import (
	"log/slog"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// loadEnvFiles loads environment variables from .env/.env.local if present.
// Existing process environment variables are not overwritten.
func loadEnvFiles() {
	for _, path := range []string{".env", ".env.local"} {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			slog.Warn("Failed to load env file", "path", path, "error", err)
			continue
		}
		slog.Debug("Loaded environment variables", "path", path)
	}
}

// applyEnvOverrides applies PRESSGEN_* environment overrides on top of the
// parsed configuration. Environment wins over file values so deploy targets
// can adjust a site without editing the checked-in config.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("PRESSGEN_BASE_URL"); v != "" {
		cfg.Site.BaseURL = v
	}
	if v := os.Getenv("PRESSGEN_OUTPUT_DIR"); v != "" {
		cfg.Build.OutputDir = v
	}
	if v := os.Getenv("PRESSGEN_CONTENT_DIR"); v != "" {
		cfg.Build.ContentDir = v
	}
	if v := os.Getenv("PRESSGEN_CONCURRENCY"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Build.Concurrency = n
		} else {
			slog.Warn("Ignoring invalid PRESSGEN_CONCURRENCY", "value", v)
		}
	}
	if v := os.Getenv("PRESSGEN_SERVE_ADDR"); v != "" {
		cfg.Serve.Addr = v
	}
}
