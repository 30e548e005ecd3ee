package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/pressgen/internal/config"
	"git.home.luguber.info/inful/pressgen/internal/manifest"
	"git.home.luguber.info/inful/pressgen/internal/metrics"
	"git.home.luguber.info/inful/pressgen/internal/serve"
	"git.home.luguber.info/inful/pressgen/internal/site"
	"git.home.luguber.info/inful/pressgen/internal/state"
	"git.home.luguber.info/inful/pressgen/internal/version"
)

var CLI struct {
	Config  string `short:"c" help:"Configuration file path" default:"pressgen.yaml"`
	Verbose bool   `short:"v" help:"Enable verbose logging"`

	Build struct {
		Output string `short:"o" help:"Override the configured output directory"`
		Clean  bool   `help:"Remove the output directory before building"`
	} `cmd:"" help:"Build the site once"`

	Serve struct {
		Addr string `short:"a" help:"Override the configured listen address"`
	} `cmd:"" help:"Serve the site locally and rebuild on content changes"`

	Init struct {
		Force bool `help:"Overwrite existing configuration file"`
	} `cmd:"" help:"Initialize a new configuration file"`

	Version struct{} `cmd:"" help:"Print version information"`
}

func main() {
	ctx := kong.Parse(&CLI)

	logLevel := slog.LevelInfo
	if CLI.Verbose {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	})))

	switch ctx.Command() {
	case "build":
		cfg, err := loadConfig()
		if err != nil {
			slog.Error("Failed to load configuration", "error", err)
			os.Exit(1)
		}
		if CLI.Build.Output != "" {
			cfg.Build.OutputDir = CLI.Build.Output
		}
		if CLI.Build.Clean {
			cfg.Build.Clean = true
		}
		if err := runBuild(cfg); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	case "serve":
		cfg, err := loadConfig()
		if err != nil {
			slog.Error("Failed to load configuration", "error", err)
			os.Exit(1)
		}
		if CLI.Serve.Addr != "" {
			cfg.Serve.Addr = CLI.Serve.Addr
		}
		if err := runServe(cfg); err != nil {
			slog.Error("Serve failed", "error", err)
			os.Exit(1)
		}
	case "init":
		if err := runInit(CLI.Config, CLI.Init.Force); err != nil {
			slog.Error("Init failed", "error", err)
			os.Exit(1)
		}
	case "version":
		fmt.Println(version.String())
	}
}

func loadConfig() (*config.Config, error) {
	return config.Load(CLI.Config)
}

func runBuild(cfg *config.Config) error {
	builder, closeStore, err := newBuilder(cfg, metrics.NoopRecorder{})
	if err != nil {
		return err
	}
	defer closeStore()

	sum, err := builder.Build(context.Background())
	if err != nil {
		return err
	}
	slog.Info("Build complete", "pages", sum.Pages, "fingerprint", sum.Fingerprint)
	return nil
}

func runServe(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var rec metrics.Recorder = metrics.NoopRecorder{}
	var promRec *metrics.PrometheusRecorder
	if cfg.Serve.Metrics {
		promRec = metrics.NewPrometheusRecorder(prom.NewRegistry())
		rec = promRec
	}

	builder, closeStore, err := newBuilder(cfg, rec)
	if err != nil {
		return err
	}
	defer closeStore()

	rebuild := func(ctx context.Context, _ string) (manifest.Summary, error) {
		return builder.Build(ctx)
	}

	opts := []serve.Option{}
	if promRec != nil {
		opts = append(opts, serve.WithMetricsHandler(promRec.Handler()))
	}
	if cfg.Serve.Events.Enabled {
		publisher, perr := serve.NewNATSPublisher(cfg.Serve.Events)
		if perr != nil {
			slog.Warn("Event publishing disabled", "error", perr)
		} else {
			defer publisher.Close()
			opts = append(opts, serve.WithEventPublisher(publisher))
		}
	}

	server := serve.New(cfg.Serve, cfg.Build.OutputDir, rebuild, opts...)

	// Initial build so the server has something to serve.
	if _, err := builder.Build(ctx); err != nil {
		slog.Error("Initial build failed", "error", err)
	}

	return server.Run(ctx, cfg.Build.ContentDir)
}

func runInit(configPath string, force bool) error {
	slog.Info("Initializing configuration", "path", configPath, "force", force)
	return config.Init(configPath, force)
}

func newBuilder(cfg *config.Config, rec metrics.Recorder) (*site.Builder, func(), error) {
	opts := []site.Option{site.WithMetrics(rec)}
	closeStore := func() {}
	if cfg.Cache.Enabled {
		store, err := state.Open(cfg.Cache.Path)
		if err != nil {
			return nil, nil, fmt.Errorf("open build cache: %w", err)
		}
		closeStore = func() { _ = store.Close() }
		opts = append(opts, site.WithStateStore(store))
	}
	return site.NewBuilder(cfg, opts...), closeStore, nil
}
