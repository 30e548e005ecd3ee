package site

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"git.home.luguber.info/inful/pressgen/internal/errors"
	"git.home.luguber.info/inful/pressgen/internal/observability"
	"git.home.luguber.info/inful/pressgen/internal/render"
)

// stageVerify checks internal links across the rendered site. Broken links
// are warnings, not failures: they degrade the site but the build stands.
func (b *Builder) stageVerify(_ context.Context, bs *BuildState) error {
	for _, broken := range render.CheckLinks(bs.Manifest) {
		slog.Warn("Broken internal link", "page", broken.Page, "target", broken.Target)
	}
	return nil
}

// stageWrite materializes the manifest onto disk and records build state.
// When the manifest fingerprint matches the last recorded build and the
// output is still in place, the write is skipped entirely.
func (b *Builder) stageWrite(ctx context.Context, bs *BuildState) error {
	outputDir := bs.Cfg.Build.OutputDir

	if b.store != nil && !bs.Cfg.Build.Clean {
		if last, found, err := b.store.LastBuild(ctx); err == nil && found &&
			last.Fingerprint == bs.Manifest.Fingerprint() {
			if _, statErr := os.Stat(filepath.Join(outputDir, "manifest.json")); statErr == nil {
				b.metrics.SetPagesWritten(0)
				observability.InfoContext(ctx, "Output unchanged since last build, skipping write",
					slog.String("fingerprint", last.Fingerprint))
				return nil
			}
		}
	}

	if bs.Cfg.Build.Clean {
		if err := os.RemoveAll(outputDir); err != nil {
			return errors.WrapFatal(err, errors.CategoryFileSystem, "clean output directory")
		}
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return errors.WrapFatal(err, errors.CategoryFileSystem, "create output directory")
	}

	for _, outputPath := range bs.Manifest.Paths() {
		desc, _ := bs.Manifest.Get(outputPath)
		file := filepath.Join(outputDir, OutputFile(outputPath))
		if err := os.MkdirAll(filepath.Dir(file), 0o755); err != nil {
			return errors.WrapFatal(err, errors.CategoryFileSystem, "create directory for "+outputPath)
		}
		if err := os.WriteFile(file, desc.Rendered, 0o644); err != nil {
			return errors.WrapFatal(err, errors.CategoryFileSystem, "write "+outputPath)
		}
	}

	manifestJSON, err := bs.Manifest.MarshalJSON()
	if err != nil {
		return errors.WrapFatal(err, errors.CategoryInternal, "serialize manifest")
	}
	if err := os.WriteFile(filepath.Join(outputDir, "manifest.json"), manifestJSON, 0o644); err != nil {
		return errors.WrapFatal(err, errors.CategoryFileSystem, "write manifest")
	}

	b.metrics.SetPagesWritten(bs.Manifest.Len())

	if b.store != nil {
		b.recordState(ctx, bs)
	}

	observability.InfoContext(ctx, "Site written",
		slog.String("output", outputDir), slog.Int("pages", bs.Manifest.Len()))
	return nil
}

// recordState persists per-document hashes and the build summary. Cache
// failures never fail a build that already wrote its output.
func (b *Builder) recordState(ctx context.Context, bs *BuildState) {
	var live []string
	for _, doc := range bs.Documents {
		live = append(live, doc.SourcePath)
		if doc.OutputPath == "" {
			continue
		}
		if err := b.store.RecordDocument(ctx, doc.SourcePath, doc.ContentHash, doc.OutputPath, bs.BuildID); err != nil {
			slog.Warn("Could not record document in build cache", "source", doc.SourcePath, "error", err)
			return
		}
	}
	if err := b.store.Prune(ctx, live); err != nil {
		slog.Warn("Could not prune build cache", "error", err)
	}
	if err := b.store.RecordBuild(ctx, bs.Manifest.Summarize()); err != nil {
		slog.Warn("Could not record build in build cache", "error", err)
	}
}

// OutputFile maps a site URL path onto a file path relative to the output
// directory. Directory-style paths get an index.html; paths with an
// extension map directly.
func OutputFile(outputPath string) string {
	p := strings.TrimPrefix(outputPath, "/")
	switch {
	case p == "":
		return "index.html"
	case strings.HasSuffix(p, "/"):
		return filepath.Join(filepath.FromSlash(strings.TrimSuffix(p, "/")), "index.html")
	case filepath.Ext(p) != "":
		return filepath.FromSlash(p)
	default:
		return filepath.Join(filepath.FromSlash(p), "index.html")
	}
}
