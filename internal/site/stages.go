package site

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"git.home.luguber.info/inful/pressgen/internal/collections"
	"git.home.luguber.info/inful/pressgen/internal/content"
	"git.home.luguber.info/inful/pressgen/internal/defaults"
	"git.home.luguber.info/inful/pressgen/internal/errors"
	"git.home.luguber.info/inful/pressgen/internal/feed"
	"git.home.luguber.info/inful/pressgen/internal/manifest"
	"git.home.luguber.info/inful/pressgen/internal/observability"
	"git.home.luguber.info/inful/pressgen/internal/pagination"
	"git.home.luguber.info/inful/pressgen/internal/permalink"
	"git.home.luguber.info/inful/pressgen/internal/remote"
)

// stageFetchSources clones or updates remote content sources and merges each
// source's content directory into the content tree under the source name.
func (b *Builder) stageFetchSources(ctx context.Context, bs *BuildState) error {
	if len(bs.Cfg.Sources) == 0 {
		return nil
	}

	results := remote.FetchAll(ctx, b.fetcher, bs.Cfg.Sources, bs.Cfg.Build.Concurrency)
	bs.Sources = results

	var failed []string
	for _, src := range bs.Cfg.Sources {
		res := results[src.Name]
		if res.Err != nil {
			failed = append(failed, fmt.Sprintf("%s: %v", src.Name, res.Err))
			continue
		}
		dest := filepath.Join(bs.Cfg.Build.ContentDir, src.Name)
		if err := copyTree(res.ContentPath, dest); err != nil {
			failed = append(failed, fmt.Sprintf("%s: merge content: %v", src.Name, err))
		}
	}
	if len(failed) > 0 {
		return errors.Fatal(errors.CategoryGit,
			"content sources failed:\n  "+strings.Join(failed, "\n  "))
	}
	return nil
}

// stageLoad parses every content file. Parse failures are collected
// exhaustively so one broken document never hides another; filesystem
// failures are reported separately from malformed front matter.
func (b *Builder) stageLoad(ctx context.Context, bs *BuildState) error {
	loader := content.NewLoader(bs.Cfg)
	docs, errs := loader.Load(ctx)
	if len(errs) > 0 {
		var parseLines, fsLines []string
		for _, err := range errs {
			var pe *content.ParseError
			if stderrors.As(err, &pe) {
				parseLines = append(parseLines, err.Error())
			} else {
				fsLines = append(fsLines, err.Error())
			}
		}
		if len(fsLines) > 0 {
			msg := fmt.Sprintf("%d file(s) could not be read:\n  %s", len(fsLines), strings.Join(fsLines, "\n  "))
			if len(parseLines) > 0 {
				msg += fmt.Sprintf("\n%d document(s) failed to parse:\n  %s", len(parseLines), strings.Join(parseLines, "\n  "))
			}
			return errors.Fatal(errors.CategoryFileSystem, msg)
		}
		return errors.Fatal(errors.CategoryContent,
			fmt.Sprintf("%d document(s) failed to parse:\n  %s", len(parseLines), strings.Join(parseLines, "\n  ")))
	}

	kept := docs[:0]
	for _, doc := range docs {
		if doc.Draft() {
			slog.Debug("Skipping draft", "source", doc.SourcePath)
			continue
		}
		kept = append(kept, doc)
	}
	bs.Documents = kept

	b.metrics.SetDocumentsLoaded(len(kept))
	observability.InfoContext(ctx, "Content loaded", slog.Int("documents", len(kept)))
	return nil
}

// stageDefaults layers configured default values under each document's own
// front matter.
func (b *Builder) stageDefaults(_ context.Context, bs *BuildState) error {
	defaults.NewResolver(bs.Cfg.Defaults).ApplyAll(bs.Documents)
	return nil
}

// stageCollections groups documents into ordered collections.
func (b *Builder) stageCollections(ctx context.Context, bs *BuildState) error {
	bs.Registry = collections.NewRegistry(bs.Cfg, bs.Documents)
	for _, col := range bs.Registry.All() {
		observability.DebugContext(observability.WithCollection(ctx, col.Name),
			"Collection assembled", slog.Int("documents", len(col.Documents)))
	}
	return nil
}

// stagePermalinks resolves every output-enabled document's URL in parallel,
// then claims the paths serially so collisions are detected deterministically
// and reported all at once.
func (b *Builder) stagePermalinks(ctx context.Context, bs *BuildState) error {
	resolver := permalink.NewResolver()

	type resolved struct {
		doc      *content.Document
		warnings []*permalink.UnresolvedPlaceholderError
		err      error
	}

	var docs []*content.Document
	for _, col := range bs.Registry.All() {
		if !col.Output {
			continue
		}
		docs = append(docs, col.Documents...)
	}

	concurrency := bs.Cfg.Build.Concurrency
	if concurrency > len(docs) {
		concurrency = len(docs)
	}
	if concurrency < 1 {
		concurrency = 1
	}

	var (
		mu      sync.Mutex
		results = make([]resolved, 0, len(docs))
		wg      sync.WaitGroup
		tasks   = make(chan *content.Document)
	)
	worker := func() {
		defer wg.Done()
		for doc := range tasks {
			var r resolved
			r.doc = doc
			if doc.Collection == content.PagesCollection {
				doc.OutputPath = permalink.PagePath(doc.SourcePath)
			} else {
				path, warnings, err := resolver.ResolveDocument(bs.Cfg.PermalinkFor(doc.Collection), doc)
				doc.OutputPath = path
				r.warnings = warnings
				r.err = err
			}
			mu.Lock()
			results = append(results, r)
			mu.Unlock()
		}
	}
	wg.Add(concurrency)
	for range concurrency {
		go worker()
	}
	for _, doc := range docs {
		tasks <- doc
	}
	close(tasks)
	wg.Wait()

	sort.Slice(results, func(i, j int) bool {
		return results[i].doc.SourcePath < results[j].doc.SourcePath
	})

	var fatal []string
	for _, r := range results {
		if r.err != nil {
			fatal = append(fatal, r.err.Error())
		}
		for _, w := range r.warnings {
			slog.Warn("Permalink placeholder unresolved, using fallback",
				"placeholder", w.Placeholder, "source", w.SourcePath, "fallback", w.Fallback)
			bs.PermalinkWarnings++
		}
	}
	b.metrics.IncPermalinkWarnings(bs.PermalinkWarnings)

	claims := permalink.NewClaimSet()
	for _, r := range results {
		if r.err != nil || r.doc.OutputPath == "" {
			continue
		}
		if err := claims.Claim(r.doc.OutputPath, r.doc.SourcePath); err != nil {
			fatal = append(fatal, err.Error())
		}
	}

	if len(fatal) > 0 {
		return errors.Fatal(errors.CategoryPermalink,
			fmt.Sprintf("%d permalink error(s):\n  %s", len(fatal), strings.Join(fatal, "\n  ")))
	}
	return nil
}

// stagePaginate splits each chronological output collection into listing
// pages. The first page reuses the collection index URL.
func (b *Builder) stagePaginate(_ context.Context, bs *BuildState) error {
	if bs.Cfg.Paginate <= 0 {
		return nil
	}
	paginator, err := pagination.NewPaginator(
		permalink.NewResolver(), bs.Cfg.PaginatePath, "/:collection/", bs.Cfg.Paginate)
	if err != nil {
		return errors.WrapFatal(err, errors.CategoryPagination, "invalid pagination settings")
	}
	for _, col := range bs.Registry.All() {
		if !col.Output || col.Name == content.PagesCollection {
			continue
		}
		bs.Listings = append(bs.Listings, paginator.Paginate(col)...)
	}
	return nil
}

// stageFeed assembles the bounded feed and renders its Atom document.
func (b *Builder) stageFeed(_ context.Context, bs *BuildState) error {
	if bs.Cfg.Feed.Limit <= 0 || len(bs.Cfg.Feed.Collections) == 0 {
		return nil
	}
	f, err := feed.NewAssembler(bs.Registry).Assemble(bs.Cfg.Feed.Collections, bs.Cfg.Feed.Limit)
	if err != nil {
		return errors.WrapFatal(err, errors.CategoryFeed, "assemble feed")
	}
	bs.Feed = f

	body, err := feed.RenderAtom(f, bs.Cfg.Site, bs.Cfg.Feed.Path)
	if err != nil {
		return errors.WrapFatal(err, errors.CategoryFeed, "render feed")
	}
	bs.FeedBody = body
	return nil
}

// stageRender renders documents and listings and assembles the manifest.
// Documents whose source bytes match the build cache reuse the previous
// build's rendered output instead of going through the renderer again.
func (b *Builder) stageRender(ctx context.Context, bs *BuildState) error {
	bs.Manifest = manifest.New(bs.BuildID)

	reused := 0
	for _, col := range bs.Registry.All() {
		if !col.Output {
			continue
		}
		for _, doc := range col.Documents {
			rendered, cached := b.cachedRender(ctx, bs, doc)
			if cached {
				reused++
			} else {
				var err error
				rendered, err = bs.Renderer.Render(doc.Body, doc.FrontMatter, doc.Layout(bs.Cfg.Build.DefaultLayout))
				if err != nil {
					return errors.WrapFatal(err, errors.CategoryRender, "render "+doc.SourcePath)
				}
			}
			desc := &manifest.PageDescriptor{
				Kind:       manifest.KindDocument,
				SourcePath: doc.SourcePath,
				Collection: doc.Collection,
				Layout:     doc.Layout(bs.Cfg.Build.DefaultLayout),
				Rendered:   rendered,
			}
			if err := bs.Manifest.Add(doc.OutputPath, desc); err != nil {
				return errors.WrapFatal(err, errors.CategoryInternal, "manifest conflict")
			}
		}
	}

	for _, page := range bs.Listings {
		rendered, err := bs.Renderer.Render(listingBody(page), listingFrontMatter(page), bs.Cfg.Build.DefaultLayout)
		if err != nil {
			return errors.WrapFatal(err, errors.CategoryRender,
				fmt.Sprintf("render listing %s page %d", page.Collection, page.Index))
		}
		desc := &manifest.PageDescriptor{
			Kind:       manifest.KindListing,
			Collection: page.Collection,
			PageIndex:  page.Index,
			Rendered:   rendered,
		}
		if err := bs.Manifest.Add(page.OutputPath, desc); err != nil {
			return errors.WrapFatal(err, errors.CategoryInternal, "manifest conflict")
		}
	}

	if len(bs.FeedBody) > 0 {
		desc := &manifest.PageDescriptor{Kind: manifest.KindFeed, Rendered: bs.FeedBody}
		if err := bs.Manifest.Add(bs.Cfg.Feed.Path, desc); err != nil {
			return errors.WrapFatal(err, errors.CategoryInternal, "manifest conflict")
		}
	}

	observability.InfoContext(ctx, "Pages rendered",
		slog.Int("pages", bs.Manifest.Len()), slog.Int("reused", reused))
	return nil
}

// cachedRender returns the previous build's rendered bytes for a document
// whose source content is unchanged per the build cache. A cache miss, a
// changed output path, or a missing output file all fall through to a fresh
// render.
func (b *Builder) cachedRender(ctx context.Context, bs *BuildState, doc *content.Document) ([]byte, bool) {
	if b.store == nil {
		return nil, false
	}
	unchanged, err := b.store.Unchanged(ctx, doc.SourcePath, doc.ContentHash)
	if err != nil || !unchanged {
		return nil, false
	}
	cached, err := os.ReadFile(filepath.Join(bs.Cfg.Build.OutputDir, OutputFile(doc.OutputPath)))
	if err != nil {
		return nil, false
	}
	return cached, true
}

// listingBody produces the markdown body of a listing page: linked titles in
// collection order plus previous/next navigation.
func listingBody(page *pagination.Page) string {
	var sb strings.Builder
	for _, doc := range page.Documents {
		fmt.Fprintf(&sb, "- [%s](%s)\n", doc.Title(), doc.OutputPath)
	}
	if page.HasPrevious || page.HasNext {
		sb.WriteString("\n")
		if page.HasPrevious {
			fmt.Fprintf(&sb, "[Newer](%s) ", page.PreviousURL)
		}
		if page.HasNext {
			fmt.Fprintf(&sb, "[Older](%s)", page.NextURL)
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

func listingFrontMatter(page *pagination.Page) map[string]any {
	title := page.Collection
	if page.Index > 1 {
		title = fmt.Sprintf("%s, page %d of %d", page.Collection, page.Index, page.Total)
	}
	return map[string]any{
		"title": title,
		"page":  page.Index,
		"pages": page.Total,
	}
}

// copyTree copies src into dest recursively, preserving relative layout.
func copyTree(src, dest string) error {
	return filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dest, rel)
		if d.IsDir() {
			return os.MkdirAll(target, 0o755)
		}
		in, err := os.Open(path)
		if err != nil {
			return err
		}
		defer in.Close()
		out, err := os.Create(target)
		if err != nil {
			return err
		}
		defer out.Close()
		_, err = io.Copy(out, in)
		return err
	})
}
