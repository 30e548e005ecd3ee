package content

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"sync"

	"git.home.luguber.info/inful/pressgen/internal/config"
	"git.home.luguber.info/inful/pressgen/internal/frontmatter"
)

// contentExtensions lists the file extensions treated as content.
var contentExtensions = map[string]bool{
	".md":       true,
	".markdown": true,
	".html":     true,
}

// Loader discovers and parses content files.
type Loader struct {
	cfg *config.Config
}

// NewLoader creates a content loader for the given configuration.
func NewLoader(cfg *config.Config) *Loader {
	return &Loader{cfg: cfg}
}

// Load walks the content root and parses every eligible file into a Document.
//
// Parsing runs on a bounded worker pool; files are independent so ordering
// does not matter, but the returned slice is sorted by source path for
// determinism. All parse errors are collected (not just the first) so a
// broken site reports every bad file in one run.
func (l *Loader) Load(ctx context.Context) ([]*Document, []error) {
	paths, walkErrs := l.discover()
	if len(walkErrs) > 0 {
		return nil, walkErrs
	}

	concurrency := l.cfg.Build.Concurrency
	if concurrency > len(paths) {
		concurrency = len(paths)
	}
	if concurrency < 1 {
		concurrency = 1
	}

	var (
		mu   sync.Mutex
		docs []*Document
		errs []error
	)
	tasks := make(chan string)
	var wg sync.WaitGroup
	worker := func() {
		defer wg.Done()
		for rel := range tasks {
			select {
			case <-ctx.Done():
				return
			default:
			}
			doc, err := l.parseFile(rel)
			mu.Lock()
			if err != nil {
				errs = append(errs, err)
			} else {
				docs = append(docs, doc)
			}
			mu.Unlock()
		}
	}
	wg.Add(concurrency)
	for range concurrency {
		go worker()
	}
dispatch:
	for _, rel := range paths {
		select {
		case <-ctx.Done():
			break dispatch
		case tasks <- rel:
		}
	}
	close(tasks)
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, []error{err}
	}

	sort.Slice(docs, func(i, j int) bool { return docs[i].SourcePath < docs[j].SourcePath })
	sort.Slice(errs, func(i, j int) bool { return errs[i].Error() < errs[j].Error() })

	slog.Info("Content loaded", "documents", len(docs), "errors", len(errs))
	return docs, errs
}

// discover returns the relative paths of all eligible content files.
func (l *Loader) discover() ([]string, []error) {
	root := l.cfg.Build.ContentDir
	outputAbs, _ := filepath.Abs(l.cfg.Build.OutputDir)

	var paths []string
	var errs []error
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return relErr
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			if rel == "." {
				return nil
			}
			if abs, _ := filepath.Abs(path); abs == outputAbs {
				return filepath.SkipDir
			}
			base := d.Name()
			if strings.HasPrefix(base, ".") {
				return filepath.SkipDir
			}
			// Underscore directories are private unless declared as a
			// collection root (e.g. _posts, _projects).
			if strings.HasPrefix(base, "_") && !l.isCollectionRoot(rel) {
				return filepath.SkipDir
			}
			return nil
		}

		if strings.HasPrefix(d.Name(), ".") {
			return nil
		}
		if !contentExtensions[strings.ToLower(filepath.Ext(d.Name()))] {
			return nil
		}
		paths = append(paths, rel)
		return nil
	})
	if err != nil {
		errs = append(errs, err)
	}
	return paths, errs
}

// isCollectionRoot reports whether rel is (or is inside) a declared
// collection root directory.
func (l *Loader) isCollectionRoot(rel string) bool {
	first := rel
	if i := strings.IndexByte(rel, '/'); i >= 0 {
		first = rel[:i]
	}
	for _, col := range l.cfg.Collections {
		if col.Root == first {
			return true
		}
	}
	return false
}

// collectionFor assigns a document to a collection by its containing
// directory; everything outside a declared root is a page.
func (l *Loader) collectionFor(rel string) string {
	first := rel
	if i := strings.IndexByte(rel, '/'); i >= 0 {
		first = rel[:i]
	}
	for _, col := range l.cfg.Collections {
		if col.Root == first {
			return col.Name
		}
	}
	return PagesCollection
}

// yamlLine extracts the line number from a yaml.v3 error message.
var yamlLine = regexp.MustCompile(`line (\d+)`)

func (l *Loader) parseFile(rel string) (*Document, error) {
	filePath := filepath.Join(l.cfg.Build.ContentDir, filepath.FromSlash(rel))
	raw, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}

	blk, err := frontmatter.Split(raw)
	if err != nil {
		return nil, &ParseError{Path: rel, Line: 1, Err: err}
	}

	fields, err := frontmatter.Parse(blk.Raw)
	if err != nil {
		line := 0
		if m := yamlLine.FindStringSubmatch(err.Error()); m != nil {
			// yaml reports lines relative to the block; the block starts on
			// line 2 of the file (after the opening delimiter).
			if n, convErr := strconv.Atoi(m[1]); convErr == nil {
				line = n + 1
			}
		}
		return nil, &ParseError{Path: rel, Line: line, Err: err}
	}

	name := strings.TrimSuffix(filepath.Base(rel), filepath.Ext(rel))
	nameDate, slug, _ := splitDatedName(name)

	doc := &Document{
		SourcePath:  rel,
		FilePath:    filePath,
		Collection:  l.collectionFor(rel),
		FrontMatter: fields,
		Original:    copyMap(fields),
		Body:        string(blk.Body),
		PublishDate: publishDate(fields, nameDate),
		Name:        name,
		Slug:        slug,
		Extension:   filepath.Ext(rel),
		ContentHash: hashBytes(raw),
	}
	return doc, nil
}

// copyMap deep-copies a front-matter map so the authored original survives
// the defaults merge.
func copyMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		if mv, ok := v.(map[string]any); ok {
			out[k] = copyMap(mv)
			continue
		}
		out[k] = v
	}
	return out
}
