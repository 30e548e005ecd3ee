// Package pagination splits an ordered document sequence into fixed-size,
// navigable listing pages.
package pagination

import (
	"fmt"
	"log/slog"

	"git.home.luguber.info/inful/pressgen/internal/collections"
	"git.home.luguber.info/inful/pressgen/internal/content"
	"git.home.luguber.info/inful/pressgen/internal/permalink"
)

// Page is one listing page of a collection.
type Page struct {
	Collection string
	Index      int // 1-based
	Total      int // total number of pages
	Documents  []*content.Document

	OutputPath  string
	HasPrevious bool
	HasNext     bool
	PreviousURL string
	NextURL     string
}

// Paginator produces listing pages for collections.
type Paginator struct {
	resolver *permalink.Resolver
	template string // pagination path template, parameterized by :page
	indexTpl string // collection index template used for page 1
	pageSize int
}

// NewPaginator creates a paginator. indexTemplate is the collection's own
// index URL template; page 1 reuses it instead of an indexed suffix, so the
// first listing lives at the collection index. pageSize must be >= 1.
func NewPaginator(resolver *permalink.Resolver, pageTemplate, indexTemplate string, pageSize int) (*Paginator, error) {
	if pageSize < 1 {
		return nil, fmt.Errorf("page size must be >= 1, got %d", pageSize)
	}
	return &Paginator{
		resolver: resolver,
		template: pageTemplate,
		indexTpl: indexTemplate,
		pageSize: pageSize,
	}, nil
}

// Paginate splits a collection into ceil(n/size) pages. Every document
// appears on exactly one page, in collection order; an empty collection
// yields zero pages (its index simply renders empty).
func (p *Paginator) Paginate(col *collections.Collection) []*Page {
	docs := col.Documents
	n := len(docs)
	if n == 0 {
		return nil
	}

	total := (n + p.pageSize - 1) / p.pageSize
	pages := make([]*Page, 0, total)

	for i := 1; i <= total; i++ {
		start := (i - 1) * p.pageSize
		end := start + p.pageSize
		if end > n {
			end = n
		}

		page := &Page{
			Collection:  col.Name,
			Index:       i,
			Total:       total,
			Documents:   docs[start:end],
			OutputPath:  p.pageURL(col.Name, i),
			HasPrevious: i > 1,
			HasNext:     i < total,
		}
		if page.HasPrevious {
			page.PreviousURL = p.pageURL(col.Name, i-1)
		}
		if page.HasNext {
			page.NextURL = p.pageURL(col.Name, i+1)
		}
		pages = append(pages, page)
	}
	return pages
}

// pageURL computes the output path for a page index. Page 1 reuses the
// collection index URL by design.
func (p *Paginator) pageURL(collection string, index int) string {
	tpl := p.template
	if index == 1 {
		tpl = p.indexTpl
	}
	url, warnings := p.resolver.ResolvePage(tpl, collection, index)
	for _, w := range warnings {
		slog.Warn("Pagination placeholder unresolved, using fallback",
			"placeholder", w.Placeholder, "collection", collection, "fallback", w.Fallback)
	}
	return url
}
