// Package feed assembles a bounded, time-ordered syndication feed across
// collections.
package feed

import (
	"fmt"
	"sort"
	"time"

	"git.home.luguber.info/inful/pressgen/internal/collections"
	"git.home.luguber.info/inful/pressgen/internal/content"
)

// Entry is a read-only projection of a document for syndication. The feed
// owns no document state.
type Entry struct {
	Title       string
	URL         string
	SourcePath  string
	Collection  string
	PublishDate time.Time
	Summary     string
	Document    *content.Document
}

// Feed is the assembled, truncated entry list.
type Feed struct {
	Entries []Entry
	Limit   int
}

// UnknownCollectionError reports a feed source that does not exist in the
// registry. Fatal: it is a configuration error, not a data-quality issue.
type UnknownCollectionError struct {
	Name string
}

func (e *UnknownCollectionError) Error() string {
	return fmt.Sprintf("feed references unknown collection %q", e.Name)
}

// Assembler builds feeds from a collection registry.
type Assembler struct {
	registry *collections.Registry
}

// NewAssembler creates a feed assembler over the registry.
func NewAssembler(registry *collections.Registry) *Assembler {
	return &Assembler{registry: registry}
}

// Assemble merges the named source collections into one sequence ordered by
// publish date descending (source-path tiebreak) and truncates it to limit.
// An empty source collection contributes nothing; a missing one is an error.
func (a *Assembler) Assemble(sources []string, limit int) (*Feed, error) {
	var docs []*content.Document
	for _, name := range sources {
		col, ok := a.registry.Get(name)
		if !ok {
			return nil, &UnknownCollectionError{Name: name}
		}
		docs = append(docs, col.Documents...)
	}

	sort.SliceStable(docs, func(i, j int) bool {
		if !docs[i].PublishDate.Equal(docs[j].PublishDate) {
			return docs[i].PublishDate.After(docs[j].PublishDate)
		}
		return docs[i].SourcePath < docs[j].SourcePath
	})

	if limit > 0 && len(docs) > limit {
		docs = docs[:limit]
	}

	entries := make([]Entry, 0, len(docs))
	for _, doc := range docs {
		entries = append(entries, Entry{
			Title:       doc.Title(),
			URL:         doc.OutputPath,
			SourcePath:  doc.SourcePath,
			Collection:  doc.Collection,
			PublishDate: doc.PublishDate,
			Summary:     Summarize(doc.Body),
			Document:    doc,
		})
	}

	return &Feed{Entries: entries, Limit: limit}, nil
}
