// Package collections groups documents into named, ordered collections.
package collections

import (
	"sort"

	"git.home.luguber.info/inful/pressgen/internal/config"
	"git.home.luguber.info/inful/pressgen/internal/content"
)

// Collection is a named, ordered set of documents sharing a type.
type Collection struct {
	Name      string
	Sort      string // config.SortDate or config.SortDeclared
	Output    bool
	Documents []*content.Document
}

// Registry holds every collection of a build, including declared collections
// that matched zero documents.
type Registry struct {
	byName map[string]*Collection
	order  []string // declaration order
}

// NewRegistry groups documents by collection and sorts each collection.
//
// Every declared collection exists in the registry even when empty; the
// implicit pages collection exists only when uncollected documents exist.
// Sorting is stable with a source-path tiebreak so identical inputs always
// produce identical orderings.
func NewRegistry(cfg *config.Config, docs []*content.Document) *Registry {
	r := &Registry{byName: map[string]*Collection{}}

	for _, cc := range cfg.Collections {
		r.add(&Collection{Name: cc.Name, Sort: cc.Sort, Output: cc.Output})
	}

	for _, doc := range docs {
		col, ok := r.byName[doc.Collection]
		if !ok {
			// Uncollected content lands in the implicit pages collection.
			col = &Collection{Name: doc.Collection, Sort: config.SortDeclared, Output: true}
			r.add(col)
		}
		col.Documents = append(col.Documents, doc)
	}

	for _, name := range r.order {
		sortDocuments(r.byName[name])
	}
	return r
}

func (r *Registry) add(col *Collection) {
	r.byName[col.Name] = col
	r.order = append(r.order, col.Name)
}

// Get returns the named collection, if present.
func (r *Registry) Get(name string) (*Collection, bool) {
	col, ok := r.byName[name]
	return col, ok
}

// All returns every collection in declaration order.
func (r *Registry) All() []*Collection {
	out := make([]*Collection, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.byName[name])
	}
	return out
}

// Len returns the total number of documents across all collections.
func (r *Registry) Len() int {
	n := 0
	for _, col := range r.byName {
		n += len(col.Documents)
	}
	return n
}

func sortDocuments(col *Collection) {
	docs := col.Documents
	switch col.Sort {
	case config.SortDate:
		sort.SliceStable(docs, func(i, j int) bool {
			if !docs[i].PublishDate.Equal(docs[j].PublishDate) {
				return docs[i].PublishDate.After(docs[j].PublishDate)
			}
			return docs[i].SourcePath < docs[j].SourcePath
		})
	default:
		// Declaration order is source-path order: the loader emits documents
		// sorted by path, and the tiebreak keeps this deterministic even for
		// callers passing unsorted slices.
		sort.SliceStable(docs, func(i, j int) bool {
			return docs[i].SourcePath < docs[j].SourcePath
		})
	}
}
