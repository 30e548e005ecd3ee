// Package permalink expands placeholder templates like
// /blog/:year/:month/:day/:title/ into concrete output paths.
//
// The placeholder vocabulary is an extensible registry, not a fixed
// enumeration: callers may register additional placeholders next to the
// built-in date, title, and collection set.
package permalink

import (
	"fmt"
	"path"
	"regexp"
	"strings"

	"git.home.luguber.info/inful/pressgen/internal/content"
)

// PlaceholderFunc derives a path segment from a document. ok is false when
// the placeholder has no value on this document (e.g. :title without a
// title), which triggers the fallback policy.
type PlaceholderFunc func(doc *content.Document) (value string, ok bool)

// Resolver expands permalink templates. Resolution is a pure function of
// (template, document fields): identical inputs always produce identical
// output paths.
type Resolver struct {
	placeholders map[string]PlaceholderFunc
}

// NewResolver creates a resolver with the built-in placeholder set.
func NewResolver() *Resolver {
	r := &Resolver{placeholders: map[string]PlaceholderFunc{}}

	r.Register("year", dateComponent("2006"))
	r.Register("short_year", dateComponent("06"))
	r.Register("month", dateComponent("01"))
	r.Register("i_month", dateComponent("1"))
	r.Register("day", dateComponent("02"))
	r.Register("i_day", dateComponent("2"))

	r.Register("title", func(doc *content.Document) (string, bool) {
		s := Slugify(doc.Title())
		return s, s != ""
	})
	r.Register("slug", func(doc *content.Document) (string, bool) {
		s := Slugify(doc.Slug)
		return s, s != ""
	})
	r.Register("name", func(doc *content.Document) (string, bool) {
		s := Slugify(doc.Name)
		return s, s != ""
	})
	r.Register("collection", func(doc *content.Document) (string, bool) {
		return doc.Collection, doc.Collection != ""
	})

	return r
}

// Register adds or replaces a placeholder.
func (r *Resolver) Register(name string, fn PlaceholderFunc) {
	r.placeholders[name] = fn
}

// UnresolvedPlaceholderError records a placeholder that had no value on a
// document and was substituted with a fallback. It is recoverable: the
// caller logs it as a warning and keeps the fallback path.
type UnresolvedPlaceholderError struct {
	Placeholder string
	SourcePath  string
	Fallback    string
}

func (e *UnresolvedPlaceholderError) Error() string {
	return fmt.Sprintf("permalink placeholder :%s has no value for %s, substituted %q",
		e.Placeholder, e.SourcePath, e.Fallback)
}

var placeholderPattern = regexp.MustCompile(`:([a-zA-Z_]+)`)

// ResolveDocument expands template for a document. Unresolved placeholders
// fall back to the slugified file base name and are reported for warning
// logs; an empty path segment is never silently produced. The error return
// is non-nil only when even the fallback cannot yield a usable segment.
func (r *Resolver) ResolveDocument(template string, doc *content.Document) (string, []*UnresolvedPlaceholderError, error) {
	var unresolved []*UnresolvedPlaceholderError
	var failed error

	expanded := placeholderPattern.ReplaceAllStringFunc(template, func(tok string) string {
		name := tok[1:]
		if fn, ok := r.placeholders[name]; ok {
			if v, ok := fn(doc); ok {
				return v
			}
		}
		fallback := Slugify(doc.Name)
		if fallback == "" {
			failed = fmt.Errorf("placeholder :%s unresolved for %s and no fallback available", name, doc.SourcePath)
			return ""
		}
		unresolved = append(unresolved, &UnresolvedPlaceholderError{
			Placeholder: name,
			SourcePath:  doc.SourcePath,
			Fallback:    fallback,
		})
		return fallback
	})

	if failed != nil {
		return "", unresolved, failed
	}
	return normalizePath(expanded), unresolved, nil
}

// ResolvePage expands a pagination template for a listing page of a
// collection. Only :collection and :page are meaningful here; any other
// placeholder falls back to the slugified collection name and is reported,
// so a literal token never reaches an output path.
func (r *Resolver) ResolvePage(template, collection string, page int) (string, []*UnresolvedPlaceholderError) {
	var unresolved []*UnresolvedPlaceholderError
	expanded := placeholderPattern.ReplaceAllStringFunc(template, func(tok string) string {
		switch name := tok[1:]; name {
		case "collection":
			return collection
		case "page":
			return fmt.Sprintf("%d", page)
		default:
			fallback := Slugify(collection)
			unresolved = append(unresolved, &UnresolvedPlaceholderError{
				Placeholder: name,
				SourcePath:  collection,
				Fallback:    fallback,
			})
			return fallback
		}
	})
	return normalizePath(expanded), unresolved
}

// PagePath converts a source path into an output path for uncollected
// pages: about.md becomes /about/, docs/index.md becomes /docs/.
func PagePath(sourcePath string) string {
	p := strings.TrimSuffix(sourcePath, path.Ext(sourcePath))
	if p == "index" {
		return "/"
	}
	p = strings.TrimSuffix(p, "/index")
	return normalizePath("/" + p + "/")
}

// normalizePath collapses duplicate slashes and guarantees a leading slash.
func normalizePath(p string) string {
	for strings.Contains(p, "//") {
		p = strings.ReplaceAll(p, "//", "/")
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return p
}

func dateComponent(layout string) PlaceholderFunc {
	return func(doc *content.Document) (string, bool) {
		if doc.PublishDate.IsZero() {
			return "", false
		}
		return doc.PublishDate.Format(layout), true
	}
}
