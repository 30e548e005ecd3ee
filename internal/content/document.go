// Package content discovers source files and parses them into Documents: the
// front-matter block, the body, the owning collection, and the publish date.
package content

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"regexp"
	"strings"
	"time"
)

// PagesCollection is the implicit collection for content that does not live
// under any declared collection root.
const PagesCollection = "pages"

// Document represents one content unit flowing through the build pipeline.
//
// FrontMatter is mutated exactly once, by the defaults resolver; every later
// stage treats the document as read-only.
type Document struct {
	// SourcePath is the slash-separated path relative to the content root.
	// Unique across the build by construction (derived from the filesystem).
	SourcePath string

	// FilePath is the absolute path on disk.
	FilePath string

	// Collection names the owning collection ("pages" for uncollected content).
	Collection string

	// FrontMatter is the effective front matter (defaults merged in).
	FrontMatter map[string]any

	// Original preserves the front matter exactly as authored, for diagnostics.
	Original map[string]any

	// Body is the opaque content blob handed to the renderer.
	Body string

	// PublishDate is derived from the file name or front matter.
	PublishDate time.Time

	// OutputPath is the resolved permalink. Set by the permalink stage;
	// unique across the whole site.
	OutputPath string

	Name        string // File name without extension
	Slug        string // Name with any date prefix stripped
	Extension   string
	ContentHash string // sha256 over the raw source bytes
}

// Title returns the document's title field, or the empty string.
func (d *Document) Title() string {
	if t, ok := d.FrontMatter["title"].(string); ok {
		return t
	}
	return ""
}

// Layout returns the layout front-matter field, or fallback when unset.
func (d *Document) Layout(fallback string) string {
	if l, ok := d.FrontMatter["layout"].(string); ok && l != "" {
		return l
	}
	return fallback
}

// Draft reports whether the document is marked as a draft.
func (d *Document) Draft() bool {
	v, ok := d.FrontMatter["draft"].(bool)
	return ok && v
}

// RefreshPublishDate re-derives PublishDate from the effective front matter.
// Runs after the defaults merge so a date supplied by a rule participates in
// sorting, routing, and the feed like an authored one.
func (d *Document) RefreshPublishDate() {
	nameDate, _, _ := splitDatedName(d.Name)
	d.PublishDate = publishDate(d.FrontMatter, nameDate)
}

// ParseError is a fatal per-document error: the front-matter block could not
// be parsed. It names the offending file and, where known, the line.
type ParseError struct {
	Path string
	Line int
	Err  error
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("parse %s:%d: %v", e.Path, e.Line, e.Err)
	}
	return fmt.Sprintf("parse %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// datedName matches the conventional YYYY-MM-DD-slug file name of
// chronological content.
var datedName = regexp.MustCompile(`^(\d{4})-(\d{2})-(\d{2})-(.+)$`)

// splitDatedName extracts the leading date from a YYYY-MM-DD-slug file name.
// ok is false when the name carries no date prefix.
func splitDatedName(name string) (t time.Time, slug string, ok bool) {
	m := datedName.FindStringSubmatch(name)
	if m == nil {
		return time.Time{}, name, false
	}
	parsed, err := time.Parse("2006-01-02", m[1]+"-"+m[2]+"-"+m[3])
	if err != nil {
		return time.Time{}, name, false
	}
	return parsed, m[4], true
}

// publishDate derives the document date. Front-matter `date` wins over the
// file-name prefix; a missing date stays zero (sorting falls back to the
// source-path tiebreak).
func publishDate(fm map[string]any, nameDate time.Time) time.Time {
	switch v := fm["date"].(type) {
	case time.Time:
		return v
	case string:
		for _, layout := range []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"} {
			if t, err := time.Parse(layout, strings.TrimSpace(v)); err == nil {
				return t
			}
		}
	}
	return nameDate
}

func hashBytes(b []byte) string {
	h := sha256.Sum256(b)
	return hex.EncodeToString(h[:])
}
