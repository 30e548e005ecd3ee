package feed

import (
	"encoding/xml"
	"strings"
	"time"

	"git.home.luguber.info/inful/pressgen/internal/config"
)

type atomFeed struct {
	XMLName xml.Name    `xml:"feed"`
	Xmlns   string      `xml:"xmlns,attr"`
	Title   string      `xml:"title"`
	ID      string      `xml:"id"`
	Updated string      `xml:"updated"`
	Links   []atomLink  `xml:"link"`
	Author  *atomAuthor `xml:"author,omitempty"`
	Entries []atomEntry `xml:"entry"`
}

type atomLink struct {
	Href string `xml:"href,attr"`
	Rel  string `xml:"rel,attr,omitempty"`
}

type atomAuthor struct {
	Name string `xml:"name"`
}

type atomEntry struct {
	Title     string   `xml:"title"`
	ID        string   `xml:"id"`
	Updated   string   `xml:"updated"`
	Published string   `xml:"published"`
	Link      atomLink `xml:"link"`
	Summary   string   `xml:"summary,omitempty"`
}

// RenderAtom serializes the feed as an Atom document. The feed's updated
// timestamp is the newest entry's publish date; an empty feed carries the
// zero timestamp rather than wall-clock time so output stays reproducible.
func RenderAtom(f *Feed, site config.SiteConfig, feedPath string) ([]byte, error) {
	base := strings.TrimSuffix(site.BaseURL, "/")

	af := atomFeed{
		Xmlns: "http://www.w3.org/2005/Atom",
		Title: site.Title,
		ID:    base + "/",
		Links: []atomLink{
			{Href: base + feedPath, Rel: "self"},
			{Href: base + "/"},
		},
	}
	if site.Author != "" {
		af.Author = &atomAuthor{Name: site.Author}
	}

	var updated time.Time
	for _, e := range f.Entries {
		if e.PublishDate.After(updated) {
			updated = e.PublishDate
		}
		af.Entries = append(af.Entries, atomEntry{
			Title:     e.Title,
			ID:        base + e.URL,
			Updated:   e.PublishDate.UTC().Format(time.RFC3339),
			Published: e.PublishDate.UTC().Format(time.RFC3339),
			Link:      atomLink{Href: base + e.URL},
			Summary:   e.Summary,
		})
	}
	af.Updated = updated.UTC().Format(time.RFC3339)

	out, err := xml.MarshalIndent(af, "", "  ")
	if err != nil {
		return nil, err
	}
	return append([]byte(xml.Header), out...), nil
}
