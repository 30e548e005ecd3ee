package render

import (
	"bytes"
	"fmt"
	"strings"

	"golang.org/x/net/html"

	"git.home.luguber.info/inful/pressgen/internal/manifest"
)

// BrokenLink records an internal link pointing at a path the manifest does
// not contain. Reported as warnings; external links are not checked.
type BrokenLink struct {
	Page   string // output path of the page containing the link
	Target string
}

func (b BrokenLink) String() string {
	return fmt.Sprintf("%s links to missing page %s", b.Page, b.Target)
}

// CheckLinks parses every rendered page and verifies that internal anchors
// resolve to a manifest entry.
func CheckLinks(m *manifest.Manifest) []BrokenLink {
	known := map[string]bool{}
	for _, p := range m.Paths() {
		known[p] = true
	}

	var broken []BrokenLink
	for _, page := range m.Paths() {
		desc, _ := m.Get(page)
		if len(desc.Rendered) == 0 {
			continue
		}
		for _, target := range extractInternalLinks(desc.Rendered) {
			if !known[normalizeTarget(target)] {
				broken = append(broken, BrokenLink{Page: page, Target: target})
			}
		}
	}
	return broken
}

// extractInternalLinks returns the href values of site-internal anchors.
func extractInternalLinks(rendered []byte) []string {
	root, err := html.Parse(bytes.NewReader(rendered))
	if err != nil {
		return nil
	}

	var links []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "a" {
			for _, attr := range n.Attr {
				if attr.Key != "href" {
					continue
				}
				href := strings.TrimSpace(attr.Val)
				if strings.HasPrefix(href, "/") && !strings.HasPrefix(href, "//") {
					links = append(links, href)
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
	return links
}

// normalizeTarget strips fragments and queries and restores the trailing
// slash convention used by output paths.
func normalizeTarget(href string) string {
	if i := strings.IndexAny(href, "#?"); i >= 0 {
		href = href[:i]
	}
	if href == "" {
		return "/"
	}
	if !strings.HasSuffix(href, "/") && !strings.Contains(href[strings.LastIndexByte(href, '/')+1:], ".") {
		href += "/"
	}
	return href
}
