// Package render turns document bodies into HTML. The pipeline treats the
// renderer as an opaque collaborator behind the Renderer interface; the
// default implementation is goldmark Markdown inside html/template layouts.
package render

import (
	"bytes"
	"fmt"
	"html/template"
	"os"
	"path/filepath"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	gmhtml "github.com/yuin/goldmark/renderer/html"

	"git.home.luguber.info/inful/pressgen/internal/config"
)

// Renderer converts a document body plus layout into final HTML.
type Renderer interface {
	Render(body string, frontMatter map[string]any, layout string) ([]byte, error)
}

// PageData is the template context a layout receives.
type PageData struct {
	Content template.HTML
	Page    map[string]any
	Site    config.SiteConfig
}

// MarkdownRenderer is the default Renderer: goldmark (GFM tables and
// strikethrough enabled) wrapped in a named layout template.
type MarkdownRenderer struct {
	md      goldmark.Markdown
	site    config.SiteConfig
	layouts map[string]*template.Template
}

// NewMarkdownRenderer loads layout templates from layoutsDir. A missing
// directory is fine; pages then render with the builtin minimal shell.
func NewMarkdownRenderer(site config.SiteConfig, layoutsDir string) (*MarkdownRenderer, error) {
	r := &MarkdownRenderer{
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithRendererOptions(gmhtml.WithUnsafe()),
		),
		site:    site,
		layouts: map[string]*template.Template{},
	}

	entries, err := os.ReadDir(layoutsDir)
	if err != nil {
		if os.IsNotExist(err) {
			return r, nil
		}
		return nil, fmt.Errorf("read layouts dir: %w", err)
	}
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".html" {
			continue
		}
		name := e.Name()[:len(e.Name())-len(".html")]
		tpl, err := template.ParseFiles(filepath.Join(layoutsDir, e.Name()))
		if err != nil {
			return nil, fmt.Errorf("parse layout %s: %w", e.Name(), err)
		}
		r.layouts[name] = tpl
	}
	return r, nil
}

// builtinLayout is used when a page names a layout that was not loaded.
var builtinLayout = template.Must(template.New("builtin").Parse(
	`<!DOCTYPE html>
<html>
<head><title>{{with .Page.title}}{{.}} | {{end}}{{.Site.Title}}</title></head>
<body>
{{.Content}}
</body>
</html>
`))

// Render converts Markdown to HTML and wraps it in the named layout.
func (r *MarkdownRenderer) Render(body string, frontMatter map[string]any, layout string) ([]byte, error) {
	var content bytes.Buffer
	if err := r.md.Convert([]byte(body), &content); err != nil {
		return nil, fmt.Errorf("convert markdown: %w", err)
	}

	tpl, ok := r.layouts[layout]
	if !ok {
		tpl = builtinLayout
	}

	data := PageData{
		Content: template.HTML(content.String()),
		Page:    frontMatter,
		Site:    r.site,
	}
	var out bytes.Buffer
	if err := tpl.Execute(&out, data); err != nil {
		return nil, fmt.Errorf("execute layout %s: %w", layout, err)
	}
	return out.Bytes(), nil
}
