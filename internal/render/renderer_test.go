package render

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/pressgen/internal/config"
	"git.home.luguber.info/inful/pressgen/internal/manifest"
)

func site() config.SiteConfig {
	return config.SiteConfig{Title: "Test Site"}
}

func TestRender_BuiltinLayout(t *testing.T) {
	r, err := NewMarkdownRenderer(site(), filepath.Join(t.TempDir(), "missing"))
	require.NoError(t, err)

	out, err := r.Render("# Hello\n\nSome **bold** text.\n", map[string]any{"title": "Post"}, "default")
	require.NoError(t, err)

	html := string(out)
	require.Contains(t, html, "<h1>Hello</h1>")
	require.Contains(t, html, "<strong>bold</strong>")
	require.Contains(t, html, "<title>Post | Test Site</title>")
}

func TestRender_CustomLayout(t *testing.T) {
	dir := t.TempDir()
	layout := `<article data-layout="post">{{.Content}}</article>`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "post.html"), []byte(layout), 0o644))

	r, err := NewMarkdownRenderer(site(), dir)
	require.NoError(t, err)

	out, err := r.Render("body text\n", map[string]any{}, "post")
	require.NoError(t, err)
	require.Contains(t, string(out), `<article data-layout="post">`)
	require.Contains(t, string(out), "<p>body text</p>")
}

func TestRender_GFMTable(t *testing.T) {
	r, err := NewMarkdownRenderer(site(), t.TempDir())
	require.NoError(t, err)

	out, err := r.Render("| a | b |\n|---|---|\n| 1 | 2 |\n", map[string]any{}, "default")
	require.NoError(t, err)
	require.Contains(t, string(out), "<table>")
}

func TestCheckLinks(t *testing.T) {
	m := manifest.New("b-1")
	require.NoError(t, m.Add("/about/", &manifest.PageDescriptor{
		Rendered: []byte(`<html><body><a href="/posts/hello/">ok</a><a href="/missing/">bad</a><a href="https://example.org/">ext</a></body></html>`),
	}))
	require.NoError(t, m.Add("/posts/hello/", &manifest.PageDescriptor{Rendered: []byte("<html></html>")}))

	broken := CheckLinks(m)
	require.Len(t, broken, 1)
	require.Equal(t, "/about/", broken[0].Page)
	require.Equal(t, "/missing/", broken[0].Target)
}

func TestNormalizeTarget(t *testing.T) {
	require.Equal(t, "/posts/hello/", normalizeTarget("/posts/hello"))
	require.Equal(t, "/posts/hello/", normalizeTarget("/posts/hello/#section"))
	require.Equal(t, "/feed.xml", normalizeTarget("/feed.xml"))
	require.Equal(t, "/", normalizeTarget("/#top"))
}
