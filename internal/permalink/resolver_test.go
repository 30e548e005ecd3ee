package permalink

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/pressgen/internal/content"
)

func doc() *content.Document {
	return &content.Document{
		SourcePath:  "_posts/2024-03-01-hello-world.md",
		Collection:  "posts",
		Name:        "2024-03-01-hello-world",
		Slug:        "hello-world",
		PublishDate: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		FrontMatter: map[string]any{"title": "Hello, World!"},
	}
}

func TestResolveDocument_DateAndTitle(t *testing.T) {
	r := NewResolver()
	out, warns, err := r.ResolveDocument("/blog/:year/:month/:day/:title/", doc())
	require.NoError(t, err)
	require.Empty(t, warns)
	require.Equal(t, "/blog/2024/03/01/hello-world/", out)
}

func TestResolveDocument_CollectionAndSlug(t *testing.T) {
	r := NewResolver()
	out, warns, err := r.ResolveDocument("/:collection/:slug/", doc())
	require.NoError(t, err)
	require.Empty(t, warns)
	require.Equal(t, "/posts/hello-world/", out)
}

func TestResolveDocument_Pure(t *testing.T) {
	r := NewResolver()
	d := doc()
	first, _, err := r.ResolveDocument("/:year/:title/", d)
	require.NoError(t, err)
	second, _, err := r.ResolveDocument("/:year/:title/", d)
	require.NoError(t, err)
	require.Equal(t, first, second)
}

func TestResolveDocument_MissingTitleFallsBackToName(t *testing.T) {
	r := NewResolver()
	d := doc()
	d.FrontMatter = map[string]any{}

	out, warns, err := r.ResolveDocument("/blog/:title/", d)
	require.NoError(t, err)
	require.Len(t, warns, 1)
	require.Equal(t, "title", warns[0].Placeholder)
	require.Equal(t, "/blog/2024-03-01-hello-world/", out)
	require.NotContains(t, out, "//", "fallback must never produce an empty segment")
}

func TestResolveDocument_UnknownPlaceholderFallsBack(t *testing.T) {
	r := NewResolver()
	out, warns, err := r.ResolveDocument("/:nonsense/", doc())
	require.NoError(t, err)
	require.Len(t, warns, 1)
	require.Equal(t, "nonsense", warns[0].Placeholder)
	require.Equal(t, "/2024-03-01-hello-world/", out)
}

func TestResolveDocument_RegisteredPlaceholder(t *testing.T) {
	r := NewResolver()
	r.Register("lang", func(d *content.Document) (string, bool) {
		v, ok := d.FrontMatter["lang"].(string)
		return v, ok
	})

	d := doc()
	d.FrontMatter["lang"] = "en"
	out, warns, err := r.ResolveDocument("/:lang/:slug/", d)
	require.NoError(t, err)
	require.Empty(t, warns)
	require.Equal(t, "/en/hello-world/", out)
}

func TestResolveDocument_NoDateOnDocument(t *testing.T) {
	r := NewResolver()
	d := doc()
	d.PublishDate = time.Time{}

	out, warns, err := r.ResolveDocument("/:year/:slug/", d)
	require.NoError(t, err)
	require.Len(t, warns, 1)
	require.Equal(t, "year", warns[0].Placeholder)
	require.Equal(t, "/2024-03-01-hello-world/hello-world/", out)
}

func TestResolvePage(t *testing.T) {
	r := NewResolver()
	url, warnings := r.ResolvePage("/:collection/page/:page/", "posts", 2)
	require.Equal(t, "/posts/page/2/", url)
	require.Empty(t, warnings)
}

func TestResolvePage_UnknownPlaceholderFallsBack(t *testing.T) {
	r := NewResolver()
	url, warnings := r.ResolvePage("/:collection/:lang/page/:page/", "posts", 2)
	require.Equal(t, "/posts/posts/page/2/", url)
	require.Len(t, warnings, 1)
	require.Equal(t, "lang", warnings[0].Placeholder)
	require.Equal(t, "posts", warnings[0].Fallback)
	require.NotContains(t, url, ":")
}

func TestPagePath(t *testing.T) {
	require.Equal(t, "/about/", PagePath("about.md"))
	require.Equal(t, "/docs/guide/", PagePath("docs/guide.md"))
	require.Equal(t, "/", PagePath("index.md"))
	require.Equal(t, "/docs/", PagePath("docs/index.md"))
}

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Hello, World!":        "hello-world",
		"  spaced   out  ":     "spaced-out",
		"Crème Brûlée":         "creme-brulee",
		"already-slugged":      "already-slugged",
		"MiXeD CaSe 123":       "mixed-case-123",
		"---":                  "",
		"":                     "",
		"Ünïcödé Tîtle":        "unicode-title",
		"c++ & go: a story":    "c-go-a-story",
	}
	for in, want := range cases {
		require.Equal(t, want, Slugify(in), "Slugify(%q)", in)
	}
}

func TestClaimSet_DetectsCollision(t *testing.T) {
	c := NewClaimSet()
	require.NoError(t, c.Claim("/blog/2024/my-post/", "_posts/2024-01-01-my-post.md"))

	err := c.Claim("/blog/2024/my-post/", "_posts/2024-01-02-my-post.md")
	require.Error(t, err)

	var coll *CollisionError
	require.ErrorAs(t, err, &coll)
	require.Equal(t, "/blog/2024/my-post/", coll.OutputPath)
	require.Contains(t, err.Error(), "_posts/2024-01-01-my-post.md")
	require.Contains(t, err.Error(), "_posts/2024-01-02-my-post.md")
}

func TestClaimSet_Paths(t *testing.T) {
	c := NewClaimSet()
	require.NoError(t, c.Claim("/b/", "b.md"))
	require.NoError(t, c.Claim("/a/", "a.md"))
	require.Equal(t, []string{"/a/", "/b/"}, c.Paths())
}
