package feed

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/pressgen/internal/collections"
	"git.home.luguber.info/inful/pressgen/internal/config"
	"git.home.luguber.info/inful/pressgen/internal/content"
)

func day(m, d int) time.Time { return time.Date(2024, time.Month(m), d, 0, 0, 0, 0, time.UTC) }

func post(path string, date time.Time, title string) *content.Document {
	return &content.Document{
		SourcePath:  path,
		Collection:  "posts",
		PublishDate: date,
		OutputPath:  "/" + title + "/",
		FrontMatter: map[string]any{"title": title},
		Body:        "First paragraph of " + title + ".\n\nSecond paragraph.\n",
	}
}

func registryWith(docs ...*content.Document) *collections.Registry {
	cfg := &config.Config{
		Collections: []config.CollectionConfig{
			{Name: "posts", Root: "_posts", Sort: config.SortDate, Output: true},
			{Name: "projects", Root: "_projects", Sort: config.SortDeclared, Output: true},
		},
	}
	return collections.NewRegistry(cfg, docs)
}

func TestAssemble_LimitAndOrder(t *testing.T) {
	reg := registryWith(
		post("_posts/2024-01-01-jan.md", day(1, 1), "jan"),
		post("_posts/2024-02-01-feb.md", day(2, 1), "feb"),
		post("_posts/2024-03-01-mar.md", day(3, 1), "mar"),
	)

	f, err := NewAssembler(reg).Assemble([]string{"posts"}, 2)
	require.NoError(t, err)
	require.Len(t, f.Entries, 2)
	require.Equal(t, "mar", f.Entries[0].Title)
	require.Equal(t, "feb", f.Entries[1].Title)
}

func TestAssemble_NonIncreasingDates(t *testing.T) {
	reg := registryWith(
		post("_posts/2024-01-05-a.md", day(1, 5), "a"),
		post("_posts/2024-03-01-b.md", day(3, 1), "b"),
		post("_posts/2024-02-10-c.md", day(2, 10), "c"),
		post("_posts/2024-02-10-d.md", day(2, 10), "d"),
	)

	f, err := NewAssembler(reg).Assemble([]string{"posts"}, 10)
	require.NoError(t, err)
	for i := 1; i < len(f.Entries); i++ {
		require.False(t, f.Entries[i].PublishDate.After(f.Entries[i-1].PublishDate),
			"entry %d is newer than entry %d", i, i-1)
	}
	// Tie broken by source path
	require.Equal(t, "c", f.Entries[1].Title)
	require.Equal(t, "d", f.Entries[2].Title)
}

func TestAssemble_MergesAcrossCollections(t *testing.T) {
	project := &content.Document{
		SourcePath:  "_projects/widget.md",
		Collection:  "projects",
		PublishDate: day(2, 15),
		OutputPath:  "/projects/widget/",
		FrontMatter: map[string]any{"title": "widget"},
	}
	reg := registryWith(
		post("_posts/2024-01-01-jan.md", day(1, 1), "jan"),
		post("_posts/2024-03-01-mar.md", day(3, 1), "mar"),
		project,
	)

	f, err := NewAssembler(reg).Assemble([]string{"posts", "projects"}, 10)
	require.NoError(t, err)
	require.Equal(t, []string{"mar", "widget", "jan"},
		[]string{f.Entries[0].Title, f.Entries[1].Title, f.Entries[2].Title})
}

func TestAssemble_UnknownCollection(t *testing.T) {
	reg := registryWith()
	_, err := NewAssembler(reg).Assemble([]string{"ghosts"}, 5)
	require.Error(t, err)

	var uce *UnknownCollectionError
	require.ErrorAs(t, err, &uce)
	require.Equal(t, "ghosts", uce.Name)
}

func TestAssemble_EmptySourceContributesNothing(t *testing.T) {
	reg := registryWith(post("_posts/2024-01-01-jan.md", day(1, 1), "jan"))
	f, err := NewAssembler(reg).Assemble([]string{"posts", "projects"}, 5)
	require.NoError(t, err)
	require.Len(t, f.Entries, 1)
}

func TestSummarize_FirstParagraphPlainText(t *testing.T) {
	body := "# Heading\n\nThis is *emphasized* and [linked](https://example.org) text\nacross lines.\n\nSecond paragraph.\n"
	require.Equal(t, "This is emphasized and linked text across lines.", Summarize(body))
}

func TestSummarize_Truncates(t *testing.T) {
	long := ""
	for range 50 {
		long += "repeated words here "
	}
	s := Summarize(long + "\n")
	require.LessOrEqual(t, len([]rune(s)), maxSummaryRunes+1)
	require.Contains(t, s, "…")
}

func TestRenderAtom(t *testing.T) {
	reg := registryWith(
		post("_posts/2024-03-01-mar.md", day(3, 1), "mar"),
		post("_posts/2024-01-01-jan.md", day(1, 1), "jan"),
	)
	f, err := NewAssembler(reg).Assemble([]string{"posts"}, 10)
	require.NoError(t, err)

	site := config.SiteConfig{Title: "Blog", BaseURL: "https://example.org", Author: "Ada"}
	out, err := RenderAtom(f, site, "/feed.xml")
	require.NoError(t, err)

	xml := string(out)
	require.Contains(t, xml, `<feed xmlns="http://www.w3.org/2005/Atom">`)
	require.Contains(t, xml, "<title>Blog</title>")
	require.Contains(t, xml, `href="https://example.org/feed.xml" rel="self"`)
	require.Contains(t, xml, "<name>Ada</name>")
	require.Contains(t, xml, "https://example.org/mar/")
	require.Contains(t, xml, "<updated>2024-03-01T00:00:00Z</updated>")
}
