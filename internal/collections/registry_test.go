package collections

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/pressgen/internal/config"
	"git.home.luguber.info/inful/pressgen/internal/content"
)

func dated(path, collection string, date time.Time) *content.Document {
	return &content.Document{
		SourcePath:  path,
		Collection:  collection,
		PublishDate: date,
		FrontMatter: map[string]any{},
	}
}

func registryConfig() *config.Config {
	return &config.Config{
		Collections: []config.CollectionConfig{
			{Name: "posts", Root: "_posts", Sort: config.SortDate, Output: true},
			{Name: "projects", Root: "_projects", Sort: config.SortDeclared, Output: true},
		},
	}
}

func day(d int) time.Time { return time.Date(2024, 1, d, 0, 0, 0, 0, time.UTC) }

func TestRegistry_SortsPostsByDateDescending(t *testing.T) {
	docs := []*content.Document{
		dated("_posts/2024-01-01-a.md", "posts", day(1)),
		dated("_posts/2024-01-03-c.md", "posts", day(3)),
		dated("_posts/2024-01-02-b.md", "posts", day(2)),
	}

	r := NewRegistry(registryConfig(), docs)
	posts, ok := r.Get("posts")
	require.True(t, ok)
	require.Equal(t, []string{
		"_posts/2024-01-03-c.md",
		"_posts/2024-01-02-b.md",
		"_posts/2024-01-01-a.md",
	}, paths(posts.Documents))
}

func TestRegistry_DateTiesBreakBySourcePath(t *testing.T) {
	docs := []*content.Document{
		dated("_posts/2024-01-01-b.md", "posts", day(1)),
		dated("_posts/2024-01-01-a.md", "posts", day(1)),
	}

	r := NewRegistry(registryConfig(), docs)
	posts, _ := r.Get("posts")
	require.Equal(t, []string{"_posts/2024-01-01-a.md", "_posts/2024-01-01-b.md"}, paths(posts.Documents))
}

func TestRegistry_DeclaredOrderCollection(t *testing.T) {
	docs := []*content.Document{
		dated("_projects/zeta.md", "projects", day(9)),
		dated("_projects/alpha.md", "projects", day(1)),
	}

	r := NewRegistry(registryConfig(), docs)
	projects, _ := r.Get("projects")
	require.Equal(t, []string{"_projects/alpha.md", "_projects/zeta.md"}, paths(projects.Documents))
}

func TestRegistry_EmptyDeclaredCollectionExists(t *testing.T) {
	r := NewRegistry(registryConfig(), nil)
	projects, ok := r.Get("projects")
	require.True(t, ok)
	require.Empty(t, projects.Documents)
	require.Equal(t, 0, r.Len())
}

func TestRegistry_ImplicitPagesCollection(t *testing.T) {
	docs := []*content.Document{
		dated("about.md", content.PagesCollection, time.Time{}),
	}

	r := NewRegistry(registryConfig(), docs)
	pages, ok := r.Get(content.PagesCollection)
	require.True(t, ok)
	require.Len(t, pages.Documents, 1)

	// Declared collections come first in iteration order
	all := r.All()
	require.Equal(t, "posts", all[0].Name)
	require.Equal(t, "projects", all[1].Name)
	require.Equal(t, content.PagesCollection, all[2].Name)
}

func paths(docs []*content.Document) []string {
	out := make([]string, len(docs))
	for i, d := range docs {
		out[i] = d.SourcePath
	}
	return out
}
