package pagination

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/pressgen/internal/collections"
	"git.home.luguber.info/inful/pressgen/internal/content"
	"git.home.luguber.info/inful/pressgen/internal/permalink"
)

func collection(n int) *collections.Collection {
	col := &collections.Collection{Name: "posts"}
	// Newest first, matching a date-sorted collection
	for i := n; i >= 1; i-- {
		col.Documents = append(col.Documents, &content.Document{
			SourcePath:  fmt.Sprintf("_posts/2024-01-%02d-p.md", i),
			Collection:  "posts",
			PublishDate: time.Date(2024, 1, i, 0, 0, 0, 0, time.UTC),
		})
	}
	return col
}

func newPaginator(t *testing.T, size int) *Paginator {
	t.Helper()
	p, err := NewPaginator(permalink.NewResolver(), "/:collection/page/:page/", "/:collection/", size)
	require.NoError(t, err)
	return p
}

func TestPaginate_ThreePostsPageSizeTwo(t *testing.T) {
	pages := newPaginator(t, 2).Paginate(collection(3))
	require.Len(t, pages, 2)

	first := pages[0]
	require.Equal(t, 1, first.Index)
	require.Len(t, first.Documents, 2)
	require.Equal(t, "_posts/2024-01-03-p.md", first.Documents[0].SourcePath)
	require.Equal(t, "_posts/2024-01-02-p.md", first.Documents[1].SourcePath)
	require.False(t, first.HasPrevious)
	require.True(t, first.HasNext)
	require.Equal(t, "/posts/", first.OutputPath)
	require.Equal(t, "/posts/page/2/", first.NextURL)
	require.Empty(t, first.PreviousURL)

	second := pages[1]
	require.Equal(t, 2, second.Index)
	require.Len(t, second.Documents, 1)
	require.Equal(t, "_posts/2024-01-01-p.md", second.Documents[0].SourcePath)
	require.True(t, second.HasPrevious)
	require.False(t, second.HasNext)
	require.Equal(t, "/posts/page/2/", second.OutputPath)
	require.Equal(t, "/posts/", second.PreviousURL)
	require.Empty(t, second.NextURL)
}

func TestPaginate_PartitionProperty(t *testing.T) {
	for _, tc := range []struct{ n, size int }{
		{0, 1}, {1, 1}, {1, 5}, {5, 1}, {5, 2}, {5, 5}, {6, 2}, {7, 3}, {10, 4},
	} {
		col := collection(tc.n)
		pages := newPaginator(t, tc.size).Paginate(col)

		wantPages := (tc.n + tc.size - 1) / tc.size
		require.Len(t, pages, wantPages, "n=%d size=%d", tc.n, tc.size)

		// Concatenating all pages reproduces the collection order exactly
		var got []string
		for _, pg := range pages {
			require.LessOrEqual(t, len(pg.Documents), tc.size)
			for _, d := range pg.Documents {
				got = append(got, d.SourcePath)
			}
		}
		var want []string
		for _, d := range col.Documents {
			want = append(want, d.SourcePath)
		}
		require.Equal(t, want, got, "n=%d size=%d", tc.n, tc.size)
	}
}

func TestPaginate_EmptyCollectionYieldsZeroPages(t *testing.T) {
	pages := newPaginator(t, 3).Paginate(collection(0))
	require.Empty(t, pages)
}

func TestPaginate_NavigationFlags(t *testing.T) {
	pages := newPaginator(t, 1).Paginate(collection(3))
	require.Len(t, pages, 3)
	for i, pg := range pages {
		require.Equal(t, i > 0, pg.HasPrevious, "page %d", pg.Index)
		require.Equal(t, i < len(pages)-1, pg.HasNext, "page %d", pg.Index)
		require.Equal(t, 3, pg.Total)
	}
	// Middle page links both ways
	require.Equal(t, "/posts/", pages[1].PreviousURL)
	require.Equal(t, "/posts/page/3/", pages[1].NextURL)
}

func TestNewPaginator_RejectsZeroPageSize(t *testing.T) {
	_, err := NewPaginator(permalink.NewResolver(), "/:collection/page/:page/", "/:collection/", 0)
	require.Error(t, err)
}
