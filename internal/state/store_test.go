package state

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/pressgen/internal/manifest"
)

func openStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestUnchanged_EmptyStore(t *testing.T) {
	s := openStore(t)
	ok, err := s.Unchanged(context.Background(), "a.md", "hash-1")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestRecordDocument_RoundTrip(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	require.NoError(t, s.RecordDocument(ctx, "a.md", "hash-1", "/a/", "b-1"))

	ok, err := s.Unchanged(ctx, "a.md", "hash-1")
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = s.Unchanged(ctx, "a.md", "hash-2")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestRecordDocument_Upsert(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	require.NoError(t, s.RecordDocument(ctx, "a.md", "hash-1", "/a/", "b-1"))
	require.NoError(t, s.RecordDocument(ctx, "a.md", "hash-2", "/a/", "b-2"))

	ok, err := s.Unchanged(ctx, "a.md", "hash-2")
	require.NoError(t, err)
	require.True(t, ok)
}

func TestRecordBuild_And_LastBuild(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	_, found, err := s.LastBuild(ctx)
	require.NoError(t, err)
	require.False(t, found)

	first := manifest.Summary{BuildID: "b-1", Generated: time.Unix(1000, 0).UTC(), Pages: 3, Fingerprint: "f1"}
	second := manifest.Summary{BuildID: "b-2", Generated: time.Unix(2000, 0).UTC(), Pages: 4, Fingerprint: "f2"}
	require.NoError(t, s.RecordBuild(ctx, first))
	require.NoError(t, s.RecordBuild(ctx, second))

	last, found, err := s.LastBuild(ctx)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "b-2", last.BuildID)
	require.Equal(t, 4, last.Pages)
	require.Equal(t, "f2", last.Fingerprint)
	require.Equal(t, second.Generated, last.Generated)
}

func TestPrune(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	require.NoError(t, s.RecordDocument(ctx, "keep.md", "h", "/keep/", "b-1"))
	require.NoError(t, s.RecordDocument(ctx, "gone.md", "h", "/gone/", "b-1"))

	require.NoError(t, s.Prune(ctx, []string{"keep.md"}))

	ok, err := s.Unchanged(ctx, "keep.md", "h")
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = s.Unchanged(ctx, "gone.md", "h")
	require.NoError(t, err)
	require.False(t, ok)
}
