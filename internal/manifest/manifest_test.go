package manifest

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAdd_RejectsDuplicatePath(t *testing.T) {
	m := New("b-1")
	require.NoError(t, m.Add("/about/", &PageDescriptor{Kind: KindDocument, SourcePath: "about.md"}))

	err := m.Add("/about/", &PageDescriptor{Kind: KindDocument, SourcePath: "other.md"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "/about/")
	require.Equal(t, 1, m.Len())
}

func TestAdd_ComputesContentHash(t *testing.T) {
	m := New("b-1")
	require.NoError(t, m.Add("/a/", &PageDescriptor{Kind: KindDocument, Rendered: []byte("<html>a</html>")}))

	d, ok := m.Get("/a/")
	require.True(t, ok)
	require.NotEmpty(t, d.ContentHash)
}

func TestPaths_Sorted(t *testing.T) {
	m := New("b-1")
	require.NoError(t, m.Add("/z/", &PageDescriptor{}))
	require.NoError(t, m.Add("/a/", &PageDescriptor{}))
	require.NoError(t, m.Add("/m/", &PageDescriptor{}))
	require.Equal(t, []string{"/a/", "/m/", "/z/"}, m.Paths())
}

func TestFingerprint_Deterministic(t *testing.T) {
	build := func() *Manifest {
		m := New("b-1")
		_ = m.Add("/a/", &PageDescriptor{Rendered: []byte("aaa")})
		_ = m.Add("/b/", &PageDescriptor{Rendered: []byte("bbb")})
		return m
	}
	require.Equal(t, build().Fingerprint(), build().Fingerprint())

	changed := build()
	require.NoError(t, changed.Add("/c/", &PageDescriptor{Rendered: []byte("ccc")}))
	require.NotEqual(t, build().Fingerprint(), changed.Fingerprint())
}

func TestMarshalJSON(t *testing.T) {
	m := New("b-1")
	require.NoError(t, m.Add("/a/", &PageDescriptor{Kind: KindListing, Collection: "posts", PageIndex: 1, Rendered: []byte("x")}))

	raw, err := json.Marshal(m)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	require.Equal(t, "b-1", decoded["build_id"])
	pages := decoded["pages"].(map[string]any)
	require.Contains(t, pages, "/a/")
	// Rendered bytes are not serialized
	require.NotContains(t, pages["/a/"].(map[string]any), "Rendered")
}

func TestSummarize(t *testing.T) {
	m := New("b-2")
	require.NoError(t, m.Add("/a/", &PageDescriptor{Rendered: []byte("x")}))

	s := m.Summarize()
	require.Equal(t, "b-2", s.BuildID)
	require.Equal(t, 1, s.Pages)
	require.Equal(t, m.Fingerprint(), s.Fingerprint)
}
