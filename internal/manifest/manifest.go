// Package manifest holds the aggregate build output: the mapping from every
// output path to the descriptor of the page rendered there. The manifest is
// all-or-nothing; a build that fails structurally never emits one.
package manifest

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"time"
)

// Kind distinguishes what a manifest entry was generated from.
type Kind string

const (
	KindDocument Kind = "document" // a single content document
	KindListing  Kind = "listing"  // a pagination listing page
	KindFeed     Kind = "feed"     // the syndication feed
)

// PageDescriptor describes one output page.
type PageDescriptor struct {
	Kind       Kind   `json:"kind"`
	SourcePath string `json:"source_path,omitempty"` // for documents
	Collection string `json:"collection,omitempty"`
	PageIndex  int    `json:"page_index,omitempty"` // for listings
	Layout     string `json:"layout,omitempty"`

	// Rendered is the final content handed to the file writer.
	Rendered []byte `json:"-"`

	// ContentHash fingerprints the rendered bytes.
	ContentHash string `json:"content_hash"`
}

// Manifest is the build's complete output-path map plus build metadata.
type Manifest struct {
	BuildID   string    `json:"build_id"`
	Generated time.Time `json:"generated"`

	pages map[string]*PageDescriptor
}

// New creates an empty manifest for a build.
func New(buildID string) *Manifest {
	return &Manifest{
		BuildID:   buildID,
		Generated: time.Now().UTC(),
		pages:     map[string]*PageDescriptor{},
	}
}

// Add registers a page under its output path. Paths are unique; adding a
// duplicate is a programming error upstream (collision detection runs before
// manifest assembly) and is rejected loudly rather than overwritten.
func (m *Manifest) Add(outputPath string, desc *PageDescriptor) error {
	if _, exists := m.pages[outputPath]; exists {
		return fmt.Errorf("manifest already contains output path %s", outputPath)
	}
	if desc.ContentHash == "" && desc.Rendered != nil {
		h := sha256.Sum256(desc.Rendered)
		desc.ContentHash = hex.EncodeToString(h[:])
	}
	m.pages[outputPath] = desc
	return nil
}

// Get returns the descriptor for an output path.
func (m *Manifest) Get(outputPath string) (*PageDescriptor, bool) {
	d, ok := m.pages[outputPath]
	return d, ok
}

// Paths returns all output paths, sorted.
func (m *Manifest) Paths() []string {
	out := make([]string, 0, len(m.pages))
	for p := range m.pages {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// Len returns the number of pages in the manifest.
func (m *Manifest) Len() int { return len(m.pages) }

// Fingerprint computes a deterministic hash over the whole manifest:
// every output path paired with its content hash, in sorted order.
func (m *Manifest) Fingerprint() string {
	h := sha256.New()
	for _, p := range m.Paths() {
		fmt.Fprintf(h, "%s\x00%s\x00", p, m.pages[p].ContentHash)
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Summary is the JSON-serializable projection published as a build event
// and persisted in the build cache.
type Summary struct {
	BuildID     string    `json:"build_id"`
	Generated   time.Time `json:"generated"`
	Pages       int       `json:"pages"`
	Fingerprint string    `json:"fingerprint"`
}

// Summarize produces the manifest summary.
func (m *Manifest) Summarize() Summary {
	return Summary{
		BuildID:     m.BuildID,
		Generated:   m.Generated,
		Pages:       m.Len(),
		Fingerprint: m.Fingerprint(),
	}
}

// MarshalJSON serializes the manifest including its page map.
func (m *Manifest) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		BuildID   string                     `json:"build_id"`
		Generated time.Time                  `json:"generated"`
		Pages     map[string]*PageDescriptor `json:"pages"`
	}{m.BuildID, m.Generated, m.pages})
}
