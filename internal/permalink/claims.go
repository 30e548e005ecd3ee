package permalink

import (
	"fmt"
	"sort"
	"sync"
)

// CollisionError reports two sources resolving to the same output path.
// Structural and fatal: a manifest with ambiguous paths is never emitted.
type CollisionError struct {
	OutputPath   string
	FirstSource  string
	SecondSource string
}

func (e *CollisionError) Error() string {
	return fmt.Sprintf("permalink collision on %s: %s and %s", e.OutputPath, e.FirstSource, e.SecondSource)
}

// ClaimSet is the serialized reduction step after (possibly parallel)
// permalink resolution: every output path is claimed exactly once.
type ClaimSet struct {
	mu     sync.Mutex
	claims map[string]string // output path -> source path
}

// NewClaimSet creates an empty claim set.
func NewClaimSet() *ClaimSet {
	return &ClaimSet{claims: map[string]string{}}
}

// Claim records that source owns outputPath. A second claim on the same
// path returns a CollisionError naming both sources.
func (c *ClaimSet) Claim(outputPath, source string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if prev, taken := c.claims[outputPath]; taken {
		// Name the sources in a stable order so diagnostics don't flap
		// between runs with different resolution orderings.
		first, second := prev, source
		if second < first {
			first, second = second, first
		}
		return &CollisionError{OutputPath: outputPath, FirstSource: first, SecondSource: second}
	}
	c.claims[outputPath] = source
	return nil
}

// Paths returns all claimed output paths, sorted.
func (c *ClaimSet) Paths() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]string, 0, len(c.claims))
	for p := range c.claims {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}
