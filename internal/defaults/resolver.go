// Package defaults merges scoped configuration defaults into document front
// matter. Rules apply in declaration order; later rules overwrite earlier
// ones, and values authored in the document always win over any rule.
package defaults

import (
	"path"
	"strings"

	"git.home.luguber.info/inful/pressgen/internal/config"
	"git.home.luguber.info/inful/pressgen/internal/content"
)

// Resolver applies an ordered list of default rules to documents.
type Resolver struct {
	rules []config.DefaultRule
}

// NewResolver creates a resolver over the configured rules.
func NewResolver(rules []config.DefaultRule) *Resolver {
	return &Resolver{rules: rules}
}

// Apply computes the effective front matter for doc and stores it on
// doc.FrontMatter. The authored front matter (doc.Original) is left intact.
//
// Merge semantics: rules build an overlay in declaration order; top-level
// keys overwrite, nested maps merge key-wise one level deep. The document's
// own front matter is merged last so it can never be overridden by a rule.
func (r *Resolver) Apply(doc *content.Document) {
	overlay := map[string]any{}
	for _, rule := range r.rules {
		if !r.matches(rule, doc) {
			continue
		}
		mergeShallow(overlay, rule.Values)
	}
	mergeShallow(overlay, doc.Original)
	doc.FrontMatter = overlay

	// A date contributed by a rule must steer sorting and routing the same
	// way an authored one does.
	doc.RefreshPublishDate()
}

// ApplyAll resolves defaults for every document.
func (r *Resolver) ApplyAll(docs []*content.Document) {
	for _, doc := range docs {
		r.Apply(doc)
	}
}

// matches reports whether a rule's scope covers the document. An empty path
// pattern matches every path; an empty type matches every collection.
func (r *Resolver) matches(rule config.DefaultRule, doc *content.Document) bool {
	if t := rule.Scope.Type; t != "" && t != doc.Collection {
		return false
	}
	if p := rule.Scope.Path; p != "" && !matchPath(p, doc.SourcePath) {
		return false
	}
	return true
}

// matchPath matches a slash-separated glob against a source path. A `**`
// segment spans any number of path segments; other segments follow
// path.Match semantics.
func matchPath(pattern, name string) bool {
	if !strings.Contains(pattern, "**") {
		ok, err := path.Match(pattern, name)
		return err == nil && ok
	}
	return matchSegments(strings.Split(pattern, "/"), strings.Split(name, "/"))
}

func matchSegments(pattern, name []string) bool {
	if len(pattern) == 0 {
		return len(name) == 0
	}
	if pattern[0] == "**" {
		// `**` matches zero or more leading segments.
		for skip := 0; skip <= len(name); skip++ {
			if matchSegments(pattern[1:], name[skip:]) {
				return true
			}
		}
		return false
	}
	if len(name) == 0 {
		return false
	}
	ok, err := path.Match(pattern[0], name[0])
	if err != nil || !ok {
		return false
	}
	return matchSegments(pattern[1:], name[1:])
}

// mergeShallow merges src into dst: top-level keys overwrite, nested maps
// merge key-wise one level deep. Deeper maps are replaced wholesale; the
// merge contract is deliberately not recursive.
func mergeShallow(dst, src map[string]any) {
	for k, v := range src {
		sv, srcIsMap := v.(map[string]any)
		dv, dstIsMap := dst[k].(map[string]any)
		if srcIsMap && dstIsMap {
			merged := make(map[string]any, len(dv)+len(sv))
			for nk, nv := range dv {
				merged[nk] = nv
			}
			for nk, nv := range sv {
				merged[nk] = nv
			}
			dst[k] = merged
			continue
		}
		if srcIsMap {
			// Copy so later merges never alias the rule's own map.
			cp := make(map[string]any, len(sv))
			for nk, nv := range sv {
				cp[nk] = nv
			}
			dst[k] = cp
			continue
		}
		dst[k] = v
	}
}
