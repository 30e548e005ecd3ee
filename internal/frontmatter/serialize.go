package frontmatter

import (
	"bytes"
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"
)

// Serialize encodes a front-matter map as a delimited YAML block followed by
// the body, suitable for writing back to disk.
//
// Keys are sorted recursively so output is stable across builds.
func Serialize(fields map[string]any, body []byte) ([]byte, error) {
	if len(fields) == 0 {
		return body, nil
	}

	raw, err := SerializeYAML(fields)
	if err != nil {
		return nil, err
	}

	var out bytes.Buffer
	out.WriteString(delimiter + "\n")
	out.Write(raw)
	out.WriteString(delimiter + "\n")
	out.Write(body)
	return out.Bytes(), nil
}

// SerializeYAML encodes a front-matter map as YAML bytes without delimiters,
// with deterministic key ordering.
func SerializeYAML(fields map[string]any) ([]byte, error) {
	if len(fields) == 0 {
		return []byte{}, nil
	}

	node, err := nodeFromMap(fields)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(node); err != nil {
		_ = enc.Close()
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func nodeFromMap(m map[string]any) (*yaml.Node, error) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	n := &yaml.Node{Kind: yaml.MappingNode}
	for _, k := range keys {
		keyNode := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: k}
		valNode, err := nodeFromValue(m[k])
		if err != nil {
			return nil, fmt.Errorf("key %q: %w", k, err)
		}
		n.Content = append(n.Content, keyNode, valNode)
	}
	return n, nil
}

func nodeFromValue(v any) (*yaml.Node, error) {
	switch tv := v.(type) {
	case map[string]any:
		return nodeFromMap(tv)
	case []any:
		n := &yaml.Node{Kind: yaml.SequenceNode}
		for _, item := range tv {
			in, err := nodeFromValue(item)
			if err != nil {
				return nil, err
			}
			n.Content = append(n.Content, in)
		}
		return n, nil
	default:
		n := &yaml.Node{}
		if err := n.Encode(v); err != nil {
			return nil, err
		}
		return n, nil
	}
}
