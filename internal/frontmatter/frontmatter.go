// Package frontmatter splits, parses, and serializes the YAML metadata block
// at the head of a content file.
package frontmatter

import (
	"bytes"
	"errors"

	"gopkg.in/yaml.v3"
)

// ErrMissingClosingDelimiter indicates the document started with a front-matter
// delimiter but never closed it.
var ErrMissingClosingDelimiter = errors.New("front matter opening delimiter found but closing delimiter is missing")

const delimiter = "---"

// Block is the result of splitting a source file: the raw YAML bytes (without
// delimiters), the remaining body, and whether a block was present at all.
type Block struct {
	Raw     []byte
	Body    []byte
	Present bool
	// BodyLine is the 1-based line number on which the body starts. Used to
	// attribute diagnostics inside the body back to source lines.
	BodyLine int
}

// Split separates a `---` delimited YAML front-matter block from the body.
//
// A file that does not start with the delimiter has no front matter; the whole
// input is the body. An opening delimiter without a closing one is an error:
// the author clearly intended a block, and silently treating the rest of the
// file as prose would swallow their metadata.
func Split(content []byte) (Block, error) {
	nl := detectNewline(content)

	open := []byte(delimiter + nl)
	if !bytes.HasPrefix(content, open) {
		return Block{Body: content, BodyLine: 1}, nil
	}

	rest := content[len(open):]

	// Empty block: the closing delimiter immediately follows the opening one.
	if bytes.HasPrefix(rest, open) {
		return Block{Raw: []byte{}, Body: rest[len(open):], Present: true, BodyLine: 3}, nil
	}

	closeSeq := []byte(nl + delimiter + nl)
	idx := bytes.Index(rest, closeSeq)
	if idx < 0 {
		// A bare trailing "---" with no final newline still closes the block.
		tail := []byte(nl + delimiter)
		if bytes.HasSuffix(rest, tail) {
			raw := rest[:len(rest)-len(tail)+len(nl)]
			return Block{Raw: raw, Body: []byte{}, Present: true, BodyLine: countLines(content, nl)}, nil
		}
		return Block{}, ErrMissingClosingDelimiter
	}

	raw := rest[:idx+len(nl)]
	body := rest[idx+len(closeSeq):]
	bodyLine := 2 + bytes.Count(raw, []byte(nl)) + 1
	return Block{Raw: raw, Body: body, Present: true, BodyLine: bodyLine}, nil
}

// Parse decodes raw front-matter YAML (without delimiters) into a map.
func Parse(raw []byte) (map[string]any, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return map[string]any{}, nil
	}

	var fields map[string]any
	if err := yaml.Unmarshal(raw, &fields); err != nil {
		return nil, err
	}
	if fields == nil {
		fields = map[string]any{}
	}
	return fields, nil
}

func detectNewline(content []byte) string {
	for i := 0; i+1 < len(content); i++ {
		if content[i] == '\r' && content[i+1] == '\n' {
			return "\r\n"
		}
		if content[i] == '\n' {
			return "\n"
		}
	}
	return "\n"
}

func countLines(content []byte, nl string) int {
	return bytes.Count(content, []byte(nl)) + 1
}
