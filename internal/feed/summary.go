package feed

import (
	"strings"

	"github.com/yuin/goldmark"
	gmast "github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

const maxSummaryRunes = 280

// Summarize extracts the first paragraph of a Markdown body as plain text,
// truncated to a reasonable entry summary length.
func Summarize(body string) string {
	src := []byte(body)
	md := goldmark.New()
	root := md.Parser().Parse(text.NewReader(src))

	var summary string
	_ = gmast.Walk(root, func(n gmast.Node, entering bool) (gmast.WalkStatus, error) {
		if !entering {
			return gmast.WalkContinue, nil
		}
		if _, ok := n.(*gmast.Paragraph); !ok {
			return gmast.WalkContinue, nil
		}
		summary = plainText(n, src)
		return gmast.WalkStop, nil
	})

	summary = strings.Join(strings.Fields(summary), " ")
	if runes := []rune(summary); len(runes) > maxSummaryRunes {
		summary = strings.TrimSpace(string(runes[:maxSummaryRunes])) + "…"
	}
	return summary
}

// plainText flattens the text content of a node, skipping markup.
func plainText(n gmast.Node, src []byte) string {
	var b strings.Builder
	_ = gmast.Walk(n, func(child gmast.Node, entering bool) (gmast.WalkStatus, error) {
		if !entering {
			return gmast.WalkContinue, nil
		}
		if t, ok := child.(*gmast.Text); ok {
			b.Write(t.Segment.Value(src))
			if t.SoftLineBreak() || t.HardLineBreak() {
				b.WriteByte(' ')
			}
		}
		return gmast.WalkContinue, nil
	})
	return b.String()
}
