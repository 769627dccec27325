package presentation

import (
	"html/template"
	"regexp"
	"strings"
)

// BlockKind is the element a body block renders as.
type BlockKind string

const (
	BlockH2        BlockKind = "h2"
	BlockH3        BlockKind = "h3"
	BlockQuote     BlockKind = "blockquote"
	BlockParagraph BlockKind = "p"
)

type Block struct {
	Kind BlockKind
	Text string
}

var blankLines = regexp.MustCompile(`\n\s*\n`)

// ParseBody splits editorial text into blocks separated by blank lines.
// "## " opens an h2, "### " an h3, "> " a blockquote; anything else is a paragraph.
func ParseBody(content string) []Block {
	if strings.TrimSpace(content) == "" {
		return nil
	}
	var out []Block
	for _, raw := range blankLines.Split(content, -1) {
		b := strings.TrimSpace(raw)
		if b == "" {
			continue
		}
		switch {
		case strings.HasPrefix(b, "### "):
			out = append(out, Block{Kind: BlockH3, Text: strings.TrimPrefix(b, "### ")})
		case strings.HasPrefix(b, "## "):
			out = append(out, Block{Kind: BlockH2, Text: strings.TrimPrefix(b, "## ")})
		case strings.HasPrefix(b, "> "):
			out = append(out, Block{Kind: BlockQuote, Text: strings.TrimPrefix(b, "> ")})
		default:
			out = append(out, Block{Kind: BlockParagraph, Text: b})
		}
	}
	return out
}

// RenderBody renders content as escaped HTML. Empty content renders nothing.
func RenderBody(content string) template.HTML {
	blocks := ParseBody(content)
	if len(blocks) == 0 {
		return ""
	}
	var sb strings.Builder
	sb.WriteString(`<div class="prose">`)
	for _, b := range blocks {
		tag := string(b.Kind)
		sb.WriteString("<" + tag + ">")
		sb.WriteString(template.HTMLEscapeString(b.Text))
		sb.WriteString("</" + tag + ">")
	}
	sb.WriteString("</div>")
	return template.HTML(sb.String())
}
