package client

import "strings"

// BlockKind classifies a rendered summary line
type BlockKind string

const (
	BlockHeading    BlockKind = "heading"
	BlockSubheading BlockKind = "subheading"
	BlockParagraph  BlockKind = "paragraph"
)

// Block is one non-blank line of a summary
type Block struct {
	Kind BlockKind `json:"kind" yaml:"kind"`
	Text string    `json:"text" yaml:"text"`
}

// ParseSummary splits a summary into blocks. Lines starting with "## " are
// subheadings, "# " headings, anything else a paragraph. Blank lines are
// dropped.
func ParseSummary(summary string) []Block {
	var blocks []Block
	for _, line := range strings.Split(summary, "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		switch {
		case strings.HasPrefix(line, "## "):
			blocks = append(blocks, Block{Kind: BlockSubheading, Text: strings.TrimPrefix(line, "## ")})
		case strings.HasPrefix(line, "# "):
			blocks = append(blocks, Block{Kind: BlockHeading, Text: strings.TrimPrefix(line, "# ")})
		default:
			blocks = append(blocks, Block{Kind: BlockParagraph, Text: line})
		}
	}
	return blocks
}
