package client

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseSummary(t *testing.T) {
	summary := "# Annual Report\n\n## Revenue\nRevenue grew 12%.\r\n   \n#NoSpace heading\n### Deep\nClosing remarks."

	got := ParseSummary(summary)

	assert.Equal(t, []Block{
		{Kind: BlockHeading, Text: "Annual Report"},
		{Kind: BlockSubheading, Text: "Revenue"},
		{Kind: BlockParagraph, Text: "Revenue grew 12%."},
		{Kind: BlockParagraph, Text: "#NoSpace heading"},
		{Kind: BlockParagraph, Text: "### Deep"},
		{Kind: BlockParagraph, Text: "Closing remarks."},
	}, got)
}

func TestParseSummary_Empty(t *testing.T) {
	assert.Empty(t, ParseSummary(""))
	assert.Empty(t, ParseSummary("\n \n"))
}
