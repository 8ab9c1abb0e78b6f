package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/pratik-mahalle/docbrief/pkg/client"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"
)

const (
	ansiBold      = "\033[1m"
	ansiUnderline = "\033[4m"
	ansiReset     = "\033[0m"
)

// Table renders key/value rows aligned in two columns.
type Table struct {
	rows   [][2]string
	writer io.Writer
}

// NewTable creates a table writing to w.
func NewTable(w io.Writer) *Table {
	return &Table{writer: w}
}

// AddRow adds a row to the table.
func (t *Table) AddRow(key, value string) {
	t.rows = append(t.rows, [2]string{key, value})
}

// Render writes the table.
func (t *Table) Render() {
	w := tabwriter.NewWriter(t.writer, 0, 0, 2, ' ', 0)
	for _, row := range t.rows {
		fmt.Fprintf(w, "%s:\t%s\n", row[0], row[1])
	}
	w.Flush()
}

// printOutput prints data in the requested structured format.
func printOutput(w io.Writer, data interface{}) error {
	switch getOutputFormat() {
	case "yaml":
		return printYAML(w, data)
	default:
		return printJSON(w, data)
	}
}

func printJSON(w io.Writer, data interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

func printYAML(w io.Writer, data interface{}) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	defer enc.Close()
	return enc.Encode(data)
}

// useColor reports whether styled output should be written to w.
func useColor(w io.Writer) bool {
	if noColor || os.Getenv("NO_COLOR") != "" {
		return false
	}
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// renderBlocks writes summary blocks as text. Headings are bold and
// underlined and subheadings bold when color is on; otherwise they keep
// their markdown markers.
func renderBlocks(w io.Writer, blocks []client.Block, color bool) {
	for i, b := range blocks {
		if i > 0 && b.Kind != client.BlockParagraph {
			fmt.Fprintln(w)
		}
		switch b.Kind {
		case client.BlockHeading:
			if color {
				fmt.Fprintln(w, ansiBold+ansiUnderline+b.Text+ansiReset)
			} else {
				fmt.Fprintln(w, "# "+b.Text)
			}
		case client.BlockSubheading:
			if color {
				fmt.Fprintln(w, ansiBold+b.Text+ansiReset)
			} else {
				fmt.Fprintln(w, "## "+b.Text)
			}
		default:
			fmt.Fprintln(w, b.Text)
		}
	}
}

// formatAccess returns a verdict with a visual indicator.
func formatAccess(verdict string) string {
	switch strings.ToLower(verdict) {
	case "allowed":
		return "[+] " + verdict
	case "needs_subscription":
		return "[*] " + verdict
	case "unauthenticated":
		return "[-] " + verdict
	default:
		return verdict
	}
}
