package extract

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// LedongthucRenderer renders documents with github.com/ledongthuc/pdf
type LedongthucRenderer struct{}

// NewLedongthucRenderer returns the production renderer
func NewLedongthucRenderer() *LedongthucRenderer {
	return &LedongthucRenderer{}
}

// Open parses the document trailer and page tree
func (LedongthucRenderer) Open(_ context.Context, data []byte) (Document, error) {
	r, err := newReader(data)
	if err != nil {
		return nil, err
	}
	return &ledongthucDocument{data: data, pages: r.NumPage()}, nil
}

// ledongthucDocument opens a fresh reader per page; pdf.Reader is not
// safe for concurrent use.
type ledongthucDocument struct {
	data  []byte
	pages int
}

func (d *ledongthucDocument) NumPages() int { return d.pages }

func (d *ledongthucDocument) PageText(_ context.Context, n int) ([]string, error) {
	r, err := newReader(d.data)
	if err != nil {
		return nil, err
	}

	p := r.Page(n)
	if p.V.IsNull() {
		return nil, fmt.Errorf("page %d not found", n)
	}

	text, err := p.GetPlainText(nil)
	if err != nil {
		return nil, fmt.Errorf("page %d: %w", n, err)
	}

	var fragments []string
	for _, line := range strings.Split(text, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			fragments = append(fragments, line)
		}
	}
	return fragments, nil
}

func newReader(data []byte) (r *pdf.Reader, err error) {
	// the parser panics on some malformed inputs
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("malformed PDF: %v", rec)
		}
	}()

	r, err = pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}
	return r, nil
}
