// Package extract turns PDF documents into plain text. Parsing is delegated
// to a Renderer; this package schedules pages on a bounded worker pool and
// assembles the result in page order.
package extract

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/pratik-mahalle/docbrief/internal/pkg/logger"
	"github.com/pratik-mahalle/docbrief/internal/pkg/metrics"
)

// NoPagesText is returned as the document text when it has zero pages
const NoPagesText = "The PDF document contains no pages."

// Defaults applied by New
const (
	DefaultConcurrency = 4
	DefaultPageTimeout = 30 * time.Second
)

// Renderer opens documents
type Renderer interface {
	Open(ctx context.Context, data []byte) (Document, error)
}

// Document is an opened document. PageText may be called concurrently for
// different pages; page numbers start at 1.
type Document interface {
	NumPages() int
	PageText(ctx context.Context, page int) ([]string, error)
}

// Options configures an Extractor
type Options struct {
	Renderer    Renderer
	Concurrency int
	PageTimeout time.Duration
	Logger      *logger.Logger
}

// Extractor extracts text page by page with bounded parallelism
type Extractor struct {
	renderer    Renderer
	concurrency int
	pageTimeout time.Duration
	logger      *logger.Logger
}

// Result is the outcome of a whole-document extraction
type Result struct {
	Text        string `json:"text"`
	Pages       int    `json:"pages"`
	FailedPages []int  `json:"failed_pages,omitempty"`
}

// Error reports a failure that prevented any page from being extracted
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("failed to extract text from PDF: %s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// PageErrorMarker is substituted for the text of a page that failed
func PageErrorMarker(page int) string {
	return fmt.Sprintf("[Error extracting page %d]", page)
}

// New creates an Extractor. Zero Concurrency or PageTimeout use the defaults.
func New(opts Options) *Extractor {
	if opts.Concurrency < 1 {
		opts.Concurrency = DefaultConcurrency
	}
	if opts.PageTimeout <= 0 {
		opts.PageTimeout = DefaultPageTimeout
	}
	if opts.Logger == nil {
		opts.Logger = logger.Nop()
	}
	return &Extractor{
		renderer:    opts.Renderer,
		concurrency: opts.Concurrency,
		pageTimeout: opts.PageTimeout,
		logger:      opts.Logger,
	}
}

// Extract returns the concatenated text of every page. A failing page is
// replaced by PageErrorMarker; a failure before the first page is an *Error.
func (e *Extractor) Extract(ctx context.Context, data []byte) (*Result, error) {
	start := time.Now()
	defer func() { metrics.RecordExtractDuration(time.Since(start)) }()

	if e.renderer == nil {
		return nil, &Error{Op: "open", Err: fmt.Errorf("no renderer configured")}
	}
	if len(data) == 0 {
		return nil, &Error{Op: "open", Err: fmt.Errorf("empty document")}
	}

	doc, err := e.open(ctx, data)
	if err != nil {
		return nil, &Error{Op: "open", Err: err}
	}

	n := doc.NumPages()
	if n <= 0 {
		return &Result{Text: NoPagesText}, nil
	}

	pages := make([]string, n)
	failed := make([]bool, n)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.concurrency)
	for i := 1; i <= n; i++ {
		if gctx.Err() != nil {
			break
		}
		page := i
		g.Go(func() error {
			text, err := e.page(gctx, doc, page)
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				e.logger.WithFields(map[string]interface{}{
					"page":  page,
					"error": err.Error(),
				}).Warn("Page extraction failed")
				metrics.RecordExtractPage("error")
				failed[page-1] = true
				text = PageErrorMarker(page)
			} else {
				metrics.RecordExtractPage("ok")
			}
			pages[page-1] = text
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, &Error{Op: "extract pages", Err: err}
	}
	if err := ctx.Err(); err != nil {
		return nil, &Error{Op: "extract pages", Err: err}
	}

	res := &Result{Text: strings.TrimSpace(strings.Join(pages, "\n")), Pages: n}
	for i, f := range failed {
		if f {
			res.FailedPages = append(res.FailedPages, i+1)
		}
	}
	return res, nil
}

func (e *Extractor) open(ctx context.Context, data []byte) (doc Document, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("renderer panic: %v", r)
		}
	}()
	return e.renderer.Open(ctx, data)
}

// page extracts a single page under the per-page timeout. The renderer may
// ignore ctx, so the call runs in its own goroutine and is abandoned on timeout.
func (e *Extractor) page(ctx context.Context, doc Document, page int) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, e.pageTimeout)
	defer cancel()

	type result struct {
		fragments []string
		err       error
	}
	done := make(chan result, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- result{err: fmt.Errorf("panic: %v", r)}
			}
		}()
		fragments, err := doc.PageText(ctx, page)
		done <- result{fragments: fragments, err: err}
	}()

	select {
	case r := <-done:
		if r.err != nil {
			return "", r.err
		}
		return strings.Join(r.fragments, " "), nil
	case <-ctx.Done():
		return "", fmt.Errorf("page %d: %w", page, ctx.Err())
	}
}
