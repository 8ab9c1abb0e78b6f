package extract

import (
	"context"
	stderrors "errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRenderer struct {
	doc     *fakeDocument
	openErr error
}

func (r *fakeRenderer) Open(context.Context, []byte) (Document, error) {
	if r.openErr != nil {
		return nil, r.openErr
	}
	return r.doc, nil
}

type fakeDocument struct {
	pages  [][]string
	fail   map[int]error
	panics map[int]bool
	block  map[int]bool
	delay  time.Duration

	inFlight    int32
	maxInFlight int32
	mu          sync.Mutex
	seen        []int
}

func (d *fakeDocument) NumPages() int { return len(d.pages) }

func (d *fakeDocument) PageText(ctx context.Context, n int) ([]string, error) {
	cur := atomic.AddInt32(&d.inFlight, 1)
	defer atomic.AddInt32(&d.inFlight, -1)
	for {
		old := atomic.LoadInt32(&d.maxInFlight)
		if cur <= old || atomic.CompareAndSwapInt32(&d.maxInFlight, old, cur) {
			break
		}
	}

	d.mu.Lock()
	d.seen = append(d.seen, n)
	d.mu.Unlock()

	if d.delay > 0 {
		time.Sleep(d.delay)
	}
	if d.block[n] {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if d.panics[n] {
		panic("corrupt content stream")
	}
	if err := d.fail[n]; err != nil {
		return nil, err
	}
	return d.pages[n-1], nil
}

func newExtractor(doc *fakeDocument, concurrency int, timeout time.Duration) *Extractor {
	return New(Options{
		Renderer:    &fakeRenderer{doc: doc},
		Concurrency: concurrency,
		PageTimeout: timeout,
	})
}

func TestExtract_JoinsPagesInOrder(t *testing.T) {
	doc := &fakeDocument{pages: [][]string{
		{"Hello", "world"},
		{"second", "page"},
		{"third"},
	}}

	res, err := newExtractor(doc, 3, time.Second).Extract(context.Background(), []byte("%PDF"))
	require.NoError(t, err)

	assert.Equal(t, "Hello world\nsecond page\nthird", res.Text)
	assert.Equal(t, 3, res.Pages)
	assert.Empty(t, res.FailedPages)
}

func TestExtract_FailedPageBecomesMarker(t *testing.T) {
	doc := &fakeDocument{
		pages: [][]string{{"one"}, {"two"}, {"three"}},
		fail:  map[int]error{2: fmt.Errorf("bad font")},
	}

	res, err := newExtractor(doc, 2, time.Second).Extract(context.Background(), []byte("%PDF"))
	require.NoError(t, err)

	assert.Equal(t, "one\n[Error extracting page 2]\nthree", res.Text)
	assert.Equal(t, []int{2}, res.FailedPages)
}

func TestExtract_PanickingPageBecomesMarker(t *testing.T) {
	doc := &fakeDocument{
		pages:  [][]string{{"one"}, {"two"}},
		panics: map[int]bool{1: true},
	}

	res, err := newExtractor(doc, 1, time.Second).Extract(context.Background(), []byte("%PDF"))
	require.NoError(t, err)
	assert.Equal(t, "[Error extracting page 1]\ntwo", res.Text)
}

func TestExtract_SlowPageTimesOut(t *testing.T) {
	doc := &fakeDocument{
		pages: [][]string{{"one"}, {"two"}},
		block: map[int]bool{2: true},
	}

	res, err := newExtractor(doc, 2, 50*time.Millisecond).Extract(context.Background(), []byte("%PDF"))
	require.NoError(t, err)
	assert.Equal(t, "one\n[Error extracting page 2]", res.Text)
	assert.Equal(t, []int{2}, res.FailedPages)
}

func TestExtract_ZeroPagesReturnsSentinel(t *testing.T) {
	res, err := newExtractor(&fakeDocument{}, 1, time.Second).Extract(context.Background(), []byte("%PDF"))
	require.NoError(t, err)
	assert.Equal(t, NoPagesText, res.Text)
	assert.Zero(t, res.Pages)
}

func TestExtract_OpenFailure(t *testing.T) {
	ex := New(Options{Renderer: &fakeRenderer{openErr: fmt.Errorf("invalid header")}})

	_, err := ex.Extract(context.Background(), []byte("not a pdf"))
	require.Error(t, err)

	var extractErr *Error
	require.True(t, stderrors.As(err, &extractErr))
	assert.Equal(t, "open", extractErr.Op)
	assert.Contains(t, err.Error(), "invalid header")
}

func TestExtract_EmptyInput(t *testing.T) {
	_, err := newExtractor(&fakeDocument{}, 1, time.Second).Extract(context.Background(), nil)

	var extractErr *Error
	assert.True(t, stderrors.As(err, &extractErr))
}

func TestExtract_NoRenderer(t *testing.T) {
	_, err := New(Options{}).Extract(context.Background(), []byte("%PDF"))
	assert.Error(t, err)
}

func TestExtract_RespectsConcurrencyLimit(t *testing.T) {
	pages := make([][]string, 20)
	for i := range pages {
		pages[i] = []string{fmt.Sprintf("p%d", i+1)}
	}
	doc := &fakeDocument{pages: pages, delay: 5 * time.Millisecond}

	res, err := newExtractor(doc, 3, time.Second).Extract(context.Background(), []byte("%PDF"))
	require.NoError(t, err)

	assert.Equal(t, 20, res.Pages)
	assert.LessOrEqual(t, atomic.LoadInt32(&doc.maxInFlight), int32(3))
	assert.Len(t, doc.seen, 20)
}

func TestExtract_CanceledContext(t *testing.T) {
	doc := &fakeDocument{pages: [][]string{{"one"}, {"two"}}}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newExtractor(doc, 1, time.Second).Extract(ctx, []byte("%PDF"))
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNew_Defaults(t *testing.T) {
	ex := New(Options{})
	assert.Equal(t, DefaultConcurrency, ex.concurrency)
	assert.Equal(t, DefaultPageTimeout, ex.pageTimeout)
}

func TestLedongthucRenderer_RejectsGarbage(t *testing.T) {
	ex := New(Options{Renderer: NewLedongthucRenderer()})

	_, err := ex.Extract(context.Background(), []byte("definitely not a pdf"))

	var extractErr *Error
	require.True(t, stderrors.As(err, &extractErr))
	assert.Equal(t, "open", extractErr.Op)
}
