package services

import (
	"context"
	"fmt"
	"strings"
	"testing"

	openai "github.com/sashabaranov/go-openai"

	"github.com/pratik-mahalle/docbrief/internal/pkg/errors"
	"github.com/pratik-mahalle/docbrief/internal/pkg/logger"
	"github.com/pratik-mahalle/docbrief/internal/testutil"
	"github.com/pratik-mahalle/docbrief/pkg/client"
)

type memoryCache struct {
	entries map[string]string
	getErr  error
}

func (c *memoryCache) Get(ctx context.Context, text string) (string, bool, error) {
	if c.getErr != nil {
		return "", false, c.getErr
	}
	s, ok := c.entries[text]
	return s, ok, nil
}

func (c *memoryCache) Set(ctx context.Context, text, summary string) error {
	c.entries[text] = summary
	return nil
}

func TestSummaryService_Summarize(t *testing.T) {
	mock := &testutil.MockSummarizer{Summary: "# Title\nBody"}
	service := NewSummaryService(mock, nil, logger.Nop())

	got, err := service.Summarize(context.Background(), "some document")
	if err != nil {
		t.Fatalf("Summarize() error = %v", err)
	}
	if got != "# Title\nBody" {
		t.Errorf("summary = %q", got)
	}
}

func TestSummaryService_TruncatesInput(t *testing.T) {
	mock := &testutil.MockSummarizer{Summary: "ok"}
	service := NewSummaryService(mock, nil, logger.Nop())

	long := strings.Repeat("é", client.MaxTextLength+500)
	if _, err := service.Summarize(context.Background(), long); err != nil {
		t.Fatal(err)
	}
	if n := len([]rune(mock.Inputs[0])); n != client.MaxTextLength {
		t.Errorf("summarizer received %d characters, want %d", n, client.MaxTextLength)
	}
}

func TestSummaryService_ProviderError(t *testing.T) {
	mock := &testutil.MockSummarizer{Err: fmt.Errorf("upstream 500")}
	service := NewSummaryService(mock, nil, logger.Nop())

	_, err := service.Summarize(context.Background(), "text")
	if !errors.HasCode(err, errors.ErrCodeProviderAPI) {
		t.Errorf("error = %v, want provider error", err)
	}
}

func TestSummaryService_Cache(t *testing.T) {
	mock := &testutil.MockSummarizer{Summary: "cached summary"}
	cache := &memoryCache{entries: map[string]string{}}
	service := NewSummaryService(mock, cache, logger.Nop())
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		got, err := service.Summarize(ctx, "same text")
		if err != nil || got != "cached summary" {
			t.Fatalf("Summarize() = %q, %v", got, err)
		}
	}
	if len(mock.Inputs) != 1 {
		t.Errorf("summarizer calls = %d, want 1", len(mock.Inputs))
	}

	// empty summaries are not cached
	mock.Summary = ""
	_, _ = service.Summarize(ctx, "other text")
	if _, ok := cache.entries["other text"]; ok {
		t.Error("empty summary should not be cached")
	}

	// a failing cache falls through to the summarizer
	cache.getErr = fmt.Errorf("redis down")
	mock.Summary = "fresh"
	got, err := service.Summarize(ctx, "same text")
	if err != nil || got != "fresh" {
		t.Errorf("Summarize() with broken cache = %q, %v", got, err)
	}
}

type rateLimitedSummarizer struct{}

func (rateLimitedSummarizer) Summarize(ctx context.Context, text string) (string, error) {
	return "", fmt.Errorf("chat completion: %w", &openai.APIError{HTTPStatusCode: 429, Message: "Rate limit reached"})
}

func TestSummaryService_RateLimited(t *testing.T) {
	service := NewSummaryService(rateLimitedSummarizer{}, nil, logger.Nop())

	_, err := service.Summarize(context.Background(), "text")
	if !errors.HasCode(err, errors.ErrCodeRateLimited) {
		t.Errorf("error = %v, want rate limited", err)
	}
}
