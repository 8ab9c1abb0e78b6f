package services

import (
	"context"
	"time"

	"github.com/pratik-mahalle/docbrief/internal/pkg/errors"
	"github.com/pratik-mahalle/docbrief/internal/pkg/logger"
	"github.com/pratik-mahalle/docbrief/internal/pkg/metrics"
	"github.com/pratik-mahalle/docbrief/internal/summarizer"
	"github.com/pratik-mahalle/docbrief/pkg/client"
)

// SummaryCache stores summaries by input text
type SummaryCache interface {
	Get(ctx context.Context, text string) (string, bool, error)
	Set(ctx context.Context, text, summary string) error
}

// SummaryService backs the analysis endpoint
type SummaryService struct {
	summarizer summarizer.Summarizer
	cache      SummaryCache
	logger     *logger.Logger
}

// NewSummaryService creates a new summary service. cache may be nil.
func NewSummaryService(s summarizer.Summarizer, cache SummaryCache, log *logger.Logger) *SummaryService {
	return &SummaryService{
		summarizer: s,
		cache:      cache,
		logger:     log,
	}
}

// Summarize returns a markdown summary of the first client.MaxTextLength
// characters of text. An empty summary is returned as-is.
func (s *SummaryService) Summarize(ctx context.Context, text string) (string, error) {
	text = client.TruncateText(text, client.MaxTextLength)

	if s.cache != nil {
		summary, ok, err := s.cache.Get(ctx, text)
		if err != nil {
			s.logger.WarnWithErr(err, "Summary cache lookup failed")
		} else if ok {
			metrics.RecordSummary("cached", 0)
			return summary, nil
		}
	}

	start := time.Now()
	summary, err := s.summarizer.Summarize(ctx, text)
	if err != nil {
		metrics.RecordSummary("error", time.Since(start))
		if summarizer.IsRateLimited(err) {
			s.logger.WarnWithErr(err, "Summarizer rate limited")
			return "", errors.RateLimited("Summarization is busy, please try again shortly")
		}
		s.logger.ErrorWithErr(err, "Summarization failed")
		return "", errors.ProviderAPIError("summarizer", err)
	}
	metrics.RecordSummary("ok", time.Since(start))

	if s.cache != nil && summary != "" {
		if err := s.cache.Set(ctx, text, summary); err != nil {
			s.logger.WarnWithErr(err, "Failed to cache summary")
		}
	}
	return summary, nil
}
