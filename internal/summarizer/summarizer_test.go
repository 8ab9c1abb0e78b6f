package summarizer

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pratik-mahalle/docbrief/internal/config"
)

func newTestServer(t *testing.T, status int, body string) (*httptest.Server, *[]map[string]interface{}) {
	t.Helper()
	var requests []map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))

		var req map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		requests = append(requests, req)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, &requests
}

func TestOpenAI_Summarize(t *testing.T) {
	srv, requests := newTestServer(t, http.StatusOK, `{
		"id": "chatcmpl-1",
		"object": "chat.completion",
		"created": 1700000000,
		"model": "gpt-4o-mini",
		"choices": [{"index": 0, "message": {"role": "assistant", "content": "  # Report\n## Findings\nAll good.  "}, "finish_reason": "stop"}]
	}`)

	s := NewOpenAI(config.SummarizerConfig{
		APIKey:    "sk-test",
		BaseURL:   srv.URL + "/v1/",
		MaxTokens: 100,
		Timeout:   5 * time.Second,
	})

	summary, err := s.Summarize(context.Background(), "quarterly report text")
	require.NoError(t, err)
	assert.Equal(t, "# Report\n## Findings\nAll good.", summary)

	require.Len(t, *requests, 1)
	req := (*requests)[0]
	assert.Equal(t, "gpt-4o-mini", req["model"])
	msgs := req["messages"].([]interface{})
	require.Len(t, msgs, 2)
	assert.Equal(t, "quarterly report text", msgs[1].(map[string]interface{})["content"])
}

func TestOpenAI_SummarizeNoChoices(t *testing.T) {
	srv, _ := newTestServer(t, http.StatusOK, `{"id":"x","object":"chat.completion","choices":[]}`)
	s := NewOpenAI(config.SummarizerConfig{APIKey: "sk-test", BaseURL: srv.URL + "/v1"})

	summary, err := s.Summarize(context.Background(), "text")
	require.NoError(t, err)
	assert.Empty(t, summary)
}

func TestOpenAI_SummarizeUpstreamError(t *testing.T) {
	srv, _ := newTestServer(t, http.StatusTooManyRequests,
		`{"error":{"message":"Rate limit reached","type":"requests","code":"rate_limit_exceeded"}}`)
	s := NewOpenAI(config.SummarizerConfig{APIKey: "sk-test", BaseURL: srv.URL + "/v1"})

	_, err := s.Summarize(context.Background(), "text")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Rate limit reached")
	assert.True(t, IsRateLimited(err))
}

func TestIsRateLimited(t *testing.T) {
	srv, _ := newTestServer(t, http.StatusInternalServerError,
		`{"error":{"message":"boom","type":"server_error"}}`)
	s := NewOpenAI(config.SummarizerConfig{APIKey: "sk-test", BaseURL: srv.URL + "/v1"})

	_, err := s.Summarize(context.Background(), "text")
	require.Error(t, err)
	assert.False(t, IsRateLimited(err))
	assert.False(t, IsRateLimited(nil))
}
