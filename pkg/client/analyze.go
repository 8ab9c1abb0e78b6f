package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
)

// MaxTextLength is the number of characters sent for analysis
const MaxTextLength = 100000

// NoSummaryText replaces an empty summary
const NoSummaryText = "No summary was generated."

// TruncateText returns the first max characters of text
func TruncateText(text string, max int) string {
	if max < 0 || len(text) <= max {
		return text
	}
	n := 0
	for i := range text {
		if n == max {
			return text[:i]
		}
		n++
	}
	return text
}

// Analyze sends extracted text for summarization. Text beyond
// MaxTextLength characters is dropped before sending.
func (c *Client) Analyze(ctx context.Context, text string) (string, error) {
	var resp AnalyzeResponse
	req := AnalyzeRequest{Text: TruncateText(text, MaxTextLength)}
	if err := c.doRequest(ctx, http.MethodPost, "/api/v1/analyze", req, &resp); err != nil {
		return "", err
	}
	if resp.Summary == "" {
		return NoSummaryText, nil
	}
	return resp.Summary, nil
}

// Extract uploads a PDF for server-side text extraction
func (c *Client) Extract(ctx context.Context, filename string, r io.Reader) (*ExtractResponse, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return nil, fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := io.Copy(part, r); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", filename, err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("failed to finish upload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/v1/extract", &body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var resp ExtractResponse
	if err := c.do(req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
