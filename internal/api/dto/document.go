package dto

// AnalyzeRequest is the body of POST /api/v1/analyze
type AnalyzeRequest struct {
	Text string `json:"text" validate:"notblank"`
}

// AnalyzeResponse carries the markdown summary
type AnalyzeResponse struct {
	Summary string `json:"summary"`
}

// ExtractResponse is the result of a server-side extraction
type ExtractResponse struct {
	Text        string `json:"text"`
	Pages       int    `json:"pages"`
	FailedPages []int  `json:"failed_pages,omitempty"`
}
