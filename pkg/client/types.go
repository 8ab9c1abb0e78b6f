package client

import "time"

// AnalyzeRequest is the body of POST /api/v1/analyze
type AnalyzeRequest struct {
	Text string `json:"text"`
}

// AnalyzeResponse is the body of a successful analysis
type AnalyzeResponse struct {
	Summary string `json:"summary"`
}

// ExtractResponse is the body of a successful server-side extraction
type ExtractResponse struct {
	Text        string `json:"text"`
	Pages       int    `json:"pages"`
	FailedPages []int  `json:"failed_pages,omitempty"`
}

// Access is the access gate verdict for the current session
type Access struct {
	Verdict    string `json:"verdict"` // unauthenticated, needs_subscription, allowed
	UserID     string `json:"user_id,omitempty"`
	RedirectTo string `json:"redirect_to,omitempty"`
}

// Allowed reports whether features are unlocked
func (a *Access) Allowed() bool {
	return a.Verdict == "allowed"
}

// Subscription is the current user's subscription state
type Subscription struct {
	Status           string     `json:"status"`
	IsSubscribed     bool       `json:"is_subscribed"`
	CurrentPeriodEnd *time.Time `json:"current_period_end,omitempty"`
	Interval         string     `json:"interval,omitempty"`
	PlanID           string     `json:"plan_id,omitempty"`
}

// SessionURL is a hosted billing page to open in a browser
type SessionURL struct {
	URL string `json:"url"`
}

// HealthResponse is the body of /healthz
type HealthResponse struct {
	Status string `json:"status"`
}
