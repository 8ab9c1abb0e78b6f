package dto

// SessionURLResponse points the browser at a hosted billing page
type SessionURLResponse struct {
	URL string `json:"url"`
}

// WebhookAck acknowledges a billing webhook delivery
type WebhookAck struct {
	Received bool `json:"received"`
}
