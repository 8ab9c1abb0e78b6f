package client

import (
	"context"
	"net/http"
)

// Access returns the access gate verdict for the current session
func (c *Client) Access(ctx context.Context) (*Access, error) {
	var access Access
	if err := c.doRequest(ctx, http.MethodGet, "/api/v1/access", nil, &access); err != nil {
		return nil, err
	}
	return &access, nil
}

// Subscription returns the current user's subscription
func (c *Client) Subscription(ctx context.Context) (*Subscription, error) {
	var sub Subscription
	if err := c.doRequest(ctx, http.MethodGet, "/api/v1/billing/subscription", nil, &sub); err != nil {
		return nil, err
	}
	return &sub, nil
}

// Checkout starts a subscription checkout and returns the hosted page URL
func (c *Client) Checkout(ctx context.Context) (string, error) {
	var s SessionURL
	if err := c.doRequest(ctx, http.MethodPost, "/api/v1/billing/checkout", nil, &s); err != nil {
		return "", err
	}
	return s.URL, nil
}

// Portal returns the hosted billing portal URL
func (c *Client) Portal(ctx context.Context) (string, error) {
	var s SessionURL
	if err := c.doRequest(ctx, http.MethodPost, "/api/v1/billing/portal", nil, &s); err != nil {
		return "", err
	}
	return s.URL, nil
}
