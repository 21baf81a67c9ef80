package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// PushClient talks to the push-delivery collaborator: it accepts a set of
// opaque device tokens plus a title/body pair and reports per-token results.
type PushClient struct {
	endpoint string
	apiKey   string
	client   *http.Client
}

type pushRequest struct {
	Tokens []string `json:"tokens"`
	Title  string   `json:"title"`
	Body   string   `json:"body"`
}

// PushResult is the delivery outcome for one device token.
type PushResult struct {
	Token string `json:"token"`
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

type pushResponse struct {
	Results []PushResult `json:"results"`
}

// NewPushClient creates a client for the given endpoint. An empty endpoint
// yields a disabled client: Send reports every token as undelivered.
func NewPushClient(endpoint, apiKey string) *PushClient {
	return &PushClient{
		endpoint: endpoint,
		apiKey:   apiKey,
		client:   &http.Client{Timeout: 10 * time.Second},
	}
}

// Enabled reports whether an endpoint is configured.
func (c *PushClient) Enabled() bool {
	return c.endpoint != ""
}

// Send posts the notification to the push endpoint and returns the per-token
// results.
func (c *PushClient) Send(ctx context.Context, tokens []string, title, body string) ([]PushResult, error) {
	if !c.Enabled() {
		return nil, fmt.Errorf("push delivery is not configured")
	}

	payload, err := json.Marshal(pushRequest{Tokens: tokens, Title: title, Body: body})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal push payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewBuffer(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create push request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send push request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("push endpoint returned status %d", resp.StatusCode)
	}

	var decoded pushResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("failed to decode push response: %w", err)
	}

	return decoded.Results, nil
}
