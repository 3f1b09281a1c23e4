package client

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"

	"github.com/dmitrijs2005/mediabot/internal/client/tenant"
)

// SessionID is the only chat session the webhook is ever given.
const SessionID = "default"

type WebhookClient struct {
	url  string
	http *http.Client
}

func NewWebhookClient(url string, hc *http.Client) *WebhookClient {
	if hc == nil {
		hc = &http.Client{}
	}
	return &WebhookClient{url: url, http: hc}
}

func (w *WebhookClient) Send(ctx context.Context, tenantID, message string) (*ChatReply, error) {
	headers, err := tenant.Headers(tenantID)
	if err != nil {
		return nil, err
	}

	b, err := json.Marshal(map[string]string{
		"business_id": tenantID,
		"message":     message,
		"session_id":  SessionID,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	req.Header = headers

	var resp struct {
		Response   string `json:"response"`
		TokensUsed int    `json:"tokens_used"`
	}
	if err := do(w.http, req, &resp); err != nil {
		return nil, err
	}
	return &ChatReply{Response: resp.Response, TokensUsed: resp.TokensUsed}, nil
}
