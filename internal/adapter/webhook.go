package adapter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/pulsefeed/autopub/internal/domain"
)

// WebhookAdapter delivers posts by POSTing JSON to a configured URL.
// Used as the staging/dashboard-preview target; any endpoint that answers
// 202 Accepted with a messageId works.
type WebhookAdapter struct {
	url        string
	httpClient *http.Client
}

func NewWebhookAdapter(url string, timeout time.Duration) *WebhookAdapter {
	return &WebhookAdapter{
		url:        url,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type webhookRequest struct {
	Title    string `json:"title"`
	Content  string `json:"content"`
	Platform string `json:"platform"`
}

type webhookResponse struct {
	MessageID string `json:"messageId"`
}

func (a *WebhookAdapter) Publish(ctx context.Context, p *domain.Post) (*Result, error) {
	body, err := json.Marshal(webhookRequest{
		Title:    p.Title,
		Content:  p.Content,
		Platform: string(p.Platform),
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusAccepted {
		return nil, fmt.Errorf("unexpected webhook status: %d", resp.StatusCode)
	}

	var wr webhookResponse
	if err := json.NewDecoder(resp.Body).Decode(&wr); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	return &Result{ExternalRef: wr.MessageID}, nil
}

// compile-time check that WebhookAdapter implements Adapter
var _ Adapter = (*WebhookAdapter)(nil)
