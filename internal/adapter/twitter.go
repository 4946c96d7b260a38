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

// Tweets are capped at 280 characters; longer content is truncated with an
// ellipsis rather than rejected, since a shortened post is still useful.
const tweetMaxRunes = 280

// TwitterAdapter publishes posts as tweets through an HTTP API.
// The base URL is injected from config so tests can point to a local mock.
type TwitterAdapter struct {
	apiURL      string
	bearerToken string
	httpClient  *http.Client
}

func NewTwitterAdapter(apiURL, bearerToken string, timeout time.Duration) *TwitterAdapter {
	return &TwitterAdapter{
		apiURL:      apiURL,
		bearerToken: bearerToken,
		httpClient:  &http.Client{Timeout: timeout},
	}
}

type tweetRequest struct {
	Text string `json:"text"`
}

type tweetResponse struct {
	Data struct {
		ID string `json:"id"`
	} `json:"data"`
}

func (a *TwitterAdapter) Publish(ctx context.Context, p *domain.Post) (*Result, error) {
	text := truncateRunes(p.Content, tweetMaxRunes)

	body, err := json.Marshal(tweetRequest{Text: text})
	if err != nil {
		return nil, fmt.Errorf("marshal tweet: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.apiURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if a.bearerToken != "" {
		req.Header.Set("Authorization", "Bearer "+a.bearerToken)
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("post tweet: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		return nil, fmt.Errorf("unexpected twitter status: %d", resp.StatusCode)
	}

	var tr tweetResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return nil, fmt.Errorf("decode tweet response: %w", err)
	}

	return &Result{ExternalRef: tr.Data.ID}, nil
}

// truncateRunes shortens s to at most max runes, appending "…" when cut.
func truncateRunes(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-1]) + "…"
}

// compile-time check that TwitterAdapter implements Adapter
var _ Adapter = (*TwitterAdapter)(nil)
