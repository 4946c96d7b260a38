package adapter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"
	"unicode/utf8"

	"github.com/pulsefeed/autopub/internal/domain"
)

// Telegram rejects messages over 4096 characters. Unlike tweets we do not
// truncate: a long-form post cut mid-sentence reads broken, so oversized
// content is reported as a failure.
const telegramMaxRunes = 4096

// TelegramAdapter publishes posts to a channel via the Bot API sendMessage
// method. apiURL already contains the bot token path segment.
type TelegramAdapter struct {
	apiURL     string
	chatID     string
	httpClient *http.Client
}

func NewTelegramAdapter(apiURL, chatID string, timeout time.Duration) *TelegramAdapter {
	return &TelegramAdapter{
		apiURL:     apiURL,
		chatID:     chatID,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type telegramRequest struct {
	ChatID string `json:"chat_id"`
	Text   string `json:"text"`
}

type telegramResponse struct {
	OK     bool `json:"ok"`
	Result struct {
		MessageID int64 `json:"message_id"`
	} `json:"result"`
	Description string `json:"description"`
}

func (a *TelegramAdapter) Publish(ctx context.Context, p *domain.Post) (*Result, error) {
	text := p.Content
	if p.Title != "" {
		text = p.Title + "\n\n" + p.Content
	}
	if utf8.RuneCountInString(text) > telegramMaxRunes {
		return nil, domain.ErrContentTooLong
	}

	body, err := json.Marshal(telegramRequest{ChatID: a.chatID, Text: text})
	if err != nil {
		return nil, fmt.Errorf("marshal message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.apiURL+"/sendMessage", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send message: %w", err)
	}
	defer resp.Body.Close()

	var tr telegramResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if resp.StatusCode != http.StatusOK || !tr.OK {
		return nil, fmt.Errorf("telegram error (status %d): %s", resp.StatusCode, tr.Description)
	}

	return &Result{ExternalRef: strconv.FormatInt(tr.Result.MessageID, 10)}, nil
}

// compile-time check that TelegramAdapter implements Adapter
var _ Adapter = (*TelegramAdapter)(nil)
