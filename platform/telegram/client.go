// Package telegram provides a minimal Telegram Bot API client used to
// deliver admin order notifications.
package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client is an HTTP client for the Telegram Bot API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// Config configures the Telegram client.
type Config struct {
	BotToken string
	Timeout  time.Duration
	// BaseURL overrides the Bot API host, used in tests.
	BaseURL string
}

// NewClient creates a new Telegram Bot API client.
func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}

	base := cfg.BaseURL
	if base == "" {
		base = "https://api.telegram.org"
	}

	return &Client{
		baseURL:    fmt.Sprintf("%s/bot%s", base, cfg.BotToken),
		httpClient: &http.Client{Timeout: timeout},
	}
}

type sendMessageRequest struct {
	ChatID int64  `json:"chat_id"`
	Text   string `json:"text"`
}

type apiResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
}

// SendMessage delivers a plain-text message to the given chat.
func (c *Client) SendMessage(ctx context.Context, chatID int64, text string) error {
	if text == "" {
		return fmt.Errorf("message text is required")
	}

	bodyBytes, err := json.Marshal(sendMessageRequest{ChatID: chatID, Text: text})
	if err != nil {
		return fmt.Errorf("failed to marshal sendMessage request: %w", err)
	}

	url := c.baseURL + "/sendMessage"
	request, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(bodyBytes))
	if err != nil {
		return fmt.Errorf("failed to create sendMessage request: %w", err)
	}
	request.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(request)
	if err != nil {
		return fmt.Errorf("sendMessage request failed: %w", err)
	}
	defer resp.Body.Close()

	var result apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("failed to decode sendMessage response: %w (%s)", err, string(body))
	}

	if !result.OK {
		return fmt.Errorf("telegram API rejected sendMessage: %s", result.Description)
	}

	return nil
}
