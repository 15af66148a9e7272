// Package telegram delivers order notifications through the Telegram Bot API.
package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-faster/errors"
)

// ErrNotConfigured distinguishes missing bot credentials (a deployment
// problem) from a delivery failure (a transient upstream problem).
var ErrNotConfigured = errors.New("telegram bot token or chat id is not configured")

const defaultBaseURL = "https://api.telegram.org"

// Config holds the sink's credentials and, for tests, API overrides.
type Config struct {
	BotToken string
	ChatID   string

	// BaseURL overrides the Telegram API host. Empty means production.
	BaseURL string
	// Client overrides the HTTP client. Nil means a client with a sane timeout.
	Client *http.Client
}

// Sink sends plain-text messages to a fixed chat.
type Sink struct {
	token   string
	chatID  string
	baseURL string
	client  *http.Client
}

// New creates a Sink. Credentials are not validated here; Send reports
// ErrNotConfigured when they are missing so a misconfigured deployment fails
// on use, not on boot.
func New(cfg Config) *Sink {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	client := cfg.Client
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &Sink{
		token:   cfg.BotToken,
		chatID:  cfg.ChatID,
		baseURL: baseURL,
		client:  client,
	}
}

// Configured reports whether both credentials are present.
func (s *Sink) Configured() bool {
	return s.token != "" && s.chatID != ""
}

type sendMessageRequest struct {
	ChatID                string `json:"chat_id"`
	Text                  string `json:"text"`
	DisableWebPagePreview bool   `json:"disable_web_page_preview"`
}

type sendMessageResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
}

// Send delivers one message. No parse mode is set: order messages carry
// arbitrary customer text and markup parsing would reject some of it.
func (s *Sink) Send(ctx context.Context, text string) error {
	if !s.Configured() {
		return ErrNotConfigured
	}

	body, err := json.Marshal(sendMessageRequest{
		ChatID:                s.chatID,
		Text:                  text,
		DisableWebPagePreview: true,
	})
	if err != nil {
		return errors.Wrap(err, "marshal request")
	}

	url := s.baseURL + "/bot" + s.token + "/sendMessage"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return errors.Wrap(err, "build request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return errors.Wrap(err, "send message")
	}
	defer func() { _ = resp.Body.Close() }()

	var result sendMessageResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return errors.Wrapf(err, "decode response (status %d)", resp.StatusCode)
	}
	if !result.OK {
		if result.Description == "" {
			result.Description = "unknown"
		}
		return errors.Errorf("telegram error: %s", result.Description)
	}
	return nil
}
