// Package telegram is a minimal Telegram Bot API client: sending messages
// and managing the webhook.
package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/papercomputeco/relay/pkg/utils"
)

const (
	// DefaultAPIBase is the public Bot API server.
	DefaultAPIBase = "https://api.telegram.org"

	// MaxMessageLength is the longest text sendMessage accepts, in UTF-16
	// code units.
	MaxMessageLength = 4096

	// SecretTokenHeader carries the webhook secret on incoming updates.
	SecretTokenHeader = "X-Telegram-Bot-Api-Secret-Token"

	maxResponseBody = 1 << 20
)

// Config holds configuration for the Bot API client.
type Config struct {
	Token string

	// APIBase defaults to DefaultAPIBase if empty.
	APIBase string

	// Timeout bounds each request. Defaults to 30s.
	Timeout time.Duration

	Logger *slog.Logger
}

// Client calls the Bot API for one bot.
type Client struct {
	token      string
	apiBase    string
	httpClient *http.Client
	logger     *slog.Logger
}

// New creates a Bot API client.
func New(cfg Config) (*Client, error) {
	if cfg.Token == "" {
		return nil, errors.New("telegram: bot token is required")
	}

	c := &Client{
		token:      cfg.Token,
		apiBase:    strings.TrimRight(cfg.APIBase, "/"),
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     cfg.Logger,
	}
	if c.apiBase == "" {
		c.apiBase = DefaultAPIBase
	}
	if c.httpClient.Timeout <= 0 {
		c.httpClient.Timeout = 30 * time.Second
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}

	return c, nil
}

// SendMessage delivers text to chatID, clipped to MaxMessageLength.
func (c *Client) SendMessage(ctx context.Context, chatID int64, text string) error {
	return c.call(ctx, "sendMessage", sendMessageRequest{
		ChatID: chatID,
		Text:   utils.ClipUTF16(text, MaxMessageLength),
	}, nil)
}

// SetWebhook registers webhookURL for updates. A non-empty secret is echoed
// by Telegram in SecretTokenHeader on every update.
func (c *Client) SetWebhook(ctx context.Context, webhookURL, secret string) error {
	return c.call(ctx, "setWebhook", setWebhookRequest{
		URL:            webhookURL,
		SecretToken:    secret,
		AllowedUpdates: []string{"message"},
	}, nil)
}

// DeleteWebhook removes the webhook registration.
func (c *Client) DeleteWebhook(ctx context.Context, dropPending bool) error {
	return c.call(ctx, "deleteWebhook", deleteWebhookRequest{DropPendingUpdates: dropPending}, nil)
}

// GetWebhookInfo returns the current webhook registration.
func (c *Client) GetWebhookInfo(ctx context.Context) (*WebhookInfo, error) {
	info := &WebhookInfo{}
	if err := c.call(ctx, "getWebhookInfo", struct{}{}, info); err != nil {
		return nil, err
	}
	return info, nil
}

func (c *Client) call(ctx context.Context, method string, payload, result any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return &DeliveryError{Method: method, Err: fmt.Errorf("marshal request: %w", err)}
	}

	endpoint := fmt.Sprintf("%s/bot%s/%s", c.apiBase, c.token, method)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return &DeliveryError{Method: method, Err: c.redact(err)}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", utils.UserAgent())

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &DeliveryError{Method: method, Err: c.redact(err)}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return &DeliveryError{Method: method, StatusCode: resp.StatusCode, Err: err}
	}

	var envelope apiResponse
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return &DeliveryError{
			Method:      method,
			StatusCode:  resp.StatusCode,
			Description: utils.Truncate(string(raw), 200),
		}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 || !envelope.OK {
		return &DeliveryError{Method: method, StatusCode: resp.StatusCode, Description: envelope.Description}
	}

	if result != nil && len(envelope.Result) > 0 {
		if err := json.Unmarshal(envelope.Result, result); err != nil {
			return &DeliveryError{Method: method, StatusCode: resp.StatusCode, Err: fmt.Errorf("decode result: %w", err)}
		}
	}

	c.logger.Debug("telegram call completed", "method", method, "duration", time.Since(start))
	return nil
}

// redact strips the bot token from url errors so it never reaches logs.
func (c *Client) redact(err error) error {
	var uerr *url.Error
	if errors.As(err, &uerr) {
		return &url.Error{Op: uerr.Op, URL: strings.ReplaceAll(uerr.URL, c.token, "REDACTED"), Err: uerr.Err}
	}
	return err
}
