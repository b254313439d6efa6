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

// Client is a Telegram Bot API gateway over plain HTTP.
// It is exclusively owned by the dispatch loop; request handlers never
// call it directly.
type Client struct {
	httpc *http.Client
	base  string
	token string
}

// NewClient creates a Bot API client. base is the API host
// (https://api.telegram.org in production, a test server in tests).
func NewClient(base, token string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		httpc: &http.Client{Timeout: timeout},
		base:  base,
		token: token,
	}
}

type apiResponse struct {
	OK          bool   `json:"ok"`
	ErrorCode   int    `json:"error_code,omitempty"`
	Description string `json:"description,omitempty"`
}

func (c *Client) call(ctx context.Context, method string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("telegram %s: marshal: %w", method, err)
	}

	url := fmt.Sprintf("%s/bot%s/%s", c.base, c.token, method)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("telegram %s: build request: %w", method, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("telegram %s: %w", method, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("telegram %s: read response: %w", method, err)
	}

	var out apiResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return fmt.Errorf("telegram %s: decode response (status %d): %w", method, resp.StatusCode, err)
	}
	if !out.OK {
		return fmt.Errorf("telegram %s: api error %d: %s", method, out.ErrorCode, out.Description)
	}
	return nil
}

// Send delivers a text message to one recipient.
func (c *Client) Send(ctx context.Context, msg SendMessage) error {
	return c.call(ctx, "sendMessage", msg)
}

// Edit rewrites a previously sent message in place.
func (c *Client) Edit(ctx context.Context, msg EditMessageText) error {
	return c.call(ctx, "editMessageText", msg)
}

// AnswerCallback acknowledges a button press, optionally with an alert.
func (c *Client) AnswerCallback(ctx context.Context, ans AnswerCallbackQuery) error {
	return c.call(ctx, "answerCallbackQuery", ans)
}

// Delete removes a previously sent message.
func (c *Client) Delete(ctx context.Context, del DeleteMessage) error {
	return c.call(ctx, "deleteMessage", del)
}

// SetWebhook points the Bot API at the service's webhook URL.
func (c *Client) SetWebhook(ctx context.Context, url string) error {
	return c.call(ctx, "setWebhook", map[string]string{"url": url})
}

// Close releases idle transport connections.
func (c *Client) Close() {
	c.httpc.CloseIdleConnections()
}
