// Package homeassistant forwards assistant events to a Home Assistant instance.
package homeassistant

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"voice-assistant/internal/infra"
)

// Client calls Home Assistant notify services, e.g. notify.mobile_app_phone
// or notify.persistent_notification.
type Client struct {
	baseURL    string
	token      string
	service    string
	title      string
	httpClient *http.Client
	retry      infra.RetryConfig
}

func NewClient(baseURL, token, service, title string) *Client {
	if service == "" {
		service = "persistent_notification"
	}
	service = strings.TrimPrefix(service, "notify.")

	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		token:      token,
		service:    service,
		title:      title,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		retry:      infra.DefaultRetryConfig(),
	}
}

type notifyRequest struct {
	Message string `json:"message"`
	Title   string `json:"title,omitempty"`
}

// Notify calls the configured notify service. A rejected token is not retried.
func (c *Client) Notify(ctx context.Context, message string) error {
	body, err := json.Marshal(notifyRequest{Message: message, Title: c.title})
	if err != nil {
		return fmt.Errorf("marshaling request: %w", err)
	}
	endpoint := c.baseURL + "/api/services/notify/" + c.service

	err = infra.WithRetry(ctx, c.retry, func() error {
		return c.post(ctx, endpoint, body)
	})
	if err != nil {
		return fmt.Errorf("notifying via home assistant: %w", err)
	}
	return nil
}

func (c *Client) post(ctx context.Context, endpoint string, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return infra.Permanent(fmt.Errorf("creating request: %w", err))
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode < 300:
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	case resp.StatusCode == http.StatusUnauthorized:
		return infra.Permanent(errors.New("unauthorized: check the Home Assistant token"))
	}

	snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	apiErr := fmt.Errorf("home assistant API error %d: %s", resp.StatusCode, snippet)
	if infra.IsRetryableHTTPStatus(resp.StatusCode) {
		return apiErr
	}
	return infra.Permanent(apiErr)
}
