// Package wikipedia looks up short encyclopedia summaries.
package wikipedia

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"voice-assistant/internal/domain"
	"voice-assistant/internal/infra"
)

const userAgent = "voice-assistant/1.0 (https://github.com/voice-assistant)"

type Client struct {
	baseURL    string
	httpClient *http.Client
	sentences  int
	retry      infra.RetryConfig
}

// NewClient targets the wiki for language, e.g. "en".
func NewClient(language string, sentences int) *Client {
	if language == "" {
		language = "en"
	}
	return NewClientWithURL("https://"+language+".wikipedia.org", sentences)
}

func NewClientWithURL(baseURL string, sentences int) *Client {
	if sentences <= 0 {
		sentences = 1
	}
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{Timeout: 15 * time.Second},
		sentences:  sentences,
		retry:      infra.DefaultRetryConfig(),
	}
}

type pageSummary struct {
	Type    string `json:"type"`
	Title   string `json:"title"`
	Extract string `json:"extract"`
}

// Summary resolves topic to the best matching article and returns the first
// sentences of its lead. Missing and ambiguous topics yield domain.ErrNotFound.
func (c *Client) Summary(ctx context.Context, topic string) (string, error) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return "", fmt.Errorf("empty topic: %w", domain.ErrNotFound)
	}

	title, err := c.search(ctx, topic)
	if err != nil {
		return "", err
	}

	var page pageSummary
	path := "/api/rest_v1/page/summary/" + url.PathEscape(strings.ReplaceAll(title, " ", "_"))
	if err := c.getJSON(ctx, path, &page); err != nil {
		return "", err
	}

	if page.Type == "disambiguation" || strings.TrimSpace(page.Extract) == "" {
		return "", fmt.Errorf("topic %q is ambiguous: %w", topic, domain.ErrNotFound)
	}
	return FirstSentences(page.Extract, c.sentences), nil
}

func (c *Client) search(ctx context.Context, topic string) (string, error) {
	q := url.Values{}
	q.Set("action", "opensearch")
	q.Set("search", topic)
	q.Set("limit", "1")
	q.Set("namespace", "0")
	q.Set("redirects", "resolve")
	q.Set("format", "json")

	// opensearch answers [query, [titles], [descriptions], [urls]]
	var result []json.RawMessage
	if err := c.getJSON(ctx, "/w/api.php?"+q.Encode(), &result); err != nil {
		return "", err
	}
	if len(result) < 2 {
		return "", fmt.Errorf("unexpected opensearch response")
	}

	var titles []string
	if err := json.Unmarshal(result[1], &titles); err != nil {
		return "", fmt.Errorf("decoding opensearch titles: %w", err)
	}
	if len(titles) == 0 {
		return "", fmt.Errorf("topic %q: %w", topic, domain.ErrNotFound)
	}
	return titles[0], nil
}

func (c *Client) getJSON(ctx context.Context, path string, v any) error {
	return infra.WithRetry(ctx, c.retry, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
		if err != nil {
			return infra.Permanent(fmt.Errorf("creating request: %w", err))
		}
		req.Header.Set("User-Agent", userAgent)
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("sending request: %w", err)
		}
		defer resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusNotFound:
			return infra.Permanent(domain.ErrNotFound)
		case resp.StatusCode != http.StatusOK:
			body, _ := io.ReadAll(resp.Body)
			apiErr := fmt.Errorf("wikipedia error %d: %s", resp.StatusCode, string(body))
			if infra.IsRetryableHTTPStatus(resp.StatusCode) {
				return apiErr
			}
			return infra.Permanent(apiErr)
		}

		if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}
		return nil
	})
}

// FirstSentences returns the first n sentences of text. A period only ends a
// sentence when followed by whitespace and an upper-case letter, and when the
// word before it is not a lone initial such as "J.".
func FirstSentences(text string, n int) string {
	text = strings.TrimSpace(text)
	count := 0
	for i := 0; i < len(text); i++ {
		if text[i] != '.' && text[i] != '!' && text[i] != '?' {
			continue
		}
		if i+1 < len(text) && text[i+1] != ' ' && text[i+1] != '\n' {
			continue
		}
		next := strings.TrimLeft(text[i+1:], " \n")
		if next != "" {
			r, _ := utf8.DecodeRuneInString(next)
			if !unicode.IsUpper(r) || isInitial(text[:i]) {
				continue
			}
		}
		count++
		if count == n {
			return text[:i+1]
		}
	}
	return text
}

func isInitial(before string) bool {
	start := strings.LastIndexAny(before, " (") + 1
	word := before[start:]
	r, size := utf8.DecodeRuneInString(word)
	return size == len(word) && unicode.IsUpper(r)
}
