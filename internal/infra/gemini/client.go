package gemini

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

// Client is a generateContent backend for llm.Parser.
type Client struct {
	apiKey      string
	httpClient  *http.Client
	baseURL     string
	model       string
	maxTokens   int
	temperature float64
	retry       infra.RetryConfig
}

func NewClient(apiKey, model string) *Client {
	return NewClientWithURL(apiKey, model, "https://generativelanguage.googleapis.com/v1beta")
}

func NewClientWithURL(apiKey, model, baseURL string) *Client {
	if model == "" {
		model = "gemini-2.0-flash"
	}
	return &Client{
		apiKey:      apiKey,
		httpClient:  &http.Client{Timeout: 30 * time.Second},
		baseURL:     baseURL,
		model:       model,
		maxTokens:   128,
		temperature: 0.1,
		retry:       infra.DefaultRetryConfig(),
	}
}

type content struct {
	Parts []part `json:"parts"`
	Role  string `json:"role,omitempty"`
}

type part struct {
	Text string `json:"text"`
}

type request struct {
	Contents         []content        `json:"contents"`
	SystemInstruct   *content         `json:"systemInstruction,omitempty"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type generationConfig struct {
	MaxOutputTokens int     `json:"maxOutputTokens"`
	Temperature     float64 `json:"temperature"`
}

type response struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Message string `json:"message"`
		Code    int    `json:"code"`
	} `json:"error,omitempty"`
}

// Complete sends system as the system instruction and prompt as the single
// user turn.
func (c *Client) Complete(ctx context.Context, system, prompt string) (string, error) {
	bodyBytes, err := json.Marshal(request{
		SystemInstruct: &content{Parts: []part{{Text: system}}},
		Contents:       []content{{Role: "user", Parts: []part{{Text: prompt}}}},
		GenerationConfig: generationConfig{
			MaxOutputTokens: c.maxTokens,
			Temperature:     c.temperature,
		},
	})
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/models/%s:generateContent", c.baseURL, c.model)

	var result response
	err = infra.WithRetry(ctx, c.retry, func() error {
		result = response{}
		return c.post(ctx, endpoint, bodyBytes, &result)
	})
	if err != nil {
		return "", err
	}

	if result.Error != nil {
		return "", fmt.Errorf("gemini error %d: %s", result.Error.Code, result.Error.Message)
	}
	return result.text()
}

func (c *Client) post(ctx context.Context, endpoint string, body []byte, out *response) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return infra.Permanent(fmt.Errorf("creating request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		apiErr := fmt.Errorf("gemini API error %d: %s", resp.StatusCode, snippet)
		if infra.IsRetryableHTTPStatus(resp.StatusCode) {
			return apiErr
		}
		return infra.Permanent(apiErr)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

// text concatenates the parts of the first candidate.
func (r response) text() (string, error) {
	if len(r.Candidates) == 0 {
		return "", errors.New("gemini returned no candidates")
	}
	var sb strings.Builder
	for _, p := range r.Candidates[0].Content.Parts {
		sb.WriteString(p.Text)
	}
	if sb.Len() == 0 {
		return "", errors.New("gemini returned an empty candidate")
	}
	return sb.String(), nil
}
