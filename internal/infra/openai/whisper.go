package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"voice-assistant/internal/domain"
	"voice-assistant/internal/infra"
)

// WhisperClient transcribes utterances with the hosted Whisper model.
type WhisperClient struct {
	apiKey     string
	httpClient *http.Client
	baseURL    string
	model      string
	language   string
	retry      infra.RetryConfig
}

func NewWhisperClient(apiKey, language string) *WhisperClient {
	return NewWhisperClientWithURL(apiKey, language, "https://api.openai.com/v1")
}

func NewWhisperClientWithURL(apiKey, language, baseURL string) *WhisperClient {
	return &WhisperClient{
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    baseURL,
		model:      "whisper-1",
		language:   language,
		retry:      infra.DefaultRetryConfig(),
	}
}

type transcription struct {
	Text string `json:"text"`
}

// Transcribe returns domain.ErrUnrecognized when Whisper hears nothing.
func (c *WhisperClient) Transcribe(ctx context.Context, audio []byte) (string, error) {
	body, contentType, err := c.form(audio)
	if err != nil {
		return "", err
	}

	var result transcription
	err = infra.WithRetry(ctx, c.retry, func() error {
		return c.post(ctx, body, contentType, &result)
	})
	if err != nil {
		return "", err
	}

	text := strings.TrimSpace(result.Text)
	if text == "" {
		return "", domain.ErrUnrecognized
	}
	return text, nil
}

// form encodes the upload once so retries resend identical bytes.
func (c *WhisperClient) form(audio []byte) ([]byte, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	if err := w.WriteField("model", c.model); err != nil {
		return nil, "", fmt.Errorf("writing model field: %w", err)
	}
	if c.language != "" {
		if err := w.WriteField("language", c.language); err != nil {
			return nil, "", fmt.Errorf("writing language field: %w", err)
		}
	}

	part, err := w.CreateFormFile("file", "audio.wav")
	if err != nil {
		return nil, "", fmt.Errorf("creating form file: %w", err)
	}
	if _, err := part.Write(audio); err != nil {
		return nil, "", fmt.Errorf("writing audio: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("closing form: %w", err)
	}
	return buf.Bytes(), w.FormDataContentType(), nil
}

func (c *WhisperClient) post(ctx context.Context, body []byte, contentType string, out *transcription) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/audio/transcriptions", bytes.NewReader(body))
	if err != nil {
		return infra.Permanent(fmt.Errorf("creating request: %w", err))
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", contentType)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		apiErr := fmt.Errorf("whisper API error %d: %s", resp.StatusCode, snippet)
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
