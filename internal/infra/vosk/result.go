package vosk

import (
	"encoding/json"
	"fmt"
	"strings"

	"voice-assistant/internal/domain"
)

type result struct {
	Text string `json:"text"`
}

// parseResult extracts the transcript from a Vosk JSON result.
func parseResult(raw string) (string, error) {
	var r result
	if err := json.Unmarshal([]byte(raw), &r); err != nil {
		return "", fmt.Errorf("decoding vosk result: %w", err)
	}
	text := strings.TrimSpace(r.Text)
	if text == "" {
		return "", domain.ErrUnrecognized
	}
	return text, nil
}
