package application

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"voice-assistant/internal/domain"
)

type SpeechToText interface {
	Transcribe(ctx context.Context, audio []byte) (string, error)
}

// NoopSTT is a no-op speech-to-text client for text-only sources.
// It returns an error if called with actual audio data.
type NoopSTT struct{}

func (n *NoopSTT) Transcribe(ctx context.Context, audio []byte) (string, error) {
	return "", fmt.Errorf("speech-to-text not configured: set openai.api_key or vosk.model_path to enable audio transcription")
}

// Listener yields one utterance per call.
type Listener interface {
	Start(ctx context.Context) error
	Stop() error
	Listen(ctx context.Context) (string, error)
}

// SpeechListener turns audio from a source into text.
type SpeechListener struct {
	audio AudioSource
	stt   SpeechToText
}

func NewSpeechListener(audio AudioSource, stt SpeechToText) *SpeechListener {
	return &SpeechListener{audio: audio, stt: stt}
}

func (l *SpeechListener) Start(ctx context.Context) error {
	return l.audio.Start(ctx)
}

func (l *SpeechListener) Stop() error {
	return l.audio.Stop()
}

func (l *SpeechListener) Listen(ctx context.Context) (string, error) {
	data, err := l.audio.NextCommand(ctx)
	if err != nil {
		return "", fmt.Errorf("getting audio: %w", err)
	}

	if text, ok := IsTextCommand(data); ok {
		return normalizeUtterance(text)
	}
	if len(data) == 0 {
		return "", domain.ErrUnrecognized
	}

	text, err := l.stt.Transcribe(ctx, data)
	if err != nil {
		if errors.Is(err, domain.ErrUnrecognized) || ctx.Err() != nil {
			return "", err
		}
		return "", fmt.Errorf("transcribing: %w", err)
	}
	return normalizeUtterance(text)
}

func normalizeUtterance(text string) (string, error) {
	text = strings.ToLower(strings.TrimSpace(text))
	if text == "" {
		return "", domain.ErrUnrecognized
	}
	return text, nil
}

// IsTextCommand reports whether data carries a typed command rather than audio.
func IsTextCommand(data []byte) (string, bool) {
	if len(data) > len(domain.TextCommandPrefix) && string(data[:len(domain.TextCommandPrefix)]) == domain.TextCommandPrefix {
		return string(data[len(domain.TextCommandPrefix):]), true
	}
	return "", false
}
