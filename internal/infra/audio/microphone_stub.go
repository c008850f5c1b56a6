//go:build !portaudio
// +build !portaudio

package audio

import (
	"context"
	"errors"
	"log/slog"
)

var errMicrophoneNotBuilt = errors.New("microphone not available: rebuild with -tags portaudio")

type MicrophoneSource struct{}

func NewMicrophoneSource(_ int, _ *slog.Logger) *MicrophoneSource {
	return &MicrophoneSource{}
}

func (m *MicrophoneSource) Name() string                { return "microphone" }
func (m *MicrophoneSource) Start(context.Context) error { return errMicrophoneNotBuilt }
func (m *MicrophoneSource) Stop() error                 { return nil }

func (m *MicrophoneSource) NextCommand(context.Context) ([]byte, error) {
	return nil, errMicrophoneNotBuilt
}
