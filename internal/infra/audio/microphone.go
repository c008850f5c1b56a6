//go:build portaudio
// +build portaudio

package audio

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/gordonklaus/portaudio"
)

const framesPerBuffer = 1024

// MicrophoneSource records one utterance per call from the default input device.
// Recording ends after a second of silence or ten seconds total.
type MicrophoneSource struct {
	sampleRate int
	logger     *slog.Logger

	stream *portaudio.Stream
	frame  []int16
}

func NewMicrophoneSource(sampleRate int, logger *slog.Logger) *MicrophoneSource {
	return &MicrophoneSource{sampleRate: sampleRate, logger: logger}
}

func (m *MicrophoneSource) Name() string { return "microphone" }

func (m *MicrophoneSource) Start(_ context.Context) error {
	if err := portaudio.Initialize(); err != nil {
		return fmt.Errorf("initializing portaudio: %w", err)
	}

	stream, frame, err := openMono(m.sampleRate)
	if err != nil {
		portaudio.Terminate()
		return err
	}
	m.stream, m.frame = stream, frame

	m.logger.Info("microphone started", "sample_rate", m.sampleRate)
	return nil
}

// openMono opens and starts a 16-bit mono input stream. Each Read fills the
// returned frame.
func openMono(sampleRate int) (*portaudio.Stream, []int16, error) {
	frame := make([]int16, framesPerBuffer)
	stream, err := portaudio.OpenDefaultStream(1, 0, float64(sampleRate), len(frame), frame)
	if err != nil {
		return nil, nil, fmt.Errorf("opening input stream: %w", err)
	}
	if err := stream.Start(); err != nil {
		stream.Close()
		return nil, nil, fmt.Errorf("starting input stream: %w", err)
	}
	return stream, frame, nil
}

func (m *MicrophoneSource) Stop() error {
	var errs []error
	if m.stream != nil {
		errs = append(errs, m.stream.Stop(), m.stream.Close())
		m.stream = nil
	}
	errs = append(errs, portaudio.Terminate())
	return errors.Join(errs...)
}

// NextCommand returns nil audio when the recording held no speech.
func (m *MicrophoneSource) NextCommand(ctx context.Context) ([]byte, error) {
	if m.stream == nil {
		return nil, errors.New("microphone not started")
	}

	rec := newUtteranceRecorder(m.sampleRate)
	for done := false; !done; {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := m.stream.Read(); err != nil {
			return nil, fmt.Errorf("reading input stream: %w", err)
		}
		done = rec.add(m.frame)
	}

	if !rec.heardSpeech() {
		return nil, nil
	}
	return samplesToWav(rec.samples, m.sampleRate)
}
