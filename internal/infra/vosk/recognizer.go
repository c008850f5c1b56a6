//go:build vosk
// +build vosk

package vosk

import (
	"context"
	"fmt"
	"sync"

	vapi "github.com/alphacep/vosk-api/go"

	"voice-assistant/internal/infra/audio"
)

// Recognizer transcribes WAV utterances offline with a Vosk model.
type Recognizer struct {
	mu    sync.Mutex
	model *vapi.VoskModel
}

func NewRecognizer(modelPath string) (*Recognizer, error) {
	model, err := vapi.NewModel(modelPath)
	if err != nil {
		return nil, fmt.Errorf("loading vosk model %s: %w", modelPath, err)
	}
	return &Recognizer{model: model}, nil
}

func (r *Recognizer) Transcribe(ctx context.Context, data []byte) (string, error) {
	pcm, sampleRate, err := audio.PCMFromWAV(data)
	if err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	rec, err := vapi.NewRecognizer(r.model, float64(sampleRate))
	if err != nil {
		return "", fmt.Errorf("creating vosk recognizer: %w", err)
	}
	defer rec.Free()

	rec.AcceptWaveform(pcm)
	return parseResult(rec.FinalResult())
}

func (r *Recognizer) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.model != nil {
		r.model.Free()
		r.model = nil
	}
	return nil
}
