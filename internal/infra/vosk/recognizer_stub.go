//go:build !vosk
// +build !vosk

package vosk

import (
	"context"
	"errors"
)

var errVoskNotBuilt = errors.New("vosk speech recognition not available: rebuild with -tags vosk")

type Recognizer struct{}

func NewRecognizer(_ string) (*Recognizer, error) {
	return nil, errVoskNotBuilt
}

func (r *Recognizer) Transcribe(context.Context, []byte) (string, error) {
	return "", errVoskNotBuilt
}

func (r *Recognizer) Close() error { return nil }
