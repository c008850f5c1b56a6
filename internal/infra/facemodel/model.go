// Package facemodel provides the face detection and embedding backends.
package facemodel

import (
	"fmt"

	"voice-assistant/internal/face"
)

// DefaultTolerance is the usual dlib "same person" Euclidean threshold.
const DefaultTolerance = 0.6

type Config struct {
	// Backend is "dlib" or "server".
	Backend   string
	ModelsDir string
	ServerURL string
	Tolerance float64
	MinScore  float64
}

// New builds the configured backend. The dlib backend is only available in
// binaries built with the dlib tag.
func New(cfg Config) (face.Model, error) {
	switch cfg.Backend {
	case "", "dlib":
		m, err := NewDlibModel(cfg.ModelsDir, cfg.Tolerance)
		if err != nil {
			return nil, err
		}
		return m, nil
	case "server":
		return NewServerModel(ServerConfig{
			URL:       cfg.ServerURL,
			Tolerance: cfg.Tolerance,
			MinScore:  cfg.MinScore,
		}), nil
	default:
		return nil, fmt.Errorf("unknown face backend %q", cfg.Backend)
	}
}
