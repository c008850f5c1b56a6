//go:build dlib
// +build dlib

package facemodel

import (
	"context"
	"fmt"
	"image"
	"sync"

	goface "github.com/Kagami/go-face"

	"voice-assistant/internal/domain"
)

// DlibModel wraps the dlib ResNet face recognizer. It expects
// shape_predictor_5_face_landmarks.dat, dlib_face_recognition_resnet_model_v1.dat
// and mmod_human_face_detector.dat in the models directory.
type DlibModel struct {
	mu        sync.Mutex
	rec       *goface.Recognizer
	tolerance float64
}

func NewDlibModel(modelsDir string, tolerance float64) (*DlibModel, error) {
	if modelsDir == "" {
		modelsDir = "./models"
	}
	if tolerance <= 0 {
		tolerance = DefaultTolerance
	}

	rec, err := goface.NewRecognizer(modelsDir)
	if err != nil {
		return nil, fmt.Errorf("loading dlib models from %s: %w", modelsDir, err)
	}
	return &DlibModel{rec: rec, tolerance: tolerance}, nil
}

func (m *DlibModel) Name() string {
	return "dlib"
}

func (m *DlibModel) Tolerance() float64 {
	return m.tolerance
}

func (m *DlibModel) Detect(ctx context.Context, img []byte) ([]image.Rectangle, error) {
	faces, err := m.recognize(ctx, img)
	if err != nil {
		return nil, err
	}
	regions := make([]image.Rectangle, len(faces))
	for i, f := range faces {
		regions[i] = f.Rectangle
	}
	return regions, nil
}

func (m *DlibModel) Encode(ctx context.Context, img []byte) ([]domain.Face, error) {
	faces, err := m.recognize(ctx, img)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Face, len(faces))
	for i, f := range faces {
		out[i] = domain.Face{
			Region:    f.Rectangle,
			Embedding: domain.NewEmbedding(f.Descriptor[:]),
		}
	}
	return out, nil
}

// recognize serializes access; the dlib recognizer is not safe for concurrent use.
func (m *DlibModel) recognize(ctx context.Context, img []byte) ([]goface.Face, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.rec == nil {
		return nil, fmt.Errorf("dlib model closed")
	}
	faces, err := m.rec.Recognize(img)
	if err != nil {
		return nil, fmt.Errorf("recognizing faces: %w", err)
	}
	return faces, nil
}

func (m *DlibModel) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.rec != nil {
		m.rec.Close()
		m.rec = nil
	}
	return nil
}
