package domain

import (
	"errors"
	"image"
	"os"
	"sync"
)

// Embedding is a fixed-length face descriptor. The zero value is an empty embedding.
type Embedding struct {
	values []float32
}

func NewEmbedding(values []float32) Embedding {
	v := make([]float32, len(values))
	copy(v, values)
	return Embedding{values: v}
}

func (e Embedding) Dim() int {
	return len(e.values)
}

// Values returns a copy of the descriptor.
func (e Embedding) Values() []float32 {
	v := make([]float32, len(e.values))
	copy(v, e.values)
	return v
}

// At returns the i-th component without copying.
func (e Embedding) At(i int) float32 {
	return e.values[i]
}

type Face struct {
	Region    image.Rectangle
	Embedding Embedding
}

// CapturedFrame is a still image that contained at least one face when taken.
type CapturedFrame struct {
	Data        []byte
	Format      string
	Faces       []image.Rectangle
	CameraIndex int
	// Path is the scratch copy on disk, empty when the frame was never persisted.
	Path string

	releaseOnce sync.Once
}

// Release removes the scratch copy. Safe to call more than once.
func (f *CapturedFrame) Release() error {
	if f == nil || f.Path == "" {
		return nil
	}
	var err error
	f.releaseOnce.Do(func() {
		if rmErr := os.Remove(f.Path); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
			err = rmErr
		}
	})
	return err
}

type MatchKind string

const (
	MatchIdentified     MatchKind = "identified"
	MatchNoMatch        MatchKind = "no_match"
	MatchNoFaceDetected MatchKind = "no_face_detected"
	MatchRegistryEmpty  MatchKind = "registry_empty"
)

type MatchResult struct {
	Kind MatchKind
	// Name is set only for MatchIdentified.
	Name     string
	Distance float64
}

func Identified(name string, distance float64) MatchResult {
	return MatchResult{Kind: MatchIdentified, Name: name, Distance: distance}
}

func (m MatchResult) IsIdentified() bool {
	return m.Kind == MatchIdentified
}
