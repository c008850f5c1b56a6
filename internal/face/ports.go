package face

import (
	"context"
	"image"

	"voice-assistant/internal/domain"
)

// Detector locates faces in an encoded image.
type Detector interface {
	Detect(ctx context.Context, img []byte) ([]image.Rectangle, error)
}

// Encoder locates faces and computes one embedding per face, in detector order.
type Encoder interface {
	Encode(ctx context.Context, img []byte) ([]domain.Face, error)
}

// Model is a face detection and embedding backend.
type Model interface {
	Detector
	Encoder
	Name() string
	// Tolerance is the model's own "same person" distance threshold.
	Tolerance() float64
}

// Camera is an opened capture device.
type Camera interface {
	// Grab returns one encoded still and its format ("jpeg", "png").
	Grab(ctx context.Context) ([]byte, string, error)
	Close() error
}

type CameraOpener interface {
	Open(ctx context.Context, index int) (Camera, error)
}
