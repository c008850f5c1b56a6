package face_test

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"io"
	"log/slog"
	"os"
	"testing"
	"time"

	"voice-assistant/internal/domain"
	"voice-assistant/internal/face"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// sizeModel treats the image size as the face embedding: a w×h image encodes to [w, h].
// Images narrower than minFaceWidth contain no face.
type sizeModel struct {
	encodeCalls int
}

const minFaceWidth = 4

func (m *sizeModel) Name() string       { return "size" }
func (m *sizeModel) Tolerance() float64 { return 0.6 }

func (m *sizeModel) Detect(_ context.Context, img []byte) ([]image.Rectangle, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(img))
	if err != nil {
		return nil, err
	}
	if cfg.Width < minFaceWidth {
		return nil, nil
	}
	return []image.Rectangle{image.Rect(0, 0, cfg.Width, cfg.Height)}, nil
}

func (m *sizeModel) Encode(ctx context.Context, img []byte) ([]domain.Face, error) {
	m.encodeCalls++
	regions, err := m.Detect(ctx, img)
	if err != nil {
		return nil, err
	}
	faces := make([]domain.Face, 0, len(regions))
	for _, r := range regions {
		faces = append(faces, domain.Face{
			Region:    r,
			Embedding: domain.NewEmbedding([]float32{float32(r.Dx()), float32(r.Dy())}),
		})
	}
	return faces, nil
}

func encodeImage(t *testing.T, w, h int, format string) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: 200, G: 150, B: 100, A: 255})
		}
	}

	var buf bytes.Buffer
	var err error
	switch format {
	case "png":
		err = png.Encode(&buf, img)
	default:
		err = jpeg.Encode(&buf, img, nil)
	}
	if err != nil {
		t.Fatalf("encoding test image: %v", err)
	}
	return buf.Bytes()
}

func writeImage(t *testing.T, path string, w, h int, format string) {
	t.Helper()
	if err := os.WriteFile(path, encodeImage(t, w, h, format), 0644); err != nil {
		t.Fatalf("writing test image: %v", err)
	}
}

// stubCamera replays frames; "face" frames contain a face for markerDetector.
type stubCamera struct {
	frames  []string
	grabs   int
	closed  bool
	grabErr error
}

func (c *stubCamera) Grab(_ context.Context) ([]byte, string, error) {
	if c.grabErr != nil {
		return nil, "", c.grabErr
	}
	frame := "blank"
	if c.grabs < len(c.frames) {
		frame = c.frames[c.grabs]
	}
	c.grabs++
	return []byte(frame), "jpeg", nil
}

func (c *stubCamera) Close() error {
	c.closed = true
	return nil
}

type stubOpener struct {
	cameras map[int]*stubCamera
	opened  []int
}

func (o *stubOpener) Open(_ context.Context, index int) (face.Camera, error) {
	o.opened = append(o.opened, index)
	cam, ok := o.cameras[index]
	if !ok {
		return nil, errors.New("no such device")
	}
	return cam, nil
}

type markerDetector struct{}

func (markerDetector) Detect(_ context.Context, img []byte) ([]image.Rectangle, error) {
	if string(img) == "face" {
		return []image.Rectangle{image.Rect(10, 10, 50, 50)}, nil
	}
	return nil, nil
}

type sleepRecorder struct {
	delays []time.Duration
}

func (s *sleepRecorder) sleep(_ context.Context, d time.Duration) error {
	s.delays = append(s.delays, d)
	return nil
}
