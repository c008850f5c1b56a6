package face_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"voice-assistant/internal/domain"
	"voice-assistant/internal/face"
)

func newCapture(t *testing.T, opener face.CameraOpener, sleeper *sleepRecorder) (*face.CaptureService, string) {
	t.Helper()
	scratch := filepath.Join(t.TempDir(), "scratch")
	cfg := face.CaptureConfig{
		Devices:    []int{0, 1},
		Attempts:   10,
		Interval:   500 * time.Millisecond,
		ScratchDir: scratch,
	}
	svc := face.NewCaptureService(opener, markerDetector{}, cfg, testLogger()).WithSleeper(sleeper.sleep)
	return svc, scratch
}

func TestCapture_NoCamera(t *testing.T) {
	opener := &stubOpener{cameras: map[int]*stubCamera{}}
	svc, _ := newCapture(t, opener, &sleepRecorder{})

	_, err := svc.Acquire(context.Background())
	if !errors.Is(err, domain.ErrNoCamera) {
		t.Fatalf("expected ErrNoCamera, got %v", err)
	}

	if len(opener.opened) != 2 || opener.opened[0] != 0 || opener.opened[1] != 1 {
		t.Errorf("probe order: got %v, want [0 1]", opener.opened)
	}
}

func TestCapture_UnresponsiveCameraIsSkipped(t *testing.T) {
	broken := &stubCamera{grabErr: errors.New("device busy")}
	working := &stubCamera{frames: []string{"blank", "face"}}
	opener := &stubOpener{cameras: map[int]*stubCamera{0: broken, 1: working}}
	svc, _ := newCapture(t, opener, &sleepRecorder{})

	frame, err := svc.Acquire(context.Background())
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	defer frame.Release()

	if frame.CameraIndex != 1 {
		t.Errorf("camera index: got %d, want 1", frame.CameraIndex)
	}
	if !broken.closed {
		t.Error("unresponsive camera was not closed")
	}
}

func TestCapture_FaceOnFourthAttempt(t *testing.T) {
	// first grab is the probe
	cam := &stubCamera{frames: []string{"probe", "blank", "blank", "blank", "face"}}
	opener := &stubOpener{cameras: map[int]*stubCamera{0: cam}}
	sleeper := &sleepRecorder{}
	svc, scratch := newCapture(t, opener, sleeper)

	frame, err := svc.Acquire(context.Background())
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}

	if len(sleeper.delays) != 3 {
		t.Errorf("sleeps: got %d, want 3", len(sleeper.delays))
	}
	for _, d := range sleeper.delays {
		if d != 500*time.Millisecond {
			t.Errorf("delay: got %v, want 500ms", d)
		}
	}
	if len(frame.Faces) != 1 {
		t.Errorf("faces: got %d, want 1", len(frame.Faces))
	}
	if !cam.closed {
		t.Error("camera was not closed")
	}

	want := filepath.Join(scratch, "current_user.jpg")
	if frame.Path != want {
		t.Errorf("scratch path: got %s, want %s", frame.Path, want)
	}
	if _, err := os.Stat(want); err != nil {
		t.Fatalf("scratch file missing: %v", err)
	}

	if err := frame.Release(); err != nil {
		t.Fatalf("Release: %v", err)
	}
	if _, err := os.Stat(want); !os.IsNotExist(err) {
		t.Errorf("scratch file still present after Release")
	}
	if err := frame.Release(); err != nil {
		t.Errorf("second Release: %v", err)
	}
}

func TestCapture_NoFaceAfterAllAttempts(t *testing.T) {
	cam := &stubCamera{}
	opener := &stubOpener{cameras: map[int]*stubCamera{0: cam}}
	sleeper := &sleepRecorder{}
	svc, _ := newCapture(t, opener, sleeper)

	_, err := svc.Acquire(context.Background())
	if !errors.Is(err, domain.ErrNoFaceFound) {
		t.Fatalf("expected ErrNoFaceFound, got %v", err)
	}

	if cam.grabs != 11 {
		t.Errorf("grabs: got %d, want 11 (probe + 10 attempts)", cam.grabs)
	}
	if len(sleeper.delays) != 9 {
		t.Errorf("sleeps: got %d, want 9", len(sleeper.delays))
	}
	if !cam.closed {
		t.Error("camera was not closed")
	}
}

func TestCapture_Canceled(t *testing.T) {
	cam := &stubCamera{}
	opener := &stubOpener{cameras: map[int]*stubCamera{0: cam}}
	svc, _ := newCapture(t, opener, &sleepRecorder{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.Acquire(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestCapture_Probe(t *testing.T) {
	cam := &stubCamera{}
	opener := &stubOpener{cameras: map[int]*stubCamera{1: cam}}
	svc, _ := newCapture(t, opener, &sleepRecorder{})

	index, err := svc.Probe(context.Background())
	if err != nil {
		t.Fatalf("Probe: %v", err)
	}
	if index != 1 {
		t.Errorf("index: got %d, want 1", index)
	}
	if !cam.closed {
		t.Error("camera was not closed after probe")
	}
}
