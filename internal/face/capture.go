package face

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"voice-assistant/internal/domain"
	"voice-assistant/internal/infra"
)

const scratchName = "current_user"

var errNoFaceInFrame = errors.New("no face in frame")

type CaptureConfig struct {
	Devices    []int
	Attempts   int
	Interval   time.Duration
	ScratchDir string
}

func DefaultCaptureConfig() CaptureConfig {
	return CaptureConfig{
		Devices:    []int{0, 1},
		Attempts:   10,
		Interval:   500 * time.Millisecond,
		ScratchDir: "./current_user_face",
	}
}

// CaptureService grabs a still that contains a face from the first responsive camera.
type CaptureService struct {
	opener   CameraOpener
	detector Detector
	cfg      CaptureConfig
	sleep    infra.Sleeper
	logger   *slog.Logger
}

func NewCaptureService(opener CameraOpener, detector Detector, cfg CaptureConfig, logger *slog.Logger) *CaptureService {
	defaults := DefaultCaptureConfig()
	if len(cfg.Devices) == 0 {
		cfg.Devices = defaults.Devices
	}
	if cfg.Attempts <= 0 {
		cfg.Attempts = defaults.Attempts
	}
	if cfg.Interval < 0 {
		cfg.Interval = defaults.Interval
	}
	if cfg.ScratchDir == "" {
		cfg.ScratchDir = defaults.ScratchDir
	}
	return &CaptureService{
		opener:   opener,
		detector: detector,
		cfg:      cfg,
		sleep:    infra.SleepContext,
		logger:   logger,
	}
}

// WithSleeper replaces the pause between attempts.
func (s *CaptureService) WithSleeper(sleep infra.Sleeper) *CaptureService {
	s.sleep = sleep
	return s
}

// Probe returns the index of the first device that opens and yields a frame.
func (s *CaptureService) Probe(ctx context.Context) (int, error) {
	cam, index, err := s.openFirst(ctx)
	if err != nil {
		return -1, err
	}
	if err := cam.Close(); err != nil {
		s.logger.Warn("closing camera", "index", index, "error", err)
	}
	return index, nil
}

func (s *CaptureService) openFirst(ctx context.Context) (Camera, int, error) {
	for _, index := range s.cfg.Devices {
		if err := ctx.Err(); err != nil {
			return nil, -1, err
		}

		cam, err := s.opener.Open(ctx, index)
		if err != nil {
			s.logger.Debug("camera not available", "index", index, "error", err)
			continue
		}

		if _, _, err := cam.Grab(ctx); err != nil {
			s.logger.Debug("camera not responding", "index", index, "error", err)
			_ = cam.Close()
			continue
		}

		s.logger.Info("camera selected", "index", index)
		return cam, index, nil
	}
	return nil, -1, domain.ErrNoCamera
}

// Acquire returns the first frame with at least one detectable face.
// The frame is persisted to the scratch directory; callers must Release it.
func (s *CaptureService) Acquire(ctx context.Context) (*domain.CapturedFrame, error) {
	cam, index, err := s.openFirst(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := cam.Close(); err != nil {
			s.logger.Warn("closing camera", "index", index, "error", err)
		}
	}()

	var frame *domain.CapturedFrame

	retryCfg := infra.FixedRetryConfig(s.cfg.Attempts, s.cfg.Interval)
	retryCfg.Sleep = s.sleep
	retryCfg.OnRetry = func(attempt int, err error) {
		s.logger.Debug("capture attempt failed", "attempt", attempt, "error", err)
	}

	err = infra.WithRetry(ctx, retryCfg, func() error {
		data, format, err := cam.Grab(ctx)
		if err != nil {
			return fmt.Errorf("grabbing frame: %w", err)
		}

		regions, err := s.detector.Detect(ctx, data)
		if err != nil {
			return fmt.Errorf("detecting faces: %w", err)
		}
		if len(regions) == 0 {
			return errNoFaceInFrame
		}

		frame = &domain.CapturedFrame{
			Data:        data,
			Format:      format,
			Faces:       regions,
			CameraIndex: index,
		}
		return nil
	})
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		s.logger.Warn("no face captured", "attempts", s.cfg.Attempts, "error", err)
		return nil, fmt.Errorf("%w after %d attempts", domain.ErrNoFaceFound, s.cfg.Attempts)
	}

	path, err := s.persist(frame)
	if err != nil {
		return nil, err
	}
	frame.Path = path

	s.logger.Info("face captured", "camera", index, "faces", len(frame.Faces), "path", path)
	return frame, nil
}

func (s *CaptureService) persist(frame *domain.CapturedFrame) (string, error) {
	if err := os.MkdirAll(s.cfg.ScratchDir, 0755); err != nil {
		return "", fmt.Errorf("creating scratch dir: %w", err)
	}

	path := filepath.Join(s.cfg.ScratchDir, scratchName+ExtensionFor(frame.Format))
	if err := os.WriteFile(path, frame.Data, 0644); err != nil {
		return "", fmt.Errorf("writing scratch frame: %w", err)
	}
	return path, nil
}
