package face

import (
	"context"
	"fmt"
	"log/slog"

	"voice-assistant/internal/domain"
)

// Identifier runs one capture, reload, and match cycle.
type Identifier struct {
	capture *CaptureService
	loader  *Loader
	matcher *Matcher
	logger  *slog.Logger
}

func NewIdentifier(capture *CaptureService, loader *Loader, matcher *Matcher, logger *slog.Logger) *Identifier {
	return &Identifier{
		capture: capture,
		loader:  loader,
		matcher: matcher,
		logger:  logger,
	}
}

// Probe reports the first responsive camera without capturing.
func (i *Identifier) Probe(ctx context.Context) (int, error) {
	return i.capture.Probe(ctx)
}

// Identify returns the match result and the frame it was computed from.
// The frame stays on disk until the caller releases or enrolls it.
func (i *Identifier) Identify(ctx context.Context) (domain.MatchResult, *domain.CapturedFrame, error) {
	frame, err := i.capture.Acquire(ctx)
	if err != nil {
		return domain.MatchResult{}, nil, err
	}

	reg, err := i.loader.Load(ctx)
	if err != nil {
		_ = frame.Release()
		return domain.MatchResult{}, nil, fmt.Errorf("loading registry: %w", err)
	}

	result, err := i.matcher.Match(ctx, frame, reg)
	if err != nil {
		_ = frame.Release()
		return domain.MatchResult{}, nil, fmt.Errorf("matching: %w", err)
	}

	return result, frame, nil
}
