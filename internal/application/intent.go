package application

import (
	"context"
	"log/slog"

	"voice-assistant/internal/domain"
)

type CommandParser interface {
	Parse(ctx context.Context, text string) (*domain.Command, error)
}

// FallbackParser asks the secondary parser only when the primary one finds no action.
type FallbackParser struct {
	primary   CommandParser
	secondary CommandParser
	logger    *slog.Logger
}

func NewFallbackParser(primary, secondary CommandParser, logger *slog.Logger) *FallbackParser {
	return &FallbackParser{
		primary:   primary,
		secondary: secondary,
		logger:    logger,
	}
}

func (p *FallbackParser) Parse(ctx context.Context, text string) (*domain.Command, error) {
	cmd, err := p.primary.Parse(ctx, text)
	if err != nil {
		return nil, err
	}
	if cmd.Action != domain.ActionUnknown || p.secondary == nil {
		return cmd, nil
	}

	fallback, err := p.secondary.Parse(ctx, text)
	if err != nil {
		p.logger.Warn("fallback parser failed", "error", err)
		return cmd, nil
	}
	p.logger.Debug("fallback parser result", "action", fallback.Action, "argument", fallback.Argument)
	return fallback, nil
}
