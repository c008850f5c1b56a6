package speaker

import (
	"context"
	"errors"

	"voice-assistant/internal/application"
)

// Multi says every reply on each speaker in order, e.g. console and voice.
type Multi []application.Speaker

func (m Multi) Say(ctx context.Context, text string) error {
	var errs []error
	for _, s := range m {
		if err := s.Say(ctx, text); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
