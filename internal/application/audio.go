package application

import "context"

// AudioSource delivers one recorded utterance, or a TextCommandPrefix-marked
// typed command, per NextCommand call.
type AudioSource interface {
	Start(ctx context.Context) error
	Stop() error
	NextCommand(ctx context.Context) ([]byte, error)
	Name() string
}
