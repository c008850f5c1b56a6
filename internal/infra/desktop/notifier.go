// Package desktop shows assistant events as system notifications.
package desktop

import (
	"context"
	"fmt"

	"github.com/gen2brain/beeep"
)

const maxMessageLen = 100

// Notifier posts desktop notifications through beeep.
type Notifier struct {
	title string
	send  func(title, message, icon string) error
}

func NewNotifier(title string) *Notifier {
	if title == "" {
		title = "Voice Assistant"
	}
	return &Notifier{title: title, send: beeep.Notify}
}

// WithSender replaces the notification backend, for tests.
func (n *Notifier) WithSender(send func(title, message, icon string) error) *Notifier {
	n.send = send
	return n
}

func (n *Notifier) Notify(_ context.Context, message string) error {
	if len(message) > maxMessageLen {
		message = message[:maxMessageLen] + "..."
	}
	if err := n.send(n.title, message, ""); err != nil {
		return fmt.Errorf("desktop notification: %w", err)
	}
	return nil
}
