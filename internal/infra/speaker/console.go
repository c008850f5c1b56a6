// Package speaker turns assistant replies into output the user can hear or read.
package speaker

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/fatih/color"
)

// Console prints replies prefixed with the assistant name.
type Console struct {
	mu     sync.Mutex
	w      io.Writer
	prefix func(a ...any) string
	name   string
}

func NewConsole(w io.Writer, assistantName string) *Console {
	return &Console{
		w:      w,
		prefix: color.New(color.FgCyan, color.Bold).SprintFunc(),
		name:   assistantName,
	}
}

func (c *Console) Say(_ context.Context, text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, err := fmt.Fprintf(c.w, "%s %s\n", c.prefix(c.name+":"), text)
	return err
}
