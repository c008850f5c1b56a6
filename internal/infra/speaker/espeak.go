package speaker

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// Runner executes a command to completion.
type Runner func(ctx context.Context, name string, args ...string) error

type EspeakConfig struct {
	Binary string
	Voice  string
	// Rate is in words per minute.
	Rate int
}

// Espeak speaks through the espeak-ng (or espeak) command line synthesizer.
// Say blocks until the utterance has been played.
type Espeak struct {
	cfg EspeakConfig
	run Runner
}

func NewEspeak(cfg EspeakConfig) *Espeak {
	if cfg.Binary == "" {
		cfg.Binary = "espeak-ng"
	}
	if cfg.Voice == "" {
		cfg.Voice = "en-us+f3"
	}
	if cfg.Rate <= 0 {
		cfg.Rate = 125
	}
	return &Espeak{cfg: cfg, run: execRunner}
}

func (e *Espeak) WithRunner(run Runner) *Espeak {
	e.run = run
	return e
}

func (e *Espeak) Say(ctx context.Context, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	args := []string{"-v", e.cfg.Voice, "-s", strconv.Itoa(e.cfg.Rate), "--", text}
	if err := e.run(ctx, e.cfg.Binary, args...); err != nil {
		return fmt.Errorf("speaking with %s: %w", e.cfg.Binary, err)
	}
	return nil
}

func execRunner(ctx context.Context, name string, args ...string) error {
	out, err := exec.CommandContext(ctx, name, args...).CombinedOutput()
	if err != nil && len(out) > 0 {
		return fmt.Errorf("%w: %s", err, strings.TrimSpace(string(out)))
	}
	return err
}
