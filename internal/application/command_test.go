package application_test

import (
	"context"
	"errors"
	"testing"

	"voice-assistant/internal/application"
	"voice-assistant/internal/domain"
)

func TestParseCommand(t *testing.T) {
	tests := []struct {
		text         string
		wantAction   domain.Action
		wantArgument string
	}{
		{"play bohemian rhapsody", domain.ActionPlay, "bohemian rhapsody"},
		{"jenny play despacito", domain.ActionPlay, "despacito"},
		{"what time is it", domain.ActionTime, ""},
		{"Jenny, what time is it?", domain.ActionTime, ""},
		{"tell me a joke", domain.ActionJoke, ""},
		{"bye", domain.ActionBye, ""},
		{"goodbye jenny", domain.ActionBye, ""},
		{"bye-bye", domain.ActionBye, ""},
		{"what's the weather in new york", domain.ActionWeather, "new york"},
		{"weather in berlin", domain.ActionWeather, "berlin"},
		{"weather please", domain.ActionWeather, ""},
		{"who is ada lovelace", domain.ActionWiki, "ada lovelace"},
		{"what is photosynthesis", domain.ActionWiki, "photosynthesis"},
		{"tell me about the roman empire", domain.ActionWiki, "the roman empire"},
		{"who", domain.ActionWiki, ""},
		{"open the window", domain.ActionUnknown, ""},
		{"display settings", domain.ActionUnknown, ""},
		{"", domain.ActionUnknown, ""},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			cmd := application.ParseCommand(tt.text, "jenny")
			if cmd.Action != tt.wantAction {
				t.Errorf("action: got %s, want %s", cmd.Action, tt.wantAction)
			}
			if cmd.Argument != tt.wantArgument {
				t.Errorf("argument: got %q, want %q", cmd.Argument, tt.wantArgument)
			}
			if cmd.RawText != tt.text {
				t.Errorf("raw text: got %q, want %q", cmd.RawText, tt.text)
			}
		})
	}
}

type stubParser struct {
	cmd   *domain.Command
	err   error
	calls int
}

func (s *stubParser) Parse(_ context.Context, _ string) (*domain.Command, error) {
	s.calls++
	return s.cmd, s.err
}

func TestFallbackParser(t *testing.T) {
	logger := testLogger()
	ctx := context.Background()

	t.Run("keyword match skips fallback", func(t *testing.T) {
		secondary := &stubParser{cmd: &domain.Command{Action: domain.ActionJoke}}
		p := application.NewFallbackParser(application.NewKeywordParser("jenny"), secondary, logger)

		cmd, err := p.Parse(ctx, "what time is it")
		if err != nil {
			t.Fatalf("Parse: %v", err)
		}
		if cmd.Action != domain.ActionTime || secondary.calls != 0 {
			t.Errorf("got %s with %d fallback calls", cmd.Action, secondary.calls)
		}
	})

	t.Run("unknown uses fallback", func(t *testing.T) {
		secondary := &stubParser{cmd: &domain.Command{Action: domain.ActionWeather, Argument: "paris"}}
		p := application.NewFallbackParser(application.NewKeywordParser("jenny"), secondary, logger)

		cmd, err := p.Parse(ctx, "is it raining in paris")
		if err != nil {
			t.Fatalf("Parse: %v", err)
		}
		if cmd.Action != domain.ActionWeather || cmd.Argument != "paris" {
			t.Errorf("got %+v", cmd)
		}
	})

	t.Run("fallback error keeps unknown", func(t *testing.T) {
		secondary := &stubParser{err: errors.New("api down")}
		p := application.NewFallbackParser(application.NewKeywordParser("jenny"), secondary, logger)

		cmd, err := p.Parse(ctx, "is it raining in paris")
		if err != nil {
			t.Fatalf("Parse: %v", err)
		}
		if cmd.Action != domain.ActionUnknown {
			t.Errorf("action: got %s, want unknown", cmd.Action)
		}
	})
}
