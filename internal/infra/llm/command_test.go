package llm_test

import (
	"context"
	"errors"
	"testing"

	"voice-assistant/internal/domain"
	"voice-assistant/internal/infra/llm"
)

func TestDecodeCommand(t *testing.T) {
	tests := []struct {
		name         string
		reply        string
		wantAction   domain.Action
		wantArgument string
		wantErr      bool
	}{
		{"plain", `{"action":"wiki","argument":" Marie Curie "}`, domain.ActionWiki, "Marie Curie", false},
		{"fenced", "```json\n{\"action\":\"TIME\",\"argument\":\"\"}\n```", domain.ActionTime, "", false},
		{"unsupported", `{"action":"set_alarm","argument":"7am"}`, domain.ActionUnknown, "7am", false},
		{"not json", "Sure! Playing music.", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, err := llm.DecodeCommand(tt.reply, "raw")
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("DecodeCommand: %v", err)
			}
			if cmd.Action != tt.wantAction || cmd.Argument != tt.wantArgument || cmd.RawText != "raw" {
				t.Errorf("got %+v", cmd)
			}
		})
	}
}

type fakeCompleter struct {
	reply  string
	err    error
	system string
}

func (f *fakeCompleter) Complete(_ context.Context, system, _ string) (string, error) {
	f.system = system
	return f.reply, f.err
}

func TestParser_Parse(t *testing.T) {
	model := &fakeCompleter{reply: `{"action":"play","argument":"jazz"}`}
	p := llm.NewParser(model)

	cmd, err := p.Parse(context.Background(), "put on some jazz")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cmd.Action != domain.ActionPlay || cmd.Argument != "jazz" || cmd.RawText != "put on some jazz" {
		t.Errorf("got %+v", cmd)
	}
	if model.system != llm.SystemPrompt {
		t.Error("expected the command system prompt to be sent")
	}
}

func TestParser_ModelError(t *testing.T) {
	boom := errors.New("boom")
	p := llm.NewParser(&fakeCompleter{err: boom})

	if _, err := p.Parse(context.Background(), "hello"); !errors.Is(err, boom) {
		t.Errorf("expected model error, got %v", err)
	}
}
