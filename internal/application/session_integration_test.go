package application_test

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"

	"voice-assistant/internal/application"
	"voice-assistant/internal/infra/audio"
)

type recordingSTT struct {
	calls int
}

func (r *recordingSTT) Transcribe(_ context.Context, _ []byte) (string, error) {
	r.calls++
	return "", nil
}

func sessionDeps(listener application.Listener, speaker *mockSpeaker) application.Dependencies {
	return application.Dependencies{
		Listener:     listener,
		Speaker:      speaker,
		Parser:       application.NewKeywordParser("jenny"),
		Weather:      &mockWeather{},
		Encyclopedia: &mockEncyclopedia{},
		Player:       &mockPlayer{},
		Jokes:        mockJokes{},
		Now: func() time.Time {
			return time.Date(2024, 5, 1, 9, 15, 0, 0, time.UTC)
		},
	}
}

func TestIntegration_TypedCommandsFromDirectory(t *testing.T) {
	dir := t.TempDir()
	commands := map[string]string{
		"01.txt": "Jenny, what time is it",
		"02.txt": "tell me a joke",
		"03.txt": "bye",
	}
	for name, text := range commands {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(text), 0644); err != nil {
			t.Fatal(err)
		}
	}

	stt := &recordingSTT{}
	speaker := &mockSpeaker{}
	listener := application.NewSpeechListener(audio.NewFileSource(dir), stt)
	assistant := application.NewAssistant(sessionDeps(listener, speaker), application.SessionConfig{}, testLogger())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := assistant.Run(ctx); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if stt.calls != 0 {
		t.Errorf("STT should not be called for text commands, got %d calls", stt.calls)
	}
	for _, want := range []string{"Current time is 09:15 AM", "a joke", "I am glad to be of service. Have a nice day!"} {
		if !slices.Contains(speaker.said, want) {
			t.Errorf("missing %q in %q", want, speaker.said)
		}
	}

	processed, _ := filepath.Glob(filepath.Join(dir, "*.processed"))
	if len(processed) != len(commands) {
		t.Errorf("processed files: got %d, want %d", len(processed), len(commands))
	}
}

func TestIntegration_TextCommandOverHTTP(t *testing.T) {
	httpSource := audio.NewHTTPSource("127.0.0.1:0", "", testLogger())
	httpSource.InjectAudio([]byte("__TEXT__:play never gonna give you up"))

	stt := &recordingSTT{}
	speaker := &mockSpeaker{}
	deps := sessionDeps(application.NewSpeechListener(httpSource, stt), speaker)
	player := &mockPlayer{}
	deps.Player = player

	assistant := application.NewAssistant(deps, application.SessionConfig{}, testLogger())

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := assistant.Run(ctx); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if stt.calls != 0 {
		t.Error("STT should not be called for text commands")
	}
	if !slices.Contains(player.played, "never gonna give you up") {
		t.Errorf("played: %q", player.played)
	}
	if !strings.HasPrefix(speaker.said[len(speaker.said)-1], "I am glad to be of service") {
		t.Errorf("session should end with a farewell, said %q", speaker.said)
	}
}
