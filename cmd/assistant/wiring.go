package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"voice-assistant/config"
	"voice-assistant/internal/application"
	"voice-assistant/internal/face"
	"voice-assistant/internal/infra/anthropic"
	"voice-assistant/internal/infra/audio"
	"voice-assistant/internal/infra/camera"
	"voice-assistant/internal/infra/desktop"
	"voice-assistant/internal/infra/facemodel"
	"voice-assistant/internal/infra/gemini"
	"voice-assistant/internal/infra/homeassistant"
	"voice-assistant/internal/infra/llm"
	"voice-assistant/internal/infra/openai"
	"voice-assistant/internal/infra/pushover"
	"voice-assistant/internal/infra/speaker"
	"voice-assistant/internal/infra/vosk"
)

// faceStack is the face identification pipeline built from config.
type faceStack struct {
	model      face.Model
	capture    *face.CaptureService
	loader     *face.Loader
	matcher    *face.Matcher
	identifier *face.Identifier
	enroller   *face.Enroller
}

func (s *faceStack) Close() error {
	if c, ok := s.model.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

func buildFaceStack(cfg *config.Config, logger *slog.Logger) (*faceStack, error) {
	tolerance := config.DefaultTolerance(cfg.Face.Metric)
	if cfg.Face.Tolerance != nil {
		tolerance = *cfg.Face.Tolerance
	}

	model, err := facemodel.New(facemodel.Config{
		Backend:   cfg.Face.Backend,
		ModelsDir: cfg.Face.ModelsDir,
		ServerURL: cfg.Face.ServerURL,
		Tolerance: tolerance,
		MinScore:  cfg.Face.MinScore,
	})
	if err != nil {
		return nil, fmt.Errorf("loading face model: %w", err)
	}

	metric, err := face.ParseMetric(cfg.Face.Metric)
	if err != nil {
		return nil, err
	}

	// Validate already rejected malformed durations.
	interval, _ := cfg.Camera.IntervalDuration()
	timeout, _ := cfg.Camera.TimeoutDuration()

	opener := camera.NewFFmpegOpener(camera.Config{
		Binary:         cfg.Camera.FFmpeg,
		InputFormat:    cfg.Camera.InputFormat,
		DeviceTemplate: cfg.Camera.DeviceTemplate,
		Timeout:        timeout,
	})

	capture := face.NewCaptureService(opener, model, face.CaptureConfig{
		Devices:    cfg.Camera.Devices,
		Attempts:   cfg.Camera.Attempts,
		Interval:   interval,
		ScratchDir: cfg.Camera.ScratchDir,
	}, logger)
	loader := face.NewLoader(cfg.Face.ReferencesDir, model, logger)
	matcher := face.NewMatcher(model, metric, tolerance, logger)

	logger.Info("face model ready", "backend", model.Name(), "tolerance", tolerance, "model_tolerance", model.Tolerance(), "metric", cfg.Face.Metric)

	return &faceStack{
		model:      model,
		capture:    capture,
		loader:     loader,
		matcher:    matcher,
		identifier: face.NewIdentifier(capture, loader, matcher, logger),
		enroller:   face.NewEnroller(cfg.Face.ReferencesDir, logger),
	}, nil
}

func createAudioSource(cfg config.AudioConfig, logger *slog.Logger) application.AudioSource {
	switch cfg.Source {
	case "file":
		return audio.NewFileSource(cfg.FileDir)
	case "microphone":
		return audio.NewMicrophoneSource(cfg.SampleRate, logger)
	default:
		return audio.NewHTTPSource(cfg.HTTPAddr, cfg.AuthToken, logger)
	}
}

// createSTT prefers the offline recognizer when a model is configured.
func createSTT(cfg *config.Config, logger *slog.Logger) (application.SpeechToText, func()) {
	if cfg.Vosk.ModelPath != "" {
		rec, err := vosk.NewRecognizer(cfg.Vosk.ModelPath)
		if err == nil {
			logger.Info("using vosk speech recognition", "model", cfg.Vosk.ModelPath)
			return rec, func() { rec.Close() }
		}
		logger.Warn("vosk unavailable, falling back", "error", err)
	}
	if cfg.OpenAI.APIKey != "" {
		logger.Info("using whisper speech recognition", "language", cfg.OpenAI.Language)
		return openai.NewWhisperClient(cfg.OpenAI.APIKey, cfg.OpenAI.Language), func() {}
	}
	logger.Warn("no speech recognition configured, only text commands will work")
	return &application.NoopSTT{}, func() {}
}

// createParser consults a language model only for utterances the keyword
// rules do not understand.
func createParser(cfg *config.Config, logger *slog.Logger) application.CommandParser {
	keywords := application.NewKeywordParser(cfg.Assistant.Name)
	switch {
	case cfg.Anthropic.APIKey != "":
		return application.NewFallbackParser(keywords, llm.NewParser(anthropic.NewClaudeClient(cfg.Anthropic.APIKey, cfg.Anthropic.Model)), logger)
	case cfg.Gemini.APIKey != "":
		return application.NewFallbackParser(keywords, llm.NewParser(gemini.NewClient(cfg.Gemini.APIKey, cfg.Gemini.Model)), logger)
	default:
		return keywords
	}
}

func createSpeaker(cfg *config.Config) application.Speaker {
	console := speaker.NewConsole(os.Stdout, cfg.Assistant.Name)
	espeak := speaker.NewEspeak(speaker.EspeakConfig{
		Binary: cfg.Speaker.Binary,
		Voice:  cfg.Speaker.Voice,
		Rate:   cfg.Speaker.Rate,
	})

	switch cfg.Speaker.Engine {
	case "espeak":
		return espeak
	case "both":
		return speaker.Multi{console, espeak}
	default:
		return console
	}
}

func createNotifier(cfg *config.Config) application.Notifier {
	var notifiers application.MultiNotifier
	if cfg.Pushover.Enabled {
		notifiers = append(notifiers, pushover.NewClient(cfg.Pushover.Token, cfg.Pushover.UserKey, cfg.Assistant.Name))
	}
	if cfg.Notify.Desktop {
		notifiers = append(notifiers, desktop.NewNotifier(cfg.Assistant.Name))
	}
	if ha := cfg.Notify.HomeAssistant; ha.URL != "" {
		notifiers = append(notifiers, homeassistant.NewClient(ha.URL, ha.Token, ha.Service, cfg.Assistant.Name))
	}
	if len(notifiers) == 0 {
		return &application.NoopNotifier{}
	}
	return notifiers
}
