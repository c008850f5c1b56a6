package main

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"voice-assistant/internal/application"
	"voice-assistant/internal/infra/jokes"
	"voice-assistant/internal/infra/weather"
	"voice-assistant/internal/infra/wikipedia"
	"voice-assistant/internal/infra/youtube"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start an assistant session",
	Long: `Identify the user by face, then listen for commands until they say bye,
ask to play something, or speech fails three times in a row.

Examples:
  # Session with typed commands over HTTP
  assistant run

  # Skip face identification
  assistant run --no-face`,
	RunE: runAssistant,
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().Bool("no-face", false, "skip face identification")
}

func runAssistant(cmd *cobra.Command, _ []string) error {
	noFace, _ := cmd.Flags().GetBool("no-face")

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger := setupLogger(cfg.Log)
	ctx := cmd.Context()

	stt, closeSTT := createSTT(cfg, logger)
	defer closeSTT()

	book, err := jokes.Load(cfg.Jokes.File)
	if err != nil {
		return err
	}

	deps := application.Dependencies{
		Listener:     application.NewSpeechListener(createAudioSource(cfg.Audio, logger), stt),
		Speaker:      createSpeaker(cfg),
		Parser:       createParser(cfg, logger),
		Weather:      weather.NewClient(cfg.Weather.APIKey),
		Encyclopedia: wikipedia.NewClient(cfg.Wikipedia.Language, cfg.Wikipedia.Sentences),
		Player:       youtube.NewPlayer(logger),
		Jokes:        book,
		Notifier:     createNotifier(cfg),
	}

	faceUnavailable := false
	if !noFace {
		faces, err := buildFaceStack(cfg, logger)
		if err != nil {
			logger.Warn("face recognition disabled", "error", err)
			faceUnavailable = true
		} else {
			defer faces.Close()
			deps.Faces = faces.identifier
			deps.Enroller = faces.enroller
		}
	}

	assistant := application.NewAssistant(deps, application.SessionConfig{
		AssistantName:   cfg.Assistant.Name,
		ListenAttempts:  cfg.Assistant.ListenAttempts,
		FaceUnavailable: faceUnavailable,
	}, logger)

	logger.Info("starting voice assistant",
		"audio_source", cfg.Audio.Source,
		"face_recognition", deps.Faces != nil,
	)

	if err := assistant.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
