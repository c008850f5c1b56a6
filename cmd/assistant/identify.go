package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"voice-assistant/internal/domain"
)

var identifyCmd = &cobra.Command{
	Use:   "identify",
	Short: "Capture one frame and report who is in front of the camera",
	RunE:  runIdentify,
}

func init() {
	rootCmd.AddCommand(identifyCmd)
}

func runIdentify(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger := setupLogger(cfg.Log)

	faces, err := buildFaceStack(cfg, logger)
	if err != nil {
		return err
	}
	defer faces.Close()

	result, frame, err := faces.identifier.Identify(cmd.Context())
	if err != nil {
		return err
	}
	defer frame.Release()

	green := color.New(color.FgGreen).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()

	out := cmd.OutOrStdout()
	switch result.Kind {
	case domain.MatchIdentified:
		fmt.Fprintf(out, "%s %s (distance %.4f, camera %d)\n", green("identified:"), result.Name, result.Distance, frame.CameraIndex)
	case domain.MatchNoMatch:
		fmt.Fprintf(out, "%s face does not match any of the registered users\n", yellow("no match:"))
	case domain.MatchRegistryEmpty:
		fmt.Fprintf(out, "%s no reference images in %s\n", yellow("registry empty:"), faces.loader.Dir())
	case domain.MatchNoFaceDetected:
		fmt.Fprintf(out, "%s the model found no face in the captured frame\n", yellow("no face:"))
	}
	return nil
}
