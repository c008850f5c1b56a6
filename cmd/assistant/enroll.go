package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"voice-assistant/internal/domain"
	"voice-assistant/internal/face"
)

var enrollCmd = &cobra.Command{
	Use:   "enroll NAME",
	Short: "Register a face under NAME",
	Long: `Capture a face from the camera, or take it from an image file, and store it
as the reference image for NAME. An existing reference for NAME is replaced.

Examples:
  assistant enroll ada
  assistant enroll "Grace Hopper" --image grace.png`,
	Args: cobra.ExactArgs(1),
	RunE: runEnroll,
}

func init() {
	rootCmd.AddCommand(enrollCmd)
	enrollCmd.Flags().String("image", "", "enroll from an image file instead of the camera")
}

func runEnroll(cmd *cobra.Command, args []string) error {
	imagePath, _ := cmd.Flags().GetString("image")

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

	var frame *domain.CapturedFrame
	if imagePath != "" {
		frame, err = frameFromFile(cmd, faces.model, imagePath)
	} else {
		frame, err = faces.capture.Acquire(cmd.Context())
	}
	if err != nil {
		return err
	}
	defer frame.Release()

	key, err := faces.enroller.Enroll(args[0], frame)
	if err != nil {
		return err
	}

	green := color.New(color.FgGreen).SprintFunc()
	fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", green("enrolled:"), key)
	return nil
}

// frameFromFile loads a reference image and checks that it contains a face.
func frameFromFile(cmd *cobra.Command, detector face.Detector, path string) (*domain.CapturedFrame, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading image: %w", err)
	}
	jpeg, err := face.ToJPEG(data)
	if err != nil {
		return nil, err
	}

	regions, err := detector.Detect(cmd.Context(), jpeg)
	if err != nil {
		return nil, fmt.Errorf("detecting faces: %w", err)
	}
	if len(regions) == 0 {
		return nil, fmt.Errorf("%s: %w", path, domain.ErrNoFaceFound)
	}

	return &domain.CapturedFrame{Data: jpeg, Format: "jpeg", Faces: regions, CameraIndex: -1}, nil
}
