package camera

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strings"
	"time"

	"voice-assistant/internal/face"
)

// Runner executes a command and returns its standard output.
type Runner func(ctx context.Context, name string, args ...string) ([]byte, error)

type Config struct {
	Binary string
	// InputFormat is the ffmpeg demuxer: v4l2, avfoundation or dshow.
	InputFormat string
	// DeviceTemplate turns a camera index into an ffmpeg input, e.g. /dev/video%d.
	DeviceTemplate string
	Timeout        time.Duration
}

// DefaultConfig picks the capture demuxer for the current OS.
func DefaultConfig() Config {
	cfg := Config{Binary: "ffmpeg", Timeout: 10 * time.Second}
	switch runtime.GOOS {
	case "darwin":
		cfg.InputFormat = "avfoundation"
		cfg.DeviceTemplate = "%d"
	case "windows":
		cfg.InputFormat = "dshow"
		cfg.DeviceTemplate = "video=%d"
	default:
		cfg.InputFormat = "v4l2"
		cfg.DeviceTemplate = "/dev/video%d"
	}
	return cfg
}

// FFmpegOpener captures stills from local cameras through the ffmpeg binary.
type FFmpegOpener struct {
	cfg Config
	run Runner
}

func NewFFmpegOpener(cfg Config) *FFmpegOpener {
	defaults := DefaultConfig()
	if cfg.Binary == "" {
		cfg.Binary = defaults.Binary
	}
	if cfg.InputFormat == "" {
		cfg.InputFormat = defaults.InputFormat
	}
	if cfg.DeviceTemplate == "" {
		cfg.DeviceTemplate = defaults.DeviceTemplate
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaults.Timeout
	}
	return &FFmpegOpener{cfg: cfg, run: execRunner}
}

// WithRunner replaces command execution, for tests.
func (o *FFmpegOpener) WithRunner(run Runner) *FFmpegOpener {
	o.run = run
	return o
}

func (o *FFmpegOpener) Open(_ context.Context, index int) (face.Camera, error) {
	input := o.cfg.DeviceTemplate
	if strings.Contains(input, "%d") {
		input = fmt.Sprintf(input, index)
	}

	if o.cfg.InputFormat == "v4l2" {
		if _, err := os.Stat(input); err != nil {
			return nil, fmt.Errorf("camera %d: %w", index, err)
		}
	}

	return &Device{input: input, cfg: o.cfg, run: o.run}, nil
}

// Device is one camera input. ffmpeg holds the device only while grabbing.
type Device struct {
	input string
	cfg   Config
	run   Runner
}

func (d *Device) Input() string {
	return d.input
}

func (d *Device) Grab(ctx context.Context) ([]byte, string, error) {
	ctx, cancel := context.WithTimeout(ctx, d.cfg.Timeout)
	defer cancel()

	args := []string{"-hide_banner", "-loglevel", "error"}
	if d.cfg.InputFormat != "" {
		args = append(args, "-f", d.cfg.InputFormat)
	}
	args = append(args, "-i", d.input, "-frames:v", "1", "-f", "image2pipe", "-vcodec", "mjpeg", "-")

	out, err := d.run(ctx, d.cfg.Binary, args...)
	if err != nil {
		return nil, "", fmt.Errorf("grabbing frame from %s: %w", d.input, err)
	}
	if len(out) == 0 {
		return nil, "", fmt.Errorf("grabbing frame from %s: empty output", d.input)
	}
	return out, "jpeg", nil
}

func (d *Device) Close() error {
	return nil
}

func execRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			return nil, err
		}
		return nil, errors.Join(err, errors.New(msg))
	}
	return stdout.Bytes(), nil
}
