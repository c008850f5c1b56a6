package config

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Assistant AssistantConfig `yaml:"assistant"`
	Camera    CameraConfig    `yaml:"camera"`
	Face      FaceConfig      `yaml:"face"`
	Audio     AudioConfig     `yaml:"audio"`
	OpenAI    OpenAIConfig    `yaml:"openai"`
	Vosk      VoskConfig      `yaml:"vosk"`
	Anthropic AnthropicConfig `yaml:"anthropic"`
	Gemini    GeminiConfig    `yaml:"gemini"`
	Speaker   SpeakerConfig   `yaml:"speaker"`
	Weather   WeatherConfig   `yaml:"weather"`
	Wikipedia WikipediaConfig `yaml:"wikipedia"`
	Jokes     JokesConfig     `yaml:"jokes"`
	Pushover  PushoverConfig  `yaml:"pushover"`
	Notify    NotifyConfig    `yaml:"notify"`
	Log       LogConfig       `yaml:"log"`
}

type AssistantConfig struct {
	Name           string `yaml:"name"`
	ListenAttempts int    `yaml:"listen_attempts"`
}

type CameraConfig struct {
	Devices        []int  `yaml:"devices"`
	Attempts       int    `yaml:"attempts"`
	Interval       string `yaml:"interval"`
	ScratchDir     string `yaml:"scratch_dir"`
	FFmpeg         string `yaml:"ffmpeg"`
	InputFormat    string `yaml:"input_format"`
	DeviceTemplate string `yaml:"device_template"`
	Timeout        string `yaml:"timeout"`
}

// FaceConfig.Tolerance is the largest distance accepted as a match. Left
// unset it defaults per metric; an explicit 0 accepts only identical
// embeddings.
type FaceConfig struct {
	Backend       string   `yaml:"backend"`
	ModelsDir     string   `yaml:"models_dir"`
	ServerURL     string   `yaml:"server_url"`
	Tolerance     *float64 `yaml:"tolerance"`
	MinScore      float64  `yaml:"min_score"`
	Metric        string   `yaml:"metric"`
	ReferencesDir string   `yaml:"references_dir"`
}

type AudioConfig struct {
	Source     string `yaml:"source"`
	HTTPAddr   string `yaml:"http_addr"`
	FileDir    string `yaml:"file_dir"`
	SampleRate int    `yaml:"sample_rate"`
	AuthToken  string `yaml:"auth_token"`
}

type OpenAIConfig struct {
	APIKey   string `yaml:"api_key"`
	Language string `yaml:"language"`
}

type VoskConfig struct {
	ModelPath string `yaml:"model_path"`
}

type AnthropicConfig struct {
	APIKey string `yaml:"api_key"`
	Model  string `yaml:"model"`
}

type GeminiConfig struct {
	APIKey string `yaml:"api_key"`
	Model  string `yaml:"model"`
}

type SpeakerConfig struct {
	// Engine is console, espeak or both.
	Engine string `yaml:"engine"`
	Binary string `yaml:"binary"`
	Voice  string `yaml:"voice"`
	Rate   int    `yaml:"rate"`
}

type WeatherConfig struct {
	APIKey string `yaml:"api_key"`
}

type WikipediaConfig struct {
	Language  string `yaml:"language"`
	Sentences int    `yaml:"sentences"`
}

type JokesConfig struct {
	File string `yaml:"file"`
}

type PushoverConfig struct {
	Token   string `yaml:"token"`
	UserKey string `yaml:"user_key"`
	Enabled bool   `yaml:"enabled"`
}

type NotifyConfig struct {
	Desktop       bool                `yaml:"desktop"`
	HomeAssistant HomeAssistantConfig `yaml:"home_assistant"`
}

type HomeAssistantConfig struct {
	URL   string `yaml:"url"`
	Token string `yaml:"token"`
	// Service is the notify service name, e.g. mobile_app_phone.
	Service string `yaml:"service"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	return Parse(data)
}

// Parse expands ${VAR} references from the environment, fills defaults and validates.
func Parse(data []byte) (*Config, error) {
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	cfg.setDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns the configuration used when no config file exists.
func Default() *Config {
	var cfg Config
	cfg.setDefaults()
	return &cfg
}

func (c *Config) setDefaults() {
	if c.Assistant.Name == "" {
		c.Assistant.Name = "Jenny"
	}
	if c.Assistant.ListenAttempts == 0 {
		c.Assistant.ListenAttempts = 3
	}
	if len(c.Camera.Devices) == 0 {
		c.Camera.Devices = []int{0, 1}
	}
	if c.Camera.Attempts == 0 {
		c.Camera.Attempts = 10
	}
	if c.Camera.Interval == "" {
		c.Camera.Interval = "500ms"
	}
	if c.Camera.ScratchDir == "" {
		c.Camera.ScratchDir = "./current_user_face"
	}
	if c.Camera.FFmpeg == "" {
		c.Camera.FFmpeg = "ffmpeg"
	}
	if c.Camera.Timeout == "" {
		c.Camera.Timeout = "10s"
	}
	if c.Face.Backend == "" {
		c.Face.Backend = "dlib"
	}
	if c.Face.ModelsDir == "" {
		c.Face.ModelsDir = "./models"
	}
	if c.Face.ServerURL == "" {
		c.Face.ServerURL = "http://localhost:8000"
	}
	if c.Face.Metric == "" {
		c.Face.Metric = "euclidean"
	}
	if c.Face.Tolerance == nil {
		tolerance := DefaultTolerance(c.Face.Metric)
		c.Face.Tolerance = &tolerance
	}
	if c.Face.ReferencesDir == "" {
		c.Face.ReferencesDir = "./user_faces"
	}
	if c.Audio.Source == "" {
		c.Audio.Source = "http"
	}
	if c.Audio.HTTPAddr == "" {
		c.Audio.HTTPAddr = ":8080"
	}
	if c.Audio.FileDir == "" {
		c.Audio.FileDir = "./audio"
	}
	if c.Audio.SampleRate == 0 {
		c.Audio.SampleRate = 16000
	}
	if c.OpenAI.Language == "" {
		c.OpenAI.Language = "en"
	}
	if c.Anthropic.Model == "" {
		c.Anthropic.Model = "claude-sonnet-4-20250514"
	}
	if c.Gemini.Model == "" {
		c.Gemini.Model = "gemini-2.0-flash"
	}
	if c.Speaker.Engine == "" {
		c.Speaker.Engine = "console"
	}
	if c.Speaker.Rate == 0 {
		c.Speaker.Rate = 125
	}
	if c.Wikipedia.Language == "" {
		c.Wikipedia.Language = "en"
	}
	if c.Wikipedia.Sentences == 0 {
		c.Wikipedia.Sentences = 1
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var errs []error

	check := func(field, value string, allowed ...string) {
		if !slices.Contains(allowed, value) {
			errs = append(errs, fmt.Errorf("%s: %q is not one of %v", field, value, allowed))
		}
	}
	check("face.backend", c.Face.Backend, "dlib", "server")
	check("face.metric", c.Face.Metric, "euclidean", "cosine")
	check("audio.source", c.Audio.Source, "http", "file", "microphone")
	check("speaker.engine", c.Speaker.Engine, "console", "espeak", "both")
	check("log.level", c.Log.Level, "debug", "info", "warn", "error")
	check("log.format", c.Log.Format, "text", "json")

	if c.Assistant.ListenAttempts < 1 {
		errs = append(errs, errors.New("assistant.listen_attempts must be at least 1"))
	}
	if c.Camera.Attempts < 1 {
		errs = append(errs, errors.New("camera.attempts must be at least 1"))
	}
	for _, d := range c.Camera.Devices {
		if d < 0 {
			errs = append(errs, fmt.Errorf("camera.devices: negative index %d", d))
		}
	}
	if c.Face.Tolerance != nil && *c.Face.Tolerance < 0 {
		errs = append(errs, errors.New("face.tolerance must not be negative"))
	}
	if _, err := c.Camera.IntervalDuration(); err != nil {
		errs = append(errs, fmt.Errorf("camera.interval: %w", err))
	}
	if _, err := c.Camera.TimeoutDuration(); err != nil {
		errs = append(errs, fmt.Errorf("camera.timeout: %w", err))
	}
	if (c.Notify.HomeAssistant.URL == "") != (c.Notify.HomeAssistant.Token == "") {
		errs = append(errs, errors.New("notify.home_assistant: url and token must be set together"))
	}
	if c.Pushover.Enabled && (c.Pushover.Token == "" || c.Pushover.UserKey == "") {
		errs = append(errs, errors.New("pushover: token and user_key are required when enabled"))
	}

	return errors.Join(errs...)
}

func (c CameraConfig) IntervalDuration() (time.Duration, error) {
	return parseDuration(c.Interval)
}

func (c CameraConfig) TimeoutDuration() (time.Duration, error) {
	return parseDuration(c.Timeout)
}

func parseDuration(s string) (time.Duration, error) {
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, fmt.Errorf("negative duration %s", s)
	}
	return d, nil
}

// DefaultTolerance is the usual "same person" threshold for dlib embeddings
// under the named metric.
func DefaultTolerance(metric string) float64 {
	if metric == "cosine" {
		return 0.4
	}
	return 0.6
}
