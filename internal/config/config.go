package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	Language string        `yaml:"language"`
	Remote   RemoteConfig  `yaml:"remote"`
	Whisper  WhisperConfig `yaml:"whisper"`
	Audio    AudioConfig   `yaml:"audio"`
	Hotkey   HotkeyConfig  `yaml:"hotkey"`
	Output   OutputConfig  `yaml:"output"`
	UI       UIConfig      `yaml:"ui"`
	LogLevel string        `yaml:"log_level"`
}

// RemoteConfig holds settings for the hosted transcription API.
type RemoteConfig struct {
	Endpoint       string `yaml:"endpoint"`
	Model          string `yaml:"model"`
	APIKey         string `yaml:"api_key"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// WhisperConfig holds settings for the local whisper.cpp fallback.
type WhisperConfig struct {
	BinPath   string `yaml:"bin_path"`
	ModelPath string `yaml:"model_path"`
}

// AudioConfig holds audio capture settings. Device is a PortAudio device
// index; -1 selects the system default input. SampleRate is the target
// rate of the WAV artifacts, not the capture rate.
type AudioConfig struct {
	Device     int `yaml:"device"`
	SampleRate int `yaml:"sample_rate"`
	Channels   int `yaml:"channels"`
}

// HotkeyConfig holds hotkey-related settings.
type HotkeyConfig struct {
	Keys []string `yaml:"keys"`
	Mode string   `yaml:"mode"` // "hold" or "toggle"
}

// OutputConfig holds text delivery settings.
type OutputConfig struct {
	Method string `yaml:"method"` // "clipboard", "type" or "paste"
}

// UIConfig holds presentation preferences. The CLI ignores them but
// persists them for graphical front ends.
type UIConfig struct {
	ButtonSize  string `yaml:"button_size"` // small, normal, large, xlarge
	Orientation string `yaml:"orientation"` // vertical, horizontal
}

// DefaultConfigDir returns the default config directory path.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "audio-transcribe")
}

// DefaultConfigPath returns the default config file path.
func DefaultConfigPath() string {
	return filepath.Join(DefaultConfigDir(), "config.yaml")
}

// DefaultModelsDir returns the default directory for downloaded models.
func DefaultModelsDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".local", "share", "audio-transcribe", "models")
}

// Default returns a Config with sensible default values. The language
// default honors the TRANSCRIBE_LANGUAGE environment variable.
func Default() *Config {
	language := os.Getenv("TRANSCRIBE_LANGUAGE")
	if language == "" {
		language = "es"
	}

	return &Config{
		Language: language,
		Remote: RemoteConfig{
			Endpoint:       "https://api.groq.com/openai/v1/audio/transcriptions",
			Model:          "whisper-large-v3-turbo",
			TimeoutSeconds: 60,
		},
		Whisper: WhisperConfig{
			BinPath:   "whisper-cli",
			ModelPath: filepath.Join(DefaultModelsDir(), "ggml-base.bin"),
		},
		Audio: AudioConfig{
			Device:     -1,
			SampleRate: 16000,
			Channels:   1,
		},
		Hotkey: HotkeyConfig{
			Keys: []string{"ctrl", "alt", "space"},
			Mode: "toggle",
		},
		Output: OutputConfig{
			Method: "clipboard",
		},
		UI: UIConfig{
			ButtonSize:  "normal",
			Orientation: "vertical",
		},
		LogLevel: "info",
	}
}

// Load reads and parses a YAML config file. Missing fields are filled
// with defaults; unknown keys are ignored. Tilde (~) in the whisper paths
// is expanded to the user's home directory.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	cfg.Whisper.BinPath = expandTilde(cfg.Whisper.BinPath)
	cfg.Whisper.ModelPath = expandTilde(cfg.Whisper.ModelPath)

	return cfg, nil
}

// Save writes the config as YAML, creating parent directories as needed.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating config dir: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

// RemoteAPIKey returns the remote API key, preferring the persisted
// config value over the GROQ_API_KEY environment variable.
func (c *Config) RemoteAPIKey() string {
	if c.Remote.APIKey != "" {
		return c.Remote.APIKey
	}
	return os.Getenv("GROQ_API_KEY")
}

// Validate checks the config for invalid values.
func (c *Config) Validate() error {
	if c.Language == "" {
		return fmt.Errorf("language must not be empty")
	}

	if c.Remote.Endpoint == "" {
		return fmt.Errorf("remote.endpoint must not be empty")
	}

	if c.Remote.TimeoutSeconds <= 0 {
		return fmt.Errorf("remote.timeout_seconds must be > 0")
	}

	if c.Audio.Device < -1 {
		return fmt.Errorf("audio.device must be -1 (default) or a device index")
	}

	if c.Audio.SampleRate <= 0 {
		return fmt.Errorf("audio.sample_rate must be > 0")
	}

	if c.Audio.Channels <= 0 {
		return fmt.Errorf("audio.channels must be > 0")
	}

	if len(c.Hotkey.Keys) == 0 {
		return fmt.Errorf("hotkey.keys must not be empty")
	}

	switch c.Hotkey.Mode {
	case "hold", "toggle":
	default:
		return fmt.Errorf("hotkey.mode must be \"hold\" or \"toggle\", got %q", c.Hotkey.Mode)
	}

	switch c.Output.Method {
	case "clipboard", "type", "paste":
	default:
		return fmt.Errorf("output.method must be \"clipboard\", \"type\" or \"paste\", got %q", c.Output.Method)
	}

	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log_level must be debug, info, warn, or error, got %q", c.LogLevel)
	}

	return nil
}

// ParseLogLevel maps a config log level string to a slog.Level.
// Unknown values default to info.
func ParseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// expandTilde replaces a leading ~ with the user's home directory.
func expandTilde(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}
