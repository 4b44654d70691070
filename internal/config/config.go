// Package config provides application configuration with multi-source priority.
//
// Configuration sources (highest to lowest priority):
//  1. Environment variables (runtime override)
//  2. Config file (~/.polyglot/config.yaml)
//  3. Default values
//
// Security: GEMINI_API_KEY is read from the environment only and is never
// written to the config file or logged.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Sentinel errors for configuration validation, checked with errors.Is().
var (
	// ErrMissingAPIKey indicates GEMINI_API_KEY is not set.
	ErrMissingAPIKey = errors.New("missing API key")

	// ErrInvalidModelName indicates the model name is empty or malformed.
	ErrInvalidModelName = errors.New("invalid model name")

	// ErrInvalidTemperature indicates the temperature value is out of range.
	ErrInvalidTemperature = errors.New("invalid temperature")

	// ErrInvalidTheme indicates the theme is neither "dark" nor "light".
	ErrInvalidTheme = errors.New("invalid theme")

	// ErrInvalidHistoryLimit indicates max_history_messages is out of range.
	ErrInvalidHistoryLimit = errors.New("invalid max history messages")
)

// Theme identifiers used in Config.Theme.
const (
	ThemeDark  = "dark"
	ThemeLight = "light"
)

const (
	// DefaultModelName is the Gemini model used for all three modes.
	DefaultModelName = "gemini-2.5-flash"

	// DefaultTemperature is the fixed sampling temperature: moderate,
	// neither deterministic nor maximally random.
	DefaultTemperature float32 = 0.7

	// DefaultMaxHistoryMessages bounds how much of a mode's log is sent as
	// prior-turn context per request.
	DefaultMaxHistoryMessages = 100

	// MaxAllowedHistoryMessages is the absolute cap to keep requests sane.
	MaxAllowedHistoryMessages = 1000
)

// Config stores application configuration.
type Config struct {
	// Model configuration
	ModelName   string  `mapstructure:"model_name"`
	Temperature float32 `mapstructure:"temperature"`

	// UI configuration
	Theme string `mapstructure:"theme"` // "dark" (default) or "light"

	// Conversation history configuration
	MaxHistoryMessages int `mapstructure:"max_history_messages"`

	// Audio capture configuration
	Recorder    string `mapstructure:"recorder"`     // capture binary; empty = autodetect
	AudioDevice string `mapstructure:"audio_device"` // recorder-specific device name

	// APIKey is sourced from GEMINI_API_KEY. Never persisted, never logged.
	APIKey string `mapstructure:"-"`
}

// Load loads configuration with priority: env > config file > defaults.
func Load() (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("getting user home directory: %w", err)
	}

	configDir := filepath.Join(home, ".polyglot")
	if err := os.MkdirAll(configDir, 0o750); err != nil {
		return nil, fmt.Errorf("creating config directory: %w", err)
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configDir)
	v.AddConfigPath(".") // Also support current directory

	setDefaults(v)

	v.SetEnvPrefix("POLYGLOT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		// A missing config file is not an error; defaults apply.
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		slog.Debug("configuration file not found, using defaults",
			"search_paths", []string{configDir, "."})
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing configuration: %w", err)
	}

	cfg.APIKey = os.Getenv("GEMINI_API_KEY")

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating configuration: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("model_name", DefaultModelName)
	v.SetDefault("temperature", DefaultTemperature)
	v.SetDefault("theme", ThemeDark)
	v.SetDefault("max_history_messages", DefaultMaxHistoryMessages)
	v.SetDefault("recorder", "")
	v.SetDefault("audio_device", "")
}

// Validate checks all configuration values and fails fast on the first
// violation. The API key is intentionally NOT validated here: a missing key
// must fail the generation call cleanly at request time, not crash startup.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("configuration is nil")
	}

	name := strings.TrimSpace(c.ModelName)
	if name == "" {
		return fmt.Errorf("%w: model name is empty", ErrInvalidModelName)
	}
	if strings.ContainsAny(name, " \t\n") {
		return fmt.Errorf("%w: %q contains whitespace", ErrInvalidModelName, c.ModelName)
	}

	if c.Temperature < 0 || c.Temperature > 2 {
		return fmt.Errorf("%w: %.2f not in [0.0, 2.0]", ErrInvalidTemperature, c.Temperature)
	}

	if c.Theme != ThemeDark && c.Theme != ThemeLight {
		return fmt.Errorf("%w: %q (want %q or %q)", ErrInvalidTheme, c.Theme, ThemeDark, ThemeLight)
	}

	if c.MaxHistoryMessages < 1 || c.MaxHistoryMessages > MaxAllowedHistoryMessages {
		return fmt.Errorf("%w: %d not in [1, %d]",
			ErrInvalidHistoryLimit, c.MaxHistoryMessages, MaxAllowedHistoryMessages)
	}

	return nil
}
