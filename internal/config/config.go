// Package config loads the appliance settings from settings.toml and the
// environment into one immutable struct handed to each component.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"

	"github.com/cloudfx/visioncam/internal/modes"
)

// apiKeyEnv is the only credential source; keys never live in settings.toml.
const apiKeyEnv = "ANTHROPIC_API_KEY"

// Config is the loaded, validated application configuration. It is built
// once at startup and treated as read-only afterward.
type Config struct {
	API     APIConfig      `mapstructure:"api"`
	Network NetworkConfig  `mapstructure:"network"`
	Camera  CameraConfig   `mapstructure:"camera"`
	Flash   FlashConfig    `mapstructure:"flash"`
	Display DisplayConfig  `mapstructure:"display"`
	Storage StorageConfig  `mapstructure:"storage"`
	Prompts []PromptConfig `mapstructure:"prompts"`
}

// APIConfig configures the vision endpoint and request shape.
type APIConfig struct {
	Endpoint       string `mapstructure:"endpoint"`
	Version        string `mapstructure:"version"`
	Model          string `mapstructure:"model"`
	MaxTokens      int    `mapstructure:"max_tokens"`
	MaxImageKB     int    `mapstructure:"max_image_kb"`
	MaxEncodedKB   int    `mapstructure:"max_encoded_kb"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`

	// Key is read from the environment, never from the file.
	Key string `mapstructure:"-"`
}

// NetworkConfig is the retry policy.
type NetworkConfig struct {
	MaxRetries        int `mapstructure:"max_retries"`
	RetryDelaySeconds int `mapstructure:"retry_delay_seconds"`
}

// CameraConfig selects the initial quality preset.
type CameraConfig struct {
	InitialMode int `mapstructure:"initial_mode"`
}

// FlashConfig controls the auto-flash decision.
type FlashConfig struct {
	AutoEnabled   bool `mapstructure:"auto_enabled"`
	DarkThreshold int  `mapstructure:"dark_threshold"`
}

// DisplayConfig describes the text area of the panel.
type DisplayConfig struct {
	Columns      int `mapstructure:"columns"`
	LinesPerPage int `mapstructure:"lines_per_page"`
	ErrorSeconds int `mapstructure:"error_seconds"`
}

// StorageConfig locates the image directory on removable media.
type StorageConfig struct {
	ImageDir string `mapstructure:"image_dir"`
}

// PromptConfig is one entry of the [[prompts]] table.
type PromptConfig struct {
	Label  string `mapstructure:"label"`
	Prompt string `mapstructure:"prompt"`
}

// Load reads settings.toml (explicit path, or the search path) plus the
// environment, and validates the result. Validation failures are fatal by
// design: the appliance must not start half-configured.
func Load(cfgFile string) (*Config, error) {
	v := viper.New()

	v.SetDefault("api.endpoint", "https://api.anthropic.com/v1/messages")
	v.SetDefault("api.version", "2023-06-01")
	v.SetDefault("api.model", "claude-3-haiku-20240307")
	v.SetDefault("api.max_tokens", 300)
	v.SetDefault("api.max_image_kb", 4096)
	v.SetDefault("api.max_encoded_kb", 5120)
	v.SetDefault("api.timeout_seconds", 30)
	v.SetDefault("network.max_retries", 3)
	v.SetDefault("network.retry_delay_seconds", 2)
	v.SetDefault("camera.initial_mode", 1)
	v.SetDefault("flash.auto_enabled", true)
	v.SetDefault("flash.dark_threshold", 40)
	v.SetDefault("display.columns", 40)
	v.SetDefault("display.lines_per_page", 9)
	v.SetDefault("display.error_seconds", 2)
	v.SetDefault("storage.image_dir", defaultImageDir())

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "visioncam"))
		}
		v.AddConfigPath(".")
		v.SetConfigName("settings")
		v.SetConfigType("toml")
	}

	v.SetEnvPrefix("VISIONCAM")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read settings: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parse settings: %w", err)
	}

	cfg.API.Key = os.Getenv(apiKeyEnv)

	if len(cfg.Prompts) == 0 {
		for _, p := range modes.DefaultPrompts() {
			cfg.Prompts = append(cfg.Prompts, PromptConfig{Label: p.Label, Prompt: p.Prompt})
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the invariants the rest of the program assumes. Error
// messages name the exact setting so misconfiguration is diagnosable from
// the console.
func (c *Config) Validate() error {
	if c.API.Key == "" {
		return fmt.Errorf("missing API key: set the %s environment variable", apiKeyEnv)
	}
	if c.API.Endpoint == "" {
		return errors.New("api.endpoint must not be empty")
	}
	if c.API.MaxTokens < 1 {
		return errors.New("api.max_tokens must be positive")
	}
	if c.API.MaxImageKB < 1 || c.API.MaxEncodedKB < c.API.MaxImageKB {
		return errors.New("api.max_encoded_kb must be at least api.max_image_kb")
	}
	if c.Network.MaxRetries < 1 {
		return errors.New("network.max_retries must be at least 1")
	}
	if len(c.Prompts) == 0 {
		return errors.New("no prompts configured: add at least one [[prompts]] entry")
	}
	for i, p := range c.Prompts {
		if p.Label == "" || p.Prompt == "" {
			return fmt.Errorf("prompts[%d]: label and prompt must both be set", i)
		}
	}
	nModes := len(modes.DefaultQualityModes())
	if c.Camera.InitialMode < 0 || c.Camera.InitialMode >= nModes {
		return fmt.Errorf("camera.initial_mode must be in [0, %d)", nModes)
	}
	if c.Flash.DarkThreshold < 0 || c.Flash.DarkThreshold > 255 {
		return errors.New("flash.dark_threshold must be in [0, 255]")
	}
	if c.Display.Columns < 10 || c.Display.LinesPerPage < 1 {
		return errors.New("display.columns/lines_per_page too small")
	}
	if c.Storage.ImageDir == "" {
		return errors.New("storage.image_dir must not be empty")
	}
	return nil
}

// PromptDefinitions converts the configured prompts to the domain type.
func (c *Config) PromptDefinitions() []modes.PromptDefinition {
	out := make([]modes.PromptDefinition, 0, len(c.Prompts))
	for _, p := range c.Prompts {
		out = append(out, modes.PromptDefinition{Label: p.Label, Prompt: p.Prompt})
	}
	return out
}

// Timeout returns the per-attempt request timeout.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.API.TimeoutSeconds) * time.Second
}

// RetryDelay returns the fixed inter-attempt delay.
func (c *Config) RetryDelay() time.Duration {
	return time.Duration(c.Network.RetryDelaySeconds) * time.Second
}

// ErrorInterval returns how long an error flash stays on screen.
func (c *Config) ErrorInterval() time.Duration {
	return time.Duration(c.Display.ErrorSeconds) * time.Second
}

func defaultImageDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "./captures"
	}
	return filepath.Join(home, ".local", "share", "visioncam", "captures")
}
