// Package config provides application configuration with multi-source
// priority.
//
// Configuration sources (highest to lowest priority):
//  1. Environment variables (runtime override)
//  2. Config file (~/.brainora/config.yaml)
//  3. Default values
//
// Security: the API key is never logged; MarshalJSON masks it. The config
// directory uses 0750 permissions.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Sentinel errors for configuration validation, checked with errors.Is().
var (
	// ErrMissingAPIKey indicates the Gemini API key is not set.
	ErrMissingAPIKey = errors.New("missing API key")

	// ErrInvalidModelName indicates a model name is empty.
	ErrInvalidModelName = errors.New("invalid model name")

	// ErrInvalidTemperature indicates the temperature is out of range.
	ErrInvalidTemperature = errors.New("invalid temperature")
)

// Default model identifiers, matching the generation endpoints the client
// was built against.
const (
	DefaultProModel   = "gemini-3-pro-preview"
	DefaultFlashModel = "gemini-3-flash-preview"
	DefaultImageModel = "gemini-2.5-flash-image"
)

// Config stores application configuration.
type Config struct {
	// Gemini API access
	GeminiAPIKey string `mapstructure:"gemini_api_key" json:"gemini_api_key"` // SENSITIVE: masked in MarshalJSON

	// Model selection. Pro serves knowledge/live, Flash everything else,
	// Image the synthesis path.
	ProModel   string `mapstructure:"pro_model" json:"pro_model"`
	FlashModel string `mapstructure:"flash_model" json:"flash_model"`
	ImageModel string `mapstructure:"image_model" json:"image_model"`

	Temperature float32 `mapstructure:"temperature" json:"temperature"`

	// DataDir holds the persisted user and session records.
	DataDir string `mapstructure:"data_dir" json:"data_dir"`

	// Logging
	LogLevel string `mapstructure:"log_level" json:"log_level"`
	LogJSON  bool   `mapstructure:"log_json" json:"log_json"`

	// Tracing. Empty endpoint disables tracing.
	OTLPEndpoint string `mapstructure:"otlp_endpoint" json:"otlp_endpoint"`
	ServiceName  string `mapstructure:"service_name" json:"service_name"`
}

// Load loads configuration.
// Priority: environment variables > configuration file > default values.
func Load() (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("getting user home directory: %w", err)
	}

	configDir := filepath.Join(home, ".brainora")
	if err := os.MkdirAll(configDir, 0o750); err != nil {
		return nil, fmt.Errorf("creating config directory: %w", err)
	}

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(configDir)
	viper.AddConfigPath(".")

	setDefaults(configDir)
	bindEnvVariables()

	if err := viper.ReadInConfig(); err != nil {
		// A missing config file is fine: defaults apply.
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		slog.Debug("configuration file not found, using defaults",
			"search_paths", []string{configDir, "."})
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating configuration: %w", err)
	}
	return &cfg, nil
}

func setDefaults(configDir string) {
	viper.SetDefault("pro_model", DefaultProModel)
	viper.SetDefault("flash_model", DefaultFlashModel)
	viper.SetDefault("image_model", DefaultImageModel)
	viper.SetDefault("temperature", 0.5)
	viper.SetDefault("data_dir", configDir)
	viper.SetDefault("log_level", "info")
	viper.SetDefault("log_json", false)
	viper.SetDefault("otlp_endpoint", "")
	viper.SetDefault("service_name", "brainora")
}

// bindEnvVariables binds environment variables explicitly. Only the secret
// uses an env var by default; everything else lives in the config file.
func bindEnvVariables() {
	_ = viper.BindEnv("gemini_api_key", "BRAINORA_GEMINI_API_KEY", "GEMINI_API_KEY")
	_ = viper.BindEnv("data_dir", "BRAINORA_DATA_DIR")
	_ = viper.BindEnv("log_level", "BRAINORA_LOG_LEVEL")
	_ = viper.BindEnv("otlp_endpoint", "BRAINORA_OTLP_ENDPOINT")
}

// Validate checks configuration invariants, fail-fast. The API key is
// checked separately at command startup so non-chat commands (sessions,
// export, version) work without one.
func (c *Config) Validate() error {
	if c.ProModel == "" || c.FlashModel == "" || c.ImageModel == "" {
		return ErrInvalidModelName
	}
	if c.Temperature < 0 || c.Temperature > 2 {
		return fmt.Errorf("%w: %v not in [0, 2]", ErrInvalidTemperature, c.Temperature)
	}
	return nil
}

// RequireAPIKey returns ErrMissingAPIKey when no Gemini key is configured.
func (c *Config) RequireAPIKey() error {
	if c.GeminiAPIKey == "" {
		return fmt.Errorf("%w: set BRAINORA_GEMINI_API_KEY", ErrMissingAPIKey)
	}
	return nil
}

// MarshalJSON masks sensitive fields. When adding new secrets, update this
// method.
func (c Config) MarshalJSON() ([]byte, error) {
	type alias Config
	masked := alias(c)
	if masked.GeminiAPIKey != "" {
		masked.GeminiAPIKey = "***"
	}
	return json.Marshal(masked)
}
