// Package conf loads application configuration from the environment.
// Variables use the GOALBOT_ prefix, e.g. GOALBOT_HTTP_PORT.
package conf

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config represents application configuration
type Config struct {
	// HTTP Configuration
	HTTPPort int `envconfig:"HTTP_PORT" default:"8080"`

	// Record store
	DBPath string `envconfig:"DB_PATH" default:""`

	// Seconds a synchronous webhook call waits for the router's reply
	// before the timeout fallback fires.
	SubmitTimeoutSeconds int `envconfig:"SUBMIT_TIMEOUT_SECONDS" default:"20"`

	// WhatsApp Business API transport
	WhatsApp WhatsAppConfig

	// Legacy whatsapp_web JSON bridge; empty disables the transport.
	LegacyAPIURL string `envconfig:"LEGACY_API_URL" default:""`

	// OpenAI-compatible API for audio transcription; empty disables the
	// audio processor.
	OpenAIKey string `envconfig:"OPENAI_API_KEY" default:""`

	Debug bool `envconfig:"DEBUG" default:"false"`
}

// WhatsAppConfig contains Business API client configuration
type WhatsAppConfig struct {
	BaseURL        string  `envconfig:"WHATSAPP_BASE_URL" default:"https://graph.facebook.com/v17.0"`
	Token          string  `envconfig:"WHATSAPP_TOKEN" default:""`
	PhoneNumberID  string  `envconfig:"WHATSAPP_PHONE_NUMBER_ID" default:""`
	TimeoutSeconds int     `envconfig:"WHATSAPP_TIMEOUT_SECONDS" default:"10"`
	MaxRetries     int     `envconfig:"WHATSAPP_MAX_RETRIES" default:"3"`
	BackoffFactor  float64 `envconfig:"WHATSAPP_BACKOFF_FACTOR" default:"0.5"`
}

// Load reads configuration from the environment
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("GOALBOT", &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	if cfg.DBPath == "" {
		homeDir, _ := os.UserHomeDir()
		cfg.DBPath = filepath.Join(homeDir, ".goalbot", "goalbot.db")
	}

	return &cfg, nil
}

// SubmitTimeout returns the webhook submit deadline as a duration
func (c *Config) SubmitTimeout() time.Duration {
	return time.Duration(c.SubmitTimeoutSeconds) * time.Second
}

// Timeout returns the per-request deadline for the Business API client
func (c *WhatsAppConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// Enabled reports whether the Business API transport is configured
func (c *WhatsAppConfig) Enabled() bool {
	return c.Token != "" || c.PhoneNumberID != ""
}

// Validate validates the configuration. Only boot-time configuration errors
// are fatal; everything else degrades to a disabled component.
func (c *Config) Validate() error {
	if c.WhatsApp.Enabled() {
		if c.WhatsApp.Token == "" || c.WhatsApp.PhoneNumberID == "" {
			return &ConfigError{
				Field:   "GOALBOT_WHATSAPP_TOKEN/GOALBOT_WHATSAPP_PHONE_NUMBER_ID",
				Message: "both are required to enable the Business API transport",
			}
		}
	}
	if c.WhatsApp.MaxRetries < 0 {
		return &ConfigError{Field: "GOALBOT_WHATSAPP_MAX_RETRIES", Message: "must be >= 0"}
	}
	if c.WhatsApp.BackoffFactor <= 0 {
		return &ConfigError{Field: "GOALBOT_WHATSAPP_BACKOFF_FACTOR", Message: "must be > 0"}
	}
	if c.SubmitTimeoutSeconds <= 0 {
		return &ConfigError{Field: "GOALBOT_SUBMIT_TIMEOUT_SECONDS", Message: "must be > 0"}
	}
	return nil
}

// ConfigError represents a configuration error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return e.Field + ": " + e.Message
}
