// Package config loads the engine configuration from an optional YAML file
// with CAREAGENDA_* environment overrides layered on top.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the full engine configuration.
type Config struct {
	Server       ServerConfig       `mapstructure:"server"`
	Logging      LoggingConfig      `mapstructure:"logging"`
	Matching     MatchingConfig     `mapstructure:"matching"`
	Temporal     TemporalConfig     `mapstructure:"temporal"`
	Availability AvailabilityConfig `mapstructure:"availability"`
	Services     ServicesConfig     `mapstructure:"services"`
}

// ServerConfig configures the HTTP boundary.
type ServerConfig struct {
	Host           string        `mapstructure:"host"`
	Port           int           `mapstructure:"port"`
	AllowedOrigins []string      `mapstructure:"allowed_origins"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	Debug          bool          `mapstructure:"debug"`
}

// LoggingConfig configures the structured logging backend.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// MatchingConfig holds the fuzzy matcher calibration.
type MatchingConfig struct {
	Threshold       float64 `mapstructure:"threshold"`
	AmbiguityMargin float64 `mapstructure:"ambiguity_margin"`
	TopN            int     `mapstructure:"top_n"`
}

// TemporalConfig holds the temporal normalizer defaults.
type TemporalConfig struct {
	DefaultDurationMinutes int    `mapstructure:"default_duration_minutes"`
	Locale                 string `mapstructure:"locale"`
}

// AvailabilityConfig bounds the conflict-search loop.
type AvailabilityConfig struct {
	MaxAttempts int           `mapstructure:"max_attempts"`
	CallTimeout time.Duration `mapstructure:"call_timeout"`
}

// ServicesConfig lists the collaborator endpoints.
type ServicesConfig struct {
	ExtractionURL   string        `mapstructure:"extraction_url"`
	DirectoryURL    string        `mapstructure:"directory_url"`
	AvailabilityURL string        `mapstructure:"availability_url"`
	CalendarURL     string        `mapstructure:"calendar_url"`
	ContactsURL     string        `mapstructure:"contacts_url"`
	CallTimeout     time.Duration `mapstructure:"call_timeout"`
}

// Default returns the built-in configuration. Thresholds are calibrated
// against the matcher and resolver test suites; see DESIGN.md.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:           "localhost",
			Port:           8085,
			AllowedOrigins: []string{"*"},
			RequestTimeout: 15 * time.Second,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Matching: MatchingConfig{
			Threshold:       0.72,
			AmbiguityMargin: 0.15,
			TopN:            3,
		},
		Temporal: TemporalConfig{
			DefaultDurationMinutes: 30,
			Locale:                 "fr",
		},
		Availability: AvailabilityConfig{
			MaxAttempts: 5,
			CallTimeout: 3 * time.Second,
		},
		Services: ServicesConfig{
			CallTimeout: 10 * time.Second,
		},
	}
}

// Load reads configuration from path (optional) and the environment.
// Missing file is not an error; defaults apply.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix("CAREAGENDA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v, Default())

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			if _, statErr := os.Stat(path); statErr == nil {
				return nil, fmt.Errorf("read config %s: %w", path, err)
			}
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("server.host", d.Server.Host)
	v.SetDefault("server.port", d.Server.Port)
	v.SetDefault("server.allowed_origins", d.Server.AllowedOrigins)
	v.SetDefault("server.request_timeout", d.Server.RequestTimeout)
	v.SetDefault("server.debug", d.Server.Debug)
	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.format", d.Logging.Format)
	v.SetDefault("matching.threshold", d.Matching.Threshold)
	v.SetDefault("matching.ambiguity_margin", d.Matching.AmbiguityMargin)
	v.SetDefault("matching.top_n", d.Matching.TopN)
	v.SetDefault("temporal.default_duration_minutes", d.Temporal.DefaultDurationMinutes)
	v.SetDefault("temporal.locale", d.Temporal.Locale)
	v.SetDefault("availability.max_attempts", d.Availability.MaxAttempts)
	v.SetDefault("availability.call_timeout", d.Availability.CallTimeout)
	v.SetDefault("services.extraction_url", d.Services.ExtractionURL)
	v.SetDefault("services.directory_url", d.Services.DirectoryURL)
	v.SetDefault("services.availability_url", d.Services.AvailabilityURL)
	v.SetDefault("services.calendar_url", d.Services.CalendarURL)
	v.SetDefault("services.contacts_url", d.Services.ContactsURL)
	v.SetDefault("services.call_timeout", d.Services.CallTimeout)
}

// Validate rejects configurations the engine cannot run with.
func (c *Config) Validate() error {
	if c.Matching.Threshold <= 0 || c.Matching.Threshold > 1 {
		return fmt.Errorf("matching.threshold must be in (0,1], got %v", c.Matching.Threshold)
	}
	if c.Matching.AmbiguityMargin < 0 || c.Matching.AmbiguityMargin >= 1 {
		return fmt.Errorf("matching.ambiguity_margin must be in [0,1), got %v", c.Matching.AmbiguityMargin)
	}
	if c.Matching.TopN <= 0 {
		return errors.New("matching.top_n must be positive")
	}
	if c.Temporal.DefaultDurationMinutes <= 0 {
		return errors.New("temporal.default_duration_minutes must be positive")
	}
	if c.Availability.MaxAttempts <= 0 {
		return errors.New("availability.max_attempts must be positive")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port out of range: %d", c.Server.Port)
	}
	return nil
}
