package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds the complete application configuration.
type Config struct {
	Log        LogConfig        `mapstructure:"log"`
	Paths      PathsConfig      `mapstructure:"paths"`
	Classifier ClassifierConfig `mapstructure:"classifier"`
	Worker     WorkerConfig     `mapstructure:"worker"`
	Database   DatabaseConfig   `mapstructure:"database"`
	NATS       NATSConfig       `mapstructure:"nats"`
	Retry      RetryConfig      `mapstructure:"retry"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// PathsConfig holds the pipeline file locations.
type PathsConfig struct {
	Input       string `mapstructure:"input"`        // Raw transcript CSV
	Cleaned     string `mapstructure:"cleaned"`      // Normalized transcript CSV
	OutputDir   string `mapstructure:"output_dir"`   // Request table, JSON and summary tables
	FinalDir    string `mapstructure:"final_dir"`    // Staged final request table
	FrontendDir string `mapstructure:"frontend_dir"` // Optional dashboard checkout receiving a copy
}

// ClassifierConfig holds classifier configuration.
type ClassifierConfig struct {
	TrackedSenders []string `mapstructure:"tracked_senders"`
	RulesFile      string   `mapstructure:"rules_file"` // Empty selects the built-in rules
}

// WorkerConfig holds the parallel map configuration.
type WorkerConfig struct {
	Concurrency int `mapstructure:"concurrency"`
}

// DatabaseConfig holds database configuration.
type DatabaseConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	Name           string `mapstructure:"name"`
	Schema         string `mapstructure:"schema"`
	SSLMode        string `mapstructure:"sslmode"`
	MaxConnections int    `mapstructure:"max_connections"`
}

// NATSConfig holds NATS configuration.
type NATSConfig struct {
	Enabled       bool          `mapstructure:"enabled"`
	URL           string        `mapstructure:"url"`
	SubjectPrefix string        `mapstructure:"subject_prefix"`
	MaxReconnects int           `mapstructure:"max_reconnects"`
	ReconnectWait time.Duration `mapstructure:"reconnect_wait"`
}

// RetryConfig holds the connect retry policy of the database and NATS sinks.
type RetryConfig struct {
	MaxRetries   int           `mapstructure:"max_retries"`
	InitialDelay time.Duration `mapstructure:"initial_delay"`
	MaxDelay     time.Duration `mapstructure:"max_delay"`
}

// SetDefaults registers the default value of every configuration key.
func SetDefaults(v *viper.Viper) {
	// Logging defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Path defaults
	v.SetDefault("paths.input", "data/01_raw/messages.csv")
	v.SetDefault("paths.cleaned", "data/02_processed/messages_cleaned.csv")
	v.SetDefault("paths.output_dir", "data/03_output")
	v.SetDefault("paths.final_dir", "data/03_final")
	v.SetDefault("paths.frontend_dir", "frontend")

	// Classifier defaults
	v.SetDefault("classifier.tracked_senders", []string{"Thad Norman", "Them"})
	v.SetDefault("classifier.rules_file", "")

	// Worker defaults
	v.SetDefault("worker.concurrency", 4)

	// Database defaults
	v.SetDefault("database.enabled", false)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.name", "chatledger")
	v.SetDefault("database.schema", "chatledger")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_connections", 10)

	// NATS defaults
	v.SetDefault("nats.enabled", false)
	v.SetDefault("nats.url", "nats://localhost:4222")
	v.SetDefault("nats.subject_prefix", "ledger.requests")
	v.SetDefault("nats.max_reconnects", 5)
	v.SetDefault("nats.reconnect_wait", "2s")

	// Retry defaults
	v.SetDefault("retry.max_retries", 3)
	v.SetDefault("retry.initial_delay", "500ms")
	v.SetDefault("retry.max_delay", "5s")
}

// New creates a new Config instance from Viper.
func New(v *viper.Viper) (*Config, error) {
	var config Config

	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Worker.Concurrency < 1 {
		return errors.New("worker.concurrency must be at least 1")
	}

	if len(c.Classifier.TrackedSenders) == 0 {
		return errors.New("classifier.tracked_senders requires at least one sender")
	}
	for _, sender := range c.Classifier.TrackedSenders {
		if strings.TrimSpace(sender) == "" {
			return errors.New("classifier.tracked_senders cannot contain empty names")
		}
	}

	if c.Database.Enabled {
		if c.Database.User == "" {
			return errors.New("database.user is required")
		}
		if c.Database.Name == "" {
			return errors.New("database.name is required")
		}
		if c.Database.Port < 1 || c.Database.Port > 65535 {
			return errors.New("database.port must be between 1 and 65535")
		}
	}

	if c.Retry.MaxRetries < 0 {
		return errors.New("retry.max_retries cannot be negative")
	}

	if c.NATS.Enabled && !strings.HasPrefix(c.NATS.URL, "nats://") {
		return fmt.Errorf("nats.url must use the nats:// scheme: %s", c.NATS.URL)
	}

	return nil
}
