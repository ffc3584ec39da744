// Package config loads and validates the fixlink configuration.
//
// Sources, in order of precedence: environment variables (FIXLINK_*), the
// configuration file (YAML), and the defaults in defaults.go. Command-line
// flags select the file (--config) but do not override individual values.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Config is the static configuration of one fixlink endpoint.
type Config struct {
	// Logging controls log output behavior.
	Logging LoggingConfig `mapstructure:"logging"`

	// Session identifies this endpoint and its counterparty.
	Session SessionConfig `mapstructure:"session"`

	// Journal selects the durability backing.
	Journal JournalConfig `mapstructure:"journal"`

	// Metrics contains the Prometheus endpoint configuration.
	Metrics MetricsConfig `mapstructure:"metrics"`
}

// LoggingConfig mirrors internal/logger.Config.
type LoggingConfig struct {
	Level  string `mapstructure:"level" validate:"omitempty,oneof=DEBUG INFO WARN ERROR"`
	Format string `mapstructure:"format" validate:"omitempty,oneof=text json"`
	Output string `mapstructure:"output"`
}

// SessionConfig holds the session identity and transport endpoint.
type SessionConfig struct {
	// SenderCompID is the local identifier sent in tag 49.
	SenderCompID string `mapstructure:"sender_comp_id" validate:"required"`

	// TargetCompID is the remote identifier sent in tag 56.
	TargetCompID string `mapstructure:"target_comp_id" validate:"required"`

	// Host and Port address the TCP endpoint: the dial target for the
	// initiator, the bind address for the acceptor.
	Host string `mapstructure:"host" validate:"required"`
	Port int    `mapstructure:"port" validate:"required,gt=0,lte=65535"`

	// Role selects which side of the Logon this endpoint plays.
	Role string `mapstructure:"role" validate:"required,oneof=initiator acceptor"`

	// HeartbeatPeriod is the negotiated HeartBtInt, in seconds.
	HeartbeatPeriod int `mapstructure:"heartbeat_period" validate:"required,gt=0"`

	// LogonTimeout bounds the wait for the peer's Logon answer, in
	// seconds. Zero means 2 x HeartbeatPeriod.
	LogonTimeout int `mapstructure:"logon_timeout" validate:"min=0"`
}

// JournalConfig selects and locates the journal backend.
type JournalConfig struct {
	// Backend is one of sqlite, badger, memory.
	Backend string `mapstructure:"backend" validate:"required,oneof=sqlite badger memory"`

	// Path is the database file (sqlite) or directory (badger).
	// ":memory:" gives an ephemeral sqlite store.
	Path string `mapstructure:"path"`
}

// MetricsConfig controls the optional Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled"`
	Port    int  `mapstructure:"port" validate:"omitempty,gt=0,lte=65535"`
}

// Load reads the configuration from path (or the defaults when path is
// empty), applies environment overrides and validates the result.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("FIXLINK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %q: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the struct-level constraints.
func Validate(cfg *Config) error {
	validate := validator.New()
	if err := validate.Struct(cfg); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("invalid config: field %q fails %q", fe.Namespace(), fe.Tag())
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	if cfg.Journal.Backend != "memory" && cfg.Journal.Path == "" {
		return fmt.Errorf("invalid config: journal.path is required for backend %q", cfg.Journal.Backend)
	}
	return nil
}
