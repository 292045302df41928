package config

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Config holds application configuration values.
type Config struct {
	Addr              string        `mapstructure:"addr" yaml:"addr" validate:"required"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout" yaml:"read_header_timeout"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
	LogLevel          string        `mapstructure:"log_level" yaml:"log_level" validate:"omitempty,oneof=debug info warn warning error off disabled"`
	WSRateLimit       int           `mapstructure:"ws_rate_limit" yaml:"ws_rate_limit" validate:"gte=0"`

	Rooms       []string        `mapstructure:"rooms" yaml:"rooms" validate:"required,min=1,dive,required"`
	DefaultRoom string          `mapstructure:"default_room" yaml:"default_room" validate:"required"`
	SeedHistory bool            `mapstructure:"seed_history" yaml:"seed_history"`
	Synthetic   SyntheticConfig `mapstructure:"synthetic" yaml:"synthetic"`
}

// SyntheticConfig tunes the generator that impersonates other participants.
type SyntheticConfig struct {
	FirstDelayMin time.Duration `mapstructure:"first_delay_min" yaml:"first_delay_min" validate:"gt=0"`
	FirstDelayMax time.Duration `mapstructure:"first_delay_max" yaml:"first_delay_max" validate:"gtfield=FirstDelayMin"`
	RearmDelayMin time.Duration `mapstructure:"rearm_delay_min" yaml:"rearm_delay_min" validate:"gt=0"`
	RearmDelayMax time.Duration `mapstructure:"rearm_delay_max" yaml:"rearm_delay_max" validate:"gtfield=RearmDelayMin"`
	Phrases       []string      `mapstructure:"phrases" yaml:"phrases,omitempty" validate:"dive,required"`
}

// Default returns configuration with reasonable starter defaults.
func Default() Config {
	return Config{
		Addr:              "127.0.0.1:8080",
		ReadHeaderTimeout: 5 * time.Second,
		ShutdownTimeout:   5 * time.Second,
		LogLevel:          "info",
		WSRateLimit:       120,
		Rooms:             []string{"general", "random", "tech", "support"},
		DefaultRoom:       "general",
		SeedHistory:       true,
		Synthetic: SyntheticConfig{
			FirstDelayMin: 5 * time.Second,
			FirstDelayMax: 13 * time.Second,
			RearmDelayMin: 10 * time.Second,
			RearmDelayMax: 30 * time.Second,
		},
	}
}

// Validate checks field constraints and that the default room is configured.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if !slices.Contains(c.Rooms, c.DefaultRoom) {
		return errors.New("invalid config: default_room must be one of rooms")
	}
	return nil
}

// UpdateFrom overwrites non-zero values from other config into receiver.
func (c *Config) UpdateFrom(other Config) {
	if other.Addr != "" {
		c.Addr = other.Addr
	}
	if other.ReadHeaderTimeout != 0 {
		c.ReadHeaderTimeout = other.ReadHeaderTimeout
	}
	if other.ShutdownTimeout != 0 {
		c.ShutdownTimeout = other.ShutdownTimeout
	}
	if other.LogLevel != "" {
		c.LogLevel = other.LogLevel
	}
	if len(other.Rooms) > 0 {
		c.Rooms = other.Rooms
	}
	if other.DefaultRoom != "" {
		c.DefaultRoom = other.DefaultRoom
	}
}
