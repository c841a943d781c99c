// Package config holds the daemon settings read from the config file,
// LEXICC_* environment variables and command-line flags.
package config

import (
	"fmt"
	"slices"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/lexicc/lexicc/internal/playback"
	"github.com/lexicc/lexicc/internal/synth"
	"github.com/spf13/viper"
)

// Config contains all daemon configuration options.
type Config struct {
	// StateDir holds the inbox and audio cache. Empty means the default
	// state root.
	StateDir string `mapstructure:"state_dir"`

	PollInterval time.Duration `mapstructure:"poll_interval"`
	Speed        float64       `mapstructure:"speed"`
	Reflow       bool          `mapstructure:"reflow"`
	OnError      string        `mapstructure:"on_error"`
	SampleRate   int           `mapstructure:"sample_rate"`

	Cache CacheConfig `mapstructure:"cache"`
	Synth SynthConfig `mapstructure:"synth"`
}

// CacheConfig contains audio cache settings.
type CacheConfig struct {
	// MaxSize is a human readable size such as "500MB". Empty means the
	// cache is never pruned.
	MaxSize string `mapstructure:"max_size"`
}

// SynthConfig contains speech service settings.
type SynthConfig struct {
	Timeout           time.Duration `mapstructure:"timeout"`
	RequestsPerMinute int           `mapstructure:"requests_per_minute"`
}

// LogConfig is read from the environment only, before any config file.
type LogConfig struct {
	Debug bool   `env:"LEXICC_DEBUG"`
	File  string `env:"LEXICC_LOG_FILE"`
}

// Default returns a Config with the default settings.
func Default() Config {
	return Config{
		PollInterval: time.Second,
		Speed:        1.15,
		Reflow:       true,
		OnError:      string(playback.PolicyAbort),
		SampleRate:   synth.DefaultSampleRate,
		Synth: SynthConfig{
			Timeout: 30 * time.Second,
		},
	}
}

// SetDefaults registers the defaults with v so unset keys resolve.
func SetDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("state_dir", d.StateDir)
	v.SetDefault("poll_interval", d.PollInterval)
	v.SetDefault("speed", d.Speed)
	v.SetDefault("reflow", d.Reflow)
	v.SetDefault("on_error", d.OnError)
	v.SetDefault("sample_rate", d.SampleRate)
	v.SetDefault("cache.max_size", d.Cache.MaxSize)
	v.SetDefault("synth.timeout", d.Synth.Timeout)
	v.SetDefault("synth.requests_per_minute", d.Synth.RequestsPerMinute)
}

// Load decodes the settings held by v and validates them.
func Load(v *viper.Viper) (Config, error) {
	cfg := Default()
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unable to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.PollInterval <= 0 {
		return fmt.Errorf("poll_interval must be positive, got %v", c.PollInterval)
	}

	if c.Speed < 0.25 || c.Speed > 4.0 {
		return fmt.Errorf("speed must be between 0.25 and 4.0, got %.2f", c.Speed)
	}

	if _, err := playback.ParseErrorPolicy(c.OnError); err != nil {
		return fmt.Errorf("on_error: %w", err)
	}

	if !slices.Contains(synth.SupportedSampleRates, c.SampleRate) {
		return fmt.Errorf("invalid sample rate %d: must be one of %v", c.SampleRate, synth.SupportedSampleRates)
	}

	if _, err := c.Cache.MaxBytes(); err != nil {
		return err
	}

	if c.Synth.Timeout < 0 {
		return fmt.Errorf("synth.timeout must not be negative, got %v", c.Synth.Timeout)
	}
	if c.Synth.RequestsPerMinute < 0 {
		return fmt.Errorf("synth.requests_per_minute must not be negative, got %d", c.Synth.RequestsPerMinute)
	}

	return nil
}

// ErrorPolicy returns the parsed on_error setting.
func (c *Config) ErrorPolicy() playback.ErrorPolicy {
	policy, err := playback.ParseErrorPolicy(c.OnError)
	if err != nil {
		return playback.PolicyAbort
	}
	return policy
}

// MaxBytes parses MaxSize. Zero means unbounded.
func (c CacheConfig) MaxBytes() (int64, error) {
	if c.MaxSize == "" {
		return 0, nil
	}
	n, err := humanize.ParseBytes(c.MaxSize)
	if err != nil {
		return 0, fmt.Errorf("invalid cache.max_size %q: %w", c.MaxSize, err)
	}
	return int64(n), nil //nolint:gosec
}
