package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"

	"github.com/quantrail/riskstats/internal/core"
)

// Config holds everything the CLI feeds into the metrics pipeline.
type Config struct {
	Input    InputConfig    `mapstructure:"input"`
	Sanitize SanitizeConfig `mapstructure:"sanitize"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
	Log      LogConfig      `mapstructure:"log"`
}

// InputConfig describes how the return series CSV is read.
type InputConfig struct {
	// DateLayout is the Go time layout of the CSV date column.
	DateLayout string `mapstructure:"date_layout"`
	// StartingEquity scales the compounded equity curve; must be positive.
	StartingEquity float64 `mapstructure:"starting_equity"`
}

// SanitizeConfig selects the non-finite handling policy.
type SanitizeConfig struct {
	LeadingToZero  bool `mapstructure:"leading_to_zero"`
	InteriorToZero bool `mapstructure:"interior_to_zero"`
}

// MetricsConfig holds per-metric tuning.
type MetricsConfig struct {
	// KRatioHalfLifeYears switches the K-ratio to its exponentially
	// weighted form when positive.
	KRatioHalfLifeYears float64 `mapstructure:"k_ratio_half_life_years"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Mode string `mapstructure:"mode"` // "production" or "development"
}

// Load reads configuration from file
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	// Support environment variable overrides
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	// Expand environment variables in string values
	for _, key := range v.AllKeys() {
		val := v.GetString(key)
		if strings.HasPrefix(val, "${") && strings.HasSuffix(val, "}") {
			envKey := strings.TrimSuffix(strings.TrimPrefix(val, "${"), "}")
			v.Set(key, os.Getenv(envKey))
		}
	}

	cfg := Defaults()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	return cfg, nil
}

// Defaults returns a config with sensible defaults
func Defaults() *Config {
	return &Config{
		Input: InputConfig{
			DateLayout:     "2006-01-02",
			StartingEquity: 1_000_000,
		},
		Sanitize: SanitizeConfig{
			LeadingToZero:  false,
			InteriorToZero: true,
		},
		Log: LogConfig{
			Mode: "production",
		},
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Input.StartingEquity <= 0 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("starting_equity must be positive, got %v", c.Input.StartingEquity))
	}
	if c.Input.DateLayout == "" {
		return core.WrapError(core.ErrConfigMissing,
			fmt.Errorf("date_layout is required"))
	}
	if c.Metrics.KRatioHalfLifeYears < 0 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("k_ratio_half_life_years cannot be negative, got %v", c.Metrics.KRatioHalfLifeYears))
	}
	switch c.Log.Mode {
	case "", "production", "development":
	default:
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("log mode must be production or development, got %q", c.Log.Mode))
	}
	return nil
}
