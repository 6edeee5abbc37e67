// Package config loads and validates harvester configuration via Viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/athenaworks/orgharvest/internal/harvest"
)

// Config captures all configuration knobs loaded via Viper.
type Config struct {
	UserAgent        string                 `mapstructure:"user_agent"`
	RateLimitSeconds float64                `mapstructure:"rate_limit_seconds"`
	TimeoutSeconds   float64                `mapstructure:"timeout_seconds"`
	StrictRobots     bool                   `mapstructure:"strict_robots"`
	EnrichCareers    bool                   `mapstructure:"enrich_careers"`
	Logging          LoggingConfig          `mapstructure:"logging"`
	Metrics          MetricsConfig          `mapstructure:"metrics"`
	Sources          []harvest.SourceConfig `mapstructure:"sources"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

// MetricsConfig controls the optional Prometheus listener.
type MetricsConfig struct {
	Addr string `mapstructure:"addr"`
}

// Load builds a Config from disk/environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("ORGHARVEST")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("user_agent", "OrgHarvestBot/1.0 (+https://github.com/athenaworks/orgharvest)")
	v.SetDefault("rate_limit_seconds", 1.0)
	v.SetDefault("timeout_seconds", 15.0)
	v.SetDefault("strict_robots", true)
	v.SetDefault("enrich_careers", true)
	v.SetDefault("logging.development", false)
	v.SetDefault("metrics.addr", "")
}

// Validate enforces required values and reasonable limits. Per-source
// validation is deferred to harvest.ResolveSource so one bad source
// skips that source instead of failing the run.
func (c Config) Validate() error {
	if c.UserAgent == "" {
		return fmt.Errorf("user_agent must be set")
	}
	if c.RateLimitSeconds < 0 {
		return fmt.Errorf("rate_limit_seconds must be >= 0")
	}
	if c.TimeoutSeconds <= 0 {
		return fmt.Errorf("timeout_seconds must be > 0")
	}
	return nil
}

// RateLimit converts the configured rate limit into a duration.
func (c Config) RateLimit() time.Duration {
	return time.Duration(c.RateLimitSeconds * float64(time.Second))
}

// Timeout converts the configured request timeout into a duration.
func (c Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds * float64(time.Second))
}
