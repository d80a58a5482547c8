// Package config provides configuration management for the b2b-edge application.
package config

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"github.com/yourusername/b2b-edge/internal/models"
)

const (
	envPrefix         = "B2B_EDGE"
	defaultConfigPath = "config/config.yaml"
)

// Load reads and parses the configuration from file and environment variables
// It expands environment variable placeholders in the YAML file (${VAR_NAME})
func Load(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = defaultConfigPath
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config file not found at %s: %w", configPath, err)
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Expand environment variables in the configuration (${VAR} syntax)
	expanded := os.ExpandEnv(string(data))

	v := newViper()
	if err := v.ReadConfig(bytes.NewBufferString(expanded)); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	return cfg, nil
}

// LoadWithDefaults loads a .env file if present, then the configuration
// file if present, filling optional fields with defaults
func LoadWithDefaults(configPath string) (*Config, error) {
	// A missing .env is not an error
	_ = godotenv.Load()

	if configPath == "" {
		configPath = defaultConfigPath
	}

	v := newViper()
	setDefaults(v)

	if data, err := os.ReadFile(configPath); err == nil {
		expanded := os.ExpandEnv(string(data))
		if err := v.ReadConfig(bytes.NewBufferString(expanded)); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	// If file doesn't exist, continue with defaults and environment variables

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if len(cfg.Sports) == 0 {
		cfg.Sports = DefaultSports()
	}

	return cfg, nil
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	return v
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "b2b-edge")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.log_level", "info")

	v.SetDefault("engine.preset", "canonical")
	v.SetDefault("engine.form_window", 5)
	v.SetDefault("engine.b2b_definition", "played_yesterday")
	v.SetDefault("engine.upcoming_days", 30)

	v.SetDefault("staking.kelly_fraction", 0.25)
	v.SetDefault("staking.max_stake_amount", 1000.0)
	v.SetDefault("staking.default_odds", 2.0)
	v.SetDefault("staking.win_rate_clamp_ceiling", 85.0)
	v.SetDefault("staking.live_win_rate_min_sample", 10)

	v.SetDefault("ledger.backend", "json")
	v.SetDefault("ledger.path", "betting_tracker.json")
	v.SetDefault("ledger.initial_bankroll", 1000.0)

	v.SetDefault("database.port", 5432)
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.max_connections", 10)
	v.SetDefault("database.max_idle_connections", 2)

	v.SetDefault("datasource.base_url", "https://site.api.espn.com/apis/site/v2/sports")
	v.SetDefault("datasource.timeout_seconds", 15)
	v.SetDefault("datasource.requests_per_second", 4.0)
	v.SetDefault("datasource.burst", 2)
	v.SetDefault("datasource.max_retries", 3)
	v.SetDefault("datasource.cache_ttl_seconds", 3600)

	v.SetDefault("optimizer.min_rested_wins", []int{3, 4})
	v.SetDefault("optimizer.advantage_s", []int{2, 3})
	v.SetDefault("optimizer.advantage_a", []int{1, 2})
	v.SetDefault("optimizer.advantage_b", []int{2, 3})
	v.SetDefault("optimizer.min_sample", 100)
	v.SetDefault("optimizer.workers", 4)
	v.SetDefault("optimizer.kelly_fractions", []float64{0.10, 0.25, 0.50, 0.75, 1.00})
	v.SetDefault("optimizer.max_bet_percent", 0.10)

	v.SetDefault("schedule.enabled", true)
	v.SetDefault("schedule.scan_cron", "0 14 * * *")
	v.SetDefault("schedule.health_port", 8081)

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.port", 9090)
	v.SetDefault("metrics.path", "/metrics")
}

// DefaultSports returns the NHL and NBA settings with their calibrated tier tables
func DefaultSports() []SportConfig {
	return []SportConfig{
		{
			Name:            "NHL",
			Enabled:         true,
			AllowAwayBets:   true,
			BaselineWinRate: 58.4,
			Season:          "2026",
			Source:          "espn",
			Tiers: []models.TierInfo{
				{Name: models.TierS, Criteria: "Rested 4-5 wins in L5 AND 3+ win advantage", HistoricalWinRate: 68.2, SampleSize: 129},
				{Name: models.TierA, Criteria: "Rested 4-5 wins in L5 AND 2+ win advantage", HistoricalWinRate: 68.0, SampleSize: 153},
			},
		},
		{
			Name:            "NBA",
			Enabled:         true,
			AllowAwayBets:   false,
			BaselineWinRate: 61.2,
			Season:          "2025",
			Preset:          "nba_home",
			Source:          "espn",
			Tiers: []models.TierInfo{
				{Name: models.TierS, Criteria: "HOME rested, 4-5 wins in L5 AND 2+ win advantage", HistoricalWinRate: 76.0, SampleSize: 263},
				{Name: models.TierA, Criteria: "HOME rested, 4-5 wins in L5 AND 1+ win advantage", HistoricalWinRate: 67.9, SampleSize: 109},
				{Name: models.TierB, Criteria: "HOME rested, form advantage >=2 (any form level)", HistoricalWinRate: 76.0, SampleSize: 146},
			},
		},
	}
}
