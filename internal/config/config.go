// Package config provides configuration management for the b2b-edge application.
package config

import (
	"fmt"
	"time"

	"github.com/yourusername/b2b-edge/internal/gamelog"
	"github.com/yourusername/b2b-edge/internal/models"
	"github.com/yourusername/b2b-edge/internal/staking"
	"github.com/yourusername/b2b-edge/internal/strategy"
)

// Config represents the complete application configuration
type Config struct {
	App        AppConfig        `mapstructure:"app" validate:"required"`
	Engine     EngineConfig     `mapstructure:"engine" validate:"required"`
	Staking    StakingConfig    `mapstructure:"staking" validate:"required"`
	Sports     []SportConfig    `mapstructure:"sports" validate:"required,min=1,dive"`
	Ledger     LedgerConfig     `mapstructure:"ledger" validate:"required"`
	Database   DatabaseConfig   `mapstructure:"database"`
	DataSource DataSourceConfig `mapstructure:"datasource" validate:"required"`
	Optimizer  OptimizerConfig  `mapstructure:"optimizer" validate:"required"`
	Schedule   ScheduleConfig   `mapstructure:"schedule" validate:"required"`
	Alerts     AlertsConfig     `mapstructure:"alerts"`
	Metrics    MetricsConfig    `mapstructure:"metrics" validate:"required"`
	Secrets    SecretsConfig    `mapstructure:"secrets"`
}

// AppConfig represents application-level configuration
type AppConfig struct {
	Name        string `mapstructure:"name" validate:"required"`
	Environment string `mapstructure:"environment" validate:"required,environment"`
	LogLevel    string `mapstructure:"log_level" validate:"required,loglevel"`
}

// EngineConfig controls rest and form evaluation
type EngineConfig struct {
	Preset               string               `mapstructure:"preset" validate:"required,preset"`
	Thresholds           *strategy.Thresholds `mapstructure:"thresholds"`
	FormWindow           int                  `mapstructure:"form_window" validate:"required,gt=0,lte=20"`
	BackToBackDefinition string               `mapstructure:"b2b_definition" validate:"required,b2bdefinition"`
	UpcomingDays         int                  `mapstructure:"upcoming_days" validate:"required,gt=0,lte=180"`
}

// CustomThresholds names a threshold set read from a thresholds section
const CustomThresholds = "custom"

// StakingConfig represents fractional Kelly sizing
type StakingConfig struct {
	KellyFraction        float64 `mapstructure:"kelly_fraction" validate:"required,gt=0,lte=1"`
	MaxStakeAmount       float64 `mapstructure:"max_stake_amount" validate:"required,gt=0"`
	DefaultOdds          float64 `mapstructure:"default_odds" validate:"required,gt=1"`
	WinRateClampCeiling  float64 `mapstructure:"win_rate_clamp_ceiling" validate:"required,gt=0,lte=100"`
	LiveWinRateMinSample int     `mapstructure:"live_win_rate_min_sample" validate:"required,gt=0"`
}

// SportConfig represents one league's settings and tier table
type SportConfig struct {
	Name            string               `mapstructure:"name" validate:"required,oneof=NHL NBA"`
	Enabled         bool                 `mapstructure:"enabled"`
	AllowAwayBets   bool                 `mapstructure:"allow_away_bets"`
	BaselineWinRate float64              `mapstructure:"baseline_wr" validate:"gte=0,lte=100"`
	Season          string               `mapstructure:"season" validate:"required"`
	Preset          string               `mapstructure:"preset" validate:"omitempty,preset"`
	Thresholds      *strategy.Thresholds `mapstructure:"thresholds"`
	Source          string               `mapstructure:"source" validate:"required,oneof=espn csv"`
	CSVPath         string               `mapstructure:"csv_path"`
	Tiers           []models.TierInfo    `mapstructure:"tiers" validate:"required,min=1,dive"`
}

// LedgerConfig represents wager ledger persistence
type LedgerConfig struct {
	Backend         string  `mapstructure:"backend" validate:"required,oneof=json postgres"`
	Path            string  `mapstructure:"path"`
	InitialBankroll float64 `mapstructure:"initial_bankroll" validate:"required,gt=0"`
}

// DatabaseConfig represents database connection configuration
type DatabaseConfig struct {
	Host               string `mapstructure:"host"`
	Port               int    `mapstructure:"port" validate:"omitempty,min=1,max=65535"`
	Name               string `mapstructure:"name"`
	User               string `mapstructure:"user"`
	Password           string `mapstructure:"password"`
	SSLMode            string `mapstructure:"ssl_mode" validate:"omitempty,oneof=disable require verify-full"`
	MaxConnections     int    `mapstructure:"max_connections" validate:"omitempty,gt=0"`
	MaxIdleConnections int    `mapstructure:"max_idle_connections" validate:"omitempty,gt=0"`
}

// DataSourceConfig represents the schedule and standings supplier
type DataSourceConfig struct {
	BaseURL           string  `mapstructure:"base_url" validate:"required,url"`
	APIKey            string  `mapstructure:"api_key"`
	TimeoutSeconds    int     `mapstructure:"timeout_seconds" validate:"required,gt=0"`
	RequestsPerSecond float64 `mapstructure:"requests_per_second" validate:"required,gt=0"`
	Burst             int     `mapstructure:"burst" validate:"required,gt=0"`
	MaxRetries        int     `mapstructure:"max_retries" validate:"gte=0"`
	CacheTTLSeconds   int     `mapstructure:"cache_ttl_seconds" validate:"required,gt=0"`
}

// OptimizerConfig represents the threshold grid and Kelly validation
type OptimizerConfig struct {
	MinRestedWins  []int     `mapstructure:"min_rested_wins" validate:"required,min=1,dive,gte=0,lte=5"`
	AdvantageS     []int     `mapstructure:"advantage_s" validate:"required,min=1,dive,gt=0"`
	AdvantageA     []int     `mapstructure:"advantage_a" validate:"required,min=1,dive,gt=0"`
	AdvantageB     []int     `mapstructure:"advantage_b" validate:"required,min=1,dive,gt=0"`
	MinSample      int       `mapstructure:"min_sample" validate:"required,gt=0"`
	Workers        int       `mapstructure:"workers" validate:"required,gt=0,lte=64"`
	ExportPath     string    `mapstructure:"export_path"`
	KellyFractions []float64 `mapstructure:"kelly_fractions" validate:"required,min=1,dive,gt=0,lte=1"`
	MaxBetPercent  float64   `mapstructure:"max_bet_percent" validate:"required,gt=0,lte=1"`
}

// ScheduleConfig represents the recurring scan
type ScheduleConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	ScanCron   string `mapstructure:"scan_cron" validate:"required"`
	HealthPort int    `mapstructure:"health_port" validate:"required,min=1,max=65535"`
}

// AlertsConfig represents Telegram notifications
type AlertsConfig struct {
	Enabled          bool   `mapstructure:"enabled"`
	TelegramBotToken string `mapstructure:"telegram_bot_token"`
	TelegramChatID   int64  `mapstructure:"telegram_chat_id"`
}

// MetricsConfig represents metrics and monitoring configuration
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Port    int    `mapstructure:"port" validate:"required,min=1,max=65535"`
	Path    string `mapstructure:"path" validate:"required"`
}

// SecretsConfig points at an AWS Secrets Manager secret to overlay
type SecretsConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	Region     string `mapstructure:"region"`
	SecretName string `mapstructure:"secret_name"`
}

// IsDevelopment checks if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

// IsStaging checks if the application is running in staging mode
func (c *Config) IsStaging() bool {
	return c.App.Environment == "staging"
}

// IsProduction checks if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// GetDatabaseDSN returns a PostgreSQL DSN string
func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// Sport returns the configuration for a league
func (c *Config) Sport(name models.Sport) (SportConfig, bool) {
	for _, s := range c.Sports {
		if models.Sport(s.Name) == name {
			return s, true
		}
	}
	return SportConfig{}, false
}

// EnabledSports lists the leagues switched on
func (c *Config) EnabledSports() []SportConfig {
	var out []SportConfig
	for _, s := range c.Sports {
		if s.Enabled {
			out = append(out, s)
		}
	}
	return out
}

// TierTables returns each sport's tier table keyed by sport
func (c *Config) TierTables() map[models.Sport][]models.TierInfo {
	out := make(map[models.Sport][]models.TierInfo, len(c.Sports))
	for _, s := range c.Sports {
		out[models.Sport(s.Name)] = s.Tiers
	}
	return out
}

// Thresholds resolves the classifier thresholds for a sport. The first of
// the sport's thresholds section, the sport's preset, the engine thresholds
// section and the engine preset wins. Presets take the form window as the top
// of the good form band, a thresholds section may leave it zero to do the
// same. The sport's away-bet flag is applied last.
func (c *Config) Thresholds(sport SportConfig) (strategy.Thresholds, string, error) {
	var (
		t    strategy.Thresholds
		name string
	)
	switch {
	case sport.Thresholds != nil:
		t, name = *sport.Thresholds, CustomThresholds
	case sport.Preset == "" && c.Engine.Thresholds != nil:
		t, name = *c.Engine.Thresholds, CustomThresholds
	default:
		name = c.Engine.Preset
		if sport.Preset != "" {
			name = sport.Preset
		}
		preset, err := strategy.Preset(name)
		if err != nil {
			return strategy.Thresholds{}, "", err
		}
		t = preset
		t.GoodFormMaxWins = c.Engine.FormWindow
	}

	if t.GoodFormMaxWins == 0 {
		t.GoodFormMaxWins = c.Engine.FormWindow
	}
	if t.GoodFormMaxWins > c.Engine.FormWindow {
		return strategy.Thresholds{}, "", fmt.Errorf("good_form_max_wins %d exceeds form_window %d", t.GoodFormMaxWins, c.Engine.FormWindow)
	}
	if err := t.Validate(); err != nil {
		return strategy.Thresholds{}, "", fmt.Errorf("%s thresholds: %w", name, err)
	}
	t.AllowAwayAdvantage = t.AllowAwayAdvantage && sport.AllowAwayBets
	return t, name, nil
}

// BackToBack returns the configured back-to-back definition
func (c *Config) BackToBack() gamelog.BackToBackDefinition {
	return gamelog.BackToBackDefinition(c.Engine.BackToBackDefinition)
}

// SizerConfig converts the staking section for the stake sizer
func (c *Config) SizerConfig() staking.Config {
	return staking.Config{
		KellyFraction:  c.Staking.KellyFraction,
		MaxStake:       c.Staking.MaxStakeAmount,
		WinRateCeiling: c.Staking.WinRateClampCeiling,
	}
}

// CacheTTL returns the season cache lifetime
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.DataSource.CacheTTLSeconds) * time.Second
}

// HTTPTimeout returns the data source request timeout
func (c *Config) HTTPTimeout() time.Duration {
	return time.Duration(c.DataSource.TimeoutSeconds) * time.Second
}
