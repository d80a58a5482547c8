// Package config provides configuration management for the b2b-edge application.
package config

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/robfig/cron/v3"
	"github.com/yourusername/b2b-edge/internal/gamelog"
	"github.com/yourusername/b2b-edge/internal/models"
	"github.com/yourusername/b2b-edge/internal/strategy"
)

// CustomValidator wraps the validator with custom validation rules
type CustomValidator struct {
	validator *validator.Validate
}

// NewValidator creates a new validator with custom validation functions
func NewValidator() *CustomValidator {
	v := validator.New()

	// Register custom validation functions
	_ = v.RegisterValidation("environment", validateEnvironment)
	_ = v.RegisterValidation("loglevel", validateLogLevel)
	_ = v.RegisterValidation("preset", validatePreset)
	_ = v.RegisterValidation("b2bdefinition", validateBackToBackDefinition)

	return &CustomValidator{validator: v}
}

// Validate validates the entire configuration
func Validate(cfg *Config) error {
	cv := NewValidator()
	return cv.Validate(cfg)
}

// Validate validates the configuration using registered validation rules
func (cv *CustomValidator) Validate(cfg *Config) error {
	err := cv.validator.Struct(cfg)
	if err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			return formatValidationErrors(validationErrors)
		}
		return fmt.Errorf("validation failed: %w", err)
	}

	// Additional cross-field validations
	if err := validateCrossField(cfg); err != nil {
		return err
	}

	return nil
}

// validateEnvironment validates the environment field
func validateEnvironment(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "development", "staging", "production":
		return true
	default:
		return false
	}
}

// validateLogLevel validates the log level field
func validateLogLevel(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "debug", "info", "warn", "error":
		return true
	default:
		return false
	}
}

// validatePreset validates a classifier preset name
func validatePreset(fl validator.FieldLevel) bool {
	return strategy.IsPreset(fl.Field().String())
}

// validateBackToBackDefinition validates the back-to-back rule
func validateBackToBackDefinition(fl validator.FieldLevel) bool {
	switch gamelog.BackToBackDefinition(fl.Field().String()) {
	case gamelog.PlayedYesterday, gamelog.SameDay:
		return true
	default:
		return false
	}
}

// validateCrossField performs cross-field validations
func validateCrossField(cfg *Config) error {
	if len(cfg.EnabledSports()) == 0 {
		return fmt.Errorf("at least one sport must be enabled")
	}

	if cfg.Engine.Thresholds != nil {
		if _, _, err := cfg.Thresholds(SportConfig{}); err != nil {
			return fmt.Errorf("engine: %w", err)
		}
	}

	seenSports := make(map[string]bool)
	for _, sport := range cfg.Sports {
		if seenSports[sport.Name] {
			return fmt.Errorf("sport %s is configured more than once", sport.Name)
		}
		seenSports[sport.Name] = true

		if err := validateTierTable(sport); err != nil {
			return err
		}
		if sport.Source == "csv" && sport.CSVPath == "" {
			return fmt.Errorf("sport %s uses the csv source but csv_path is empty", sport.Name)
		}
		if _, _, err := cfg.Thresholds(sport); err != nil {
			return fmt.Errorf("sport %s: %w", sport.Name, err)
		}
	}

	if cfg.Ledger.Backend == "json" && cfg.Ledger.Path == "" {
		return fmt.Errorf("ledger path is required for the json backend")
	}

	if cfg.Ledger.Backend == "postgres" {
		if cfg.Database.Host == "" || cfg.Database.Name == "" || cfg.Database.User == "" {
			return fmt.Errorf("database host, name and user are required for the postgres ledger backend")
		}
		if cfg.Database.MaxIdleConnections > cfg.Database.MaxConnections {
			return fmt.Errorf("max_idle_connections cannot exceed max_connections")
		}
	}

	// Validate production environment requirements
	if cfg.IsProduction() && cfg.Ledger.Backend == "postgres" && cfg.Database.SSLMode == "disable" {
		return fmt.Errorf("production environment requires SSL mode to be 'require' or 'verify-full'")
	}

	if cfg.Alerts.Enabled && (cfg.Alerts.TelegramBotToken == "" || cfg.Alerts.TelegramChatID == 0) {
		return fmt.Errorf("telegram_bot_token and telegram_chat_id are required when alerts are enabled")
	}

	if cfg.Secrets.Enabled && (cfg.Secrets.Region == "" || cfg.Secrets.SecretName == "") {
		return fmt.Errorf("secrets region and secret_name are required when secrets are enabled")
	}

	if _, err := cron.ParseStandard(cfg.Schedule.ScanCron); err != nil {
		return fmt.Errorf("invalid scan_cron %q: %w", cfg.Schedule.ScanCron, err)
	}

	return nil
}

// validateTierTable checks tier names are unique within a sport
func validateTierTable(sport SportConfig) error {
	seen := make(map[models.Tier]bool)
	for _, tier := range sport.Tiers {
		if seen[tier.Name] {
			return fmt.Errorf("sport %s lists tier %s more than once", sport.Name, tier.Name)
		}
		seen[tier.Name] = true
	}
	return nil
}

// formatValidationErrors formats validation errors into a readable string
func formatValidationErrors(validationErrors validator.ValidationErrors) error {
	var b strings.Builder
	for _, fieldError := range validationErrors {
		field := fieldError.StructField()
		tag := fieldError.Tag()
		value := fieldError.Value()

		switch tag {
		case "required":
			fmt.Fprintf(&b, "- Field '%s' is required\n", field)
		case "url":
			fmt.Fprintf(&b, "- Field '%s' must be a valid URL, got '%v'\n", field, value)
		case "min", "max":
			fmt.Fprintf(&b, "- Field '%s' validation failed: %s constraint violated\n", field, tag)
		case "gt", "gte", "lt", "lte":
			fmt.Fprintf(&b, "- Field '%s' validation failed: numeric constraint %s violated\n", field, tag)
		case "environment":
			fmt.Fprintf(&b, "- Field '%s' must be one of: development, staging, production\n", field)
		case "loglevel":
			fmt.Fprintf(&b, "- Field '%s' must be one of: debug, info, warn, error\n", field)
		case "preset":
			fmt.Fprintf(&b, "- Field '%s' must be one of: %s\n", field, strings.Join(strategy.PresetNames(), ", "))
		case "b2bdefinition":
			fmt.Fprintf(&b, "- Field '%s' must be one of: played_yesterday, same_day\n", field)
		case "oneof":
			fmt.Fprintf(&b, "- Field '%s' has invalid value '%v'\n", field, value)
		default:
			fmt.Fprintf(&b, "- Field '%s' failed validation: %s\n", field, tag)
		}
	}
	return fmt.Errorf("configuration validation failed:\n%s", b.String())
}

// ValidateEnvironment validates environment-specific requirements
func ValidateEnvironment(cfg *Config) error {
	if cfg.IsProduction() {
		if cfg.Ledger.Backend == "postgres" && isTestCredential(cfg.Database.User) {
			return fmt.Errorf("production environment should not use test database credentials")
		}
		if cfg.App.LogLevel == "debug" {
			return fmt.Errorf("debug logging should be disabled in production")
		}
	}
	return nil
}

// isTestCredential checks if a credential looks like a test credential
func isTestCredential(credential string) bool {
	testPatterns := []string{
		"test", "demo", "example", "placeholder", "YOUR_",
	}

	for _, pattern := range testPatterns {
		if match, _ := regexp.MatchString("(?i)"+pattern, credential); match {
			return true
		}
	}

	return false
}
