// Package config provides configuration loading and validation for the CLI
// and the HTTP server.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config represents settings that can be loaded from a JSON or YAML file.
// All fields are optional; missing values fall back to the environment and
// then to Defaults.
type Config struct {
	DatabaseURL    string   `json:"database_url,omitempty" yaml:"database_url,omitempty" validate:"omitempty,url"` // PostgreSQL connection URL
	RulesFile      string   `json:"rules_file,omitempty" yaml:"rules_file,omitempty"`                              // Custom label/keyword rule file
	LogLevel       string   `json:"log_level,omitempty" yaml:"log_level,omitempty" validate:"omitempty,oneof=debug info warn error"`
	Port           int      `json:"port,omitempty" yaml:"port,omitempty" validate:"omitempty,min=1,max=65535"`
	Workers        int      `json:"workers,omitempty" yaml:"workers,omitempty" validate:"min=0,max=256"` // Batch extraction concurrency (0 = GOMAXPROCS)
	AllowedOrigins []string `json:"allowed_origins,omitempty" yaml:"allowed_origins,omitempty" validate:"dive,required"`
	Verbose        bool     `json:"verbose,omitempty" yaml:"verbose,omitempty"`
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	return Config{
		LogLevel: "info",
		Port:     8080,
	}
}

// LoadConfig loads configuration from a JSON or YAML file, chosen by
// extension. Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	// Resolve path relative to current directory if not absolute
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config YAML: %w", err)
		}
	default:
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config JSON: %w", err)
		}
	}

	return &cfg, nil
}

var validate = validator.New()

// Validate checks that the configuration has valid values.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("config error: '%s' failed '%s' validation", jsonName(fe.StructField()), fe.Tag())
		}
		return fmt.Errorf("config error: %w", err)
	}

	if c.RulesFile != "" {
		if _, err := os.Stat(c.RulesFile); os.IsNotExist(err) {
			return fmt.Errorf("config error: rules file not found: %s", c.RulesFile)
		}
	}

	return nil
}

// jsonName maps a validator field name back to its config key.
func jsonName(field string) string {
	index := ""
	if i := strings.IndexByte(field, '['); i >= 0 {
		field, index = field[:i], field[i:]
	}
	switch field {
	case "DatabaseURL":
		field = "database_url"
	case "RulesFile":
		field = "rules_file"
	case "LogLevel":
		field = "log_level"
	case "AllowedOrigins":
		field = "allowed_origins"
	default:
		field = strings.ToLower(field)
	}
	return field + index
}

// MergeWithDefaults returns a new Config with empty fields filled from defaults.
// This is used to layer file values over environment values over built-ins.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	if result.DatabaseURL == "" {
		result.DatabaseURL = defaults.DatabaseURL
	}
	if result.RulesFile == "" {
		result.RulesFile = defaults.RulesFile
	}
	if result.LogLevel == "" {
		result.LogLevel = defaults.LogLevel
	}
	if result.Port == 0 {
		result.Port = defaults.Port
	}
	if result.Workers == 0 {
		result.Workers = defaults.Workers
	}
	if len(result.AllowedOrigins) == 0 {
		result.AllowedOrigins = defaults.AllowedOrigins
	}

	// Bool fields: cannot distinguish unset from false, so we don't merge
	// (CLI flags should always win for bools)

	return result
}
