package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Environment variables read by FromEnv.
const (
	EnvDatabaseURL    = "DATABASE_URL"
	EnvRulesFile      = "ACADEMY_RULES_FILE"
	EnvLogLevel       = "LOG_LEVEL"
	EnvPort           = "PORT"
	EnvWorkers        = "ACADEMY_WORKERS"
	EnvAllowedOrigins = "CORS_ALLOWED_ORIGINS"
)

// FromEnv builds a Config from environment variables. Unset variables leave
// the field empty so the result can be merged with Defaults.
func FromEnv() (Config, error) {
	cfg := Config{
		DatabaseURL: os.Getenv(EnvDatabaseURL),
		RulesFile:   os.Getenv(EnvRulesFile),
		LogLevel:    strings.ToLower(os.Getenv(EnvLogLevel)),
	}

	if v := os.Getenv(EnvPort); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid %s: %v", EnvPort, err)
		}
		cfg.Port = port
	}

	if v := os.Getenv(EnvWorkers); v != "" {
		workers, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid %s: %v", EnvWorkers, err)
		}
		cfg.Workers = workers
	}

	for _, origin := range strings.Split(os.Getenv(EnvAllowedOrigins), ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			cfg.AllowedOrigins = append(cfg.AllowedOrigins, origin)
		}
	}

	return cfg, nil
}

// Resolve layers a config file (optional), the environment and Defaults, in
// that order of precedence, and validates the result.
func Resolve(path string) (Config, error) {
	env, err := FromEnv()
	if err != nil {
		return Config{}, err
	}
	cfg := env.MergeWithDefaults(Defaults())

	if path != "" {
		file, err := LoadConfig(path)
		if err != nil {
			return Config{}, err
		}
		cfg = file.MergeWithDefaults(cfg)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
