package ratelimit

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// EndpointConfig limits one route.
type EndpointConfig struct {
	Path   string        // exact path, or a prefix when it ends in "/"
	Method string        // empty matches any method
	Limit  int           // requests per Window; <= 0 is unlimited
	Window time.Duration
	Burst  int // bucket capacity, Limit when 0
}

func (ec *EndpointConfig) capacity() int {
	if ec.Burst > 0 {
		return ec.Burst
	}
	return ec.Limit
}

func (ec *EndpointConfig) refillRate() float64 {
	if ec.Window <= 0 {
		return float64(ec.Limit)
	}
	return float64(ec.Limit) / ec.Window.Seconds()
}

// LoadConfig reads rate limit settings from RATE_LIMIT_* environment
// variables.
func LoadConfig() *Config {
	if !getEnvBool("RATE_LIMIT_ENABLED", true) {
		return &Config{Enabled: false}
	}

	return &Config{
		Enabled:         true,
		DefaultLimit:    getEnvInt("RATE_LIMIT_DEFAULT_LIMIT", 1000),
		DefaultWindow:   getEnvDuration("RATE_LIMIT_DEFAULT_WINDOW", time.Minute),
		CleanupInterval: getEnvDuration("RATE_LIMIT_CLEANUP_INTERVAL", 5*time.Minute),
		IdleTTL:         getEnvDuration("RATE_LIMIT_IDLE_TTL", time.Hour),
		Whitelist:       parseIPList(os.Getenv("RATE_LIMIT_WHITELIST")),
		Blacklist:       parseIPList(os.Getenv("RATE_LIMIT_BLACKLIST")),
		EndpointConfigs: DefaultEndpointConfigs(),
	}
}

// DefaultEndpointConfigs returns the per-route limits for the intake API.
func DefaultEndpointConfigs() []EndpointConfig {
	return []EndpointConfig{
		// Batch extraction fans out across workers.
		{Path: "/extract/batch", Method: "POST", Limit: 30, Window: time.Minute, Burst: 5},

		// Single-record work.
		{Path: "/extract", Method: "POST", Limit: 300, Window: time.Minute, Burst: 30},
		{Path: "/quickcopy", Method: "POST", Limit: 300, Window: time.Minute, Burst: 30},

		// Writes to the draft store.
		{Path: "/drafts", Method: "POST", Limit: 60, Window: time.Minute, Burst: 10},
		{Path: "/drafts/", Method: "DELETE", Limit: 60, Window: time.Minute, Burst: 10},

		// Everything else falls back to the default limit.
	}
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

// parseIPList parses a comma-separated list of client addresses.
func parseIPList(list string) map[string]bool {
	result := make(map[string]bool)
	for _, ip := range strings.Split(list, ",") {
		if ip = strings.TrimSpace(ip); ip != "" {
			result[ip] = true
		}
	}
	return result
}
