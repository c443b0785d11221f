package ratelimit

import (
	"strings"
)

// MatchEndpoint finds the config for a request. Exact paths win over prefix
// paths (those ending in "/"); an empty Method matches any method.
// GET /health is never limited. Returns nil when nothing matches.
func MatchEndpoint(path, method string, configs []EndpointConfig) *EndpointConfig {
	if path == "/health" && method == "GET" {
		return &EndpointConfig{Path: path, Method: method}
	}

	for i := range configs {
		ec := &configs[i]
		if ec.Path == path && ec.matchesMethod(method) {
			return ec
		}
	}

	var best *EndpointConfig
	for i := range configs {
		ec := &configs[i]
		if !strings.HasSuffix(ec.Path, "/") || !ec.matchesMethod(method) {
			continue
		}
		if strings.HasPrefix(path, ec.Path) && (best == nil || len(ec.Path) > len(best.Path)) {
			best = ec
		}
	}
	return best
}

func (ec *EndpointConfig) matchesMethod(method string) bool {
	return ec.Method == "" || strings.EqualFold(ec.Method, method)
}
