// ABOUTME: Configuration loader for the sizer service
// ABOUTME: Loads settings from a .env file and environment with defaults

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	// Server
	Port               string
	LogLevel           string
	LogFormat          string
	CORSAllowedOrigins []string // allowed CORS origins (empty = any origin)

	// Rate limiting
	RateLimitEnabled bool // enable rate limiting (default: true)
	RateLimitSizing  int  // requests per minute for the sizing endpoint (default: 30)
	RateLimitDefault int  // requests per minute for all other endpoints (default: 100)

	// Scheduling policy
	ControlPlaneMarkers []string // service-name substrings marking control-plane services

	// vSphere discovery (optional)
	VSphereHost       string
	VSphereUsername   string
	VSpherePassword   string
	VSphereDatacenter string
	VSphereInsecure   bool
	VSphereAllProxy   string // ssh+socks5:// jumpbox URL
	VSphereCacheTTL   int    // seconds, default 300 (5 min)
}

// VSphereConfigured returns true if vSphere credentials are set.
func (c *Config) VSphereConfigured() bool {
	return c.VSphereHost != "" && c.VSphereUsername != "" && c.VSpherePassword != "" && c.VSphereDatacenter != ""
}

func Load() (*Config, error) {
	// A local .env overrides nothing already exported.
	_ = godotenv.Load()

	cfg := &Config{
		Port:               getEnv("PORT", "8080"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		LogFormat:          getEnv("LOG_FORMAT", "text"),
		CORSAllowedOrigins: getEnvStringList("CORS_ALLOWED_ORIGINS"),

		RateLimitEnabled: getEnvBool("RATE_LIMIT_ENABLED", true),
		RateLimitSizing:  getEnvInt("RATE_LIMIT_SIZING", 30),
		RateLimitDefault: getEnvInt("RATE_LIMIT_DEFAULT", 100),

		ControlPlaneMarkers: getEnvStringList("SIZER_CONTROL_PLANE_MARKERS"),

		VSphereHost:       os.Getenv("VSPHERE_HOST"),
		VSphereUsername:   os.Getenv("VSPHERE_USERNAME"),
		VSpherePassword:   os.Getenv("VSPHERE_PASSWORD"),
		VSphereDatacenter: os.Getenv("VSPHERE_DATACENTER"),
		VSphereInsecure:   getEnvBool("VSPHERE_INSECURE", false),
		VSphereAllProxy:   os.Getenv("VSPHERE_ALL_PROXY"),
		VSphereCacheTTL:   getEnvInt("VSPHERE_CACHE_TTL", 300),
	}

	for _, rl := range []struct {
		name  string
		value int
	}{
		{"RATE_LIMIT_SIZING", cfg.RateLimitSizing},
		{"RATE_LIMIT_DEFAULT", cfg.RateLimitDefault},
	} {
		if rl.value < 1 || rl.value > 10000 {
			return nil, fmt.Errorf("%s must be between 1 and 10000, got %d", rl.name, rl.value)
		}
	}

	if cfg.VSphereCacheTTL < 0 {
		return nil, fmt.Errorf("VSPHERE_CACHE_TTL must not be negative, got %d", cfg.VSphereCacheTTL)
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvStringList(key string) []string {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
