/*
Package configs is responsible for loading and parsing the application's
configuration settings.

It configures server parameters by reading operating system environment
variables: the running environment, port, CORS allowed origins, the media
attestation signing secret, and the coordination timing knobs (reconnection
grace period, reaper sweep interval).
*/
package configs

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Timing defaults. Both durations are independent: the grace period bounds
// how long a disconnected user survives, the interval bounds how often the
// reaper looks.
const (
	DefaultReconnectGrace = 60 * time.Second
	DefaultReaperInterval = 10 * time.Second
)

// AppConfig contains all configuration parameters required for the
// application to run. All values are loaded from environment variables.
type AppConfig struct {
	// General Server Settings
	Environment string
	Port        int

	// Security Settings
	AllowedOrigins []string

	// MediaSigningSecret signs media attestation tokens. When empty, a
	// random per-process secret is generated and a warning is logged;
	// tokens then do not survive restarts. InsecureFallback records that
	// this happened so the caller can surface it.
	MediaSigningSecret string
	InsecureFallback   bool

	// Coordination Timing
	ReconnectGrace time.Duration
	ReaperInterval time.Duration
}

// LoadConfig reads and parses the application configuration from environment
// variables, providing defaults and performing type conversions and
// validation. It returns the AppConfig and any error encountered.
func LoadConfig() (*AppConfig, error) {
	cfg := &AppConfig{}

	// --- General Server Settings ---
	cfg.Environment = os.Getenv("ENVIRONMENT")
	if cfg.Environment == "" {
		cfg.Environment = "development"
	}

	portStr := os.Getenv("PORT")
	if portStr == "" {
		portStr = "8080"
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, fmt.Errorf("invalid PORT environment variable: %w", err)
	}
	cfg.Port = port

	if cfg.Port < 1024 || cfg.Port > 65535 {
		return nil, fmt.Errorf("port number %d is outside the recommended range (%d-%d) to avoid privileged ports", cfg.Port, 1024, 65535)
	}

	// --- Security Settings ---
	originsStr := os.Getenv("ALLOWED_ORIGINS")
	if originsStr != "" {
		origins := strings.Split(originsStr, ",")
		for _, origin := range origins {
			trimmed := strings.TrimSpace(origin)
			if trimmed != "" {
				cfg.AllowedOrigins = append(cfg.AllowedOrigins, trimmed)
			}
		}
	} else {
		cfg.AllowedOrigins = []string{}
	}

	cfg.MediaSigningSecret = os.Getenv("MEDIA_SIGNING_SECRET")
	if cfg.MediaSigningSecret == "" {
		if cfg.Environment != "development" {
			return nil, fmt.Errorf("MEDIA_SIGNING_SECRET environment variable is required in %s environment", cfg.Environment)
		}

		secret, err := randomSecret()
		if err != nil {
			return nil, fmt.Errorf("failed to generate fallback media signing secret: %w", err)
		}
		cfg.MediaSigningSecret = secret
		cfg.InsecureFallback = true
	}

	// --- Coordination Timing ---
	cfg.ReconnectGrace, err = durationEnv("RECONNECT_GRACE", DefaultReconnectGrace)
	if err != nil {
		return nil, err
	}

	cfg.ReaperInterval, err = durationEnv("REAPER_INTERVAL", DefaultReaperInterval)
	if err != nil {
		return nil, err
	}

	return cfg, nil
}

// durationEnv parses an optional duration environment variable, rejecting
// non-positive values.
func durationEnv(name string, fallback time.Duration) (time.Duration, error) {
	raw := os.Getenv(name)
	if raw == "" {
		return fallback, nil
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s environment variable: %w", name, err)
	}

	if d <= 0 {
		return 0, fmt.Errorf("%s must be a positive duration, got %s", name, d)
	}

	return d, nil
}

func randomSecret() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
