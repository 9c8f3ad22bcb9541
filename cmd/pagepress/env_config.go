package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/alnah/go-pagepress/internal/config"
)

// envPrefix marks pagepress environment variables.
const envPrefix = "PAGEPRESS_"

// envConfig holds configuration from environment variables.
// Provides CI/CD-friendly overrides without requiring config files.
type envConfig struct {
	ConfigPath        string        // PAGEPRESS_CONFIG: config file name or path
	Template          string        // PAGEPRESS_TEMPLATE: template name
	Timeout           time.Duration // PAGEPRESS_TIMEOUT: navigation timeout ("45s" or milliseconds)
	Engine            string        // PAGEPRESS_ENGINE: rod or chromedp
	WaitUntil         string        // PAGEPRESS_WAIT_UNTIL: navigation wait condition
	DeviceScaleFactor float64       // PAGEPRESS_DEVICE_SCALE_FACTOR: pixel density
	AllowNet          []string      // PAGEPRESS_ALLOW_NET: comma-separated URL prefixes
	AssetPath         string        // PAGEPRESS_ASSET_PATH: custom template directory
	Safe              *bool         // PAGEPRESS_SAFE: safe mode
}

// knownEnvVars lists valid PAGEPRESS_* environment variables.
// Used to detect typos and warn users about unknown variables.
var knownEnvVars = map[string]bool{
	"PAGEPRESS_CONFIG":              true,
	"PAGEPRESS_TEMPLATE":            true,
	"PAGEPRESS_TIMEOUT":             true,
	"PAGEPRESS_ENGINE":              true,
	"PAGEPRESS_WAIT_UNTIL":          true,
	"PAGEPRESS_DEVICE_SCALE_FACTOR": true,
	"PAGEPRESS_ALLOW_NET":           true,
	"PAGEPRESS_ASSET_PATH":          true,
	"PAGEPRESS_SAFE":                true,
}

// loadEnvConfig reads configuration from environment variables.
// Values that do not parse are ignored, as if unset.
func loadEnvConfig(getenv func(string) string) *envConfig {
	cfg := &envConfig{
		ConfigPath: getenv("PAGEPRESS_CONFIG"),
		Template:   getenv("PAGEPRESS_TEMPLATE"),
		Engine:     getenv("PAGEPRESS_ENGINE"),
		WaitUntil:  getenv("PAGEPRESS_WAIT_UNTIL"),
		AssetPath:  getenv("PAGEPRESS_ASSET_PATH"),
	}

	if timeout := getenv("PAGEPRESS_TIMEOUT"); timeout != "" {
		cfg.Timeout = parseTimeout(timeout)
	}

	if dsf := getenv("PAGEPRESS_DEVICE_SCALE_FACTOR"); dsf != "" {
		if f, err := strconv.ParseFloat(dsf, 64); err == nil && f > 0 {
			cfg.DeviceScaleFactor = f
		}
	}

	if allow := getenv("PAGEPRESS_ALLOW_NET"); allow != "" {
		for _, prefix := range strings.Split(allow, ",") {
			if prefix = strings.TrimSpace(prefix); prefix != "" {
				cfg.AllowNet = append(cfg.AllowNet, prefix)
			}
		}
	}

	if safe := getenv("PAGEPRESS_SAFE"); safe != "" {
		if b, err := strconv.ParseBool(safe); err == nil {
			cfg.Safe = &b
		}
	}

	return cfg
}

// parseTimeout accepts a Go duration ("45s", "2m") or a bare number of
// milliseconds. Returns 0 for anything else.
func parseTimeout(s string) time.Duration {
	if d, err := time.ParseDuration(s); err == nil && d > 0 {
		return d
	}
	if ms, err := strconv.Atoi(s); err == nil && ms > 0 {
		return time.Duration(ms) * time.Millisecond
	}
	return 0
}

// warnUnknownEnvVars prints a warning for each unrecognized PAGEPRESS_*
// variable. Helps catch typos like PAGEPRESS_TEMPLTE.
func warnUnknownEnvVars(w io.Writer, environ []string) {
	for _, env := range environ {
		if !strings.HasPrefix(env, envPrefix) {
			continue
		}
		name := strings.SplitN(env, "=", 2)[0]
		if !knownEnvVars[name] {
			fmt.Fprintf(w, "warning: unknown environment variable %s (typo?)\n", name)
		}
	}
}

// applyEnvConfig copies every set environment value over cfg.
// Environment beats the config file; flags are applied after, by mergeFlags.
func applyEnvConfig(env *envConfig, cfg *config.Config) {
	if env.Template != "" {
		cfg.Template = env.Template
	}
	if env.Timeout > 0 {
		cfg.Navigation.TimeoutMs = int(env.Timeout.Milliseconds())
	}
	if env.Engine != "" {
		cfg.Engine = env.Engine
	}
	if env.WaitUntil != "" {
		cfg.Navigation.WaitUntil = env.WaitUntil
	}
	if env.DeviceScaleFactor > 0 {
		cfg.Capture.DeviceScaleFactor = env.DeviceScaleFactor
	}
	if len(env.AllowNet) > 0 {
		cfg.Navigation.AllowNet = env.AllowNet
	}
	if env.AssetPath != "" {
		cfg.AssetPath = env.AssetPath
	}
	if env.Safe != nil {
		cfg.Safe = *env.Safe
	}
}
