// Package config reads process settings from COMPO_* environment variables,
// optionally seeded from .env files.
package config

import (
	"errors"
	"io/fs"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Environment variables read by Load.
const (
	EnvKey       = "COMPO_ENV"
	LogLevelKey  = "COMPO_LOG_LEVEL"
	LogFormatKey = "COMPO_LOG_FORMAT"
	DebugAddrKey = "COMPO_DEBUG_ADDR"
	MetricsKey   = "COMPO_METRICS"
)

// Log formats.
const (
	FormatConsole = "console"
	FormatJSON    = "json"
)

var logLevels = []string{"debug", "info", "warn", "error"}

// Config is the process configuration.
type Config struct {
	// Env names the deployment ("local", "staging", "production", ...).
	Env string
	// LogLevel is one of debug, info, warn, error.
	LogLevel string
	// LogFormat is console or json.
	LogFormat string
	// DebugAddr is the listen address of the inspection endpoint; empty
	// disables it.
	DebugAddr string
	// Metrics enables Prometheus collectors.
	Metrics bool
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		Env:       "local",
		LogLevel:  "info",
		LogFormat: FormatConsole,
		Metrics:   true,
	}
}

// Production reports whether the process runs in production.
func (c Config) Production() bool { return c.Env == "production" }

// InvalidValueError is returned when a variable holds an unusable value.
type InvalidValueError struct {
	Key    string
	Value  string
	Reason string
}

// Error implements the error interface.
func (e InvalidValueError) Error() string {
	// Example: config: COMPO_LOG_LEVEL="loud": want one of debug, info, warn, error
	return "config: " + e.Key + "=" + strconv.Quote(e.Value) + ": " + e.Reason
}

// Load builds a Config from the environment.
//
// envFiles are read with godotenv and fill in variables the process
// environment does not set; the process environment is never modified. With
// no envFiles, ".env" is read if it exists. Named files must exist.
func Load(envFiles ...string) (Config, error) {
	fileVars := map[string]string{}
	files, optional := envFiles, false
	if len(files) == 0 {
		files, optional = []string{".env"}, true
	}
	for _, f := range files {
		vars, err := godotenv.Read(f)
		if err != nil {
			if optional && errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return Config{}, err
		}
		for k, v := range vars {
			if _, seen := fileVars[k]; !seen {
				fileVars[k] = v
			}
		}
	}
	return FromLookup(func(key string) (string, bool) {
		if v, ok := os.LookupEnv(key); ok {
			return v, true
		}
		v, ok := fileVars[key]
		return v, ok
	})
}

// FromLookup builds a Config from an arbitrary variable source and validates it.
func FromLookup(lookup func(string) (string, bool)) (Config, error) {
	cfg := Default()
	get := func(key string, dst *string) {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}

	get(EnvKey, &cfg.Env)
	get(LogLevelKey, &cfg.LogLevel)
	get(LogFormatKey, &cfg.LogFormat)
	get(DebugAddrKey, &cfg.DebugAddr)
	cfg.LogLevel = strings.ToLower(cfg.LogLevel)
	cfg.LogFormat = strings.ToLower(cfg.LogFormat)

	if v, ok := lookup(MetricsKey); ok && strings.TrimSpace(v) != "" {
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return Config{}, InvalidValueError{Key: MetricsKey, Value: v, Reason: "want a boolean"}
		}
		cfg.Metrics = b
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports the first unusable setting.
func (c Config) Validate() error {
	if !slices.Contains(logLevels, c.LogLevel) {
		return InvalidValueError{Key: LogLevelKey, Value: c.LogLevel, Reason: "want one of " + strings.Join(logLevels, ", ")}
	}
	if c.LogFormat != FormatConsole && c.LogFormat != FormatJSON {
		return InvalidValueError{Key: LogFormatKey, Value: c.LogFormat, Reason: "want console or json"}
	}
	return nil
}
