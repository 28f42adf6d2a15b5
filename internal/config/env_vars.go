package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	appNameVar     = "APP_NAME"
	sessionFileVar = "CONNECTEDCAR_SESSION_FILE"
	carsFileVar    = "CONNECTEDCAR_CARS_FILE"
	logLevelVar    = "LOG_LEVEL"
	logPrettyVar   = "LOG_PRETTY"
	httpTimeoutVar = "HTTP_TIMEOUT"
	envVar         = "ENV"
)

type EnvVars struct{}

var _ EnvConfig = EnvVars{}

func (EnvVars) GetAppName() string {
	return GetEnv(appNameVar, "Connected Car")
}

// GetSessionFile is the YAML file the session is loaded from and persisted to.
func (EnvVars) GetSessionFile() string {
	return GetEnv(sessionFileVar, "config.yaml")
}

// GetVehicleCacheFile is the YAML file the vehicle list is cached in.
func (EnvVars) GetVehicleCacheFile() string {
	return GetEnv(carsFileVar, "cars.yaml")
}

func (EnvVars) GetLogLevel() string {
	return GetEnv(logLevelVar, "info")
}

// GetPrettyLogs defaults to console output everywhere but PROD.
func (e EnvVars) GetPrettyLogs() bool {
	fallback := !strings.EqualFold(e.GetEnv(), "PROD")
	value := GetEnv(logPrettyVar, "")
	if value == "" {
		return fallback
	}
	pretty, err := strconv.ParseBool(value)
	return err == nil && pretty
}

// GetHTTPTimeout accepts a Go duration ("45s") or a number of seconds.
func (EnvVars) GetHTTPTimeout() time.Duration {
	const fallback = 30 * time.Second
	value := GetEnv(httpTimeoutVar, "")
	if value == "" {
		return fallback
	}
	if d, err := time.ParseDuration(value); err == nil && d > 0 {
		return d
	}
	if secs, err := strconv.Atoi(value); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	return fallback
}

func (EnvVars) GetEnv() string {
	env := os.Getenv(envVar)
	if env == "" {
		return "DEV"
	}
	return env
}

func GetEnv(envVar, defaultValue string) string {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	return value
}
