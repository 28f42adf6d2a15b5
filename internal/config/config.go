package config

import (
	"errors"
	"io/fs"
	"time"

	"github.com/joho/godotenv"
)

type Config interface {
	EnvConfig
	PackageConfig
	APIConfig
}

type EnvConfig interface {
	GetAppName() string
	GetSessionFile() string
	GetVehicleCacheFile() string
	GetLogLevel() string
	GetPrettyLogs() bool
	GetHTTPTimeout() time.Duration
	GetEnv() string
}

type mainConfig struct {
	EnvVars
	Package
	API
}

func New() Config {
	return mainConfig{}
}

// Load reads an optional .env file into the process environment and returns
// the env backed configuration. Variables already set are not overridden.
func Load(files ...string) (Config, error) {
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}
	return New(), nil
}
