package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config is the immutable service configuration, loaded once at startup and
// passed into each component at construction.
type Config struct {
	Port          int
	GinMode       string
	TLSCertFile   string
	TLSKeyFile    string
	DataDir       string
	MaxChecks     int
	SweepInterval time.Duration
	TokenWindow   time.Duration
}

type Env interface {
	Getenv(key string) string
}

type osEnv struct{}

func (osEnv) Getenv(key string) string { return os.Getenv(key) }

func LoadConfig() (Config, error) {
	return LoadConfigFromEnv(osEnv{})
}

func LoadConfigFromEnv(env Env) (Config, error) {
	cfg := Config{
		Port:          3000,
		GinMode:       "release",
		DataDir:       ".data",
		MaxChecks:     5,
		SweepInterval: time.Minute,
		TokenWindow:   time.Hour,
	}

	if raw := env.Getenv("PORT"); raw != "" {
		port, err := strconv.Atoi(raw)
		if err != nil || port <= 0 || port > 65535 {
			return Config{}, fmt.Errorf("invalid PORT")
		}
		cfg.Port = port
	}

	if raw := env.Getenv("GIN_MODE"); raw != "" {
		cfg.GinMode = raw
	}

	cfg.TLSCertFile = env.Getenv("TLS_CERT_FILE")
	cfg.TLSKeyFile = env.Getenv("TLS_KEY_FILE")

	if raw := env.Getenv("DATA_DIR"); raw != "" {
		cfg.DataDir = raw
	}

	if raw := env.Getenv("MAX_CHECKS"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			return Config{}, fmt.Errorf("invalid MAX_CHECKS")
		}
		cfg.MaxChecks = n
	}

	if raw := env.Getenv("SWEEP_INTERVAL_SECONDS"); raw != "" {
		seconds, err := strconv.Atoi(raw)
		if err != nil || seconds <= 0 {
			return Config{}, fmt.Errorf("invalid SWEEP_INTERVAL_SECONDS")
		}
		cfg.SweepInterval = time.Duration(seconds) * time.Second
	}

	if raw := env.Getenv("TOKEN_EXPIRY_SECONDS"); raw != "" {
		seconds, err := strconv.Atoi(raw)
		if err != nil || seconds <= 0 {
			return Config{}, fmt.Errorf("invalid TOKEN_EXPIRY_SECONDS")
		}
		cfg.TokenWindow = time.Duration(seconds) * time.Second
	}

	return cfg, nil
}
