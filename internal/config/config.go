package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

const (
	BackendLocal  = "local"
	BackendRemote = "remote"

	SnapshotSQLite = "sqlite"
	SnapshotFile   = "file"
	SnapshotMemory = "memory"
)

type Config struct {
	Env         string           `yaml:"env" env:"ENV" env-default:"local"`
	StoragePath string           `yaml:"storage_path" env:"STORAGE_PATH" env-default:"./data/project-timer.db"`
	Log         LogConfig        `yaml:"log"`
	Instance    InstanceConfig   `yaml:"instance"`
	Store       StoreConfig      `yaml:"store"`
	Backend     BackendConfig    `yaml:"backend"`
	Timer       TimerConfig      `yaml:"timer"`
	HTTPServer  HTTPServerConfig `yaml:"http_server"`
	Tray        TrayConfig       `yaml:"tray"`
}

type LogConfig struct {
	Level  string `yaml:"level" env:"LOG_LEVEL" env-default:"info"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"console"`
}

type InstanceConfig struct {
	ID string `yaml:"id" env:"INSTANCE_ID"`
}

// StoreConfig selects where time entries and projects live.
type StoreConfig struct {
	Backend          string        `yaml:"backend" env:"STORE_BACKEND" env-default:"local"`
	SimulatedLatency time.Duration `yaml:"simulated_latency" env:"STORE_SIMULATED_LATENCY"`
}

type BackendConfig struct {
	BaseURL string `yaml:"base_url" env:"BACKEND_BASE_URL"`
	APIKey  string `yaml:"api_key" env:"BACKEND_API_KEY"`
	Timeout int    `yaml:"timeout" env:"BACKEND_TIMEOUT" env-default:"10"`
}

type TimerConfig struct {
	Snapshot     string `yaml:"snapshot" env:"TIMER_SNAPSHOT" env-default:"sqlite"`
	SnapshotPath string `yaml:"snapshot_path" env:"TIMER_SNAPSHOT_PATH" env-default:"./data/timer-state.json"`
}

type HTTPServerConfig struct {
	Disabled     bool          `yaml:"disabled" env:"HTTP_DISABLED"`
	Address      string        `yaml:"address" env:"HTTP_ADDRESS" env-default:"localhost:8080"`
	ReadTimeout  time.Duration `yaml:"read_timeout" env:"HTTP_READ_TIMEOUT" env-default:"15s"`
	WriteTimeout time.Duration `yaml:"write_timeout" env:"HTTP_WRITE_TIMEOUT" env-default:"15s"`
	IdleTimeout  time.Duration `yaml:"idle_timeout" env:"HTTP_IDLE_TIMEOUT" env-default:"60s"`
}

type TrayConfig struct {
	Enabled bool `yaml:"enabled" env:"TRAY_ENABLED" env-default:"false"`
}

// LoadConfig reads the YAML file at path and applies environment overrides.
// A missing file is not an error: the configuration then comes from the
// environment and defaults only.
func LoadConfig(path string) (*Config, error) {
	var cfg Config

	if _, err := os.Stat(path); err == nil {
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	} else if errors.Is(err, os.ErrNotExist) {
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("failed to read config from env: %w", err)
		}
	} else {
		return nil, fmt.Errorf("failed to stat config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	switch c.Store.Backend {
	case BackendLocal:
	case BackendRemote:
		if c.Backend.BaseURL == "" {
			return fmt.Errorf("invalid config: backend.base_url is required for the remote store")
		}
	default:
		return fmt.Errorf("invalid config: unknown store.backend %q", c.Store.Backend)
	}

	switch c.Timer.Snapshot {
	case SnapshotSQLite, SnapshotMemory:
	case SnapshotFile:
		if c.Timer.SnapshotPath == "" {
			return fmt.Errorf("invalid config: timer.snapshot_path is required for the file snapshot")
		}
	default:
		return fmt.Errorf("invalid config: unknown timer.snapshot %q", c.Timer.Snapshot)
	}

	if c.Store.SimulatedLatency < 0 {
		return fmt.Errorf("invalid config: store.simulated_latency must not be negative")
	}
	return nil
}
