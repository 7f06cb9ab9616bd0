// Package raptorconf loads the routing engine's process-level
// configuration: a small typed struct with an Environment enum, loaded
// from a YAML file and overridable by environment variables via a .env
// file.
package raptorconf

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Environment distinguishes the deployment context a process is running
// in: Development, Test, or Production.
type Environment string

const (
	Development Environment = "development"
	Test        Environment = "test"
	Production  Environment = "production"
)

// Config is the engine's process-level configuration: where the static
// network snapshot lives, search defaults applied when a request omits a
// field, and logging destination.
type Config struct {
	Environment Environment `yaml:"environment"`

	NetworkPath string `yaml:"network_path"`
	CachePath   string `yaml:"cache_path"`

	LogFile  string `yaml:"log_file"`
	LogLevel string `yaml:"log_level"`

	DefaultMaxRides               int     `yaml:"default_max_rides"`
	DefaultMaxTripDurationMinutes int     `yaml:"default_max_trip_duration_minutes"`
	DefaultMaxWalkMinutes         int     `yaml:"default_max_walk_minutes"`
	DefaultWalkSpeedMetersPerSecond float64 `yaml:"default_walk_speed_meters_per_second"`
	DefaultMonteCarloDraws        int     `yaml:"default_monte_carlo_draws"`
}

// Default returns the configuration used when no file is supplied: a
// typical walking speed, a modest ride budget, and one Monte Carlo draw
// per departure minute.
func Default() Config {
	return Config{
		Environment:                     Development,
		LogLevel:                        "info",
		DefaultMaxRides:                 4,
		DefaultMaxTripDurationMinutes:   180,
		DefaultMaxWalkMinutes:           15,
		DefaultWalkSpeedMetersPerSecond: 1.3,
		DefaultMonteCarloDraws:          1,
	}
}

// Load reads a YAML config file and applies any .env overrides found
// alongside it: a checked-in config plus an un-checked-in .env for
// secrets/environment overrides. A missing envPath is not an error:
// godotenv is best-effort here.
func Load(yamlPath, envPath string) (Config, error) {
	cfg := Default()

	if yamlPath != "" {
		data, err := os.ReadFile(yamlPath)
		if err != nil {
			return Config{}, fmt.Errorf("raptorconf: reading %s: %w", yamlPath, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("raptorconf: parsing %s: %w", yamlPath, err)
		}
	}

	if envPath != "" {
		_ = godotenv.Load(envPath)
	}

	if v := os.Getenv("RAPTOR_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("RAPTOR_NETWORK_PATH"); v != "" {
		cfg.NetworkPath = v
	}
	if v := os.Getenv("RAPTOR_CACHE_PATH"); v != "" {
		cfg.CachePath = v
	}

	return cfg, nil
}
