// Package config defines the data structures related to configuration and
// includes functions for loading and parsing the config.
package config

import (
	"fmt"
	"time"

	"github.com/ofzlab/ofz-planner/pkg/constants"
	"github.com/spf13/viper"
)

// Configuration holds all configuration for ofz-planner.
type Configuration struct {
	Moex       MoexConfig       `yaml:"moex,omitempty"`
	Cache      CacheConfig      `yaml:"cache,omitempty"`
	Simulation SimulationConfig `yaml:"simulation,omitempty"`
	Server     ServerConfig     `yaml:"server,omitempty"`
	Logging    LoggingConfig    `yaml:"logging,omitempty"`
	Output     OutputConfig     `yaml:"output,omitempty"`
}

// MoexConfig holds MOEX ISS client options.
type MoexConfig struct {
	BaseURL        string `yaml:"baseURL,omitempty"`
	TimeoutSeconds int    `yaml:"timeoutSeconds,omitempty"`
}

// Timeout returns the configured ISS request timeout.
func (m MoexConfig) Timeout() time.Duration {
	seconds := m.TimeoutSeconds
	if seconds <= 0 {
		seconds = constants.DefaultMoexTimeoutSeconds
	}
	return time.Duration(seconds) * time.Second
}

// CacheConfig holds bond snapshot cache options.
type CacheConfig struct {
	Path    string `yaml:"path,omitempty"`
	Enabled bool   `yaml:"enabled,omitempty"`
}

// SimulationConfig holds default simulation behavior.
type SimulationConfig struct {
	AllowCarryOver bool `yaml:"allowCarryOver,omitempty"`
}

// ServerConfig holds API server options.
type ServerConfig struct {
	Address        string   `yaml:"address,omitempty"`
	AllowedOrigins []string `yaml:"allowedOrigins,omitempty"`
}

// LoggingConfig holds logging configuration options
type LoggingConfig struct {
	Level      string `yaml:"level,omitempty"`      // debug, info, warn, error
	Format     string `yaml:"format,omitempty"`     // json, console
	OutputFile string `yaml:"outputFile,omitempty"` // optional file output
}

// OutputConfig holds output format configuration options
type OutputConfig struct {
	Format string `yaml:"format,omitempty"` // pretty, csv
}

// DefaultConfiguration returns the configuration used when no file overrides
// are present.
func DefaultConfiguration() *Configuration {
	return &Configuration{
		Moex: MoexConfig{
			BaseURL:        constants.DefaultMoexBaseURL,
			TimeoutSeconds: constants.DefaultMoexTimeoutSeconds,
		},
		Cache: CacheConfig{
			Path:    constants.DefaultCacheFile,
			Enabled: true,
		},
		Simulation: SimulationConfig{
			AllowCarryOver: true,
		},
		Server: ServerConfig{
			Address: constants.DefaultServerAddress,
		},
		Output: OutputConfig{
			Format: constants.OutputFormatPretty,
		},
	}
}

// LoadConfiguration takes a file path as input and loads the YAML-formatted
// configuration there.
func LoadConfiguration(configPath string) (*Configuration, error) {
	v := viper.New()
	v.SetConfigFile(configPath)
	v.AutomaticEnv()

	v.SetConfigType("yml")

	defaults := DefaultConfiguration()
	v.SetDefault("moex.baseURL", defaults.Moex.BaseURL)
	v.SetDefault("moex.timeoutSeconds", defaults.Moex.TimeoutSeconds)
	v.SetDefault("cache.path", defaults.Cache.Path)
	v.SetDefault("cache.enabled", defaults.Cache.Enabled)
	v.SetDefault("simulation.allowCarryOver", defaults.Simulation.AllowCarryOver)
	v.SetDefault("server.address", defaults.Server.Address)
	v.SetDefault("output.format", defaults.Output.Format)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file, %s", err)
	}

	var configuration Configuration
	err := v.Unmarshal(&configuration)
	if err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %s", err)
	}

	return &configuration, nil
}
