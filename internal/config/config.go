package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the settings read from the YAML config file.
type Config struct {
	CacheSize   int      `yaml:"cache_size"`
	Host        string   `yaml:"host"`
	Port        int      `yaml:"port"`
	PortMin     int      `yaml:"port_min"`
	PortMax     int      `yaml:"port_max"`
	OpenBrowser *bool    `yaml:"open_browser"`
	LogLevel    string   `yaml:"log_level"`
	Exclude     []string `yaml:"exclude"`
}

func DefaultConfig() *Config {
	openBrowser := true
	return &Config{
		CacheSize:   10000,
		Host:        "127.0.0.1",
		Port:        0,
		PortMin:     10000,
		PortMax:     64000,
		OpenBrowser: &openBrowser,
		LogLevel:    "info",
		Exclude: []string{
			".git/",
			".svn/",
			"node_modules/",
			"__pycache__/",
			".DS_Store",
			"Thumbs.db",
		},
	}
}

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config YAML: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// applyDefaults fills fields left unset in the file. An explicit empty
// exclude list is kept as-is.
func (c *Config) applyDefaults() {
	def := DefaultConfig()
	if c.CacheSize == 0 {
		c.CacheSize = def.CacheSize
	}
	if c.Host == "" {
		c.Host = def.Host
	}
	if c.PortMin == 0 {
		c.PortMin = def.PortMin
	}
	if c.PortMax == 0 {
		c.PortMax = def.PortMax
	}
	if c.OpenBrowser == nil {
		c.OpenBrowser = def.OpenBrowser
	}
	if c.LogLevel == "" {
		c.LogLevel = def.LogLevel
	}
	if c.Exclude == nil {
		c.Exclude = []string{}
	}
}

func (c *Config) Validate() error {
	if c.CacheSize < 0 {
		return fmt.Errorf("invalid cache_size %d: must not be negative", c.CacheSize)
	}
	for name, port := range map[string]int{"port": c.Port, "port_min": c.PortMin, "port_max": c.PortMax} {
		if port < 0 || port > 65535 {
			return fmt.Errorf("invalid %s %d: must be between 0 and 65535", name, port)
		}
	}
	if c.PortMin > c.PortMax {
		return fmt.Errorf("invalid port range %d-%d", c.PortMin, c.PortMax)
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// ShouldOpenBrowser reports whether the browser should be launched after
// the server starts.
func (c *Config) ShouldOpenBrowser() bool {
	return c.OpenBrowser == nil || *c.OpenBrowser
}

// ParseLevel maps a log_level value to a slog level.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("invalid log_level %q", s)
}
