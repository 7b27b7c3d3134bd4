package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the configuration for the filter tools
type Config struct {
	Filter FilterConfig `yaml:"filter"`
	Fetch  FetchConfig  `yaml:"fetch"`
	Server ServerConfig `yaml:"server"`
	Review ReviewConfig `yaml:"review"`
	Log    LogConfig    `yaml:"log"`
}

// FilterConfig describes where items, their values and sections live in the page
type FilterConfig struct {
	Items         string `yaml:"items"`          // Selector for filterable items
	Elements      string `yaml:"elements"`       // Selector for value-bearing elements inside an item
	Attributes    string `yaml:"attributes"`     // Comma-separated data-* attribute keys
	Sections      string `yaml:"sections"`       // Selector for section containers
	Headings      string `yaml:"headings"`       // Selector for section headings
	ExplicitTitle string `yaml:"explicit_title"` // Selector for an explicit title inside a heading
	Links         string `yaml:"links"`          // Selector for followable links inside an item
}

// FetchConfig holds document loading configuration
type FetchConfig struct {
	Timeout             time.Duration `yaml:"timeout"`
	UserAgent           string        `yaml:"user_agent"`
	EnableRobotsCheck   bool          `yaml:"enable_robots_check"`
	RobotsCacheDuration time.Duration `yaml:"robots_cache_duration"`
	MaxIdleConns        int           `yaml:"max_idle_conns"`
	MaxIdleConnsPerHost int           `yaml:"max_idle_conns_per_host"`
}

// ServerConfig holds HTTP API configuration
type ServerConfig struct {
	Addr   string `yaml:"addr"`
	Source string `yaml:"source"` // Page loaded at startup, file path or URL
}

// ReviewConfig holds review tracker configuration
type ReviewConfig struct {
	StorePath string `yaml:"store_path"` // Empty keeps review state in memory
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// Load loads configuration from environment variables with defaults
func Load() *Config {
	return &Config{
		Filter: FilterConfig{
			Items:         GetStringEnv("FILTER_ITEMS", ".index-line"),
			Elements:      GetStringEnv("FILTER_ELEMENTS", "a"),
			Attributes:    GetStringEnv("FILTER_ATTRIBUTES", ""),
			Sections:      GetStringEnv("FILTER_SECTIONS", "section"),
			Headings:      GetStringEnv("FILTER_HEADINGS", "h2, h3, h4"),
			ExplicitTitle: GetStringEnv("FILTER_EXPLICIT_TITLE", ".section-title"),
			Links:         GetStringEnv("FILTER_LINKS", "a[href]"),
		},
		Fetch: FetchConfig{
			Timeout:             GetDurationEnv("FETCH_TIMEOUT", 30*time.Second),
			UserAgent:           GetStringEnv("FETCH_USER_AGENT", "pagefilter/1.0"),
			EnableRobotsCheck:   GetBoolEnv("FETCH_ENABLE_ROBOTS_CHECK", true),
			RobotsCacheDuration: GetDurationEnv("FETCH_ROBOTS_CACHE_DURATION", 24*time.Hour),
			MaxIdleConns:        GetIntEnv("FETCH_MAX_IDLE_CONNS", 10),
			MaxIdleConnsPerHost: GetIntEnv("FETCH_MAX_IDLE_CONNS_PER_HOST", 2),
		},
		Server: ServerConfig{
			Addr:   GetStringEnv("SERVER_ADDR", ":8080"),
			Source: GetStringEnv("SERVER_SOURCE", ""),
		},
		Review: ReviewConfig{
			StorePath: GetStringEnv("REVIEW_STORE_PATH", ""),
		},
		Log: LogConfig{
			Level: GetStringEnv("LOG_LEVEL", "info"),
			File:  GetStringEnv("LOG_FILE", ""),
		},
	}
}

// LoadFile overlays the YAML file at path onto cfg. Keys missing from the
// file keep their current values.
func (c *Config) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

// Validate checks the settings every tool needs
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Filter.Items) == "" {
		return errors.New("filter.items selector is required")
	}
	if c.Fetch.Timeout <= 0 {
		return errors.New("fetch.timeout must be positive")
	}
	if c.Fetch.MaxIdleConns < 0 || c.Fetch.MaxIdleConnsPerHost < 0 {
		return errors.New("fetch idle connection limits must not be negative")
	}
	return nil
}

func GetStringEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func GetIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func GetBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func GetDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
