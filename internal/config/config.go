package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Config holds server, storage and logging settings
type Config struct {
	Environment string         `yaml:"environment" json:"environment"` // development or production
	Port        string         `yaml:"port" json:"port"`
	Database    DatabaseConfig `yaml:"database" json:"database"`
	CORSOrigins []string       `yaml:"cors_origins" json:"cors_origins"` // Empty allows any origin

	// Logging configuration
	LogLevel   string `yaml:"log_level" json:"log_level"`     // Log level: DEBUG, INFO, WARN, ERROR
	LogFile    string `yaml:"log_file" json:"log_file"`       // Path to log file
	LogConsole bool   `yaml:"log_console" json:"log_console"` // Enable console logging
}

// DatabaseConfig selects the record store
type DatabaseConfig struct {
	Driver string `yaml:"driver" json:"driver"` // sqlite or postgres
	Path   string `yaml:"path" json:"path"`     // sqlite file
	URL    string `yaml:"url" json:"url"`       // postgres connection URL
}

// DSN returns the data source name for the configured driver
func (d DatabaseConfig) DSN() string {
	if d.Driver == "postgres" {
		return d.URL
	}
	return d.Path
}

// Dir returns the ideabox home directory (~/.ideabox)
func Dir() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return ".ideabox"
	}
	return filepath.Join(home, ".ideabox")
}

// DefaultConfig returns default settings
func DefaultConfig() *Config {
	dir := Dir()

	return &Config{
		Environment: EnvDevelopment,
		Port:        "3000",
		Database: DatabaseConfig{
			Driver: "sqlite",
			Path:   filepath.Join(dir, "ideas.db"),
		},
		CORSOrigins: []string{"http://localhost:3000", "http://127.0.0.1:3000"},
		LogLevel:    "INFO",
		LogFile:     filepath.Join(dir, "logs", "ideabox.log"),
		LogConsole:  true,
	}
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// applyEnv overrides settings from the environment
func (c *Config) applyEnv() {
	c.Environment = getEnv("IDEABOX_ENV", c.Environment)
	c.Port = getEnv("PORT", getEnv("IDEABOX_PORT", c.Port))
	c.Database.Driver = getEnv("IDEABOX_DB_DRIVER", c.Database.Driver)
	c.Database.Path = getEnv("IDEABOX_DB_PATH", c.Database.Path)
	if url := os.Getenv("DATABASE_URL"); url != "" {
		c.Database.URL = url
		if os.Getenv("IDEABOX_DB_DRIVER") == "" {
			c.Database.Driver = "postgres"
		}
	}
	if origins := os.Getenv("IDEABOX_CORS_ORIGINS"); origins != "" {
		c.CORSOrigins = nil
		for _, o := range strings.Split(origins, ",") {
			if o = strings.TrimSpace(o); o != "" {
				c.CORSOrigins = append(c.CORSOrigins, o)
			}
		}
	}
	c.LogLevel = getEnv("IDEABOX_LOG_LEVEL", c.LogLevel)
	c.LogFile = getEnv("IDEABOX_LOG_FILE", c.LogFile)
	if v := os.Getenv("IDEABOX_LOG_CONSOLE"); v != "" {
		c.LogConsole = v == "true"
	}
}

// Path returns the default config file location
func Path() string {
	return filepath.Join(Dir(), "config.yaml")
}

// Load loads config from ~/.ideabox/config.yaml, then applies the environment
func Load() (*Config, error) {
	return LoadFile(Path())
}

// LoadFile loads config from path. A missing file yields the defaults.
// Environment variables take precedence over the file.
func LoadFile(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
	case err != nil:
		return nil, fmt.Errorf("failed to read config: %w", err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that the settings are usable
func (c *Config) Validate() error {
	switch c.Environment {
	case EnvDevelopment, EnvProduction:
	default:
		return fmt.Errorf("invalid environment %q: must be %s or %s", c.Environment, EnvDevelopment, EnvProduction)
	}

	if c.Port == "" {
		return fmt.Errorf("port is required")
	}

	switch c.Database.Driver {
	case "sqlite":
		if c.Database.Path == "" {
			return fmt.Errorf("database.path is required for sqlite")
		}
	case "postgres":
		if c.Database.URL == "" {
			return fmt.Errorf("database.url is required for postgres")
		}
	default:
		return fmt.Errorf("invalid database driver %q: must be sqlite or postgres", c.Database.Driver)
	}

	return nil
}

// IsProduction reports whether internal error details must be hidden
func (c *Config) IsProduction() bool {
	return c.Environment == EnvProduction
}

// Save writes the config to path, creating the directory if needed
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}
