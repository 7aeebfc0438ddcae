package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/kelseyhightower/envconfig"
	"github.com/pelletier/go-toml/v2"
)

// Config holds all application configuration.
//
// Values are resolved in three layers: built-in defaults, then an optional
// config file named by CONFIG_FILE, then environment variables. Later
// layers win.
type Config struct {
	Server    ServerConfig    `yaml:"server" toml:"server"`
	Logging   LogConfig       `yaml:"logging" toml:"logging"`
	RateLimit RateLimitConfig `yaml:"rate_limit" toml:"rate_limit"`
	Tasks     TasksConfig     `yaml:"tasks" toml:"tasks"`
	MCP       MCPConfig       `yaml:"mcp" toml:"mcp"`
}

// ServerConfig sets the listen address and allowed GUI origins.
type ServerConfig struct {
	Port string `envconfig:"PORT" yaml:"port" toml:"port"`
	Host string `envconfig:"HOST" yaml:"host" toml:"host"`

	// AllowedOrigins lists origins the GUI may connect from. Empty means
	// the standard webview and dev-server origins.
	AllowedOrigins []string `envconfig:"ALLOWED_ORIGINS" yaml:"allowed_origins" toml:"allowed_origins"`
}

// LogConfig selects the log level and encoding.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" yaml:"level" toml:"level"`
	Development bool   `envconfig:"LOG_DEV" yaml:"development" toml:"development"`
}

// RateLimitConfig bounds request rates on the API.
type RateLimitConfig struct {
	RequestsPerSecond int  `envconfig:"RATE_LIMIT_RPS" yaml:"requests_per_second" toml:"requests_per_second"`
	Burst             int  `envconfig:"RATE_LIMIT_BURST" yaml:"burst" toml:"burst"`
	Enabled           bool `envconfig:"RATE_LIMIT_ENABLED" yaml:"enabled" toml:"enabled"`
}

// TasksConfig places the task store on disk.
type TasksConfig struct {
	// Path overrides the task store location. Empty means the default
	// under the user's home directory.
	Path string `envconfig:"TASKS_PATH" yaml:"path" toml:"path"`
}

// MCPConfig locates the MCP task server and controls autostart.
type MCPConfig struct {
	Binary    string `envconfig:"MCP_SERVER_BINARY" yaml:"binary" toml:"binary"`
	Script    string `envconfig:"MCP_SERVER_SCRIPT" yaml:"script" toml:"script"`
	NodeBin   string `envconfig:"MCP_NODE_BIN" yaml:"node_bin" toml:"node_bin"`
	Autostart bool   `envconfig:"MCP_AUTOSTART" yaml:"autostart" toml:"autostart"`
}

// Load resolves configuration from defaults, the optional CONFIG_FILE
// layer, and environment variables, in that order.
func Load() (*Config, error) {
	cfg := Default()

	if file := os.Getenv("CONFIG_FILE"); file != "" {
		if err := applyFile(cfg, file); err != nil {
			return nil, fmt.Errorf("config file: %w", err)
		}
	}

	if err := envconfig.Process("", cfg); err != nil {
		return nil, fmt.Errorf("config env: %w", err)
	}
	return cfg, nil
}

// LoadOrDefault falls back to the defaults when the environment or the
// config file is malformed.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// Default is the configuration used when nothing else is set.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port: "8000",
			Host: "0.0.0.0",
		},
		Logging: LogConfig{
			Level:       "info",
			Development: false,
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 100,
			Burst:             200,
			Enabled:           true,
		},
		Tasks: TasksConfig{
			Path: "",
		},
		MCP: MCPConfig{
			NodeBin:   "node",
			Autostart: true,
		},
	}
}

// applyFile overlays values from a YAML or TOML config file.
func applyFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return yaml.Unmarshal(data, cfg)
	case ".toml":
		return toml.Unmarshal(data, cfg)
	default:
		return fmt.Errorf("unsupported config file format: %s", path)
	}
}
