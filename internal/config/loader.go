package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"authd/internal/common/fsutil"
)

// Config holds runtime parameters for the service.
// Zero values mean "unspecified" and are replaced by WithDefaults.
type Config struct {
	Addr      string `json:"addr" yaml:"addr" toml:"addr"`
	Env       string `json:"env" yaml:"env" toml:"env"`
	LogLevel  string `json:"log_level" yaml:"log_level" toml:"log_level"`
	LogFormat string `json:"log_format" yaml:"log_format" toml:"log_format"`

	MongoURI                 string `json:"mongo_uri" yaml:"mongo_uri" toml:"mongo_uri"`
	MongoDB                  string `json:"mongo_db" yaml:"mongo_db" toml:"mongo_db"`
	ConnectTimeoutMS         int    `json:"connect_timeout_ms" yaml:"connect_timeout_ms" toml:"connect_timeout_ms"`
	SocketTimeoutMS          int    `json:"socket_timeout_ms" yaml:"socket_timeout_ms" toml:"socket_timeout_ms"`
	ServerSelectionTimeoutMS int    `json:"server_selection_timeout_ms" yaml:"server_selection_timeout_ms" toml:"server_selection_timeout_ms"`
	MaxPoolSize              uint64 `json:"max_pool_size" yaml:"max_pool_size" toml:"max_pool_size"`
	MinPoolSize              uint64 `json:"min_pool_size" yaml:"min_pool_size" toml:"min_pool_size"`
	// AddressFamily is 4, 6 or -1 (any).
	AddressFamily  int   `json:"address_family" yaml:"address_family" toml:"address_family"`
	AllowBuffering *bool `json:"allow_buffering" yaml:"allow_buffering" toml:"allow_buffering"`
	RetryBackoffMS int   `json:"retry_backoff_ms" yaml:"retry_backoff_ms" toml:"retry_backoff_ms"`
	GateTimeoutMS  int   `json:"gate_timeout_ms" yaml:"gate_timeout_ms" toml:"gate_timeout_ms"`

	Token      string `json:"token" yaml:"token" toml:"token"`
	BcryptCost int    `json:"bcrypt_cost" yaml:"bcrypt_cost" toml:"bcrypt_cost"`

	CORSEnabled         *bool    `json:"cors_enabled" yaml:"cors_enabled" toml:"cors_enabled"`
	CORSOrigins         []string `json:"cors_origins" yaml:"cors_origins" toml:"cors_origins"`
	MaxBodyBytes        int64    `json:"max_body_bytes" yaml:"max_body_bytes" toml:"max_body_bytes"`
	LoginTimeoutSeconds int64    `json:"login_timeout_seconds" yaml:"login_timeout_seconds" toml:"login_timeout_seconds"`
}

// Load reads a configuration file based on its extension.
// Supports: .yaml/.yml, .json, .toml. A leading ~ is expanded.
func Load(path string) (Config, error) {
	var cfg Config
	if path == "" {
		return cfg, fmt.Errorf("empty config path")
	}
	p, err := fsutil.ExpandHome(path)
	if err != nil {
		return cfg, err
	}
	b, err := os.ReadFile(p)
	if err != nil {
		return cfg, err
	}
	switch ext := strings.ToLower(filepath.Ext(p)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return cfg, fmt.Errorf("parse %s: %w", p, err)
		}
	case ".json":
		if err := json.Unmarshal(b, &cfg); err != nil {
			return cfg, fmt.Errorf("parse %s: %w", p, err)
		}
	case ".toml":
		if err := toml.Unmarshal(b, &cfg); err != nil {
			return cfg, fmt.Errorf("parse %s: %w", p, err)
		}
	default:
		return cfg, fmt.Errorf("unsupported config extension: %s", ext)
	}
	return cfg, nil
}

// DefaultPaths are searched by Discover when no --config flag is given.
var DefaultPaths = []string{"authd.yaml", "authd.toml", "authd.json", "~/.config/authd/config.yaml"}

// Discover loads the first existing file of DefaultPaths. It returns an empty
// Config and no error when none exists.
func Discover() (Config, string, error) {
	p, ok := fsutil.FirstExisting(DefaultPaths...)
	if !ok {
		return Config{}, "", nil
	}
	cfg, err := Load(p)
	return cfg, p, err
}
