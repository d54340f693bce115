package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ZentaChain/messageu-client/pkg/storage"
)

// Config holds the messageu client configuration.
// Relative file names are resolved against DataDir.
type Config struct {
	DataDir     string        `yaml:"data_dir"`
	Server      string        `yaml:"server"` // overrides server_info when set
	ServerInfo  string        `yaml:"server_info"`
	Credentials string        `yaml:"credentials"`
	HistoryDB   string        `yaml:"history_db"` // empty disables history
	DialTimeout time.Duration `yaml:"dial_timeout"`
	ReadTimeout time.Duration `yaml:"read_timeout"`
	DialRetries int           `yaml:"dial_retries"`
	Verbose     bool          `yaml:"verbose"`
	API         APIConfig     `yaml:"api"`
}

// APIConfig configures the local HTTP API
type APIConfig struct {
	Listen     string `yaml:"listen"`
	EnableCORS bool   `yaml:"cors"`
	RateLimit  int    `yaml:"rate_limit"` // requests per minute per client, 0 disables
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		DataDir:     ".",
		ServerInfo:  storage.DefaultServerInfoFile,
		Credentials: storage.DefaultCredentialsFile,
		HistoryDB:   "messageu.db",
		DialTimeout: 10 * time.Second,
		DialRetries: 2,
		API: APIConfig{
			Listen:    "127.0.0.1:8088",
			RateLimit: 120,
		},
	}
}

// Load reads the configuration from the given YAML file path.
// If the file does not exist, it returns the defaults with no error.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return cfg, nil
}

// Validate checks values that would only fail later at runtime
func (c *Config) Validate() error {
	if c.DialTimeout < 0 || c.ReadTimeout < 0 {
		return errors.New("timeouts must not be negative")
	}
	if c.DialRetries < 0 {
		return errors.New("dial_retries must not be negative")
	}
	if c.Credentials == "" {
		return errors.New("credentials path is required")
	}
	if c.API.RateLimit < 0 {
		return errors.New("api.rate_limit must not be negative")
	}
	return nil
}

// Path resolves a configured file name against DataDir
func (c *Config) Path(name string) string {
	if name == "" || filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(c.DataDir, name)
}

// ServerAddress returns the dialable server address: the explicit Server
// setting if present, otherwise the contents of server.info
func (c *Config) ServerAddress() (string, error) {
	if c.Server != "" {
		return storage.ParseServerAddress(c.Server)
	}
	return storage.ReadServerInfo(c.Path(c.ServerInfo))
}
