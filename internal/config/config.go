package config

import (
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Database drivers backing the sandbox catalog.
const (
	DriverMemory = "memory"
	DriverValkey = "valkey"
)

// Config holds settings for the citrination binaries: the sandbox server
// reads http, auth, search, database and seed; the CLI reads client.
type Config struct {
	HTTP     HTTPConfig     `yaml:"http" toml:"http"`
	Auth     AuthConfig     `yaml:"auth" toml:"auth"`
	Search   SearchConfig   `yaml:"search" toml:"search"`
	Database DatabaseConfig `yaml:"database" toml:"database"`
	Client   ClientConfig   `yaml:"client" toml:"client"`
	Logging  LoggingConfig  `yaml:"logging" toml:"logging"`
	Seed     SeedConfig     `yaml:"seed" toml:"seed"`
}

// DatabaseConfig holds sandbox storage settings.
type DatabaseConfig struct {
	Driver           string   `yaml:"driver" toml:"driver"` // memory, valkey (default: memory)
	Addrs            []string `yaml:"addrs" toml:"addrs"`
	Username         string   `yaml:"username" toml:"username"`
	Password         string   `yaml:"password" toml:"password"`
	DB               int      `yaml:"db" toml:"db"`
	Prefix           string   `yaml:"prefix" toml:"prefix"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec" toml:"readiness_timeout_sec"`
	UploadTTLSec     int      `yaml:"upload_ttl_sec" toml:"upload_ttl_sec"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level" toml:"level"` // debug, info, warn, error (default: determined by env)
}

// AuthConfig holds sandbox API key settings. Empty means no auth.
type AuthConfig struct {
	APIKeys []string `yaml:"api_keys" toml:"api_keys"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port" toml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec" toml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec" toml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec" toml:"shutdown_timeout_sec"`
}

// SearchConfig holds sandbox search limits.
type SearchConfig struct {
	MaxPageSize     int `yaml:"max_page_size" toml:"max_page_size"`
	MaxQueryResults int `yaml:"max_query_results" toml:"max_query_results"`
}

// ClientConfig holds SDK settings used by the CLI.
type ClientConfig struct {
	Host              string  `yaml:"host" toml:"host"`
	APIKey            string  `yaml:"api_key" toml:"api_key"`
	MaxQuerySize      int     `yaml:"max_query_size" toml:"max_query_size"`
	TimeoutSec        int     `yaml:"timeout_sec" toml:"timeout_sec"`
	RequestsPerSecond float64 `yaml:"requests_per_second" toml:"requests_per_second"`
	Burst             int     `yaml:"burst" toml:"burst"`
	SuppressWarnings  bool    `yaml:"suppress_warnings" toml:"suppress_warnings"`
}

// SeedConfig points the sandbox at JSON files to preload.
type SeedConfig struct {
	Datasets string `yaml:"datasets" toml:"datasets"` // JSON array of datasets
	Pifs     string `yaml:"pifs" toml:"pifs"`         // JSON array of PIF records
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	return LoadFile(findConfigPath(env))
}

// LoadFile reads configuration from path. Files ending in .toml are parsed
// as TOML, everything else as YAML.
func LoadFile(path string) (Config, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return Config{}, errors.Wrapf(err, "failed to read config %s", path)
	}

	// Substitute env variables of the form ${VAR}
	data = expandEnvVars(data)

	var cfg Config
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		err = toml.Unmarshal(data, &cfg)
	} else {
		err = yaml.Unmarshal(data, &cfg)
	}
	if err != nil {
		return Config{}, errors.Wrap(err, "failed to parse config")
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, errors.Wrap(err, "invalid config")
	}

	return cfg, nil
}

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.Port <= 0 {
		c.HTTP.Port = 8080
	}
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 10
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Search.MaxPageSize <= 0 {
		c.Search.MaxPageSize = 100
	}
	if c.Search.MaxQueryResults <= 0 {
		c.Search.MaxQueryResults = 50000
	}
	if c.Database.Driver == "" {
		c.Database.Driver = DriverMemory
	}
	if c.Database.ReadinessTimeout <= 0 {
		c.Database.ReadinessTimeout = 10
	}
	if c.Database.UploadTTLSec <= 0 {
		c.Database.UploadTTLSec = 3600
	}
	if c.Client.Host == "" {
		c.Client.Host = "https://citrination.com"
	}
	if c.Client.MaxQuerySize <= 0 {
		c.Client.MaxQuerySize = 10000
	}
	if c.Client.TimeoutSec <= 0 {
		c.Client.TimeoutSec = 300
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return errors.Newf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if c.Search.MaxPageSize > c.Search.MaxQueryResults {
		return errors.Newf("search.max_page_size (%d) must not exceed search.max_query_results (%d)",
			c.Search.MaxPageSize, c.Search.MaxQueryResults)
	}
	switch c.Database.Driver {
	case DriverMemory:
	case DriverValkey:
		if len(c.Database.Addrs) == 0 {
			return errors.New("database.addrs is required for the valkey driver")
		}
	default:
		return errors.Newf("database.driver must be %q or %q, got %q", DriverMemory, DriverValkey, c.Database.Driver)
	}
	if c.Client.MaxQuerySize > c.Search.MaxQueryResults {
		return errors.Newf("client.max_query_size must not exceed %d, got %d",
			c.Search.MaxQueryResults, c.Client.MaxQuerySize)
	}
	if c.Client.RequestsPerSecond < 0 {
		return errors.Newf("client.requests_per_second must not be negative, got %v", c.Client.RequestsPerSecond)
	}
	if !strings.HasPrefix(c.Client.Host, "http://") && !strings.HasPrefix(c.Client.Host, "https://") {
		return errors.Newf("client.host must be an http(s) URL, got %q", c.Client.Host)
	}
	return nil
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := env + ".yaml"

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
