package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kailas-cloud/pilotprefs/internal/domain/preference"
)

// Config holds the pilotprefs configuration.
type Config struct {
	HTTP       HTTPConfig       `yaml:"http"`
	Database   DatabaseConfig   `yaml:"database"`
	Auth       AuthConfig       `yaml:"auth"`
	Extraction ExtractionConfig `yaml:"extraction"`
	RateLimit  RateLimitConfig  `yaml:"rate_limit"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// Caller identity sources.
const (
	// AuthModeFirebase verifies the Firebase ID token sent as "Authorization: Bearer".
	AuthModeFirebase = "firebase"
	// AuthModeHeader trusts CallerHeader. Only safe behind a gateway holding one of APIKeys.
	AuthModeHeader = "header"
)

// AuthConfig holds authentication settings.
type AuthConfig struct {
	Mode         string   `yaml:"mode"`          // firebase (default), header
	ProjectID    string   `yaml:"project_id"`    // Firebase project; empty detects it from the environment
	APIKeys      []string `yaml:"api_keys"`      // gateway keys, header mode only
	CallerHeader string   `yaml:"caller_header"` // header carrying the gateway-verified caller id
}

// GatewayKeys returns the configured non-empty API keys.
func (a AuthConfig) GatewayKeys() []string {
	keys := make([]string, 0, len(a.APIKeys))
	for _, k := range a.APIKeys {
		if k != "" {
			keys = append(keys, k)
		}
	}
	return keys
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// DatabaseConfig holds document store connection settings.
type DatabaseConfig struct {
	Driver           string   `yaml:"driver"` // valkey, redis, goredis (default: valkey)
	Addrs            []string `yaml:"addrs"`
	Username         string   `yaml:"username"`
	Password         string   `yaml:"password"`
	DB               int      `yaml:"db"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
	KeyPrefix        string   `yaml:"key_prefix"`
}

// ExtractionConfig holds keyword matching settings.
type ExtractionConfig struct {
	MatchMode string `yaml:"match_mode"` // phrase (default), token
}

// RateLimitConfig holds per-caller rate limiting. RPS 0 disables limiting.
type RateLimitConfig struct {
	RPS   float64 `yaml:"rps"`
	Burst int     `yaml:"burst"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod, function).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	return Parse(data)
}

// Parse decodes YAML config data, expanding ${VAR} references, applying defaults and validating.
func Parse(data []byte) (Config, error) {
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
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
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 10
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Database.Driver == "" {
		c.Database.Driver = "valkey"
	}
	if c.Database.ReadinessTimeout <= 0 {
		c.Database.ReadinessTimeout = 10
	}
	if c.Auth.Mode == "" {
		c.Auth.Mode = AuthModeFirebase
	}
	if c.Auth.CallerHeader == "" {
		c.Auth.CallerHeader = "X-Caller-Id"
	}
	if c.Extraction.MatchMode == "" {
		c.Extraction.MatchMode = string(preference.MatchPhrase)
	}
	if c.RateLimit.RPS > 0 && c.RateLimit.Burst <= 0 {
		c.RateLimit.Burst = 1
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	switch c.Database.Driver {
	case "valkey", "redis", "goredis":
	default:
		return fmt.Errorf("database.driver must be one of valkey, redis, goredis, got %q", c.Database.Driver)
	}
	if len(c.Database.Addrs) == 0 {
		return fmt.Errorf("database.addrs is required")
	}
	if err := c.Auth.validate(); err != nil {
		return err
	}
	if _, err := preference.ParseMatchMode(c.Extraction.MatchMode); err != nil {
		return fmt.Errorf("extraction.match_mode: %w", err)
	}
	if c.RateLimit.RPS < 0 {
		return fmt.Errorf("rate_limit.rps must not be negative, got %v", c.RateLimit.RPS)
	}
	return nil
}

func (a AuthConfig) validate() error {
	switch a.Mode {
	case AuthModeFirebase:
		// Gateway keys and ID tokens would both need the Authorization header.
		if len(a.GatewayKeys()) > 0 {
			return fmt.Errorf("auth.api_keys cannot be combined with auth.mode %q", AuthModeFirebase)
		}
	case AuthModeHeader:
		if len(a.GatewayKeys()) == 0 {
			return fmt.Errorf("auth.mode %q trusts %s and requires auth.api_keys", AuthModeHeader, a.CallerHeader)
		}
	default:
		return fmt.Errorf("auth.mode must be one of firebase, header, got %q", a.Mode)
	}
	return nil
}

// findConfigPath locates the config file. CONFIG_PATH wins when set.
func findConfigPath(env string) string {
	if p := os.Getenv("CONFIG_PATH"); p != "" {
		return p
	}

	filename := fmt.Sprintf("%s.yaml", env)

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
