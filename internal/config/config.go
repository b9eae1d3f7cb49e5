// ABOUTME: Configuration loading and parsing for quill
// ABOUTME: Supports YAML or TOML files with environment variable expansion and duration parsing

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// ErrMissingSecret is returned when no JWT signing secret is configured.
var ErrMissingSecret = errors.New("auth.jwt_secret is required (set JWT_SECRET or add it to the config file)")

// Defaults applied when a field is left empty.
const (
	DefaultPort              = "3000"
	DefaultGenerationModel   = "gemini-2.0-flash"
	DefaultGenerationURL     = "https://generativelanguage.googleapis.com/v1beta"
	DefaultGenerationTimeout = 10 * time.Second
	DefaultMetricsPath       = "/metrics"
)

// Config represents the complete quill configuration
type Config struct {
	Server     ServerConfig     `yaml:"server" toml:"server"`
	Tailscale  TailscaleConfig  `yaml:"tailscale" toml:"tailscale"`
	Database   DatabaseConfig   `yaml:"database" toml:"database"`
	Auth       AuthConfig       `yaml:"auth" toml:"auth"`
	Generation GenerationConfig `yaml:"generation" toml:"generation"`
	Logging    LoggingConfig    `yaml:"logging" toml:"logging"`
	Metrics    MetricsConfig    `yaml:"metrics" toml:"metrics"`
}

// ServerConfig holds HTTP listener configuration
type ServerConfig struct {
	HTTPAddr    string   `yaml:"http_addr" toml:"http_addr"`
	CORSOrigins []string `yaml:"cors_origins" toml:"cors_origins"`
}

// TailscaleConfig holds Tailscale tsnet configuration
type TailscaleConfig struct {
	Enabled   bool   `yaml:"enabled" toml:"enabled"`
	Hostname  string `yaml:"hostname" toml:"hostname"`
	AuthKey   string `yaml:"auth_key" toml:"auth_key"`
	StateDir  string `yaml:"state_dir" toml:"state_dir"`
	Ephemeral bool   `yaml:"ephemeral" toml:"ephemeral"`
	Funnel    bool   `yaml:"funnel" toml:"funnel"` // Enable public Funnel (implies HTTPS)
	HTTPS     bool   `yaml:"https" toml:"https"`   // Serve tailnet HTTPS with an automatic cert
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Path string `yaml:"path" toml:"path"`
}

// AuthConfig holds authentication configuration
type AuthConfig struct {
	JWTSecret string `yaml:"jwt_secret" toml:"jwt_secret"`
}

// GenerationConfig holds text generation provider configuration
type GenerationConfig struct {
	APIKey   string        `yaml:"api_key" toml:"api_key"`
	Model    string        `yaml:"model" toml:"model"`
	Endpoint string        `yaml:"endpoint" toml:"endpoint"`
	Timeout  time.Duration `yaml:"-" toml:"-"`

	// Raw string value for unmarshaling
	TimeoutRaw string `yaml:"timeout" toml:"timeout"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level" toml:"level"`
	Format string `yaml:"format" toml:"format"`
}

// MetricsConfig holds metrics endpoint configuration
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled" toml:"enabled"`
	Path    string `yaml:"path" toml:"path"`
}

// Load reads a configuration file from the given path and returns a parsed Config.
// Files ending in .toml are decoded as TOML, anything else as YAML.
// Environment variables in the format ${VAR_NAME} are expanded.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	format := "yaml"
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		format = "toml"
	}
	return parse(string(data), format)
}

// LoadDefault builds a Config from the built-in default document, which
// reads JWT_SECRET, GEMINI_API_KEY, PORT and QUILL_DB from the environment.
func LoadDefault() (*Config, error) {
	return parse(defaultDocument(), "yaml")
}

// Resolve loads the file at Path, or the default document if no file exists.
// It returns the path that was loaded, or "" for the default document.
func Resolve() (*Config, string, error) {
	path := Path()
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		cfg, err := LoadDefault()
		return cfg, "", err
	}
	cfg, err := Load(path)
	return cfg, path, err
}

func parse(doc, format string) (*Config, error) {
	// Expand environment variables in the raw content
	expanded := expandEnvVars(doc)

	var cfg Config
	switch format {
	case "toml":
		if _, err := toml.Decode(expanded, &cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	default:
		if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := parseDurations(&cfg); err != nil {
		return nil, fmt.Errorf("parsing durations: %w", err)
	}

	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

// expandEnvVars replaces ${VAR_NAME} patterns with the corresponding environment variable values.
// If the environment variable is not set, it is replaced with an empty string.
func expandEnvVars(s string) string {
	re := regexp.MustCompile(`\$\{([^}]+)\}`)

	return re.ReplaceAllStringFunc(s, func(match string) string {
		varName := re.FindStringSubmatch(match)[1]
		return os.Getenv(varName)
	})
}

// Validate checks that all required configuration fields are present and valid.
// Returns an error describing the first validation failure encountered.
func (c *Config) Validate() error {
	if c.Auth.JWTSecret == "" {
		return ErrMissingSecret
	}

	if c.Database.Path == "" {
		return fmt.Errorf("database.path is required")
	}

	// HTTP address is required unless Tailscale is enabled
	if !c.Tailscale.Enabled && c.Server.HTTPAddr == "" {
		return fmt.Errorf("server.http_addr is required (or enable tailscale)")
	}

	if c.Tailscale.Enabled && c.Tailscale.Hostname == "" {
		return fmt.Errorf("tailscale.hostname is required when tailscale is enabled")
	}

	if c.Generation.Timeout < 0 {
		return fmt.Errorf("generation.timeout must not be negative")
	}

	if c.Metrics.Enabled {
		if err := ValidateMetricsPath(c.Metrics.Path); err != nil {
			return err
		}
	}

	return nil
}

// reservedPaths are served by the API and cannot host the metrics endpoint.
var reservedPaths = []string{"/", "/health", "/ready", "/auth/register", "/auth/login", "/entries", "/journal"}

// ValidateMetricsPath checks that path is a plain absolute path that does not
// collide with an API route.
func ValidateMetricsPath(path string) error {
	if !strings.HasPrefix(path, "/") || strings.ContainsAny(path, " \t{}") {
		return fmt.Errorf("metrics.path %q must be an absolute path without spaces or wildcards", path)
	}
	clean := strings.TrimSuffix(path, "/")
	if clean == "" {
		clean = "/"
	}
	for _, reserved := range reservedPaths {
		if clean == reserved {
			return fmt.Errorf("metrics.path %q collides with an API route", path)
		}
	}
	return nil
}

// parseDurations converts the raw duration strings into time.Duration values
func parseDurations(cfg *Config) error {
	if cfg.Generation.TimeoutRaw != "" {
		d, err := time.ParseDuration(cfg.Generation.TimeoutRaw)
		if err != nil {
			return fmt.Errorf("parsing generation.timeout %q: %w", cfg.Generation.TimeoutRaw, err)
		}
		cfg.Generation.Timeout = d
	}
	return nil
}

func applyDefaults(cfg *Config) {
	if cfg.Generation.Model == "" {
		cfg.Generation.Model = DefaultGenerationModel
	}
	if cfg.Generation.Endpoint == "" {
		cfg.Generation.Endpoint = DefaultGenerationURL
	}
	if cfg.Generation.Timeout == 0 {
		cfg.Generation.Timeout = DefaultGenerationTimeout
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "text"
	}
	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = DefaultMetricsPath
	}
	if cfg.Tailscale.Enabled && cfg.Tailscale.StateDir == "" {
		cfg.Tailscale.StateDir = filepath.Join(DataPath(), "tsnet")
	}
}

// defaultDocument is the configuration used when no config file exists.
func defaultDocument() string {
	port := os.Getenv("PORT")
	if port == "" {
		port = DefaultPort
	}
	dbPath := os.Getenv("QUILL_DB")
	if dbPath == "" {
		dbPath = filepath.Join(DataPath(), "quill.db")
	}

	return fmt.Sprintf(`server:
  http_addr: ":%s"
database:
  path: %q
auth:
  jwt_secret: "${JWT_SECRET}"
generation:
  api_key: "${GEMINI_API_KEY}"
`, port, dbPath)
}

// Path returns the path to the config file.
// Priority: QUILL_CONFIG env var > XDG_CONFIG_HOME/quill/quill.yaml > ~/.config/quill/quill.yaml
func Path() string {
	if envPath := os.Getenv("QUILL_CONFIG"); envPath != "" {
		return envPath
	}

	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "quill.yaml" // fallback
		}
		configDir = filepath.Join(homeDir, ".config")
	}

	return filepath.Join(configDir, "quill", "quill.yaml")
}

// DataPath returns the quill data directory.
// Priority: XDG_DATA_HOME/quill > ~/.local/share/quill
func DataPath() string {
	dataDir := os.Getenv("XDG_DATA_HOME")
	if dataDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "data" // fallback
		}
		dataDir = filepath.Join(homeDir, ".local", "share")
	}

	return filepath.Join(dataDir, "quill")
}
