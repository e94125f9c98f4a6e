// Package config loads the gateway configuration from config/<env>.yaml.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/kailas-cloud/vecscope/internal/domain/spec"
)

// PathEnv overrides the config file location.
const PathEnv = "VECSCOPE_CONFIG"

// Config holds the vecscope gateway configuration.
type Config struct {
	HTTP      HTTPConfig             `yaml:"http"`
	Database  DatabaseConfig         `yaml:"database"`
	Search    SearchConfig           `yaml:"search"`
	Auth      AuthConfig             `yaml:"auth"`
	Storage   StorageConfig          `yaml:"storage"`
	Templates TemplatesConfig        `yaml:"templates"`
	Models    map[string]ModelConfig `yaml:"models"`
	Logging   LoggingConfig          `yaml:"logging"`
}

// LoggingConfig overrides the env logging preset.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, console
}

type AuthConfig struct {
	APIKeys []string `yaml:"api_keys"`
}

type HTTPConfig struct {
	Port            int             `yaml:"port"`
	ReadTimeout     time.Duration   `yaml:"read_timeout"`
	WriteTimeout    time.Duration   `yaml:"write_timeout"`
	ShutdownTimeout time.Duration   `yaml:"shutdown_timeout"`
	RateLimit       RateLimitConfig `yaml:"rate_limit"`
}

// RateLimitConfig is a per-client token bucket; per_second 0 disables it.
type RateLimitConfig struct {
	PerSecond float64 `yaml:"per_second"`
	Burst     int     `yaml:"burst"`
}

type DatabaseConfig struct {
	Driver           string        `yaml:"driver"` // redis, valkey
	Addrs            []string      `yaml:"addrs"`
	Password         string        `yaml:"password"`
	ReadinessTimeout time.Duration `yaml:"readiness_timeout"`
}

// SearchConfig bounds every request the gateway runs.
type SearchConfig struct {
	DefaultSize   int           `yaml:"default_size"`
	MaxSize       int           `yaml:"max_size"`
	ScanBatchSize int           `yaml:"scan_batch_size"`
	Scroll        time.Duration `yaml:"scroll"` // cursor idle lifetime
}

type StorageConfig struct {
	KeyPrefix string `yaml:"key_prefix"`
	// EnsureIndexes creates missing model indexes at startup.
	EnsureIndexes bool `yaml:"ensure_indexes"`
}

type TemplatesConfig struct {
	Path string `yaml:"path"` // file or directory; empty disables templates
}

// ModelConfig describes one model served by the gateway.
type ModelConfig struct {
	Fields []FieldConfig `yaml:"fields"`
	// Base is merged into every query of the model.
	Base   spec.Document            `yaml:"base"`
	Scopes map[string]spec.Document `yaml:"scopes"`
}

type FieldConfig struct {
	Name     string `yaml:"name"`
	Type     string `yaml:"type"` // tag, numeric, text
	Sortable bool   `yaml:"sortable"`
}

// Default returns the configuration every file is decoded over.
func Default() Config {
	return Config{
		HTTP: HTTPConfig{
			Port:            8080,
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Database: DatabaseConfig{
			Driver:           "redis",
			ReadinessTimeout: 10 * time.Second,
		},
		Search: SearchConfig{
			DefaultSize:   spec.DefaultSize,
			MaxSize:       100,
			ScanBatchSize: 100,
			Scroll:        spec.DefaultScroll,
		},
		Storage: StorageConfig{KeyPrefix: "vecscope:"},
	}
}

// Load reads the config of env (local, dev, prod), expanding ${VAR} and
// ${VAR:-default} references before decoding.
func Load(env string) (Config, error) {
	return LoadPath(resolvePath(env))
}

// LoadPath is Load for an explicit file.
func LoadPath(path string) (Config, error) {
	raw, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}
	return Parse(expandEnvVars(raw))
}

// Parse decodes and validates an already expanded document.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// GetEnv returns $ENV, "local" when unset.
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// Validate reports every problem at once.
func (c *Config) Validate() error {
	var errs []error
	fail := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf(format, args...))
	}

	if c.HTTP.Port < 1 || c.HTTP.Port > 65535 {
		fail("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if c.Database.Driver != "redis" && c.Database.Driver != "valkey" {
		fail("database.driver must be redis or valkey, got %q", c.Database.Driver)
	}
	if len(c.Database.Addrs) == 0 {
		fail("database.addrs is required")
	}
	if c.Search.DefaultSize < 1 || c.Search.MaxSize < 1 || c.Search.ScanBatchSize < 1 {
		fail("search sizes must be positive")
	} else if c.Search.DefaultSize > c.Search.MaxSize {
		fail("search.default_size %d exceeds search.max_size %d", c.Search.DefaultSize, c.Search.MaxSize)
	}
	if c.HTTP.RateLimit.PerSecond < 0 || c.HTTP.RateLimit.Burst < 0 {
		fail("http.rate_limit values must not be negative")
	}
	if c.Search.Scroll <= 0 {
		fail("search.scroll must be positive")
	}
	if len(c.Models) == 0 {
		fail("at least one model is required")
	}
	for name, m := range c.Models {
		if err := m.validate(); err != nil {
			fail("models.%s: %w", name, err)
		}
	}
	return errors.Join(errs...)
}

func (m ModelConfig) validate() error {
	seen := make(map[string]bool, len(m.Fields))
	for i, f := range m.Fields {
		switch {
		case f.Name == "":
			return fmt.Errorf("fields[%d].name is required", i)
		case seen[f.Name]:
			return fmt.Errorf("fields[%d]: duplicate field %q", i, f.Name)
		}
		seen[f.Name] = true
		if f.Type != "tag" && f.Type != "numeric" && f.Type != "text" {
			return fmt.Errorf("fields[%d].type must be tag, numeric or text, got %q", i, f.Type)
		}
	}
	if _, err := m.Base.Fragment(); err != nil {
		return fmt.Errorf("base: %w", err)
	}
	for name, doc := range m.Scopes {
		if _, err := doc.Fragment(); err != nil {
			return fmt.Errorf("scopes.%s: %w", name, err)
		}
	}
	return nil
}

// resolvePath prefers $VECSCOPE_CONFIG, then ./config, then the config dir
// next to the module root when running from a source checkout.
func resolvePath(env string) string {
	if p := os.Getenv(PathEnv); p != "" {
		return p
	}
	name := filepath.Join("config", env+".yaml")
	if _, err := os.Stat(name); err == nil {
		return name
	}
	if _, src, _, ok := runtime.Caller(0); ok {
		root := filepath.Join(filepath.Dir(src), "..", "..")
		if p := filepath.Join(root, name); fileExists(p) {
			return p
		}
	}
	return name
}

func fileExists(path string) bool {
	st, err := os.Stat(path)
	return err == nil && !st.IsDir()
}

var envRef = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(?::-([^}]*))?\}`)

func expandEnvVars(data []byte) []byte {
	return envRef.ReplaceAllFunc(data, func(ref []byte) []byte {
		m := envRef.FindSubmatch(ref)
		if v, ok := os.LookupEnv(string(m[1])); ok && v != "" {
			return []byte(v)
		}
		return m[2]
	})
}
