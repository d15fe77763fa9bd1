// # internal/core/config/config.go
package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"grammarcheck/internal/core/errors"

	"github.com/BurntSushi/toml"
)

// DefaultFileName is looked up in the module root when no --config is given.
const DefaultFileName = "grammarcheck.toml"

type Config struct {
	Version       int               `toml:"version"`
	Target        string            `toml:"target"`
	LogLevel      string            `toml:"log_level"`
	Paths         Paths             `toml:"paths"`
	Subset        Subset            `toml:"subset"`
	Symbols       map[string]string `toml:"symbols"` // grammar name -> symbol suffix
	Watch         Watch             `toml:"watch"`
	Observability Observability     `toml:"observability"`
}

type Paths struct {
	DistDir string `toml:"dist_dir"`
	Output  string `toml:"output"`
}

type Subset struct {
	Languages []string `toml:"languages"`
	Patterns  []string `toml:"patterns"`
}

type Watch struct {
	Debounce time.Duration `toml:"debounce"`
}

type Observability struct {
	MetricsFile  string `toml:"metrics_file"`
	OTLPEndpoint string `toml:"otlp_endpoint"`
	ServiceName  string `toml:"service_name"`
}

// DefaultConfig reproduces the behaviour of a run without any config file.
func DefaultConfig() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		e := errors.Wrap(err, errors.CodeInvalidConfig, "failed to read config")
		return nil, errors.AddContext(e, errors.CtxPath, path)
	}

	var cfg Config
	if _, err := toml.Decode(string(data), &cfg); err != nil {
		e := errors.Wrap(err, errors.CodeInvalidConfig, "failed to decode config")
		return nil, errors.AddContext(e, errors.CtxPath, path)
	}

	applyDefaults(&cfg)
	if err := Validate(&cfg); err != nil {
		return nil, errors.AddContext(err, errors.CtxPath, path)
	}
	return &cfg, nil
}

// LoadOptional loads path when it exists and falls back to DefaultConfig.
func LoadOptional(path string) (*Config, bool, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), false, nil
		}
		return nil, false, errors.Wrap(err, errors.CodeInvalidConfig, "failed to stat config")
	}
	cfg, err := Load(path)
	if err != nil {
		return nil, false, err
	}
	return cfg, true, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Version == 0 {
		cfg.Version = 1
	}
	if strings.TrimSpace(cfg.LogLevel) == "" {
		cfg.LogLevel = "info"
	}
	if strings.TrimSpace(cfg.Paths.DistDir) == "" {
		cfg.Paths.DistDir = "../dist"
	}
	if strings.TrimSpace(cfg.Paths.Output) == "" {
		cfg.Paths.Output = "internal/grammars/zz_grammars.go"
	}
	if len(cfg.Subset.Languages) == 0 && len(cfg.Subset.Patterns) == 0 {
		cfg.Subset.Languages = []string{"c", "python", "javascript", "rust", "go"}
	}
	if cfg.Watch.Debounce == 0 {
		cfg.Watch.Debounce = 500 * time.Millisecond
	}
	if strings.TrimSpace(cfg.Observability.ServiceName) == "" {
		cfg.Observability.ServiceName = "grammarcheck"
	}
}

// SlogLevel maps log_level to a slog level.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(strings.TrimSpace(c.LogLevel)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// ResolvePath anchors a relative path at root.
func ResolvePath(root, path string) string {
	path = strings.TrimSpace(path)
	if path == "" {
		return filepath.Clean(root)
	}
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Join(root, path)
}
