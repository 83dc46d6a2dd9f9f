// Package config loads engine and host settings from a file, a .env file
// and QUIVER_* environment variables, in that order of precedence (last wins).
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"

	"github.com/aretw0/quiver/pkg/adapters/process"
	"github.com/aretw0/quiver/pkg/domain"
	"github.com/aretw0/quiver/pkg/field"
	"github.com/aretw0/quiver/pkg/validate"
)

// DefaultPath is the config file looked up when none is given.
const DefaultPath = "quiver.yaml"

// Config holds every tunable of the engine and its hosts.
type Config struct {
	// Workers bounds grid evaluation goroutines; zero uses every CPU.
	Workers      int           `yaml:"workers" json:"workers" mapstructure:"workers"`
	Timeout      time.Duration `yaml:"timeout" json:"timeout" mapstructure:"timeout"`
	Scaling      string        `yaml:"scaling" json:"scaling" mapstructure:"scaling"`
	MaxInputSize int           `yaml:"max_input_size" json:"max_input_size" mapstructure:"max_input_size"`
	LogLevel     string        `yaml:"log_level" json:"log_level" mapstructure:"log_level"`
	Grid         GridConfig    `yaml:"grid" json:"grid" mapstructure:"grid"`
	Sandbox      SandboxConfig `yaml:"sandbox" json:"sandbox" mapstructure:"sandbox"`
	Redis        RedisConfig   `yaml:"redis" json:"redis" mapstructure:"redis"`
	HTTP         HTTPConfig    `yaml:"http" json:"http" mapstructure:"http"`
}

// GridConfig describes both axes as inclusive ranges.
type GridConfig struct {
	XMin  float64 `yaml:"xmin" json:"xmin" mapstructure:"xmin"`
	XMax  float64 `yaml:"xmax" json:"xmax" mapstructure:"xmax"`
	XStep float64 `yaml:"xstep" json:"xstep" mapstructure:"xstep"`
	YMin  float64 `yaml:"ymin" json:"ymin" mapstructure:"ymin"`
	YMax  float64 `yaml:"ymax" json:"ymax" mapstructure:"ymax"`
	YStep float64 `yaml:"ystep" json:"ystep" mapstructure:"ystep"`
}

// SandboxConfig configures the worker processes.
type SandboxConfig struct {
	process.Config `yaml:",inline" mapstructure:",squash"`
	// MaxConcurrent caps live workers per process; zero means unlimited.
	MaxConcurrent int `yaml:"max_concurrent" json:"max_concurrent" mapstructure:"max_concurrent"`
}

// RedisConfig enables the cluster-wide worker limiter when Addr is set.
type RedisConfig struct {
	Addr   string        `yaml:"addr" json:"addr" mapstructure:"addr"`
	Prefix string        `yaml:"prefix" json:"prefix" mapstructure:"prefix"`
	Slots  int           `yaml:"slots" json:"slots" mapstructure:"slots"`
	TTL    time.Duration `yaml:"ttl" json:"ttl" mapstructure:"ttl"`
}

// HTTPConfig configures the HTTP host.
type HTTPConfig struct {
	Port int `yaml:"port" json:"port" mapstructure:"port"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Timeout:      5 * time.Second,
		Scaling:      string(field.DefaultScaling),
		MaxInputSize: validate.DefaultMaxInputSize,
		LogLevel:     "info",
		Grid: GridConfig{
			XMin: -10, XMax: 10, XStep: 1,
			YMin: -10, YMax: 10, YStep: 1,
		},
		Redis: RedisConfig{Prefix: "quiver:", Slots: 8, TTL: 30 * time.Second},
		HTTP:  HTTPConfig{Port: 8080},
	}
}

// Load reads path (YAML, or JSON by extension) over the defaults.
// A missing file yields the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		path = DefaultPath
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}

	raw := map[string]any{}
	if strings.ToLower(filepath.Ext(path)) == ".json" {
		if err := json.Unmarshal(data, &raw); err != nil {
			return cfg, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
		}
	} else if err := yaml.Unmarshal(data, &raw); err != nil {
		return cfg, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
	}

	if err := decode(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("invalid config %s: %w", filepath.Base(path), err)
	}
	return cfg, nil
}

func decode(raw map[string]any, cfg *Config) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           cfg,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
	})
	if err != nil {
		return err
	}
	return dec.Decode(raw)
}

// envKeys maps QUIVER_* variables to config paths.
var envKeys = map[string]string{
	"QUIVER_TIMEOUT":         "timeout",
	"QUIVER_SCALING":         "scaling",
	"QUIVER_WORKERS":         "workers",
	validate.EnvMaxInputSize: "max_input_size",
	"QUIVER_LOG_LEVEL":       "log_level",
	"QUIVER_SANDBOX_COMMAND": "sandbox.command",
	"QUIVER_MEMORY_LIMIT":    "sandbox.memory_limit",
	"QUIVER_MAX_CONCURRENT":  "sandbox.max_concurrent",
	"QUIVER_REDIS_ADDR":      "redis.addr",
	"QUIVER_REDIS_PREFIX":    "redis.prefix",
	"QUIVER_REDIS_SLOTS":     "redis.slots",
	"QUIVER_REDIS_TTL":       "redis.ttl",
	"QUIVER_PORT":            "http.port",
}

// LoadEnvFile loads KEY=VALUE pairs from path into the process
// environment without overriding variables that are already set.
// A missing file is not an error.
func LoadEnvFile(path string) error {
	if path == "" {
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// ApplyEnv overrides cfg with QUIVER_* values found through lookup
// (usually os.LookupEnv).
func ApplyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	raw := map[string]any{}
	for env, path := range envKeys {
		v, ok := lookup(env)
		if !ok || v == "" {
			continue
		}
		node := raw
		parts := strings.Split(path, ".")
		for _, p := range parts[:len(parts)-1] {
			child, ok := node[p].(map[string]any)
			if !ok {
				child = map[string]any{}
				node[p] = child
			}
			node = child
		}
		node[parts[len(parts)-1]] = v
	}
	if len(raw) == 0 {
		return nil
	}
	if err := decode(raw, cfg); err != nil {
		return fmt.Errorf("invalid environment: %w", err)
	}
	return nil
}

// Validate reports settings no engine could run with.
func (c Config) Validate() error {
	var errs []error
	if c.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("timeout must be positive, got %s", c.Timeout))
	}
	if _, err := field.ParseScaling(c.Scaling); err != nil {
		errs = append(errs, err)
	}
	if c.Workers < 0 {
		errs = append(errs, fmt.Errorf("workers must not be negative, got %d", c.Workers))
	}
	if c.MaxInputSize < 0 {
		errs = append(errs, fmt.Errorf("max_input_size must not be negative, got %d", c.MaxInputSize))
	}
	if _, err := c.Grid.Grid(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Grid builds the sampling grid. Both maxima are inclusive.
func (g GridConfig) Grid() (domain.Grid, error) {
	xs, err := domain.Arange(g.XMin, g.XMax+g.XStep/2, g.XStep)
	if err != nil {
		return domain.Grid{}, fmt.Errorf("x axis: %w", err)
	}
	ys, err := domain.Arange(g.YMin, g.YMax+g.YStep/2, g.YStep)
	if err != nil {
		return domain.Grid{}, fmt.Errorf("y axis: %w", err)
	}
	return domain.NewGrid(xs, ys)
}
