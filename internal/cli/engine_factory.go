package cli

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	goredis "github.com/redis/go-redis/v9"

	"github.com/aretw0/quiver"
	"github.com/aretw0/quiver/pkg/adapters/memory"
	"github.com/aretw0/quiver/pkg/adapters/process"
	"github.com/aretw0/quiver/pkg/adapters/redis"
	"github.com/aretw0/quiver/pkg/config"
	"github.com/aretw0/quiver/pkg/field"
	"github.com/aretw0/quiver/pkg/observability"
	"github.com/aretw0/quiver/pkg/ports"
)

// Runtime is an engine plus the resources its hosts share.
type Runtime struct {
	Engine  *quiver.Engine
	Metrics *observability.Metrics
	Limiter ports.Limiter
	Config  config.Config
	Logger  *slog.Logger
	closers []func() error
}

// Close releases connections opened by Setup.
func (rt *Runtime) Close() error {
	var errs []error
	for _, c := range rt.closers {
		errs = append(errs, c())
	}
	return errors.Join(errs...)
}

// LoadConfig reads envFile, then the config file, then QUIVER_* variables.
func LoadConfig(path, envFile string) (config.Config, error) {
	if err := config.LoadEnvFile(envFile); err != nil {
		return config.Config{}, err
	}
	cfg, err := config.Load(path)
	if err != nil {
		return cfg, err
	}
	if err := config.ApplyEnv(&cfg, os.LookupEnv); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Setup validates cfg and builds the engine with CLI conventions:
// process sandbox, optional worker limiter, metrics and log hooks.
func Setup(cfg config.Config, logger *slog.Logger) (*Runtime, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	rt := &Runtime{Config: cfg, Logger: logger, Metrics: observability.NewMetrics()}

	g, err := cfg.Grid.Grid()
	if err != nil {
		return nil, err
	}
	scaling, err := field.ParseScaling(cfg.Scaling)
	if err != nil {
		return nil, err
	}
	sb, err := process.NewSandbox(append(cfg.Sandbox.Options(), process.WithLogger(logger))...)
	if err != nil {
		return nil, fmt.Errorf("error initializing sandbox: %w", err)
	}

	opts := []quiver.Option{
		quiver.WithLogger(logger),
		quiver.WithLifecycleHooks(observability.Chain(rt.Metrics.Hooks(), observability.LogHooks(logger))),
		quiver.WithSandbox(sb),
		quiver.WithTimeout(cfg.Timeout),
		quiver.WithGrid(g),
		quiver.WithScaling(scaling),
		quiver.WithWorkers(cfg.Workers),
	}

	switch {
	case cfg.Redis.Addr != "":
		client := goredis.NewClient(&goredis.Options{Addr: cfg.Redis.Addr})
		rt.closers = append(rt.closers, client.Close)
		var lopts []redis.Option
		if cfg.Redis.TTL > 0 {
			lopts = append(lopts, redis.WithTTL(cfg.Redis.TTL))
		}
		rt.Limiter = redis.NewLimiter(client, cfg.Redis.Prefix, cfg.Redis.Slots, lopts...)
		logger.Debug("worker limiter", "backend", "redis", "addr", cfg.Redis.Addr, "slots", cfg.Redis.Slots)
	case cfg.Sandbox.MaxConcurrent > 0:
		rt.Limiter = memory.NewLimiter(cfg.Sandbox.MaxConcurrent)
		logger.Debug("worker limiter", "backend", "memory", "slots", cfg.Sandbox.MaxConcurrent)
	}
	if rt.Limiter != nil {
		opts = append(opts, quiver.WithLimiter(rt.Limiter))
	}

	eng, err := quiver.New(opts...)
	if err != nil {
		_ = rt.Close()
		return nil, fmt.Errorf("error initializing engine: %w", err)
	}
	rt.Engine = eng
	return rt, nil
}
