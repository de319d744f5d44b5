// Package config loads and validates the YAML-sourced runtime configuration
// shared by the pipeline, parameter store, and persistent FIFO components.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// PipelineConfig configures the pipeline state manager's runtime behavior.
type PipelineConfig struct {
	// MaxConcurrentBatchWorkers bounds how many goroutines BatchFilter and
	// BatchPartition spawn per call. Default: 8.
	MaxConcurrentBatchWorkers int `yaml:"max_concurrent_batch_workers"`
}

// ParameterStoreConfig configures the paramstore.Store's remote backend.
type ParameterStoreConfig struct {
	// Endpoints lists the remote KV cluster addresses (etcd or Redis,
	// depending on which RemoteKV implementation is wired up).
	Endpoints []string `yaml:"endpoints"`
	// DialTimeout bounds the initial connection attempt. Default: 5s.
	DialTimeout time.Duration `yaml:"dial_timeout"`
	// LeaseTTL is applied to keys written with lease=true. Default: 60s.
	LeaseTTL time.Duration `yaml:"lease_ttl"`
}

// FIFOConfig configures the persistent FIFO's embedded store.
type FIFOConfig struct {
	// Path is the bbolt database file path.
	Path string `yaml:"path"`
	// MaxElements bounds the queue's depth. Default: 10000.
	MaxElements uint64 `yaml:"max_elements"`
}

// Config is the top-level runtime configuration.
type Config struct {
	Pipeline       PipelineConfig       `yaml:"pipeline"`
	ParameterStore ParameterStoreConfig `yaml:"parameter_store"`
	FIFO           FIFOConfig           `yaml:"fifo"`
}

const (
	defaultMaxConcurrentBatchWorkers = 8
	defaultDialTimeout               = 5 * time.Second
	defaultLeaseTTL                  = 60 * time.Second
	defaultMaxElements               = 10000
)

// Default returns a Config with every field filled from its default.
func Default() *Config {
	return &Config{
		Pipeline: PipelineConfig{
			MaxConcurrentBatchWorkers: defaultMaxConcurrentBatchWorkers,
		},
		ParameterStore: ParameterStoreConfig{
			DialTimeout: defaultDialTimeout,
			LeaseTTL:    defaultLeaseTTL,
		},
		FIFO: FIFOConfig{
			MaxElements: defaultMaxElements,
		},
	}
}

// Load reads and parses a Config from a YAML file at path, filling any
// zero-valued field with its default and rejecting negative values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	fillDefaults(&cfg)
	return &cfg, nil
}

// Save writes cfg to path as YAML.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// Validate rejects negative values. Zero values are accepted as "not set,
// use default" and filled in by fillDefaults.
func Validate(cfg *Config) error {
	if cfg.Pipeline.MaxConcurrentBatchWorkers < 0 {
		return fmt.Errorf("invalid config: pipeline.max_concurrent_batch_workers must be non-negative, got %d", cfg.Pipeline.MaxConcurrentBatchWorkers)
	}
	if cfg.ParameterStore.DialTimeout < 0 {
		return fmt.Errorf("invalid config: parameter_store.dial_timeout must be non-negative, got %v", cfg.ParameterStore.DialTimeout)
	}
	if cfg.ParameterStore.LeaseTTL < 0 {
		return fmt.Errorf("invalid config: parameter_store.lease_ttl must be non-negative, got %v", cfg.ParameterStore.LeaseTTL)
	}
	return nil
}

func fillDefaults(cfg *Config) {
	defaults := Default()
	if cfg.Pipeline.MaxConcurrentBatchWorkers == 0 {
		cfg.Pipeline.MaxConcurrentBatchWorkers = defaults.Pipeline.MaxConcurrentBatchWorkers
	}
	if cfg.ParameterStore.DialTimeout == 0 {
		cfg.ParameterStore.DialTimeout = defaults.ParameterStore.DialTimeout
	}
	if cfg.ParameterStore.LeaseTTL == 0 {
		cfg.ParameterStore.LeaseTTL = defaults.ParameterStore.LeaseTTL
	}
	if cfg.FIFO.MaxElements == 0 {
		cfg.FIFO.MaxElements = defaults.FIFO.MaxElements
	}
}
