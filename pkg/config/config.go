// Package config provides configuration loading for Reservoir workloads
package config

import (
	"os"
	"runtime"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ajitpratap0/reservoir/pkg/errors"
)

// BenchConfig describes a synthetic pool workload run by the bench harness.
type BenchConfig struct {
	// Name identifies the workload in logs, metrics, and reports
	Name string `yaml:"name" json:"name"`

	// Pool settings for the pool under test
	Pool PoolConfig `yaml:"pool" json:"pool"`

	// Workers is the number of concurrent goroutines driving the pool
	Workers int `yaml:"workers" json:"workers"`

	// Iterations is the number of acquire/release cycles per worker;
	// ignored when Duration is set
	Iterations int `yaml:"iterations" json:"iterations"`

	// Duration bounds the run by wall-clock time instead of iterations
	Duration time.Duration `yaml:"duration" json:"duration"`

	// HoldBatch is how many objects each worker holds concurrently before
	// releasing them, simulating loans that outlive a single call
	HoldBatch int `yaml:"hold_batch" json:"hold_batch"`

	// RateLimit caps iterations per second across all workers; 0 disables
	RateLimit int `yaml:"rate_limit" json:"rate_limit"`
}

// PoolConfig contains the pool construction parameters for a workload.
type PoolConfig struct {
	// InitialCapacity is the capacity hint passed to the pool
	InitialCapacity int `yaml:"initial_capacity" json:"initial_capacity"`

	// Prewarm populates the free list with this many objects before the
	// workload starts
	Prewarm int `yaml:"prewarm" json:"prewarm"`

	// PayloadBytes sizes the synthetic pooled object
	PayloadBytes int `yaml:"payload_bytes" json:"payload_bytes"`
}

// DefaultBenchConfig returns a workload sized to the host.
func DefaultBenchConfig() *BenchConfig {
	return &BenchConfig{
		Name: "default",
		Pool: PoolConfig{
			InitialCapacity: 1024,
			Prewarm:         0,
			PayloadBytes:    256,
		},
		Workers:    runtime.NumCPU(),
		Iterations: 100000,
		HoldBatch:  1,
	}
}

// Validate checks the configuration for values the harness cannot run with.
func (c *BenchConfig) Validate() error {
	if c.Name == "" {
		return errors.New(errors.ErrorTypeConfig, "workload name is required")
	}
	if c.Workers <= 0 {
		return errors.New(errors.ErrorTypeConfig, "workers must be positive").
			WithDetail("workers", c.Workers)
	}
	if c.Iterations <= 0 && c.Duration <= 0 {
		return errors.New(errors.ErrorTypeConfig, "either iterations or duration must be set")
	}
	if c.HoldBatch <= 0 {
		return errors.New(errors.ErrorTypeConfig, "hold_batch must be positive").
			WithDetail("hold_batch", c.HoldBatch)
	}
	if c.Pool.InitialCapacity < 0 || c.Pool.Prewarm < 0 {
		return errors.New(errors.ErrorTypeConfig, "pool capacities must not be negative")
	}
	if c.Pool.PayloadBytes <= 0 {
		return errors.New(errors.ErrorTypeConfig, "payload_bytes must be positive").
			WithDetail("payload_bytes", c.Pool.PayloadBytes)
	}
	if c.RateLimit < 0 {
		return errors.New(errors.ErrorTypeConfig, "rate_limit must not be negative")
	}
	return nil
}

// Load loads a configuration from a YAML file, substituting ${VAR}
// references with environment variable values before parsing.
func Load(filePath string, config interface{}) error {
	data, err := os.ReadFile(filePath) //nolint:gosec // G304: path is caller-controlled
	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeConfig, "failed to read config file")
	}

	content := substituteEnvVars(string(data))

	if err := yaml.Unmarshal([]byte(content), config); err != nil {
		return errors.Wrap(err, errors.ErrorTypeConfig, "failed to parse YAML")
	}

	return nil
}

// Save saves a configuration to a YAML file.
func Save(filePath string, config interface{}) error {
	data, err := yaml.Marshal(config)
	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeConfig, "failed to marshal YAML")
	}

	if err := os.WriteFile(filePath, data, 0644); err != nil { //nolint:gosec
		return errors.Wrap(err, errors.ErrorTypeConfig, "failed to write config file")
	}

	return nil
}

// substituteEnvVars replaces ${VAR_NAME} with environment variable values
func substituteEnvVars(content string) string {
	for {
		start := strings.Index(content, "${")
		if start == -1 {
			break
		}
		end := strings.Index(content[start:], "}")
		if end == -1 {
			break
		}
		end += start

		varName := content[start+2 : end]
		envValue := os.Getenv(varName)
		content = content[:start] + envValue + content[end+1:]
	}
	return content
}
