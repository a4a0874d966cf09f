package config

import (
	"fmt"
	"runtime"
	"time"

	"github.com/kbukum/graphkit/errors"
	"github.com/kbukum/graphkit/logger"
)

// DefaultName is the service name used when none is configured.
const DefaultName = "graphkit"

// Memory backends.
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
	BackendBolt   = "bolt"
)

// Config is the engine configuration.
type Config struct {
	BaseConfig `yaml:",inline" mapstructure:",squash"`
	Logging    logger.Config  `yaml:"logging" mapstructure:"logging"`
	Computer   ComputerConfig `yaml:"computer" mapstructure:"computer"`
	Memory     MemoryConfig   `yaml:"memory" mapstructure:"memory"`
}

// ComputerConfig tunes the distributed map/reduce runner.
type ComputerConfig struct {
	// Workers bounds how many partitions are mapped, and how many reduce
	// buckets are reduced, concurrently.
	Workers int `yaml:"workers" mapstructure:"workers" validate:"min=1"`
	// ReduceBuckets is the number of shuffle buckets keys are hashed into.
	ReduceBuckets int `yaml:"reduce_buckets" mapstructure:"reduce_buckets" validate:"min=1"`
	// Detached makes reducing barriers ship detached traversers.
	Detached bool `yaml:"detached" mapstructure:"detached"`
}

// MemoryConfig selects and configures the result store.
type MemoryConfig struct {
	Backend string `yaml:"backend" mapstructure:"backend" validate:"oneof=memory redis bolt"`
	// TTL expires stored results. Zero keeps them until deleted.
	TTL   time.Duration `yaml:"ttl" mapstructure:"ttl"`
	Redis RedisConfig   `yaml:"redis" mapstructure:"redis"`
	Bolt  BoltConfig    `yaml:"bolt" mapstructure:"bolt"`
	Retry RetryConfig   `yaml:"retry" mapstructure:"retry"`
}

// RetryConfig bounds retries of failed remote store calls.
type RetryConfig struct {
	// MaxAttempts includes the first attempt. 1 disables retries.
	MaxAttempts    int           `yaml:"max_attempts" mapstructure:"max_attempts" validate:"min=1"`
	InitialBackoff time.Duration `yaml:"initial_backoff" mapstructure:"initial_backoff"`
	MaxBackoff     time.Duration `yaml:"max_backoff" mapstructure:"max_backoff"`
}

// RedisConfig configures the Redis result store.
type RedisConfig struct {
	Addr     string `yaml:"addr" mapstructure:"addr"`
	Password string `yaml:"password" mapstructure:"password"`
	DB       int    `yaml:"db" mapstructure:"db" validate:"min=0"`
	Prefix   string `yaml:"prefix" mapstructure:"prefix"`
}

// BoltConfig configures the bbolt result store.
type BoltConfig struct {
	Path    string        `yaml:"path" mapstructure:"path"`
	Bucket  string        `yaml:"bucket" mapstructure:"bucket"`
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`
}

// ApplyDefaults fills unset fields.
func (c *Config) ApplyDefaults() {
	c.BaseConfig.ApplyDefaults()
	c.Logging.ApplyDefaults()
	c.Computer.ApplyDefaults()
	c.Memory.ApplyDefaults()
}

// Base returns the embedded base configuration.
func (c *Config) Base() *BaseConfig { return &c.BaseConfig }

// Validate checks struct tags first, then cross-field rules.
func (c *Config) Validate() error {
	if err := ValidateStruct(c); err != nil {
		return err
	}
	if err := c.Logging.Validate(); err != nil {
		return errors.InvalidInput("logging", err.Error())
	}
	return c.Memory.Validate()
}

// ApplyDefaults fills unset runner settings.
func (c *ComputerConfig) ApplyDefaults() {
	if c.Workers == 0 {
		c.Workers = runtime.NumCPU()
	}
	if c.ReduceBuckets == 0 {
		c.ReduceBuckets = 4
	}
}

// ApplyDefaults fills unset store settings.
func (c *MemoryConfig) ApplyDefaults() {
	if c.Backend == "" {
		c.Backend = BackendMemory
	}
	if c.Redis.Prefix == "" {
		c.Redis.Prefix = DefaultName + ":"
	}
	if c.Bolt.Path == "" {
		c.Bolt.Path = DefaultName + ".db"
	}
	if c.Bolt.Bucket == "" {
		c.Bolt.Bucket = "results"
	}
	if c.Bolt.Timeout == 0 {
		c.Bolt.Timeout = time.Second
	}
	if c.Retry.MaxAttempts == 0 {
		c.Retry.MaxAttempts = 3
	}
	if c.Retry.InitialBackoff == 0 {
		c.Retry.InitialBackoff = 100 * time.Millisecond
	}
	if c.Retry.MaxBackoff == 0 {
		c.Retry.MaxBackoff = 2 * time.Second
	}
}

// Validate checks the settings the selected backend needs.
func (c *MemoryConfig) Validate() error {
	switch c.Backend {
	case BackendMemory:
		return nil
	case BackendRedis:
		if c.Redis.Addr == "" {
			return errors.InvalidInput("memory.redis.addr", "memory.redis.addr is required for the redis backend")
		}
		return nil
	case BackendBolt:
		if c.Bolt.Path == "" || c.Bolt.Bucket == "" {
			return errors.InvalidInput("memory.bolt", "memory.bolt path and bucket are required for the bolt backend")
		}
		return nil
	default:
		return errors.InvalidInput("memory.backend", fmt.Sprintf("unknown backend %q", c.Backend))
	}
}
