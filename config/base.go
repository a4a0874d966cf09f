package config

import (
	"fmt"
	"slices"

	"github.com/kbukum/graphkit/errors"
	"github.com/kbukum/graphkit/version"
)

// BaseConfig identifies the process running the engine.
type BaseConfig struct {
	Name        string `yaml:"name" mapstructure:"name" validate:"required"`
	Environment string `yaml:"environment" mapstructure:"environment" validate:"oneof=development staging production"`
	Version     string `yaml:"version" mapstructure:"version"`
	Debug       bool   `yaml:"debug" mapstructure:"debug"`
}

// ApplyDefaults fills the name, environment and version. Development turns
// debug on.
func (c *BaseConfig) ApplyDefaults() {
	if c.Name == "" {
		c.Name = DefaultName
	}
	if c.Environment == "" {
		c.Environment = "development"
	}
	if c.Version == "" {
		c.Version = version.Short()
	}
	if c.Environment == "development" {
		c.Debug = true
	}
}

var environments = []string{"development", "staging", "production"}

// Validate checks the name and environment.
func (c *BaseConfig) Validate() error {
	if c.Name == "" {
		return errors.InvalidInput("base.name", "base.name is required")
	}
	if !slices.Contains(environments, c.Environment) {
		return errors.InvalidInput("base.environment",
			fmt.Sprintf("base.environment must be one of %v (got: %s)", environments, c.Environment))
	}
	return nil
}
