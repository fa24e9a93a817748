// Package config provides configuration loading and management for policytraits.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/c360studio/policytraits/trait"
)

// Config represents the complete policytraits configuration
type Config struct {
	LogLevel string         `yaml:"log_level" validate:"omitempty,oneof=debug info warn error"`
	Registry RegistryConfig `yaml:"registry"`
	Server   ServerConfig   `yaml:"server"`
	Policies []PolicyConfig `yaml:"policies,omitempty" validate:"dive"`
}

// RegistryConfig configures the trait registry
type RegistryConfig struct {
	// DefaultExecutionSpace is used when a policy names none (default: Serial)
	DefaultExecutionSpace string `yaml:"default_execution_space" validate:"required"`
	// NonConvertible lists categories whose explicit values conversions may not replace
	NonConvertible []string `yaml:"non_convertible,omitempty"`
}

// ServerConfig configures the HTTP resolve endpoint
type ServerConfig struct {
	// Listen is the address the server binds (default: localhost:8080)
	Listen string `yaml:"listen" validate:"required,hostname_port"`
	// ReadTimeout bounds how long a request body may take to arrive
	ReadTimeout time.Duration `yaml:"read_timeout"`
}

// PolicyConfig is a named list of traits
type PolicyConfig struct {
	Name   string        `yaml:"name" json:"name" validate:"required"`
	Traits []TraitConfig `yaml:"traits" json:"traits" validate:"dive"`
}

// TraitConfig is a single trait entry, e.g. {kind: schedule, value: dynamic}
type TraitConfig struct {
	Kind  string `yaml:"kind" json:"kind" validate:"required"`
	Value string `yaml:"value,omitempty" json:"value,omitempty"`
}

var validate = validator.New()

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		LogLevel: "info",
		Registry: RegistryConfig{
			DefaultExecutionSpace: trait.Serial.Name,
		},
		Server: ServerConfig{
			Listen:      "localhost:8080",
			ReadTimeout: 10 * time.Second,
		},
	}
}

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if _, err := trait.ParseExecutionSpace(c.Registry.DefaultExecutionSpace); err != nil {
		return fmt.Errorf("registry.default_execution_space: %w", err)
	}
	for _, name := range c.Registry.NonConvertible {
		if _, err := trait.ParseCategory(name); err != nil {
			return fmt.Errorf("registry.non_convertible: %w", err)
		}
	}
	seen := make(map[string]bool, len(c.Policies))
	for _, p := range c.Policies {
		if seen[p.Name] {
			return fmt.Errorf("policy %q defined more than once", p.Name)
		}
		seen[p.Name] = true
	}
	return nil
}

// NewRegistry builds the trait registry described by the registry section.
func (c *Config) NewRegistry() (*trait.Registry, error) {
	space, err := trait.ParseExecutionSpace(c.Registry.DefaultExecutionSpace)
	if err != nil {
		return nil, fmt.Errorf("registry.default_execution_space: %w", err)
	}

	cats := make([]trait.Category, 0, len(c.Registry.NonConvertible))
	for _, name := range c.Registry.NonConvertible {
		cat, err := trait.ParseCategory(name)
		if err != nil {
			return nil, fmt.Errorf("registry.non_convertible: %w", err)
		}
		cats = append(cats, cat)
	}

	return trait.NewRegistry(
		trait.WithDefaultExecutionSpace(space),
		trait.WithNonConvertible(cats...),
	), nil
}

// Policy returns the policy with the given name.
func (c *Config) Policy(name string) (PolicyConfig, bool) {
	for _, p := range c.Policies {
		if p.Name == name {
			return p, true
		}
	}
	return PolicyConfig{}, false
}

// Items converts the policy's trait entries to trait items.
func (p PolicyConfig) Items() []trait.Item {
	items := make([]trait.Item, 0, len(p.Traits))
	for _, t := range p.Traits {
		items = append(items, ParseTrait(t.Kind, t.Value))
	}
	return items
}

// LoadFromFile loads configuration from a YAML file
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// loadLayer reads a config file without defaults, so that merging it only
// overrides the fields the file sets.
func loadLayer(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	return &config, nil
}

// SaveToFile saves configuration to a YAML file
func (c *Config) SaveToFile(path string) error {
	// Ensure parent directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Merge merges another config into this one (other takes precedence for non-zero values).
// Policies are matched by name; a policy in other replaces one of the same name.
func (c *Config) Merge(other *Config) {
	if other == nil {
		return
	}

	if other.LogLevel != "" {
		c.LogLevel = other.LogLevel
	}

	// Registry
	if other.Registry.DefaultExecutionSpace != "" {
		c.Registry.DefaultExecutionSpace = other.Registry.DefaultExecutionSpace
	}
	if len(other.Registry.NonConvertible) > 0 {
		c.Registry.NonConvertible = other.Registry.NonConvertible
	}

	// Server
	if other.Server.Listen != "" {
		c.Server.Listen = other.Server.Listen
	}
	if other.Server.ReadTimeout != 0 {
		c.Server.ReadTimeout = other.Server.ReadTimeout
	}

	// Policies
	for _, p := range other.Policies {
		replaced := false
		for i := range c.Policies {
			if c.Policies[i].Name == p.Name {
				c.Policies[i] = p
				replaced = true
				break
			}
		}
		if !replaced {
			c.Policies = append(c.Policies, p)
		}
	}
}
