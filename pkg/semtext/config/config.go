package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/cognicore/semtext/pkg/semtext/internalerr"
)

// Mapper kinds.
const (
	MapperPrefix = "prefix"
	MapperClient = "client"
)

// Config represents the semtext configuration file
type Config struct {
	Mapper   Mapper `yaml:"mapper"`
	Reviewed bool   `yaml:"reviewed"`
	Store    Store  `yaml:"store"`
	Index    Index  `yaml:"index"`
}

// Mapper selects and configures the id mapper.
// Kind "prefix" uses EntityPrefix and ConceptPrefix, kind "client" uses BaseURL.
type Mapper struct {
	Kind          string `yaml:"kind"`
	EntityPrefix  string `yaml:"entity_prefix"`
	ConceptPrefix string `yaml:"concept_prefix"`
	BaseURL       string `yaml:"base_url"`
}

// Store configures where semantic strings are persisted
type Store struct {
	Path string `yaml:"path"`
}

// Index configures the search index
type Index struct {
	MaxResults int `yaml:"max_results"`
}

// Default returns the configuration used when no file is given
func Default() *Config {
	return &Config{
		Mapper: Mapper{Kind: MapperPrefix},
		Index:  Index{MaxResults: 20},
	}
}

// Load loads the configuration from a YAML file. Missing fields keep
// their default values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse decodes and validates a YAML configuration
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", internalerr.ErrInvalidConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that the configuration is usable
func (c *Config) Validate() error {
	switch c.Mapper.Kind {
	case "", MapperPrefix:
		if c.Mapper.BaseURL != "" {
			return fmt.Errorf("%w: base_url needs mapper kind %q", internalerr.ErrInvalidConfig, MapperClient)
		}
	case MapperClient:
		if c.Mapper.EntityPrefix != "" || c.Mapper.ConceptPrefix != "" {
			return fmt.Errorf("%w: prefixes need mapper kind %q", internalerr.ErrInvalidConfig, MapperPrefix)
		}
	default:
		return fmt.Errorf("%w: unknown mapper kind %q", internalerr.ErrInvalidConfig, c.Mapper.Kind)
	}
	if c.Index.MaxResults < 0 {
		return fmt.Errorf("%w: index max_results must not be negative", internalerr.ErrInvalidConfig)
	}
	return nil
}
