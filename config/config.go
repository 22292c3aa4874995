// Package config provides configuration loading and management for caseforge.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/go-playground/validator"
	"gopkg.in/yaml.v3"
)

// Config represents the complete caseforge run configuration
type Config struct {
	// Input is the path or glob of the flat-record JSON array(s) to convert
	Input string `yaml:"input" validate:"required"`
	// Output is the path of the serialized graph
	Output string `yaml:"output" validate:"required"`
	// BatchSize is the number of mapped records per flush
	BatchSize int `yaml:"batch_size" validate:"gt=0"`
	// Mode selects the record schema for the whole run
	Mode string `yaml:"mode" validate:"oneof=file email"`
	// Format selects the output serialization
	Format string `yaml:"format" validate:"oneof=jsonld ntriples turtle"`
	// LogLevel is one of debug, info, warn, error
	LogLevel string `yaml:"log_level" validate:"oneof=debug info warn error"`

	Namespace    NamespaceConfig    `yaml:"namespace"`
	Relationship RelationshipConfig `yaml:"relationship"`
	NATS         NATSConfig         `yaml:"nats"`
	Metrics      MetricsConfig      `yaml:"metrics"`
	Tracing      TracingConfig      `yaml:"tracing"`
}

// NamespaceConfig configures the knowledge-base namespace of minted identifiers
type NamespaceConfig struct {
	Prefix string `yaml:"prefix" validate:"required"`
	IRI    string `yaml:"iri" validate:"required,url"`
}

// RelationshipConfig links every file observable to a container observable.
// Linking is off while ContainerID is empty.
type RelationshipConfig struct {
	ContainerID string `yaml:"container_id"`
	Kind        string `yaml:"kind" validate:"required"`
	RangeOffset int64  `yaml:"range_offset" validate:"gte=0"`
	RangeSize   int64  `yaml:"range_size" validate:"gte=0"`
}

// NATSConfig configures publishing of flushed batches
type NATSConfig struct {
	// URL is the NATS server URL (empty = do not publish)
	URL     string `yaml:"url" validate:"omitempty,url"`
	Subject string `yaml:"subject" validate:"required"`
}

// MetricsConfig configures the run metrics dump
type MetricsConfig struct {
	// Textfile is written in Prometheus text format after the run (empty = off)
	Textfile string `yaml:"textfile"`
}

// TracingConfig configures span export for a run
type TracingConfig struct {
	// File receives OpenTelemetry spans as JSON (empty = off)
	File string `yaml:"file"`
}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Output:    "case_output.jsonld",
		BatchSize: 1000,
		Mode:      "file",
		Format:    "jsonld",
		LogLevel:  "info",
		Namespace: NamespaceConfig{
			Prefix: "kb",
			IRI:    "http://example.org/kb/",
		},
		Relationship: RelationshipConfig{
			Kind: "Contained_Within",
		},
		NATS: NATSConfig{
			Subject: "case.graph.batch",
		},
	}
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("yaml"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return err
	}
	return fieldError(fieldErrs[0])
}

func fieldError(fe validator.FieldError) error {
	// Namespace is "Config.namespace.iri"; drop the struct name.
	_, field, _ := strings.Cut(fe.Namespace(), ".")

	switch fe.Tag() {
	case "required":
		return fmt.Errorf("%s is required", field)
	case "gt":
		return fmt.Errorf("%s must be greater than %s", field, fe.Param())
	case "gte":
		return fmt.Errorf("%s must not be negative", field)
	case "oneof":
		return fmt.Errorf("%s must be one of: %s", field, strings.ReplaceAll(fe.Param(), " ", ", "))
	case "url":
		return fmt.Errorf("%s must be a URL", field)
	default:
		return fmt.Errorf("%s failed %q validation", field, fe.Tag())
	}
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

// SaveToFile saves configuration to a YAML file
func (c *Config) SaveToFile(path string) error {
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

// Merge merges another config into this one (other takes precedence for non-zero values)
func (c *Config) Merge(other *Config) {
	if other == nil {
		return
	}

	if other.Input != "" {
		c.Input = other.Input
	}
	if other.Output != "" {
		c.Output = other.Output
	}
	if other.BatchSize != 0 {
		c.BatchSize = other.BatchSize
	}
	if other.Mode != "" {
		c.Mode = other.Mode
	}
	if other.Format != "" {
		c.Format = other.Format
	}
	if other.LogLevel != "" {
		c.LogLevel = other.LogLevel
	}

	// Namespace
	if other.Namespace.Prefix != "" {
		c.Namespace.Prefix = other.Namespace.Prefix
	}
	if other.Namespace.IRI != "" {
		c.Namespace.IRI = other.Namespace.IRI
	}

	// Relationship
	if other.Relationship.ContainerID != "" {
		c.Relationship.ContainerID = other.Relationship.ContainerID
	}
	if other.Relationship.Kind != "" {
		c.Relationship.Kind = other.Relationship.Kind
	}
	if other.Relationship.RangeOffset != 0 {
		c.Relationship.RangeOffset = other.Relationship.RangeOffset
	}
	if other.Relationship.RangeSize != 0 {
		c.Relationship.RangeSize = other.Relationship.RangeSize
	}

	// NATS
	if other.NATS.URL != "" {
		c.NATS.URL = other.NATS.URL
	}
	if other.NATS.Subject != "" {
		c.NATS.Subject = other.NATS.Subject
	}

	// Metrics
	if other.Metrics.Textfile != "" {
		c.Metrics.Textfile = other.Metrics.Textfile
	}

	// Tracing
	if other.Tracing.File != "" {
		c.Tracing.File = other.Tracing.File
	}
}
