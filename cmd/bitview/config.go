package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds defaults that flags may override.
type Config struct {
	// Format names the layout used to decode input (see formats).
	Format string `yaml:"format"`

	// Output is "text" or "cbor".
	Output string `yaml:"output"`

	// Compression is "auto", "none", "zstd" or "lz4".
	Compression string `yaml:"compression"`

	// Color is "auto", "always" or "never". Auto colors only terminals.
	Color string `yaml:"color"`
}

func DefaultConfig() *Config {
	return &Config{
		Format:      "classfile",
		Output:      "text",
		Compression: "auto",
		Color:       "auto",
	}
}

// LoadConfig reads a YAML file over the defaults.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if _, ok := formats[c.Format]; !ok {
		return fmt.Errorf("unknown format %q (known: %s)", c.Format, formatNames())
	}
	if !contains([]string{"text", "cbor"}, c.Output) {
		return fmt.Errorf("unknown output %q", c.Output)
	}
	if !contains([]string{"auto", "none", "zstd", "lz4"}, c.Compression) {
		return fmt.Errorf("unknown compression %q", c.Compression)
	}
	if !contains([]string{"auto", "always", "never"}, c.Color) {
		return fmt.Errorf("unknown color mode %q", c.Color)
	}
	return nil
}

func contains(slice []string, s string) bool {
	for _, v := range slice {
		if v == s {
			return true
		}
	}
	return false
}
