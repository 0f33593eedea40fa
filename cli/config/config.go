package config

import (
	"fmt"
	"time"
)

// Config represents a kyc.yaml configuration file.
// All values are optional and act as defaults for kyc command flags.
// CLI flags always override config values.
type Config struct {
	BaseURL       string        `yaml:"base_url"`
	VerifyTimeout Duration      `yaml:"verify_timeout"`
	ProbeTimeout  Duration      `yaml:"probe_timeout"`
	PreviewDir    string        `yaml:"preview_dir"`
	History       HistoryConfig `yaml:"history"`
	Adapter       AdapterConfig `yaml:"adapter"`
}

// HistoryConfig holds history storage defaults from the config file.
// Path is a "bucket/prefix" shorthand for the S3 backend; explicit
// bucket/prefix keys take precedence when both are set.
type HistoryConfig struct {
	Backend     string `yaml:"backend"`
	Dir         string `yaml:"dir"`
	Path        string `yaml:"path"`
	Bucket      string `yaml:"bucket"`
	Prefix      string `yaml:"prefix"`
	Region      string `yaml:"region"`
	Endpoint    string `yaml:"endpoint"`
	S3PathStyle bool   `yaml:"s3_path_style"`
}

// AdapterConfig holds notification adapter defaults from the config file.
type AdapterConfig struct {
	Type    string            `yaml:"type"`
	URL     string            `yaml:"url"`
	Channel string            `yaml:"channel,omitempty"`
	Headers map[string]string `yaml:"headers,omitempty"`
	Timeout Duration          `yaml:"timeout,omitempty"`
	Retries *int              `yaml:"retries,omitempty"`
}

// Duration wraps time.Duration for YAML string parsing (e.g. "10s", "5m").
type Duration struct {
	time.Duration
}

// UnmarshalYAML parses a duration string like "10s" or "5m30s".
func (d *Duration) UnmarshalYAML(unmarshal func(any) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	if s == "" {
		return nil
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	d.Duration = parsed
	return nil
}
