package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Defaults used for any key the file leaves out.
const (
	DefaultURL         = "ldap://localhost:389"
	DefaultTimeoutSec  = 10
	DefaultConcurrency = 4
)

// FileConfig represents the top-level dsmon.yaml structure.
type FileConfig struct {
	Server      ServerConfig `yaml:"server"`
	AgeIdentity string       `yaml:"age_identity,omitempty"`
	Report      ReportConfig `yaml:"report"`
}

// ServerConfig describes how to reach the directory server.
type ServerConfig struct {
	URL                string `yaml:"url"`
	BindDN             string `yaml:"bind_dn,omitempty"`
	BindPasswordFile   string `yaml:"bind_password_file,omitempty"` // age-encrypted when age_identity is set
	StartTLS           bool   `yaml:"start_tls"`
	InsecureSkipVerify bool   `yaml:"insecure_skip_verify"`
	TimeoutSec         int    `yaml:"timeout_sec"`
}

// Timeout returns the per-operation network timeout.
func (s ServerConfig) Timeout() time.Duration {
	return time.Duration(s.TimeoutSec) * time.Second
}

// ReportConfig tunes report generation.
type ReportConfig struct {
	Concurrency int `yaml:"concurrency"` // parallel backend queries
}

// Default returns the configuration used when no file is present.
func Default() *FileConfig {
	return &FileConfig{
		Server: ServerConfig{
			URL:        DefaultURL,
			TimeoutSec: DefaultTimeoutSec,
		},
		Report: ReportConfig{Concurrency: DefaultConcurrency},
	}
}

// LoadFile reads, parses, and validates a YAML config file. A missing file
// is reported with an error wrapping os.ErrNotExist.
func LoadFile(path string) (*FileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}
	return Parse(data)
}

// Parse parses and validates YAML config data on top of Default.
func Parse(data []byte) (*FileConfig, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
