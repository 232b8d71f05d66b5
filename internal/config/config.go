package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the complete service configuration
type Config struct {
	HTTP    HTTPConfig    `yaml:"http"`
	Audio   AudioConfig   `yaml:"audio"`
	Prompts PromptsConfig `yaml:"prompts"`
	Storage StorageConfig `yaml:"storage"`
	Logging LoggingConfig `yaml:"logging"`
}

// HTTPConfig contains HTTP API server configuration
type HTTPConfig struct {
	Port    int    `yaml:"port"`
	Address string `yaml:"address"`
}

// AudioConfig contains capture and normalization parameters
type AudioConfig struct {
	TargetSampleRate     int    `yaml:"target_sample_rate"`
	BitDepth             int    `yaml:"bit_depth"`
	MaxRecordingDuration int    `yaml:"max_recording_duration"` // seconds
	FFmpegTempDir        string `yaml:"ffmpeg_temp_dir"`
}

// PromptsConfig contains paragraph source configuration
type PromptsConfig struct {
	BaseURL           string `yaml:"base_url"`
	Timeout           int    `yaml:"timeout"` // seconds
	PrefetchThreshold int    `yaml:"prefetch_threshold"`
}

// StorageConfig contains persistence configuration
type StorageConfig struct {
	DatabasePath string `yaml:"database_path"`
	ArtifactsDir string `yaml:"artifacts_dir"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// Load reads and parses the configuration file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

// Validate performs comprehensive validation of the configuration
func (c *Config) Validate() error {
	if err := c.HTTP.Validate(); err != nil {
		return fmt.Errorf("http config: %w", err)
	}

	if err := c.Audio.Validate(); err != nil {
		return fmt.Errorf("audio config: %w", err)
	}

	if err := c.Prompts.Validate(); err != nil {
		return fmt.Errorf("prompts config: %w", err)
	}

	if err := c.Storage.Validate(); err != nil {
		return fmt.Errorf("storage config: %w", err)
	}

	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging config: %w", err)
	}

	return nil
}

// Validate validates HTTP configuration
func (h *HTTPConfig) Validate() error {
	if h.Port < 1 || h.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", h.Port)
	}

	if h.Address == "" {
		return fmt.Errorf("address cannot be empty")
	}

	return nil
}

// Validate validates audio configuration
func (a *AudioConfig) Validate() error {
	if a.TargetSampleRate != 44100 {
		return fmt.Errorf("target_sample_rate must be 44100 Hz for the corpus format, got %d", a.TargetSampleRate)
	}

	if a.BitDepth != 8 && a.BitDepth != 16 {
		return fmt.Errorf("bit_depth must be 8 or 16, got %d", a.BitDepth)
	}

	if a.MaxRecordingDuration < 1 {
		return fmt.Errorf("max_recording_duration must be at least 1 second, got %d", a.MaxRecordingDuration)
	}

	return nil
}

// Validate validates prompts configuration
func (p *PromptsConfig) Validate() error {
	if p.BaseURL == "" {
		return fmt.Errorf("base_url cannot be empty")
	}

	if p.Timeout < 1 {
		return fmt.Errorf("timeout must be at least 1 second, got %d", p.Timeout)
	}

	if p.PrefetchThreshold < 0 {
		return fmt.Errorf("prefetch_threshold cannot be negative, got %d", p.PrefetchThreshold)
	}

	return nil
}

// Validate validates storage configuration
func (s *StorageConfig) Validate() error {
	if s.DatabasePath == "" {
		return fmt.Errorf("database_path cannot be empty")
	}

	if s.ArtifactsDir == "" {
		return fmt.Errorf("artifacts_dir cannot be empty")
	}

	return nil
}

// Validate validates logging configuration
func (l *LoggingConfig) Validate() error {
	validLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLevels[l.Level] {
		return fmt.Errorf("level must be one of [debug, info, warn, error], got '%s'", l.Level)
	}

	validFormats := map[string]bool{"json": true, "text": true}
	if !validFormats[l.Format] {
		return fmt.Errorf("format must be 'json' or 'text', got '%s'", l.Format)
	}

	return nil
}

// GetMaxRecordingDuration returns the capture ceiling as a time.Duration
func (a *AudioConfig) GetMaxRecordingDuration() time.Duration {
	return time.Duration(a.MaxRecordingDuration) * time.Second
}

// GetTimeoutDuration returns the paragraph source timeout as a time.Duration
func (p *PromptsConfig) GetTimeoutDuration() time.Duration {
	return time.Duration(p.Timeout) * time.Second
}
