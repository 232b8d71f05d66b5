package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func validConfig() Config {
	return Config{
		HTTP: HTTPConfig{
			Port:    8080,
			Address: "0.0.0.0",
		},
		Audio: AudioConfig{
			TargetSampleRate:     44100,
			BitDepth:             16,
			MaxRecordingDuration: 70,
		},
		Prompts: PromptsConfig{
			BaseURL:           "http://localhost:9090/pages",
			Timeout:           10,
			PrefetchThreshold: 5,
		},
		Storage: StorageConfig{
			DatabasePath: "/var/lib/recordings/platform.db",
			ArtifactsDir: "/var/lib/recordings/artifacts",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
	}
}

func TestConfigValidation(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(*Config)
		expectError bool
		errorMsg    string
	}{
		{
			name:   "valid configuration",
			mutate: func(c *Config) {},
		},
		{
			name:        "invalid http port",
			mutate:      func(c *Config) { c.HTTP.Port = 0 },
			expectError: true,
			errorMsg:    "port must be between",
		},
		{
			name:        "empty http address",
			mutate:      func(c *Config) { c.HTTP.Address = "" },
			expectError: true,
			errorMsg:    "address cannot be empty",
		},
		{
			name:        "wrong target sample rate",
			mutate:      func(c *Config) { c.Audio.TargetSampleRate = 48000 },
			expectError: true,
			errorMsg:    "target_sample_rate must be 44100",
		},
		{
			name:        "unsupported bit depth",
			mutate:      func(c *Config) { c.Audio.BitDepth = 24 },
			expectError: true,
			errorMsg:    "bit_depth must be 8 or 16",
		},
		{
			name:        "zero recording duration",
			mutate:      func(c *Config) { c.Audio.MaxRecordingDuration = 0 },
			expectError: true,
			errorMsg:    "max_recording_duration",
		},
		{
			name:        "empty prompts base url",
			mutate:      func(c *Config) { c.Prompts.BaseURL = "" },
			expectError: true,
			errorMsg:    "base_url cannot be empty",
		},
		{
			name:        "negative prefetch threshold",
			mutate:      func(c *Config) { c.Prompts.PrefetchThreshold = -1 },
			expectError: true,
			errorMsg:    "prefetch_threshold cannot be negative",
		},
		{
			name:        "empty database path",
			mutate:      func(c *Config) { c.Storage.DatabasePath = "" },
			expectError: true,
			errorMsg:    "database_path cannot be empty",
		},
		{
			name:        "empty artifacts dir",
			mutate:      func(c *Config) { c.Storage.ArtifactsDir = "" },
			expectError: true,
			errorMsg:    "artifacts_dir cannot be empty",
		},
		{
			name:        "invalid log level",
			mutate:      func(c *Config) { c.Logging.Level = "verbose" },
			expectError: true,
			errorMsg:    "level must be one of",
		},
		{
			name:        "invalid log format",
			mutate:      func(c *Config) { c.Logging.Format = "xml" },
			expectError: true,
			errorMsg:    "format must be",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := validConfig()
			tt.mutate(&config)

			err := config.Validate()
			if tt.expectError {
				if err == nil {
					t.Fatal("Expected validation error, got none")
				}
				if tt.errorMsg != "" && !strings.Contains(err.Error(), tt.errorMsg) {
					t.Errorf("Expected error containing %q, got %q", tt.errorMsg, err.Error())
				}
			} else if err != nil {
				t.Fatalf("Unexpected validation error: %v", err)
			}
		})
	}
}

func TestLoadFromFile(t *testing.T) {
	content := `
http:
  port: 8080
  address: "127.0.0.1"
audio:
  target_sample_rate: 44100
  bit_depth: 16
  max_recording_duration: 70
prompts:
  base_url: "http://localhost:9090/pages"
  timeout: 10
  prefetch_threshold: 5
storage:
  database_path: "/tmp/platform.db"
  artifacts_dir: "/tmp/artifacts"
logging:
  level: "debug"
  format: "text"
  output: "stderr"
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	config, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if config.HTTP.Port != 8080 {
		t.Errorf("Expected port 8080, got %d", config.HTTP.Port)
	}
	if config.Audio.GetMaxRecordingDuration() != 70*time.Second {
		t.Errorf("Expected 70s max duration, got %v", config.Audio.GetMaxRecordingDuration())
	}
	if config.Prompts.GetTimeoutDuration() != 10*time.Second {
		t.Errorf("Expected 10s prompts timeout, got %v", config.Prompts.GetTimeoutDuration())
	}
	if config.Logging.Level != "debug" {
		t.Errorf("Expected debug level, got %s", config.Logging.Level)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load("/nonexistent/config.yaml")
	if err == nil {
		t.Fatal("Expected error for missing config file")
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("http: [not a map"), 0o644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	_, err := Load(path)
	if err == nil {
		t.Fatal("Expected error for malformed YAML")
	}
}
