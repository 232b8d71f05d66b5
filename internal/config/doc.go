// Package config provides configuration loading and validation for the
// recording platform. It handles YAML-based configuration with per-section
// struct validation.
package config
