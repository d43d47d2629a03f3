// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for cbdetect.
//
// Configuration file location (in order of precedence):
//   - $CBDETECT_CONFIG
//   - ~/.cbdetect/config.toml
//   - Built-in defaults
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/jeranaias/cbdetect/internal/backend"
	"github.com/jeranaias/cbdetect/internal/util"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete cbdetect configuration.
type Config struct {
	// Probe commands and limits
	Probes ProbesConfig `toml:"probes" json:"probes"`

	// Detection behaviour
	Detect DetectConfig `toml:"detect" json:"detect"`

	// Logging
	Log LogConfig `toml:"log" json:"log"`
}

// ProbesConfig configures the external probe commands.
type ProbesConfig struct {
	// NvidiaSmi lists nvidia-smi locations to try in order.
	// Empty uses the platform defaults.
	NvidiaSmi []string `toml:"nvidia_smi" json:"nvidia_smi"`
	// VulkanInfo is the Vulkan diagnostics command.
	VulkanInfo string `toml:"vulkaninfo" json:"vulkaninfo"`
	// TimeoutSecs bounds each probe. Valid range: 1-300.
	TimeoutSecs int `toml:"timeout_secs" json:"timeout_secs"`
	// SkipCUDA disables the NVIDIA driver probe.
	SkipCUDA bool `toml:"skip_cuda" json:"skip_cuda"`
	// SkipVulkan disables the Vulkan probe.
	SkipVulkan bool `toml:"skip_vulkan" json:"skip_vulkan"`
	// ROCm enables the hipconfig probe.
	ROCm bool `toml:"rocm" json:"rocm"`
	// HIPConfig is the ROCm probe command.
	HIPConfig string `toml:"hipconfig" json:"hipconfig"`
}

// DetectConfig configures detection.
type DetectConfig struct {
	// OSFamily overrides the host OS family used for the driver table
	// (e.g. "Linux", "Windows"). Empty means the running system.
	OSFamily string `toml:"os_family" json:"os_family"`
	// Backends, when non-empty, replaces detection with this explicit list.
	// CPU is always added.
	Backends []string `toml:"backends" json:"backends"`
}

// LogConfig configures diagnostic logging on stderr.
type LogConfig struct {
	// Level is one of: debug, info, warn, error
	Level string `toml:"level" json:"level"`
	// Format is one of: text, json
	Format string `toml:"format" json:"format"`
}

// =============================================================================
// DEFAULT CONFIGURATION
// =============================================================================

const (
	defaultTimeoutSecs = 10
	minTimeoutSecs     = 1
	maxTimeoutSecs     = 300
)

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Probes: ProbesConfig{
			VulkanInfo:  "vulkaninfo",
			HIPConfig:   "hipconfig",
			TimeoutSecs: defaultTimeoutSecs,
		},
		Log: LogConfig{
			Level:  "warn",
			Format: "text",
		},
	}
}

// SetDefaults sets default values for any missing or zero-value fields.
func (c *Config) SetDefaults() {
	defaults := Default()

	if c.Probes.VulkanInfo == "" {
		c.Probes.VulkanInfo = defaults.Probes.VulkanInfo
	}
	if c.Probes.HIPConfig == "" {
		c.Probes.HIPConfig = defaults.Probes.HIPConfig
	}
	if c.Probes.TimeoutSecs == 0 {
		c.Probes.TimeoutSecs = defaults.Probes.TimeoutSecs
	}
	if c.Log.Level == "" {
		c.Log.Level = defaults.Log.Level
	}
	if c.Log.Format == "" {
		c.Log.Format = defaults.Log.Format
	}
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// ConfigDir returns the cbdetect configuration directory path.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".cbdetect"), nil
}

// ConfigPath returns the config file path, honouring CBDETECT_CONFIG.
func ConfigPath() (string, error) {
	if p := os.Getenv("CBDETECT_CONFIG"); p != "" {
		return p, nil
	}
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// Load loads configuration from the default path, falling back to defaults
// when no file exists. Environment overrides are applied last.
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return finish(Default())
	}
	if _, statErr := os.Stat(path); errors.Is(statErr, os.ErrNotExist) {
		return finish(Default())
	}
	return LoadFromPath(path)
}

// LoadFromPath loads configuration from a specific TOML file with full validation.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()
	if err := LoadTOML(cfg, path); err != nil {
		return nil, fmt.Errorf("failed to load config from %s: %w", path, err)
	}
	return finish(cfg)
}

// LoadTOML decodes a TOML file over cfg. Keys absent from the file keep
// their current values.
func LoadTOML(cfg *Config, path string) error {
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return fmt.Errorf("failed to decode TOML file: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return fmt.Errorf("unknown config keys: %s", strings.Join(keys, ", "))
	}
	return nil
}

func finish(cfg *Config) (*Config, error) {
	cfg.ApplyEnvOverrides()
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// =============================================================================
// SAVE FUNCTIONS
// =============================================================================

// Save saves the configuration to the default path.
func Save(cfg *Config) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	return SaveTOML(cfg, path)
}

// SaveTOML writes the configuration as TOML, replacing the file atomically.
func SaveTOML(cfg *Config, path string) error {
	var buf bytes.Buffer
	fmt.Fprintln(&buf, "# cbdetect configuration file")
	fmt.Fprintln(&buf, "# Generated by cbdetect - edit with care")
	fmt.Fprintln(&buf, "")

	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := util.AtomicWriteFileWithDir(path, buf.Bytes(), 0600, 0700); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e ValidationError) Unwrap() error {
	return e.Err
}

// ValidateErrors is a collection of validation errors.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	var msgs []string
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// Unwrap exposes the individual errors to errors.Is and errors.As.
func (e ValidateErrors) Unwrap() []error {
	errs := make([]error, len(e))
	for i := range e {
		errs[i] = e[i]
	}
	return errs
}

var (
	validLogLevels  = []string{"debug", "info", "warn", "error"}
	validLogFormats = []string{"text", "json"}
)

// Validate validates the configuration and returns any errors.
func (c *Config) Validate() error {
	var errs ValidateErrors

	if c.Probes.TimeoutSecs < minTimeoutSecs || c.Probes.TimeoutSecs > maxTimeoutSecs {
		errs = append(errs, ValidationError{
			Field:   "probes.timeout_secs",
			Message: fmt.Sprintf("must be between %d and %d, got %d", minTimeoutSecs, maxTimeoutSecs, c.Probes.TimeoutSecs),
		})
	}
	for i, p := range c.Probes.NvidiaSmi {
		if strings.TrimSpace(p) == "" {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("probes.nvidia_smi[%d]", i),
				Message: "path must not be empty",
			})
		}
	}

	for i, spec := range c.Detect.Backends {
		if _, err := backend.Parse(spec); err != nil {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("detect.backends[%d]", i),
				Message: err.Error(),
				Err:     err,
			})
		}
	}

	if !slices.Contains(validLogLevels, strings.ToLower(c.Log.Level)) {
		errs = append(errs, ValidationError{
			Field:   "log.level",
			Message: fmt.Sprintf("invalid level '%s', must be one of: %s", c.Log.Level, strings.Join(validLogLevels, ", ")),
		})
	}
	if !slices.Contains(validLogFormats, strings.ToLower(c.Log.Format)) {
		errs = append(errs, ValidationError{
			Field:   "log.format",
			Message: fmt.Sprintf("invalid format '%s', must be one of: %s", c.Log.Format, strings.Join(validLogFormats, ", ")),
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies environment variable overrides to the config.
//
// Supported environment variables:
//   - CBDETECT_NVIDIA_SMI: comma-separated nvidia-smi paths
//   - CBDETECT_VULKANINFO: overrides probes.vulkaninfo
//   - CBDETECT_TIMEOUT: overrides probes.timeout_secs (ignored if not an integer)
//   - CBDETECT_SKIP_CUDA, CBDETECT_SKIP_VULKAN: "1" or "true" to skip a probe
//   - CBDETECT_ROCM: "1" or "true" to enable the ROCm probe
//   - CBDETECT_HIPCONFIG: overrides probes.hipconfig
//   - CBDETECT_OS_FAMILY: overrides detect.os_family
//   - CBDETECT_BACKENDS: comma-separated explicit backends
//   - CBDETECT_LOG_LEVEL: overrides log.level
func (c *Config) ApplyEnvOverrides() {
	if paths := os.Getenv("CBDETECT_NVIDIA_SMI"); paths != "" {
		c.Probes.NvidiaSmi = splitList(paths)
	}
	if cmd := os.Getenv("CBDETECT_VULKANINFO"); cmd != "" {
		c.Probes.VulkanInfo = cmd
	}
	if timeout := os.Getenv("CBDETECT_TIMEOUT"); timeout != "" {
		if secs, err := strconv.Atoi(strings.TrimSpace(timeout)); err == nil {
			c.Probes.TimeoutSecs = secs
		}
	}
	if skip := os.Getenv("CBDETECT_SKIP_CUDA"); skip != "" {
		c.Probes.SkipCUDA = envBool(skip)
	}
	if skip := os.Getenv("CBDETECT_SKIP_VULKAN"); skip != "" {
		c.Probes.SkipVulkan = envBool(skip)
	}
	if rocm := os.Getenv("CBDETECT_ROCM"); rocm != "" {
		c.Probes.ROCm = envBool(rocm)
	}
	if cmd := os.Getenv("CBDETECT_HIPCONFIG"); cmd != "" {
		c.Probes.HIPConfig = cmd
	}
	if family := os.Getenv("CBDETECT_OS_FAMILY"); family != "" {
		c.Detect.OSFamily = family
	}
	if backends := os.Getenv("CBDETECT_BACKENDS"); backends != "" {
		c.Detect.Backends = splitList(backends)
	}
	if level := os.Getenv("CBDETECT_LOG_LEVEL"); level != "" {
		c.Log.Level = level
	}
}

func envBool(v string) bool {
	return v == "1" || strings.EqualFold(v, "true")
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// =============================================================================
// ACCESSORS
// =============================================================================

// ProbeTimeout returns the per-probe timeout.
func (c *Config) ProbeTimeout() time.Duration {
	return time.Duration(c.Probes.TimeoutSecs) * time.Second
}

// OverrideBackends parses detect.backends. It returns nil when detection
// should run normally.
func (c *Config) OverrideBackends() ([]backend.Backend, error) {
	if len(c.Detect.Backends) == 0 {
		return nil, nil
	}
	return backend.ParseAll(c.Detect.Backends)
}

// Clone returns a deep copy of the config.
func (c *Config) Clone() *Config {
	clone := *c
	clone.Probes.NvidiaSmi = slices.Clone(c.Probes.NvidiaSmi)
	clone.Detect.Backends = slices.Clone(c.Detect.Backends)
	return &clone
}
