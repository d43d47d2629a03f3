// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for cbdetect.
//
// Configuration is TOML, with built-in defaults, environment variable
// overrides and validation.
//
// # Key Types
//
//   - Config: Main configuration structure
//   - ProbesConfig: nvidia-smi and vulkaninfo commands, probe timeout
//   - DetectConfig: OS family override and explicit backend list
//   - LogConfig: diagnostic logging level and format
//
// # Configuration Precedence
//
// Configuration is loaded from (in order of precedence):
//   - Environment variables (CBDETECT_*)
//   - $CBDETECT_CONFIG or ~/.cbdetect/config.toml
//   - Built-in defaults
//
// # Usage
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	timeout := cfg.ProbeTimeout()
//
// Example file:
//
//	[probes]
//	nvidia_smi = ["/usr/bin/nvidia-smi"]
//	timeout_secs = 5
//
//	[detect]
//	backends = ["cu121"]
package config
