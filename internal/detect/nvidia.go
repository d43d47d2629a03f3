// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package detect

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/hashicorp/go-version"

	"github.com/jeranaias/cbdetect/internal/backend"
)

// =============================================================================
// NVIDIA DRIVER PROBE
// =============================================================================

// nvidiaDriverQuery asks nvidia-smi for the driver version only. The output
// is a "driver_version" header followed by one line per GPU.
var nvidiaDriverQuery = []string{"--query-gpu=driver_version", "--format=csv"}

// defaultNvidiaSmiPaths returns the nvidia-smi locations to try for family.
func defaultNvidiaSmiPaths(family OSFamily) []string {
	if family == OSWindows {
		return []string{
			"nvidia-smi",
			`C:\Windows\System32\nvidia-smi.exe`,
			`C:\Program Files\NVIDIA Corporation\NVSMI\nvidia-smi.exe`,
		}
	}
	return []string{"nvidia-smi"}
}

// DriverVersion queries the installed NVIDIA driver version.
//
// Candidate nvidia-smi paths are tried in order until one runs. ok is false
// when no candidate runs or the output holds no version.
// CANCELLATION: Context enables timeout and cancellation
func (d *Detector) DriverVersion(ctx context.Context) (v *version.Version, ok bool) {
	log := Logger()

	for _, path := range d.opts.NvidiaSmiPaths {
		res, err := d.run(ctx, path, nvidiaDriverQuery...)
		if err != nil {
			log.Debug("nvidia-smi probe failed", "path", path, "exit_code", res.ExitCode, "error", err)
			if ctx.Err() != nil {
				return nil, false
			}
			continue
		}

		driver, err := parseDriverVersion(res.Stdout)
		if err != nil {
			log.Debug("nvidia-smi output not understood", "path", path, "error", err)
			return nil, false
		}
		log.Debug("nvidia driver detected", "path", path, "version", driver.Original())
		return driver, true
	}

	return nil, false
}

// parseDriverVersion reads the dotted version on the last non-empty line.
func parseDriverVersion(stdout string) (*version.Version, error) {
	stdout = strings.TrimSpace(stdout)
	if stdout == "" {
		return nil, errors.New("empty driver query output")
	}
	lines := strings.Split(stdout, "\n")
	last := strings.TrimSpace(lines[len(lines)-1])

	v, err := version.NewVersion(last)
	if err != nil {
		return nil, fmt.Errorf("invalid driver version %q: %w", last, err)
	}
	return v, nil
}

// =============================================================================
// CUDA COMPATIBILITY
// =============================================================================

// CompatibleCUDABackends returns every CUDA backend whose minimum driver
// version for family is at most driver, newest first. Families without a
// driver table yield nil.
func CompatibleCUDABackends(driver *version.Version, family OSFamily) []backend.Backend {
	if driver == nil {
		return nil
	}
	reqs, ok := minimumDriverVersions[family]
	if !ok {
		return nil
	}

	var out []backend.Backend
	for _, req := range reqs {
		minimum, err := version.NewVersion(req.MinDriver)
		if err != nil {
			continue
		}
		if driver.GreaterThanOrEqual(minimum) {
			out = append(out, req.Backend())
		}
	}
	return out
}

// CUDABackends returns the CUDA backends the installed driver supports.
// CANCELLATION: Context enables timeout and cancellation
func (d *Detector) CUDABackends(ctx context.Context) []backend.Backend {
	_, backends := d.detectCUDA(ctx)
	return backends
}

func (d *Detector) detectCUDA(ctx context.Context) (string, []backend.Backend) {
	driver, ok := d.DriverVersion(ctx)
	if !ok {
		return "", nil
	}
	if _, ok := minimumDriverVersions[d.opts.OSFamily]; !ok {
		Logger().Debug("no driver table for os family", "os_family", d.opts.OSFamily)
		return driver.Original(), nil
	}
	return driver.Original(), CompatibleCUDABackends(driver, d.opts.OSFamily)
}
