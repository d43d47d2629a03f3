// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package detect

import (
	"context"
	"regexp"
	"strconv"
	"strings"

	"github.com/jeranaias/cbdetect/internal/backend"
)

// DefaultHIPConfigCommand reports the HIP runtime version shipped with ROCm.
const DefaultHIPConfigCommand = "hipconfig"

// =============================================================================
// PERFORMANCE: Pre-compiled regex (compiled once at startup)
// =============================================================================

// hipVersion matches the leading "major.minor" of output such as
// "6.0.32830-d62f6a171". The third field is a build number, not a ROCm patch.
var hipVersion = regexp.MustCompile(`^(\d+)\.(\d+)`)

// =============================================================================
// ROCM PROBE
// =============================================================================

// ROCmBackends runs hipconfig and returns the ROCm release line it belongs
// to, without a patch. A failed run or unrecognised output yields nil.
// CANCELLATION: Context enables timeout and cancellation
func (d *Detector) ROCmBackends(ctx context.Context) []backend.Backend {
	res, err := d.run(ctx, d.opts.HIPConfigCommand, "--version")
	if err != nil {
		Logger().Debug("hipconfig probe failed", "command", d.opts.HIPConfigCommand, "exit_code", res.ExitCode, "error", err)
		return nil
	}

	b, ok := parseHIPVersion(res.Stdout)
	if !ok {
		Logger().Debug("hipconfig output not understood", "output", strings.TrimSpace(res.Stdout))
		return nil
	}
	Logger().Debug("rocm runtime detected", "backend", b.Specifier())
	return []backend.Backend{b}
}

// parseHIPVersion reads the version on the last non-empty line.
func parseHIPVersion(output string) (backend.Backend, bool) {
	lines := strings.Split(strings.TrimSpace(output), "\n")
	m := hipVersion.FindStringSubmatch(strings.TrimSpace(lines[len(lines)-1]))
	if m == nil {
		return backend.Backend{}, false
	}
	major, err := strconv.Atoi(m[1])
	if err != nil {
		return backend.Backend{}, false
	}
	minor, err := strconv.Atoi(m[2])
	if err != nil {
		return backend.Backend{}, false
	}
	return backend.ROCm(major, minor), true
}
