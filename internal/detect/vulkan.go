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

// vulkanInstanceVersion matches lines such as
// "Vulkan Instance Version: 1.3.204".
var vulkanInstanceVersion = regexp.MustCompile(`Vulkan Instance Version:\s*(\d+(?:\.\d+)*)`)

// VulkanBackends runs the Vulkan info tool.
//
// A failed run yields nil. A successful run yields exactly one backend:
// versioned when the instance version line is present, unversioned
// otherwise, since the tool running at all means a loader is installed.
// CANCELLATION: Context enables timeout and cancellation
func (d *Detector) VulkanBackends(ctx context.Context) []backend.Backend {
	res, err := d.run(ctx, d.opts.VulkanInfoCommand)
	if err != nil {
		Logger().Debug("vulkaninfo probe failed", "command", d.opts.VulkanInfoCommand, "exit_code", res.ExitCode, "error", err)
		return nil
	}

	b := parseVulkanInfo(res.Stdout)
	Logger().Debug("vulkan runtime detected", "backend", b.Specifier())
	return []backend.Backend{b}
}

// parseVulkanInfo returns the backend for the first instance version line.
func parseVulkanInfo(output string) backend.Backend {
	for _, line := range strings.Split(output, "\n") {
		m := vulkanInstanceVersion.FindStringSubmatch(line)
		if m == nil {
			continue
		}

		parts := strings.Split(m[1], ".")
		major, err := strconv.Atoi(parts[0])
		if err != nil {
			continue
		}
		minor := 0
		if len(parts) > 1 {
			if minor, err = strconv.Atoi(parts[1]); err != nil {
				continue
			}
		}
		return backend.VulkanVersion(major, minor)
	}
	return backend.Vulkan()
}
