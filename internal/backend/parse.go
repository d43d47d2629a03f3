// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package backend

import (
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// =============================================================================
// PERFORMANCE: Pre-compiled regex (compiled once at startup)
// =============================================================================

var (
	cudaPattern   = regexp.MustCompile(`^cu(?:da)?([\d.]+)$`)
	vulkanPattern = regexp.MustCompile(`^(?:vulkan|vk)([\d.]+)?$`)
	rocmPattern   = regexp.MustCompile(`^rocm([\d.]+)$`)
)

// Parse parses a backend identifier.
//
// Input is NFKC-normalized, trimmed and lowercased first, so full-width
// forms such as "ｃｕ１１８" parse like their ASCII counterparts.
// Accepted forms:
//
//	cpu
//	cu<digits>, cuda<digits>, cuda<major>.<minor>
//	rocm<major>.<minor>[.<patch>]
//	vulkan[<major>[.<minor>]], vk[<major>[.<minor>]]
//
// For the undotted CUDA form the last digit is the minor version, so cu118
// is CUDA 11.8. Anything else yields a *ParseError naming the input.
func Parse(s string) (Backend, error) {
	perr := &ParseError{Input: s}
	spec := strings.ToLower(strings.TrimSpace(norm.NFKC.String(s)))

	switch {
	case spec == "cpu":
		return CPU(), nil
	case strings.HasPrefix(spec, "cu"):
		b, ok := parseCUDA(spec)
		if !ok {
			return Backend{}, perr
		}
		return b, nil
	case strings.HasPrefix(spec, "vulkan"), strings.HasPrefix(spec, "vk"):
		b, ok := parseVulkan(spec)
		if !ok {
			return Backend{}, perr
		}
		return b, nil
	case strings.HasPrefix(spec, "rocm"):
		b, ok := parseROCm(spec)
		if !ok {
			return Backend{}, perr
		}
		return b, nil
	default:
		return Backend{}, perr
	}
}

// MustParse is like Parse but panics on error.
func MustParse(s string) Backend {
	b, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return b
}

func parseCUDA(s string) (Backend, bool) {
	m := cudaPattern.FindStringSubmatch(s)
	if m == nil {
		return Backend{}, false
	}
	version := m[1]

	var majorText, minorText string
	if strings.Contains(version, ".") {
		parts := strings.Split(version, ".")
		if len(parts) != 2 {
			return Backend{}, false
		}
		majorText, minorText = parts[0], parts[1]
	} else {
		majorText, minorText = version[:len(version)-1], version[len(version)-1:]
	}

	major, ok := atoi(majorText)
	if !ok {
		return Backend{}, false
	}
	minor, ok := atoi(minorText)
	if !ok {
		return Backend{}, false
	}
	return CUDA(major, minor), true
}

func parseVulkan(s string) (Backend, bool) {
	m := vulkanPattern.FindStringSubmatch(s)
	if m == nil {
		return Backend{}, false
	}
	version := m[1]
	if version == "" {
		return Vulkan(), true
	}

	// Only the first two components matter; vulkan1.3.250 is vulkan1.3.
	parts := strings.Split(version, ".")
	major, ok := atoi(parts[0])
	if !ok {
		return Backend{}, false
	}
	minor := 0
	if len(parts) > 1 {
		if minor, ok = atoi(parts[1]); !ok {
			return Backend{}, false
		}
	}
	return VulkanVersion(major, minor), true
}

func parseROCm(s string) (Backend, bool) {
	m := rocmPattern.FindStringSubmatch(s)
	if m == nil {
		return Backend{}, false
	}

	parts := strings.Split(m[1], ".")
	if len(parts) != 2 && len(parts) != 3 {
		return Backend{}, false
	}

	nums := make([]int, len(parts))
	for i, p := range parts {
		n, ok := atoi(p)
		if !ok {
			return Backend{}, false
		}
		nums[i] = n
	}

	if len(nums) == 3 {
		return ROCmPatch(nums[0], nums[1], nums[2]), true
	}
	return ROCm(nums[0], nums[1]), true
}

// atoi accepts only non-empty runs of ASCII digits that fit in an int.
func atoi(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}
