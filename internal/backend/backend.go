// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package backend

import (
	"strconv"
	"strings"
)

// =============================================================================
// KIND
// =============================================================================

// Kind is the backend family.
type Kind int

const (
	// KindCPU is plain CPU execution.
	KindCPU Kind = iota
	// KindCUDA is an NVIDIA CUDA toolkit version.
	KindCUDA
	// KindROCm is an AMD ROCm stack version.
	KindROCm
	// KindVulkan is a Vulkan runtime.
	KindVulkan
)

// String returns the display name of the kind.
func (k Kind) String() string {
	switch k {
	case KindCPU:
		return "CPU"
	case KindCUDA:
		return "CUDA"
	case KindROCm:
		return "ROCm"
	case KindVulkan:
		return "Vulkan"
	default:
		return "Unknown"
	}
}

// =============================================================================
// BACKEND
// =============================================================================

// Backend is a computation backend value.
//
// The zero value is the CPU backend. Values are immutable; build them with
// CPU, CUDA, ROCm, ROCmPatch, Vulkan, VulkanMajor, VulkanVersion or Parse.
type Backend struct {
	kind Kind

	major int
	minor int
	patch int

	hasMajor bool
	hasMinor bool
	hasPatch bool
}

// CPU returns the CPU backend.
func CPU() Backend {
	return Backend{kind: KindCPU}
}

// CUDA returns the CUDA backend for toolkit major.minor.
func CUDA(major, minor int) Backend {
	return Backend{kind: KindCUDA, major: major, minor: minor, hasMajor: true, hasMinor: true}
}

// ROCm returns the ROCm backend major.minor without a patch level.
func ROCm(major, minor int) Backend {
	return Backend{kind: KindROCm, major: major, minor: minor, hasMajor: true, hasMinor: true}
}

// ROCmPatch returns the ROCm backend major.minor.patch.
func ROCmPatch(major, minor, patch int) Backend {
	b := ROCm(major, minor)
	b.patch = patch
	b.hasPatch = true
	return b
}

// Vulkan returns a Vulkan backend with no version information.
func Vulkan() Backend {
	return Backend{kind: KindVulkan}
}

// VulkanMajor returns a Vulkan backend with only a major version.
func VulkanMajor(major int) Backend {
	return Backend{kind: KindVulkan, major: major, hasMajor: true}
}

// VulkanVersion returns the Vulkan backend major.minor.
func VulkanVersion(major, minor int) Backend {
	return Backend{kind: KindVulkan, major: major, minor: minor, hasMajor: true, hasMinor: true}
}

// Kind returns the backend family.
func (b Backend) Kind() Kind {
	return b.kind
}

// Major returns the major version and whether it is set.
func (b Backend) Major() (int, bool) {
	return b.major, b.hasMajor
}

// Minor returns the minor version and whether it is set.
func (b Backend) Minor() (int, bool) {
	return b.minor, b.hasMinor
}

// Patch returns the ROCm patch level and whether it is set.
func (b Backend) Patch() (int, bool) {
	return b.patch, b.hasPatch
}

// IsGPU reports whether b belongs to one of the GPU families.
func (b Backend) IsGPU() bool {
	return b.kind != KindCPU
}

// Specifier returns the canonical local specifier, e.g. "cu118" or "rocm5.4.2".
func (b Backend) Specifier() string {
	switch b.kind {
	case KindCUDA:
		return "cu" + strconv.Itoa(b.major) + strconv.Itoa(b.minor)
	case KindROCm:
		parts := []string{strconv.Itoa(b.major), strconv.Itoa(b.minor)}
		if b.hasPatch {
			parts = append(parts, strconv.Itoa(b.patch))
		}
		return "rocm" + strings.Join(parts, ".")
	case KindVulkan:
		if !b.hasMajor {
			return "vulkan"
		}
		if !b.hasMinor {
			return "vulkan" + strconv.Itoa(b.major)
		}
		return "vulkan" + strconv.Itoa(b.major) + "." + strconv.Itoa(b.minor)
	default:
		return "cpu"
	}
}

// String returns the local specifier.
func (b Backend) String() string {
	return b.Specifier()
}

// Equal reports whether a and other have the same local specifier.
func (b Backend) Equal(other Backend) bool {
	return b.Specifier() == other.Specifier()
}

// Matches reports whether s is exactly the local specifier of b.
// No normalization is applied; use Parse for user input.
func (b Backend) Matches(s string) bool {
	return b.Specifier() == s
}

// MarshalText implements encoding.TextMarshaler.
func (b Backend) MarshalText() ([]byte, error) {
	return []byte(b.Specifier()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler using Parse.
func (b *Backend) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*b = parsed
	return nil
}
