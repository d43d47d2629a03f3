// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package detect

import (
	"runtime"
	"slices"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/jeranaias/cbdetect/internal/backend"
)

// =============================================================================
// OS FAMILY
// =============================================================================

// OSFamily is an operating system family name such as "Linux" or "Windows".
type OSFamily string

const (
	OSLinux   OSFamily = "Linux"
	OSWindows OSFamily = "Windows"
	OSDarwin  OSFamily = "Darwin"
)

// knownFamilies maps lowercase names (GOOS values included) to their
// canonical spelling where plain title-casing gets it wrong.
var knownFamilies = map[string]OSFamily{
	"darwin":    OSDarwin,
	"macos":     OSDarwin,
	"freebsd":   "FreeBSD",
	"netbsd":    "NetBSD",
	"openbsd":   "OpenBSD",
	"dragonfly": "DragonFly",
	"solaris":   "SunOS",
	"sunos":     "SunOS",
	"aix":       "AIX",
}

// ParseOSFamily normalizes a user- or runtime-supplied OS name.
// "linux", "LINUX" and "Linux" all become OSLinux.
func ParseOSFamily(name string) OSFamily {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return ""
	}
	if family, ok := knownFamilies[name]; ok {
		return family
	}
	return OSFamily(cases.Title(language.Und).String(name))
}

// HostOSFamily returns the family of the running system.
func HostOSFamily() OSFamily {
	return ParseOSFamily(runtime.GOOS)
}

// =============================================================================
// MINIMUM DRIVER TABLE
// =============================================================================

// DriverRequirement is the minimum NVIDIA driver for one CUDA toolkit version.
type DriverRequirement struct {
	CUDAMajor int
	CUDAMinor int
	MinDriver string
}

// Backend returns the CUDA backend the requirement unlocks.
func (r DriverRequirement) Backend() backend.Backend {
	return backend.CUDA(r.CUDAMajor, r.CUDAMinor)
}

// minimumDriverVersions lists, newest toolkit first, the minimum driver each
// CUDA version needs. Sources are the "CUDA Toolkit and Corresponding Driver
// Versions" tables of the CUDA release notes (current, 11.8.0 and 10.2).
var minimumDriverVersions = map[OSFamily][]DriverRequirement{
	OSLinux: {
		{13, 1, "580.65.06"},
		{13, 0, "580.65.06"},
		{12, 9, "525.60.13"},
		{12, 8, "525.60.13"},
		{12, 6, "525.60.13"},
		{12, 5, "525.60.13"},
		{12, 4, "525.60.13"},
		{12, 3, "525.60.13"},
		{12, 2, "525.60.13"},
		{12, 1, "525.60.13"},
		{12, 0, "525.60.13"},
		{11, 8, "450.80.02"},
		{11, 7, "450.80.02"},
		{11, 6, "450.80.02"},
		{11, 5, "450.80.02"},
		{11, 4, "450.80.02"},
		{11, 3, "450.80.02"},
		{11, 2, "450.80.02"},
		{11, 1, "450.80.02"},
		{11, 0, "450.36.06"},
		{10, 2, "440.33"},
		{10, 1, "418.39"},
		{10, 0, "410.48"},
		{9, 2, "396.26"},
		{9, 1, "390.46"},
		{9, 0, "384.81"},
		{8, 0, "375.26"},
	},
	OSWindows: {
		{13, 1, "580.0.0"},
		{13, 0, "580.0.0"},
		{12, 9, "528.33"},
		{12, 8, "528.33"},
		{12, 6, "528.33"},
		{12, 5, "528.33"},
		{12, 4, "528.33"},
		{12, 3, "528.33"},
		{12, 2, "528.33"},
		{12, 1, "528.33"},
		{12, 0, "528.33"},
		{11, 8, "452.39"},
		{11, 7, "452.39"},
		{11, 6, "452.39"},
		{11, 5, "452.39"},
		{11, 4, "452.39"},
		{11, 3, "452.39"},
		{11, 2, "452.39"},
		{11, 1, "452.39"},
		{11, 0, "451.22"},
		{10, 2, "441.22"},
		{10, 1, "418.96"},
		{10, 0, "411.31"},
		{9, 2, "398.26"},
		{9, 1, "391.29"},
		{9, 0, "385.54"},
		{8, 0, "376.51"},
	},
}

// MinimumDriverVersions returns a copy of the table for family, newest CUDA
// version first. ok is false when the family has no NVIDIA driver table.
func MinimumDriverVersions(family OSFamily) (reqs []DriverRequirement, ok bool) {
	reqs, ok = minimumDriverVersions[family]
	if !ok {
		return nil, false
	}
	return slices.Clone(reqs), true
}

// SupportedOSFamilies returns the families that have a driver table.
func SupportedOSFamilies() []OSFamily {
	families := make([]OSFamily, 0, len(minimumDriverVersions))
	for family := range minimumDriverVersions {
		families = append(families, family)
	}
	slices.Sort(families)
	return families
}
