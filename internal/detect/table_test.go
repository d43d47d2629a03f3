// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package detect

import (
	"fmt"
	"runtime"
	"testing"

	"github.com/hashicorp/go-version"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMinimumDriverVersions_Table(t *testing.T) {
	want := map[OSFamily]map[string]string{
		OSLinux: {
			"13.1": "580.65.06", "13.0": "580.65.06",
			"12.9": "525.60.13", "12.8": "525.60.13", "12.6": "525.60.13", "12.5": "525.60.13",
			"12.4": "525.60.13", "12.3": "525.60.13", "12.2": "525.60.13", "12.1": "525.60.13",
			"12.0": "525.60.13",
			"11.8": "450.80.02", "11.7": "450.80.02", "11.6": "450.80.02", "11.5": "450.80.02",
			"11.4": "450.80.02", "11.3": "450.80.02", "11.2": "450.80.02", "11.1": "450.80.02",
			"11.0": "450.36.06",
			"10.2": "440.33", "10.1": "418.39", "10.0": "410.48",
			"9.2": "396.26", "9.1": "390.46", "9.0": "384.81",
			"8.0": "375.26",
		},
		OSWindows: {
			"13.1": "580.0.0", "13.0": "580.0.0",
			"12.9": "528.33", "12.8": "528.33", "12.6": "528.33", "12.5": "528.33",
			"12.4": "528.33", "12.3": "528.33", "12.2": "528.33", "12.1": "528.33",
			"12.0": "528.33",
			"11.8": "452.39", "11.7": "452.39", "11.6": "452.39", "11.5": "452.39",
			"11.4": "452.39", "11.3": "452.39", "11.2": "452.39", "11.1": "452.39",
			"11.0": "451.22",
			"10.2": "441.22", "10.1": "418.96", "10.0": "411.31",
			"9.2": "398.26", "9.1": "391.29", "9.0": "385.54",
			"8.0": "376.51",
		},
	}

	for family, entries := range want {
		reqs, ok := MinimumDriverVersions(family)
		require.True(t, ok, family)
		require.Len(t, reqs, len(entries), family)

		for _, req := range reqs {
			key := fmt.Sprintf("%d.%d", req.CUDAMajor, req.CUDAMinor)
			assert.Equal(t, entries[key], req.MinDriver, "%s CUDA %s", family, key)

			_, err := version.NewVersion(req.MinDriver)
			assert.NoError(t, err, "minimum driver %q must parse", req.MinDriver)
		}
	}
}

func TestMinimumDriverVersions_NewestFirst(t *testing.T) {
	reqs, ok := MinimumDriverVersions(OSLinux)
	require.True(t, ok)
	assert.Equal(t, "cu131", reqs[0].Backend().Specifier())
	assert.Equal(t, "cu80", reqs[len(reqs)-1].Backend().Specifier())
}

func TestMinimumDriverVersions_ReturnsCopy(t *testing.T) {
	reqs, _ := MinimumDriverVersions(OSLinux)
	reqs[0].MinDriver = "0"

	again, _ := MinimumDriverVersions(OSLinux)
	assert.Equal(t, "580.65.06", again[0].MinDriver)
}

func TestMinimumDriverVersions_UnknownFamily(t *testing.T) {
	reqs, ok := MinimumDriverVersions(OSDarwin)
	assert.False(t, ok)
	assert.Nil(t, reqs)
}

func TestSupportedOSFamilies(t *testing.T) {
	assert.Equal(t, []OSFamily{OSLinux, OSWindows}, SupportedOSFamilies())
}

func TestParseOSFamily(t *testing.T) {
	tests := []struct {
		in   string
		want OSFamily
	}{
		{"linux", OSLinux},
		{"LINUX", OSLinux},
		{" Windows ", OSWindows},
		{"darwin", OSDarwin},
		{"freebsd", "FreeBSD"},
		{"plan9", "Plan9"},
		{"", ""},
	}

	for _, tc := range tests {
		assert.Equal(t, tc.want, ParseOSFamily(tc.in), "ParseOSFamily(%q)", tc.in)
	}
}

func TestHostOSFamily(t *testing.T) {
	switch runtime.GOOS {
	case "linux":
		assert.Equal(t, OSLinux, HostOSFamily())
	case "windows":
		assert.Equal(t, OSWindows, HostOSFamily())
	default:
		assert.NotEmpty(t, HostOSFamily())
	}
}
