// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package backend

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// COMPARE TESTS
// =============================================================================

func TestCompare_SameFamily(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"cpu", "cpu", 0},
		{"cu118", "cu121", -1},
		{"cu121", "cu118", 1},
		{"cu118", "cuda11.8", 0},
		{"cu102", "cu110", -1},
		{"rocm5.4", "rocm5.6", -1},
		{"rocm6.0", "rocm5.7.1", 1},
		{"rocm5.4.1", "rocm5.4.2", -1},
		{"rocm5.4.2", "rocm5.4.2", 0},
		{"rocm5.4", "rocm5.4", 0},
		{"vulkan1.2", "vulkan1.3", -1},
		{"vulkan", "vulkan1.0", -1},
		{"vulkan", "vulkan0", 0},
		{"vk1", "vulkan1.0", 0},
		{"vulkan", "vk1.1", -1},
	}

	for _, tc := range tests {
		t.Run(tc.a+"_vs_"+tc.b, func(t *testing.T) {
			got, err := Compare(MustParse(tc.a), MustParse(tc.b))
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestCompare_CPUIsLeast(t *testing.T) {
	for _, other := range []string{"cu121", "vulkan1.2", "rocm5.4", "vulkan"} {
		less, err := Less(CPU(), MustParse(other))
		require.NoError(t, err)
		assert.True(t, less, "cpu < %s", other)

		less, err = Less(MustParse(other), CPU())
		require.NoError(t, err)
		assert.False(t, less, "%s < cpu", other)
	}

	less, err := Less(CPU(), CPU())
	require.NoError(t, err)
	assert.False(t, less)
}

func TestCompare_ROCmMissingPatchSortsLast(t *testing.T) {
	bare := MustParse("rocm5.4")
	patched := MustParse("rocm5.4.1")

	less, err := Less(bare, patched)
	require.NoError(t, err)
	assert.False(t, less, "rocm5.4 must not sort before rocm5.4.1")

	less, err = Less(patched, bare)
	require.NoError(t, err)
	assert.True(t, less)

	// The major.minor comparison still wins over the patch rule.
	less, err = Less(ROCm(5, 3), ROCmPatch(5, 4, 0))
	require.NoError(t, err)
	assert.True(t, less)
}

func TestCompare_CrossFamilyRefused(t *testing.T) {
	pairs := [][2]string{
		{"cu118", "rocm5.4"},
		{"cu118", "vulkan1.2"},
		{"rocm5.4", "vulkan"},
	}

	for _, pair := range pairs {
		for _, order := range [][2]string{pair, {pair[1], pair[0]}} {
			a, b := MustParse(order[0]), MustParse(order[1])

			_, err := Compare(a, b)
			var ierr *IncomparableError
			require.ErrorAs(t, err, &ierr, "%s vs %s", order[0], order[1])
			assert.Equal(t, a.Kind(), ierr.Left)
			assert.Equal(t, b.Kind(), ierr.Right)
			assert.Contains(t, err.Error(), a.Kind().String())
			assert.Contains(t, err.Error(), b.Kind().String())

			_, err = Less(a, b)
			require.ErrorAs(t, err, &ierr)

			var perr *ParseError
			assert.False(t, errors.As(err, &perr), "ordering refusal is not a parse error")
		}
	}
}

// =============================================================================
// SORT / MAX TESTS
// =============================================================================

func TestSort_SingleFamily(t *testing.T) {
	list := []Backend{CUDA(12, 1), CPU(), CUDA(11, 8), CUDA(10, 2)}
	require.NoError(t, Sort(list))

	var got []string
	for _, b := range list {
		got = append(got, b.Specifier())
	}
	assert.Equal(t, []string{"cpu", "cu102", "cu118", "cu121"}, got)
}

func TestSort_ROCmPatches(t *testing.T) {
	list := []Backend{ROCm(5, 4), ROCmPatch(5, 4, 2), ROCmPatch(5, 4, 0), ROCm(5, 2)}
	require.NoError(t, Sort(list))

	var got []string
	for _, b := range list {
		got = append(got, b.Specifier())
	}
	assert.Equal(t, []string{"rocm5.2", "rocm5.4.0", "rocm5.4.2", "rocm5.4"}, got)
}

func TestSort_MixedFamiliesFailsWithoutReordering(t *testing.T) {
	list := []Backend{CUDA(12, 1), CPU(), VulkanVersion(1, 3), CUDA(11, 8)}
	before := append([]Backend(nil), list...)

	err := Sort(list)
	var ierr *IncomparableError
	require.ErrorAs(t, err, &ierr)
	assert.Equal(t, KindCUDA, ierr.Left)
	assert.Equal(t, KindVulkan, ierr.Right)
	assert.Equal(t, before, list)
}

func TestMax(t *testing.T) {
	best, err := Max([]Backend{CPU(), CUDA(11, 8), CUDA(12, 4), CUDA(12, 1)})
	require.NoError(t, err)
	assert.Equal(t, "cu124", best.Specifier())

	best, err = Max([]Backend{CPU()})
	require.NoError(t, err)
	assert.Equal(t, "cpu", best.Specifier())

	_, err = Max(nil)
	require.Error(t, err)

	_, err = Max([]Backend{ROCm(5, 4), CUDA(11, 8)})
	var ierr *IncomparableError
	require.ErrorAs(t, err, &ierr)
}
