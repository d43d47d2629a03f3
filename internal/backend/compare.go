// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package backend

import (
	"cmp"
	"errors"
	"slices"
)

// Compare orders a against b, returning -1, 0 or +1.
//
// CPU is less than every other backend. Backends of the same family compare
// by version:
//
//   - CUDA: (major, minor)
//   - ROCm: (major, minor), then patch; a missing patch sorts after any
//     explicit patch because it stands for the newest release of the line
//   - Vulkan: (major, minor) with missing fields treated as 0
//
// Backends of two different GPU families are not ordered; Compare returns an
// *IncomparableError naming both kinds.
func Compare(a, b Backend) (int, error) {
	switch {
	case a.kind == KindCPU && b.kind == KindCPU:
		return 0, nil
	case a.kind == KindCPU:
		return -1, nil
	case b.kind == KindCPU:
		return 1, nil
	case a.kind != b.kind:
		return 0, &IncomparableError{Left: a.kind, Right: b.kind}
	}

	switch a.kind {
	case KindCUDA:
		return cmpPair(a.major, a.minor, b.major, b.minor), nil
	case KindROCm:
		if c := cmpPair(a.major, a.minor, b.major, b.minor); c != 0 {
			return c, nil
		}
		switch {
		case a.hasPatch && b.hasPatch:
			return cmp.Compare(a.patch, b.patch), nil
		case a.hasPatch:
			return -1, nil
		case b.hasPatch:
			return 1, nil
		default:
			return 0, nil
		}
	default: // KindVulkan: unset fields are stored as 0
		return cmpPair(a.major, a.minor, b.major, b.minor), nil
	}
}

// Less reports whether a sorts strictly before b.
func Less(a, b Backend) (bool, error) {
	c, err := Compare(a, b)
	if err != nil {
		return false, err
	}
	return c < 0, nil
}

// Sort sorts backends in ascending order.
//
// If any two elements belong to different GPU families the slice is left
// untouched and the *IncomparableError for the first offending pair is
// returned.
func Sort(backends []Backend) error {
	if err := checkComparable(backends); err != nil {
		return err
	}
	slices.SortStableFunc(backends, func(a, b Backend) int {
		c, _ := Compare(a, b)
		return c
	})
	return nil
}

// Max returns the greatest backend under Compare.
func Max(backends []Backend) (Backend, error) {
	if len(backends) == 0 {
		return Backend{}, errors.New("no computation backends to choose from")
	}
	if err := checkComparable(backends); err != nil {
		return Backend{}, err
	}
	best := backends[0]
	for _, b := range backends[1:] {
		if c, _ := Compare(b, best); c > 0 {
			best = b
		}
	}
	return best, nil
}

// checkComparable verifies that all GPU backends belong to one family.
func checkComparable(backends []Backend) error {
	var first *Backend
	for i := range backends {
		if !backends[i].IsGPU() {
			continue
		}
		if first == nil {
			first = &backends[i]
			continue
		}
		if _, err := Compare(*first, backends[i]); err != nil {
			return err
		}
	}
	return nil
}

func cmpPair(aMajor, aMinor, bMajor, bMinor int) int {
	if c := cmp.Compare(aMajor, bMajor); c != 0 {
		return c
	}
	return cmp.Compare(aMinor, bMinor)
}
