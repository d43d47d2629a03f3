// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package backend models computation backends for cbdetect.
//
// A computation backend identifies the class of hardware or runtime a binary
// artifact targets: plain CPU, a CUDA toolkit version, a ROCm stack version,
// or a Vulkan runtime. Every backend has a canonical "local specifier" string
// (cpu, cu118, rocm5.4.2, vulkan1.3) which is its identity.
//
// # Key Types
//
//   - Backend: immutable tagged value over the four kinds
//   - Kind: the backend family (CPU, CUDA, ROCm, Vulkan)
//   - Set: backends deduplicated by specifier
//   - ParseError: text that matches no backend grammar
//   - IncomparableError: ordering requested across two GPU families
//
// # Ordering
//
// CPU sorts before everything. Backends of the same GPU family compare by
// version. CUDA, ROCm and Vulkan are never ordered against each other:
// Compare returns an *IncomparableError instead of guessing.
//
// # Usage
//
//	b, err := backend.Parse("cuda11.8")
//	if err != nil {
//		return err
//	}
//	fmt.Println(b) // cu118
//
//	cmp, err := backend.Compare(backend.CPU(), b) // -1, nil
package backend
