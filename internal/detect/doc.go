// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package detect probes the local system for computation backends.
//
// Detection runs independent probes and unions the results with the CPU
// backend, which is always present:
//
//   - NVIDIA driver (via nvidia-smi): the reported driver version is checked
//     against a table of minimum driver versions per CUDA toolkit, keyed by
//     operating system family. Every CUDA version the driver can run is
//     reported.
//   - Vulkan runtime (via vulkaninfo): a successful run reports one Vulkan
//     backend, versioned from the "Vulkan Instance Version" line if present.
//
// An opt-in third probe (Options.ProbeROCm) runs hipconfig and reports the
// ROCm release line of the installed HIP runtime.
//
// A missing tool, a non-zero exit status or unparseable output means the
// capability is absent. It is never an error.
//
// # Key Types
//
//   - Detector: configured prober; safe for concurrent use
//   - Runner: narrow process-execution interface, faked in tests
//   - Report: detailed outcome of one detection run
//   - OSFamily: operating system family used to select the driver table
//
// # Usage
//
//	set := detect.DetectCompatibleBackends()
//	fmt.Println(set) // {cpu, cu118, cu121, ..., vulkan1.3}
//
//	d := detect.New(detect.Options{OSFamily: detect.OSLinux})
//	report := d.Report(ctx)
package detect
