// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli implements the cbdetect command line.
//
// The command tree is built with cobra. Every command writes to the App's
// output stream, answers --json with a common envelope, and returns its
// error to Execute, which displays it once and maps it to an exit code.
//
// # Commands
//
//   - detect: probe this machine (nvidia-smi, vulkaninfo) for backends
//   - parse: canonicalize backend specifiers
//   - compare: order two backends of one family
//   - sort: order many backends of one family
//   - table: the minimum NVIDIA driver per CUDA version
//   - config: show, path, init
//   - version: build information
//
// # Exit Codes
//
//   - 0: success
//   - 1: general error
//   - 2: usage error
//   - 3: configuration error
//   - 9: text is not a computation backend
//   - 10: backends of different GPU families were ordered
//
// # Usage
//
//	os.Exit(cli.Run(os.Args[1:]))
package cli
