// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides small helpers shared by the cbdetect packages.
//
// # Key Functions
//
// File Operations:
//   - AtomicWriteFile: Crash-safe file writing with fsync
//   - AtomicWriteFileWithDir: Same, with explicit parent directory permissions
//
// Display Width:
//   - StringWidth: Terminal column width of a string
//   - TruncateWidth: Width-aware truncation with ellipsis
//   - PadRight: Width-aware right padding for table columns
//
// # Usage
//
//	// Write reports and config atomically to prevent partial files
//	err := util.AtomicWriteFile(path, data, 0644)
//
//	// Align a table column
//	cell := util.PadRight(name, 12)
package util
