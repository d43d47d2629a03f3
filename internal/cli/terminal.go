// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// terminal.go - What the stdout terminal can show.
//
// Backend lists are usually piped into scripts, so color is opt-out by
// default: only an interactive stdout gets styled output.

package cli

import (
	"os"
	"sync"

	"github.com/muesli/termenv"
	"golang.org/x/term"
)

const (
	// DefaultTerminalWidth is used when stdout has no size (pipes, files).
	DefaultTerminalWidth = 80

	// MinTerminalWidth keeps separators and detail rows readable.
	MinTerminalWidth = 40
)

// IsStdoutTTY reports whether stdout is an interactive terminal.
func IsStdoutTTY() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// GetTerminalWidth returns the stdout width in columns, clamped to
// MinTerminalWidth, or DefaultTerminalWidth when it cannot be read.
func GetTerminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return DefaultTerminalWidth
	}
	return max(width, MinTerminalWidth)
}

var (
	colorsOnce sync.Once
	colorsOn   bool
)

// ColorsEnabled reports whether styled output should be used. The answer
// is computed once per process.
func ColorsEnabled() bool {
	colorsOnce.Do(func() {
		colorsOn = colorsWanted(os.Getenv, IsStdoutTTY())
	})
	return colorsOn
}

// colorsWanted applies NO_COLOR (https://no-color.org/), then FORCE_COLOR,
// then falls back to whether stdout is a terminal.
func colorsWanted(getenv func(string) string, tty bool) bool {
	switch {
	case getenv("NO_COLOR") != "":
		return false
	case getenv("FORCE_COLOR") != "":
		return true
	default:
		return tty
	}
}

// GetColorProfile returns the termenv profile lipgloss should render with.
func GetColorProfile() termenv.Profile {
	if !ColorsEnabled() {
		return termenv.Ascii
	}
	return termenv.ColorProfile()
}
