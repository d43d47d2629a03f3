// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// styles.go - Centralized styling for all cbdetect commands.
//
// Color handling:
// - Colors are automatically disabled for non-TTY output (piped, redirected)
// - Respects NO_COLOR environment variable (https://no-color.org/)
// - Supports FORCE_COLOR environment variable to override detection

package cli

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/cbdetect/internal/backend"
	"github.com/jeranaias/cbdetect/internal/util"
)

// init configures lipgloss color profile based on terminal capabilities.
func init() {
	lipgloss.SetColorProfile(GetColorProfile())
}

// =============================================================================
// SHARED STYLES FOR ALL CLI COMMANDS
// =============================================================================

var (
	// TitleStyle is used for command titles and headers
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39")) // Cyan

	// LabelStyle is used for field labels
	LabelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245")) // Light gray

	// ValueStyle is used for regular values and text
	ValueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252")) // Off-white

	// SuccessStyle is used for success messages
	SuccessStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")). // Green
			Bold(true)

	// ErrorStyle is used for error messages and failures
	ErrorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")). // Red
			Bold(true)

	// DimStyle is used for secondary information and hints
	DimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("242")) // Dim gray

	// SeparatorStyle is used for visual separators
	SeparatorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")) // Dark gray
)

// kindStyles color backends by family.
var kindStyles = map[backend.Kind]lipgloss.Style{
	backend.KindCPU:    DimStyle,
	backend.KindCUDA:   lipgloss.NewStyle().Foreground(lipgloss.Color("82")),  // Bright green
	backend.KindROCm:   lipgloss.NewStyle().Foreground(lipgloss.Color("203")), // Salmon
	backend.KindVulkan: lipgloss.NewStyle().Foreground(lipgloss.Color("75")),  // Blue
}

// =============================================================================
// HELPER FUNCTIONS FOR COMMON PATTERNS
// =============================================================================

// RenderSeparator renders a horizontal separator line of the specified width.
// Default width is 50 characters if not specified.
func RenderSeparator(width ...int) string {
	w := 50
	if len(width) > 0 && width[0] > 0 {
		w = width[0]
	}
	if limit := GetTerminalWidth() - 4; w > limit {
		w = limit
	}
	return SeparatorStyle.Render(strings.Repeat("=", w))
}

// RenderLabel renders a label padded to width columns.
// Padding happens before styling so escape codes do not skew alignment.
func RenderLabel(label string, width int) string {
	return LabelStyle.Render(util.PadRight(label, width))
}

// RenderBackend renders a specifier in its family color.
func RenderBackend(b backend.Backend) string {
	style, ok := kindStyles[b.Kind()]
	if !ok {
		return b.Specifier()
	}
	return style.Render(b.Specifier())
}
