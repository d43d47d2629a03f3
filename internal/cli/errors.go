// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// errors.go - Unified error handling for all cbdetect commands.
//
// STANDARDIZED PATTERN:
//   - Commands ALWAYS return errors (never just print and return nil)
//   - Execute displays the error once and maps it to an exit code
//   - Structured error types drive the exit code, not message text
//
// ERROR HANDLING: Errors must not be silently ignored

package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/jeranaias/cbdetect/internal/backend"
)

// =============================================================================
// EXIT CODES - Specific codes for different error categories
// =============================================================================

const (
	// ExitSuccess indicates successful execution
	ExitSuccess = 0
	// ExitGeneralError indicates a general/unknown error
	ExitGeneralError = 1
	// ExitUsageError indicates invalid command usage or arguments
	ExitUsageError = 2
	// ExitConfigError indicates configuration file or settings error
	ExitConfigError = 3
	// ExitParseError indicates text that is not a computation backend
	ExitParseError = 9
	// ExitIncomparableError indicates a refused cross-family ordering
	ExitIncomparableError = 10
)

// =============================================================================
// ERROR TYPES FOR STRUCTURED ERROR HANDLING
// =============================================================================

// CommandError represents a CLI command error with context.
type CommandError struct {
	Command string // Command that failed (e.g., "detect", "config")
	Action  string // Action being performed (e.g., "write", "init")
	Reason  string // Human-readable reason
	Err     error  // Underlying error (if any)
}

func (e *CommandError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s %s failed: %s: %v", e.Command, e.Action, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s %s failed: %s", e.Command, e.Action, e.Reason)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// ValidationError represents a validation failure for user input.
type ValidationError struct {
	Field   string // Field that failed validation
	Value   string // Value that was provided
	Reason  string // Why validation failed
	Example string // Example of valid value (optional)
}

func (e *ValidationError) Error() string {
	msg := fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
	if e.Value != "" {
		msg += fmt.Sprintf(" (got: %s)", e.Value)
	}
	if e.Example != "" {
		msg += fmt.Sprintf("\nExample: %s", e.Example)
	}
	return msg
}

// ConfigError reports a configuration file that could not be loaded.
type ConfigError struct {
	Path string
	Err  error
}

func (e *ConfigError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("config: %v", e.Err)
	}
	return fmt.Sprintf("config %s: %v", e.Path, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// =============================================================================
// ERROR CONSTRUCTION HELPERS
// =============================================================================

// NewCommandError creates a new command error.
func NewCommandError(command, action, reason string, err error) error {
	return &CommandError{
		Command: command,
		Action:  action,
		Reason:  reason,
		Err:     err,
	}
}

// NewValidationError creates a new validation error.
func NewValidationError(field, value, reason string) error {
	return &ValidationError{
		Field:  field,
		Value:  value,
		Reason: reason,
	}
}

// NewValidationErrorWithExample creates a validation error with an example.
func NewValidationErrorWithExample(field, value, reason, example string) error {
	return &ValidationError{
		Field:   field,
		Value:   value,
		Reason:  reason,
		Example: example,
	}
}

// ErrMissingArgument creates an error for missing required arguments.
func ErrMissingArgument(argName, usage string) error {
	return NewValidationErrorWithExample(argName, "", "required argument missing", usage)
}

// =============================================================================
// ERROR DISPLAY HELPERS
// =============================================================================

// DisplayError writes an error in a consistent format.
//
// In JSON mode, writes the standard envelope to out.
// In normal mode, writes a formatted message to errOut.
func DisplayError(out, errOut io.Writer, command string, err error, jsonMode bool) {
	if err == nil {
		return
	}

	if jsonMode {
		resp := NewJSONErrorResponse(command, err)
		resp.ErrorType = ErrorType(err)
		_ = resp.Print(out)
		return
	}

	fmt.Fprintf(errOut, "%s %s\n", ErrorStyle.Render("[ERROR]"), err.Error())
}

// ErrorType names the category of err for JSON consumers.
func ErrorType(err error) string {
	var (
		configErr     *ConfigError
		validationErr *ValidationError
		incomparable  *backend.IncomparableError
		parseErr      *backend.ParseError
		commandErr    *CommandError
	)
	switch {
	case errors.As(err, &configErr):
		return "config_error"
	case errors.As(err, &validationErr):
		return "validation_error"
	case errors.As(err, &incomparable):
		return "incomparable_error"
	case errors.As(err, &parseErr):
		return "parse_error"
	case errors.As(err, &commandErr):
		return "command_error"
	case isCobraUsageError(err):
		return "validation_error"
	default:
		return "generic_error"
	}
}

// GetExitCode determines the appropriate exit code for an error.
// Config errors are checked first because invalid override entries
// wrap a backend.ParseError.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var configErr *ConfigError
	if errors.As(err, &configErr) {
		return ExitConfigError
	}

	var validationErr *ValidationError
	if errors.As(err, &validationErr) {
		return ExitUsageError
	}

	var incomparable *backend.IncomparableError
	if errors.As(err, &incomparable) {
		return ExitIncomparableError
	}

	var parseErr *backend.ParseError
	if errors.As(err, &parseErr) {
		return ExitParseError
	}

	if isCobraUsageError(err) {
		return ExitUsageError
	}

	return ExitGeneralError
}

// isCobraUsageError recognises the unstructured errors cobra returns for
// unknown commands.
func isCobraUsageError(err error) bool {
	msg := err.Error()
	return strings.HasPrefix(msg, "unknown command") ||
		strings.HasPrefix(msg, "unknown flag") ||
		strings.HasPrefix(msg, "unknown shorthand flag")
}
