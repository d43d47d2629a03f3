// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// json_output.go - JSON output support for scripting and tool integration.
//
// Every command answers --json with the same envelope so callers can
// check "success" before reading "data".

package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/jeranaias/cbdetect/internal/config"
	"github.com/jeranaias/cbdetect/internal/detect"
)

// JSONResponse is the standardized response format for all CLI commands.
type JSONResponse struct {
	// Success indicates whether the command completed successfully
	Success bool `json:"success"`

	// Data contains the command-specific response data
	Data interface{} `json:"data"`

	// Error contains the error message if Success is false, null otherwise
	Error *string `json:"error"`

	// ErrorType categorizes Error (e.g. "parse_error")
	ErrorType string `json:"error_type,omitempty"`

	// Timestamp is the ISO8601 timestamp when the response was generated
	Timestamp string `json:"timestamp"`

	// Command is the command that was executed
	Command string `json:"command,omitempty"`
}

// NewJSONResponse creates a new successful JSON response.
func NewJSONResponse(command string, data interface{}) *JSONResponse {
	return &JSONResponse{
		Success:   true,
		Data:      data,
		Error:     nil,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Command:   command,
	}
}

// NewJSONErrorResponse creates a new error JSON response.
func NewJSONErrorResponse(command string, err error) *JSONResponse {
	errStr := err.Error()
	return &JSONResponse{
		Success:   false,
		Data:      nil,
		Error:     &errStr,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Command:   command,
	}
}

// Print writes the JSON response to w with indentation.
func (r *JSONResponse) Print(w io.Writer) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(r)
}

// String returns the JSON response as a string.
func (r *JSONResponse) String() string {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Sprintf(`{"success":false,"error":"failed to marshal response: %s","timestamp":"%s"}`,
			err.Error(), time.Now().UTC().Format(time.RFC3339))
	}
	return string(data)
}

// =============================================================================
// COMMAND-SPECIFIC DATA STRUCTURES
// =============================================================================

// DetectData is returned by the detect command.
type DetectData struct {
	// Override is true when the backends came from configuration.
	Override bool `json:"override"`
	// Report is the detection report. Nil when Override is true.
	Report *detect.Report `json:"report,omitempty"`
	// Backends is the final set as sorted specifiers.
	Backends []string `json:"backends"`
	// Output is the file the report was written to, if any.
	Output string `json:"output,omitempty"`
}

// ParsedBackend is one entry of the parse command's data.
type ParsedBackend struct {
	Input     string `json:"input"`
	Specifier string `json:"specifier"`
	Kind      string `json:"kind"`
}

// CompareData is returned by the compare command.
type CompareData struct {
	Left     string `json:"left"`
	Right    string `json:"right"`
	Result   int    `json:"result"`
	Relation string `json:"relation"`
}

// TableEntry is one row of the compatibility table.
type TableEntry struct {
	CUDA      string `json:"cuda"`
	Backend   string `json:"backend"`
	MinDriver string `json:"min_driver"`
}

// TableData is returned by the table command, keyed by OS family.
type TableData map[string][]TableEntry

// ConfigData is returned by config show.
type ConfigData struct {
	Path   string         `json:"path"`
	Exists bool           `json:"exists"`
	Config *config.Config `json:"config"`
}

// VersionData is returned by the version command.
type VersionData struct {
	Version   string `json:"version"`
	GitCommit string `json:"git_commit"`
	BuildDate string `json:"build_date"`
	GoVersion string `json:"go_version"`
	Platform  string `json:"platform"`
}
