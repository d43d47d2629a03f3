// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package detect

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"time"
)

// Result is the captured outcome of a probe command.
type Result struct {
	// Stdout is everything the command wrote to standard output.
	Stdout string
	// ExitCode is the process exit status, or -1 if it never ran.
	ExitCode int
}

// Runner runs an external command and captures its output.
//
// Implementations return a non-nil error when the command cannot be started,
// exits with a non-zero status or is cancelled through ctx.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (Result, error)
}

// RunnerFunc adapts a function to the Runner interface.
type RunnerFunc func(ctx context.Context, name string, args ...string) (Result, error)

// Run calls f.
func (f RunnerFunc) Run(ctx context.Context, name string, args ...string) (Result, error) {
	return f(ctx, name, args...)
}

// waitDelay bounds how long Wait blocks on output pipes after the process is
// killed, so a probe whose children keep stdout open still returns.
const waitDelay = 2 * time.Second

// ExecRunner runs commands with os/exec.
type ExecRunner struct{}

// Run executes name with args and captures stdout. Stderr is discarded.
// CANCELLATION: Context enables timeout and cancellation
func (ExecRunner) Run(ctx context.Context, name string, args ...string) (Result, error) {
	var stdout bytes.Buffer

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &stdout
	cmd.WaitDelay = waitDelay

	err := cmd.Run()
	res := Result{Stdout: stdout.String()}
	if err == nil {
		return res, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		res.ExitCode = exitErr.ExitCode()
	} else {
		res.ExitCode = -1
	}
	return res, fmt.Errorf("run %s: %w", name, err)
}
