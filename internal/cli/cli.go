// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jeranaias/cbdetect/internal/config"
	"github.com/jeranaias/cbdetect/internal/detect"
)

// Version information (can be overridden at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// =============================================================================
// APPLICATION STATE
// =============================================================================

// DetectorFactory builds the detector used by the detect command.
type DetectorFactory func(detect.Options) *detect.Detector

// App holds the state shared by every command of one invocation.
type App struct {
	// Global flags
	JSON       bool
	ConfigPath string
	LogLevel   string

	// Out receives command output; Err receives logs and text-mode errors.
	Out io.Writer
	Err io.Writer

	// NewDetector is replaced in tests with a detector backed by a fake runner.
	NewDetector DetectorFactory

	cfg    *config.Config
	logger *slog.Logger
}

// NewApp returns an App writing to the given streams.
func NewApp(out, errOut io.Writer) *App {
	return &App{
		Out:         out,
		Err:         errOut,
		NewDetector: detect.New,
		logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

// Run executes cbdetect with the process arguments and returns the exit code.
// CANCELLATION: Interrupt cancels in-flight probes
func Run(args []string) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return NewApp(os.Stdout, os.Stderr).Execute(ctx, args)
}

// Execute runs one command line and maps its outcome to an exit code.
// Errors are displayed here, once.
func (a *App) Execute(ctx context.Context, args []string) int {
	root := NewRootCommand(a)
	root.SetArgs(args)

	cmd, err := root.ExecuteContextC(ctx)
	if err != nil {
		DisplayError(a.Out, a.Err, commandName(cmd), err, a.JSON)
		return GetExitCode(err)
	}
	return ExitSuccess
}

// commandName returns the command path without the program name.
func commandName(cmd *cobra.Command) string {
	if cmd == nil {
		return ""
	}
	path := cmd.CommandPath()
	if i := strings.IndexByte(path, ' '); i >= 0 {
		return path[i+1:]
	}
	return ""
}

// =============================================================================
// ROOT COMMAND
// =============================================================================

// NewRootCommand builds the cbdetect command tree bound to app.
func NewRootCommand(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:   "cbdetect",
		Short: "Detect and compare computation backends (CPU, CUDA, ROCm, Vulkan)",
		Long: `cbdetect reports which computation backends this machine can use.

It queries the NVIDIA driver and the Vulkan loader, maps the driver
version to compatible CUDA releases, and always includes CPU. Backend
specifiers such as cu121, rocm6.0 or vulkan1.3 can also be parsed,
compared and sorted.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return app.configureLogging(app.LogLevel, "text")
		},
	}

	flags := root.PersistentFlags()
	flags.BoolVar(&app.JSON, "json", false, "Output in JSON format")
	flags.StringVar(&app.ConfigPath, "config", "", "Config file (default ~/.cbdetect/config.toml)")
	flags.StringVar(&app.LogLevel, "log-level", "", "Log level (debug, info, warn, error)")

	root.SetOut(app.Out)
	root.SetErr(app.Err)
	root.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return NewValidationErrorWithExample("flag", "", err.Error(), cmd.UseLine())
	})

	root.AddCommand(
		newDetectCommand(app),
		newParseCommand(app),
		newCompareCommand(app),
		newSortCommand(app),
		newTableCommand(app),
		newConfigCommand(app),
		newVersionCommand(app),
	)
	return root
}

// =============================================================================
// SHARED HELPERS
// =============================================================================

// configureLogging installs a stderr slog handler at level.
// An empty level falls back to warn.
func (a *App) configureLogging(level, format string) error {
	if level == "" {
		level = "warn"
	}
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return NewValidationErrorWithExample("log level", level, "unknown level", "debug, info, warn, error")
	}

	opts := &slog.HandlerOptions{Level: lvl}
	var handler slog.Handler
	if strings.EqualFold(format, "json") {
		handler = slog.NewJSONHandler(a.Err, opts)
	} else {
		handler = slog.NewTextHandler(a.Err, opts)
	}
	a.logger = slog.New(handler)
	detect.SetLogger(a.logger)
	return nil
}

// configPath returns --config or the default location.
func (a *App) configPath() (string, error) {
	if a.ConfigPath != "" {
		return a.ConfigPath, nil
	}
	path, err := config.ConfigPath()
	if err != nil {
		return "", &ConfigError{Err: err}
	}
	return path, nil
}

// loadConfig loads and caches the effective configuration.
// Logging is reconfigured from the file unless --log-level was given.
func (a *App) loadConfig() (*config.Config, error) {
	if a.cfg != nil {
		return a.cfg, nil
	}

	var (
		cfg *config.Config
		err error
	)
	if a.ConfigPath != "" {
		cfg, err = config.LoadFromPath(a.ConfigPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, &ConfigError{Path: a.ConfigPath, Err: err}
	}

	level := a.LogLevel
	if level == "" {
		level = cfg.Log.Level
	}
	if err := a.configureLogging(level, cfg.Log.Format); err != nil {
		return nil, err
	}

	a.cfg = cfg
	a.logger.Debug("configuration loaded", "path", a.ConfigPath)
	return cfg, nil
}

// printJSON writes data in the standard envelope.
func (a *App) printJSON(command string, data interface{}) error {
	return NewJSONResponse(command, data).Print(a.Out)
}

// println writes one line of text output.
func (a *App) println(args ...interface{}) {
	fmt.Fprintln(a.Out, args...)
}

// exactArgs requires exactly n positional arguments.
func exactArgs(n int, example string) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) != n {
			return NewValidationErrorWithExample("arguments", strings.Join(args, " "),
				fmt.Sprintf("expected %d, got %d", n, len(args)), example)
		}
		return nil
	}
}

// minArgs requires at least n positional arguments.
func minArgs(n int, example string) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) < n {
			return ErrMissingArgument("backend", example)
		}
		return nil
	}
}
