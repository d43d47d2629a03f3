// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// config_cmd.go - The config command: inspect and initialize settings.

package cli

import (
	"errors"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"

	"github.com/jeranaias/cbdetect/internal/config"
)

func newConfigCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or initialize the configuration",
	}

	var force bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write the default configuration file",
		Args:  exactArgs(0, "cbdetect config init --force"),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.runConfigInit(force)
		},
	}
	initCmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite an existing file")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "show",
			Short: "Print the effective configuration",
			Args:  exactArgs(0, "cbdetect config show"),
			RunE: func(cmd *cobra.Command, args []string) error {
				return app.runConfigShow()
			},
		},
		&cobra.Command{
			Use:   "path",
			Short: "Print the configuration file path",
			Args:  exactArgs(0, "cbdetect config path"),
			RunE: func(cmd *cobra.Command, args []string) error {
				return app.runConfigPath()
			},
		},
		initCmd,
	)
	return cmd
}

func (a *App) runConfigShow() error {
	path, err := a.configPath()
	if err != nil {
		return err
	}
	cfg, err := a.loadConfig()
	if err != nil {
		return err
	}

	if a.JSON {
		return a.printJSON("config show", ConfigData{
			Path:   path,
			Exists: fileExists(path),
			Config: cfg,
		})
	}

	a.println(DimStyle.Render("# " + path))
	if err := toml.NewEncoder(a.Out).Encode(cfg); err != nil {
		return NewCommandError("config", "show", "encode", err)
	}
	return nil
}

func (a *App) runConfigPath() error {
	path, err := a.configPath()
	if err != nil {
		return err
	}
	if a.JSON {
		return a.printJSON("config path", map[string]interface{}{
			"path":   path,
			"exists": fileExists(path),
		})
	}
	a.println(path)
	return nil
}

func (a *App) runConfigInit(force bool) error {
	path, err := a.configPath()
	if err != nil {
		return err
	}
	if fileExists(path) && !force {
		return NewCommandError("config", "init", "file already exists (use --force to overwrite)",
			&os.PathError{Op: "init", Path: path, Err: os.ErrExist})
	}

	if err := config.SaveTOML(config.Default(), path); err != nil {
		return NewCommandError("config", "init", "write", err)
	}

	if a.JSON {
		return a.printJSON("config init", map[string]string{"path": path})
	}
	a.println(SuccessStyle.Render("[OK]") + " Wrote default configuration to " + path)
	return nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return !errors.Is(err, os.ErrNotExist)
}
