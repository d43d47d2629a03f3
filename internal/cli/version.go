// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

func newVersionCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  exactArgs(0, "cbdetect version"),
		RunE: func(cmd *cobra.Command, args []string) error {
			data := VersionData{
				Version:   Version,
				GitCommit: GitCommit,
				BuildDate: BuildDate,
				GoVersion: runtime.Version(),
				Platform:  runtime.GOOS + "/" + runtime.GOARCH,
			}
			if app.JSON {
				return app.printJSON("version", data)
			}
			fmt.Fprintf(app.Out, "cbdetect version %s (commit %s, built %s, %s %s)\n",
				data.Version, data.GitCommit, data.BuildDate, data.GoVersion, data.Platform)
			return nil
		},
	}
}
