// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// table_cmd.go - The table command: print the CUDA driver requirements.

package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jeranaias/cbdetect/internal/detect"
	"github.com/jeranaias/cbdetect/internal/util"
)

func newTableCommand(app *App) *cobra.Command {
	var osFamily string

	cmd := &cobra.Command{
		Use:   "table",
		Short: "Show the minimum NVIDIA driver for each CUDA version",
		Args:  exactArgs(0, "cbdetect table --os windows"),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.runTable(osFamily)
		},
	}
	cmd.Flags().StringVar(&osFamily, "os", "", "Only this OS family (Linux, Windows)")
	return cmd
}

func (a *App) runTable(osFlag string) error {
	families := detect.SupportedOSFamilies()
	if osFlag != "" {
		family := detect.ParseOSFamily(osFlag)
		if _, ok := detect.MinimumDriverVersions(family); !ok {
			names := make([]string, len(families))
			for i, f := range families {
				names[i] = string(f)
			}
			return NewValidationErrorWithExample("os", osFlag,
				"no driver table for this OS family", strings.Join(names, ", "))
		}
		families = []detect.OSFamily{family}
	}

	data := make(TableData, len(families))
	for _, family := range families {
		reqs, _ := detect.MinimumDriverVersions(family)
		rows := make([]TableEntry, len(reqs))
		for i, req := range reqs {
			rows[i] = TableEntry{
				CUDA:      fmt.Sprintf("%d.%d", req.CUDAMajor, req.CUDAMinor),
				Backend:   req.Backend().Specifier(),
				MinDriver: req.MinDriver,
			}
		}
		data[string(family)] = rows
	}

	if a.JSON {
		return a.printJSON("table", data)
	}

	for i, family := range families {
		if i > 0 {
			a.println()
		}
		a.printTable(string(family), data[string(family)])
	}
	return nil
}

func (a *App) printTable(family string, rows []TableEntry) {
	headers := []string{"CUDA", "Backend", "Min driver"}
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = util.StringWidth(h)
	}
	for _, r := range rows {
		widths[0] = max(widths[0], util.StringWidth(r.CUDA))
		widths[1] = max(widths[1], util.StringWidth(r.Backend))
		widths[2] = max(widths[2], util.StringWidth(r.MinDriver))
	}

	a.println(TitleStyle.Render(family))
	header := util.PadRight(headers[0], widths[0]+2) +
		util.PadRight(headers[1], widths[1]+2) +
		headers[2]
	a.println(LabelStyle.Render(header))
	for _, r := range rows {
		a.println(util.PadRight(r.CUDA, widths[0]+2) +
			util.PadRight(r.Backend, widths[1]+2) +
			r.MinDriver)
	}
}
