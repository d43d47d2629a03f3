// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// backend_cmd.go - parse, compare and sort: backend specifier tools.

package cli

import (
	"slices"

	"github.com/spf13/cobra"

	"github.com/jeranaias/cbdetect/internal/backend"
	"github.com/jeranaias/cbdetect/internal/util"
)

// =============================================================================
// PARSE
// =============================================================================

func newParseCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "parse SPEC...",
		Short: "Parse backend specifiers and print their canonical form",
		Example: `  cbdetect parse cu118 cuda12.1 VK1.3 rocm6.0.2
  cbdetect parse --json cpu`,
		Args: minArgs(1, "cbdetect parse cu118"),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.runParse(args)
		},
	}
}

func (a *App) runParse(args []string) error {
	parsed := make([]ParsedBackend, 0, len(args))
	for _, arg := range args {
		b, err := backend.Parse(arg)
		if err != nil {
			return err
		}
		parsed = append(parsed, ParsedBackend{
			Input:     arg,
			Specifier: b.Specifier(),
			Kind:      b.Kind().String(),
		})
	}

	if a.JSON {
		return a.printJSON("parse", parsed)
	}

	width := 0
	for _, p := range parsed {
		width = max(width, util.StringWidth(p.Specifier))
	}
	for _, p := range parsed {
		a.println(util.PadRight(p.Specifier, width+2) + p.Kind)
	}
	return nil
}

// =============================================================================
// COMPARE
// =============================================================================

func newCompareCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "compare A B",
		Short: "Order two backends of the same family",
		Long: `Compare prints A <, = or > B.

CPU orders below every GPU backend. Backends of different GPU families
(CUDA, ROCm, Vulkan) have no meaningful order and are refused.`,
		Args: exactArgs(2, "cbdetect compare cu118 cu121"),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.runCompare(args[0], args[1])
		},
	}
}

func (a *App) runCompare(left, right string) error {
	bs, err := backend.ParseAll([]string{left, right})
	if err != nil {
		return err
	}

	result, err := backend.Compare(bs[0], bs[1])
	if err != nil {
		return err
	}

	relation := "="
	switch {
	case result < 0:
		relation = "<"
	case result > 0:
		relation = ">"
	}

	if a.JSON {
		return a.printJSON("compare", CompareData{
			Left:     bs[0].Specifier(),
			Right:    bs[1].Specifier(),
			Result:   result,
			Relation: relation,
		})
	}
	a.println(bs[0].Specifier(), relation, bs[1].Specifier())
	return nil
}

// =============================================================================
// SORT
// =============================================================================

type sortFlags struct {
	reverse bool
	max     bool
}

func newSortCommand(app *App) *cobra.Command {
	var f sortFlags

	cmd := &cobra.Command{
		Use:   "sort SPEC...",
		Short: "Sort backends from oldest to newest",
		Long: `Sort prints the backends in ascending order, one per line.

All GPU backends must belong to one family; CPU may be mixed with any
family. Mixing families is refused and nothing is printed.`,
		Example: `  cbdetect sort cu121 cu118 cpu
  cbdetect sort --max rocm5.7 rocm6.0 rocm6.0.2`,
		Args: minArgs(1, "cbdetect sort cu121 cu118"),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.runSort(args, f)
		},
	}

	cmd.Flags().BoolVarP(&f.reverse, "reverse", "r", false, "Newest first")
	cmd.Flags().BoolVar(&f.max, "max", false, "Print only the newest backend")
	return cmd
}

func (a *App) runSort(args []string, f sortFlags) error {
	if f.max && f.reverse {
		return NewValidationError("flags", "--max --reverse", "--max prints one backend and cannot be reversed")
	}

	bs, err := backend.ParseAll(args)
	if err != nil {
		return err
	}

	if f.max {
		top, err := backend.Max(bs)
		if err != nil {
			return err
		}
		bs = []backend.Backend{top}
	} else {
		if err := backend.Sort(bs); err != nil {
			return err
		}
		if f.reverse {
			slices.Reverse(bs)
		}
	}

	specs := make([]string, len(bs))
	for i, b := range bs {
		specs[i] = b.Specifier()
	}

	if a.JSON {
		return a.printJSON("sort", specs)
	}
	for _, s := range specs {
		a.println(s)
	}
	return nil
}
