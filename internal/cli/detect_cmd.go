// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// detect_cmd.go - The detect command: probe this machine for backends.

package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jeranaias/cbdetect/internal/backend"
	"github.com/jeranaias/cbdetect/internal/config"
	"github.com/jeranaias/cbdetect/internal/detect"
	"github.com/jeranaias/cbdetect/internal/util"
)

type detectFlags struct {
	osFamily string
	noCUDA   bool
	noVulkan bool
	rocm     bool
	output   string
	details  bool
}

func newDetectCommand(app *App) *cobra.Command {
	var f detectFlags

	cmd := &cobra.Command{
		Use:   "detect",
		Short: "Detect compatible computation backends",
		Long: `Detect runs nvidia-smi and vulkaninfo, maps the NVIDIA driver version
to every CUDA release it supports, and prints the resulting backend
specifiers. With --rocm it also asks hipconfig for the ROCm release.
CPU is always included. A missing or failing tool simply means that
capability is absent.

When detect.backends is set in the configuration, detection is skipped
and that list (plus CPU) is reported instead.`,
		Args: exactArgs(0, "cbdetect detect --os linux"),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.runDetect(cmd, f)
		},
	}

	cmd.Flags().StringVar(&f.osFamily, "os", "", "OS family for the driver table (default: this system)")
	cmd.Flags().BoolVar(&f.noCUDA, "no-cuda", false, "Skip the NVIDIA driver probe")
	cmd.Flags().BoolVar(&f.noVulkan, "no-vulkan", false, "Skip the Vulkan probe")
	cmd.Flags().BoolVar(&f.rocm, "rocm", false, "Also probe the ROCm runtime (hipconfig)")
	cmd.Flags().StringVarP(&f.output, "output", "o", "", "Also write the JSON result to this file")
	cmd.Flags().BoolVar(&f.details, "details", false, "Show driver version and per-probe results")
	return cmd
}

func (a *App) runDetect(cmd *cobra.Command, f detectFlags) error {
	cfg, err := a.loadConfig()
	if err != nil {
		return err
	}

	data, err := a.detectData(cmd, cfg, f)
	if err != nil {
		return err
	}

	if f.output != "" {
		if err := writeDetectOutput(f.output, data); err != nil {
			return err
		}
		data.Output = f.output
	}

	if a.JSON {
		return a.printJSON("detect", data)
	}
	if f.details {
		a.printDetectDetails(data)
		return nil
	}
	for _, spec := range data.Backends {
		a.println(spec)
	}
	return nil
}

// detectData returns the configured override or runs detection.
func (a *App) detectData(cmd *cobra.Command, cfg *config.Config, f detectFlags) (*DetectData, error) {
	overrides, err := cfg.OverrideBackends()
	if err != nil {
		return nil, &ConfigError{Path: a.ConfigPath, Err: err}
	}
	if len(overrides) > 0 {
		set := backend.NewSet(overrides...)
		set.Add(backend.CPU())
		a.logger.Info("using configured backends, detection skipped", "backends", set.String())
		return &DetectData{Override: true, Backends: set.Specifiers()}, nil
	}

	family := cfg.Detect.OSFamily
	if f.osFamily != "" {
		family = f.osFamily
	}

	det := a.NewDetector(detect.Options{
		OSFamily:          detect.ParseOSFamily(family),
		NvidiaSmiPaths:    cfg.Probes.NvidiaSmi,
		VulkanInfoCommand: cfg.Probes.VulkanInfo,
		Timeout:           cfg.ProbeTimeout(),
		SkipCUDA:          cfg.Probes.SkipCUDA || f.noCUDA,
		SkipVulkan:        cfg.Probes.SkipVulkan || f.noVulkan,
		ProbeROCm:         cfg.Probes.ROCm || f.rocm,
		HIPConfigCommand:  cfg.Probes.HIPConfig,
	})

	report := det.Report(cmd.Context())
	if err := cmd.Context().Err(); err != nil {
		return nil, NewCommandError("detect", "run", "interrupted", err)
	}
	return &DetectData{Report: report, Backends: report.Backends.Specifiers()}, nil
}

// writeDetectOutput saves data as indented JSON.
func writeDetectOutput(path string, data *DetectData) error {
	encoded, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return NewCommandError("detect", "write", "encode report", err)
	}
	encoded = append(encoded, '\n')
	if err := util.AtomicWriteFile(path, encoded, 0644); err != nil {
		return NewCommandError("detect", "write", path, err)
	}
	return nil
}

func (a *App) printDetectDetails(data *DetectData) {
	const labelWidth = 16

	a.println(TitleStyle.Render("Computation Backends"))
	a.println(RenderSeparator())

	if data.Override {
		a.println(RenderLabel("Source", labelWidth) + ValueStyle.Render("configuration (detection skipped)"))
	} else {
		r := data.Report
		driver := r.DriverVersion
		if driver == "" {
			driver = "not found"
		}
		a.println(RenderLabel("Report ID", labelWidth) + DimStyle.Render(r.ID))
		a.println(RenderLabel("OS family", labelWidth) + ValueStyle.Render(string(r.OSFamily)))
		a.println(RenderLabel("NVIDIA driver", labelWidth) + ValueStyle.Render(fitValue(driver, labelWidth)))
		a.println(RenderLabel("CUDA", labelWidth) + renderList(r.CUDA))
		a.println(RenderLabel("Vulkan", labelWidth) + renderList(r.Vulkan))
		if len(r.ROCm) > 0 {
			a.println(RenderLabel("ROCm", labelWidth) + renderList(r.ROCm))
		}
	}

	a.println(RenderSeparator())
	a.println(RenderLabel("Backends", labelWidth) + SuccessStyle.Render(strings.Join(data.Backends, " ")))
	if data.Output != "" {
		a.println(RenderLabel("Written to", labelWidth) + ValueStyle.Render(fitValue(data.Output, labelWidth)))
	}
}

// fitValue truncates a value so label and value fit on one terminal line.
func fitValue(value string, labelWidth int) string {
	return util.TruncateWidth(value, GetTerminalWidth()-labelWidth)
}

func renderList(backends []backend.Backend) string {
	if len(backends) == 0 {
		return DimStyle.Render("none")
	}
	parts := make([]string, len(backends))
	for i, b := range backends {
		parts[i] = RenderBackend(b)
	}
	return fmt.Sprintf("%s (%d)", strings.Join(parts, " "), len(backends))
}
