// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package detect

import (
	"context"
	"slices"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/jeranaias/cbdetect/internal/backend"
)

// DefaultProbeTimeout bounds each probe command.
// CANCELLATION: Context enables timeout and cancellation
const DefaultProbeTimeout = 10 * time.Second

// DefaultVulkanInfoCommand is the Vulkan diagnostics tool run with no arguments.
const DefaultVulkanInfoCommand = "vulkaninfo"

// =============================================================================
// DETECTOR
// =============================================================================

// Options configures a Detector. Zero fields take the defaults noted below.
type Options struct {
	// Runner executes probe commands. Default: ExecRunner.
	Runner Runner
	// OSFamily selects the driver table. Default: HostOSFamily().
	OSFamily OSFamily
	// NvidiaSmiPaths are tried in order. Default depends on OSFamily.
	NvidiaSmiPaths []string
	// VulkanInfoCommand is the Vulkan probe. Default: "vulkaninfo".
	VulkanInfoCommand string
	// Timeout bounds each probe. Default: DefaultProbeTimeout.
	Timeout time.Duration
	// SkipCUDA disables the NVIDIA driver probe.
	SkipCUDA bool
	// SkipVulkan disables the Vulkan probe.
	SkipVulkan bool
	// ProbeROCm enables the hipconfig probe. Off by default.
	ProbeROCm bool
	// HIPConfigCommand is the ROCm probe. Default: "hipconfig".
	HIPConfigCommand string
}

// Detector probes the system for compatible computation backends.
// A Detector holds no mutable state and is safe for concurrent use.
type Detector struct {
	opts Options
}

// New returns a Detector with defaults filled in.
func New(opts Options) *Detector {
	if opts.Runner == nil {
		opts.Runner = ExecRunner{}
	}
	if opts.OSFamily == "" {
		opts.OSFamily = HostOSFamily()
	}
	if len(opts.NvidiaSmiPaths) == 0 {
		opts.NvidiaSmiPaths = defaultNvidiaSmiPaths(opts.OSFamily)
	} else {
		opts.NvidiaSmiPaths = slices.Clone(opts.NvidiaSmiPaths)
	}
	if opts.VulkanInfoCommand == "" {
		opts.VulkanInfoCommand = DefaultVulkanInfoCommand
	}
	if opts.HIPConfigCommand == "" {
		opts.HIPConfigCommand = DefaultHIPConfigCommand
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultProbeTimeout
	}
	return &Detector{opts: opts}
}

// OSFamily returns the family whose driver table the detector uses.
func (d *Detector) OSFamily() OSFamily {
	return d.opts.OSFamily
}

// run executes one probe under the per-probe timeout.
func (d *Detector) run(ctx context.Context, name string, args ...string) (Result, error) {
	ctx, cancel := context.WithTimeout(ctx, d.opts.Timeout)
	defer cancel()
	return d.opts.Runner.Run(ctx, name, args...)
}

// =============================================================================
// REPORT
// =============================================================================

// Report is the outcome of one detection run.
type Report struct {
	// ID identifies the run in logs and saved reports.
	ID string `json:"id"`
	// DetectedAt is when the run finished.
	DetectedAt time.Time `json:"detected_at"`
	// OSFamily is the family used for the driver table.
	OSFamily OSFamily `json:"os_family"`
	// DriverVersion is the NVIDIA driver version as reported, if any.
	DriverVersion string `json:"driver_version,omitempty"`
	// CUDA lists the compatible CUDA backends, newest first.
	CUDA []backend.Backend `json:"cuda"`
	// Vulkan holds the detected Vulkan backend, if any.
	Vulkan []backend.Backend `json:"vulkan"`
	// ROCm holds the detected ROCm backend when the probe is enabled.
	ROCm []backend.Backend `json:"rocm,omitempty"`
	// Backends is the union of every probe's backends and CPU.
	Backends backend.Set `json:"backends"`
}

// Report runs the enabled probes concurrently and assembles the result.
// CANCELLATION: Context enables timeout and cancellation
func (d *Detector) Report(ctx context.Context) *Report {
	report := &Report{
		ID:       uuid.NewString(),
		OSFamily: d.opts.OSFamily,
		CUDA:     []backend.Backend{},
		Vulkan:   []backend.Backend{},
	}

	// Probes swallow their own failures, so the group never returns an error.
	g, gctx := errgroup.WithContext(ctx)
	if !d.opts.SkipCUDA {
		g.Go(func() error {
			driver, cuda := d.detectCUDA(gctx)
			report.DriverVersion = driver
			report.CUDA = append(report.CUDA, cuda...)
			return nil
		})
	}
	if !d.opts.SkipVulkan {
		g.Go(func() error {
			report.Vulkan = append(report.Vulkan, d.VulkanBackends(gctx)...)
			return nil
		})
	}
	if d.opts.ProbeROCm {
		g.Go(func() error {
			report.ROCm = d.ROCmBackends(gctx)
			return nil
		})
	}
	_ = g.Wait()

	report.Backends = backend.NewSet(report.CUDA...)
	report.Backends.Add(report.Vulkan...)
	report.Backends.Add(report.ROCm...)
	report.Backends.Add(backend.CPU())
	report.DetectedAt = time.Now().UTC()

	Logger().Debug("detection finished", "id", report.ID, "backends", report.Backends.String())
	return report
}

// Detect returns the set of compatible backends. CPU is always included.
// CANCELLATION: Context enables timeout and cancellation
func (d *Detector) Detect(ctx context.Context) backend.Set {
	return d.Report(ctx).Backends
}

// =============================================================================
// PACKAGE-LEVEL HELPERS
// =============================================================================

// DetectCompatibleBackends detects backends on this machine with default options.
func DetectCompatibleBackends() backend.Set {
	return DetectCompatibleBackendsWithContext(context.Background())
}

// DetectCompatibleBackendsWithContext is DetectCompatibleBackends with context support.
// CANCELLATION: Context enables timeout and cancellation
func DetectCompatibleBackendsWithContext(ctx context.Context) backend.Set {
	return New(Options{}).Detect(ctx)
}
