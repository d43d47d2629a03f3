// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package detect

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/cbdetect/internal/backend"
)

// =============================================================================
// FAKE RUNNER
// =============================================================================

type fakeResponse struct {
	stdout string
	err    error
}

// fakeRunner answers commands by name. Unknown commands behave like a
// missing executable.
type fakeRunner struct {
	mu        sync.Mutex
	responses map[string]fakeResponse
	calls     []string
}

func newFakeRunner(responses map[string]fakeResponse) *fakeRunner {
	return &fakeRunner{responses: responses}
}

func (f *fakeRunner) Run(ctx context.Context, name string, args ...string) (Result, error) {
	f.mu.Lock()
	f.calls = append(f.calls, name)
	f.mu.Unlock()

	resp, ok := f.responses[name]
	if !ok {
		return Result{ExitCode: -1}, fmt.Errorf("run %s: %w", name, exec.ErrNotFound)
	}
	if resp.err != nil {
		return Result{Stdout: resp.stdout, ExitCode: 1}, resp.err
	}
	return Result{Stdout: resp.stdout}, nil
}

func (f *fakeRunner) called() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

const nvidiaSmiCSV = "driver_version\n550.54.14\n"

// =============================================================================
// ASSEMBLY TESTS
// =============================================================================

func TestDetect_LinuxDriver550(t *testing.T) {
	runner := newFakeRunner(map[string]fakeResponse{
		"nvidia-smi": {stdout: nvidiaSmiCSV},
	})
	d := New(Options{Runner: runner, OSFamily: OSLinux})

	set := d.Detect(context.Background())

	require.True(t, set.Contains(backend.CPU()))
	for _, spec := range []string{"cu120", "cu121", "cu124", "cu126", "cu129", "cu118", "cu110", "cu80"} {
		assert.True(t, set.ContainsSpecifier(spec), "expected %s in %s", spec, set)
	}
	assert.False(t, set.ContainsSpecifier("cu130"))
	assert.False(t, set.ContainsSpecifier("cu131"))
	assert.Empty(t, set.OfKind(backend.KindVulkan))

	// 25 CUDA versions at or below 12.9 plus CPU.
	assert.Equal(t, 26, set.Len())
}

func TestDetect_NothingAvailable(t *testing.T) {
	d := New(Options{Runner: newFakeRunner(nil), OSFamily: OSLinux})

	set := d.Detect(context.Background())
	assert.True(t, set.Equal(backend.NewSet(backend.CPU())), "got %s", set)
}

func TestDetect_VulkanOnly(t *testing.T) {
	runner := newFakeRunner(map[string]fakeResponse{
		"vulkaninfo": {stdout: "==========\nVULKANINFO\n==========\n\nVulkan Instance Version: 1.3.204\n"},
	})
	d := New(Options{Runner: runner, OSFamily: OSLinux})

	set := d.Detect(context.Background())
	assert.Equal(t, []string{"cpu", "vulkan1.3"}, set.Specifiers())
}

func TestDetect_CUDAAndVulkan(t *testing.T) {
	runner := newFakeRunner(map[string]fakeResponse{
		"nvidia-smi": {stdout: "driver_version\n580.65.06\n"},
		"vulkaninfo": {stdout: "Vulkan Instance Version: 1.4.303\n"},
	})
	d := New(Options{Runner: runner, OSFamily: OSLinux})

	report := d.Report(context.Background())
	assert.NotEmpty(t, report.ID)
	assert.False(t, report.DetectedAt.IsZero())
	assert.Equal(t, OSLinux, report.OSFamily)
	assert.Equal(t, "580.65.06", report.DriverVersion)
	require.NotEmpty(t, report.CUDA)
	assert.Equal(t, "cu131", report.CUDA[0].Specifier())
	require.Len(t, report.Vulkan, 1)
	assert.Equal(t, "vulkan1.4", report.Vulkan[0].Specifier())

	assert.True(t, report.Backends.ContainsSpecifier("cu130"))
	assert.True(t, report.Backends.ContainsSpecifier("vulkan1.4"))
	assert.True(t, report.Backends.ContainsSpecifier("cpu"))
	assert.Equal(t, len(report.CUDA)+2, report.Backends.Len())
}

func TestDetect_SkipProbes(t *testing.T) {
	runner := newFakeRunner(map[string]fakeResponse{
		"nvidia-smi": {stdout: nvidiaSmiCSV},
		"vulkaninfo": {stdout: "Vulkan Instance Version: 1.3.204\n"},
	})
	d := New(Options{Runner: runner, OSFamily: OSLinux, SkipCUDA: true, SkipVulkan: true})

	set := d.Detect(context.Background())
	assert.Equal(t, []string{"cpu"}, set.Specifiers())
	assert.Empty(t, runner.called())
}

// =============================================================================
// CUDA PROBE TESTS
// =============================================================================

func TestCUDABackends_ProbeFailures(t *testing.T) {
	tests := []struct {
		name     string
		response *fakeResponse
	}{
		{"missing executable", nil},
		{"non-zero exit", &fakeResponse{stdout: "NVIDIA-SMI has failed\n", err: errors.New("exit status 9")}},
		{"unparseable version", &fakeResponse{stdout: "driver_version\nN/A\n"}},
		{"header only", &fakeResponse{stdout: "driver_version\n"}},
		{"empty output", &fakeResponse{stdout: ""}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			responses := map[string]fakeResponse{}
			if tc.response != nil {
				responses["nvidia-smi"] = *tc.response
			}
			d := New(Options{Runner: newFakeRunner(responses), OSFamily: OSLinux})
			assert.Empty(t, d.CUDABackends(context.Background()))
		})
	}
}

func TestCUDABackends_UnknownOSFamily(t *testing.T) {
	runner := newFakeRunner(map[string]fakeResponse{"nvidia-smi": {stdout: nvidiaSmiCSV}})
	d := New(Options{Runner: runner, OSFamily: OSDarwin})

	report := d.Report(context.Background())
	assert.Empty(t, report.CUDA)
	assert.Equal(t, "550.54.14", report.DriverVersion)
	assert.Equal(t, []string{"cpu"}, report.Backends.Specifiers())
}

func TestCUDABackends_WindowsTable(t *testing.T) {
	runner := newFakeRunner(map[string]fakeResponse{"nvidia-smi": {stdout: "driver_version\n528.33\n"}})
	d := New(Options{Runner: runner, OSFamily: OSWindows})

	cuda := d.CUDABackends(context.Background())
	set := backend.NewSet(cuda...)
	assert.True(t, set.ContainsSpecifier("cu129"))
	assert.True(t, set.ContainsSpecifier("cu120"))
	assert.False(t, set.ContainsSpecifier("cu130"))
}

func TestCUDABackends_WindowsFallbackPaths(t *testing.T) {
	fallback := `C:\Program Files\NVIDIA Corporation\NVSMI\nvidia-smi.exe`
	runner := newFakeRunner(map[string]fakeResponse{fallback: {stdout: "driver_version\n452.39\n"}})
	d := New(Options{Runner: runner, OSFamily: OSWindows})

	cuda := d.CUDABackends(context.Background())
	require.NotEmpty(t, cuda)
	assert.Equal(t, "cu118", cuda[0].Specifier())
	assert.Equal(t, []string{
		"nvidia-smi",
		`C:\Windows\System32\nvidia-smi.exe`,
		fallback,
	}, runner.called())
}

func TestCUDABackends_MultiGPUUsesLastLine(t *testing.T) {
	runner := newFakeRunner(map[string]fakeResponse{
		"nvidia-smi": {stdout: "driver_version\r\n440.33\r\n440.33\r\n"},
	})
	d := New(Options{Runner: runner, OSFamily: OSLinux})

	cuda := d.CUDABackends(context.Background())
	assert.Equal(t, "cu102", cuda[0].Specifier())
	assert.Len(t, cuda, 7) // 10.2, 10.1, 10.0, 9.2, 9.1, 9.0, 8.0
}

func TestCompatibleCUDABackends(t *testing.T) {
	assert.Nil(t, CompatibleCUDABackends(nil, OSLinux))

	driver, err := parseDriverVersion("450.80.02")
	require.NoError(t, err)

	got := CompatibleCUDABackends(driver, OSLinux)
	require.NotEmpty(t, got)
	assert.Equal(t, "cu118", got[0].Specifier())
	assert.Equal(t, "cu80", got[len(got)-1].Specifier())

	// Exactly at the threshold counts as compatible; just below does not.
	below, err := parseDriverVersion("450.80.01")
	require.NoError(t, err)
	assert.Equal(t, "cu110", CompatibleCUDABackends(below, OSLinux)[0].Specifier())

	assert.Nil(t, CompatibleCUDABackends(driver, "Plan9"))
}

// =============================================================================
// VULKAN PROBE TESTS
// =============================================================================

func TestParseVulkanInfo(t *testing.T) {
	tests := []struct {
		output string
		want   string
	}{
		{"Vulkan Instance Version: 1.3.204\n", "vulkan1.3"},
		{"Vulkan Instance Version: 1.2.162", "vulkan1.2"},
		{"Vulkan Instance Version:1", "vulkan1.0"},
		{"header\nVulkan Instance Version: 1.1.0\nVulkan Instance Version: 1.3.0\n", "vulkan1.1"},
		{"GPU0: llvmpipe\n", "vulkan"},
		{"", "vulkan"},
	}

	for _, tc := range tests {
		assert.Equal(t, tc.want, parseVulkanInfo(tc.output).Specifier(), "output %q", tc.output)
	}
}

func TestVulkanBackends_Failure(t *testing.T) {
	runner := newFakeRunner(map[string]fakeResponse{
		"vulkaninfo": {stdout: "Vulkan Instance Version: 1.3.204\n", err: errors.New("exit status 1")},
	})
	d := New(Options{Runner: runner, OSFamily: OSLinux})
	assert.Empty(t, d.VulkanBackends(context.Background()))
}

func TestVulkanBackends_SuccessWithoutVersion(t *testing.T) {
	runner := newFakeRunner(map[string]fakeResponse{"vk-info": {stdout: "no version here\n"}})
	d := New(Options{Runner: runner, OSFamily: OSLinux, VulkanInfoCommand: "vk-info"})

	got := d.VulkanBackends(context.Background())
	require.Len(t, got, 1)
	assert.Equal(t, "vulkan", got[0].Specifier())
}

// =============================================================================
// ROCM TESTS
// =============================================================================

func TestDetect_ROCmOptIn(t *testing.T) {
	responses := map[string]fakeResponse{
		"hipconfig":  {stdout: "6.0.32830-d62f6a171\n"},
		"vulkaninfo": {stdout: "Vulkan Instance Version: 1.3.204\n"},
	}

	runner := newFakeRunner(responses)
	off := New(Options{Runner: runner, OSFamily: OSLinux}).Report(context.Background())
	assert.Empty(t, off.ROCm)
	assert.NotContains(t, runner.called(), "hipconfig")

	on := New(Options{Runner: newFakeRunner(responses), OSFamily: OSLinux, ProbeROCm: true}).Report(context.Background())
	require.Len(t, on.ROCm, 1)
	assert.Equal(t, "rocm6.0", on.ROCm[0].Specifier())
	assert.Equal(t, []string{"cpu", "rocm6.0", "vulkan1.3"}, on.Backends.Specifiers())
}

func TestROCmBackends_Failure(t *testing.T) {
	runner := newFakeRunner(map[string]fakeResponse{
		"hipconfig": {stdout: "6.0.32830\n", err: errors.New("exit status 1")},
	})
	d := New(Options{Runner: runner, OSFamily: OSLinux, ProbeROCm: true})
	assert.Empty(t, d.ROCmBackends(context.Background()))

	d = New(Options{Runner: newFakeRunner(nil), OSFamily: OSLinux, ProbeROCm: true})
	assert.Empty(t, d.ROCmBackends(context.Background()))
}

func TestParseHIPVersion(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"6.0.32830-d62f6a171", "rocm6.0", true},
		{"5.7.31921-d1770ee1b\n", "rocm5.7", true},
		{"HIP version: noise\n6.2.41133-dd7f95766\n", "rocm6.2", true},
		{"unknown", "", false},
		{"", "", false},
	}

	for _, tc := range tests {
		got, ok := parseHIPVersion(tc.in)
		assert.Equal(t, tc.ok, ok, "parseHIPVersion(%q)", tc.in)
		if tc.ok {
			assert.Equal(t, tc.want, got.Specifier())
		}
	}
}

// =============================================================================
// OPTIONS / CANCELLATION TESTS
// =============================================================================

func TestNew_Defaults(t *testing.T) {
	d := New(Options{OSFamily: OSLinux})
	assert.IsType(t, ExecRunner{}, d.opts.Runner)
	assert.Equal(t, []string{"nvidia-smi"}, d.opts.NvidiaSmiPaths)
	assert.Equal(t, DefaultVulkanInfoCommand, d.opts.VulkanInfoCommand)
	assert.Equal(t, DefaultProbeTimeout, d.opts.Timeout)
	assert.Equal(t, DefaultHIPConfigCommand, d.opts.HIPConfigCommand)
	assert.False(t, d.opts.ProbeROCm)
	assert.Equal(t, OSLinux, d.OSFamily())

	assert.Equal(t, HostOSFamily(), New(Options{}).OSFamily())
}

func TestDetect_ProbeTimeoutApplied(t *testing.T) {
	runner := RunnerFunc(func(ctx context.Context, name string, args ...string) (Result, error) {
		<-ctx.Done()
		return Result{ExitCode: -1}, ctx.Err()
	})
	d := New(Options{Runner: runner, OSFamily: OSLinux, Timeout: 20 * time.Millisecond})

	done := make(chan struct{})
	go func() {
		d.Detect(context.Background())
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Detect should return once probes time out")
	}
}

func TestDetect_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	runner := RunnerFunc(func(ctx context.Context, name string, args ...string) (Result, error) {
		return Result{ExitCode: -1}, ctx.Err()
	})
	d := New(Options{Runner: runner, OSFamily: OSWindows})

	set := d.Detect(ctx)
	assert.Equal(t, []string{"cpu"}, set.Specifiers())
}

// =============================================================================
// EXEC RUNNER TESTS
// =============================================================================

func TestExecRunner_MissingExecutable(t *testing.T) {
	res, err := ExecRunner{}.Run(context.Background(), "cbdetect-no-such-tool-7f3a")
	require.Error(t, err)
	assert.ErrorIs(t, err, exec.ErrNotFound)
	assert.Equal(t, -1, res.ExitCode)
}
