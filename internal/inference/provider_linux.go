//go:build linux

package inference

import (
	"fmt"
	"os"
	"strings"

	ort "github.com/shota3506/onnxruntime-purego"
)

// applyProvider configures opts for the requested execution provider. ""
// resolves to DefaultProvider().
func applyProvider(opts *ort.SessionOptions, provider string) error {
	if provider == "" {
		provider = DefaultProvider()
	}
	switch provider {
	case "cpu":
		return nil
	case "cuda":
		return opts.AppendExecutionProviderCUDA()
	default:
		return fmt.Errorf("unsupported provider %q on linux", provider)
	}
}

// DefaultProvider returns "cuda" if an NVIDIA GPU is likely available,
// otherwise "cpu".
func DefaultProvider() string {
	if HasNvidiaGPU() {
		return "cuda"
	}
	return "cpu"
}

// AvailableProviders returns the list of providers this platform can select.
func AvailableProviders() []string { return []string{"cpu", "cuda"} }

// HasNvidiaGPU checks for NVIDIA GPU availability on Linux, including
// Jetson SOC devices (Nano, Orin, AGX, etc.).
func HasNvidiaGPU() bool {
	nvidiaSmiPaths := []string{
		"/usr/bin/nvidia-smi",
		"/usr/local/bin/nvidia-smi",
		"/opt/nvidia/bin/nvidia-smi",
	}
	for _, path := range nvidiaSmiPaths {
		if fileExists(path) {
			return true
		}
	}
	if fileExists("/dev/nvidia0") {
		return true
	}
	jetsonIndicators := []string{
		"/dev/nvhost-gpu",
		"/dev/nvhost-ctrl-gpu",
		"/dev/nvmap",
		"/etc/nv_tegra_release",
		"/sys/devices/gpu.0",
		"/sys/devices/17000000.ga10b",
		"/sys/devices/17000000.gv11b",
	}
	for _, path := range jetsonIndicators {
		if fileExists(path) {
			return true
		}
	}
	if data, err := os.ReadFile("/proc/device-tree/compatible"); err == nil {
		compatible := string(data)
		if strings.Contains(compatible, "nvidia,tegra") || strings.Contains(compatible, "nvidia,jetson") {
			return true
		}
	}
	return false
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
