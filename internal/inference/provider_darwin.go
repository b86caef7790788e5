//go:build darwin

package inference

import (
	"fmt"

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
	case "coreml":
		return opts.AppendExecutionProviderCoreML()
	default:
		return fmt.Errorf("unsupported provider %q on darwin", provider)
	}
}

// DefaultProvider returns "coreml": Apple's Neural Engine via CoreML.
func DefaultProvider() string { return "coreml" }

// AvailableProviders returns the list of providers this platform can select.
func AvailableProviders() []string { return []string{"cpu", "coreml"} }

// HasNvidiaGPU always returns false on macOS.
func HasNvidiaGPU() bool { return false }
