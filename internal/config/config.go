// Package config parses command-line flags into an engine.Config, the way
// the teacher's internal/config turns flags into its own Config: sensible
// defaults under a model directory, flag overrides, then a validation pass
// that stats the files the engine will need to load.
package config

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/kotoba-labs/kotoba-tts/internal/engine"
	"github.com/kotoba-labs/kotoba-tts/internal/inference"
)

// DefaultConfig returns an engine.Config with sensible defaults rooted at
// ~/.kotoba-tts/models, matching the teacher's ~/.voice-assistant/models
// convention.
func DefaultConfig() engine.Config {
	homeDir, _ := os.UserHomeDir()
	modelDir := filepath.Join(homeDir, ".kotoba-tts", "models")

	return engine.Config{
		KokoroModelPath:       filepath.Join(modelDir, "kokoro", "model.onnx"),
		PhonemizerModelPath:   "",
		DictionaryPath:        filepath.Join(modelDir, "jmdict", "JMdict_e"),
		TokenizerVocabPath:    filepath.Join(modelDir, "kokoro", "tokens.json"),
		VoicesDir:             filepath.Join(modelDir, "voices"),
		MaxConcurrentRequests: 0,
		EnableGPU:             detectProvider() != "cpu",
		EnableCache:           true,
		MaxCacheSizeMB:        100,
		CacheTTLSeconds:       0,
		TargetSampleRate:      24000,
		NormalizeAudio:        true,
		EnableMecab:           true,
		NormalizeText:         true,
	}
}

// Options bundles an engine.Config with the ambient CLI-only flag (verbose
// logging) that doesn't belong on the engine surface itself.
type Options struct {
	Engine  engine.Config
	Verbose bool
}

// ParseFlags parses command-line flags into Options. requireModels controls
// whether model/voice paths are validated to exist (callers exercising the
// engine against real artifacts); cmd/synthctl always passes true.
func ParseFlags(requireModels bool) (*Options, error) {
	cfg := DefaultConfig()
	opts := &Options{Engine: cfg}

	modelDir := flag.String("model-dir", "", "base directory containing kokoro/, jmdict/, voices/ (overrides individual path flags)")
	flag.StringVar(&opts.Engine.KokoroModelPath, "kokoro-model", opts.Engine.KokoroModelPath, "path to the Kokoro acoustic model graph (model.onnx)")
	flag.StringVar(&opts.Engine.PhonemizerModelPath, "phonemizer-model", opts.Engine.PhonemizerModelPath, "path to the neural phonemizer model graph (optional)")
	flag.StringVar(&opts.Engine.DictionaryPath, "dictionary", opts.Engine.DictionaryPath, "path to the JMdict dictionary file (optional)")
	flag.StringVar(&opts.Engine.TokenizerVocabPath, "tokenizer-vocab", opts.Engine.TokenizerVocabPath, "path to the phoneme vocabulary file")
	flag.StringVar(&opts.Engine.VoicesDir, "voices-dir", opts.Engine.VoicesDir, "directory of voice JSON descriptors")

	flag.IntVar(&opts.Engine.MaxConcurrentRequests, "max-concurrent-requests", opts.Engine.MaxConcurrentRequests, "worker pool size (0 = hardware concurrency)")
	flag.BoolVar(&opts.Engine.EnableGPU, "enable-gpu", opts.Engine.EnableGPU, "use a GPU execution provider if available")
	flag.BoolVar(&opts.Engine.EnableCache, "enable-cache", opts.Engine.EnableCache, "enable the fingerprint result cache")
	flag.IntVar(&opts.Engine.MaxCacheSizeMB, "max-cache-size-mb", opts.Engine.MaxCacheSizeMB, "result cache byte ceiling, in MiB")
	flag.IntVar(&opts.Engine.CacheTTLSeconds, "cache-ttl-seconds", opts.Engine.CacheTTLSeconds, "cache entry TTL in seconds (0 = no expiry)")
	flag.IntVar(&opts.Engine.TargetSampleRate, "target-sample-rate", opts.Engine.TargetSampleRate, "nominal output sample rate")
	flag.BoolVar(&opts.Engine.NormalizeAudio, "normalize-audio", opts.Engine.NormalizeAudio, "peak-normalize output samples to 0.95")
	flag.BoolVar(&opts.Engine.EnableMecab, "enable-mecab", opts.Engine.EnableMecab, "use the kagome morphological analyzer instead of the fallback segmenter")
	flag.BoolVar(&opts.Engine.NormalizeText, "normalize-text", opts.Engine.NormalizeText, "fold full-width ASCII and ideographic spaces before segmentation")

	flag.BoolVar(&opts.Verbose, "verbose", opts.Verbose, "enable verbose logging")

	flag.Parse()

	if *modelDir != "" {
		opts.Engine.KokoroModelPath = filepath.Join(*modelDir, "kokoro", "model.onnx")
		opts.Engine.TokenizerVocabPath = filepath.Join(*modelDir, "kokoro", "tokens.json")
		opts.Engine.DictionaryPath = filepath.Join(*modelDir, "jmdict", "JMdict_e")
		opts.Engine.VoicesDir = filepath.Join(*modelDir, "voices")
	}

	if requireModels {
		if err := validate(opts.Engine); err != nil {
			return nil, err
		}
	}

	return opts, nil
}

// validate stats the files the engine will need at Initialize time, so a
// missing model surfaces before the (comparatively slow) graph load rather
// than during it.
func validate(cfg engine.Config) error {
	required := []string{cfg.KokoroModelPath, cfg.TokenizerVocabPath}
	for _, path := range required {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return fmt.Errorf("required file not found: %s", path)
		}
	}
	if _, err := os.Stat(cfg.VoicesDir); os.IsNotExist(err) {
		return fmt.Errorf("voices directory not found: %s", cfg.VoicesDir)
	}
	return nil
}

// detectProvider auto-detects the best execution provider for the current
// platform, reusing internal/inference's platform-specific GPU detection
// (provider_linux.go / provider_darwin.go) the way the teacher's own
// detectProvider reused internal/sherpa's.
func detectProvider() string { return inference.DefaultProvider() }
