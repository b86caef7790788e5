package config

import "testing"

func TestDefaultConfigRootsPathsUnderModelDir(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.KokoroModelPath == "" {
		t.Fatal("KokoroModelPath must not be empty")
	}
	if cfg.TokenizerVocabPath == "" {
		t.Fatal("TokenizerVocabPath must not be empty")
	}
	if cfg.VoicesDir == "" {
		t.Fatal("VoicesDir must not be empty")
	}
	if !cfg.EnableCache {
		t.Fatal("EnableCache should default to true")
	}
	if cfg.TargetSampleRate != 24000 {
		t.Fatalf("TargetSampleRate = %d, want 24000", cfg.TargetSampleRate)
	}
}

func TestValidateReportsMissingFiles(t *testing.T) {
	cfg := DefaultConfig()
	cfg.KokoroModelPath = "/nonexistent/path/model.onnx"
	cfg.VoicesDir = "/nonexistent/path/voices"
	if err := validate(cfg); err == nil {
		t.Fatal("expected validate to report the missing kokoro model path")
	}
}

func TestDetectProviderReturnsNonEmptyProvider(t *testing.T) {
	if got := detectProvider(); got == "" {
		t.Fatal("detectProvider must return a non-empty provider name")
	}
}
