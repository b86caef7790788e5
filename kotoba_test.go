package kotoba

import "testing"

func TestNewReturnsUninitializedEngine(t *testing.T) {
	e := New(Config{})
	if e.IsInitialized() {
		t.Fatal("a freshly built Engine must not report initialized")
	}
}

func TestSynthesizeBeforeInitializeReturnsNotInitialized(t *testing.T) {
	e := New(Config{})
	result := e.Synthesize(Request{Text: "こんにちは", VoiceID: "jf_alpha"})
	if result.Status != "NotInitialized" {
		t.Fatalf("status = %q, want NotInitialized", result.Status)
	}
}
