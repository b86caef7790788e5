// Package engine implements the Request Orchestrator: the synchronous
// synthesis pipeline, its worker pool, fingerprint cache, single-flight
// dedup, and statistics, per spec.md §4.6 and §5.
package engine

import "github.com/go-audio/audio"

// SynthesisRequest is the engine's public input, per spec.md §3.
type SynthesisRequest struct {
	Text             string
	VoiceID          string
	Speed            float32 // 0.5-2.0
	Pitch            float32 // 0.5-2.0
	Volume           float32 // 0.0-1.0
	PhonemesOverride string  // when non-empty, skips G2P entirely
	NormalizeText    bool
	UseCache         bool
	Priority         int // reserved; does not reorder the queue
}

// PhonemeSpan pairs a phoneme symbol with its position in the resolved
// sequence, per spec.md §3's `phonemes: sequence<{symbol, position}>`.
type PhonemeSpan struct {
	Symbol   string
	Position int
}

// AudioData is the waveform payload of a SynthesisResult. Samples is a
// go-audio/audio float buffer (values in [-1,1]) rather than a bare
// []float32, per spec.md §5's data model.
type AudioData struct {
	Samples    *audio.FloatBuffer
	SampleRate int
	Channels   int
	DurationMS float64
}

// Stage timings captured per request, per spec.md §4.6's "timing each
// stage" requirement.
type StageTimings struct {
	PhonemizationMS float64
	TokenizationMS  float64
	InferenceMS     float64
	AudioPostMS     float64
}

// SynthesisResult is the engine's public output, per spec.md §3.
type SynthesisResult struct {
	Status       string
	Audio        AudioData
	Phonemes     []PhonemeSpan
	TokenIDs     []int
	Stats        StageTimings
	ErrorMessage string
	CacheHit     bool
}

// cloneResult returns a value copy of r whose slices are independently
// owned, so a cached entry handed back to one caller can't be mutated by
// another — cache entries must never alias a caller's buffer.
func cloneResult(r *SynthesisResult) *SynthesisResult {
	if r == nil {
		return nil
	}
	clone := *r
	clone.Audio.Samples = cloneFloatBuffer(r.Audio.Samples)
	clone.Phonemes = append([]PhonemeSpan(nil), r.Phonemes...)
	clone.TokenIDs = append([]int(nil), r.TokenIDs...)
	return &clone
}
