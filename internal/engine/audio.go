package engine

import (
	"github.com/go-audio/audio"

	vecmath "github.com/cwbudde/algo-vecmath"
)

// toFloatBuffer wraps a raw sample slice in go-audio/audio's canonical
// float buffer type, the container SynthesisResult.Audio.Samples carries
// from here on: the engine's public output, not just an internal
// scratch value discarded before returning.
func toFloatBuffer(samples []float32, sampleRate int) *audio.FloatBuffer {
	data := make([]float64, len(samples))
	for i, s := range samples {
		data[i] = float64(s)
	}
	return &audio.FloatBuffer{
		Data:   data,
		Format: &audio.Format{NumChannels: 1, SampleRate: sampleRate},
	}
}

// sampleCount reports the number of samples buf carries, or 0 for nil.
func sampleCount(buf *audio.FloatBuffer) int {
	if buf == nil {
		return 0
	}
	return len(buf.Data)
}

// cloneFloatBuffer returns a value copy of buf whose Data slice is
// independently owned, the audio.FloatBuffer analogue of cloneResult's
// slice copies — a cache entry must never alias a caller's buffer.
func cloneFloatBuffer(buf *audio.FloatBuffer) *audio.FloatBuffer {
	if buf == nil {
		return nil
	}
	format := *buf.Format
	return &audio.FloatBuffer{
		Data:   append([]float64(nil), buf.Data...),
		Format: &format,
	}
}

// postProcessSamples implements spec.md §4.6 step 10: multiply by
// volume, then (if normalize is requested and the buffer isn't silent)
// scale so the peak sample reaches 0.95, then clamp to [-1,1] — using
// algo-vecmath's vector primitives rather than a hand-rolled loop per
// sample, the way the CWBudde-go-pocket-tts manifest pairs an
// ONNX-driven model with this package for its own sample post-processing.
func postProcessSamples(samples []float32, volume float32, normalize bool) []float32 {
	out := append([]float32(nil), samples...)
	vecmath.ScaleInPlace(out, volume)

	if normalize {
		if peak := vecmath.Peak(out); peak > 0 {
			vecmath.ScaleInPlace(out, 0.95/peak)
		}
	}

	vecmath.ClampInPlace(out, -1.0, 1.0)
	return out
}
