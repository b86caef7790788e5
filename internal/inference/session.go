// Package inference wraps an ONNX Runtime graph behind a small named/shaped
// tensor contract, the way tts.Synthesizer wraps sherpa-onnx's offline TTS
// handle: load once, cache the declared I/O shape, run many times.
package inference

import (
	"fmt"
	"sync"
	"time"

	ort "github.com/shota3506/onnxruntime-purego"
)

// TensorSpec describes one of a graph's declared inputs or outputs.
type TensorSpec struct {
	Name  string
	Shape []int64
}

// Config controls how a Session is constructed.
type Config struct {
	ModelPath      string // mutually exclusive with ModelBytes
	ModelBytes     []byte
	IntraOpThreads int // 0 = runtime default
	InterOpThreads int
	Provider       string // "", "cpu", "cuda", "coreml" — see provider_*.go
}

// Session owns one loaded graph and its runtime handle. Safe for concurrent
// Run calls; the underlying onnxruntime session is itself safe for
// concurrent inference per its own documentation.
type Session struct {
	ortSession *ort.Session
	inputs     []TensorSpec
	outputs    []TensorSpec

	statsMu sync.Mutex
	stats   latencyStats
}

type latencyStats struct {
	count  int64
	sumMS  float64
	minMS  float64
	maxMS  float64
}

// Stats is the {count, mean_ms, min_ms, max_ms} snapshot spec.md §4.5 asks
// statistics to be emitted as.
type Stats struct {
	Count  int64
	MeanMS float64
	MinMS  float64
	MaxMS  float64
}

// Load builds a Session from cfg. Exactly one of cfg.ModelPath or
// cfg.ModelBytes must be set.
func Load(cfg Config) (*Session, error) {
	opts := ort.NewSessionOptions()
	defer opts.Close()
	if cfg.IntraOpThreads > 0 {
		opts.SetIntraOpNumThreads(cfg.IntraOpThreads)
	}
	if cfg.InterOpThreads > 0 {
		opts.SetInterOpNumThreads(cfg.InterOpThreads)
	}
	if err := applyProvider(opts, cfg.Provider); err != nil {
		return nil, fmt.Errorf("inference: provider %q: %w", cfg.Provider, err)
	}

	var (
		ortSess *ort.Session
		err     error
	)
	switch {
	case len(cfg.ModelBytes) > 0:
		ortSess, err = ort.NewSessionFromBuffer(cfg.ModelBytes, opts)
	case cfg.ModelPath != "":
		ortSess, err = ort.NewSession(cfg.ModelPath, opts)
	default:
		return nil, fmt.Errorf("inference: neither ModelPath nor ModelBytes set")
	}
	if err != nil {
		return nil, fmt.Errorf("inference: load graph: %w", err)
	}

	s := &Session{ortSession: ortSess}
	for _, in := range ortSess.Inputs() {
		s.inputs = append(s.inputs, TensorSpec{Name: in.Name, Shape: in.Shape})
	}
	for _, out := range ortSess.Outputs() {
		s.outputs = append(s.outputs, TensorSpec{Name: out.Name, Shape: out.Shape})
	}
	return s, nil
}

// InputInfo returns the graph's declared inputs, in declaration order.
func (s *Session) InputInfo() []TensorSpec { return append([]TensorSpec(nil), s.inputs...) }

// OutputInfo returns the graph's declared outputs, in declaration order.
func (s *Session) OutputInfo() []TensorSpec { return append([]TensorSpec(nil), s.outputs...) }

// Close releases the underlying runtime handle.
func (s *Session) Close() error {
	if s.ortSession == nil {
		return nil
	}
	return s.ortSession.Close()
}

// hasPitchInput reports whether the graph declares a fourth input, per the
// §4.5 input contract's conditional pitch slot.
func (s *Session) hasPitchInput() bool { return len(s.inputs) >= 4 }

// RunTTS executes the acoustic model with the §4.5 input contract:
// tokens [1,T] int64, style [1,D] float32, speed [1] float32, and pitch
// [1] float32 only if the graph declares a fourth input. The first declared
// output is flattened to a float32 sample buffer.
func (s *Session) RunTTS(tokens []int64, style []float32, speed float32, pitch float32) ([]float32, error) {
	start := time.Now()
	out, err := s.run(tokens, style, speed, pitch)
	s.recordLatency(time.Since(start))
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Session) run(tokens []int64, style []float32, speed float32, pitch float32) ([]float32, error) {
	if len(s.inputs) < 3 {
		return nil, fmt.Errorf("inference: graph declares %d inputs, need at least 3", len(s.inputs))
	}

	tokensTensor, err := ort.NewInt64Tensor([]int64{1, int64(len(tokens))}, tokens)
	if err != nil {
		return nil, fmt.Errorf("inference: tokens tensor: %w", err)
	}
	defer tokensTensor.Close()

	styleTensor, err := ort.NewFloat32Tensor([]int64{1, int64(len(style))}, style)
	if err != nil {
		return nil, fmt.Errorf("inference: style tensor: %w", err)
	}
	defer styleTensor.Close()

	speedTensor, err := ort.NewFloat32Tensor([]int64{1}, []float32{speed})
	if err != nil {
		return nil, fmt.Errorf("inference: speed tensor: %w", err)
	}
	defer speedTensor.Close()

	inputs := map[string]ort.Value{
		s.inputs[0].Name: tokensTensor,
		s.inputs[1].Name: styleTensor,
		s.inputs[2].Name: speedTensor,
	}
	if s.hasPitchInput() {
		pitchTensor, err := ort.NewFloat32Tensor([]int64{1}, []float32{pitch})
		if err != nil {
			return nil, fmt.Errorf("inference: pitch tensor: %w", err)
		}
		defer pitchTensor.Close()
		inputs[s.inputs[3].Name] = pitchTensor
	}

	results, err := s.ortSession.Run(inputs)
	if err != nil {
		return nil, fmt.Errorf("inference: run: %w", err)
	}
	if len(s.outputs) == 0 {
		return nil, fmt.Errorf("inference: graph declares no outputs")
	}
	out, ok := results[s.outputs[0].Name]
	if !ok {
		return nil, fmt.Errorf("inference: output %q missing from results", s.outputs[0].Name)
	}
	samples, ok := out.Float32Data()
	if !ok {
		return nil, fmt.Errorf("inference: output %q is not float32", s.outputs[0].Name)
	}
	return samples, nil
}

// RunPhonemizer executes a secondary graph (component C's neural G2P
// fallback) with a single int64 token-id input and a single int64 output,
// per spec.md §4.3 step 3.
func (s *Session) RunPhonemizer(ids []int64) ([]int64, error) {
	start := time.Now()
	out, err := s.runPhonemizer(ids)
	s.recordLatency(time.Since(start))
	return out, err
}

func (s *Session) runPhonemizer(ids []int64) ([]int64, error) {
	if len(s.inputs) == 0 || len(s.outputs) == 0 {
		return nil, fmt.Errorf("inference: phonemizer graph missing declared I/O")
	}
	idsTensor, err := ort.NewInt64Tensor([]int64{1, int64(len(ids))}, ids)
	if err != nil {
		return nil, fmt.Errorf("inference: ids tensor: %w", err)
	}
	defer idsTensor.Close()

	results, err := s.ortSession.Run(map[string]ort.Value{s.inputs[0].Name: idsTensor})
	if err != nil {
		return nil, fmt.Errorf("inference: run: %w", err)
	}
	out, ok := results[s.outputs[0].Name]
	if !ok {
		return nil, fmt.Errorf("inference: output %q missing from results", s.outputs[0].Name)
	}
	decoded, ok := out.Int64Data()
	if !ok {
		return nil, fmt.Errorf("inference: output %q is not int64", s.outputs[0].Name)
	}
	return decoded, nil
}

// Warmup runs a dummy inference with a 10-token sequence and a zero-valued
// style vector of the declared dimension, then resets latency stats, per
// spec.md §4.5.
func (s *Session) Warmup() error {
	dim := 1
	if len(s.inputs) >= 2 && len(s.inputs[1].Shape) == 2 && s.inputs[1].Shape[1] > 0 {
		dim = int(s.inputs[1].Shape[1])
	}
	dummyTokens := make([]int64, 10)
	dummyStyle := make([]float32, dim)
	if _, err := s.RunTTS(dummyTokens, dummyStyle, 1.0, 0.0); err != nil {
		return fmt.Errorf("inference: warmup: %w", err)
	}
	s.statsMu.Lock()
	s.stats = latencyStats{}
	s.statsMu.Unlock()
	return nil
}

func (s *Session) recordLatency(d time.Duration) {
	ms := float64(d) / float64(time.Millisecond)
	s.statsMu.Lock()
	defer s.statsMu.Unlock()
	if s.stats.count == 0 {
		s.stats.minMS = ms
		s.stats.maxMS = ms
	} else {
		if ms < s.stats.minMS {
			s.stats.minMS = ms
		}
		if ms > s.stats.maxMS {
			s.stats.maxMS = ms
		}
	}
	s.stats.count++
	s.stats.sumMS += ms
}

// Stats returns the current {count, mean_ms, min_ms, max_ms} snapshot.
func (s *Session) Stats() Stats {
	s.statsMu.Lock()
	defer s.statsMu.Unlock()
	mean := 0.0
	if s.stats.count > 0 {
		mean = s.stats.sumMS / float64(s.stats.count)
	}
	return Stats{Count: s.stats.count, MeanMS: mean, MinMS: s.stats.minMS, MaxMS: s.stats.maxMS}
}
