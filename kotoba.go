// Package kotoba is the public facade over the synthesis pipeline: a thin
// re-export of internal/engine.Engine plus the request/result/voice types a
// caller needs, so external code never reaches into internal/ directly
// (cmd/synthctl imports internal/ only for its flag layer, internal/config).
// The actual control flow — G2P cascade, inference
// session, worker pool, cache, single-flight — lives in internal/engine and
// its sibling packages; this file only narrows the surface spec.md §6 asks
// a binding to expose.
package kotoba

import (
	"github.com/kotoba-labs/kotoba-tts/internal/engine"
	"github.com/kotoba-labs/kotoba-tts/internal/errs"
	"github.com/kotoba-labs/kotoba-tts/internal/segment"
	"github.com/kotoba-labs/kotoba-tts/internal/voice"
)

// Config is the recognized option set from spec.md §6's create_engine.
type Config = engine.Config

// Engine owns every loaded collaborator (vocabulary, segmenter, resolver,
// voices, inference sessions) plus the orchestrator's cache, worker pool,
// and statistics. The zero value is not usable; build one with New.
type Engine = engine.Engine

// Request is a synthesis request, per spec.md §3.
type Request = engine.SynthesisRequest

// Result is a synthesis result, per spec.md §3.
type Result = engine.SynthesisResult

// AudioData is the waveform payload of a Result.
type AudioData = engine.AudioData

// PhonemeSpan pairs a resolved phoneme symbol with its position.
type PhonemeSpan = engine.PhonemeSpan

// Handle is returned by SynthesizeAsync; it resolves to a *Result.
type Handle = engine.Handle

// Voice is a loaded voice descriptor, per spec.md §3.
type Voice = voice.Voice

// Morpheme is one unit produced by SegmentText.
type Morpheme = segment.Morpheme

// CacheStats is the cache_stats() snapshot from spec.md §6.
type CacheStats = engine.CacheStats

// PerformanceStats is the performance_stats() snapshot from spec.md §6.
type PerformanceStats = engine.PerformanceStats

// Kind is the error taxonomy from spec.md §7.
type Kind = errs.Kind

// New builds an Engine bound to cfg. Call Initialize before synthesizing.
func New(cfg Config) *Engine { return engine.New(cfg) }
