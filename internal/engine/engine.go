package engine

import (
	"context"
	"fmt"
	"log"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/kotoba-labs/kotoba-tts/internal/errs"
	"github.com/kotoba-labs/kotoba-tts/internal/g2p"
	"github.com/kotoba-labs/kotoba-tts/internal/inference"
	"github.com/kotoba-labs/kotoba-tts/internal/segment"
	"github.com/kotoba-labs/kotoba-tts/internal/vocab"
	"github.com/kotoba-labs/kotoba-tts/internal/voice"
)

// Config is the recognized option set from spec.md §6's create_engine.
type Config struct {
	KokoroModelPath      string
	PhonemizerModelPath  string // optional; "" disables the neural G2P fallback
	DictionaryPath       string // optional JMdict path; "" skips dictionary loading
	TokenizerVocabPath   string
	VoicesDir            string
	MaxConcurrentRequests int // 0 = hardware concurrency
	EnableGPU            bool
	EnableCache          bool
	MaxCacheSizeMB       int
	CacheTTLSeconds      int
	TargetSampleRate     int // nominal; the model fixes the actual rate
	NormalizeAudio       bool
	EnableMecab          bool
	NormalizeText        bool
}

// Engine owns every piece of mutable and loaded state for one synthesis
// pipeline instance — no package-level globals, per spec.md §9's "global
// mutable state" design note.
type Engine struct {
	cfg Config

	initMu      sync.Mutex
	initialized atomic.Bool

	vocabulary *vocab.Vocabulary
	segmenter  *segment.Segmenter
	resolver   *g2p.Resolver
	voices     *voice.Registry
	session    *inference.Session
	phonemizer *inference.Session

	cache *Cache
	pool  *Pool
	sf    singleflight.Group
	stats *statsTracker

	handleMu sync.Mutex
	handles  map[int64]*Handle
	nextID   atomic.Int64
}

// New allocates an Engine bound to cfg. Call Initialize before use.
func New(cfg Config) *Engine {
	return &Engine{cfg: cfg, stats: newStatsTracker(), handles: make(map[int64]*Handle)}
}

// IsInitialized reports whether Initialize has completed successfully.
func (e *Engine) IsInitialized() bool { return e.initialized.Load() }

// Initialize loads every read-only collaborator once — vocabulary,
// segmenter, dictionary/resolver, voices, inference session — then
// starts the worker pool, per spec.md §3's lifecycle note.
func (e *Engine) Initialize() error {
	e.initMu.Lock()
	defer e.initMu.Unlock()
	if e.initialized.Load() {
		return nil
	}

	v, err := vocab.LoadFile(e.cfg.TokenizerVocabPath)
	if err != nil {
		return errs.Wrap(errs.InitializationFailed, err, "load tokenizer vocabulary")
	}
	e.vocabulary = v

	if e.cfg.EnableMecab {
		e.segmenter = segment.NewWithDictionary()
	} else {
		e.segmenter = segment.New()
	}
	e.segmenter.SetNormalizeByDefault(e.cfg.NormalizeText)

	dict := g2p.NewDictionary()
	if e.cfg.DictionaryPath != "" {
		loaded, err := g2p.LoadJMdict(e.cfg.DictionaryPath)
		if err != nil {
			log.Printf("⚠️  [g2p] failed to load dictionary %s: %v (continuing without it)", e.cfg.DictionaryPath, err)
		} else {
			dict = loaded
		}
	}

	sess, err := inference.Load(inference.Config{
		ModelPath:      e.cfg.KokoroModelPath,
		Provider:       e.providerName(),
		IntraOpThreads: 0,
		InterOpThreads: 0,
	})
	if err != nil {
		return errs.Wrap(errs.InitializationFailed, err, "load acoustic model %s", e.cfg.KokoroModelPath)
	}
	e.session = sess

	var neural *g2p.NeuralG2P
	if e.cfg.PhonemizerModelPath != "" {
		phSess, charVocab, phonemeVocab, err := loadPhonemizer(e.cfg.PhonemizerModelPath, e.providerName())
		if err != nil {
			log.Printf("⚠️  [g2p] failed to load phonemizer model %s: %v (neural fallback disabled)", e.cfg.PhonemizerModelPath, err)
		} else {
			e.phonemizer = phSess
			neural = g2p.NewNeuralG2P(phSess, charVocab, phonemeVocab, 64)
		}
	}
	e.resolver = g2p.NewResolver(dict, neural)

	styleDim := 0
	if inputs := sess.InputInfo(); len(inputs) >= 2 && len(inputs[1].Shape) == 2 {
		styleDim = int(inputs[1].Shape[1])
	}
	e.voices = voice.NewRegistry(styleDim)
	if e.cfg.VoicesDir != "" {
		loaded, failures := e.voices.LoadDir(e.cfg.VoicesDir)
		log.Printf("🗣️  [voices] loaded %d voice(s) from %s (%d failure(s))", loaded, e.cfg.VoicesDir, len(failures))
		for _, f := range failures {
			log.Printf("⚠️  [voices] %v", f)
		}
	}

	maxBytes := int64(e.cfg.MaxCacheSizeMB) * 1024 * 1024
	if maxBytes <= 0 {
		maxBytes = 100 * 1024 * 1024
	}
	e.cache = NewCache(maxBytes, 0, time.Duration(e.cfg.CacheTTLSeconds)*time.Second)

	workers := e.cfg.MaxConcurrentRequests
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	e.pool = NewPool(workers, workers*4)
	e.pool.Start(context.Background())

	e.initialized.Store(true)
	return nil
}

// Shutdown stops accepting new requests, drains the queue (cancelling
// what hasn't started), joins workers, and releases the inference
// sessions, per spec.md §4.6/§5.
func (e *Engine) Shutdown() error {
	if !e.initialized.Load() {
		return nil
	}
	e.pool.Shutdown()
	var firstErr error
	if e.session != nil {
		if err := e.session.Close(); err != nil {
			firstErr = err
		}
	}
	if e.phonemizer != nil {
		if err := e.phonemizer.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	e.initialized.Store(false)
	return firstErr
}

// Synthesize runs the synchronous pipeline of spec.md §4.6.
func (e *Engine) Synthesize(req SynthesisRequest) *SynthesisResult {
	if !e.initialized.Load() {
		return errorResult(errs.NotInitialized, "engine not initialized")
	}
	if req.Text == "" && req.PhonemesOverride == "" {
		return errorResult(errs.InvalidInput, "text must not be empty")
	}

	fp := fingerprint(req)
	if req.UseCache {
		if cached, ok := e.cache.Get(fp); ok {
			cached.CacheHit = true
			return cached
		}
	}

	v, err, _ := e.sf.Do(fp, func() (any, error) {
		return e.computeSynthesis(req), nil
	})
	if err != nil {
		// computeSynthesis never returns an error value; this path is
		// unreachable but kept for singleflight's signature.
		return errorResult(errs.Unknown, err.Error())
	}
	result := cloneResult(v.(*SynthesisResult))
	if req.UseCache && result.Status == statusOK {
		e.cache.Put(fp, result)
	}
	return result
}

const statusOK = "OK"

func (e *Engine) computeSynthesis(req SynthesisRequest) *SynthesisResult {
	start := time.Now()
	var timings StageTimings

	text := req.Text
	if req.NormalizeText {
		text = segment.Normalize(text)
	}

	var phonemeStr string
	if req.PhonemesOverride != "" {
		phonemeStr = req.PhonemesOverride
	} else {
		t0 := time.Now()
		morphemes, err := e.segmenter.Segment(text, false)
		if err != nil {
			return e.finish(errorResult(errs.Unknown, err.Error()), start)
		}
		phonemeStr = e.resolver.ResolveText(morphemes, text)
		timings.PhonemizationMS = msSince(t0)
	}

	t1 := time.Now()
	phonemeSymbols := splitPhonemes(phonemeStr)
	tokenIDs, spans := e.tokenize(phonemeSymbols)
	timings.TokenizationMS = msSince(t1)

	v, ok := e.voices.Get(req.VoiceID)
	if !ok {
		result := errorResult(errs.VoiceNotFound, fmt.Sprintf("voice not found: %s", req.VoiceID))
		return e.finish(result, start)
	}

	t2 := time.Now()
	ids64 := make([]int64, len(tokenIDs))
	for i, id := range tokenIDs {
		ids64[i] = int64(id)
	}
	samples, err := e.session.RunTTS(ids64, v.StyleVector, req.Speed*v.DefaultSpeed, req.Pitch*v.DefaultPitch)
	timings.InferenceMS = msSince(t2)
	if err != nil {
		result := errorResult(errs.InferenceFailed, err.Error())
		return e.finish(result, start)
	}

	t3 := time.Now()
	sampleRate := e.sampleRate()
	processed := postProcessSamples(samples, req.Volume, e.cfg.NormalizeAudio)
	buf := toFloatBuffer(processed, sampleRate)
	timings.AudioPostMS = msSince(t3)

	result := &SynthesisResult{
		Status: statusOK,
		Audio: AudioData{
			Samples:    buf,
			SampleRate: sampleRate,
			Channels:   1,
			DurationMS: 1000 * float64(len(processed)) / float64(sampleRate),
		},
		Phonemes: spans,
		TokenIDs: tokenIDs,
		Stats:    timings,
	}
	return e.finish(result, start)
}

func (e *Engine) finish(result *SynthesisResult, start time.Time) *SynthesisResult {
	e.stats.recordRequest(result.Status == statusOK, msSince(start))
	return result
}

func (e *Engine) tokenize(symbols []string) ([]int, []PhonemeSpan) {
	ids := make([]int, 0, len(symbols)+2)
	spans := make([]PhonemeSpan, 0, len(symbols))
	ids = append(ids, vocab.BOS)
	for i, sym := range symbols {
		ids = append(ids, e.vocabulary.IDOf(sym))
		spans = append(spans, PhonemeSpan{Symbol: sym, Position: i})
	}
	ids = append(ids, vocab.EOS)
	return ids, spans
}

func (e *Engine) sampleRate() int {
	if e.cfg.TargetSampleRate > 0 {
		return e.cfg.TargetSampleRate
	}
	return 24000
}

func (e *Engine) providerName() string {
	if !e.cfg.EnableGPU {
		return "cpu"
	}
	return ""
}

func splitPhonemes(s string) []string {
	var out []string
	field := make([]byte, 0, 8)
	flush := func() {
		if len(field) > 0 {
			out = append(out, string(field))
			field = field[:0]
		}
	}
	for i := 0; i < len(s); i++ {
		if s[i] == ' ' {
			flush()
			continue
		}
		field = append(field, s[i])
	}
	flush()
	return out
}

func msSince(t time.Time) float64 { return float64(time.Since(t)) / float64(time.Millisecond) }

func errorResult(kind errs.Kind, msg string) *SynthesisResult {
	return &SynthesisResult{Status: kind.String(), ErrorMessage: msg}
}

// SynthesizeAsync enqueues req onto the worker pool and returns a handle
// resolving to the same result type as Synthesize, per spec.md §6.
func (e *Engine) SynthesizeAsync(req SynthesisRequest) (*Handle, error) {
	if !e.initialized.Load() {
		return nil, errs.New(errs.NotInitialized, "engine not initialized")
	}
	return e.pool.Submit(func() *SynthesisResult { return e.Synthesize(req) })
}

// Submit is the opaque-id flavor of SynthesizeAsync from spec.md §6:
// submit(request) -> id, paired with Cancel(id)/IsComplete(id).
func (e *Engine) Submit(req SynthesisRequest) (int64, error) {
	h, err := e.SynthesizeAsync(req)
	if err != nil {
		return 0, err
	}
	id := e.nextID.Add(1)
	e.handleMu.Lock()
	e.handles[id] = h
	e.handleMu.Unlock()
	return id, nil
}

// Cancel cancels the task behind id, if it hasn't started yet.
func (e *Engine) Cancel(id int64) {
	e.handleMu.Lock()
	h, ok := e.handles[id]
	e.handleMu.Unlock()
	if ok {
		h.Cancel()
	}
}

// IsComplete reports whether id's result is ready.
func (e *Engine) IsComplete(id int64) bool {
	e.handleMu.Lock()
	h, ok := e.handles[id]
	e.handleMu.Unlock()
	if !ok {
		return false
	}
	return h.IsComplete()
}

// Result blocks for id's result.
func (e *Engine) Result(id int64) (*SynthesisResult, bool) {
	e.handleMu.Lock()
	h, ok := e.handles[id]
	e.handleMu.Unlock()
	if !ok {
		return nil, false
	}
	return h.Wait(), true
}

// LoadVoice loads a single voice descriptor file at runtime.
func (e *Engine) LoadVoice(path string) error { return e.voices.LoadFile(path) }

// GetVoice returns the voice registered under id.
func (e *Engine) GetVoice(id string) (*voice.Voice, bool) { return e.voices.Get(id) }

// ListVoices returns every loaded voice.
func (e *Engine) ListVoices() []*voice.Voice { return e.voices.List() }

// SetDefaultVoice overrides the default voice id.
func (e *Engine) SetDefaultVoice(id string) error { return e.voices.SetDefault(id) }

// GetDefaultVoiceID returns the registry's current default voice id, or ""
// if none has been loaded.
func (e *Engine) GetDefaultVoiceID() string { return e.voices.GetDefaultID() }

// ClearCache empties the result cache.
func (e *Engine) ClearCache() { e.cache.Clear() }

// CacheStats returns the current cache statistics snapshot.
func (e *Engine) CacheStats() CacheStats { return e.cache.Stats() }

// PerformanceStats returns the current request/latency statistics
// snapshot.
func (e *Engine) PerformanceStats() PerformanceStats { return e.stats.snapshot() }

// Warmup triggers Inference Session warmup; a no-op if no graph is
// loaded.
func (e *Engine) Warmup() error {
	if e.session == nil {
		return nil
	}
	return e.session.Warmup()
}

// TextToPhonemes runs the segmenter+resolver cascade over text without
// performing a full synthesis.
func (e *Engine) TextToPhonemes(text string) (string, error) {
	if !e.initialized.Load() {
		return "", errs.New(errs.NotInitialized, "engine not initialized")
	}
	morphemes, err := e.segmenter.Segment(text, e.cfg.NormalizeText)
	if err != nil {
		return "", err
	}
	return e.resolver.ResolveText(morphemes, text), nil
}

// PhonemesToTokens tokenizes a space-separated phoneme string.
func (e *Engine) PhonemesToTokens(phonemes string) []int {
	ids, _ := e.tokenize(splitPhonemes(phonemes))
	return ids
}

// NormalizeText applies the Segmenter's text normalizer.
func (e *Engine) NormalizeText(text string) string { return segment.Normalize(text) }

// SegmentText runs only the morphological segmentation stage.
func (e *Engine) SegmentText(text string) ([]segment.Morpheme, error) {
	if !e.initialized.Load() {
		return nil, errs.New(errs.NotInitialized, "engine not initialized")
	}
	return e.segmenter.Segment(text, e.cfg.NormalizeText)
}

// loadPhonemizer loads the secondary phonemizer graph plus its sidecar
// character/phoneme vocabularies, per spec.md §9's design note that
// these must be artifact-loaded rather than hard-coded.
func loadPhonemizer(modelPath, provider string) (*inference.Session, *vocab.Vocabulary, *vocab.Vocabulary, error) {
	sess, err := inference.Load(inference.Config{ModelPath: modelPath, Provider: provider})
	if err != nil {
		return nil, nil, nil, err
	}
	charVocab, err := vocab.LoadFile(modelPath + ".chars.json")
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load phonemizer character vocabulary: %w", err)
	}
	phonemeVocab, err := vocab.LoadFile(modelPath + ".phonemes.json")
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load phonemizer phoneme vocabulary: %w", err)
	}
	return sess, charVocab, phonemeVocab, nil
}
