// Package g2p converts Japanese morphemes to IPA-flavored phoneme symbol
// sequences through the ordered cascade described in spec.md §4.3:
// dictionary-with-disambiguation, scalar dictionary, neural fallback,
// kana-rule transliteration, and finally a surface-level last resort.
package g2p

import (
	"strings"
	"sync/atomic"

	"github.com/kotoba-labs/kotoba-tts/internal/segment"
)

// strategy is the single capability every cascade step implements, rather
// than one interface per step — the same "inheritance-free polymorphism"
// shape the chain itself exposes.
type strategy interface {
	resolve(m segment.Morpheme, context string) ([]string, bool)
}

// Resolver runs a morpheme through the ordered strategy chain and
// accumulates the statistics spec.md §4.3 asks for.
type Resolver struct {
	chain []strategy

	dictHits        atomic.Int64
	neuralFallbacks atomic.Int64
	totalMorphemes  atomic.Int64
}

// NewResolver builds the full five-step cascade. dict may be an empty
// *Dictionary (no entries loaded); neural may be nil (no phonemizer
// model configured) — both degrade to "no match" rather than erroring.
func NewResolver(dict *Dictionary, neural *NeuralG2P) *Resolver {
	if dict == nil {
		dict = NewDictionary()
	}
	r := &Resolver{}
	r.chain = []strategy{
		&dictDisambiguatedStrategy{dict: dict, hits: &r.dictHits},
		&dictScalarStrategy{dict: dict, hits: &r.dictHits},
		&neuralStrategy{neural: neural, fallbacks: &r.neuralFallbacks},
		&kanaRuleStrategy{},
		&surfaceRuleStrategy{},
	}
	return r
}

// ResolveMorpheme runs m through the cascade, returning the first
// strategy's result to match. The surface-rule last resort always
// produces a result for non-empty input, so false is only returned for an
// empty surface.
func (r *Resolver) ResolveMorpheme(m segment.Morpheme, context string) ([]string, bool) {
	r.totalMorphemes.Add(1)
	if m.Surface == "" {
		return nil, false
	}
	for _, s := range r.chain {
		if ph, ok := s.resolve(m, context); ok {
			return ph, true
		}
	}
	return nil, false
}

// ResolveText resolves every morpheme in order, joins their phoneme
// sequences with single spaces, and applies the §4.3 post-processing pass
// (whitespace collapse, trim, geminate realization).
func (r *Resolver) ResolveText(morphemes []segment.Morpheme, context string) string {
	var parts []string
	for _, m := range morphemes {
		if ph, ok := r.ResolveMorpheme(m, context); ok {
			parts = append(parts, ph...)
		}
	}
	if len(parts) == 0 {
		return ""
	}
	return PostProcess(strings.Join(parts, " "))
}

// Stats reports the dictionary-hit, neural-fallback, and total-morpheme
// counters spec.md §4.3 asks to be exposed.
func (r *Resolver) Stats() (dictHits, neuralFallbacks, totalMorphemes int64) {
	return r.dictHits.Load(), r.neuralFallbacks.Load(), r.totalMorphemes.Load()
}

// dictDisambiguatedStrategy is cascade step 1.
type dictDisambiguatedStrategy struct {
	dict *Dictionary
	hits *atomic.Int64
}

func (s *dictDisambiguatedStrategy) resolve(m segment.Morpheme, context string) ([]string, bool) {
	ph, ok := s.dict.LookupDisambiguated(m.Surface, m.Reading, m.POS, context)
	if ok {
		s.hits.Add(1)
	}
	return ph, ok
}

// dictScalarStrategy is cascade step 2.
type dictScalarStrategy struct {
	dict *Dictionary
	hits *atomic.Int64
}

func (s *dictScalarStrategy) resolve(m segment.Morpheme, _ string) ([]string, bool) {
	ph, ok := s.dict.LookupScalar(m.Surface)
	if ok {
		s.hits.Add(1)
	}
	return ph, ok
}

// neuralStrategy is cascade step 3. A nil neural model always declines.
type neuralStrategy struct {
	neural    *NeuralG2P
	fallbacks *atomic.Int64
}

func (s *neuralStrategy) resolve(m segment.Morpheme, _ string) ([]string, bool) {
	if s.neural == nil {
		return nil, false
	}
	ph, ok := s.neural.Resolve(m.Surface)
	if ok {
		s.fallbacks.Add(1)
	}
	return ph, ok
}

// kanaRuleStrategy is cascade step 4: transliterate the morpheme's
// reading, when it has one.
type kanaRuleStrategy struct{}

func (kanaRuleStrategy) resolve(m segment.Morpheme, _ string) ([]string, bool) {
	if m.Reading == "" {
		return nil, false
	}
	return ToPhonemes(m.Reading), true
}

// surfaceRuleStrategy is cascade step 5, the unconditional last resort:
// transliterate the surface text directly, passing through anything the
// kana table doesn't cover (kanji, ASCII, punctuation) unchanged.
type surfaceRuleStrategy struct{}

func (surfaceRuleStrategy) resolve(m segment.Morpheme, _ string) ([]string, bool) {
	return ToPhonemes(m.Surface), true
}
