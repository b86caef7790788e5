package g2p

import (
	"testing"

	"github.com/kotoba-labs/kotoba-tts/internal/segment"
)

func TestResolverFallsBackThroughCascade(t *testing.T) {
	dict := NewDictionary()
	dict.AddScalar("すし", []string{"su", "ʃi"})
	r := NewResolver(dict, nil)

	// Scalar dictionary hit.
	ph, ok := r.ResolveMorpheme(segment.Morpheme{Surface: "すし"}, "")
	if !ok {
		t.Fatalf("expected scalar dictionary hit")
	}
	if ph[0] != "su" || ph[1] != "ʃi" {
		t.Fatalf("unexpected phonemes %v", ph)
	}

	// No dictionary entry, has a reading: falls to kana-rule.
	ph, ok = r.ResolveMorpheme(segment.Morpheme{Surface: "寿司", Reading: "スシ"}, "")
	if !ok {
		t.Fatalf("expected kana-rule fallback to succeed")
	}
	if ph[0] != "su" || ph[1] != "ʃi" {
		t.Fatalf("unexpected phonemes %v", ph)
	}

	// No dictionary entry, no reading: falls all the way to surface-rule.
	ph, ok = r.ResolveMorpheme(segment.Morpheme{Surface: "犬"}, "")
	if !ok {
		t.Fatalf("expected surface-rule to always produce a result")
	}
	if ph[0] != "犬" {
		t.Fatalf("expected unmapped kanji to pass through unchanged, got %v", ph)
	}

	dictHits, neuralFallbacks, total := r.Stats()
	if dictHits != 1 {
		t.Fatalf("dictHits = %d, want 1", dictHits)
	}
	if neuralFallbacks != 0 {
		t.Fatalf("neuralFallbacks = %d, want 0", neuralFallbacks)
	}
	if total != 3 {
		t.Fatalf("totalMorphemes = %d, want 3", total)
	}
}

func TestResolverEmptySurfaceYieldsEmptyOutput(t *testing.T) {
	r := NewResolver(nil, nil)
	_, ok := r.ResolveMorpheme(segment.Morpheme{Surface: ""}, "")
	if ok {
		t.Fatalf("expected empty surface to fail to resolve")
	}
}

func TestResolveTextJoinsAndPostProcesses(t *testing.T) {
	r := NewResolver(nil, nil)
	morphemes := []segment.Morpheme{
		{Surface: "ガッコウ", Reading: "ガッコウ"},
	}
	got := r.ResolveText(morphemes, "")
	want := "ga kko u"
	if got != want {
		t.Fatalf("ResolveText = %q, want %q", got, want)
	}
}

func TestResolveTextEmptyInputYieldsEmptyOutput(t *testing.T) {
	r := NewResolver(nil, nil)
	if got := r.ResolveText(nil, ""); got != "" {
		t.Fatalf("ResolveText(nil) = %q, want empty", got)
	}
}

func TestDictDisambiguatedPrefersMatchingReadingAndPOS(t *testing.T) {
	dict := NewDictionary()
	dict.AddDisambiguated("行く", Entry{Reading: "イク", POS: "verb", Phonemes: []string{"i", "ku"}})
	dict.AddDisambiguated("行く", Entry{Reading: "ユク", POS: "verb", Phonemes: []string{"ju", "ku"}})

	r := NewResolver(dict, nil)
	ph, ok := r.ResolveMorpheme(segment.Morpheme{Surface: "行く", Reading: "ユク", POS: "verb"}, "")
	if !ok {
		t.Fatalf("expected disambiguated match")
	}
	if ph[0] != "ju" {
		t.Fatalf("unexpected disambiguated phonemes %v, want ユク entry", ph)
	}
}

func TestDictDisambiguatedPrefersMatchingContext(t *testing.T) {
	dict := NewDictionary()
	dict.AddDisambiguated("橋", Entry{Context: "川", Phonemes: []string{"ha", "ʃi"}})
	dict.AddDisambiguated("橋", Entry{Context: "将棋", Phonemes: []string{"ha", "ɕi"}})

	r := NewResolver(dict, nil)
	ph, ok := r.ResolveMorpheme(segment.Morpheme{Surface: "橋"}, "川に橋をかける")
	if !ok {
		t.Fatalf("expected disambiguated match")
	}
	if ph[1] != "ʃi" {
		t.Fatalf("unexpected disambiguated phonemes %v, want the 川-context entry", ph)
	}

	ph, ok = r.ResolveMorpheme(segment.Morpheme{Surface: "橋"}, "将棋の駒を橋にたとえる")
	if !ok {
		t.Fatalf("expected disambiguated match")
	}
	if ph[1] != "ɕi" {
		t.Fatalf("unexpected disambiguated phonemes %v, want the 将棋-context entry", ph)
	}
}

func TestDictDisambiguatedFallsBackToFirstCandidate(t *testing.T) {
	dict := NewDictionary()
	dict.AddDisambiguated("行く", Entry{Reading: "イク", POS: "verb", Phonemes: []string{"i", "ku"}})

	r := NewResolver(dict, nil)
	ph, ok := r.ResolveMorpheme(segment.Morpheme{Surface: "行く", Reading: "ナシ", POS: "noun"}, "")
	if !ok {
		t.Fatalf("expected fallback to the only candidate")
	}
	if ph[0] != "i" {
		t.Fatalf("unexpected phonemes %v", ph)
	}
}
