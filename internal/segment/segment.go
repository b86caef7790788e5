// Package segment turns Japanese text into an ordered sequence of
// morphemes, either via a kagome morphological analyzer (primary mode) or
// a script-boundary fallback segmenter that requires no dictionary.
package segment

import (
	"unicode"

	"golang.org/x/text/width"
)

// Morpheme is the minimal unit produced by segmentation.
type Morpheme struct {
	Surface       string
	Reading       string // katakana reading; may be empty
	Pronunciation string
	POS           string
	BaseForm      string
}

// Segmenter produces morphemes from Japanese text, optionally backed by a
// kagome morphological analyzer (see kagome.go for NewWithDictionary).
type Segmenter struct {
	analyzer       analyzer
	normalizeByDef bool
}

// analyzer is the capability the primary mode and the fallback mode both
// implement, per the spec's {primary, fallback} variant set.
type analyzer interface {
	Parse(text string) ([]Morpheme, error)
}

// New returns a Segmenter using only the fallback script-boundary
// segmenter (no morphological dictionary configured).
func New() *Segmenter {
	return &Segmenter{analyzer: fallbackAnalyzer{}, normalizeByDef: true}
}

// SetNormalizeByDefault records the segmenter's default normalization
// setting. Segment does not consult it: Segment normalizes only when its
// normalize argument is true.
func (s *Segmenter) SetNormalizeByDefault(on bool) { s.normalizeByDef = on }

// Segment splits text into morphemes, pre-normalizing it first unless
// normalize is false.
func (s *Segmenter) Segment(text string, normalize bool) ([]Morpheme, error) {
	if normalize {
		text = Normalize(text)
	}
	if text == "" {
		return nil, nil
	}
	return s.analyzer.Parse(text)
}

// Normalize folds full-width ASCII (U+FF01..U+FF5E) to half-width and the
// ideographic space (U+3000) to a regular space, using golang.org/x/text's
// canonical width-folding transform rather than a hand-rolled rune table.
func Normalize(text string) string {
	folded := width.Fold.String(text)
	runes := []rune(folded)
	for i, r := range runes {
		if r == 0x3000 {
			runes[i] = 0x20
		}
	}
	return string(runes)
}

// ContainsKanji reports whether s has at least one CJK ideograph.
func ContainsKanji(s string) bool {
	for _, r := range s {
		if isKanji(r) {
			return true
		}
	}
	return false
}

// IsPureHiragana reports whether every rune in s is Hiragana.
func IsPureHiragana(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !isHiragana(r) {
			return false
		}
	}
	return true
}

// IsPureKatakana reports whether every rune in s is Katakana.
func IsPureKatakana(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !isKatakana(r) {
			return false
		}
	}
	return true
}

func isHiragana(r rune) bool { return r >= 0x3040 && r <= 0x309F }
func isKatakana(r rune) bool { return r >= 0x30A0 && r <= 0x30FF }
func isKanji(r rune) bool    { return r >= 0x4E00 && r <= 0x9FAF }

// HiraganaToKatakana shifts each Hiragana rune to its Katakana counterpart.
func HiraganaToKatakana(s string) string {
	runes := []rune(s)
	for i, r := range runes {
		if isHiragana(r) {
			runes[i] = r + 0x60
		}
	}
	return string(runes)
}

// KatakanaToHiragana shifts each Katakana rune (in the range shared with
// Hiragana) back to its Hiragana counterpart.
func KatakanaToHiragana(s string) string {
	runes := []rune(s)
	for i, r := range runes {
		if r >= 0x30A1 && r <= 0x30F6 {
			runes[i] = r - 0x60
		}
	}
	return string(runes)
}

func scriptClass(r rune) int {
	switch {
	case isHiragana(r):
		return classHiragana
	case isKatakana(r):
		return classKatakana
	case isKanji(r):
		return classKanji
	case unicode.IsPunct(r) || (r < 0x80 && !unicode.IsLetter(r) && !unicode.IsDigit(r)):
		return classPunct
	default:
		return classOther
	}
}

const (
	classHiragana = iota
	classKatakana
	classKanji
	classPunct
	classOther
)

// fallbackAnalyzer implements the §4.2 script-boundary segmenter: a new
// morpheme starts on every transition among {Hiragana, Katakana, Kanji,
// punctuation/ASCII}, and every punctuation codepoint is emitted as its
// own morpheme with POS="symbol".
type fallbackAnalyzer struct{}

func (fallbackAnalyzer) Parse(text string) ([]Morpheme, error) {
	runes := []rune(text)
	var morphemes []Morpheme
	var current []rune
	currentClass := -1

	flush := func() {
		if len(current) == 0 {
			return
		}
		morphemes = append(morphemes, morphemeFor(string(current), currentClass))
		current = nil
	}

	for _, r := range runes {
		cls := scriptClass(r)
		if cls == classPunct {
			flush()
			morphemes = append(morphemes, morphemeFor(string(r), classPunct))
			currentClass = -1
			continue
		}
		if cls != currentClass {
			flush()
			currentClass = cls
		}
		current = append(current, r)
	}
	flush()
	return morphemes, nil
}

func morphemeFor(surface string, class int) Morpheme {
	m := Morpheme{Surface: surface, BaseForm: surface}
	switch class {
	case classPunct:
		m.POS = "symbol"
	case classHiragana:
		m.Reading = HiraganaToKatakana(surface)
		m.Pronunciation = m.Reading
	case classKatakana:
		m.Reading = surface
		m.Pronunciation = surface
	case classKanji:
		// Reading left empty; the G2P resolver copes via its own cascade.
	}
	return m
}
