package g2p

import (
	"reflect"
	"testing"
)

func TestToPhonemesPlainSyllables(t *testing.T) {
	got := ToPhonemes("スシ")
	want := []string{"su", "ʃi"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("ToPhonemes(スシ) = %v, want %v", got, want)
	}
}

func TestToPhonemesYouonCombo(t *testing.T) {
	got := ToPhonemes("キョウ")
	want := []string{"kjo", "u"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("ToPhonemes(キョウ) = %v, want %v", got, want)
	}
}

func TestToPhonemesChoonpuRepeatsVowel(t *testing.T) {
	got := ToPhonemes("ラーメン")
	want := []string{"ra", "a", "me", "ɴ"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("ToPhonemes(ラーメン) = %v, want %v", got, want)
	}
}

func TestToPhonemesSokuonEmitsQMarker(t *testing.T) {
	got := ToPhonemes("ガッコウ")
	want := []string{"ga", "q", "ko", "u"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("ToPhonemes(ガッコウ) = %v, want %v", got, want)
	}
}

func TestToPhonemesFoldsHiraganaFirst(t *testing.T) {
	got := ToPhonemes("すし")
	want := ToPhonemes("スシ")
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("hiragana/katakana mismatch: %v vs %v", got, want)
	}
}

func TestToPhonemesPassesThroughUnmappedRunes(t *testing.T) {
	got := ToPhonemes("漢A")
	want := []string{"漢", "A"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("ToPhonemes(漢A) = %v, want %v", got, want)
	}
}

func TestPostProcessCollapsesWhitespace(t *testing.T) {
	got := PostProcess("  ka   shi \t tsu  ")
	want := "ka shi tsu"
	if got != want {
		t.Fatalf("PostProcess = %q, want %q", got, want)
	}
}

func TestPostProcessRealizesGeminate(t *testing.T) {
	got := PostProcess("ga q ko u")
	want := "ga kko u"
	if got != want {
		t.Fatalf("PostProcess = %q, want %q", got, want)
	}
}

func TestPostProcessLeavesUnmatchedQAlone(t *testing.T) {
	// q not followed by a kstph-initial token is left as its own token.
	got := PostProcess("ga q a")
	want := "ga q a"
	if got != want {
		t.Fatalf("PostProcess = %q, want %q", got, want)
	}
}
