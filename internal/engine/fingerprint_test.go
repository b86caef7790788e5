package engine

import "testing"

func TestFingerprintStableForIdenticalRequests(t *testing.T) {
	r := SynthesisRequest{Text: "hello", VoiceID: "v1", Speed: 1.0, Pitch: 1.0, Volume: 1.0}
	if fingerprint(r) != fingerprint(r) {
		t.Fatal("fingerprint must be stable across calls")
	}
}

func TestFingerprintSensitiveToEachField(t *testing.T) {
	base := SynthesisRequest{Text: "hello", VoiceID: "v1", Speed: 1.0, Pitch: 1.0, Volume: 1.0}
	variants := []SynthesisRequest{
		{Text: "world", VoiceID: base.VoiceID, Speed: base.Speed, Pitch: base.Pitch, Volume: base.Volume},
		{Text: base.Text, VoiceID: "v2", Speed: base.Speed, Pitch: base.Pitch, Volume: base.Volume},
		{Text: base.Text, VoiceID: base.VoiceID, Speed: 1.5, Pitch: base.Pitch, Volume: base.Volume},
		{Text: base.Text, VoiceID: base.VoiceID, Speed: base.Speed, Pitch: 1.5, Volume: base.Volume},
		{Text: base.Text, VoiceID: base.VoiceID, Speed: base.Speed, Pitch: base.Pitch, Volume: 0.5},
		{Text: base.Text, VoiceID: base.VoiceID, Speed: base.Speed, Pitch: base.Pitch, Volume: base.Volume, PhonemesOverride: "k a"},
	}
	baseFP := fingerprint(base)
	for i, v := range variants {
		if fingerprint(v) == baseFP {
			t.Fatalf("variant %d did not change the fingerprint", i)
		}
	}
}

func TestFingerprintRoundsFloatsToTwoDecimals(t *testing.T) {
	a := SynthesisRequest{Text: "x", Speed: 1.001}
	b := SynthesisRequest{Text: "x", Speed: 1.004}
	if fingerprint(a) != fingerprint(b) {
		t.Fatal("fingerprint should collapse floats that round to the same 2-decimal value")
	}
}

func TestFingerprintIgnoresNonSemanticFields(t *testing.T) {
	a := SynthesisRequest{Text: "x", UseCache: true, Priority: 5}
	b := SynthesisRequest{Text: "x", UseCache: false, Priority: 0}
	if fingerprint(a) != fingerprint(b) {
		t.Fatal("UseCache/Priority must not affect the fingerprint")
	}
}
