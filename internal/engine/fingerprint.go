package engine

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// fingerprint implements spec.md §4.6 step 2: a stable hash of every
// input that affects synthesis output, floats formatted to 2 decimals.
func fingerprint(r SynthesisRequest) string {
	raw := fmt.Sprintf("%s|%s|%.2f|%.2f|%.2f|%s",
		r.Text, r.VoiceID, r.Speed, r.Pitch, r.Volume, r.PhonemesOverride)
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
