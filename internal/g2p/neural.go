package g2p

import (
	"github.com/kotoba-labs/kotoba-tts/internal/inference"
	"github.com/kotoba-labs/kotoba-tts/internal/vocab"
)

// NeuralG2P drives the phonemizer graph (component E's Session loaded with
// a second, smaller model) for spec.md §4.3 step 3: characters in, phoneme
// symbols out.
type NeuralG2P struct {
	session      *inference.Session
	charVocab    *vocab.Vocabulary
	phonemeVocab *vocab.Vocabulary
	maxLen       int
}

// NewNeuralG2P builds a neural fallback strategy. charVocab maps input
// characters (Hiragana, Katakana, common Kanji, ASCII, punctuation) to
// ids; phonemeVocab maps the graph's output ids back to phoneme symbols.
func NewNeuralG2P(session *inference.Session, charVocab, phonemeVocab *vocab.Vocabulary, maxLen int) *NeuralG2P {
	return &NeuralG2P{session: session, charVocab: charVocab, phonemeVocab: phonemeVocab, maxLen: maxLen}
}

// Resolve encodes surface as BOS + per-character ids + EOS, padded to
// maxLen, runs the phonemizer graph, and decodes its integer output back
// to phoneme symbols, stopping at EOS and skipping PAD/BOS.
func (n *NeuralG2P) Resolve(surface string) ([]string, bool) {
	if n == nil || n.session == nil || surface == "" {
		return nil, false
	}
	ids := n.encode(surface)
	decoded, err := n.session.RunPhonemizer(ids)
	if err != nil || len(decoded) == 0 {
		return nil, false
	}
	symbols := n.decode(decoded)
	if len(symbols) == 0 {
		return nil, false
	}
	return symbols, true
}

func (n *NeuralG2P) encode(surface string) []int64 {
	runes := []rune(surface)
	ids := make([]int64, 0, n.maxLen)
	ids = append(ids, int64(vocab.BOS))
	for _, r := range runes {
		if len(ids) >= n.maxLen-1 {
			break
		}
		ids = append(ids, int64(n.charVocab.IDOf(string(r))))
	}
	ids = append(ids, int64(vocab.EOS))
	for len(ids) < n.maxLen {
		ids = append(ids, int64(vocab.PAD))
	}
	return ids
}

func (n *NeuralG2P) decode(ids []int64) []string {
	var out []string
	for _, id := range ids {
		switch int(id) {
		case vocab.PAD, vocab.BOS:
			continue
		case vocab.EOS:
			return out
		}
		sym := n.phonemeVocab.SymbolOf(int(id))
		if sym == "" {
			continue
		}
		out = append(out, sym)
	}
	return out
}
