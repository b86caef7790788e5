package segment

import (
	"strings"

	"github.com/ikawaha/kagome-dict/ipa"
	"github.com/ikawaha/kagome/v2/tokenizer"
)

// kagomeAnalyzer wraps a kagome morphological analyzer as the primary
// segmentation mode, converting tokenizer.Token into this package's
// Morpheme the way japaniel-readerer/pkg/ingest and
// williambechard-japaneseparse's tokenize.go do.
type kagomeAnalyzer struct {
	t *tokenizer.Tokenizer
}

// NewWithDictionary returns a Segmenter whose primary mode is a kagome
// analyzer over the bundled IPA dictionary. If the tokenizer fails to
// build, the Segmenter falls back to the script-boundary segmenter only.
func NewWithDictionary() *Segmenter {
	t, err := tokenizer.New(ipa.Dict(), tokenizer.OmitBosEos())
	if err != nil {
		return New()
	}
	return &Segmenter{analyzer: kagomeAnalyzer{t: t}, normalizeByDef: true}
}

func (k kagomeAnalyzer) Parse(text string) ([]Morpheme, error) {
	tokens := k.t.Tokenize(text)
	out := make([]Morpheme, 0, len(tokens))
	for _, tok := range tokens {
		baseForm, _ := tok.BaseForm()
		if baseForm == "" {
			baseForm = tok.Surface
		}
		reading, ok := tok.Reading()
		if !ok {
			reading = ""
		}
		pron, ok := tok.Pronunciation()
		if !ok {
			pron = reading
		}
		out = append(out, Morpheme{
			Surface:       tok.Surface,
			Reading:       reading,
			Pronunciation: pron,
			POS:           strings.Join(tok.POS(), ","),
			BaseForm:      baseForm,
		})
	}
	return out, nil
}
