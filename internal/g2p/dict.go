package g2p

import (
	"os"
	"strings"
	"sync"

	jmdict "github.com/yomidevs/jmdict-go"
)

// Entry is one reading-conditioned dictionary-level G2P candidate, per
// spec.md §4.3 step 1.
type Entry struct {
	Reading  string // katakana reading this entry applies to; "" matches any
	POS      string // part-of-speech tag this entry applies to; "" matches any
	Context  string // substring of surrounding text this entry applies to; "" matches any
	Phonemes []string
}

// Dictionary backs the two dictionary-level G2P strategies: a
// reading/POS-disambiguated lookup and a flat scalar fallback. Both are
// populated from JMdict plus any runtime-added entries.
type Dictionary struct {
	mu       sync.RWMutex
	disambig map[string][]Entry  // surface -> candidate entries
	scalar   map[string][]string // lowercased surface -> phonemes
}

// NewDictionary returns an empty dictionary.
func NewDictionary() *Dictionary {
	return &Dictionary{
		disambig: make(map[string][]Entry),
		scalar:   make(map[string][]string),
	}
}

// LoadJMdict bulk-loads JMdict entries from path, the way
// williambechard-japaneseparse/dictionary.go loads it via
// jmdict.LoadJmdict, and derives each entry's reading-conditioned phoneme
// sequence by running its kana reading through the kana-rule table.
func LoadJMdict(path string) (*Dictionary, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	parsed, _, err := jmdict.LoadJmdict(f)
	if err != nil {
		return nil, err
	}

	d := NewDictionary()
	for _, entry := range parsed.Entries {
		var readings []string
		for _, r := range entry.Readings {
			readings = append(readings, r.Reading)
		}

		for _, reading := range readings {
			phonemes := ToPhonemes(reading)
			senses := entry.Sense
			if len(senses) == 0 {
				senses = append(senses, jmdict.JmdictSense{})
			}
			// One entry per sense rather than one per entry: different
			// senses of the same kanji spelling (homographs) carry
			// different parts of speech and glosses, the two signals
			// LookupDisambiguated needs to tell them apart.
			for _, sense := range senses {
				posTag := ""
				if len(sense.PartsOfSpeech) > 0 {
					posTag = sense.PartsOfSpeech[0]
				}
				ctx := ""
				if len(sense.Glossary) > 0 {
					ctx = sense.Glossary[0].Content
				}
				for _, k := range entry.Kanji {
					d.AddDisambiguated(k.Expression, Entry{Reading: reading, POS: posTag, Context: ctx, Phonemes: phonemes})
				}
				// Readings with no kanji spelling (kana-only words) key
				// directly on the reading surface.
				if len(entry.Kanji) == 0 {
					d.AddDisambiguated(reading, Entry{Reading: reading, POS: posTag, Context: ctx, Phonemes: phonemes})
				}
			}
		}
	}
	return d, nil
}

// AddDisambiguated registers a candidate entry for surface, appended to any
// existing candidates (runtime-addable, per spec.md's registry invariants).
func (d *Dictionary) AddDisambiguated(surface string, e Entry) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.disambig[surface] = append(d.disambig[surface], e)
}

// AddScalar registers a flat surface->phonemes mapping, keyed
// case-insensitively.
func (d *Dictionary) AddScalar(surface string, phonemes []string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.scalar[strings.ToLower(surface)] = phonemes
}

// LookupDisambiguated implements spec.md §4.3 step 1: among surface's
// candidate entries, return the first whose reading and POS (when
// non-empty) match the morpheme, and whose own Context substring (when
// non-empty) is contained in the caller's surrounding text; if none
// match but candidates exist, return the first candidate; otherwise
// report no match.
func (d *Dictionary) LookupDisambiguated(surface, reading, pos, surroundingText string) ([]string, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	entries, ok := d.disambig[surface]
	if !ok || len(entries) == 0 {
		return nil, false
	}
	for _, e := range entries {
		if e.Reading != "" && e.Reading != reading {
			continue
		}
		if e.POS != "" && e.POS != pos {
			continue
		}
		if e.Context != "" && !strings.Contains(surroundingText, e.Context) {
			continue
		}
		return e.Phonemes, true
	}
	return entries[0].Phonemes, true
}

// LookupScalar implements spec.md §4.3 step 2: an exact match, falling
// back to a case-insensitive match.
func (d *Dictionary) LookupScalar(surface string) ([]string, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if ph, ok := d.scalar[surface]; ok {
		return ph, true
	}
	ph, ok := d.scalar[strings.ToLower(surface)]
	return ph, ok
}
