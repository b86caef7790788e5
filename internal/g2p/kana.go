package g2p

import "strings"

// twoRuneTable covers the youon (palatalized) combinations and the
// extended katakana digraphs used to spell loanword sounds, tried before
// the single-rune table so the longest match wins.
var twoRuneTable = map[string][]string{
	// Youon: base kana + small ya/yu/yo.
	"キャ": {"kja"}, "キュ": {"kju"}, "キョ": {"kjo"},
	"ギャ": {"gja"}, "ギュ": {"gju"}, "ギョ": {"gjo"},
	"シャ": {"ʃa"}, "シュ": {"ʃu"}, "ショ": {"ʃo"},
	"ジャ": {"dʒa"}, "ジュ": {"dʒu"}, "ジョ": {"dʒo"},
	"チャ": {"tɕa"}, "チュ": {"tɕu"}, "チョ": {"tɕo"},
	"ニャ": {"ɲa"}, "ニュ": {"ɲu"}, "ニョ": {"ɲo"},
	"ヒャ": {"hja"}, "ヒュ": {"hju"}, "ヒョ": {"hjo"},
	"ビャ": {"bja"}, "ビュ": {"bju"}, "ビョ": {"bjo"},
	"ピャ": {"pja"}, "ピュ": {"pju"}, "ピョ": {"pjo"},
	"ミャ": {"mja"}, "ミュ": {"mju"}, "ミョ": {"mjo"},
	"リャ": {"rja"}, "リュ": {"rju"}, "リョ": {"rjo"},

	// Extended katakana digraphs for loanword sounds not native to kana.
	"ティ": {"ti"}, "ディ": {"di"}, "トゥ": {"tu"}, "ドゥ": {"du"},
	"ファ": {"fa"}, "フィ": {"fi"}, "フェ": {"fe"}, "フォ": {"fo"},
	"ウィ": {"wi"}, "ウェ": {"we"}, "ウォ": {"wo"},
	"ツァ": {"tsa"}, "ツィ": {"tsi"}, "ツェ": {"tse"}, "ツォ": {"tso"},
	"ジェ": {"dʒe"}, "シェ": {"ʃe"}, "チェ": {"tɕe"},
	"ヴァ": {"va"}, "ヴィ": {"vi"}, "ヴェ": {"ve"}, "ヴォ": {"vo"},
}

// oneRuneTable covers the plain CV syllables and standalone moras, tried
// after twoRuneTable has failed to match.
var oneRuneTable = map[string][]string{
	"ア": {"a"}, "イ": {"i"}, "ウ": {"u"}, "エ": {"e"}, "オ": {"o"},
	"カ": {"ka"}, "キ": {"ki"}, "ク": {"ku"}, "ケ": {"ke"}, "コ": {"ko"},
	"ガ": {"ga"}, "ギ": {"gi"}, "グ": {"gu"}, "ゲ": {"ge"}, "ゴ": {"go"},
	"サ": {"sa"}, "シ": {"ʃi"}, "ス": {"su"}, "セ": {"se"}, "ソ": {"so"},
	"ザ": {"za"}, "ジ": {"dʒi"}, "ズ": {"zu"}, "ゼ": {"ze"}, "ゾ": {"zo"},
	"タ": {"ta"}, "チ": {"tɕi"}, "ツ": {"tsu"}, "テ": {"te"}, "ト": {"to"},
	"ダ": {"da"}, "ヂ": {"dʒi"}, "ヅ": {"zu"}, "デ": {"de"}, "ド": {"do"},
	"ナ": {"na"}, "ニ": {"ɲi"}, "ヌ": {"nu"}, "ネ": {"ne"}, "ノ": {"no"},
	"ハ": {"ha"}, "ヒ": {"hi"}, "フ": {"ɸu"}, "ヘ": {"he"}, "ホ": {"ho"},
	"バ": {"ba"}, "ビ": {"bi"}, "ブ": {"bu"}, "ベ": {"be"}, "ボ": {"bo"},
	"パ": {"pa"}, "ピ": {"pi"}, "プ": {"pu"}, "ペ": {"pe"}, "ポ": {"po"},
	"マ": {"ma"}, "ミ": {"mi"}, "ム": {"mu"}, "メ": {"me"}, "モ": {"mo"},
	"ヤ": {"ja"}, "ユ": {"ju"}, "ヨ": {"jo"},
	"ラ": {"ra"}, "リ": {"ri"}, "ル": {"ru"}, "レ": {"re"}, "ロ": {"ro"},
	"ワ": {"wa"}, "ヲ": {"o"}, "ン": {"ɴ"},
	"ヴ": {"vu"},
	// Small kana standing alone (rare outside a digraph; pronounced short).
	"ァ": {"a"}, "ィ": {"i"}, "ゥ": {"u"}, "ェ": {"e"}, "ォ": {"o"},
	"ャ": {"ja"}, "ュ": {"ju"}, "ョ": {"jo"},
}

// ToPhonemes applies the ordered longest-match rewrite table to s — length
// marks, then diphthongs/digraphs, then CV syllables, then small-kana, then
// ッ→q geminate marking. s may be a katakana reading or a raw surface
// string; runes it cannot map (kanji, ASCII, punctuation) pass through
// unchanged as their own token, per spec.md §4.3 steps 4-5.
//
// Hiragana input is folded to katakana first so the same table serves both
// the reading-driven kana-rule step and the surface-driven last resort.
func ToPhonemes(s string) []string {
	runes := []rune(hiraganaToKatakanaRunes(s))
	out := make([]string, 0, len(runes))
	for i := 0; i < len(runes); {
		if i+1 < len(runes) {
			if ph, ok := twoRuneTable[string(runes[i:i+2])]; ok {
				out = append(out, ph...)
				i += 2
				continue
			}
		}
		r := runes[i]
		switch r {
		case 'ー':
			if len(out) > 0 {
				last := out[len(out)-1]
				out = append(out, lastVowelOf(last))
			}
			i++
			continue
		case 'ッ':
			out = append(out, "q")
			i++
			continue
		}
		if ph, ok := oneRuneTable[string(r)]; ok {
			out = append(out, ph...)
			i++
			continue
		}
		out = append(out, string(r))
		i++
	}
	return out
}

func hiraganaToKatakanaRunes(s string) string {
	runes := []rune(s)
	for i, r := range runes {
		if r >= 0x3041 && r <= 0x3096 {
			runes[i] = r + 0x60
		}
	}
	return string(runes)
}

// lastVowelOf extracts the trailing vowel letter of a phoneme token, for
// realizing a chōonpu (long-vowel mark) as a repeated vowel.
func lastVowelOf(phoneme string) string {
	for i := len(phoneme) - 1; i >= 0; i-- {
		switch phoneme[i] {
		case 'a', 'i', 'u', 'e', 'o':
			return string(phoneme[i])
		}
	}
	return phoneme
}

// PostProcess collapses whitespace runs, trims, then realizes geminate
// consonants by merging a "q" marker with the following phoneme's leading
// consonant, per spec.md §4.3's post-processing step.
func PostProcess(s string) string {
	fields := strings.Fields(s)
	out := make([]string, 0, len(fields))
	for i := 0; i < len(fields); i++ {
		if fields[i] == "q" && i+1 < len(fields) {
			next := fields[i+1]
			if len(next) > 0 && strings.ContainsRune("kstph", rune(next[0])) {
				out = append(out, string(next[0])+next)
				i++
				continue
			}
		}
		out = append(out, fields[i])
	}
	return strings.Join(out, " ")
}
