package process

import (
	_ "embed"
	"strings"
	"unicode"

	"github.com/mozillazg/go-unidecode"
	"golang.org/x/text/unicode/norm"
)

//go:embed mapdata/FANJIAN.txt
var fanjianData string

//go:embed mapdata/TEXT-DELETE.txt
var textDeleteData string

//go:embed mapdata/NORM.txt
var normData string

//go:embed mapdata/NUM-NORM.txt
var numNormData string

//go:embed mapdata/PINYIN.txt
var pinyinData string

// pinyinSentinel (U+2400 SYMBOL FOR NULL) marks the end of a syllable's
// reading in mapdata/PINYIN.txt. It is stripped entirely for the PinYin
// bit's dict (full syllable, used to match text typed out as romanized
// Chinese); the PinYinChar bit's dict keeps only the syllable's first rune,
// an acronym form.
const pinyinSentinel = '␀'

// whiteSpace lists the code points WordDelete treats as deletable
// whitespace, independent of mapdata/TEXT-DELETE.txt's punctuation set.
// Hardcoded rather than file-backed because it is a closed, stable set.
var whiteSpace = []rune{
	' ', '\t', '\n', '\r', '\v', '\f',
	' ', ' ',
	' ', ' ', ' ', ' ', ' ', ' ', ' ',
	' ', ' ', ' ', ' ',
	' ', ' ', ' ', ' ', '　',
	'\uFEFF',
}

func parseTSV(data string) [][2]string {
	lines := strings.Split(data, "\n")
	out := make([][2]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimRight(line, "\r")
		if line == "" {
			continue
		}
		parts := strings.SplitN(line, "\t", 2)
		if len(parts) != 2 {
			continue
		}
		out = append(out, [2]string{parts[0], parts[1]})
	}
	return out
}

func parseLines(data string) []string {
	lines := strings.Split(data, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimRight(line, "\r")
		if line == "" {
			continue
		}
		out = append(out, line)
	}
	return out
}

// filterIdentity drops pattern == replacement entries: they would compile
// into the automaton and cost a scan for no observable effect.
func filterIdentity(dict map[string]string) map[string]string {
	out := make(map[string]string, len(dict))
	for p, r := range dict {
		if p != r {
			out[p] = r
		}
	}
	return out
}

// unidecodeFold augments a base dict with accent/Latin-transliteration
// folding entries derived from go-unidecode, mirroring how
// thanchetlove1-services-address's normalizer leans on the same library for
// diacritic stripping. Entries already present in base take precedence.
func unidecodeFold(base map[string]string) {
	for r := rune(0x00C0); r <= 0x024F; r++ {
		if !unicode.IsLetter(r) {
			continue
		}
		folded := unidecode.Unidecode(string(r))
		folded = strings.ToLower(strings.TrimSpace(folded))
		if folded == "" {
			continue
		}
		key := string(r)
		if _, exists := base[key]; !exists {
			base[key] = folded
		}
	}
}

// buildDict returns the pattern/replacement map for a single ProcessType
// bit. Callers are expected to have validated bit via MustSingleBit.
func buildDict(bit Type) map[string]string {
	dict := make(map[string]string)

	switch bit {
	case Fanjian:
		for _, kv := range parseTSV(fanjianData) {
			dict[kv[0]] = kv[1]
		}

	case WordDelete:
		for _, r := range whiteSpace {
			dict[string(r)] = ""
		}

	case TextDelete:
		for _, r := range whiteSpace {
			dict[string(r)] = ""
		}
		for _, p := range parseLines(textDeleteData) {
			dict[p] = ""
		}

	case Normalize:
		for _, kv := range parseTSV(normData) {
			dict[kv[0]] = kv[1]
		}
		for _, kv := range parseTSV(numNormData) {
			dict[kv[0]] = kv[1]
		}
		unidecodeFold(dict)
		dict = normalizeNFKCKeys(dict)

	case PinYin:
		for _, kv := range parseTSV(pinyinData) {
			dict[kv[0]] = strings.TrimSuffix(kv[1], string(pinyinSentinel))
		}

	case PinYinChar:
		for _, kv := range parseTSV(pinyinData) {
			syllable := strings.TrimSuffix(kv[1], string(pinyinSentinel))
			if syllable == "" {
				continue
			}
			first, _ := utf8First(syllable)
			dict[kv[0]] = first
		}
	}

	return filterIdentity(dict)
}

func utf8First(s string) (string, int) {
	for _, r := range s {
		return string(r), len(string(r))
	}
	return "", 0
}

// normalizeNFKCKeys runs every pattern key through a Unicode NFKC
// normalization pass (golang.org/x/text/unicode/norm) and adds the NFKC form
// as a further key with the same replacement, unless that key is already
// present. The original keys are kept, so a compatibility form
// (circled/fullwidth) and its canonical form map to the same replacement.
func normalizeNFKCKeys(dict map[string]string) map[string]string {
	out := make(map[string]string, len(dict))
	for p, r := range dict {
		out[p] = r
	}
	for p, r := range dict {
		k := norm.NFKC.String(p)
		if _, exists := out[k]; !exists {
			out[k] = r
		}
	}
	return out
}
