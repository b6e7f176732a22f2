// Package textnorm holds the line-level cleanup rules applied to raw OCR output
// before dialogue assembly.
package textnorm

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
)

const (
	// minAlphaRatio is the share of ASCII letters a line longer than
	// three runes needs to count as text rather than artifact noise.
	minAlphaRatio = 0.4
	// maxEastAsianRatio is the share of CJK/kana/hangul above which a line
	// is treated as untranslated source text.
	maxEastAsianRatio = 0.3
)

// eastAsian covers CJK unified ideographs, extension A, hiragana, katakana
// and hangul syllables.
var eastAsian = &unicode.RangeTable{
	R16: []unicode.Range16{
		{Lo: 0x3040, Hi: 0x309f, Stride: 1},
		{Lo: 0x30a0, Hi: 0x30ff, Stride: 1},
		{Lo: 0x3400, Hi: 0x4dbf, Stride: 1},
		{Lo: 0x4e00, Hi: 0x9fff, Stride: 1},
		{Lo: 0xac00, Hi: 0xd7af, Stride: 1},
	},
}

// Normalizer applies OCR artifact correction and watermark/noise
// classification. It is immutable and safe for concurrent use.
type Normalizer struct {
	watermarks []string // case-folded
	charMap    map[rune]rune
}

// New builds a Normalizer from t.
func New(t Tables) *Normalizer {
	n := &Normalizer{
		watermarks: make([]string, 0, len(t.WatermarkPhrases)),
		charMap:    make(map[rune]rune, len(t.CharMap)),
	}
	fold := cases.Fold()
	for _, p := range t.WatermarkPhrases {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		n.watermarks = append(n.watermarks, fold.String(p))
	}
	for k, v := range t.CharMap {
		n.charMap[k] = v
	}
	return n
}

// Default returns a Normalizer over DefaultTables.
func Default() *Normalizer {
	return New(DefaultTables())
}

// FixOCRArtifacts replaces confusable characters that sit next to a letter,
// e.g. "5TOP" -> "STOP", while leaving free-standing numbers such as "2024"
// alone. Neighbours are always read from the original line.
func (n *Normalizer) FixOCRArtifacts(line string) string {
	src := []rune(line)
	var out []rune
	for i, r := range src {
		repl, ok := n.charMap[r]
		if !ok {
			continue
		}
		prevLetter := i > 0 && unicode.IsLetter(src[i-1])
		nextLetter := i+1 < len(src) && unicode.IsLetter(src[i+1])
		if !prevLetter && !nextLetter {
			continue
		}
		if out == nil {
			out = append([]rune(nil), src...)
		}
		out[i] = repl
	}
	if out == nil {
		return line
	}
	return string(out)
}

// IsWatermark reports whether line contains any known watermark phrase.
func (n *Normalizer) IsWatermark(line string) bool {
	if len(n.watermarks) == 0 {
		return false
	}
	folded := cases.Fold().String(line)
	for _, w := range n.watermarks {
		if strings.Contains(folded, w) {
			return true
		}
	}
	return false
}

// IsNoise reports whether the trimmed line is too short, mostly non-letters,
// or mostly East Asian script.
func (n *Normalizer) IsNoise(line string) bool {
	s := strings.TrimSpace(line)
	total := utf8.RuneCountInString(s)
	if total < 2 {
		return true
	}
	var ascii, cjk int
	for _, r := range s {
		if r < utf8.RuneSelf && unicode.IsLetter(r) {
			ascii++
		}
		if unicode.Is(eastAsian, r) {
			cjk++
		}
	}
	if total > 3 && float64(ascii)/float64(total) < minAlphaRatio {
		return true
	}
	if cjk > 0 && float64(cjk)/float64(total) > maxEastAsianRatio {
		return true
	}
	return false
}
