package textnorm

// Tables holds the lookup data a Normalizer is built from. A Normalizer copies
// the tables at construction, so callers may reuse or mutate their value afterwards.
type Tables struct {
	// WatermarkPhrases are matched case-insensitively anywhere in a line.
	WatermarkPhrases []string
	// CharMap maps characters OCR commonly confuses with letters to the letter.
	CharMap map[rune]rune
}

// defaultWatermarks lists scanlation group names and promo phrases seen on
// Indonesian releases.
var defaultWatermarks = []string{
	"komikindo", "kiryuu", "westmanga", "shinigami", "bacakomik",
	"ngomik", "mangakita", "mangaku", "sektekomik", "boosei",
	"pojokmanga", "mangaid", "komikcast", "maid.my.id", "manhwaid",
	"komik station", "discord.gg", "dukung kami", "traktir kopi",
}

var defaultCharMap = map[rune]rune{
	'1': 'I', '0': 'O', '8': 'B', '5': 'S',
	'@': 'A', '|': 'I', '[': 'I', ']': 'I',
}

// DefaultTables returns a fresh copy of the built-in tables.
func DefaultTables() Tables {
	t := Tables{
		WatermarkPhrases: append([]string(nil), defaultWatermarks...),
		CharMap:          make(map[rune]rune, len(defaultCharMap)),
	}
	for k, v := range defaultCharMap {
		t.CharMap[k] = v
	}
	return t
}
