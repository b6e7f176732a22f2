// Package dialogue turns the raw multi-line OCR text of one page into
// ordered dialogue blocks.
package dialogue

import (
	"strings"

	"github.com/huyinayena-commits/EasyScanlate/pkg/textnorm"
)

// Assembler merges consecutive recognised lines into dialogue blocks. A blank
// line closes the current block; watermark and noise lines are dropped
// without closing it.
type Assembler struct {
	norm *textnorm.Normalizer
}

// New returns an Assembler using norm. A nil norm selects textnorm.Default().
func New(norm *textnorm.Normalizer) *Assembler {
	if norm == nil {
		norm = textnorm.Default()
	}
	return &Assembler{norm: norm}
}

// Assemble returns the dialogue blocks of raw in first-seen order. The result
// is never nil; a page without salvageable text yields an empty slice.
func (a *Assembler) Assemble(raw string) []string {
	blocks := []string{}
	var pending []string
	flush := func() {
		if len(pending) == 0 {
			return
		}
		blocks = append(blocks, strings.Join(pending, " "))
		pending = pending[:0]
	}
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			flush()
			continue
		}
		line = a.norm.FixOCRArtifacts(line)
		if a.norm.IsWatermark(line) || a.norm.IsNoise(line) {
			continue
		}
		pending = append(pending, line)
	}
	flush()
	return blocks
}
