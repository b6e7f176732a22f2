// Package natsort orders file names the way a reader expects: embedded
// numbers compare by value, so page2 comes before page10.
package natsort

import (
	"path/filepath"
	"sort"

	"github.com/maruel/natural"
)

// Less reports whether a sorts before b in natural order.
func Less(a, b string) bool {
	return natural.Less(a, b)
}

// Strings sorts names in place in natural order.
func Strings(names []string) {
	sort.SliceStable(names, func(i, j int) bool { return natural.Less(names[i], names[j]) })
}

// Paths sorts paths in place by the natural order of their base names. Paths
// with equal base names keep a deterministic order by full path.
func Paths(paths []string) {
	sort.SliceStable(paths, func(i, j int) bool {
		bi, bj := filepath.Base(paths[i]), filepath.Base(paths[j])
		if bi != bj {
			return natural.Less(bi, bj)
		}
		return natural.Less(paths[i], paths[j])
	})
}
