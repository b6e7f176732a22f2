package chapter

import (
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/huyinayena-commits/EasyScanlate/pkg/natsort"
)

const scratchPrefix = "_temp_"

// ImageExtensions is the page image allow-list, lower case with leading dot.
var ImageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
	".bmp":  true,
}

// IsImage reports whether name has a supported image extension.
func IsImage(name string) bool {
	return ImageExtensions[strings.ToLower(filepath.Ext(name))]
}

// DiscoverImages walks dir recursively and returns every supported image in
// natural order of base name. macOS resource-fork entries and leftover
// scratch directories below dir are ignored.
func DiscoverImages(dir string) ([]string, error) {
	var out []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		name := d.Name()
		if d.IsDir() {
			if name == "__MACOSX" || (path != dir && strings.HasPrefix(name, scratchPrefix)) {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasPrefix(name, "._") || !IsImage(name) {
			return nil
		}
		out = append(out, path)
		return nil
	})
	if err != nil {
		return nil, err
	}
	natsort.Paths(out)
	return out, nil
}

// Stem returns the base name of path without its extension.
func Stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// ScratchDir is the extraction directory used for an archive chapter: a
// sibling of the archive named after its stem.
func ScratchDir(archivePath string) string {
	return filepath.Join(filepath.Dir(archivePath), scratchPrefix+Stem(archivePath))
}
