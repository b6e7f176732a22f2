// Package archive unpacks comic archives (cbz/zip, cbr/rar) into a scratch
// directory.
package archive

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/huyinayena-commits/EasyScanlate/pkg/executor"
)

// Extensions is the archive allow-list, lower case with leading dot.
var Extensions = map[string]bool{
	".cbz": true,
	".cbr": true,
	".zip": true,
	".rar": true,
}

// IsArchive reports whether path has a supported archive extension.
func IsArchive(path string) bool {
	return Extensions[strings.ToLower(filepath.Ext(path))]
}

// Extractor fully unpacks an archive into destDir before returning.
type Extractor interface {
	Extract(ctx context.Context, archivePath, destDir string) error
}

type implExtractor struct {
	exec  executor.Executor
	unrar string
}

// New returns an Extractor. Zip archives are read in-process; rar archives are
// handed to the unrar binary through exec.
func New(exec executor.Executor) Extractor {
	if exec == nil {
		exec = executor.New()
	}
	return &implExtractor{exec: exec, unrar: "unrar"}
}

func (x *implExtractor) Extract(ctx context.Context, archivePath, destDir string) error {
	switch strings.ToLower(filepath.Ext(archivePath)) {
	case ".cbz", ".zip":
		return extractZip(ctx, archivePath, destDir)
	case ".cbr", ".rar":
		return x.extractRar(ctx, archivePath, destDir)
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedArchive, filepath.Base(archivePath))
	}
}
