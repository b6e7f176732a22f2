package archive

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

func (x *implExtractor) extractRar(ctx context.Context, src, dest string) error {
	bin, err := x.exec.LookPath(x.unrar)
	if err != nil {
		return ErrRarUnavailable
	}
	// trailing separator makes unrar treat dest as a directory
	if _, err := x.exec.Execute(ctx, bin, "x", "-o+", "-y", src, filepath.Clean(dest)+string(os.PathSeparator)); err != nil {
		return fmt.Errorf("unrar %s: %w", filepath.Base(src), err)
	}
	return nil
}
