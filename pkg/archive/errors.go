package archive

import "errors"

var (
	// ErrRarUnavailable is returned for .cbr/.rar input when the unrar binary
	// is not installed. Callers should treat it as fatal.
	ErrRarUnavailable = errors.New("rar archives require the 'unrar' binary on PATH (Termux: pkg install unrar)")
	// ErrUnsupportedArchive is returned for extensions outside the allow-list.
	ErrUnsupportedArchive = errors.New("unsupported archive type")
	// ErrUnsafePath is returned when an archive entry would land outside the
	// destination directory.
	ErrUnsafePath = errors.New("archive entry escapes destination")
)
