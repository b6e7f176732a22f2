package ocr

import "errors"

// ErrDecodeImage is returned when a page file cannot be opened as an image.
var ErrDecodeImage = errors.New("cannot decode page image")
