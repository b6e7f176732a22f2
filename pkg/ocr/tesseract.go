package ocr

import (
	"bytes"
	"context"
	"fmt"
	"image"

	"github.com/disintegration/imaging"
	"github.com/otiai10/gosseract/v2"

	"github.com/huyinayena-commits/EasyScanlate/pkg/logger"
)

// PageMode is the segmentation mode used for whole comic pages: a single
// column of text blocks of variable size (tesseract --psm 4).
const PageMode = gosseract.PSM_SINGLE_COLUMN

// TesseractRecognizer runs Tesseract through gosseract. A fresh client is
// created per page and closed before returning, so at most one recognition
// context is alive at a time.
type TesseractRecognizer struct {
	clientFactory func() *gosseract.Client
	mode          gosseract.PageSegMode
	log           logger.Logger
}

// NewTesseractRecognizer constructs a recognizer in PageMode. A nil log discards.
func NewTesseractRecognizer(log logger.Logger) *TesseractRecognizer {
	if log == nil {
		log = logger.Discard()
	}
	return &TesseractRecognizer{clientFactory: gosseract.NewClient, mode: PageMode, log: log}
}

// Recognize returns the raw multi-line text Tesseract reads from img.
func (r *TesseractRecognizer) Recognize(ctx context.Context, img image.Image, lang string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return "", fmt.Errorf("encode page: %w", err)
	}

	c := r.clientFactory()
	defer c.Close()
	if lang != "" {
		if err := c.SetLanguage(lang); err != nil {
			return "", fmt.Errorf("set language %q: %w", lang, err)
		}
	}
	if err := c.SetPageSegMode(r.mode); err != nil {
		return "", fmt.Errorf("set page mode: %w", err)
	}
	if err := c.SetImageFromBytes(buf.Bytes()); err != nil {
		return "", fmt.Errorf("set image: %w", err)
	}
	text, err := c.Text()
	if err != nil {
		return "", fmt.Errorf("ocr error: %w", err)
	}
	r.log.Debug(ctx, "OCR RAW lang=%s snippet=%q", lang, snippet(text, 120))
	return text, nil
}
