package ocr

import (
	"context"
	"fmt"
	"image"

	"github.com/anthonynsimon/bild/effect"
	"github.com/anthonynsimon/bild/segment"
	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp" // register WebP so imaging.Open can decode it

	"github.com/huyinayena-commits/EasyScanlate/pkg/logger"
)

// PreprocessOptions tunes ImagingPreprocessor. The zero value disables every
// optional step; use DefaultPreprocessOptions for the stock pipeline.
type PreprocessOptions struct {
	// Contrast is passed to imaging.AdjustContrast (-100..100). 100 doubles contrast.
	Contrast float64
	// Median enables a 3x3 median filter to drop compression speckles.
	Median bool
	// Threshold, when non-zero, binarizes the page: gray levels below it go
	// black, the rest white.
	Threshold uint8
}

// DefaultPreprocessOptions returns grayscale + 2x contrast + median filter.
func DefaultPreprocessOptions() PreprocessOptions {
	return PreprocessOptions{Contrast: 100, Median: true}
}

// ImagingPreprocessor turns a page file into a grayscale, contrast-enhanced,
// denoised image ready for Tesseract.
type ImagingPreprocessor struct {
	opts PreprocessOptions
	log  logger.Logger
}

// NewImagingPreprocessor returns a preprocessor using opts. A nil log discards.
func NewImagingPreprocessor(opts PreprocessOptions, log logger.Logger) *ImagingPreprocessor {
	if log == nil {
		log = logger.Discard()
	}
	return &ImagingPreprocessor{opts: opts, log: log}
}

// Preprocess decodes path and applies the configured filters.
func (p *ImagingPreprocessor) Preprocess(ctx context.Context, path string) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	src, err := imaging.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecodeImage, err)
	}
	gray := imaging.Grayscale(src)
	if p.opts.Contrast != 0 {
		gray = imaging.AdjustContrast(gray, p.opts.Contrast)
	}
	var out image.Image = gray
	if p.opts.Median {
		out = effect.Median(out, 1)
	}
	if p.opts.Threshold > 0 {
		out = segment.Threshold(out, p.opts.Threshold)
	}
	p.log.Debug(ctx, "OCR preprocess %s %dx%d", path, out.Bounds().Dx(), out.Bounds().Dy())
	return out, nil
}
