// Package engine assembles the production chapter pipeline from a Config.
package engine

import (
	"github.com/huyinayena-commits/EasyScanlate/pkg/archive"
	"github.com/huyinayena-commits/EasyScanlate/pkg/chapter"
	"github.com/huyinayena-commits/EasyScanlate/pkg/config"
	"github.com/huyinayena-commits/EasyScanlate/pkg/dialogue"
	"github.com/huyinayena-commits/EasyScanlate/pkg/executor"
	"github.com/huyinayena-commits/EasyScanlate/pkg/logger"
	"github.com/huyinayena-commits/EasyScanlate/pkg/ocr"
	"github.com/huyinayena-commits/EasyScanlate/pkg/textnorm"
)

// Assembler builds the dialogue assembler for cfg's text tables.
func Assembler(cfg *config.Config) *dialogue.Assembler {
	return dialogue.New(textnorm.New(cfg.Tables()))
}

// PreprocessOptions returns the stock page filters with cfg's threshold.
func PreprocessOptions(cfg *config.Config) ocr.PreprocessOptions {
	opts := ocr.DefaultPreprocessOptions()
	opts.Threshold = uint8(cfg.OCR.Threshold)
	return opts
}

// NewPipeline wires the zip/unrar extractor, imaging preprocessing and
// Tesseract recognition into a chapter pipeline.
func NewPipeline(cfg *config.Config, log logger.Logger) *chapter.Pipeline {
	return chapter.New(chapter.Options{
		Extractor:    archive.New(executor.New()),
		Preprocessor: ocr.NewImagingPreprocessor(PreprocessOptions(cfg), log),
		Recognizer:   ocr.NewTesseractRecognizer(log),
		Assembler:    Assembler(cfg),
		Language:     cfg.OCR.Language,
		Labels:       cfg.Labels(),
		Logger:       log,
	})
}
