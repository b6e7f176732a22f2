// Command ocr_page runs preprocessing and OCR on a single page and prints the
// raw text next to the assembled dialogue blocks.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	"github.com/disintegration/imaging"

	"github.com/huyinayena-commits/EasyScanlate/pkg/config"
	"github.com/huyinayena-commits/EasyScanlate/pkg/engine"
	"github.com/huyinayena-commits/EasyScanlate/pkg/logger"
	"github.com/huyinayena-commits/EasyScanlate/pkg/ocr"
)

func main() {
	img := flag.String("img", "", "page image to read")
	lang := flag.String("lang", "", "tesseract language (default from config)")
	save := flag.String("save", "", "write the preprocessed page to this path")
	cfgPath := flag.String("config", "scanlate.yaml", "config file")
	threshold := flag.Int("threshold", -1, "binarize at this gray level, 0 disables (default from config)")
	flag.Parse()
	if *img == "" {
		log.Fatal("-img is required")
	}
	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if *lang != "" {
		cfg.OCR.Language = *lang
	}
	if *threshold >= 0 {
		cfg.OCR.Threshold = *threshold
		if err := cfg.Validate(); err != nil {
			log.Fatalf("config: %v", err)
		}
	}
	lg := logger.New(cfg.Logging.Level)

	ctx := context.Background()
	pre, err := ocr.NewImagingPreprocessor(engine.PreprocessOptions(cfg), lg).Preprocess(ctx, *img)
	if err != nil {
		log.Fatalf("preprocess: %v", err)
	}
	if *save != "" {
		if err := imaging.Save(pre, *save); err != nil {
			log.Fatalf("save: %v", err)
		}
		fmt.Printf("preprocessed page written to %s\n", *save)
	}
	raw, err := ocr.NewTesseractRecognizer(lg).Recognize(ctx, pre, cfg.OCR.Language)
	if err != nil {
		log.Fatalf("ocr: %v", err)
	}
	fmt.Printf("--- raw text (lang=%s) ---\n%s\n", cfg.OCR.Language, raw)
	fmt.Println("--- dialogue ---")
	for i, d := range engine.Assembler(cfg).Assemble(raw) {
		fmt.Printf("%d: %s\n", i+1, d)
	}
}
