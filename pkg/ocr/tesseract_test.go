package ocr

import (
	"context"
	"image/color"
	"strings"
	"testing"

	"github.com/disintegration/imaging"
)

func TestRecognizeBlankPage(t *testing.T) {
	img := imaging.New(400, 200, color.NRGBA{255, 255, 255, 255})
	text, err := NewTesseractRecognizer(nil).Recognize(context.Background(), img, "eng")
	if err != nil {
		t.Skipf("tesseract unavailable: %v", err)
	}
	if strings.TrimSpace(text) != "" {
		t.Fatalf("expected no text on blank page, got %q", text)
	}
}

func TestRecognizeCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	img := imaging.New(10, 10, color.NRGBA{255, 255, 255, 255})
	if _, err := NewTesseractRecognizer(nil).Recognize(ctx, img, "eng"); err == nil {
		t.Fatalf("expected context error")
	}
}
