package engine

import (
	"testing"

	"github.com/huyinayena-commits/EasyScanlate/pkg/config"
)

func TestAssemblerUsesConfiguredTables(t *testing.T) {
	cfg := config.Default()
	cfg.Text.WatermarkPhrases = []string{"my group"}

	got := Assembler(cfg).Assemble("MY GROUP PRESENTS\nKOMIKINDO IS HERE\n")
	// komikindo is only in the built-in table, which the config replaced
	if len(got) != 1 || got[0] != "KOMIKINDO IS HERE" {
		t.Fatalf("got %q", got)
	}
}

func TestNewPipeline(t *testing.T) {
	if NewPipeline(config.Default(), nil) == nil {
		t.Fatal("nil pipeline")
	}
}

func TestPreprocessOptionsThreshold(t *testing.T) {
	cfg := config.Default()
	if got := PreprocessOptions(cfg); got.Threshold != 0 || !got.Median {
		t.Fatalf("default options = %+v", got)
	}
	cfg.OCR.Threshold = 140
	if got := PreprocessOptions(cfg).Threshold; got != 140 {
		t.Fatalf("threshold = %d, want 140", got)
	}
}
