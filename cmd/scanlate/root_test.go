package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/huyinayena-commits/EasyScanlate/pkg/chapter"
)

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	opts = options{}
	var out bytes.Buffer
	rootCmd.SetArgs(append([]string{"--config", filepath.Join(t.TempDir(), "none.yaml"), "--log-level", "error"}, args...))
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestSingleInputWithoutImagesIsNotAnError(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "Chapter 1")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if _, err := run(t, "", dir); err != nil {
		t.Fatalf("run: %v", err)
	}
	if _, err := os.Stat(filepath.Join(filepath.Dir(dir), "Chapter 1_transcript.md")); !os.IsNotExist(err) {
		t.Fatalf("no transcript expected, stat err=%v", err)
	}
}

func TestSingleInputMissingPath(t *testing.T) {
	if _, err := run(t, "", filepath.Join(t.TempDir(), "missing.cbz")); err == nil {
		t.Fatal("expected error for missing input")
	}
}

func TestBatchMissingFolderIsFatal(t *testing.T) {
	_, err := run(t, "", "batch", filepath.Join(t.TempDir(), "missing"))
	if !chapter.IsFatal(err) {
		t.Fatalf("expected fatal error, got %v", err)
	}
}

func TestKotatsuMenuCancel(t *testing.T) {
	lib := t.TempDir()
	if err := os.MkdirAll(filepath.Join(lib, "Solo Leveling"), 0o755); err != nil {
		t.Fatal(err)
	}
	t.Setenv("SCANLATE_KOTATSU_DIR", lib)
	out, err := run(t, "0\n")
	if err != nil {
		t.Fatalf("cancel should exit cleanly: %v", err)
	}
	if !strings.Contains(out, "[1] Solo Leveling") {
		t.Fatalf("menu not shown:\n%s", out)
	}
}

func TestKotatsuMissingLibrary(t *testing.T) {
	t.Setenv("SCANLATE_KOTATSU_DIR", filepath.Join(t.TempDir(), "nope"))
	if _, err := run(t, ""); err == nil {
		t.Fatal("expected error for missing library")
	}
}
