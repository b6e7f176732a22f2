package transcript

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func sample() Transcript {
	return Transcript{
		Title: "Solo Leveling - Chapter 1",
		Pages: []PageResult{
			{Index: 2, Dialogues: []string{}},
			{Index: 1, Dialogues: []string{"Hello World", "Bye"}},
			{Index: 3, Err: errors.New("decode failed")},
		},
	}
}

func TestRender(t *testing.T) {
	out, err := Markdown(sample(), Labels{})
	if err != nil {
		t.Fatalf("Markdown: %v", err)
	}
	want := "# Solo Leveling - Chapter 1\n\n" +
		"## Halaman 1\n\n" +
		"- **Teks 1:** Hello World\n" +
		"- **Teks 2:** Bye\n\n" +
		"## Halaman 2\n\n" +
		"- *(Tidak ada teks terdeteksi)*\n\n\n" +
		"## Halaman 3\n\n" +
		"- *(Tidak ada teks terdeteksi)*\n\n\n"
	if string(out) != want {
		t.Fatalf("unexpected markdown:\n%s\nwant:\n%s", out, want)
	}
}

func TestRenderCustomLabels(t *testing.T) {
	out, err := Markdown(sample(), Labels{Page: "Page", Text: "Line", Empty: "(no text)"})
	if err != nil {
		t.Fatal(err)
	}
	s := string(out)
	for _, frag := range []string{"## Page 1", "- **Line 2:** Bye", "- *(no text)*"} {
		if !strings.Contains(s, frag) {
			t.Errorf("missing %q in\n%s", frag, s)
		}
	}
}

func TestToHTML(t *testing.T) {
	md, _ := Markdown(sample(), DefaultLabels())
	html, err := ToHTML(md)
	if err != nil {
		t.Fatalf("ToHTML: %v", err)
	}
	s := string(html)
	if strings.Count(s, "<h2>") != 3 {
		t.Fatalf("expected 3 page headings in %s", s)
	}
	if !strings.Contains(s, "<strong>Teks 1:</strong> Hello World") {
		t.Fatalf("dialogue missing from html: %s", s)
	}
}

func TestWriteFile(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "ch1_transcript.md")
	if err := WriteFile(p, []byte("# x\n")); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	b, err := os.ReadFile(p)
	if err != nil || string(b) != "# x\n" {
		t.Fatalf("read back %q err=%v", b, err)
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Fatalf("temp file left behind: %v", entries)
	}
}

func TestWriteFileMissingDir(t *testing.T) {
	p := filepath.Join(t.TempDir(), "nope", "x.md")
	if err := WriteFile(p, []byte("x")); err == nil {
		t.Fatalf("expected error for missing directory")
	}
}
