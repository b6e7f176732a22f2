package transcript

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/yuin/goldmark"
)

// Render writes t as Markdown: a title heading, then one subheading per page
// in ascending index order, each followed by a numbered dialogue list or the
// empty placeholder.
func Render(w io.Writer, t Transcript, labels Labels) error {
	labels = labels.withDefaults()
	pages := append([]PageResult(nil), t.Pages...)
	sort.SliceStable(pages, func(i, j int) bool { return pages[i].Index < pages[j].Index })

	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "# %s\n\n", t.Title)
	for _, p := range pages {
		fmt.Fprintf(bw, "## %s %d\n\n", labels.Page, p.Index)
		if len(p.Dialogues) == 0 {
			fmt.Fprintf(bw, "- *%s*\n\n", labels.Empty)
		}
		for j, txt := range p.Dialogues {
			fmt.Fprintf(bw, "- **%s %d:** %s\n", labels.Text, j+1, txt)
		}
		bw.WriteString("\n")
	}
	return bw.Flush()
}

// Markdown renders t into memory.
func Markdown(t Transcript, labels Labels) ([]byte, error) {
	var buf bytes.Buffer
	if err := Render(&buf, t, labels); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ToHTML converts a rendered Markdown transcript to an HTML fragment.
func ToHTML(markdown []byte) ([]byte, error) {
	var buf bytes.Buffer
	if err := goldmark.New().Convert(markdown, &buf); err != nil {
		return nil, fmt.Errorf("convert markdown: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteFile writes data to path through a temporary sibling file so readers
// never observe a half-written transcript.
func WriteFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".transcript-*")
	if err != nil {
		return fmt.Errorf("create temp transcript: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("write transcript: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("close transcript: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("rename transcript: %w", err)
	}
	return nil
}
