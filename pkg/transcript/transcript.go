// Package transcript holds the per-chapter result model and renders it as a
// Markdown review document.
package transcript

// PageResult is the outcome of one page. Index is 1-based. Err records why a
// page has no dialogue when preprocessing or recognition failed; it is nil for
// pages that simply contained no usable text.
type PageResult struct {
	Index     int
	Image     string
	Dialogues []string
	Err       error
}

// Failed reports whether the page could not be read.
func (p PageResult) Failed() bool { return p.Err != nil }

// Transcript is the ordered set of pages of one chapter.
type Transcript struct {
	Title string
	Pages []PageResult
}

// Labels are the fixed strings used in the rendered document.
type Labels struct {
	Page  string // page subheading prefix
	Text  string // numbered dialogue prefix
	Empty string // placeholder for pages without dialogue
}

// DefaultLabels returns the Indonesian labels.
func DefaultLabels() Labels {
	return Labels{
		Page:  "Halaman",
		Text:  "Teks",
		Empty: "(Tidak ada teks terdeteksi)",
	}
}

func (l Labels) withDefaults() Labels {
	d := DefaultLabels()
	if l.Page == "" {
		l.Page = d.Page
	}
	if l.Text == "" {
		l.Text = d.Text
	}
	if l.Empty == "" {
		l.Empty = d.Empty
	}
	return l
}
