// Package chapter turns one chapter (an archive, or a folder of page images)
// into a Markdown transcript. Pages are processed strictly one at a time so
// the working set stays at roughly one decoded page plus one OCR call.
package chapter

import (
	"context"
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"

	"github.com/huyinayena-commits/EasyScanlate/pkg/archive"
	"github.com/huyinayena-commits/EasyScanlate/pkg/dialogue"
	"github.com/huyinayena-commits/EasyScanlate/pkg/logger"
	"github.com/huyinayena-commits/EasyScanlate/pkg/transcript"
)

// Preprocessor decodes a page and prepares it for recognition.
type Preprocessor interface {
	Preprocess(ctx context.Context, path string) (image.Image, error)
}

// Recognizer returns the raw multi-line text of a prepared page.
type Recognizer interface {
	Recognize(ctx context.Context, img image.Image, lang string) (string, error)
}

// Options wires the collaborators of a Pipeline.
type Options struct {
	Extractor    archive.Extractor
	Preprocessor Preprocessor
	Recognizer   Recognizer
	Assembler    *dialogue.Assembler
	Language     string
	Labels       transcript.Labels
	Logger       logger.Logger
}

// Pipeline processes chapters. A Pipeline holds no per-chapter state and may
// be reused, but Run must not be called concurrently.
type Pipeline struct {
	extractor archive.Extractor
	pre       Preprocessor
	rec       Recognizer
	asm       *dialogue.Assembler
	lang      string
	labels    transcript.Labels
	log       logger.Logger
}

// New builds a Pipeline. Extractor, Preprocessor and Recognizer are required.
func New(opts Options) *Pipeline {
	if opts.Assembler == nil {
		opts.Assembler = dialogue.New(nil)
	}
	if opts.Logger == nil {
		opts.Logger = logger.Discard()
	}
	return &Pipeline{
		extractor: opts.Extractor,
		pre:       opts.Preprocessor,
		rec:       opts.Recognizer,
		asm:       opts.Assembler,
		lang:      opts.Language,
		labels:    opts.Labels,
		log:       opts.Logger,
	}
}

// Request describes one chapter run.
type Request struct {
	Input  string // archive file or image directory
	Output string // transcript path
	Title  string
	// Language overrides the pipeline language for this run when non-empty.
	Language string
}

// Result summarises a finished chapter.
type Result struct {
	Transcript transcript.Transcript
	Markdown   []byte
	Output     string
	Images     int
	Failed     int
}

// Run processes req and writes its transcript. Archive input is extracted
// into ScratchDir(req.Input), which is removed before Run returns on every
// path. ErrNoImages is returned without writing anything when the source
// holds no images; *FatalError wraps failures that should stop a batch.
func (p *Pipeline) Run(ctx context.Context, req Request) (*Result, error) {
	fi, err := os.Stat(req.Input)
	if err != nil {
		return nil, &FatalError{Err: fmt.Errorf("input %s: %w", req.Input, err)}
	}
	lang := p.lang
	if req.Language != "" {
		lang = req.Language
	}

	source := req.Input
	if !fi.IsDir() {
		scratch := ScratchDir(req.Input)
		defer p.removeScratch(ctx, scratch)
		if err := p.extract(ctx, req.Input, scratch); err != nil {
			return nil, err
		}
		source = scratch
	}

	images, err := DiscoverImages(source)
	if err != nil {
		return nil, fmt.Errorf("scan images in %s: %w", source, err)
	}
	if len(images) == 0 {
		p.log.Warn(ctx, "No images found in %s", req.Input)
		return nil, ErrNoImages
	}
	p.log.Info(ctx, "Found %d images. Starting OCR, one page at a time.", len(images))

	t := transcript.Transcript{Title: req.Title, Pages: make([]transcript.PageResult, 0, len(images))}
	failed := 0
	for i, path := range images {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		page := p.processPage(ctx, i+1, len(images), path, lang)
		if err := ctx.Err(); err != nil {
			// an interrupted page is not an unreadable one
			return nil, err
		}
		if page.Failed() {
			failed++
		}
		t.Pages = append(t.Pages, page)
	}

	md, err := transcript.Markdown(t, p.labels)
	if err != nil {
		return nil, fmt.Errorf("render transcript: %w", err)
	}
	if err := transcript.WriteFile(req.Output, md); err != nil {
		return nil, err
	}
	p.log.Info(ctx, "Transcript saved to %s (%d pages, %d unreadable)", req.Output, len(images), failed)
	return &Result{Transcript: t, Markdown: md, Output: req.Output, Images: len(images), Failed: failed}, nil
}

func (p *Pipeline) extract(ctx context.Context, src, scratch string) error {
	if err := os.RemoveAll(scratch); err != nil {
		return fmt.Errorf("clear stale scratch dir: %w", err)
	}
	if err := os.MkdirAll(scratch, 0o755); err != nil {
		return fmt.Errorf("create scratch dir: %w", err)
	}
	p.log.Info(ctx, "Extracting archive %s...", filepath.Base(src))
	if err := p.extractor.Extract(ctx, src, scratch); err != nil {
		if errors.Is(err, archive.ErrRarUnavailable) {
			return &FatalError{Err: err}
		}
		return fmt.Errorf("extract %s: %w", filepath.Base(src), err)
	}
	return nil
}

func (p *Pipeline) removeScratch(ctx context.Context, dir string) {
	if err := os.RemoveAll(dir); err != nil {
		p.log.Error(ctx, "Failed to remove scratch dir %s: %v", dir, err)
		return
	}
	p.log.Debug(ctx, "Removed scratch dir %s", dir)
}

// processPage never fails: preprocessing and recognition errors (and panics
// from the OCR binding) are recorded on the page, which then renders the
// empty placeholder.
func (p *Pipeline) processPage(ctx context.Context, index, total int, path, lang string) (page transcript.PageResult) {
	page = transcript.PageResult{Index: index, Image: path, Dialogues: []string{}}
	defer func() {
		if r := recover(); r != nil {
			page.Dialogues = []string{}
			page.Err = fmt.Errorf("page %d panicked: %v", index, r)
			p.log.Error(ctx, "    [!] %v", page.Err)
		}
	}()

	p.log.Info(ctx, "  -> Processing page %d/%d: %s", index, total, filepath.Base(path))
	img, err := p.pre.Preprocess(ctx, path)
	if err != nil {
		page.Err = fmt.Errorf("preprocess: %w", err)
		p.log.Error(ctx, "    [!] Preprocessing failed for %s: %v", filepath.Base(path), err)
		return page
	}
	raw, err := p.rec.Recognize(ctx, img, lang)
	if err != nil {
		page.Err = fmt.Errorf("recognize: %w", err)
		p.log.Error(ctx, "    [!] OCR failed for %s: %v", filepath.Base(path), err)
		return page
	}
	page.Dialogues = p.asm.Assemble(raw)
	p.log.Debug(ctx, "    page %d: %d dialogue blocks", index, len(page.Dialogues))
	return page
}
