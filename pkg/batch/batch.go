// Package batch runs the chapter pipeline over every chapter of a comic
// folder, one chapter at a time.
package batch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/huyinayena-commits/EasyScanlate/pkg/archive"
	"github.com/huyinayena-commits/EasyScanlate/pkg/chapter"
	"github.com/huyinayena-commits/EasyScanlate/pkg/logger"
	"github.com/huyinayena-commits/EasyScanlate/pkg/natsort"
	"github.com/huyinayena-commits/EasyScanlate/pkg/transcript"
)

// DefaultSuffix is appended to a chapter stem to name its transcript.
const DefaultSuffix = "_transcript.md"

// Runner processes one chapter. *chapter.Pipeline satisfies it.
type Runner interface {
	Run(ctx context.Context, req chapter.Request) (*chapter.Result, error)
}

// Mode is how a folder was split into chapters.
type Mode string

const (
	ModeArchives   Mode = "archives"
	ModeSubfolders Mode = "subfolders"
	ModeFlat       Mode = "flat"
)

// Job is one planned chapter run.
type Job struct {
	Input  string
	Output string
	Title  string
}

// Summary lists what a batch produced. Written holds transcript paths,
// Skipped and Failed hold chapter inputs.
type Summary struct {
	Mode    Mode
	Written []string
	Skipped []string
	Failed  []string
}

type Options struct {
	Suffix string
	// HTML also writes an HTML rendering next to every transcript.
	HTML   bool
	Logger logger.Logger
}

type Orchestrator struct {
	runner Runner
	suffix string
	html   bool
	log    logger.Logger
}

func New(runner Runner, opts Options) *Orchestrator {
	if opts.Suffix == "" {
		opts.Suffix = DefaultSuffix
	}
	if opts.Logger == nil {
		opts.Logger = logger.Discard()
	}
	return &Orchestrator{runner: runner, suffix: opts.Suffix, html: opts.HTML, log: opts.Logger}
}

// Plan decides the chapters of folder. Archive files directly inside folder
// win; otherwise each sub-folder is a chapter; otherwise folder itself is one
// chapter. Leftover scratch directories are never treated as chapters.
func (o *Orchestrator) Plan(folder string) (Mode, []Job, error) {
	folder = filepath.Clean(folder)
	fi, err := os.Stat(folder)
	if err != nil {
		return "", nil, &chapter.FatalError{Err: fmt.Errorf("folder %s: %w", folder, err)}
	}
	if !fi.IsDir() {
		return "", nil, &chapter.FatalError{Err: fmt.Errorf("%s is not a directory", folder)}
	}
	entries, err := os.ReadDir(folder)
	if err != nil {
		return "", nil, fmt.Errorf("read folder %s: %w", folder, err)
	}
	name := filepath.Base(folder)

	var archives, dirs []string
	for _, e := range entries {
		p := filepath.Join(folder, e.Name())
		switch {
		case e.IsDir():
			if !strings.HasPrefix(e.Name(), "_temp_") {
				dirs = append(dirs, p)
			}
		case e.Type().IsRegular() && archive.IsArchive(e.Name()):
			archives = append(archives, p)
		}
	}

	if len(archives) > 0 {
		natsort.Paths(archives)
		jobs := make([]Job, 0, len(archives))
		for _, a := range archives {
			stem := chapter.Stem(a)
			jobs = append(jobs, Job{
				Input:  a,
				Output: filepath.Join(folder, stem+o.suffix),
				Title:  name + " - " + stem,
			})
		}
		return ModeArchives, jobs, nil
	}
	if len(dirs) > 0 {
		natsort.Paths(dirs)
		jobs := make([]Job, 0, len(dirs))
		for _, d := range dirs {
			base := filepath.Base(d)
			jobs = append(jobs, Job{
				Input:  d,
				Output: filepath.Join(folder, base+o.suffix),
				Title:  name + " - " + base,
			})
		}
		return ModeSubfolders, jobs, nil
	}
	return ModeFlat, []Job{{
		Input:  folder,
		Output: filepath.Join(folder, name+o.suffix),
		Title:  name,
	}}, nil
}

// Run processes every chapter of folder in order. Chapters that fail with a
// non-fatal error are recorded and skipped; a fatal error or cancellation
// stops the batch and is returned with the partial summary.
func (o *Orchestrator) Run(ctx context.Context, folder string) (Summary, error) {
	mode, jobs, err := o.Plan(folder)
	if err != nil {
		return Summary{}, err
	}
	sum := Summary{Mode: mode}
	o.log.Info(ctx, "Processing %s: %d chapter(s), mode=%s", filepath.Base(filepath.Clean(folder)), len(jobs), mode)

	for i, job := range jobs {
		if err := ctx.Err(); err != nil {
			return sum, err
		}
		o.log.Info(ctx, "--- [%d/%d] %s ---", i+1, len(jobs), filepath.Base(job.Input))
		res, err := o.runner.Run(ctx, chapter.Request{Input: job.Input, Output: job.Output, Title: job.Title})
		switch {
		case err == nil:
		case chapter.IsFatal(err), errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			o.log.Error(ctx, "Aborting batch: %v", err)
			return sum, err
		case errors.Is(err, chapter.ErrNoImages):
			o.log.Warn(ctx, "Skipping %s: %v", filepath.Base(job.Input), err)
			sum.Skipped = append(sum.Skipped, job.Input)
			continue
		default:
			o.log.Error(ctx, "Chapter %s failed: %v", filepath.Base(job.Input), err)
			sum.Failed = append(sum.Failed, job.Input)
			continue
		}

		sum.Written = append(sum.Written, res.Output)
		if o.html {
			if err := WriteHTML(res.Output, res.Markdown); err != nil {
				o.log.Error(ctx, "HTML export for %s failed: %v", filepath.Base(job.Input), err)
			}
		}
	}
	o.log.Info(ctx, "Batch done: %d written, %d skipped, %d failed", len(sum.Written), len(sum.Skipped), len(sum.Failed))
	return sum, nil
}

// HTMLPath maps a Markdown transcript path to its HTML sibling.
func HTMLPath(mdPath string) string {
	return strings.TrimSuffix(mdPath, filepath.Ext(mdPath)) + ".html"
}

// WriteHTML renders markdown to HTML and writes it next to mdPath.
func WriteHTML(mdPath string, markdown []byte) error {
	html, err := transcript.ToHTML(markdown)
	if err != nil {
		return err
	}
	return transcript.WriteFile(HTMLPath(mdPath), html)
}
