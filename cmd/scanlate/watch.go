package main

import (
	"context"
	"errors"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/huyinayena-commits/EasyScanlate/pkg/batch"
	"github.com/huyinayena-commits/EasyScanlate/pkg/chapter"
	"github.com/huyinayena-commits/EasyScanlate/pkg/watcher"
)

var settle time.Duration

var watchCmd = &cobra.Command{
	Use:   "watch <folder>",
	Short: "Transcribe archives as they are dropped into a folder",
	Args:  cobra.ExactArgs(1),
	RunE:  watchCommand,
}

func init() {
	watchCmd.Flags().DurationVar(&settle, "settle", 2*time.Second, "quiet period before a new archive is processed")
}

func watchCommand(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	folder, err := filepath.Abs(args[0])
	if err != nil {
		return err
	}
	name := filepath.Base(folder)

	handler := func(ctx context.Context, path string) error {
		stem := chapter.Stem(path)
		res, err := a.pipeline.Run(ctx, chapter.Request{
			Input:  path,
			Output: filepath.Join(folder, stem+a.cfg.Paths.TranscriptSuffix),
			Title:  name + " - " + stem,
		})
		if errors.Is(err, chapter.ErrNoImages) {
			return nil
		}
		if err != nil {
			return err
		}
		if opts.HTML {
			return batch.WriteHTML(res.Output, res.Markdown)
		}
		return nil
	}

	w, err := watcher.New(folder, handler, watcher.Options{Settle: settle, Fatal: chapter.IsFatal, Logger: a.log})
	if err != nil {
		return err
	}
	defer w.Stop()

	err = w.Start(cmd.Context())
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
