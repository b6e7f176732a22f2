package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/huyinayena-commits/EasyScanlate/pkg/batch"
	"github.com/huyinayena-commits/EasyScanlate/pkg/chapter"
	"github.com/huyinayena-commits/EasyScanlate/pkg/config"
	"github.com/huyinayena-commits/EasyScanlate/pkg/engine"
	"github.com/huyinayena-commits/EasyScanlate/pkg/logger"
	"github.com/huyinayena-commits/EasyScanlate/pkg/menu"
)

type options struct {
	ConfigPath string
	Lang       string
	Title      string
	LogLevel   string
	HTML       bool
}

var opts options

var rootCmd = &cobra.Command{
	Use:   "scanlate [input]",
	Short: "OCR comic chapters into Markdown transcripts",
	Long: `scanlate reads a chapter archive (.cbz, .cbr, .zip, .rar) or a folder of
page images and writes <name>_transcript.md next to it.

Without an input it lists the comics of the Kotatsu download folder and
processes the chosen one in batch mode.`,
	Args:          cobra.MaximumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          rootCommand,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", "scanlate.yaml", "config file (missing file means defaults)")
	rootCmd.PersistentFlags().StringVarP(&opts.Lang, "lang", "l", "", "tesseract language code (default from config, ind)")
	rootCmd.PersistentFlags().StringVar(&opts.LogLevel, "log-level", "", "debug, info, warn or error")
	rootCmd.PersistentFlags().BoolVar(&opts.HTML, "html", false, "also write an HTML copy of every transcript")
	rootCmd.Flags().StringVarP(&opts.Title, "title", "t", "", "transcript title (default: input name)")

	rootCmd.AddCommand(batchCmd, watchCmd)
}

// Execute runs the command line and reports the final error on stderr.
func Execute(ctx context.Context) error {
	err := rootCmd.ExecuteContext(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "[ERROR] %v\n", err)
	}
	return err
}

// app bundles what every subcommand needs.
type app struct {
	cfg      *config.Config
	log      logger.Logger
	pipeline *chapter.Pipeline
	batch    *batch.Orchestrator
}

func newApp() (*app, error) {
	if err := config.LoadDotEnv(".env"); err != nil {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, err
	}
	if opts.Lang != "" {
		cfg.OCR.Language = opts.Lang
	}
	if opts.LogLevel != "" {
		cfg.Logging.Level = opts.LogLevel
	}
	log := logger.New(cfg.Logging.Level)
	pipe := engine.NewPipeline(cfg, log)
	return &app{
		cfg:      cfg,
		log:      log,
		pipeline: pipe,
		batch:    batch.New(pipe, batch.Options{Suffix: cfg.Paths.TranscriptSuffix, HTML: opts.HTML, Logger: log}),
	}, nil
}

func rootCommand(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	if len(args) == 1 {
		return a.runSingle(ctx, args[0])
	}

	fmt.Fprintln(cmd.OutOrStdout(), "\n=== EasyScanlate - Kotatsu Mode ===")
	folder, err := menu.Select(a.cfg.Paths.KotatsuDir, cmd.InOrStdin(), cmd.OutOrStdout())
	if errors.Is(err, menu.ErrCancelled) {
		return nil
	}
	if err != nil {
		return err
	}
	return a.runBatch(ctx, folder)
}

// runSingle processes one explicit archive or folder. A chapter without
// images is reported but is not a failure.
func (a *app) runSingle(ctx context.Context, input string) error {
	abs, err := filepath.Abs(input)
	if err != nil {
		return err
	}
	fi, err := os.Stat(abs)
	if err != nil {
		return fmt.Errorf("invalid input path %s: %w", input, err)
	}
	name := filepath.Base(abs)
	if !fi.IsDir() {
		name = chapter.Stem(abs)
	}
	title := opts.Title
	if title == "" {
		title = name
	}
	out := filepath.Join(filepath.Dir(abs), name+a.cfg.Paths.TranscriptSuffix)

	res, err := a.pipeline.Run(ctx, chapter.Request{Input: abs, Output: out, Title: title})
	if errors.Is(err, chapter.ErrNoImages) {
		return nil
	}
	if err != nil {
		return err
	}
	fmt.Printf("\n[v] Transcript saved to:\n    %s\n", res.Output)
	if opts.HTML {
		if err := batch.WriteHTML(res.Output, res.Markdown); err != nil {
			return fmt.Errorf("html export: %w", err)
		}
		fmt.Printf("    %s\n", batch.HTMLPath(res.Output))
	}
	return nil
}

func (a *app) runBatch(ctx context.Context, folder string) error {
	sum, err := a.batch.Run(ctx, folder)
	if err != nil {
		return err
	}
	fmt.Printf("\nDone: %d transcript(s) written in %s\n", len(sum.Written), folder)
	if len(sum.Failed) > 0 {
		fmt.Printf("Failed chapters: %d (see log)\n", len(sum.Failed))
	}
	return nil
}
