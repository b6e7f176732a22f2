package watcher

import (
	"fmt"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/huyinayena-commits/EasyScanlate/pkg/archive"
	"github.com/huyinayena-commits/EasyScanlate/pkg/logger"
)

type Options struct {
	// Settle is how long a file must go without events before it is handled.
	Settle time.Duration
	// Tick is how often pending files are checked.
	Tick time.Duration
	// Match selects the files to handle. Defaults to archive.IsArchive.
	Match func(path string) bool
	// Fatal reports handler errors that stop the watcher.
	Fatal  func(err error) bool
	Logger logger.Logger
}

// New creates a Watcher on dir.
func New(dir string, handler EventHandler, opts Options) (Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := fw.Add(dir); err != nil {
		fw.Close()
		return nil, fmt.Errorf("add watch path: %w", err)
	}

	if opts.Settle <= 0 {
		opts.Settle = 2 * time.Second
	}
	if opts.Tick <= 0 {
		opts.Tick = 250 * time.Millisecond
	}
	if opts.Match == nil {
		opts.Match = archive.IsArchive
	}
	if opts.Fatal == nil {
		opts.Fatal = func(error) bool { return false }
	}
	if opts.Logger == nil {
		opts.Logger = logger.Discard()
	}
	return &implWatcher{
		dir:     dir,
		handler: handler,
		opts:    opts,
		logger:  opts.Logger,
		watcher: fw,
	}, nil
}
