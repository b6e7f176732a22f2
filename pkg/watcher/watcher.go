package watcher

import (
	"context"
	"fmt"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/huyinayena-commits/EasyScanlate/pkg/logger"
	"github.com/huyinayena-commits/EasyScanlate/pkg/natsort"
)

type implWatcher struct {
	dir     string
	handler EventHandler
	opts    Options
	logger  logger.Logger
	watcher *fsnotify.Watcher
}

// Start blocks until ctx is done, the handler returns a fatal error, or the
// watcher is stopped. A file is handled once it has been quiet for
// Options.Settle, so archives still being copied are not picked up early.
func (w *implWatcher) Start(ctx context.Context) error {
	w.logger.Info(ctx, "Watching %s for new archives (settle %s)", w.dir, w.opts.Settle)

	pending := map[string]time.Time{}
	ticker := time.NewTicker(w.opts.Tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info(ctx, "File watcher stopped")
			return ctx.Err()

		case ev, ok := <-w.watcher.Events:
			if !ok {
				return fmt.Errorf("watcher events channel closed")
			}
			if !w.opts.Match(ev.Name) {
				continue
			}
			switch {
			case ev.Has(fsnotify.Create), ev.Has(fsnotify.Write):
				if _, seen := pending[ev.Name]; !seen {
					w.logger.Info(ctx, "New archive detected: %s", ev.Name)
				}
				pending[ev.Name] = time.Now()
			case ev.Has(fsnotify.Remove), ev.Has(fsnotify.Rename):
				delete(pending, ev.Name)
			}

		case <-ticker.C:
			var ready []string
			now := time.Now()
			for name, t := range pending {
				if now.Sub(t) >= w.opts.Settle {
					ready = append(ready, name)
					delete(pending, name)
				}
			}
			natsort.Paths(ready)
			for _, name := range ready {
				if err := ctx.Err(); err != nil {
					return err
				}
				if err := w.handler(ctx, name); err != nil {
					if w.opts.Fatal(err) {
						return err
					}
					w.logger.Error(ctx, "Failed to process %s: %v", name, err)
				}
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return fmt.Errorf("watcher errors channel closed")
			}
			w.logger.Error(ctx, "Watcher error: %v", err)
		}
	}
}

// Stop closes the underlying fsnotify watcher.
func (w *implWatcher) Stop() error {
	return w.watcher.Close()
}
