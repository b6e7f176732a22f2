package watcher

import "context"

// Watcher monitors a folder for new chapter archives.
type Watcher interface {
	Start(ctx context.Context) error
	Stop() error
}

// EventHandler processes one settled file. Handlers run one at a time on the
// watcher goroutine.
type EventHandler func(ctx context.Context, filePath string) error
