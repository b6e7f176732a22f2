package executor

import "context"

// Executor runs external commands. It exists so callers can swap in a fake
// in tests.
type Executor interface {
	Execute(ctx context.Context, name string, args ...string) (string, error)
	LookPath(name string) (string, error)
}
