package feed

import "context"

// Source yields batches of items.
//
// Fetch performs I/O and may be called repeatedly from a background
// goroutine. It must not mutate shared state; a failure is returned as an
// error and is recoverable by the caller.
type Source interface {
	// Label returns the stable, human-readable source name.
	Label() string

	// Fetch retrieves the current batch of items.
	Fetch(ctx context.Context) ([]Item, error)
}
