// Package poll runs the background fetch loop that feeds the UI.
package poll

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/abelbrown/skim/internal/feed"
	"github.com/abelbrown/skim/internal/logging"
)

// DefaultInterval is the time slept between poll cycles.
const DefaultInterval = 60 * time.Second

// DefaultBuffer is the capacity of the channel between Poller and UI.
const DefaultBuffer = 64

// ErrInvalidInterval is returned by Run when the interval is not positive.
var ErrInvalidInterval = errors.New("poll interval must be positive")

// Poller fetches every source in order and publishes one Message per fetch,
// then sleeps for the interval. A failed source is retried next cycle with
// no backoff.
//
// The Poller never touches UI state; the channel is the only thing it
// shares with its consumer.
type Poller struct {
	sources  []feed.Source // IMMUTABLE: copied at construction
	interval time.Duration
	log      *log.Logger
}

// New creates a Poller over sources.
func New(sources []feed.Source, interval time.Duration) *Poller {
	sourcesCopy := make([]feed.Source, len(sources))
	copy(sourcesCopy, sources)

	return &Poller{
		sources:  sourcesCopy,
		interval: interval,
		log:      logging.WithPrefix("poll"),
	}
}

// Sources returns the labels of the configured sources, in poll order.
func (p *Poller) Sources() []string {
	labels := make([]string, len(p.sources))
	for i, src := range p.sources {
		labels[i] = src.Label()
	}
	return labels
}

// Run polls until the consumer goes away, which it signals by cancelling
// ctx. A cancelled consumer is normal shutdown, so Run then returns nil.
// Run never closes out; the caller owns the channel.
func (p *Poller) Run(ctx context.Context, out chan<- Message) error {
	if p.interval <= 0 {
		return fmt.Errorf("%w: %s", ErrInvalidInterval, p.interval)
	}

	p.log.Info("poller started", "sources", len(p.sources), "interval", p.interval)
	defer p.log.Info("poller stopped")

	for {
		if !p.cycle(ctx, out) {
			return nil
		}

		timer := time.NewTimer(p.interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil
		case <-timer.C:
		}
	}
}

// cycle fetches every source once, in order. It reports false as soon as
// the consumer has gone away.
func (p *Poller) cycle(ctx context.Context, out chan<- Message) bool {
	for _, src := range p.sources {
		if ctx.Err() != nil {
			return false
		}

		msg := p.fetch(ctx, src)
		if ctx.Err() != nil {
			return false
		}

		select {
		case out <- msg:
		case <-ctx.Done():
			return false
		}
	}
	return true
}

// fetch runs one Source.Fetch and converts the outcome into a Message.
// A panicking source is reported as a FetchError instead of crashing.
func (p *Poller) fetch(ctx context.Context, src feed.Source) (msg Message) {
	label := src.Label()
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			p.log.Error("source panicked", "source", label, "panic", r)
			msg = FetchError{Source: label, Err: fmt.Errorf("panic: %v", r)}
		}
	}()

	items, err := src.Fetch(ctx)
	if err != nil {
		p.log.Warn("fetch failed", "source", label, "err", err, "dur", time.Since(start))
		return FetchError{Source: label, Err: err}
	}

	p.log.Debug("fetch complete", "source", label, "count", len(items), "dur", time.Since(start))
	return Batch{Source: label, Items: items}
}

// Start runs a Poller over sources in a new goroutine and returns its
// channel, which is closed once the poller stops. A non-positive buffer
// uses DefaultBuffer.
func Start(ctx context.Context, sources []feed.Source, interval time.Duration, buffer int) <-chan Message {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}
	out := make(chan Message, buffer)
	p := New(sources, interval)

	go func() {
		defer close(out)
		if err := p.Run(ctx, out); err != nil {
			p.log.Error("poller exited", "err", err)
		}
	}()
	return out
}
