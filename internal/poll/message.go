package poll

import "github.com/abelbrown/skim/internal/feed"

// Message is published by the Poller to the UI loop. It is either a Batch
// or a FetchError.
type Message interface {
	// SourceLabel names the source the message is about.
	SourceLabel() string
}

// Batch carries the items returned by one successful fetch.
type Batch struct {
	Source string
	Items  []feed.Item
}

// SourceLabel implements Message.
func (b Batch) SourceLabel() string { return b.Source }

// FetchError reports a failed fetch. It is recoverable: the source is
// retried on the next cycle.
type FetchError struct {
	Source string
	Err    error
}

// SourceLabel implements Message.
func (e FetchError) SourceLabel() string { return e.Source }

// Message returns the human-readable failure description.
func (e FetchError) Message() string {
	if e.Err == nil {
		return "unknown error"
	}
	return e.Err.Error()
}

// Error implements error so a FetchError can be logged or wrapped directly.
func (e FetchError) Error() string {
	return e.Source + ": " + e.Message()
}
