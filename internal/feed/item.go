// Package feed defines the normalized feed entry and the sources that produce it.
package feed

import (
	"slices"
	"time"
)

// UntitledPlaceholder is used when an entry carries no title.
const UntitledPlaceholder = "(untitled)"

// Item is one normalized feed entry.
//
// Two items are the same logical entry iff their IDs are equal. Description
// and Link are empty when the source did not provide them; Published is nil
// when the entry had no usable date.
type Item struct {
	ID          string
	Title       string
	Description string
	Link        string
	Published   *time.Time // UTC
	SourceLabel string
}

// HasPublished reports whether the item carries a publication time.
func (i Item) HasPublished() bool {
	return i.Published != nil
}

// Compare orders items newest first. An absent timestamp is older than every
// present one; equal timestamps (including two absent ones) compare equal.
func Compare(a, b Item) int {
	switch {
	case a.Published == nil && b.Published == nil:
		return 0
	case a.Published == nil:
		return 1
	case b.Published == nil:
		return -1
	}
	return b.Published.Compare(*a.Published)
}

// SortNewestFirst sorts items in place by Compare. The relative order of
// order-equivalent items is unspecified.
func SortNewestFirst(items []Item) {
	slices.SortFunc(items, Compare)
}

// IsSortedNewestFirst reports whether items satisfy the Compare ordering.
func IsSortedNewestFirst(items []Item) bool {
	return slices.IsSortedFunc(items, Compare)
}

// PublishedAt returns a pointer to t normalized to UTC. A zero time yields nil.
func PublishedAt(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	u := t.UTC()
	return &u
}
