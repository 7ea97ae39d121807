// Package store holds the de-duplicated, newest-first collection of feed items.
package store

import "github.com/abelbrown/skim/internal/feed"

// Store owns the merged item list and the set of IDs it contains.
// NOT safe for concurrent use: a single goroutine (the UI loop) owns it.
//
// Invariants, after every call:
//   - seen holds exactly the IDs present in items
//   - no two items share an ID
//   - items is sorted by feed.Compare (newest first, undated last)
type Store struct {
	items []feed.Item
	seen  map[string]struct{}
}

// New creates an empty Store.
func New() *Store {
	return &Store{
		seen: make(map[string]struct{}),
	}
}

// Merge adds every item whose ID has not been seen, then re-sorts.
// The first item seen for an ID wins; later copies, including duplicates
// within batch itself, are discarded without touching the stored item.
// Returns the number of items added.
func (s *Store) Merge(batch []feed.Item) int {
	added := 0
	for _, item := range batch {
		if _, dup := s.seen[item.ID]; dup {
			continue
		}
		s.seen[item.ID] = struct{}{}
		s.items = append(s.items, item)
		added++
	}

	if added > 0 {
		feed.SortNewestFirst(s.items)
	}
	return added
}

// Items returns the current ordering. The slice is owned by the Store and
// must be treated as read-only; it is only valid until the next Merge.
func (s *Store) Items() []feed.Item {
	return s.items
}

// Len returns the number of stored items.
func (s *Store) Len() int {
	return len(s.items)
}

// At returns the item at index i.
func (s *Store) At(i int) (feed.Item, bool) {
	if i < 0 || i >= len(s.items) {
		return feed.Item{}, false
	}
	return s.items[i], true
}

// Contains reports whether an item with id has been merged.
func (s *Store) Contains(id string) bool {
	_, ok := s.seen[id]
	return ok
}
