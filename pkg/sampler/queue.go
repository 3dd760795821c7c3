package sampler

import (
	"github.com/oceanbase/cinedeck-go/pkg/catalog"
	"github.com/oceanbase/cinedeck-go/pkg/intelligence"
)

// DefaultRefillThreshold is the number of unconsumed cards at or below which
// the deck is refilled.
const DefaultRefillThreshold = 10

// ShouldRefill reports whether a deck of queueLen items with the cursor at
// cursor needs more candidates.
func ShouldRefill(queueLen, cursor, threshold int) bool {
	return queueLen-cursor <= threshold
}

// Queue is the presentation deck: ordered items plus a cursor at the next
// unconsumed card. A key appears at most once.
//
// Queue is not safe for concurrent use; the owning session serialises access.
type Queue struct {
	items  []catalog.Item
	keys   *intelligence.KeySet
	cursor int
}

// NewQueue creates an empty queue.
func NewQueue() *Queue {
	return &Queue{keys: intelligence.NewKeySet()}
}

// Append adds items whose key is not already queued and for which skip
// returns false. It returns the number of items added.
func (q *Queue) Append(items []catalog.Item, skip func(catalog.Key) bool) int {
	added := 0
	for _, item := range items {
		key := item.Key()
		if skip != nil && skip(key) {
			continue
		}
		if !q.keys.Add(key) {
			continue
		}
		q.items = append(q.items, item)
		added++
	}
	return added
}

// Current returns the card under the cursor.
func (q *Queue) Current() (catalog.Item, bool) {
	if q.cursor >= len(q.items) {
		return catalog.Item{}, false
	}
	return q.items[q.cursor], true
}

// Peek returns up to n cards from the cursor on without consuming them.
func (q *Queue) Peek(n int) []catalog.Item {
	rest := q.items[q.cursor:]
	if n >= 0 && n < len(rest) {
		rest = rest[:n]
	}
	return append([]catalog.Item(nil), rest...)
}

// Advance moves the cursor forward. It reports false at the end of the deck.
func (q *Queue) Advance() bool {
	if q.cursor >= len(q.items) {
		return false
	}
	q.cursor++
	return true
}

// Remove drops every occurrence of key. Removing a card before the cursor
// moves the cursor back so the next unconsumed card stays the same.
func (q *Queue) Remove(key catalog.Key) bool {
	removed := false
	kept := q.items[:0]
	for i, item := range q.items {
		if item.Key() != key {
			kept = append(kept, item)
			continue
		}
		removed = true
		if i < q.cursor {
			q.cursor--
		}
	}
	for i := len(kept); i < len(q.items); i++ {
		q.items[i] = catalog.Item{}
	}
	q.items = kept
	q.keys.Remove(key)
	return removed
}

// Contains reports whether key is queued, consumed or not.
func (q *Queue) Contains(key catalog.Key) bool {
	return q.keys.Contains(key)
}

// Keys returns a copy of every queued key.
func (q *Queue) Keys() *intelligence.KeySet {
	return q.keys.Clone()
}

// Len returns the number of cards, consumed ones included.
func (q *Queue) Len() int {
	return len(q.items)
}

// Cursor returns the index of the next unconsumed card.
func (q *Queue) Cursor() int {
	return q.cursor
}

// Remaining returns the number of unconsumed cards.
func (q *Queue) Remaining() int {
	return len(q.items) - q.cursor
}

// NeedsRefill applies ShouldRefill to the queue.
func (q *Queue) NeedsRefill(threshold int) bool {
	return ShouldRefill(len(q.items), q.cursor, threshold)
}
