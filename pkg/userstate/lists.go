package userstate

import (
	"context"

	"github.com/oceanbase/cinedeck-go/pkg/catalog"
)

// List returns the entries of list, newest first.
func (s *Store) List(ctx context.Context, list ListName) ([]ListEntry, error) {
	entries := []ListEntry{}
	if _, err := s.load(ctx, list.storageKey(), &entries); err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []ListEntry{}
	}
	return entries, nil
}

// AddToList prepends entry unless an entry with the same (id, type) is
// already present. It reports whether the list changed. A zero AddedAt is
// stamped with the store clock.
func (s *Store) AddToList(ctx context.Context, list ListName, entry ListEntry) (bool, error) {
	entries, err := s.List(ctx, list)
	if err != nil {
		return false, err
	}
	for _, e := range entries {
		if e.Key() == entry.Key() {
			return false, nil
		}
	}
	if entry.AddedAt.IsZero() {
		entry.AddedAt = s.now()
	}
	next := append([]ListEntry{entry}, entries...)
	if err := s.save(ctx, list.storageKey(), next); err != nil {
		return false, err
	}
	return true, nil
}

// RemoveFromList drops the entry with key. It reports whether it was present.
func (s *Store) RemoveFromList(ctx context.Context, list ListName, key catalog.Key) (bool, error) {
	entries, err := s.List(ctx, list)
	if err != nil {
		return false, err
	}
	next := entries[:0]
	for _, e := range entries {
		if e.Key() != key {
			next = append(next, e)
		}
	}
	if len(next) == len(entries) {
		return false, nil
	}
	if err := s.save(ctx, list.storageKey(), next); err != nil {
		return false, err
	}
	return true, nil
}

// ClearList empties list.
func (s *Store) ClearList(ctx context.Context, list ListName) error {
	return s.save(ctx, list.storageKey(), []ListEntry{})
}
