// Package storage provides the key-value persistence interface for cinedeck
// local state and its configuration types.
//
// The discovery core only persists a handful of small JSON documents under
// logical names (preferences, hidden set, saved filters, lists). Every backend
// (memory, SQLite, PostgreSQL, OceanBase, Badger) implements KVStore.
package storage

import (
	"context"
	"errors"
	"unicode/utf8"
)

// ErrNotFound is returned by Get when the key does not exist.
var ErrNotFound = errors.New("storage: key not found")

// DefaultTableName is the table used by the SQL backends.
const DefaultTableName = "cinedeck_kv"

// KVStore defines the interface for key-value storage backends.
//
// Implementations must be safe for concurrent use.
type KVStore interface {
	// Get returns the value stored under key, or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key string, value []byte) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Keys returns every key starting with prefix, sorted ascending.
	Keys(ctx context.Context, prefix string) ([]string, error)

	// Close releases resources.
	Close() error
}

// PrefixLength returns the length of prefix in characters, as used by the
// SQL backends' SUBSTR prefix match.
func PrefixLength(prefix string) int {
	return utf8.RuneCountInString(prefix)
}
