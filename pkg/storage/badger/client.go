// Package badger provides the BadgerDB implementation of storage.KVStore: an
// embedded LSM store that needs no cgo and no server.
package badger

import (
	"context"
	"errors"
	"fmt"

	badgerdb "github.com/dgraph-io/badger/v4"

	"github.com/oceanbase/cinedeck-go/pkg/storage"
)

// Client implements KVStore on a Badger database.
type Client struct {
	db *badgerdb.DB
}

var _ storage.KVStore = (*Client)(nil)

// Config contains Badger configuration.
type Config struct {
	// Path is the data directory. Ignored when InMemory is set.
	Path string

	// InMemory keeps everything in RAM.
	InMemory bool
}

// NewClient opens the database.
func NewClient(cfg *Config) (*Client, error) {
	if cfg == nil || (!cfg.InMemory && cfg.Path == "") {
		return nil, errors.New("NewBadgerClient: path is required")
	}

	opts := badgerdb.DefaultOptions(cfg.Path).WithLogger(nil)
	if cfg.InMemory {
		opts = badgerdb.DefaultOptions("").WithInMemory(true).WithLogger(nil)
	}

	db, err := badgerdb.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("NewBadgerClient: %w", err)
	}
	return &Client{db: db}, nil
}

func (c *Client) Get(_ context.Context, key string) ([]byte, error) {
	var value []byte
	err := c.db.View(func(txn *badgerdb.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badgerdb.ErrKeyNotFound) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("Get: %w", err)
	}
	return value, nil
}

func (c *Client) Set(_ context.Context, key string, value []byte) error {
	err := c.db.Update(func(txn *badgerdb.Txn) error {
		return txn.Set([]byte(key), append([]byte(nil), value...))
	})
	if err != nil {
		return fmt.Errorf("Set: %w", err)
	}
	return nil
}

func (c *Client) Delete(_ context.Context, key string) error {
	err := c.db.Update(func(txn *badgerdb.Txn) error {
		return txn.Delete([]byte(key))
	})
	if err != nil {
		return fmt.Errorf("Delete: %w", err)
	}
	return nil
}

func (c *Client) Keys(_ context.Context, prefix string) ([]string, error) {
	keys := []string{}
	err := c.db.View(func(txn *badgerdb.Txn) error {
		opts := badgerdb.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = []byte(prefix)

		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			keys = append(keys, string(it.Item().KeyCopy(nil)))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("Keys: %w", err)
	}
	return keys, nil
}

// Close flushes and closes the database.
func (c *Client) Close() error {
	return c.db.Close()
}
