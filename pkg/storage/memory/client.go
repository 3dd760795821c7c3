// Package memory provides an in-process KVStore, used for ephemeral sessions
// and tests.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/oceanbase/cinedeck-go/pkg/storage"
)

// Client implements KVStore over a map.
type Client struct {
	mu   sync.RWMutex
	data map[string][]byte
}

var _ storage.KVStore = (*Client)(nil)

// NewClient creates an empty store.
func NewClient() *Client {
	return &Client{data: make(map[string][]byte)}
}

func (c *Client) Get(_ context.Context, key string) ([]byte, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.data[key]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return append([]byte(nil), v...), nil
}

func (c *Client) Set(_ context.Context, key string, value []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = append([]byte(nil), value...)
	return nil
}

func (c *Client) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
	return nil
}

func (c *Client) Keys(_ context.Context, prefix string) ([]string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	keys := []string{}
	for k := range c.data {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

// Close drops all data.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data = make(map[string][]byte)
	return nil
}
