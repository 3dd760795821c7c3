// Package sqlite provides the SQLite implementation of storage.KVStore.
//
// SQLite is the default backend: a single local file, suitable for one device
// and one foreground session. The database runs in WAL mode.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"

	"github.com/oceanbase/cinedeck-go/pkg/storage"
)

// Client implements KVStore using SQLite as the backend.
type Client struct {
	// db is the SQLite database connection.
	db *sql.DB

	// tableName is the table holding key-value rows.
	tableName string
}

var _ storage.KVStore = (*Client)(nil)

// Config contains configuration for creating a SQLite store.
type Config struct {
	// DBPath is the path to the SQLite database file.
	DBPath string

	// TableName defaults to storage.DefaultTableName.
	TableName string
}

// NewClient opens (creating if needed) the database and its table.
//
// Returns an error if the directory cannot be created, the database cannot be
// opened or the table cannot be initialised.
func NewClient(cfg *Config) (*Client, error) {
	if cfg == nil || cfg.DBPath == "" {
		return nil, errors.New("NewSQLiteClient: db path is required")
	}
	dbDir := filepath.Dir(cfg.DBPath)
	if dbDir != "" && dbDir != "." {
		if err := os.MkdirAll(dbDir, 0755); err != nil {
			return nil, fmt.Errorf("NewSQLiteClient: failed to create directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", cfg.DBPath+"?_foreign_keys=1&_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("NewSQLiteClient: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("NewSQLiteClient: %w", err)
	}

	tableName := cfg.TableName
	if tableName == "" {
		tableName = storage.DefaultTableName
	}
	client := &Client{db: db, tableName: tableName}

	if err := client.initTables(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return client, nil
}

func (c *Client) initTables(ctx context.Context) error {
	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			kv_key TEXT PRIMARY KEY,
			kv_value BLOB NOT NULL,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`, c.tableName)
	if _, err := c.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("initTables: %w", err)
	}
	return nil
}

// Get returns the value stored under key.
func (c *Client) Get(ctx context.Context, key string) ([]byte, error) {
	query := fmt.Sprintf("SELECT kv_value FROM %s WHERE kv_key = ?", c.tableName)

	var value []byte
	err := c.db.QueryRowContext(ctx, query, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("Get: %w", err)
	}
	return value, nil
}

// Set upserts key.
func (c *Client) Set(ctx context.Context, key string, value []byte) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (kv_key, kv_value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(kv_key) DO UPDATE SET kv_value = excluded.kv_value, updated_at = CURRENT_TIMESTAMP
	`, c.tableName)
	if _, err := c.db.ExecContext(ctx, query, key, value); err != nil {
		return fmt.Errorf("Set: %w", err)
	}
	return nil
}

// Delete removes key.
func (c *Client) Delete(ctx context.Context, key string) error {
	query := fmt.Sprintf("DELETE FROM %s WHERE kv_key = ?", c.tableName)
	if _, err := c.db.ExecContext(ctx, query, key); err != nil {
		return fmt.Errorf("Delete: %w", err)
	}
	return nil
}

// Keys lists keys with the given prefix.
func (c *Client) Keys(ctx context.Context, prefix string) ([]string, error) {
	query := fmt.Sprintf("SELECT kv_key FROM %s WHERE substr(kv_key, 1, ?) = ? ORDER BY kv_key", c.tableName)

	rows, err := c.db.QueryContext(ctx, query, storage.PrefixLength(prefix), prefix)
	if err != nil {
		return nil, fmt.Errorf("Keys: %w", err)
	}
	defer func() { _ = rows.Close() }()

	keys := []string{}
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, fmt.Errorf("Keys: %w", err)
		}
		keys = append(keys, k)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("Keys: %w", err)
	}
	return keys, nil
}

// Close closes the database connection.
func (c *Client) Close() error {
	return c.db.Close()
}
