// Package postgres provides the PostgreSQL implementation of storage.KVStore.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/lib/pq"

	"github.com/oceanbase/cinedeck-go/pkg/storage"
)

// Client is a PostgreSQL key-value client.
type Client struct {
	db        *sql.DB
	tableName string
}

var _ storage.KVStore = (*Client)(nil)

// Config contains PostgreSQL configuration.
type Config struct {
	Host      string
	Port      int
	User      string
	Password  string
	DBName    string
	TableName string
	SSLMode   string
}

// DSN renders the lib/pq connection string.
func (cfg *Config) DSN() string {
	sslMode := cfg.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, sslMode)
}

// NewClient connects and creates the table if needed.
func NewClient(cfg *Config) (*Client, error) {
	db, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("NewPostgresClient: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("NewPostgresClient: %w", err)
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
			kv_key VARCHAR(255) PRIMARY KEY,
			kv_value BYTEA NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)
	`, c.tableName)
	if _, err := c.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("initTables: %w", err)
	}
	return nil
}

func (c *Client) Get(ctx context.Context, key string) ([]byte, error) {
	query := fmt.Sprintf("SELECT kv_value FROM %s WHERE kv_key = $1", c.tableName)

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

func (c *Client) Set(ctx context.Context, key string, value []byte) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (kv_key, kv_value, updated_at) VALUES ($1, $2, now())
		ON CONFLICT (kv_key) DO UPDATE SET kv_value = EXCLUDED.kv_value, updated_at = now()
	`, c.tableName)
	if _, err := c.db.ExecContext(ctx, query, key, value); err != nil {
		return fmt.Errorf("Set: %w", err)
	}
	return nil
}

func (c *Client) Delete(ctx context.Context, key string) error {
	query := fmt.Sprintf("DELETE FROM %s WHERE kv_key = $1", c.tableName)
	if _, err := c.db.ExecContext(ctx, query, key); err != nil {
		return fmt.Errorf("Delete: %w", err)
	}
	return nil
}

func (c *Client) Keys(ctx context.Context, prefix string) ([]string, error) {
	query := fmt.Sprintf("SELECT kv_key FROM %s WHERE substr(kv_key, 1, $1) = $2 ORDER BY kv_key", c.tableName)

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

// Close closes the connection pool.
func (c *Client) Close() error {
	return c.db.Close()
}
