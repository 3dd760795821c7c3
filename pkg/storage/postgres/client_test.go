package postgres_test

import (
	"os"
	"strconv"
	"testing"
	"time"

	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"

	"github.com/oceanbase/cinedeck-go/pkg/storage/postgres"
	"github.com/oceanbase/cinedeck-go/pkg/storage/storagetest"
)

func setupPostgresTest(t *testing.T) *postgres.Client {
	_ = godotenv.Load("../../../.env")

	password := os.Getenv("POSTGRES_PASSWORD")
	if password == "" {
		t.Skip("Skipping PostgreSQL test: POSTGRES_PASSWORD not set")
	}

	host := os.Getenv("POSTGRES_HOST")
	if host == "" {
		host = "127.0.0.1"
	}
	port := 5432
	if s := os.Getenv("POSTGRES_PORT"); s != "" {
		p, err := strconv.Atoi(s)
		if err != nil {
			t.Skipf("Skipping PostgreSQL test: invalid POSTGRES_PORT: %s", s)
		}
		port = p
	}
	user := os.Getenv("POSTGRES_USER")
	if user == "" {
		user = "postgres"
	}
	dbName := os.Getenv("POSTGRES_DATABASE")
	if dbName == "" {
		dbName = "cinedeck_test"
	}

	store, err := postgres.NewClient(&postgres.Config{
		Host:      host,
		Port:      port,
		User:      user,
		Password:  password,
		DBName:    dbName,
		TableName: "cinedeck_kv_test_" + strconv.FormatInt(time.Now().UnixNano(), 36),
	})
	if err != nil {
		t.Skipf("Skipping PostgreSQL test: failed to connect: %v", err)
	}
	return store
}

func TestPostgresStore(t *testing.T) {
	store := setupPostgresTest(t)
	defer store.Close()

	storagetest.Run(t, store)
}

func TestPostgresDSN(t *testing.T) {
	cfg := &postgres.Config{Host: "db", Port: 5433, User: "u", Password: "p", DBName: "d"}
	assert.Equal(t, "host=db port=5433 user=u password=p dbname=d sslmode=disable", cfg.DSN())

	cfg.SSLMode = "require"
	assert.Contains(t, cfg.DSN(), "sslmode=require")
}
