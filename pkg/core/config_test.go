package core

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oceanbase/cinedeck-go/pkg/catalog"
	"github.com/oceanbase/cinedeck-go/pkg/intelligence"
	badgerStore "github.com/oceanbase/cinedeck-go/pkg/storage/badger"
)

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("DATABASE_PROVIDER", "postgres")
	t.Setenv("POSTGRES_HOST", "db.internal")
	t.Setenv("POSTGRES_PORT", "6543")
	t.Setenv("POSTGRES_PASSWORD", "secret")
	t.Setenv("TMDB_API_KEY", "tmdb-key")
	t.Setenv("TMDB_REGION", "MX")
	t.Setenv("DISCOVERY_HALF_LIFE_DAYS", "30")
	t.Setenv("DISCOVERY_PAGES", "5")
	t.Setenv("LLM_PROVIDER", "deepseek")
	t.Setenv("LLM_API_KEY", "sk-test")
	t.Setenv("PROFILE_ID", "living-room")

	cfg, err := LoadConfigFromEnv()
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "postgres", cfg.Store.Provider)
	assert.Equal(t, "db.internal", cfg.Store.Config["host"])
	assert.Equal(t, 6543, cfg.Store.Config["port"])
	assert.Equal(t, "secret", cfg.Store.Config["password"])
	assert.Equal(t, "tmdb-key", cfg.Catalog.APIKey)
	assert.Equal(t, "MX", cfg.Catalog.Region)
	assert.Equal(t, 30.0, cfg.Discovery.HalfLifeDays)
	assert.Equal(t, 5, cfg.Discovery.Pages)
	require.NotNil(t, cfg.LLM)
	assert.Equal(t, "deepseek", cfg.LLM.Provider)
	assert.Equal(t, "living-room", cfg.ProfileID)
}

func TestLoadConfigFromEnvDefaults(t *testing.T) {
	t.Setenv("DATABASE_PROVIDER", "")
	t.Setenv("SQLITE_PATH", "")
	t.Setenv("LLM_PROVIDER", "")
	t.Setenv("TMDB_RATE_LIMIT", "not-a-number")

	cfg, err := LoadConfigFromEnv()
	require.NoError(t, err)
	assert.Equal(t, "sqlite", cfg.Store.Provider)
	assert.Equal(t, "./cinedeck.db", cfg.Store.Config["db_path"])
	assert.Equal(t, 0, cfg.Catalog.RateLimit)
	assert.Nil(t, cfg.LLM)
}

func TestLoadConfigFromJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cinedeck.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"store": {"provider": "badger", "config": {"path": "/tmp/deck", "in_memory": true}},
		"catalog": {"api_key": "k", "language": "en-US"},
		"discovery": {"refill_threshold": 4},
		"logging": {"level": "debug", "format": "console"}
	}`), 0o600))

	cfg, err := LoadConfigFromJSON(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "badger", cfg.Store.Provider)
	assert.True(t, configBool(cfg.Store.Config, "in_memory"))
	assert.Equal(t, "en-US", cfg.Catalog.Language)
	assert.Equal(t, 4, cfg.Discovery.RefillThreshold)
	assert.Equal(t, "console", cfg.Logging.Format)

	_, err = LoadConfigFromJSON(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Store:   StoreConfig{Provider: "memory"},
			Catalog: CatalogConfig{APIKey: "k"},
		}
	}

	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"unknown store", func(c *Config) { c.Store.Provider = "redis" }, "Store.Provider"},
		{"missing store", func(c *Config) { c.Store.Provider = "" }, "Store.Provider"},
		{"bad region", func(c *Config) { c.Catalog.Region = "ESP" }, "Catalog.Region"},
		{"bad base url", func(c *Config) { c.Catalog.BaseURL = "not a url" }, "Catalog.BaseURL"},
		{"too many pages", func(c *Config) { c.Discovery.Pages = 50 }, "Discovery.Pages"},
		{"profile with slash", func(c *Config) { c.ProfileID = "a/b" }, "ProfileID"},
		{"unknown llm", func(c *Config) { c.LLM = &LLMConfig{Provider: "bard"} }, "LLM.Provider"},
		{"bad log level", func(c *Config) { c.Logging.Level = "loud" }, "Logging.Level"},
	}

	require.NoError(t, valid().Validate())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidConfig)
			assert.Contains(t, err.Error(), tt.field)
		})
	}

	var nilConfig *Config
	assert.ErrorIs(t, nilConfig.Validate(), ErrInvalidConfig)
}

func TestConfigHelpers(t *testing.T) {
	cfg := map[string]interface{}{
		"name":    "deck",
		"int":     7,
		"int64":   int64(8),
		"float":   float64(9),
		"string":  "10",
		"bad":     "ten",
		"enabled": true,
		"flag":    "true",
	}

	assert.Equal(t, "deck", configString(cfg, "name", "x"))
	assert.Equal(t, "x", configString(cfg, "missing", "x"))
	assert.Equal(t, 7, configInt(cfg, "int", 0))
	assert.Equal(t, 8, configInt(cfg, "int64", 0))
	assert.Equal(t, 9, configInt(cfg, "float", 0))
	assert.Equal(t, 10, configInt(cfg, "string", 0))
	assert.Equal(t, 3, configInt(cfg, "bad", 3))
	assert.True(t, configBool(cfg, "enabled"))
	assert.True(t, configBool(cfg, "flag"))
	assert.False(t, configBool(cfg, "missing"))
	assert.Equal(t, "x", configString(nil, "name", "x"))
}

func TestToGenreAffinities(t *testing.T) {
	ranked := intelligence.RankGenres(map[int]float64{28: 2, 35: 0.5})
	names := genreNames([]catalog.Genre{{ID: 28, Name: "Action"}})

	assert.Equal(t, []GenreAffinity{
		{GenreID: 28, Name: "Action", Score: 2},
		{GenreID: 35, Score: 0.5},
	}, toGenreAffinities(ranked, names))
}

func TestInitLLMProviderDefaults(t *testing.T) {
	for _, provider := range []string{"openai", "deepseek", "qwen", "ollama"} {
		t.Run(provider, func(t *testing.T) {
			p, err := initLLM(LLMConfig{Provider: provider, APIKey: "k"})
			require.NoError(t, err)
			assert.NoError(t, p.Close())
		})
	}

	_, err := initLLM(LLMConfig{Provider: "bard", APIKey: "k"})
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestInitStoreMemory(t *testing.T) {
	kv, err := initStore(StoreConfig{Provider: "memory"})
	require.NoError(t, err)
	assert.NoError(t, kv.Close())

	_, err = initStore(StoreConfig{Provider: "etcd"})
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestNewClientReleasesStoreOnLateFailure(t *testing.T) {
	errNode := errors.New("node exhausted")
	orig := newSnowflakeNode
	newSnowflakeNode = func(int64) (*snowflake.Node, error) { return nil, errNode }
	t.Cleanup(func() { newSnowflakeNode = orig })

	dir := t.TempDir()
	cfg := &Config{
		Store:   StoreConfig{Provider: "badger", Config: map[string]interface{}{"path": dir}},
		Catalog: CatalogConfig{APIKey: "k"},
		LLM:     &LLMConfig{Provider: "openai", APIKey: "k"},
	}
	_, err := NewClient(cfg)
	require.Error(t, err)
	assert.ErrorIs(t, err, errNode)

	// badger locks its directory, so reopening only works if NewClient closed it.
	reopened, err := badgerStore.NewClient(&badgerStore.Config{Path: dir})
	require.NoError(t, err)
	assert.NoError(t, reopened.Close())
}
