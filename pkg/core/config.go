package core

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/goccy/go-json"
	"github.com/joho/godotenv"

	"github.com/oceanbase/cinedeck-go/pkg/validation"
)

// Config contains the complete configuration for a cinedeck client.
//
// It includes settings for:
//   - Store (where the profile documents live)
//   - Catalog (TMDB access)
//   - Discovery tuning (decay, ranking, sampling, refill)
//   - LLM provider (optional, for mood interpretation)
//   - Logging
//
// Example:
//
//	config := &core.Config{
//	    Store: core.StoreConfig{
//	        Provider: "sqlite",
//	        Config: map[string]interface{}{
//	            "db_path": "./cinedeck.db",
//	        },
//	    },
//	    Catalog: core.CatalogConfig{
//	        APIKey: "tmdb-key",
//	    },
//	}
type Config struct {
	// Store contains key-value store configuration.
	Store StoreConfig `json:"store"`

	// Catalog contains catalog (TMDB) configuration.
	Catalog CatalogConfig `json:"catalog"`

	// Discovery contains preference learning and sampling settings.
	Discovery DiscoveryConfig `json:"discovery"`

	// LLM contains LLM provider configuration (optional).
	LLM *LLMConfig `json:"llm,omitempty"`

	// Logging contains logger settings.
	Logging LoggingConfig `json:"logging"`

	// ProfileID namespaces every stored document.
	// Default: "default"
	ProfileID string `json:"profile_id,omitempty" validate:"omitempty,max=64,excludes=/"`
}

// StoreConfig contains configuration for the key-value store.
//
// Supported providers: memory, sqlite, postgres, oceanbase, badger
//
// Example:
//
//	storeConfig := core.StoreConfig{
//	    Provider: "postgres",
//	    Config: map[string]interface{}{
//	        "host":     "localhost",
//	        "port":     5432,
//	        "user":     "postgres",
//	        "password": "secret",
//	        "db_name":  "cinedeck",
//	    },
//	}
type StoreConfig struct {
	// Provider is the store provider name.
	Provider string `json:"provider" validate:"required,oneof=memory sqlite postgres oceanbase badger"`

	// Config contains provider-specific configuration.
	// For SQLite: db_path, table_name
	// For PostgreSQL: host, port, user, password, db_name, table_name, ssl_mode
	// For OceanBase: host, port, user, password, db_name, table_name
	// For Badger: path, in_memory
	Config map[string]interface{} `json:"config,omitempty"`
}

// CatalogConfig contains configuration for the TMDB catalog.
type CatalogConfig struct {
	// APIKey is the TMDB v3 API key.
	APIKey string `json:"api_key"`

	// BaseURL overrides the API root.
	BaseURL string `json:"base_url,omitempty" validate:"omitempty,url"`

	// Language is the response language. Default: es-ES
	Language string `json:"language,omitempty"`

	// Region is the watch region. Default: ES
	Region string `json:"region,omitempty" validate:"omitempty,len=2"`

	// RateLimit is the number of requests allowed per 10 seconds. Default: 40
	RateLimit int `json:"rate_limit,omitempty" validate:"gte=0"`

	// TimeoutSeconds bounds one request. Default: 30
	TimeoutSeconds int `json:"timeout_seconds,omitempty" validate:"gte=0"`
}

// DiscoveryConfig tunes preference learning and deck building.
// Zero values select the defaults.
type DiscoveryConfig struct {
	// HalfLifeDays is the preference decay half-life. Default: 90
	HalfLifeDays float64 `json:"half_life_days,omitempty" validate:"gte=0"`

	// MinScoreToKeep prunes decayed scores below it. Default: 0.1
	MinScoreToKeep float64 `json:"min_score_to_keep,omitempty" validate:"gte=0"`

	// TopGenres is the size of the implicit genre filter. Default: 3
	TopGenres int `json:"top_genres,omitempty" validate:"gte=0,lte=20"`

	// Pages is the number of catalog pages fetched per sample. Default: 3
	Pages int `json:"pages,omitempty" validate:"gte=0,lte=20"`

	// RefillThreshold is the remaining-card count that triggers a refill. Default: 10
	RefillThreshold int `json:"refill_threshold,omitempty" validate:"gte=0"`
}

// LLMConfig contains configuration for the LLM provider.
//
// Supported providers: openai, deepseek, qwen, ollama. All of them are
// reached through the OpenAI-compatible chat completions API.
type LLMConfig struct {
	// Provider is the LLM provider name.
	Provider string `json:"provider" validate:"required,oneof=openai deepseek qwen ollama"`

	// APIKey is the API key for the provider.
	APIKey string `json:"api_key"`

	// Model is the model name.
	Model string `json:"model"`

	// BaseURL overrides the provider endpoint.
	BaseURL string `json:"base_url,omitempty" validate:"omitempty,url"`
}

// LoggingConfig contains logger settings.
type LoggingConfig struct {
	Level  string `json:"level,omitempty" validate:"omitempty,oneof=trace debug info warn warning error disabled off"`
	Format string `json:"format,omitempty" validate:"omitempty,oneof=json console"`
}

// LoadConfigFromEnv loads configuration from environment variables.
//
// A .env file is looked up with FindEnvFile and loaded first; variables
// already set in the process take precedence.
//
// Example:
//
//	config, err := core.LoadConfigFromEnv()
//	if err != nil {
//	    log.Fatal(err)
//	}
func LoadConfigFromEnv() (*Config, error) {
	envPath, found := FindEnvFile()
	if found {
		_ = godotenv.Load(envPath)
	} else {
		_ = godotenv.Load()
	}

	provider := getEnvOrDefault("DATABASE_PROVIDER", "sqlite")

	storeConfig := make(map[string]interface{})
	switch provider {
	case "sqlite":
		storeConfig = map[string]interface{}{
			"db_path":    getEnvOrDefault("SQLITE_PATH", "./cinedeck.db"),
			"table_name": os.Getenv("SQLITE_TABLE"),
		}
	case "postgres":
		storeConfig = map[string]interface{}{
			"host":       getEnvOrDefault("POSTGRES_HOST", "localhost"),
			"port":       getEnvInt("POSTGRES_PORT", 5432),
			"user":       getEnvOrDefault("POSTGRES_USER", "postgres"),
			"password":   os.Getenv("POSTGRES_PASSWORD"),
			"db_name":    getEnvOrDefault("POSTGRES_DATABASE", "cinedeck"),
			"table_name": os.Getenv("POSTGRES_TABLE"),
			"ssl_mode":   getEnvOrDefault("POSTGRES_SSLMODE", "disable"),
		}
	case "oceanbase":
		storeConfig = map[string]interface{}{
			"host":       getEnvOrDefault("OCEANBASE_HOST", "127.0.0.1"),
			"port":       getEnvInt("OCEANBASE_PORT", 2881),
			"user":       getEnvOrDefault("OCEANBASE_USER", "root@sys"),
			"password":   os.Getenv("OCEANBASE_PASSWORD"),
			"db_name":    getEnvOrDefault("OCEANBASE_DATABASE", "cinedeck"),
			"table_name": os.Getenv("OCEANBASE_TABLE"),
		}
	case "badger":
		storeConfig = map[string]interface{}{
			"path":      getEnvOrDefault("BADGER_PATH", "./cinedeck-badger"),
			"in_memory": os.Getenv("BADGER_IN_MEMORY") == "true",
		}
	}

	config := &Config{
		Store: StoreConfig{
			Provider: provider,
			Config:   storeConfig,
		},
		Catalog: CatalogConfig{
			APIKey:         os.Getenv("TMDB_API_KEY"),
			BaseURL:        os.Getenv("TMDB_BASE_URL"),
			Language:       os.Getenv("TMDB_LANGUAGE"),
			Region:         os.Getenv("TMDB_REGION"),
			RateLimit:      getEnvInt("TMDB_RATE_LIMIT", 0),
			TimeoutSeconds: getEnvInt("TMDB_TIMEOUT_SECONDS", 0),
		},
		Discovery: DiscoveryConfig{
			HalfLifeDays:    getEnvFloat("DISCOVERY_HALF_LIFE_DAYS", 0),
			MinScoreToKeep:  getEnvFloat("DISCOVERY_MIN_SCORE", 0),
			TopGenres:       getEnvInt("DISCOVERY_TOP_GENRES", 0),
			Pages:           getEnvInt("DISCOVERY_PAGES", 0),
			RefillThreshold: getEnvInt("DISCOVERY_REFILL_THRESHOLD", 0),
		},
		Logging: LoggingConfig{
			Level:  getEnvOrDefault("LOG_LEVEL", "info"),
			Format: getEnvOrDefault("LOG_FORMAT", "json"),
		},
		ProfileID: os.Getenv("PROFILE_ID"),
	}

	if llmProvider := os.Getenv("LLM_PROVIDER"); llmProvider != "" {
		config.LLM = &LLMConfig{
			Provider: llmProvider,
			APIKey:   os.Getenv("LLM_API_KEY"),
			Model:    os.Getenv("LLM_MODEL"),
			BaseURL:  os.Getenv("LLM_BASE_URL"),
		}
	}

	return config, nil
}

// LoadConfigFromEnvFile loads configuration from a specific .env file.
func LoadConfigFromEnvFile(envPath string) (*Config, error) {
	if err := godotenv.Load(envPath); err != nil {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}
	return LoadConfigFromEnv()
}

// LoadConfigFromJSON loads configuration from a JSON file.
func LoadConfigFromJSON(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, NewDiscoveryError("LoadConfigFromJSON", err)
	}

	var config Config
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, NewDiscoveryError("LoadConfigFromJSON", err)
	}

	return &config, nil
}

// Validate checks the struct rules of the configuration.
//
// Returns an error wrapping ErrInvalidConfig that lists every failed field.
func (c *Config) Validate() error {
	if c == nil {
		return NewDiscoveryError("Validate", ErrInvalidConfig)
	}
	if err := validation.Struct(c); err != nil {
		return NewDiscoveryError("Validate", fmt.Errorf("%w: %w", ErrInvalidConfig, err))
	}
	return nil
}

// getEnvOrDefault gets an environment variable or returns the default value.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt parses an integer variable. Unset or malformed values yield the default.
func getEnvInt(key string, defaultValue int) int {
	if v, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return v
	}
	return defaultValue
}

// getEnvFloat parses a float variable. Unset or malformed values yield the default.
func getEnvFloat(key string, defaultValue float64) float64 {
	if v, err := strconv.ParseFloat(os.Getenv(key), 64); err == nil {
		return v
	}
	return defaultValue
}

// FindEnvFile searches for .env or .env.example files.
//
// The search:
//  1. Checks the current directory
//  2. Searches up to 5 directory levels up
//  3. Returns the first .env or .env.example file found
func FindEnvFile() (string, bool) {
	if _, err := os.Stat(".env"); err == nil {
		return ".env", true
	}
	if _, err := os.Stat(".env.example"); err == nil {
		return ".env.example", true
	}

	dir, _ := os.Getwd()
	for i := 0; i < 5; i++ {
		envPath := filepath.Join(dir, ".env")
		envExamplePath := filepath.Join(dir, ".env.example")

		if _, err := os.Stat(envPath); err == nil {
			return envPath, true
		}
		if _, err := os.Stat(envExamplePath); err == nil {
			return envExamplePath, true
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return "", false
}
