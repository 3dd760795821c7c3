package core

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/bwmarrin/snowflake"
	"golang.org/x/sync/errgroup"

	"github.com/oceanbase/cinedeck-go/pkg/catalog"
	"github.com/oceanbase/cinedeck-go/pkg/catalog/tmdb"
	"github.com/oceanbase/cinedeck-go/pkg/intelligence"
	"github.com/oceanbase/cinedeck-go/pkg/llm"
	openaiLLM "github.com/oceanbase/cinedeck-go/pkg/llm/openai"
	"github.com/oceanbase/cinedeck-go/pkg/logging"
	"github.com/oceanbase/cinedeck-go/pkg/metrics"
	"github.com/oceanbase/cinedeck-go/pkg/sampler"
	"github.com/oceanbase/cinedeck-go/pkg/storage"
	badgerStore "github.com/oceanbase/cinedeck-go/pkg/storage/badger"
	memoryStore "github.com/oceanbase/cinedeck-go/pkg/storage/memory"
	"github.com/oceanbase/cinedeck-go/pkg/storage/oceanbase"
	postgresStore "github.com/oceanbase/cinedeck-go/pkg/storage/postgres"
	sqliteStore "github.com/oceanbase/cinedeck-go/pkg/storage/sqlite"
	"github.com/oceanbase/cinedeck-go/pkg/userstate"
)

// newSnowflakeNode is swapped in tests.
var newSnowflakeNode = snowflake.NewNode

// Client is the cinedeck client for one local viewer profile.
//
// It owns the learned preferences and the hidden set, shared by every
// discovery session it creates, and provides:
//   - Feedback recording with time decay
//   - The hidden set
//   - One-shot sampling and discovery sessions (decks)
//   - Saved filters and the watchlist and liked lists
//   - Catalog lookups and mood interpretation
//
// The client is thread-safe and can be used concurrently from multiple goroutines.
//
// Example usage:
//
//	config, _ := core.LoadConfigFromEnv()
//	client, _ := core.NewClient(config)
//	defer client.Close()
//
//	session, _ := client.NewSession(ctx)
//	result, _ := session.Swipe(ctx, intelligence.Decision{Action: intelligence.ActionLike})
type Client struct {
	// config contains the client configuration.
	config *Config

	// kv is the key-value store behind store.
	kv storage.KVStore

	// store reads and writes the profile documents.
	store *userstate.Store

	// catalog is the external title catalog.
	catalog catalog.Source

	// llm is the LLM provider for mood interpretation (nil if not configured).
	llm llm.Provider

	mood     *intelligence.MoodInterpreter
	decay    *intelligence.DecayEngine
	recorder *intelligence.FeedbackRecorder
	resolver *sampler.GenreResolver

	// snowflakeNode generates session ids.
	snowflakeNode *snowflake.Node

	now func() time.Time

	// mu guards profile and hidden.
	mu      sync.RWMutex
	profile *intelligence.Profile
	hidden  *intelligence.KeySet

	// listMu serialises list read-modify-write cycles.
	listMu sync.Mutex
}

var (
	_ sampler.PreferenceSource = (*Client)(nil)
	_ sampler.HiddenSet        = (*Client)(nil)
)

// NewClient creates a new cinedeck client.
//
// The client is initialized with:
//   - Key-value store (memory, SQLite, PostgreSQL, OceanBase or Badger)
//   - Catalog (TMDB)
//   - LLM provider (optional)
//
// Collaborators passed as options replace the configured ones.
//
// Example:
//
//	config := &core.Config{
//	    Store:   core.StoreConfig{Provider: "memory"},
//	    Catalog: core.CatalogConfig{APIKey: "tmdb-key"},
//	}
//	client, err := core.NewClient(config)
func NewClient(cfg *Config, opts ...ClientOption) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	options := applyClientOptions(opts)

	if cfg.Logging.Level != "" || cfg.Logging.Format != "" {
		logCfg := logging.DefaultConfig()
		if cfg.Logging.Level != "" {
			logCfg.Level = cfg.Logging.Level
		}
		if cfg.Logging.Format != "" {
			logCfg.Format = cfg.Logging.Format
		}
		logging.Init(logCfg)
	}

	var (
		kv       = options.Store
		source   = options.Catalog
		provider = options.LLM
	)
	// release closes whatever NewClient opened itself; injected dependencies
	// belong to the caller.
	release := func() {
		if options.LLM == nil && provider != nil {
			_ = provider.Close()
		}
		if options.Catalog == nil && source != nil {
			_ = source.Close()
		}
		if options.Store == nil && kv != nil {
			_ = kv.Close()
		}
	}

	if kv == nil {
		var err error
		if kv, err = initStore(cfg.Store); err != nil {
			return nil, NewDiscoveryError("NewClient", err)
		}
	}

	if source == nil {
		var err error
		if source, err = initCatalog(cfg.Catalog); err != nil {
			release()
			return nil, NewDiscoveryError("NewClient", err)
		}
	}

	if provider == nil && cfg.LLM != nil {
		var err error
		if provider, err = initLLM(*cfg.LLM); err != nil {
			release()
			return nil, NewDiscoveryError("NewClient", err)
		}
	}

	node, err := newSnowflakeNode(1)
	if err != nil {
		release()
		return nil, NewDiscoveryError("NewClient", err)
	}

	storeOpts := []userstate.Option{userstate.WithClock(options.Clock)}
	if options.RetryPolicy != nil {
		storeOpts = append(storeOpts, userstate.WithRetryPolicy(*options.RetryPolicy))
	}

	decay := intelligence.NewDecayEngine(cfg.Discovery.HalfLifeDays, cfg.Discovery.MinScoreToKeep)
	client := &Client{
		config:        cfg,
		kv:            kv,
		store:         userstate.NewStore(kv, cfg.ProfileID, storeOpts...),
		catalog:       source,
		llm:           provider,
		mood:          intelligence.NewMoodInterpreter(provider),
		decay:         decay,
		recorder:      intelligence.NewFeedbackRecorder(decay),
		resolver:      sampler.NewGenreResolver(source),
		snowflakeNode: node,
		now:           options.Clock,
	}

	logging.Debug().
		Str("store", cfg.Store.Provider).
		Str("profile", client.store.Profile()).
		Bool("llm", provider != nil).
		Msg("client ready")
	return client, nil
}

// ProfileID returns the profile namespace of the client.
func (c *Client) ProfileID() string {
	return c.store.Profile()
}

// Catalog returns the catalog source.
func (c *Client) Catalog() catalog.Source {
	return c.catalog
}

// ensureLoaded reads the preferences and hidden set on first use.
func (c *Client) ensureLoaded(ctx context.Context) error {
	c.mu.RLock()
	loaded := c.profile != nil
	c.mu.RUnlock()
	if loaded {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loadLocked(ctx)
}

func (c *Client) loadLocked(ctx context.Context) error {
	if c.profile != nil {
		return nil
	}
	profile, err := c.store.LoadPreferences(ctx)
	if err != nil {
		return storageError("Load", err)
	}
	hidden, err := c.store.LoadHidden(ctx)
	if err != nil {
		return storageError("Load", err)
	}
	c.profile, c.hidden = profile, hidden
	return nil
}

// TopGenres returns the n best genres of the decayed profile. The decayed
// view is not persisted.
func (c *Client) TopGenres(ctx context.Context, n int) ([]int, error) {
	if err := c.ensureLoaded(ctx); err != nil {
		return nil, err
	}
	c.mu.RLock()
	view := c.decay.ApplyDecay(c.profile, c.now())
	c.mu.RUnlock()
	return intelligence.TopGenres(view.GenreScores, n), nil
}

// Contains reports whether key is hidden.
func (c *Client) Contains(key catalog.Key) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.hidden.Contains(key)
}

// RecordFeedback applies action to the genres and persists the profile.
//
// Actions without a score delta and empty genre lists change nothing.
// When the write fails after retries the in-memory profile keeps the change
// and the error wraps ErrStorageOperation.
func (c *Client) RecordFeedback(ctx context.Context, genreIDs []int, action intelligence.Action) (bool, error) {
	return c.recordAt(ctx, genreIDs, action, c.now())
}

func (c *Client) recordAt(ctx context.Context, genreIDs []int, action intelligence.Action, now time.Time) (bool, error) {
	delta, ok := action.Delta()
	if !ok {
		return false, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.loadLocked(ctx); err != nil {
		return false, err
	}

	updated, changed := c.recorder.Record(c.profile, genreIDs, delta, now)
	if !changed {
		return false, nil
	}
	c.profile = updated
	if err := c.store.SavePreferences(ctx, updated); err != nil {
		return true, storageError("RecordFeedback", err)
	}
	return true, nil
}

// Hide adds key to the hidden set and persists it. Hiding a key twice
// skips the write and reports false.
func (c *Client) Hide(ctx context.Context, key catalog.Key) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.loadLocked(ctx); err != nil {
		return false, err
	}

	if !c.hidden.Add(key) {
		return false, nil
	}
	if err := c.store.SaveHidden(ctx, c.hidden); err != nil {
		return true, storageError("Hide", err)
	}
	return true, nil
}

// Decide applies the side effects of one decision on item outside any deck:
// feedback, hiding and list membership, in that order.
//
// Every step runs even when an earlier write fails; the in-memory state keeps
// each change and the returned error joins the storage failures.
func (c *Client) Decide(ctx context.Context, item catalog.Item, d intelligence.Decision) (*SwipeResult, error) {
	return c.decideAt(ctx, item, d.Effective(), c.now())
}

func (c *Client) decideAt(ctx context.Context, item catalog.Item, action intelligence.Action, now time.Time) (*SwipeResult, error) {
	result := &SwipeResult{Item: item, Action: action}
	if action != intelligence.ActionCancel {
		metrics.FeedbackEvents.WithLabelValues(string(action)).Inc()
	}
	if _, ok := action.Delta(); !ok {
		return result, nil
	}

	var errs []error
	result.Genres = c.resolver.Resolve(ctx, item)
	recorded, err := c.recordAt(ctx, result.Genres, action, now)
	result.Recorded = recorded
	errs = append(errs, err)

	if action.Hides() {
		hidden, err := c.Hide(ctx, item.Key())
		result.Hidden = hidden
		errs = append(errs, err)
	}

	if list, ok := actionList(action); ok {
		c.listMu.Lock()
		_, err := c.store.AddToList(ctx, list, userstate.NewListEntry(item, now))
		c.listMu.Unlock()
		result.List = list
		errs = append(errs, storageError("AddToList", err))
	}

	return result, errors.Join(errs...)
}

// actionList returns the list an action saves the title to.
func actionList(a intelligence.Action) (userstate.ListName, bool) {
	switch a {
	case intelligence.ActionLike:
		return userstate.Liked, true
	case intelligence.ActionWatchLater:
		return userstate.Watchlist, true
	default:
		return "", false
	}
}

// Profile returns the decayed view of the learned preferences.
func (c *Client) Profile(ctx context.Context) (*ProfileSnapshot, error) {
	if err := c.ensureLoaded(ctx); err != nil {
		return nil, err
	}

	c.mu.RLock()
	view := c.decay.ApplyDecay(c.profile, c.now())
	stamp := c.profile.LastDecayAt
	hidden := c.hidden.Len()
	c.mu.RUnlock()

	names := make(map[int]string)
	for _, t := range []catalog.ContentType{catalog.Movie, catalog.TV} {
		genres, err := c.catalog.Genres(ctx, t)
		if err != nil {
			logging.Warn().Err(err).Str("content_type", string(t)).Msg("genre names unavailable")
			continue
		}
		for id, name := range genreNames(genres) {
			if _, ok := names[id]; !ok {
				names[id] = name
			}
		}
	}

	topN := c.config.Discovery.TopGenres
	if topN <= 0 {
		topN = intelligence.DefaultTopGenres
	}
	return &ProfileSnapshot{
		ProfileID:   c.store.Profile(),
		Genres:      toGenreAffinities(intelligence.RankGenres(view.GenreScores), names),
		TopGenres:   intelligence.TopGenres(view.GenreScores, topN),
		LastDecayAt: stamp,
		HiddenCount: hidden,
	}, nil
}

// ResetProfile forgets every learned preference, hidden title, saved filter and list.
func (c *Client) ResetProfile(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.store.Reset(ctx); err != nil {
		return storageError("ResetProfile", err)
	}
	c.profile = &intelligence.Profile{GenreScores: make(map[int]float64)}
	c.hidden = intelligence.NewKeySet()
	return nil
}

// Sample draws one batch of candidates outside any session.
//
// Example:
//
//	items := client.Sample(ctx, catalog.All, core.WithPages(2))
func (c *Client) Sample(ctx context.Context, t catalog.ContentType, opts ...SampleOption) []catalog.Item {
	options := applySampleOptions(opts)
	if err := c.ensureLoaded(ctx); err != nil {
		logging.Warn().Err(err).Msg("profile unavailable, sampling without it")
	}
	pages := options.Pages
	if pages <= 0 {
		pages = c.config.Discovery.Pages
	}
	return c.newSampler(0).Sample(ctx, sampler.Request{
		Type:      t,
		Genres:    options.Genres,
		Providers: options.Providers,
		Pages:     pages,
	}, options.Exclude)
}

func (c *Client) newSampler(seed int64) *sampler.Sampler {
	return sampler.New(c.catalog, c, c, &sampler.Config{
		TopGenres: c.config.Discovery.TopGenres,
		Seed:      seed,
	})
}

// ResolveGenres returns the genres of item, looking them up when missing.
func (c *Client) ResolveGenres(ctx context.Context, item catalog.Item) []int {
	return c.resolver.Resolve(ctx, item)
}

// Filters returns the saved home filters and whether the viewer has
// applied filters before.
func (c *Client) Filters(ctx context.Context) (userstate.Filters, bool, error) {
	f, _, err := c.store.LoadFilters(ctx)
	if err != nil {
		return f, false, storageError("Filters", err)
	}
	onboarded, err := c.store.Onboarded(ctx)
	if err != nil {
		return f, false, storageError("Filters", err)
	}
	return f, onboarded, nil
}

// SaveFilters persists f and marks the filter onboarding as done.
func (c *Client) SaveFilters(ctx context.Context, f userstate.Filters) error {
	if err := validateFilters(f); err != nil {
		return NewDiscoveryError("SaveFilters", err)
	}
	return storageError("SaveFilters", c.store.SaveFilters(ctx, f))
}

func validateFilters(f userstate.Filters) error {
	if f.Type != "" && f.Type != catalog.All && !f.Type.Valid() {
		return fmt.Errorf("%w: content type %q", ErrInvalidInput, f.Type)
	}
	return nil
}

// List returns a saved list, newest first.
func (c *Client) List(ctx context.Context, name userstate.ListName) ([]userstate.ListEntry, error) {
	entries, err := c.store.List(ctx, name)
	if err != nil {
		return nil, storageError("List", err)
	}
	return entries, nil
}

// AddToList saves item to a list unless it is already there.
func (c *Client) AddToList(ctx context.Context, name userstate.ListName, item catalog.Item) (bool, error) {
	c.listMu.Lock()
	defer c.listMu.Unlock()
	added, err := c.store.AddToList(ctx, name, userstate.NewListEntry(item, c.now()))
	if err != nil {
		return false, storageError("AddToList", err)
	}
	return added, nil
}

// RemoveFromList drops key from a list. It returns ErrNotFound when the
// key is not listed.
func (c *Client) RemoveFromList(ctx context.Context, name userstate.ListName, key catalog.Key) error {
	c.listMu.Lock()
	defer c.listMu.Unlock()
	removed, err := c.store.RemoveFromList(ctx, name, key)
	if err != nil {
		return storageError("RemoveFromList", err)
	}
	if !removed {
		return NewDiscoveryError("RemoveFromList", fmt.Errorf("%w: %s in %s", ErrNotFound, key, name))
	}
	return nil
}

// ClearList empties a list.
func (c *Client) ClearList(ctx context.Context, name userstate.ListName) error {
	c.listMu.Lock()
	defer c.listMu.Unlock()
	return storageError("ClearList", c.store.ClearList(ctx, name))
}

// Genres lists the catalog genres of a content type.
func (c *Client) Genres(ctx context.Context, t catalog.ContentType) ([]catalog.Genre, error) {
	if err := requireConcreteType(t); err != nil {
		return nil, NewDiscoveryError("Genres", err)
	}
	genres, err := c.catalog.Genres(ctx, t)
	if err != nil {
		return nil, catalogError("Genres", err)
	}
	return genres, nil
}

// WatchProviders lists the providers of the configured region.
func (c *Client) WatchProviders(ctx context.Context, t catalog.ContentType) ([]catalog.WatchProvider, error) {
	if err := requireConcreteType(t); err != nil {
		return nil, NewDiscoveryError("WatchProviders", err)
	}
	providers, err := c.catalog.WatchProviders(ctx, t)
	if err != nil {
		return nil, catalogError("WatchProviders", err)
	}
	return providers, nil
}

// Availability lists where one title can be watched.
func (c *Client) Availability(ctx context.Context, t catalog.ContentType, id int64) (*catalog.Availability, error) {
	if err := requireConcreteType(t); err != nil {
		return nil, NewDiscoveryError("Availability", err)
	}
	availability, err := c.catalog.Availability(ctx, t, id)
	if err != nil {
		return nil, catalogError("Availability", err)
	}
	return availability, nil
}

// TitleDetails fetches the detail view of one title. Details and
// availability are looked up concurrently; a failed availability lookup is
// logged and leaves Availability nil.
func (c *Client) TitleDetails(ctx context.Context, t catalog.ContentType, id int64) (*TitleDetails, error) {
	if err := requireConcreteType(t); err != nil {
		return nil, NewDiscoveryError("TitleDetails", err)
	}

	var (
		details      *catalog.Details
		availability *catalog.Availability
	)
	var g errgroup.Group
	g.Go(func() error {
		var err error
		details, err = c.catalog.Details(ctx, t, id)
		return err
	})
	g.Go(func() error {
		a, err := c.catalog.Availability(ctx, t, id)
		if err != nil {
			logging.Warn().Err(err).Str("type", string(t)).Int64("id", id).
				Msg("availability lookup failed")
			return nil
		}
		availability = a
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, catalogError("TitleDetails", err)
	}

	genres := details.Genres
	if genres == nil {
		genres = []catalog.Genre{}
	}
	return &TitleDetails{
		Item:         details.Item,
		Genres:       genres,
		Runtime:      details.Runtime,
		Status:       details.Status,
		Director:     details.Director(),
		Cast:         details.TopCast(catalog.TopCastSize),
		TrailerURL:   details.TrailerURL(),
		Availability: availability,
	}, nil
}

// InterpretMood maps free text such as "something light and funny" to
// genre ids of content type t.
func (c *Client) InterpretMood(ctx context.Context, t catalog.ContentType, text string) ([]int, error) {
	if t == catalog.All || t == "" {
		t = catalog.Movie
	}
	genres, err := c.Genres(ctx, t)
	if err != nil {
		return nil, err
	}
	ids, err := c.mood.Interpret(ctx, text, genres)
	if err != nil {
		return nil, NewDiscoveryError("InterpretMood", fmt.Errorf("%w: %w", ErrLLMOperation, err))
	}
	return ids, nil
}

// Close releases the catalog, the store and the LLM provider.
func (c *Client) Close() error {
	var errs []error
	if c.catalog != nil {
		errs = append(errs, c.catalog.Close())
	}
	if c.kv != nil {
		errs = append(errs, c.kv.Close())
	}
	if c.llm != nil {
		errs = append(errs, c.llm.Close())
	}
	return errors.Join(errs...)
}

func requireConcreteType(t catalog.ContentType) error {
	if t != catalog.Movie && t != catalog.TV {
		return fmt.Errorf("%w: content type must be movie or tv, got %q", ErrInvalidInput, t)
	}
	return nil
}

func catalogError(op string, err error) error {
	var status *tmdb.StatusError
	if errors.As(err, &status) && status.Code == http.StatusNotFound {
		return NewDiscoveryError(op, fmt.Errorf("%w: %w", ErrNotFound, err))
	}
	return NewDiscoveryError(op, fmt.Errorf("%w: %w", ErrCatalogUnavailable, err))
}

// initStore initializes the key-value store.
func initStore(cfg StoreConfig) (storage.KVStore, error) {
	switch cfg.Provider {
	case "memory":
		return memoryStore.NewClient(), nil
	case "sqlite":
		store, err := sqliteStore.NewClient(&sqliteStore.Config{
			DBPath:    configString(cfg.Config, "db_path", "./cinedeck.db"),
			TableName: configString(cfg.Config, "table_name", ""),
		})
		if err != nil {
			return nil, err
		}
		return store, nil
	case "postgres":
		store, err := postgresStore.NewClient(&postgresStore.Config{
			Host:      configString(cfg.Config, "host", "localhost"),
			Port:      configInt(cfg.Config, "port", 5432),
			User:      configString(cfg.Config, "user", "postgres"),
			Password:  configString(cfg.Config, "password", ""),
			DBName:    configString(cfg.Config, "db_name", "cinedeck"),
			TableName: configString(cfg.Config, "table_name", ""),
			SSLMode:   configString(cfg.Config, "ssl_mode", "disable"),
		})
		if err != nil {
			return nil, err
		}
		return store, nil
	case "oceanbase":
		store, err := oceanbase.NewClient(&oceanbase.Config{
			Host:      configString(cfg.Config, "host", "127.0.0.1"),
			Port:      configInt(cfg.Config, "port", 2881),
			User:      configString(cfg.Config, "user", "root@sys"),
			Password:  configString(cfg.Config, "password", ""),
			DBName:    configString(cfg.Config, "db_name", "cinedeck"),
			TableName: configString(cfg.Config, "table_name", ""),
		})
		if err != nil {
			return nil, err
		}
		return store, nil
	case "badger":
		store, err := badgerStore.NewClient(&badgerStore.Config{
			Path:     configString(cfg.Config, "path", "./cinedeck-badger"),
			InMemory: configBool(cfg.Config, "in_memory"),
		})
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("%w: unknown store provider %q", ErrInvalidConfig, cfg.Provider)
	}
}

// initCatalog initializes the TMDB client.
func initCatalog(cfg CatalogConfig) (catalog.Source, error) {
	client, err := tmdb.NewClient(&tmdb.Config{
		APIKey:    cfg.APIKey,
		BaseURL:   cfg.BaseURL,
		Language:  cfg.Language,
		Region:    cfg.Region,
		RateLimit: cfg.RateLimit,
		Timeout:   time.Duration(cfg.TimeoutSeconds) * time.Second,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return client, nil
}

// initLLM initializes the LLM provider. Every supported provider speaks the
// OpenAI chat completions protocol; they differ in endpoint and default model.
func initLLM(cfg LLMConfig) (llm.Provider, error) {
	baseURL, model := cfg.BaseURL, cfg.Model
	switch cfg.Provider {
	case "openai":
	case "deepseek":
		baseURL = firstNonEmpty(baseURL, "https://api.deepseek.com/v1")
		model = firstNonEmpty(model, "deepseek-chat")
	case "qwen":
		baseURL = firstNonEmpty(baseURL, "https://dashscope.aliyuncs.com/compatible-mode/v1")
		model = firstNonEmpty(model, "qwen-plus")
	case "ollama":
		baseURL = firstNonEmpty(baseURL, "http://localhost:11434/v1")
		model = firstNonEmpty(model, "llama3.1")
	default:
		return nil, fmt.Errorf("%w: unknown llm provider %q", ErrInvalidConfig, cfg.Provider)
	}
	client, err := openaiLLM.NewClient(&openaiLLM.Config{
		APIKey:  cfg.APIKey,
		Model:   model,
		BaseURL: baseURL,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return client, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
