package core

import (
	"time"

	"github.com/oceanbase/cinedeck-go/pkg/catalog"
	"github.com/oceanbase/cinedeck-go/pkg/intelligence"
	"github.com/oceanbase/cinedeck-go/pkg/llm"
	"github.com/oceanbase/cinedeck-go/pkg/storage"
	"github.com/oceanbase/cinedeck-go/pkg/userstate"
)

// ClientOption configures NewClient. Injected collaborators take precedence
// over the ones the configuration would build.
type ClientOption func(*ClientOptions)

// ClientOptions contains collaborators injected into a Client.
type ClientOptions struct {
	// Store replaces the configured key-value store.
	Store storage.KVStore

	// Catalog replaces the TMDB client.
	Catalog catalog.Source

	// LLM replaces the configured LLM provider.
	LLM llm.Provider

	// Clock replaces time.Now.
	Clock func() time.Time

	// RetryPolicy overrides the write retry policy of the profile store.
	RetryPolicy *userstate.RetryPolicy
}

// WithStore injects a key-value store.
func WithStore(kv storage.KVStore) ClientOption {
	return func(opts *ClientOptions) {
		opts.Store = kv
	}
}

// WithCatalog injects a catalog source.
func WithCatalog(source catalog.Source) ClientOption {
	return func(opts *ClientOptions) {
		opts.Catalog = source
	}
}

// WithLLM injects an LLM provider.
func WithLLM(provider llm.Provider) ClientOption {
	return func(opts *ClientOptions) {
		opts.LLM = provider
	}
}

// WithClientClock sets the clock used for decay and list timestamps.
func WithClientClock(now func() time.Time) ClientOption {
	return func(opts *ClientOptions) {
		opts.Clock = now
	}
}

// WithRetryPolicy sets the write retry policy.
func WithRetryPolicy(p userstate.RetryPolicy) ClientOption {
	return func(opts *ClientOptions) {
		opts.RetryPolicy = &p
	}
}

func applyClientOptions(opts []ClientOption) *ClientOptions {
	options := &ClientOptions{Clock: time.Now}
	for _, opt := range opts {
		opt(options)
	}
	if options.Clock == nil {
		options.Clock = time.Now
	}
	return options
}

// SampleOption is a function type for configuring Sample operations.
type SampleOption func(*SampleOptions)

// SampleOptions contains configuration options for Sample operations.
type SampleOptions struct {
	// Genres is an explicit genre filter. Empty means the learned top genres.
	Genres []int

	// Providers restricts results to these watch providers.
	Providers []int

	// Pages is the number of catalog pages per content type.
	Pages int

	// Exclude lists keys the caller already holds.
	Exclude *intelligence.KeySet
}

// WithGenres sets an explicit genre filter.
//
// Example:
//
//	items := client.Sample(ctx, catalog.Movie, core.WithGenres(28, 12))
func WithGenres(genres ...int) SampleOption {
	return func(opts *SampleOptions) {
		opts.Genres = genres
	}
}

// WithProviders restricts sampling to watch providers.
func WithProviders(providers ...int) SampleOption {
	return func(opts *SampleOptions) {
		opts.Providers = providers
	}
}

// WithPages sets the number of pages fetched per content type.
func WithPages(pages int) SampleOption {
	return func(opts *SampleOptions) {
		opts.Pages = pages
	}
}

// WithExclude skips keys the caller already holds.
func WithExclude(keys *intelligence.KeySet) SampleOption {
	return func(opts *SampleOptions) {
		opts.Exclude = keys
	}
}

func applySampleOptions(opts []SampleOption) *SampleOptions {
	options := &SampleOptions{}
	for _, opt := range opts {
		opt(options)
	}
	return options
}

// SessionOption is a function type for configuring NewSession.
type SessionOption func(*SessionOptions)

// SessionOptions contains configuration options for a discovery session.
type SessionOptions struct {
	// Filters are the initial filters. When nil the saved filters are used.
	Filters *userstate.Filters

	// Seed seeds the session sampler. Zero seeds from the clock.
	Seed int64

	// RefillThreshold overrides the configured refill threshold.
	RefillThreshold int

	// Clock replaces the client clock for this session.
	Clock func() time.Time
}

// WithFilters starts the session with f instead of the saved filters.
//
// Example:
//
//	session, _ := client.NewSession(ctx, core.WithFilters(userstate.Filters{
//	    Type:   catalog.TV,
//	    Genres: []int{18},
//	}))
func WithFilters(f userstate.Filters) SessionOption {
	return func(opts *SessionOptions) {
		opts.Filters = &f
	}
}

// WithSeed makes page picks and shuffles reproducible.
func WithSeed(seed int64) SessionOption {
	return func(opts *SessionOptions) {
		opts.Seed = seed
	}
}

// WithRefillThreshold sets the remaining-card count that triggers a refill.
func WithRefillThreshold(threshold int) SessionOption {
	return func(opts *SessionOptions) {
		opts.RefillThreshold = threshold
	}
}

// WithClock sets the session clock used for feedback timestamps.
func WithClock(now func() time.Time) SessionOption {
	return func(opts *SessionOptions) {
		opts.Clock = now
	}
}

func applySessionOptions(opts []SessionOption) *SessionOptions {
	options := &SessionOptions{RefillThreshold: -1}
	for _, opt := range opts {
		opt(options)
	}
	return options
}
