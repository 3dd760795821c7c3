// Package tmdb provides a catalog.Source backed by The Movie Database v3 REST API.
//
// Every request goes through a token-bucket rate limiter and a circuit breaker,
// and responses are decoded into explicit structs with defaults for every
// optional field the discovery core reads.
package tmdb

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/oceanbase/cinedeck-go/pkg/catalog"
	"github.com/oceanbase/cinedeck-go/pkg/metrics"
)

const (
	// DefaultBaseURL is the public TMDB v3 endpoint.
	DefaultBaseURL = "https://api.themoviedb.org/3"

	// MonetizationTypes restricts discovery to titles included in a subscription or free.
	MonetizationTypes = "flatrate|ads|free"

	defaultLanguage       = "es-ES"
	defaultRegion         = "ES"
	defaultFallbackRegion = "US"
	defaultMaxProviders   = 40
)

// Config is the configuration for the TMDB client.
// APIKey: TMDB v3 API key (required)
// BaseURL: defaults to DefaultBaseURL
// Language: response language, defaults to "es-ES"
// Region: watch region, defaults to "ES"
type Config struct {
	APIKey         string
	BaseURL        string
	Language       string
	Region         string
	FallbackRegion string

	// Timeout bounds one HTTP round trip. Default: 30s.
	Timeout time.Duration

	// RateLimit is the number of requests allowed per RateWindow. Default: 40 per 10s.
	RateLimit  int
	RateWindow time.Duration

	// BreakerTimeout is how long the circuit stays open. Default: 1m.
	BreakerTimeout time.Duration

	// MaxProviders caps WatchProviders. Default: 40.
	MaxProviders int

	// HTTPClient overrides the transport, mostly for tests.
	HTTPClient *http.Client
}

// StatusError is returned for non-2xx responses.
type StatusError struct {
	Code int
	Path string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("tmdb: unexpected status %d %s for %s", e.Code, http.StatusText(e.Code), e.Path)
}

// Client implements catalog.Source.
type Client struct {
	cfg     Config
	http    *http.Client
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker[[]byte]
}

var _ catalog.Source = (*Client)(nil)

// NewClient creates a TMDB client.
//
// Returns an error if the API key is missing or the base URL does not parse.
func NewClient(cfg *Config) (*Client, error) {
	if cfg == nil || strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("tmdb: api key is required")
	}
	c := *cfg
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	c.BaseURL = strings.TrimRight(c.BaseURL, "/")
	if _, err := url.Parse(c.BaseURL); err != nil {
		return nil, fmt.Errorf("tmdb: invalid base url: %w", err)
	}
	if c.Language == "" {
		c.Language = defaultLanguage
	}
	if c.Region == "" {
		c.Region = defaultRegion
	}
	if c.FallbackRegion == "" {
		c.FallbackRegion = defaultFallbackRegion
	}
	if c.Timeout <= 0 {
		c.Timeout = 30 * time.Second
	}
	if c.RateLimit <= 0 {
		c.RateLimit = 40
	}
	if c.RateWindow <= 0 {
		c.RateWindow = 10 * time.Second
	}
	if c.MaxProviders <= 0 {
		c.MaxProviders = defaultMaxProviders
	}

	httpClient := c.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: c.Timeout}
	}

	every := c.RateWindow / time.Duration(c.RateLimit)
	return &Client{
		cfg:     c,
		http:    httpClient,
		limiter: rate.NewLimiter(rate.Every(every), c.RateLimit),
		breaker: newBreaker("tmdb", c.BreakerTimeout),
	}, nil
}

// Discover fetches one page of /discover/{type} sorted by popularity.
func (c *Client) Discover(ctx context.Context, q catalog.DiscoverQuery) (*catalog.Page, error) {
	if !q.Type.Valid() {
		return nil, fmt.Errorf("Discover: invalid content type %q", q.Type)
	}
	params := url.Values{}
	params.Set("sort_by", "popularity.desc")
	params.Set("page", strconv.Itoa(clampPage(q.Page)))
	params.Set("watch_region", c.cfg.Region)
	params.Set("with_watch_monetization_types", MonetizationTypes)
	if q.Type == catalog.Movie {
		params.Set("region", c.cfg.Region)
	}
	if len(q.Genres) > 0 {
		params.Set("with_genres", catalog.JoinIDs(q.Genres, ","))
	}
	if len(q.Providers) > 0 {
		params.Set("with_watch_providers", catalog.JoinIDs(q.Providers, "|"))
	}

	var resp pageResponse
	if err := c.get(ctx, "discover", "/discover/"+string(q.Type), params, &resp); err != nil {
		return nil, fmt.Errorf("Discover: %w", err)
	}
	return resp.toPage(q.Type), nil
}

// Popular fetches one page of /{type}/popular.
func (c *Client) Popular(ctx context.Context, t catalog.ContentType, page int) (*catalog.Page, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("Popular: invalid content type %q", t)
	}
	params := url.Values{}
	params.Set("page", strconv.Itoa(clampPage(page)))

	var resp pageResponse
	if err := c.get(ctx, "popular", "/"+string(t)+"/popular", params, &resp); err != nil {
		return nil, fmt.Errorf("Popular: %w", err)
	}
	return resp.toPage(t), nil
}

// Details fetches /{type}/{id} with credits and videos appended.
func (c *Client) Details(ctx context.Context, t catalog.ContentType, id int64) (*catalog.Details, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("Details: invalid content type %q", t)
	}
	params := url.Values{}
	params.Set("append_to_response", "credits,videos")

	var resp detailResponse
	path := "/" + string(t) + "/" + strconv.FormatInt(id, 10)
	if err := c.get(ctx, "details", path, params, &resp); err != nil {
		return nil, fmt.Errorf("Details: %w", err)
	}
	return resp.toDetails(t), nil
}

// Genres fetches /genre/{type}/list.
func (c *Client) Genres(ctx context.Context, t catalog.ContentType) ([]catalog.Genre, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("Genres: invalid content type %q", t)
	}
	var resp genreListResponse
	if err := c.get(ctx, "genres", "/genre/"+string(t)+"/list", nil, &resp); err != nil {
		return nil, fmt.Errorf("Genres: %w", err)
	}
	if resp.Genres == nil {
		return []catalog.Genre{}, nil
	}
	return resp.Genres, nil
}

// WatchProviders fetches /watch/providers/{type} for the configured region,
// ordered by display priority and capped at MaxProviders.
func (c *Client) WatchProviders(ctx context.Context, t catalog.ContentType) ([]catalog.WatchProvider, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("WatchProviders: invalid content type %q", t)
	}
	params := url.Values{}
	params.Set("watch_region", c.cfg.Region)

	var resp providerListResponse
	if err := c.get(ctx, "watch_providers", "/watch/providers/"+string(t), params, &resp); err != nil {
		return nil, fmt.Errorf("WatchProviders: %w", err)
	}
	return resp.byPriority(c.cfg.MaxProviders), nil
}

// Availability fetches /{type}/{id}/watch/providers. The configured region is
// preferred, then the fallback region. A title available nowhere yields an
// empty provider list with no region.
func (c *Client) Availability(ctx context.Context, t catalog.ContentType, id int64) (*catalog.Availability, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("Availability: invalid content type %q", t)
	}
	var resp titleProvidersResponse
	path := "/" + string(t) + "/" + strconv.FormatInt(id, 10) + "/watch/providers"
	if err := c.get(ctx, "availability", path, nil, &resp); err != nil {
		return nil, fmt.Errorf("Availability: %w", err)
	}
	for _, region := range []string{c.cfg.Region, c.cfg.FallbackRegion} {
		if rp, ok := resp.Results[region]; ok {
			return &catalog.Availability{Region: region, Link: rp.Link, Providers: rp.merged()}, nil
		}
	}
	return &catalog.Availability{Providers: []catalog.WatchProvider{}}, nil
}

// Close releases idle connections.
func (c *Client) Close() error {
	c.http.CloseIdleConnections()
	return nil
}

// get performs a rate-limited, breaker-guarded GET and decodes the body into out.
func (c *Client) get(ctx context.Context, endpoint, path string, params url.Values, out interface{}) error {
	start := time.Now()
	if err := c.limiter.Wait(ctx); err != nil {
		metrics.RecordCatalogRequest(endpoint, "error", time.Since(start))
		return err
	}

	body, err := c.breaker.Execute(func() ([]byte, error) {
		return c.fetch(ctx, path, params)
	})
	if err != nil {
		outcome := "error"
		if isBreakerRejection(err) {
			outcome = "breaker_open"
		}
		metrics.RecordCatalogRequest(endpoint, outcome, time.Since(start))
		return err
	}

	if err := json.Unmarshal(body, out); err != nil {
		metrics.RecordCatalogRequest(endpoint, "error", time.Since(start))
		return fmt.Errorf("decode %s: %w", path, err)
	}
	metrics.RecordCatalogRequest(endpoint, "ok", time.Since(start))
	return nil
}

func (c *Client) fetch(ctx context.Context, path string, params url.Values) ([]byte, error) {
	query := url.Values{}
	for k, v := range params {
		query[k] = v
	}
	query.Set("api_key", c.cfg.APIKey)
	query.Set("language", c.cfg.Language)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+path, http.NoBody)
	if err != nil {
		return nil, err
	}
	req.URL.RawQuery = query.Encode()
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, &StatusError{Code: resp.StatusCode, Path: path}
	}
	return io.ReadAll(resp.Body)
}

// clampPage keeps page numbers inside the 1..MaxPage window the API accepts.
func clampPage(page int) int {
	if page < 1 {
		return 1
	}
	if page > MaxPage {
		return MaxPage
	}
	return page
}

// MaxPage is the highest page number the discovery endpoint serves.
const MaxPage = 500
