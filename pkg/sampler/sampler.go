// Package sampler builds the discovery deck: it samples deduplicated
// candidates from the catalog, resolves missing genres and keeps the
// presentation queue with its refill trigger.
package sampler

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/oceanbase/cinedeck-go/pkg/catalog"
	"github.com/oceanbase/cinedeck-go/pkg/intelligence"
	"github.com/oceanbase/cinedeck-go/pkg/logging"
	"github.com/oceanbase/cinedeck-go/pkg/metrics"
)

const (
	// DefaultPages is the number of catalog pages fetched per sample.
	DefaultPages = 3

	// DefaultConcurrency bounds the parallel random-page fetches.
	DefaultConcurrency = 4

	// MaxTotalPages is the deepest page the catalog serves.
	MaxTotalPages = 500
)

// Request describes one sampling call.
type Request struct {
	// Type is movie, tv or all (mixed mode).
	Type catalog.ContentType

	// Genres, when non-empty, is used verbatim as the genre filter.
	// Otherwise the top learned genres are used.
	Genres []int

	// Providers restricts results to these watch providers.
	Providers []int

	// Pages is the number of pages to fetch per content type.
	// Default: DefaultPages
	Pages int
}

// PreferenceSource returns the viewer's top genres by decayed score.
type PreferenceSource interface {
	TopGenres(ctx context.Context, n int) ([]int, error)
}

// HiddenSet reports whether a title must never be sampled.
// *intelligence.KeySet satisfies it.
type HiddenSet interface {
	Contains(k catalog.Key) bool
}

// Config configures a Sampler.
type Config struct {
	// TopGenres is how many learned genres form the implicit filter.
	// Default: intelligence.DefaultTopGenres
	TopGenres int

	// Concurrency bounds parallel page fetches.
	// Default: DefaultConcurrency
	Concurrency int

	// Seed seeds the page picker and the shuffle. Zero seeds from the clock.
	Seed int64
}

// Sampler draws candidates for one session.
//
// The page-count cache and the random source live on the instance, so two
// sessions never share sampling state. A Sampler is safe for concurrent use.
type Sampler struct {
	source      catalog.Source
	prefs       PreferenceSource
	hidden      HiddenSet
	topGenres   int
	concurrency int

	mu     sync.Mutex
	rng    *rand.Rand
	totals map[string]int
}

// New creates a Sampler. prefs and hidden may be nil.
func New(source catalog.Source, prefs PreferenceSource, hidden HiddenSet, cfg *Config) *Sampler {
	if cfg == nil {
		cfg = &Config{}
	}
	topGenres := cfg.TopGenres
	if topGenres <= 0 {
		topGenres = intelligence.DefaultTopGenres
	}
	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	if hidden == nil {
		hidden = intelligence.NewKeySet()
	}
	return &Sampler{
		source:      source,
		prefs:       prefs,
		hidden:      hidden,
		topGenres:   topGenres,
		concurrency: concurrency,
		rng:         rand.New(rand.NewSource(seed)),
		totals:      make(map[string]int),
	}
}

// Sample returns shuffled candidates for req. Titles without a poster,
// hidden titles, titles in exclude and repeats are dropped.
//
// Sample never fails: failed pages are logged and skipped, and a total
// failure yields an empty slice.
func (s *Sampler) Sample(ctx context.Context, req Request, exclude *intelligence.KeySet) []catalog.Item {
	if req.Type == catalog.All {
		movieReq, tvReq := req, req
		movieReq.Type = catalog.Movie
		tvReq.Type = catalog.TV
		movies := s.sampleType(ctx, movieReq, exclude)
		shows := s.sampleType(ctx, tvReq, exclude)
		return Interleave(movies, shows)
	}
	if !req.Type.Valid() {
		req.Type = catalog.Movie
	}
	return s.sampleType(ctx, req, exclude)
}

// EffectiveGenres returns the genre filter a request resolves to.
func (s *Sampler) EffectiveGenres(ctx context.Context, filter []int) []int {
	if len(filter) > 0 {
		return append([]int(nil), filter...)
	}
	if s.prefs == nil {
		return nil
	}
	top, err := s.prefs.TopGenres(ctx, s.topGenres)
	if err != nil {
		logging.Warn().Err(err).Msg("preferences unavailable, sampling unfiltered")
		return nil
	}
	return top
}

// CachedTotal returns the cached page count for a query signature.
func (s *Sampler) CachedTotal(q catalog.DiscoverQuery) (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	total, ok := s.totals[q.Signature()]
	return total, ok
}

func (s *Sampler) sampleType(ctx context.Context, req Request, exclude *intelligence.KeySet) []catalog.Item {
	pages := req.Pages
	if pages <= 0 {
		pages = DefaultPages
	}
	query := catalog.DiscoverQuery{
		Type:      req.Type,
		Genres:    s.EffectiveGenres(ctx, req.Genres),
		Providers: req.Providers,
		Page:      1,
	}
	log := logging.With().Str("content_type", string(req.Type)).Logger()

	batches := make([][]catalog.Item, 0, pages)
	total, cached := s.CachedTotal(query)

	first, err := s.source.Discover(ctx, query)
	if err != nil {
		metrics.SamplerPageFailures.WithLabelValues(string(req.Type)).Inc()
		log.Warn().Err(err).Int("page", 1).Bool("cached_total", cached).Msg("discover page failed")
	} else {
		total = min(first.TotalPages, MaxTotalPages)
		s.storeTotal(query, total)

		results := first.Results
		if len(results) == 0 {
			results = s.popular(ctx, req.Type)
		}
		batches = append(batches, results)
	}

	if total > 0 && pages > 1 {
		picks := s.pickPages(total, pages-1)
		batches = append(batches, s.fetchPages(ctx, query, picks)...)
	}

	items := s.filter(req.Type, batches, exclude)
	s.shuffle(items)
	log.Debug().Int("admitted", len(items)).Ints("genres", query.Genres).Int("total_pages", total).Msg("sampled")
	return items
}

func (s *Sampler) popular(ctx context.Context, t catalog.ContentType) []catalog.Item {
	page, err := s.source.Popular(ctx, t, 1)
	if err != nil {
		metrics.SamplerPageFailures.WithLabelValues(string(t)).Inc()
		logging.Warn().Err(err).Str("content_type", string(t)).Msg("popular fallback failed")
		return nil
	}
	logging.Debug().Str("content_type", string(t)).Int("results", len(page.Results)).Msg("discover empty, using popular")
	return page.Results
}

func (s *Sampler) storeTotal(q catalog.DiscoverQuery, total int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.totals[q.Signature()] = total
}

// pickPages draws n pages uniformly from [1, total] with replacement.
func (s *Sampler) pickPages(total, n int) []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	picks := make([]int, n)
	for i := range picks {
		picks[i] = 1 + s.rng.Intn(total)
	}
	return picks
}

// fetchPages fetches pages concurrently and returns their results in pick order.
func (s *Sampler) fetchPages(ctx context.Context, base catalog.DiscoverQuery, picks []int) [][]catalog.Item {
	out := make([][]catalog.Item, len(picks))

	var g errgroup.Group
	g.SetLimit(s.concurrency)
	for i, page := range picks {
		g.Go(func() error {
			q := base
			q.Page = page
			res, err := s.source.Discover(ctx, q)
			if err != nil {
				metrics.SamplerPageFailures.WithLabelValues(string(q.Type)).Inc()
				logging.Warn().Err(err).Str("content_type", string(q.Type)).Int("page", page).Msg("discover page failed")
				return nil
			}
			out[i] = res.Results
			return nil
		})
	}
	_ = g.Wait()
	return out
}

func (s *Sampler) filter(t catalog.ContentType, batches [][]catalog.Item, exclude *intelligence.KeySet) []catalog.Item {
	admitted := intelligence.NewKeySet()
	items := []catalog.Item{}
	discard := func(reason string) {
		metrics.SamplerDiscarded.WithLabelValues(string(t), reason).Inc()
	}

	for _, batch := range batches {
		for _, item := range batch {
			if item.Type == "" {
				item.Type = t
			}
			key := item.Key()
			switch {
			case !item.HasPoster():
				discard("no_poster")
			case s.hidden.Contains(key):
				discard("hidden")
			case exclude.Contains(key) || !admitted.Add(key):
				discard("duplicate")
			default:
				items = append(items, item)
			}
		}
	}
	metrics.SamplerAdmitted.WithLabelValues(string(t)).Add(float64(len(items)))
	return items
}

// shuffle is a Fisher-Yates shuffle driven by the sampler's random source.
func (s *Sampler) shuffle(items []catalog.Item) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := len(items) - 1; i > 0; i-- {
		j := s.rng.Intn(i + 1)
		items[i], items[j] = items[j], items[i]
	}
}

// Interleave alternates a and b starting with a, then appends whatever is
// left of the longer one.
func Interleave(a, b []catalog.Item) []catalog.Item {
	out := make([]catalog.Item, 0, len(a)+len(b))
	i := 0
	for ; i < len(a) && i < len(b); i++ {
		out = append(out, a[i], b[i])
	}
	out = append(out, a[i:]...)
	out = append(out, b[i:]...)
	return out
}
