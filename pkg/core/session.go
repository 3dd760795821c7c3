package core

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/oceanbase/cinedeck-go/pkg/catalog"
	"github.com/oceanbase/cinedeck-go/pkg/intelligence"
	"github.com/oceanbase/cinedeck-go/pkg/logging"
	"github.com/oceanbase/cinedeck-go/pkg/metrics"
	"github.com/oceanbase/cinedeck-go/pkg/sampler"
	"github.com/oceanbase/cinedeck-go/pkg/userstate"
)

// Session is one discovery deck.
//
// The session mutex guards the queue, the filters and the sampler, and is
// safe to use from several goroutines. It is not held for the whole of a
// call: refills (run by NewSession, Swipe, ApplyFilters and Refill) release
// it while the catalog is sampled, so other calls may run in between. Each
// refill records the generation counter before unlocking and appends its
// results only if the generation is unchanged when it relocks. ApplyFilters
// bumps the generation, so a sample started under the old filters is dropped.
// At most one refill runs per generation.
type Session struct {
	id     string
	client *Client

	mu        sync.Mutex
	gen       uint64
	refilling bool
	filters   userstate.Filters
	queue     *sampler.Queue
	sampler   *sampler.Sampler
	seed      int64
	threshold int
	pages     int
	now       func() time.Time
}

// NewSession starts a deck with the saved filters, or the ones passed with
// WithFilters, and fills it once.
//
// Example:
//
//	session, err := client.NewSession(ctx, core.WithSeed(42))
//	if err != nil {
//	    return err
//	}
//	card, _ := session.Current()
func (c *Client) NewSession(ctx context.Context, opts ...SessionOption) (*Session, error) {
	options := applySessionOptions(opts)
	if err := c.ensureLoaded(ctx); err != nil {
		return nil, NewDiscoveryError("NewSession", err)
	}

	var filters userstate.Filters
	if options.Filters != nil {
		if err := validateFilters(*options.Filters); err != nil {
			return nil, NewDiscoveryError("NewSession", err)
		}
		filters = *options.Filters
	} else {
		saved, _, err := c.store.LoadFilters(ctx)
		if err != nil {
			return nil, storageError("NewSession", err)
		}
		filters = saved
	}

	threshold := options.RefillThreshold
	if threshold < 0 {
		threshold = c.config.Discovery.RefillThreshold
		if threshold <= 0 {
			threshold = sampler.DefaultRefillThreshold
		}
	}
	now := options.Clock
	if now == nil {
		now = c.now
	}

	s := &Session{
		id:        c.snowflakeNode.Generate().String(),
		client:    c,
		filters:   filters.Normalize(),
		queue:     sampler.NewQueue(),
		seed:      options.Seed,
		threshold: threshold,
		pages:     c.config.Discovery.Pages,
		now:       now,
	}
	s.sampler = c.newSampler(s.seed)

	s.mu.Lock()
	added := s.refillLocked(ctx)
	s.mu.Unlock()

	logging.Info().
		Str("session", s.id).
		Str("content_type", string(s.filters.Type)).
		Int("cards", added).
		Msg("session started")
	return s, nil
}

// ID returns the session id.
func (s *Session) ID() string {
	return s.id
}

// Filters returns the filters the deck is built with.
func (s *Session) Filters() userstate.Filters {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filters
}

// Current returns the card under the cursor.
func (s *Session) Current() (catalog.Item, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.queue.Current()
}

// Peek returns up to n upcoming cards without consuming them. A negative n
// returns all of them.
func (s *Session) Peek(n int) []catalog.Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.queue.Peek(n)
}

// State summarises the deck with up to n upcoming cards.
func (s *Session) State(n int) DeckState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return DeckState{
		SessionID: s.id,
		Filters:   s.filters,
		Cursor:    s.queue.Cursor(),
		Len:       s.queue.Len(),
		Remaining: s.queue.Remaining(),
		Next:      s.queue.Peek(n),
	}
}

// Swipe applies a decision to the current card.
//
// The steps run in order: resolve genres, record feedback, hide, update the
// liked list or watchlist, advance the cursor and refill when the deck runs
// low. A cancelled decision changes nothing. When a write fails the deck
// still advances and the error wraps ErrStorageOperation next to a valid
// result.
func (s *Session) Swipe(ctx context.Context, d intelligence.Decision) (*SwipeResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.queue.Current()
	if !ok {
		return nil, NewDiscoveryError("Swipe", ErrEmptyDeck)
	}
	return s.swipeLocked(ctx, item, d.Effective())
}

// MarkSeen runs the seen dialog for the current card. ask is called without
// the session lock held and its verdict is applied as a like, a dislike or
// a cancel.
func (s *Session) MarkSeen(ctx context.Context, ask func(catalog.Item) intelligence.Verdict) (*SwipeResult, error) {
	item, ok := s.Current()
	if !ok {
		return nil, NewDiscoveryError("MarkSeen", ErrEmptyDeck)
	}
	verdict := ask(item)

	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.queue.Current()
	if !ok || current.Key() != item.Key() {
		return nil, NewDiscoveryError("MarkSeen", fmt.Errorf("%w: deck moved past %s", ErrInvalidInput, item.Key()))
	}
	return s.swipeLocked(ctx, item, intelligence.VerdictAction(verdict))
}

func (s *Session) swipeLocked(ctx context.Context, item catalog.Item, action intelligence.Action) (*SwipeResult, error) {
	if action == intelligence.ActionCancel {
		return &SwipeResult{Item: item, Action: action}, nil
	}

	result, err := s.client.decideAt(ctx, item, action, s.now())
	if action.Consumes() {
		result.Advanced = s.queue.Advance()
	}
	if s.queue.NeedsRefill(s.threshold) && !s.refilling {
		result.Refilled = s.refillLocked(ctx)
	}

	logging.Debug().
		Str("session", s.id).
		Str("key", item.Key().String()).
		Str("action", string(action)).
		Bool("recorded", result.Recorded).
		Int("refilled", result.Refilled).
		Msg("swipe")
	return result, err
}

// Hide hides key for good and removes it from the deck. Hiding a title
// twice only repeats the removal.
func (s *Session) Hide(ctx context.Context, key catalog.Key) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	hidden, err := s.client.Hide(ctx, key)
	s.queue.Remove(key)
	return hidden, err
}

// ApplyFilters replaces the deck with one built from f and persists f.
// Refills still running for the old filters are discarded.
func (s *Session) ApplyFilters(ctx context.Context, f userstate.Filters) error {
	if err := validateFilters(f); err != nil {
		return NewDiscoveryError("ApplyFilters", err)
	}
	f = f.Normalize()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.gen++
	s.refilling = false
	s.filters = f
	s.queue = sampler.NewQueue()
	s.sampler = s.client.newSampler(s.seed)

	saveErr := s.client.store.SaveFilters(ctx, f)
	s.refillLocked(ctx)
	return storageError("ApplyFilters", saveErr)
}

// refillLocked samples more cards and appends them. It must be called with
// s.mu held; the lock is released while the catalog is queried. It returns
// the number of cards added, zero when the filters changed meanwhile.
func (s *Session) refillLocked(ctx context.Context) int {
	gen := s.gen
	smp := s.sampler
	exclude := s.queue.Keys()
	req := sampler.Request{
		Type:      s.filters.Type,
		Genres:    s.filters.Genres,
		Providers: s.filters.Providers,
		Pages:     s.pages,
	}
	s.refilling = true

	s.mu.Unlock()
	items := smp.Sample(ctx, req, exclude)
	s.mu.Lock()

	if s.gen != gen {
		logging.Debug().Str("session", s.id).Msg("dropping refill for stale filters")
		return 0
	}
	s.refilling = false
	added := s.queue.Append(items, s.client.Contains)
	metrics.DeckRefills.Inc()
	return added
}

// Refill samples more cards now, regardless of the threshold.
func (s *Session) Refill(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.refilling {
		return 0, nil
	}
	if err := ctx.Err(); err != nil {
		return 0, NewDiscoveryError("Refill", err)
	}
	return s.refillLocked(ctx), nil
}

// IsEmpty reports whether the deck has no unconsumed card.
func (s *Session) IsEmpty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.queue.Remaining() == 0
}
