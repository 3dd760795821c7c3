package userstate

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/goccy/go-json"

	"github.com/oceanbase/cinedeck-go/pkg/intelligence"
	"github.com/oceanbase/cinedeck-go/pkg/logging"
	"github.com/oceanbase/cinedeck-go/pkg/metrics"
	"github.com/oceanbase/cinedeck-go/pkg/storage"
)

// RetryPolicy controls how failed writes are retried.
type RetryPolicy struct {
	// MaxRetries is the number of retries after the first attempt.
	MaxRetries uint64

	// InitialInterval is the first backoff delay.
	InitialInterval time.Duration

	// MaxElapsed bounds the total time spent on one write.
	MaxElapsed time.Duration
}

// DefaultRetryPolicy retries three times starting at 50ms, for at most 2s.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxRetries:      3,
		InitialInterval: 50 * time.Millisecond,
		MaxElapsed:      2 * time.Second,
	}
}

func (p RetryPolicy) backOff(ctx context.Context) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = p.InitialInterval
	b.MaxElapsedTime = p.MaxElapsed
	return backoff.WithContext(backoff.WithMaxRetries(b, p.MaxRetries), ctx)
}

// Store reads and writes the documents of one profile.
//
// Store holds no cached state, so it is safe for concurrent use as long as
// the underlying KVStore is. Callers that need read-modify-write atomicity
// (the lists) must serialise their own calls.
type Store struct {
	kv      storage.KVStore
	profile string
	retry   RetryPolicy
	now     func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithRetryPolicy overrides DefaultRetryPolicy.
func WithRetryPolicy(p RetryPolicy) Option {
	return func(s *Store) {
		s.retry = p
	}
}

// WithClock overrides time.Now for list timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// NewStore creates a Store for profile. An empty profile id uses DefaultProfileID.
func NewStore(kv storage.KVStore, profile string, opts ...Option) *Store {
	if profile == "" {
		profile = DefaultProfileID
	}
	s := &Store{
		kv:      kv,
		profile: profile,
		retry:   DefaultRetryPolicy(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Profile returns the profile id.
func (s *Store) Profile() string {
	return s.profile
}

func (s *Store) key(name string) string {
	return s.profile + "/" + name
}

// load decodes the document name into out. It reports false when the
// document does not exist.
//
// A document that cannot be decoded is copied to a backup key first and then
// treated as missing, so the next save cannot destroy its contents. If the
// backup itself fails, load returns an error and the caller must not save.
func (s *Store) load(ctx context.Context, name string, out interface{}) (bool, error) {
	data, err := s.kv.Get(ctx, s.key(name))
	if errors.Is(err, storage.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("load %s: %w", name, err)
	}
	if decodeErr := json.Unmarshal(data, out); decodeErr != nil {
		backup := BackupName(name, s.now())
		if err := s.write(ctx, backup, func() error {
			return s.kv.Set(ctx, s.key(backup), data)
		}); err != nil {
			return false, fmt.Errorf("load %s: %w: %w", name, ErrUnreadableDocument, err)
		}
		logging.Warn().Err(decodeErr).Str("profile", s.profile).Str("key", name).
			Str("backup", backup).Msg("unreadable document moved aside")
		return false, nil
	}
	return true, nil
}

// save encodes v and writes it under name, retrying per the retry policy.
func (s *Store) save(ctx context.Context, name string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("save %s: %w", name, err)
	}
	return s.write(ctx, name, func() error {
		return s.kv.Set(ctx, s.key(name), data)
	})
}

func (s *Store) write(ctx context.Context, name string, op func() error) error {
	notify := func(err error, wait time.Duration) {
		metrics.StorageRetries.WithLabelValues(name).Inc()
		logging.Warn().Err(err).Str("profile", s.profile).Str("key", name).
			Dur("retry_in", wait).Msg("storage write failed, retrying")
	}
	if err := backoff.RetryNotify(op, s.retry.backOff(ctx), notify); err != nil {
		return fmt.Errorf("save %s: %w", name, err)
	}
	return nil
}

// LoadPreferences returns the stored profile, or an empty unstamped profile
// when none was saved yet.
func (s *Store) LoadPreferences(ctx context.Context) (*intelligence.Profile, error) {
	var p intelligence.Profile
	found, err := s.load(ctx, KeyPreferences, &p)
	if err != nil || !found {
		return (*intelligence.Profile)(nil).Clone(), err
	}
	return p.Clone(), nil
}

// SavePreferences persists p.
func (s *Store) SavePreferences(ctx context.Context, p *intelligence.Profile) error {
	return s.save(ctx, KeyPreferences, p.Clone())
}

// LoadHidden returns the hidden set, empty when none was saved yet.
func (s *Store) LoadHidden(ctx context.Context) (*intelligence.KeySet, error) {
	set := intelligence.NewKeySet()
	found, err := s.load(ctx, KeyHiddenSet, set)
	if err != nil || !found {
		return intelligence.NewKeySet(), err
	}
	if bad := set.Unparsed(); len(bad) > 0 {
		logging.Warn().Str("profile", s.profile).Strs("entries", bad).
			Msg("hidden set has unreadable entries, keeping them as-is")
	}
	return set, nil
}

// SaveHidden persists the hidden set.
func (s *Store) SaveHidden(ctx context.Context, set *intelligence.KeySet) error {
	return s.save(ctx, KeyHiddenSet, set.Clone())
}

// LoadFilters returns the saved filters and whether any were saved.
func (s *Store) LoadFilters(ctx context.Context) (Filters, bool, error) {
	var f Filters
	found, err := s.load(ctx, KeyFilters, &f)
	if err != nil || !found {
		return DefaultFilters().Normalize(), false, err
	}
	return f.Normalize(), true, nil
}

// SaveFilters persists f and marks the filter onboarding as done.
func (s *Store) SaveFilters(ctx context.Context, f Filters) error {
	if err := s.save(ctx, KeyFilters, f.Normalize()); err != nil {
		return err
	}
	return s.MarkOnboarded(ctx)
}

// Onboarded reports whether the viewer has applied filters at least once.
func (s *Store) Onboarded(ctx context.Context) (bool, error) {
	_, err := s.kv.Get(ctx, s.key(KeyOnboarded))
	if errors.Is(err, storage.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("load %s: %w", KeyOnboarded, err)
	}
	return true, nil
}

// MarkOnboarded records that the filter screen has been seen.
func (s *Store) MarkOnboarded(ctx context.Context) error {
	return s.write(ctx, KeyOnboarded, func() error {
		return s.kv.Set(ctx, s.key(KeyOnboarded), []byte("1"))
	})
}

// Reset deletes every document of the profile.
func (s *Store) Reset(ctx context.Context) error {
	keys, err := s.kv.Keys(ctx, s.profile+"/")
	if err != nil {
		return fmt.Errorf("reset: %w", err)
	}
	for _, k := range keys {
		if err := s.kv.Delete(ctx, k); err != nil {
			return fmt.Errorf("reset: %w", err)
		}
	}
	logging.Info().Str("profile", s.profile).Int("documents", len(keys)).Msg("profile reset")
	return nil
}
