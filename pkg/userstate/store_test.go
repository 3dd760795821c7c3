package userstate_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oceanbase/cinedeck-go/pkg/catalog"
	"github.com/oceanbase/cinedeck-go/pkg/intelligence"
	"github.com/oceanbase/cinedeck-go/pkg/storage"
	"github.com/oceanbase/cinedeck-go/pkg/storage/memory"
	"github.com/oceanbase/cinedeck-go/pkg/userstate"
)

var errDisk = errors.New("disk full")

// flakyKV fails the first failures Set calls.
type flakyKV struct {
	storage.KVStore

	mu       sync.Mutex
	failures int
	sets     int
}

func (f *flakyKV) Set(ctx context.Context, key string, value []byte) error {
	f.mu.Lock()
	f.sets++
	fail := f.failures > 0
	if fail {
		f.failures--
	}
	f.mu.Unlock()
	if fail {
		return errDisk
	}
	return f.KVStore.Set(ctx, key, value)
}

func fastRetry() userstate.Option {
	return userstate.WithRetryPolicy(userstate.RetryPolicy{
		MaxRetries:      3,
		InitialInterval: time.Millisecond,
		MaxElapsed:      time.Second,
	})
}

func TestPreferencesRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := userstate.NewStore(memory.NewClient(), "alice")

	empty, err := store.LoadPreferences(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, empty.Len())
	assert.True(t, empty.LastDecayAt.IsZero())

	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	p := intelligence.NewProfile(now)
	p.GenreScores[28] = 2.5
	p.GenreScores[35] = 0.5
	require.NoError(t, store.SavePreferences(ctx, p))

	loaded, err := store.LoadPreferences(ctx)
	require.NoError(t, err)
	assert.Equal(t, p.GenreScores, loaded.GenreScores)
	assert.True(t, now.Equal(loaded.LastDecayAt))
}

func TestProfilesAreNamespaced(t *testing.T) {
	ctx := context.Background()
	kv := memory.NewClient()
	alice := userstate.NewStore(kv, "alice")
	bob := userstate.NewStore(kv, "")

	assert.Equal(t, userstate.DefaultProfileID, bob.Profile())

	require.NoError(t, alice.SaveHidden(ctx, intelligence.NewKeySet(catalog.Key{Type: catalog.Movie, ID: 1})))

	hidden, err := bob.LoadHidden(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, hidden.Len())

	raw, err := kv.Get(ctx, "alice/HIDDEN_SET")
	require.NoError(t, err)
	assert.JSONEq(t, `["movie-1"]`, string(raw))
}

func TestHiddenRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := userstate.NewStore(memory.NewClient(), "alice")

	set := intelligence.NewKeySet(
		catalog.Key{Type: catalog.Movie, ID: 550},
		catalog.Key{Type: catalog.TV, ID: 1399},
	)
	require.NoError(t, store.SaveHidden(ctx, set))

	loaded, err := store.LoadHidden(ctx)
	require.NoError(t, err)
	assert.Equal(t, set.Keys(), loaded.Keys())
}

func TestUnreadablePreferencesAreBackedUp(t *testing.T) {
	ctx := context.Background()
	kv := memory.NewClient()
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, kv.Set(ctx, "alice/PREFERENCES", []byte("{not json")))
	store := userstate.NewStore(kv, "alice", userstate.WithClock(func() time.Time { return now }))

	p, err := store.LoadPreferences(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, p.Len())

	p.GenreScores[28] = 1
	require.NoError(t, store.SavePreferences(ctx, p))

	backup, err := kv.Get(ctx, "alice/"+userstate.BackupName(userstate.KeyPreferences, now))
	require.NoError(t, err)
	assert.Equal(t, "{not json", string(backup))
}

func TestUnreadableDocumentNotOverwrittenWhenBackupFails(t *testing.T) {
	ctx := context.Background()
	mem := memory.NewClient()
	require.NoError(t, mem.Set(ctx, "alice/HIDDEN_SET", []byte(`{"movie-1":`)))
	kv := &flakyKV{KVStore: mem, failures: 100}
	store := userstate.NewStore(kv, "alice", fastRetry())

	_, err := store.LoadHidden(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, userstate.ErrUnreadableDocument)
	assert.ErrorIs(t, err, errDisk)

	raw, err := mem.Get(ctx, "alice/HIDDEN_SET")
	require.NoError(t, err)
	assert.Equal(t, `{"movie-1":`, string(raw))
}

func TestHiddenSetSurvivesUnknownEntries(t *testing.T) {
	ctx := context.Background()
	kv := memory.NewClient()
	require.NoError(t, kv.Set(ctx, "alice/HIDDEN_SET", []byte(`["movie-1","movie-2","series-3","book-4"]`)))
	store := userstate.NewStore(kv, "alice")

	set, err := store.LoadHidden(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, set.Len())

	set.Add(catalog.Key{Type: catalog.Movie, ID: 9})
	require.NoError(t, store.SaveHidden(ctx, set))

	raw, err := kv.Get(ctx, "alice/HIDDEN_SET")
	require.NoError(t, err)
	assert.JSONEq(t, `["movie-1","movie-2","movie-9","tv-3","book-4"]`, string(raw))

	keys, err := kv.Keys(ctx, "alice/")
	require.NoError(t, err)
	assert.Equal(t, []string{"alice/HIDDEN_SET"}, keys)
}

func TestFiltersAndOnboarding(t *testing.T) {
	ctx := context.Background()
	store := userstate.NewStore(memory.NewClient(), "alice")

	f, found, err := store.LoadFilters(ctx)
	require.NoError(t, err)
	assert.False(t, found)
	assert.Equal(t, catalog.Movie, f.Type)
	assert.Empty(t, f.Genres)

	onboarded, err := store.Onboarded(ctx)
	require.NoError(t, err)
	assert.False(t, onboarded)

	require.NoError(t, store.SaveFilters(ctx, userstate.Filters{Type: catalog.TV, Genres: []int{18}, Providers: []int{8, 337}}))

	f, found, err = store.LoadFilters(ctx)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, userstate.Filters{Type: catalog.TV, Genres: []int{18}, Providers: []int{8, 337}}, f)

	onboarded, err = store.Onboarded(ctx)
	require.NoError(t, err)
	assert.True(t, onboarded)
}

func TestWriteRetriesThenSucceeds(t *testing.T) {
	ctx := context.Background()
	kv := &flakyKV{KVStore: memory.NewClient(), failures: 2}
	store := userstate.NewStore(kv, "alice", fastRetry())

	p := intelligence.NewProfile(time.Now())
	p.GenreScores[28] = 1
	require.NoError(t, store.SavePreferences(ctx, p))
	assert.Equal(t, 3, kv.sets)

	loaded, err := store.LoadPreferences(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1.0, loaded.Score(28))
}

func TestWriteGivesUpAfterMaxRetries(t *testing.T) {
	ctx := context.Background()
	kv := &flakyKV{KVStore: memory.NewClient(), failures: 100}
	store := userstate.NewStore(kv, "alice", fastRetry())

	err := store.SaveHidden(ctx, intelligence.NewKeySet())
	require.Error(t, err)
	assert.ErrorIs(t, err, errDisk)
	assert.Equal(t, 4, kv.sets)
}

func TestReset(t *testing.T) {
	ctx := context.Background()
	kv := memory.NewClient()
	store := userstate.NewStore(kv, "alice")
	other := userstate.NewStore(kv, "bob")

	require.NoError(t, store.SavePreferences(ctx, intelligence.NewProfile(time.Now())))
	require.NoError(t, store.SaveFilters(ctx, userstate.DefaultFilters()))
	require.NoError(t, other.MarkOnboarded(ctx))

	keys, err := kv.Keys(ctx, "alice/")
	require.NoError(t, err)
	assert.Equal(t, []string{"alice/" + userstate.KeyOnboarded, "alice/" + userstate.KeyFilters, "alice/" + userstate.KeyPreferences}, keys)

	require.NoError(t, store.Reset(ctx))
	keys, err = kv.Keys(ctx, "alice/")
	require.NoError(t, err)
	assert.Empty(t, keys)

	onboarded, err := other.Onboarded(ctx)
	require.NoError(t, err)
	assert.True(t, onboarded)
}
