package core_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oceanbase/cinedeck-go/pkg/catalog"
	"github.com/oceanbase/cinedeck-go/pkg/catalog/catalogtest"
	"github.com/oceanbase/cinedeck-go/pkg/core"
	"github.com/oceanbase/cinedeck-go/pkg/intelligence"
	"github.com/oceanbase/cinedeck-go/pkg/storage/memory"
	"github.com/oceanbase/cinedeck-go/pkg/userstate"
)

func TestAsyncClient(t *testing.T) {
	ctx := context.Background()
	fake := catalogtest.New()
	seedMovies(fake, 1, 2, 3)

	client, err := core.NewAsyncClient(testConfig(),
		core.WithStore(memory.NewClient()),
		core.WithCatalog(fake),
		core.WithClientClock(func() time.Time { return epoch }),
	)
	require.NoError(t, err)
	defer client.Close()

	samples := client.SampleAsync(ctx, catalog.Movie, core.WithPages(1))
	moods := client.InterpretMoodAsync(ctx, catalog.Movie, "pure comedy")

	sample := <-samples
	require.NoError(t, sample.Error)
	assert.Len(t, sample.Items, 3)

	mood := <-moods
	require.NoError(t, mood.Error)
	assert.Equal(t, []int{35}, mood.Genres)

	session, err := client.NewSession(ctx, core.WithSeed(1))
	require.NoError(t, err)
	swipe := <-client.SwipeAsync(ctx, session, intelligence.Decision{Action: intelligence.ActionWatchLater})
	require.NoError(t, swipe.Error)
	assert.Equal(t, userstate.Watchlist, swipe.Result.List)

	list := <-client.ListAsync(ctx, userstate.Watchlist)
	require.NoError(t, list.Error)
	require.Len(t, list.Entries, 1)
	assert.Equal(t, swipe.Result.Item.Key(), list.Entries[0].Key())

	profile := <-client.ProfileAsync(ctx)
	require.NoError(t, profile.Error)
	require.Len(t, profile.Profile.Genres, 1)
	assert.Equal(t, 0.5, profile.Profile.Genres[0].Score)

	client.Wait()
}
