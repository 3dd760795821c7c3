package intelligence_test

import (
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oceanbase/cinedeck-go/pkg/catalog"
	"github.com/oceanbase/cinedeck-go/pkg/intelligence"
)

func TestKeySet(t *testing.T) {
	movie := catalog.Key{Type: catalog.Movie, ID: 550}
	show := catalog.Key{Type: catalog.TV, ID: 550}

	set := intelligence.NewKeySet()
	assert.True(t, set.Add(movie))
	assert.False(t, set.Add(movie))
	assert.True(t, set.Add(show), "same id, different type is a different key")
	assert.Equal(t, 2, set.Len())

	clone := set.Clone()
	assert.True(t, set.Remove(movie))
	assert.False(t, set.Remove(movie))
	assert.False(t, set.Contains(movie))
	assert.True(t, clone.Contains(movie))
}

func TestKeySetNil(t *testing.T) {
	var set *intelligence.KeySet
	assert.False(t, set.Contains(catalog.Key{Type: catalog.Movie, ID: 1}))
	assert.Equal(t, 0, set.Len())
	assert.Empty(t, set.Keys())
	assert.Equal(t, 0, set.Clone().Len())
}

func TestKeySetJSON(t *testing.T) {
	set := intelligence.NewKeySet(
		catalog.Key{Type: catalog.TV, ID: 1399},
		catalog.Key{Type: catalog.Movie, ID: 680},
		catalog.Key{Type: catalog.Movie, ID: 550},
	)

	data, err := json.Marshal(set)
	require.NoError(t, err)
	assert.JSONEq(t, `["movie-550","movie-680","tv-1399"]`, string(data))

	decoded := intelligence.NewKeySet()
	require.NoError(t, json.Unmarshal(data, decoded))
	assert.Equal(t, set.Keys(), decoded.Keys())

	assert.Error(t, json.Unmarshal([]byte(`{"movie-1":true}`), decoded))
}

func TestKeySetJSONKeepsUnreadableEntries(t *testing.T) {
	decoded := intelligence.NewKeySet()
	require.NoError(t, json.Unmarshal([]byte(`["movie-1","series-3","book-7","movie-2","book-7"]`), decoded))

	assert.Equal(t, 3, decoded.Len())
	assert.True(t, decoded.Contains(catalog.Key{Type: catalog.TV, ID: 3}))
	assert.Equal(t, []string{"book-7"}, decoded.Unparsed())

	decoded.Add(catalog.Key{Type: catalog.Movie, ID: 9})
	data, err := json.Marshal(decoded.Clone())
	require.NoError(t, err)
	assert.JSONEq(t, `["movie-1","movie-2","movie-9","tv-3","book-7"]`, string(data))
}
