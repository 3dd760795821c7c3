package catalog_test

import (
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oceanbase/cinedeck-go/pkg/catalog"
)

func TestParseContentType(t *testing.T) {
	tests := []struct {
		in      string
		want    catalog.ContentType
		wantErr bool
	}{
		{"movie", catalog.Movie, false},
		{"TV", catalog.TV, false},
		{"series", catalog.TV, false},
		{"all", catalog.All, false},
		{"", catalog.All, false},
		{"anime", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := catalog.ParseContentType(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
	assert.False(t, catalog.All.Valid())
}

func TestKeyRoundTrip(t *testing.T) {
	k := catalog.Key{Type: catalog.Movie, ID: 550}
	assert.Equal(t, "movie-550", k.String())

	for _, s := range []string{"movie-550", "movie:550", "movie_550"} {
		parsed, err := catalog.ParseKey(s)
		require.NoError(t, err, s)
		assert.Equal(t, k, parsed)
	}

	aliases := map[string]catalog.Key{
		"series-3":   {Type: catalog.TV, ID: 3},
		"Movies_550": k,
		"TV:1399":    {Type: catalog.TV, ID: 1399},
	}
	for s, want := range aliases {
		parsed, err := catalog.ParseKey(s)
		require.NoError(t, err, s)
		assert.Equal(t, want, parsed)
	}

	for _, bad := range []string{"", "movie", "movie-", "-550", "book-1", "tv-x", "all-5"} {
		_, err := catalog.ParseKey(bad)
		assert.Error(t, err, bad)
	}
}

func TestKeyJSON(t *testing.T) {
	keys := []catalog.Key{{Type: catalog.TV, ID: 1399}, {Type: catalog.Movie, ID: 550}}
	data, err := json.Marshal(keys)
	require.NoError(t, err)
	assert.JSONEq(t, `["tv-1399","movie-550"]`, string(data))

	var back []catalog.Key
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, keys, back)
}

func TestItemPoster(t *testing.T) {
	assert.False(t, catalog.Item{PosterPath: "  "}.HasPoster())
	assert.Equal(t, "", catalog.Item{}.PosterURL())
	assert.Equal(t, catalog.ImageBaseURL+"/x.jpg", catalog.Item{PosterPath: "/x.jpg"}.PosterURL())
}

func TestDiscoverQuerySignature(t *testing.T) {
	a := catalog.DiscoverQuery{Type: catalog.Movie, Genres: []int{28, 12}, Providers: []int{8}, Page: 1}
	b := a
	b.Page = 9
	assert.Equal(t, a.Signature(), b.Signature())

	c := a
	c.Genres = []int{28}
	assert.NotEqual(t, a.Signature(), c.Signature())
	assert.Equal(t, "28,12", catalog.JoinIDs([]int{28, 12}, ","))
}

func TestDetailsTrailerAndCast(t *testing.T) {
	d := &catalog.Details{}
	assert.Empty(t, d.TrailerURL())
	assert.Empty(t, d.TopCast(catalog.TopCastSize))

	d.Videos = []catalog.Video{{Key: "v1", Site: "Vimeo", Type: "Trailer", Official: true}}
	assert.Empty(t, d.TrailerURL(), "only YouTube videos are linked")

	for i := 0; i < 15; i++ {
		d.Credits.Cast = append(d.Credits.Cast, catalog.CastMember{ID: int64(i)})
	}
	top := d.TopCast(catalog.TopCastSize)
	require.Len(t, top, 12)
	assert.Equal(t, int64(0), top[0].ID)
	assert.Equal(t, int64(11), top[11].ID)
}
