package cmd

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oceanbase/cinedeck-go/pkg/catalog"
	"github.com/oceanbase/cinedeck-go/pkg/core"
	"github.com/oceanbase/cinedeck-go/pkg/intelligence"
	"github.com/oceanbase/cinedeck-go/pkg/userstate"
)

func TestVersionCommand(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"version"})
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
	})

	require.NoError(t, rootCmd.Execute())
	assert.Contains(t, out.String(), "cinedeck version dev")
}

func TestConcreteType(t *testing.T) {
	got, err := concreteType("series")
	require.NoError(t, err)
	assert.Equal(t, catalog.TV, got)

	_, err = concreteType("all")
	assert.Error(t, err)
	_, err = concreteType("book")
	assert.Error(t, err)
}

func TestPrintItems(t *testing.T) {
	var out bytes.Buffer
	printItems(&out, []catalog.Item{
		{ID: 550, Type: catalog.Movie, Title: "Fight Club", ReleaseDate: "1999-10-15", VoteAverage: 8.4},
		{ID: 1399, Type: catalog.TV, Title: "Game of Thrones"},
	})

	lines := bytes.Split(bytes.TrimSpace(out.Bytes()), []byte("\n"))
	require.Len(t, lines, 3)
	assert.Contains(t, string(lines[1]), "movie-550")
	assert.Contains(t, string(lines[1]), "1999")
	assert.Contains(t, string(lines[2]), "-")
}

func TestPrintProfileAndEntries(t *testing.T) {
	var out bytes.Buffer
	printProfile(&out, &core.ProfileSnapshot{ProfileID: "default"})
	assert.Contains(t, out.String(), "No preferences learned yet.")

	out.Reset()
	printProfile(&out, &core.ProfileSnapshot{
		ProfileID: "default",
		Genres:    []core.GenreAffinity{{GenreID: 28, Name: "Action", Score: 1.5}},
	})
	assert.Contains(t, out.String(), "Action")
	assert.Contains(t, out.String(), "1.500")

	out.Reset()
	printEntries(&out, nil)
	assert.Equal(t, "(empty)\n", out.String())

	out.Reset()
	printEntries(&out, []userstate.ListEntry{{ID: 7, Type: catalog.Movie, Title: "Se7en", AddedAt: time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)}})
	assert.Contains(t, out.String(), "2026-02-01")
}

func TestPrintSwipe(t *testing.T) {
	var out bytes.Buffer
	printSwipe(&out, &core.SwipeResult{
		Item:     catalog.Item{ID: 550, Type: catalog.Movie, Title: "Fight Club"},
		Action:   intelligence.ActionLike,
		Genres:   []int{18},
		Recorded: true,
		Hidden:   true,
		List:     userstate.Liked,
	})
	assert.Equal(t, "movie-550 \"Fight Club\": like, recorded for genres [18], hidden, saved to liked\n", out.String())
}

func TestPrintDetails(t *testing.T) {
	var out bytes.Buffer
	printDetails(&out, &core.TitleDetails{
		Item:       catalog.Item{ID: 550, Type: catalog.Movie, Title: "Fight Club", ReleaseDate: "1999-10-15"},
		Genres:     []catalog.Genre{{ID: 18, Name: "Drama"}, {ID: 53, Name: "Thriller"}},
		Runtime:    139,
		Director:   "David Fincher",
		Cast:       []catalog.CastMember{{Name: "Edward Norton", Character: "Narrator"}},
		TrailerURL: "https://www.youtube.com/watch?v=abc",
		Availability: &catalog.Availability{
			Region:    "ES",
			Providers: []catalog.WatchProvider{{ID: 8, Name: "Netflix"}, {ID: 119, Name: "Prime Video"}},
		},
	})

	text := out.String()
	assert.Contains(t, text, "movie-550 Fight Club (1999)")
	assert.Contains(t, text, "Drama • Thriller")
	assert.Contains(t, text, "Runtime: 2h 19m")
	assert.Contains(t, text, "Director: David Fincher")
	assert.Contains(t, text, "Edward Norton")
	assert.Contains(t, text, "Trailer: https://www.youtube.com/watch?v=abc")
	assert.Contains(t, text, "Watch in ES: Netflix, Prime Video")
}

func TestRuntimeText(t *testing.T) {
	assert.Equal(t, "", runtimeText(catalog.Movie, 0))
	assert.Equal(t, "45m", runtimeText(catalog.Movie, 45))
	assert.Equal(t, "2h 0m", runtimeText(catalog.Movie, 120))
	assert.Equal(t, "60 min/ep", runtimeText(catalog.TV, 60))
}
