package core

import (
	"fmt"
	"strconv"

	"github.com/oceanbase/cinedeck-go/pkg/catalog"
	"github.com/oceanbase/cinedeck-go/pkg/intelligence"
)

// configString reads a string entry of a provider config map.
func configString(cfg map[string]interface{}, key, defaultValue string) string {
	if v, ok := cfg[key]; ok && v != nil {
		if s := fmt.Sprint(v); s != "" {
			return s
		}
	}
	return defaultValue
}

// configInt reads an integer entry. JSON configs decode numbers as float64
// and env configs may carry strings, so both are accepted.
func configInt(cfg map[string]interface{}, key string, defaultValue int) int {
	switch v := cfg[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	case string:
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return defaultValue
}

// configBool reads a boolean entry.
func configBool(cfg map[string]interface{}, key string) bool {
	switch v := cfg[key].(type) {
	case bool:
		return v
	case string:
		b, _ := strconv.ParseBool(v)
		return b
	}
	return false
}

// toGenreAffinities converts ranked scores, attaching names when known.
func toGenreAffinities(ranked []intelligence.GenreScore, names map[int]string) []GenreAffinity {
	out := make([]GenreAffinity, len(ranked))
	for i, gs := range ranked {
		out[i] = GenreAffinity{
			GenreID: gs.GenreID,
			Name:    names[gs.GenreID],
			Score:   gs.Score,
		}
	}
	return out
}

// genreNames indexes a genre list by id.
func genreNames(genres []catalog.Genre) map[int]string {
	names := make(map[int]string, len(genres))
	for _, g := range genres {
		names[g.ID] = g.Name
	}
	return names
}
