package intelligence

import "sort"

// DefaultTopGenres is how many learned genres drive sampling when no explicit filter is set.
const DefaultTopGenres = 3

// GenreScore pairs a genre with its affinity.
type GenreScore struct {
	GenreID int     `json:"genre_id"`
	Score   float64 `json:"score"`
}

// RankGenres orders genres by score descending, ties broken by id ascending.
func RankGenres(scores map[int]float64) []GenreScore {
	ranked := make([]GenreScore, 0, len(scores))
	for g, s := range scores {
		ranked = append(ranked, GenreScore{GenreID: g, Score: s})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		return ranked[i].GenreID < ranked[j].GenreID
	})
	return ranked
}

// TopGenres returns up to n genre ids with a positive score, best first.
// Genres clamped to zero by dislikes are never used as a filter.
func TopGenres(scores map[int]float64, n int) []int {
	if n <= 0 {
		return nil
	}
	top := make([]int, 0, n)
	for _, gs := range RankGenres(scores) {
		if gs.Score <= 0 {
			break
		}
		top = append(top, gs.GenreID)
		if len(top) == n {
			break
		}
	}
	return top
}
