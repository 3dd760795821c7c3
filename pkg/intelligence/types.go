// Package intelligence provides preference learning for the discovery core:
// time decay of genre affinities, feedback scoring, genre ranking, composite-key
// deduplication and free-text mood interpretation.
package intelligence

import "time"

// Profile is the learned genre affinity of one local user.
//
// Scores are never negative. Genres whose score decays below the retention
// floor are pruned from the map.
type Profile struct {
	// GenreScores maps a catalog genre id to its affinity score.
	GenreScores map[int]float64 `json:"genreScores"`

	// LastDecayAt is the instant decay was last applied.
	// A zero value means the profile has never been decayed.
	LastDecayAt time.Time `json:"lastDecayTimestamp"`
}

// NewProfile returns an empty profile stamped at now.
func NewProfile(now time.Time) *Profile {
	return &Profile{
		GenreScores: make(map[int]float64),
		LastDecayAt: now,
	}
}

// Clone returns a deep copy. Cloning nil yields an empty, unstamped profile.
func (p *Profile) Clone() *Profile {
	if p == nil {
		return &Profile{GenreScores: make(map[int]float64)}
	}
	out := &Profile{
		GenreScores: make(map[int]float64, len(p.GenreScores)),
		LastDecayAt: p.LastDecayAt,
	}
	for g, s := range p.GenreScores {
		out.GenreScores[g] = s
	}
	return out
}

// Score returns the affinity for genre, 0 when absent.
func (p *Profile) Score(genre int) float64 {
	if p == nil {
		return 0
	}
	return p.GenreScores[genre]
}

// Len returns the number of scored genres.
func (p *Profile) Len() int {
	if p == nil {
		return 0
	}
	return len(p.GenreScores)
}
