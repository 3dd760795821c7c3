package intelligence

import (
	"math"
	"time"
)

const (
	// DefaultHalfLifeDays is the number of days after which an untouched score halves.
	DefaultHalfLifeDays = 90.0

	// DefaultMinScoreToKeep is the retention floor; decayed scores below it are pruned.
	DefaultMinScoreToKeep = 0.1

	day = 24 * time.Hour
)

// DecayEngine applies exponential time decay to a Profile.
//
// The decay factor for Δ elapsed days is exp(-λΔ) with λ = ln2 / halfLifeDays,
// so a score halves every halfLifeDays. Decay is skipped while less than one
// day has elapsed since the last application.
//
// Example usage:
//
//	engine := NewDecayEngine(90, 0.1)
//	decayed := engine.ApplyDecay(profile, time.Now())
type DecayEngine struct {
	// halfLifeDays is the score half-life in days.
	halfLifeDays float64

	// minScore is the retention floor. Scores strictly below it are dropped.
	minScore float64
}

// NewDecayEngine creates a decay engine.
//
// Parameters:
//   - halfLifeDays: score half-life in days. If <= 0, defaults to 90.
//   - minScoreToKeep: retention floor. If <= 0, defaults to 0.1.
func NewDecayEngine(halfLifeDays, minScoreToKeep float64) *DecayEngine {
	if halfLifeDays <= 0 {
		halfLifeDays = DefaultHalfLifeDays
	}
	if minScoreToKeep <= 0 {
		minScoreToKeep = DefaultMinScoreToKeep
	}
	return &DecayEngine{
		halfLifeDays: halfLifeDays,
		minScore:     minScoreToKeep,
	}
}

// HalfLifeDays returns the configured half-life.
func (e *DecayEngine) HalfLifeDays() float64 {
	return e.halfLifeDays
}

// MinScoreToKeep returns the configured retention floor.
func (e *DecayEngine) MinScoreToKeep() float64 {
	return e.minScore
}

// Lambda returns the decay constant ln2 / halfLifeDays.
func (e *DecayEngine) Lambda() float64 {
	return math.Ln2 / e.halfLifeDays
}

// Factor returns the multiplier applied after days elapsed days.
func (e *DecayEngine) Factor(days float64) float64 {
	if days <= 0 {
		return 1
	}
	return math.Exp(-e.Lambda() * days)
}

// ElapsedDays returns the fractional number of days between from and to.
func ElapsedDays(from, to time.Time) float64 {
	return float64(to.Sub(from)) / float64(day)
}

// ApplyDecay returns a decayed copy of p as of now. p is never modified.
//
// The rules:
//  1. A profile that was never decayed is only stamped with now.
//  2. If fewer than one day elapsed (or the clock went backwards) the copy is
//     returned unchanged.
//  3. Otherwise every score is multiplied by Factor(Δ); scores that fall
//     below MinScoreToKeep are pruned and LastDecayAt becomes now.
func (e *DecayEngine) ApplyDecay(p *Profile, now time.Time) *Profile {
	out := p.Clone()
	if out.LastDecayAt.IsZero() {
		out.LastDecayAt = now
		return out
	}

	days := ElapsedDays(out.LastDecayAt, now)
	if days < 1 {
		return out
	}

	factor := e.Factor(days)
	for genre, score := range out.GenreScores {
		out.GenreScores[genre] = score * factor
	}
	e.prune(out.GenreScores)
	out.LastDecayAt = now
	return out
}

// prune drops scores strictly below the retention floor.
func (e *DecayEngine) prune(scores map[int]float64) {
	for genre, score := range scores {
		if score < e.minScore {
			delete(scores, genre)
		}
	}
}
