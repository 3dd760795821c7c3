package intelligence_test

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oceanbase/cinedeck-go/pkg/intelligence"
)

var epoch = time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

func days(n float64) time.Duration {
	return time.Duration(n * float64(24*time.Hour))
}

func TestNewDecayEngineDefaults(t *testing.T) {
	engine := intelligence.NewDecayEngine(0, 0)
	assert.Equal(t, intelligence.DefaultHalfLifeDays, engine.HalfLifeDays())
	assert.Equal(t, intelligence.DefaultMinScoreToKeep, engine.MinScoreToKeep())
	assert.InDelta(t, math.Ln2/90, engine.Lambda(), 1e-15)
}

func TestApplyDecayHalfLife(t *testing.T) {
	engine := intelligence.NewDecayEngine(90, 0.1)
	profile := &intelligence.Profile{
		GenreScores: map[int]float64{28: 2.0},
		LastDecayAt: epoch,
	}
	now := epoch.Add(days(90))

	decayed := engine.ApplyDecay(profile, now)

	assert.InDelta(t, 1.0, decayed.GenreScores[28], 1e-9)
	assert.Equal(t, now, decayed.LastDecayAt)
	// input untouched
	assert.Equal(t, 2.0, profile.GenreScores[28])
	assert.Equal(t, epoch, profile.LastDecayAt)
}

func TestApplyDecaySkipsWithinOneDay(t *testing.T) {
	engine := intelligence.NewDecayEngine(0, 0)
	profile := &intelligence.Profile{
		GenreScores: map[int]float64{28: 2.0, 12: 0.5},
		LastDecayAt: epoch,
	}

	for _, elapsed := range []time.Duration{0, time.Hour, days(0.99), -days(3)} {
		out := engine.ApplyDecay(profile, epoch.Add(elapsed))
		assert.Equal(t, profile.GenreScores, out.GenreScores, "elapsed %v", elapsed)
		assert.Equal(t, epoch, out.LastDecayAt, "elapsed %v", elapsed)
	}
}

func TestApplyDecayIdempotentWithinADay(t *testing.T) {
	engine := intelligence.NewDecayEngine(0, 0)
	profile := &intelligence.Profile{
		GenreScores: map[int]float64{28: 3.0, 12: 1.5, 35: 0.4},
		LastDecayAt: epoch,
	}
	now := epoch.Add(days(10))

	once := engine.ApplyDecay(profile, now)
	twice := engine.ApplyDecay(once, now.Add(days(0.5)))

	assert.Equal(t, once, twice)
}

func TestApplyDecayMonotonic(t *testing.T) {
	engine := intelligence.NewDecayEngine(0, 0)
	profile := &intelligence.Profile{
		GenreScores: map[int]float64{28: 5.0, 12: 1.0, 35: 0.3, 18: 0.11},
		LastDecayAt: epoch,
	}

	for _, d := range []float64{0, 1, 2.5, 30, 90, 365} {
		out := engine.ApplyDecay(profile, epoch.Add(days(d)))
		for genre, score := range out.GenreScores {
			assert.LessOrEqual(t, score, profile.GenreScores[genre], "genre %d after %v days", genre, d)
			assert.GreaterOrEqual(t, score, 0.0)
		}
	}
}

func TestApplyDecayPrunesBelowFloor(t *testing.T) {
	engine := intelligence.NewDecayEngine(90, 0.1)
	profile := &intelligence.Profile{
		GenreScores: map[int]float64{28: 2.0, 12: 0.15},
		LastDecayAt: epoch,
	}

	out := engine.ApplyDecay(profile, epoch.Add(days(90)))

	require.Contains(t, out.GenreScores, 28)
	assert.NotContains(t, out.GenreScores, 12, "0.15 halves to 0.075 which is below the floor")
}

func TestApplyDecayUnstampedProfile(t *testing.T) {
	engine := intelligence.NewDecayEngine(0, 0)
	profile := &intelligence.Profile{GenreScores: map[int]float64{28: 1.0}}

	out := engine.ApplyDecay(profile, epoch)

	assert.Equal(t, 1.0, out.GenreScores[28])
	assert.Equal(t, epoch, out.LastDecayAt)
}

func TestApplyDecayNilProfile(t *testing.T) {
	engine := intelligence.NewDecayEngine(0, 0)
	out := engine.ApplyDecay(nil, epoch)
	require.NotNil(t, out)
	assert.Empty(t, out.GenreScores)
	assert.Equal(t, epoch, out.LastDecayAt)
}

func TestElapsedDays(t *testing.T) {
	assert.InDelta(t, 1.5, intelligence.ElapsedDays(epoch, epoch.Add(36*time.Hour)), 1e-12)
	assert.InDelta(t, -1.0, intelligence.ElapsedDays(epoch, epoch.Add(-24*time.Hour)), 1e-12)
}
