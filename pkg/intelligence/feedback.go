package intelligence

import "time"

// Score deltas applied by feedback actions.
const (
	DeltaLike       = 1.0
	DeltaDislike    = -1.0
	DeltaWatchLater = 0.5
)

// FeedbackRecorder turns feedback signals into score changes.
//
// Record is pure: persistence belongs to the caller.
type FeedbackRecorder struct {
	decay *DecayEngine
}

// NewFeedbackRecorder creates a recorder. A nil engine uses the defaults.
func NewFeedbackRecorder(decay *DecayEngine) *FeedbackRecorder {
	if decay == nil {
		decay = NewDecayEngine(0, 0)
	}
	return &FeedbackRecorder{decay: decay}
}

// Decay returns the engine used before every mutation.
func (r *FeedbackRecorder) Decay() *DecayEngine {
	return r.decay
}

// Record applies decay and then adds delta to each distinct genre in genreIDs,
// clamping the result at zero.
//
// An empty genreIDs is a full no-op: the returned profile is an unchanged copy
// (no decay either) and changed is false, so callers can skip persistence.
func (r *FeedbackRecorder) Record(p *Profile, genreIDs []int, delta float64, now time.Time) (*Profile, bool) {
	if len(genreIDs) == 0 {
		return p.Clone(), false
	}

	out := r.decay.ApplyDecay(p, now)
	seen := make(map[int]struct{}, len(genreIDs))
	for _, genre := range genreIDs {
		if _, dup := seen[genre]; dup {
			continue
		}
		seen[genre] = struct{}{}

		score := out.GenreScores[genre] + delta
		if score < 0 {
			score = 0
		}
		out.GenreScores[genre] = score
	}
	return out, true
}
