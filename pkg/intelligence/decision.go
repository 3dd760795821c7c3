package intelligence

import (
	"fmt"
	"strings"
)

// Action is what the user did with the card on top of the deck.
type Action string

const (
	// ActionLike is an explicit like.
	ActionLike Action = "like"

	// ActionDislike is an explicit dislike.
	ActionDislike Action = "dislike"

	// ActionWatchLater adds the title to the watchlist, a soft positive signal.
	ActionWatchLater Action = "watch_later"

	// ActionSeen marks the title as already watched; the verdict decides the signal.
	ActionSeen Action = "seen"

	// ActionSkip moves past the card without any signal.
	ActionSkip Action = "skip"

	// ActionCancel leaves the deck untouched.
	ActionCancel Action = "cancel"
)

// Verdict is the answer to "did you like it?" after marking a title as seen.
type Verdict string

const (
	VerdictLiked     Verdict = "liked"
	VerdictDisliked  Verdict = "disliked"
	VerdictCancelled Verdict = "cancelled"
)

// ParseAction accepts the action names plus a few aliases ("right", "left", "watchlist").
func ParseAction(s string) (Action, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "like", "liked":
		return ActionLike, nil
	case "dislike", "disliked":
		return ActionDislike, nil
	case "watch_later", "watchlater", "watchlist", "right":
		return ActionWatchLater, nil
	case "seen":
		return ActionSeen, nil
	case "skip", "left", "":
		return ActionSkip, nil
	case "cancel":
		return ActionCancel, nil
	default:
		return "", fmt.Errorf("unknown action %q", s)
	}
}

// ParseVerdict parses liked, disliked or cancelled. Empty means cancelled.
func ParseVerdict(s string) (Verdict, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "liked", "like", "yes":
		return VerdictLiked, nil
	case "disliked", "dislike", "no":
		return VerdictDisliked, nil
	case "cancelled", "canceled", "cancel", "":
		return VerdictCancelled, nil
	default:
		return "", fmt.Errorf("unknown verdict %q", s)
	}
}

// Decision is the resolved outcome of one interaction.
type Decision struct {
	Action  Action  `json:"action"`
	Verdict Verdict `json:"verdict,omitempty"`
}

// Effective folds a seen verdict into a plain action: liked is a like,
// disliked is a dislike and anything else cancels.
func (d Decision) Effective() Action {
	if d.Action != ActionSeen {
		return d.Action
	}
	return VerdictAction(d.Verdict)
}

// VerdictAction maps the answer of the seen dialog to an action.
func VerdictAction(v Verdict) Action {
	switch v {
	case VerdictLiked:
		return ActionLike
	case VerdictDisliked:
		return ActionDislike
	default:
		return ActionCancel
	}
}

// Delta returns the score delta of an action and whether it carries one.
func (a Action) Delta() (float64, bool) {
	switch a {
	case ActionLike:
		return DeltaLike, true
	case ActionDislike:
		return DeltaDislike, true
	case ActionWatchLater:
		return DeltaWatchLater, true
	default:
		return 0, false
	}
}

// Hides reports whether the title must never be sampled again after a.
func (a Action) Hides() bool {
	_, ok := a.Delta()
	return ok
}

// Consumes reports whether a moves the deck cursor forward.
func (a Action) Consumes() bool {
	return a != ActionCancel && a != ActionSeen
}
