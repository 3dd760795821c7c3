package core

import (
	"time"

	"github.com/oceanbase/cinedeck-go/pkg/catalog"
	"github.com/oceanbase/cinedeck-go/pkg/intelligence"
	"github.com/oceanbase/cinedeck-go/pkg/userstate"
)

// GenreAffinity is one ranked entry of a profile snapshot.
type GenreAffinity struct {
	GenreID int     `json:"genre_id"`
	Name    string  `json:"name,omitempty"`
	Score   float64 `json:"score"`
}

// ProfileSnapshot is a read-only, decayed view of the learned preferences.
type ProfileSnapshot struct {
	// ProfileID is the namespace of the stored documents.
	ProfileID string `json:"profile_id"`

	// Genres are ranked by score descending, ties by id ascending.
	Genres []GenreAffinity `json:"genres"`

	// TopGenres is the implicit genre filter the sampler would use now.
	TopGenres []int `json:"top_genres"`

	// LastDecayAt is the stored decay stamp (the view itself is decayed to now).
	LastDecayAt time.Time `json:"last_decay_at"`

	// HiddenCount is the size of the hidden set.
	HiddenCount int `json:"hidden_count"`
}

// SwipeResult reports what one deck interaction did.
type SwipeResult struct {
	// Item is the card the decision applied to.
	Item catalog.Item `json:"item"`

	// Action is the effective action after folding in a seen verdict.
	Action intelligence.Action `json:"action"`

	// Genres are the genres the feedback was recorded against.
	Genres []int `json:"genres,omitempty"`

	// Recorded reports whether the preference scores changed.
	Recorded bool `json:"recorded"`

	// Hidden reports whether the title was added to the hidden set.
	Hidden bool `json:"hidden"`

	// List is the list the title was added to, if any.
	List userstate.ListName `json:"list,omitempty"`

	// Advanced reports whether the cursor moved.
	Advanced bool `json:"advanced"`

	// Refilled is the number of cards appended by the refill, if one ran.
	Refilled int `json:"refilled"`
}

// TitleDetails is the detail view of one title: metadata, credits, trailer
// and where to watch it.
type TitleDetails struct {
	Item     catalog.Item    `json:"item"`
	Genres   []catalog.Genre `json:"genres"`
	Runtime  int             `json:"runtime,omitempty"`
	Status   string          `json:"status,omitempty"`
	Director string          `json:"director,omitempty"`

	// Cast is capped at catalog.TopCastSize, in billing order.
	Cast       []catalog.CastMember `json:"cast"`
	TrailerURL string               `json:"trailer_url,omitempty"`

	// Availability is nil when the provider lookup failed.
	Availability *catalog.Availability `json:"availability,omitempty"`
}

// DeckState summarises a session deck.
type DeckState struct {
	SessionID string            `json:"session_id"`
	Filters   userstate.Filters `json:"filters"`
	Cursor    int               `json:"cursor"`
	Len       int               `json:"len"`
	Remaining int               `json:"remaining"`
	Next      []catalog.Item    `json:"next"`
}

// SampleResult is delivered by AsyncClient.SampleAsync.
type SampleResult struct {
	Items []catalog.Item
	Error error
}

// SwipeAsyncResult is delivered by AsyncClient.SwipeAsync.
type SwipeAsyncResult struct {
	Result *SwipeResult
	Error  error
}

// ProfileResult is delivered by AsyncClient.ProfileAsync.
type ProfileResult struct {
	Profile *ProfileSnapshot
	Error   error
}

// ListResult is delivered by AsyncClient.ListAsync.
type ListResult struct {
	Entries []userstate.ListEntry
	Error   error
}

// MoodResult is delivered by AsyncClient.InterpretMoodAsync.
type MoodResult struct {
	Genres []int
	Error  error
}
