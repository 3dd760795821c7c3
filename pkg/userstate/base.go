// Package userstate persists the local state of one viewer profile: learned
// genre preferences, the hidden set, saved home filters and the watchlist and
// liked lists.
//
// Every document is a small JSON value stored in a storage.KVStore under a
// logical name, namespaced by profile id as "{profile}/{NAME}".
package userstate

import (
	"errors"
	"fmt"
	"time"

	"github.com/oceanbase/cinedeck-go/pkg/catalog"
)

// Logical document names.
const (
	KeyPreferences = "PREFERENCES"
	KeyHiddenSet   = "HIDDEN_SET"
	KeyFilters     = "HOME_FILTERS_V1"
	KeyOnboarded   = "HAS_SEEN_HOME_FILTERS_V1"
	KeyWatchlist   = "WATCHLIST_ITEMS_V1"
	KeyLiked       = "LIKED_ITEMS_V1"
)

// ErrUnreadableDocument is returned when a stored document cannot be decoded
// and could not be backed up either.
var ErrUnreadableDocument = errors.New("unreadable document")

// BackupName is the name an unreadable document is copied to, e.g.
// "PREFERENCES.unreadable.20240301T120000Z".
func BackupName(name string, at time.Time) string {
	return name + ".unreadable." + at.UTC().Format("20060102T150405Z")
}

// DefaultProfileID is used when no profile id is configured.
const DefaultProfileID = "default"

// Filters are the home screen filters a viewer last applied.
type Filters struct {
	Type      catalog.ContentType `json:"type"`
	Genres    []int               `json:"selGenres"`
	Providers []int               `json:"selProviders"`
}

// DefaultFilters is movies with no genre or provider restriction.
func DefaultFilters() Filters {
	return Filters{Type: catalog.Movie}
}

// Normalize fills a missing type and replaces nil slices with empty ones.
func (f Filters) Normalize() Filters {
	if f.Type == "" {
		f.Type = catalog.Movie
	}
	if f.Genres == nil {
		f.Genres = []int{}
	}
	if f.Providers == nil {
		f.Providers = []int{}
	}
	return f
}

// ListName identifies one of the viewer's saved lists.
type ListName string

const (
	// Watchlist holds titles saved for later.
	Watchlist ListName = "watchlist"

	// Liked holds titles the viewer liked.
	Liked ListName = "liked"
)

// ParseListName validates a list name.
func ParseListName(s string) (ListName, error) {
	switch ListName(s) {
	case Watchlist, Liked:
		return ListName(s), nil
	default:
		return "", fmt.Errorf("unknown list %q", s)
	}
}

func (n ListName) storageKey() string {
	if n == Liked {
		return KeyLiked
	}
	return KeyWatchlist
}

// ListEntry is one saved title.
type ListEntry struct {
	ID         int64               `json:"id"`
	Title      string              `json:"title"`
	PosterPath string              `json:"poster_path,omitempty"`
	Type       catalog.ContentType `json:"type"`
	AddedAt    time.Time           `json:"added_at"`
}

// NewListEntry builds an entry from a catalog item.
func NewListEntry(item catalog.Item, now time.Time) ListEntry {
	return ListEntry{
		ID:         item.ID,
		Title:      item.Title,
		PosterPath: item.PosterPath,
		Type:       item.Type,
		AddedAt:    now,
	}
}

// Key returns the composite key of the entry.
func (e ListEntry) Key() catalog.Key {
	return catalog.Key{Type: e.Type, ID: e.ID}
}

// DocID returns the document id used for the entry, "{type}_{id}".
func (e ListEntry) DocID() string {
	return fmt.Sprintf("%s_%d", e.Type, e.ID)
}
